// Package importer orchestrates batch imports: archive search, per-item
// metadata fetch, file selection, normalization, poster resolution, and
// catalog persistence.
package importer

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/vmunix/reelarr/internal/archive"
	"github.com/vmunix/reelarr/internal/catalog"
	"github.com/vmunix/reelarr/internal/normalize"
	"github.com/vmunix/reelarr/internal/resolve"
	"github.com/vmunix/reelarr/internal/selection"
)

// Bounds on batch and worker configuration.
const (
	MaxBatchSize   = 50
	MaxWorkers     = 16
	DefaultWorkers = 4
	DefaultRetries = 2
)

// Item statuses reported per imported item.
const (
	StatusImported = "imported"
	StatusUpdated  = "updated"
	StatusSkipped  = "skipped"
	StatusFailed   = "failed"
)

// Archive is the subset of the archive gateway the importer depends on.
type Archive interface {
	Search(ctx context.Context, query string, limit int) ([]string, error)
	Fetch(ctx context.Context, identifier string) (*archive.Item, error)
	DownloadURL(identifier, fileName string) string
}

// Resolver produces a poster for a title, or nil when no provider matched.
type Resolver interface {
	Resolve(ctx context.Context, title string, year int, kind catalog.Kind) *resolve.Poster
}

// Store persists catalog records.
type Store interface {
	Upsert(r *catalog.Record) (bool, error)
}

// History records per-item import outcomes. Writes are best effort.
type History interface {
	Add(h *catalog.HistoryEntry) error
}

// Request describes one import batch.
type Request struct {
	Query                   string       `json:"query"`
	Limit                   int          `json:"limit"`
	Kind                    catalog.Kind `json:"kind"`
	AllowSecondaryContainer bool         `json:"allow_secondary_container"`

	// Series batch context, required when Kind is series.
	SeriesTitle        string `json:"series_title,omitempty"`
	SeasonNumber       int    `json:"season_number,omitempty"`
	StartEpisodeNumber int    `json:"start_episode_number,omitempty"`
}

// Validate checks the request and applies defaults for optional fields.
func (r *Request) Validate() error {
	if r.Query == "" {
		return fmt.Errorf("%w: query is required", ErrInvalidRequest)
	}
	if r.Limit < 1 || r.Limit > MaxBatchSize {
		return fmt.Errorf("%w: limit must be between 1 and %d", ErrInvalidRequest, MaxBatchSize)
	}
	if r.Kind == "" {
		r.Kind = catalog.KindMovie
	}
	if !r.Kind.Valid() {
		return fmt.Errorf("%w: unknown kind %q", ErrInvalidRequest, r.Kind)
	}
	if r.Kind == catalog.KindSeries {
		if r.SeriesTitle == "" {
			return fmt.Errorf("%w: series_title is required for series imports", ErrInvalidRequest)
		}
		if r.SeasonNumber == 0 {
			r.SeasonNumber = 1
		}
		if r.StartEpisodeNumber == 0 {
			r.StartEpisodeNumber = 1
		}
	}
	return nil
}

// ItemResult is the outcome for one archive item.
type ItemResult struct {
	ExternalID string `json:"external_id"`
	Title      string `json:"title,omitempty"`
	Status     string `json:"status"`
	Reason     string `json:"reason,omitempty"`

	FileName        string  `json:"file_name,omitempty"`
	PlaybackURL     string  `json:"playback_url,omitempty"`
	SizeBytes       int64   `json:"size_bytes,omitempty"`
	DurationSeconds float64 `json:"duration_seconds,omitempty"`
}

// Summary aggregates per-item outcomes. The four outcome counts always sum
// to Requested.
type Summary struct {
	Requested int `json:"requested"`
	Imported  int `json:"imported"`
	Updated   int `json:"updated"`
	Skipped   int `json:"skipped"`
	Failed    int `json:"failed"`
}

// BatchResult is the complete outcome of one import run. Results preserve
// the archive's search ranking order.
type BatchResult struct {
	Summary Summary      `json:"summary"`
	Results []ItemResult `json:"results"`
}

// Config tunes importer concurrency and retry behavior.
// AllowSecondaryContainer widens file selection for every batch; individual
// requests can still opt in on their own.
type Config struct {
	Workers                 int
	Retries                 int
	RetryDelay              time.Duration
	AllowSecondaryContainer bool
}

// Importer runs import batches against its collaborators.
type Importer struct {
	archive  Archive
	resolver Resolver
	store    Store
	history  History // may be nil
	log      *slog.Logger

	workers        int
	retries        int
	retryDelay     time.Duration
	allowSecondary bool
}

// New creates an importer. history may be nil to disable history recording.
func New(a Archive, r Resolver, s Store, h History, log *slog.Logger, cfg Config) *Importer {
	if log == nil {
		log = slog.Default()
	}
	workers := cfg.Workers
	if workers < 1 {
		workers = DefaultWorkers
	}
	if workers > MaxWorkers {
		workers = MaxWorkers
	}
	retries := cfg.Retries
	if retries < 0 {
		retries = DefaultRetries
	}
	delay := cfg.RetryDelay
	if delay <= 0 {
		delay = 500 * time.Millisecond
	}
	return &Importer{
		archive:        a,
		resolver:       r,
		store:          s,
		history:        h,
		log:            log.With("component", "importer"),
		workers:        workers,
		retries:        retries,
		retryDelay:     delay,
		allowSecondary: cfg.AllowSecondaryContainer,
	}
}

// Run executes one import batch. A search failure aborts the whole batch;
// everything after search is isolated per item, so one bad item never stops
// the rest.
func (i *Importer) Run(ctx context.Context, req Request) (*BatchResult, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}
	if i.allowSecondary {
		req.AllowSecondaryContainer = true
	}

	var ids []string
	err := i.retry(ctx, func() error {
		var serr error
		ids, serr = i.archive.Search(ctx, req.Query, req.Limit)
		return serr
	})
	if err != nil {
		return nil, fmt.Errorf("archive search: %w", err)
	}

	i.log.Info("starting import batch",
		"query", req.Query, "kind", req.Kind, "items", len(ids), "workers", i.workers)

	results := make([]ItemResult, len(ids))
	g := &errgroup.Group{}
	g.SetLimit(i.workers)
	for idx, id := range ids {
		g.Go(func() error {
			if ctx.Err() != nil {
				results[idx] = ItemResult{ExternalID: id, Status: StatusFailed, Reason: "canceled"}
			} else {
				results[idx] = i.processItem(ctx, req, idx, id)
			}
			i.recordHistory(&results[idx])
			return nil
		})
	}
	g.Wait() //nolint:errcheck // item workers never return errors

	res := &BatchResult{Results: results}
	res.Summary.Requested = len(results)
	for _, r := range results {
		switch r.Status {
		case StatusImported:
			res.Summary.Imported++
		case StatusUpdated:
			res.Summary.Updated++
		case StatusSkipped:
			res.Summary.Skipped++
		case StatusFailed:
			res.Summary.Failed++
		}
	}

	i.log.Info("import batch finished",
		"requested", res.Summary.Requested, "imported", res.Summary.Imported,
		"updated", res.Summary.Updated, "skipped", res.Summary.Skipped,
		"failed", res.Summary.Failed)
	return res, nil
}

// processItem runs the fetch, select, normalize, resolve, persist pipeline
// for a single item. It never returns an error; failures become a failed
// result so the batch invariant holds.
func (i *Importer) processItem(ctx context.Context, req Request, index int, id string) ItemResult {
	res := ItemResult{ExternalID: id}

	var item *archive.Item
	err := i.retry(ctx, func() error {
		var ferr error
		item, ferr = i.archive.Fetch(ctx, id)
		return ferr
	})
	if err != nil {
		i.log.Warn("metadata fetch failed", "identifier", id, "error", err)
		res.Status = StatusFailed
		res.Reason = err.Error()
		return res
	}

	best := selection.SelectBest(item.Files, req.AllowSecondaryContainer)
	if best == nil {
		res.Status = StatusSkipped
		res.Reason = "no playable file found"
		return res
	}

	meta := normalize.Normalize(item.Metadata, req.Kind, id, normalize.BatchContext{
		SeriesTitle:  req.SeriesTitle,
		Season:       req.SeasonNumber,
		StartEpisode: req.StartEpisodeNumber,
		ItemIndex:    index,
	})
	res.Title = meta.Title

	year := 0
	if meta.ReleaseYear != nil {
		year = *meta.ReleaseYear
	}
	var poster *resolve.Poster
	if i.resolver != nil {
		poster = i.resolver.Resolve(ctx, meta.Title, year, req.Kind)
	}

	rec := &catalog.Record{
		ExternalID:      id,
		Title:           meta.Title,
		Year:            meta.ReleaseYear,
		Genre:           meta.Genre,
		Rating:          meta.Rating,
		Kind:            req.Kind,
		SeriesTitle:     meta.SeriesTitle,
		Season:          meta.Season,
		Episode:         meta.Episode,
		FileName:        best.Name,
		PlaybackURL:     i.archive.DownloadURL(id, best.Name),
		SizeBytes:       best.SizeBytes,
		DurationSeconds: best.DurationSeconds,
	}
	if poster != nil {
		rec.PosterURL = poster.URL
		rec.PosterSource = poster.Source
		rec.ReferenceID = poster.ReferenceID
	}

	wasExisting, err := i.store.Upsert(rec)
	if err != nil {
		i.log.Error("catalog upsert failed", "identifier", id, "error", err)
		res.Status = StatusFailed
		res.Reason = fmt.Sprintf("catalog upsert: %v", err)
		return res
	}

	if wasExisting {
		res.Status = StatusUpdated
	} else {
		res.Status = StatusImported
	}
	res.FileName = best.Name
	res.PlaybackURL = rec.PlaybackURL
	res.SizeBytes = best.SizeBytes
	res.DurationSeconds = best.DurationSeconds
	return res
}

// recordHistory writes one history entry. Failures are logged, never
// propagated: history must not affect import outcomes.
func (i *Importer) recordHistory(res *ItemResult) {
	if i.history == nil {
		return
	}
	data, err := json.Marshal(res)
	if err != nil {
		return
	}
	entry := &catalog.HistoryEntry{
		ExternalID: res.ExternalID,
		Event:      res.Status,
		Data:       string(data),
	}
	if err := i.history.Add(entry); err != nil {
		i.log.Warn("history write failed", "identifier", res.ExternalID, "error", err)
	}
}
