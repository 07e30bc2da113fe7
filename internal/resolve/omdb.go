package resolve

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/vmunix/reelarr/internal/catalog"
	"github.com/vmunix/reelarr/pkg/title"
)

const omdbDefaultBaseURL = "https://www.omdbapi.com"

// OMDb resolves posters against a loosely-structured free-text database. It
// is the highest-priority provider: when its exact-title lookup returns a
// confident hit the rest of the chain is never queried.
type OMDb struct {
	apiKey     string
	baseURL    string
	httpClient *http.Client
}

// OMDbOption configures an OMDb provider.
type OMDbOption func(*OMDb)

// WithOMDbBaseURL sets a custom base URL (for testing).
func WithOMDbBaseURL(url string) OMDbOption {
	return func(o *OMDb) {
		o.baseURL = url
	}
}

// WithOMDbHTTPClient sets a custom HTTP client.
func WithOMDbHTTPClient(hc *http.Client) OMDbOption {
	return func(o *OMDb) {
		o.httpClient = hc
	}
}

// NewOMDb creates an OMDb provider.
func NewOMDb(apiKey string, opts ...OMDbOption) *OMDb {
	o := &OMDb{
		apiKey:  apiKey,
		baseURL: omdbDefaultBaseURL,
		httpClient: &http.Client{
			Timeout: 8 * time.Second,
		},
	}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

// Name implements Provider.
func (o *OMDb) Name() string { return "omdb" }

// omdbResult is a single-title response (?t= or ?i= lookup).
type omdbResult struct {
	Response string `json:"Response"`
	Error    string `json:"Error"`
	Title    string `json:"Title"`
	Year     string `json:"Year"`
	Poster   string `json:"Poster"`
	IMDBID   string `json:"imdbID"`
}

// omdbSearch is a fuzzy list response (?s= lookup).
type omdbSearch struct {
	Response string       `json:"Response"`
	Search   []omdbResult `json:"Search"`
}

// Resolve looks the title up by exact match first, then falls back to the
// fuzzy list endpoint with a detail call for the chosen hit. A hit is
// accepted only when its returned title clears the similarity gate.
func (o *OMDb) Resolve(ctx context.Context, t string, _ int, kind catalog.Kind) (*Poster, error) {
	query := title.Sanitize(t)
	if query == "" {
		return nil, nil
	}

	omdbType := "movie"
	if kind == catalog.KindSeries {
		omdbType = "series"
	}

	// Exact-title lookup.
	var exact omdbResult
	if err := o.get(ctx, url.Values{"t": {query}, "type": {omdbType}}, &exact); err != nil {
		return nil, err
	}
	if exact.Response == "True" && title.Similar(query, exact.Title) {
		return o.toPoster(exact), nil
	}

	// Fuzzy list, then detail by id for the first confident entry.
	var list omdbSearch
	if err := o.get(ctx, url.Values{"s": {query}, "type": {omdbType}}, &list); err != nil {
		return nil, err
	}
	if list.Response != "True" {
		return nil, nil
	}

	for _, hit := range list.Search {
		if !title.Similar(query, hit.Title) {
			continue
		}
		if poster := o.toPoster(hit); poster != nil {
			return poster, nil
		}
		if hit.IMDBID == "" {
			continue
		}

		var detail omdbResult
		if err := o.get(ctx, url.Values{"i": {hit.IMDBID}}, &detail); err != nil {
			return nil, err
		}
		if detail.Response == "True" {
			return o.toPoster(detail), nil
		}
	}

	return nil, nil
}

// toPoster converts a result into a Poster, or nil when the entry carries no
// usable image ("N/A" is OMDb's null).
func (o *OMDb) toPoster(r omdbResult) *Poster {
	if r.Poster == "" || r.Poster == "N/A" {
		return nil
	}
	return &Poster{
		URL:         r.Poster,
		Source:      catalog.PosterSourceOMDb,
		ReferenceID: r.IMDBID,
	}
}

func (o *OMDb) get(ctx context.Context, params url.Values, out any) error {
	params.Set("apikey", o.apiKey)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, o.baseURL+"/?"+params.Encode(), nil)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}

	resp, err := o.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("execute request: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("OMDb API error: %s", resp.Status)
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}
