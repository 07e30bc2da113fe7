// internal/api/v1/types.go
package v1

import (
	"encoding/json"
	"time"

	"github.com/vmunix/reelarr/internal/catalog"
)

// recordResponse is the API representation of a catalog entry.
type recordResponse struct {
	ID         int64  `json:"id"`
	ExternalID string `json:"external_id"`
	Title      string `json:"title"`
	Year       *int   `json:"year,omitempty"`
	Genre      string `json:"genre"`
	Rating     string `json:"rating"`
	Kind       string `json:"kind"`

	SeriesTitle string `json:"series_title,omitempty"`
	Season      int    `json:"season,omitempty"`
	Episode     int    `json:"episode,omitempty"`

	FileName        string  `json:"file_name"`
	PlaybackURL     string  `json:"playback_url"`
	SizeBytes       int64   `json:"size_bytes"`
	DurationSeconds float64 `json:"duration_seconds,omitempty"`

	PosterURL    string `json:"poster_url,omitempty"`
	PosterSource string `json:"poster_source,omitempty"`
	ReferenceID  string `json:"reference_id,omitempty"`

	AddedAt   time.Time `json:"added_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func recordToResponse(r *catalog.Record) recordResponse {
	return recordResponse{
		ID:              r.ID,
		ExternalID:      r.ExternalID,
		Title:           r.Title,
		Year:            r.Year,
		Genre:           r.Genre,
		Rating:          r.Rating,
		Kind:            string(r.Kind),
		SeriesTitle:     r.SeriesTitle,
		Season:          r.Season,
		Episode:         r.Episode,
		FileName:        r.FileName,
		PlaybackURL:     r.PlaybackURL,
		SizeBytes:       r.SizeBytes,
		DurationSeconds: r.DurationSeconds,
		PosterURL:       r.PosterURL,
		PosterSource:    string(r.PosterSource),
		ReferenceID:     r.ReferenceID,
		AddedAt:         r.AddedAt,
		UpdatedAt:       r.UpdatedAt,
	}
}

// listCatalogResponse is the response for GET /catalog.
type listCatalogResponse struct {
	Items  []recordResponse `json:"items"`
	Total  int              `json:"total"`
	Limit  int              `json:"limit"`
	Offset int              `json:"offset"`
}

// historyResponse is the API representation of one history entry.
type historyResponse struct {
	ID         int64           `json:"id"`
	ExternalID string          `json:"external_id"`
	Event      string          `json:"event"`
	Data       json.RawMessage `json:"data,omitempty"`
	CreatedAt  time.Time       `json:"created_at"`
}

func historyToResponse(e *catalog.HistoryEntry) historyResponse {
	resp := historyResponse{
		ID:         e.ID,
		ExternalID: e.ExternalID,
		Event:      e.Event,
		CreatedAt:  e.CreatedAt,
	}
	if e.Data != "" {
		resp.Data = json.RawMessage(e.Data)
	}
	return resp
}

// listHistoryResponse is the response for GET /history.
type listHistoryResponse struct {
	Items []historyResponse `json:"items"`
}

// statusResponse is the response for GET /status.
type statusResponse struct {
	Status       string `json:"status"`
	Version      string `json:"version"`
	CatalogTotal int    `json:"catalog_total"`
	ImportReady  bool   `json:"import_ready"`
}
