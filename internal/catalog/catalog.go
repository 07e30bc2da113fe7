// Package catalog manages the persisted media catalog.
package catalog

import "time"

// Kind distinguishes standalone movies from series episodes.
type Kind string

const (
	KindMovie  Kind = "movie"
	KindSeries Kind = "series"
)

// Valid reports whether k is a known kind.
func (k Kind) Valid() bool {
	return k == KindMovie || k == KindSeries
}

// PosterSource identifies which reference provider supplied a poster.
type PosterSource string

const (
	PosterSourceOMDb      PosterSource = "omdb"
	PosterSourceTMDB      PosterSource = "tmdb"
	PosterSourceWikipedia PosterSource = "wikipedia"
)

// Record is one catalog entry, keyed by the archive's stable external
// identifier. It is created on first import and mutated on re-import, never
// duplicated.
type Record struct {
	ID         int64
	ExternalID string
	Title      string
	Year       *int
	Genre      string
	Rating     string
	Kind       Kind

	// Series fields, zero unless Kind is KindSeries.
	SeriesTitle string
	Season      int
	Episode     int

	// Playback fields from the selected file.
	FileName        string
	PlaybackURL     string
	SizeBytes       int64
	DurationSeconds float64

	// Poster fields, empty when no provider produced a confident match.
	PosterURL    string
	PosterSource PosterSource
	ReferenceID  string

	AddedAt   time.Time
	UpdatedAt time.Time
}
