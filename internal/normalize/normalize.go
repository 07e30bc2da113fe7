// Package normalize extracts clean scalar fields from noisy,
// inconsistently-typed archive metadata.
package normalize

import (
	"regexp"
	"strings"

	"github.com/spf13/cast"

	"github.com/vmunix/reelarr/internal/catalog"
)

// Defaults applied when no candidate key yields a value.
const (
	DefaultGenre  = "Unknown"
	DefaultRating = "Not Rated"
)

// Extraction rules: ordered candidate keys per field. Earlier keys win.
// Keeping these as data makes each field's behavior enumerable and testable
// on its own.
var (
	titleKeys       = []string{"title", "movie_title", "name"}
	yearKeys        = []string{"year", "date", "publicdate", "addeddate"}
	genreKeys       = []string{"genre", "subject", "collection", "keywords"}
	ratingKeys      = []string{"rating", "mpaa", "certification", "contentrating"}
	seriesTitleKeys = []string{"series", "show", "showname", "collection_title"}
	seasonKeys      = []string{"season", "season_number", "seasonnumber"}
	episodeKeys     = []string{"episode", "episode_number", "track", "part", "number"}
)

var (
	yearRegex = regexp.MustCompile(`(19|20)\d{2}`)
	intRegex  = regexp.MustCompile(`\d+`)
)

// BatchContext carries batch-level defaults for series imports.
type BatchContext struct {
	SeriesTitle string
	Season      int
	// StartEpisode plus ItemIndex is the episode number fallback, which keeps
	// episode numbers monotonically increasing across a batch even when the
	// source never declares them.
	StartEpisode int
	ItemIndex    int
}

// Metadata is the typed record derived from one item's raw metadata.
type Metadata struct {
	Title       string
	ReleaseYear *int
	Genre       string
	Rating      string
	Kind        catalog.Kind

	// Set iff Kind is KindSeries.
	SeriesTitle string
	Season      int
	Episode     int
}

// Normalize derives typed metadata from a raw archive metadata map.
// Pure and deterministic: identical inputs always produce identical output.
func Normalize(raw map[string]any, kind catalog.Kind, fallbackTitle string, batch BatchContext) Metadata {
	m := Metadata{
		Kind:   kind,
		Genre:  cleanValue(firstString(raw, genreKeys), DefaultGenre),
		Rating: cleanValue(firstString(raw, ratingKeys), DefaultRating),
	}

	m.Title = strings.TrimSpace(firstString(raw, titleKeys))
	if m.Title == "" {
		m.Title = fallbackTitle
	}

	if year, ok := firstYear(raw); ok {
		m.ReleaseYear = &year
	}

	if kind == catalog.KindSeries {
		m.SeriesTitle = strings.TrimSpace(firstString(raw, seriesTitleKeys))
		if m.SeriesTitle == "" {
			m.SeriesTitle = batch.SeriesTitle
		}
		if m.SeriesTitle == "" {
			m.SeriesTitle = m.Title
		}
		m.Season = firstInt(raw, seasonKeys, batch.Season)
		m.Episode = firstInt(raw, episodeKeys, batch.StartEpisode+batch.ItemIndex)
	}

	return m
}

// firstString returns the first non-empty scalar found across the candidate
// keys. Archive values may be scalars or lists; lists contribute their first
// element.
func firstString(raw map[string]any, keys []string) string {
	for _, key := range keys {
		if s := scalar(raw[key]); s != "" {
			return s
		}
	}
	return ""
}

// firstYear returns the first 4-digit year found across the candidate keys.
// A non-empty value without a year ("n/a") does not stop the scan; a later
// key may still carry one.
func firstYear(raw map[string]any) (int, bool) {
	for _, key := range yearKeys {
		if match := yearRegex.FindString(scalar(raw[key])); match != "" {
			return cast.ToInt(match), true
		}
	}
	return 0, false
}

// firstInt returns the first integer run found in the candidate keys'
// values, or def when none parse.
func firstInt(raw map[string]any, keys []string, def int) int {
	for _, key := range keys {
		if match := intRegex.FindString(scalar(raw[key])); match != "" {
			return cast.ToInt(match)
		}
	}
	return def
}

func scalar(v any) string {
	switch vv := v.(type) {
	case nil:
		return ""
	case []any:
		if len(vv) == 0 {
			return ""
		}
		return strings.TrimSpace(cast.ToString(vv[0]))
	case []string:
		if len(vv) == 0 {
			return ""
		}
		return strings.TrimSpace(vv[0])
	default:
		return strings.TrimSpace(cast.ToString(v))
	}
}

// cleanValue collapses underscore and hyphen separators to spaces and trims.
func cleanValue(s, def string) string {
	s = strings.ReplaceAll(s, "_", " ")
	s = strings.ReplaceAll(s, "-", " ")
	s = strings.Join(strings.Fields(s), " ")
	if s == "" {
		return def
	}
	return s
}
