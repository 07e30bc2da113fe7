package normalize

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vmunix/reelarr/internal/catalog"
)

func TestNormalize_Movie(t *testing.T) {
	raw := map[string]any{
		"title":   "Detour",
		"year":    "1945",
		"subject": []any{"film-noir", "crime"},
		"rating":  "approved",
	}

	m := Normalize(raw, catalog.KindMovie, "detour_1945", BatchContext{})

	assert.Equal(t, "Detour", m.Title)
	require.NotNil(t, m.ReleaseYear)
	assert.Equal(t, 1945, *m.ReleaseYear)
	assert.Equal(t, "film noir", m.Genre)
	assert.Equal(t, "approved", m.Rating)
	assert.Equal(t, catalog.KindMovie, m.Kind)
	assert.Empty(t, m.SeriesTitle, "series fields unset for movies")
	assert.Zero(t, m.Season)
	assert.Zero(t, m.Episode)
}

func TestNormalize_Defaults(t *testing.T) {
	m := Normalize(map[string]any{}, catalog.KindMovie, "some_item", BatchContext{})

	assert.Equal(t, "some_item", m.Title, "falls back to external identifier")
	assert.Nil(t, m.ReleaseYear)
	assert.Equal(t, DefaultGenre, m.Genre)
	assert.Equal(t, DefaultRating, m.Rating)
}

func TestNormalize_YearFromDateField(t *testing.T) {
	raw := map[string]any{
		"date": "1950-04-21T00:00:00Z",
	}

	m := Normalize(raw, catalog.KindMovie, "x", BatchContext{})
	require.NotNil(t, m.ReleaseYear)
	assert.Equal(t, 1950, *m.ReleaseYear)
}

func TestNormalize_YearScansPastValuelessKeys(t *testing.T) {
	// A non-empty year field with no digit run must not mask a later
	// date-like field that carries one.
	raw := map[string]any{
		"year": "n/a",
		"date": "1945-01-01",
	}

	m := Normalize(raw, catalog.KindMovie, "x", BatchContext{})
	require.NotNil(t, m.ReleaseYear)
	assert.Equal(t, 1945, *m.ReleaseYear)
}

func TestNormalize_SeriesFields(t *testing.T) {
	raw := map[string]any{
		"title":   "The Lost Special - Chapter 3",
		"show":    "The Lost Special",
		"season":  "Season 1",
		"episode": "3",
	}
	batch := BatchContext{SeriesTitle: "Fallback Show", Season: 2, StartEpisode: 10}

	m := Normalize(raw, catalog.KindSeries, "x", batch)

	assert.Equal(t, "The Lost Special", m.SeriesTitle)
	assert.Equal(t, 1, m.Season, "explicit season wins over batch default")
	assert.Equal(t, 3, m.Episode)
}

func TestNormalize_EpisodeFallbackSequence(t *testing.T) {
	// Three items with no episode metadata, starting at episode 5, must be
	// numbered 5, 6, 7 in input order.
	batch := BatchContext{SeriesTitle: "Show", Season: 1, StartEpisode: 5}

	for i, want := range []int{5, 6, 7} {
		batch.ItemIndex = i
		m := Normalize(map[string]any{}, catalog.KindSeries, fmt.Sprintf("item_%d", i), batch)
		assert.Equal(t, want, m.Episode)
		assert.Equal(t, 1, m.Season)
		assert.Equal(t, "Show", m.SeriesTitle)
	}
}

func TestNormalize_Pure(t *testing.T) {
	raw := map[string]any{
		"title":   "Detour",
		"year":    "1945",
		"subject": []any{"noir"},
	}
	batch := BatchContext{ItemIndex: 2, StartEpisode: 1}

	first := Normalize(raw, catalog.KindSeries, "detour_1945", batch)
	second := Normalize(raw, catalog.KindSeries, "detour_1945", batch)
	assert.Equal(t, first, second)
}

func TestScalar(t *testing.T) {
	tests := []struct {
		input any
		want  string
	}{
		{"plain", "plain"},
		{[]any{"first", "second"}, "first"},
		{[]string{"first"}, "first"},
		{[]any{}, ""},
		{42, "42"},
		{nil, ""},
		{"  padded  ", "padded"},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, scalar(tt.input), "scalar(%v)", tt.input)
	}
}
