package resolve

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vmunix/reelarr/internal/catalog"
)

func TestOMDb_ExactHit(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "test-key", r.URL.Query().Get("apikey"))
		assert.Equal(t, "Detour", r.URL.Query().Get("t"))
		assert.Equal(t, "movie", r.URL.Query().Get("type"))

		_, _ = w.Write([]byte(`{"Response":"True","Title":"Detour","Year":"1945","Poster":"http://img/detour.jpg","imdbID":"tt0037638"}`))
	}))
	defer server.Close()

	provider := NewOMDb("test-key", WithOMDbBaseURL(server.URL))

	poster, err := provider.Resolve(context.Background(), "Detour", 1945, catalog.KindMovie)
	require.NoError(t, err)
	require.NotNil(t, poster)
	assert.Equal(t, "http://img/detour.jpg", poster.URL)
	assert.Equal(t, catalog.PosterSourceOMDb, poster.Source)
	assert.Equal(t, "tt0037638", poster.ReferenceID)
}

func TestOMDb_ExactHitFailsSimilarityGate(t *testing.T) {
	calls := 0
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		if r.URL.Query().Get("t") != "" {
			// Loose match that is clearly a different work.
			_, _ = w.Write([]byte(`{"Response":"True","Title":"Completely Different Film","Poster":"http://img/wrong.jpg","imdbID":"tt0000001"}`))
			return
		}
		_, _ = w.Write([]byte(`{"Response":"False","Error":"Movie not found!"}`))
	}))
	defer server.Close()

	provider := NewOMDb("test-key", WithOMDbBaseURL(server.URL))

	poster, err := provider.Resolve(context.Background(), "Detour", 0, catalog.KindMovie)
	require.NoError(t, err)
	assert.Nil(t, poster)
	assert.Equal(t, 2, calls, "falls through to fuzzy search")
}

func TestOMDb_FuzzyFallbackWithDetail(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		switch {
		case q.Get("t") != "":
			_, _ = w.Write([]byte(`{"Response":"False","Error":"Movie not found!"}`))
		case q.Get("s") != "":
			// First hit has no poster, forcing a detail call.
			_, _ = w.Write([]byte(`{"Response":"True","Search":[{"Title":"The Hitch-Hiker","Year":"1953","imdbID":"tt0045877","Poster":"N/A"}]}`))
		case q.Get("i") == "tt0045877":
			_, _ = w.Write([]byte(`{"Response":"True","Title":"The Hitch-Hiker","Poster":"http://img/hitchhiker.jpg","imdbID":"tt0045877"}`))
		default:
			w.WriteHeader(http.StatusBadRequest)
		}
	}))
	defer server.Close()

	provider := NewOMDb("test-key", WithOMDbBaseURL(server.URL))

	poster, err := provider.Resolve(context.Background(), "Hitch-Hiker", 0, catalog.KindMovie)
	require.NoError(t, err)
	require.NotNil(t, poster)
	assert.Equal(t, "http://img/hitchhiker.jpg", poster.URL)
	assert.Equal(t, "tt0045877", poster.ReferenceID)
}

func TestOMDb_SeriesType(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "series", r.URL.Query().Get("type"))
		_, _ = w.Write([]byte(`{"Response":"False","Error":"Series not found!"}`))
	}))
	defer server.Close()

	provider := NewOMDb("test-key", WithOMDbBaseURL(server.URL))

	poster, err := provider.Resolve(context.Background(), "The Lost Special", 0, catalog.KindSeries)
	require.NoError(t, err)
	assert.Nil(t, poster)
}
