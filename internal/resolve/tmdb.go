package resolve

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/vmunix/reelarr/internal/catalog"
	"github.com/vmunix/reelarr/pkg/title"
)

const (
	tmdbDefaultBaseURL = "https://api.themoviedb.org"
	tmdbImageBaseURL   = "https://image.tmdb.org/t/p/w500"
)

// TMDB resolves posters against a strict categorical catalog. Every search
// result is scored against the query title and the top scorer is accepted
// only when it clears the minimum-confidence threshold.
type TMDB struct {
	apiKey     string
	baseURL    string
	imageBase  string
	minScore   int
	httpClient *http.Client
}

// TMDBOption configures a TMDB provider.
type TMDBOption func(*TMDB)

// WithTMDBBaseURL sets a custom base URL (for testing).
func WithTMDBBaseURL(url string) TMDBOption {
	return func(t *TMDB) {
		t.baseURL = url
	}
}

// WithTMDBHTTPClient sets a custom HTTP client.
func WithTMDBHTTPClient(hc *http.Client) TMDBOption {
	return func(t *TMDB) {
		t.httpClient = hc
	}
}

// WithTMDBMinScore overrides the acceptance threshold.
func WithTMDBMinScore(min int) TMDBOption {
	return func(t *TMDB) {
		t.minScore = min
	}
}

// NewTMDB creates a TMDB provider.
func NewTMDB(apiKey string, opts ...TMDBOption) *TMDB {
	t := &TMDB{
		apiKey:    apiKey,
		baseURL:   tmdbDefaultBaseURL,
		imageBase: tmdbImageBaseURL,
		minScore:  title.DefaultMinScore,
		httpClient: &http.Client{
			Timeout: 8 * time.Second,
		},
	}
	for _, opt := range opts {
		opt(t)
	}
	return t
}

// Name implements Provider.
func (t *TMDB) Name() string { return "tmdb" }

type tmdbSearchResponse struct {
	Results []tmdbResult `json:"results"`
}

type tmdbResult struct {
	ID           int64  `json:"id"`
	Title        string `json:"title"`          // movies
	Name         string `json:"name"`           // tv
	ReleaseDate  string `json:"release_date"`   // movies, "1945-11-30"
	FirstAirDate string `json:"first_air_date"` // tv
	PosterPath   string `json:"poster_path"`
}

func (r tmdbResult) title() string {
	if r.Title != "" {
		return r.Title
	}
	return r.Name
}

func (r tmdbResult) year() int {
	date := r.ReleaseDate
	if date == "" {
		date = r.FirstAirDate
	}
	if len(date) < 4 {
		return 0
	}
	year, _ := strconv.Atoi(date[:4])
	return year
}

// Resolve searches the catalog and accepts the best-scoring result when it
// meets the confidence threshold. The query itself carries no year; year
// proximity contributes to scoring only when both sides know one.
func (t *TMDB) Resolve(ctx context.Context, rawTitle string, year int, kind catalog.Kind) (*Poster, error) {
	query := title.Sanitize(rawTitle)
	if query == "" {
		return nil, nil
	}

	endpoint := "/3/search/movie"
	if kind == catalog.KindSeries {
		endpoint = "/3/search/tv"
	}

	params := url.Values{}
	params.Set("api_key", t.apiKey)
	params.Set("query", query)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, t.baseURL+endpoint+"?"+params.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}

	resp, err := t.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("execute request: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("TMDB API error: %s", resp.Status)
	}

	var sr tmdbSearchResponse
	if err := json.NewDecoder(resp.Body).Decode(&sr); err != nil {
		return nil, fmt.Errorf("decode response: %w", err)
	}

	best := -1
	bestScore := 0
	for i, result := range sr.Results {
		if result.PosterPath == "" {
			continue
		}
		score := title.Score(query, result.title(), year, result.year())
		if score > bestScore {
			best = i
			bestScore = score
		}
	}

	if best == -1 || bestScore < t.minScore {
		return nil, nil
	}

	chosen := sr.Results[best]
	return &Poster{
		URL:         t.imageBase + chosen.PosterPath,
		Source:      catalog.PosterSourceTMDB,
		ReferenceID: strconv.FormatInt(chosen.ID, 10),
	}, nil
}
