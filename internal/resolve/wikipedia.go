package resolve

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/vmunix/reelarr/internal/catalog"
	"github.com/vmunix/reelarr/pkg/title"
)

const wikipediaDefaultBaseURL = "https://en.wikipedia.org"

// wikipediaSearchHits caps how many search hits are checked for a thumbnail.
const wikipediaSearchHits = 5

// Wikipedia is the last-resort provider: a full-text encyclopedia search
// followed by a page-image lookup. No scoring is applied; the first
// thumbnail across the top hits wins.
type Wikipedia struct {
	baseURL    string
	httpClient *http.Client
}

// WikipediaOption configures a Wikipedia provider.
type WikipediaOption func(*Wikipedia)

// WithWikipediaBaseURL sets a custom base URL (for testing).
func WithWikipediaBaseURL(url string) WikipediaOption {
	return func(w *Wikipedia) {
		w.baseURL = url
	}
}

// WithWikipediaHTTPClient sets a custom HTTP client.
func WithWikipediaHTTPClient(hc *http.Client) WikipediaOption {
	return func(w *Wikipedia) {
		w.httpClient = hc
	}
}

// NewWikipedia creates a Wikipedia provider.
func NewWikipedia(opts ...WikipediaOption) *Wikipedia {
	w := &Wikipedia{
		baseURL: wikipediaDefaultBaseURL,
		httpClient: &http.Client{
			Timeout: 8 * time.Second,
		},
	}
	for _, opt := range opts {
		opt(w)
	}
	return w
}

// Name implements Provider.
func (w *Wikipedia) Name() string { return "wikipedia" }

type wikiSearchResponse struct {
	Query struct {
		Search []struct {
			PageID int64  `json:"pageid"`
			Title  string `json:"title"`
		} `json:"search"`
	} `json:"query"`
}

type wikiImagesResponse struct {
	Query struct {
		Pages map[string]struct {
			PageID    int64 `json:"pageid"`
			Thumbnail *struct {
				Source string `json:"source"`
			} `json:"thumbnail"`
		} `json:"pages"`
	} `json:"query"`
}

// Resolve issues a full-text search for "{title} film" (or "{title} tv
// series") and returns the first page-image thumbnail among the top hits.
func (w *Wikipedia) Resolve(ctx context.Context, rawTitle string, _ int, kind catalog.Kind) (*Poster, error) {
	query := title.Sanitize(rawTitle)
	if query == "" {
		return nil, nil
	}

	intent := "film"
	if kind == catalog.KindSeries {
		intent = "tv series"
	}

	var sr wikiSearchResponse
	err := w.get(ctx, url.Values{
		"action":   {"query"},
		"list":     {"search"},
		"srsearch": {query + " " + intent},
		"srlimit":  {strconv.Itoa(wikipediaSearchHits)},
		"format":   {"json"},
	}, &sr)
	if err != nil {
		return nil, err
	}
	if len(sr.Query.Search) == 0 {
		return nil, nil
	}

	pageIDs := make([]string, 0, len(sr.Query.Search))
	for _, hit := range sr.Query.Search {
		pageIDs = append(pageIDs, strconv.FormatInt(hit.PageID, 10))
	}

	var ir wikiImagesResponse
	err = w.get(ctx, url.Values{
		"action":      {"query"},
		"prop":        {"pageimages"},
		"pithumbsize": {"500"},
		"pageids":     {strings.Join(pageIDs, "|")},
		"format":      {"json"},
	}, &ir)
	if err != nil {
		return nil, err
	}

	// Walk hits in search-relevance order; the pages map is unordered.
	for _, id := range pageIDs {
		page, ok := ir.Query.Pages[id]
		if !ok || page.Thumbnail == nil || page.Thumbnail.Source == "" {
			continue
		}
		return &Poster{
			URL:    page.Thumbnail.Source,
			Source: catalog.PosterSourceWikipedia,
		}, nil
	}

	return nil, nil
}

func (w *Wikipedia) get(ctx context.Context, params url.Values, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, w.baseURL+"/w/api.php?"+params.Encode(), nil)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}

	resp, err := w.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("execute request: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("Wikipedia API error: %s", resp.Status)
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}
