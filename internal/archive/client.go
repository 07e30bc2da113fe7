package archive

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"time"
)

const defaultBaseURL = "https://archive.org"

const (
	// SearchLimitMax caps how many identifiers one search may return.
	SearchLimitMax = 100

	defaultTimeout = 8 * time.Second
)

// Client talks to the archive's search, metadata, and download endpoints.
// It never retries; retry policy belongs to the caller.
type Client struct {
	baseURL    string
	httpClient *http.Client
	log        *slog.Logger
}

// Option configures a Client.
type Option func(*Client)

// WithBaseURL sets a custom base URL (for testing).
func WithBaseURL(url string) Option {
	return func(c *Client) {
		c.baseURL = url
	}
}

// WithHTTPClient sets a custom HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		c.httpClient = hc
	}
}

// WithLogger sets a logger for debug output.
func WithLogger(log *slog.Logger) Option {
	return func(c *Client) {
		c.log = log.With("component", "archive")
	}
}

// NewClient creates a new archive client.
func NewClient(opts ...Option) *Client {
	c := &Client{
		baseURL: defaultBaseURL,
		httpClient: &http.Client{
			Timeout: defaultTimeout,
		},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// searchResponse is the advancedsearch JSON envelope.
type searchResponse struct {
	Response struct {
		Docs []struct {
			Identifier string `json:"identifier"`
		} `json:"docs"`
	} `json:"response"`
}

// Search queries the archive for item identifiers matching a free-text
// query, ordered by provider relevance. limit is clamped to 1..SearchLimitMax.
func (c *Client) Search(ctx context.Context, query string, limit int) ([]string, error) {
	if limit < 1 {
		limit = 1
	}
	if limit > SearchLimitMax {
		limit = SearchLimitMax
	}

	params := url.Values{}
	params.Set("q", query)
	params.Add("fl[]", "identifier")
	params.Set("rows", strconv.Itoa(limit))
	params.Set("output", "json")

	reqURL := c.baseURL + "/advancedsearch.php?" + params.Encode()
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	defer func() { _ = resp.Body.Close() }()

	if err := checkResponse(resp); err != nil {
		return nil, fmt.Errorf("search: %w", err)
	}

	var sr searchResponse
	if err := json.NewDecoder(resp.Body).Decode(&sr); err != nil {
		return nil, fmt.Errorf("decode search response: %w", err)
	}

	ids := make([]string, 0, len(sr.Response.Docs))
	for _, doc := range sr.Response.Docs {
		if doc.Identifier == "" {
			continue
		}
		ids = append(ids, doc.Identifier)
		if len(ids) == limit {
			break
		}
	}

	if c.log != nil {
		c.log.Debug("search completed", "query", query, "results", len(ids), "duration_ms", time.Since(start).Milliseconds())
	}

	return ids, nil
}

// metadataResponse is the metadata endpoint envelope. Both blocks may be
// empty or missing on sparse items.
type metadataResponse struct {
	Metadata map[string]any `json:"metadata"`
	Files    []fileDoc      `json:"files"`
}

// Fetch retrieves the raw metadata map and file list for one item.
func (c *Client) Fetch(ctx context.Context, identifier string) (*Item, error) {
	reqURL := c.baseURL + "/metadata/" + url.PathEscape(identifier)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	defer func() { _ = resp.Body.Close() }()

	if err := checkResponse(resp); err != nil {
		return nil, fmt.Errorf("fetch %s: %w", identifier, err)
	}

	var mr metadataResponse
	if err := json.NewDecoder(resp.Body).Decode(&mr); err != nil {
		return nil, fmt.Errorf("decode metadata for %s: %w", identifier, err)
	}

	item := &Item{
		Identifier: identifier,
		Metadata:   mr.Metadata,
		Files:      make([]File, 0, len(mr.Files)),
	}
	if item.Metadata == nil {
		item.Metadata = map[string]any{}
	}
	for _, doc := range mr.Files {
		f := doc.toFile()
		if f.Name == "" {
			continue
		}
		item.Files = append(item.Files, f)
	}

	if c.log != nil {
		c.log.Debug("fetched item", "identifier", identifier, "files", len(item.Files))
	}

	return item, nil
}

// DownloadURL builds the deterministic playback URL for a file. No network
// call is made.
func (c *Client) DownloadURL(identifier, fileName string) string {
	return c.baseURL + "/download/" + url.PathEscape(identifier) + "/" + url.PathEscape(fileName)
}

// checkResponse maps HTTP status codes to sentinel errors.
func checkResponse(resp *http.Response) error {
	switch {
	case resp.StatusCode == http.StatusOK:
		return nil
	case resp.StatusCode == http.StatusNotFound:
		return ErrNotFound
	case resp.StatusCode >= 500:
		return fmt.Errorf("%w: status %d", ErrUnavailable, resp.StatusCode)
	default:
		return fmt.Errorf("archive API error: %s", resp.Status)
	}
}
