package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"
)

// Client wraps HTTP calls to the reelarr server.
type Client struct {
	baseURL    string
	httpClient *http.Client
}

// NewClient creates a new reelarr API client.
func NewClient(serverURL string) *Client {
	return &Client{
		baseURL: serverURL,
		httpClient: &http.Client{
			Timeout: 5 * time.Minute, // imports can run long
		},
	}
}

func (c *Client) get(path string, result any) error {
	resp, err := c.httpClient.Get(c.baseURL + path)
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("server error %d: %s", resp.StatusCode, string(body))
	}

	return json.NewDecoder(resp.Body).Decode(result)
}

func (c *Client) post(path string, body any, result any) error {
	jsonBody, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("marshal error: %w", err)
	}

	resp, err := c.httpClient.Post(c.baseURL+path, "application/json", bytes.NewReader(jsonBody))
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusCreated {
		respBody, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("server error %d: %s", resp.StatusCode, string(respBody))
	}

	if result != nil {
		return json.NewDecoder(resp.Body).Decode(result)
	}
	return nil
}

func (c *Client) delete(path string) error {
	req, err := http.NewRequest(http.MethodDelete, c.baseURL+path, nil)
	if err != nil {
		return fmt.Errorf("request creation failed: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusNoContent {
		body, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("server error %d: %s", resp.StatusCode, string(body))
	}

	return nil
}

// API response types (mirror server types)

type StatusResponse struct {
	Status       string `json:"status"`
	Version      string `json:"version"`
	CatalogTotal int    `json:"catalog_total"`
	ImportReady  bool   `json:"import_ready"`
}

type ImportRequest struct {
	Query                   string `json:"query"`
	Limit                   int    `json:"limit"`
	Kind                    string `json:"kind,omitempty"`
	AllowSecondaryContainer bool   `json:"allow_secondary_container,omitempty"`
	SeriesTitle             string `json:"series_title,omitempty"`
	SeasonNumber            int    `json:"season_number,omitempty"`
	StartEpisodeNumber      int    `json:"start_episode_number,omitempty"`
}

type ImportItemResult struct {
	ExternalID      string  `json:"external_id"`
	Title           string  `json:"title,omitempty"`
	Status          string  `json:"status"`
	Reason          string  `json:"reason,omitempty"`
	FileName        string  `json:"file_name,omitempty"`
	PlaybackURL     string  `json:"playback_url,omitempty"`
	SizeBytes       int64   `json:"size_bytes,omitempty"`
	DurationSeconds float64 `json:"duration_seconds,omitempty"`
}

type ImportSummary struct {
	Requested int `json:"requested"`
	Imported  int `json:"imported"`
	Updated   int `json:"updated"`
	Skipped   int `json:"skipped"`
	Failed    int `json:"failed"`
}

type ImportResponse struct {
	Summary ImportSummary      `json:"summary"`
	Results []ImportItemResult `json:"results"`
}

type CatalogRecordResponse struct {
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
}

type ListCatalogResponse struct {
	Items  []CatalogRecordResponse `json:"items"`
	Total  int                     `json:"total"`
	Limit  int                     `json:"limit"`
	Offset int                     `json:"offset"`
}

type HistoryEntryResponse struct {
	ID         int64           `json:"id"`
	ExternalID string          `json:"external_id"`
	Event      string          `json:"event"`
	Data       json.RawMessage `json:"data,omitempty"`
	CreatedAt  string          `json:"created_at"`
}

type ListHistoryResponse struct {
	Items []HistoryEntryResponse `json:"items"`
}

// API methods

func (c *Client) Status() (*StatusResponse, error) {
	var resp StatusResponse
	if err := c.get("/api/v1/status", &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

func (c *Client) Import(req *ImportRequest) (*ImportResponse, error) {
	var resp ImportResponse
	if err := c.post("/api/v1/import", req, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

func (c *Client) Catalog(kind, query string, limit, offset int) (*ListCatalogResponse, error) {
	params := url.Values{}
	if kind != "" {
		params.Set("kind", kind)
	}
	if query != "" {
		params.Set("q", query)
	}
	params.Set("limit", fmt.Sprintf("%d", limit))
	params.Set("offset", fmt.Sprintf("%d", offset))

	var resp ListCatalogResponse
	if err := c.get("/api/v1/catalog?"+params.Encode(), &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

func (c *Client) CatalogItem(id int64) (*CatalogRecordResponse, error) {
	var resp CatalogRecordResponse
	if err := c.get(fmt.Sprintf("/api/v1/catalog/%d", id), &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

func (c *Client) DeleteCatalogItem(id int64) error {
	return c.delete(fmt.Sprintf("/api/v1/catalog/%d", id))
}

func (c *Client) History(event string, limit int) (*ListHistoryResponse, error) {
	params := url.Values{}
	if event != "" {
		params.Set("event", event)
	}
	params.Set("limit", fmt.Sprintf("%d", limit))

	var resp ListHistoryResponse
	if err := c.get("/api/v1/history?"+params.Encode(), &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}
