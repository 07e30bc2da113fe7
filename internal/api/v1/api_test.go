// internal/api/v1/api_test.go
package v1

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	_ "modernc.org/sqlite"

	"github.com/vmunix/reelarr/internal/archive"
	"github.com/vmunix/reelarr/internal/catalog"
	"github.com/vmunix/reelarr/internal/importer"
	"github.com/vmunix/reelarr/internal/migrations"
)

func setupTestDB(t *testing.T) *sql.DB {
	t.Helper()
	db, err := sql.Open("sqlite", ":memory:?_foreign_keys=on")
	require.NoError(t, err, "open db")
	t.Cleanup(func() { _ = db.Close() })

	_, err = db.Exec(migrations.InitialSQL)
	require.NoError(t, err, "apply schema")
	return db
}

// stubImporter returns a canned result or error.
type stubImporter struct {
	result *importer.BatchResult
	err    error
	got    importer.Request
}

func (s *stubImporter) Run(_ context.Context, req importer.Request) (*importer.BatchResult, error) {
	s.got = req
	if s.err != nil {
		return nil, s.err
	}
	return s.result, nil
}

func testServer(t *testing.T, db *sql.DB, imp Importer) *httptest.Server {
	t.Helper()
	srv, err := New(ServerDeps{
		Catalog:  catalog.NewStore(db),
		History:  catalog.NewHistoryStore(db),
		Importer: imp,
	}, slog.New(slog.NewTextHandler(io.Discard, nil)), "test")
	require.NoError(t, err)

	mux := http.NewServeMux()
	srv.RegisterRoutes(mux)
	ts := httptest.NewServer(mux)
	t.Cleanup(ts.Close)
	return ts
}

func insertTestRecord(t *testing.T, db *sql.DB, externalID, title string, kind catalog.Kind) int64 {
	t.Helper()
	store := catalog.NewStore(db)
	year := 1962
	rec := &catalog.Record{
		ExternalID:  externalID,
		Title:       title,
		Year:        &year,
		Genre:       "Horror",
		Rating:      "Not Rated",
		Kind:        kind,
		FileName:    "f.mp4",
		PlaybackURL: "https://archive.example/download/" + externalID + "/f.mp4",
	}
	_, err := store.Upsert(rec)
	require.NoError(t, err)
	return rec.ID
}

func TestNew_MissingDeps(t *testing.T) {
	_, err := New(ServerDeps{}, nil, "test")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "catalog store")
}

func TestImport_Success(t *testing.T) {
	db := setupTestDB(t)
	imp := &stubImporter{result: &importer.BatchResult{
		Summary: importer.Summary{Requested: 2, Imported: 1, Skipped: 1},
		Results: []importer.ItemResult{
			{ExternalID: "a", Status: importer.StatusImported},
			{ExternalID: "b", Status: importer.StatusSkipped, Reason: "no playable file found"},
		},
	}}
	ts := testServer(t, db, imp)

	body := `{"query": "night of the living dead", "limit": 2}`
	resp, err := http.Post(ts.URL+"/api/v1/import", "application/json", strings.NewReader(body))
	require.NoError(t, err)
	defer resp.Body.Close()

	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "night of the living dead", imp.got.Query)

	var res importer.BatchResult
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&res))
	assert.Equal(t, 2, res.Summary.Requested)
	assert.Len(t, res.Results, 2)
}

func TestImport_PartialFailureStill200(t *testing.T) {
	db := setupTestDB(t)
	imp := &stubImporter{result: &importer.BatchResult{
		Summary: importer.Summary{Requested: 1, Failed: 1},
		Results: []importer.ItemResult{{ExternalID: "a", Status: importer.StatusFailed, Reason: "metadata fetch failed"}},
	}}
	ts := testServer(t, db, imp)

	resp, err := http.Post(ts.URL+"/api/v1/import", "application/json",
		strings.NewReader(`{"query": "x", "limit": 1}`))
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusOK, resp.StatusCode, "item failures are reported in the body")
}

func TestImport_InvalidJSON(t *testing.T) {
	ts := testServer(t, setupTestDB(t), &stubImporter{})

	resp, err := http.Post(ts.URL+"/api/v1/import", "application/json", strings.NewReader("{not json"))
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestImport_InvalidRequest(t *testing.T) {
	imp := &stubImporter{err: fmt.Errorf("%w: query is required", importer.ErrInvalidRequest)}
	ts := testServer(t, setupTestDB(t), imp)

	resp, err := http.Post(ts.URL+"/api/v1/import", "application/json", strings.NewReader(`{"limit": 1}`))
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestImport_ArchiveUnavailable(t *testing.T) {
	imp := &stubImporter{err: fmt.Errorf("archive search: %w", archive.ErrUnavailable)}
	ts := testServer(t, setupTestDB(t), imp)

	resp, err := http.Post(ts.URL+"/api/v1/import", "application/json",
		strings.NewReader(`{"query": "x", "limit": 1}`))
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusServiceUnavailable, resp.StatusCode)
}

func TestImport_NotConfigured(t *testing.T) {
	ts := testServer(t, setupTestDB(t), nil)

	resp, err := http.Post(ts.URL+"/api/v1/import", "application/json",
		strings.NewReader(`{"query": "x", "limit": 1}`))
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusServiceUnavailable, resp.StatusCode)
}

func TestListCatalog_Empty(t *testing.T) {
	ts := testServer(t, setupTestDB(t), nil)

	resp, err := http.Get(ts.URL + "/api/v1/catalog")
	require.NoError(t, err)
	defer resp.Body.Close()

	require.Equal(t, http.StatusOK, resp.StatusCode)

	var res listCatalogResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&res))
	assert.Equal(t, 0, res.Total)
	assert.Empty(t, res.Items)
}

func TestListCatalog_KindFilter(t *testing.T) {
	db := setupTestDB(t)
	insertTestRecord(t, db, "movie-1", "Carnival of Souls", catalog.KindMovie)
	insertTestRecord(t, db, "ep-1", "Old Mysteries E01", catalog.KindSeries)
	ts := testServer(t, db, nil)

	resp, err := http.Get(ts.URL + "/api/v1/catalog?kind=movie")
	require.NoError(t, err)
	defer resp.Body.Close()

	var res listCatalogResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&res))
	require.Equal(t, 1, res.Total)
	assert.Equal(t, "movie-1", res.Items[0].ExternalID)
}

func TestListCatalog_InvalidKind(t *testing.T) {
	ts := testServer(t, setupTestDB(t), nil)

	resp, err := http.Get(ts.URL + "/api/v1/catalog?kind=podcast")
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestListCatalog_TitleQuery(t *testing.T) {
	db := setupTestDB(t)
	insertTestRecord(t, db, "movie-1", "Carnival of Souls", catalog.KindMovie)
	insertTestRecord(t, db, "movie-2", "Detour", catalog.KindMovie)
	ts := testServer(t, db, nil)

	resp, err := http.Get(ts.URL + "/api/v1/catalog?q=carnival")
	require.NoError(t, err)
	defer resp.Body.Close()

	var res listCatalogResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&res))
	require.Equal(t, 1, res.Total)
	assert.Equal(t, "Carnival of Souls", res.Items[0].Title)
}

func TestGetCatalogItem(t *testing.T) {
	db := setupTestDB(t)
	id := insertTestRecord(t, db, "movie-1", "Carnival of Souls", catalog.KindMovie)
	ts := testServer(t, db, nil)

	resp, err := http.Get(fmt.Sprintf("%s/api/v1/catalog/%d", ts.URL, id))
	require.NoError(t, err)
	defer resp.Body.Close()

	require.Equal(t, http.StatusOK, resp.StatusCode)

	var rec recordResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&rec))
	assert.Equal(t, "Carnival of Souls", rec.Title)
	require.NotNil(t, rec.Year)
	assert.Equal(t, 1962, *rec.Year)
}

func TestGetCatalogItem_NotFound(t *testing.T) {
	ts := testServer(t, setupTestDB(t), nil)

	resp, err := http.Get(ts.URL + "/api/v1/catalog/9999")
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestGetCatalogItem_InvalidID(t *testing.T) {
	ts := testServer(t, setupTestDB(t), nil)

	resp, err := http.Get(ts.URL + "/api/v1/catalog/abc")
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestDeleteCatalogItem(t *testing.T) {
	db := setupTestDB(t)
	id := insertTestRecord(t, db, "movie-1", "Carnival of Souls", catalog.KindMovie)
	ts := testServer(t, db, nil)

	req, err := http.NewRequest(http.MethodDelete, fmt.Sprintf("%s/api/v1/catalog/%d", ts.URL, id), nil)
	require.NoError(t, err)
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	require.Equal(t, http.StatusNoContent, resp.StatusCode)

	_, err = catalog.NewStore(db).Get(id)
	assert.ErrorIs(t, err, catalog.ErrNotFound)
}

func TestListHistory(t *testing.T) {
	db := setupTestDB(t)
	hs := catalog.NewHistoryStore(db)
	require.NoError(t, hs.Add(&catalog.HistoryEntry{ExternalID: "movie-1", Event: catalog.EventImported, Data: `{"status":"imported"}`}))
	require.NoError(t, hs.Add(&catalog.HistoryEntry{ExternalID: "movie-2", Event: catalog.EventFailed}))
	ts := testServer(t, db, nil)

	resp, err := http.Get(ts.URL + "/api/v1/history?event=imported")
	require.NoError(t, err)
	defer resp.Body.Close()

	require.Equal(t, http.StatusOK, resp.StatusCode)

	var res listHistoryResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&res))
	require.Len(t, res.Items, 1)
	assert.Equal(t, "movie-1", res.Items[0].ExternalID)
	assert.JSONEq(t, `{"status":"imported"}`, string(res.Items[0].Data))
}

func TestGetStatus(t *testing.T) {
	db := setupTestDB(t)
	insertTestRecord(t, db, "movie-1", "Carnival of Souls", catalog.KindMovie)
	ts := testServer(t, db, &stubImporter{})

	resp, err := http.Get(ts.URL + "/api/v1/status")
	require.NoError(t, err)
	defer resp.Body.Close()

	require.Equal(t, http.StatusOK, resp.StatusCode)

	var st statusResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&st))
	assert.Equal(t, "ok", st.Status)
	assert.Equal(t, "test", st.Version)
	assert.Equal(t, 1, st.CatalogTotal)
	assert.True(t, st.ImportReady)
}
