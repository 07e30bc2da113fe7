// Package v1 implements the native REST API.
package v1

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/vmunix/reelarr/internal/archive"
	"github.com/vmunix/reelarr/internal/catalog"
	"github.com/vmunix/reelarr/internal/importer"
)

// Server is the v1 API server.
type Server struct {
	deps    ServerDeps
	log     *slog.Logger
	version string
}

// New creates a new v1 API server.
func New(deps ServerDeps, log *slog.Logger, version string) (*Server, error) {
	if err := deps.Validate(); err != nil {
		return nil, err
	}
	if log == nil {
		log = slog.Default()
	}
	return &Server{
		deps:    deps,
		log:     log.With("component", "api"),
		version: version,
	}, nil
}

// RegisterRoutes registers API routes on the given mux.
func (s *Server) RegisterRoutes(mux *http.ServeMux) {
	// Import
	mux.HandleFunc("POST /api/v1/import", s.requireImporter(s.runImport))

	// Catalog
	mux.HandleFunc("GET /api/v1/catalog", s.listCatalog)
	mux.HandleFunc("GET /api/v1/catalog/{id}", s.getCatalogItem)
	mux.HandleFunc("DELETE /api/v1/catalog/{id}", s.deleteCatalogItem)

	// History
	mux.HandleFunc("GET /api/v1/history", s.listHistory)

	// System
	mux.HandleFunc("GET /api/v1/status", s.getStatus)
}

// Error response
type errorResponse struct {
	Error string `json:"error"`
	Code  string `json:"code"`
}

func writeError(w http.ResponseWriter, code int, errCode, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(errorResponse{Error: message, Code: errCode})
}

func writeJSON(w http.ResponseWriter, code int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(data)
}

// pathID extracts an integer ID from the URL path.
func pathID(r *http.Request, name string) (int64, error) {
	idStr := r.PathValue(name)
	if idStr == "" {
		return 0, fmt.Errorf("missing path parameter: %s", name)
	}
	return strconv.ParseInt(idStr, 10, 64)
}

// queryInt extracts an optional integer from query string.
func queryInt(r *http.Request, name string, defaultVal int) int {
	val := r.URL.Query().Get(name)
	if val == "" {
		return defaultVal
	}
	i, err := strconv.Atoi(val)
	if err != nil {
		return defaultVal
	}
	return i
}

// queryString extracts an optional string from query string.
func queryString(r *http.Request, name string) *string {
	val := r.URL.Query().Get(name)
	if val == "" {
		return nil
	}
	return &val
}

// Handlers

func (s *Server) runImport(w http.ResponseWriter, r *http.Request) {
	var req importer.Request
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "INVALID_JSON", err.Error())
		return
	}

	res, err := s.deps.Importer.Run(r.Context(), req)
	if err != nil {
		switch {
		case errors.Is(err, importer.ErrInvalidRequest):
			writeError(w, http.StatusBadRequest, "INVALID_REQUEST", err.Error())
		case errors.Is(err, archive.ErrUnavailable):
			writeError(w, http.StatusServiceUnavailable, "ARCHIVE_UNAVAILABLE", err.Error())
		default:
			writeError(w, http.StatusInternalServerError, "IMPORT_ERROR", err.Error())
		}
		return
	}

	// Per-item failures are reported inside the body, not via the status code.
	writeJSON(w, http.StatusOK, res)
}

func (s *Server) listCatalog(w http.ResponseWriter, r *http.Request) {
	filter := catalog.Filter{
		Limit:  queryInt(r, "limit", 50),
		Offset: queryInt(r, "offset", 0),
	}
	if filter.Limit < 0 || filter.Offset < 0 {
		writeError(w, http.StatusBadRequest, "INVALID_PAGINATION", "limit and offset must be non-negative")
		return
	}

	if kindStr := queryString(r, "kind"); kindStr != nil {
		kind := catalog.Kind(*kindStr)
		if !kind.Valid() {
			writeError(w, http.StatusBadRequest, "INVALID_KIND", "kind must be 'movie' or 'series'")
			return
		}
		filter.Kind = &kind
	}
	filter.Query = queryString(r, "q")

	items, total, err := s.deps.Catalog.List(filter)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "DB_ERROR", err.Error())
		return
	}

	resp := listCatalogResponse{
		Items:  make([]recordResponse, len(items)),
		Total:  total,
		Limit:  filter.Limit,
		Offset: filter.Offset,
	}
	for i, rec := range items {
		resp.Items[i] = recordToResponse(rec)
	}

	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) getCatalogItem(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		writeError(w, http.StatusBadRequest, "INVALID_ID", err.Error())
		return
	}

	rec, err := s.deps.Catalog.Get(id)
	if err != nil {
		if errors.Is(err, catalog.ErrNotFound) {
			writeError(w, http.StatusNotFound, "NOT_FOUND", "Catalog entry not found")
			return
		}
		writeError(w, http.StatusInternalServerError, "DB_ERROR", err.Error())
		return
	}

	writeJSON(w, http.StatusOK, recordToResponse(rec))
}

func (s *Server) deleteCatalogItem(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		writeError(w, http.StatusBadRequest, "INVALID_ID", err.Error())
		return
	}

	if err := s.deps.Catalog.Delete(id); err != nil {
		writeError(w, http.StatusInternalServerError, "DB_ERROR", err.Error())
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) listHistory(w http.ResponseWriter, r *http.Request) {
	filter := catalog.HistoryFilter{
		Limit:      queryInt(r, "limit", 50),
		ExternalID: queryString(r, "external_id"),
		Event:      queryString(r, "event"),
	}
	if filter.Limit < 0 {
		writeError(w, http.StatusBadRequest, "INVALID_PAGINATION", "limit must be non-negative")
		return
	}

	entries, err := s.deps.History.List(filter)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "DB_ERROR", err.Error())
		return
	}

	resp := listHistoryResponse{Items: make([]historyResponse, len(entries))}
	for i, e := range entries {
		resp.Items[i] = historyToResponse(e)
	}

	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) getStatus(w http.ResponseWriter, r *http.Request) {
	_, total, err := s.deps.Catalog.List(catalog.Filter{Limit: 1})
	if err != nil {
		writeError(w, http.StatusInternalServerError, "DB_ERROR", err.Error())
		return
	}

	writeJSON(w, http.StatusOK, statusResponse{
		Status:       "ok",
		Version:      s.version,
		CatalogTotal: total,
		ImportReady:  s.deps.Importer != nil,
	})
}
