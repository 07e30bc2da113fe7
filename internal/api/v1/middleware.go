package v1

import "net/http"

// requireImporter wraps a handler and returns 503 if the importer is not configured.
func (s *Server) requireImporter(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if s.deps.Importer == nil {
			writeError(w, http.StatusServiceUnavailable, "SERVICE_UNAVAILABLE", "Importer not configured")
			return
		}
		next(w, r)
	}
}
