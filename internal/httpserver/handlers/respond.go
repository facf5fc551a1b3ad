package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/MrSnakeDoc/navkit/internal/domain"
	"github.com/MrSnakeDoc/navkit/internal/httpserver/deps"
	"github.com/MrSnakeDoc/navkit/internal/logger"
)

type errorResponse struct {
	Error string `json:"error"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, errorResponse{Error: msg})
}

// currentSite returns the served model, answering 503 when none is loaded yet.
func currentSite(w http.ResponseWriter, d deps.Deps) (*domain.Site, bool) {
	s := d.Index.Current()
	if s == nil {
		d.Logger.Warn("request before any site model was loaded")
		writeError(w, http.StatusServiceUnavailable, "site model not loaded")
		return nil, false
	}
	return s, true
}

// notModified handles conditional GETs: the model checksum is the ETag of
// every read-only model endpoint.
func notModified(w http.ResponseWriter, r *http.Request, s *domain.Site) bool {
	etag := `"` + s.Checksum + `"`
	w.Header().Set("ETag", etag)
	w.Header().Set("Cache-Control", "no-cache")
	if r.Header.Get("If-None-Match") == etag {
		w.WriteHeader(http.StatusNotModified)
		return true
	}
	return false
}

func logWriteErr(d deps.Deps, err error) {
	if err != nil {
		d.Logger.Debug("failed to write response", logger.Error(err))
	}
}
