package handlers

import (
	"net/http"

	"github.com/MrSnakeDoc/navkit/internal/httpserver/deps"
)

type readyzResponse struct {
	Ready      bool   `json:"ready"`
	Checksum   string `json:"checksum,omitempty"`
	Generation uint64 `json:"generation"`
}

// Readyz reports ready once a site model is being served
func Readyz(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Cache-Control", "no-store")

		resp := readyzResponse{
			Ready:      d.Index.Ready(),
			Checksum:   d.Index.Checksum(),
			Generation: d.Index.Generation(),
		}
		status := http.StatusOK
		if !resp.Ready {
			status = http.StatusServiceUnavailable
		}
		writeJSON(w, status, resp)
	}
}
