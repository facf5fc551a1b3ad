package handlers

import (
	"net/http"
	"sort"

	"github.com/MrSnakeDoc/navkit/internal/httpserver/deps"
	"github.com/MrSnakeDoc/navkit/internal/logger"
)

type prefixUsage struct {
	Prefix string `json:"prefix"`
	Count  int64  `json:"count"`
}

type usageResponse struct {
	Total    int64         `json:"total"`
	Prefixes []prefixUsage `json:"prefixes"`
}

// Usage reports how often each sidebar prefix was resolved, most used first.
// Unmatched paths are counted under the empty prefix.
func Usage(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if d.Usage == nil {
			writeError(w, http.StatusServiceUnavailable, "usage tracking requires redis")
			return
		}

		stats, err := d.Usage.GetUsageStats(r.Context())
		if err != nil {
			d.Logger.Error("failed to read usage stats", logger.Error(err))
			writeError(w, http.StatusInternalServerError, "failed to read usage stats")
			return
		}

		resp := usageResponse{Prefixes: make([]prefixUsage, 0, len(stats))}
		for prefix, n := range stats {
			resp.Total += n
			resp.Prefixes = append(resp.Prefixes, prefixUsage{Prefix: prefix, Count: n})
		}
		sort.Slice(resp.Prefixes, func(i, j int) bool {
			a, b := resp.Prefixes[i], resp.Prefixes[j]
			if a.Count != b.Count {
				return a.Count > b.Count
			}
			return a.Prefix < b.Prefix
		})
		writeJSON(w, http.StatusOK, resp)
	}
}
