package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/MrSnakeDoc/navkit/internal/httpserver/deps"
)

type componentStatus struct {
	OK         bool    `json:"ok"`
	Generation *uint64 `json:"generation,omitempty"`
	Checksum   string  `json:"checksum,omitempty"`
	LastReload string  `json:"last_reload,omitempty"`
	Mode       string  `json:"mode,omitempty"`
	Impact     string  `json:"impact,omitempty"`
	Error      string  `json:"error,omitempty"`
}

type infraResponse struct {
	Status     string                     `json:"status"`
	Components map[string]componentStatus `json:"components"`
}

func Infra(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		components := map[string]componentStatus{
			"site":      checkSite(d),
			"redis":     checkRedis(r.Context(), d),
			"watcher":   checkWatcher(d),
			"structure": checkStructure(d),
		}

		writeJSON(w, http.StatusOK, infraResponse{
			Status:     determineStatus(components),
			Components: components,
		})
	}
}

func determineStatus(components map[string]componentStatus) string {
	// No model = nothing can be served
	if site, exists := components["site"]; exists && site.Generation == nil {
		return "critical"
	}
	for _, c := range components {
		if !c.OK {
			return "degraded"
		}
	}
	return "ok"
}

func checkSite(d deps.Deps) componentStatus {
	if !d.Index.Ready() {
		return componentStatus{
			OK:     false,
			Impact: "all-requests-fail",
			Error:  "no model loaded",
		}
	}

	gen := d.Index.Generation()
	status := componentStatus{
		OK:         true,
		Generation: &gen,
		Checksum:   d.Index.Checksum(),
		LastReload: d.Index.LastReload().Format(time.RFC3339),
	}
	if d.LastReloadErr != nil {
		if err := d.LastReloadErr(); err != nil {
			status.OK = false
			status.Impact = "serving-previous-model"
			status.Error = err.Error()
		}
	}
	return status
}

func checkRedis(parent context.Context, d deps.Deps) componentStatus {
	if d.RedisClient == nil {
		return componentStatus{
			OK:     true,
			Mode:   "disabled",
			Impact: "no-snapshot-no-cache",
		}
	}

	ctx, cancel := context.WithTimeout(parent, 2*time.Second)
	defer cancel()

	if err := d.RedisClient.Ping(ctx).Err(); err != nil {
		return componentStatus{
			OK:     false,
			Mode:   "degraded",
			Impact: "snapshot-and-cache-disabled",
			Error:  "timeout",
		}
	}

	return componentStatus{
		OK:   true,
		Mode: "optimal",
	}
}

func checkWatcher(d deps.Deps) componentStatus {
	if !d.WatchEnabled {
		return componentStatus{OK: true, Mode: "disabled", Impact: "reload-on-interval-or-trigger"}
	}
	return componentStatus{OK: true, Mode: "watching"}
}

func checkStructure(d deps.Deps) componentStatus {
	if d.Expander == nil {
		return componentStatus{OK: true, Mode: "disabled", Impact: "auto-structure-not-expanded"}
	}
	return componentStatus{OK: true, Mode: "content-dir"}
}
