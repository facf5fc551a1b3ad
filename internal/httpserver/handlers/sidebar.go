package handlers

import (
	"context"
	"net/http"
	"strconv"
	"strings"

	"github.com/MrSnakeDoc/navkit/internal/domain"
	"github.com/MrSnakeDoc/navkit/internal/httpserver/deps"
	"github.com/MrSnakeDoc/navkit/internal/logger"
)

type sidebarResponse struct {
	Checksum string               `json:"checksum"`
	Rules    []domain.SidebarRule `json:"rules"`
}

// Sidebar serves the sidebar rules in declaration order
func Sidebar(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		s, ok := currentSite(w, d)
		if !ok || notModified(w, r, s) {
			return
		}
		rules := s.Sidebar.Rules()
		if rules == nil {
			rules = []domain.SidebarRule{}
		}
		writeJSON(w, http.StatusOK, sidebarResponse{Checksum: s.Checksum, Rules: rules})
	}
}

type resolveResponse struct {
	domain.Resolution
	Expanded bool `json:"expanded"`
}

// ResolveSidebar answers which sidebar applies to ?path=. With ?expand=1
// auto-structure resolutions carry the entries derived from the content tree.
func ResolveSidebar(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		s, ok := currentSite(w, d)
		if !ok {
			return
		}

		path := strings.TrimSpace(r.URL.Query().Get("path"))
		if path == "" {
			writeError(w, http.StatusBadRequest, "missing path parameter")
			return
		}
		expand, _ := strconv.ParseBool(r.URL.Query().Get("expand"))

		res := s.ResolveSidebar(path)
		d.Index.IncrementCounter(res.Prefix)
		d.Metrics.IncResolution(res.Strategy.String())

		d.Logger.Debug("sidebar resolved",
			logger.String("path", path),
			logger.String("prefix", res.Prefix),
			logger.String("strategy", res.Strategy.String()))

		if !expand || res.Strategy != domain.StrategyStructure || d.Expander == nil {
			writeJSON(w, http.StatusOK, resolveResponse{Resolution: res})
			return
		}

		expanded, err := expandResolution(r.Context(), d, s.Checksum, res)
		if err != nil {
			d.Logger.Error("failed to expand sidebar",
				logger.String("prefix", res.Prefix),
				logger.Error(err))
			writeError(w, http.StatusInternalServerError, "failed to expand sidebar")
			return
		}
		writeJSON(w, http.StatusOK, resolveResponse{Resolution: expanded, Expanded: true})
	}
}

// expandResolution tries the cache first, then walks the content tree.
// The expansion only depends on the matched prefix, so the cache is keyed by
// it and the request path is put back on a hit. Cache failures are logged
// and never fail the request.
func expandResolution(ctx context.Context, d deps.Deps, checksum string, res domain.Resolution) (domain.Resolution, error) {
	if d.Cache != nil {
		cached, err := d.Cache.GetCachedResolution(ctx, checksum, res.Prefix)
		if err != nil {
			d.Logger.Warn("resolution cache lookup failed", logger.Error(err))
		}
		if cached != nil {
			d.Metrics.IncCache(true)
			res.Entries = cached.Entries
			return res, nil
		}
		d.Metrics.IncCache(false)
	}

	entries, err := d.Expander.Expand(res.Prefix)
	if err != nil {
		return res, err
	}
	res.Entries = entries

	if d.Cache != nil {
		if err := d.Cache.CacheResolution(ctx, checksum, res, d.CacheTTL); err != nil {
			d.Logger.Warn("failed to cache resolution", logger.Error(err))
		}
	}
	return res, nil
}
