package handlers

import (
	"net/http"

	"github.com/MrSnakeDoc/navkit/internal/domain"
	"github.com/MrSnakeDoc/navkit/internal/httpserver/deps"
)

type navbarResponse struct {
	Checksum string        `json:"checksum"`
	Navbar   domain.Navbar `json:"navbar"`
}

// Navbar serves the top-level navigation model
func Navbar(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		s, ok := currentSite(w, d)
		if !ok || notModified(w, r, s) {
			return
		}
		writeJSON(w, http.StatusOK, navbarResponse{Checksum: s.Checksum, Navbar: s.Navbar})
	}
}

type themeResponse struct {
	Checksum string             `json:"checksum"`
	Theme    domain.ThemeConfig `json:"theme"`
}

// Theme serves the theme options untouched
func Theme(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		s, ok := currentSite(w, d)
		if !ok || notModified(w, r, s) {
			return
		}
		writeJSON(w, http.StatusOK, themeResponse{Checksum: s.Checksum, Theme: s.Theme})
	}
}
