package domain

import "time"

// Site is the complete, validated site-structure model.
//
// It is built once from a declaration and never mutated afterwards; a reload
// builds a new Site. Any number of readers may share it without locking.
type Site struct {
	// ─────────────────────────────
	// Models consumed by the renderer
	// ─────────────────────────────

	// Navbar is the "navbar model": ordered top-level navigation.
	Navbar Navbar

	// Sidebar is the "sidebar model": prefix -> strategy rules.
	Sidebar *Sidebar

	// Theme is passed through to the renderer untouched.
	Theme ThemeConfig

	// Encryption protects pages behind passwords.
	Encryption *Encryption

	// ─────────────────────────────
	// Provenance
	// ─────────────────────────────

	// Checksum is the hex SHA-256 of the source declaration.
	Checksum string

	// Source is the file (or snapshot) the model was built from.
	Source string

	// LoadedAt is when the model was built.
	LoadedAt time.Time
}

// ResolveSidebar is a convenience for Site.Sidebar.Resolve.
func (s *Site) ResolveSidebar(requestPath string) Resolution {
	if s == nil {
		return Resolution{Path: requestPath, Strategy: StrategyNone}
	}
	return s.Sidebar.Resolve(requestPath)
}
