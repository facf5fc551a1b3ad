package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/MrSnakeDoc/navkit/internal/httpserver/deps"
	"github.com/MrSnakeDoc/navkit/internal/logger"
)

const maxVerifyBody = 4 << 10

type verifyRequest struct {
	Path     string `json:"path"`
	Password string `json:"password"`
}

type verifyResponse struct {
	Path   string `json:"path"`
	Locked bool   `json:"locked"`
	OK     bool   `json:"ok"`
	Scope  string `json:"scope,omitempty"`
	Hint   string `json:"hint,omitempty"`
}

// VerifyEncrypt checks a password against the rule protecting a page.
// Unprotected pages always verify. A wrong password answers 401 with the hint.
func VerifyEncrypt(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		s, ok := currentSite(w, d)
		if !ok {
			return
		}

		var req verifyRequest
		dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxVerifyBody))
		dec.DisallowUnknownFields()
		if err := dec.Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid request body")
			return
		}
		if req.Path == "" {
			writeError(w, http.StatusBadRequest, "missing path")
			return
		}

		rule, locked := s.Encryption.Lookup(req.Path)
		if !locked {
			d.Metrics.IncVerify(false, true)
			writeJSON(w, http.StatusOK, verifyResponse{Path: req.Path, OK: true})
			return
		}

		resp := verifyResponse{
			Path:   req.Path,
			Locked: true,
			OK:     rule.Verify(req.Password),
			Scope:  rule.Path,
			Hint:   rule.Hint,
		}
		d.Metrics.IncVerify(true, resp.OK)

		if !resp.OK {
			d.Logger.Info("encrypted page password rejected",
				logger.String("path", req.Path),
				logger.String("scope", rule.Path))
			writeJSON(w, http.StatusUnauthorized, resp)
			return
		}
		writeJSON(w, http.StatusOK, resp)
	}
}
