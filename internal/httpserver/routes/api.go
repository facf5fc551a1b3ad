package routes

import (
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/MrSnakeDoc/navkit/internal/httpserver/deps"
	"github.com/MrSnakeDoc/navkit/internal/httpserver/handlers"
	"github.com/MrSnakeDoc/navkit/internal/httpserver/mw"
)

func init() { Register(registerAPI) }

func registerAPI(r chi.Router, d deps.Deps) {
	r.Get("/api/navbar", handlers.Navbar(d))
	r.Get("/api/sidebar", handlers.Sidebar(d))
	r.Get("/api/sidebar/resolve", handlers.ResolveSidebar(d))
	r.Get("/api/theme", handlers.Theme(d))

	verifyLimit := mw.RateLimit(mw.RateLimitConfig{
		Burst:             d.VerifyBurst,
		RefillPerIPPerMin: d.VerifyPerMin,
		MaxEntries:        10000,
		IdleTTL:           15 * time.Minute,
		TrustProxy:        d.TrustProxy,
	})
	r.With(verifyLimit).Post("/api/encrypt/verify", handlers.VerifyEncrypt(d))
}
