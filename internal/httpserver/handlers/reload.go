package handlers

import (
	"net/http"

	"github.com/MrSnakeDoc/navkit/internal/httpserver/deps"
	"github.com/MrSnakeDoc/navkit/internal/logger"
)

// Reload triggers a manual reload of the site declaration
func Reload(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		select {
		case d.ReloadTrigger <- struct{}{}:
			d.Logger.Info("manual site reload triggered via endpoint",
				logger.String("remote_ip", r.RemoteAddr))
			w.WriteHeader(http.StatusAccepted)
			_, err := w.Write([]byte("✅ Reload triggered successfully\n"))
			logWriteErr(d, err)
		default:
			d.Logger.Warn("site reload already pending",
				logger.String("remote_ip", r.RemoteAddr))
			w.WriteHeader(http.StatusTooManyRequests)
			_, err := w.Write([]byte("⏳ Reload already in progress, please wait\n"))
			logWriteErr(d, err)
		}
	}
}
