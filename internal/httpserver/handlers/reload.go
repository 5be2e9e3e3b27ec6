package handlers

import (
	"net/http"

	"github.com/MrSnakeDoc/edgegate/internal/httpserver/deps"
	"github.com/MrSnakeDoc/edgegate/internal/logger"
)

// Reload triggers an immediate re-read of the static mappings file.
// Like every mutating internal endpoint it requires the shared admin
// secret; the CIDR filter alone is a passthrough when unconfigured.
func Reload(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if !authorized(r, d.AdminToken) {
			writeError(w, http.StatusUnauthorized, "unauthorized")
			return
		}
		if d.ReloadTrigger == nil {
			writeError(w, http.StatusNotFound, "static mappings not configured")
			return
		}

		select {
		case d.ReloadTrigger <- struct{}{}:
			d.Logger.Info("manual static mappings reload triggered",
				logger.String("remote_ip", r.RemoteAddr))
			writeJSON(w, http.StatusAccepted, ackResponse{OK: true})
		default:
			d.Logger.Warn("static mappings reload already in progress",
				logger.String("remote_ip", r.RemoteAddr))
			writeError(w, http.StatusTooManyRequests, "reload already in progress")
		}
	}
}
