package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/MrSnakeDoc/edgegate/internal/httpserver/deps"
	"github.com/MrSnakeDoc/edgegate/internal/logger"
)

const readyzTimeout = 2 * time.Second

type readyzResponse struct {
	Ready bool              `json:"ready"`
	Deps  map[string]string `json:"deps,omitempty"`
}

// Readyz pings the configured backing stores. Tiers that are not wired
// (nil) do not count against readiness.
func Readyz(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), readyzTimeout)
		defer cancel()

		status := map[string]string{}
		ready := true

		if d.Cache != nil {
			if err := d.Cache.Healthcheck(ctx); err != nil {
				d.Logger.Warn("readyz: shared cache unreachable", logger.Error(err))
				status["cache"] = err.Error()
				ready = false
			} else {
				status["cache"] = "ok"
			}
		}
		if d.Store != nil {
			if err := d.Store.Healthcheck(ctx); err != nil {
				d.Logger.Warn("readyz: mapping store unreachable", logger.Error(err))
				status["store"] = err.Error()
				ready = false
			} else {
				status["store"] = "ok"
			}
		}

		code := http.StatusOK
		if !ready {
			code = http.StatusServiceUnavailable
		}
		writeJSON(w, code, readyzResponse{Ready: ready, Deps: status})
	}
}
