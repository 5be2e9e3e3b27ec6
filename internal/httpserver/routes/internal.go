package routes

import (
	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/MrSnakeDoc/edgegate/internal/domain"
	"github.com/MrSnakeDoc/edgegate/internal/httpserver/deps"
	"github.com/MrSnakeDoc/edgegate/internal/httpserver/handlers"
	"github.com/MrSnakeDoc/edgegate/internal/httpserver/mw"
)

func init() { Register(registerInternal) }

// registerInternal mounts the control plane and operational endpoints
// under the reserved prefix. Nothing here ever reaches a tenant.
func registerInternal(r chi.Router, d deps.Deps) {
	r.Route(domain.InternalPrefix, func(ir chi.Router) {
		ir.Use(mw.AllowOnlyCIDRS(d.AllowedCIDRS, d.TrustProxy, d.Logger))

		// HostMapping handles its own method and auth dispatch.
		ir.Handle("/host-mapping", handlers.HostMapping(d))
		ir.Post("/reload", handlers.Reload(d))
		ir.Get("/healthz", handlers.Healthz(d))
		ir.Get("/readyz", handlers.Readyz(d))
		ir.Method("GET", "/metrics", promhttp.Handler())

		// Unknown internal paths must not fall through to the tenant
		// dispatcher.
		ir.NotFound(handlers.NotFoundJSON)
	})
}
