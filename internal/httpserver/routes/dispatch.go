package routes

import (
	"github.com/go-chi/chi/v5"

	"github.com/MrSnakeDoc/edgegate/internal/httpserver/deps"
	"github.com/MrSnakeDoc/edgegate/internal/httpserver/handlers"
)

func init() { Register(registerDispatch) }

// registerDispatch installs the tenant pipeline as the catch-all: every
// request that is not an internal endpoint belongs to a tenant host.
func registerDispatch(r chi.Router, d deps.Deps) {
	dispatch := handlers.Dispatch(d)
	r.NotFound(dispatch)
	r.MethodNotAllowed(dispatch)
}
