package deps

import (
	"context"
	"time"

	"github.com/MrSnakeDoc/edgegate/internal/domain"
	"github.com/MrSnakeDoc/edgegate/internal/logger"
	"github.com/MrSnakeDoc/edgegate/internal/proxy"
	"github.com/MrSnakeDoc/edgegate/internal/resolver"
)

// MappingStore is the durable-store surface the control plane needs.
// Implemented by the Postgres store; nil in deployments running on
// static configuration only.
type MappingStore interface {
	GetByHost(ctx context.Context, host string) (*domain.HostMapping, error)
	Upsert(ctx context.Context, mapping *domain.HostMapping) error
	Delete(ctx context.Context, host string) error
	Healthcheck(ctx context.Context) error
}

// SharedCache is the shared-cache surface the control plane writes
// through on every mutation. Implemented by the Redis store; nil when
// the shared tier is disabled.
type SharedCache interface {
	SaveMapping(ctx context.Context, mapping *domain.HostMapping) error
	DeleteMapping(ctx context.Context, host string) error
	Healthcheck(ctx context.Context) error
}

type Deps struct {
	Logger    logger.Logger
	StartTime time.Time
	Version   string
	Commit    string
	BuildDate string
	GoVersion string

	AllowedCIDRS []string // IPs allowed to reach the internal endpoints
	TrustProxy   bool     // true if running behind a trusted reverse proxy
	AdminToken   string   // shared secret for the control plane; empty disables it

	Resolver  *resolver.Resolver
	Forwarder *proxy.Forwarder
	Store     MappingStore
	Cache     SharedCache

	ReloadTrigger chan struct{} // triggers a static mappings reload (nil if static file disabled)
}
