// Package resolver implements the tiered read path for host mappings:
// in-process hot cache, shared Redis cache, static bootstrap
// configuration, then the durable store. Faster tiers are backfilled on
// the way up; shared-cache writes happen off the response path.
package resolver

import (
	"context"
	"errors"
	"time"

	"github.com/MrSnakeDoc/edgegate/internal/domain"
	"github.com/MrSnakeDoc/edgegate/internal/hotcache"
	"github.com/MrSnakeDoc/edgegate/internal/logger"
	"github.com/MrSnakeDoc/edgegate/internal/metrics"
	redisstore "github.com/MrSnakeDoc/edgegate/internal/store/redis"
	"github.com/MrSnakeDoc/edgegate/internal/tasks"
)

// Default hot-tier TTLs. Positive entries bound propagation delay after
// a control plane mutation; negative entries keep unknown-host floods
// off the slower tiers.
const (
	DefaultPositiveTTL = 30 * time.Second
	DefaultNegativeTTL = 10 * time.Second
)

// SharedCache is the cross-instance cache tier. Implemented by the
// Redis store; nil disables the tier.
type SharedCache interface {
	GetMapping(ctx context.Context, host string) (*redisstore.Record, error)
	SaveMapping(ctx context.Context, mapping *domain.HostMapping) error
	SaveNegative(ctx context.Context, host string) error
}

// DurableStore is the source of truth. Implemented by the Postgres
// store; nil disables the tier. GetByHost returns
// domain.ErrMappingNotFound for unknown hosts.
type DurableStore interface {
	GetByHost(ctx context.Context, host string) (*domain.HostMapping, error)
}

// StaticSource supplies env/file bootstrap mappings; nil disables it.
type StaticSource interface {
	Lookup(host string) *domain.HostMapping
}

// TTLs configures the hot tier entry lifetimes.
type TTLs struct {
	Positive time.Duration
	Negative time.Duration
}

// Resolver answers "which tenant owns this hostname" for the
// dispatcher. Resolve never fails: every error inside a tier degrades
// to consulting the next one, and an exhausted chain is a nil result.
type Resolver struct {
	hot    *hotcache.Cache
	shared SharedCache
	static StaticSource
	store  DurableStore
	tasks  *tasks.Runner
	logger logger.Logger
	ttl    TTLs
}

// New wires a resolver. hot and runner are required; the other tiers
// may be nil.
func New(hot *hotcache.Cache, shared SharedCache, static StaticSource, store DurableStore, runner *tasks.Runner, log logger.Logger, ttl TTLs) *Resolver {
	if ttl.Positive <= 0 {
		ttl.Positive = DefaultPositiveTTL
	}
	if ttl.Negative <= 0 {
		ttl.Negative = DefaultNegativeTTL
	}
	return &Resolver{
		hot:    hot,
		shared: shared,
		static: static,
		store:  store,
		tasks:  runner,
		logger: log,
		ttl:    ttl,
	}
}

// Resolve returns the mapping owning host, or nil when no tier knows
// it. The host is normalized before lookup. Cache population side
// effects are best-effort and never block or fail the caller.
func (r *Resolver) Resolve(ctx context.Context, host string) *domain.HostMapping {
	host = domain.NormalizeHost(host)
	if host == "" {
		return nil
	}

	// Hot tier: freshest answer wins, including cached negatives.
	if mapping, ok := r.hot.Get(host); ok {
		if mapping == nil {
			metrics.ResolverLookupsTotal.WithLabelValues(metrics.TierHot, metrics.ResultNegative).Inc()
			return nil
		}
		metrics.ResolverLookupsTotal.WithLabelValues(metrics.TierHot, metrics.ResultHit).Inc()
		return mapping
	}

	// Shared cache tier. Failures degrade to a miss, never to an error
	// for the caller.
	if r.shared != nil {
		rec, err := r.shared.GetMapping(ctx, host)
		switch {
		case err != nil:
			metrics.ResolverLookupsTotal.WithLabelValues(metrics.TierShared, metrics.ResultError).Inc()
			r.logger.Debug("shared cache lookup failed, falling through",
				logger.String("host", host),
				logger.Error(err))
		case rec == nil:
			metrics.ResolverLookupsTotal.WithLabelValues(metrics.TierShared, metrics.ResultMiss).Inc()
		case rec.NotFound:
			metrics.ResolverLookupsTotal.WithLabelValues(metrics.TierShared, metrics.ResultNegative).Inc()
			r.hot.Set(host, nil, r.ttl.Negative)
			return nil
		case rec.Mapping != nil:
			metrics.ResolverLookupsTotal.WithLabelValues(metrics.TierShared, metrics.ResultHit).Inc()
			r.hot.Set(host, rec.Mapping, r.ttl.Positive)
			return rec.Mapping
		}
	}

	// Static bootstrap configuration, for dev setups without a store.
	if r.static != nil {
		if mapping := r.static.Lookup(host); mapping != nil {
			metrics.ResolverLookupsTotal.WithLabelValues(metrics.TierStatic, metrics.ResultHit).Inc()
			r.hot.Set(host, mapping, r.ttl.Positive)
			return mapping
		}
	}

	// Durable store, with write-through of the shared tier off the
	// response path.
	if r.store != nil {
		mapping, err := r.store.GetByHost(ctx, host)
		switch {
		case err == nil:
			metrics.ResolverLookupsTotal.WithLabelValues(metrics.TierStore, metrics.ResultHit).Inc()
			r.hot.Set(host, mapping, r.ttl.Positive)
			r.backfillShared(host, mapping)
			return mapping
		case errors.Is(err, domain.ErrMappingNotFound):
			metrics.ResolverLookupsTotal.WithLabelValues(metrics.TierStore, metrics.ResultMiss).Inc()
		default:
			metrics.ResolverLookupsTotal.WithLabelValues(metrics.TierStore, metrics.ResultError).Inc()
			r.logger.Warn("durable store lookup failed",
				logger.String("host", host),
				logger.Error(err))
		}
	}

	// Nothing knows this host: remember that, cheaply.
	r.hot.Set(host, nil, r.ttl.Negative)
	r.backfillShared(host, nil)
	return nil
}

// backfillShared schedules a fire-and-forget shared-cache write. A nil
// mapping writes a negative record.
func (r *Resolver) backfillShared(host string, mapping *domain.HostMapping) {
	if r.shared == nil {
		return
	}
	if mapping != nil {
		r.tasks.Go("shared-cache-backfill", func(ctx context.Context) error {
			return r.shared.SaveMapping(ctx, mapping)
		})
		return
	}
	r.tasks.Go("shared-cache-negative", func(ctx context.Context) error {
		return r.shared.SaveNegative(ctx, host)
	})
}

// Invalidate drops host from the hot tier. The control plane calls it
// so the mutating instance serves fresh state immediately; other
// instances converge within the hot tier TTL.
func (r *Resolver) Invalidate(host string) {
	r.hot.Delete(domain.NormalizeHost(host))
}
