// Package metrics exposes the router's Prometheus instrumentation.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Outcome label values for RequestsTotal.
const (
	OutcomeStorefront = "storefront"
	OutcomeGateway    = "gateway"
	OutcomeRedirect   = "redirect"
	OutcomeNotFound   = "not_found"
	OutcomeGone       = "gone"
	OutcomeDenied     = "denied"
	OutcomeBadGateway = "bad_gateway"
)

// Tier and result label values for ResolverLookupsTotal.
const (
	TierHot    = "hot"
	TierShared = "shared"
	TierStatic = "static"
	TierStore  = "store"

	ResultHit      = "hit"
	ResultNegative = "negative"
	ResultMiss     = "miss"
	ResultError    = "error"
)

var (
	// RequestsTotal counts dispatched requests by terminal outcome.
	RequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "edgegate",
			Subsystem: "router",
			Name:      "requests_total",
			Help:      "Total number of dispatched requests by terminal outcome",
		},
		[]string{"outcome"},
	)

	// ResolverLookupsTotal counts mapping lookups by tier and result.
	ResolverLookupsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "edgegate",
			Subsystem: "resolver",
			Name:      "lookups_total",
			Help:      "Total number of host mapping lookups by tier and result",
		},
		[]string{"tier", "result"},
	)

	// UpstreamErrorsTotal counts forwarding attempts that failed at the
	// transport level (the client saw a 502).
	UpstreamErrorsTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Namespace: "edgegate",
			Subsystem: "proxy",
			Name:      "upstream_errors_total",
			Help:      "Total number of upstream transport failures",
		},
	)
)
