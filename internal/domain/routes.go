package domain

import (
	"net/http"
	"strings"
)

// Target is the destination class of a request.
type Target string

const (
	// TargetStorefront forwards to the tenant's own storefront origin.
	TargetStorefront Target = "storefront"
	// TargetGateway forwards to the shared backend gateway.
	TargetGateway Target = "gateway"
	// TargetDeny refuses the request with 404.
	TargetDeny Target = "deny"
)

// APIPrefix is the reserved prefix under which only allow-listed
// endpoints are reachable. Everything outside it is storefront traffic.
const APIPrefix = "/api"

// InternalPrefix is the reserved prefix for the control plane and
// operational endpoints. Requests under it never reach a tenant.
const InternalPrefix = "/__internal"

// RouteRule is one entry of the static allow-list. The table is the
// single source of truth for which /api endpoints exist at all and
// which of them are delegated to the gateway.
type RouteRule struct {
	Path    string
	Methods []string
	Target  Target
}

// routeTable is ordered but matched by exact path, so order only
// matters for readability. Changing it is a deployment event.
var routeTable = []RouteRule{
	{Path: "/api/products", Methods: []string{http.MethodGet}, Target: TargetStorefront},
	{Path: "/api/cart", Methods: []string{http.MethodGet, http.MethodPost, http.MethodPatch, http.MethodDelete}, Target: TargetStorefront},
	{Path: "/api/search", Methods: []string{http.MethodGet}, Target: TargetStorefront},
	{Path: "/api/checkout-session", Methods: []string{http.MethodPost}, Target: TargetGateway},
	{Path: "/api/orders", Methods: []string{http.MethodGet}, Target: TargetGateway},
	{Path: "/api/stripe-webhook", Methods: []string{http.MethodPost}, Target: TargetGateway},
	{Path: "/api/return-request", Methods: []string{http.MethodPost}, Target: TargetGateway},
}

// Classify decides where a request goes. It is total: every
// (path, method) pair yields exactly one target. Paths outside the
// reserved API prefix are always storefront traffic; inside it, only
// exact allow-list matches pass, everything else is denied.
func Classify(path, method string) Target {
	if path != APIPrefix && !strings.HasPrefix(path, APIPrefix+"/") {
		return TargetStorefront
	}
	for _, rule := range routeTable {
		if rule.Path != path {
			continue
		}
		for _, m := range rule.Methods {
			if m == method {
				return rule.Target
			}
		}
	}
	return TargetDeny
}
