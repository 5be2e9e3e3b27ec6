package domain

// Header names shared by the dispatcher, middleware and control plane.
const (
	// HeaderRequestID carries the correlation id on every request and
	// response that passes through the router.
	HeaderRequestID = "X-Request-Id"

	// HeaderShopID is the verified tenant identifier. It is stripped
	// from every inbound request and re-set from the resolved mapping,
	// so upstreams can trust it unconditionally.
	HeaderShopID = "X-Shop-Id"

	// HeaderInternalAuth authenticates the router toward the shared
	// backend gateway. Inbound values are always stripped.
	HeaderInternalAuth = "X-Internal-Auth"

	// HeaderAdminToken authenticates control plane calls. A bearer
	// Authorization header is accepted as an alternative.
	HeaderAdminToken = "X-Admin-Token"
)
