// Package proxy forwards dispatched requests to the storefront origin
// or the shared backend gateway, owning the trust boundary on the way
// out: tenant-identity and internal-auth headers are always stripped
// from the inbound request and re-set from server-side state.
package proxy

import (
	"context"
	"net"
	"net/http"
	"net/http/httputil"
	"net/url"
	"time"

	"github.com/MrSnakeDoc/edgegate/internal/domain"
	"github.com/MrSnakeDoc/edgegate/internal/logger"
	"github.com/MrSnakeDoc/edgegate/internal/metrics"
)

// Options configures the two upstreams. GatewayOrigin may be nil, in
// which case gateway-classified routes are answered with 502 by the
// dispatcher (GatewayConfigured reports the distinction).
type Options struct {
	StorefrontOrigin *url.URL
	GatewayOrigin    *url.URL
	GatewayToken     string
	Transport        http.RoundTripper
}

type ctxKey struct{}

// forwardState carries per-request trusted values into the rewrite
// hook, and the failure flag back out of the error handler.
type forwardState struct {
	shopID    string
	requestID string
	failed    bool
}

// Forwarder proxies requests upstream with a single attempt, no retry.
type Forwarder struct {
	storefront *httputil.ReverseProxy
	gateway    *httputil.ReverseProxy
	logger     logger.Logger
}

// New builds a Forwarder for the configured origins.
func New(opts Options, log logger.Logger) *Forwarder {
	transport := opts.Transport
	if transport == nil {
		transport = &http.Transport{
			DialContext: (&net.Dialer{
				Timeout:   5 * time.Second,
				KeepAlive: 30 * time.Second,
			}).DialContext,
			MaxIdleConns:          100,
			MaxIdleConnsPerHost:   32,
			IdleConnTimeout:       90 * time.Second,
			TLSHandshakeTimeout:   5 * time.Second,
			ExpectContinueTimeout: time.Second,
		}
	}

	f := &Forwarder{logger: log}

	f.storefront = &httputil.ReverseProxy{
		Transport:    transport,
		ErrorHandler: f.handleError,
		Rewrite: func(pr *httputil.ProxyRequest) {
			st := stateFrom(pr.In.Context())
			pr.SetURL(opts.StorefrontOrigin)
			// The storefront origin routes by tenant hostname, so the
			// inbound Host travels with the request.
			pr.Out.Host = pr.In.Host
			setTrustedHeaders(pr.Out.Header, st)
			pr.SetXForwarded()
		},
	}

	if opts.GatewayOrigin != nil {
		f.gateway = &httputil.ReverseProxy{
			Transport:    transport,
			ErrorHandler: f.handleError,
			Rewrite: func(pr *httputil.ProxyRequest) {
				st := stateFrom(pr.In.Context())
				pr.SetURL(opts.GatewayOrigin)
				setTrustedHeaders(pr.Out.Header, st)
				if opts.GatewayToken != "" {
					pr.Out.Header.Set(domain.HeaderInternalAuth, opts.GatewayToken)
				}
				pr.SetXForwarded()
			},
		}
	}

	return f
}

// GatewayConfigured reports whether a gateway origin was provided.
func (f *Forwarder) GatewayConfigured() bool {
	return f.gateway != nil
}

// Storefront forwards r to the storefront origin. It returns false when
// the upstream attempt failed at the transport level (the client
// received a 502).
func (f *Forwarder) Storefront(w http.ResponseWriter, r *http.Request, shopID, requestID string) bool {
	return f.forward(f.storefront, w, r, shopID, requestID)
}

// Gateway forwards r to the shared backend gateway. Callers must check
// GatewayConfigured first; calling it unconfigured panics.
func (f *Forwarder) Gateway(w http.ResponseWriter, r *http.Request, shopID, requestID string) bool {
	return f.forward(f.gateway, w, r, shopID, requestID)
}

func (f *Forwarder) forward(p *httputil.ReverseProxy, w http.ResponseWriter, r *http.Request, shopID, requestID string) bool {
	st := &forwardState{shopID: shopID, requestID: requestID}
	p.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), ctxKey{}, st)))
	return !st.failed
}

func (f *Forwarder) handleError(w http.ResponseWriter, r *http.Request, err error) {
	if st := stateFrom(r.Context()); st != nil {
		st.failed = true
	}
	metrics.UpstreamErrorsTotal.Inc()
	f.logger.Error("upstream request failed",
		logger.String("host", r.Host),
		logger.String("path", r.URL.Path),
		logger.Error(err))

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusBadGateway)
	_, _ = w.Write([]byte(`{"ok":false,"error":"bad gateway"}`))
}

func stateFrom(ctx context.Context) *forwardState {
	st, _ := ctx.Value(ctxKey{}).(*forwardState)
	return st
}

// setTrustedHeaders drops whatever tenant-identity or internal-auth
// headers the client sent and replaces them with server-resolved
// values. Clients can never speak for a tenant by setting these
// directly.
func setTrustedHeaders(h http.Header, st *forwardState) {
	h.Del(domain.HeaderShopID)
	h.Del(domain.HeaderInternalAuth)
	if st == nil {
		return
	}
	h.Set(domain.HeaderShopID, st.shopID)
	if st.requestID != "" {
		h.Set(domain.HeaderRequestID, st.requestID)
	}
}
