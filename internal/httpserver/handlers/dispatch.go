package handlers

import (
	"net/http"

	"github.com/MrSnakeDoc/edgegate/internal/domain"
	"github.com/MrSnakeDoc/edgegate/internal/httpserver/deps"
	"github.com/MrSnakeDoc/edgegate/internal/httpserver/mw"
	"github.com/MrSnakeDoc/edgegate/internal/logger"
	"github.com/MrSnakeDoc/edgegate/internal/metrics"
)

// Dispatch is the tenant-traffic pipeline: resolve the host's mapping,
// apply mode policy and redirects, classify the route, then forward to
// the storefront origin or the backend gateway. Every terminal response
// carries the correlation id header (set by the RequestID middleware).
func Dispatch(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		reqID := mw.RequestIDFrom(r.Context())

		mapping := d.Resolver.Resolve(r.Context(), r.Host)
		if mapping == nil {
			metrics.RequestsTotal.WithLabelValues(metrics.OutcomeNotFound).Inc()
			writeError(w, http.StatusNotFound, "not found")
			return
		}

		if mapping.Mode == domain.ModeRedirectOnly {
			target := mapping.RedirectTo
			if target == "" {
				target = mapping.CanonicalHost
			}
			metrics.RequestsTotal.WithLabelValues(metrics.OutcomeRedirect).Inc()
			redirectToHost(w, r, target)
			return
		}

		if mapping.Mode == domain.ModeExpired {
			metrics.RequestsTotal.WithLabelValues(metrics.OutcomeGone).Inc()
			writeError(w, http.StatusGone, "gone")
			return
		}

		// Alias hosts converge on the canonical host before anything
		// else is decided.
		if domain.NormalizeHost(r.Host) != mapping.CanonicalHost {
			metrics.RequestsTotal.WithLabelValues(metrics.OutcomeRedirect).Inc()
			redirectToHost(w, r, mapping.CanonicalHost)
			return
		}

		target := domain.Classify(r.URL.Path, r.Method)
		if target == domain.TargetDeny {
			metrics.RequestsTotal.WithLabelValues(metrics.OutcomeDenied).Inc()
			writeError(w, http.StatusNotFound, "not found")
			return
		}

		if !domain.BypassesLocalePrefix(r.URL.Path) && !domain.HasLocalePrefix(r.URL.Path) {
			loc := domain.AddLocalePrefix(r.URL.Path, mapping.DefaultLocale)
			if r.URL.RawQuery != "" {
				loc += "?" + r.URL.RawQuery
			}
			metrics.RequestsTotal.WithLabelValues(metrics.OutcomeRedirect).Inc()
			// 307 keeps method and body intact across the redirect.
			http.Redirect(w, r, loc, http.StatusTemporaryRedirect)
			return
		}

		if target == domain.TargetGateway {
			if mapping.Mode == domain.ModeLandingOnly {
				metrics.RequestsTotal.WithLabelValues(metrics.OutcomeDenied).Inc()
				writeError(w, http.StatusNotFound, "not found")
				return
			}
			if !d.Forwarder.GatewayConfigured() {
				metrics.RequestsTotal.WithLabelValues(metrics.OutcomeBadGateway).Inc()
				d.Logger.Error("gateway route requested but no gateway origin configured",
					logger.String("path", r.URL.Path),
					logger.String("request_id", reqID))
				writeError(w, http.StatusBadGateway, "bad gateway")
				return
			}
			if d.Forwarder.Gateway(w, r, mapping.ShopID, reqID) {
				metrics.RequestsTotal.WithLabelValues(metrics.OutcomeGateway).Inc()
			} else {
				metrics.RequestsTotal.WithLabelValues(metrics.OutcomeBadGateway).Inc()
			}
			return
		}

		if d.Forwarder.Storefront(w, r, mapping.ShopID, reqID) {
			metrics.RequestsTotal.WithLabelValues(metrics.OutcomeStorefront).Inc()
		} else {
			metrics.RequestsTotal.WithLabelValues(metrics.OutcomeBadGateway).Inc()
		}
	}
}

// redirectToHost sends the caller to the same path and query on another
// host. 301 for safe methods; 308 otherwise, so the method and body
// survive the redirect.
func redirectToHost(w http.ResponseWriter, r *http.Request, host string) {
	status := http.StatusPermanentRedirect
	if r.Method == http.MethodGet || r.Method == http.MethodHead {
		status = http.StatusMovedPermanently
	}
	http.Redirect(w, r, "https://"+host+r.URL.RequestURI(), status)
}
