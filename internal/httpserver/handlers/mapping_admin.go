package handlers

import (
	"crypto/subtle"
	"encoding/json"
	"net/http"
	"strings"

	"github.com/MrSnakeDoc/edgegate/internal/domain"
	"github.com/MrSnakeDoc/edgegate/internal/httpserver/deps"
	"github.com/MrSnakeDoc/edgegate/internal/logger"
)

// HostMapping is the control plane: the only writer of mapping state.
// PUT upserts a record, DELETE removes one by `host` query parameter.
// Both require the shared admin secret; mutations hit the durable store
// synchronously, write through the shared cache, and drop the local hot
// entry. Hot tiers of other instances converge by TTL.
func HostMapping(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if !authorized(r, d.AdminToken) {
			writeError(w, http.StatusUnauthorized, "unauthorized")
			return
		}
		if d.Store == nil {
			writeError(w, http.StatusInternalServerError, "mapping store not configured")
			return
		}

		switch r.Method {
		case http.MethodPut:
			upsertMapping(d, w, r)
		case http.MethodDelete:
			deleteMapping(d, w, r)
		default:
			writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		}
	}
}

// authorized accepts the secret via the dedicated header or a bearer
// Authorization header. An unconfigured secret rejects everything.
func authorized(r *http.Request, token string) bool {
	if token == "" {
		return false
	}
	candidate := strings.TrimSpace(r.Header.Get(domain.HeaderAdminToken))
	if candidate == "" {
		auth := r.Header.Get("Authorization")
		if after, ok := strings.CutPrefix(auth, "Bearer "); ok {
			candidate = strings.TrimSpace(after)
		}
	}
	if candidate == "" {
		return false
	}
	return subtle.ConstantTimeCompare([]byte(candidate), []byte(token)) == 1
}

func upsertMapping(d deps.Deps, w http.ResponseWriter, r *http.Request) {
	var mapping domain.HostMapping
	if err := json.NewDecoder(r.Body).Decode(&mapping); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	mapping.Normalize()
	if err := mapping.Validate(); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	if err := d.Store.Upsert(r.Context(), &mapping); err != nil {
		d.Logger.Error("mapping upsert failed",
			logger.String("host", mapping.Host),
			logger.Error(err))
		writeError(w, http.StatusInternalServerError, "upsert failed")
		return
	}

	// Write-through so other instances pick up the change within the
	// hot tier TTL instead of the shared tier TTL. Best effort: the
	// durable store already holds the truth.
	if d.Cache != nil {
		if err := d.Cache.SaveMapping(r.Context(), &mapping); err != nil {
			d.Logger.Warn("shared cache write-through failed",
				logger.String("host", mapping.Host),
				logger.Error(err))
		}
	}
	d.Resolver.Invalidate(mapping.Host)

	d.Logger.Info("host mapping upserted",
		logger.String("host", mapping.Host),
		logger.String("shop_id", mapping.ShopID),
		logger.String("mode", string(mapping.Mode)))
	writeAck(w)
}

func deleteMapping(d deps.Deps, w http.ResponseWriter, r *http.Request) {
	host := domain.NormalizeHost(r.URL.Query().Get("host"))
	if host == "" {
		writeError(w, http.StatusBadRequest, "host query parameter is required")
		return
	}

	if err := d.Store.Delete(r.Context(), host); err != nil {
		d.Logger.Error("mapping delete failed",
			logger.String("host", host),
			logger.Error(err))
		writeError(w, http.StatusInternalServerError, "delete failed")
		return
	}

	if d.Cache != nil {
		if err := d.Cache.DeleteMapping(r.Context(), host); err != nil {
			d.Logger.Warn("shared cache invalidation failed",
				logger.String("host", host),
				logger.Error(err))
		}
	}
	d.Resolver.Invalidate(host)

	d.Logger.Info("host mapping deleted", logger.String("host", host))
	writeAck(w)
}
