package mw

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"net/http"
	"strings"

	"github.com/google/uuid"

	"github.com/MrSnakeDoc/edgegate/internal/domain"
)

type requestIDKey struct{}

// GetOrCreateRequestID reuses a non-empty inbound correlation id, or
// mints a fresh one. It never fails: if UUID generation is unavailable
// it falls back to raw random bytes.
func GetOrCreateRequestID(h http.Header) string {
	if v := strings.TrimSpace(h.Get(domain.HeaderRequestID)); v != "" {
		return v
	}
	if id, err := uuid.NewRandom(); err == nil {
		return id.String()
	}
	var b [16]byte
	_, _ = rand.Read(b[:])
	return hex.EncodeToString(b[:])
}

// RequestID assigns the correlation id for the request: it is stored in
// the context, stamped onto the response, and set on the request
// headers so downstream forwarding carries it. Every response leaving
// the router has this header, error responses included.
func RequestID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := GetOrCreateRequestID(r.Header)
		r.Header.Set(domain.HeaderRequestID, id)
		w.Header().Set(domain.HeaderRequestID, id)
		next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), requestIDKey{}, id)))
	})
}

// RequestIDFrom returns the correlation id stored by RequestID, or "".
func RequestIDFrom(ctx context.Context) string {
	id, _ := ctx.Value(requestIDKey{}).(string)
	return id
}
