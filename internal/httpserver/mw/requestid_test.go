package mw

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/MrSnakeDoc/edgegate/internal/domain"
)

func TestGetOrCreateRequestIDReusesInbound(t *testing.T) {
	h := http.Header{}
	h.Set(domain.HeaderRequestID, "  inbound-id  ")

	if got := GetOrCreateRequestID(h); got != "inbound-id" {
		t.Fatalf("expected trimmed inbound id, got %q", got)
	}
}

func TestGetOrCreateRequestIDGenerates(t *testing.T) {
	a := GetOrCreateRequestID(http.Header{})
	b := GetOrCreateRequestID(http.Header{})

	if a == "" || b == "" {
		t.Fatal("generated ids must be non-empty")
	}
	if a == b {
		t.Fatalf("generated ids must differ, got %q twice", a)
	}
}

func TestRequestIDMiddleware(t *testing.T) {
	var seenCtx, seenHeader string
	handler := RequestID(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seenCtx = RequestIDFrom(r.Context())
		seenHeader = r.Header.Get(domain.HeaderRequestID)
		w.WriteHeader(http.StatusTeapot)
	}))

	req := httptest.NewRequest(http.MethodGet, "/anything", nil)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	respID := rec.Header().Get(domain.HeaderRequestID)
	if respID == "" {
		t.Fatal("response must carry the correlation id header")
	}
	if seenCtx != respID || seenHeader != respID {
		t.Fatalf("context (%q), request header (%q) and response header (%q) must agree",
			seenCtx, seenHeader, respID)
	}
}

func TestRequestIDMiddlewarePropagates(t *testing.T) {
	handler := RequestID(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))

	req := httptest.NewRequest(http.MethodGet, "/anything", nil)
	req.Header.Set(domain.HeaderRequestID, "client-id")
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if got := rec.Header().Get(domain.HeaderRequestID); got != "client-id" {
		t.Fatalf("expected propagated id, got %q", got)
	}
}
