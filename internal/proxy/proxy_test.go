package proxy

import (
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MrSnakeDoc/edgegate/internal/domain"
	"github.com/MrSnakeDoc/edgegate/internal/logger"
)

type captured struct {
	host         string
	shopID       string
	internalAuth string
	requestID    string
	path         string
}

func captureUpstream(t *testing.T, out *captured) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		out.host = r.Host
		out.shopID = r.Header.Get(domain.HeaderShopID)
		out.internalAuth = r.Header.Get(domain.HeaderInternalAuth)
		out.requestID = r.Header.Get(domain.HeaderRequestID)
		out.path = r.URL.Path
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("upstream ok"))
	}))
	t.Cleanup(srv.Close)
	return srv
}

func mustParse(t *testing.T, raw string) *url.URL {
	t.Helper()
	u, err := url.Parse(raw)
	require.NoError(t, err)
	return u
}

func TestStorefrontPreservesTenantHostAndSetsIdentity(t *testing.T) {
	var got captured
	upstream := captureUpstream(t, &got)

	f := New(Options{StorefrontOrigin: mustParse(t, upstream.URL)}, logger.Nop())

	req := httptest.NewRequest(http.MethodGet, "http://shop.example.com/en/products", nil)
	req.Header.Set(domain.HeaderShopID, "spoofed")
	req.Header.Set(domain.HeaderInternalAuth, "spoofed-token")
	rec := httptest.NewRecorder()

	ok := f.Storefront(rec, req, "shop_42", "req-1")
	assert.True(t, ok)
	assert.Equal(t, http.StatusOK, rec.Code)

	assert.Equal(t, "shop.example.com", got.host, "storefront keeps the tenant host")
	assert.Equal(t, "shop_42", got.shopID, "spoofed identity must be overwritten")
	assert.Empty(t, got.internalAuth, "storefront never receives the internal token")
	assert.Equal(t, "req-1", got.requestID)
	assert.Equal(t, "/en/products", got.path)
}

func TestGatewayRewritesHostAndAttachesToken(t *testing.T) {
	var got captured
	upstream := captureUpstream(t, &got)
	gwURL := mustParse(t, upstream.URL)

	f := New(Options{
		StorefrontOrigin: mustParse(t, "http://storefront.invalid"),
		GatewayOrigin:    gwURL,
		GatewayToken:     "s3cret",
	}, logger.Nop())
	require.True(t, f.GatewayConfigured())

	req := httptest.NewRequest(http.MethodPost, "http://shop.example.com/api/checkout-session", nil)
	req.Header.Set(domain.HeaderInternalAuth, "spoofed")
	rec := httptest.NewRecorder()

	ok := f.Gateway(rec, req, "shop_42", "req-2")
	assert.True(t, ok)

	assert.Equal(t, gwURL.Host, got.host, "gateway traffic targets the gateway origin")
	assert.Equal(t, "s3cret", got.internalAuth)
	assert.Equal(t, "shop_42", got.shopID)
	assert.Equal(t, "/api/checkout-session", got.path, "path prefix is preserved")
}

func TestGatewayUnconfigured(t *testing.T) {
	f := New(Options{StorefrontOrigin: mustParse(t, "http://storefront.invalid")}, logger.Nop())
	assert.False(t, f.GatewayConfigured())
}

func TestUpstreamFailureWrites502(t *testing.T) {
	// Reserved TEST-NET address, nothing listens there.
	f := New(Options{StorefrontOrigin: mustParse(t, "http://192.0.2.1:9")}, logger.Nop())

	req := httptest.NewRequest(http.MethodGet, "http://shop.example.com/", nil)
	rec := httptest.NewRecorder()

	ok := f.Storefront(rec, req, "shop_42", "req-3")
	assert.False(t, ok)
	assert.Equal(t, http.StatusBadGateway, rec.Code)

	body, _ := io.ReadAll(rec.Body)
	assert.JSONEq(t, `{"ok":false,"error":"bad gateway"}`, string(body))
}
