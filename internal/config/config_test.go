package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("EDGEGATE_STOREFRONT_ORIGIN", "http://storefront:3000")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, ":8080", cfg.ListenAddr)
	assert.Equal(t, "info", cfg.LogLevel)
	assert.Equal(t, 1024, cfg.HotCacheSize)
	assert.Equal(t, 30*time.Second, cfg.HotPositiveTTL)
	assert.Equal(t, 10*time.Second, cfg.HotNegativeTTL)
	assert.Empty(t, cfg.GatewayOrigin)
	assert.Empty(t, cfg.RedisAddr)
	assert.Empty(t, cfg.DatabaseURL)
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("EDGEGATE_STOREFRONT_ORIGIN", "http://storefront:3000")
	t.Setenv("EDGEGATE_LISTEN_ADDR", ":9999")
	t.Setenv("EDGEGATE_GATEWAY_ORIGIN", "http://gateway:4000")
	t.Setenv("EDGEGATE_HOT_POSITIVE_TTL", "45s")
	t.Setenv("EDGEGATE_ALLOWED_CIDRS", "10.0.0.0/8,192.168.1.1")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, ":9999", cfg.ListenAddr)
	assert.Equal(t, "http://gateway:4000", cfg.GatewayOrigin)
	assert.Equal(t, 45*time.Second, cfg.HotPositiveTTL)
	assert.Len(t, cfg.AllowedCIDRS, 2)
}

func TestLoadRequiresStorefrontOrigin(t *testing.T) {
	t.Setenv("EDGEGATE_STOREFRONT_ORIGIN", "")

	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "EDGEGATE_STOREFRONT_ORIGIN")
}
