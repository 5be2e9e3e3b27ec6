// Package config loads the router configuration from the environment,
// optionally seeded from a .env file for local development.
package config

import (
	"errors"
	"fmt"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

type Config struct {
	ListenAddr      string        `env:"EDGEGATE_LISTEN_ADDR" envDefault:":8080"`
	ShutdownTimeout time.Duration `env:"EDGEGATE_SHUTDOWN_TIMEOUT" envDefault:"5s"`

	LogLevel  string `env:"EDGEGATE_LOG_LEVEL" envDefault:"info"`
	PrettyLog bool   `env:"EDGEGATE_PRETTY_LOG" envDefault:"false"`

	// Upstreams. The storefront origin is mandatory; a router with
	// nowhere to send traffic is misconfigured. The gateway origin is
	// optional: without it, gateway-classified routes answer 502.
	StorefrontOrigin string `env:"EDGEGATE_STOREFRONT_ORIGIN"`
	GatewayOrigin    string `env:"EDGEGATE_GATEWAY_ORIGIN"`
	GatewayToken     string `env:"EDGEGATE_GATEWAY_TOKEN"`

	// Control plane shared secret. Empty disables all mutations.
	AdminToken string `env:"EDGEGATE_ADMIN_TOKEN"`

	// Hot tier.
	HotCacheSize   int           `env:"EDGEGATE_HOT_CACHE_SIZE" envDefault:"1024"`
	HotPositiveTTL time.Duration `env:"EDGEGATE_HOT_POSITIVE_TTL" envDefault:"30s"`
	HotNegativeTTL time.Duration `env:"EDGEGATE_HOT_NEGATIVE_TTL" envDefault:"10s"`
	TaskTimeout    time.Duration `env:"EDGEGATE_TASK_TIMEOUT" envDefault:"5s"`

	// Shared cache tier (Redis). Empty address disables the tier.
	RedisAddr           string        `env:"EDGEGATE_REDIS_ADDR"`
	RedisUser           string        `env:"EDGEGATE_REDIS_USERNAME"`
	RedisPassword       string        `env:"EDGEGATE_REDIS_PASSWORD"`
	RedisDB             int           `env:"EDGEGATE_REDIS_DB" envDefault:"0"`
	RedisDialTimeout    time.Duration `env:"EDGEGATE_REDIS_DIAL_TIMEOUT" envDefault:"5s"`
	RedisReadTimeout    time.Duration `env:"EDGEGATE_REDIS_READ_TIMEOUT" envDefault:"3s"`
	RedisWriteTimeout   time.Duration `env:"EDGEGATE_REDIS_WRITE_TIMEOUT" envDefault:"3s"`
	RedisPoolSize       int           `env:"EDGEGATE_REDIS_POOL_SIZE" envDefault:"10"`
	RedisConnectTimeout time.Duration `env:"EDGEGATE_REDIS_CONNECT_TIMEOUT" envDefault:"30s"`
	RedisRetryInterval  time.Duration `env:"EDGEGATE_REDIS_RETRY_INTERVAL" envDefault:"2s"`
	RedisMaxWait        time.Duration `env:"EDGEGATE_REDIS_MAX_WAIT" envDefault:"10s"`
	RedisPingTimeout    time.Duration `env:"EDGEGATE_REDIS_PING_TIMEOUT" envDefault:"5s"`

	// Durable store (Postgres). Empty URL disables the tier, leaving
	// the router on static configuration only.
	DatabaseURL           string        `env:"EDGEGATE_DATABASE_URL"`
	DatabaseMaxConns      int32         `env:"EDGEGATE_DATABASE_MAX_CONNS" envDefault:"10"`
	DatabaseMinConns      int32         `env:"EDGEGATE_DATABASE_MIN_CONNS" envDefault:"2"`
	DatabaseHealthPeriod  time.Duration `env:"EDGEGATE_DATABASE_HEALTH_PERIOD" envDefault:"30s"`
	DatabaseRetryAttempts int           `env:"EDGEGATE_DATABASE_RETRY_ATTEMPTS" envDefault:"5"`
	DatabaseRetryInterval time.Duration `env:"EDGEGATE_DATABASE_RETRY_INTERVAL" envDefault:"2s"`

	// Static bootstrap mappings: an inline JSON object of host ->
	// mapping and/or a YAML file reloaded periodically.
	StaticMappingsJSON   string        `env:"EDGEGATE_STATIC_MAPPINGS"`
	StaticMappingsFile   string        `env:"EDGEGATE_STATIC_MAPPINGS_FILE"`
	StaticReloadInterval time.Duration `env:"EDGEGATE_STATIC_RELOAD_INTERVAL" envDefault:"5m"`

	// Access restrictions for /__internal.
	AllowedCIDRS []string `env:"EDGEGATE_ALLOWED_CIDRS" envSeparator:","`
	TrustProxy   bool     `env:"EDGEGATE_TRUST_PROXY" envDefault:"false"`
}

// Load reads configuration from the environment. A .env file in the
// working directory is honored when present.
func Load() (*Config, error) {
	_ = godotenv.Load()

	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("failed to parse environment: %w", err)
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) validate() error {
	if c.StorefrontOrigin == "" {
		return errors.New("EDGEGATE_STOREFRONT_ORIGIN is required")
	}
	if c.HotCacheSize <= 0 {
		return fmt.Errorf("EDGEGATE_HOT_CACHE_SIZE must be positive, got %d", c.HotCacheSize)
	}
	return nil
}
