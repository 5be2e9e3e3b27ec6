package app

import (
	"context"
	"fmt"
	"net/url"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	goredis "github.com/redis/go-redis/v9"

	"github.com/MrSnakeDoc/edgegate/internal/config"
	"github.com/MrSnakeDoc/edgegate/internal/hotcache"
	"github.com/MrSnakeDoc/edgegate/internal/httpserver"
	"github.com/MrSnakeDoc/edgegate/internal/httpserver/deps"
	"github.com/MrSnakeDoc/edgegate/internal/logger"
	"github.com/MrSnakeDoc/edgegate/internal/postgres"
	"github.com/MrSnakeDoc/edgegate/internal/proxy"
	"github.com/MrSnakeDoc/edgegate/internal/redis"
	"github.com/MrSnakeDoc/edgegate/internal/resolver"
	"github.com/MrSnakeDoc/edgegate/internal/scheduler"
	"github.com/MrSnakeDoc/edgegate/internal/sources/static"
	pgstore "github.com/MrSnakeDoc/edgegate/internal/store/postgres"
	redisstore "github.com/MrSnakeDoc/edgegate/internal/store/redis"
	"github.com/MrSnakeDoc/edgegate/internal/tasks"
	"github.com/MrSnakeDoc/edgegate/internal/version"
)

type App struct {
	cfg         *config.Config
	logger      logger.Logger
	server      *httpserver.Server
	redisClient *goredis.Client
	pgPool      *pgxpool.Pool
	runner      *tasks.Runner
	reloader    *scheduler.StaticReloader
}

// New assembles the router: tiers are wired in when configured and left
// nil otherwise, so a dev setup can run on a static file alone.
func New() (*App, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}

	loggerClient := logger.New(cfg.LogLevel, cfg.PrettyLog)

	storefrontURL, err := url.Parse(cfg.StorefrontOrigin)
	if err != nil {
		return nil, fmt.Errorf("invalid storefront origin %q: %w", cfg.StorefrontOrigin, err)
	}
	var gatewayURL *url.URL
	if cfg.GatewayOrigin != "" {
		gatewayURL, err = url.Parse(cfg.GatewayOrigin)
		if err != nil {
			return nil, fmt.Errorf("invalid gateway origin %q: %w", cfg.GatewayOrigin, err)
		}
	}

	// Shared cache tier (optional).
	var redisClient *goredis.Client
	var sharedStore *redisstore.Store
	if cfg.RedisAddr != "" {
		redisClient, err = redis.New(redis.ConnectOptions{
			Addr:           cfg.RedisAddr,
			User:           cfg.RedisUser,
			Password:       cfg.RedisPassword,
			DB:             cfg.RedisDB,
			DialTimeout:    cfg.RedisDialTimeout,
			ReadTimeout:    cfg.RedisReadTimeout,
			WriteTimeout:   cfg.RedisWriteTimeout,
			PoolSize:       cfg.RedisPoolSize,
			ConnectTimeout: cfg.RedisConnectTimeout,
			RetryInterval:  cfg.RedisRetryInterval,
			MaxWait:        cfg.RedisMaxWait,
			PingTimeout:    cfg.RedisPingTimeout,
		}, loggerClient)
		if err != nil {
			return nil, fmt.Errorf("failed to connect to redis: %w", err)
		}
		sharedStore = redisstore.NewStore(redisClient)
	} else {
		loggerClient.Info("redis not configured, shared cache tier disabled")
	}

	// Durable store (optional).
	var pgPool *pgxpool.Pool
	var mappingStore *pgstore.Store
	if cfg.DatabaseURL != "" {
		connectCtx, cancel := context.WithTimeout(context.Background(), 60*time.Second)
		pgPool, err = postgres.Connect(connectCtx, postgres.ConnectOptions{
			URL:               cfg.DatabaseURL,
			MaxConns:          cfg.DatabaseMaxConns,
			MinConns:          cfg.DatabaseMinConns,
			HealthCheckPeriod: cfg.DatabaseHealthPeriod,
			RetryAttempts:     cfg.DatabaseRetryAttempts,
			RetryInterval:     cfg.DatabaseRetryInterval,
		}, loggerClient)
		cancel()
		if err != nil {
			return nil, fmt.Errorf("failed to connect to postgres: %w", err)
		}
		mappingStore = pgstore.NewStore(pgPool)
		if err := mappingStore.EnsureSchema(context.Background()); err != nil {
			pgPool.Close()
			return nil, err
		}
	} else {
		loggerClient.Warn("database not configured, durable store tier disabled")
	}

	// Static bootstrap mappings.
	staticSource := static.NewSource()
	envMappings, err := static.ParseEnvJSON(cfg.StaticMappingsJSON)
	if err != nil {
		return nil, err
	}
	staticSource.SetEnv(envMappings)
	if len(envMappings) > 0 {
		loggerClient.Info("loaded static mappings from environment",
			logger.Int("count", len(envMappings)))
	}

	var reloader *scheduler.StaticReloader
	var reloadTrigger chan struct{}
	if cfg.StaticMappingsFile != "" {
		reloadTrigger = make(chan struct{}, 1)
		reloader = scheduler.NewStaticReloader(
			cfg.StaticMappingsFile,
			staticSource,
			loggerClient,
			cfg.StaticReloadInterval,
			reloadTrigger,
		)
	}

	runner := tasks.NewRunner(loggerClient, cfg.TaskTimeout)

	res := resolver.New(
		hotcache.New(cfg.HotCacheSize),
		sharedCacheOrNil(sharedStore),
		staticSource,
		durableStoreOrNil(mappingStore),
		runner,
		loggerClient,
		resolver.TTLs{Positive: cfg.HotPositiveTTL, Negative: cfg.HotNegativeTTL},
	)

	forwarder := proxy.New(proxy.Options{
		StorefrontOrigin: storefrontURL,
		GatewayOrigin:    gatewayURL,
		GatewayToken:     cfg.GatewayToken,
	}, loggerClient)

	d := deps.Deps{
		Logger:        loggerClient,
		StartTime:     time.Now(),
		Version:       version.Version,
		Commit:        version.Commit,
		BuildDate:     version.BuildDate,
		GoVersion:     version.GoVersion,
		AllowedCIDRS:  cfg.AllowedCIDRS,
		TrustProxy:    cfg.TrustProxy,
		AdminToken:    cfg.AdminToken,
		Resolver:      res,
		Forwarder:     forwarder,
		ReloadTrigger: reloadTrigger,
	}
	if mappingStore != nil {
		d.Store = mappingStore
	}
	if sharedStore != nil {
		d.Cache = sharedStore
	}

	server := httpserver.New(cfg, loggerClient, d)

	return &App{
		cfg:         cfg,
		logger:      loggerClient,
		server:      server,
		redisClient: redisClient,
		pgPool:      pgPool,
		runner:      runner,
		reloader:    reloader,
	}, nil
}

// sharedCacheOrNil avoids handing the resolver a typed-nil interface.
func sharedCacheOrNil(s *redisstore.Store) resolver.SharedCache {
	if s == nil {
		return nil
	}
	return s
}

func durableStoreOrNil(s *pgstore.Store) resolver.DurableStore {
	if s == nil {
		return nil
	}
	return s
}

func (a *App) Run() error {
	a.logger.Infof("starting edgegate %s (commit=%s, built=%s, go=%s) on %s",
		version.Version, version.Commit, version.BuildDate, version.GoVersion, a.cfg.ListenAddr)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if a.reloader != nil {
		if err := a.reloader.Start(ctx); err != nil {
			return fmt.Errorf("failed to start static mappings reloader: %w", err)
		}
		a.logger.Info("static mappings reloader started",
			logger.Duration("interval", a.cfg.StaticReloadInterval))
	}

	errCh := make(chan error, 1)
	go func() {
		if err := a.server.Start(); err != nil {
			errCh <- fmt.Errorf("http server error: %w", err)
		}
	}()

	select {
	case <-ctx.Done():
		a.logger.Info("shutting down gracefully...")
	case err := <-errCh:
		return err
	}

	if a.reloader != nil {
		a.reloader.Stop()
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), a.cfg.ShutdownTimeout)
	defer cancel()
	if err := a.server.Stop(shutdownCtx); err != nil {
		return fmt.Errorf("failed to stop server: %w", err)
	}

	// Let in-flight cache write-throughs land before closing clients.
	a.runner.Wait()

	if a.redisClient != nil {
		if err := a.redisClient.Close(); err != nil {
			a.logger.Warnf("failed to close redis: %v", err)
		}
	}
	if a.pgPool != nil {
		a.pgPool.Close()
	}

	a.logger.Info("edgegate stopped cleanly")
	return nil
}
