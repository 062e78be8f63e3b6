package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/extra/redisotel/v9"
	redis "github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/noah-isme/backend-billing/internal/billing"
	"github.com/noah-isme/backend-billing/internal/catalog"
	"github.com/noah-isme/backend-billing/internal/config"
	"github.com/noah-isme/backend-billing/internal/customer"
	"github.com/noah-isme/backend-billing/internal/discount"
	"github.com/noah-isme/backend-billing/internal/health"
	"github.com/noah-isme/backend-billing/internal/obs"
	"github.com/noah-isme/backend-billing/internal/ratelimit"
	"github.com/noah-isme/backend-billing/internal/repo"
	"github.com/noah-isme/backend-billing/internal/resilience"
	"github.com/noah-isme/backend-billing/internal/seed"
)

const serviceName = "billing-api"

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic(err)
	}
	logger := obs.NewLogger(cfg.Obs.LogFormat, cfg.Obs.LogLevel).With().Str("env", cfg.AppEnv).Logger()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	tracingEnabled := cfg.Obs.TracingEnabled
	if tracingEnabled {
		shutdown, err := obs.InitTracer(ctx, obs.TracingConfig{
			ServiceName:   serviceName,
			Endpoint:      cfg.Obs.OTLPEndpoint,
			Exporter:      cfg.Obs.TracingExporter,
			SamplingRatio: cfg.Obs.SamplingRatio,
			Environment:   cfg.AppEnv,
		})
		if err != nil {
			logger.Error().Err(err).Msg("initialise tracing")
			tracingEnabled = false
		} else {
			defer func() {
				if err := shutdown(context.Background()); err != nil {
					logger.Error().Err(err).Msg("shutdown tracer")
				}
			}()
		}
	}

	st, err := openStores(ctx, cfg, logger)
	if err != nil {
		logger.Fatal().Err(err).Str("store", cfg.StoreDriver).Msg("open stores")
	}
	defer st.Close()

	if cfg.SeedSampleData {
		summary, err := seed.Load(ctx, st.customerStore, st.productStore, time.Now())
		if err != nil {
			logger.Fatal().Err(err).Msg("seed sample data")
		}
		logger.Info().Int("customers", summary.Customers).Int("products", summary.Products).Msg("sample data loaded")
	}

	resolver, err := discount.NewResolver(cfg.Discount, time.Now)
	if err != nil {
		logger.Fatal().Err(err).Msg("initialise discount resolver")
	}
	for _, p := range resolver.Policies() {
		logger.Info().Str("policy", string(p.Kind())).Int("priority", p.Kind().Priority()).Msg(p.Description())
	}

	var (
		httpMetrics *obs.HTTPMetrics
		billMetrics *obs.BillMetrics
	)
	if cfg.Obs.MetricsEnabled {
		httpMetrics = obs.NewHTTPMetrics(cfg.Obs.MetricsNamespace, obs.ParseBucketsCSV(cfg.Obs.MetricsBuckets), nil)
		billMetrics = obs.NewBillMetrics(cfg.Obs.MetricsNamespace, nil)
	}

	svc := &billing.Service{
		Customers: st.customers,
		Products:  st.products,
		Resolver:  resolver,
		Metrics:   billMetrics,
		Logger:    logger.With().Str("component", "billing").Logger(),
	}

	handler := newRouter(routerDeps{
		Logger:  logger,
		Billing: &billing.Handler{Svc: svc, Logger: logger},
		Health:  health.Handler{Checks: st.checks, Timeout: cfg.Obs.ReadyTimeout},
		RateLimit: ratelimit.Handler{
			Limiter: ratelimit.Limiter{Client: st.redis, Prefix: "billing:ratelimit:"},
			Config:  ratelimit.Config{Key: ratelimit.ByClientIP, Window: cfg.RateLimitWindow, Max: cfg.RateLimitMax},
			OnError: func(err error) { logger.Warn().Err(err).Msg("rate limiter unavailable") },
		},
		HTTPMetrics:    httpMetrics,
		Metrics:        metricsHandler(cfg.Obs.MetricsEnabled),
		Tracing:        tracingEnabled,
		AllowedOrigins: cfg.CORSAllowedOrigins,
		BodyLimit:      cfg.BodyLimitBytes,
		HSTSMaxAge:     cfg.HSTSMaxAge,
	})

	srv := &http.Server{
		Addr:              cfg.HTTPAddr(),
		Handler:           handler,
		ReadHeaderTimeout: 5 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info().Str("addr", srv.Addr).Str("store", cfg.StoreDriver).Msg("server starting")
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal().Err(err).Msg("server exited unexpectedly")
		}
	case <-ctx.Done():
		health.SetReady(false)
		logger.Info().Msg("shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			logger.Error().Err(err).Msg("graceful shutdown")
		}
	}
}

type stores struct {
	customers     customer.Lookup
	products      catalog.Lookup
	customerStore seed.CustomerStore
	productStore  seed.ProductStore
	redis         *redis.Client
	pool          *pgxpool.Pool
	checks        map[string]health.Check
}

// openStores connects the lookup backends selected by STORE_DRIVER. With the
// postgres driver a configured REDIS_URL adds a read-through cache.
func openStores(ctx context.Context, cfg *config.Config, logger zerolog.Logger) (*stores, error) {
	st := &stores{checks: map[string]health.Check{}}

	if cfg.RedisURL != "" {
		client, err := openRedis(ctx, cfg)
		if err != nil {
			return nil, err
		}
		st.redis = client
		st.checks["redis"] = health.Redis(client)
	}

	switch cfg.StoreDriver {
	case config.StoreMemory:
		c, p := repo.NewMemoryCustomers(), repo.NewMemoryProducts()
		st.customers, st.products = c, p
		st.customerStore, st.productStore = c, p
	case config.StoreRedis:
		c, p := repo.NewRedisCustomers(st.redis), repo.NewRedisProducts(st.redis)
		st.customers, st.products = c, p
		st.customerStore, st.productStore = c, p
	case config.StorePostgres:
		pool, err := openPostgres(ctx, cfg)
		if err != nil {
			st.Close()
			return nil, err
		}
		st.pool = pool
		st.checks["db"] = health.Postgres(pool)
		c, p := repo.PostgresCustomers{DB: pool}, repo.PostgresProducts{DB: pool}
		st.customers, st.products = c, p
		st.customerStore, st.productStore = c, p
		if st.redis != nil {
			breaker := resilience.NewBreaker("lookup_cache", 5, 0.5, 30*time.Second).WithLogger(logger)
			if cfg.Obs.MetricsEnabled {
				breaker.WithMetrics(resilience.NewMetrics(cfg.Obs.MetricsNamespace, nil))
			}
			cache := repo.NewCache(st.redis, cfg.LookupCacheTTL).WithBreaker(breaker)
			st.customers = repo.CachedCustomers{Source: c, Cache: cache, Logger: logger}
			st.products = repo.CachedProducts{Source: p, Cache: cache, Logger: logger}
		}
	default:
		st.Close()
		return nil, fmt.Errorf("unsupported store driver %q", cfg.StoreDriver)
	}
	return st, nil
}

func (s *stores) Close() {
	if s.pool != nil {
		s.pool.Close()
	}
	if s.redis != nil {
		_ = s.redis.Close()
	}
}

func openRedis(ctx context.Context, cfg *config.Config) (*redis.Client, error) {
	opts, err := redis.ParseURL(cfg.RedisURL)
	if err != nil {
		return nil, fmt.Errorf("parse redis url: %w", err)
	}
	client := redis.NewClient(opts)
	if cfg.Obs.TracingEnabled {
		if err := redisotel.InstrumentTracing(client); err != nil {
			return nil, fmt.Errorf("instrument redis tracing: %w", err)
		}
	}
	if cfg.Obs.MetricsEnabled {
		if err := redisotel.InstrumentMetrics(client); err != nil {
			return nil, fmt.Errorf("instrument redis metrics: %w", err)
		}
	}
	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("ping redis: %w", err)
	}
	return client, nil
}

func openPostgres(ctx context.Context, cfg *config.Config) (*pgxpool.Pool, error) {
	if err := repo.Migrate(cfg.DatabaseURL); err != nil {
		return nil, err
	}
	poolConfig, err := pgxpool.ParseConfig(cfg.DatabaseURL)
	if err != nil {
		return nil, fmt.Errorf("parse database config: %w", err)
	}
	if cfg.Obs.TracingEnabled {
		poolConfig.ConnConfig.Tracer = obs.PGXTracer{}
	}
	if poolConfig.ConnConfig.RuntimeParams == nil {
		poolConfig.ConnConfig.RuntimeParams = map[string]string{}
	}
	poolConfig.ConnConfig.RuntimeParams["application_name"] = serviceName

	connectCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	pool, err := pgxpool.NewWithConfig(connectCtx, poolConfig)
	if err != nil {
		return nil, fmt.Errorf("connect database: %w", err)
	}
	if err := pool.Ping(connectCtx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}
	return pool, nil
}
