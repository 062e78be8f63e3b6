// Command seeder loads the sample customers and products into the configured store.
package main

import (
	"context"
	"flag"
	"os"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	redis "github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/noah-isme/backend-billing/internal/config"
	"github.com/noah-isme/backend-billing/internal/obs"
	"github.com/noah-isme/backend-billing/internal/repo"
	"github.com/noah-isme/backend-billing/internal/seed"
)

func main() {
	driver := flag.String("store", "", "store to seed: redis or postgres (defaults to STORE_DRIVER)")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		panic(err)
	}
	logger := obs.NewLogger(cfg.Obs.LogFormat, cfg.Obs.LogLevel)
	if *driver == "" {
		*driver = cfg.StoreDriver
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	var (
		customers seed.CustomerStore
		products  seed.ProductStore
	)
	switch *driver {
	case config.StoreRedis:
		opts, err := redis.ParseURL(cfg.RedisURL)
		if err != nil {
			fail(logger, err, "parse redis url")
		}
		client := redis.NewClient(opts)
		defer func() { _ = client.Close() }()
		customers, products = repo.NewRedisCustomers(client), repo.NewRedisProducts(client)
	case config.StorePostgres:
		if err := repo.Migrate(cfg.DatabaseURL); err != nil {
			fail(logger, err, "migrate database")
		}
		pool, err := pgxpool.New(ctx, cfg.DatabaseURL)
		if err != nil {
			fail(logger, err, "connect database")
		}
		defer pool.Close()
		customers, products = repo.PostgresCustomers{DB: pool}, repo.PostgresProducts{DB: pool}
	default:
		logger.Error().Str("store", *driver).Msg("the in-memory store is seeded at startup with SEED_SAMPLE_DATA=true")
		os.Exit(2)
	}

	summary, err := seed.Load(ctx, customers, products, time.Now())
	if err != nil {
		fail(logger, err, "seed sample data")
	}
	logger.Info().
		Str("store", *driver).
		Int("customers", summary.Customers).
		Int("products", summary.Products).
		Msg("seeding completed")
}

func fail(logger zerolog.Logger, err error, msg string) {
	logger.Error().Err(err).Msg(msg)
	os.Exit(1)
}
