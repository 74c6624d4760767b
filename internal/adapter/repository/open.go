package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"

	"github.com/V4T54L/brokerdesk/internal/adapter/repository/file"
	"github.com/V4T54L/brokerdesk/internal/adapter/repository/memory"
	"github.com/V4T54L/brokerdesk/internal/adapter/repository/postgres"
	redisrepo "github.com/V4T54L/brokerdesk/internal/adapter/repository/redis"
	"github.com/V4T54L/brokerdesk/internal/adapter/repository/sqlite"
	"github.com/V4T54L/brokerdesk/internal/domain"
	"github.com/V4T54L/brokerdesk/internal/pkg/config"
	_ "github.com/lib/pq" // postgres driver
	"github.com/redis/go-redis/v9"
)

// Backend is an opened key/value store together with its lifecycle hooks.
type Backend struct {
	KV     domain.KVStore
	Driver string

	ping    func(ctx context.Context) error
	closers []func() error
}

// Ping reports whether the backing service is reachable. In-process drivers always are.
func (b *Backend) Ping(ctx context.Context) error {
	if b.ping == nil {
		return nil
	}
	return b.ping(ctx)
}

// Close releases connections held by the backend.
func (b *Backend) Close() error {
	var errs []error
	for _, c := range b.closers {
		errs = append(errs, c())
	}
	return errors.Join(errs...)
}

// OpenKVStore opens the backend selected by cfg.StoreDriver.
func OpenKVStore(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*Backend, error) {
	b := &Backend{Driver: cfg.StoreDriver}

	switch cfg.StoreDriver {
	case "memory":
		b.KV = memory.NewKVStore()

	case "", "file":
		b.Driver = "file"
		kv, err := file.NewKVStore(cfg.StoreDir, logger)
		if err != nil {
			return nil, err
		}
		b.KV = kv

	case "sqlite":
		kv, err := sqlite.NewKVStore(cfg.SQLitePath)
		if err != nil {
			return nil, err
		}
		b.KV, b.ping = kv, kv.Ping
		b.closers = append(b.closers, kv.Close)

	case "postgres":
		db, err := OpenPostgres(ctx, cfg.PostgresURL)
		if err != nil {
			return nil, err
		}
		kv := postgres.NewKVStore(db, logger)
		if err := kv.EnsureSchema(ctx); err != nil {
			db.Close()
			return nil, err
		}
		b.KV, b.ping = kv, db.PingContext
		b.closers = append(b.closers, db.Close)

	case "redis":
		opts, err := redis.ParseURL(cfg.RedisURL)
		if err != nil {
			return nil, fmt.Errorf("failed to parse redis url: %w", err)
		}
		client := redis.NewClient(opts)
		if err := client.Ping(ctx).Err(); err != nil {
			client.Close()
			return nil, fmt.Errorf("failed to connect to redis: %w", err)
		}
		kv := redisrepo.NewKVStore(client, "", logger)
		b.KV, b.ping = kv, kv.Ping
		b.closers = append(b.closers, client.Close)

	default:
		return nil, fmt.Errorf("unknown store driver %q", cfg.StoreDriver)
	}

	logger.Info("lead store backend ready", "driver", b.Driver)
	return b, nil
}

// OpenPostgres opens and pings a PostgreSQL connection pool.
func OpenPostgres(ctx context.Context, url string) (*sql.DB, error) {
	if url == "" {
		return nil, errors.New("POSTGRES_URL is required for the postgres driver")
	}
	db, err := sql.Open("postgres", url)
	if err != nil {
		return nil, fmt.Errorf("failed to open postgres connection: %w", err)
	}
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to connect to postgres: %w", err)
	}
	return db, nil
}
