// Package app wires configuration into the store, cache and services shared
// by the server and the command-line tool.
package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/redis/go-redis/v9"

	"github.com/JonMunkholm/proset/internal/cache"
	"github.com/JonMunkholm/proset/internal/config"
	"github.com/JonMunkholm/proset/internal/core"
	"github.com/JonMunkholm/proset/internal/store"
	"github.com/JonMunkholm/proset/internal/store/memstore"
	"github.com/JonMunkholm/proset/internal/store/mongostore"
	"github.com/JonMunkholm/proset/internal/store/pgstore"
	"github.com/JonMunkholm/proset/internal/vendors"
)

// App holds the long-lived dependencies of a process.
type App struct {
	Config  *config.Config
	Store   store.Store
	Redis   *redis.Client // nil when the cache is disabled
	Vendors *vendors.Service
	SKUs    *core.Service
}

// OpenStore connects the backend named by cfg.Driver.
func OpenStore(ctx context.Context, cfg config.StoreConfig) (store.Store, error) {
	ctx, cancel := context.WithTimeout(ctx, cfg.Timeout)
	defer cancel()

	switch cfg.Driver {
	case config.DriverMongo:
		return mongostore.Connect(ctx, cfg.MongoURI, cfg.MongoDatabase)
	case config.DriverPostgres:
		return pgstore.Connect(ctx, pgstore.PoolConfig{
			URL:             cfg.PostgresURL(),
			MaxConns:        cfg.MaxConns,
			MinConns:        cfg.MinConns,
			MaxConnLifetime: cfg.MaxConnLifetime,
			MaxConnIdleTime: cfg.MaxConnIdleTime,
		})
	case config.DriverMemory:
		slog.Warn("using in-memory store; data is lost on exit")
		return memstore.New(), nil
	}
	return nil, fmt.Errorf("unknown store driver %q", cfg.Driver)
}

// New opens the store and optional cache and builds the services.
func New(ctx context.Context, cfg *config.Config) (*App, error) {
	st, err := OpenStore(ctx, cfg.Store)
	if err != nil {
		return nil, fmt.Errorf("open store: %w", err)
	}
	slog.Info("store connected", "driver", cfg.Store.Driver)

	var rdb *redis.Client
	if cfg.Cache.Enabled() {
		rdb, err = cache.New(ctx, cfg.Cache.RedisAddr)
		if err != nil {
			_ = st.Close(ctx)
			return nil, fmt.Errorf("open cache: %w", err)
		}
		slog.Info("vendor cache enabled", "ttl", cfg.Cache.VendorTTL)
	}

	return Wire(cfg, st, rdb), nil
}

// Wire builds the services over an already opened store and cache.
func Wire(cfg *config.Config, st store.Store, rdb *redis.Client) *App {
	checker := vendors.NewChecker(st, rdb, cfg.Cache.VendorTTL)
	skus := core.NewService(st, checker, core.Options{
		MaxRows: cfg.Import.MaxRows,
		Limiter: core.NewBatchLimiter(cfg.Import.MaxConcurrent, cfg.Import.MaxWait),
		Generator: core.GeneratorConfig{
			Prefix:      cfg.Generate.Prefix,
			Length:      cfg.Generate.Length,
			MaxAttempts: cfg.Generate.MaxAttempts,
			MaxCount:    cfg.Generate.MaxCount,
		},
	})

	return &App{
		Config:  cfg,
		Store:   st,
		Redis:   rdb,
		Vendors: vendors.NewService(st, checker),
		SKUs:    skus,
	}
}

// Close releases the cache and the store.
func (a *App) Close(ctx context.Context) error {
	var errs []error
	if a.Redis != nil {
		if err := a.Redis.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close cache: %w", err))
		}
	}
	if err := a.Store.Close(ctx); err != nil {
		errs = append(errs, fmt.Errorf("close store: %w", err))
	}
	return errors.Join(errs...)
}
