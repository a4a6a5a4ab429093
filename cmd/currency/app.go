package main

import (
	"context"
	"fmt"

	"github.com/richxcame/currencies/internal/currency"
	"github.com/richxcame/currencies/pkg/config"
	"github.com/richxcame/currencies/pkg/database"
	"github.com/richxcame/currencies/pkg/redis"
)

// app holds the registry stack used by the data commands
type app struct {
	cfg      *config.Config
	registry *currency.Registry
	updater  *currency.RateUpdater
	cleanup  []func()
}

func (a *app) Close() {
	for i := len(a.cleanup) - 1; i >= 0; i-- {
		a.cleanup[i]()
	}
}

// newApp connects to the store and loads the registry
func newApp(ctx context.Context, cfg *config.Config) (*app, error) {
	if err := currency.ValidateStore(cfg.Currency.Store); err != nil {
		return nil, err
	}

	a := &app{cfg: cfg}

	pool, err := database.NewPostgresPool(&cfg.Database)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}
	a.cleanup = append(a.cleanup, func() { database.Close(pool) })

	deps := currency.StoreDeps{DB: pool, CacheEnabled: cfg.Currency.Cache}
	if cfg.Currency.Cache {
		client, err := redis.NewRedisClient(&cfg.Redis)
		if err != nil {
			a.Close()
			return nil, fmt.Errorf("failed to connect to redis: %w", err)
		}
		a.cleanup = append(a.cleanup, func() { _ = client.Close() })
		deps.Cache = client
	}

	store, err := currency.NewStore(cfg.Currency.Store, deps)
	if err != nil {
		a.Close()
		return nil, err
	}

	a.registry, err = currency.NewRegistry(ctx, store, currency.Options{
		DefaultCode:  cfg.Currency.Default,
		CacheEnabled: cfg.Currency.Cache,
	})
	if err != nil {
		a.Close()
		return nil, err
	}

	parser, err := currency.NewQuoteParser(cfg.Quote.Format)
	if err != nil {
		a.Close()
		return nil, err
	}

	a.updater = currency.NewRateUpdater(a.registry, store, currency.NewHTTPQuoteFetcher(cfg.Quote), parser)
	return a, nil
}

func (a *app) autoUpdate() currency.AutoUpdateOptions {
	return currency.AutoUpdateOptions{
		Enabled: a.cfg.Currency.AutoUpdate,
		Exclude: a.cfg.Currency.AutoUpdateExclude,
	}
}
