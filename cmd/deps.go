package main

import (
	"context"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/redline-leasing/driver-funnel/internal/store"
	"github.com/redline-leasing/driver-funnel/pkg/highlevel"
)

// initStore opens the local ledger. Driver "none" disables it.
func initStore(ctx context.Context) (store.Store, error) {
	switch cfg.Store.Driver {
	case "none":
		return nil, nil
	case "sqlite":
		dsn := cfg.Store.DatabaseURL
		if dsn == "" {
			dsn = "funnel.db"
		}
		return store.NewSQLite(dsn)
	case "postgres":
		return store.NewPostgres(ctx, cfg.Store.DatabaseURL)
	default:
		return nil, eris.Errorf("unsupported store driver: %s", cfg.Store.Driver)
	}
}

// initClient builds the GoHighLevel client, or nil when no API key is set.
// Callers treat a nil client as "not configured" and refuse writes.
func initClient() highlevel.Client {
	if !cfg.HighLevel.Configured() {
		zap.L().Warn("no GoHighLevel API key configured; submissions will be refused")
		return nil
	}
	return highlevel.NewClient(cfg.HighLevel.APIKey,
		highlevel.WithBaseURL(cfg.HighLevel.BaseURL),
		highlevel.WithRateLimit(cfg.HighLevel.RateLimitRPS),
	)
}
