package db

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
)

// PoolOptions sizes the pool. Zero values keep the defaults below.
type PoolOptions struct {
	MaxConns int
	MinConns int
}

const (
	defaultMaxConns   = 5
	maxConnIdleTime   = 5 * time.Minute
	healthCheckPeriod = 30 * time.Second
)

func poolConfig(dbURL string, opts PoolOptions) (*pgxpool.Config, error) {
	cfg, err := pgxpool.ParseConfig(dbURL)
	if err != nil {
		return nil, fmt.Errorf("parse database url: %w", err)
	}

	cfg.MaxConns = defaultMaxConns
	if opts.MaxConns > 0 {
		cfg.MaxConns = int32(opts.MaxConns)
	}

	if opts.MinConns > 0 {
		cfg.MinConns = int32(min(opts.MinConns, int(cfg.MaxConns)))
	}

	cfg.MaxConnIdleTime = maxConnIdleTime
	cfg.HealthCheckPeriod = healthCheckPeriod

	return cfg, nil
}

// NewPool connects and pings so startup fails fast on a bad DSN.
func NewPool(ctx context.Context, dbURL string, opts PoolOptions) (*pgxpool.Pool, error) {
	cfg, err := poolConfig(dbURL, opts)
	if err != nil {
		return nil, err
	}

	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	pool, err := pgxpool.NewWithConfig(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("open pool: %w", err)
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping postgres: %w", err)
	}

	return pool, nil
}
