// Package postgres persists scan cycles, alerts, and momentum snapshots.
package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
)

// Pool wraps pgxpool.Pool for dependency injection.
type Pool struct {
	*pgxpool.Pool
}

// NewPool creates a connection pool and verifies connectivity.
func NewPool(ctx context.Context, dsn string) (*Pool, error) {
	config, err := pgxpool.ParseConfig(dsn)
	if err != nil {
		return nil, fmt.Errorf("parse postgres dsn: %w", err)
	}

	pool, err := pgxpool.NewWithConfig(ctx, config)
	if err != nil {
		return nil, fmt.Errorf("connect to postgres: %w", err)
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping postgres: %w", err)
	}

	return &Pool{Pool: pool}, nil
}

// Close closes the connection pool.
func (p *Pool) Close() {
	p.Pool.Close()
}

var schema = []string{
	`CREATE TABLE IF NOT EXISTS scan_cycle (
		id BIGSERIAL PRIMARY KEY,
		started_at TIMESTAMPTZ NOT NULL,
		finished_at TIMESTAMPTZ,
		chains TEXT[] NOT NULL,
		tokens TEXT[] NOT NULL,
		opportunities_found INTEGER NOT NULL DEFAULT 0
	)`,
	`CREATE TABLE IF NOT EXISTS opportunity_alert (
		id BIGSERIAL PRIMARY KEY,
		scan_cycle_id BIGINT REFERENCES scan_cycle(id) ON DELETE SET NULL,
		chain TEXT NOT NULL,
		token TEXT NOT NULL,
		direction TEXT NOT NULL,
		net_profit_usd DOUBLE PRECISION NOT NULL,
		gross_profit_usd DOUBLE PRECISION NOT NULL,
		momentum_score DOUBLE PRECISION NOT NULL,
		alert_sent_at TIMESTAMPTZ NOT NULL,
		opportunity_key TEXT NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS momentum_snapshot (
		id BIGSERIAL PRIMARY KEY,
		alert_id BIGINT NOT NULL REFERENCES opportunity_alert(id) ON DELETE CASCADE,
		volume_divergence DOUBLE PRECISION,
		persistence_count INTEGER,
		rsi_value DOUBLE PRECISION,
		dominant_has_lower_price BOOLEAN NOT NULL
	)`,
	`CREATE INDEX IF NOT EXISTS idx_opportunity_alert_token_time
		ON opportunity_alert (token, alert_sent_at DESC)`,
	`CREATE INDEX IF NOT EXISTS idx_opportunity_alert_key
		ON opportunity_alert (opportunity_key)`,
	`CREATE INDEX IF NOT EXISTS idx_momentum_snapshot_alert
		ON momentum_snapshot (alert_id)`,
}

// Migrate creates the schema if it does not exist.
func (p *Pool) Migrate(ctx context.Context) error {
	for _, stmt := range schema {
		if _, err := p.Exec(ctx, stmt); err != nil {
			return fmt.Errorf("apply schema: %w", err)
		}
	}
	return nil
}
