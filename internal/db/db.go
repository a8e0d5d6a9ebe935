// Package db provides a pgxpool-based connection pool with prepared statement
// registration, plus the Postgres implementations of the preferences and
// notification-envelope stores. The database is optional: without a
// DATABASE_URL the service runs on in-memory stores only.
package db

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/skynolimit/topscores/internal/config"
)

// Pool wraps pgxpool.Pool with application-specific helpers.
type Pool struct {
	*pgxpool.Pool
}

// New creates and validates a new connection pool.
func New(ctx context.Context, cfg *config.Config) (*Pool, error) {
	poolCfg, err := pgxpool.ParseConfig(cfg.DatabaseURL)
	if err != nil {
		return nil, fmt.Errorf("parse database URL: %w", err)
	}

	poolCfg.MinConns = int32(cfg.DBPoolMinConns)
	poolCfg.MaxConns = int32(cfg.DBPoolMaxConns)
	poolCfg.MaxConnLifetime = cfg.DBPoolMaxLife
	poolCfg.MaxConnIdleTime = 5 * time.Minute

	// Register prepared statements on every new connection.
	poolCfg.AfterConnect = func(ctx context.Context, conn *pgx.Conn) error {
		return registerPreparedStatements(ctx, conn)
	}

	pool, err := pgxpool.NewWithConfig(ctx, poolCfg)
	if err != nil {
		return nil, fmt.Errorf("create pool: %w", err)
	}

	// Verify connectivity
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	return &Pool{Pool: pool}, nil
}

// HealthCheck runs a trivial query to verify the database is reachable.
func (p *Pool) HealthCheck(ctx context.Context) error {
	var n int
	return p.QueryRow(ctx, "health_check").Scan(&n)
}

// EnsureSchema creates the tables the service needs if they do not exist.
func (p *Pool) EnsureSchema(ctx context.Context) error {
	ddl := []string{
		`CREATE TABLE IF NOT EXISTS user_preferences (
			device_id    TEXT PRIMARY KEY,
			preferences  JSONB NOT NULL,
			last_updated TIMESTAMPTZ NOT NULL DEFAULT now()
		)`,
		`CREATE TABLE IF NOT EXISTS notification_envelopes (
			key          TEXT PRIMARY KEY,
			device_id    TEXT NOT NULL,
			thread_id    TEXT NOT NULL,
			envelope     JSONB NOT NULL,
			sent         BOOLEAN NOT NULL DEFAULT false,
			attempted_at TIMESTAMPTZ NOT NULL DEFAULT now()
		)`,
		`CREATE INDEX IF NOT EXISTS idx_envelopes_attempted_at
			ON notification_envelopes (attempted_at DESC)`,
	}
	for _, stmt := range ddl {
		if _, err := p.Exec(ctx, stmt); err != nil {
			return fmt.Errorf("ensure schema: %w", err)
		}
	}
	return nil
}

// registerPreparedStatements registers all statements the service uses.
// Prepared statements eliminate parse overhead on the hot paths.
func registerPreparedStatements(ctx context.Context, conn *pgx.Conn) error {
	stmts := map[string]string{
		// Health
		"health_check": "SELECT 1",

		// User preferences
		"prefs_get":    "SELECT preferences FROM user_preferences WHERE device_id = $1",
		"prefs_upsert": "INSERT INTO user_preferences (device_id, preferences, last_updated) VALUES ($1, $2, now()) ON CONFLICT (device_id) DO UPDATE SET preferences = EXCLUDED.preferences, last_updated = now()",
		"prefs_all":    "SELECT preferences FROM user_preferences",

		// Notification envelopes
		"envelope_get":    "SELECT envelope FROM notification_envelopes WHERE key = $1",
		"envelope_upsert": "INSERT INTO notification_envelopes (key, device_id, thread_id, envelope, sent, attempted_at) VALUES ($1, $2, $3, $4, $5, $6) ON CONFLICT (key) DO UPDATE SET envelope = EXCLUDED.envelope, sent = EXCLUDED.sent, attempted_at = EXCLUDED.attempted_at",
		"envelope_list":   "SELECT envelope FROM notification_envelopes ORDER BY attempted_at DESC LIMIT $1",
		"envelope_prune":  "DELETE FROM notification_envelopes WHERE attempted_at < $1",
	}

	for name, sql := range stmts {
		if _, err := conn.Prepare(ctx, name, sql); err != nil {
			return fmt.Errorf("prepare %q: %w", name, err)
		}
	}
	return nil
}
