// Copyright (c) 2026 Libris. All rights reserved.
// Author: tai.buivan.jp@gmail.com

/*
Package postgres opens the pgx connection pool behind the catalogue store.

Queries live with the book repository; this package only owns connection
lifecycle and the per-session settings every connection starts with.
*/
package postgres

import (
	stdctx "context"
	"fmt"
	"log/slog"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/taibuivan/libris/internal/platform/config"
	"github.com/taibuivan/libris/internal/platform/constants"
)

const (
	maxConnLifetime   = time.Hour
	maxConnIdleTime   = 10 * time.Minute
	healthCheckPeriod = time.Minute
	connectTimeout    = 5 * time.Second
	pingTimeout       = 2 * time.Second
)

/*
NewPool connects to dsn and verifies the database answers.

Parameters:
  - context: Bounds the first connection attempt
  - dsn: postgres:// URL or libpq keyword string
  - settings: Pool sizing; zero values keep the pgx defaults
  - logger: Receives the connected event

Returns:
  - *pgxpool.Pool: A pinged pool the caller must Close
  - error: Invalid DSN or unreachable server
*/
func NewPool(context stdctx.Context, dsn string, settings config.Pool, logger *slog.Logger) (*pgxpool.Pool, error) {
	poolConfig, err := pgxpool.ParseConfig(dsn)
	if err != nil {
		return nil, fmt.Errorf("postgres: invalid DSN: %w", err)
	}

	if settings.MaxConns > 0 {
		poolConfig.MaxConns = settings.MaxConns
	}
	if settings.MinConns > 0 && settings.MinConns <= poolConfig.MaxConns {
		poolConfig.MinConns = settings.MinConns
	}
	poolConfig.MaxConnLifetime = maxConnLifetime
	poolConfig.MaxConnIdleTime = maxConnIdleTime
	poolConfig.HealthCheckPeriod = healthCheckPeriod
	poolConfig.ConnConfig.ConnectTimeout = connectTimeout
	poolConfig.ConnConfig.RuntimeParams["application_name"] = constants.AppName
	poolConfig.AfterConnect = sessionSetup(settings.StatementTimeout)

	connectCtx, cancel := stdctx.WithTimeout(context, connectTimeout)
	defer cancel()

	pool, err := pgxpool.NewWithConfig(connectCtx, poolConfig)
	if err != nil {
		return nil, fmt.Errorf("postgres: failed to create pool: %w", err)
	}

	if err := Ping(context, pool); err != nil {
		pool.Close()
		return nil, err
	}

	logger.Info("postgres_pool_connected",
		slog.Int("max_conns", int(poolConfig.MaxConns)),
		slog.Int("min_conns", int(poolConfig.MinConns)),
		slog.Duration("statement_timeout", settings.StatementTimeout),
	)
	return pool, nil
}

// sessionSetup caps every statement on a fresh connection.
func sessionSetup(timeout time.Duration) func(stdctx.Context, *pgx.Conn) error {
	if timeout <= 0 {
		timeout = constants.GlobalRequestTimeout
	}
	statement := fmt.Sprintf("SET statement_timeout = %d", timeout.Milliseconds())

	return func(context stdctx.Context, connection *pgx.Conn) error {
		_, err := connection.Exec(context, statement)
		return err
	}
}

// Ping checks the pool can reach the server within a short deadline.
func Ping(context stdctx.Context, pool *pgxpool.Pool) error {
	pingCtx, cancel := stdctx.WithTimeout(context, pingTimeout)
	defer cancel()

	if err := pool.Ping(pingCtx); err != nil {
		return fmt.Errorf("postgres: ping failed: %w", err)
	}
	return nil
}
