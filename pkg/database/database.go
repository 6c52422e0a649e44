// Package database opens the PostgreSQL pool and applies the embedded schema.
package database

import (
	"context"
	"fmt"
	"time"

	"invoicedash/internal/config"
	"invoicedash/internal/logger"

	pgxzero "github.com/jackc/pgx-zerolog"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jackc/pgx/v5/tracelog"
	"github.com/rs/zerolog"
)

const pingTimeout = 10 * time.Second

// NewPool creates the connection pool and checks the database is reachable.
// Statements are traced to the log only in the local environment.
func NewPool(ctx context.Context, cfg config.DatabaseConfig, env string, log zerolog.Logger) (*pgxpool.Pool, error) {
	poolConfig, err := pgxpool.ParseConfig(cfg.DSN())
	if err != nil {
		return nil, fmt.Errorf("failed to parse pgx pool config: %w", err)
	}

	if cfg.MaxConns > 0 {
		poolConfig.MaxConns = cfg.MaxConns
	}
	if cfg.ConnMaxLifetime > 0 {
		poolConfig.MaxConnLifetime = cfg.ConnMaxLifetime
	}

	if env == config.EnvLocal {
		level := log.GetLevel()
		poolConfig.ConnConfig.Tracer = &tracelog.TraceLog{
			Logger:   pgxzero.NewLogger(logger.NewPgxLogger(level)),
			LogLevel: logger.PgxTraceLogLevel(level),
		}
	}

	pool, err := pgxpool.NewWithConfig(ctx, poolConfig)
	if err != nil {
		return nil, fmt.Errorf("failed to create pgx pool: %w", err)
	}

	pingCtx, cancel := context.WithTimeout(ctx, pingTimeout)
	defer cancel()
	if err := pool.Ping(pingCtx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	log.Info().Msg("connected to the database")
	return pool, nil
}
