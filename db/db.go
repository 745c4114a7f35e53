package db

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"time"

	_ "github.com/lib/pq"
)

const (
	maxOpenConns    = 25
	maxIdleConns    = 25
	connMaxLifetime = 5 * time.Minute
	pingInterval    = 500 * time.Millisecond
)

// Connect opens a PostgreSQL pool and pings it until it answers or timeout elapses,
// so the service can start before the database is ready.
func Connect(dsn string, timeout time.Duration, logger *slog.Logger) (*sql.DB, error) {
	if logger == nil {
		logger = slog.Default()
	}
	pool, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to create database handle: %w", err)
	}
	pool.SetMaxOpenConns(maxOpenConns)
	pool.SetMaxIdleConns(maxIdleConns)
	pool.SetConnMaxLifetime(connMaxLifetime)

	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	for attempt := 1; ; attempt++ {
		err = pool.PingContext(ctx)
		if err == nil {
			logger.Info("database connection established", slog.Int("attempts", attempt))
			return pool, nil
		}
		logger.Debug("database not ready", slog.Int("attempt", attempt), slog.Any("error", err))

		select {
		case <-ctx.Done():
			if closeErr := pool.Close(); closeErr != nil {
				logger.Warn("failed to close database handle after ping error", slog.Any("error", closeErr))
			}
			return nil, fmt.Errorf("failed to ping database within %v: %w", timeout, err)
		case <-time.After(pingInterval):
		}
	}
}
