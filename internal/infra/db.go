package infra

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"
)

const (
	pingDeadline   = 30 * time.Second
	maxPingBackoff = 5 * time.Second
)

// NewDBPool opens the pgx pool and waits until Postgres answers a ping, backing off
// between attempts.
func NewDBPool(ctx context.Context, cfg *Config, logger zerolog.Logger) (*pgxpool.Pool, error) {
	if cfg == nil {
		return nil, fmt.Errorf("config is required")
	}

	poolCfg, err := pgxpool.ParseConfig(cfg.DatabaseURL)
	if err != nil {
		return nil, fmt.Errorf("parse database url: %w", err)
	}

	poolCfg.MaxConns = 10
	poolCfg.MinConns = 1
	poolCfg.MaxConnLifetime = time.Hour
	poolCfg.MaxConnIdleTime = 30 * time.Minute

	pool, err := pgxpool.NewWithConfig(ctx, poolCfg)
	if err != nil {
		return nil, fmt.Errorf("connect database: %w", err)
	}

	if err := waitForPing(ctx, pool.Ping, logger); err != nil {
		pool.Close()
		return nil, err
	}
	return pool, nil
}

func waitForPing(ctx context.Context, ping func(context.Context) error, logger zerolog.Logger) error {
	ctx, cancel := context.WithTimeout(ctx, pingDeadline)
	defer cancel()

	backoff := 500 * time.Millisecond
	for {
		err := ping(ctx)
		if err == nil {
			return nil
		}
		logger.Warn().Err(err).Dur("retry_in", backoff).Msg("postgres not ready yet")
		select {
		case <-ctx.Done():
			return fmt.Errorf("ping database: %w", err)
		case <-time.After(backoff):
		}
		if backoff < maxPingBackoff {
			backoff *= 2
		}
	}
}
