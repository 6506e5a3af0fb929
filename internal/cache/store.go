// Package cache keeps computed similarity rankings between requests, either in
// redis or in process memory.
package cache

import (
	"context"
	"fmt"
	"time"

	"roster-tracker/internal/config"

	"github.com/rs/zerolog"
)

// Store is a byte-oriented key value store with expiry. A missing or expired
// key is reported with ok false and a nil error.
type Store interface {
	Get(ctx context.Context, key string) (value []byte, ok bool, err error)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
	Incr(ctx context.Context, key string) (int64, error)
	Close() error
}

// NewStore returns a redis store when cfg.RedisAddr is set and an in-memory
// store otherwise.
func NewStore(cfg *config.Config, logger zerolog.Logger) (Store, error) {
	if cfg.RedisAddr == "" {
		logger.Info().Msg("using in-memory similarity cache")
		return NewMemoryStore(), nil
	}

	store, err := NewRedisStore(context.Background(), cfg.RedisAddr)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to redis at %s: %w", cfg.RedisAddr, err)
	}
	logger.Info().Str("addr", cfg.RedisAddr).Msg("using redis similarity cache")
	return store, nil
}
