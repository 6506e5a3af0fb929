package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"time"

	"roster-tracker/internal/config"
	"roster-tracker/internal/domain"

	"github.com/rs/zerolog"
)

const generationKey = "roster:similar:generation"

type LookupRecorder interface {
	RecordCacheLookup(hit bool)
}

// SimilarCache memoizes similarity rankings. Every roster write bumps a
// generation counter that is part of each key, which invalidates all cached
// rankings at once without enumerating them. Store failures degrade to
// misses.
type SimilarCache struct {
	store    Store
	ttl      time.Duration
	recorder LookupRecorder
	logger   zerolog.Logger
}

func NewSimilarCache(store Store, cfg *config.Config, recorder LookupRecorder, logger zerolog.Logger) *SimilarCache {
	return &SimilarCache{
		store:    store,
		ttl:      cfg.CacheTTL,
		recorder: recorder,
		logger:   logger.With().Str("component", "similar_cache").Logger(),
	}
}

// Get looks up a ranking. The returned key pins the cache generation current
// at lookup time; pass it to Put so a ranking computed across an
// invalidation is stored under the superseded generation and never served.
func (c *SimilarCache) Get(ctx context.Context, playerID, season string, limit int) ([]domain.SimilarityMatch, string, bool) {
	key, err := c.key(ctx, playerID, season, limit)
	if err != nil {
		c.logger.Warn().Err(err).Msg("cache generation unavailable")
		c.recorder.RecordCacheLookup(false)
		return nil, "", false
	}

	raw, ok, err := c.store.Get(ctx, key)
	if err != nil {
		c.logger.Warn().Err(err).Str("key", key).Msg("cache read failed")
	}
	if !ok || err != nil {
		c.recorder.RecordCacheLookup(false)
		return nil, key, false
	}

	var matches []domain.SimilarityMatch
	if err := json.Unmarshal(raw, &matches); err != nil {
		c.logger.Warn().Err(err).Str("key", key).Msg("discarding undecodable cache entry")
		c.recorder.RecordCacheLookup(false)
		return nil, key, false
	}
	c.recorder.RecordCacheLookup(true)
	return matches, key, true
}

func (c *SimilarCache) Put(ctx context.Context, key string, matches []domain.SimilarityMatch) {
	if key == "" {
		return
	}
	raw, err := json.Marshal(matches)
	if err != nil {
		c.logger.Warn().Err(err).Msg("failed to encode similarity ranking")
		return
	}
	if err := c.store.Set(ctx, key, raw, c.ttl); err != nil {
		c.logger.Warn().Err(err).Str("key", key).Msg("cache write failed")
	}
}

// Invalidate drops every cached ranking.
func (c *SimilarCache) Invalidate(ctx context.Context) {
	gen, err := c.store.Incr(ctx, generationKey)
	if err != nil {
		c.logger.Warn().Err(err).Msg("failed to invalidate similarity cache")
		return
	}
	c.logger.Debug().Int64("generation", gen).Msg("similarity cache invalidated")
}

func (c *SimilarCache) key(ctx context.Context, playerID, season string, limit int) (string, error) {
	var gen int64
	raw, ok, err := c.store.Get(ctx, generationKey)
	if err != nil {
		return "", err
	}
	if ok {
		gen, err = strconv.ParseInt(string(raw), 10, 64)
		if err != nil {
			return "", fmt.Errorf("malformed cache generation %q: %w", raw, err)
		}
	}
	return fmt.Sprintf("roster:similar:%d:%s:%s:%d", gen, playerID, season, limit), nil
}
