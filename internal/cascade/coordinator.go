// Package cascade coordinates a primary player fetch with a dependent
// similarity fetch keyed on the player's most recent season.
package cascade

import (
	"context"
	"sync"

	"roster-tracker/internal/domain"
	"roster-tracker/internal/resource"

	"github.com/rs/zerolog"
)

const (
	PrimaryResource   = "player"
	SecondaryResource = "similar"
)

type Client interface {
	GetPlayer(ctx context.Context, id string) (*domain.Player, error)
	GetSimilar(ctx context.Context, id, season string) ([]domain.SimilarityMatch, error)
}

type (
	PrimaryState   = resource.State[*domain.Player]
	SecondaryState = resource.State[[]domain.SimilarityMatch]
)

// Coordinator exclusively owns both sessions. SetKey and the primary-to-secondary
// hand-off are serialised by mu, so the secondary only ever starts for the
// primary generation that is current at that moment.
type Coordinator struct {
	mu        sync.Mutex
	primary   *resource.Session[string, *domain.Player]
	secondary *resource.Session[domain.SimilarKey, []domain.SimilarityMatch]
	logger    zerolog.Logger
}

func NewCoordinator(client Client, logger zerolog.Logger, opts ...resource.Option) *Coordinator {
	logger = logger.With().Str("component", "cascade").Logger()
	opts = append(opts, resource.WithLogger(logger))

	c := &Coordinator{logger: logger}
	c.primary = resource.New[string, *domain.Player](PrimaryResource, client.GetPlayer, opts...)
	c.secondary = resource.New[domain.SimilarKey, []domain.SimilarityMatch](SecondaryResource, func(ctx context.Context, key domain.SimilarKey) ([]domain.SimilarityMatch, error) {
		return client.GetSimilar(ctx, key.PlayerID, key.Season)
	}, opts...)
	c.primary.OnSettled(c.onPrimarySettled)

	return c
}

// SetKey points the coordinator at player id. Both sessions move to a new
// generation, so in-flight responses for the previous id are discarded. An
// empty id returns both sessions to Idle.
func (c *Coordinator) SetKey(id string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.secondary.Reset()
	if id == "" {
		c.primary.Reset()
		c.logger.Debug().Msg("key cleared")
		return
	}

	gen := c.primary.Start(id)
	c.logger.Debug().Str("player_id", id).Uint64("generation", gen).Msg("key set")
}

func (c *Coordinator) Key() string {
	return c.primary.Key()
}

func (c *Coordinator) Primary() PrimaryState {
	return c.primary.Snapshot()
}

func (c *Coordinator) Secondary() SecondaryState {
	return c.secondary.Snapshot()
}

// OnChange registers fn for transitions of either session.
func (c *Coordinator) OnChange(fn func()) {
	c.primary.OnChange(func(PrimaryState) { fn() })
	c.secondary.OnChange(func(SecondaryState) { fn() })
}

// Wait blocks until neither stage has a fetch running. The secondary stage is
// started before the primary fetch is considered finished, so waiting in this
// order covers the whole cascade.
func (c *Coordinator) Wait() {
	c.primary.Wait()
	c.secondary.Wait()
}

func (c *Coordinator) Close() {
	c.primary.Close()
	c.secondary.Close()
}

func (c *Coordinator) onPrimarySettled(st PrimaryState) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if st.Generation != c.primary.Generation() {
		return
	}

	switch st.Status {
	case resource.StatusFailed:
		c.secondary.Reset()
		c.logger.Debug().Str("player_id", c.primary.Key()).Msg("primary failed, secondary skipped")

	case resource.StatusReady:
		key := domain.SimilarKey{PlayerID: c.primary.Key()}
		var stats []domain.SeasonStat
		if st.Value != nil {
			stats = st.Value.Stats
		}
		season, ok := DeriveSeasonKey(stats)
		if !ok {
			c.secondary.Resolve(key, []domain.SimilarityMatch{})
			c.logger.Debug().Str("player_id", key.PlayerID).Msg("player has no seasons, secondary resolved empty")
			return
		}
		key.Season = season
		c.secondary.Start(key)
	}
}

// DeriveSeasonKey picks the season with the lexicographically greatest label;
// the first occurrence wins ties. The comparison is textual, which orders
// fixed-width year labels correctly.
func DeriveSeasonKey(stats []domain.SeasonStat) (string, bool) {
	if len(stats) == 0 {
		return "", false
	}
	latest := stats[0].Season
	for _, s := range stats[1:] {
		if s.Season > latest {
			latest = s.Season
		}
	}
	return latest, true
}
