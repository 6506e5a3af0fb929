package service

import (
	"context"
	"fmt"
	"strings"

	"roster-tracker/internal/cache"
	"roster-tracker/internal/constants"
	"roster-tracker/internal/domain"
	"roster-tracker/internal/repository"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"
)

type PlayerService struct {
	players *repository.PlayerRepository
	stats   *repository.StatsRepository
	cache   *cache.SimilarCache
	logger  zerolog.Logger
}

func NewPlayerService(players *repository.PlayerRepository, stats *repository.StatsRepository, cache *cache.SimilarCache, logger zerolog.Logger) *PlayerService {
	return &PlayerService{players: players, stats: stats, cache: cache, logger: logger}
}

// List returns every player with its season lines attached.
func (s *PlayerService) List(ctx context.Context) ([]domain.Player, error) {
	ctx, cancel := context.WithTimeout(ctx, constants.DatabaseTimeout)
	defer cancel()

	var players []domain.Player
	var stats map[string][]domain.SeasonStat

	g, gCtx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		players, err = s.players.List(gCtx)
		return err
	})
	g.Go(func() error {
		var err error
		stats, err = s.stats.GetAllByPlayer(gCtx)
		return err
	})
	if err := g.Wait(); err != nil {
		s.logger.Error().Err(err).Msg("failed to list players")
		return nil, err
	}

	for i := range players {
		players[i].Stats = nonNil(stats[players[i].ID])
	}
	s.logger.Debug().Int("count", len(players)).Msg("players listed")
	return players, nil
}

func (s *PlayerService) Get(ctx context.Context, id string) (*domain.Player, error) {
	ctx, cancel := context.WithTimeout(ctx, constants.DatabaseTimeout)
	defer cancel()

	var player *domain.Player
	var stats []domain.SeasonStat

	g, gCtx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		player, err = s.players.Get(gCtx, id)
		return err
	})
	g.Go(func() error {
		var err error
		stats, err = s.stats.GetByPlayer(gCtx, id)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	player.Stats = nonNil(stats)
	return player, nil
}

func (s *PlayerService) Create(ctx context.Context, fields domain.PlayerFields) (*domain.Player, error) {
	ctx, cancel := context.WithTimeout(ctx, constants.DatabaseTimeout)
	defer cancel()

	fields = fields.Normalized()
	if err := fields.Validate(); err != nil {
		return nil, err
	}

	player, err := s.players.Create(ctx, fields)
	if err != nil {
		s.logger.Error().Err(err).Msg("failed to create player")
		return nil, err
	}

	s.cache.Invalidate(ctx)
	s.logger.Info().Str("player_id", player.ID).Msg("player created")
	return player, nil
}

func (s *PlayerService) Update(ctx context.Context, id string, fields domain.PlayerFields) (*domain.Player, error) {
	ctx, cancel := context.WithTimeout(ctx, constants.DatabaseTimeout)
	defer cancel()

	fields = fields.Normalized()
	if err := fields.Validate(); err != nil {
		return nil, err
	}

	if _, err := s.players.Update(ctx, id, fields); err != nil {
		return nil, err
	}

	s.cache.Invalidate(ctx)
	s.logger.Info().Str("player_id", id).Msg("player updated")
	return s.Get(ctx, id)
}

func (s *PlayerService) Delete(ctx context.Context, id string) error {
	ctx, cancel := context.WithTimeout(ctx, constants.DatabaseTimeout)
	defer cancel()

	if err := s.players.Delete(ctx, id); err != nil {
		return err
	}

	s.cache.Invalidate(ctx)
	s.logger.Info().Str("player_id", id).Msg("player deleted")
	return nil
}

// PutSeasonStat records or replaces the player's line for stat.Season.
func (s *PlayerService) PutSeasonStat(ctx context.Context, playerID string, stat domain.SeasonStat) (*domain.SeasonStat, error) {
	ctx, cancel := context.WithTimeout(ctx, constants.DatabaseTimeout)
	defer cancel()

	stat.Season = strings.TrimSpace(stat.Season)
	if stat.Season == "" {
		return nil, fmt.Errorf("%w: season is required", domain.ErrValidation)
	}
	if stat.GamesPlayed < 0 || stat.GamesStarted < 0 {
		return nil, fmt.Errorf("%w: game counts must not be negative", domain.ErrValidation)
	}

	if _, err := s.players.Get(ctx, playerID); err != nil {
		return nil, err
	}

	stat.ID = ""
	stat.PlayerID = playerID
	stored, err := s.stats.Upsert(ctx, stat)
	if err != nil {
		s.logger.Error().Err(err).Str("player_id", playerID).Str("season", stat.Season).Msg("failed to store season stat")
		return nil, err
	}

	s.cache.Invalidate(ctx)
	s.logger.Info().Str("player_id", playerID).Str("season", stat.Season).Msg("season stat stored")
	return stored, nil
}

func nonNil[T any](s []T) []T {
	if s == nil {
		return []T{}
	}
	return s
}
