package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"roster-tracker/internal/db"
	"roster-tracker/internal/domain"

	gonanoid "github.com/matoous/go-nanoid/v2"
	"github.com/rs/zerolog"
)

type StatsRepository struct {
	queries *db.Queries
	db      *sql.DB
	logger  zerolog.Logger
}

func NewStatsRepository(sqlDB *sql.DB, queries *db.Queries, logger zerolog.Logger) *StatsRepository {
	return &StatsRepository{
		queries: queries,
		db:      sqlDB,
		logger:  logger,
	}
}

// Upsert stores stat as the player's line for stat.Season, replacing an
// existing line for the same season.
func (r *StatsRepository) Upsert(ctx context.Context, stat domain.SeasonStat) (*domain.SeasonStat, error) {
	id := stat.ID
	if id == "" {
		var err error
		id, err = gonanoid.New()
		if err != nil {
			return nil, fmt.Errorf("failed to generate nanoid: %w", err)
		}
	}

	now := time.Now().UTC()
	err := r.queries.UpsertSeasonStat(ctx, db.UpsertSeasonStatParams{
		ID:                     id,
		PlayerID:               stat.PlayerID,
		Season:                 stat.Season,
		GamesPlayed:            int64(stat.GamesPlayed),
		GamesStarted:           int64(stat.GamesStarted),
		PointsPerGame:          stat.PointsPerGame,
		ReboundsPerGame:        stat.ReboundsPerGame,
		AssistsPerGame:         stat.AssistsPerGame,
		StealsPerGame:          stat.StealsPerGame,
		BlocksPerGame:          stat.BlocksPerGame,
		FieldGoalPercentage:    stat.FieldGoalPct,
		ThreePointPercentage:   stat.ThreePointPct,
		PlayerEfficiencyRating: stat.EfficiencyRating,
		CreatedAt:              now,
		UpdatedAt:              now,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to upsert season %s of player %s: %w", stat.Season, stat.PlayerID, err)
	}

	stored, err := r.queries.GetSeasonStat(ctx, stat.PlayerID, stat.Season)
	if err != nil {
		return nil, fmt.Errorf("failed to read back season %s of player %s: %w", stat.Season, stat.PlayerID, err)
	}
	s := toDomainStat(stored)
	return &s, nil
}

func (r *StatsRepository) UpsertBatch(ctx context.Context, stats []domain.SeasonStat) error {
	if len(stats) == 0 {
		return nil
	}

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	qtx := r.queries.WithTx(tx)
	now := time.Now().UTC()

	for _, stat := range stats {
		id := stat.ID
		if id == "" {
			id, err = gonanoid.New()
			if err != nil {
				return fmt.Errorf("failed to generate nanoid: %w", err)
			}
		}

		err := qtx.UpsertSeasonStat(ctx, db.UpsertSeasonStatParams{
			ID:                     id,
			PlayerID:               stat.PlayerID,
			Season:                 stat.Season,
			GamesPlayed:            int64(stat.GamesPlayed),
			GamesStarted:           int64(stat.GamesStarted),
			PointsPerGame:          stat.PointsPerGame,
			ReboundsPerGame:        stat.ReboundsPerGame,
			AssistsPerGame:         stat.AssistsPerGame,
			StealsPerGame:          stat.StealsPerGame,
			BlocksPerGame:          stat.BlocksPerGame,
			FieldGoalPercentage:    stat.FieldGoalPct,
			ThreePointPercentage:   stat.ThreePointPct,
			PlayerEfficiencyRating: stat.EfficiencyRating,
			CreatedAt:              now,
			UpdatedAt:              now,
		})
		if err != nil {
			return fmt.Errorf("failed to upsert season stat: %w", err)
		}
	}

	return tx.Commit()
}

func (r *StatsRepository) GetByPlayer(ctx context.Context, playerID string) ([]domain.SeasonStat, error) {
	records, err := r.queries.ListSeasonStatsByPlayer(ctx, playerID)
	if err != nil {
		return nil, fmt.Errorf("failed to list stats of player %s: %w", playerID, err)
	}
	return toDomainStats(records), nil
}

// GetAllByPlayer groups every stored season line by player id.
func (r *StatsRepository) GetAllByPlayer(ctx context.Context) (map[string][]domain.SeasonStat, error) {
	records, err := r.queries.ListSeasonStats(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list stats: %w", err)
	}

	result := make(map[string][]domain.SeasonStat)
	for _, rec := range records {
		result[rec.PlayerID] = append(result[rec.PlayerID], toDomainStat(rec))
	}
	return result, nil
}

func (r *StatsRepository) Get(ctx context.Context, playerID, season string) (*domain.SeasonStat, error) {
	record, err := r.queries.GetSeasonStat(ctx, playerID, season)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("season %s of player %s: %w", season, playerID, domain.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get season %s of player %s: %w", season, playerID, err)
	}
	s := toDomainStat(record)
	return &s, nil
}

func toDomainStats(records []db.SeasonStat) []domain.SeasonStat {
	result := make([]domain.SeasonStat, len(records))
	for i, rec := range records {
		result[i] = toDomainStat(rec)
	}
	return result
}

func toDomainStat(r db.SeasonStat) domain.SeasonStat {
	return domain.SeasonStat{
		ID:               r.ID,
		PlayerID:         r.PlayerID,
		Season:           r.Season,
		GamesPlayed:      int(r.GamesPlayed),
		GamesStarted:     int(r.GamesStarted),
		PointsPerGame:    r.PointsPerGame,
		ReboundsPerGame:  r.ReboundsPerGame,
		AssistsPerGame:   r.AssistsPerGame,
		StealsPerGame:    r.StealsPerGame,
		BlocksPerGame:    r.BlocksPerGame,
		FieldGoalPct:     r.FieldGoalPercentage,
		ThreePointPct:    r.ThreePointPercentage,
		EfficiencyRating: r.PlayerEfficiencyRating,
	}
}
