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

type PlayerRepository struct {
	queries *db.Queries
	db      *sql.DB
	logger  zerolog.Logger
}

func NewPlayerRepository(sqlDB *sql.DB, queries *db.Queries, logger zerolog.Logger) *PlayerRepository {
	return &PlayerRepository{
		queries: queries,
		db:      sqlDB,
		logger:  logger,
	}
}

// Get returns the player row without stats.
func (r *PlayerRepository) Get(ctx context.Context, id string) (*domain.Player, error) {
	player, err := r.queries.GetPlayer(ctx, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("player %s: %w", id, domain.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get player %s: %w", id, err)
	}

	p := toDomainPlayer(player)
	return &p, nil
}

// List returns every player in creation order, without stats.
func (r *PlayerRepository) List(ctx context.Context) ([]domain.Player, error) {
	players, err := r.queries.ListPlayers(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list players: %w", err)
	}

	result := make([]domain.Player, len(players))
	for i, p := range players {
		result[i] = toDomainPlayer(p)
	}
	return result, nil
}

func (r *PlayerRepository) Create(ctx context.Context, fields domain.PlayerFields) (*domain.Player, error) {
	id, err := gonanoid.New()
	if err != nil {
		return nil, fmt.Errorf("failed to generate nanoid: %w", err)
	}

	now := time.Now().UTC()
	err = r.queries.CreatePlayer(ctx, db.CreatePlayerParams{
		ID:        id,
		FirstName: fields.FirstName,
		LastName:  fields.LastName,
		Team:      fields.Team,
		CreatedAt: now,
		UpdatedAt: now,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create player: %w", err)
	}

	r.logger.Debug().Str("player_id", id).Msg("player created")
	return &domain.Player{
		ID:        id,
		FirstName: fields.FirstName,
		LastName:  fields.LastName,
		Team:      fields.Team,
		Stats:     []domain.SeasonStat{},
		CreatedAt: now,
		UpdatedAt: now,
	}, nil
}

func (r *PlayerRepository) Update(ctx context.Context, id string, fields domain.PlayerFields) (*domain.Player, error) {
	affected, err := r.queries.UpdatePlayer(ctx, db.UpdatePlayerParams{
		FirstName: fields.FirstName,
		LastName:  fields.LastName,
		Team:      fields.Team,
		UpdatedAt: time.Now().UTC(),
		ID:        id,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to update player %s: %w", id, err)
	}
	if affected == 0 {
		return nil, fmt.Errorf("player %s: %w", id, domain.ErrNotFound)
	}

	r.logger.Debug().Str("player_id", id).Msg("player updated")
	return r.Get(ctx, id)
}

// Delete removes the player and its season stats in one transaction.
func (r *PlayerRepository) Delete(ctx context.Context, id string) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	qtx := r.queries.WithTx(tx)

	if err := qtx.DeleteSeasonStatsByPlayer(ctx, id); err != nil {
		return fmt.Errorf("failed to delete stats of player %s: %w", id, err)
	}
	affected, err := qtx.DeletePlayer(ctx, id)
	if err != nil {
		return fmt.Errorf("failed to delete player %s: %w", id, err)
	}
	if affected == 0 {
		return fmt.Errorf("player %s: %w", id, domain.ErrNotFound)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit delete of player %s: %w", id, err)
	}
	r.logger.Debug().Str("player_id", id).Msg("player deleted")
	return nil
}

func toDomainPlayer(p db.Player) domain.Player {
	return domain.Player{
		ID:        p.ID,
		FirstName: p.FirstName,
		LastName:  p.LastName,
		Team:      p.Team,
		CreatedAt: p.CreatedAt,
		UpdatedAt: p.UpdatedAt,
	}
}
