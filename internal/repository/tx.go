package repository

import (
	"context"
	"fmt"
)

// InTx runs fn with player and stats repositories bound to one transaction.
// The transaction commits when fn returns nil and rolls back otherwise. The
// bound repositories must not start transactions of their own, so Delete and
// UpsertBatch are off limits inside fn.
func (r *PlayerRepository) InTx(ctx context.Context, fn func(players *PlayerRepository, stats *StatsRepository) error) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	qtx := r.queries.WithTx(tx)
	players := &PlayerRepository{queries: qtx, logger: r.logger}
	stats := &StatsRepository{queries: qtx, logger: r.logger}

	if err := fn(players, stats); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

// Clear removes every player and season line. The counts are the deleted
// players and stat lines.
func (r *PlayerRepository) Clear(ctx context.Context) (int64, int64, error) {
	stats, err := r.queries.DeleteAllSeasonStats(ctx)
	if err != nil {
		return 0, 0, fmt.Errorf("failed to clear season stats: %w", err)
	}
	players, err := r.queries.DeleteAllPlayers(ctx)
	if err != nil {
		return 0, 0, fmt.Errorf("failed to clear players: %w", err)
	}

	r.logger.Debug().Int64("players", players).Int64("stats", stats).Msg("roster cleared")
	return players, stats, nil
}
