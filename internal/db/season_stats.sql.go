package db

import (
	"context"
	"database/sql"
	"time"
)

const seasonStatColumns = `id, player_id, season, games_played, games_started, points_per_game,
    rebounds_per_game, assists_per_game, steals_per_game, blocks_per_game,
    field_goal_percentage, three_point_percentage, player_efficiency_rating,
    created_at, updated_at`

func scanSeasonStat(rows interface{ Scan(...any) error }, i *SeasonStat) error {
	return rows.Scan(
		&i.ID,
		&i.PlayerID,
		&i.Season,
		&i.GamesPlayed,
		&i.GamesStarted,
		&i.PointsPerGame,
		&i.ReboundsPerGame,
		&i.AssistsPerGame,
		&i.StealsPerGame,
		&i.BlocksPerGame,
		&i.FieldGoalPercentage,
		&i.ThreePointPercentage,
		&i.PlayerEfficiencyRating,
		&i.CreatedAt,
		&i.UpdatedAt,
	)
}

func collectSeasonStats(rows *sql.Rows) ([]SeasonStat, error) {
	defer rows.Close()
	var items []SeasonStat
	for rows.Next() {
		var i SeasonStat
		if err := scanSeasonStat(rows, &i); err != nil {
			return nil, err
		}
		items = append(items, i)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return items, nil
}

var listSeasonStatsByPlayer = `
SELECT ` + seasonStatColumns + `
FROM season_stats
WHERE player_id = ?
ORDER BY season
`

func (q *Queries) ListSeasonStatsByPlayer(ctx context.Context, playerID string) ([]SeasonStat, error) {
	rows, err := q.db.QueryContext(ctx, listSeasonStatsByPlayer, playerID)
	if err != nil {
		return nil, err
	}
	return collectSeasonStats(rows)
}

var listSeasonStats = `
SELECT ` + seasonStatColumns + `
FROM season_stats
ORDER BY player_id, season
`

func (q *Queries) ListSeasonStats(ctx context.Context) ([]SeasonStat, error) {
	rows, err := q.db.QueryContext(ctx, listSeasonStats)
	if err != nil {
		return nil, err
	}
	return collectSeasonStats(rows)
}

const upsertSeasonStat = `
INSERT INTO season_stats (
    id, player_id, season, games_played, games_started, points_per_game,
    rebounds_per_game, assists_per_game, steals_per_game, blocks_per_game,
    field_goal_percentage, three_point_percentage, player_efficiency_rating,
    created_at, updated_at
) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
ON CONFLICT(player_id, season) DO UPDATE SET
    games_played = excluded.games_played,
    games_started = excluded.games_started,
    points_per_game = excluded.points_per_game,
    rebounds_per_game = excluded.rebounds_per_game,
    assists_per_game = excluded.assists_per_game,
    steals_per_game = excluded.steals_per_game,
    blocks_per_game = excluded.blocks_per_game,
    field_goal_percentage = excluded.field_goal_percentage,
    three_point_percentage = excluded.three_point_percentage,
    player_efficiency_rating = excluded.player_efficiency_rating,
    updated_at = excluded.updated_at
`

type UpsertSeasonStatParams struct {
	ID                     string
	PlayerID               string
	Season                 string
	GamesPlayed            int64
	GamesStarted           int64
	PointsPerGame          float64
	ReboundsPerGame        float64
	AssistsPerGame         float64
	StealsPerGame          float64
	BlocksPerGame          float64
	FieldGoalPercentage    float64
	ThreePointPercentage   float64
	PlayerEfficiencyRating float64
	CreatedAt              time.Time
	UpdatedAt              time.Time
}

func (q *Queries) UpsertSeasonStat(ctx context.Context, arg UpsertSeasonStatParams) error {
	_, err := q.db.ExecContext(ctx, upsertSeasonStat,
		arg.ID,
		arg.PlayerID,
		arg.Season,
		arg.GamesPlayed,
		arg.GamesStarted,
		arg.PointsPerGame,
		arg.ReboundsPerGame,
		arg.AssistsPerGame,
		arg.StealsPerGame,
		arg.BlocksPerGame,
		arg.FieldGoalPercentage,
		arg.ThreePointPercentage,
		arg.PlayerEfficiencyRating,
		arg.CreatedAt,
		arg.UpdatedAt,
	)
	return err
}

var getSeasonStat = `
SELECT ` + seasonStatColumns + `
FROM season_stats
WHERE player_id = ? AND season = ?
`

func (q *Queries) GetSeasonStat(ctx context.Context, playerID, season string) (SeasonStat, error) {
	row := q.db.QueryRowContext(ctx, getSeasonStat, playerID, season)
	var i SeasonStat
	err := scanSeasonStat(row, &i)
	return i, err
}

const deleteSeasonStatsByPlayer = `
DELETE FROM season_stats
WHERE player_id = ?
`

func (q *Queries) DeleteSeasonStatsByPlayer(ctx context.Context, playerID string) error {
	_, err := q.db.ExecContext(ctx, deleteSeasonStatsByPlayer, playerID)
	return err
}

const deleteAllSeasonStats = `
DELETE FROM season_stats
`

func (q *Queries) DeleteAllSeasonStats(ctx context.Context) (int64, error) {
	result, err := q.db.ExecContext(ctx, deleteAllSeasonStats)
	if err != nil {
		return 0, err
	}
	return result.RowsAffected()
}
