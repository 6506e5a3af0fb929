package db

import (
	"context"
	"time"
)

const getPlayer = `
SELECT id, first_name, last_name, team, created_at, updated_at
FROM players
WHERE id = ?
`

func (q *Queries) GetPlayer(ctx context.Context, id string) (Player, error) {
	row := q.db.QueryRowContext(ctx, getPlayer, id)
	var i Player
	err := row.Scan(
		&i.ID,
		&i.FirstName,
		&i.LastName,
		&i.Team,
		&i.CreatedAt,
		&i.UpdatedAt,
	)
	return i, err
}

const listPlayers = `
SELECT id, first_name, last_name, team, created_at, updated_at
FROM players
ORDER BY created_at, rowid
`

func (q *Queries) ListPlayers(ctx context.Context) ([]Player, error) {
	rows, err := q.db.QueryContext(ctx, listPlayers)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []Player
	for rows.Next() {
		var i Player
		if err := rows.Scan(
			&i.ID,
			&i.FirstName,
			&i.LastName,
			&i.Team,
			&i.CreatedAt,
			&i.UpdatedAt,
		); err != nil {
			return nil, err
		}
		items = append(items, i)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return items, nil
}

const createPlayer = `
INSERT INTO players (id, first_name, last_name, team, created_at, updated_at)
VALUES (?, ?, ?, ?, ?, ?)
`

type CreatePlayerParams struct {
	ID        string
	FirstName string
	LastName  string
	Team      string
	CreatedAt time.Time
	UpdatedAt time.Time
}

func (q *Queries) CreatePlayer(ctx context.Context, arg CreatePlayerParams) error {
	_, err := q.db.ExecContext(ctx, createPlayer,
		arg.ID,
		arg.FirstName,
		arg.LastName,
		arg.Team,
		arg.CreatedAt,
		arg.UpdatedAt,
	)
	return err
}

const updatePlayer = `
UPDATE players
SET first_name = ?, last_name = ?, team = ?, updated_at = ?
WHERE id = ?
`

type UpdatePlayerParams struct {
	FirstName string
	LastName  string
	Team      string
	UpdatedAt time.Time
	ID        string
}

func (q *Queries) UpdatePlayer(ctx context.Context, arg UpdatePlayerParams) (int64, error) {
	result, err := q.db.ExecContext(ctx, updatePlayer,
		arg.FirstName,
		arg.LastName,
		arg.Team,
		arg.UpdatedAt,
		arg.ID,
	)
	if err != nil {
		return 0, err
	}
	return result.RowsAffected()
}

const deletePlayer = `
DELETE FROM players
WHERE id = ?
`

func (q *Queries) DeletePlayer(ctx context.Context, id string) (int64, error) {
	result, err := q.db.ExecContext(ctx, deletePlayer, id)
	if err != nil {
		return 0, err
	}
	return result.RowsAffected()
}

const deleteAllPlayers = `
DELETE FROM players
`

func (q *Queries) DeleteAllPlayers(ctx context.Context) (int64, error) {
	result, err := q.db.ExecContext(ctx, deleteAllPlayers)
	if err != nil {
		return 0, err
	}
	return result.RowsAffected()
}
