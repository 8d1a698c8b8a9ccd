package sqlc

import (
	"context"

	"github.com/sqlc-dev/pqtype"
)

const analyticsGetGamesCreatedCount = `-- name: AnalyticsGetGamesCreatedCount :one
SELECT games_created FROM game_server_analytics WHERE server_ip = $1
`

func (q *Queries) AnalyticsGetGamesCreatedCount(ctx context.Context, serverIp pqtype.Inet) (int64, error) {
	row := q.db.QueryRowContext(ctx, analyticsGetGamesCreatedCount, serverIp)
	var games_created int64
	err := row.Scan(&games_created)
	return games_created, err
}

const analyticsGetGuessesMadeCount = `-- name: AnalyticsGetGuessesMadeCount :one
SELECT guesses_made FROM game_server_analytics WHERE server_ip = $1
`

func (q *Queries) AnalyticsGetGuessesMadeCount(ctx context.Context, serverIp pqtype.Inet) (int64, error) {
	row := q.db.QueryRowContext(ctx, analyticsGetGuessesMadeCount, serverIp)
	var guesses_made int64
	err := row.Scan(&guesses_made)
	return guesses_made, err
}

const analyticsGetTreasuresFoundCount = `-- name: AnalyticsGetTreasuresFoundCount :one
SELECT treasures_found FROM game_server_analytics WHERE server_ip = $1
`

func (q *Queries) AnalyticsGetTreasuresFoundCount(ctx context.Context, serverIp pqtype.Inet) (int64, error) {
	row := q.db.QueryRowContext(ctx, analyticsGetTreasuresFoundCount, serverIp)
	var treasures_found int64
	err := row.Scan(&treasures_found)
	return treasures_found, err
}

const analyticsIncrementGamesCreatedCount = `-- name: AnalyticsIncrementGamesCreatedCount :exec
INSERT INTO game_server_analytics (server_ip, games_created)
VALUES ($1, 1)
ON CONFLICT (server_ip) DO UPDATE
SET games_created = game_server_analytics.games_created + 1, updated_at = NOW()
`

func (q *Queries) AnalyticsIncrementGamesCreatedCount(ctx context.Context, serverIp pqtype.Inet) error {
	_, err := q.db.ExecContext(ctx, analyticsIncrementGamesCreatedCount, serverIp)
	return err
}

const analyticsIncrementGuessesMadeCount = `-- name: AnalyticsIncrementGuessesMadeCount :exec
INSERT INTO game_server_analytics (server_ip, guesses_made)
VALUES ($1, 1)
ON CONFLICT (server_ip) DO UPDATE
SET guesses_made = game_server_analytics.guesses_made + 1, updated_at = NOW()
`

func (q *Queries) AnalyticsIncrementGuessesMadeCount(ctx context.Context, serverIp pqtype.Inet) error {
	_, err := q.db.ExecContext(ctx, analyticsIncrementGuessesMadeCount, serverIp)
	return err
}

const analyticsIncrementTreasuresFoundCount = `-- name: AnalyticsIncrementTreasuresFoundCount :exec
INSERT INTO game_server_analytics (server_ip, treasures_found)
VALUES ($1, 1)
ON CONFLICT (server_ip) DO UPDATE
SET treasures_found = game_server_analytics.treasures_found + 1, updated_at = NOW()
`

func (q *Queries) AnalyticsIncrementTreasuresFoundCount(ctx context.Context, serverIp pqtype.Inet) error {
	_, err := q.db.ExecContext(ctx, analyticsIncrementTreasuresFoundCount, serverIp)
	return err
}
