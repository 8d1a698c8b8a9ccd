package sqlc

import (
	"context"

	"github.com/sqlc-dev/pqtype"
)

type Querier interface {
	AnalyticsGetGamesCreatedCount(ctx context.Context, serverIp pqtype.Inet) (int64, error)
	AnalyticsGetGuessesMadeCount(ctx context.Context, serverIp pqtype.Inet) (int64, error)
	AnalyticsGetTreasuresFoundCount(ctx context.Context, serverIp pqtype.Inet) (int64, error)
	AnalyticsIncrementGamesCreatedCount(ctx context.Context, serverIp pqtype.Inet) error
	AnalyticsIncrementGuessesMadeCount(ctx context.Context, serverIp pqtype.Inet) error
	AnalyticsIncrementTreasuresFoundCount(ctx context.Context, serverIp pqtype.Inet) error
}

var _ Querier = (*Queries)(nil)
