package performance

import "context"

// Repository describes performance persistence needs from use cases.
type Repository interface {
	ListByGameweek(ctx context.Context, gameweek int) ([]Performance, error)
	GetByPlayerAndGameweek(ctx context.Context, playerID string, gameweek int) (Performance, bool, error)
	UpsertBatch(ctx context.Context, rows []Performance) error
}

// FeedClient pulls records from the external sports-data feed. The core never
// writes back through this boundary.
type FeedClient interface {
	FetchGameweek(ctx context.Context, gameweek int) ([]Performance, error)
	FetchSeasonTotals(ctx context.Context) (map[string]int, error)
}
