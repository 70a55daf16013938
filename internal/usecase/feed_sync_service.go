package usecase

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/fivesquad/fivesquad/internal/domain/performance"
	"github.com/fivesquad/fivesquad/internal/domain/player"
)

// FeedSyncResult reports one feed pull.
type FeedSyncResult struct {
	Gameweek      int `json:"gameweek"`
	RowsUpserted  int `json:"rows_upserted"`
	TotalsApplied int `json:"totals_applied"`
}

// FeedSyncService pulls gameweek statistics and season totals from the
// external sports-data feed and lands them in the record store. The feed is
// read-only; nothing flows back out.
type FeedSyncService struct {
	feed            performance.FeedClient
	performanceRepo performance.Repository
	playerRepo      player.Repository
	logger          *slog.Logger
}

func NewFeedSyncService(
	feed performance.FeedClient,
	performanceRepo performance.Repository,
	playerRepo player.Repository,
	logger *slog.Logger,
) *FeedSyncService {
	if logger == nil {
		logger = slog.Default()
	}

	return &FeedSyncService{
		feed:            feed,
		performanceRepo: performanceRepo,
		playerRepo:      playerRepo,
		logger:          logger,
	}
}

// Sync pulls one gameweek's rows plus the running season totals. A feed
// failure surfaces as a dependency error and is not retried here.
func (s *FeedSyncService) Sync(ctx context.Context, gameweek int) (FeedSyncResult, error) {
	ctx, span := startUsecaseSpan(ctx, "FeedSyncService.Sync")
	defer span.End()

	if gameweek < 1 {
		return FeedSyncResult{}, fmt.Errorf("%w: gameweek must be positive", ErrInvalidInput)
	}

	rows, err := s.feed.FetchGameweek(ctx, gameweek)
	if err != nil {
		return FeedSyncResult{}, fmt.Errorf("%w: fetch gameweek %d: %s", ErrDependencyUnavailable, gameweek, err)
	}
	if err := s.performanceRepo.UpsertBatch(ctx, rows); err != nil {
		return FeedSyncResult{}, fmt.Errorf("upsert performances: %w", err)
	}

	totals, err := s.feed.FetchSeasonTotals(ctx)
	if err != nil {
		return FeedSyncResult{}, fmt.Errorf("%w: fetch season totals: %s", ErrDependencyUnavailable, err)
	}
	if err := s.playerRepo.UpdateSeasonPoints(ctx, totals); err != nil {
		return FeedSyncResult{}, fmt.Errorf("update season points: %w", err)
	}

	s.logger.InfoContext(ctx, "feed synced",
		"gameweek", gameweek,
		"rows_upserted", len(rows),
		"totals_applied", len(totals),
	)

	return FeedSyncResult{Gameweek: gameweek, RowsUpserted: len(rows), TotalsApplied: len(totals)}, nil
}
