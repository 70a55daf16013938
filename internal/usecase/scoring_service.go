package usecase

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/panjf2000/ants/v2"

	"github.com/fivesquad/fivesquad/internal/domain/chip"
	"github.com/fivesquad/fivesquad/internal/domain/participant"
	"github.com/fivesquad/fivesquad/internal/domain/performance"
	"github.com/fivesquad/fivesquad/internal/domain/player"
	"github.com/fivesquad/fivesquad/internal/domain/scoring"
)

const defaultScoringWorkers = 4

// RecalculateResult summarizes one gameweek recomputation run.
type RecalculateResult struct {
	Gameweek         int `json:"gameweek"`
	ParticipantCount int `json:"participant_count"`
	WorkerCount      int `json:"worker_count"`
}

// BaselineResult reports an updateBaseline snapshot.
type BaselineResult struct {
	PlayersTouched int       `json:"players_touched"`
	ScoredFrom     time.Time `json:"scored_from"`
}

type ScoringService struct {
	playerRepo      player.Repository
	participantRepo participant.Repository
	performanceRepo performance.Repository
	scoringRepo     scoring.Repository
	chipRepo        chip.Repository
	logger          *slog.Logger
	now             func() time.Time
	workers         int
}

func NewScoringService(
	playerRepo player.Repository,
	participantRepo participant.Repository,
	performanceRepo performance.Repository,
	scoringRepo scoring.Repository,
	chipRepo chip.Repository,
	logger *slog.Logger,
) *ScoringService {
	if logger == nil {
		logger = slog.Default()
	}

	return &ScoringService{
		playerRepo:      playerRepo,
		participantRepo: participantRepo,
		performanceRepo: performanceRepo,
		scoringRepo:     scoringRepo,
		chipRepo:        chipRepo,
		logger:          logger,
		now:             time.Now,
		workers:         defaultScoringWorkers,
	}
}

// RecalculateGameweek recomputes every participant's score for one gameweek
// and upserts the rows. Re-running for the same gameweek overwrites, never
// accumulates.
func (s *ScoringService) RecalculateGameweek(ctx context.Context, gameweek int) (RecalculateResult, error) {
	ctx, span := startUsecaseSpan(ctx, "ScoringService.RecalculateGameweek")
	defer span.End()

	if gameweek < 1 {
		return RecalculateResult{}, fmt.Errorf("%w: gameweek must be positive", ErrInvalidInput)
	}

	participants, err := s.participantRepo.List(ctx)
	if err != nil {
		return RecalculateResult{}, fmt.Errorf("list participants: %w", err)
	}

	workerCount := s.workers
	if workerCount < 1 {
		workerCount = 1
	}
	if workerCount > len(participants) && len(participants) > 0 {
		workerCount = len(participants)
	}

	pool, err := ants.NewPool(workerCount)
	if err != nil {
		return RecalculateResult{}, fmt.Errorf("create worker pool: %w", err)
	}
	defer pool.Release()

	var (
		workers  sync.WaitGroup
		mu       sync.Mutex
		firstErr error
	)
	for _, part := range participants {
		part := part
		workers.Add(1)
		if err := pool.Submit(func() {
			defer workers.Done()

			score, err := s.computeParticipantScore(ctx, part.ID, gameweek)
			if err == nil {
				err = s.scoringRepo.UpsertScore(ctx, score)
			}
			if err != nil {
				mu.Lock()
				if firstErr == nil {
					firstErr = fmt.Errorf("score participant %s: %w", part.ID, err)
				}
				mu.Unlock()
			}
		}); err != nil {
			workers.Done()
			return RecalculateResult{}, fmt.Errorf("submit scoring task: %w", err)
		}
	}
	workers.Wait()

	if firstErr != nil {
		return RecalculateResult{}, firstErr
	}

	s.logger.InfoContext(ctx, "gameweek recalculated",
		"gameweek", gameweek,
		"participant_count", len(participants),
		"worker_count", workerCount,
	)

	return RecalculateResult{
		Gameweek:         gameweek,
		ParticipantCount: len(participants),
		WorkerCount:      workerCount,
	}, nil
}

func (s *ScoringService) computeParticipantScore(ctx context.Context, participantID string, gameweek int) (scoring.ParticipantGameweekScore, error) {
	squad, err := s.playerRepo.ListByOwner(ctx, participantID)
	if err != nil {
		return scoring.ParticipantGameweekScore{}, fmt.Errorf("list squad: %w", err)
	}

	var (
		startingPoints    int
		captainPoints     int
		captainBasePoints int
		vicePoints        float64
	)
	for _, p := range squad {
		perf, ok, err := s.performanceRepo.GetByPlayerAndGameweek(ctx, p.ID, gameweek)
		if err != nil {
			return scoring.ParticipantGameweekScore{}, fmt.Errorf("get performance for %s: %w", p.ID, err)
		}
		if !ok {
			// missing record is a defined zero
			continue
		}

		base := perf.Points
		startingPoints += base
		switch {
		case p.IsCaptain:
			captainPoints += base
			captainBasePoints = base
		case p.IsViceCaptain:
			vicePoints += float64(base) * (scoring.ViceCaptainMultiplier - 1)
		}
	}

	effects, err := s.chipRepo.ListEffectsActiveAt(ctx, participantID, s.now().UTC())
	if err != nil {
		return scoring.ParticipantGameweekScore{}, fmt.Errorf("list chip effects: %w", err)
	}
	gameweekEffects := make([]chip.Effect, 0, len(effects))
	for _, e := range effects {
		if e.Gameweek == gameweek {
			gameweekEffects = append(gameweekEffects, e)
		}
	}
	chipPoints := chipPointsFor(gameweekEffects, captainBasePoints)

	total := float64(startingPoints+captainPoints) + vicePoints + chipPoints

	return scoring.ParticipantGameweekScore{
		ParticipantID:     participantID,
		Gameweek:          gameweek,
		TotalPoints:       total,
		StartingPoints:    startingPoints,
		CaptainPoints:     captainPoints,
		ViceCaptainPoints: vicePoints,
		ChipPoints:        chipPoints,
		CalculatedAt:      s.now().UTC(),
	}, nil
}

// Leaderboard projects competition standings at read time from current player
// season totals and the stored baseline. Nothing is persisted.
func (s *ScoringService) Leaderboard(ctx context.Context) ([]scoring.LeaderboardEntry, error) {
	ctx, span := startUsecaseSpan(ctx, "ScoringService.Leaderboard")
	defer span.End()

	window, err := s.scoringRepo.GetWindow(ctx)
	if err != nil {
		return nil, fmt.Errorf("get scoring window: %w", err)
	}
	if !window.Open() {
		return nil, fmt.Errorf("%w: baseline has not been set", ErrPreconditionFailed)
	}

	participants, err := s.participantRepo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list participants: %w", err)
	}

	entries := make([]scoring.LeaderboardEntry, 0, len(participants))
	for _, part := range participants {
		squad, err := s.playerRepo.ListByOwner(ctx, part.ID)
		if err != nil {
			return nil, fmt.Errorf("list squad for %s: %w", part.ID, err)
		}

		var total float64
		for _, p := range squad {
			points := float64(p.CompetitionPoints())
			switch {
			case p.IsCaptain:
				points *= scoring.CaptainMultiplier
			case p.IsViceCaptain:
				points *= scoring.ViceCaptainMultiplier
			}
			total += points
		}

		entries = append(entries, scoring.LeaderboardEntry{
			ParticipantID:     part.ID,
			Name:              part.Name,
			CompetitionPoints: total,
		})
	}

	// ties keep participant-list order, no secondary key
	sort.SliceStable(entries, func(i, j int) bool {
		return entries[i].CompetitionPoints > entries[j].CompetitionPoints
	})
	for i := range entries {
		entries[i].Rank = i + 1
	}

	return entries, nil
}

// ScoresForGameweek lists persisted scores for one gameweek.
func (s *ScoringService) ScoresForGameweek(ctx context.Context, gameweek int) ([]scoring.ParticipantGameweekScore, error) {
	ctx, span := startUsecaseSpan(ctx, "ScoringService.ScoresForGameweek")
	defer span.End()

	if gameweek < 1 {
		return nil, fmt.Errorf("%w: gameweek must be positive", ErrInvalidInput)
	}
	return s.scoringRepo.ListScoresByGameweek(ctx, gameweek)
}

// ScoresForParticipant lists one participant's score history.
func (s *ScoringService) ScoresForParticipant(ctx context.Context, participantID string) ([]scoring.ParticipantGameweekScore, error) {
	ctx, span := startUsecaseSpan(ctx, "ScoringService.ScoresForParticipant")
	defer span.End()

	participantID = strings.TrimSpace(participantID)
	if participantID == "" {
		return nil, fmt.Errorf("%w: participant_id is required", ErrInvalidInput)
	}
	return s.scoringRepo.ListScoresByParticipant(ctx, participantID)
}

// UpdateBaseline snapshots every player's baseline to the current season
// total and restarts the scoring window at the call instant. Season totals
// themselves are never touched. Safe to run repeatedly.
func (s *ScoringService) UpdateBaseline(ctx context.Context) (BaselineResult, error) {
	ctx, span := startUsecaseSpan(ctx, "ScoringService.UpdateBaseline")
	defer span.End()

	at := s.now().UTC()
	touched, err := s.playerRepo.SnapshotBaselines(ctx, at)
	if err != nil {
		return BaselineResult{}, fmt.Errorf("snapshot baselines: %w", err)
	}
	if err := s.scoringRepo.SaveWindow(ctx, scoring.Window{ScoredFrom: at}); err != nil {
		return BaselineResult{}, fmt.Errorf("save scoring window: %w", err)
	}

	s.logger.InfoContext(ctx, "baseline reset", "players_touched", touched, "scored_from", at)

	return BaselineResult{PlayersTouched: touched, ScoredFrom: at}, nil
}
