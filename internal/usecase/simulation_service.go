package usecase

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/fivesquad/fivesquad/internal/domain/performance"
	"github.com/fivesquad/fivesquad/internal/domain/player"
	"github.com/fivesquad/fivesquad/internal/platform/rng"
)

// SimulationResult reports one generated gameweek.
type SimulationResult struct {
	Gameweek         int   `json:"gameweek"`
	PlayersSimulated int   `json:"players_simulated"`
	Seed             int64 `json:"seed"`
}

// SimulationService generates synthetic gameweek performances for local play
// and testing, standing in for the external feed. The RNG factory is injected
// so a fixed seed reproduces a run exactly.
type SimulationService struct {
	playerRepo      player.Repository
	performanceRepo performance.Repository
	newSource       func(seed int64) rng.Source
	logger          *slog.Logger
	now             func() time.Time
}

func NewSimulationService(
	playerRepo player.Repository,
	performanceRepo performance.Repository,
	logger *slog.Logger,
) *SimulationService {
	if logger == nil {
		logger = slog.Default()
	}

	return &SimulationService{
		playerRepo:      playerRepo,
		performanceRepo: performanceRepo,
		newSource:       rng.NewSeeded,
		logger:          logger,
		now:             time.Now,
	}
}

// SimulateGameweek writes one synthetic performance row per pool player and
// folds the generated points into season totals. Zero seed falls back to the
// current clock.
func (s *SimulationService) SimulateGameweek(ctx context.Context, gameweek int, seed int64) (SimulationResult, error) {
	ctx, span := startUsecaseSpan(ctx, "SimulationService.SimulateGameweek")
	defer span.End()

	if gameweek < 1 {
		return SimulationResult{}, fmt.Errorf("%w: gameweek must be positive", ErrInvalidInput)
	}
	if seed == 0 {
		seed = s.now().UnixNano()
	}
	source := s.newSource(seed)

	players, err := s.playerRepo.List(ctx)
	if err != nil {
		return SimulationResult{}, fmt.Errorf("list players: %w", err)
	}

	rows := make([]performance.Performance, 0, len(players))
	totals := make(map[string]int, len(players))
	for _, p := range players {
		row := s.simulatePlayer(source, p.ID, gameweek)
		rows = append(rows, row)

		total := p.SeasonPoints + row.Points
		if total < 0 {
			total = 0
		}
		totals[p.ID] = total
	}

	if err := s.performanceRepo.UpsertBatch(ctx, rows); err != nil {
		return SimulationResult{}, fmt.Errorf("upsert performances: %w", err)
	}
	if err := s.playerRepo.UpdateSeasonPoints(ctx, totals); err != nil {
		return SimulationResult{}, fmt.Errorf("update season points: %w", err)
	}

	s.logger.InfoContext(ctx, "gameweek simulated",
		"gameweek", gameweek,
		"players_simulated", len(rows),
		"seed", seed,
	)

	return SimulationResult{Gameweek: gameweek, PlayersSimulated: len(rows), Seed: seed}, nil
}

func (s *SimulationService) simulatePlayer(source rng.Source, playerID string, gameweek int) performance.Performance {
	minutes := source.Intn(91)

	var goals, assists, cleanSheets, yellow, red, bonus int
	if minutes > 0 {
		if source.Intn(100) < 20 {
			goals = 1 + source.Intn(2)
		}
		if source.Intn(100) < 25 {
			assists = 1
		}
		if source.Intn(100) < 30 {
			cleanSheets = 1
		}
		if source.Intn(100) < 15 {
			yellow = 1
		}
		if source.Intn(100) < 3 {
			red = 1
		}
		if source.Intn(100) < 10 {
			bonus = 1 + source.Intn(3)
		}
	}

	points := goals*5 + assists*3 + cleanSheets*2 + bonus - yellow - red*3
	if minutes >= 60 {
		points += 2
	} else if minutes > 0 {
		points++
	}

	return performance.Performance{
		PlayerID:    playerID,
		Gameweek:    gameweek,
		Points:      points,
		Goals:       goals,
		Assists:     assists,
		CleanSheets: cleanSheets,
		YellowCards: yellow,
		RedCards:    red,
		Minutes:     minutes,
		Bonus:       bonus,
	}
}
