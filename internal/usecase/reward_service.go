package usecase

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/fivesquad/fivesquad/internal/domain/chip"
	"github.com/fivesquad/fivesquad/internal/domain/participant"
	"github.com/fivesquad/fivesquad/internal/domain/scoring"
	"github.com/fivesquad/fivesquad/internal/platform/cache"
	"github.com/fivesquad/fivesquad/internal/platform/rng"
)

const chipDefinitionsCacheKey = "chip-definitions"

// dropRates holds one rarity band's percentage weights. Weights are listed in
// draw order and are expected to sum to 100; the cumulative walk falls back
// to common when they do not.
type dropRates struct {
	Legendary int
	Epic      int
	Rare      int
	Common    int
}

func (d dropRates) forRarity(r chip.Rarity) int {
	switch r {
	case chip.RarityLegendary:
		return d.Legendary
	case chip.RarityEpic:
		return d.Epic
	case chip.RarityRare:
		return d.Rare
	default:
		return d.Common
	}
}

// dropRateBands is the rank step function: worse-ranked participants get more
// probability mass in the rarer tiers as a catch-up mechanic.
var dropRateBands = []dropRates{
	{Legendary: 2, Epic: 8, Rare: 25, Common: 65},
	{Legendary: 4, Epic: 12, Rare: 29, Common: 55},
	{Legendary: 6, Epic: 16, Rare: 33, Common: 45},
	{Legendary: 10, Epic: 20, Rare: 35, Common: 35},
}

// ratesForRank maps a leaderboard position to its quartile band.
func ratesForRank(rank, totalParticipants int) dropRates {
	if totalParticipants < 1 || rank < 1 {
		return dropRateBands[len(dropRateBands)-1]
	}

	band := (rank - 1) * len(dropRateBands) / totalParticipants
	if band >= len(dropRateBands) {
		band = len(dropRateBands) - 1
	}
	return dropRateBands[band]
}

// DrawResult reports one granted chip.
type DrawResult struct {
	Chip      chip.Chip `json:"chip"`
	Rank      int       `json:"rank"`
	GrantedAt time.Time `json:"granted_at"`
}

// RankSource supplies current standings; ScoringService satisfies it.
type RankSource interface {
	Leaderboard(ctx context.Context) ([]scoring.LeaderboardEntry, error)
}

type RewardService struct {
	chipRepo        chip.Repository
	participantRepo participant.Repository
	ranks           RankSource
	definitions     *cache.Store
	random          rng.Source
	logger          *slog.Logger
	now             func() time.Time
}

func NewRewardService(
	chipRepo chip.Repository,
	participantRepo participant.Repository,
	ranks RankSource,
	definitions *cache.Store,
	random rng.Source,
	logger *slog.Logger,
) *RewardService {
	if logger == nil {
		logger = slog.Default()
	}

	return &RewardService{
		chipRepo:        chipRepo,
		participantRepo: participantRepo,
		ranks:           ranks,
		definitions:     definitions,
		random:          random,
		logger:          logger,
		now:             time.Now,
	}
}

// CanDraw reports whether the participant's daily draw is still available.
// The gate compares UTC calendar dates, never durations.
func (s *RewardService) CanDraw(ctx context.Context, participantID string) (bool, error) {
	ctx, span := startUsecaseSpan(ctx, "RewardService.CanDraw")
	defer span.End()

	participantID = strings.TrimSpace(participantID)
	if participantID == "" {
		return false, fmt.Errorf("%w: participant_id is required", ErrInvalidInput)
	}

	grant, found, err := s.chipRepo.GetLastGrant(ctx, participantID)
	if err != nil {
		return false, fmt.Errorf("get last grant: %w", err)
	}
	if !found {
		return true, nil
	}

	lastYear, lastMonth, lastDay := grant.GrantedAt.UTC().Date()
	year, month, day := s.now().UTC().Date()
	sameDay := lastYear == year && lastMonth == month && lastDay == day

	return !sameDay, nil
}

// Draw grants one rank-weighted random chip and adds it to the participant's
// inventory. One draw per participant per UTC calendar day.
func (s *RewardService) Draw(ctx context.Context, participantID string) (DrawResult, error) {
	ctx, span := startUsecaseSpan(ctx, "RewardService.Draw")
	defer span.End()

	participantID = strings.TrimSpace(participantID)
	if participantID == "" {
		return DrawResult{}, fmt.Errorf("%w: participant_id is required", ErrInvalidInput)
	}

	if _, exists, err := s.participantRepo.GetByID(ctx, participantID); err != nil {
		return DrawResult{}, fmt.Errorf("get participant: %w", err)
	} else if !exists {
		return DrawResult{}, fmt.Errorf("%w: participant=%s", ErrNotFound, participantID)
	}

	allowed, err := s.CanDraw(ctx, participantID)
	if err != nil {
		return DrawResult{}, err
	}
	if !allowed {
		return DrawResult{}, fmt.Errorf("%w: daily draw already used", ErrPreconditionFailed)
	}

	rank, total, err := s.rankOf(ctx, participantID)
	if err != nil {
		return DrawResult{}, err
	}

	rarity := s.pickRarity(ratesForRank(rank, total))
	granted, err := s.pickChip(ctx, rarity)
	if err != nil {
		return DrawResult{}, err
	}

	if err := s.chipRepo.AddToInventory(ctx, participantID, granted.ID); err != nil {
		return DrawResult{}, fmt.Errorf("add to inventory: %w", err)
	}

	grantedAt := s.now().UTC()
	if err := s.chipRepo.SaveGrant(ctx, chip.Grant{
		ParticipantID: participantID,
		ChipID:        granted.ID,
		GrantedAt:     grantedAt,
	}); err != nil {
		return DrawResult{}, fmt.Errorf("save grant: %w", err)
	}

	s.logger.InfoContext(ctx, "chip granted",
		"participant_id", participantID,
		"chip_id", granted.ID,
		"rarity", string(granted.Rarity),
		"rank", rank,
	)

	return DrawResult{Chip: granted, Rank: rank, GrantedAt: grantedAt}, nil
}

func (s *RewardService) rankOf(ctx context.Context, participantID string) (rank, total int, err error) {
	entries, err := s.ranks.Leaderboard(ctx)
	if err != nil {
		return 0, 0, fmt.Errorf("project leaderboard: %w", err)
	}

	for _, entry := range entries {
		if entry.ParticipantID == participantID {
			return entry.Rank, len(entries), nil
		}
	}

	return 0, 0, fmt.Errorf("%w: participant %s not on leaderboard", ErrNotFound, participantID)
}

// pickRarity draws uniformly from [0,100) and walks the cumulative band
// thresholds rarest first. Any edge case, rates not summing to 100 included,
// lands on common.
func (s *RewardService) pickRarity(rates dropRates) chip.Rarity {
	roll := s.random.Intn(100)

	cumulative := 0
	for _, rarity := range chip.AllRarities {
		cumulative += rates.forRarity(rarity)
		if roll < cumulative {
			return rarity
		}
	}

	return chip.RarityCommon
}

func (s *RewardService) pickChip(ctx context.Context, rarity chip.Rarity) (chip.Chip, error) {
	definitions, err := s.listDefinitions(ctx)
	if err != nil {
		return chip.Chip{}, err
	}

	candidates := filterByRarity(definitions, rarity)
	if len(candidates) == 0 && rarity != chip.RarityCommon {
		candidates = filterByRarity(definitions, chip.RarityCommon)
	}
	if len(candidates) == 0 {
		return chip.Chip{}, fmt.Errorf("%w: no chip definitions available", ErrNotFound)
	}

	return candidates[s.random.Intn(len(candidates))], nil
}

func (s *RewardService) listDefinitions(ctx context.Context) ([]chip.Chip, error) {
	if s.definitions != nil {
		if cached, ok := s.definitions.Get(chipDefinitionsCacheKey); ok {
			if defs, ok := cached.([]chip.Chip); ok {
				return defs, nil
			}
		}
	}

	defs, err := s.chipRepo.ListDefinitions(ctx)
	if err != nil {
		return nil, fmt.Errorf("list chip definitions: %w", err)
	}
	if s.definitions != nil {
		s.definitions.Set(chipDefinitionsCacheKey, defs)
	}

	return defs, nil
}

func filterByRarity(definitions []chip.Chip, rarity chip.Rarity) []chip.Chip {
	out := make([]chip.Chip, 0, len(definitions))
	for _, d := range definitions {
		if d.Rarity == rarity {
			out = append(out, d)
		}
	}
	return out
}
