package httpapi

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/go-playground/validator/v10"

	"github.com/fivesquad/fivesquad/internal/domain/participant"
	"github.com/fivesquad/fivesquad/internal/domain/player"
	"github.com/fivesquad/fivesquad/internal/domain/roster"
	"github.com/fivesquad/fivesquad/internal/usecase"
)

type Handler struct {
	allocationService *usecase.AllocationService
	scoringService    *usecase.ScoringService
	chipService       *usecase.ChipService
	rewardService     *usecase.RewardService
	simulationService *usecase.SimulationService
	feedSyncService   *usecase.FeedSyncService
	playerRepo        player.Repository
	participantRepo   participant.Repository
	logger            *slog.Logger
	validator         *validator.Validate
}

func NewHandler(
	allocationService *usecase.AllocationService,
	scoringService *usecase.ScoringService,
	chipService *usecase.ChipService,
	rewardService *usecase.RewardService,
	simulationService *usecase.SimulationService,
	feedSyncService *usecase.FeedSyncService,
	playerRepo player.Repository,
	participantRepo participant.Repository,
	logger *slog.Logger,
) *Handler {
	if logger == nil {
		logger = slog.Default()
	}

	return &Handler{
		allocationService: allocationService,
		scoringService:    scoringService,
		chipService:       chipService,
		rewardService:     rewardService,
		simulationService: simulationService,
		feedSyncService:   feedSyncService,
		playerRepo:        playerRepo,
		participantRepo:   participantRepo,
		logger:            logger,
		validator:         validator.New(),
	}
}

func (h *Handler) Healthz(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.Healthz")
	defer span.End()

	writeSuccess(ctx, w, http.StatusOK, map[string]string{"status": "ok"})
}

func (h *Handler) validateRequest(ctx context.Context, payload any) error {
	ctx, span := startSpan(ctx, "httpapi.Handler.validateRequest")
	defer span.End()

	if err := h.validator.StructCtx(ctx, payload); err != nil {
		return fmt.Errorf("%w: validation failed: %v", usecase.ErrInvalidInput, err)
	}

	return nil
}

type playerDTO struct {
	ID            string `json:"id"`
	Name          string `json:"name"`
	Position      string `json:"position"`
	SeasonPoints  int    `json:"season_points"`
	OwnerID       string `json:"owner_id,omitempty"`
	IsCaptain     bool   `json:"is_captain,omitempty"`
	IsViceCaptain bool   `json:"is_vice_captain,omitempty"`
}

func playerToDTO(p player.Player) playerDTO {
	return playerDTO{
		ID:            p.ID,
		Name:          p.Name,
		Position:      string(p.Position),
		SeasonPoints:  p.SeasonPoints,
		OwnerID:       p.OwnerID,
		IsCaptain:     p.IsCaptain,
		IsViceCaptain: p.IsViceCaptain,
	}
}

func playersToDTO(players []player.Player) []playerDTO {
	out := make([]playerDTO, 0, len(players))
	for _, p := range players {
		out = append(out, playerToDTO(p))
	}
	return out
}

type compositionDTO struct {
	Size          int    `json:"size"`
	Defensive     int    `json:"defensive"`
	Attacking     int    `json:"attacking"`
	CaptainID     string `json:"captain_id,omitempty"`
	ViceCaptainID string `json:"vice_captain_id,omitempty"`
}

func compositionToDTO(c roster.Composition) compositionDTO {
	return compositionDTO{
		Size:          c.Size,
		Defensive:     c.Defensive,
		Attacking:     c.Attacking,
		CaptainID:     c.CaptainID,
		ViceCaptainID: c.ViceID,
	}
}

type squadDTO struct {
	Players     []playerDTO    `json:"players"`
	Composition compositionDTO `json:"composition"`
}

func squadToDTO(squad []player.Player) squadDTO {
	return squadDTO{
		Players:     playersToDTO(squad),
		Composition: compositionToDTO(roster.Compose(squad)),
	}
}
