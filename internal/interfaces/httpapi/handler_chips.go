package httpapi

import (
	"fmt"
	"net/http"
	"time"

	sonic "github.com/bytedance/sonic"
	"github.com/fivesquad/fivesquad/internal/domain/chip"
	"github.com/fivesquad/fivesquad/internal/usecase"
)

func (h *Handler) DrawReward(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.DrawReward")
	defer span.End()

	principal, ok := principalFromContext(ctx)
	if !ok {
		writeError(ctx, w, fmt.Errorf("%w: principal is missing from request context", usecase.ErrUnauthorized))
		return
	}

	result, err := h.rewardService.Draw(ctx, principal.ParticipantID)
	if err != nil {
		h.logger.WarnContext(ctx, "reward draw failed", "participant_id", principal.ParticipantID, "error", err)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, drawResultToDTO(result))
}

type chipDTO struct {
	ID        string  `json:"id"`
	Name      string  `json:"name"`
	Rarity    string  `json:"rarity"`
	Effect    string  `json:"effect"`
	Magnitude float64 `json:"magnitude"`
}

func chipToDTO(c chip.Chip) chipDTO {
	return chipDTO{
		ID:        c.ID,
		Name:      c.Name,
		Rarity:    string(c.Rarity),
		Effect:    string(c.Effect),
		Magnitude: c.Magnitude,
	}
}

type drawResultDTO struct {
	Chip      chipDTO   `json:"chip"`
	Rank      int       `json:"rank"`
	GrantedAt time.Time `json:"granted_at"`
}

func drawResultToDTO(result usecase.DrawResult) drawResultDTO {
	return drawResultDTO{
		Chip:      chipToDTO(result.Chip),
		Rank:      result.Rank,
		GrantedAt: result.GrantedAt,
	}
}

type inventoryEntryDTO struct {
	ChipID   string `json:"chip_id"`
	Quantity int    `json:"quantity"`
}

func (h *Handler) ListMyChips(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.ListMyChips")
	defer span.End()

	principal, ok := principalFromContext(ctx)
	if !ok {
		writeError(ctx, w, fmt.Errorf("%w: principal is missing from request context", usecase.ErrUnauthorized))
		return
	}

	entries, err := h.chipService.Inventory(ctx, principal.ParticipantID)
	if err != nil {
		h.logger.ErrorContext(ctx, "list inventory failed", "participant_id", principal.ParticipantID, "error", err)
		writeError(ctx, w, err)
		return
	}

	out := make([]inventoryEntryDTO, 0, len(entries))
	for _, entry := range entries {
		out = append(out, inventoryEntryDTO{ChipID: entry.ChipID, Quantity: entry.Quantity})
	}

	writeSuccess(ctx, w, http.StatusOK, out)
}

type useChipRequest struct {
	ChipType            string `json:"chip_type" validate:"required"`
	TargetParticipantID string `json:"target_participant_id"`
	Gameweek            int    `json:"gameweek" validate:"required,min=1"`
}

type effectDTO struct {
	ID                  string    `json:"id"`
	SourceParticipantID string    `json:"source_participant_id"`
	TargetParticipantID string    `json:"target_participant_id"`
	ChipType            string    `json:"chip_type"`
	Magnitude           float64   `json:"magnitude"`
	Gameweek            int       `json:"gameweek"`
	ActiveUntil         time.Time `json:"active_until"`
	CreatedAt           time.Time `json:"created_at"`
}

func effectToDTO(e chip.Effect) effectDTO {
	return effectDTO{
		ID:                  e.ID,
		SourceParticipantID: e.SourceID,
		TargetParticipantID: e.TargetID,
		ChipType:            string(e.ChipType),
		Magnitude:           e.Magnitude,
		Gameweek:            e.Gameweek,
		ActiveUntil:         e.ActiveUntil,
		CreatedAt:           e.CreatedAt,
	}
}

func (h *Handler) UseChip(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.UseChip")
	defer span.End()

	principal, ok := principalFromContext(ctx)
	if !ok {
		writeError(ctx, w, fmt.Errorf("%w: principal is missing from request context", usecase.ErrUnauthorized))
		return
	}

	var req useChipRequest
	decoder := sonic.ConfigDefault.NewDecoder(r.Body)
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(&req); err != nil {
		writeError(ctx, w, fmt.Errorf("%w: invalid JSON payload: %v", usecase.ErrInvalidInput, err))
		return
	}
	if err := h.validateRequest(ctx, req); err != nil {
		writeError(ctx, w, err)
		return
	}

	effect, err := h.chipService.Use(ctx, usecase.UseChipInput{
		SourceID: principal.ParticipantID,
		ChipType: chip.EffectType(req.ChipType),
		TargetID: req.TargetParticipantID,
		Gameweek: req.Gameweek,
	})
	if err != nil {
		h.logger.WarnContext(ctx, "use chip failed",
			"participant_id", principal.ParticipantID, "chip_type", req.ChipType, "error", err)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, effectToDTO(effect))
}

func (h *Handler) ListMyActiveEffects(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.ListMyActiveEffects")
	defer span.End()

	principal, ok := principalFromContext(ctx)
	if !ok {
		writeError(ctx, w, fmt.Errorf("%w: principal is missing from request context", usecase.ErrUnauthorized))
		return
	}

	effects, err := h.chipService.ActiveEffects(ctx, principal.ParticipantID)
	if err != nil {
		h.logger.ErrorContext(ctx, "list active effects failed", "participant_id", principal.ParticipantID, "error", err)
		writeError(ctx, w, err)
		return
	}

	out := make([]effectDTO, 0, len(effects))
	for _, effect := range effects {
		out = append(out, effectToDTO(effect))
	}

	writeSuccess(ctx, w, http.StatusOK, out)
}
