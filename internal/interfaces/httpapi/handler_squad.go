package httpapi

import (
	"fmt"
	"net/http"
	"strings"

	sonic "github.com/bytedance/sonic"
	"github.com/fivesquad/fivesquad/internal/usecase"
)

type assignPlayerRequest struct {
	PlayerID      string `json:"player_id" validate:"required"`
	AsCaptain     bool   `json:"as_captain"`
	AsViceCaptain bool   `json:"as_vice_captain"`
}

func (h *Handler) AssignPlayer(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.AssignPlayer")
	defer span.End()

	principal, ok := principalFromContext(ctx)
	if !ok {
		writeError(ctx, w, fmt.Errorf("%w: principal is missing from request context", usecase.ErrUnauthorized))
		return
	}

	var req assignPlayerRequest
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

	result, err := h.allocationService.Dispatch(ctx, usecase.Command{
		Kind: usecase.CommandAssign,
		Assign: &usecase.AssignCommand{
			ParticipantID: principal.ParticipantID,
			PlayerID:      req.PlayerID,
			AsCaptain:     req.AsCaptain,
			AsViceCaptain: req.AsViceCaptain,
		},
	})
	if err != nil {
		h.logger.WarnContext(ctx, "assign player failed",
			"participant_id", principal.ParticipantID, "player_id", req.PlayerID, "error", err)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, squadToDTO(result.Squad))
}

type preflightAssignRequest struct {
	PlayerID      string `json:"player_id" validate:"required"`
	AsCaptain     bool   `json:"as_captain"`
	AsViceCaptain bool   `json:"as_vice_captain"`
}

type preflightAssignResponse struct {
	Allowed      bool            `json:"allowed"`
	Reason       string          `json:"reason,omitempty"`
	Hypothetical *compositionDTO `json:"hypothetical,omitempty"`
}

func (h *Handler) PreflightAssign(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.PreflightAssign")
	defer span.End()

	principal, ok := principalFromContext(ctx)
	if !ok {
		writeError(ctx, w, fmt.Errorf("%w: principal is missing from request context", usecase.ErrUnauthorized))
		return
	}

	var req preflightAssignRequest
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

	result, err := h.allocationService.CanAssign(ctx, principal.ParticipantID, req.PlayerID, req.AsCaptain, req.AsViceCaptain)
	if err != nil {
		writeError(ctx, w, err)
		return
	}

	resp := preflightAssignResponse{Allowed: result.Allowed, Reason: result.Reason}
	if result.Allowed {
		hypothetical := compositionToDTO(result.Hypothetical)
		resp.Hypothetical = &hypothetical
	}

	writeSuccess(ctx, w, http.StatusOK, resp)
}

func (h *Handler) UnassignPlayer(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.UnassignPlayer")
	defer span.End()

	principal, ok := principalFromContext(ctx)
	if !ok {
		writeError(ctx, w, fmt.Errorf("%w: principal is missing from request context", usecase.ErrUnauthorized))
		return
	}

	playerID := strings.TrimSpace(r.PathValue("playerID"))
	if playerID == "" {
		writeError(ctx, w, fmt.Errorf("%w: player id is required", usecase.ErrInvalidInput))
		return
	}

	result, err := h.allocationService.Dispatch(ctx, usecase.Command{
		Kind: usecase.CommandUnassign,
		Unassign: &usecase.UnassignCommand{
			ParticipantID: principal.ParticipantID,
			PlayerID:      playerID,
		},
	})
	if err != nil {
		h.logger.WarnContext(ctx, "unassign player failed",
			"participant_id", principal.ParticipantID, "player_id", playerID, "error", err)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, squadToDTO(result.Squad))
}

type setCaptaincyRequest struct {
	PlayerID      string `json:"player_id" validate:"required"`
	AsCaptain     bool   `json:"as_captain"`
	AsViceCaptain bool   `json:"as_vice_captain"`
}

func (h *Handler) SetCaptaincy(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.SetCaptaincy")
	defer span.End()

	principal, ok := principalFromContext(ctx)
	if !ok {
		writeError(ctx, w, fmt.Errorf("%w: principal is missing from request context", usecase.ErrUnauthorized))
		return
	}

	var req setCaptaincyRequest
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

	result, err := h.allocationService.Dispatch(ctx, usecase.Command{
		Kind: usecase.CommandSetCaptaincy,
		SetCaptaincy: &usecase.SetCaptaincyCommand{
			ParticipantID: principal.ParticipantID,
			PlayerID:      req.PlayerID,
			AsCaptain:     req.AsCaptain,
			AsViceCaptain: req.AsViceCaptain,
		},
	})
	if err != nil {
		h.logger.WarnContext(ctx, "set captaincy failed",
			"participant_id", principal.ParticipantID, "player_id", req.PlayerID, "error", err)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, squadToDTO(result.Squad))
}

func (h *Handler) GetMySquad(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.GetMySquad")
	defer span.End()

	principal, ok := principalFromContext(ctx)
	if !ok {
		writeError(ctx, w, fmt.Errorf("%w: principal is missing from request context", usecase.ErrUnauthorized))
		return
	}

	squad, err := h.playerRepo.ListByOwner(ctx, principal.ParticipantID)
	if err != nil {
		h.logger.ErrorContext(ctx, "get squad failed", "participant_id", principal.ParticipantID, "error", err)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, squadToDTO(squad))
}

func (h *Handler) ListMyScores(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.ListMyScores")
	defer span.End()

	principal, ok := principalFromContext(ctx)
	if !ok {
		writeError(ctx, w, fmt.Errorf("%w: principal is missing from request context", usecase.ErrUnauthorized))
		return
	}

	scores, err := h.scoringService.ScoresForParticipant(ctx, principal.ParticipantID)
	if err != nil {
		h.logger.WarnContext(ctx, "list own scores failed", "participant_id", principal.ParticipantID, "error", err)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, scoresToDTO(scores))
}
