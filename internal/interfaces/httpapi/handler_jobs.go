package httpapi

import (
	"fmt"
	"net/http"

	sonic "github.com/bytedance/sonic"
	"github.com/fivesquad/fivesquad/internal/usecase"
)

type simulateJobRequest struct {
	Gameweek int   `json:"gameweek" validate:"required,min=1"`
	Seed     int64 `json:"seed"`
}

func (h *Handler) RunSimulateJob(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.RunSimulateJob")
	defer span.End()

	var req simulateJobRequest
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

	result, err := h.simulationService.SimulateGameweek(ctx, req.Gameweek, req.Seed)
	if err != nil {
		h.logger.ErrorContext(ctx, "simulate job failed", "gameweek", req.Gameweek, "error", err)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, result)
}

type recalculateJobRequest struct {
	Gameweek int `json:"gameweek" validate:"required,min=1"`
}

func (h *Handler) RunRecalculateJob(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.RunRecalculateJob")
	defer span.End()

	var req recalculateJobRequest
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

	result, err := h.scoringService.RecalculateGameweek(ctx, req.Gameweek)
	if err != nil {
		h.logger.ErrorContext(ctx, "recalculate job failed", "gameweek", req.Gameweek, "error", err)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, result)
}

type feedSyncJobRequest struct {
	Gameweek int `json:"gameweek" validate:"required,min=1"`
}

func (h *Handler) RunFeedSyncJob(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.RunFeedSyncJob")
	defer span.End()

	if h.feedSyncService == nil {
		writeError(ctx, w, fmt.Errorf("%w: performance feed is not configured", usecase.ErrDependencyUnavailable))
		return
	}

	var req feedSyncJobRequest
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

	result, err := h.feedSyncService.Sync(ctx, req.Gameweek)
	if err != nil {
		h.logger.ErrorContext(ctx, "feed sync job failed", "gameweek", req.Gameweek, "error", err)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, result)
}
