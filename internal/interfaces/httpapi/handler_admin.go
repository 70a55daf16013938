package httpapi

import (
	"net/http"
	"time"

	"github.com/fivesquad/fivesquad/internal/domain/draft"
	"github.com/fivesquad/fivesquad/internal/usecase"
)

type draftDTO struct {
	Status      string     `json:"status"`
	CompletedAt *time.Time `json:"completed_at,omitempty"`
}

func draftToDTO(d draft.Draft) draftDTO {
	return draftDTO{
		Status:      string(d.Status),
		CompletedAt: d.CompletedAt,
	}
}

func (h *Handler) CompleteDraft(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.CompleteDraft")
	defer span.End()

	result, err := h.allocationService.Dispatch(ctx, usecase.Command{
		Kind:          usecase.CommandCompleteDraft,
		CompleteDraft: &usecase.CompleteDraftCommand{},
	})
	if err != nil {
		h.logger.WarnContext(ctx, "complete draft failed", "error", err)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, draftToDTO(*result.Draft))
}

func (h *Handler) ResetBaseline(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.ResetBaseline")
	defer span.End()

	result, err := h.scoringService.UpdateBaseline(ctx)
	if err != nil {
		h.logger.ErrorContext(ctx, "baseline reset failed", "error", err)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, result)
}

type auditRowDTO struct {
	ParticipantID string   `json:"participant_id"`
	Name          string   `json:"name"`
	SquadSize     int      `json:"squad_size"`
	Valid         bool     `json:"valid"`
	Violations    []string `json:"violations,omitempty"`
}

type auditReportDTO struct {
	Valid   int           `json:"valid"`
	Invalid int           `json:"invalid"`
	Rows    []auditRowDTO `json:"rows"`
}

func (h *Handler) AuditSquads(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.AuditSquads")
	defer span.End()

	report, err := h.allocationService.AuditSquads(ctx)
	if err != nil {
		h.logger.ErrorContext(ctx, "squad audit failed", "error", err)
		writeError(ctx, w, err)
		return
	}

	rows := make([]auditRowDTO, 0, len(report.Rows))
	for _, row := range report.Rows {
		violations := make([]string, 0, len(row.Result.Violations))
		for _, violation := range row.Result.Violations {
			violations = append(violations, violation.Error())
		}
		rows = append(rows, auditRowDTO{
			ParticipantID: row.ParticipantID,
			Name:          row.Name,
			SquadSize:     row.SquadSize,
			Valid:         row.Result.Valid,
			Violations:    violations,
		})
	}

	writeSuccess(ctx, w, http.StatusOK, auditReportDTO{
		Valid:   report.Valid,
		Invalid: report.Invalid,
		Rows:    rows,
	})
}
