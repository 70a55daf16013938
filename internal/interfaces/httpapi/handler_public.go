package httpapi

import (
	"fmt"
	"net/http"
	"strconv"

	"github.com/fivesquad/fivesquad/internal/domain/roster"
	"github.com/fivesquad/fivesquad/internal/domain/scoring"
	"github.com/fivesquad/fivesquad/internal/usecase"
)

func (h *Handler) ListPlayers(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.ListPlayers")
	defer span.End()

	players, err := h.playerRepo.List(ctx)
	if err != nil {
		h.logger.ErrorContext(ctx, "list players failed", "error", err)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, playersToDTO(players))
}

type participantSummaryDTO struct {
	ID            string `json:"id"`
	Name          string `json:"name"`
	SquadSize     int    `json:"squad_size"`
	CaptainID     string `json:"captain_id,omitempty"`
	ViceCaptainID string `json:"vice_captain_id,omitempty"`
}

func (h *Handler) ListParticipants(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.ListParticipants")
	defer span.End()

	participants, err := h.participantRepo.List(ctx)
	if err != nil {
		h.logger.ErrorContext(ctx, "list participants failed", "error", err)
		writeError(ctx, w, err)
		return
	}

	out := make([]participantSummaryDTO, 0, len(participants))
	for _, p := range participants {
		squad, err := h.playerRepo.ListByOwner(ctx, p.ID)
		if err != nil {
			h.logger.ErrorContext(ctx, "list squad failed", "participant_id", p.ID, "error", err)
			writeError(ctx, w, err)
			return
		}
		composition := roster.Compose(squad)
		out = append(out, participantSummaryDTO{
			ID:            p.ID,
			Name:          p.Name,
			SquadSize:     composition.Size,
			CaptainID:     composition.CaptainID,
			ViceCaptainID: composition.ViceID,
		})
	}

	writeSuccess(ctx, w, http.StatusOK, out)
}

type leaderboardEntryDTO struct {
	Rank              int     `json:"rank"`
	ParticipantID     string  `json:"participant_id"`
	Name              string  `json:"name"`
	CompetitionPoints float64 `json:"competition_points"`
}

func (h *Handler) GetLeaderboard(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.GetLeaderboard")
	defer span.End()

	entries, err := h.scoringService.Leaderboard(ctx)
	if err != nil {
		h.logger.WarnContext(ctx, "leaderboard failed", "error", err)
		writeError(ctx, w, err)
		return
	}

	out := make([]leaderboardEntryDTO, 0, len(entries))
	for _, entry := range entries {
		out = append(out, leaderboardEntryDTO{
			Rank:              entry.Rank,
			ParticipantID:     entry.ParticipantID,
			Name:              entry.Name,
			CompetitionPoints: entry.CompetitionPoints,
		})
	}

	writeSuccess(ctx, w, http.StatusOK, out)
}

type gameweekScoreDTO struct {
	ParticipantID     string  `json:"participant_id"`
	Gameweek          int     `json:"gameweek"`
	TotalPoints       float64 `json:"total_points"`
	StartingPoints    int     `json:"starting_points"`
	CaptainPoints     int     `json:"captain_points"`
	ViceCaptainPoints float64 `json:"vice_captain_points"`
	ChipPoints        float64 `json:"chip_points"`
}

func scoresToDTO(scores []scoring.ParticipantGameweekScore) []gameweekScoreDTO {
	out := make([]gameweekScoreDTO, 0, len(scores))
	for _, s := range scores {
		out = append(out, gameweekScoreDTO{
			ParticipantID:     s.ParticipantID,
			Gameweek:          s.Gameweek,
			TotalPoints:       s.TotalPoints,
			StartingPoints:    s.StartingPoints,
			CaptainPoints:     s.CaptainPoints,
			ViceCaptainPoints: s.ViceCaptainPoints,
			ChipPoints:        s.ChipPoints,
		})
	}
	return out
}

func (h *Handler) ListScoresByGameweek(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.ListScoresByGameweek")
	defer span.End()

	gameweek, err := parseGameweek(r.PathValue("gameweek"))
	if err != nil {
		writeError(ctx, w, err)
		return
	}

	scores, err := h.scoringService.ScoresForGameweek(ctx, gameweek)
	if err != nil {
		h.logger.WarnContext(ctx, "list gameweek scores failed", "gameweek", gameweek, "error", err)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, scoresToDTO(scores))
}

func parseGameweek(raw string) (int, error) {
	gameweek, err := strconv.Atoi(raw)
	if err != nil || gameweek < 1 {
		return 0, fmt.Errorf("%w: gameweek must be a positive integer", usecase.ErrInvalidInput)
	}
	return gameweek, nil
}
