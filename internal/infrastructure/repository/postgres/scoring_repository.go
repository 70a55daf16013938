package postgres

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/fivesquad/fivesquad/internal/domain/scoring"
)

const scoreSelectColumns = `participant_id, gameweek, total_points, starting_points, captain_points, vice_captain_points, chip_points, calculated_at`

type ScoringRepository struct {
	db *sqlx.DB
}

func NewScoringRepository(db *sqlx.DB) *ScoringRepository {
	return &ScoringRepository{db: db}
}

func (r *ScoringRepository) UpsertScore(ctx context.Context, score scoring.ParticipantGameweekScore) error {
	const query = `
		INSERT INTO participant_gameweek_scores
			(participant_id, gameweek, total_points, starting_points, captain_points, vice_captain_points, chip_points, calculated_at)
		VALUES
			(:participant_id, :gameweek, :total_points, :starting_points, :captain_points, :vice_captain_points, :chip_points, :calculated_at)
		ON CONFLICT (participant_id, gameweek)
		DO UPDATE SET
			total_points = EXCLUDED.total_points,
			starting_points = EXCLUDED.starting_points,
			captain_points = EXCLUDED.captain_points,
			vice_captain_points = EXCLUDED.vice_captain_points,
			chip_points = EXCLUDED.chip_points,
			calculated_at = EXCLUDED.calculated_at`

	model := scoreTableModel{
		ParticipantID:     score.ParticipantID,
		Gameweek:          score.Gameweek,
		TotalPoints:       score.TotalPoints,
		StartingPoints:    score.StartingPoints,
		CaptainPoints:     score.CaptainPoints,
		ViceCaptainPoints: score.ViceCaptainPoints,
		ChipPoints:        score.ChipPoints,
		CalculatedAt:      score.CalculatedAt,
	}
	if _, err := r.db.NamedExecContext(ctx, query, model); err != nil {
		return fmt.Errorf("upsert score: %w", err)
	}

	return nil
}

func (r *ScoringRepository) ListScoresByGameweek(ctx context.Context, gameweek int) ([]scoring.ParticipantGameweekScore, error) {
	var rows []scoreTableModel
	query := `SELECT ` + scoreSelectColumns + ` FROM participant_gameweek_scores WHERE gameweek = $1 ORDER BY participant_id`
	if err := r.db.SelectContext(ctx, &rows, query, gameweek); err != nil {
		return nil, fmt.Errorf("select scores by gameweek: %w", err)
	}

	out := make([]scoring.ParticipantGameweekScore, 0, len(rows))
	for _, row := range rows {
		out = append(out, row.toDomain())
	}

	return out, nil
}

func (r *ScoringRepository) ListScoresByParticipant(ctx context.Context, participantID string) ([]scoring.ParticipantGameweekScore, error) {
	var rows []scoreTableModel
	query := `SELECT ` + scoreSelectColumns + ` FROM participant_gameweek_scores WHERE participant_id = $1 ORDER BY gameweek`
	if err := r.db.SelectContext(ctx, &rows, query, participantID); err != nil {
		return nil, fmt.Errorf("select scores by participant: %w", err)
	}

	out := make([]scoring.ParticipantGameweekScore, 0, len(rows))
	for _, row := range rows {
		out = append(out, row.toDomain())
	}

	return out, nil
}

func (r *ScoringRepository) GetWindow(ctx context.Context) (scoring.Window, error) {
	var window scoring.Window
	err := r.db.GetContext(ctx, &window.ScoredFrom, `SELECT scored_from FROM scoring_window WHERE singleton = TRUE`)
	if err != nil {
		if isNotFound(err) {
			return scoring.Window{}, nil
		}
		return scoring.Window{}, fmt.Errorf("select scoring window: %w", err)
	}

	return window, nil
}

func (r *ScoringRepository) SaveWindow(ctx context.Context, w scoring.Window) error {
	query := `
		INSERT INTO scoring_window (singleton, scored_from)
		VALUES (TRUE, $1)
		ON CONFLICT (singleton)
		DO UPDATE SET scored_from = EXCLUDED.scored_from`
	if _, err := r.db.ExecContext(ctx, query, w.ScoredFrom); err != nil {
		return fmt.Errorf("upsert scoring window: %w", err)
	}

	return nil
}
