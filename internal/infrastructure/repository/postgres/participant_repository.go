package postgres

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/fivesquad/fivesquad/internal/domain/participant"
)

type ParticipantRepository struct {
	db *sqlx.DB
}

func NewParticipantRepository(db *sqlx.DB) *ParticipantRepository {
	return &ParticipantRepository{db: db}
}

func (r *ParticipantRepository) List(ctx context.Context) ([]participant.Participant, error) {
	var rows []participantTableModel
	if err := r.db.SelectContext(ctx, &rows, `SELECT id, name FROM participants ORDER BY id`); err != nil {
		return nil, fmt.Errorf("select participants: %w", err)
	}

	out := make([]participant.Participant, 0, len(rows))
	for _, row := range rows {
		out = append(out, participant.Participant{ID: row.ID, Name: row.Name})
	}

	return out, nil
}

func (r *ParticipantRepository) GetByID(ctx context.Context, participantID string) (participant.Participant, bool, error) {
	var row participantTableModel
	if err := r.db.GetContext(ctx, &row, `SELECT id, name FROM participants WHERE id = $1`, participantID); err != nil {
		if isNotFound(err) {
			return participant.Participant{}, false, nil
		}
		return participant.Participant{}, false, fmt.Errorf("select participant by id: %w", err)
	}

	return participant.Participant{ID: row.ID, Name: row.Name}, true, nil
}
