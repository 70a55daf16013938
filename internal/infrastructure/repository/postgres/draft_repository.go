package postgres

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/fivesquad/fivesquad/internal/domain/draft"
)

// DraftRepository persists the single draft-state row.
type DraftRepository struct {
	db *sqlx.DB
}

func NewDraftRepository(db *sqlx.DB) *DraftRepository {
	return &DraftRepository{db: db}
}

func (r *DraftRepository) Get(ctx context.Context) (draft.Draft, error) {
	var row draftTableModel
	if err := r.db.GetContext(ctx, &row, `SELECT status, completed_at FROM draft_state WHERE singleton = TRUE`); err != nil {
		if isNotFound(err) {
			return draft.Draft{Status: draft.StatusActive}, nil
		}
		return draft.Draft{}, fmt.Errorf("select draft state: %w", err)
	}

	d := draft.Draft{Status: draft.Status(row.Status)}
	if row.CompletedAt.Valid {
		completedAt := row.CompletedAt.Time
		d.CompletedAt = &completedAt
	}

	return d, nil
}

func (r *DraftRepository) Save(ctx context.Context, d draft.Draft) error {
	var completedAt sql.NullTime
	if d.CompletedAt != nil {
		completedAt = sql.NullTime{Time: *d.CompletedAt, Valid: true}
	}

	query := `
		INSERT INTO draft_state (singleton, status, completed_at)
		VALUES (TRUE, $1, $2)
		ON CONFLICT (singleton)
		DO UPDATE SET status = EXCLUDED.status, completed_at = EXCLUDED.completed_at`
	if _, err := r.db.ExecContext(ctx, query, string(d.Status), completedAt); err != nil {
		return fmt.Errorf("upsert draft state: %w", err)
	}

	return nil
}
