package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/fivesquad/fivesquad/internal/domain/player"
)

const playerSelectColumns = `id, name, position, season_points, baseline_points, owner_id, is_captain, is_vice_captain`

type PlayerRepository struct {
	db *sqlx.DB
}

func NewPlayerRepository(db *sqlx.DB) *PlayerRepository {
	return &PlayerRepository{db: db}
}

func (r *PlayerRepository) List(ctx context.Context) ([]player.Player, error) {
	var rows []playerTableModel
	query := `SELECT ` + playerSelectColumns + ` FROM players ORDER BY id`
	if err := r.db.SelectContext(ctx, &rows, query); err != nil {
		return nil, fmt.Errorf("select players: %w", err)
	}

	out := make([]player.Player, 0, len(rows))
	for _, row := range rows {
		out = append(out, row.toDomain())
	}

	return out, nil
}

func (r *PlayerRepository) GetByID(ctx context.Context, playerID string) (player.Player, bool, error) {
	var row playerTableModel
	query := `SELECT ` + playerSelectColumns + ` FROM players WHERE id = $1`
	if err := r.db.GetContext(ctx, &row, query, playerID); err != nil {
		if isNotFound(err) {
			return player.Player{}, false, nil
		}
		return player.Player{}, false, fmt.Errorf("select player by id: %w", err)
	}

	return row.toDomain(), true, nil
}

func (r *PlayerRepository) ListByOwner(ctx context.Context, ownerID string) ([]player.Player, error) {
	var rows []playerTableModel
	query := `SELECT ` + playerSelectColumns + ` FROM players WHERE owner_id = $1 ORDER BY id`
	if err := r.db.SelectContext(ctx, &rows, query, ownerID); err != nil {
		return nil, fmt.Errorf("select players by owner: %w", err)
	}

	out := make([]player.Player, 0, len(rows))
	for _, row := range rows {
		out = append(out, row.toDomain())
	}

	return out, nil
}

// Allocate locks the target row plus the owner's squad rows with FOR UPDATE
// inside one transaction, runs fn against the locked snapshot and writes the
// rows fn returns. Lock contention surfaces as player.ErrConflict.
func (r *PlayerRepository) Allocate(ctx context.Context, playerID, ownerID string, fn player.AllocateFunc) error {
	tx, err := r.db.BeginTxx(ctx, &sql.TxOptions{Isolation: sql.LevelReadCommitted})
	if err != nil {
		return fmt.Errorf("begin allocate tx: %w", err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	var targetRow playerTableModel
	query := `SELECT ` + playerSelectColumns + ` FROM players WHERE id = $1 FOR UPDATE NOWAIT`
	if err := tx.GetContext(ctx, &targetRow, query, playerID); err != nil {
		if isNotFound(err) {
			return player.ErrNotFound
		}
		if isSerializationFailure(err) {
			return fmt.Errorf("%w: lock player %s", player.ErrConflict, playerID)
		}
		return fmt.Errorf("lock player: %w", err)
	}
	target := targetRow.toDomain()

	squadOwner := ownerID
	if squadOwner == "" {
		squadOwner = target.OwnerID
	}

	var squad []player.Player
	if squadOwner != "" {
		var squadRows []playerTableModel
		query := `SELECT ` + playerSelectColumns + ` FROM players WHERE owner_id = $1 AND id <> $2 ORDER BY id FOR UPDATE NOWAIT`
		if err := tx.SelectContext(ctx, &squadRows, query, squadOwner, target.ID); err != nil {
			if isSerializationFailure(err) {
				return fmt.Errorf("%w: lock squad of %s", player.ErrConflict, squadOwner)
			}
			return fmt.Errorf("lock squad rows: %w", err)
		}
		squad = make([]player.Player, 0, len(squadRows))
		for _, row := range squadRows {
			squad = append(squad, row.toDomain())
		}
	}

	updated, err := fn(target, squad)
	if err != nil {
		return err
	}

	const updateQuery = `
		UPDATE players
		SET owner_id = :owner_id,
		    is_captain = :is_captain,
		    is_vice_captain = :is_vice_captain
		WHERE id = :id`
	for _, p := range updated {
		if _, err := tx.NamedExecContext(ctx, updateQuery, toPlayerTableModel(p)); err != nil {
			if isSerializationFailure(err) {
				return fmt.Errorf("%w: update player %s", player.ErrConflict, p.ID)
			}
			return fmt.Errorf("update player %s: %w", p.ID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		if isSerializationFailure(err) {
			return fmt.Errorf("%w: commit allocation", player.ErrConflict)
		}
		return fmt.Errorf("commit allocate tx: %w", err)
	}

	return nil
}

func (r *PlayerRepository) SnapshotBaselines(ctx context.Context, at time.Time) (int, error) {
	result, err := r.db.ExecContext(ctx, `UPDATE players SET baseline_points = season_points, updated_at = $1`, at)
	if err != nil {
		return 0, fmt.Errorf("snapshot baselines: %w", err)
	}

	touched, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("count snapshot rows: %w", err)
	}

	return int(touched), nil
}

func (r *PlayerRepository) UpdateSeasonPoints(ctx context.Context, totals map[string]int) error {
	if len(totals) == 0 {
		return nil
	}

	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin season points tx: %w", err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	for playerID, total := range totals {
		if _, err := tx.ExecContext(ctx, `UPDATE players SET season_points = $1 WHERE id = $2`, total, playerID); err != nil {
			return fmt.Errorf("update season points for %s: %w", playerID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit season points tx: %w", err)
	}

	return nil
}
