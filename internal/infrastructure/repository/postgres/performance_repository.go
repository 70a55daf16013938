package postgres

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/fivesquad/fivesquad/internal/domain/performance"
)

const performanceSelectColumns = `player_id, gameweek, points, goals, assists, clean_sheets, yellow_cards, red_cards, minutes, bonus`

type PerformanceRepository struct {
	db *sqlx.DB
}

func NewPerformanceRepository(db *sqlx.DB) *PerformanceRepository {
	return &PerformanceRepository{db: db}
}

func (r *PerformanceRepository) ListByGameweek(ctx context.Context, gameweek int) ([]performance.Performance, error) {
	var rows []performanceTableModel
	query := `SELECT ` + performanceSelectColumns + ` FROM gameweek_performances WHERE gameweek = $1 ORDER BY player_id`
	if err := r.db.SelectContext(ctx, &rows, query, gameweek); err != nil {
		return nil, fmt.Errorf("select performances by gameweek: %w", err)
	}

	out := make([]performance.Performance, 0, len(rows))
	for _, row := range rows {
		out = append(out, row.toDomain())
	}

	return out, nil
}

func (r *PerformanceRepository) GetByPlayerAndGameweek(ctx context.Context, playerID string, gameweek int) (performance.Performance, bool, error) {
	var row performanceTableModel
	query := `SELECT ` + performanceSelectColumns + ` FROM gameweek_performances WHERE player_id = $1 AND gameweek = $2`
	if err := r.db.GetContext(ctx, &row, query, playerID, gameweek); err != nil {
		if isNotFound(err) {
			return performance.Performance{}, false, nil
		}
		return performance.Performance{}, false, fmt.Errorf("select performance: %w", err)
	}

	return row.toDomain(), true, nil
}

func (r *PerformanceRepository) UpsertBatch(ctx context.Context, rows []performance.Performance) error {
	if len(rows) == 0 {
		return nil
	}

	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin performance tx: %w", err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	const query = `
		INSERT INTO gameweek_performances
			(player_id, gameweek, points, goals, assists, clean_sheets, yellow_cards, red_cards, minutes, bonus)
		VALUES
			(:player_id, :gameweek, :points, :goals, :assists, :clean_sheets, :yellow_cards, :red_cards, :minutes, :bonus)
		ON CONFLICT (player_id, gameweek)
		DO UPDATE SET
			points = EXCLUDED.points,
			goals = EXCLUDED.goals,
			assists = EXCLUDED.assists,
			clean_sheets = EXCLUDED.clean_sheets,
			yellow_cards = EXCLUDED.yellow_cards,
			red_cards = EXCLUDED.red_cards,
			minutes = EXCLUDED.minutes,
			bonus = EXCLUDED.bonus`
	for _, row := range rows {
		model := performanceTableModel{
			PlayerID:    row.PlayerID,
			Gameweek:    row.Gameweek,
			Points:      row.Points,
			Goals:       row.Goals,
			Assists:     row.Assists,
			CleanSheets: row.CleanSheets,
			YellowCards: row.YellowCards,
			RedCards:    row.RedCards,
			Minutes:     row.Minutes,
			Bonus:       row.Bonus,
		}
		if _, err := tx.NamedExecContext(ctx, query, model); err != nil {
			return fmt.Errorf("upsert performance for %s gw %d: %w", row.PlayerID, row.Gameweek, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit performance tx: %w", err)
	}

	return nil
}
