package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/fivesquad/fivesquad/internal/domain/chip"
)

type ChipRepository struct {
	db *sqlx.DB
}

func NewChipRepository(db *sqlx.DB) *ChipRepository {
	return &ChipRepository{db: db}
}

func (r *ChipRepository) ListDefinitions(ctx context.Context) ([]chip.Chip, error) {
	var rows []chipTableModel
	if err := r.db.SelectContext(ctx, &rows, `SELECT id, name, rarity, effect, magnitude FROM chip_definitions ORDER BY id`); err != nil {
		return nil, fmt.Errorf("select chip definitions: %w", err)
	}

	out := make([]chip.Chip, 0, len(rows))
	for _, row := range rows {
		out = append(out, row.toDomain())
	}

	return out, nil
}

func (r *ChipRepository) GetDefinitionByType(ctx context.Context, effect chip.EffectType) (chip.Chip, bool, error) {
	var row chipTableModel
	query := `SELECT id, name, rarity, effect, magnitude FROM chip_definitions WHERE effect = $1 ORDER BY id LIMIT 1`
	if err := r.db.GetContext(ctx, &row, query, string(effect)); err != nil {
		if isNotFound(err) {
			return chip.Chip{}, false, nil
		}
		return chip.Chip{}, false, fmt.Errorf("select chip definition by type: %w", err)
	}

	return row.toDomain(), true, nil
}

func (r *ChipRepository) ListInventory(ctx context.Context, participantID string) ([]chip.InventoryEntry, error) {
	var rows []struct {
		ParticipantID string `db:"participant_id"`
		ChipID        string `db:"chip_id"`
		Quantity      int    `db:"quantity"`
	}
	query := `SELECT participant_id, chip_id, quantity FROM chip_inventory WHERE participant_id = $1 AND quantity > 0 ORDER BY chip_id`
	if err := r.db.SelectContext(ctx, &rows, query, participantID); err != nil {
		return nil, fmt.Errorf("select inventory: %w", err)
	}

	out := make([]chip.InventoryEntry, 0, len(rows))
	for _, row := range rows {
		out = append(out, chip.InventoryEntry{ParticipantID: row.ParticipantID, ChipID: row.ChipID, Quantity: row.Quantity})
	}

	return out, nil
}

func (r *ChipRepository) AddToInventory(ctx context.Context, participantID, chipID string) error {
	query := `
		INSERT INTO chip_inventory (participant_id, chip_id, quantity)
		VALUES ($1, $2, 1)
		ON CONFLICT (participant_id, chip_id)
		DO UPDATE SET quantity = chip_inventory.quantity + 1`
	if _, err := r.db.ExecContext(ctx, query, participantID, chipID); err != nil {
		return fmt.Errorf("add to inventory: %w", err)
	}

	return nil
}

// Consume decrements one unit with a guarded single-statement update, so the
// quantity check and the write cannot interleave with a concurrent Consume.
// Zero rows affected means the unit was already gone.
func (r *ChipRepository) Consume(ctx context.Context, participantID string, effect chip.EffectType) (chip.Chip, error) {
	def, found, err := r.GetDefinitionByType(ctx, effect)
	if err != nil {
		return chip.Chip{}, err
	}
	if !found {
		return chip.Chip{}, chip.ErrUnknownChipType
	}

	query := `
		UPDATE chip_inventory
		SET quantity = quantity - 1
		WHERE participant_id = $1 AND chip_id = $2 AND quantity > 0`
	result, err := r.db.ExecContext(ctx, query, participantID, def.ID)
	if err != nil {
		return chip.Chip{}, fmt.Errorf("decrement inventory: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return chip.Chip{}, fmt.Errorf("count decremented rows: %w", err)
	}
	if affected == 0 {
		return chip.Chip{}, chip.ErrInsufficientInventory
	}

	return def, nil
}

func (r *ChipRepository) SaveEffect(ctx context.Context, e chip.Effect) error {
	const query = `
		INSERT INTO chip_effects
			(id, source_participant_id, target_participant_id, chip_type, magnitude, gameweek, active_until, created_at)
		VALUES
			(:id, :source_participant_id, :target_participant_id, :chip_type, :magnitude, :gameweek, :active_until, :created_at)`

	model := effectTableModel{
		ID:          e.ID,
		SourceID:    e.SourceID,
		TargetID:    e.TargetID,
		ChipType:    string(e.ChipType),
		Magnitude:   e.Magnitude,
		Gameweek:    e.Gameweek,
		ActiveUntil: e.ActiveUntil,
		CreatedAt:   e.CreatedAt,
	}
	if _, err := r.db.NamedExecContext(ctx, query, model); err != nil {
		return fmt.Errorf("insert chip effect: %w", err)
	}

	return nil
}

func (r *ChipRepository) ListEffectsActiveAt(ctx context.Context, participantID string, at time.Time) ([]chip.Effect, error) {
	var rows []effectTableModel
	query := `
		SELECT id, source_participant_id, target_participant_id, chip_type, magnitude, gameweek, active_until, created_at
		FROM chip_effects
		WHERE target_participant_id = $1 AND active_until > $2
		ORDER BY created_at`
	if err := r.db.SelectContext(ctx, &rows, query, participantID, at); err != nil {
		return nil, fmt.Errorf("select active chip effects: %w", err)
	}

	out := make([]chip.Effect, 0, len(rows))
	for _, row := range rows {
		out = append(out, row.toDomain())
	}

	return out, nil
}

func (r *ChipRepository) GetCooldown(ctx context.Context, participantID string, effect chip.EffectType, targetID string) (chip.Cooldown, bool, error) {
	var row cooldownTableModel
	query := `
		SELECT participant_id, chip_type, target_participant_id, until_at
		FROM chip_cooldowns
		WHERE participant_id = $1 AND chip_type = $2 AND target_participant_id = $3`
	if err := r.db.GetContext(ctx, &row, query, participantID, string(effect), targetID); err != nil {
		if isNotFound(err) {
			return chip.Cooldown{}, false, nil
		}
		return chip.Cooldown{}, false, fmt.Errorf("select cooldown: %w", err)
	}

	return chip.Cooldown{
		ParticipantID: row.ParticipantID,
		ChipType:      chip.EffectType(row.ChipType),
		TargetID:      row.TargetID,
		Until:         row.Until,
	}, true, nil
}

func (r *ChipRepository) SaveCooldown(ctx context.Context, c chip.Cooldown) error {
	query := `
		INSERT INTO chip_cooldowns (participant_id, chip_type, target_participant_id, until_at)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (participant_id, chip_type, target_participant_id)
		DO UPDATE SET until_at = EXCLUDED.until_at`
	if _, err := r.db.ExecContext(ctx, query, c.ParticipantID, string(c.ChipType), c.TargetID, c.Until); err != nil {
		return fmt.Errorf("upsert cooldown: %w", err)
	}

	return nil
}

func (r *ChipRepository) GetLastGrant(ctx context.Context, participantID string) (chip.Grant, bool, error) {
	var row grantTableModel
	query := `SELECT participant_id, chip_id, granted_at FROM chip_grants WHERE participant_id = $1`
	if err := r.db.GetContext(ctx, &row, query, participantID); err != nil {
		if isNotFound(err) {
			return chip.Grant{}, false, nil
		}
		return chip.Grant{}, false, fmt.Errorf("select last grant: %w", err)
	}

	return chip.Grant{ParticipantID: row.ParticipantID, ChipID: row.ChipID, GrantedAt: row.GrantedAt}, true, nil
}

func (r *ChipRepository) SaveGrant(ctx context.Context, g chip.Grant) error {
	query := `
		INSERT INTO chip_grants (participant_id, chip_id, granted_at)
		VALUES ($1, $2, $3)
		ON CONFLICT (participant_id)
		DO UPDATE SET chip_id = EXCLUDED.chip_id, granted_at = EXCLUDED.granted_at`
	if _, err := r.db.ExecContext(ctx, query, g.ParticipantID, g.ChipID, g.GrantedAt); err != nil {
		return fmt.Errorf("upsert grant: %w", err)
	}

	return nil
}
