package usecase

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/fivesquad/fivesquad/internal/domain/chip"
	"github.com/fivesquad/fivesquad/internal/domain/notification"
	"github.com/fivesquad/fivesquad/internal/domain/participant"
	idgen "github.com/fivesquad/fivesquad/internal/platform/id"
)

const (
	effectValidity        = 7 * 24 * time.Hour
	chipCooldown          = 24 * time.Hour
	legendaryChipCooldown = 168 * time.Hour
)

// UseChipInput is the incoming payload for spending a chip.
type UseChipInput struct {
	SourceID string
	ChipType chip.EffectType
	TargetID string
	Gameweek int
}

type ChipService struct {
	chipRepo        chip.Repository
	participantRepo participant.Repository
	notifier        notification.Publisher
	idGen           idgen.Generator
	logger          *slog.Logger
	now             func() time.Time
}

func NewChipService(
	chipRepo chip.Repository,
	participantRepo participant.Repository,
	notifier notification.Publisher,
	idGen idgen.Generator,
	logger *slog.Logger,
) *ChipService {
	if logger == nil {
		logger = slog.Default()
	}

	return &ChipService{
		chipRepo:        chipRepo,
		participantRepo: participantRepo,
		notifier:        notifier,
		idGen:           idGen,
		logger:          logger,
		now:             time.Now,
	}
}

// Use spends one unit of a chip. Preconditions run in fixed order: cooldown,
// inventory, target requirement. The decrement itself happens inside the
// store's atomic Consume, so a concurrent Use against a single unit cannot
// drive the inventory negative.
func (s *ChipService) Use(ctx context.Context, input UseChipInput) (chip.Effect, error) {
	ctx, span := startUsecaseSpan(ctx, "ChipService.Use")
	defer span.End()

	input.SourceID = strings.TrimSpace(input.SourceID)
	input.TargetID = strings.TrimSpace(input.TargetID)
	if input.SourceID == "" {
		return chip.Effect{}, fmt.Errorf("%w: source participant id is required", ErrInvalidInput)
	}
	if input.Gameweek < 1 {
		return chip.Effect{}, fmt.Errorf("%w: gameweek must be positive", ErrInvalidInput)
	}
	if _, ok := chip.AllEffectTypes[input.ChipType]; !ok {
		return chip.Effect{}, fmt.Errorf("%w: unknown chip type %q", ErrNotFound, input.ChipType)
	}

	def, exists, err := s.chipRepo.GetDefinitionByType(ctx, input.ChipType)
	if err != nil {
		return chip.Effect{}, fmt.Errorf("get chip definition: %w", err)
	}
	if !exists {
		return chip.Effect{}, fmt.Errorf("%w: no chip definition for type %q", ErrNotFound, input.ChipType)
	}

	now := s.now().UTC()

	// precondition 1: cooldown
	cooldown, found, err := s.chipRepo.GetCooldown(ctx, input.SourceID, input.ChipType, input.TargetID)
	if err != nil {
		return chip.Effect{}, fmt.Errorf("get cooldown: %w", err)
	}
	if found && cooldown.ActiveAt(now) {
		return chip.Effect{}, fmt.Errorf("%w: chip %s on cooldown until %s", ErrPreconditionFailed, input.ChipType, cooldown.Until.Format(time.RFC3339))
	}

	// precondition 2: inventory holds at least one unit
	if err := s.requireInventory(ctx, input.SourceID, def.ID); err != nil {
		return chip.Effect{}, err
	}

	// precondition 3: target requirement per chip type
	if input.ChipType.RequiresTarget() {
		if input.TargetID == "" {
			return chip.Effect{}, fmt.Errorf("%w: chip %s requires a target participant", ErrInvalidInput, input.ChipType)
		}
		_, exists, err := s.participantRepo.GetByID(ctx, input.TargetID)
		if err != nil {
			return chip.Effect{}, fmt.Errorf("get target participant: %w", err)
		}
		if !exists {
			return chip.Effect{}, fmt.Errorf("%w: participant=%s", ErrNotFound, input.TargetID)
		}
	} else if input.TargetID != "" {
		return chip.Effect{}, fmt.Errorf("%w: chip %s does not take a target", ErrInvalidInput, input.ChipType)
	}

	consumed, err := s.chipRepo.Consume(ctx, input.SourceID, input.ChipType)
	if err != nil {
		if errors.Is(err, chip.ErrInsufficientInventory) {
			return chip.Effect{}, fmt.Errorf("%w: no %s chip in inventory", ErrPreconditionFailed, input.ChipType)
		}
		return chip.Effect{}, fmt.Errorf("consume chip: %w", err)
	}

	effectID, err := s.idGen.NewID()
	if err != nil {
		return chip.Effect{}, fmt.Errorf("generate effect id: %w", err)
	}

	// self-targeted effects attach to the source so scoring finds them
	targetID := input.TargetID
	if targetID == "" {
		targetID = input.SourceID
	}

	effect := chip.Effect{
		ID:          effectID,
		SourceID:    input.SourceID,
		TargetID:    targetID,
		ChipType:    input.ChipType,
		Magnitude:   consumed.Magnitude,
		Gameweek:    input.Gameweek,
		ActiveUntil: now.Add(effectValidity),
		CreatedAt:   now,
	}
	if err := s.chipRepo.SaveEffect(ctx, effect); err != nil {
		return chip.Effect{}, fmt.Errorf("save effect: %w", err)
	}

	cooldownFor := chipCooldown
	if consumed.Rarity == chip.RarityLegendary {
		cooldownFor = legendaryChipCooldown
	}
	if err := s.chipRepo.SaveCooldown(ctx, chip.Cooldown{
		ParticipantID: input.SourceID,
		ChipType:      input.ChipType,
		TargetID:      input.TargetID,
		Until:         now.Add(cooldownFor),
	}); err != nil {
		return chip.Effect{}, fmt.Errorf("save cooldown: %w", err)
	}

	if targetID != input.SourceID {
		s.publishChipNotice(ctx, effect)
	}

	s.logger.InfoContext(ctx, "chip used",
		"source_id", input.SourceID,
		"target_id", targetID,
		"chip_type", string(input.ChipType),
		"gameweek", input.Gameweek,
	)

	return effect, nil
}

// Inventory lists a participant's current chip holdings with definitions.
func (s *ChipService) Inventory(ctx context.Context, participantID string) ([]chip.InventoryEntry, error) {
	ctx, span := startUsecaseSpan(ctx, "ChipService.Inventory")
	defer span.End()

	participantID = strings.TrimSpace(participantID)
	if participantID == "" {
		return nil, fmt.Errorf("%w: participant_id is required", ErrInvalidInput)
	}
	return s.chipRepo.ListInventory(ctx, participantID)
}

// ActiveEffects lists the effects currently pointed at a participant.
func (s *ChipService) ActiveEffects(ctx context.Context, participantID string) ([]chip.Effect, error) {
	ctx, span := startUsecaseSpan(ctx, "ChipService.ActiveEffects")
	defer span.End()

	participantID = strings.TrimSpace(participantID)
	if participantID == "" {
		return nil, fmt.Errorf("%w: participant_id is required", ErrInvalidInput)
	}
	return s.chipRepo.ListEffectsActiveAt(ctx, participantID, s.now().UTC())
}

func (s *ChipService) requireInventory(ctx context.Context, participantID, chipID string) error {
	holdings, err := s.chipRepo.ListInventory(ctx, participantID)
	if err != nil {
		return fmt.Errorf("list inventory: %w", err)
	}
	for _, entry := range holdings {
		if entry.ChipID == chipID && entry.Quantity > 0 {
			return nil
		}
	}
	return fmt.Errorf("%w: no unit of chip %s in inventory", ErrPreconditionFailed, chipID)
}

func (s *ChipService) publishChipNotice(ctx context.Context, effect chip.Effect) {
	if s.notifier == nil {
		return
	}
	event := notification.Event{
		Kind:                notification.KindChipUsedOnYou,
		TargetParticipantID: effect.TargetID,
		Message:             fmt.Sprintf("a %s chip was used on you", effect.ChipType),
		Metadata: map[string]string{
			"source_participant_id": effect.SourceID,
			"chip_type":             string(effect.ChipType),
			"gameweek":              fmt.Sprintf("%d", effect.Gameweek),
		},
	}
	if err := s.notifier.Publish(ctx, event); err != nil {
		s.logger.WarnContext(ctx, "notification publish failed", "kind", string(event.Kind), "error", err)
	}
}
