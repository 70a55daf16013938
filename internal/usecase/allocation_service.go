package usecase

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"strings"
	"time"

	"github.com/sourcegraph/conc/pool"

	"github.com/fivesquad/fivesquad/internal/domain/draft"
	"github.com/fivesquad/fivesquad/internal/domain/notification"
	"github.com/fivesquad/fivesquad/internal/domain/participant"
	"github.com/fivesquad/fivesquad/internal/domain/player"
	"github.com/fivesquad/fivesquad/internal/domain/roster"
)

const auditWorkers = 4

// CommandKind discriminates the closed set of allocation commands.
type CommandKind string

const (
	CommandAssign        CommandKind = "assign"
	CommandUnassign      CommandKind = "unassign"
	CommandSetCaptaincy  CommandKind = "set_captaincy"
	CommandCompleteDraft CommandKind = "complete_draft"
)

type AssignCommand struct {
	ParticipantID string
	PlayerID      string
	AsCaptain     bool
	AsViceCaptain bool
}

type UnassignCommand struct {
	ParticipantID string
	PlayerID      string
}

type SetCaptaincyCommand struct {
	ParticipantID string
	PlayerID      string
	AsCaptain     bool
	AsViceCaptain bool
}

type CompleteDraftCommand struct{}

// Command is a tagged variant over the allocation operations. Exactly the
// payload matching Kind must be set; Dispatch rejects anything else.
type Command struct {
	Kind          CommandKind
	Assign        *AssignCommand
	Unassign      *UnassignCommand
	SetCaptaincy  *SetCaptaincyCommand
	CompleteDraft *CompleteDraftCommand
}

// CommandResult carries the outcome of a dispatched command. Squad is set for
// squad-mutating commands, Draft for draft transitions.
type CommandResult struct {
	Squad []player.Player
	Draft *draft.Draft
}

// PreflightResult is the read-only answer to a canAssign question. A false
// Allowed is a structured rejection, not an error.
type PreflightResult struct {
	Allowed      bool
	Reason       string
	Hypothetical roster.Composition
}

// IncompleteSquadsError reports the participants whose squads block draft
// completion.
type IncompleteSquadsError struct {
	ParticipantIDs []string
}

func (e *IncompleteSquadsError) Error() string {
	return fmt.Sprintf("draft completion blocked: incomplete squads for participants %s", strings.Join(e.ParticipantIDs, ", "))
}

func (e *IncompleteSquadsError) Unwrap() error {
	return ErrPreconditionFailed
}

// ParticipantAudit is one participant's row in a full squad audit.
type ParticipantAudit struct {
	ParticipantID string
	Name          string
	SquadSize     int
	Result        roster.Result
}

// AuditReport aggregates a full squad sweep.
type AuditReport struct {
	Valid   int
	Invalid int
	Rows    []ParticipantAudit
}

type AllocationService struct {
	playerRepo      player.Repository
	participantRepo participant.Repository
	draftRepo       draft.Repository
	rules           roster.Rules
	notifier        notification.Publisher
	logger          *slog.Logger
	now             func() time.Time
}

func NewAllocationService(
	playerRepo player.Repository,
	participantRepo participant.Repository,
	draftRepo draft.Repository,
	rules roster.Rules,
	notifier notification.Publisher,
	logger *slog.Logger,
) *AllocationService {
	if logger == nil {
		logger = slog.Default()
	}

	return &AllocationService{
		playerRepo:      playerRepo,
		participantRepo: participantRepo,
		draftRepo:       draftRepo,
		rules:           rules,
		notifier:        notifier,
		logger:          logger,
		now:             time.Now,
	}
}

// Dispatch routes a Command to its operation. The switch is exhaustive over
// CommandKind; an unknown kind or a payload mismatch is an input error.
func (s *AllocationService) Dispatch(ctx context.Context, cmd Command) (CommandResult, error) {
	ctx, span := startUsecaseSpan(ctx, "AllocationService.Dispatch")
	defer span.End()

	switch cmd.Kind {
	case CommandAssign:
		if cmd.Assign == nil {
			return CommandResult{}, fmt.Errorf("%w: assign payload is required", ErrInvalidInput)
		}
		squad, err := s.Assign(ctx, cmd.Assign.ParticipantID, cmd.Assign.PlayerID, cmd.Assign.AsCaptain, cmd.Assign.AsViceCaptain)
		if err != nil {
			return CommandResult{}, err
		}
		return CommandResult{Squad: squad}, nil
	case CommandUnassign:
		if cmd.Unassign == nil {
			return CommandResult{}, fmt.Errorf("%w: unassign payload is required", ErrInvalidInput)
		}
		squad, err := s.Unassign(ctx, cmd.Unassign.ParticipantID, cmd.Unassign.PlayerID)
		if err != nil {
			return CommandResult{}, err
		}
		return CommandResult{Squad: squad}, nil
	case CommandSetCaptaincy:
		if cmd.SetCaptaincy == nil {
			return CommandResult{}, fmt.Errorf("%w: set_captaincy payload is required", ErrInvalidInput)
		}
		squad, err := s.SetCaptaincy(ctx, cmd.SetCaptaincy.ParticipantID, cmd.SetCaptaincy.PlayerID, cmd.SetCaptaincy.AsCaptain, cmd.SetCaptaincy.AsViceCaptain)
		if err != nil {
			return CommandResult{}, err
		}
		return CommandResult{Squad: squad}, nil
	case CommandCompleteDraft:
		if cmd.CompleteDraft == nil {
			return CommandResult{}, fmt.Errorf("%w: complete_draft payload is required", ErrInvalidInput)
		}
		d, err := s.CompleteDraft(ctx)
		if err != nil {
			return CommandResult{}, err
		}
		return CommandResult{Draft: &d}, nil
	default:
		return CommandResult{}, fmt.Errorf("%w: unknown command kind %q", ErrInvalidInput, cmd.Kind)
	}
}

// CanAssign answers the pre-flight question without taking any lock. The
// answer can go stale before a follow-up Assign; Assign re-checks everything
// inside the atomic section.
func (s *AllocationService) CanAssign(ctx context.Context, participantID, playerID string, asCaptain, asViceCaptain bool) (PreflightResult, error) {
	ctx, span := startUsecaseSpan(ctx, "AllocationService.CanAssign")
	defer span.End()

	participantID = strings.TrimSpace(participantID)
	playerID = strings.TrimSpace(playerID)
	if participantID == "" || playerID == "" {
		return PreflightResult{}, fmt.Errorf("%w: participant_id and player_id are required", ErrInvalidInput)
	}

	d, err := s.draftRepo.Get(ctx)
	if err != nil {
		return PreflightResult{}, fmt.Errorf("get draft: %w", err)
	}
	if !d.Active() {
		return PreflightResult{Allowed: false, Reason: "draft is complete"}, nil
	}

	candidate, exists, err := s.playerRepo.GetByID(ctx, playerID)
	if err != nil {
		return PreflightResult{}, fmt.Errorf("get player: %w", err)
	}
	if !exists {
		return PreflightResult{}, fmt.Errorf("%w: player=%s", ErrNotFound, playerID)
	}
	if candidate.Owned() {
		return PreflightResult{Allowed: false, Reason: "player is already assigned"}, nil
	}

	squad, err := s.playerRepo.ListByOwner(ctx, participantID)
	if err != nil {
		return PreflightResult{}, fmt.Errorf("list squad: %w", err)
	}

	if err := roster.CheckAssign(squad, candidate, asCaptain, asViceCaptain, s.rules); err != nil {
		return PreflightResult{Allowed: false, Reason: err.Error()}, nil
	}

	return PreflightResult{
		Allowed:      true,
		Hypothetical: roster.Hypothetical(squad, candidate, asCaptain, asViceCaptain),
	}, nil
}

// Assign claims an unowned player for a participant, optionally transferring
// a captaincy role to them. All checks re-run against rows read inside the
// store's atomic section, so a pre-flight race cannot corrupt the squad.
func (s *AllocationService) Assign(ctx context.Context, participantID, playerID string, asCaptain, asViceCaptain bool) ([]player.Player, error) {
	ctx, span := startUsecaseSpan(ctx, "AllocationService.Assign")
	defer span.End()

	participantID = strings.TrimSpace(participantID)
	playerID = strings.TrimSpace(playerID)
	if participantID == "" || playerID == "" {
		return nil, fmt.Errorf("%w: participant_id and player_id are required", ErrInvalidInput)
	}

	if err := s.requireActiveDraft(ctx); err != nil {
		return nil, err
	}
	if err := s.requireParticipant(ctx, participantID); err != nil {
		return nil, err
	}

	err := s.playerRepo.Allocate(ctx, playerID, participantID, func(target player.Player, ownerSquad []player.Player) ([]player.Player, error) {
		if target.Owned() {
			return nil, fmt.Errorf("%w: player %s is already assigned", ErrConflict, target.ID)
		}
		if err := roster.CheckAssign(ownerSquad, target, asCaptain, asViceCaptain, s.rules); err != nil {
			return nil, fmt.Errorf("%w: %s", ErrInvalidInput, err)
		}

		rows := make([]player.Player, 0, len(ownerSquad)+1)
		for _, p := range ownerSquad {
			if asCaptain {
				p.IsCaptain = false
			}
			if asViceCaptain {
				p.IsViceCaptain = false
			}
			rows = append(rows, p)
		}

		target.OwnerID = participantID
		target.IsCaptain = asCaptain
		target.IsViceCaptain = asViceCaptain
		rows = append(rows, target)

		return rows, nil
	})
	if err != nil {
		return nil, s.mapAllocateErr(err)
	}

	s.publish(ctx, notification.Event{
		Kind:                notification.KindPlayerAllocated,
		TargetParticipantID: participantID,
		Message:             fmt.Sprintf("player %s joined your squad", playerID),
		Metadata:            map[string]string{"player_id": playerID},
	})

	squad, err := s.playerRepo.ListByOwner(ctx, participantID)
	if err != nil {
		return nil, fmt.Errorf("list squad: %w", err)
	}

	s.logger.InfoContext(ctx, "player assigned",
		"participant_id", participantID,
		"player_id", playerID,
		"as_captain", asCaptain,
		"as_vice_captain", asViceCaptain,
	)

	return squad, nil
}

// Unassign returns a player to the unassigned pool and drops any captaincy
// flags they held.
func (s *AllocationService) Unassign(ctx context.Context, participantID, playerID string) ([]player.Player, error) {
	ctx, span := startUsecaseSpan(ctx, "AllocationService.Unassign")
	defer span.End()

	participantID = strings.TrimSpace(participantID)
	playerID = strings.TrimSpace(playerID)
	if playerID == "" {
		return nil, fmt.Errorf("%w: player_id is required", ErrInvalidInput)
	}

	if err := s.requireActiveDraft(ctx); err != nil {
		return nil, err
	}

	err := s.playerRepo.Allocate(ctx, playerID, "", func(target player.Player, _ []player.Player) ([]player.Player, error) {
		if participantID != "" && target.OwnerID != participantID {
			return nil, fmt.Errorf("%w: player %s is not in your squad", ErrUnauthorized, target.ID)
		}

		target.OwnerID = ""
		target.IsCaptain = false
		target.IsViceCaptain = false

		return []player.Player{target}, nil
	})
	if err != nil {
		return nil, s.mapAllocateErr(err)
	}

	s.logger.InfoContext(ctx, "player unassigned", "participant_id", participantID, "player_id", playerID)

	if participantID == "" {
		return nil, nil
	}
	squad, err := s.playerRepo.ListByOwner(ctx, participantID)
	if err != nil {
		return nil, fmt.Errorf("list squad: %w", err)
	}
	return squad, nil
}

// SetCaptaincy moves a captaincy role onto an owned player. The previous
// holder's flag is cleared in the same write, so the operation is idempotent
// and never leaves two holders behind. Captaincy changes stay open after the
// draft completes.
func (s *AllocationService) SetCaptaincy(ctx context.Context, participantID, playerID string, asCaptain, asViceCaptain bool) ([]player.Player, error) {
	ctx, span := startUsecaseSpan(ctx, "AllocationService.SetCaptaincy")
	defer span.End()

	participantID = strings.TrimSpace(participantID)
	playerID = strings.TrimSpace(playerID)
	if participantID == "" || playerID == "" {
		return nil, fmt.Errorf("%w: participant_id and player_id are required", ErrInvalidInput)
	}
	if asCaptain && asViceCaptain {
		return nil, fmt.Errorf("%w: player cannot hold both captaincy roles", ErrInvalidInput)
	}

	err := s.playerRepo.Allocate(ctx, playerID, participantID, func(target player.Player, ownerSquad []player.Player) ([]player.Player, error) {
		if !target.Owned() {
			return nil, fmt.Errorf("%w: player %s has no owner", ErrPreconditionFailed, target.ID)
		}
		if target.OwnerID != participantID {
			return nil, fmt.Errorf("%w: player %s is not in your squad", ErrUnauthorized, target.ID)
		}

		rows := make([]player.Player, 0, len(ownerSquad)+1)
		for _, p := range ownerSquad {
			if asCaptain {
				p.IsCaptain = false
			}
			if asViceCaptain {
				p.IsViceCaptain = false
			}
			rows = append(rows, p)
		}

		target.IsCaptain = asCaptain
		target.IsViceCaptain = asViceCaptain
		rows = append(rows, target)

		return rows, nil
	})
	if err != nil {
		return nil, s.mapAllocateErr(err)
	}

	s.logger.InfoContext(ctx, "captaincy updated",
		"participant_id", participantID,
		"player_id", playerID,
		"as_captain", asCaptain,
		"as_vice_captain", asViceCaptain,
	)

	squad, err := s.playerRepo.ListByOwner(ctx, participantID)
	if err != nil {
		return nil, fmt.Errorf("list squad: %w", err)
	}
	return squad, nil
}

// CompleteDraft moves the draft to its terminal state. Only the size
// invariant gates completion; full composition validity is an audit concern,
// not a completion gate.
func (s *AllocationService) CompleteDraft(ctx context.Context) (draft.Draft, error) {
	ctx, span := startUsecaseSpan(ctx, "AllocationService.CompleteDraft")
	defer span.End()

	d, err := s.draftRepo.Get(ctx)
	if err != nil {
		return draft.Draft{}, fmt.Errorf("get draft: %w", err)
	}
	if !d.Active() {
		return draft.Draft{}, fmt.Errorf("%w: draft is already complete", ErrPreconditionFailed)
	}

	participants, err := s.participantRepo.List(ctx)
	if err != nil {
		return draft.Draft{}, fmt.Errorf("list participants: %w", err)
	}

	var incomplete []string
	for _, p := range participants {
		squad, err := s.playerRepo.ListByOwner(ctx, p.ID)
		if err != nil {
			return draft.Draft{}, fmt.Errorf("list squad for %s: %w", p.ID, err)
		}
		if len(squad) != s.rules.SquadSize {
			incomplete = append(incomplete, p.ID)
		}
	}
	if len(incomplete) > 0 {
		sort.Strings(incomplete)
		return draft.Draft{}, &IncompleteSquadsError{ParticipantIDs: incomplete}
	}

	completedAt := s.now().UTC()
	d.Status = draft.StatusComplete
	d.CompletedAt = &completedAt
	if err := s.draftRepo.Save(ctx, d); err != nil {
		return draft.Draft{}, fmt.Errorf("save draft: %w", err)
	}

	s.logger.InfoContext(ctx, "draft completed", "participant_count", len(participants))

	return d, nil
}

// AuditSquads runs the full composition check for every participant in
// parallel and aggregates the violation report.
func (s *AllocationService) AuditSquads(ctx context.Context) (AuditReport, error) {
	ctx, span := startUsecaseSpan(ctx, "AllocationService.AuditSquads")
	defer span.End()

	participants, err := s.participantRepo.List(ctx)
	if err != nil {
		return AuditReport{}, fmt.Errorf("list participants: %w", err)
	}

	p := pool.NewWithResults[ParticipantAudit]().
		WithContext(ctx).
		WithMaxGoroutines(auditWorkers)

	for _, part := range participants {
		part := part
		p.Go(func(ctx context.Context) (ParticipantAudit, error) {
			squad, err := s.playerRepo.ListByOwner(ctx, part.ID)
			if err != nil {
				return ParticipantAudit{}, fmt.Errorf("list squad for %s: %w", part.ID, err)
			}
			return ParticipantAudit{
				ParticipantID: part.ID,
				Name:          part.Name,
				SquadSize:     len(squad),
				Result:        roster.Validate(squad, s.rules),
			}, nil
		})
	}

	rows, err := p.Wait()
	if err != nil {
		return AuditReport{}, err
	}
	sort.Slice(rows, func(i, j int) bool { return rows[i].ParticipantID < rows[j].ParticipantID })

	report := AuditReport{Rows: rows}
	for _, row := range rows {
		if row.Result.Valid {
			report.Valid++
		} else {
			report.Invalid++
		}
	}

	return report, nil
}

func (s *AllocationService) requireActiveDraft(ctx context.Context) error {
	d, err := s.draftRepo.Get(ctx)
	if err != nil {
		return fmt.Errorf("get draft: %w", err)
	}
	if !d.Active() {
		return fmt.Errorf("%w: draft is complete", ErrPreconditionFailed)
	}
	return nil
}

func (s *AllocationService) requireParticipant(ctx context.Context, participantID string) error {
	_, exists, err := s.participantRepo.GetByID(ctx, participantID)
	if err != nil {
		return fmt.Errorf("get participant: %w", err)
	}
	if !exists {
		return fmt.Errorf("%w: participant=%s", ErrNotFound, participantID)
	}
	return nil
}

func (s *AllocationService) mapAllocateErr(err error) error {
	switch {
	case errors.Is(err, player.ErrConflict):
		return fmt.Errorf("%w: %s", ErrConflict, err)
	case errors.Is(err, player.ErrNotFound):
		return fmt.Errorf("%w: %s", ErrNotFound, err)
	default:
		return err
	}
}

func (s *AllocationService) publish(ctx context.Context, event notification.Event) {
	if s.notifier == nil {
		return
	}
	if err := s.notifier.Publish(ctx, event); err != nil {
		s.logger.WarnContext(ctx, "notification publish failed", "kind", string(event.Kind), "error", err)
	}
}
