package usecase

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/fivesquad/fivesquad/internal/domain/draft"
	"github.com/fivesquad/fivesquad/internal/domain/notification"
	"github.com/fivesquad/fivesquad/internal/domain/roster"
	"github.com/fivesquad/fivesquad/internal/infrastructure/repository/memory"
)

type recordingNotifier struct {
	mu     sync.Mutex
	events []notification.Event
}

func (n *recordingNotifier) Publish(_ context.Context, event notification.Event) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.events = append(n.events, event)
	return nil
}

func (n *recordingNotifier) byKind(kind notification.Kind) []notification.Event {
	n.mu.Lock()
	defer n.mu.Unlock()

	out := make([]notification.Event, 0)
	for _, e := range n.events {
		if e.Kind == kind {
			out = append(out, e)
		}
	}
	return out
}

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

type allocationFixture struct {
	service  *AllocationService
	players  *memory.PlayerRepository
	draft    *memory.DraftRepository
	notifier *recordingNotifier
}

func completedDraft() draft.Draft {
	completedAt := time.Date(2026, 3, 1, 18, 0, 0, 0, time.UTC)
	return draft.Draft{Status: draft.StatusComplete, CompletedAt: &completedAt}
}

func newAllocationFixture() allocationFixture {
	players := memory.NewPlayerRepository(memory.SeedPlayers())
	participants := memory.NewParticipantRepository(memory.SeedParticipants())
	draftRepo := memory.NewDraftRepository()
	notifier := &recordingNotifier{}

	service := NewAllocationService(players, participants, draftRepo, roster.DefaultRules(), notifier, testLogger())
	service.now = func() time.Time { return time.Date(2026, 3, 14, 9, 0, 0, 0, time.UTC) }

	return allocationFixture{service: service, players: players, draft: draftRepo, notifier: notifier}
}

func (f allocationFixture) mustAssign(t *testing.T, participantID, playerID string, asCaptain, asVice bool) {
	t.Helper()
	if _, err := f.service.Assign(t.Context(), participantID, playerID, asCaptain, asVice); err != nil {
		t.Fatalf("assign %s to %s failed: %v", playerID, participantID, err)
	}
}

func TestAllocationService_Assign_BuildsSquadWithCaptaincyTransfer(t *testing.T) {
	f := newAllocationFixture()

	f.mustAssign(t, "part-01", "pl-gk-01", true, false)
	f.mustAssign(t, "part-01", "pl-def-01", false, true)
	f.mustAssign(t, "part-01", "pl-mid-01", false, false)
	// the forward takes the armband; the goalkeeper's flag must be cleared
	squad, err := f.service.Assign(t.Context(), "part-01", "pl-fwd-01", true, false)
	if err != nil {
		t.Fatalf("assign with captaincy transfer failed: %v", err)
	}

	comp := roster.Compose(squad)
	if comp.Captains != 1 {
		t.Fatalf("expected exactly one captain after transfer, got %d", comp.Captains)
	}
	if comp.CaptainID != "pl-fwd-01" {
		t.Fatalf("expected captain pl-fwd-01, got %s", comp.CaptainID)
	}
	if comp.ViceID != "pl-def-01" {
		t.Fatalf("expected vice-captain pl-def-01, got %s", comp.ViceID)
	}

	allocated := f.notifier.byKind(notification.KindPlayerAllocated)
	if len(allocated) != 4 {
		t.Fatalf("expected 4 playerAllocated events, got %d", len(allocated))
	}
	if allocated[0].TargetParticipantID != "part-01" {
		t.Fatalf("expected event targeted at part-01, got %s", allocated[0].TargetParticipantID)
	}
}

func TestAllocationService_Assign_Rejections(t *testing.T) {
	tests := []struct {
		name     string
		prepare  func(t *testing.T, f allocationFixture)
		playerID string
		wantErr  error
	}{
		{
			name: "player already assigned",
			prepare: func(t *testing.T, f allocationFixture) {
				f.mustAssign(t, "part-02", "pl-gk-01", false, false)
			},
			playerID: "pl-gk-01",
			wantErr:  ErrConflict,
		},
		{
			name: "defensive bucket full",
			prepare: func(t *testing.T, f allocationFixture) {
				f.mustAssign(t, "part-01", "pl-gk-01", false, false)
				f.mustAssign(t, "part-01", "pl-def-01", false, false)
			},
			playerID: "pl-def-02",
			wantErr:  ErrInvalidInput,
		},
		{
			name: "squad full",
			prepare: func(t *testing.T, f allocationFixture) {
				f.mustAssign(t, "part-01", "pl-gk-01", false, false)
				f.mustAssign(t, "part-01", "pl-def-01", false, false)
				f.mustAssign(t, "part-01", "pl-mid-01", false, false)
				f.mustAssign(t, "part-01", "pl-mid-02", false, false)
				f.mustAssign(t, "part-01", "pl-fwd-01", false, false)
			},
			playerID: "pl-fwd-02",
			wantErr:  ErrInvalidInput,
		},
		{
			name: "draft complete",
			prepare: func(t *testing.T, f allocationFixture) {
				if err := f.draft.Save(t.Context(), completedDraft()); err != nil {
					t.Fatalf("save draft: %v", err)
				}
			},
			playerID: "pl-gk-01",
			wantErr:  ErrPreconditionFailed,
		},
		{
			name:     "unknown player",
			prepare:  func(*testing.T, allocationFixture) {},
			playerID: "pl-missing",
			wantErr:  ErrNotFound,
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			f := newAllocationFixture()
			tc.prepare(t, f)

			_, err := f.service.Assign(t.Context(), "part-01", tc.playerID, false, false)
			if !errors.Is(err, tc.wantErr) {
				t.Fatalf("expected error %v, got %v", tc.wantErr, err)
			}
		})
	}
}

func TestAllocationService_Assign_UnknownParticipant(t *testing.T) {
	f := newAllocationFixture()

	_, err := f.service.Assign(t.Context(), "part-99", "pl-gk-01", false, false)
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestAllocationService_CanAssign(t *testing.T) {
	f := newAllocationFixture()
	f.mustAssign(t, "part-01", "pl-gk-01", true, false)
	f.mustAssign(t, "part-02", "pl-gk-02", false, false)

	t.Run("owned player is rejected without error", func(t *testing.T) {
		res, err := f.service.CanAssign(t.Context(), "part-01", "pl-gk-02", false, false)
		if err != nil {
			t.Fatalf("preflight failed: %v", err)
		}
		if res.Allowed {
			t.Fatal("expected rejection for an owned player")
		}
		if res.Reason == "" {
			t.Fatal("expected a rejection reason")
		}
	})

	t.Run("open slot returns hypothetical composition", func(t *testing.T) {
		res, err := f.service.CanAssign(t.Context(), "part-01", "pl-mid-01", false, true)
		if err != nil {
			t.Fatalf("preflight failed: %v", err)
		}
		if !res.Allowed {
			t.Fatalf("expected allowed, got reason %q", res.Reason)
		}
		if res.Hypothetical.Size != 2 || res.Hypothetical.Attacking != 1 {
			t.Fatalf("unexpected hypothetical composition: %+v", res.Hypothetical)
		}
		if res.Hypothetical.ViceID != "pl-mid-01" {
			t.Fatalf("expected hypothetical vice pl-mid-01, got %s", res.Hypothetical.ViceID)
		}
	})

	t.Run("unknown player is an error", func(t *testing.T) {
		_, err := f.service.CanAssign(t.Context(), "part-01", "pl-missing", false, false)
		if !errors.Is(err, ErrNotFound) {
			t.Fatalf("expected ErrNotFound, got %v", err)
		}
	})
}

func TestAllocationService_Unassign(t *testing.T) {
	f := newAllocationFixture()
	f.mustAssign(t, "part-01", "pl-gk-01", true, false)

	t.Run("foreign squad is rejected", func(t *testing.T) {
		_, err := f.service.Unassign(t.Context(), "part-02", "pl-gk-01")
		if !errors.Is(err, ErrUnauthorized) {
			t.Fatalf("expected ErrUnauthorized, got %v", err)
		}
	})

	t.Run("clears owner and captaincy", func(t *testing.T) {
		squad, err := f.service.Unassign(t.Context(), "part-01", "pl-gk-01")
		if err != nil {
			t.Fatalf("unassign failed: %v", err)
		}
		if len(squad) != 0 {
			t.Fatalf("expected empty squad, got %d players", len(squad))
		}

		p, _, err := f.players.GetByID(t.Context(), "pl-gk-01")
		if err != nil {
			t.Fatalf("get player: %v", err)
		}
		if p.Owned() || p.IsCaptain {
			t.Fatalf("expected unowned player without flags, got %+v", p)
		}
	})
}

func TestAllocationService_SetCaptaincy_Idempotent(t *testing.T) {
	f := newAllocationFixture()
	f.mustAssign(t, "part-01", "pl-gk-01", true, false)
	f.mustAssign(t, "part-01", "pl-mid-01", false, false)

	for range 2 {
		squad, err := f.service.SetCaptaincy(t.Context(), "part-01", "pl-mid-01", true, false)
		if err != nil {
			t.Fatalf("set captaincy failed: %v", err)
		}
		comp := roster.Compose(squad)
		if comp.Captains != 1 || comp.CaptainID != "pl-mid-01" {
			t.Fatalf("expected single captain pl-mid-01, got %+v", comp)
		}
	}
}

func TestAllocationService_SetCaptaincy_Rejections(t *testing.T) {
	f := newAllocationFixture()
	f.mustAssign(t, "part-01", "pl-gk-01", false, false)

	t.Run("unowned player", func(t *testing.T) {
		_, err := f.service.SetCaptaincy(t.Context(), "part-01", "pl-mid-01", true, false)
		if !errors.Is(err, ErrPreconditionFailed) {
			t.Fatalf("expected ErrPreconditionFailed, got %v", err)
		}
	})

	t.Run("both roles at once", func(t *testing.T) {
		_, err := f.service.SetCaptaincy(t.Context(), "part-01", "pl-gk-01", true, true)
		if !errors.Is(err, ErrInvalidInput) {
			t.Fatalf("expected ErrInvalidInput, got %v", err)
		}
	})
}

func TestAllocationService_CompleteDraft(t *testing.T) {
	f := newAllocationFixture()

	fullSquads := map[string][]string{
		"part-01": {"pl-gk-01", "pl-def-01", "pl-mid-01", "pl-mid-02", "pl-fwd-01"},
		"part-02": {"pl-gk-02", "pl-def-02", "pl-mid-03", "pl-fwd-02", "pl-fwd-03"},
		"part-03": {"pl-def-03", "pl-def-04", "pl-mid-04", "pl-mid-05", "pl-fwd-04"},
		"part-04": {"pl-gk-03", "pl-def-05", "pl-mid-06", "pl-mid-07", "pl-fwd-05"},
	}

	// leave part-04 one short
	for participantID, playerIDs := range fullSquads {
		ids := playerIDs
		if participantID == "part-04" {
			ids = ids[:4]
		}
		for _, id := range ids {
			f.mustAssign(t, participantID, id, false, false)
		}
	}

	_, err := f.service.CompleteDraft(t.Context())
	var incomplete *IncompleteSquadsError
	if !errors.As(err, &incomplete) {
		t.Fatalf("expected IncompleteSquadsError, got %v", err)
	}
	if !errors.Is(err, ErrPreconditionFailed) {
		t.Fatalf("expected wrapped ErrPreconditionFailed, got %v", err)
	}
	if len(incomplete.ParticipantIDs) != 1 || incomplete.ParticipantIDs[0] != "part-04" {
		t.Fatalf("expected offender part-04, got %v", incomplete.ParticipantIDs)
	}

	f.mustAssign(t, "part-04", fullSquads["part-04"][4], false, false)

	d, err := f.service.CompleteDraft(t.Context())
	if err != nil {
		t.Fatalf("complete draft failed: %v", err)
	}
	if d.Active() || d.CompletedAt == nil {
		t.Fatalf("expected completed draft with timestamp, got %+v", d)
	}

	// one-way transition
	if _, err := f.service.CompleteDraft(t.Context()); !errors.Is(err, ErrPreconditionFailed) {
		t.Fatalf("expected ErrPreconditionFailed on repeat completion, got %v", err)
	}
}

func TestAllocationService_Dispatch(t *testing.T) {
	f := newAllocationFixture()

	res, err := f.service.Dispatch(t.Context(), Command{
		Kind:   CommandAssign,
		Assign: &AssignCommand{ParticipantID: "part-01", PlayerID: "pl-gk-01", AsCaptain: true},
	})
	if err != nil {
		t.Fatalf("dispatch assign failed: %v", err)
	}
	if len(res.Squad) != 1 {
		t.Fatalf("expected squad of 1, got %d", len(res.Squad))
	}

	t.Run("unknown kind", func(t *testing.T) {
		_, err := f.service.Dispatch(t.Context(), Command{Kind: CommandKind("upsert")})
		if !errors.Is(err, ErrInvalidInput) {
			t.Fatalf("expected ErrInvalidInput, got %v", err)
		}
	})

	t.Run("payload mismatch", func(t *testing.T) {
		_, err := f.service.Dispatch(t.Context(), Command{Kind: CommandAssign})
		if !errors.Is(err, ErrInvalidInput) {
			t.Fatalf("expected ErrInvalidInput, got %v", err)
		}
	})
}

func TestAllocationService_AuditSquads(t *testing.T) {
	f := newAllocationFixture()

	// part-01 gets a fully valid squad, everyone else stays empty
	f.mustAssign(t, "part-01", "pl-gk-01", true, false)
	f.mustAssign(t, "part-01", "pl-def-01", false, false)
	f.mustAssign(t, "part-01", "pl-mid-01", false, true)
	f.mustAssign(t, "part-01", "pl-mid-02", false, false)
	f.mustAssign(t, "part-01", "pl-fwd-01", false, false)

	report, err := f.service.AuditSquads(t.Context())
	if err != nil {
		t.Fatalf("audit failed: %v", err)
	}
	if report.Valid != 1 || report.Invalid != 3 {
		t.Fatalf("expected 1 valid / 3 invalid, got %d/%d", report.Valid, report.Invalid)
	}
	if len(report.Rows) != 4 || report.Rows[0].ParticipantID != "part-01" {
		t.Fatalf("expected 4 sorted rows starting with part-01, got %+v", report.Rows)
	}
	if !report.Rows[0].Result.Valid {
		t.Fatalf("expected part-01 squad to validate, got %+v", report.Rows[0].Result)
	}
	if first := report.Rows[1].Result.First(); first == nil || !errors.Is(first, roster.ErrInvalidSquadSize) {
		t.Fatalf("expected size violation first for empty squad, got %v", first)
	}
}
