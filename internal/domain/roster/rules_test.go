package roster

import (
	"errors"
	"testing"

	"github.com/fivesquad/fivesquad/internal/domain/player"
)

func validSquad() []player.Player {
	return []player.Player{
		{ID: "p1", Name: "GK One", Position: player.PositionGoalkeeper, OwnerID: "u1"},
		{ID: "p2", Name: "Def One", Position: player.PositionDefender, OwnerID: "u1", IsCaptain: true},
		{ID: "p3", Name: "Mid One", Position: player.PositionMidfielder, OwnerID: "u1", IsViceCaptain: true},
		{ID: "p4", Name: "Mid Two", Position: player.PositionMidfielder, OwnerID: "u1"},
		{ID: "p5", Name: "Fwd One", Position: player.PositionForward, OwnerID: "u1"},
	}
}

func TestValidate(t *testing.T) {
	rules := DefaultRules()

	tests := []struct {
		name      string
		mutate    func([]player.Player) []player.Player
		targetErr error
	}{
		{
			name:      "valid squad",
			mutate:    func(squad []player.Player) []player.Player { return squad },
			targetErr: nil,
		},
		{
			name: "too few players",
			mutate: func(squad []player.Player) []player.Player {
				return squad[:4]
			},
			targetErr: ErrInvalidSquadSize,
		},
		{
			name: "three defensive players",
			mutate: func(squad []player.Player) []player.Player {
				squad[3].Position = player.PositionDefender
				return squad
			},
			targetErr: ErrBucketShort,
		},
		{
			name: "no captain",
			mutate: func(squad []player.Player) []player.Player {
				squad[1].IsCaptain = false
				return squad
			},
			targetErr: ErrCaptainCount,
		},
		{
			name: "two vice-captains",
			mutate: func(squad []player.Player) []player.Player {
				squad[4].IsViceCaptain = true
				return squad
			},
			targetErr: ErrViceCaptainCount,
		},
		{
			name: "captain equals vice-captain",
			mutate: func(squad []player.Player) []player.Player {
				squad[2].IsViceCaptain = false
				squad[1].IsViceCaptain = true
				return squad
			},
			targetErr: ErrCaptainIsVice,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			squad := tt.mutate(validSquad())
			result := Validate(squad, rules)

			if tt.targetErr == nil {
				if !result.Valid {
					t.Fatalf("expected valid squad, got violations %v", result.Violations)
				}
				if result.First() != nil {
					t.Fatalf("expected no first violation, got %v", result.First())
				}
				return
			}

			if result.Valid {
				t.Fatalf("expected invalid squad")
			}
			found := false
			for _, v := range result.Violations {
				if errors.Is(v, tt.targetErr) {
					found = true
				}
			}
			if !found {
				t.Fatalf("expected violation %v, got %v", tt.targetErr, result.Violations)
			}
		})
	}
}

func TestValidate_CollectsAllViolations(t *testing.T) {
	squad := validSquad()[:3]
	squad[1].IsCaptain = false

	result := Validate(squad, DefaultRules())
	if result.Valid {
		t.Fatalf("expected invalid squad")
	}
	if len(result.Violations) < 3 {
		t.Fatalf("expected at least 3 violations for audit, got %d: %v", len(result.Violations), result.Violations)
	}
	if !errors.Is(*result.First(), ErrInvalidSquadSize) {
		t.Fatalf("expected size violation first, got %v", result.First())
	}
}

func TestCheckAssign(t *testing.T) {
	rules := DefaultRules()

	t.Run("squad full", func(t *testing.T) {
		candidate := player.Player{ID: "p6", Position: player.PositionForward}
		err := CheckAssign(validSquad(), candidate, false, false, rules)
		if !errors.Is(err, ErrSquadFull) {
			t.Fatalf("expected ErrSquadFull, got %v", err)
		}
	})

	t.Run("defensive bucket full", func(t *testing.T) {
		squad := validSquad()[:4]
		candidate := player.Player{ID: "p6", Position: player.PositionDefender}
		err := CheckAssign(squad, candidate, false, false, rules)
		if !errors.Is(err, ErrBucketFull) {
			t.Fatalf("expected ErrBucketFull, got %v", err)
		}
	})

	t.Run("open attacking slot", func(t *testing.T) {
		squad := validSquad()[:4]
		candidate := player.Player{ID: "p6", Position: player.PositionForward}
		if err := CheckAssign(squad, candidate, false, false, rules); err != nil {
			t.Fatalf("expected assign to pass, got %v", err)
		}
	})

	t.Run("both roles claimed at once", func(t *testing.T) {
		candidate := player.Player{ID: "p6", Position: player.PositionForward}
		err := CheckAssign(validSquad()[:3], candidate, true, true, rules)
		if !errors.Is(err, ErrDuplicateCaptaincy) {
			t.Fatalf("expected ErrDuplicateCaptaincy, got %v", err)
		}
	})
}

func TestHypothetical_TransfersCaptaincy(t *testing.T) {
	squad := validSquad()[:4]
	candidate := player.Player{ID: "p6", Position: player.PositionForward}

	c := Hypothetical(squad, candidate, true, false)
	if c.Captains != 1 || c.CaptainID != "p6" {
		t.Fatalf("expected candidate to become sole captain, got %+v", c)
	}
	if c.Size != 5 {
		t.Fatalf("expected hypothetical size 5, got %d", c.Size)
	}
}
