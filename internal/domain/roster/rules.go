package roster

import (
	"errors"
	"fmt"

	"github.com/fivesquad/fivesquad/internal/domain/player"
)

var (
	ErrInvalidSquadSize   = errors.New("invalid squad size")
	ErrBucketFull         = errors.New("position bucket cap exceeded")
	ErrBucketShort        = errors.New("position bucket requirement not met")
	ErrCaptainCount       = errors.New("squad must have exactly one captain")
	ErrViceCaptainCount   = errors.New("squad must have exactly one vice-captain")
	ErrCaptainIsVice      = errors.New("captain and vice-captain must differ")
	ErrSquadFull          = errors.New("squad already holds the maximum number of players")
	ErrDuplicateCaptaincy = errors.New("captaincy role already held")
)

// Rules stores squad-shape validation parameters.
type Rules struct {
	SquadSize    int
	DefensiveCap int
	AttackingCap int
}

func DefaultRules() Rules {
	return Rules{
		SquadSize:    5,
		DefensiveCap: 2,
		AttackingCap: 3,
	}
}

func (r Rules) BucketCap(b player.Bucket) int {
	if b == player.BucketDefensive {
		return r.DefensiveCap
	}
	return r.AttackingCap
}

// Composition is the derived shape of a squad. It is computed on read and
// never persisted.
type Composition struct {
	Size         int
	Defensive    int
	Attacking    int
	Captains     int
	ViceCaptains int
	CaptainID    string
	ViceID       string
}

func Compose(squad []player.Player) Composition {
	var c Composition
	for _, p := range squad {
		c.Size++
		if p.Position.Bucket() == player.BucketDefensive {
			c.Defensive++
		} else {
			c.Attacking++
		}
		if p.IsCaptain {
			c.Captains++
			c.CaptainID = p.ID
		}
		if p.IsViceCaptain {
			c.ViceCaptains++
			c.ViceID = p.ID
		}
	}
	return c
}

// Violation reports one failed composition rule with the observed and the
// required count, so clients can present an actionable message.
type Violation struct {
	Rule     error
	Current  int
	Required int
}

func (v Violation) Error() string {
	return fmt.Sprintf("%v: required=%d current=%d", v.Rule, v.Required, v.Current)
}

func (v Violation) Unwrap() error {
	return v.Rule
}

// Result carries the outcome of a full composition check. First returns the
// first violation in rule order for user-facing messages; Violations holds
// every failed rule for audit use.
type Result struct {
	Valid      bool
	Violations []Violation
}

func (r Result) First() *Violation {
	if len(r.Violations) == 0 {
		return nil
	}
	return &r.Violations[0]
}

// Validate checks the squad-shape invariants in fixed order: size, defensive
// bucket, attacking bucket, captain count, vice-captain count, captain and
// vice-captain distinct. Pure, no side effects.
func Validate(squad []player.Player, rules Rules) Result {
	c := Compose(squad)
	violations := make([]Violation, 0, 6)

	if c.Size != rules.SquadSize {
		violations = append(violations, Violation{Rule: ErrInvalidSquadSize, Current: c.Size, Required: rules.SquadSize})
	}
	if c.Defensive != rules.DefensiveCap {
		violations = append(violations, Violation{Rule: ErrBucketShort, Current: c.Defensive, Required: rules.DefensiveCap})
	}
	if c.Attacking != rules.AttackingCap {
		violations = append(violations, Violation{Rule: ErrBucketShort, Current: c.Attacking, Required: rules.AttackingCap})
	}
	if c.Captains != 1 {
		violations = append(violations, Violation{Rule: ErrCaptainCount, Current: c.Captains, Required: 1})
	}
	if c.ViceCaptains != 1 {
		violations = append(violations, Violation{Rule: ErrViceCaptainCount, Current: c.ViceCaptains, Required: 1})
	}
	if c.Captains == 1 && c.ViceCaptains == 1 && c.CaptainID == c.ViceID {
		violations = append(violations, Violation{Rule: ErrCaptainIsVice, Current: 1, Required: 0})
	}

	return Result{Valid: len(violations) == 0, Violations: violations}
}

// CheckAssign validates adding candidate to squad with the requested
// captaincy flags, before any write happens. It rejects a full squad, a full
// position bucket, and a duplicate captaincy claim; an existing holder of a
// claimed role does not count as a duplicate because assignment transfers the
// role with clear-then-set semantics.
func CheckAssign(squad []player.Player, candidate player.Player, asCaptain, asViceCaptain bool, rules Rules) error {
	if asCaptain && asViceCaptain {
		return fmt.Errorf("%w: player cannot claim both roles", ErrDuplicateCaptaincy)
	}

	c := Compose(squad)
	if c.Size >= rules.SquadSize {
		return Violation{Rule: ErrSquadFull, Current: c.Size, Required: rules.SquadSize}
	}

	bucket := candidate.Position.Bucket()
	bucketCap := rules.BucketCap(bucket)
	inBucket := c.Attacking
	if bucket == player.BucketDefensive {
		inBucket = c.Defensive
	}
	if inBucket >= bucketCap {
		return Violation{Rule: ErrBucketFull, Current: inBucket, Required: bucketCap}
	}

	return nil
}

// Hypothetical returns the composition the squad would have after the
// candidate joins with the requested flags, for caller confirmation.
func Hypothetical(squad []player.Player, candidate player.Player, asCaptain, asViceCaptain bool) Composition {
	next := make([]player.Player, 0, len(squad)+1)
	for _, p := range squad {
		if asCaptain {
			p.IsCaptain = false
		}
		if asViceCaptain {
			p.IsViceCaptain = false
		}
		next = append(next, p)
	}
	candidate.IsCaptain = asCaptain
	candidate.IsViceCaptain = asViceCaptain
	next = append(next, candidate)

	return Compose(next)
}
