package player

import "fmt"

// Position represents the football position categories used by squad rules.
type Position string

const (
	PositionGoalkeeper Position = "GK"
	PositionDefender   Position = "DEF"
	PositionMidfielder Position = "MID"
	PositionForward    Position = "FWD"
)

var AllPositions = map[Position]struct{}{
	PositionGoalkeeper: {},
	PositionDefender:   {},
	PositionMidfielder: {},
	PositionForward:    {},
}

// Bucket groups positions for composition caps: goalkeepers and defenders
// count as defensive, midfielders and forwards as attacking.
type Bucket string

const (
	BucketDefensive Bucket = "defensive"
	BucketAttacking Bucket = "attacking"
)

func (p Position) Bucket() Bucket {
	switch p {
	case PositionGoalkeeper, PositionDefender:
		return BucketDefensive
	default:
		return BucketAttacking
	}
}

// Player is a pool athlete. OwnerID is empty while the player is unassigned;
// the captaincy flags are meaningful only when owned.
type Player struct {
	ID             string
	Name           string
	Position       Position
	SeasonPoints   int
	BaselinePoints int
	OwnerID        string
	IsCaptain      bool
	IsViceCaptain  bool
}

func (p Player) Owned() bool {
	return p.OwnerID != ""
}

// CompetitionPoints is the player's contribution unit for the leaderboard:
// season total minus the competition-start baseline, floored at zero.
func (p Player) CompetitionPoints() int {
	points := p.SeasonPoints - p.BaselinePoints
	if points < 0 {
		return 0
	}
	return points
}

func (p Player) Validate() error {
	if p.ID == "" {
		return fmt.Errorf("player id is required")
	}
	if p.Name == "" {
		return fmt.Errorf("player name is required")
	}
	if _, ok := AllPositions[p.Position]; !ok {
		return fmt.Errorf("invalid player position: %s", p.Position)
	}
	if p.SeasonPoints < 0 {
		return fmt.Errorf("player season points cannot be negative")
	}
	if !p.Owned() && (p.IsCaptain || p.IsViceCaptain) {
		return fmt.Errorf("unowned player cannot hold a captaincy flag")
	}
	if p.IsCaptain && p.IsViceCaptain {
		return fmt.Errorf("player cannot be captain and vice-captain at once")
	}

	return nil
}
