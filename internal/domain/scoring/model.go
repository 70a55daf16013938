package scoring

import "time"

// Multipliers applied to owned players' contributions. The same rule is used
// for weekly totals and for the competition-points leaderboard.
const (
	CaptainMultiplier     = 2.0
	ViceCaptainMultiplier = 1.5
)

// ParticipantGameweekScore is one participant's scored gameweek. Rows are
// upserted keyed by (participant, gameweek); recomputing a gameweek
// overwrites, never accumulates.
type ParticipantGameweekScore struct {
	ParticipantID     string
	Gameweek          int
	TotalPoints       float64
	StartingPoints    int
	CaptainPoints     int
	ViceCaptainPoints float64
	ChipPoints        float64
	CalculatedAt      time.Time
}

// LeaderboardEntry is a read-time projection over current player state. It is
// never persisted as a source of truth.
type LeaderboardEntry struct {
	ParticipantID     string
	Name              string
	Rank              int
	CompetitionPoints float64
}

// Window records the competition scoring window. ScoredFrom is set when the
// baseline snapshot is taken; competition points are not computable before
// that.
type Window struct {
	ScoredFrom time.Time
}

func (w Window) Open() bool {
	return !w.ScoredFrom.IsZero()
}
