package performance

import "fmt"

// Performance is one player's raw stat bundle for one gameweek. Rows are
// immutable once recorded for a gameweek; the feed or the simulator supplies
// them and the core only reads.
type Performance struct {
	PlayerID    string
	Gameweek    int
	Points      int
	Goals       int
	Assists     int
	CleanSheets int
	YellowCards int
	RedCards    int
	Minutes     int
	Bonus       int
}

func (p Performance) Validate() error {
	if p.PlayerID == "" {
		return fmt.Errorf("performance player id is required")
	}
	if p.Gameweek <= 0 {
		return fmt.Errorf("performance gameweek must be greater than zero")
	}
	if p.Minutes < 0 || p.Minutes > 120 {
		return fmt.Errorf("performance minutes out of range: %d", p.Minutes)
	}

	return nil
}
