package draft

import "time"

// Status is the draft state machine. Assignments are permitted while the
// draft is active; the move to complete is one-way.
type Status string

const (
	StatusActive   Status = "active"
	StatusComplete Status = "complete"
)

// Draft captures the competition's allocation phase.
type Draft struct {
	Status      Status
	CompletedAt *time.Time
}

func (d Draft) Active() bool {
	return d.Status != StatusComplete
}
