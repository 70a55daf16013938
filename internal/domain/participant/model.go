package participant

import "fmt"

// Participant is a competition member. Profile attributes beyond the display
// name live with the identity service; only the reference is stored here.
type Participant struct {
	ID   string
	Name string
}

func (p Participant) Validate() error {
	if p.ID == "" {
		return fmt.Errorf("participant id is required")
	}
	if p.Name == "" {
		return fmt.Errorf("participant name is required")
	}

	return nil
}

// Principal is the authenticated caller as reported by the identity service.
type Principal struct {
	ParticipantID string
	Name          string
	IsPrivileged  bool
}
