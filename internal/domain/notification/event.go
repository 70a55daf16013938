package notification

import "context"

// Kind names an outbound event.
type Kind string

const (
	KindChipUsedOnYou   Kind = "chipUsedOnYou"
	KindPlayerAllocated Kind = "playerAllocated"
)

// Event is a fire-and-forget payload handed to the notification collaborator.
// Delivery success or failure is not observed by the core.
type Event struct {
	Kind                Kind
	TargetParticipantID string
	Message             string
	Metadata            map[string]string
}

// Publisher delivers events to the external notification service.
type Publisher interface {
	Publish(ctx context.Context, event Event) error
}
