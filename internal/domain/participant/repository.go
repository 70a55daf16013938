package participant

import "context"

// Repository describes participant persistence needs from use cases.
type Repository interface {
	List(ctx context.Context) ([]Participant, error)
	GetByID(ctx context.Context, participantID string) (Participant, bool, error)
}
