package scoring

import "context"

// Repository describes scoring persistence needs from use cases.
type Repository interface {
	UpsertScore(ctx context.Context, score ParticipantGameweekScore) error
	ListScoresByGameweek(ctx context.Context, gameweek int) ([]ParticipantGameweekScore, error)
	ListScoresByParticipant(ctx context.Context, participantID string) ([]ParticipantGameweekScore, error)

	GetWindow(ctx context.Context) (Window, error)
	SaveWindow(ctx context.Context, w Window) error
}
