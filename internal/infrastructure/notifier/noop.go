package notifier

import (
	"context"
	"log/slog"

	"github.com/fivesquad/fivesquad/internal/domain/notification"
)

// NoopPublisher logs events instead of delivering them, for local runs
// without a webhook endpoint.
type NoopPublisher struct {
	logger *slog.Logger
}

func NewNoopPublisher(logger *slog.Logger) *NoopPublisher {
	if logger == nil {
		logger = slog.Default()
	}
	return &NoopPublisher{logger: logger}
}

func (p *NoopPublisher) Publish(ctx context.Context, event notification.Event) error {
	p.logger.DebugContext(ctx, "notification dropped (noop publisher)",
		"kind", string(event.Kind),
		"target_participant_id", event.TargetParticipantID,
	)
	return nil
}
