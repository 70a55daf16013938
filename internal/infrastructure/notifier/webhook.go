package notifier

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	sonic "github.com/bytedance/sonic"
	crerr "github.com/cockroachdb/errors"
	"github.com/valyala/bytebufferpool"

	"github.com/fivesquad/fivesquad/internal/domain/notification"
	"github.com/fivesquad/fivesquad/internal/platform/resilience"
)

var errWebhookTransient = crerr.New("webhook transient failure")

type WebhookConfig struct {
	URL            string
	Token          string
	Timeout        time.Duration
	CircuitBreaker resilience.CircuitBreakerConfig
}

// WebhookPublisher delivers notification events to an external webhook.
// Delivery is fire-and-forget from the caller's perspective; failures are
// reported but carry no domain consequence.
type WebhookPublisher struct {
	client  *http.Client
	url     string
	token   string
	logger  *slog.Logger
	breaker *resilience.CircuitBreaker
}

func NewWebhookPublisher(cfg WebhookConfig, logger *slog.Logger) *WebhookPublisher {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	if logger == nil {
		logger = slog.Default()
	}

	var breaker *resilience.CircuitBreaker
	if breakerCfg := cfg.CircuitBreaker.Normalize(); breakerCfg.Enabled {
		breaker = resilience.NewCircuitBreaker(breakerCfg.FailureThreshold, breakerCfg.OpenTimeout)
	}

	return &WebhookPublisher{
		client:  &http.Client{Timeout: timeout},
		url:     strings.TrimSpace(cfg.URL),
		token:   strings.TrimSpace(cfg.Token),
		logger:  logger,
		breaker: breaker,
	}
}

type webhookPayload struct {
	Kind                string            `json:"kind"`
	TargetParticipantID string            `json:"target_participant_id"`
	Message             string            `json:"message"`
	Metadata            map[string]string `json:"metadata,omitempty"`
	SentAt              time.Time         `json:"sent_at"`
}

func (p *WebhookPublisher) Publish(ctx context.Context, event notification.Event) error {
	if p.url == "" {
		return crerr.New("webhook url is not configured")
	}
	if p.breaker != nil {
		if err := p.breaker.Allow(); err != nil {
			p.logger.WarnContext(ctx, "webhook circuit breaker rejected event", "state", p.breaker.State())
			return fmt.Errorf("webhook is temporarily unavailable: %w", err)
		}
	}

	err := p.deliver(ctx, event)
	if p.breaker != nil {
		if err != nil && crerr.Is(err, errWebhookTransient) {
			p.breaker.RecordFailure()
		} else if err == nil {
			p.breaker.RecordSuccess()
		}
	}

	return err
}

func (p *WebhookPublisher) deliver(ctx context.Context, event notification.Event) error {
	body, err := sonic.Marshal(webhookPayload{
		Kind:                string(event.Kind),
		TargetParticipantID: event.TargetParticipantID,
		Message:             event.Message,
		Metadata:            event.Metadata,
		SentAt:              time.Now().UTC(),
	})
	if err != nil {
		return crerr.Wrap(err, "marshal webhook payload")
	}

	buf := bytebufferpool.Get()
	defer bytebufferpool.Put(buf)
	if _, err := buf.Write(body); err != nil {
		return crerr.Wrap(err, "buffer webhook payload")
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, p.url, strings.NewReader(buf.String()))
	if err != nil {
		return crerr.Wrap(err, "create webhook request")
	}
	req.Header.Set("Content-Type", "application/json")
	if p.token != "" {
		req.Header.Set("Authorization", "Bearer "+p.token)
	}

	resp, err := p.client.Do(req)
	if err != nil {
		return crerr.Mark(crerr.Wrap(err, "post webhook"), errWebhookTransient)
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 4096))

	if resp.StatusCode >= http.StatusInternalServerError {
		return crerr.Mark(crerr.Newf("webhook responded with status %d", resp.StatusCode), errWebhookTransient)
	}
	if resp.StatusCode >= http.StatusBadRequest {
		return crerr.Newf("webhook rejected event with status %d", resp.StatusCode)
	}

	return nil
}
