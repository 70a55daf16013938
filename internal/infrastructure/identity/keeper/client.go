package keeper

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"

	"github.com/fivesquad/fivesquad/internal/domain/participant"
	"github.com/fivesquad/fivesquad/internal/platform/resilience"
	"github.com/fivesquad/fivesquad/internal/usecase"
)

// Client verifies bearer tokens against the keeper identity service via
// introspection. The circuit breaker keeps a flapping keeper from stalling
// every request.
type Client struct {
	httpClient    *http.Client
	introspectURL string
	breaker       *resilience.CircuitBreaker
	logger        *slog.Logger
}

func NewClient(httpClient *http.Client, baseURL, introspectPath string, breakerCfg resilience.CircuitBreakerConfig, logger *slog.Logger) *Client {
	if logger == nil {
		logger = slog.Default()
	}
	if httpClient == nil {
		httpClient = &http.Client{}
	}

	var breaker *resilience.CircuitBreaker
	if cfg := breakerCfg.Normalize(); cfg.Enabled {
		breaker = resilience.NewCircuitBreaker(cfg.FailureThreshold, cfg.OpenTimeout)
	}

	return &Client{
		httpClient:    httpClient,
		introspectURL: buildURL(baseURL, introspectPath),
		breaker:       breaker,
		logger:        logger,
	}
}

func (c *Client) VerifyAccessToken(ctx context.Context, token string) (participant.Principal, error) {
	token = strings.TrimSpace(token)
	if token == "" {
		return participant.Principal{}, fmt.Errorf("%w: token is required", usecase.ErrUnauthorized)
	}

	if c.breaker != nil {
		if err := c.breaker.Allow(); err != nil {
			return participant.Principal{}, fmt.Errorf("%w: keeper circuit open", usecase.ErrDependencyUnavailable)
		}
	}

	principal, err := c.introspect(ctx, token)
	if c.breaker != nil {
		// auth rejections are not keeper failures
		if err != nil && !isAuthRejection(err) {
			c.breaker.RecordFailure()
		} else {
			c.breaker.RecordSuccess()
		}
	}

	return principal, err
}

func (c *Client) introspect(ctx context.Context, token string) (participant.Principal, error) {
	encoded, err := json.Marshal(introspectRequest{Token: token})
	if err != nil {
		return participant.Principal{}, fmt.Errorf("marshal introspect request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.introspectURL, bytes.NewReader(encoded))
	if err != nil {
		return participant.Principal{}, fmt.Errorf("create introspect request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return participant.Principal{}, fmt.Errorf("%w: request introspection to keeper: %s", usecase.ErrDependencyUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden {
		return participant.Principal{}, fmt.Errorf("%w: introspection denied", usecase.ErrUnauthorized)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return participant.Principal{}, fmt.Errorf("read introspect response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		c.logger.WarnContext(ctx, "keeper introspection non-200", "status_code", resp.StatusCode)
		return participant.Principal{}, fmt.Errorf("keeper introspection failed with status %d", resp.StatusCode)
	}

	var decoded introspectResponse
	if err := json.Unmarshal(body, &decoded); err != nil {
		return participant.Principal{}, fmt.Errorf("unmarshal introspect response: %w", err)
	}

	if !decoded.Active {
		return participant.Principal{}, fmt.Errorf("%w: inactive token", usecase.ErrUnauthorized)
	}
	if strings.TrimSpace(decoded.ParticipantID) == "" {
		return participant.Principal{}, fmt.Errorf("invalid introspect response: participant_id is empty")
	}

	return participant.Principal{
		ParticipantID: decoded.ParticipantID,
		Name:          decoded.Name,
		IsPrivileged:  decoded.Privileged,
	}, nil
}

func isAuthRejection(err error) bool {
	return errors.Is(err, usecase.ErrUnauthorized)
}

type introspectRequest struct {
	Token string `json:"token"`
}

type introspectResponse struct {
	Active        bool   `json:"active"`
	ParticipantID string `json:"participant_id"`
	Name          string `json:"name"`
	Privileged    bool   `json:"privileged"`
}

func buildURL(baseURL, path string) string {
	baseURL = strings.TrimSuffix(strings.TrimSpace(baseURL), "/")
	path = strings.TrimSpace(path)
	if path == "" {
		return baseURL
	}
	if strings.HasPrefix(path, "http://") || strings.HasPrefix(path, "https://") {
		return path
	}
	if !strings.HasPrefix(path, "/") {
		path = "/" + path
	}

	return baseURL + path
}
