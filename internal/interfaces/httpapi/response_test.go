package httpapi

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	sonic "github.com/bytedance/sonic"
	"github.com/fivesquad/fivesquad/internal/domain/roster"
	"github.com/fivesquad/fivesquad/internal/usecase"
)

func TestWriteSuccess_Envelope(t *testing.T) {
	rec := httptest.NewRecorder()
	writeSuccess(context.Background(), rec, http.StatusOK, map[string]string{"status": "ok"})

	if rec.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", rec.Code)
	}

	var body map[string]any
	if err := sonic.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("unmarshal response body: %v", err)
	}

	if got, _ := body["ok"].(bool); !got {
		t.Fatalf("expected ok=true, got %v", body["ok"])
	}
	if _, ok := body["data"]; !ok {
		t.Fatalf("expected data key in success response")
	}
	if _, ok := body["errorKind"]; ok {
		t.Fatalf("did not expect errorKind in success response")
	}
}

func TestWriteError_Envelope(t *testing.T) {
	rec := httptest.NewRecorder()
	writeError(context.Background(), rec, fmt.Errorf("%w: bad payload", usecase.ErrInvalidInput))

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected status 400, got %d", rec.Code)
	}

	var body map[string]any
	if err := sonic.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("unmarshal response body: %v", err)
	}

	if got, _ := body["ok"].(bool); got {
		t.Fatalf("expected ok=false, got %v", body["ok"])
	}
	if got, _ := body["errorKind"].(string); got != "ValidationError" {
		t.Fatalf("expected errorKind=ValidationError, got %v", body["errorKind"])
	}
	if got, _ := body["message"].(string); got == "" {
		t.Fatalf("expected non-empty message")
	}
	if _, ok := body["data"]; ok {
		t.Fatalf("did not expect data key in error response")
	}
}

func TestMapError_Kinds(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantStatus int
		wantKind   string
	}{
		{"invalid input", usecase.ErrInvalidInput, http.StatusBadRequest, "ValidationError"},
		{"squad shape violation", roster.ErrBucketFull, http.StatusBadRequest, "ValidationError"},
		{"not found", usecase.ErrNotFound, http.StatusNotFound, "NotFound"},
		{"unauthorized", usecase.ErrUnauthorized, http.StatusUnauthorized, "Unauthorized"},
		{"conflict", usecase.ErrConflict, http.StatusConflict, "Conflict"},
		{"precondition failed", usecase.ErrPreconditionFailed, http.StatusPreconditionFailed, "PreconditionFailed"},
		{"dependency unavailable", usecase.ErrDependencyUnavailable, http.StatusServiceUnavailable, "UpstreamUnavailable"},
		{"unknown", errors.New("boom"), http.StatusInternalServerError, "Internal"},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			mapped := mapError(context.Background(), fmt.Errorf("wrapped: %w", tc.err))
			if mapped.HTTPStatus != tc.wantStatus {
				t.Fatalf("expected status %d, got %d", tc.wantStatus, mapped.HTTPStatus)
			}
			if mapped.Kind != tc.wantKind {
				t.Fatalf("expected kind %s, got %s", tc.wantKind, mapped.Kind)
			}
		})
	}
}
