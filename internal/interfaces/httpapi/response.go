package httpapi

import (
	"context"
	"errors"
	"net/http"

	sonic "github.com/bytedance/sonic"
	"github.com/fivesquad/fivesquad/internal/domain/roster"
	"github.com/fivesquad/fivesquad/internal/usecase"
)

// Error kinds exposed on the wire. Clients branch on the kind, not on the
// message text.
const (
	kindValidationError     = "ValidationError"
	kindNotFound            = "NotFound"
	kindUnauthorized        = "Unauthorized"
	kindConflict            = "Conflict"
	kindPreconditionFailed  = "PreconditionFailed"
	kindUpstreamUnavailable = "UpstreamUnavailable"
	kindInternal            = "Internal"
)

type responseEnvelope struct {
	OK        bool   `json:"ok"`
	Data      any    `json:"data,omitempty"`
	ErrorKind string `json:"errorKind,omitempty"`
	Message   string `json:"message,omitempty"`
}

type mappedError struct {
	HTTPStatus int
	Kind       string
}

func writeJSON(ctx context.Context, w http.ResponseWriter, status int, payload any) {
	ctx, span := startSpan(ctx, "httpapi.writeJSON")
	defer span.End()

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = sonic.ConfigDefault.NewEncoder(w).Encode(payload)
}

func writeSuccess(ctx context.Context, w http.ResponseWriter, status int, data any) {
	ctx, span := startSpan(ctx, "httpapi.writeSuccess")
	defer span.End()

	writeJSON(ctx, w, status, responseEnvelope{
		OK:   true,
		Data: data,
	})
}

func writeError(ctx context.Context, w http.ResponseWriter, err error) {
	ctx, span := startSpan(ctx, "httpapi.writeError")
	defer span.End()

	mapped := mapError(ctx, err)
	writeJSON(ctx, w, mapped.HTTPStatus, responseEnvelope{
		OK:        false,
		ErrorKind: mapped.Kind,
		Message:   err.Error(),
	})
}

func writeInternalError(ctx context.Context, w http.ResponseWriter) {
	ctx, span := startSpan(ctx, "httpapi.writeInternalError")
	defer span.End()

	writeJSON(ctx, w, http.StatusInternalServerError, responseEnvelope{
		OK:        false,
		ErrorKind: kindInternal,
		Message:   "internal server error",
	})
}

func mapError(ctx context.Context, err error) mappedError {
	ctx, span := startSpan(ctx, "httpapi.mapError")
	defer span.End()

	switch {
	case errors.Is(err, usecase.ErrInvalidInput):
		return mappedError{HTTPStatus: http.StatusBadRequest, Kind: kindValidationError}
	case errors.Is(err, usecase.ErrNotFound):
		return mappedError{HTTPStatus: http.StatusNotFound, Kind: kindNotFound}
	case errors.Is(err, usecase.ErrUnauthorized):
		return mappedError{HTTPStatus: http.StatusUnauthorized, Kind: kindUnauthorized}
	case errors.Is(err, usecase.ErrConflict):
		return mappedError{HTTPStatus: http.StatusConflict, Kind: kindConflict}
	case errors.Is(err, usecase.ErrPreconditionFailed):
		return mappedError{HTTPStatus: http.StatusPreconditionFailed, Kind: kindPreconditionFailed}
	case errors.Is(err, usecase.ErrDependencyUnavailable):
		return mappedError{HTTPStatus: http.StatusServiceUnavailable, Kind: kindUpstreamUnavailable}
	case errors.Is(err, roster.ErrInvalidSquadSize),
		errors.Is(err, roster.ErrBucketFull),
		errors.Is(err, roster.ErrBucketShort),
		errors.Is(err, roster.ErrCaptainCount),
		errors.Is(err, roster.ErrViceCaptainCount),
		errors.Is(err, roster.ErrCaptainIsVice),
		errors.Is(err, roster.ErrSquadFull),
		errors.Is(err, roster.ErrDuplicateCaptaincy):
		return mappedError{HTTPStatus: http.StatusBadRequest, Kind: kindValidationError}
	default:
		return mappedError{HTTPStatus: http.StatusInternalServerError, Kind: kindInternal}
	}
}
