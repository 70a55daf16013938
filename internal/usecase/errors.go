package usecase

import "errors"

// Sentinel errors shared by every service. Handlers translate them to
// an error kind and HTTP status; services wrap them with fmt.Errorf so
// the detail survives while errors.Is still matches.
var (
	ErrInvalidInput          = errors.New("invalid request input")
	ErrNotFound              = errors.New("record not found")
	ErrUnauthorized          = errors.New("caller is not authorized")
	ErrConflict              = errors.New("lost a concurrent update, retry")
	ErrPreconditionFailed    = errors.New("required state is missing")
	ErrDependencyUnavailable = errors.New("upstream dependency unavailable")
)
