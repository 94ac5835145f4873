package client

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/couplemap/couplemap/internal/domain"
)

// ErrUnreachable means the request never got an HTTP response.
var ErrUnreachable = errors.New("server unreachable")

// ErrNoCredential means a scoped call was made before any invite code was
// stored. No request is sent.
var ErrNoCredential = fmt.Errorf("no invite code stored: %w", domain.ErrUnauthenticated)

// Error is a non-2xx response. It unwraps to the matching domain sentinel,
// so callers branch with errors.Is(err, domain.ErrConflict) and friends.
type Error struct {
	Status  int
	Code    string
	Message string
}

func (e *Error) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("HTTP %d", e.Status)
	}
	return fmt.Sprintf("HTTP %d: %s", e.Status, e.Message)
}

// Unwrap returns the domain error for the status, or nil for statuses
// outside the taxonomy.
func (e *Error) Unwrap() error {
	switch e.Status {
	case http.StatusBadRequest, http.StatusUnprocessableEntity, http.StatusRequestEntityTooLarge:
		return domain.ErrValidation
	case http.StatusUnauthorized, http.StatusForbidden:
		return domain.ErrUnauthenticated
	case http.StatusNotFound:
		return domain.ErrNotFound
	case http.StatusConflict:
		return domain.ErrConflict
	case http.StatusTooManyRequests:
		return domain.ErrRateLimited
	case http.StatusBadGateway, http.StatusServiceUnavailable, http.StatusGatewayTimeout:
		return domain.ErrUpstream
	}
	return nil
}

// UserMessage turns err into copy fit to show a person.
func UserMessage(err error) string {
	var apiErr *Error
	switch {
	case err == nil:
		return ""
	case errors.Is(err, domain.ErrRateLimited):
		return "Searching too fast. Try again in a second."
	case errors.Is(err, ErrUnreachable):
		return "Can't reach the server. Try again in a moment."
	case errors.Is(err, domain.ErrConflict):
		return "Looks like this place is already saved!"
	case errors.Is(err, domain.ErrUnauthenticated):
		return "Your invite code is no longer valid. Create or join a couple again."
	case errors.Is(err, domain.ErrNotFound):
		return "It's gone. Someone may have deleted it."
	case errors.Is(err, domain.ErrUpstream):
		return "Search is unavailable right now. Try again later."
	case errors.As(err, &apiErr) && apiErr.Message != "":
		return apiErr.Message
	default:
		return "Something went wrong."
	}
}
