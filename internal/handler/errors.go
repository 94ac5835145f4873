package handler

import (
	"errors"
	"net/http"
	"strings"

	"github.com/couplemap/couplemap/internal/api"
	"github.com/couplemap/couplemap/internal/domain"
)

// errBadRequest marks a request rejected before it reached the service layer
// (missing or malformed body). It maps to 400, unlike domain validation
// failures which map to 422.
var errBadRequest = errors.New("bad request")

// errTooLarge marks a body that exceeded the configured size limit.
var errTooLarge = errors.New("request body too large")

// writeError maps err onto a status code and the standard error body.
// Unexpected errors are logged and reported without internal detail.
func (s *Server) writeError(w http.ResponseWriter, r *http.Request, err error) {
	status, code, msg := classify(err)
	if status == http.StatusInternalServerError {
		s.logger.ErrorContext(r.Context(), "request failed",
			"method", r.Method, "path", r.URL.Path, "error", err)
	}
	writeJSON(w, status, api.ErrorResponse{Error: api.ErrorBody{Code: code, Message: msg}})
}

// classify picks status, code and message for err.
func classify(err error) (int, string, string) {
	switch {
	case errors.Is(err, errTooLarge):
		return http.StatusRequestEntityTooLarge, api.CodeBadRequest, "request body too large"
	case errors.Is(err, errBadRequest):
		return http.StatusBadRequest, api.CodeBadRequest, unwrapMessage(err, errBadRequest)
	case errors.Is(err, domain.ErrValidation):
		return http.StatusUnprocessableEntity, api.CodeValidation, unwrapMessage(err, domain.ErrValidation)
	case errors.Is(err, domain.ErrUnauthenticated):
		return http.StatusUnauthorized, api.CodeUnauthorized, "missing or invalid invite code"
	case errors.Is(err, domain.ErrNotFound):
		return http.StatusNotFound, api.CodeNotFound, "not found"
	case errors.Is(err, domain.ErrConflict):
		return http.StatusConflict, api.CodeConflict, "already exists"
	case errors.Is(err, domain.ErrRateLimited):
		return http.StatusTooManyRequests, api.CodeRateLimited, "rate limited: try again in a second"
	case errors.Is(err, domain.ErrUpstream):
		return http.StatusBadGateway, api.CodeUpstream, unwrapMessage(err, domain.ErrUpstream)
	default:
		return http.StatusInternalServerError, api.CodeInternalError, "internal server error"
	}
}

// unwrapMessage extracts the human-readable part that follows the sentinel's
// text in a wrapped error.
// e.g. "service.FolderService.Create: validation error: name is required" → "name is required"
func unwrapMessage(err, sentinel error) string {
	msg := err.Error()
	marker := sentinel.Error() + ": "
	if i := strings.Index(msg, marker); i >= 0 {
		return msg[i+len(marker):]
	}
	return sentinel.Error()
}
