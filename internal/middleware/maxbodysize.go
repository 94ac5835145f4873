package middleware

import (
	"net/http"

	"github.com/goccy/go-json"

	"github.com/couplemap/couplemap/internal/api"
)

// NewMaxBodySizeHandler caps request bodies at limit bytes.
//
// A declared Content-Length over the limit is answered here with 413 and the
// API error envelope, so the handler never runs. Bodies of unknown length go
// through http.MaxBytesReader and the handler sees *http.MaxBytesError when
// it reads past the cap. limit <= 0 disables the check.
func NewMaxBodySizeHandler(limit int64) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		if limit <= 0 {
			return next
		}
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.ContentLength > limit {
				writeTooLarge(w)
				return
			}
			r.Body = http.MaxBytesReader(w, r.Body, limit)
			next.ServeHTTP(w, r)
		})
	}
}

func writeTooLarge(w http.ResponseWriter) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusRequestEntityTooLarge)
	_ = json.NewEncoder(w).Encode(api.ErrorResponse{Error: api.ErrorBody{
		Code:    api.CodeBadRequest,
		Message: "request body too large",
	}})
}
