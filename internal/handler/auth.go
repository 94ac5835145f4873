package handler

import (
	"context"
	"net/http"

	"github.com/google/uuid"

	"github.com/couplemap/couplemap/internal/api"
)

type coupleIDKey struct{}

// requireCouple resolves the invite code header to a couple and stores the
// couple id in the request context. It fails closed with 401 on a missing,
// malformed or unknown code; the downstream handler never runs.
func (s *Server) requireCouple(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		coupleID, err := s.couples.Resolve(r.Context(), r.Header.Get(api.InviteCodeHeader))
		if err != nil {
			s.writeError(w, r, err)
			return
		}
		ctx := context.WithValue(r.Context(), coupleIDKey{}, coupleID)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// coupleID returns the couple resolved by requireCouple.
func coupleID(r *http.Request) uuid.UUID {
	id, _ := r.Context().Value(coupleIDKey{}).(uuid.UUID)
	return id
}
