package handler

import (
	"net/http"

	"github.com/couplemap/couplemap/internal/api"
)

// CreateCouple handles POST /api/couple/create.
// It mints a new couple and returns the invite code that acts as its credential.
func (s *Server) CreateCouple(w http.ResponseWriter, r *http.Request) {
	couple, err := s.couples.Create(r.Context())
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, api.CreateCoupleResponse{
		InviteCode: couple.InviteCode,
		CoupleID:   couple.ID,
	})
}

// JoinCouple handles POST /api/couple/join.
func (s *Server) JoinCouple(w http.ResponseWriter, r *http.Request) {
	var body api.JoinCoupleRequest
	if err := decodeJSON(r, &body); err != nil {
		s.writeError(w, r, err)
		return
	}
	if err := s.validate.Validate(body); err != nil {
		s.writeError(w, r, err)
		return
	}

	coupleID, err := s.couples.Join(r.Context(), body.InviteCode)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, api.JoinCoupleResponse{CoupleID: coupleID})
}

// RotateCode handles POST /api/couple/rotate.
// The caller's current code stops working as soon as the new one is returned.
func (s *Server) RotateCode(w http.ResponseWriter, r *http.Request) {
	code, err := s.couples.Rotate(r.Context(), coupleID(r))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.logger.InfoContext(r.Context(), "invite code rotated", "couple_id", coupleID(r))
	writeJSON(w, http.StatusOK, api.RotateCodeResponse{InviteCode: code})
}
