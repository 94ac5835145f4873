package handler

import (
	"net/http"
)

// Geocode handles GET /api/geocode?q=&limit=.
// It needs no credential. Short queries return an empty list; searches closer
// together than the process-wide interval get 429.
func (s *Server) Geocode(w http.ResponseWriter, r *http.Request) {
	candidates, err := s.geocoder.Search(r.Context(), queryString(r, "q"), queryInt(r, "limit"))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, candidates)
}
