package handler

import (
	"net/http"

	"github.com/couplemap/couplemap/internal/api"
)

// ListTags handles GET /api/tags?q=&limit=.
// It suggests tags already used on the couple's places, most used first.
func (s *Server) ListTags(w http.ResponseWriter, r *http.Request) {
	counts, err := s.tags.Suggestions(r.Context(), coupleID(r), queryString(r, "q"), queryInt(r, "limit"))
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	out := make([]api.TagSuggestion, len(counts))
	for i, c := range counts {
		out[i] = api.TagSuggestion{Tag: c.Tag, Count: c.Count}
	}
	writeJSON(w, http.StatusOK, out)
}
