package handler

import (
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/oapi-codegen/nullable"

	"github.com/couplemap/couplemap/internal/api"
	"github.com/couplemap/couplemap/internal/domain"
)

// ListPlaces handles GET /api/places.
func (s *Server) ListPlaces(w http.ResponseWriter, r *http.Request) {
	places, err := s.places.List(r.Context(), coupleID(r))
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	out := make([]api.Place, len(places))
	for i, p := range places {
		out[i] = placeToResponse(p)
	}
	writeJSON(w, http.StatusOK, out)
}

// CreatePlace handles POST /api/places.
func (s *Server) CreatePlace(w http.ResponseWriter, r *http.Request) {
	var body api.CreatePlaceRequest
	if err := decodeJSON(r, &body); err != nil {
		s.writeError(w, r, err)
		return
	}
	if err := s.validate.Validate(body); err != nil {
		s.writeError(w, r, err)
		return
	}
	place, err := requestToPlace(coupleID(r), body)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	created, err := s.places.Create(r.Context(), place)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, placeToResponse(created))
}

// UpdatePlace handles PATCH /api/places/{id}.
func (s *Server) UpdatePlace(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	var body api.UpdatePlaceRequest
	if err := decodeJSON(r, &body); err != nil {
		s.writeError(w, r, err)
		return
	}
	if err := s.validate.Validate(body); err != nil {
		s.writeError(w, r, err)
		return
	}
	patch, err := requestToPlacePatch(body)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	if err := s.places.Update(r.Context(), coupleID(r), id, patch); err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, api.UpdatedResponse{ID: id.String()})
}

// DeletePlace handles DELETE /api/places/{id}.
func (s *Server) DeletePlace(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	if err := s.places.Delete(r.Context(), coupleID(r), id); err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, api.DeletedResponse{Success: true})
}

// --- mapping helpers --------------------------------------------------------

// requestToPlace converts a CreatePlaceRequest into a domain.Place.
// An empty folder_id or visited_at means none.
func requestToPlace(couple uuid.UUID, body api.CreatePlaceRequest) (domain.Place, error) {
	p := domain.Place{
		CoupleID:    couple,
		Title:       body.Title,
		Memo:        body.Memo,
		Tags:        body.Tags,
		Source:      body.Source,
		SourceID:    body.SourceID,
		MarkerStyle: domain.MarkerStyle(body.MarkerStyle),
	}
	if body.Lat != nil {
		p.Lat = *body.Lat
	}
	if body.Lng != nil {
		p.Lng = *body.Lng
	}
	if body.FolderID != nil && strings.TrimSpace(*body.FolderID) != "" {
		id, err := parseFolderID(*body.FolderID)
		if err != nil {
			return domain.Place{}, err
		}
		p.FolderID = &id
	}
	if body.VisitedAt != nil && strings.TrimSpace(*body.VisitedAt) != "" {
		d, err := parseVisitedAt(*body.VisitedAt)
		if err != nil {
			return domain.Place{}, err
		}
		p.VisitedAt = &d
	}
	if body.CreatedAt != nil {
		p.CreatedAt = *body.CreatedAt
	}
	return p, nil
}

// requestToPlacePatch converts the wire patch into a domain.PlacePatch.
func requestToPlacePatch(body api.UpdatePlaceRequest) (domain.PlacePatch, error) {
	patch := domain.PlacePatch{
		Title: body.Title,
		Memo:  body.Memo,
	}

	if body.FolderID.IsSpecified() {
		if body.FolderID.IsNull() || strings.TrimSpace(body.FolderID.MustGet()) == "" {
			patch.FolderID = nullable.NewNullNullable[uuid.UUID]()
		} else {
			id, err := parseFolderID(body.FolderID.MustGet())
			if err != nil {
				return domain.PlacePatch{}, err
			}
			patch.FolderID = nullable.NewNullableWithValue(id)
		}
	}

	if body.VisitedAt.IsSpecified() {
		if body.VisitedAt.IsNull() || strings.TrimSpace(body.VisitedAt.MustGet()) == "" {
			patch.VisitedAt = nullable.NewNullNullable[time.Time]()
		} else {
			d, err := parseVisitedAt(body.VisitedAt.MustGet())
			if err != nil {
				return domain.PlacePatch{}, err
			}
			patch.VisitedAt = nullable.NewNullableWithValue(d)
		}
	}

	if body.Tags.IsSpecified() {
		tags := []string{}
		if !body.Tags.IsNull() {
			tags = body.Tags.MustGet()
		}
		patch.Tags = &tags
	}

	if body.MarkerStyle != nil {
		style := domain.MarkerStyle(strings.TrimSpace(*body.MarkerStyle))
		patch.MarkerStyle = &style
	}
	return patch, nil
}

// parseFolderID parses a folder reference. A malformed id cannot name one of
// the caller's folders, so it is reported as not found.
func parseFolderID(raw string) (uuid.UUID, error) {
	id, err := uuid.Parse(strings.TrimSpace(raw))
	if err != nil {
		return uuid.Nil, fmt.Errorf("folder %q: %w", raw, domain.ErrNotFound)
	}
	return id, nil
}

func parseVisitedAt(raw string) (time.Time, error) {
	d, err := api.ParseDate(raw)
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: visited_at must be a YYYY-MM-DD date", domain.ErrValidation)
	}
	return d, nil
}

// placeToResponse converts a domain.Place into its wire form.
func placeToResponse(p domain.Place) api.Place {
	tags := p.Tags
	if tags == nil {
		tags = []string{}
	}
	return api.Place{
		ID:          p.ID,
		CoupleID:    p.CoupleID,
		FolderID:    p.FolderID,
		Title:       p.Title,
		Memo:        p.Memo,
		Lat:         p.Lat,
		Lng:         p.Lng,
		VisitedAt:   api.Date(p.VisitedAt),
		Tags:        tags,
		Source:      p.Source,
		SourceID:    p.SourceID,
		MarkerStyle: string(p.MarkerStyle.OrDefault()),
		CreatedAt:   p.CreatedAt,
	}
}
