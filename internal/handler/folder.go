package handler

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/google/uuid"
	"github.com/oapi-codegen/nullable"

	"github.com/couplemap/couplemap/internal/api"
	"github.com/couplemap/couplemap/internal/domain"
)

// ListFolders handles GET /api/folders.
func (s *Server) ListFolders(w http.ResponseWriter, r *http.Request) {
	folders, err := s.folders.List(r.Context(), coupleID(r))
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	out := make([]api.Folder, len(folders))
	for i, f := range folders {
		out[i] = folderToResponse(f)
	}
	writeJSON(w, http.StatusOK, out)
}

// CreateFolder handles POST /api/folders.
func (s *Server) CreateFolder(w http.ResponseWriter, r *http.Request) {
	var body api.CreateFolderRequest
	if err := decodeJSON(r, &body); err != nil {
		s.writeError(w, r, err)
		return
	}
	if body.Icon != nil && *body.Icon == "" {
		body.Icon = nil
	}
	if err := s.validate.Validate(body); err != nil {
		s.writeError(w, r, err)
		return
	}

	created, err := s.folders.Create(r.Context(), requestToFolder(coupleID(r), body))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, folderToResponse(created))
}

// UpdateFolder handles PATCH /api/folders/{id}.
func (s *Server) UpdateFolder(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	var body api.UpdateFolderRequest
	if err := decodeJSON(r, &body); err != nil {
		s.writeError(w, r, err)
		return
	}
	if err := s.validate.Validate(body); err != nil {
		s.writeError(w, r, err)
		return
	}
	patch, err := requestToFolderPatch(body)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	if err := s.folders.Update(r.Context(), coupleID(r), id, patch); err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, api.UpdatedResponse{ID: id.String()})
}

// DeleteFolder handles DELETE /api/folders/{id}.
// Places in the folder are kept and become unassigned.
func (s *Server) DeleteFolder(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	if err := s.folders.Delete(r.Context(), coupleID(r), id); err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, api.DeletedResponse{Success: true})
}

// --- mapping helpers --------------------------------------------------------

func requestToFolder(couple uuid.UUID, body api.CreateFolderRequest) domain.Folder {
	f := domain.Folder{
		CoupleID: couple,
		Name:     body.Name,
		Color:    body.Color,
	}
	if body.Icon != nil {
		icon := domain.FolderIcon(*body.Icon)
		f.Icon = &icon
	}
	if body.Sort != nil && body.Sort.Valid {
		f.Sort = body.Sort.Value
	}
	return f
}

// requestToFolderPatch converts the wire patch into a domain.FolderPatch.
// A null name or color is treated as absent; a null or empty icon clears it.
func requestToFolderPatch(body api.UpdateFolderRequest) (domain.FolderPatch, error) {
	patch := domain.FolderPatch{
		Name:  body.Name,
		Color: body.Color,
	}
	if body.Icon.IsSpecified() {
		if body.Icon.IsNull() || strings.TrimSpace(body.Icon.MustGet()) == "" {
			patch.Icon = nullable.NewNullNullable[domain.FolderIcon]()
		} else {
			icon := domain.FolderIcon(strings.TrimSpace(body.Icon.MustGet()))
			if !icon.Valid() {
				return domain.FolderPatch{}, fmt.Errorf("%w: unknown icon %q", domain.ErrValidation, icon)
			}
			patch.Icon = nullable.NewNullableWithValue(icon)
		}
	}
	if body.Sort != nil && body.Sort.Valid {
		v := body.Sort.Value
		patch.Sort = &v
	}
	return patch, nil
}

func folderToResponse(f domain.Folder) api.Folder {
	resp := api.Folder{
		ID:        f.ID,
		CoupleID:  f.CoupleID,
		Name:      f.Name,
		Color:     f.Color,
		Sort:      f.Sort,
		CreatedAt: f.CreatedAt,
	}
	if f.Icon != nil {
		icon := string(*f.Icon)
		resp.Icon = &icon
	}
	return resp
}
