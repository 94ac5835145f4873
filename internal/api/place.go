package api

import (
	"time"

	"github.com/goccy/go-json"
	"github.com/google/uuid"
	"github.com/oapi-codegen/nullable"
	openapi_types "github.com/oapi-codegen/runtime/types"
)

// Place is the wire form of a place.
type Place struct {
	ID          uuid.UUID           `json:"id"`
	CoupleID    uuid.UUID           `json:"couple_id"`
	FolderID    *uuid.UUID          `json:"folder_id"`
	Title       string              `json:"title"`
	Memo        *string             `json:"memo"`
	Lat         float64             `json:"lat"`
	Lng         float64             `json:"lng"`
	VisitedAt   *openapi_types.Date `json:"visited_at"`
	Tags        []string            `json:"tags"`
	Source      *string             `json:"source"`
	SourceID    *string             `json:"source_id"`
	MarkerStyle string              `json:"marker_style"`
	CreatedAt   time.Time           `json:"created_at"`
}

// CreatePlaceRequest is the body of POST /api/places.
// Empty FolderID and VisitedAt mean none. CreatedAt defaults to now and
// MarkerStyle to circle. Non-string tags are dropped.
type CreatePlaceRequest struct {
	FolderID    *string    `json:"folder_id,omitempty"`
	Title       string     `json:"title" validate:"required,max=200"`
	Memo        *string    `json:"memo,omitempty" validate:"omitempty,max=2000"`
	Lat         *float64   `json:"lat" validate:"required"`
	Lng         *float64   `json:"lng" validate:"required"`
	VisitedAt   *string    `json:"visited_at,omitempty"`
	Tags        TagList    `json:"tags,omitempty"`
	Source      *string    `json:"source,omitempty" validate:"omitempty,max=50"`
	SourceID    *string    `json:"source_id,omitempty" validate:"omitempty,max=100"`
	MarkerStyle string     `json:"marker_style,omitempty" validate:"omitempty,oneof=circle pin heart star diamond square"`
	CreatedAt   *time.Time `json:"created_at,omitempty"`
}

// UpdatePlaceRequest is the body of PATCH /api/places/{id}.
//   - FolderID: absent leaves it unchanged; null or "" detaches the place.
//   - Title: absent, null or blank leaves it unchanged.
//   - Memo: absent leaves it unchanged; null clears it.
//   - VisitedAt: absent leaves it unchanged; null or "" clears it.
//   - Tags: absent leaves them unchanged; null or a non-array empties them,
//     non-string elements are dropped.
//   - MarkerStyle: absent or null leaves it unchanged.
type UpdatePlaceRequest struct {
	FolderID    nullable.Nullable[string]  `json:"folder_id,omitempty"`
	Title       *string                    `json:"title,omitempty" validate:"omitempty,max=200"`
	Memo        nullable.Nullable[string]  `json:"memo,omitempty"`
	VisitedAt   nullable.Nullable[string]  `json:"visited_at,omitempty"`
	Tags        nullable.Nullable[TagList] `json:"tags,omitempty"`
	MarkerStyle *string                    `json:"marker_style,omitempty"`
}

// MarshalJSON writes only the specified fields, with explicit nulls where a
// field is being cleared.
func (r UpdatePlaceRequest) MarshalJSON() ([]byte, error) {
	m := map[string]any{}
	putNullable(m, "folder_id", r.FolderID)
	if r.Title != nil {
		m["title"] = *r.Title
	}
	putNullable(m, "memo", r.Memo)
	putNullable(m, "visited_at", r.VisitedAt)
	putNullable(m, "tags", r.Tags)
	if r.MarkerStyle != nil {
		m["marker_style"] = *r.MarkerStyle
	}
	return json.Marshal(m)
}
