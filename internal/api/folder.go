package api

import (
	"time"

	"github.com/goccy/go-json"
	"github.com/google/uuid"
	"github.com/oapi-codegen/nullable"
)

// Folder is the wire form of a folder.
type Folder struct {
	ID        uuid.UUID `json:"id"`
	CoupleID  uuid.UUID `json:"couple_id"`
	Name      string    `json:"name"`
	Color     string    `json:"color"`
	Icon      *string   `json:"icon"`
	Sort      float64   `json:"sort"`
	CreatedAt time.Time `json:"created_at"`
}

// CreateFolderRequest is the body of POST /api/folders.
// An empty Icon means no icon. Sort defaults to 0.
type CreateFolderRequest struct {
	Name  string      `json:"name" validate:"required,max=100"`
	Color string      `json:"color" validate:"required,max=64"`
	Icon  *string     `json:"icon,omitempty" validate:"omitempty,oneof=heart coffee camp sparkle food sea walk gift"`
	Sort  *LooseFloat `json:"sort,omitempty"`
}

// UpdateFolderRequest is the body of PATCH /api/folders/{id}.
//   - Name, Color: absent or null leaves the value unchanged.
//   - Icon: absent leaves it unchanged; null or "" clears it.
//   - Sort: absent, null or not a number leaves it unchanged.
type UpdateFolderRequest struct {
	Name  *string                   `json:"name,omitempty" validate:"omitempty,max=100"`
	Color *string                   `json:"color,omitempty" validate:"omitempty,max=64"`
	Icon  nullable.Nullable[string] `json:"icon,omitempty"`
	Sort  *LooseFloat               `json:"sort,omitempty"`
}

// MarshalJSON writes only the specified fields, and an explicit null for a
// cleared icon.
func (r UpdateFolderRequest) MarshalJSON() ([]byte, error) {
	m := map[string]any{}
	if r.Name != nil {
		m["name"] = *r.Name
	}
	if r.Color != nil {
		m["color"] = *r.Color
	}
	putNullable(m, "icon", r.Icon)
	if r.Sort != nil {
		m["sort"] = *r.Sort
	}
	return json.Marshal(m)
}

// putNullable copies a specified nullable field into m, as nil when null.
func putNullable[T any](m map[string]any, key string, v nullable.Nullable[T]) {
	if !v.IsSpecified() {
		return
	}
	if v.IsNull() {
		m[key] = nil
		return
	}
	m[key] = v.MustGet()
}
