package domain

import (
	"time"

	"github.com/google/uuid"
	"github.com/oapi-codegen/nullable"
)

// MarkerStyle is the glyph used for a place's map marker.
type MarkerStyle string

const (
	MarkerCircle  MarkerStyle = "circle"
	MarkerPin     MarkerStyle = "pin"
	MarkerHeart   MarkerStyle = "heart"
	MarkerStar    MarkerStyle = "star"
	MarkerDiamond MarkerStyle = "diamond"
	MarkerSquare  MarkerStyle = "square"
)

// DefaultMarkerStyle is used when a place is saved without a style.
const DefaultMarkerStyle = MarkerCircle

// MarkerStyles lists every accepted marker style.
var MarkerStyles = []MarkerStyle{
	MarkerCircle, MarkerPin, MarkerHeart, MarkerStar, MarkerDiamond, MarkerSquare,
}

// Valid reports whether s is one of MarkerStyles.
func (s MarkerStyle) Valid() bool {
	for _, known := range MarkerStyles {
		if s == known {
			return true
		}
	}
	return false
}

// OrDefault returns s when it is valid and DefaultMarkerStyle otherwise.
func (s MarkerStyle) OrDefault() MarkerStyle {
	if s.Valid() {
		return s
	}
	return DefaultMarkerStyle
}

// Place is a saved location.
// FolderID, when set, always references a Folder owned by the same CoupleID.
// Source and SourceID record which geocoder result the place came from.
type Place struct {
	ID          uuid.UUID
	CoupleID    uuid.UUID
	FolderID    *uuid.UUID
	Title       string
	Memo        *string
	Lat         float64
	Lng         float64
	VisitedAt   *time.Time // date only; time of day is always midnight UTC
	Tags        []string
	Source      *string
	SourceID    *string
	MarkerStyle MarkerStyle
	CreatedAt   time.Time
}

// PlacePatch is a partial update to a Place.
//   - FolderID, Memo, VisitedAt: unspecified leaves the column unchanged,
//     explicit null clears it.
//   - Title, Tags, MarkerStyle: nil leaves the column unchanged.
type PlacePatch struct {
	FolderID    nullable.Nullable[uuid.UUID]
	Title       *string
	Memo        nullable.Nullable[string]
	VisitedAt   nullable.Nullable[time.Time]
	Tags        *[]string
	MarkerStyle *MarkerStyle
}

// IsEmpty reports whether the patch would change nothing.
func (p PlacePatch) IsEmpty() bool {
	return !p.FolderID.IsSpecified() &&
		p.Title == nil &&
		!p.Memo.IsSpecified() &&
		!p.VisitedAt.IsSpecified() &&
		p.Tags == nil &&
		p.MarkerStyle == nil
}
