package domain

import (
	"time"

	"github.com/google/uuid"
	"github.com/oapi-codegen/nullable"
)

// FolderIcon is the optional glyph shown next to a folder name.
type FolderIcon string

const (
	IconHeart   FolderIcon = "heart"
	IconCoffee  FolderIcon = "coffee"
	IconCamp    FolderIcon = "camp"
	IconSparkle FolderIcon = "sparkle"
	IconFood    FolderIcon = "food"
	IconSea     FolderIcon = "sea"
	IconWalk    FolderIcon = "walk"
	IconGift    FolderIcon = "gift"
)

// FolderIcons lists every accepted icon, in display order.
var FolderIcons = []FolderIcon{
	IconHeart, IconCoffee, IconCamp, IconSparkle, IconFood, IconSea, IconWalk, IconGift,
}

// Valid reports whether i is one of FolderIcons.
func (i FolderIcon) Valid() bool {
	for _, known := range FolderIcons {
		if i == known {
			return true
		}
	}
	return false
}

// Folder groups places under a name and a display color.
// CoupleID never changes after creation. Sort is an ordering key and need not
// be unique; ties are broken by CreatedAt.
type Folder struct {
	ID        uuid.UUID
	CoupleID  uuid.UUID
	Name      string
	Color     string
	Icon      *FolderIcon // nil when no icon is set
	Sort      float64
	CreatedAt time.Time
}

// FolderPatch is a partial update to a Folder. Each slot is independent:
//   - Name, Color, Sort: nil leaves the column unchanged.
//   - Icon: unspecified leaves it unchanged, explicit null clears it.
type FolderPatch struct {
	Name  *string
	Color *string
	Icon  nullable.Nullable[FolderIcon]
	Sort  *float64
}

// IsEmpty reports whether the patch would change nothing.
func (p FolderPatch) IsEmpty() bool {
	return p.Name == nil && p.Color == nil && !p.Icon.IsSpecified() && p.Sort == nil
}
