package mapsync

import (
	"context"

	"github.com/google/uuid"

	"github.com/couplemap/couplemap/internal/api"
)

type filterKind int

const (
	filterAll filterKind = iota
	filterUnassigned
	filterFolder
)

// Filter selects which places are visible. The three kinds partition the
// places: every place is in the unassigned set or in exactly one folder.
type Filter struct {
	kind   filterKind
	folder uuid.UUID
}

var (
	// FilterAll shows every place.
	FilterAll = Filter{kind: filterAll}
	// FilterUnassigned shows places with no folder.
	FilterUnassigned = Filter{kind: filterUnassigned}
)

// FilterFolder shows the places in folder id.
func FilterFolder(id uuid.UUID) Filter {
	return Filter{kind: filterFolder, folder: id}
}

// Match reports whether p passes the filter.
func (f Filter) Match(p api.Place) bool {
	switch f.kind {
	case filterUnassigned:
		return p.FolderID == nil
	case filterFolder:
		return p.FolderID != nil && *p.FolderID == f.folder
	default:
		return true
	}
}

// Folder returns the selected folder id, if the filter selects one.
func (f Filter) Folder() (uuid.UUID, bool) {
	return f.folder, f.kind == filterFolder
}

// SetFilter selects which places Visible returns.
func (s *Store) SetFilter(f Filter) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.filter = f
}

// Filter returns the current filter.
func (s *Store) Filter() Filter {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.filter
}

// Visible returns the places selected by the current filter, in list order.
func (s *Store) Visible(ctx context.Context) ([]api.Place, error) {
	places, err := s.Places(ctx)
	if err != nil {
		return nil, err
	}
	f := s.Filter()
	out := make([]api.Place, 0, len(places))
	for _, p := range places {
		if f.Match(p) {
			out = append(out, p)
		}
	}
	return out, nil
}

// Counts is the number of places per folder, for the folder list.
type Counts struct {
	Total      int
	Unassigned int
	ByFolder   map[uuid.UUID]int
}

// FolderCounts counts the cached places per folder. Every known folder has
// an entry, zero included.
func (s *Store) FolderCounts(ctx context.Context) (Counts, error) {
	folders, err := s.Folders(ctx)
	if err != nil {
		return Counts{}, err
	}
	places, err := s.Places(ctx)
	if err != nil {
		return Counts{}, err
	}

	c := Counts{Total: len(places), ByFolder: make(map[uuid.UUID]int, len(folders))}
	for _, f := range folders {
		c.ByFolder[f.ID] = 0
	}
	for _, p := range places {
		if p.FolderID == nil {
			c.Unassigned++
			continue
		}
		c.ByFolder[*p.FolderID]++
	}
	return c, nil
}
