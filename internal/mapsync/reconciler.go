package mapsync

import (
	"sync"

	"github.com/google/uuid"

	"github.com/couplemap/couplemap/internal/api"
	"github.com/couplemap/couplemap/internal/domain"
)

// NeutralColor is the marker color of a place without a folder.
const NeutralColor = "#FFFFFF"

// Marker is everything a map surface needs to draw one place.
type Marker struct {
	ID    uuid.UUID
	Title string
	Lat   float64
	Lng   float64
	Style domain.MarkerStyle
	Color string
}

// Surface is the map a Reconciler draws on. Attach and Detach are only ever
// called from inside Reconcile.
type Surface interface {
	Attach(m Marker)
	Detach(id uuid.UUID)
}

// Reconciler keeps the markers on a Surface in step with a place list.
// A marker whose appearance or anchor changes is detached and attached again
// rather than mutated; appearance is derived in exactly one place, MarkerFor.
type Reconciler struct {
	surface Surface

	mu       sync.Mutex
	rendered map[uuid.UUID]Marker
}

// NewReconciler returns a Reconciler for an empty surface.
func NewReconciler(surface Surface) *Reconciler {
	return &Reconciler{surface: surface, rendered: map[uuid.UUID]Marker{}}
}

// MarkerFor derives the marker of p. folderColors maps folder id to color.
func MarkerFor(p api.Place, folderColors map[uuid.UUID]string) Marker {
	color := NeutralColor
	if p.FolderID != nil {
		if c, ok := folderColors[*p.FolderID]; ok && c != "" {
			color = c
		}
	}
	return Marker{
		ID:    p.ID,
		Title: p.Title,
		Lat:   p.Lat,
		Lng:   p.Lng,
		Style: domain.MarkerStyle(p.MarkerStyle).OrDefault(),
		Color: color,
	}
}

// Reconcile brings the surface to exactly the markers of places.
// It reports how many markers were attached and detached.
func (r *Reconciler) Reconcile(places []api.Place, folders []api.Folder) (attached, detached int) {
	colors := make(map[uuid.UUID]string, len(folders))
	for _, f := range folders {
		colors[f.ID] = f.Color
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	want := make(map[uuid.UUID]Marker, len(places))
	for _, p := range places {
		want[p.ID] = MarkerFor(p, colors)
	}

	for id := range r.rendered {
		if _, ok := want[id]; !ok {
			r.surface.Detach(id)
			delete(r.rendered, id)
			detached++
		}
	}

	// Attach in list order so surfaces that stack markers get a stable order.
	for _, p := range places {
		m := want[p.ID]
		old, ok := r.rendered[p.ID]
		if ok && old == m {
			continue
		}
		if ok {
			r.surface.Detach(p.ID)
			detached++
		}
		r.surface.Attach(m)
		r.rendered[p.ID] = m
		attached++
	}
	return attached, detached
}

// Clear detaches every marker.
func (r *Reconciler) Clear() {
	r.mu.Lock()
	defer r.mu.Unlock()
	for id := range r.rendered {
		r.surface.Detach(id)
	}
	r.rendered = map[uuid.UUID]Marker{}
}

// Rendered returns a copy of the markers currently on the surface.
func (r *Reconciler) Rendered() map[uuid.UUID]Marker {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make(map[uuid.UUID]Marker, len(r.rendered))
	for id, m := range r.rendered {
		out[id] = m
	}
	return out
}
