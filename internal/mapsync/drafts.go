package mapsync

import (
	"context"
	"errors"
	"fmt"
	"math"
	"strings"
	"sync"

	"github.com/google/uuid"

	"github.com/couplemap/couplemap/internal/api"
	"github.com/couplemap/couplemap/internal/domain"
	"github.com/couplemap/couplemap/internal/geocode"
)

// DraftState is the phase of the save-a-place workflow.
type DraftState int

const (
	Idle DraftState = iota
	Drafting
	Saving
)

func (s DraftState) String() string {
	switch s {
	case Drafting:
		return "drafting"
	case Saving:
		return "saving"
	default:
		return "idle"
	}
}

var (
	// ErrSubmitInFlight is returned by Submit while an earlier submit is saving.
	ErrSubmitInFlight = errors.New("mapsync: submit already in flight")
	// ErrNoDraft is returned when there is no draft to edit or submit.
	ErrNoDraft = errors.New("mapsync: no draft")
)

// fallbackTitle is used when a search result has no usable name.
const fallbackTitle = "Saved place"

// Draft is a place under construction that has not been saved yet.
type Draft struct {
	Title       string
	Memo        string
	Lat         *float64
	Lng         *float64
	FolderID    *uuid.UUID
	VisitedAt   string // YYYY-MM-DD or empty
	Tags        []string
	MarkerStyle domain.MarkerStyle
	Source      string
	SourceID    string
}

// DraftFromCandidate seeds a draft from a geocoder result.
func DraftFromCandidate(c geocode.Candidate) Draft {
	d := Draft{
		Title:       candidateTitle(c),
		MarkerStyle: domain.DefaultMarkerStyle,
		Source:      "nominatim",
		SourceID:    c.PlaceID.String(),
	}
	if c.DisplayName != "" {
		d.Memo = "📍 " + c.DisplayName
	}
	if lat, lng, ok := c.Coordinates(); ok {
		d.Lat, d.Lng = &lat, &lng
	}
	return d
}

func candidateTitle(c geocode.Candidate) string {
	if name := strings.TrimSpace(c.Name); name != "" {
		return name
	}
	first, _, _ := strings.Cut(c.DisplayName, ",")
	if first = strings.TrimSpace(first); first != "" {
		return first
	}
	return fallbackTitle
}

// Validate reports whether the draft can be submitted.
func (d Draft) Validate() error {
	if strings.TrimSpace(d.Title) == "" {
		return fmt.Errorf("%w: title is required", domain.ErrValidation)
	}
	if d.Lat == nil || d.Lng == nil || !finite(*d.Lat) || !finite(*d.Lng) {
		return fmt.Errorf("%w: coordinates are required", domain.ErrValidation)
	}
	return nil
}

func finite(f float64) bool {
	return !math.IsNaN(f) && !math.IsInf(f, 0)
}

// request converts a validated draft into a create request.
func (d Draft) request() api.CreatePlaceRequest {
	req := api.CreatePlaceRequest{
		Title:       strings.TrimSpace(d.Title),
		Lat:         d.Lat,
		Lng:         d.Lng,
		Tags:        domain.NormalizeTags(d.Tags),
		MarkerStyle: string(d.MarkerStyle.OrDefault()),
	}
	if memo := strings.TrimSpace(d.Memo); memo != "" {
		req.Memo = &memo
	}
	if d.FolderID != nil {
		id := d.FolderID.String()
		req.FolderID = &id
	}
	if v := strings.TrimSpace(d.VisitedAt); v != "" {
		req.VisitedAt = &v
	}
	if d.Source != "" {
		src := d.Source
		req.Source = &src
	}
	if d.SourceID != "" {
		sid := d.SourceID
		req.SourceID = &sid
	}
	return req
}

// PlaceCreator saves a new place. *Store satisfies it.
type PlaceCreator interface {
	CreatePlace(ctx context.Context, req api.CreatePlaceRequest) (api.Place, error)
}

// Drafts drives the Idle, Drafting, Saving workflow for one draft at a time.
// Picking a result starts a draft, Submit saves it, and a successful save
// discards it. A failed save keeps the draft so the user can retry.
type Drafts struct {
	creator PlaceCreator

	mu    sync.Mutex
	state DraftState
	draft Draft
}

// NewDrafts returns an idle workflow that saves through creator.
func NewDrafts(creator PlaceCreator) *Drafts {
	return &Drafts{creator: creator}
}

// State returns the current phase.
func (d *Drafts) State() DraftState {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.state
}

// Current returns the draft and whether one exists.
func (d *Drafts) Current() (Draft, bool) {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.draft, d.state != Idle
}

// Pick starts a new draft from c, replacing any unsaved one.
// It fails with ErrSubmitInFlight while a save is running.
func (d *Drafts) Pick(c geocode.Candidate) (Draft, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.state == Saving {
		return Draft{}, ErrSubmitInFlight
	}
	d.draft = DraftFromCandidate(c)
	d.state = Drafting
	return d.draft, nil
}

// Edit applies fn to the current draft.
func (d *Drafts) Edit(fn func(*Draft)) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	switch d.state {
	case Idle:
		return ErrNoDraft
	case Saving:
		return ErrSubmitInFlight
	}
	fn(&d.draft)
	return nil
}

// Cancel discards the draft. It is a no-op while saving.
func (d *Drafts) Cancel() {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.state == Saving {
		return
	}
	d.draft = Draft{}
	d.state = Idle
}

// Submit validates and saves the draft. Only one submit runs at a time; a
// concurrent call returns ErrSubmitInFlight without touching the backend.
func (d *Drafts) Submit(ctx context.Context) (api.Place, error) {
	d.mu.Lock()
	switch d.state {
	case Idle:
		d.mu.Unlock()
		return api.Place{}, ErrNoDraft
	case Saving:
		d.mu.Unlock()
		return api.Place{}, ErrSubmitInFlight
	}
	if err := d.draft.Validate(); err != nil {
		d.mu.Unlock()
		return api.Place{}, err
	}
	req := d.draft.request()
	d.state = Saving
	d.mu.Unlock()

	place, err := d.creator.CreatePlace(ctx, req)

	d.mu.Lock()
	defer d.mu.Unlock()
	if err != nil {
		d.state = Drafting
		return api.Place{}, fmt.Errorf("mapsync.Drafts.Submit: %w", err)
	}
	d.draft = Draft{}
	d.state = Idle
	return place, nil
}
