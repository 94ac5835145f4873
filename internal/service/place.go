package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/couplemap/couplemap/internal/domain"
	"github.com/couplemap/couplemap/internal/repo"
)

// PlaceService implements business logic for Place operations.
// It holds the folders repo because any folder reference must be checked
// against the caller's couple before it is written.
type PlaceService struct {
	places  repo.PlaceRepo
	folders repo.FolderRepo
}

// NewPlaceService constructs a PlaceService backed by the provided repos.
func NewPlaceService(places repo.PlaceRepo, folders repo.FolderRepo) *PlaceService {
	return &PlaceService{places: places, folders: folders}
}

// List returns the couple's places, newest first.
// Always returns a non-nil slice so callers can safely range over it.
func (s *PlaceService) List(ctx context.Context, coupleID uuid.UUID) ([]domain.Place, error) {
	places, err := s.places.List(ctx, coupleID)
	if err != nil {
		return nil, fmt.Errorf("service.PlaceService.List: %w", err)
	}
	if places == nil {
		return []domain.Place{}, nil
	}
	return places, nil
}

// Create validates and persists a new place.
// Returns domain.ErrValidation if input violates business rules,
// domain.ErrNotFound if FolderID is not one of the couple's folders and
// domain.ErrConflict if the same geocoder result is already saved.
func (s *PlaceService) Create(ctx context.Context, place domain.Place) (domain.Place, error) {
	place.Title = strings.TrimSpace(place.Title)
	if place.Title == "" {
		return domain.Place{}, fmt.Errorf("%w: title is required", domain.ErrValidation)
	}
	if !isFinite(place.Lat) || !isFinite(place.Lng) {
		return domain.Place{}, fmt.Errorf("%w: lat and lng must be finite numbers", domain.ErrValidation)
	}
	if place.MarkerStyle == "" {
		place.MarkerStyle = domain.DefaultMarkerStyle
	} else if !place.MarkerStyle.Valid() {
		return domain.Place{}, fmt.Errorf("%w: unknown marker_style %q", domain.ErrValidation, place.MarkerStyle)
	}
	place.Tags = domain.NormalizeTags(place.Tags)
	if err := domain.CheckTags(place.Tags); err != nil {
		return domain.Place{}, err
	}

	if place.FolderID != nil {
		if err := s.checkFolder(ctx, place.CoupleID, *place.FolderID); err != nil {
			return domain.Place{}, fmt.Errorf("service.PlaceService.Create: %w", err)
		}
	}

	result, err := s.places.Create(ctx, place)
	if err != nil {
		return domain.Place{}, fmt.Errorf("service.PlaceService.Create: %w", err)
	}
	return result, nil
}

// Update applies patch to a place owned by the couple.
//   - A blank title is ignored, keeping the stored one.
//   - Tags are normalized and each must fit MaxTagRunes.
//   - A folder reference must be one of the couple's folders.
//
// Returns domain.ErrNotFound if the place (or referenced folder) is not the
// couple's, and domain.ErrValidation for an unknown marker style or an
// overlong tag.
func (s *PlaceService) Update(ctx context.Context, coupleID, id uuid.UUID, patch domain.PlacePatch) error {
	if patch.Title != nil {
		title := strings.TrimSpace(*patch.Title)
		if title == "" {
			patch.Title = nil
		} else {
			patch.Title = &title
		}
	}
	if patch.Tags != nil {
		tags := domain.NormalizeTags(*patch.Tags)
		if err := domain.CheckTags(tags); err != nil {
			return err
		}
		patch.Tags = &tags
	}
	if patch.MarkerStyle != nil && !patch.MarkerStyle.Valid() {
		return fmt.Errorf("%w: unknown marker_style %q", domain.ErrValidation, *patch.MarkerStyle)
	}
	if patch.FolderID.IsSpecified() && !patch.FolderID.IsNull() {
		if err := s.checkFolder(ctx, coupleID, patch.FolderID.MustGet()); err != nil {
			return fmt.Errorf("service.PlaceService.Update: %w", err)
		}
	}

	if err := s.places.Update(ctx, coupleID, id, patch); err != nil {
		return fmt.Errorf("service.PlaceService.Update: %w", err)
	}
	return nil
}

// Delete removes a place.
// Returns domain.ErrNotFound if the place is not the couple's.
func (s *PlaceService) Delete(ctx context.Context, coupleID, id uuid.UUID) error {
	if err := s.places.Delete(ctx, coupleID, id); err != nil {
		return fmt.Errorf("service.PlaceService.Delete: %w", err)
	}
	return nil
}

func (s *PlaceService) checkFolder(ctx context.Context, coupleID, folderID uuid.UUID) error {
	if _, err := s.folders.GetByID(ctx, coupleID, folderID); err != nil {
		return fmt.Errorf("folder %s: %w", folderID, err)
	}
	return nil
}
