package service

import (
	"context"
	"fmt"
	"math"
	"strings"

	"github.com/google/uuid"

	"github.com/couplemap/couplemap/internal/domain"
	"github.com/couplemap/couplemap/internal/repo"
)

// FolderService implements business logic for Folder operations.
// Every method takes the caller's coupleID as resolved by the access gate.
type FolderService struct {
	folders repo.FolderRepo
}

// NewFolderService constructs a FolderService backed by the provided FolderRepo.
func NewFolderService(folders repo.FolderRepo) *FolderService {
	return &FolderService{folders: folders}
}

// List returns the couple's folders ordered by sort, then creation time.
// Always returns a non-nil slice so callers can safely range over it.
func (s *FolderService) List(ctx context.Context, coupleID uuid.UUID) ([]domain.Folder, error) {
	folders, err := s.folders.List(ctx, coupleID)
	if err != nil {
		return nil, fmt.Errorf("service.FolderService.List: %w", err)
	}
	if folders == nil {
		return []domain.Folder{}, nil
	}
	return folders, nil
}

// Create validates and persists a new folder for the couple.
// Name and Color are trimmed and required. A non-finite Sort becomes 0.
// Returns domain.ErrValidation if input violates business rules.
func (s *FolderService) Create(ctx context.Context, folder domain.Folder) (domain.Folder, error) {
	folder.Name = strings.TrimSpace(folder.Name)
	folder.Color = strings.TrimSpace(folder.Color)
	if folder.Name == "" {
		return domain.Folder{}, fmt.Errorf("%w: name is required", domain.ErrValidation)
	}
	if folder.Color == "" {
		return domain.Folder{}, fmt.Errorf("%w: color is required", domain.ErrValidation)
	}
	if folder.Icon != nil && !folder.Icon.Valid() {
		return domain.Folder{}, fmt.Errorf("%w: unknown icon %q", domain.ErrValidation, *folder.Icon)
	}
	if !isFinite(folder.Sort) {
		folder.Sort = 0
	}

	result, err := s.folders.Create(ctx, folder)
	if err != nil {
		return domain.Folder{}, fmt.Errorf("service.FolderService.Create: %w", err)
	}
	return result, nil
}

// Update applies patch to a folder owned by the couple.
// A specified name or color that is blank after trimming is rejected rather
// than silently ignored. A non-finite sort is dropped from the patch.
// Returns domain.ErrNotFound if the folder is not the couple's, even when the
// patch is empty.
func (s *FolderService) Update(ctx context.Context, coupleID, id uuid.UUID, patch domain.FolderPatch) error {
	if patch.Name != nil {
		name := strings.TrimSpace(*patch.Name)
		if name == "" {
			return fmt.Errorf("%w: name must not be blank", domain.ErrValidation)
		}
		patch.Name = &name
	}
	if patch.Color != nil {
		color := strings.TrimSpace(*patch.Color)
		if color == "" {
			return fmt.Errorf("%w: color must not be blank", domain.ErrValidation)
		}
		patch.Color = &color
	}
	if patch.Icon.IsSpecified() && !patch.Icon.IsNull() {
		if icon := patch.Icon.MustGet(); !icon.Valid() {
			return fmt.Errorf("%w: unknown icon %q", domain.ErrValidation, icon)
		}
	}
	if patch.Sort != nil && !isFinite(*patch.Sort) {
		patch.Sort = nil
	}

	if err := s.folders.Update(ctx, coupleID, id, patch); err != nil {
		return fmt.Errorf("service.FolderService.Update: %w", err)
	}
	return nil
}

// Delete removes a folder; its places survive with no folder.
// Returns domain.ErrNotFound if the folder is not the couple's.
func (s *FolderService) Delete(ctx context.Context, coupleID, id uuid.UUID) error {
	if err := s.folders.Delete(ctx, coupleID, id); err != nil {
		return fmt.Errorf("service.FolderService.Delete: %w", err)
	}
	return nil
}

func isFinite(f float64) bool {
	return !math.IsNaN(f) && !math.IsInf(f, 0)
}
