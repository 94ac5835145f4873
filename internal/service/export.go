package service

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/couplemap/couplemap/internal/domain"
	"github.com/couplemap/couplemap/internal/repo"
)

// ExportService assembles a flat export of a couple's places.
type ExportService struct {
	places  repo.PlaceRepo
	folders repo.FolderRepo
}

// NewExportService constructs an ExportService backed by the provided repos.
func NewExportService(places repo.PlaceRepo, folders repo.FolderRepo) *ExportService {
	return &ExportService{places: places, folders: folders}
}

// Export returns one ExportRow per place, newest first, with the folder name
// resolved. Always returns a non-nil slice.
func (s *ExportService) Export(ctx context.Context, coupleID uuid.UUID) ([]domain.ExportRow, error) {
	folders, err := s.folders.List(ctx, coupleID)
	if err != nil {
		return nil, fmt.Errorf("service.ExportService.Export: list folders: %w", err)
	}
	places, err := s.places.List(ctx, coupleID)
	if err != nil {
		return nil, fmt.Errorf("service.ExportService.Export: list places: %w", err)
	}

	names := make(map[uuid.UUID]string, len(folders))
	for _, f := range folders {
		names[f.ID] = f.Name
	}

	rows := make([]domain.ExportRow, 0, len(places))
	for _, p := range places {
		row := domain.ExportRow{
			PlaceID:     p.ID.String(),
			Title:       p.Title,
			Lat:         p.Lat,
			Lng:         p.Lng,
			MarkerStyle: p.MarkerStyle,
			CreatedAt:   p.CreatedAt,
			Tags:        p.Tags,
		}
		if p.FolderID != nil {
			row.FolderName = names[*p.FolderID]
		}
		if p.VisitedAt != nil {
			row.VisitedAt = p.VisitedAt.Format(time.DateOnly)
		}
		if p.Memo != nil {
			row.Memo = *p.Memo
		}
		rows = append(rows, row)
	}
	return rows, nil
}
