// Package handler implements the HTTP handlers for the CoupleMap API.
// All handlers are methods on Server. Methods are split into domain-specific
// files (couple.go, folder.go, etc.) but all share the same Server struct so
// they can access its dependencies.
package handler

import (
	"context"
	"log/slog"

	"github.com/google/uuid"

	"github.com/couplemap/couplemap/internal/domain"
	"github.com/couplemap/couplemap/internal/geocode"
	"github.com/couplemap/couplemap/internal/validation"
)

// CoupleServicer defines the identity operations the handlers depend on.
// Defining the interfaces here (in the consumer package) follows the Go
// convention: "accept interfaces, return concrete types". It lets handler
// tests inject a mock without touching the database or service layer.
type CoupleServicer interface {
	Create(ctx context.Context) (domain.Couple, error)
	Join(ctx context.Context, inviteCode string) (uuid.UUID, error)
	Resolve(ctx context.Context, inviteCode string) (uuid.UUID, error)
	Rotate(ctx context.Context, coupleID uuid.UUID) (string, error)
}

// FolderServicer defines the folder operations the handlers depend on.
type FolderServicer interface {
	List(ctx context.Context, coupleID uuid.UUID) ([]domain.Folder, error)
	Create(ctx context.Context, folder domain.Folder) (domain.Folder, error)
	Update(ctx context.Context, coupleID, id uuid.UUID, patch domain.FolderPatch) error
	Delete(ctx context.Context, coupleID, id uuid.UUID) error
}

// PlaceServicer defines the place operations the handlers depend on.
type PlaceServicer interface {
	List(ctx context.Context, coupleID uuid.UUID) ([]domain.Place, error)
	Create(ctx context.Context, place domain.Place) (domain.Place, error)
	Update(ctx context.Context, coupleID, id uuid.UUID, patch domain.PlacePatch) error
	Delete(ctx context.Context, coupleID, id uuid.UUID) error
}

// TagServicer defines the tag suggestion operation.
type TagServicer interface {
	Suggestions(ctx context.Context, coupleID uuid.UUID, prefix string, limit int) ([]domain.TagCount, error)
}

// ExportServicer defines the export operation.
type ExportServicer interface {
	Export(ctx context.Context, coupleID uuid.UUID) ([]domain.ExportRow, error)
}

// Geocoder defines the geocoding proxy operation.
type Geocoder interface {
	Search(ctx context.Context, query string, limit int) ([]geocode.Candidate, error)
}

// Services bundles every dependency of Server. A nil member leaves its
// endpoints answering 500, which keeps focused tests short.
type Services struct {
	Couples CoupleServicer
	Folders FolderServicer
	Places  PlaceServicer
	Tags    TagServicer
	Export  ExportServicer
	Geocode Geocoder
}

// Server implements every API endpoint.
type Server struct {
	couples  CoupleServicer
	folders  FolderServicer
	places   PlaceServicer
	tags     TagServicer
	export   ExportServicer
	geocoder Geocoder

	validate *validation.Validator
	logger   *slog.Logger
}

// NewServer constructs the Server with all its dependencies. A nil logger
// falls back to slog.Default().
func NewServer(svc Services, logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.Default()
	}
	return &Server{
		couples:  svc.Couples,
		folders:  svc.Folders,
		places:   svc.Places,
		tags:     svc.Tags,
		export:   svc.Export,
		geocoder: svc.Geocode,
		validate: validation.New(),
		logger:   logger,
	}
}
