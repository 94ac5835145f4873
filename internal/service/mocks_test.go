package service_test

import (
	"context"

	"github.com/google/uuid"

	"github.com/couplemap/couplemap/internal/domain"
	"github.com/couplemap/couplemap/internal/invite"
	"github.com/couplemap/couplemap/internal/repo"
)

// ---- mock repos ------------------------------------------------------------

// mockCoupleRepo is a hand-written test double for repo.CoupleRepo.
type mockCoupleRepo struct {
	create           func(ctx context.Context, code string) (domain.Couple, error)
	getByInviteCode  func(ctx context.Context, code string) (domain.Couple, error)
	updateInviteCode func(ctx context.Context, id uuid.UUID, code string) (domain.Couple, error)
}

func (m *mockCoupleRepo) Create(ctx context.Context, code string) (domain.Couple, error) {
	return m.create(ctx, code)
}
func (m *mockCoupleRepo) GetByInviteCode(ctx context.Context, code string) (domain.Couple, error) {
	return m.getByInviteCode(ctx, code)
}
func (m *mockCoupleRepo) UpdateInviteCode(ctx context.Context, id uuid.UUID, code string) (domain.Couple, error) {
	return m.updateInviteCode(ctx, id, code)
}

var _ repo.CoupleRepo = (*mockCoupleRepo)(nil)

// mockFolderRepo is a hand-written test double for repo.FolderRepo.
type mockFolderRepo struct {
	create  func(ctx context.Context, f domain.Folder) (domain.Folder, error)
	getByID func(ctx context.Context, coupleID, id uuid.UUID) (domain.Folder, error)
	list    func(ctx context.Context, coupleID uuid.UUID) ([]domain.Folder, error)
	update  func(ctx context.Context, coupleID, id uuid.UUID, patch domain.FolderPatch) error
	delete  func(ctx context.Context, coupleID, id uuid.UUID) error
}

func (m *mockFolderRepo) Create(ctx context.Context, f domain.Folder) (domain.Folder, error) {
	return m.create(ctx, f)
}
func (m *mockFolderRepo) GetByID(ctx context.Context, coupleID, id uuid.UUID) (domain.Folder, error) {
	return m.getByID(ctx, coupleID, id)
}
func (m *mockFolderRepo) List(ctx context.Context, coupleID uuid.UUID) ([]domain.Folder, error) {
	return m.list(ctx, coupleID)
}
func (m *mockFolderRepo) Update(ctx context.Context, coupleID, id uuid.UUID, patch domain.FolderPatch) error {
	return m.update(ctx, coupleID, id, patch)
}
func (m *mockFolderRepo) Delete(ctx context.Context, coupleID, id uuid.UUID) error {
	return m.delete(ctx, coupleID, id)
}

var _ repo.FolderRepo = (*mockFolderRepo)(nil)

// mockPlaceRepo is a hand-written test double for repo.PlaceRepo.
type mockPlaceRepo struct {
	create  func(ctx context.Context, p domain.Place) (domain.Place, error)
	getByID func(ctx context.Context, coupleID, id uuid.UUID) (domain.Place, error)
	list    func(ctx context.Context, coupleID uuid.UUID) ([]domain.Place, error)
	update  func(ctx context.Context, coupleID, id uuid.UUID, patch domain.PlacePatch) error
	delete  func(ctx context.Context, coupleID, id uuid.UUID) error
}

func (m *mockPlaceRepo) Create(ctx context.Context, p domain.Place) (domain.Place, error) {
	return m.create(ctx, p)
}
func (m *mockPlaceRepo) GetByID(ctx context.Context, coupleID, id uuid.UUID) (domain.Place, error) {
	return m.getByID(ctx, coupleID, id)
}
func (m *mockPlaceRepo) List(ctx context.Context, coupleID uuid.UUID) ([]domain.Place, error) {
	return m.list(ctx, coupleID)
}
func (m *mockPlaceRepo) Update(ctx context.Context, coupleID, id uuid.UUID, patch domain.PlacePatch) error {
	return m.update(ctx, coupleID, id, patch)
}
func (m *mockPlaceRepo) Delete(ctx context.Context, coupleID, id uuid.UUID) error {
	return m.delete(ctx, coupleID, id)
}

var _ repo.PlaceRepo = (*mockPlaceRepo)(nil)

// ---- stub code generator ---------------------------------------------------

// seqCodes hands out codes in order, then repeats the last one.
type seqCodes struct {
	codes []string
	n     int
}

func (s *seqCodes) Generate() (string, error) {
	code := s.codes[min(s.n, len(s.codes)-1)]
	s.n++
	return code, nil
}

var _ invite.CodeGenerator = (*seqCodes)(nil)

// ownedFolders returns a getByID that only knows the given folder ids for coupleID.
func ownedFolders(coupleID uuid.UUID, ids ...uuid.UUID) func(context.Context, uuid.UUID, uuid.UUID) (domain.Folder, error) {
	return func(_ context.Context, cid, id uuid.UUID) (domain.Folder, error) {
		if cid != coupleID {
			return domain.Folder{}, domain.ErrNotFound
		}
		for _, known := range ids {
			if id == known {
				return domain.Folder{ID: id, CoupleID: cid}, nil
			}
		}
		return domain.Folder{}, domain.ErrNotFound
	}
}
