package mapsync_test

import (
	"context"
	"sync"

	"github.com/google/uuid"

	"github.com/couplemap/couplemap/internal/api"
	"github.com/couplemap/couplemap/internal/client"
	"github.com/couplemap/couplemap/internal/domain"
	"github.com/couplemap/couplemap/internal/mapsync"
)

// fakeBackend is an in-memory server. listErr, when set, fails every list
// call; writeErr fails every write.
type fakeBackend struct {
	mu          sync.Mutex
	folders     []api.Folder
	places      []api.Place
	folderLists int
	placeLists  int
	listErr     error
	writeErr    error
	created     []api.CreatePlaceRequest
}

var (
	_ mapsync.Backend  = (*fakeBackend)(nil)
	_ mapsync.Backend  = (*client.Client)(nil)
	_ mapsync.Geocoder = (*client.Client)(nil)
)

func (b *fakeBackend) ListFolders(context.Context) ([]api.Folder, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.folderLists++
	if b.listErr != nil {
		return nil, b.listErr
	}
	return append([]api.Folder(nil), b.folders...), nil
}

func (b *fakeBackend) CreateFolder(_ context.Context, req api.CreateFolderRequest) (api.Folder, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.writeErr != nil {
		return api.Folder{}, b.writeErr
	}
	f := api.Folder{ID: uuid.New(), Name: req.Name, Color: req.Color}
	b.folders = append(b.folders, f)
	return f, nil
}

func (b *fakeBackend) UpdateFolder(_ context.Context, id uuid.UUID, req api.UpdateFolderRequest) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.writeErr != nil {
		return b.writeErr
	}
	for i := range b.folders {
		if b.folders[i].ID == id {
			if req.Name != nil {
				b.folders[i].Name = *req.Name
			}
			if req.Color != nil {
				b.folders[i].Color = *req.Color
			}
			return nil
		}
	}
	return domain.ErrNotFound
}

func (b *fakeBackend) DeleteFolder(_ context.Context, id uuid.UUID) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.writeErr != nil {
		return b.writeErr
	}
	kept := b.folders[:0]
	found := false
	for _, f := range b.folders {
		if f.ID == id {
			found = true
			continue
		}
		kept = append(kept, f)
	}
	if !found {
		return domain.ErrNotFound
	}
	b.folders = kept
	for i := range b.places {
		if b.places[i].FolderID != nil && *b.places[i].FolderID == id {
			b.places[i].FolderID = nil
		}
	}
	return nil
}

func (b *fakeBackend) ListPlaces(context.Context) ([]api.Place, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.placeLists++
	if b.listErr != nil {
		return nil, b.listErr
	}
	return append([]api.Place(nil), b.places...), nil
}

func (b *fakeBackend) CreatePlace(_ context.Context, req api.CreatePlaceRequest) (api.Place, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.created = append(b.created, req)
	if b.writeErr != nil {
		return api.Place{}, b.writeErr
	}
	p := api.Place{ID: uuid.New(), Title: req.Title, Lat: *req.Lat, Lng: *req.Lng, MarkerStyle: req.MarkerStyle}
	if req.FolderID != nil {
		id := uuid.MustParse(*req.FolderID)
		p.FolderID = &id
	}
	b.places = append(b.places, p)
	return p, nil
}

func (b *fakeBackend) UpdatePlace(_ context.Context, id uuid.UUID, req api.UpdatePlaceRequest) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.writeErr != nil {
		return b.writeErr
	}
	for i := range b.places {
		if b.places[i].ID == id {
			if req.Title != nil {
				b.places[i].Title = *req.Title
			}
			return nil
		}
	}
	return domain.ErrNotFound
}

func (b *fakeBackend) DeletePlace(_ context.Context, id uuid.UUID) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.writeErr != nil {
		return b.writeErr
	}
	for i := range b.places {
		if b.places[i].ID == id {
			b.places = append(b.places[:i], b.places[i+1:]...)
			return nil
		}
	}
	return domain.ErrNotFound
}

func (b *fakeBackend) lists() (folders, places int) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.folderLists, b.placeLists
}

// tenant is a switchable credential source.
type tenant struct {
	mu   sync.Mutex
	code string
}

func (t *tenant) get() (string, error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.code, nil
}

func (t *tenant) set(code string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.code = code
}

func place(title string, folder *uuid.UUID) api.Place {
	return api.Place{ID: uuid.New(), Title: title, Lat: 37.5, Lng: 127.0, FolderID: folder, MarkerStyle: "circle"}
}

func ptr[T any](v T) *T { return &v }
