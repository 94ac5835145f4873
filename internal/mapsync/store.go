// Package mapsync keeps a client-side view of a couple's map in step with the
// server: cached collections with refetch-after-write, the folder filter, the
// marker diff against a map surface, the save-draft workflow and debounced
// place search.
package mapsync

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/google/uuid"

	"github.com/couplemap/couplemap/internal/api"
	"github.com/couplemap/couplemap/internal/domain"
)

// Backend is the part of the API client the Store needs.
// *client.Client satisfies it.
type Backend interface {
	ListFolders(ctx context.Context) ([]api.Folder, error)
	CreateFolder(ctx context.Context, req api.CreateFolderRequest) (api.Folder, error)
	UpdateFolder(ctx context.Context, id uuid.UUID, req api.UpdateFolderRequest) error
	DeleteFolder(ctx context.Context, id uuid.UUID) error

	ListPlaces(ctx context.Context) ([]api.Place, error)
	CreatePlace(ctx context.Context, req api.CreatePlaceRequest) (api.Place, error)
	UpdatePlace(ctx context.Context, id uuid.UUID, req api.UpdatePlaceRequest) error
	DeletePlace(ctx context.Context, id uuid.UUID) error
}

// Tenant returns the credential currently in use; "" means none.
type Tenant func() (string, error)

type collection string

const (
	collFolders collection = "folders"
	collPlaces  collection = "places"
)

type cacheKey struct {
	tenant string
	coll   collection
}

// Store caches folders and places per tenant. Every successful write
// refetches the collections it affects in full; nothing is patched locally.
// A Store is safe for concurrent use.
type Store struct {
	backend Backend
	tenant  Tenant

	mu      sync.Mutex
	current string
	folders map[cacheKey][]api.Folder
	places  map[cacheKey][]api.Place
	filter  Filter
}

// NewStore returns an empty Store.
func NewStore(backend Backend, tenant Tenant) *Store {
	s := &Store{backend: backend, tenant: tenant}
	s.resetLocked()
	return s
}

// Reset drops every cached collection and the filter.
func (s *Store) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.resetLocked()
}

func (s *Store) resetLocked() {
	s.folders = map[cacheKey][]api.Folder{}
	s.places = map[cacheKey][]api.Place{}
	s.filter = FilterAll
	s.current = ""
}

// key returns the cache key for coll under the current tenant. A tenant
// change drops everything cached for the previous one.
func (s *Store) key(coll collection) (cacheKey, error) {
	tenant, err := s.tenant()
	if err != nil {
		return cacheKey{}, fmt.Errorf("mapsync: read tenant: %w", err)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if tenant != s.current {
		s.resetLocked()
		s.current = tenant
	}
	return cacheKey{tenant: tenant, coll: coll}, nil
}

// Folders returns the cached folders, fetching them on first use.
func (s *Store) Folders(ctx context.Context) ([]api.Folder, error) {
	key, err := s.key(collFolders)
	if err != nil {
		return nil, err
	}
	s.mu.Lock()
	cached, ok := s.folders[key]
	s.mu.Unlock()
	if ok {
		return cached, nil
	}
	return s.refetchFolders(ctx, key)
}

// Places returns the cached places, fetching them on first use.
func (s *Store) Places(ctx context.Context) ([]api.Place, error) {
	key, err := s.key(collPlaces)
	if err != nil {
		return nil, err
	}
	s.mu.Lock()
	cached, ok := s.places[key]
	s.mu.Unlock()
	if ok {
		return cached, nil
	}
	return s.refetchPlaces(ctx, key)
}

func (s *Store) refetchFolders(ctx context.Context, key cacheKey) ([]api.Folder, error) {
	folders, err := s.backend.ListFolders(ctx)
	if err != nil {
		return nil, s.failed(err)
	}
	if folders == nil {
		folders = []api.Folder{}
	}
	s.mu.Lock()
	if key.tenant == s.current {
		s.folders[key] = folders
	}
	s.mu.Unlock()
	return folders, nil
}

func (s *Store) refetchPlaces(ctx context.Context, key cacheKey) ([]api.Place, error) {
	places, err := s.backend.ListPlaces(ctx)
	if err != nil {
		return nil, s.failed(err)
	}
	if places == nil {
		places = []api.Place{}
	}
	s.mu.Lock()
	if key.tenant == s.current {
		s.places[key] = places
	}
	s.mu.Unlock()
	return places, nil
}

// failed resets the cache on an auth failure and returns err unchanged.
func (s *Store) failed(err error) error {
	if errors.Is(err, domain.ErrUnauthenticated) {
		s.Reset()
	}
	return err
}

// refresh refetches the given collections after a write.
func (s *Store) refresh(ctx context.Context, colls ...collection) error {
	for _, coll := range colls {
		key, err := s.key(coll)
		if err != nil {
			return err
		}
		switch coll {
		case collFolders:
			_, err = s.refetchFolders(ctx, key)
		case collPlaces:
			_, err = s.refetchPlaces(ctx, key)
		}
		if err != nil {
			return err
		}
	}
	return nil
}

// ---- writes -----------------------------------------------------------------

// CreateFolder creates a folder and refetches folders.
func (s *Store) CreateFolder(ctx context.Context, req api.CreateFolderRequest) (api.Folder, error) {
	f, err := s.backend.CreateFolder(ctx, req)
	if err != nil {
		return api.Folder{}, s.failed(err)
	}
	return f, s.refresh(ctx, collFolders)
}

// UpdateFolder patches a folder and refetches folders.
func (s *Store) UpdateFolder(ctx context.Context, id uuid.UUID, req api.UpdateFolderRequest) error {
	if err := s.backend.UpdateFolder(ctx, id, req); err != nil {
		return s.failed(err)
	}
	return s.refresh(ctx, collFolders)
}

// DeleteFolder deletes a folder and refetches folders and places, since the
// folder's places lose their folder. A filter on the deleted folder falls
// back to FilterAll.
func (s *Store) DeleteFolder(ctx context.Context, id uuid.UUID) error {
	if err := s.backend.DeleteFolder(ctx, id); err != nil {
		return s.failed(err)
	}
	s.mu.Lock()
	if s.filter == FilterFolder(id) {
		s.filter = FilterAll
	}
	s.mu.Unlock()
	return s.refresh(ctx, collFolders, collPlaces)
}

// CreatePlace saves a place and refetches places.
func (s *Store) CreatePlace(ctx context.Context, req api.CreatePlaceRequest) (api.Place, error) {
	p, err := s.backend.CreatePlace(ctx, req)
	if err != nil {
		return api.Place{}, s.failed(err)
	}
	return p, s.refresh(ctx, collPlaces)
}

// UpdatePlace patches a place and refetches places.
func (s *Store) UpdatePlace(ctx context.Context, id uuid.UUID, req api.UpdatePlaceRequest) error {
	if err := s.backend.UpdatePlace(ctx, id, req); err != nil {
		return s.failed(err)
	}
	return s.refresh(ctx, collPlaces)
}

// DeletePlace deletes a place and refetches places.
func (s *Store) DeletePlace(ctx context.Context, id uuid.UUID) error {
	if err := s.backend.DeletePlace(ctx, id); err != nil {
		return s.failed(err)
	}
	return s.refresh(ctx, collPlaces)
}
