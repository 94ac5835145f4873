package client

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/goccy/go-json"
)

// CredentialStore keeps the invite code between requests and sessions.
// Get returns "" when no code is stored.
type CredentialStore interface {
	Get() (string, error)
	Set(code string) error
	Clear() error
}

// MemoryCredentials holds the code in memory for the life of the process.
type MemoryCredentials struct {
	mu   sync.RWMutex
	code string
}

// Get implements CredentialStore.
func (m *MemoryCredentials) Get() (string, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.code, nil
}

// Set implements CredentialStore.
func (m *MemoryCredentials) Set(code string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.code = code
	return nil
}

// Clear implements CredentialStore.
func (m *MemoryCredentials) Clear() error {
	return m.Set("")
}

// FileCredentials persists the code as a small JSON document readable only
// by the current user.
type FileCredentials struct {
	Path string

	mu sync.Mutex
}

type credentialFile struct {
	InviteCode string `json:"inviteCode"`
}

// Get implements CredentialStore. A missing file means no code.
func (f *FileCredentials) Get() (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	b, err := os.ReadFile(f.Path)
	if errors.Is(err, os.ErrNotExist) {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("client.FileCredentials.Get: %w", err)
	}
	var doc credentialFile
	if err := json.Unmarshal(b, &doc); err != nil {
		return "", fmt.Errorf("client.FileCredentials.Get: decode %s: %w", f.Path, err)
	}
	return doc.InviteCode, nil
}

// Set implements CredentialStore. The file is replaced atomically.
func (f *FileCredentials) Set(code string) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	b, err := json.Marshal(credentialFile{InviteCode: code})
	if err != nil {
		return fmt.Errorf("client.FileCredentials.Set: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(f.Path), 0o700); err != nil {
		return fmt.Errorf("client.FileCredentials.Set: %w", err)
	}
	tmp := f.Path + ".tmp"
	if err := os.WriteFile(tmp, b, 0o600); err != nil {
		return fmt.Errorf("client.FileCredentials.Set: %w", err)
	}
	if err := os.Rename(tmp, f.Path); err != nil {
		return fmt.Errorf("client.FileCredentials.Set: %w", err)
	}
	return nil
}

// Clear implements CredentialStore. Clearing an absent file is not an error.
func (f *FileCredentials) Clear() error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if err := os.Remove(f.Path); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("client.FileCredentials.Clear: %w", err)
	}
	return nil
}
