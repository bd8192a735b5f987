// ABOUTME: Persistence for the opaque session token
// ABOUTME: File-backed store in the XDG config directory plus an in-memory store

package session

import (
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"sync"
	"time"
)

// TokenStore persists a single opaque token
type TokenStore interface {
	// Load returns the token and whether one is present
	Load() (string, bool, error)
	Save(token string) error
	// Remove deletes the token; removing a missing token is not an error
	Remove() error
}

type tokenData struct {
	Token   string    `json:"token"`
	SavedAt time.Time `json:"saved_at"`
}

// FileStore keeps the token in session.json under configDir
type FileStore struct {
	configDir string
}

// NewFileStore creates a file store rooted at configDir
func NewFileStore(configDir string) *FileStore {
	return &FileStore{configDir: configDir}
}

// Path returns the session file location
func (s *FileStore) Path() string {
	return filepath.Join(s.configDir, "session.json")
}

// Load reads the token. A missing, corrupt, or empty file means no token.
func (s *FileStore) Load() (string, bool, error) {
	data, err := os.ReadFile(s.Path())
	if errors.Is(err, os.ErrNotExist) {
		return "", false, nil
	}
	if err != nil {
		return "", false, err
	}

	var td tokenData
	if err := json.Unmarshal(data, &td); err != nil {
		return "", false, nil
	}
	if td.Token == "" {
		return "", false, nil
	}
	return td.Token, true, nil
}

// Save writes the token with owner-only permissions
func (s *FileStore) Save(token string) error {
	if err := os.MkdirAll(s.configDir, 0700); err != nil {
		return err
	}

	data, err := json.MarshalIndent(tokenData{Token: token, SavedAt: time.Now().UTC()}, "", "  ")
	if err != nil {
		return err
	}

	tmp, err := os.CreateTemp(s.configDir, "session-*.json")
	if err != nil {
		return err
	}
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return err
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return err
	}
	if err := os.Chmod(tmp.Name(), 0600); err != nil {
		os.Remove(tmp.Name())
		return err
	}
	return os.Rename(tmp.Name(), s.Path())
}

// Remove deletes the session file
func (s *FileStore) Remove() error {
	err := os.Remove(s.Path())
	if errors.Is(err, os.ErrNotExist) {
		return nil
	}
	return err
}

// MemoryStore keeps the token in process memory
type MemoryStore struct {
	mu    sync.Mutex
	token string
}

// NewMemoryStore creates a store, optionally pre-loaded with a token
func NewMemoryStore(token string) *MemoryStore {
	return &MemoryStore{token: token}
}

// Load returns the token
func (m *MemoryStore) Load() (string, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.token, m.token != "", nil
}

// Save stores the token
func (m *MemoryStore) Save(token string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.token = token
	return nil
}

// Remove clears the token
func (m *MemoryStore) Remove() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.token = ""
	return nil
}
