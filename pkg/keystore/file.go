package keystore

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sync"
)

// FileStore is the legacy unscoped preferences store: a plaintext JSON map on
// disk. It predates the keyring-backed store and remains only as the source
// of the one-time credential migration and as the home of small non-secret
// flags (the migration marker itself).
type FileStore struct {
	mu   sync.Mutex
	path string
}

// NewFileStore creates a file store at path. The file is created lazily on
// first Save.
func NewFileStore(path string) *FileStore {
	return &FileStore{path: path}
}

// Save stores value under key, replacing any existing entry.
func (s *FileStore) Save(key, value string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	entries, err := s.load()
	if err != nil {
		return err
	}
	entries[key] = value
	return s.flush(entries)
}

// Retrieve returns the value for key, or false when absent or unreadable.
func (s *FileStore) Retrieve(key string) (string, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	entries, err := s.load()
	if err != nil {
		return "", false
	}
	value, ok := entries[key]
	return value, ok
}

// Delete removes key. An absent key is not an error.
func (s *FileStore) Delete(key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	entries, err := s.load()
	if err != nil {
		return err
	}
	if _, ok := entries[key]; !ok {
		return nil
	}
	delete(entries, key)
	return s.flush(entries)
}

func (s *FileStore) load() (map[string]string, error) {
	data, err := os.ReadFile(s.path)
	if errors.Is(err, fs.ErrNotExist) {
		return map[string]string{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", s.path, err)
	}

	entries := map[string]string{}
	if len(data) > 0 {
		if err := json.Unmarshal(data, &entries); err != nil {
			return nil, fmt.Errorf("parsing %s: %w", s.path, err)
		}
	}
	return entries, nil
}

func (s *FileStore) flush(entries map[string]string) error {
	data, err := json.Marshal(entries)
	if err != nil {
		return fmt.Errorf("encoding %s: %w", s.path, err)
	}
	if err := os.MkdirAll(filepath.Dir(s.path), 0o700); err != nil {
		return fmt.Errorf("creating %s: %w", filepath.Dir(s.path), err)
	}
	if err := os.WriteFile(s.path, data, 0o600); err != nil {
		return fmt.Errorf("writing %s: %w", s.path, err)
	}
	return nil
}

// Verify interface compliance.
var _ Store = (*FileStore)(nil)
