package keystore

import "sync"

// MemoryStore implements Store with an in-process map. Used in tests and as a
// fallback when no platform credential store is available.
type MemoryStore struct {
	mu      sync.RWMutex
	entries map[string]string
}

// NewMemoryStore creates an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{entries: make(map[string]string)}
}

// Save stores value under key, replacing any existing entry.
func (s *MemoryStore) Save(key, value string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.entries[key] = value
	return nil
}

// Retrieve returns the value for key, or false when absent.
func (s *MemoryStore) Retrieve(key string) (string, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	value, ok := s.entries[key]
	return value, ok
}

// Delete removes key. An absent key is not an error.
func (s *MemoryStore) Delete(key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.entries, key)
	return nil
}

// Verify interface compliance.
var _ Store = (*MemoryStore)(nil)
