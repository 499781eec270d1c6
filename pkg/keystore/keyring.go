package keystore

import (
	"errors"
	"fmt"

	"github.com/zalando/go-keyring"
)

// KeyringStore persists credentials in the operating system's credential
// store (Keychain, Secret Service, Windows Credential Manager). Entries are
// scoped by service name; the main client and the share client open the same
// shared service name to read the same credentials.
type KeyringStore struct {
	service string
}

// NewKeyringStore creates a store scoped to the given service name.
func NewKeyringStore(service string) *KeyringStore {
	return &KeyringStore{service: service}
}

// Save stores value under key, replacing any existing entry. The platform
// store performs the replace atomically; a write failure is surfaced rather
// than ignored because a lost credential forces the user back through
// sign-in.
func (s *KeyringStore) Save(key, value string) error {
	if err := keyring.Set(s.service, key, value); err != nil {
		return fmt.Errorf("keyring save %s: %w", key, err)
	}
	return nil
}

// Retrieve returns the value for key, or false when absent or unreadable.
func (s *KeyringStore) Retrieve(key string) (string, bool) {
	value, err := keyring.Get(s.service, key)
	if err != nil {
		return "", false
	}
	return value, true
}

// Delete removes key. An absent key is not an error.
func (s *KeyringStore) Delete(key string) error {
	err := keyring.Delete(s.service, key)
	if err != nil && !errors.Is(err, keyring.ErrNotFound) {
		return fmt.Errorf("keyring delete %s: %w", key, err)
	}
	return nil
}

// Verify interface compliance.
var _ Store = (*KeyringStore)(nil)
