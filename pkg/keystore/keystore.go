// Package keystore provides credential storage for the client. The Store
// interface abstracts over the platform secure credential store (keyring.go),
// the legacy plaintext preferences file it replaces (file.go), and an
// in-memory implementation for tests (memory.go).
//
// The main client is the only writer; the share client opens the shared
// namespace read-only (Retrieve only), so the two processes never race on
// writes.
package keystore

// Well-known credential keys.
const (
	// AccessTokenKey stores the short-lived bearer token.
	AccessTokenKey = "dopo_access_token"

	// RefreshTokenKey stores the long-lived refresh token.
	RefreshTokenKey = "dopo_refresh_token"
)

// Store persists short secret strings under fixed keys.
type Store interface {
	// Save stores value under key, atomically replacing any existing entry.
	Save(key, value string) error

	// Retrieve returns the value for key. The second return is false when
	// the key is absent or the lookup failed for any reason; Retrieve never
	// treats "not found" as an error.
	Retrieve(key string) (string, bool)

	// Delete removes key. Deleting an absent key is not an error.
	Delete(key string) error
}
