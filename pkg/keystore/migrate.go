package keystore

import "fmt"

// migratedFlagKey marks a completed migration. It lives in the legacy store:
// the flag must survive even when no credentials existed to migrate.
const migratedFlagKey = "dopo_keystore_migrated"

// MigrateOnce copies credentials out of the legacy plaintext store into the
// secure store and removes the legacy copies. It runs at most once: a marker
// persisted in the legacy store makes every later call a no-op.
//
// A key is removed from the legacy store only after the secure copy
// succeeded, so a partial failure can never lose a credential; the next run
// retries because the marker is written last.
func MigrateOnce(legacy *FileStore, secure Store, keys ...string) error {
	if done, ok := legacy.Retrieve(migratedFlagKey); ok && done == "true" {
		return nil
	}

	for _, key := range keys {
		value, ok := legacy.Retrieve(key)
		if !ok {
			continue
		}
		if err := secure.Save(key, value); err != nil {
			return fmt.Errorf("migrating %s: %w", key, err)
		}
		if err := legacy.Delete(key); err != nil {
			return fmt.Errorf("removing legacy %s: %w", key, err)
		}
	}

	if err := legacy.Save(migratedFlagKey, "true"); err != nil {
		return fmt.Errorf("recording migration: %w", err)
	}
	return nil
}
