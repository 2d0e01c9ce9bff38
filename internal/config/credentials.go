package config

import (
	"fmt"
	"os"
	"path/filepath"
)

// WriteCredential writes a credential file with owner-only permissions,
// using a temp-file rename so readers never observe a partial write.
func WriteCredential(path string, content []byte) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("writing credential: %w", err)
	}
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, content, 0o600); err != nil {
		return fmt.Errorf("writing credential: %w", err)
	}
	if err := os.Rename(tmp, path); err != nil {
		return fmt.Errorf("writing credential: %w", err)
	}
	return nil
}

// ReadCredential returns the credential file contents, or nil when the
// file does not exist.
func ReadCredential(path string) ([]byte, error) {
	if !fileExists(path) {
		return nil, nil
	}
	return os.ReadFile(path)
}

// DeleteCredential removes the credential file. Returns false when there
// was nothing to delete.
func DeleteCredential(path string) bool {
	return os.Remove(path) == nil
}

func fileExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}
