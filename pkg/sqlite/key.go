package sqlite

import (
	"crypto/rand"
	"fmt"
	"io"
	"os"
	"path/filepath"
)

// KeySize is the master key length in bytes (AES-256).
const KeySize = 32

// LoadOrCreateKey returns the master encryption key stored at path,
// generating a fresh random key with mode 0600 if the file does not
// exist yet. A key file of the wrong length is rejected rather than
// silently regenerated, since regenerating would orphan every stored
// credential.
func LoadOrCreateKey(path string) ([]byte, error) {
	key, err := os.ReadFile(path)
	if err == nil {
		if len(key) != KeySize {
			return nil, fmt.Errorf("key file %s: want %d bytes, have %d", path, KeySize, len(key))
		}
		return key, nil
	}
	if !os.IsNotExist(err) {
		return nil, fmt.Errorf("read key file %s: %w", path, err)
	}

	key = make([]byte, KeySize)
	if _, err := io.ReadFull(rand.Reader, key); err != nil {
		return nil, fmt.Errorf("generate key: %w", err)
	}

	if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
		return nil, fmt.Errorf("create key directory: %w", err)
	}
	if err := os.WriteFile(path, key, 0600); err != nil {
		return nil, fmt.Errorf("write key file %s: %w", path, err)
	}

	return key, nil
}
