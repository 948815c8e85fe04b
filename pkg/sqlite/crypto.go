package sqlite

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/sha256"
	"fmt"
	"io"

	"golang.org/x/crypto/hkdf"
)

// credentialKeyInfo binds the derived subkey to the credential column.
// Changing it invalidates every stored credential.
const credentialKeyInfo = "homeline-cloud/entry-credential/v1"

// newCredentialAEAD derives the credential cipher from the master key.
// The AES-256 key is an HKDF-SHA256 subkey so the master key itself
// never touches the data.
func newCredentialAEAD(masterKey []byte) (cipher.AEAD, error) {
	if len(masterKey) != KeySize {
		return nil, fmt.Errorf("master key: want %d bytes, have %d", KeySize, len(masterKey))
	}

	subkey := make([]byte, KeySize)
	kdf := hkdf.New(sha256.New, masterKey, nil, []byte(credentialKeyInfo))
	if _, err := io.ReadFull(kdf, subkey); err != nil {
		return nil, fmt.Errorf("derive credential key: %w", err)
	}

	block, err := aes.NewCipher(subkey)
	if err != nil {
		return nil, fmt.Errorf("aes.NewCipher: %w", err)
	}
	gcm, err := cipher.NewGCM(block)
	if err != nil {
		return nil, fmt.Errorf("cipher.NewGCM: %w", err)
	}
	return gcm, nil
}
