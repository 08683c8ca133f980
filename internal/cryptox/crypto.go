// Package cryptox seals small secrets (such as the identity provider refresh
// token) before they are written to the local database.
//
// Keys are derived with Argon2id from a per-installation device secret; the
// payload is sealed with XChaCha20-Poly1305 and the random nonce is stored as
// a prefix of the sealed blob.
package cryptox

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/dmitrijs2005/studysync/internal/common"
	"golang.org/x/crypto/argon2"
	"golang.org/x/crypto/chacha20poly1305"
)

const (
	saltSize   = 16
	secretSize = 32
)

// ErrMalformed is returned by Open when the sealed blob is too short to hold
// a nonce and an authentication tag.
var ErrMalformed = errors.New("sealed value is malformed")

// DeriveKey stretches secret with salt into a 32-byte key.
func DeriveKey(secret, salt []byte) []byte {
	return argon2.IDKey(secret, salt, 1, 64*1024, 4, chacha20poly1305.KeySize)
}

// Seal encrypts plaintext with key and returns nonce||ciphertext.
func Seal(plaintext, key []byte) ([]byte, error) {
	aead, err := chacha20poly1305.NewX(key)
	if err != nil {
		return nil, err
	}
	nonce := common.GenerateRandByteArray(aead.NonceSize())
	return aead.Seal(nonce, nonce, plaintext, nil), nil
}

// Open reverses Seal.
func Open(sealed, key []byte) ([]byte, error) {
	aead, err := chacha20poly1305.NewX(key)
	if err != nil {
		return nil, err
	}
	if len(sealed) < aead.NonceSize()+aead.Overhead() {
		return nil, ErrMalformed
	}
	nonce, ciphertext := sealed[:aead.NonceSize()], sealed[aead.NonceSize():]
	return aead.Open(nil, nonce, ciphertext, nil)
}

// LoadDeviceKey reads the device secret stored at path, creating it on first
// use, and returns the derived sealing key.
func LoadDeviceKey(path string) ([]byte, error) {
	data, err := os.ReadFile(path)
	switch {
	case errors.Is(err, os.ErrNotExist):
		data = common.GenerateRandByteArray(saltSize + secretSize)
		if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
			return nil, fmt.Errorf("mkdir for device key: %w", err)
		}
		if err := os.WriteFile(path, data, 0o600); err != nil {
			return nil, fmt.Errorf("write device key: %w", err)
		}
	case err != nil:
		return nil, fmt.Errorf("read device key: %w", err)
	}

	if len(data) != saltSize+secretSize {
		return nil, ErrMalformed
	}
	defer common.WipeByteArray(data)

	return DeriveKey(data[saltSize:], data[:saltSize]), nil
}
