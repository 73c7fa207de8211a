// Copyright 2025 The imagegate authors
// Licensed under the EUPL-1.2

// Package keycipher encrypts user API keys at rest with AES-256-GCM. The
// cipher key is derived from a process-wide secret; without a usable secret
// the service is disabled and every operation fails closed.
package keycipher

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"errors"
	"io"
	"regexp"

	"golang.org/x/crypto/hkdf"
)

const (
	// MinSecretLength is the shortest secret accepted for key derivation.
	MinSecretLength = 16

	nonceSize = 12
)

var (
	// ErrCipherDisabled is returned when no usable encryption secret is
	// configured. Callers treat the feature as unavailable, never as broken.
	ErrCipherDisabled = errors.New("keycipher: encryption secret not configured")

	// ErrDecryptFailed is the single failure returned for every bad
	// decryption: wrong IV, tampered ciphertext, malformed input. The cause
	// is deliberately not distinguishable.
	ErrDecryptFailed = errors.New("keycipher: decryption failed")

	googleAPIKeyRe = regexp.MustCompile(`^AIza[A-Za-z0-9_-]{31,41}$`)
)

// Cipher encrypts and decrypts short secrets with a key derived from the
// configured process secret.
type Cipher struct {
	key []byte
}

// New derives the AES-256 key from secret via HKDF-SHA256. A missing or too
// short secret yields a disabled cipher rather than an error; the caller
// decides whether that is fatal.
func New(secret string) *Cipher {
	if len(secret) < MinSecretLength {
		return &Cipher{}
	}

	key := make([]byte, 32)
	kdf := hkdf.New(sha256.New, []byte(secret), nil, []byte("imagegate/api-key-v1"))
	if _, err := io.ReadFull(kdf, key); err != nil {
		return &Cipher{}
	}
	return &Cipher{key: key}
}

// Enabled reports whether a usable secret is configured.
func (c *Cipher) Enabled() bool {
	return len(c.key) == 32
}

// Encrypt encrypts plaintext with a fresh random nonce. Two calls on the
// same plaintext produce different ciphertext and different IVs. Fails
// closed with ErrCipherDisabled when no secret is configured.
func (c *Cipher) Encrypt(plaintext string) (encrypted, iv string, err error) {
	if !c.Enabled() {
		return "", "", ErrCipherDisabled
	}

	block, err := aes.NewCipher(c.key)
	if err != nil {
		return "", "", ErrCipherDisabled
	}
	aesgcm, err := cipher.NewGCM(block)
	if err != nil {
		return "", "", ErrCipherDisabled
	}

	nonce := make([]byte, nonceSize)
	if _, err := rand.Read(nonce); err != nil {
		return "", "", ErrCipherDisabled
	}

	ciphertext := aesgcm.Seal(nil, nonce, []byte(plaintext), nil)

	return base64.StdEncoding.EncodeToString(ciphertext),
		base64.StdEncoding.EncodeToString(nonce), nil
}

// Decrypt reverses Encrypt. Every failure mode collapses to
// ErrDecryptFailed so the error carries no oracle about what went wrong.
func (c *Cipher) Decrypt(encrypted, iv string) (string, error) {
	if !c.Enabled() {
		return "", ErrDecryptFailed
	}

	ciphertext, err := base64.StdEncoding.DecodeString(encrypted)
	if err != nil {
		return "", ErrDecryptFailed
	}
	nonce, err := base64.StdEncoding.DecodeString(iv)
	if err != nil || len(nonce) != nonceSize {
		return "", ErrDecryptFailed
	}

	block, err := aes.NewCipher(c.key)
	if err != nil {
		return "", ErrDecryptFailed
	}
	aesgcm, err := cipher.NewGCM(block)
	if err != nil {
		return "", ErrDecryptFailed
	}

	plaintext, err := aesgcm.Open(nil, nonce, ciphertext, nil)
	if err != nil {
		return "", ErrDecryptFailed
	}
	return string(plaintext), nil
}

// KeyHint returns a redacted display form of a key: "****" plus its last
// four characters, or just "****" for keys shorter than four characters.
func KeyHint(key string) string {
	if len(key) < 4 {
		return "****"
	}
	return "****" + key[len(key)-4:]
}

// IsValidGoogleAPIKey reports whether key is structurally a Google API key:
// "AIza" prefix, 35 to 45 characters total, body of [A-Za-z0-9_-].
func IsValidGoogleAPIKey(key string) bool {
	return googleAPIKeyRe.MatchString(key)
}
