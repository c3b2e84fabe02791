// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package session

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"golang.org/x/crypto/pbkdf2"

	"github.com/jeranaias/gradebook-tui/internal/util"
)

// =============================================================================
// TOKEN-AT-REST ENCRYPTION
// =============================================================================

// The original browser client kept the token in localStorage in
// plaintext. A file on a shared machine deserves better: the token file
// is sealed with AES-256-GCM under a key stretched from random seed
// material that never leaves <dir>/session.key (0600).

const (
	// encryptedPrefix marks a sealed token value:
	// ENC:base64(nonce|ciphertext|tag)
	encryptedPrefix = "ENC:"

	keySize   = 32
	nonceSize = 12
	seedSize  = 32

	// kdfIterations for PBKDF2-SHA-256. The input is already random seed
	// material rather than a password, so the count only needs to bind
	// the derivation, not slow an attacker down.
	kdfIterations = 4096

	keyFileName = "session.key"
)

var (
	// ErrInvalidCiphertext indicates the sealed token format is invalid.
	ErrInvalidCiphertext = errors.New("invalid sealed token format")
)

// kdfContext binds derived keys to their purpose.
var kdfContext = []byte("gradebook-session-token-v1")

// tokenCipher seals and opens the persisted bearer token.
type tokenCipher struct {
	aead cipher.AEAD
}

// newTokenCipher loads or creates the seed file under dir and derives
// the AEAD from it.
func newTokenCipher(dir string) (*tokenCipher, error) {
	seed, err := loadOrCreateSeed(filepath.Join(dir, keyFileName))
	if err != nil {
		return nil, err
	}
	defer zeroBytes(seed)

	key := pbkdf2.Key(seed, kdfContext, kdfIterations, keySize, sha256.New)
	defer zeroBytes(key)

	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize cipher: %w", err)
	}
	aead, err := cipher.NewGCM(block)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize cipher: %w", err)
	}
	return &tokenCipher{aead: aead}, nil
}

// Seal encrypts a token for persistence.
func (c *tokenCipher) Seal(token string) (string, error) {
	nonce := make([]byte, nonceSize)
	if _, err := io.ReadFull(rand.Reader, nonce); err != nil {
		return "", fmt.Errorf("failed to generate nonce: %w", err)
	}
	sealed := c.aead.Seal(nonce, nonce, []byte(token), nil)
	return encryptedPrefix + base64.StdEncoding.EncodeToString(sealed), nil
}

// Open decrypts a persisted token value. Values without the encryption
// prefix are returned as-is, so a store created with encryption enabled
// can still hydrate a token persisted before it was turned on.
func (c *tokenCipher) Open(value string) (string, error) {
	if !strings.HasPrefix(value, encryptedPrefix) {
		return value, nil
	}
	raw, err := base64.StdEncoding.DecodeString(strings.TrimPrefix(value, encryptedPrefix))
	if err != nil {
		return "", ErrInvalidCiphertext
	}
	if len(raw) < nonceSize {
		return "", ErrInvalidCiphertext
	}
	plain, err := c.aead.Open(nil, raw[:nonceSize], raw[nonceSize:], nil)
	if err != nil {
		return "", ErrInvalidCiphertext
	}
	return string(plain), nil
}

// loadOrCreateSeed reads the seed file, creating it with fresh random
// material on first use.
func loadOrCreateSeed(path string) ([]byte, error) {
	if data, err := os.ReadFile(path); err == nil {
		if len(data) == seedSize {
			return data, nil
		}
		// Wrong size means a corrupt or foreign file; regenerate. Any
		// token sealed under it is unreadable anyway.
	}

	seed := make([]byte, seedSize)
	if _, err := io.ReadFull(rand.Reader, seed); err != nil {
		return nil, fmt.Errorf("failed to generate key material: %w", err)
	}
	if err := util.AtomicWriteFile(path, seed, 0600); err != nil {
		return nil, fmt.Errorf("failed to persist key material: %w", err)
	}
	return seed, nil
}

// zeroBytes zeros sensitive byte slices.
func zeroBytes(b []byte) {
	for i := range b {
		b[i] = 0
	}
}
