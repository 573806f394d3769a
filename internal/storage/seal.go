// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package storage

import (
	"bytes"
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

	"golang.org/x/crypto/pbkdf2"

	"github.com/jeranaias/qna-tui/internal/util"
)

// SealedPrefix marks a sealed state file (format: QNA1:base64(nonce|ciphertext|tag)).
const SealedPrefix = "QNA1:"

const (
	// nonceSize is the AES-GCM nonce size (12 bytes / 96 bits).
	nonceSize = 12
	// keySize is the AES-256 key size.
	keySize = 32
	// secretSize is the size of the random machine secret.
	secretSize = 32
	// saltSize is the size of the key-derivation salt.
	saltSize = 32
	// pbkdf2Iterations follows the OWASP 2023 recommendation for PBKDF2-SHA-256.
	pbkdf2Iterations = 600000
)

var (
	// ErrUnsealFailed indicates the sealed state could not be authenticated.
	// Callers treat this as absent state, not as a fatal error.
	ErrUnsealFailed = errors.New("unseal failed: authentication tag mismatch")

	// errInvalidSealed indicates the sealed payload format is invalid.
	errInvalidSealed = errors.New("invalid sealed payload")
)

// zeroBytes zeros sensitive byte slices.
// SECURITY: Zero key material to prevent memory disclosure via crash dumps.
func zeroBytes(b []byte) {
	for i := range b {
		b[i] = 0
	}
}

// Sealer encrypts the state file at rest with AES-256-GCM.
//
// The key derives from a random per-machine secret via PBKDF2-SHA-256. This
// is theft-of-file protection, not theft-of-machine protection: anyone who
// can read the secret can unseal the state, but a copied or backed-up
// state.json alone is useless.
type Sealer struct {
	aead cipher.AEAD
}

// NewSealer creates a sealer for the given state directory, generating the
// machine secret and salt on first use.
func NewSealer(dir string) (*Sealer, error) {
	secret, err := loadOrCreate(filepath.Join(dir, "state.key"), secretSize)
	if err != nil {
		return nil, fmt.Errorf("failed to load machine secret: %w", err)
	}
	defer zeroBytes(secret)

	salt, err := loadOrCreate(filepath.Join(dir, "state.salt"), saltSize)
	if err != nil {
		return nil, fmt.Errorf("failed to load key salt: %w", err)
	}

	key := pbkdf2.Key(secret, salt, pbkdf2Iterations, keySize, sha256.New)
	defer zeroBytes(key)

	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, fmt.Errorf("failed to create AES cipher: %w", err)
	}
	aead, err := cipher.NewGCM(block)
	if err != nil {
		return nil, fmt.Errorf("failed to create GCM cipher: %w", err)
	}

	return &Sealer{aead: aead}, nil
}

// loadOrCreate reads a random key-material file, generating it on first use.
func loadOrCreate(path string, size int) ([]byte, error) {
	data, err := os.ReadFile(path)
	if err == nil && len(data) == size {
		return data, nil
	}

	data = make([]byte, size)
	if _, err := io.ReadFull(rand.Reader, data); err != nil {
		return nil, fmt.Errorf("failed to generate key material: %w", err)
	}
	// RELIABILITY: Atomic write with fsync prevents data loss on crash
	if err := util.AtomicWriteFile(path, data, 0600); err != nil {
		return nil, err
	}
	return data, nil
}

// IsSealed reports whether a state payload is sealed.
func IsSealed(data []byte) bool {
	return bytes.HasPrefix(data, []byte(SealedPrefix))
}

// Seal encrypts a plaintext state document.
// Output: QNA1:base64(nonce || ciphertext || tag)
func (s *Sealer) Seal(plaintext []byte) ([]byte, error) {
	nonce := make([]byte, nonceSize)
	if _, err := io.ReadFull(rand.Reader, nonce); err != nil {
		return nil, fmt.Errorf("failed to generate nonce: %w", err)
	}

	ciphertext := s.aead.Seal(nonce, nonce, plaintext, nil)

	out := make([]byte, 0, len(SealedPrefix)+base64.StdEncoding.EncodedLen(len(ciphertext)))
	out = append(out, SealedPrefix...)
	out = base64.StdEncoding.AppendEncode(out, ciphertext)
	return out, nil
}

// Unseal decrypts a sealed state document.
func (s *Sealer) Unseal(sealed []byte) ([]byte, error) {
	if !IsSealed(sealed) {
		return nil, errInvalidSealed
	}

	ciphertext, err := base64.StdEncoding.AppendDecode(nil, sealed[len(SealedPrefix):])
	if err != nil {
		return nil, fmt.Errorf("%w: %v", errInvalidSealed, err)
	}
	if len(ciphertext) < nonceSize {
		return nil, errInvalidSealed
	}

	nonce := ciphertext[:nonceSize]
	plaintext, err := s.aead.Open(nil, nonce, ciphertext[nonceSize:], nil)
	if err != nil {
		return nil, ErrUnsealFailed
	}
	return plaintext, nil
}
