package crypto

import (
	"crypto/cipher"
	"crypto/rand"
	"crypto/sha256"
	"crypto/subtle"
	"errors"
	"fmt"

	"golang.org/x/crypto/chacha20poly1305"
)

const (
	KeySize   = chacha20poly1305.KeySize   // ChaCha20-Poly1305 key size
	NonceSize = chacha20poly1305.NonceSize // 96-bit nonce
	TagSize   = chacha20poly1305.Overhead  // Poly1305 authentication tag size
)

var (
	ErrInvalidKey = errors.New("invalid key size")
	ErrAuthFailed = errors.New("authentication failed")
)

// DeriveKey derives the vault key from a master password.
// The key is the SHA-256 digest of the password bytes.
func DeriveKey(password []byte) []byte {
	sum := sha256.Sum256(password)
	key := make([]byte, KeySize)
	copy(key, sum[:])
	ClearBytes(sum[:])
	return key
}

// Encryptor provides authenticated encryption with caller-supplied nonces
type Encryptor struct {
	key  []byte
	aead cipher.AEAD
}

// NewEncryptor creates a new encryptor with the given key
func NewEncryptor(key []byte) (*Encryptor, error) {
	if len(key) != KeySize {
		return nil, fmt.Errorf("%w: got %d bytes, want %d", ErrInvalidKey, len(key), KeySize)
	}

	aead, err := chacha20poly1305.New(key)
	if err != nil {
		return nil, fmt.Errorf("failed to create cipher: %w", err)
	}

	return &Encryptor{
		key:  key,
		aead: aead,
	}, nil
}

// Encrypt seals plaintext under the given nonce.
// The nonce must be exactly NonceSize bytes.
func (e *Encryptor) Encrypt(nonce, plaintext []byte) []byte {
	mustNonce(nonce)
	return e.aead.Seal(nil, nonce, plaintext, nil)
}

// Decrypt opens ciphertext sealed under the given nonce.
// Any tag mismatch, whether from a wrong key or tampered data, yields ErrAuthFailed.
func (e *Encryptor) Decrypt(nonce, ciphertext []byte) ([]byte, error) {
	mustNonce(nonce)
	if len(ciphertext) < TagSize {
		return nil, ErrAuthFailed
	}

	plaintext, err := e.aead.Open(nil, nonce, ciphertext, nil)
	if err != nil {
		return nil, ErrAuthFailed
	}

	return plaintext, nil
}

// Destroy clears the encryptor's key from memory
func (e *Encryptor) Destroy() {
	ClearBytes(e.key)
}

func mustNonce(nonce []byte) {
	if len(nonce) != NonceSize {
		panic(fmt.Sprintf("crypto: nonce must be %d bytes, got %d", NonceSize, len(nonce)))
	}
}

// GenerateNonce returns a fresh random nonce
func GenerateNonce() ([]byte, error) {
	return GenerateRandom(NonceSize)
}

// ClearBytes securely clears a byte slice
func ClearBytes(b []byte) {
	for i := range b {
		b[i] = 0
	}
}

// ConstantTimeCompare performs a constant-time comparison of two byte slices
func ConstantTimeCompare(a, b []byte) bool {
	return subtle.ConstantTimeCompare(a, b) == 1
}

// GenerateRandom generates n random bytes
func GenerateRandom(n int) ([]byte, error) {
	b := make([]byte, n)
	if _, err := rand.Read(b); err != nil {
		return nil, fmt.Errorf("failed to generate random bytes: %w", err)
	}
	return b, nil
}
