// Package secrets protects stored API keys with a passphrase.
//
// Values are sealed with ChaCha20-Poly1305 under a key derived by
// PBKDF2-HMAC-SHA256 and encoded as base64(salt || nonce || ciphertext).
package secrets

import (
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"errors"
	"fmt"
	"io"
	"strings"

	"golang.org/x/crypto/chacha20poly1305"
	"golang.org/x/crypto/pbkdf2"
)

// Prefix marks an encrypted value inside a settings file.
const Prefix = "enc:"

const (
	iterations = 100_000
	keyLen     = chacha20poly1305.KeySize
	saltLen    = 16
	nonceLen   = chacha20poly1305.NonceSize
)

var ErrDecrypt = errors.New("decrypt secret")

func deriveKey(passphrase string, salt []byte) []byte {
	return pbkdf2.Key([]byte(passphrase), salt, iterations, keyLen, sha256.New)
}

// Encrypt seals plaintext and returns the base64 payload without Prefix.
func Encrypt(plaintext, passphrase string) (string, error) {
	if passphrase == "" {
		return "", errors.New("passphrase must not be empty")
	}

	buf := make([]byte, saltLen+nonceLen, saltLen+nonceLen+len(plaintext)+chacha20poly1305.Overhead)
	if _, err := io.ReadFull(rand.Reader, buf); err != nil {
		return "", fmt.Errorf("generate salt and nonce: %w", err)
	}
	salt, nonce := buf[:saltLen], buf[saltLen:]

	aead, err := chacha20poly1305.New(deriveKey(passphrase, salt))
	if err != nil {
		return "", fmt.Errorf("create cipher: %w", err)
	}
	sealed := aead.Seal(buf, nonce, []byte(plaintext), nil)
	return base64.StdEncoding.EncodeToString(sealed), nil
}

func Decrypt(encoded, passphrase string) (string, error) {
	data, err := base64.StdEncoding.DecodeString(strings.TrimSpace(encoded))
	if err != nil {
		return "", fmt.Errorf("%w: base64 decode: %v", ErrDecrypt, err)
	}
	if len(data) < saltLen+nonceLen+chacha20poly1305.Overhead {
		return "", fmt.Errorf("%w: ciphertext too short", ErrDecrypt)
	}
	salt, nonce, sealed := data[:saltLen], data[saltLen:saltLen+nonceLen], data[saltLen+nonceLen:]

	aead, err := chacha20poly1305.New(deriveKey(passphrase, salt))
	if err != nil {
		return "", fmt.Errorf("create cipher: %w", err)
	}
	plaintext, err := aead.Open(nil, nonce, sealed, nil)
	if err != nil {
		return "", fmt.Errorf("%w: wrong passphrase or corrupted value", ErrDecrypt)
	}
	return string(plaintext), nil
}

// IsEncrypted reports whether value carries Prefix.
func IsEncrypted(value string) bool {
	return strings.HasPrefix(value, Prefix)
}

// Reveal decrypts a Prefix-marked value and returns anything else unchanged.
func Reveal(value, passphrase string) (string, error) {
	if !IsEncrypted(value) {
		return value, nil
	}
	return Decrypt(strings.TrimPrefix(value, Prefix), passphrase)
}
