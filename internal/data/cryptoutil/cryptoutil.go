// Package cryptoutil encrypts secret values at rest with AES-256-GCM.
// Ciphertexts are base64 strings carrying a "v1:" version prefix.
package cryptoutil

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"strings"
)

// Encryptor defines an interface for encrypting/decrypting secrets.
type Encryptor interface {
	Encrypt(plaintext []byte) (string, error)
	Decrypt(ciphertext string) ([]byte, error)
}

// AESGCMEncryptor implements Encryptor using AES-256-GCM.
type AESGCMEncryptor struct {
	aead cipher.AEAD
}

// Versioned prefix to allow future key/algorithm rotations.
const secretCipherPrefixV1 = "v1:"

// IsEncrypted reports whether value carries a known ciphertext prefix.
func IsEncrypted(value string) bool {
	return strings.HasPrefix(value, secretCipherPrefixV1)
}

// DeriveKey turns an operator supplied key into 32 bytes.
// A 64 character hex string is decoded as-is; anything else is hashed with SHA-256.
func DeriveKey(key string) ([]byte, error) {
	key = strings.TrimSpace(key)
	if key == "" {
		return nil, errors.New("encryption key is required")
	}
	if decoded, err := hex.DecodeString(key); err == nil && len(decoded) == 32 {
		return decoded, nil
	}
	sum := sha256.Sum256([]byte(key))
	return sum[:], nil
}

// NewAESGCMEncryptor constructs a new AESGCMEncryptor. Key must be 32 bytes (AES-256).
func NewAESGCMEncryptor(key []byte) (*AESGCMEncryptor, error) {
	if len(key) != 32 {
		return nil, fmt.Errorf("aes-gcm key must be 32 bytes, got %d", len(key))
	}
	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, err
	}
	aead, err := cipher.NewGCM(block)
	if err != nil {
		return nil, err
	}
	return &AESGCMEncryptor{aead: aead}, nil
}

// Encrypt encrypts plaintext with a random nonce and returns a versioned base64 string.
func (e *AESGCMEncryptor) Encrypt(plaintext []byte) (string, error) {
	nonce := make([]byte, e.aead.NonceSize())
	if _, err := io.ReadFull(rand.Reader, nonce); err != nil {
		return "", err
	}
	// nonce||ciphertext
	sealed := e.aead.Seal(nonce, nonce, plaintext, nil)
	return secretCipherPrefixV1 + base64.StdEncoding.EncodeToString(sealed), nil
}

// Decrypt decrypts a versioned base64 string created by Encrypt.
func (e *AESGCMEncryptor) Decrypt(ciphertext string) ([]byte, error) {
	if !IsEncrypted(ciphertext) {
		prefix := ciphertext
		if len(prefix) > 3 {
			prefix = prefix[:3]
		}
		return nil, fmt.Errorf("unknown ciphertext version (prefix: %q)", prefix)
	}

	data, err := base64.StdEncoding.DecodeString(ciphertext[len(secretCipherPrefixV1):])
	if err != nil {
		return nil, fmt.Errorf("decode ciphertext: %w", err)
	}
	nonceSize := e.aead.NonceSize()
	if len(data) < nonceSize {
		return nil, errors.New("ciphertext too short")
	}
	return e.aead.Open(nil, data[:nonceSize], data[nonceSize:], nil)
}
