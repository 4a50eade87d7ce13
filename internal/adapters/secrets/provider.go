// Package secrets implements core.SecretProvider over environment variables and
// mounted secret files. Values prefixed "v1:" are decrypted with the configured key.
package secrets

import (
	"errors"
	"fmt"
	"strings"

	"github.com/tophhie/pds-welcomer/internal/core"
	"github.com/tophhie/pds-welcomer/internal/data/cryptoutil"
)

// ErrNotFound is returned when a named secret is not set.
var ErrNotFound = errors.New("secret not found")

// Decryptor reverses cryptoutil.Encryptor.Encrypt.
type Decryptor interface {
	Decrypt(ciphertext string) ([]byte, error)
}

var (
	_ core.SecretProvider = (*EnvProvider)(nil)
	_ core.SecretProvider = (*FileProvider)(nil)
)

// reveal trims value and decrypts it when it carries a ciphertext prefix.
func reveal(name, value string, dec Decryptor) (string, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return "", fmt.Errorf("%s: %w", name, ErrNotFound)
	}
	if !cryptoutil.IsEncrypted(value) {
		return value, nil
	}
	if dec == nil {
		return "", fmt.Errorf("%s is encrypted but no encryption key is configured", name)
	}
	plain, err := dec.Decrypt(value)
	if err != nil {
		return "", fmt.Errorf("decrypt %s: %w", name, err)
	}
	return strings.TrimSpace(string(plain)), nil
}
