package bootstrap

import (
	"fmt"
	"log/slog"
	"strings"

	"github.com/tophhie/pds-welcomer/internal/adapters/secrets"
	"github.com/tophhie/pds-welcomer/internal/data/cryptoutil"
)

// CreateDecryptor builds the AES-GCM decryptor for "v1:" secret values.
// It returns (nil, nil) when no key is configured; encrypted values then fail loudly at read time.
//
//nolint:ireturn // a nil interface signals "no decryption" to the secret providers.
func CreateDecryptor(key string, logger *slog.Logger) (secrets.Decryptor, error) {
	if strings.TrimSpace(key) == "" {
		if logger != nil {
			logger.Debug("secrets encryption key not set, encrypted values are unsupported")
		}
		return nil, nil
	}

	enc, err := CreateEncryptor(key)
	if err != nil {
		return nil, err
	}
	return enc, nil
}

// CreateEncryptor creates an AES-GCM encryptor from the provided key.
// If the key is a 64 character hex string it is decoded, otherwise it is hashed to 32 bytes.
func CreateEncryptor(key string) (*cryptoutil.AESGCMEncryptor, error) {
	keyBytes, err := cryptoutil.DeriveKey(key)
	if err != nil {
		return nil, fmt.Errorf("derive encryption key: %w", err)
	}
	enc, err := cryptoutil.NewAESGCMEncryptor(keyBytes)
	if err != nil {
		return nil, fmt.Errorf("create encryptor: %w", err)
	}
	return enc, nil
}
