package config

import (
	"fmt"
	"strings"
)

// SecretsProvider selects where run credentials are read from.
type SecretsProvider string

const (
	// SecretsProviderEnv reads each secret from an environment variable at run time.
	SecretsProviderEnv SecretsProvider = "env"
	// SecretsProviderFile reads each secret from a file under SecretsConfig.Dir (mounted secrets).
	SecretsProviderFile SecretsProvider = "file"
)

// SecretsConfig describes how the admin password and signing key are fetched.
// Both are resolved once per run, never cached across runs.
type SecretsConfig struct {
	Provider SecretsProvider `env:"PROVIDER" envDefault:"env"`

	// Dir is the directory holding one file per secret when Provider=file.
	Dir string `env:"DIR" envDefault:"/var/run/secrets/welcomer"`

	// AdminPasswordName is the env var or file name holding the admin password.
	AdminPasswordName string `env:"ADMIN_PASSWORD_NAME" envDefault:"ADMIN_PWD"`

	// AccessKeyName is the env var or file name holding the base64 ACS access key.
	AccessKeyName string `env:"ACCESS_KEY_NAME" envDefault:"ACS_ACCESS_KEY"`

	// EncryptionKey decrypts values stored with the "v1:" AES-GCM prefix.
	// Plain values pass through untouched.
	EncryptionKey string `env:"ENCRYPTION_KEY"`
}

// Sanitize applies guardrails to secrets configuration values.
func (s *SecretsConfig) Sanitize() {
	s.Provider = SecretsProvider(strings.ToLower(strings.TrimSpace(string(s.Provider))))
	if s.Provider == "" {
		s.Provider = SecretsProviderEnv
	}
	s.Dir = strings.TrimSpace(s.Dir)
	if s.AdminPasswordName = strings.TrimSpace(s.AdminPasswordName); s.AdminPasswordName == "" {
		s.AdminPasswordName = "ADMIN_PWD"
	}
	if s.AccessKeyName = strings.TrimSpace(s.AccessKeyName); s.AccessKeyName == "" {
		s.AccessKeyName = "ACS_ACCESS_KEY"
	}
}

// Validate rejects unknown providers.
func (s *SecretsConfig) Validate() error {
	switch s.Provider {
	case SecretsProviderEnv:
		return nil
	case SecretsProviderFile:
		if s.Dir == "" {
			return fmt.Errorf("SECRETS_DIR is required when SECRETS_PROVIDER=%s", s.Provider)
		}
		return nil
	default:
		return fmt.Errorf("invalid SECRETS_PROVIDER %q (valid options: env, file)", s.Provider)
	}
}
