package config

import (
	"errors"
	"os"
	"strings"
)

// AppConfig is the main application configuration struct that composes
// domain-specific configuration from separate files.
//
// Configuration is loaded from environment variables using the
// github.com/caarlos0/env library. See individual domain config
// files for details on available environment variables:
//   - directory.go: Listing and admin identity API configuration
//   - email.go: Email provider configuration
//   - secrets.go: Run credential configuration
//   - database.go: Dispatch record store configuration
//   - dispatch.go: Dispatch run and scheduling configuration
//   - observability.go: Metrics and failure notification configuration
type AppConfig struct {
	// IsDev controls development mode behavior (text logs, debug level).
	// Set DEV=true or NODE_ENV=development for development mode.
	IsDev bool `env:"DEV" envDefault:"false"`

	// TemplatePath overrides the embedded welcome template with a file on disk.
	TemplatePath string `env:"TEMPLATE_PATH"`

	Directory DirectoryConfig `envPrefix:"DIRECTORY_"`
	Email     EmailConfig     `envPrefix:"EMAIL_"`
	Secrets   SecretsConfig   `envPrefix:"SECRETS_"`
	Store     StoreConfig     `envPrefix:"STORE_"`
	Redis     RedisConfig     `envPrefix:"REDIS_"`
	Postgres  DBConfig        `envPrefix:"DB_"`
	Dispatch  DispatchConfig  `envPrefix:"DISPATCH_"`

	// Observability configuration
	Observability ObservabilityConfig
}

// Sanitize applies guardrails to configuration values loaded from env.
// This should be called after loading configuration from environment variables.
func (c *AppConfig) Sanitize() {
	c.TemplatePath = strings.TrimSpace(c.TemplatePath)

	c.Directory.Sanitize()
	c.Email.Sanitize()
	c.Secrets.Sanitize()
	c.Store.Sanitize()
	c.Dispatch.Sanitize()
	c.Observability.Sanitize()

	// Check NODE_ENV for dev mode
	c.detectDevMode()
}

// Validate reports configuration that cannot be defaulted.
func (c *AppConfig) Validate() error {
	var errs []error
	if err := c.Email.Validate(); err != nil {
		errs = append(errs, err)
	}
	if err := c.Store.Validate(); err != nil {
		errs = append(errs, err)
	}
	if err := c.Secrets.Validate(); err != nil {
		errs = append(errs, err)
	}
	return errors.Join(errs...)
}

// detectDevMode checks both DEV and NODE_ENV environment variables.
// This is called by Sanitize() to ensure IsDev is set correctly.
func (c *AppConfig) detectDevMode() {
	if !c.IsDev {
		nodeEnv := strings.ToLower(os.Getenv("NODE_ENV"))
		c.IsDev = nodeEnv == "development" || nodeEnv == "dev"
	}
}
