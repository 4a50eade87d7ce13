package config

import (
	"errors"
	"strings"
	"time"
)

const (
	defaultEmailSubject    = "Welcome to Tophhie Social!"
	defaultEmailReplyTo    = "help@tophhie.social"
	defaultEmailAPIVersion = "2025-09-01"
)

// EmailConfig contains Azure Communication Services email configuration.
type EmailConfig struct {
	// Endpoint is the ACS resource endpoint, e.g. https://<name>.communication.azure.com.
	Endpoint string `env:"ENDPOINT"`

	// Sender is the verified sender address (MailFrom) on the ACS domain.
	Sender string `env:"SENDER"`

	Subject    string        `env:"SUBJECT"     envDefault:"Welcome to Tophhie Social!"`
	ReplyTo    string        `env:"REPLY_TO"    envDefault:"help@tophhie.social"`
	APIVersion string        `env:"API_VERSION" envDefault:"2025-09-01"`
	Timeout    time.Duration `env:"TIMEOUT"     envDefault:"30s"`
}

// Sanitize applies guardrails to email configuration values.
func (e *EmailConfig) Sanitize() {
	// Trailing slashes would produce "//emails:send" and break the signed path.
	e.Endpoint = strings.TrimRight(strings.TrimSpace(e.Endpoint), "/")
	e.Sender = strings.TrimSpace(e.Sender)
	if e.Subject = strings.TrimSpace(e.Subject); e.Subject == "" {
		e.Subject = defaultEmailSubject
	}
	if e.ReplyTo = strings.TrimSpace(e.ReplyTo); e.ReplyTo == "" {
		e.ReplyTo = defaultEmailReplyTo
	}
	if e.APIVersion = strings.TrimSpace(e.APIVersion); e.APIVersion == "" {
		e.APIVersion = defaultEmailAPIVersion
	}
	if e.Timeout < time.Second {
		e.Timeout = time.Second
	}
}

// Validate reports missing required email settings.
func (e *EmailConfig) Validate() error {
	var errs []error
	if e.Endpoint == "" {
		errs = append(errs, errors.New("EMAIL_ENDPOINT is required"))
	}
	if e.Sender == "" {
		errs = append(errs, errors.New("EMAIL_SENDER is required"))
	}
	return errors.Join(errs...)
}
