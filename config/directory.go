package config

import (
	"strings"
	"time"
)

const (
	defaultListURL   = "https://api.tophhie.cloud/pds/repos"
	defaultAdminURL  = "https://tophhie.social/xrpc/com.atproto.admin.getAccountInfo"
	defaultAdminUser = "admin"
)

// DirectoryConfig describes the account listing and admin identity endpoints.
type DirectoryConfig struct {
	// ListURL returns the full repository listing for the PDS.
	ListURL string `env:"LIST_URL" envDefault:"https://api.tophhie.cloud/pds/repos"`

	// AdminURL resolves a single DID to its contact identity.
	AdminURL string `env:"ADMIN_URL" envDefault:"https://tophhie.social/xrpc/com.atproto.admin.getAccountInfo"`

	// AdminUser is the basic-auth user paired with the admin password secret.
	AdminUser string `env:"ADMIN_USER" envDefault:"admin"`

	// Timeout bounds each outbound directory request at the transport level.
	Timeout time.Duration `env:"TIMEOUT" envDefault:"30s"`
}

// Sanitize applies guardrails to directory configuration values.
func (d *DirectoryConfig) Sanitize() {
	if d.ListURL = strings.TrimSpace(d.ListURL); d.ListURL == "" {
		d.ListURL = defaultListURL
	}
	if d.AdminURL = strings.TrimSpace(d.AdminURL); d.AdminURL == "" {
		d.AdminURL = defaultAdminURL
	}
	if d.AdminUser = strings.TrimSpace(d.AdminUser); d.AdminUser == "" {
		d.AdminUser = defaultAdminUser
	}
	if d.Timeout < time.Second {
		d.Timeout = time.Second
	}
}
