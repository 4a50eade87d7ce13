package config

import (
	"strings"
	"time"
)

// DispatchConfig contains welcome dispatch run configuration.
type DispatchConfig struct {
	// Interval is the time between scheduled runs.
	Interval time.Duration `env:"INTERVAL" envDefault:"1h"`

	// RunOnStart triggers one run immediately instead of waiting a full interval.
	RunOnStart bool `env:"RUN_ON_START" envDefault:"true"`

	// RetryFailed lets a "failed" record be retried on a later run.
	// When false any record, sent or failed, permanently suppresses a resend.
	RetryFailed bool `env:"RETRY_FAILED" envDefault:"false"`

	// AllowedDIDs restricts dispatch to the listed DIDs (comma-separated). Empty means all.
	AllowedDIDs []string `env:"ALLOWED_DIDS" envSeparator:","`

	// Filter is an optional JMESPath expression evaluated against each listing entry
	// ({"did","head","rev","active"}); entries yielding a falsy result are skipped.
	Filter string `env:"FILTER"`
}

// Sanitize applies guardrails to dispatch configuration values.
func (d *DispatchConfig) Sanitize() {
	if d.Interval < time.Minute {
		d.Interval = time.Minute
	}
	d.Filter = strings.TrimSpace(d.Filter)

	dids := make([]string, 0, len(d.AllowedDIDs))
	for _, did := range d.AllowedDIDs {
		if trimmed := strings.TrimSpace(did); trimmed != "" {
			dids = append(dids, trimmed)
		}
	}
	d.AllowedDIDs = dids
}
