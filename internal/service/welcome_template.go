package service

import (
	"errors"
	"fmt"
	"strings"

	"github.com/tophhie/pds-welcomer/internal/domain/model"
)

// Template tokens substituted per account.
const (
	TokenAccountHandle = "{{ACCOUNT_HANDLE}}"
	TokenAccountDID    = "{{ACCOUNT_DID}}"
)

// WelcomeTemplate is an immutable HTML body with account placeholders.
type WelcomeTemplate struct {
	html string
}

// NewWelcomeTemplate wraps html. It rejects an empty body; a body without tokens is
// allowed but reported by MissingTokens so callers can warn about it.
func NewWelcomeTemplate(html string) (*WelcomeTemplate, error) {
	if strings.TrimSpace(html) == "" {
		return nil, errors.New("welcome template is empty")
	}
	return &WelcomeTemplate{html: html}, nil
}

// MissingTokens lists the placeholders the template never references.
func (t *WelcomeTemplate) MissingTokens() []string {
	var missing []string
	for _, token := range []string{TokenAccountHandle, TokenAccountDID} {
		if !strings.Contains(t.html, token) {
			missing = append(missing, token)
		}
	}
	return missing
}

// Render replaces every occurrence of both tokens. Values are inserted verbatim, without escaping.
func (t *WelcomeTemplate) Render(identity model.ContactIdentity) string {
	return strings.NewReplacer(
		TokenAccountHandle, identity.Handle,
		TokenAccountDID, identity.DID,
	).Replace(t.html)
}

// String returns the raw template.
func (t *WelcomeTemplate) String() string {
	return t.html
}

// MustNewWelcomeTemplate is NewWelcomeTemplate for embedded assets known to be valid.
func MustNewWelcomeTemplate(html string) *WelcomeTemplate {
	tpl, err := NewWelcomeTemplate(html)
	if err != nil {
		panic(fmt.Sprintf("invalid welcome template: %v", err))
	}
	return tpl
}
