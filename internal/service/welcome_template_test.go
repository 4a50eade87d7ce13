package service

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tophhie/pds-welcomer/internal/domain/model"
)

func TestWelcomeTemplate_RenderReplacesEveryToken(t *testing.T) {
	tpl, err := NewWelcomeTemplate(
		"<h1>Hi {{ACCOUNT_HANDLE}}</h1><p>{{ACCOUNT_HANDLE}} is {{ACCOUNT_DID}}</p><footer>{{ACCOUNT_DID}}</footer>",
	)
	require.NoError(t, err)

	got := tpl.Render(model.ContactIdentity{DID: "did:plc:abc123", Handle: "alice.tophhie.social"})

	assert.Equal(t,
		"<h1>Hi alice.tophhie.social</h1><p>alice.tophhie.social is did:plc:abc123</p><footer>did:plc:abc123</footer>",
		got,
	)
}

func TestWelcomeTemplate_RenderDoesNotEscape(t *testing.T) {
	tpl := MustNewWelcomeTemplate("<p>{{ACCOUNT_HANDLE}}</p>")

	got := tpl.Render(model.ContactIdentity{Handle: "<b>bob</b> & co"})

	assert.Equal(t, "<p><b>bob</b> & co</p>", got)
}

func TestWelcomeTemplate_RenderLeavesOtherTextAlone(t *testing.T) {
	body := "<p>{{ ACCOUNT_HANDLE }} {{account_did}} {{OTHER}}</p>"
	tpl := MustNewWelcomeTemplate(body)

	assert.Equal(t, body, tpl.Render(model.ContactIdentity{DID: "did:plc:x", Handle: "x"}))
	assert.Equal(t, body, tpl.String(), "rendering must not mutate the template")
}

func TestWelcomeTemplate_Validation(t *testing.T) {
	_, err := NewWelcomeTemplate("  \n ")
	assert.Error(t, err)

	assert.Panics(t, func() { MustNewWelcomeTemplate("") })

	tpl := MustNewWelcomeTemplate("<p>{{ACCOUNT_DID}}</p>")
	assert.Equal(t, []string{TokenAccountHandle}, tpl.MissingTokens())

	tpl = MustNewWelcomeTemplate("{{ACCOUNT_HANDLE}}{{ACCOUNT_DID}}")
	assert.Empty(t, tpl.MissingTokens())
}
