// Package acs sends email through Azure Communication Services using
// HMAC-SHA256 signed requests.
package acs

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"github.com/tophhie/pds-welcomer/internal/core"
	"github.com/tophhie/pds-welcomer/internal/domain/model"
	apperrors "github.com/tophhie/pds-welcomer/internal/errors"
)

const authorizationPrefix = "HMAC-SHA256 SignedHeaders=x-ms-date;host;x-ms-content-sha256&Signature="

// Signer produces the x-ms-date, x-ms-content-sha256 and Authorization values for a request.
// It is pure given its clock.
type Signer struct {
	clock core.Clock
}

// NewSigner creates a Signer reading timestamps from clock.
func NewSigner(clock core.Clock) *Signer {
	return &Signer{clock: clock}
}

// Sign authenticates a request for method and rawURL carrying body, keyed by the base64 secret.
// Errors are *errors.SigningError.
func (s *Signer) Sign(method, rawURL string, body []byte, secret string) (model.SignedHeaders, error) {
	key, err := decodeSecret(secret)
	if err != nil {
		return model.SignedHeaders{}, &apperrors.SigningError{Cause: err}
	}

	u, err := url.Parse(rawURL)
	if err != nil {
		return model.SignedHeaders{}, &apperrors.SigningError{Cause: fmt.Errorf("parse url: %w", err)}
	}
	if u.Host == "" {
		return model.SignedHeaders{}, &apperrors.SigningError{Cause: fmt.Errorf("url %q has no host", rawURL)}
	}

	sc := model.SigningContext{
		Method:       method,
		PathAndQuery: pathAndQuery(u),
		Host:         u.Host,
		Timestamp:    s.clock.Now().UTC().Format(http.TimeFormat),
		ContentHash:  ContentHash(body),
		Secret:       key,
	}

	return model.SignedHeaders{
		Timestamp:     sc.Timestamp,
		ContentHash:   sc.ContentHash,
		Authorization: authorizationPrefix + Signature(sc),
	}, nil
}

// ContentHash is base64(SHA-256(body)).
func ContentHash(body []byte) string {
	sum := sha256.Sum256(body)
	return base64.StdEncoding.EncodeToString(sum[:])
}

// StringToSign builds "METHOD\npath?query\ntimestamp;host;contentHash".
func StringToSign(sc model.SigningContext) string {
	var b strings.Builder
	b.WriteString(strings.ToUpper(sc.Method))
	b.WriteByte('\n')
	b.WriteString(sc.PathAndQuery)
	b.WriteByte('\n')
	b.WriteString(sc.Timestamp)
	b.WriteByte(';')
	b.WriteString(sc.Host)
	b.WriteByte(';')
	b.WriteString(sc.ContentHash)
	return b.String()
}

// Signature is base64(HMAC-SHA256(secret, StringToSign(sc))).
func Signature(sc model.SigningContext) string {
	return base64.StdEncoding.EncodeToString(hmacSHA256(sc.Secret, []byte(StringToSign(sc))))
}

func hmacSHA256(key, data []byte) []byte {
	h := hmac.New(sha256.New, key)
	h.Write(data)
	return h.Sum(nil)
}

func decodeSecret(secret string) ([]byte, error) {
	secret = strings.TrimSpace(secret)
	if secret == "" {
		return nil, errors.New("signing secret is empty")
	}
	key, err := base64.StdEncoding.DecodeString(secret)
	if err != nil {
		return nil, fmt.Errorf("decode signing secret: %w", err)
	}
	return key, nil
}

func pathAndQuery(u *url.URL) string {
	p := u.EscapedPath()
	if p == "" {
		p = "/"
	}
	if u.RawQuery != "" {
		p += "?" + u.RawQuery
	}
	return p
}
