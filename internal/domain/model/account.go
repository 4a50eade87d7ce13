//revive:disable-next-line:var-naming // legacy package name widely used across the project
package model

import (
	"strings"
	"time"
)

// AccountRef is one entry of the directory listing.
type AccountRef struct {
	DID string `json:"did"`
	// Head is the head revision marker (commit CID) of the account repository.
	Head   string `json:"head"`
	Rev    string `json:"rev"`
	Active bool   `json:"active"`
}

// AccountListing is the response envelope of the directory listing endpoint.
type AccountListing struct {
	Total    int          `json:"total"`
	Active   int          `json:"active"`
	Inactive int          `json:"inactive"`
	Repos    []AccountRef `json:"repos"`
}

// ContactIdentity is the admin view of a single account.
// Timestamps are kept as sent; the dispatch path never depends on them,
// so a malformed value must not fail the decode.
type ContactIdentity struct {
	DID              string `json:"did"`
	Handle           string `json:"handle"`
	Email            string `json:"email"`
	IndexedAt        string `json:"indexedAt,omitempty"`
	EmailConfirmedAt string `json:"emailConfirmedAt,omitempty"`
}

// EmailConfirmed reports whether the account has verified its address.
func (c ContactIdentity) EmailConfirmed() bool {
	return strings.TrimSpace(c.EmailConfirmedAt) != ""
}

// IndexedTime parses IndexedAt; ok is false when it is absent or malformed.
func (c ContactIdentity) IndexedTime() (time.Time, bool) {
	return parseTimestamp(c.IndexedAt)
}

// EmailConfirmedTime parses EmailConfirmedAt; ok is false when it is absent or malformed.
func (c ContactIdentity) EmailConfirmedTime() (time.Time, bool) {
	return parseTimestamp(c.EmailConfirmedAt)
}

// timestampLayouts accepts RFC 3339 and the numeric "+0000" offset some PDS builds emit.
var timestampLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05.999999999Z0700",
}

func parseTimestamp(raw string) (time.Time, bool) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return time.Time{}, false
	}
	for _, layout := range timestampLayouts {
		if t, err := time.Parse(layout, raw); err == nil {
			return t.UTC(), true
		}
	}
	return time.Time{}, false
}
