// Package directory talks to the PDS listing and admin identity endpoints.
package directory

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/tophhie/pds-welcomer/internal/core"
	"github.com/tophhie/pds-welcomer/internal/domain/model"
	apperrors "github.com/tophhie/pds-welcomer/internal/errors"
)

const (
	userAgent = "pds-welcomer/1.0"
	// maxErrorBody bounds how much of a failed response is drained.
	maxErrorBody = 4 << 10
)

var (
	_ core.AccountLister    = (*Client)(nil)
	_ core.IdentityResolver = (*Client)(nil)
)

// ClientOptions configures NewClient.
type ClientOptions struct {
	ListURL   string
	AdminURL  string
	AdminUser string
	Timeout   time.Duration
	// HTTPClient overrides the default client (tests).
	HTTPClient *http.Client
}

// Client lists accounts and resolves their contact identity.
type Client struct {
	listURL   string
	adminURL  *url.URL
	adminUser string
	http      *http.Client
}

// NewClient validates the endpoints and builds a Client.
func NewClient(opts ClientOptions) (*Client, error) {
	if strings.TrimSpace(opts.ListURL) == "" {
		return nil, errors.New("directory list url is required")
	}
	adminURL, err := url.Parse(strings.TrimSpace(opts.AdminURL))
	if err != nil || adminURL.Scheme == "" || adminURL.Host == "" {
		return nil, fmt.Errorf("invalid directory admin url %q", opts.AdminURL)
	}

	user := strings.TrimSpace(opts.AdminUser)
	if user == "" {
		user = "admin"
	}

	hc := opts.HTTPClient
	if hc == nil {
		timeout := opts.Timeout
		if timeout <= 0 {
			timeout = 30 * time.Second
		}
		hc = &http.Client{Timeout: timeout}
	}

	return &Client{
		listURL:   strings.TrimSpace(opts.ListURL),
		adminURL:  adminURL,
		adminUser: user,
		http:      hc,
	}, nil
}

// ListAccounts fetches the full repository listing.
// Every failure, including transport errors, is returned as *errors.ListingError.
func (c *Client) ListAccounts(ctx context.Context) (*model.AccountListing, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.listURL, nil)
	if err != nil {
		return nil, &apperrors.ListingError{Cause: fmt.Errorf("create request: %w", err)}
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", userAgent)

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, &apperrors.ListingError{Cause: &apperrors.TransportError{Op: "list accounts", Cause: err}}
	}
	defer drainAndClose(resp)

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, &apperrors.ListingError{StatusCode: resp.StatusCode, Status: resp.Status}
	}

	var listing model.AccountListing
	if err := json.NewDecoder(resp.Body).Decode(&listing); err != nil {
		return nil, &apperrors.ListingError{Cause: fmt.Errorf("decode listing: %w", err)}
	}
	return &listing, nil
}

// ResolveIdentity looks up did through the admin endpoint using basic auth.
func (c *Client) ResolveIdentity(ctx context.Context, did, adminPassword string) (*model.ContactIdentity, error) {
	u := *c.adminURL
	q := u.Query()
	q.Set("did", did)
	u.RawQuery = q.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return nil, fmt.Errorf("create resolve request: %w", err)
	}
	req.SetBasicAuth(c.adminUser, adminPassword)
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", userAgent)

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, &apperrors.TransportError{Op: "resolve " + did, Cause: err}
	}
	defer drainAndClose(resp)

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, &apperrors.ResolutionError{DID: did, StatusCode: resp.StatusCode, Status: resp.Status}
	}

	var identity model.ContactIdentity
	if err := json.NewDecoder(resp.Body).Decode(&identity); err != nil {
		return nil, fmt.Errorf("decode identity for %s: %w", did, err)
	}
	if identity.DID == "" {
		identity.DID = did
	}
	return &identity, nil
}

func drainAndClose(resp *http.Response) {
	_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, maxErrorBody))
	_ = resp.Body.Close()
}
