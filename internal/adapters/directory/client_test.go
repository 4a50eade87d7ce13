package directory

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "github.com/tophhie/pds-welcomer/internal/errors"
)

func newTestClient(t *testing.T, srv *httptest.Server) *Client {
	t.Helper()
	c, err := NewClient(ClientOptions{
		ListURL:    srv.URL + "/pds/repos",
		AdminURL:   srv.URL + "/xrpc/com.atproto.admin.getAccountInfo",
		HTTPClient: srv.Client(),
	})
	require.NoError(t, err)
	return c
}

func TestNewClient_Validation(t *testing.T) {
	_, err := NewClient(ClientOptions{AdminURL: "https://example.com/x"})
	require.Error(t, err)

	_, err = NewClient(ClientOptions{ListURL: "https://example.com/repos", AdminURL: "not a url"})
	require.Error(t, err)

	c, err := NewClient(ClientOptions{ListURL: "https://example.com/repos", AdminURL: "https://example.com/x"})
	require.NoError(t, err)
	assert.Equal(t, "admin", c.adminUser)
}

func TestClient_ListAccounts(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/pds/repos", r.URL.Path)
		assert.Equal(t, http.MethodGet, r.Method)
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{
			"total": 2, "active": 1, "inactive": 1,
			"repos": [
				{"did": "did:plc:a", "head": "bafyA", "rev": "3k1", "active": true},
				{"did": "did:plc:b", "head": "bafyB", "rev": "3k2", "active": false}
			]
		}`))
	}))
	defer srv.Close()

	listing, err := newTestClient(t, srv).ListAccounts(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 2, listing.Total)
	require.Len(t, listing.Repos, 2)
	assert.Equal(t, "did:plc:a", listing.Repos[0].DID)
	assert.Equal(t, "bafyA", listing.Repos[0].Head)
	assert.True(t, listing.Repos[0].Active)
	assert.False(t, listing.Repos[1].Active)
}

func TestClient_ListAccounts_Errors(t *testing.T) {
	t.Run("non 2xx", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			http.Error(w, "down", http.StatusServiceUnavailable)
		}))
		defer srv.Close()

		_, err := newTestClient(t, srv).ListAccounts(context.Background())
		var listingErr *apperrors.ListingError
		require.ErrorAs(t, err, &listingErr)
		assert.Equal(t, http.StatusServiceUnavailable, listingErr.StatusCode)
		assert.True(t, apperrors.IsRunFatal(err))
	})

	t.Run("bad json", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			_, _ = w.Write([]byte(`{"repos": [`))
		}))
		defer srv.Close()

		_, err := newTestClient(t, srv).ListAccounts(context.Background())
		var listingErr *apperrors.ListingError
		require.ErrorAs(t, err, &listingErr)
		assert.Zero(t, listingErr.StatusCode)
	})

	t.Run("transport", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {}))
		c := newTestClient(t, srv)
		srv.Close()

		_, err := c.ListAccounts(context.Background())
		var listingErr *apperrors.ListingError
		require.ErrorAs(t, err, &listingErr)
		var transportErr *apperrors.TransportError
		assert.ErrorAs(t, err, &transportErr)
	})
}

func TestClient_ResolveIdentity(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/xrpc/com.atproto.admin.getAccountInfo", r.URL.Path)
		assert.Equal(t, "did:plc:abc", r.URL.Query().Get("did"))

		user, pass, ok := r.BasicAuth()
		assert.True(t, ok)
		assert.Equal(t, "admin", user)
		assert.Equal(t, "s3cret", pass)

		_, _ = w.Write([]byte(`{
			"did": "did:plc:abc",
			"handle": "alice.test",
			"email": "alice@example.com",
			"indexedAt": "2025-01-02T03:04:05.000Z",
			"emailConfirmedAt": "2025-01-02T04:00:00.000Z"
		}`))
	}))
	defer srv.Close()

	identity, err := newTestClient(t, srv).ResolveIdentity(context.Background(), "did:plc:abc", "s3cret")
	require.NoError(t, err)
	assert.Equal(t, "alice.test", identity.Handle)
	assert.Equal(t, "alice@example.com", identity.Email)
	assert.True(t, identity.EmailConfirmed())
}

func TestClient_ResolveIdentity_MalformedTimestampsStillResolve(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{
			"did": "did:plc:abc",
			"handle": "alice.test",
			"email": "alice@example.com",
			"indexedAt": "2025-01-02T03:04:05.000+0000",
			"emailConfirmedAt": ""
		}`))
	}))
	defer srv.Close()

	identity, err := newTestClient(t, srv).ResolveIdentity(context.Background(), "did:plc:abc", "s3cret")
	require.NoError(t, err)
	assert.Equal(t, "alice@example.com", identity.Email)
	assert.False(t, identity.EmailConfirmed())
	_, ok := identity.IndexedTime()
	assert.True(t, ok)
}

func TestClient_ResolveIdentity_Errors(t *testing.T) {
	t.Run("non 2xx", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			http.Error(w, `{"error":"AccountNotFound"}`, http.StatusBadRequest)
		}))
		defer srv.Close()

		_, err := newTestClient(t, srv).ResolveIdentity(context.Background(), "did:plc:gone", "pw")
		var resErr *apperrors.ResolutionError
		require.ErrorAs(t, err, &resErr)
		assert.Equal(t, http.StatusBadRequest, resErr.StatusCode)
		assert.Equal(t, "did:plc:gone", resErr.DID)
		assert.False(t, apperrors.IsRunFatal(err))
	})

	t.Run("transport", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {}))
		c := newTestClient(t, srv)
		srv.Close()

		_, err := c.ResolveIdentity(context.Background(), "did:plc:abc", "pw")
		var transportErr *apperrors.TransportError
		require.ErrorAs(t, err, &transportErr)
	})
}
