package idp

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"
)

// newTestClient levanta un provider falso y devuelve un Client apuntándole.
func newTestClient(t *testing.T, handler http.Handler) (*Client, *httptest.Server) {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	c, err := New(Config{
		BaseURL:       srv.URL,
		TenantDomain:  "carbon.super",
		ClientKey:     "test-key",
		ClientSecret:  "test-secret",
		RedirectURI:   "https://app.example.com/callback",
		AdminUsername: "admin",
		AdminPassword: "admin-pass",
		AppID:         srv.URL,
	}, srv.Client())
	require.NoError(t, err)
	return c, srv
}

func TestNew_RequiresClientCredentials(t *testing.T) {
	_, err := New(Config{BaseURL: "https://idp.example.com"}, nil)
	require.ErrorIs(t, err, ErrConfiguration)

	_, err = New(Config{ClientKey: "k", ClientSecret: " "}, nil)
	require.ErrorIs(t, err, ErrConfiguration)
}

func TestNew_TrimsBaseURL(t *testing.T) {
	c, err := New(Config{BaseURL: "https://idp.example.com/", ClientKey: "k", ClientSecret: "s", TenantDomain: "acme"}, nil)
	require.NoError(t, err)
	require.Equal(t, "https://idp.example.com/t/acme/api", c.tenantURL("/api"))
}
