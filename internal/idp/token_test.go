package idp

import (
	"context"
	"encoding/base64"
	"net/http"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestClientCredentialsToken_SendsBasicAuthAndForm(t *testing.T) {
	var gotAuthz, gotGrant, gotScope string
	mux := http.NewServeMux()
	mux.HandleFunc("POST /oauth2/token", func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, r.ParseForm())
		gotAuthz = r.Header.Get("Authorization")
		gotGrant = r.PostForm.Get("grant_type")
		gotScope = r.PostForm.Get("scope")
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"access_token":"at-1","token_type":"Bearer","expires_in":3600}`))
	})

	c, _ := newTestClient(t, mux)
	tok, err := c.ClientCredentialsToken(context.Background(), "")
	require.NoError(t, err)

	require.Equal(t, "at-1", tok.AccessToken)
	require.Equal(t, "Bearer", tok.TokenType)
	require.EqualValues(t, 3600, tok.ExpiresIn)
	require.Equal(t, "client_credentials", gotGrant)
	require.Equal(t, "openid", gotScope, "scope vacío usa el default")

	wantCreds := base64.StdEncoding.EncodeToString([]byte("test-key:test-secret"))
	require.Equal(t, "Basic "+wantCreds, gotAuthz)
}

func TestPasswordToken_ForwardsCredentials(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("POST /oauth2/token", func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, r.ParseForm())
		require.Equal(t, "password", r.PostForm.Get("grant_type"))
		require.Equal(t, "alice", r.PostForm.Get("username"))
		require.Equal(t, "s3cret", r.PostForm.Get("password"))
		_, _ = w.Write([]byte(`{"access_token":"at-2","refresh_token":"rt-2"}`))
	})

	c, _ := newTestClient(t, mux)
	tok, err := c.PasswordToken(context.Background(), "alice", "s3cret", "openid profile")
	require.NoError(t, err)
	require.Equal(t, "at-2", tok.AccessToken)
	require.Equal(t, "rt-2", tok.RefreshToken)
}

func TestAuthorizationCodeToken_DefaultsRedirectURI(t *testing.T) {
	var gotRedirect string
	mux := http.NewServeMux()
	mux.HandleFunc("POST /oauth2/token", func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, r.ParseForm())
		require.Equal(t, "authorization_code", r.PostForm.Get("grant_type"))
		require.Equal(t, "code-xyz", r.PostForm.Get("code"))
		gotRedirect = r.PostForm.Get("redirect_uri")
		_, _ = w.Write([]byte(`{"access_token":"at-3","id_token":"idt"}`))
	})

	c, _ := newTestClient(t, mux)
	tok, err := c.AuthorizationCodeToken(context.Background(), "code-xyz", "", "")
	require.NoError(t, err)
	require.Equal(t, "https://app.example.com/callback", gotRedirect)
	require.Equal(t, "idt", tok.Raw["id_token"], "Raw preserva campos extra")
}

func TestTokenRequest_Non2xxIsUpstreamError(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("POST /oauth2/token", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		_, _ = w.Write([]byte(`{"error":"invalid_grant"}`))
	})

	c, _ := newTestClient(t, mux)
	_, err := c.RefreshToken(context.Background(), "expired", "")
	require.Error(t, err)

	ue, ok := IsUpstream(err)
	require.True(t, ok)
	require.Equal(t, http.StatusBadRequest, ue.Status)
	require.Contains(t, ue.Body, "invalid_grant")
}

func TestTokenRequest_2xxWithoutAccessTokenIsProtocolError(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("POST /oauth2/token", func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"token_type":"Bearer"}`))
	})

	c, _ := newTestClient(t, mux)
	_, err := c.ClientCredentialsToken(context.Background(), "openid")
	require.ErrorIs(t, err, ErrProtocol)
}

func TestRevoke_OKOnEmptyBody(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("POST /oauth2/revoke", func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, r.ParseForm())
		require.Equal(t, "tok-1", r.PostForm.Get("token"))
		require.Equal(t, "refresh_token", r.PostForm.Get("token_type_hint"))
		w.WriteHeader(http.StatusOK)
	})

	c, _ := newTestClient(t, mux)
	require.NoError(t, c.Revoke(context.Background(), "tok-1", "refresh_token"))
}

func TestIntrospect_PreservesJSONTypes(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("POST /oauth2/introspect", func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"active":true,"exp":1756339200,"username":"alice","scope":"openid"}`))
	})

	c, _ := newTestClient(t, mux)
	out, err := c.Introspect(context.Background(), "tok-1")
	require.NoError(t, err)

	require.Equal(t, true, out["active"], "active debe seguir siendo bool")
	require.Equal(t, float64(1756339200), out["exp"], "exp debe seguir siendo número")
	require.Equal(t, "alice", out["username"])
}

func TestIntrospect_InactiveToken(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("POST /oauth2/introspect", func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"active":false}`))
	})

	c, _ := newTestClient(t, mux)
	out, err := c.Introspect(context.Background(), "revoked")
	require.NoError(t, err)
	require.Equal(t, false, out["active"])
}
