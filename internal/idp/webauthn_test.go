package idp

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"io"
	"net/http"
	"net/url"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/anhngo/fido-gateway/internal/cache/memory"
)

func TestRegistrationOptions_SendsAppIDAndBearer(t *testing.T) {
	var c *Client
	mux := http.NewServeMux()
	mux.HandleFunc("POST /t/carbon.super/api/users/v2/me/webauthn/start-usernameless-registration", func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, r.ParseForm())
		require.Equal(t, c.cfg.AppID, r.PostForm.Get("appId"))
		require.Equal(t, "Bearer user-tok", r.Header.Get("Authorization"))
		_, _ = w.Write([]byte(`{"requestId":"reg-req-1","publicKeyCredentialCreationOptions":{}}`))
	})

	c, _ = newTestClient(t, mux)
	out, err := c.RegistrationOptions(context.Background(), UserToken("user-tok"))
	require.NoError(t, err)

	var resp map[string]any
	require.NoError(t, json.Unmarshal(out, &resp))
	require.Equal(t, "reg-req-1", resp["requestId"])
}

func TestRegistrationOptions_MissingBearerNoNetworkCall(t *testing.T) {
	var hits int32
	mux := http.NewServeMux()
	mux.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&hits, 1)
	})

	c, _ := newTestClient(t, mux)
	_, err := c.RegistrationOptions(context.Background(), UserToken(""))
	require.ErrorIs(t, err, ErrMissingCredential)
	require.EqualValues(t, 0, atomic.LoadInt32(&hits), "sin token no se llama al provider")
}

func TestAuthenticationOptions_AdminFallback(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("POST /oauth2/token", func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"access_token":"admin-tok"}`))
	})
	mux.HandleFunc("POST /t/carbon.super/api/users/v2/me/webauthn/start-authentication", func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "Bearer admin-tok", r.Header.Get("Authorization"))
		_, _ = w.Write([]byte(`{"requestId":"authn-req-1"}`))
	})

	c, _ := newTestClient(t, mux)
	admin := NewAdminSession(c, memory.New(time.Minute))

	out, err := c.AuthenticationOptions(context.Background(), AdminToken(admin))
	require.NoError(t, err)
	require.Contains(t, string(out), "authn-req-1")
}

func TestFinishRegistration_RequiresRequestID(t *testing.T) {
	c, _ := newTestClient(t, http.NewServeMux())
	_, err := c.FinishRegistration(context.Background(), UserToken("tok"), "", "raw-id", b64("att"), b64(`{}`))
	require.Error(t, err)
	require.Contains(t, err.Error(), "requestId")
}

func TestFinishRegistration_PostsEnvelope(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("POST /t/carbon.super/api/users/v2/me/webauthn/finish-registration", func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "application/json", r.Header.Get("Content-Type"))
		body, _ := io.ReadAll(r.Body)

		var env map[string]any
		require.NoError(t, json.Unmarshal(body, &env))
		require.Equal(t, "reg-req-1", env["requestId"])
		cred := env["credential"].(map[string]any)
		require.Equal(t, "raw-id-1", cred["id"])
		require.Equal(t, "public-key", cred["type"])

		_, _ = w.Write([]byte(`{"status":"registered"}`))
	})

	c, _ := newTestClient(t, mux)
	out, err := c.FinishRegistration(context.Background(), UserToken("tok"), "reg-req-1", "raw-id-1", b64("attestation"), b64(`{"type":"webauthn.create"}`))
	require.NoError(t, err)
	require.Contains(t, string(out), "registered")
}

func TestFinishAuthentication_UsesAssertionObjectShape(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("POST /t/carbon.super/api/users/v2/me/webauthn/finish-authentication", func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		var env map[string]any
		require.NoError(t, json.Unmarshal(body, &env))
		require.Equal(t, "authn-req-1", env["requestId"])

		resp := env["credential"].(map[string]any)["response"].(map[string]any)
		require.Contains(t, resp, "assertionObject")
		require.NotContains(t, resp, "authenticatorData")

		_, _ = w.Write([]byte(`{"status":"ok"}`))
	})

	c, _ := newTestClient(t, mux)
	_, err := c.FinishAuthentication(context.Background(), UserToken("tok"), "alice", "authn-req-1", "raw-id-1", b64("assertion"), b64(`{"type":"webauthn.get"}`))
	require.NoError(t, err)
}

func TestDeregister_EscapesCredentialIDAndFallsBackToBasic(t *testing.T) {
	const credID = "cred/with spaces+and/slashes"

	var gotPath, gotAuthz string
	mux := http.NewServeMux()
	mux.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodDelete, r.Method)
		gotPath = r.URL.EscapedPath()
		gotAuthz = r.Header.Get("Authorization")
		w.WriteHeader(http.StatusNoContent)
	})

	c, _ := newTestClient(t, mux)
	require.NoError(t, c.Deregister(context.Background(), credID, ""))

	require.Equal(t, "/t/carbon.super/api/users/v2/me/webauthn/"+url.PathEscape(credID), gotPath)

	wantCreds := base64.StdEncoding.EncodeToString([]byte("test-key:test-secret"))
	require.Equal(t, "Basic "+wantCreds, gotAuthz, "sin token de usuario cae a Basic")
}

func TestDeregister_PrefersUserToken(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "Bearer user-tok", r.Header.Get("Authorization"))
		w.WriteHeader(http.StatusOK)
	})

	c, _ := newTestClient(t, mux)
	require.NoError(t, c.Deregister(context.Background(), "cred-1", "user-tok"))
}

func TestDeregister_RequiresCredentialID(t *testing.T) {
	c, _ := newTestClient(t, http.NewServeMux())
	err := c.Deregister(context.Background(), "", "")
	require.Error(t, err)
}
