package idp

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"io"
	"net/http"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestInitNativeAuth_SendsDirectModeAndRequestClientID(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("POST /oauth2/authorize/", func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, r.ParseForm())
		require.Equal(t, "mobile-app-1", r.PostForm.Get("client_id"))
		require.Equal(t, "openid profile", r.PostForm.Get("scope"))
		require.Equal(t, "code", r.PostForm.Get("response_type"))
		require.Equal(t, "direct", r.PostForm.Get("response_mode"))

		// El init autentica con el clientId del request, no con el nuestro.
		wantCreds := base64.StdEncoding.EncodeToString([]byte("mobile-app-1:test-secret"))
		require.Equal(t, "Basic "+wantCreds, r.Header.Get("Authorization"))

		_, _ = w.Write([]byte(`{"flowId":"flow-abc","flowStatus":"INCOMPLETE"}`))
	})

	c, _ := newTestClient(t, mux)
	out, err := c.InitNativeAuth(context.Background(), InitRequest{ClientID: "mobile-app-1"})
	require.NoError(t, err)

	var resp map[string]any
	require.NoError(t, json.Unmarshal(out, &resp))
	require.Equal(t, "flow-abc", resp["flowId"])
}

func TestInitNativeAuth_RequiresClientID(t *testing.T) {
	c, _ := newTestClient(t, http.NewServeMux())
	_, err := c.InitNativeAuth(context.Background(), InitRequest{})
	require.Error(t, err)
	require.Contains(t, err.Error(), "clientId")
}

func TestInitNativeAuth_UpstreamRejection(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("POST /oauth2/authorize/", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		_, _ = w.Write([]byte(`{"error":"invalid_client"}`))
	})

	c, _ := newTestClient(t, mux)
	_, err := c.InitNativeAuth(context.Background(), InitRequest{ClientID: "nope"})

	ue, ok := IsUpstream(err)
	require.True(t, ok)
	require.Equal(t, http.StatusBadRequest, ue.Status)
}

func TestPasskeyChallenge_ForwardsIdentifiersVerbatim(t *testing.T) {
	// Identificadores con espacios raros: deben viajar sin normalizar.
	const flowID = " flow-with-spaces "
	const authnID = "QmFzaWNBdXRoZW50aWNhdG9yOkxPQ0FM"

	mux := http.NewServeMux()
	mux.HandleFunc("POST /oauth2/authn/", func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		var req map[string]any
		require.NoError(t, json.Unmarshal(body, &req))
		require.Equal(t, flowID, req["flowId"])

		sel := req["selectedAuthenticator"].(map[string]any)
		require.Equal(t, authnID, sel["authenticatorId"])
		_, hasParams := sel["params"]
		require.False(t, hasParams)

		_, _ = w.Write([]byte(`{"flowId":"flow-abc","nextStep":{"authenticators":[{"requiredParams":["tokenResponse"]}]},"requestId":"req-77"}`))
	})

	c, _ := newTestClient(t, mux)
	out, err := c.PasskeyChallenge(context.Background(), flowID, authnID)
	require.NoError(t, err)

	var resp map[string]any
	require.NoError(t, json.Unmarshal(out, &resp))
	require.Equal(t, "req-77", resp["requestId"])
}

func TestVerifyPasskey_SendsDoubleEncodedAssertion(t *testing.T) {
	a := validAssertion()

	mux := http.NewServeMux()
	mux.HandleFunc("POST /oauth2/authn/", func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		var req struct {
			FlowID                string `json:"flowId"`
			SelectedAuthenticator struct {
				AuthenticatorID string `json:"authenticatorId"`
				Params          struct {
					TokenResponse string `json:"tokenResponse"`
				} `json:"params"`
			} `json:"selectedAuthenticator"`
		}
		require.NoError(t, json.Unmarshal(body, &req))
		require.Equal(t, "flow-abc", req.FlowID)

		inner, err := base64.StdEncoding.DecodeString(req.SelectedAuthenticator.Params.TokenResponse)
		require.NoError(t, err)
		var env map[string]any
		require.NoError(t, json.Unmarshal(inner, &env))
		require.Equal(t, "req-77", env["requestId"])

		_, _ = w.Write([]byte(`{"flowStatus":"SUCCESS_COMPLETED","authData":{"code":"final-code"}}`))
	})

	c, _ := newTestClient(t, mux)
	out, err := c.VerifyPasskey(context.Background(), "flow-abc", "authn-1", "req-77", a)
	require.NoError(t, err)

	var resp map[string]any
	require.NoError(t, json.Unmarshal(out, &resp))
	require.Equal(t, "SUCCESS_COMPLETED", resp["flowStatus"])
}

func TestVerifyPasskey_RequiredFields(t *testing.T) {
	c, _ := newTestClient(t, http.NewServeMux())
	a := validAssertion()

	_, err := c.VerifyPasskey(context.Background(), "", "authn", "req", a)
	require.Error(t, err)

	_, err = c.VerifyPasskey(context.Background(), "flow", "authn", "", a)
	require.Error(t, err)
	require.Contains(t, err.Error(), "requestId")

	a.CredentialID = ""
	_, err = c.VerifyPasskey(context.Background(), "flow", "authn", "req", a)
	require.Error(t, err)
	require.Contains(t, err.Error(), "credentialId")
}
