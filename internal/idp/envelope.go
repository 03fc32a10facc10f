package idp

import (
	"encoding/base64"
	"encoding/json"
	"fmt"
)

// credentialType es el único tipo de credencial WebAuthn soportado. Todos los
// envelopes salientes llevan type fijo en este valor.
const credentialType = "public-key"

// Assertion es el material crudo producido por la ceremonia WebAuthn del
// cliente durante login. Lo tratamos como texto opaco: se preserva el
// encoding exacto salvo donde el contrato del provider exige re-encodear el
// envelope completo (tokenResponse).
type Assertion struct {
	// CredentialID es la fuente de verdad de la identidad de la credencial
	// (no ningún id embebido dentro del blob clientDataJSON).
	CredentialID      string
	ClientDataJSON    string
	AuthenticatorData string
	Signature         string
	UserHandle        string
}

// registration / assertion responses: los dos shapes de "response" que el
// provider acepta dentro de un credential.
type registrationResponse struct {
	AttestationObject string `json:"attestationObject"`
	ClientDataJSON    string `json:"clientDataJSON"`
}

type assertionResponse struct {
	AuthenticatorData string `json:"authenticatorData"`
	ClientDataJSON    string `json:"clientDataJSON"`
	Signature         string `json:"signature"`
	// omitempty: un userHandle ausente no debe emitir el campo con null.
	UserHandle string `json:"userHandle,omitempty"`
}

// finishAuthnResponse es el shape del finish-authentication del user API
// (assertionObject en lugar de authenticatorData/signature separados).
type finishAuthnResponse struct {
	AssertionObject string `json:"assertionObject"`
	ClientDataJSON  string `json:"clientDataJSON"`
}

type credential struct {
	ID                     string         `json:"id"`
	Response               any            `json:"response"`
	ClientExtensionResults map[string]any `json:"clientExtensionResults"`
	Type                   string         `json:"type"`
}

type credentialEnvelope struct {
	RequestID  string     `json:"requestId"`
	Credential credential `json:"credential"`
}

type selectedAuthenticator struct {
	AuthenticatorID string       `json:"authenticatorId"`
	Params          *authnParams `json:"params,omitempty"`
}

type authnParams struct {
	TokenResponse string `json:"tokenResponse"`
}

type authnRequest struct {
	FlowID                string                `json:"flowId"`
	SelectedAuthenticator selectedAuthenticator `json:"selectedAuthenticator"`
}

func newCredential(id string, response any) credential {
	return credential{
		ID:                     id,
		Response:               response,
		ClientExtensionResults: map[string]any{},
		Type:                   credentialType,
	}
}

// registrationEnvelope arma el body JSON de finish-registration.
func registrationEnvelope(requestID, credentialID, attestationObject, clientDataJSON string) ([]byte, error) {
	if err := checkCredentialMaterial(clientDataJSON, attestationObject); err != nil {
		return nil, err
	}
	env := credentialEnvelope{
		RequestID:  requestID,
		Credential: newCredential(credentialID, registrationResponse{
			AttestationObject: attestationObject,
			ClientDataJSON:    clientDataJSON,
		}),
	}
	return json.Marshal(env)
}

// finishAuthnEnvelope arma el body JSON de finish-authentication. Siempre
// serialización estructurada: el formato string-templated del cliente viejo
// producía texto tipo toString, no JSON.
func finishAuthnEnvelope(requestID, credentialID, assertionObject, clientDataJSON string) ([]byte, error) {
	if err := checkCredentialMaterial(clientDataJSON, assertionObject); err != nil {
		return nil, err
	}
	env := credentialEnvelope{
		RequestID:  requestID,
		Credential: newCredential(credentialID, finishAuthnResponse{
			AssertionObject: assertionObject,
			ClientDataJSON:  clientDataJSON,
		}),
	}
	return json.Marshal(env)
}

// verifyEnvelope arma el inner envelope del verify de native-auth.
func verifyEnvelope(requestID string, a Assertion) ([]byte, error) {
	if err := checkCredentialMaterial(a.ClientDataJSON, a.AuthenticatorData, a.Signature); err != nil {
		return nil, err
	}
	env := credentialEnvelope{
		RequestID:  requestID,
		Credential: newCredential(a.CredentialID, assertionResponse{
			AuthenticatorData: a.AuthenticatorData,
			ClientDataJSON:    a.ClientDataJSON,
			Signature:         a.Signature,
			UserHandle:        a.UserHandle,
		}),
	}
	return json.Marshal(env)
}

// verifyRequestBody arma el outer body del verify: el inner envelope se
// serializa a JSON y ese texto se base64-encodea entero dentro de
// selectedAuthenticator.params.tokenResponse. Es una particularidad del
// contrato del provider; decodificar el base64 debe dar de vuelta el JSON
// interno parseable (propiedad round-trip cubierta en tests).
func verifyRequestBody(flowID, authenticatorID, requestID string, a Assertion) ([]byte, error) {
	inner, err := verifyEnvelope(requestID, a)
	if err != nil {
		return nil, err
	}
	req := authnRequest{
		FlowID: flowID,
		SelectedAuthenticator: selectedAuthenticator{
			AuthenticatorID: authenticatorID,
			Params:          &authnParams{TokenResponse: base64.StdEncoding.EncodeToString(inner)},
		},
	}
	return json.Marshal(req)
}

// challengeRequestBody arma el body del challenge (sin params).
func challengeRequestBody(flowID, authenticatorID string) ([]byte, error) {
	return json.Marshal(authnRequest{
		FlowID:                flowID,
		SelectedAuthenticator: selectedAuthenticator{AuthenticatorID: authenticatorID},
	})
}

// checkCredentialMaterial valida que el material base64 del cliente sea
// decodificable. No interpretamos el contenido; sólo rechazamos temprano lo
// que el provider va a rechazar igual, con un error tipado.
func checkCredentialMaterial(clientDataJSON string, blobs ...string) error {
	if clientDataJSON != "" {
		raw, err := decodeBase64Loose(clientDataJSON)
		if err != nil {
			return fmt.Errorf("%w: clientDataJSON is not valid base64", ErrEncoding)
		}
		if !json.Valid(raw) {
			return fmt.Errorf("%w: clientDataJSON does not decode to JSON", ErrEncoding)
		}
	}
	for _, b := range blobs {
		if b == "" {
			continue
		}
		if _, err := decodeBase64Loose(b); err != nil {
			return fmt.Errorf("%w: %v", ErrEncoding, err)
		}
	}
	return nil
}

// decodeBase64Loose acepta base64 estándar o url-safe, con o sin padding.
// Las plataformas cliente no son consistentes en el alfabeto que usan.
func decodeBase64Loose(s string) ([]byte, error) {
	for _, enc := range []*base64.Encoding{
		base64.StdEncoding,
		base64.RawStdEncoding,
		base64.URLEncoding,
		base64.RawURLEncoding,
	} {
		if b, err := enc.DecodeString(s); err == nil {
			return b, nil
		}
	}
	return nil, fmt.Errorf("not valid base64: %q", truncate(s, 16))
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "…"
}
