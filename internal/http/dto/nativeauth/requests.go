// Package nativeauth contiene los DTOs del flujo nativo de autenticación.
package nativeauth

// InitRequest arranca un flow contra el provider. Sólo clientId es
// obligatorio; el resto tiene defaults.
type InitRequest struct {
	ClientID     string `json:"clientId"`
	RedirectURI  string `json:"redirectUri,omitempty"`
	Scope        string `json:"scope,omitempty"`
	ResponseType string `json:"responseType,omitempty"`
	ResponseMode string `json:"responseMode,omitempty"`
}

// ChallengeRequest selecciona el autenticador passkey dentro de un flow.
type ChallengeRequest struct {
	FlowID          string `json:"flowId"`
	AuthenticatorID string `json:"authenticatorId"`
}

// Credentials es el resultado de la ceremonia WebAuthn en el cliente.
// Todos los blobs vienen base64; acá no se decodifican, sólo se validan
// y se reempaquetan para el provider.
type Credentials struct {
	CredentialID      string `json:"credentialId"`
	ClientDataJSON    string `json:"clientDataJSON"`
	AuthenticatorData string `json:"authenticatorData"`
	Signature         string `json:"signature"`
	UserHandle        string `json:"userHandle,omitempty"`
}

// VerifyRequest envía la assertion firmada. requestId es el que devolvió
// el challenge; el cliente lo transporta tal cual.
type VerifyRequest struct {
	FlowID          string      `json:"flowId"`
	AuthenticatorID string      `json:"authenticatorId"`
	RequestID       string      `json:"requestId"`
	Credentials     Credentials `json:"credentials"`
}
