// Package fido contiene los DTOs del user API de WebAuthn.
package fido

// RegistrationRequest completa un registro de credencial. requestId y rawId
// salen del response de registration-options y de la ceremonia del cliente.
type RegistrationRequest struct {
	RequestID         string `json:"requestId"`
	RawID             string `json:"rawId"`
	AttestationObject string `json:"attestationObject"`
	ClientDataJSON    string `json:"clientDataJSON"`
}

// AuthenticationRequest completa un login webauthn de dos pasos.
type AuthenticationRequest struct {
	Username        string `json:"username,omitempty"`
	RequestID       string `json:"requestId"`
	RawID           string `json:"rawId"`
	AssertionObject string `json:"assertionObject"`
	ClientDataJSON  string `json:"clientDataJSON"`
}
