package idp

import (
	"errors"
	"fmt"
)

// Errores del cliente del identity provider.
var (
	// ErrConfiguration: faltan client key/secret. Fatal, no retryable.
	ErrConfiguration = errors.New("idp: client credentials not configured")

	// ErrMissingCredential: la operación requiere un bearer token y no hay
	// ninguno usable. Precondición dura, no retryable.
	ErrMissingCredential = errors.New("idp: bearer token required")

	// ErrProtocol: el provider respondió 2xx pero el body no tiene un campo
	// esperado (p.ej. access_token). Violación de contrato del provider.
	ErrProtocol = errors.New("idp: malformed provider response")

	// ErrEncoding: material de credencial (base64/JSON) malformado provisto
	// por el cliente.
	ErrEncoding = errors.New("idp: malformed credential material")
)

// UpstreamError representa un non-2xx del identity provider. Se preserva
// status y body para diagnóstico; el body nunca contiene secretos nuestros.
type UpstreamError struct {
	Status int
	Body   string
}

func (e *UpstreamError) Error() string {
	return fmt.Sprintf("idp: provider returned status %d", e.Status)
}

// IsUpstream reporta si err envuelve un UpstreamError y lo retorna.
func IsUpstream(err error) (*UpstreamError, bool) {
	var ue *UpstreamError
	if errors.As(err, &ue) {
		return ue, true
	}
	return nil, false
}
