package helpers

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/anhngo/fido-gateway/internal/idp"
)

type apiError struct {
	Error            string `json:"error"`
	ErrorDescription string `json:"error_description,omitempty"`
	UpstreamStatus   int    `json:"upstream_status,omitempty"`
	RequestID        string `json:"request_id,omitempty"`
}

// WriteError escribe un error JSON con el shape estándar OAuth2-like.
func WriteError(w http.ResponseWriter, status int, code, desc string) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	rid := w.Header().Get("X-Request-ID")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(apiError{
		Error:            code,
		ErrorDescription: desc,
		RequestID:        rid,
	})
}

// WriteIDPError mapea la taxonomía de errores del cliente idp a HTTP.
// Un UpstreamError se relaya con el status y body del provider para
// diagnóstico (el body del provider no contiene secretos nuestros).
func WriteIDPError(w http.ResponseWriter, err error) {
	var ue *idp.UpstreamError
	switch {
	case errors.Is(err, idp.ErrMissingCredential):
		WriteError(w, http.StatusUnauthorized, "missing_credential", "a bearer token is required for this operation")
	case errors.Is(err, idp.ErrEncoding):
		WriteError(w, http.StatusBadRequest, "invalid_credential_material", err.Error())
	case errors.Is(err, idp.ErrProtocol):
		WriteError(w, http.StatusBadGateway, "provider_protocol_error", err.Error())
	case errors.Is(err, idp.ErrConfiguration):
		WriteError(w, http.StatusInternalServerError, "configuration_error", "oauth client credentials are not configured")
	case errors.As(err, &ue):
		w.Header().Set("Content-Type", "application/json; charset=utf-8")
		rid := w.Header().Get("X-Request-ID")
		w.WriteHeader(http.StatusBadGateway)
		_ = json.NewEncoder(w).Encode(apiError{
			Error:            "upstream_error",
			ErrorDescription: strings.TrimSpace(ue.Body),
			UpstreamStatus:   ue.Status,
			RequestID:        rid,
		})
	default:
		WriteError(w, http.StatusInternalServerError, "internal_error", err.Error())
	}
}
