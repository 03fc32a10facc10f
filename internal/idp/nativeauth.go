package idp

import (
	"context"
	"encoding/json"
	"errors"
	"strings"

	"github.com/anhngo/fido-gateway/internal/observability/logger"
)

// El flujo nativo es una máquina de estados de tres pasos contra el provider:
//
//	init      POST /oauth2/authorize/  → flowId
//	challenge POST /oauth2/authn/      → requestId + challenge WebAuthn
//	verify    POST /oauth2/authn/      → resultado final (o siguiente factor)
//
// El orquestador no guarda estado entre pasos: el browser/app transporta
// flowId y requestId entre requests a este servicio. Los identificadores se
// reenvían exactamente como los emitió el provider (sin trim ni normalizar);
// mezclar contextos de flows distintos es un error del caller que no
// detectamos. Ningún paso se reintenta: un fallo sube al caller, que decide
// si reinicia desde init.

// InitRequest son los parámetros del init. Scope/ResponseType/ResponseMode
// tienen los defaults del provider si vienen vacíos.
type InitRequest struct {
	ClientID     string
	RedirectURI  string
	Scope        string
	ResponseType string
	ResponseMode string
}

// InitNativeAuth arranca un flow. response_mode=direct hace que el provider
// devuelva el descriptor JSON del flow (con flowId) en vez de un redirect.
func (c *Client) InitNativeAuth(ctx context.Context, in InitRequest) (json.RawMessage, error) {
	if strings.TrimSpace(in.ClientID) == "" {
		return nil, errors.New("idp: clientId is required")
	}
	log := logger.From(ctx).With(logger.Layer("idp"), logger.Op("InitNativeAuth"), logger.ClientID(in.ClientID))

	form := map[string]string{
		"client_id":     in.ClientID,
		"redirect_uri":  in.RedirectURI,
		"scope":         orDefault(in.Scope, "openid profile"),
		"response_type": orDefault(in.ResponseType, "code"),
		"response_mode": orDefault(in.ResponseMode, "direct"),
	}
	values := formValues(form)

	status, body, err := c.postForm(ctx, c.cfg.BaseURL+"/oauth2/authorize/", values, c.basicAuthFor(in.ClientID))
	if err != nil {
		return nil, err
	}
	if !is2xx(status) {
		log.Warn("native auth init rejected", logger.Upstream(status))
		return nil, upstreamErr(status, body)
	}
	log.Info("native auth flow initialized")
	return json.RawMessage(body), nil
}

// PasskeyChallenge selecciona el autenticador dentro del flow y obtiene el
// challenge. La respuesta contiene el requestId y el material que la
// plataforma cliente necesita para correr la ceremonia WebAuthn; no la
// interpretamos, sólo la relayamos.
func (c *Client) PasskeyChallenge(ctx context.Context, flowID, authenticatorID string) (json.RawMessage, error) {
	if flowID == "" || authenticatorID == "" {
		return nil, errors.New("idp: flowId and authenticatorId are required")
	}
	log := logger.From(ctx).With(
		logger.Layer("idp"), logger.Op("PasskeyChallenge"),
		logger.FlowID(flowID), logger.AuthenticatorID(authenticatorID),
	)

	reqBody, err := challengeRequestBody(flowID, authenticatorID)
	if err != nil {
		return nil, err
	}
	status, body, err := c.postJSON(ctx, c.cfg.BaseURL+"/oauth2/authn/", reqBody, c.basicAuth())
	if err != nil {
		return nil, err
	}
	if !is2xx(status) {
		log.Warn("passkey challenge rejected", logger.Upstream(status))
		return nil, upstreamErr(status, body)
	}
	log.Info("passkey challenge retrieved")
	return json.RawMessage(body), nil
}

// VerifyPasskey envía la assertion firmada. requestID viene del response del
// challenge y lo aporta el caller; que falte acá es un error del caller, no
// del protocolo. El payload final del provider se retorna opaco (puede
// contener tokens o un siguiente challenge en escenarios multi-factor).
func (c *Client) VerifyPasskey(ctx context.Context, flowID, authenticatorID, requestID string, a Assertion) (json.RawMessage, error) {
	switch {
	case flowID == "" || authenticatorID == "":
		return nil, errors.New("idp: flowId and authenticatorId are required")
	case requestID == "":
		return nil, errors.New("idp: requestId from the challenge response is required")
	case a.CredentialID == "":
		return nil, errors.New("idp: credentialId is required")
	}
	log := logger.From(ctx).With(
		logger.Layer("idp"), logger.Op("VerifyPasskey"),
		logger.FlowID(flowID), logger.AuthenticatorID(authenticatorID),
	)

	reqBody, err := verifyRequestBody(flowID, authenticatorID, requestID, a)
	if err != nil {
		return nil, err
	}
	status, body, err := c.postJSON(ctx, c.cfg.BaseURL+"/oauth2/authn/", reqBody, c.basicAuth())
	if err != nil {
		return nil, err
	}
	if !is2xx(status) {
		log.Warn("passkey verify rejected", logger.Upstream(status))
		return nil, upstreamErr(status, body)
	}
	log.Info("passkey verified", logger.CredentialID(a.CredentialID))
	return json.RawMessage(body), nil
}

func orDefault(v, def string) string {
	if strings.TrimSpace(v) == "" {
		return def
	}
	return v
}
