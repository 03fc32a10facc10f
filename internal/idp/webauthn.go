package idp

import (
	"context"
	"encoding/json"
	"errors"
	"net/url"
	"strings"

	"github.com/anhngo/fido-gateway/internal/observability/logger"
	"github.com/anhngo/fido-gateway/internal/util"
)

// TokenSource selecciona el bearer para una llamada al user API del provider.
// Hace explícito en el call site si se usa el token del usuario o la sesión
// administrativa, en vez de sniffear strings nullable.
type TokenSource interface {
	BearerToken(ctx context.Context) (string, error)
}

type userToken string

func (u userToken) BearerToken(context.Context) (string, error) {
	if u == "" {
		return "", ErrMissingCredential
	}
	return string(u), nil
}

// UserToken usa el access token que mandó el frontend.
func UserToken(tok string) TokenSource { return userToken(strings.TrimSpace(tok)) }

type adminToken struct{ s *AdminSession }

func (a adminToken) BearerToken(ctx context.Context) (string, error) {
	return a.s.Get(ctx)
}

// AdminToken usa la sesión administrativa cacheada.
func AdminToken(s *AdminSession) TokenSource { return adminToken{s: s} }

// RegistrationOptions pide las opciones de registro usernameless. Requiere
// siempre un bearer de usuario: el provider registra la credencial contra la
// identidad del token.
func (c *Client) RegistrationOptions(ctx context.Context, src TokenSource) (json.RawMessage, error) {
	return c.webauthnStart(ctx, src, "/api/users/v2/me/webauthn/start-usernameless-registration", "RegistrationOptions")
}

// AuthenticationOptions pide las opciones de autenticación. El caller elige
// el TokenSource: bearer de usuario si hay, sesión admin como fallback.
func (c *Client) AuthenticationOptions(ctx context.Context, src TokenSource) (json.RawMessage, error) {
	return c.webauthnStart(ctx, src, "/api/users/v2/me/webauthn/start-authentication", "AuthenticationOptions")
}

func (c *Client) webauthnStart(ctx context.Context, src TokenSource, path, op string) (json.RawMessage, error) {
	bearer, err := src.BearerToken(ctx)
	if err != nil {
		return nil, err
	}
	log := logger.From(ctx).With(logger.Layer("idp"), logger.Op(op))

	form := url.Values{}
	form.Set("appId", c.cfg.AppID)

	status, body, err := c.postForm(ctx, c.tenantURL(path), form, "Bearer "+bearer)
	if err != nil {
		return nil, err
	}
	if !is2xx(status) {
		log.Warn("webauthn start rejected", logger.Upstream(status))
		return nil, upstreamErr(status, body)
	}
	return json.RawMessage(body), nil
}

// FinishRegistration envía la attestation al provider. El requestId viene del
// response de start-registration (lo transporta el frontend); credentialID es
// el rawId de la ceremonia.
func (c *Client) FinishRegistration(ctx context.Context, src TokenSource, requestID, credentialID, attestationObject, clientDataJSON string) (json.RawMessage, error) {
	bearer, err := src.BearerToken(ctx)
	if err != nil {
		return nil, err
	}
	if requestID == "" {
		return nil, errors.New("idp: requestId from start-registration is required")
	}
	log := logger.From(ctx).With(logger.Layer("idp"), logger.Op("FinishRegistration"))

	reqBody, err := registrationEnvelope(requestID, credentialID, attestationObject, clientDataJSON)
	if err != nil {
		return nil, err
	}

	status, body, err := c.postJSON(ctx, c.tenantURL("/api/users/v2/me/webauthn/finish-registration"), reqBody, "Bearer "+bearer)
	if err != nil {
		return nil, err
	}
	if !is2xx(status) {
		log.Warn("finish-registration rejected", logger.Upstream(status))
		return nil, upstreamErr(status, body)
	}
	log.Info("fido credential registered", logger.CredentialID(credentialID))
	return json.RawMessage(body), nil
}

// FinishAuthentication envía la assertion del login webauthn clásico (flujo de
// dos pasos del user API, no el flujo nativo). requestID siempre viene del
// response de start-authentication; nunca se hardcodea.
func (c *Client) FinishAuthentication(ctx context.Context, src TokenSource, username, requestID, credentialID, assertionObject, clientDataJSON string) (json.RawMessage, error) {
	bearer, err := src.BearerToken(ctx)
	if err != nil {
		return nil, err
	}
	if requestID == "" {
		return nil, errors.New("idp: requestId from start-authentication is required")
	}
	log := logger.From(ctx).With(logger.Layer("idp"), logger.Op("FinishAuthentication"), logger.Username(username))

	reqBody, err := finishAuthnEnvelope(requestID, credentialID, assertionObject, clientDataJSON)
	if err != nil {
		return nil, err
	}

	status, body, err := c.postJSON(ctx, c.tenantURL("/api/users/v2/me/webauthn/finish-authentication"), reqBody, "Bearer "+bearer)
	if err != nil {
		return nil, err
	}
	if !is2xx(status) {
		log.Warn("finish-authentication rejected", logger.Upstream(status))
		return nil, upstreamErr(status, body)
	}
	log.Info("fido authentication completed")
	return json.RawMessage(body), nil
}

// Deregister borra una credencial por id. Con token de usuario si hay; si no,
// Basic con las credenciales de cliente.
func (c *Client) Deregister(ctx context.Context, credentialID, userAccessToken string) error {
	if credentialID == "" {
		return errors.New("idp: credentialId is required")
	}
	log := logger.From(ctx).With(logger.Layer("idp"), logger.Op("Deregister"), logger.CredentialID(credentialID))

	authz := c.basicAuth()
	if tok := strings.TrimSpace(userAccessToken); tok != "" {
		authz = "Bearer " + tok
		log.Debug("using user token", logger.Any("token", util.MaskToken(tok)))
	}

	status, body, err := c.delete(ctx, c.tenantURL("/api/users/v2/me/webauthn/"+url.PathEscape(credentialID)), authz)
	if err != nil {
		return err
	}
	if !is2xx(status) {
		log.Warn("deregister rejected", logger.Upstream(status))
		return upstreamErr(status, body)
	}
	log.Info("fido credential deregistered")
	return nil
}
