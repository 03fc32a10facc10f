// Package fido expone el user API de WebAuthn del provider: registro y
// login de credenciales FIDO2 con el flujo clásico de dos pasos.
package fido

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	dto "github.com/anhngo/fido-gateway/internal/http/dto/fido"
	"github.com/anhngo/fido-gateway/internal/http/helpers"
	"github.com/anhngo/fido-gateway/internal/idp"
	"github.com/anhngo/fido-gateway/internal/observability/logger"
	"github.com/anhngo/fido-gateway/internal/tokenhint"
)

// Controller maneja los endpoints /fido/*.
type Controller struct {
	idp   *idp.Client
	admin *idp.AdminSession
}

// NewController crea el controller FIDO.
func NewController(client *idp.Client, admin *idp.AdminSession) *Controller {
	return &Controller{idp: client, admin: admin}
}

// source elige el bearer: token del usuario si vino, sesión admin si no.
func (c *Controller) source(r *http.Request) idp.TokenSource {
	if tok := helpers.BearerToken(r); tok != "" {
		return idp.UserToken(tok)
	}
	return idp.AdminToken(c.admin)
}

// RegistrationOptions handles POST /fido/registration-options. Requiere
// siempre bearer de usuario: la credencial se registra contra su identidad.
func (c *Controller) RegistrationOptions(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := logger.From(ctx).With(logger.Layer("controller"), logger.Op("Fido.RegistrationOptions"))

	tok := helpers.BearerToken(r)
	if hints := tokenhint.FromBearer(tok); hints.Username != "" {
		log = log.With(logger.Username(hints.Username))
	}

	out, err := c.idp.RegistrationOptions(ctx, idp.UserToken(tok))
	if err != nil {
		log.Warn("registration-options failed", logger.Err(err))
		helpers.WriteIDPError(w, err)
		return
	}
	log.Info("registration options issued")
	helpers.WriteRaw(w, http.StatusOK, out)
}

// Register handles POST /fido/register.
func (c *Controller) Register(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := logger.From(ctx).With(logger.Layer("controller"), logger.Op("Fido.Register"))

	var req dto.RegistrationRequest
	if !helpers.ReadJSON(w, r, &req) {
		return
	}
	if req.RequestID == "" {
		helpers.WriteError(w, http.StatusBadRequest, "invalid_request", "requestId from registration-options is required")
		return
	}
	if req.RawID == "" || req.AttestationObject == "" || req.ClientDataJSON == "" {
		helpers.WriteError(w, http.StatusBadRequest, "invalid_request", "rawId, attestationObject and clientDataJSON are required")
		return
	}

	out, err := c.idp.FinishRegistration(ctx, idp.UserToken(helpers.BearerToken(r)), req.RequestID, req.RawID, req.AttestationObject, req.ClientDataJSON)
	if err != nil {
		log.Warn("register failed", logger.Err(err))
		helpers.WriteIDPError(w, err)
		return
	}
	helpers.WriteRaw(w, http.StatusOK, out)
}

// AuthenticationOptions handles POST /fido/authentication-options. Acá sí
// hay fallback a la sesión admin: el usuario todavía no tiene token.
func (c *Controller) AuthenticationOptions(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := logger.From(ctx).With(logger.Layer("controller"), logger.Op("Fido.AuthenticationOptions"))

	out, err := c.idp.AuthenticationOptions(ctx, c.source(r))
	if err != nil {
		log.Warn("authentication-options failed", logger.Err(err))
		helpers.WriteIDPError(w, err)
		return
	}
	helpers.WriteRaw(w, http.StatusOK, out)
}

// Authenticate handles POST /fido/authenticate.
func (c *Controller) Authenticate(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := logger.From(ctx).With(logger.Layer("controller"), logger.Op("Fido.Authenticate"))

	var req dto.AuthenticationRequest
	if !helpers.ReadJSON(w, r, &req) {
		return
	}
	if req.RequestID == "" {
		helpers.WriteError(w, http.StatusBadRequest, "invalid_request", "requestId from authentication-options is required")
		return
	}
	if req.RawID == "" || req.AssertionObject == "" || req.ClientDataJSON == "" {
		helpers.WriteError(w, http.StatusBadRequest, "invalid_request", "rawId, assertionObject and clientDataJSON are required")
		return
	}

	out, err := c.idp.FinishAuthentication(ctx, c.source(r), req.Username, req.RequestID, req.RawID, req.AssertionObject, req.ClientDataJSON)
	if err != nil {
		log.Warn("authenticate failed", logger.Username(req.Username), logger.Err(err))
		helpers.WriteIDPError(w, err)
		return
	}
	helpers.WriteRaw(w, http.StatusOK, out)
}

// Deregister handles DELETE /fido/deregister/{credentialId}.
func (c *Controller) Deregister(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := logger.From(ctx).With(logger.Layer("controller"), logger.Op("Fido.Deregister"))

	credentialID := chi.URLParam(r, "credentialId")
	if credentialID == "" {
		helpers.WriteError(w, http.StatusBadRequest, "invalid_request", "credentialId is required")
		return
	}

	if err := c.idp.Deregister(ctx, credentialID, helpers.BearerToken(r)); err != nil {
		log.Warn("deregister failed", logger.CredentialID(credentialID), logger.Err(err))
		helpers.WriteIDPError(w, err)
		return
	}
	helpers.WriteJSON(w, http.StatusOK, map[string]string{
		"status":       "deleted",
		"credentialId": credentialID,
	})
}

// Health handles GET /fido/health.
func (c *Controller) Health(w http.ResponseWriter, r *http.Request) {
	helpers.WriteJSON(w, http.StatusOK, map[string]string{"status": "ok", "service": "fido"})
}
