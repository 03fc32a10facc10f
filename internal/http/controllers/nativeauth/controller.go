// Package nativeauth expone el flujo nativo (API-driven) de autenticación
// passkey: init → challenge → verify. El gateway no guarda estado entre
// pasos; el cliente transporta flowId y requestId.
package nativeauth

import (
	"net/http"

	dto "github.com/anhngo/fido-gateway/internal/http/dto/nativeauth"
	"github.com/anhngo/fido-gateway/internal/http/helpers"
	"github.com/anhngo/fido-gateway/internal/idp"
	"github.com/anhngo/fido-gateway/internal/observability/logger"
)

// Controller maneja los tres pasos del flujo nativo.
type Controller struct {
	idp *idp.Client
}

// NewController crea el controller del flujo nativo.
func NewController(client *idp.Client) *Controller {
	return &Controller{idp: client}
}

// Init handles POST /native-auth/init.
func (c *Controller) Init(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := logger.From(ctx).With(logger.Layer("controller"), logger.Op("NativeAuth.Init"))

	var req dto.InitRequest
	if !helpers.ReadJSON(w, r, &req) {
		return
	}
	if req.ClientID == "" {
		helpers.WriteError(w, http.StatusBadRequest, "invalid_request", "clientId is required")
		return
	}

	out, err := c.idp.InitNativeAuth(ctx, idp.InitRequest{
		ClientID:     req.ClientID,
		RedirectURI:  req.RedirectURI,
		Scope:        req.Scope,
		ResponseType: req.ResponseType,
		ResponseMode: req.ResponseMode,
	})
	if err != nil {
		log.Warn("init failed", logger.Err(err))
		helpers.WriteIDPError(w, err)
		return
	}
	helpers.WriteRaw(w, http.StatusOK, out)
}

// Challenge handles POST /native-auth/challenge.
func (c *Controller) Challenge(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := logger.From(ctx).With(logger.Layer("controller"), logger.Op("NativeAuth.Challenge"))

	var req dto.ChallengeRequest
	if !helpers.ReadJSON(w, r, &req) {
		return
	}
	if req.FlowID == "" || req.AuthenticatorID == "" {
		helpers.WriteError(w, http.StatusBadRequest, "invalid_request", "flowId and authenticatorId are required")
		return
	}

	out, err := c.idp.PasskeyChallenge(ctx, req.FlowID, req.AuthenticatorID)
	if err != nil {
		log.Warn("challenge failed", logger.FlowID(req.FlowID), logger.Err(err))
		helpers.WriteIDPError(w, err)
		return
	}
	helpers.WriteRaw(w, http.StatusOK, out)
}

// Verify handles POST /native-auth/verify. El response del provider puede
// traer tokens o un siguiente factor; se relaya opaco.
func (c *Controller) Verify(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := logger.From(ctx).With(logger.Layer("controller"), logger.Op("NativeAuth.Verify"))

	var req dto.VerifyRequest
	if !helpers.ReadJSON(w, r, &req) {
		return
	}
	switch {
	case req.FlowID == "" || req.AuthenticatorID == "":
		helpers.WriteError(w, http.StatusBadRequest, "invalid_request", "flowId and authenticatorId are required")
		return
	case req.RequestID == "":
		helpers.WriteError(w, http.StatusBadRequest, "invalid_request", "requestId from the challenge response is required")
		return
	case req.Credentials.CredentialID == "":
		helpers.WriteError(w, http.StatusBadRequest, "invalid_request", "credentials.credentialId is required")
		return
	}

	out, err := c.idp.VerifyPasskey(ctx, req.FlowID, req.AuthenticatorID, req.RequestID, idp.Assertion{
		CredentialID:      req.Credentials.CredentialID,
		ClientDataJSON:    req.Credentials.ClientDataJSON,
		AuthenticatorData: req.Credentials.AuthenticatorData,
		Signature:         req.Credentials.Signature,
		UserHandle:        req.Credentials.UserHandle,
	})
	if err != nil {
		log.Warn("verify failed", logger.FlowID(req.FlowID), logger.Err(err))
		helpers.WriteIDPError(w, err)
		return
	}
	helpers.WriteRaw(w, http.StatusOK, out)
}

// Health handles GET /native-auth/health.
func (c *Controller) Health(w http.ResponseWriter, r *http.Request) {
	helpers.WriteJSON(w, http.StatusOK, map[string]string{"status": "ok", "service": "native-auth"})
}
