// Package oauth2 expone la superficie OAuth2 mediada por el gateway:
// login (password grant), callback del authorization code, refresh,
// revoke, introspect y la sesión administrativa.
package oauth2

import (
	"net/http"

	dto "github.com/anhngo/fido-gateway/internal/http/dto/oauth2"
	"github.com/anhngo/fido-gateway/internal/http/helpers"
	"github.com/anhngo/fido-gateway/internal/idp"
	"github.com/anhngo/fido-gateway/internal/observability/logger"
)

// TokenController maneja login, refresh y el callback del code grant.
type TokenController struct {
	idp *idp.Client
}

// NewTokenController creates a new token controller.
func NewTokenController(client *idp.Client) *TokenController {
	return &TokenController{idp: client}
}

// Login handles POST /oauth2/login (password grant).
func (c *TokenController) Login(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := logger.From(ctx).With(logger.Layer("controller"), logger.Op("TokenController.Login"))

	var req dto.LoginRequest
	if !helpers.ReadJSON(w, r, &req) {
		return
	}
	if req.Username == "" || req.Password == "" {
		helpers.WriteError(w, http.StatusBadRequest, "invalid_request", "username and password are required")
		return
	}

	tok, err := c.idp.PasswordToken(ctx, req.Username, req.Password, req.Scope)
	if err != nil {
		log.Warn("login failed", logger.Username(req.Username), logger.Err(err))
		helpers.WriteIDPError(w, err)
		return
	}
	log.Info("login completed", logger.Username(req.Username))
	writeTokenResponse(w, tok)
}

// Refresh handles POST /oauth2/refresh.
func (c *TokenController) Refresh(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := logger.From(ctx).With(logger.Layer("controller"), logger.Op("TokenController.Refresh"))

	var req dto.RefreshRequest
	if !helpers.ReadJSON(w, r, &req) {
		return
	}
	if req.RefreshToken == "" {
		helpers.WriteError(w, http.StatusBadRequest, "invalid_request", "refreshToken is required")
		return
	}

	tok, err := c.idp.RefreshToken(ctx, req.RefreshToken, req.Scope)
	if err != nil {
		log.Warn("refresh failed", logger.Err(err))
		helpers.WriteIDPError(w, err)
		return
	}
	writeTokenResponse(w, tok)
}

// Callback handles GET /oauth2/callback: canjea el authorization code.
func (c *TokenController) Callback(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := logger.From(ctx).With(logger.Layer("controller"), logger.Op("TokenController.Callback"))

	q := r.URL.Query()
	if e := q.Get("error"); e != "" {
		// El provider abortó el authorize; relayamos su error.
		helpers.WriteError(w, http.StatusBadGateway, e, q.Get("error_description"))
		return
	}
	code := q.Get("code")
	if code == "" {
		helpers.WriteError(w, http.StatusBadRequest, "invalid_request", "code query parameter is required")
		return
	}

	tok, err := c.idp.AuthorizationCodeToken(ctx, code, q.Get("redirect_uri"), q.Get("scope"))
	if err != nil {
		log.Warn("code exchange failed", logger.Err(err))
		helpers.WriteIDPError(w, err)
		return
	}
	log.Info("authorization code exchanged")
	writeTokenResponse(w, tok)
}

// writeTokenResponse relaya el response del provider tal cual (Raw preserva
// campos extra como id_token). Siempre no-store: lleva tokens.
func writeTokenResponse(w http.ResponseWriter, tok *idp.Token) {
	w.Header().Set("Cache-Control", "no-store")
	w.Header().Set("Pragma", "no-cache")
	helpers.WriteJSON(w, http.StatusOK, tok.Raw)
}
