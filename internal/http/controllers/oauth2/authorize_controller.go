package oauth2

import (
	"net/http"

	"github.com/anhngo/fido-gateway/internal/http/helpers"
	"github.com/anhngo/fido-gateway/internal/idp"
	"github.com/anhngo/fido-gateway/internal/observability/logger"
)

// AuthorizeController handles GET /oauth2/authorize-url.
type AuthorizeController struct {
	idp *idp.Client
}

// NewAuthorizeController creates a new authorize controller.
func NewAuthorizeController(client *idp.Client) *AuthorizeController {
	return &AuthorizeController{idp: client}
}

// AuthorizeURL arma la URL de autorización del provider para el browser.
// Si no viene state se genera un uuid; el cliente debe validarlo al volver.
func (c *AuthorizeController) AuthorizeURL(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := logger.From(ctx).With(logger.Layer("controller"), logger.Op("AuthorizeController.AuthorizeURL"))

	q := r.URL.Query()
	authURL, state := c.idp.BuildAuthorizationURL(q.Get("redirect_uri"), q.Get("state"), q.Get("scope"))

	log.Debug("authorization url built")
	helpers.WriteJSON(w, http.StatusOK, map[string]string{
		"authorizationUrl": authURL,
		"state":            state,
	})
}
