package oauth2

import (
	"net/http"

	dto "github.com/anhngo/fido-gateway/internal/http/dto/oauth2"
	"github.com/anhngo/fido-gateway/internal/http/helpers"
	"github.com/anhngo/fido-gateway/internal/idp"
	"github.com/anhngo/fido-gateway/internal/observability/logger"
)

// RevokeController handles POST /oauth2/revoke.
type RevokeController struct {
	idp *idp.Client
}

// NewRevokeController creates a new revoke controller.
func NewRevokeController(client *idp.Client) *RevokeController {
	return &RevokeController{idp: client}
}

// Revoke revoca el token contra el provider. RFC 7009: la revocación es
// idempotente, un token ya revocado también da 200.
func (c *RevokeController) Revoke(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := logger.From(ctx).With(logger.Layer("controller"), logger.Op("RevokeController.Revoke"))

	var req dto.RevokeRequest
	if !helpers.ReadJSON(w, r, &req) {
		return
	}
	if req.Token == "" {
		helpers.WriteError(w, http.StatusBadRequest, "invalid_request", "token is required")
		return
	}

	if err := c.idp.Revoke(ctx, req.Token, req.TokenTypeHint); err != nil {
		log.Warn("revoke failed", logger.Err(err))
		helpers.WriteIDPError(w, err)
		return
	}

	w.Header().Set("Cache-Control", "no-store")
	w.Header().Set("Pragma", "no-cache")
	helpers.WriteJSON(w, http.StatusOK, map[string]string{"status": "revoked"})
}
