package oauth2

import (
	"net/http"

	dto "github.com/anhngo/fido-gateway/internal/http/dto/oauth2"
	"github.com/anhngo/fido-gateway/internal/http/helpers"
	"github.com/anhngo/fido-gateway/internal/idp"
	"github.com/anhngo/fido-gateway/internal/observability/logger"
)

// IntrospectController handles POST /oauth2/introspect.
type IntrospectController struct {
	idp *idp.Client
}

// NewIntrospectController creates a new introspect controller.
func NewIntrospectController(client *idp.Client) *IntrospectController {
	return &IntrospectController{idp: client}
}

// Introspect relaya el response RFC 7662 del provider preservando los tipos
// JSON (active como bool, exp como número).
func (c *IntrospectController) Introspect(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := logger.From(ctx).With(logger.Layer("controller"), logger.Op("IntrospectController.Introspect"))

	var req dto.IntrospectRequest
	if !helpers.ReadJSON(w, r, &req) {
		return
	}
	if req.Token == "" {
		helpers.WriteError(w, http.StatusBadRequest, "invalid_request", "token is required")
		return
	}

	out, err := c.idp.Introspect(ctx, req.Token)
	if err != nil {
		log.Warn("introspect failed", logger.Err(err))
		helpers.WriteIDPError(w, err)
		return
	}
	helpers.WriteJSON(w, http.StatusOK, out)
}
