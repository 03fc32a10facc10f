package oauth2

import (
	"net/http"

	"github.com/anhngo/fido-gateway/internal/http/helpers"
	"github.com/anhngo/fido-gateway/internal/idp"
	"github.com/anhngo/fido-gateway/internal/observability/logger"
	"github.com/anhngo/fido-gateway/internal/util"
)

// AdminController handles POST /oauth2/admin-session/refresh.
type AdminController struct {
	admin *idp.AdminSession
}

// NewAdminController creates a new admin session controller.
func NewAdminController(admin *idp.AdminSession) *AdminController {
	return &AdminController{admin: admin}
}

// RefreshSession invalida la sesión admin cacheada y crea una nueva. El
// token nunca se devuelve entero, sólo enmascarado para diagnóstico.
func (c *AdminController) RefreshSession(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := logger.From(ctx).With(logger.Layer("controller"), logger.Op("AdminController.RefreshSession"))

	tok, err := c.admin.Refresh(ctx)
	if err != nil {
		log.Warn("admin session refresh failed", logger.Err(err))
		helpers.WriteIDPError(w, err)
		return
	}

	helpers.WriteJSON(w, http.StatusOK, map[string]string{
		"status": "refreshed",
		"token":  util.MaskToken(tok),
	})
}
