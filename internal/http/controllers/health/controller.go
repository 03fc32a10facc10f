// Package health contiene los controllers de health check.
package health

import (
	"net/http"

	"github.com/anhngo/fido-gateway/internal/http/helpers"
)

// Controller maneja /healthz y /readyz.
type Controller struct {
	providerBaseURL string
}

// NewController crea el controller de health.
func NewController(providerBaseURL string) *Controller {
	return &Controller{providerBaseURL: providerBaseURL}
}

// Healthz handles GET /healthz (liveness).
func (c *Controller) Healthz(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok"))
}

// Readyz handles GET /readyz. El gateway es stateless: está listo si tiene
// un provider configurado. No se pingea al provider en cada probe.
func (c *Controller) Readyz(w http.ResponseWriter, r *http.Request) {
	if c.providerBaseURL == "" {
		helpers.WriteError(w, http.StatusServiceUnavailable, "not_ready", "provider base url is not configured")
		return
	}
	helpers.WriteJSON(w, http.StatusOK, map[string]string{"status": "ready"})
}
