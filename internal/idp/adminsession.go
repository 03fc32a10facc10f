package idp

import (
	"context"

	"github.com/anhngo/fido-gateway/internal/cache"
	"github.com/anhngo/fido-gateway/internal/metrics"
	"github.com/anhngo/fido-gateway/internal/observability/logger"
	"golang.org/x/sync/singleflight"
)

const adminSessionKey = "admin_session"

// AdminSession es el cache de un único token administrativo, poblado lazy con
// un password grant. No trackea expires_in: ante un 401 del provider el caller
// debe Invalidate() y reintentar (o usar Refresh()).
//
// Concurrencia: la primera población se deduplica con singleflight (mismo
// patrón que infra/tenantcache); el slot nunca guarda un valor parcial porque
// sólo se escribe un access_token ya validado por decodeToken.
type AdminSession struct {
	client *Client
	store  cache.Cache
	sf     singleflight.Group
}

// NewAdminSession crea el cache de sesión administrativa. Se construye una vez
// por proceso y se pasa por referencia a quien lo necesite.
func NewAdminSession(client *Client, store cache.Cache) *AdminSession {
	return &AdminSession{client: client, store: store}
}

// Get retorna el token cacheado, o lo crea si el slot está vacío.
func (s *AdminSession) Get(ctx context.Context) (string, error) {
	if b, ok := s.store.Get(adminSessionKey); ok && len(b) > 0 {
		return string(b), nil
	}

	v, err, _ := s.sf.Do(adminSessionKey, func() (any, error) {
		// Re-check: otro vuelo pudo haber poblado el slot.
		if b, ok := s.store.Get(adminSessionKey); ok && len(b) > 0 {
			return string(b), nil
		}
		tok, err := s.client.PasswordToken(ctx, s.client.cfg.AdminUsername, s.client.cfg.AdminPassword, "openid")
		if err != nil {
			// Creación fallida: el slot queda vacío, el error se propaga.
			return "", err
		}
		s.store.Set(adminSessionKey, []byte(tok.AccessToken), cache.NoExpiration)
		metrics.RecordAdminSessionRefresh()
		logger.From(ctx).Info("admin session created", logger.Component("admin_session"))
		return tok.AccessToken, nil
	})
	if err != nil {
		return "", err
	}
	return v.(string), nil
}

// Invalidate limpia el slot. No crea un token nuevo.
func (s *AdminSession) Invalidate() {
	s.store.Delete(adminSessionKey)
}

// Refresh invalida y vuelve a crear la sesión.
func (s *AdminSession) Refresh(ctx context.Context) (string, error) {
	s.Invalidate()
	return s.Get(ctx)
}
