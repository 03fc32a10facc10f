// Package app hace el wiring de las dependencias del gateway: cliente del
// provider, sesión admin, controllers y router.
package app

import (
	"net/http"

	"github.com/anhngo/fido-gateway/internal/cache"
	"github.com/anhngo/fido-gateway/internal/cache/memory"
	"github.com/anhngo/fido-gateway/internal/config"
	gwhttp "github.com/anhngo/fido-gateway/internal/http"
	fidoc "github.com/anhngo/fido-gateway/internal/http/controllers/fido"
	healthc "github.com/anhngo/fido-gateway/internal/http/controllers/health"
	nativeauthc "github.com/anhngo/fido-gateway/internal/http/controllers/nativeauth"
	oauth2c "github.com/anhngo/fido-gateway/internal/http/controllers/oauth2"
	wellknownc "github.com/anhngo/fido-gateway/internal/http/controllers/wellknown"
	"github.com/anhngo/fido-gateway/internal/idp"
)

// App agrupa las dependencias construidas del gateway.
type App struct {
	Cfg     *config.Config
	IDP     *idp.Client
	Admin   *idp.AdminSession
	Handler http.Handler
}

// New construye la aplicación completa a partir de la configuración.
func New(cfg *config.Config) (*App, error) {
	client, err := idp.New(idp.Config{
		BaseURL:       cfg.Provider.BaseURL,
		TenantDomain:  cfg.Provider.TenantDomain,
		ClientKey:     cfg.Provider.OAuth.ClientKey,
		ClientSecret:  cfg.Provider.OAuth.ClientSecret,
		RedirectURI:   cfg.Provider.OAuth.RedirectURI,
		AdminUsername: cfg.Provider.Admin.Username,
		AdminPassword: cfg.Provider.Admin.Password,
		AppID:         cfg.FIDO.AppID,
	}, &http.Client{Timeout: cfg.ProviderTimeout()})
	if err != nil {
		return nil, err
	}

	admin := idp.NewAdminSession(client, memory.New(cache.NoExpiration))

	metricsHandler, err := gwhttp.RegisterMetrics(nil)
	if err != nil {
		return nil, err
	}

	controllers := gwhttp.Controllers{
		Health:     healthc.NewController(cfg.Provider.BaseURL),
		NativeAuth: nativeauthc.NewController(client),
		Fido:       fidoc.NewController(client, admin),
		Token:      oauth2c.NewTokenController(client),
		Authorize:  oauth2c.NewAuthorizeController(client),
		Revoke:     oauth2c.NewRevokeController(client),
		Introspect: oauth2c.NewIntrospectController(client),
		Admin:      oauth2c.NewAdminController(admin),
		WellKnown:  wellknownc.NewController(cfg),
	}

	handler := gwhttp.NewRouter(controllers, metricsHandler, cfg.Server.CORSAllowedOrigins)

	return &App{
		Cfg:     cfg,
		IDP:     client,
		Admin:   admin,
		Handler: handler,
	}, nil
}
