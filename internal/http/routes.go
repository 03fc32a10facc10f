package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	fidoc "github.com/anhngo/fido-gateway/internal/http/controllers/fido"
	healthc "github.com/anhngo/fido-gateway/internal/http/controllers/health"
	nativeauthc "github.com/anhngo/fido-gateway/internal/http/controllers/nativeauth"
	oauth2c "github.com/anhngo/fido-gateway/internal/http/controllers/oauth2"
	wellknownc "github.com/anhngo/fido-gateway/internal/http/controllers/wellknown"
	"github.com/anhngo/fido-gateway/internal/http/middlewares"
)

// Controllers agrupa todos los controllers que monta el router.
type Controllers struct {
	Health     *healthc.Controller
	NativeAuth *nativeauthc.Controller
	Fido       *fidoc.Controller
	Token      *oauth2c.TokenController
	Authorize  *oauth2c.AuthorizeController
	Revoke     *oauth2c.RevokeController
	Introspect *oauth2c.IntrospectController
	Admin      *oauth2c.AdminController
	WellKnown  *wellknownc.Controller
}

// NewRouter arma el router chi y lo envuelve con la cadena de middlewares.
// metricsHandler puede ser nil (tests); en ese caso no se monta /metrics.
func NewRouter(c Controllers, metricsHandler http.Handler, corsOrigins []string) http.Handler {
	r := chi.NewRouter()

	// Health
	r.Get("/healthz", c.Health.Healthz)
	r.Get("/readyz", c.Health.Readyz)
	if metricsHandler != nil {
		r.Method(http.MethodGet, "/metrics", metricsHandler)
	}

	// Flujo nativo passkey
	r.Route("/native-auth", func(r chi.Router) {
		r.Post("/init", c.NativeAuth.Init)
		r.Post("/challenge", c.NativeAuth.Challenge)
		r.Post("/verify", c.NativeAuth.Verify)
		r.Get("/health", c.NativeAuth.Health)
	})

	// User API WebAuthn
	r.Route("/fido", func(r chi.Router) {
		r.Post("/registration-options", c.Fido.RegistrationOptions)
		r.Post("/register", c.Fido.Register)
		r.Post("/authentication-options", c.Fido.AuthenticationOptions)
		r.Post("/authenticate", c.Fido.Authenticate)
		r.Delete("/deregister/{credentialId}", c.Fido.Deregister)
		r.Get("/health", c.Fido.Health)
	})

	// OAuth2
	r.Route("/oauth2", func(r chi.Router) {
		r.Get("/authorize-url", c.Authorize.AuthorizeURL)
		r.Get("/callback", c.Token.Callback)
		r.Post("/login", c.Token.Login)
		r.Post("/refresh", c.Token.Refresh)
		r.Post("/revoke", c.Revoke.Revoke)
		r.Post("/introspect", c.Introspect.Introspect)
		r.Post("/admin-session/refresh", c.Admin.RefreshSession)
	})

	// Asociación de apps mobile
	r.Route("/.well-known", func(r chi.Router) {
		r.Get("/apple-app-site-association", c.WellKnown.AppleAppSiteAssociation)
		r.Get("/assetlinks.json", c.WellKnown.AssetLinks)
		r.Get("/fido/mobile/apps", c.WellKnown.MobileApps)
		r.Get("/fido/mobile/ios-apps", c.WellKnown.IOSApps)
		r.Get("/fido/mobile/android-apps", c.WellKnown.AndroidApps)
	})

	// Cadena: request-id primero, después logging (ya con el id en contexto).
	handler := middlewares.Chain(r,
		middlewares.WithRequestID(),
		middlewares.WithLogging(),
	)
	handler = WithMetrics(handler)
	handler = WithCORS(handler, corsOrigins)
	handler = WithSecurityHeaders(handler)
	return handler
}
