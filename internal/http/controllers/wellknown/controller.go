// Package wellknown sirve los descriptores .well-known que iOS y Android
// exigen para asociar las apps nativas con este dominio (universal links
// y app links, requisito para passkeys en mobile).
package wellknown

import (
	"net/http"

	"github.com/anhngo/fido-gateway/internal/config"
	"github.com/anhngo/fido-gateway/internal/http/helpers"
)

// Controller sirve los descriptores desde la configuración; no hay estado.
type Controller struct {
	cfg *config.Config
}

// NewController crea el controller de .well-known.
func NewController(cfg *config.Config) *Controller {
	return &Controller{cfg: cfg}
}

// AppleAppSiteAssociation handles GET /.well-known/apple-app-site-association.
func (c *Controller) AppleAppSiteAssociation(w http.ResponseWriter, r *http.Request) {
	apps := make([]string, 0, len(c.cfg.Mobile.IOS))
	for _, app := range c.cfg.Mobile.IOS {
		apps = append(apps, app.TeamID+"."+app.BundleID)
	}

	helpers.WriteJSON(w, http.StatusOK, map[string]any{
		"webcredentials": map[string]any{"apps": apps},
	})
}

// AssetLinks handles GET /.well-known/assetlinks.json.
func (c *Controller) AssetLinks(w http.ResponseWriter, r *http.Request) {
	links := make([]map[string]any, 0, len(c.cfg.Mobile.Android))
	for _, app := range c.cfg.Mobile.Android {
		links = append(links, map[string]any{
			"relation": []string{"delegate_permission/common.handle_all_urls"},
			"target": map[string]any{
				"namespace":                "android_app",
				"package_name":             app.PackageName,
				"sha256_cert_fingerprints": app.SHA256Fingerprints,
			},
		})
	}

	helpers.WriteJSON(w, http.StatusOK, links)
}

// MobileApps handles GET /.well-known/fido/mobile/apps.
func (c *Controller) MobileApps(w http.ResponseWriter, r *http.Request) {
	helpers.WriteJSON(w, http.StatusOK, map[string]any{
		"ios":     c.iosApps(),
		"android": c.androidApps(),
	})
}

// IOSApps handles GET /.well-known/fido/mobile/ios-apps.
func (c *Controller) IOSApps(w http.ResponseWriter, r *http.Request) {
	helpers.WriteJSON(w, http.StatusOK, c.iosApps())
}

// AndroidApps handles GET /.well-known/fido/mobile/android-apps.
func (c *Controller) AndroidApps(w http.ResponseWriter, r *http.Request) {
	helpers.WriteJSON(w, http.StatusOK, c.androidApps())
}

func (c *Controller) iosApps() []map[string]any {
	out := make([]map[string]any, 0, len(c.cfg.Mobile.IOS))
	for _, app := range c.cfg.Mobile.IOS {
		out = append(out, map[string]any{
			"teamId":      app.TeamID,
			"bundleId":    app.BundleID,
			"fullAppId":   app.TeamID + "." + app.BundleID,
			"description": app.Description,
		})
	}
	return out
}

func (c *Controller) androidApps() []map[string]any {
	out := make([]map[string]any, 0, len(c.cfg.Mobile.Android))
	for _, app := range c.cfg.Mobile.Android {
		out = append(out, map[string]any{
			"packageName":        app.PackageName,
			"sha256Fingerprints": app.SHA256Fingerprints,
			"description":        app.Description,
		})
	}
	return out
}
