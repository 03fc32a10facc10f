package idp

import (
	"net/url"

	"github.com/google/uuid"
)

// BuildAuthorizationURL arma la URL de /oauth2/authorize para el flujo
// authorization-code clásico (con redirect). Si state viene vacío se genera
// uno aleatorio; el caller debe verificarlo en el callback.
func (c *Client) BuildAuthorizationURL(redirectURI, state, scope string) (authURL string, usedState string) {
	if redirectURI == "" {
		redirectURI = c.cfg.RedirectURI
	}
	if state == "" {
		state = uuid.NewString()
	}
	if scope == "" {
		scope = "openid"
	}

	u, _ := url.Parse(c.cfg.BaseURL + "/oauth2/authorize")
	q := u.Query()
	q.Set("response_type", "code")
	q.Set("client_id", c.cfg.ClientKey)
	q.Set("redirect_uri", redirectURI)
	q.Set("scope", scope)
	q.Set("state", state)
	u.RawQuery = q.Encode()
	return u.String(), state
}
