package idp

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"

	"github.com/anhngo/fido-gateway/internal/observability/logger"
)

// Token es el resultado normalizado de cualquier grant. Inmutable; no se
// persiste más allá del uso del caller.
type Token struct {
	AccessToken  string
	RefreshToken string
	TokenType    string
	ExpiresIn    int64

	// Raw preserva todos los campos del provider (id_token, scope, etc).
	Raw map[string]any
}

// ClientCredentialsToken obtiene un token con grant_type=client_credentials.
func (c *Client) ClientCredentialsToken(ctx context.Context, scope string) (*Token, error) {
	form := url.Values{}
	form.Set("grant_type", "client_credentials")
	if scope == "" {
		scope = "openid"
	}
	form.Set("scope", scope)
	return c.tokenRequest(ctx, form)
}

// PasswordToken obtiene un token con grant_type=password. Sólo se usa para
// crear la sesión administrativa y para el login directo de usuario.
func (c *Client) PasswordToken(ctx context.Context, username, password, scope string) (*Token, error) {
	form := url.Values{}
	form.Set("grant_type", "password")
	form.Set("username", username)
	form.Set("password", password)
	if scope == "" {
		scope = "openid"
	}
	form.Set("scope", scope)
	return c.tokenRequest(ctx, form)
}

// AuthorizationCodeToken intercambia un authorization code por tokens.
func (c *Client) AuthorizationCodeToken(ctx context.Context, code, redirectURI, scope string) (*Token, error) {
	form := url.Values{}
	form.Set("grant_type", "authorization_code")
	form.Set("code", code)
	if redirectURI == "" {
		redirectURI = c.cfg.RedirectURI
	}
	form.Set("redirect_uri", redirectURI)
	if scope != "" {
		form.Set("scope", scope)
	}
	return c.tokenRequest(ctx, form)
}

// RefreshToken renueva tokens con grant_type=refresh_token.
func (c *Client) RefreshToken(ctx context.Context, refreshToken, scope string) (*Token, error) {
	form := url.Values{}
	form.Set("grant_type", "refresh_token")
	form.Set("refresh_token", refreshToken)
	if scope != "" {
		form.Set("scope", scope)
	}
	return c.tokenRequest(ctx, form)
}

// Revoke revoca un token (RFC 7009). El provider responde 200 sin body útil.
func (c *Client) Revoke(ctx context.Context, token, tokenTypeHint string) error {
	form := url.Values{}
	form.Set("token", token)
	if tokenTypeHint != "" {
		form.Set("token_type_hint", tokenTypeHint)
	}
	status, body, err := c.postForm(ctx, c.cfg.BaseURL+"/oauth2/revoke", form, c.basicAuth())
	if err != nil {
		return err
	}
	if !is2xx(status) {
		return upstreamErr(status, body)
	}
	return nil
}

// Introspect consulta el estado de un token (RFC 7662). Los valores del
// response conservan su tipo JSON (bool/number/string); el contrato de
// introspección del provider depende de eso (active es boolean).
func (c *Client) Introspect(ctx context.Context, token string) (map[string]any, error) {
	form := url.Values{}
	form.Set("token", token)
	status, body, err := c.postForm(ctx, c.cfg.BaseURL+"/oauth2/introspect", form, c.basicAuth())
	if err != nil {
		return nil, err
	}
	if !is2xx(status) {
		return nil, upstreamErr(status, body)
	}
	var out map[string]any
	if err := json.Unmarshal(body, &out); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrProtocol, err)
	}
	return out, nil
}

// tokenRequest ejecuta el POST al token endpoint y decodifica el resultado.
func (c *Client) tokenRequest(ctx context.Context, form url.Values) (*Token, error) {
	grant := form.Get("grant_type")
	log := logger.From(ctx).With(logger.Layer("idp"), logger.Grant(grant))

	status, body, err := c.postForm(ctx, c.cfg.BaseURL+"/oauth2/token", form, c.basicAuth())
	if err != nil {
		return nil, err
	}
	if !is2xx(status) {
		log.Warn("token request rejected", logger.Upstream(status))
		return nil, upstreamErr(status, body)
	}

	tok, err := decodeToken(body)
	if err != nil {
		log.Error("token response missing access_token", logger.Upstream(status))
		return nil, err
	}
	log.Debug("token issued", logger.Any("expires_in", tok.ExpiresIn))
	return tok, nil
}

// decodeToken decodifica el body del token endpoint. Un 2xx sin access_token
// es una violación de contrato: nunca retornamos un Token sin token.
func decodeToken(body []byte) (*Token, error) {
	var raw map[string]any
	if err := json.Unmarshal(body, &raw); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrProtocol, err)
	}
	access, _ := raw["access_token"].(string)
	if access == "" {
		return nil, fmt.Errorf("%w: no access_token in response", ErrProtocol)
	}
	tok := &Token{AccessToken: access, Raw: raw}
	if v, ok := raw["refresh_token"].(string); ok {
		tok.RefreshToken = v
	}
	if v, ok := raw["token_type"].(string); ok {
		tok.TokenType = v
	}
	if v, ok := raw["expires_in"].(float64); ok {
		tok.ExpiresIn = int64(v)
	}
	return tok, nil
}
