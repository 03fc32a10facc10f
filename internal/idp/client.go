// Package idp implements the HTTP client against the WSO2 Identity Server:
// OAuth2 token grants, the native (API-driven) authentication flow and the
// WebAuthn user API. It shapes and relays opaque credential material; the
// cryptographic verification always happens inside the provider.
package idp

import (
	"bytes"
	"context"
	"encoding/base64"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/anhngo/fido-gateway/internal/metrics"
)

// Config agrupa lo necesario para hablar con el provider.
type Config struct {
	BaseURL      string
	TenantDomain string

	ClientKey    string
	ClientSecret string
	RedirectURI  string

	AdminUsername string
	AdminPassword string

	// AppID es el origin que el provider espera como appId en los starts
	// de WebAuthn (registration-options / authentication-options).
	AppID string
}

// Client es el cliente HTTP hacia el identity provider. Es stateless: toda
// respuesta se decodifica y retorna; no guarda tokens (eso es AdminSession).
type Client struct {
	cfg  Config
	http *http.Client
}

// New crea un Client. httpClient es el transporte compartido (pooled); si es
// nil se usa uno con timeout por defecto.
func New(cfg Config, httpClient *http.Client) (*Client, error) {
	if strings.TrimSpace(cfg.ClientKey) == "" || strings.TrimSpace(cfg.ClientSecret) == "" {
		return nil, ErrConfiguration
	}
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 15 * time.Second}
	}
	cfg.BaseURL = strings.TrimRight(cfg.BaseURL, "/")
	return &Client{cfg: cfg, http: httpClient}, nil
}

// basicAuth arma el header Basic con las credenciales de cliente.
func (c *Client) basicAuth() string {
	creds := c.cfg.ClientKey + ":" + c.cfg.ClientSecret
	return "Basic " + base64.StdEncoding.EncodeToString([]byte(creds))
}

// basicAuthFor arma Basic auth con un clientID arbitrario y nuestro secret.
// El init de native-auth autentica con el clientId del request.
func (c *Client) basicAuthFor(clientID string) string {
	creds := clientID + ":" + c.cfg.ClientSecret
	return "Basic " + base64.StdEncoding.EncodeToString([]byte(creds))
}

// tenantURL arma una URL bajo /t/{tenant}.
func (c *Client) tenantURL(path string) string {
	return c.cfg.BaseURL + "/t/" + c.cfg.TenantDomain + path
}

// postForm hace un POST form-encoded y retorna status + body.
func (c *Client) postForm(ctx context.Context, url string, form url.Values, authorization string) (int, []byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, strings.NewReader(form.Encode()))
	if err != nil {
		return 0, nil, err
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.Header.Set("Accept", "application/json")
	if authorization != "" {
		req.Header.Set("Authorization", authorization)
	}
	return c.do(req)
}

// postJSON hace un POST application/json con un body ya serializado.
func (c *Client) postJSON(ctx context.Context, url string, body []byte, authorization string) (int, []byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return 0, nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	if authorization != "" {
		req.Header.Set("Authorization", authorization)
	}
	return c.do(req)
}

func (c *Client) delete(ctx context.Context, url string, authorization string) (int, []byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodDelete, url, nil)
	if err != nil {
		return 0, nil, err
	}
	req.Header.Set("Accept", "application/json")
	if authorization != "" {
		req.Header.Set("Authorization", authorization)
	}
	return c.do(req)
}

func (c *Client) do(req *http.Request) (int, []byte, error) {
	op := opFromPath(req.URL.Path)
	start := time.Now()

	resp, err := c.http.Do(req)
	if err != nil {
		metrics.RecordUpstreamRequest(op, "error", time.Since(start))
		return 0, nil, err
	}
	defer resp.Body.Close()
	metrics.RecordUpstreamRequest(op, strconv.Itoa(resp.StatusCode), time.Since(start))

	b, err := io.ReadAll(resp.Body)
	if err != nil {
		return resp.StatusCode, nil, err
	}
	return resp.StatusCode, b, nil
}

// opFromPath reduce la URL del provider a una label de baja cardinalidad.
func opFromPath(p string) string {
	switch {
	case strings.Contains(p, "/oauth2/token"):
		return "token"
	case strings.Contains(p, "/oauth2/revoke"):
		return "revoke"
	case strings.Contains(p, "/oauth2/introspect"):
		return "introspect"
	case strings.Contains(p, "/oauth2/authorize"):
		return "authorize"
	case strings.Contains(p, "/oauth2/authn"):
		return "authn"
	case strings.Contains(p, "/me/webauthn"):
		return "webauthn"
	default:
		return "other"
	}
}

// formValues convierte un map plano en url.Values.
func formValues(m map[string]string) url.Values {
	v := url.Values{}
	for k, val := range m {
		v.Set(k, val)
	}
	return v
}

// upstreamErr construye el error para un non-2xx.
func upstreamErr(status int, body []byte) error {
	return &UpstreamError{Status: status, Body: string(body)}
}

func is2xx(status int) bool { return status >= 200 && status < 300 }
