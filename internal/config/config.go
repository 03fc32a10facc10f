package config

import (
	"errors"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// ErrMissingClientCredentials se retorna cuando falta client key/secret.
// Sin credenciales de cliente no se puede hablar con el identity provider.
var ErrMissingClientCredentials = errors.New("config: provider oauth client key/secret are required")

type Config struct {
	// Bloque app (opcional en YAML). Si no está, queda vacío.
	App struct {
		// dev | staging | prod
		Env string `yaml:"app_env"`
	} `yaml:"app"`

	Server struct {
		Addr               string   `yaml:"addr"`
		CORSAllowedOrigins []string `yaml:"cors_allowed_origins"`
		ReadTimeout        string   `yaml:"read_timeout"`
		WriteTimeout       string   `yaml:"write_timeout"`
	} `yaml:"server"`

	// Provider es el identity provider remoto (WSO2 Identity Server).
	Provider struct {
		BaseURL      string `yaml:"base_url"`
		TenantDomain string `yaml:"tenant_domain"`

		OAuth struct {
			ClientKey    string `yaml:"client_key"`
			ClientSecret string `yaml:"client_secret"`
			RedirectURI  string `yaml:"redirect_uri"`
		} `yaml:"oauth"`

		Admin struct {
			Username string `yaml:"username"`
			Password string `yaml:"password"`
		} `yaml:"admin"`

		// Timeout del transporte HTTP hacia el provider.
		Timeout string `yaml:"timeout"`
	} `yaml:"provider"`

	FIDO struct {
		// AppID es el origin que el provider espera como appId en los
		// start-registration / start-authentication.
		AppID string `yaml:"app_id"`
	} `yaml:"fido"`

	// Mobile define las apps nativas para los endpoints .well-known.
	Mobile struct {
		IOS []struct {
			TeamID      string `yaml:"team_id"`
			BundleID    string `yaml:"bundle_id"`
			Description string `yaml:"description"`
		} `yaml:"ios"`
		Android []struct {
			PackageName        string   `yaml:"package_name"`
			SHA256Fingerprints []string `yaml:"sha256_cert_fingerprints"`
			Description        string   `yaml:"description"`
		} `yaml:"android"`
	} `yaml:"mobile"`
}

func Load(path string) (*Config, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var c Config
	if err := yaml.Unmarshal(b, &c); err != nil {
		return nil, err
	}

	applyEnv(&c)

	// sane defaults
	if c.Server.Addr == "" {
		c.Server.Addr = ":8080"
	}
	if c.Server.ReadTimeout == "" {
		c.Server.ReadTimeout = "10s"
	}
	if c.Server.WriteTimeout == "" {
		c.Server.WriteTimeout = "30s"
	}
	if c.Provider.Timeout == "" {
		c.Provider.Timeout = "15s"
	}
	if c.Provider.TenantDomain == "" {
		c.Provider.TenantDomain = "carbon.super"
	}
	if c.FIDO.AppID == "" {
		c.FIDO.AppID = strings.TrimRight(c.Provider.BaseURL, "/")
	}

	// validate string durations
	for _, d := range []string{c.Server.ReadTimeout, c.Server.WriteTimeout, c.Provider.Timeout} {
		if _, err := time.ParseDuration(d); err != nil {
			return nil, err
		}
	}

	if err := c.Validate(); err != nil {
		return nil, err
	}
	return &c, nil
}

// Validate chequea lo mínimo para poder arrancar.
func (c *Config) Validate() error {
	if strings.TrimSpace(c.Provider.OAuth.ClientKey) == "" ||
		strings.TrimSpace(c.Provider.OAuth.ClientSecret) == "" {
		return ErrMissingClientCredentials
	}
	return nil
}

// ProviderTimeout retorna el timeout parseado (ya validado en Load).
func (c *Config) ProviderTimeout() time.Duration {
	d, _ := time.ParseDuration(c.Provider.Timeout)
	return d
}

// applyEnv permite override por variables de entorno (gana el env).
func applyEnv(c *Config) {
	set := func(dst *string, key string) {
		if v := strings.TrimSpace(os.Getenv(key)); v != "" {
			*dst = v
		}
	}
	set(&c.App.Env, "APP_ENV")
	set(&c.Server.Addr, "SERVER_ADDR")
	set(&c.Provider.BaseURL, "PROVIDER_BASE_URL")
	set(&c.Provider.TenantDomain, "PROVIDER_TENANT_DOMAIN")
	set(&c.Provider.OAuth.ClientKey, "PROVIDER_CLIENT_KEY")
	set(&c.Provider.OAuth.ClientSecret, "PROVIDER_CLIENT_SECRET")
	set(&c.Provider.OAuth.RedirectURI, "PROVIDER_REDIRECT_URI")
	set(&c.Provider.Admin.Username, "PROVIDER_ADMIN_USERNAME")
	set(&c.Provider.Admin.Password, "PROVIDER_ADMIN_PASSWORD")
	set(&c.FIDO.AppID, "FIDO_APP_ID")

	if v := strings.TrimSpace(os.Getenv("CORS_ALLOWED_ORIGINS")); v != "" {
		parts := strings.Split(v, ",")
		out := make([]string, 0, len(parts))
		for _, p := range parts {
			if p = strings.TrimSpace(p); p != "" {
				out = append(out, p)
			}
		}
		c.Server.CORSAllowedOrigins = out
	}
}
