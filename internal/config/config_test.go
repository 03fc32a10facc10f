package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, yaml string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(yaml), 0o600))
	return path
}

const minimalYAML = `
provider:
  base_url: https://idp.example.com
  oauth:
    client_key: key-1
    client_secret: secret-1
`

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load(writeConfig(t, minimalYAML))
	require.NoError(t, err)

	require.Equal(t, ":8080", cfg.Server.Addr)
	require.Equal(t, "carbon.super", cfg.Provider.TenantDomain)
	require.Equal(t, 15*time.Second, cfg.ProviderTimeout())
	require.Equal(t, "https://idp.example.com", cfg.FIDO.AppID, "AppID default es el base URL")
}

func TestLoad_FullFile(t *testing.T) {
	cfg, err := Load(writeConfig(t, `
app:
  app_env: prod
server:
  addr: ":9090"
  cors_allowed_origins: ["https://app.example.com"]
  read_timeout: 5s
  write_timeout: 20s
provider:
  base_url: https://idp.example.com
  tenant_domain: acme.com
  timeout: 7s
  oauth:
    client_key: key-1
    client_secret: secret-1
    redirect_uri: https://app.example.com/cb
  admin:
    username: admin
    password: pass
fido:
  app_id: https://gateway.example.com
mobile:
  ios:
    - team_id: TEAM123456
      bundle_id: com.example.app
      description: iOS app
  android:
    - package_name: com.example.app
      sha256_cert_fingerprints: ["AA:BB:CC"]
      description: Android app
`))
	require.NoError(t, err)

	require.Equal(t, "prod", cfg.App.Env)
	require.Equal(t, ":9090", cfg.Server.Addr)
	require.Equal(t, "acme.com", cfg.Provider.TenantDomain)
	require.Equal(t, 7*time.Second, cfg.ProviderTimeout())
	require.Equal(t, "https://gateway.example.com", cfg.FIDO.AppID)
	require.Len(t, cfg.Mobile.IOS, 1)
	require.Equal(t, "TEAM123456", cfg.Mobile.IOS[0].TeamID)
	require.Len(t, cfg.Mobile.Android, 1)
	require.Equal(t, []string{"AA:BB:CC"}, cfg.Mobile.Android[0].SHA256Fingerprints)
}

func TestLoad_EnvOverridesFile(t *testing.T) {
	t.Setenv("PROVIDER_BASE_URL", "https://override.example.com")
	t.Setenv("SERVER_ADDR", ":7070")
	t.Setenv("CORS_ALLOWED_ORIGINS", "https://a.example.com, https://b.example.com")

	cfg, err := Load(writeConfig(t, minimalYAML))
	require.NoError(t, err)

	require.Equal(t, "https://override.example.com", cfg.Provider.BaseURL)
	require.Equal(t, ":7070", cfg.Server.Addr)
	require.Equal(t, []string{"https://a.example.com", "https://b.example.com"}, cfg.Server.CORSAllowedOrigins)
}

func TestLoad_MissingClientCredentials(t *testing.T) {
	_, err := Load(writeConfig(t, `
provider:
  base_url: https://idp.example.com
`))
	require.ErrorIs(t, err, ErrMissingClientCredentials)
}

func TestLoad_InvalidDuration(t *testing.T) {
	_, err := Load(writeConfig(t, minimalYAML+`
server:
  read_timeout: nope
`))
	require.Error(t, err)
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	require.Error(t, err)
}
