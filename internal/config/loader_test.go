package config

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const baseYAML = `
http:
  listen_addr: ":9090"
api:
  base_url: "http://users.internal:3000"
  timeout: 5s
countries:
  url: "https://restcountries.com/v3.1/all"
`

func writeRoot(t *testing.T, yaml string) string {
	t.Helper()
	root := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(root, "conf"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(root, "conf", "global.yaml"), []byte(yaml), 0o644))
	return root
}

type fakeSecrets map[string]string

func (f fakeSecrets) GetKV(_ context.Context, path, key string, _ time.Duration) (string, error) {
	v, ok := f[path+"#"+key]
	if !ok {
		return "", errors.New("not found")
	}
	return v, nil
}

func TestLoadFrom_FileAndDefaults(t *testing.T) {
	root := writeRoot(t, baseYAML)

	cfg, err := LoadFrom(context.Background(), root, nil)
	require.NoError(t, err)

	assert.Equal(t, ":9090", cfg.HTTP.ListenAddr)
	assert.Equal(t, "http://users.internal:3000", cfg.API.BaseURL)
	assert.Equal(t, 5*time.Second, cfg.API.Timeout)
	assert.Equal(t, 10000, cfg.Sessions.MaxEntries)
	assert.Equal(t, "regform_session", cfg.Sessions.CookieName)
	assert.Equal(t, "info", cfg.Logging.Level)
	assert.Equal(t, root, cfg.Paths.Root)
	assert.Same(t, cfg, Get())
}

func TestLoadFrom_EnvOverrides(t *testing.T) {
	root := writeRoot(t, baseYAML)
	t.Setenv("REGFORM_API__BASE_URL", "https://users.example.com")
	t.Setenv("REGFORM_SESSIONS__MAX_ENTRIES", "5")

	cfg, err := LoadFrom(context.Background(), root, nil)
	require.NoError(t, err)
	assert.Equal(t, "https://users.example.com", cfg.API.BaseURL)
	assert.Equal(t, 5, cfg.Sessions.MaxEntries)
}

func TestLoadFrom_VaultReferences(t *testing.T) {
	root := writeRoot(t, baseYAML+`
security:
  csrf_key: "vault:secret/regform#csrf"
`)
	t.Setenv("REGFORM_API__TOKEN", "vault:secret/regform#api_token")

	cfg, err := LoadFrom(context.Background(), root, fakeSecrets{
		"secret/regform#csrf":      "c3J",
		"secret/regform#api_token": "tkn",
	})
	require.NoError(t, err)
	assert.Equal(t, "c3J", cfg.Security.CSRFKey)
	assert.Equal(t, "tkn", cfg.API.Token)
}

func TestLoadFrom_VaultErrors(t *testing.T) {
	root := writeRoot(t, `
api:
  base_url: "http://users.internal:3000"
  token: "vault:secret/regform#missing"
`)
	_, err := LoadFrom(context.Background(), root, nil)
	assert.ErrorContains(t, err, "no vault client")

	_, err = LoadFrom(context.Background(), root, fakeSecrets{})
	assert.ErrorContains(t, err, "resolve secret/regform#missing")

	bad := writeRoot(t, baseYAML+`
security:
  csrf_key: "vault:no-key"
`)
	_, err = LoadFrom(context.Background(), bad, fakeSecrets{})
	assert.ErrorContains(t, err, "want vault:<path>#<key>")
}

func TestLoadFrom_ValidationFails(t *testing.T) {
	root := writeRoot(t, `
http:
  listen_addr: "not a port"
api:
  base_url: "nope"
logging:
  level: "chatty"
`)
	_, err := LoadFrom(context.Background(), root, nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid config")
	assert.Contains(t, err.Error(), "Config.HTTP.ListenAddr")
	assert.Contains(t, err.Error(), "Config.API.BaseURL")
	assert.Contains(t, err.Error(), "Config.Logging.Level")
}

func TestLoadFrom_MissingFile(t *testing.T) {
	_, err := LoadFrom(context.Background(), t.TempDir(), nil)
	assert.Error(t, err)
}

func TestRootDir_EnvWins(t *testing.T) {
	t.Setenv("REGFORM_ROOT", "/srv/regform")
	assert.Equal(t, "/srv/regform", RootDir())
}

func TestEnvKey(t *testing.T) {
	assert.Equal(t, "api.base_url", envKey("REGFORM_API__BASE_URL"))
	assert.Equal(t, "http.listen_addr", envKey("REGFORM_HTTP__LISTEN_ADDR"))
}
