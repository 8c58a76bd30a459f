// internal/config/loader.go
//
// Configuration loader.
//
/*
Context
--------
`Load()` builds one immutable `Config` struct from three layers (highest
precedence last):

 1. Optional `.env` file at `<root>/conf/.env`.
 2. `conf/global.yaml`.
 3. Environment variables prefixed `REGFORM_`, where `__` maps to "."
    (e.g., `REGFORM_API__BASE_URL → api.base_url`).

After merging, the tree is unmarshalled into typed structs, defaults are
applied, `vault:` references are resolved, the result is validated, enriched
with the runtime root path, and cached in an `atomic.Pointer` for lock-free
reads.

Instrumentation
---------------
  • DEBUG - root discovery, YAML read.
  • ERROR - YAML parse, env overlay, unmarshal, secret, validation failures.
  • INFO  - final "config loaded" with key highlights.
  • Logs use the global sugared logger (`zap.S()`) so early boot issues
    surface before the file logger is installed.
*/
package config

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync/atomic"
	"time"

	"github.com/joho/godotenv"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	koanf "github.com/knadh/koanf/v2"
	"go.uber.org/zap"
)

// EnvPrefix namespaces environment overrides.
const EnvPrefix = "REGFORM_"

// vaultPrefix marks a value to resolve through Vault: "vault:<path>#<key>".
const vaultPrefix = "vault:"

// secretTTL caches resolved secrets inside the Vault client.
const secretTTL = 10 * time.Minute

// SecretGetter resolves one key of a KV secret.  *vault.Client satisfies it.
type SecretGetter interface {
	GetKV(ctx context.Context, secretPath, key string, ttl time.Duration) (string, error)
}

var current atomic.Pointer[Config]

/*──────────────────────────── root discovery ───────────────────────────────*/

// RootDir resolves REGFORM_ROOT or climbs directories until conf/global.yaml
// is found.  Falls back to the executable's parent for a bin/ layout.
func RootDir() string {
	if r := os.Getenv("REGFORM_ROOT"); r != "" {
		return r
	}

	wd, _ := os.Getwd()
	dir := wd
	for {
		if _, err := os.Stat(filepath.Join(dir, "conf", "global.yaml")); err == nil {
			return dir
		}
		parent := filepath.Dir(dir)
		if parent == dir { // reached filesystem root
			break
		}
		dir = parent
	}

	exe, _ := os.Executable()
	if filepath.Base(filepath.Dir(exe)) == "bin" {
		return filepath.Dir(filepath.Dir(exe))
	}
	return wd
}

/*─────────────────────────────── loader ───────────────────────────────────*/

// Load reads config from the discovered root.  secrets may be nil when no
// value uses the vault: prefix.
func Load(ctx context.Context, secrets SecretGetter) (*Config, error) {
	return LoadFrom(ctx, RootDir(), secrets)
}

// LoadFrom reads .env, YAML, env overrides, resolves secrets, validates, and
// caches Config using root as the project directory.
func LoadFrom(ctx context.Context, root string, secrets SecretGetter) (*Config, error) {
	zap.S().Debugw("config root resolved", "root", root)

	// .env (optional, no error if missing)
	_ = godotenv.Load(filepath.Join(root, "conf", ".env"))

	k := koanf.New(".")

	yamlPath := filepath.Join(root, "conf", "global.yaml")
	if err := k.Load(file.Provider(yamlPath), yaml.Parser()); err != nil {
		zap.S().Errorw("config yaml load failed", "file", yamlPath, "err", err)
		return nil, fmt.Errorf("load %s: %w", yamlPath, err)
	}
	zap.S().Debugw("config yaml loaded", "file", yamlPath)

	// Env overrides: REGFORM_API__BASE_URL → api.base_url
	if err := k.Load(env.Provider(EnvPrefix, ".", envKey), nil); err != nil {
		zap.S().Errorw("config env overlay failed", "err", err)
		return nil, fmt.Errorf("env overlay: %w", err)
	}

	var cfg Config
	if err := k.Unmarshal("", &cfg); err != nil {
		zap.S().Errorw("config unmarshal failed", "err", err)
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}
	applyDefaults(&cfg)

	if err := resolveSecrets(ctx, &cfg, secrets); err != nil {
		zap.S().Errorw("config secret resolution failed", "err", err)
		return nil, err
	}

	cfg.Paths.Root = root
	if err := validateStruct(&cfg); err != nil {
		zap.S().Errorw("config validation failed", "err", err)
		return nil, err
	}

	current.Store(&cfg)
	zap.S().Infow("config loaded",
		"listen_addr", cfg.HTTP.ListenAddr,
		"api_base_url", cfg.API.BaseURL,
		"countries_url", cfg.Countries.URL,
		"root", cfg.Paths.Root,
	)
	return &cfg, nil
}

// envKey maps REGFORM_API__BASE_URL to api.base_url.
func envKey(s string) string {
	s = strings.TrimPrefix(s, EnvPrefix)
	return strings.ToLower(strings.ReplaceAll(s, "__", "."))
}

/*──────────────────────────── secrets ─────────────────────────────────────*/

// secretFields lists values that may hold a vault: reference.
func secretFields(c *Config) []*string {
	return []*string{&c.API.Token, &c.Security.CSRFKey}
}

func resolveSecrets(ctx context.Context, c *Config, secrets SecretGetter) error {
	for _, p := range secretFields(c) {
		if !strings.HasPrefix(*p, vaultPrefix) {
			continue
		}
		if secrets == nil {
			return fmt.Errorf("config value %q needs vault, but no vault client is configured", *p)
		}
		path, key, ok := strings.Cut(strings.TrimPrefix(*p, vaultPrefix), "#")
		if !ok || path == "" || key == "" {
			return fmt.Errorf("config value %q: want vault:<path>#<key>", *p)
		}
		val, err := secrets.GetKV(ctx, path, key, secretTTL)
		if err != nil {
			return fmt.Errorf("resolve %s#%s: %w", path, key, err)
		}
		*p = val
	}
	return nil
}

/*──────────────────────────── helpers ─────────────────────────────────────*/

// Get returns the last successfully loaded Config, or nil.
func Get() *Config { return current.Load() }
