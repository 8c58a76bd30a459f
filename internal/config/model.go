// internal/config/model.go
//
// Typed configuration model for regform.
//
// Context
// -------
// These structs define the shape of the configuration tree that
// `internal/config/loader.go` builds from three overlay layers:
//
//   • optional `.env`                           - dotenv values,
//   • `conf/global.yaml`                        - primary static file,
//   • `REGFORM_`-prefixed environment overrides - highest precedence.
//
// Any string value beginning with `vault:` is resolved through Vault
// before validation, so the model never hands a Vault URI to callers.
//
// Notes
// -----
//   • Struct tags use `koanf:"…"`, not `yaml:"…"`.
//   • The `Paths` block is filled at runtime; YAML must not try to set it.

package config

import "time"

//
// HTTP section
//

// HTTP holds web-server tunables.
type HTTP struct {
	ListenAddr string `koanf:"listen_addr" validate:"required,hostname_port"`
	ForceHTTPS bool   `koanf:"force_https"`
}

//
// Outbound endpoints
//

// API points at the remote users service that receives registrations.
//
// Timeout is zero by default: the submission call has no timeout of its own.
type API struct {
	BaseURL string        `koanf:"base_url" validate:"required,url"`
	Token   string        `koanf:"token"`
	Timeout time.Duration `koanf:"timeout"  validate:"min=0"`
}

// Countries points at the public country list.
type Countries struct {
	URL string `koanf:"url" validate:"required,url"`
}

//
// Sessions and security
//

// Sessions bounds in-memory form state.
type Sessions struct {
	MaxEntries int    `koanf:"max_entries" validate:"min=1"`
	CookieName string `koanf:"cookie_name"`
}

// Security holds the CSRF key (base64url, ≥32 bytes decoded).  Blank means
// an ephemeral key.
type Security struct {
	CSRFKey string `koanf:"csrf_key"`
}

//
// GeoIP
//

// GeoIP points at an optional GeoLite2 Country or City database used to tag
// access-log lines with the client country.  Blank disables the lookup.
type GeoIP struct {
	DBPath string `koanf:"db_path"`
}

//
// Logging
//

// Logging controls the zap/lumberjack sink.
type Logging struct {
	Dir   string `koanf:"dir"`
	Level string `koanf:"level" validate:"omitempty,oneof=debug info warn error"`
}

//
// Paths section (runtime only)
//

// Paths is resolved at runtime, never set in YAML or env.
type Paths struct {
	Root string // REGFORM_ROOT or discovered parent
}

//
// Root aggregate
//

// Config is the immutable aggregate returned by Load() and cached in an
// atomic.Pointer for lock-free reads.
type Config struct {
	HTTP      HTTP      `koanf:"http"`
	API       API       `koanf:"api"`
	Countries Countries `koanf:"countries"`
	Sessions  Sessions  `koanf:"sessions"`
	Security  Security  `koanf:"security"`
	GeoIP     GeoIP     `koanf:"geoip"`
	Logging   Logging   `koanf:"logging"`
	Paths     Paths     `koanf:"-"` // not loaded from config files
}

// applyDefaults fills values the YAML may omit.
func applyDefaults(c *Config) {
	if c.HTTP.ListenAddr == "" {
		c.HTTP.ListenAddr = ":8080"
	}
	if c.Countries.URL == "" {
		c.Countries.URL = "https://restcountries.com/v3.1/all"
	}
	if c.Sessions.MaxEntries == 0 {
		c.Sessions.MaxEntries = 10000
	}
	if c.Sessions.CookieName == "" {
		c.Sessions.CookieName = "regform_session"
	}
	if c.Logging.Level == "" {
		c.Logging.Level = "info"
	}
}
