// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 HoloMUSH Contributors

// Package config loads service configuration from flag defaults, an optional
// YAML file, explicitly set flags and the DATABASE_URL environment variable.
package config

import (
	"errors"
	"io/fs"
	"os"
	"strings"
	"time"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/posflag"
	"github.com/knadh/koanf/v2"
	"github.com/samber/oops"
	"github.com/spf13/pflag"

	"github.com/holomush/accounts/internal/credential"
	"github.com/holomush/accounts/internal/logging"
	"github.com/holomush/accounts/internal/session"
	"github.com/holomush/accounts/internal/session/token"
	"github.com/holomush/accounts/internal/xdg"
)

// Session backends.
const (
	BackendStore = "store"
	BackendJWT   = "jwt"
)

// DatabaseURLEnv fills database.url when neither the file nor a flag sets it.
const DatabaseURLEnv = "DATABASE_URL"

// Config is the full service configuration.
type Config struct {
	Database   Database   `koanf:"database"`
	HTTP       HTTP       `koanf:"http"`
	Metrics    Metrics    `koanf:"metrics"`
	Log        Log        `koanf:"log"`
	Credential Credential `koanf:"credential"`
	Session    Session    `koanf:"session"`
}

// Database configures the PostgreSQL connection.
type Database struct {
	URL             string        `koanf:"url"`
	ConnectTimeout  time.Duration `koanf:"connect_timeout"`
	ConnectAttempts int           `koanf:"connect_attempts"`
}

// HTTP configures the account API listener and its session cookie.
type HTTP struct {
	Addr         string `koanf:"addr"`
	CookieName   string `koanf:"cookie_name"`
	CookieSecure bool   `koanf:"cookie_secure"`
}

// Metrics configures the metrics and health listener. An empty Addr disables it.
type Metrics struct {
	Addr string `koanf:"addr"`
}

// Log configures logging.
type Log struct {
	Format string `koanf:"format"`
	Level  string `koanf:"level"`
}

// Credential configures the credential codec.
type Credential struct {
	Iterations int `koanf:"iterations"`
}

// Session configures the session backend.
type Session struct {
	Backend       string        `koanf:"backend"`
	TTL           time.Duration `koanf:"ttl"`
	PersistentTTL time.Duration `koanf:"persistent_ttl"`
	ReapInterval  time.Duration `koanf:"reap_interval"`
	JWTSecret     string        `koanf:"jwt_secret"`
}

// Defaults.
const (
	DefaultHTTPAddr        = "127.0.0.1:8080"
	DefaultMetricsAddr     = "127.0.0.1:9100"
	DefaultCookieName      = "accounts_session"
	DefaultConnectTimeout  = 30 * time.Second
	DefaultConnectAttempts = 5
)

// flagKey maps a flag name to its config key: the part before the first
// hyphen is the section, the rest becomes a snake_case key.
func flagKey(name string) string {
	section, rest, ok := strings.Cut(name, "-")
	if !ok {
		return ""
	}
	return section + "." + strings.ReplaceAll(rest, "-", "_")
}

// keyAnnotation marks the flags RegisterFlags owns with their config key.
const keyAnnotation = "accounts/config-key"

// RegisterFlags adds one flag per config key to fs.
func RegisterFlags(fs *pflag.FlagSet) {
	existing := make(map[string]bool)
	fs.VisitAll(func(f *pflag.Flag) { existing[f.Name] = true })

	fs.String("database-url", "", "PostgreSQL connection URL (default: $"+DatabaseURLEnv+")")
	fs.Duration("database-connect-timeout", DefaultConnectTimeout, "timeout for establishing the database connection")
	fs.Int("database-connect-attempts", DefaultConnectAttempts, "database ping attempts at startup")
	fs.String("http-addr", DefaultHTTPAddr, "account API listen address")
	fs.String("http-cookie-name", DefaultCookieName, "session cookie name")
	fs.Bool("http-cookie-secure", false, "mark the session cookie Secure")
	fs.String("metrics-addr", DefaultMetricsAddr, "metrics/health HTTP address (empty = disabled)")
	fs.String("log-format", logging.FormatJSON, "log format (json or text)")
	fs.String("log-level", "info", "log level (debug, info, warn, error)")
	fs.Int("credential-iterations", credential.RecommendedIterations,
		"PBKDF2 iterations for new credential records (1000 writes the legacy layout)")
	fs.String("session-backend", BackendStore, "session backend (store or jwt)")
	fs.Duration("session-ttl", session.DefaultTTL, "lifetime of non-persistent sessions")
	fs.Duration("session-persistent-ttl", session.DefaultPersistentTTL, "lifetime of persistent sessions")
	fs.Duration("session-reap-interval", session.DefaultReapInterval, "interval between expired session purges")
	fs.String("session-jwt-secret", "", "HMAC secret for the jwt backend")

	fs.VisitAll(func(f *pflag.Flag) {
		if !existing[f.Name] {
			_ = fs.SetAnnotation(f.Name, keyAnnotation, []string{flagKey(f.Name)})
		}
	})
}

// Load builds a Config. path names the YAML file; when empty the XDG default
// is used if it exists. Values from explicitly changed flags win over the
// file, which wins over flag defaults.
func Load(flags *pflag.FlagSet, path string) (*Config, error) {
	k := koanf.New(".")

	if path == "" {
		if p, err := xdg.ConfigFile(); err == nil {
			if _, statErr := os.Stat(p); !errors.Is(statErr, fs.ErrNotExist) {
				path = p
			}
		}
	}
	if path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, oops.Code("CONFIG_LOAD_FAILED").With("path", path).Wrap(err)
		}
	}

	provider := posflag.ProviderWithFlag(flags, ".", k, func(f *pflag.Flag) (string, any) {
		key := f.Annotations[keyAnnotation]
		if len(key) != 1 {
			return "", nil
		}
		return key[0], posflag.FlagVal(flags, f)
	})
	if err := k.Load(provider, nil); err != nil {
		return nil, oops.Code("CONFIG_LOAD_FAILED").With("operation", "load flags").Wrap(err)
	}

	if k.String("database.url") == "" {
		if url := os.Getenv(DatabaseURLEnv); url != "" {
			if err := k.Set("database.url", url); err != nil {
				return nil, oops.Code("CONFIG_LOAD_FAILED").With("operation", "apply environment").Wrap(err)
			}
		}
	}

	var cfg Config
	if err := k.Unmarshal("", &cfg); err != nil {
		return nil, oops.Code("CONFIG_INVALID").With("operation", "decode config").Wrap(err)
	}
	return &cfg, nil
}

// Validate checks the settings every command depends on.
func (c *Config) Validate() error {
	var problems []string
	add := func(p string) { problems = append(problems, p) }

	if _, err := logging.ParseLevel(c.Log.Level); err != nil {
		add("log.level must be debug, info, warn or error")
	}
	if c.Log.Format != logging.FormatJSON && c.Log.Format != logging.FormatText {
		add("log.format must be json or text")
	}
	if c.Credential.Iterations < credential.LegacyIterations || c.Credential.Iterations > credential.MaxIterations {
		add("credential.iterations is out of range")
	}
	if c.Database.ConnectAttempts < 1 {
		add("database.connect_attempts must be at least 1")
	}
	if c.Database.ConnectTimeout <= 0 {
		add("database.connect_timeout must be positive")
	}
	if c.HTTP.Addr == "" {
		add("http.addr is required")
	}
	if c.HTTP.CookieName == "" {
		add("http.cookie_name is required")
	}
	if c.Session.TTL <= 0 || c.Session.PersistentTTL <= 0 {
		add("session.ttl and session.persistent_ttl must be positive")
	}
	if c.Session.ReapInterval <= 0 {
		add("session.reap_interval must be positive")
	}
	switch c.Session.Backend {
	case BackendStore:
	case BackendJWT:
		if len(c.Session.JWTSecret) < token.MinSecretLength {
			add("session.jwt_secret must be set for the jwt backend")
		}
	default:
		add("session.backend must be store or jwt")
	}

	if len(problems) > 0 {
		return oops.Code("CONFIG_INVALID").
			With("problems", problems).
			Errorf("invalid configuration: %s", strings.Join(problems, "; "))
	}
	return nil
}

// RequireDatabase reports CONFIG_INVALID when no database URL is configured.
func (c *Config) RequireDatabase() error {
	if c.Database.URL == "" {
		return oops.Code("CONFIG_INVALID").
			Errorf("database.url is required (set it in the config file, --database-url or $%s)", DatabaseURLEnv)
	}
	return nil
}
