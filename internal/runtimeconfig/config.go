package runtimeconfig

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

var (
	ErrDefaultLocaleRequired   = errors.New("folio config: default locale is required")
	ErrDefaultLocaleNotListed  = errors.New("folio config: default locale must be part of the locale list")
	ErrStorageDriverUnknown    = errors.New("folio config: storage driver is invalid")
	ErrStorageDSNRequired      = errors.New("folio config: storage dsn is required")
	ErrAuthSecretRequired      = errors.New("folio config: auth secret is required")
	ErrAuthSecretTooShort      = errors.New("folio config: auth secret must be at least 32 bytes")
	ErrAuthTTLInvalid          = errors.New("folio config: auth token ttl must be positive")
	ErrMediaDirRequired        = errors.New("folio config: media directory is required")
	ErrMediaMaxBytesInvalid    = errors.New("folio config: media max bytes must be positive")
	ErrJobsIntervalInvalid     = errors.New("folio config: jobs interval must be positive when jobs are enabled")
	ErrAuditRetentionInvalid   = errors.New("folio config: audit retention must be zero or positive")
	ErrActionsTimeoutInvalid   = errors.New("folio config: action timeout must be zero or positive")
	ErrLoggingProviderUnknown  = errors.New("folio config: logging provider is invalid")
	ErrLoggingLevelInvalid     = errors.New("folio config: logging level is invalid")
	ErrLoggingFormatInvalid    = errors.New("folio config: logging format is invalid")
	ErrCacheTTLInvalid         = errors.New("folio config: cache ttl must be positive when cache is enabled")
	ErrBootstrapPasswordNeeded = errors.New("folio config: bootstrap admin password is required when an email is set")
)

// Config aggregates runtime settings for the portfolio service. Env tags are
// relative to the FOLIO_ prefix applied by LoadEnv.
type Config struct {
	DefaultLocale string          `env:"DEFAULT_LOCALE"`
	Locales       []string        `env:"LOCALES" envSeparator:","`
	Storage       StorageConfig   `envPrefix:"STORAGE_"`
	Cache         CacheConfig     `envPrefix:"CACHE_"`
	HTTP          HTTPConfig      `envPrefix:"HTTP_"`
	Auth          AuthConfig      `envPrefix:"AUTH_"`
	Media         MediaConfig     `envPrefix:"MEDIA_"`
	I18N          I18NConfig      `envPrefix:"I18N_"`
	Actions       ActionsConfig   `envPrefix:"ACTIONS_"`
	Audit         AuditConfig     `envPrefix:"AUDIT_"`
	Jobs          JobsConfig      `envPrefix:"JOBS_"`
	Logging       LoggingConfig   `envPrefix:"LOG_"`
	Bootstrap     BootstrapConfig `envPrefix:"ADMIN_"`
}

// StorageConfig selects the SQL driver backing the bun repositories.
type StorageConfig struct {
	Driver      string `env:"DRIVER"`
	DSN         string `env:"DSN"`
	Debug       bool   `env:"DEBUG"`
	AutoMigrate bool   `env:"AUTO_MIGRATE"`
}

// CacheConfig captures repository cache behaviour.
type CacheConfig struct {
	Enabled    bool          `env:"ENABLED"`
	DefaultTTL time.Duration `env:"TTL"`
}

type HTTPConfig struct {
	Addr            string        `env:"ADDR"`
	BaseURL         string        `env:"BASE_URL"`
	ReadTimeout     time.Duration `env:"READ_TIMEOUT"`
	WriteTimeout    time.Duration `env:"WRITE_TIMEOUT"`
	ShutdownTimeout time.Duration `env:"SHUTDOWN_TIMEOUT"`
	SecureCookies   bool          `env:"SECURE_COOKIES"`
	TrustProxy      bool          `env:"TRUST_PROXY"`
}

// AuthConfig configures signed session tokens.
type AuthConfig struct {
	Secret   string        `env:"SECRET"`
	Issuer   string        `env:"ISSUER"`
	Audience string        `env:"AUDIENCE"`
	TokenTTL time.Duration `env:"TOKEN_TTL"`
}

// MediaConfig controls upload handling.
type MediaConfig struct {
	Dir          string   `env:"DIR"`
	URLPrefix    string   `env:"URL_PREFIX"`
	MaxBytes     int64    `env:"MAX_BYTES"`
	AllowedTypes []string `env:"ALLOWED_TYPES" envSeparator:","`
}

// I18NConfig points at an optional directory overriding the embedded catalogs.
type I18NConfig struct {
	Dir string `env:"DIR"`
}

type ActionsConfig struct {
	Timeout time.Duration `env:"TIMEOUT"`
}

// AuditConfig captures audit log retention. Zero keeps entries forever.
type AuditConfig struct {
	Retention time.Duration `env:"RETENTION"`
}

// JobsConfig controls the background scheduler.
type JobsConfig struct {
	Enabled  bool          `env:"ENABLED"`
	Interval time.Duration `env:"INTERVAL"`
}

// LoggingConfig captures provider-specific options for runtime logging.
type LoggingConfig struct {
	Provider  string   `env:"PROVIDER"`
	Level     string   `env:"LEVEL"`
	Format    string   `env:"FORMAT"`
	AddSource bool     `env:"ADD_SOURCE"`
	Focus     []string `env:"FOCUS" envSeparator:","`
}

// BootstrapConfig seeds the first administrator when no admin exists.
type BootstrapConfig struct {
	Email    string `env:"EMAIL"`
	Password string `env:"PASSWORD"`
}

// DefaultConfig returns defaults suitable for a single-node sqlite install.
func DefaultConfig() Config {
	return Config{
		DefaultLocale: "en",
		Locales:       []string{"en", "ar"},
		Storage: StorageConfig{
			Driver:      "sqlite",
			DSN:         "file:folio.db?cache=shared&_fk=1",
			AutoMigrate: true,
		},
		Cache: CacheConfig{
			Enabled:    false,
			DefaultTTL: time.Minute,
		},
		HTTP: HTTPConfig{
			Addr:            ":8080",
			BaseURL:         "http://localhost:8080",
			ReadTimeout:     15 * time.Second,
			WriteTimeout:    30 * time.Second,
			ShutdownTimeout: 10 * time.Second,
		},
		Auth: AuthConfig{
			Issuer:   "folio",
			Audience: "folio-admin",
			TokenTTL: 12 * time.Hour,
		},
		Media: MediaConfig{
			Dir:       "uploads",
			URLPrefix: "/media/",
			MaxBytes:  10 << 20,
			AllowedTypes: []string{
				"image/jpeg",
				"image/png",
				"image/gif",
				"image/webp",
				"application/pdf",
			},
		},
		Actions: ActionsConfig{
			Timeout: 30 * time.Second,
		},
		Audit: AuditConfig{
			Retention: 180 * 24 * time.Hour,
		},
		Jobs: JobsConfig{
			Enabled:  true,
			Interval: time.Minute,
		},
		Logging: LoggingConfig{
			Provider: "console",
			Level:    "info",
		},
	}
}

// Validate performs high-level consistency checks.
func (cfg Config) Validate() error {
	def := strings.ToLower(strings.TrimSpace(cfg.DefaultLocale))
	if def == "" {
		return ErrDefaultLocaleRequired
	}
	if len(cfg.Locales) > 0 && !containsFold(cfg.Locales, def) {
		return fmt.Errorf("%w: %s", ErrDefaultLocaleNotListed, def)
	}
	switch normalize(cfg.Storage.Driver) {
	case "sqlite", "sqlite3", "postgres", "pg":
	default:
		return fmt.Errorf("%w: %s", ErrStorageDriverUnknown, cfg.Storage.Driver)
	}
	if strings.TrimSpace(cfg.Storage.DSN) == "" {
		return ErrStorageDSNRequired
	}
	if cfg.Cache.Enabled && cfg.Cache.DefaultTTL <= 0 {
		return ErrCacheTTLInvalid
	}
	if strings.TrimSpace(cfg.Auth.Secret) == "" {
		return ErrAuthSecretRequired
	}
	if len(cfg.Auth.Secret) < 32 {
		return ErrAuthSecretTooShort
	}
	if cfg.Auth.TokenTTL <= 0 {
		return ErrAuthTTLInvalid
	}
	if strings.TrimSpace(cfg.Media.Dir) == "" {
		return ErrMediaDirRequired
	}
	if cfg.Media.MaxBytes <= 0 {
		return ErrMediaMaxBytesInvalid
	}
	if cfg.Actions.Timeout < 0 {
		return ErrActionsTimeoutInvalid
	}
	if cfg.Audit.Retention < 0 {
		return ErrAuditRetentionInvalid
	}
	if cfg.Jobs.Enabled && cfg.Jobs.Interval <= 0 {
		return ErrJobsIntervalInvalid
	}
	if strings.TrimSpace(cfg.Bootstrap.Email) != "" && cfg.Bootstrap.Password == "" {
		return ErrBootstrapPasswordNeeded
	}
	provider := normalize(cfg.Logging.Provider)
	if provider != "" && !isSupportedProvider(provider) {
		return fmt.Errorf("%w: %s", ErrLoggingProviderUnknown, provider)
	}
	if level := strings.TrimSpace(cfg.Logging.Level); level != "" && !isSupportedLevel(level) {
		return fmt.Errorf("%w: %s", ErrLoggingLevelInvalid, level)
	}
	if provider == "gologger" {
		if format := strings.TrimSpace(cfg.Logging.Format); format != "" && !isSupportedFormat(format) {
			return fmt.Errorf("%w: %s", ErrLoggingFormatInvalid, format)
		}
	}
	return nil
}

// StorageDriver returns the canonical driver name ("sqlite" or "postgres").
func (cfg Config) StorageDriver() string {
	switch normalize(cfg.Storage.Driver) {
	case "postgres", "pg":
		return "postgres"
	default:
		return "sqlite"
	}
}

func normalize(value string) string {
	return strings.ToLower(strings.TrimSpace(value))
}

func containsFold(values []string, target string) bool {
	for _, v := range values {
		if strings.EqualFold(strings.TrimSpace(v), target) {
			return true
		}
	}
	return false
}

func isSupportedProvider(provider string) bool {
	switch provider {
	case "console", "gologger", "none":
		return true
	default:
		return false
	}
}

func isSupportedLevel(level string) bool {
	switch strings.ToLower(strings.TrimSpace(level)) {
	case "trace", "debug", "info", "warn", "warning", "error", "fatal":
		return true
	default:
		return false
	}
}

func isSupportedFormat(format string) bool {
	switch strings.ToLower(strings.TrimSpace(format)) {
	case "json", "console", "pretty":
		return true
	default:
		return false
	}
}
