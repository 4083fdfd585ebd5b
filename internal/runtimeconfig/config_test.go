package runtimeconfig_test

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/goliatone/go-folio/internal/runtimeconfig"
)

func validConfig() runtimeconfig.Config {
	cfg := runtimeconfig.DefaultConfig()
	cfg.Auth.Secret = "0123456789abcdef0123456789abcdef"
	return cfg
}

func TestConfigValidate_DefaultsRequireSecret(t *testing.T) {
	cfg := runtimeconfig.DefaultConfig()
	if err := cfg.Validate(); !errors.Is(err, runtimeconfig.ErrAuthSecretRequired) {
		t.Fatalf("expected ErrAuthSecretRequired, got %v", err)
	}
	if err := validConfig().Validate(); err != nil {
		t.Fatalf("Validate() returned unexpected error: %v", err)
	}
}

func TestConfigValidate_RejectsShortSecret(t *testing.T) {
	cfg := validConfig()
	cfg.Auth.Secret = "short"
	if err := cfg.Validate(); !errors.Is(err, runtimeconfig.ErrAuthSecretTooShort) {
		t.Fatalf("expected ErrAuthSecretTooShort, got %v", err)
	}
}

func TestConfigValidate_DefaultLocaleMustBeListed(t *testing.T) {
	cfg := validConfig()
	cfg.DefaultLocale = "fr"
	if err := cfg.Validate(); !errors.Is(err, runtimeconfig.ErrDefaultLocaleNotListed) {
		t.Fatalf("expected ErrDefaultLocaleNotListed, got %v", err)
	}
}

func TestConfigValidate_RejectsUnknownDriver(t *testing.T) {
	cfg := validConfig()
	cfg.Storage.Driver = "mysql"
	if err := cfg.Validate(); !errors.Is(err, runtimeconfig.ErrStorageDriverUnknown) {
		t.Fatalf("expected ErrStorageDriverUnknown, got %v", err)
	}
}

func TestConfigValidate_JobsIntervalRequiredWhenEnabled(t *testing.T) {
	cfg := validConfig()
	cfg.Jobs.Interval = 0
	if err := cfg.Validate(); !errors.Is(err, runtimeconfig.ErrJobsIntervalInvalid) {
		t.Fatalf("expected ErrJobsIntervalInvalid, got %v", err)
	}
	cfg.Jobs.Enabled = false
	if err := cfg.Validate(); err != nil {
		t.Fatalf("expected disabled jobs to skip interval check, got %v", err)
	}
}

func TestConfigValidate_RejectsInvalidLoggingFormat(t *testing.T) {
	cfg := validConfig()
	cfg.Logging.Provider = "gologger"
	cfg.Logging.Format = "xml"
	if err := cfg.Validate(); !errors.Is(err, runtimeconfig.ErrLoggingFormatInvalid) {
		t.Fatalf("expected ErrLoggingFormatInvalid, got %v", err)
	}
}

func TestConfigValidate_BootstrapNeedsPassword(t *testing.T) {
	cfg := validConfig()
	cfg.Bootstrap.Email = "admin@example.com"
	if err := cfg.Validate(); !errors.Is(err, runtimeconfig.ErrBootstrapPasswordNeeded) {
		t.Fatalf("expected ErrBootstrapPasswordNeeded, got %v", err)
	}
}

func TestStorageDriverCanonicalises(t *testing.T) {
	cfg := validConfig()
	cfg.Storage.Driver = "PG"
	if got := cfg.StorageDriver(); got != "postgres" {
		t.Fatalf("expected postgres, got %q", got)
	}
	cfg.Storage.Driver = "sqlite3"
	if got := cfg.StorageDriver(); got != "sqlite" {
		t.Fatalf("expected sqlite, got %q", got)
	}
}

func TestLoadEnvOverlaysDefaults(t *testing.T) {
	t.Setenv("FOLIO_AUTH_SECRET", "0123456789abcdef0123456789abcdef")
	t.Setenv("FOLIO_STORAGE_DRIVER", "postgres")
	t.Setenv("FOLIO_MEDIA_ALLOWED_TYPES", "image/png,image/jpeg")
	t.Setenv("FOLIO_JOBS_INTERVAL", "30s")

	cfg, err := runtimeconfig.LoadEnv(filepath.Join(t.TempDir(), "missing.env"))
	if err != nil {
		t.Fatalf("LoadEnv: %v", err)
	}
	if cfg.StorageDriver() != "postgres" {
		t.Fatalf("expected postgres driver, got %q", cfg.Storage.Driver)
	}
	if len(cfg.Media.AllowedTypes) != 2 {
		t.Fatalf("expected two allowed types, got %v", cfg.Media.AllowedTypes)
	}
	if cfg.Jobs.Interval != 30*time.Second {
		t.Fatalf("expected 30s interval, got %s", cfg.Jobs.Interval)
	}
	if cfg.DefaultLocale != "en" || cfg.Auth.TokenTTL != 12*time.Hour {
		t.Fatalf("expected defaults to survive, got %+v", cfg)
	}
}

func TestLoadEnvReadsDotenv(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, ".env")
	if err := os.WriteFile(path, []byte("FOLIO_HTTP_ADDR=:9999\n"), 0o600); err != nil {
		t.Fatalf("write dotenv: %v", err)
	}
	t.Setenv("FOLIO_HTTP_ADDR", "")
	os.Unsetenv("FOLIO_HTTP_ADDR")

	cfg, err := runtimeconfig.LoadEnv(path)
	if err != nil {
		t.Fatalf("LoadEnv: %v", err)
	}
	t.Cleanup(func() { os.Unsetenv("FOLIO_HTTP_ADDR") })
	if cfg.HTTP.Addr != ":9999" {
		t.Fatalf("expected dotenv addr, got %q", cfg.HTTP.Addr)
	}
}
