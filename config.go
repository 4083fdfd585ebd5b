package folio

import "github.com/goliatone/go-folio/internal/runtimeconfig"

var (
	ErrDefaultLocaleRequired  = runtimeconfig.ErrDefaultLocaleRequired
	ErrDefaultLocaleNotListed = runtimeconfig.ErrDefaultLocaleNotListed
	ErrStorageDriverUnknown   = runtimeconfig.ErrStorageDriverUnknown
	ErrStorageDSNRequired     = runtimeconfig.ErrStorageDSNRequired
	ErrAuthSecretRequired     = runtimeconfig.ErrAuthSecretRequired
	ErrAuthSecretTooShort     = runtimeconfig.ErrAuthSecretTooShort
	ErrLoggingProviderUnknown = runtimeconfig.ErrLoggingProviderUnknown
	ErrLoggingLevelInvalid    = runtimeconfig.ErrLoggingLevelInvalid
	ErrLoggingFormatInvalid   = runtimeconfig.ErrLoggingFormatInvalid
)

type (
	Config          = runtimeconfig.Config
	StorageConfig   = runtimeconfig.StorageConfig
	CacheConfig     = runtimeconfig.CacheConfig
	HTTPConfig      = runtimeconfig.HTTPConfig
	AuthConfig      = runtimeconfig.AuthConfig
	MediaConfig     = runtimeconfig.MediaConfig
	I18NConfig      = runtimeconfig.I18NConfig
	ActionsConfig   = runtimeconfig.ActionsConfig
	AuditConfig     = runtimeconfig.AuditConfig
	JobsConfig      = runtimeconfig.JobsConfig
	LoggingConfig   = runtimeconfig.LoggingConfig
	BootstrapConfig = runtimeconfig.BootstrapConfig
)

// DefaultConfig returns defaults for a single-node sqlite install.
func DefaultConfig() Config {
	return runtimeconfig.DefaultConfig()
}

// LoadConfig reads FOLIO_* variables, after the optional dotenv files, over
// the defaults.
func LoadConfig(dotenvFiles ...string) (Config, error) {
	return runtimeconfig.LoadEnv(dotenvFiles...)
}
