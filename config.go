package sitecontent

import "github.com/goliatone/go-sitecontent/internal/runtimeconfig"

var (
	ErrContentDirRequired           = runtimeconfig.ErrContentDirRequired
	ErrDatabaseDSNRequired          = runtimeconfig.ErrDatabaseDSNRequired
	ErrDatabaseDriverUnknown        = runtimeconfig.ErrDatabaseDriverUnknown
	ErrVersionsBackendUnknown       = runtimeconfig.ErrVersionsBackendUnknown
	ErrVersionsDirRequired          = runtimeconfig.ErrVersionsDirRequired
	ErrVersionRetentionLimitInvalid = runtimeconfig.ErrVersionRetentionLimitInvalid
	ErrHTTPAddrRequired             = runtimeconfig.ErrHTTPAddrRequired
	ErrLoggingProviderUnknown       = runtimeconfig.ErrLoggingProviderUnknown
	ErrLoggingLevelInvalid          = runtimeconfig.ErrLoggingLevelInvalid
	ErrLoggingFormatInvalid         = runtimeconfig.ErrLoggingFormatInvalid
)

type (
	Config         = runtimeconfig.Config
	ContentConfig  = runtimeconfig.ContentConfig
	DatabaseConfig = runtimeconfig.DatabaseConfig
	VersionsConfig = runtimeconfig.VersionsConfig
	LinksConfig    = runtimeconfig.LinksConfig
	HTTPConfig     = runtimeconfig.HTTPConfig
	LoggingConfig  = runtimeconfig.LoggingConfig
)

// DefaultConfig returns the file-backed production defaults.
func DefaultConfig() Config {
	return runtimeconfig.DefaultConfig()
}

// ConfigFromEnv reads SITE_* variables over DefaultConfig.
func ConfigFromEnv() (Config, error) {
	return runtimeconfig.FromEnv()
}
