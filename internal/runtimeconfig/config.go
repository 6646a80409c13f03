package runtimeconfig

import (
	"errors"
	"fmt"
	"strings"

	"github.com/caarlos0/env/v11"
)

var ErrContentDirRequired = errors.New("site config: content directory is required when the file source is active")
var ErrDatabaseDSNRequired = errors.New("site config: database dsn is required when the database source is active")
var ErrDatabaseDriverUnknown = errors.New("site config: database driver is invalid")
var ErrVersionsBackendUnknown = errors.New("site config: versions backend is invalid")
var ErrVersionsDirRequired = errors.New("site config: versions directory is required for the file backend")
var ErrVersionRetentionLimitInvalid = errors.New("site config: version retention limit must be zero or positive")
var ErrHTTPAddrRequired = errors.New("site config: http address is required")
var ErrLoggingProviderUnknown = errors.New("site config: logging provider is invalid")
var ErrLoggingLevelInvalid = errors.New("site config: logging level is invalid")
var ErrLoggingFormatInvalid = errors.New("site config: logging format is invalid")

const (
	EnvironmentDevelopment = "development"
	EnvironmentProduction  = "production"
)

// Versions backends.
const (
	VersionsBackendFile     = "file"
	VersionsBackendDatabase = "database"
	VersionsBackendMemory   = "memory"
)

// Config aggregates everything the content layer needs to start. The content source is picked
// once from Content.UseDatabase.
type Config struct {
	Environment string `env:"SITE_ENV"`
	Content     ContentConfig
	Database    DatabaseConfig
	Versions    VersionsConfig
	Links       LinksConfig
	HTTP        HTTPConfig
	Logging     LoggingConfig
}

// ContentConfig selects and locates the content source.
type ContentConfig struct {
	UseDatabase bool   `env:"SITE_USE_DATABASE"`
	Dir         string `env:"SITE_CONTENT_DIR"`
	BypassCache bool   `env:"SITE_BYPASS_CACHE"`
	Watch       bool   `env:"SITE_WATCH_CONTENT"`
}

// DatabaseConfig describes the SQL connection used by the store source and database history.
type DatabaseConfig struct {
	Driver string `env:"SITE_DB_DRIVER"`
	DSN    string `env:"SITE_DB_DSN"`
	// Debug logs every query through bundebug.
	Debug       bool `env:"SITE_DB_DEBUG"`
	AutoMigrate bool `env:"SITE_DB_AUTO_MIGRATE"`
}

// VersionsConfig controls where version history lives and how much of it is kept.
type VersionsConfig struct {
	Backend   string `env:"SITE_VERSIONS_BACKEND"`
	Dir       string `env:"SITE_VERSIONS_DIR"`
	Retention int    `env:"SITE_VERSION_RETENTION"`
}

// LinksConfig overrides the internal routes accepted by the link validator.
type LinksConfig struct {
	KnownRoutes []string `env:"SITE_KNOWN_ROUTES" envSeparator:","`
}

// HTTPConfig configures the optional API server.
type HTTPConfig struct {
	Addr string `env:"SITE_HTTP_ADDR"`
}

// LoggingConfig captures provider-specific options for runtime logging.
type LoggingConfig struct {
	Provider  string   `env:"SITE_LOG_PROVIDER"`
	Level     string   `env:"SITE_LOG_LEVEL"`
	Format    string   `env:"SITE_LOG_FORMAT"`
	AddSource bool     `env:"SITE_LOG_ADD_SOURCE"`
	Focus     []string `env:"SITE_LOG_FOCUS" envSeparator:","`
}

// DefaultConfig returns a file-backed production configuration.
func DefaultConfig() Config {
	return Config{
		Environment: EnvironmentProduction,
		Content: ContentConfig{
			Dir: "src/content",
		},
		Database: DatabaseConfig{
			Driver: "postgres",
		},
		Versions: VersionsConfig{
			Backend:   VersionsBackendFile,
			Dir:       "data/versions",
			Retention: 50,
		},
		HTTP: HTTPConfig{
			Addr: ":8080",
		},
		Logging: LoggingConfig{
			Provider: "gologger",
			Level:    "info",
			Format:   "json",
		},
	}
}

// FromEnv overlays process environment variables on DefaultConfig.
func FromEnv() (Config, error) {
	return parse(env.Options{})
}

// FromEnvMap overlays the provided variables on DefaultConfig instead of the process environment.
func FromEnvMap(vars map[string]string) (Config, error) {
	return parse(env.Options{Environment: vars})
}

func parse(opts env.Options) (Config, error) {
	cfg := DefaultConfig()
	if err := env.ParseWithOptions(&cfg, opts); err != nil {
		return Config{}, fmt.Errorf("site config: parse env: %w", err)
	}
	return cfg, nil
}

// Development reports whether the process runs in development mode, which bypasses the page
// cache and logs full validation issues.
func (cfg Config) Development() bool {
	switch strings.ToLower(strings.TrimSpace(cfg.Environment)) {
	case EnvironmentDevelopment, "dev", "local":
		return true
	default:
		return false
	}
}

// Validate performs high-level consistency checks.
func (cfg Config) Validate() error {
	if cfg.Content.UseDatabase {
		if strings.TrimSpace(cfg.Database.DSN) == "" {
			return ErrDatabaseDSNRequired
		}
	} else if strings.TrimSpace(cfg.Content.Dir) == "" {
		return ErrContentDirRequired
	}
	if cfg.Content.UseDatabase || NormalizeBackend(cfg.Versions.Backend) == VersionsBackendDatabase {
		if !isSupportedDriver(cfg.Database.Driver) {
			return fmt.Errorf("%w: %s", ErrDatabaseDriverUnknown, cfg.Database.Driver)
		}
	}
	switch NormalizeBackend(cfg.Versions.Backend) {
	case VersionsBackendFile:
		if strings.TrimSpace(cfg.Versions.Dir) == "" {
			return ErrVersionsDirRequired
		}
	case VersionsBackendDatabase:
		if strings.TrimSpace(cfg.Database.DSN) == "" {
			return ErrDatabaseDSNRequired
		}
	case VersionsBackendMemory:
	default:
		return fmt.Errorf("%w: %s", ErrVersionsBackendUnknown, cfg.Versions.Backend)
	}
	if cfg.Versions.Retention < 0 {
		return ErrVersionRetentionLimitInvalid
	}
	if strings.TrimSpace(cfg.HTTP.Addr) == "" {
		return ErrHTTPAddrRequired
	}
	provider := normalizeProvider(cfg.Logging.Provider)
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

// NormalizeBackend lowercases the versions backend, defaulting to the file backend.
func NormalizeBackend(backend string) string {
	trimmed := strings.ToLower(strings.TrimSpace(backend))
	switch trimmed {
	case "":
		return VersionsBackendFile
	case "db", "sql", "bun":
		return VersionsBackendDatabase
	default:
		return trimmed
	}
}

func normalizeProvider(provider string) string {
	return strings.ToLower(strings.TrimSpace(provider))
}

func isSupportedDriver(driver string) bool {
	switch strings.ToLower(strings.TrimSpace(driver)) {
	case "postgres", "postgresql", "pg", "sqlite", "sqlite3":
		return true
	default:
		return false
	}
}

func isSupportedProvider(provider string) bool {
	switch provider {
	case "gologger", "noop":
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
