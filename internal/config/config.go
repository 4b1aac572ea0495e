// Package config loads the editor's settings from environment variables.
// Unset values fall back to defaults, and Validate reports every problem at
// once so misconfiguration fails fast on startup.
package config

import (
	"net"
	"strconv"
	"time"
)

// Config holds all application configuration.
type Config struct {
	Server   ServerConfig
	Data     DataConfig
	Audit    AuditConfig
	Session  SessionConfig
	Security SecurityConfig
	Logging  LoggingConfig
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	// Host is the interface to bind to (default: 127.0.0.1)
	Host string `env:"SERVER_HOST" default:"127.0.0.1"`

	// Port is the port to listen on (default: 8080)
	Port int `env:"SERVER_PORT" default:"8080"`

	ReadTimeout  time.Duration `env:"SERVER_READ_TIMEOUT" default:"15s"`
	WriteTimeout time.Duration `env:"SERVER_WRITE_TIMEOUT" default:"30s"`
	IdleTimeout  time.Duration `env:"SERVER_IDLE_TIMEOUT" default:"60s"`

	// ShutdownTimeout bounds graceful shutdown (default: 10s)
	ShutdownTimeout time.Duration `env:"SERVER_SHUTDOWN_TIMEOUT" default:"10s"`

	// RequestTimeout is the middleware timeout for requests (default: 30s)
	RequestTimeout time.Duration `env:"SERVER_REQUEST_TIMEOUT" default:"30s"`
}

// DataConfig selects the data layer. At least one of Fixture and DB is required.
// With both set, an empty database is seeded from the fixture.
type DataConfig struct {
	// Fixture is a YAML table dump, edited in place when used alone
	Fixture string `env:"DEXEDIT_FIXTURE"`

	// DB is a SQLite store path
	DB string `env:"DEXEDIT_DB"`
}

// AuditConfig selects where saved diffs are logged.
type AuditConfig struct {
	// LogFile is the plain-text change log (default: changes.log, empty disables)
	LogFile string `env:"AUDIT_LOG_FILE" default:"changes.log"`

	// SQLite records entries in the SQLite store when DEXEDIT_DB is set (default: true)
	SQLite bool `env:"AUDIT_SQLITE" default:"true"`

	// DatabaseURL is an optional PostgreSQL connection string.
	// Supports both AUDIT_DATABASE_URL and DATABASE_URL.
	DatabaseURL string `env:"AUDIT_DATABASE_URL" envAlt:"DATABASE_URL"`

	MaxConns        int           `env:"DB_MAX_CONNS" default:"4"`
	MinConns        int           `env:"DB_MIN_CONNS" default:"0"`
	MaxConnLifetime time.Duration `env:"DB_MAX_CONN_LIFETIME" default:"1h"`
	MaxConnIdleTime time.Duration `env:"DB_MAX_CONN_IDLE_TIME" default:"30m"`
}

// SessionConfig holds per-panel limits.
type SessionConfig struct {
	// IconCacheSize is the number of icons each panel keeps (default: 128)
	IconCacheSize int `env:"SESSION_ICON_CACHE_SIZE" default:"128"`

	// MaxPanels caps concurrently open panels on the server (default: 32)
	MaxPanels int `env:"SESSION_MAX_PANELS" default:"32"`

	// MaxImportSize is the largest accepted CSV in bytes; "10MiB" style suffixes work
	MaxImportSize int64 `env:"IMPORT_MAX_FILE_SIZE" default:"10MiB" unit:"bytes"`

	// MaxConcurrentImports bounds CSV imports parsed at once by the server (default: 4)
	MaxConcurrentImports int `env:"IMPORT_MAX_CONCURRENT" default:"4"`

	// ImportWait is how long an import waits for a free slot (default: 30s)
	ImportWait time.Duration `env:"IMPORT_MAX_WAIT" default:"30s"`
}

// SecurityConfig holds access settings for the HTTP server.
type SecurityConfig struct {
	// APIKeys lists accepted X-API-Key values; empty disables key checks
	APIKeys []string `env:"API_KEYS"`

	// TrustedProxies is a comma-separated list of proxy CIDRs whose
	// X-Real-IP and X-Forwarded-For headers are believed
	TrustedProxies []string `env:"TRUSTED_PROXIES"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	// Level is the minimum log level: debug, info, warn, error (default: info)
	Level string `env:"LOG_LEVEL" default:"info"`

	// Format is the log format: text or json (default: text)
	Format string `env:"LOG_FORMAT" default:"text"`
}

// Addr returns the server listen address in host:port format.
func (c *ServerConfig) Addr() string {
	return net.JoinHostPort(c.Host, strconv.Itoa(c.Port))
}
