// Package config loads application settings from the environment and
// validates them on startup so a misconfigured process fails fast.
package config

import (
	"strconv"
	"time"
)

// Store drivers.
const (
	DriverMongo    = "mongo"
	DriverPostgres = "postgres"
	DriverMemory   = "memory"
)

// Config holds all application configuration.
type Config struct {
	Server   ServerConfig
	Store    StoreConfig
	Cache    CacheConfig
	Import   ImportConfig
	Generate GenerateConfig
	Rate     RateLimitConfig
	Security SecurityConfig
	Logging  LoggingConfig
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Host string `envconfig:"SERVER_HOST" default:"0.0.0.0"`
	Port int    `envconfig:"SERVER_PORT" default:"8080"`

	// ReadTimeout covers reading the whole request, uploads included.
	ReadTimeout     time.Duration `envconfig:"SERVER_READ_TIMEOUT" default:"15s"`
	WriteTimeout    time.Duration `envconfig:"SERVER_WRITE_TIMEOUT" default:"60s"`
	IdleTimeout     time.Duration `envconfig:"SERVER_IDLE_TIMEOUT" default:"60s"`
	ShutdownTimeout time.Duration `envconfig:"SERVER_SHUTDOWN_TIMEOUT" default:"30s"`

	// RequestTimeout is the middleware deadline for non-batch routes.
	RequestTimeout time.Duration `envconfig:"SERVER_REQUEST_TIMEOUT" default:"60s"`
}

// StoreConfig selects and tunes the document store backend.
type StoreConfig struct {
	// Driver is one of mongo, postgres or memory.
	Driver string `envconfig:"STORE_DRIVER" default:"mongo"`

	MongoURI      string `envconfig:"MONGO_URI"`
	MongoDatabase string `envconfig:"MONGO_DATABASE" default:"SGI"`

	// DatabaseURL is the PostgreSQL connection string. DB_URL is accepted too.
	DatabaseURL     string        `envconfig:"DATABASE_URL"`
	DatabaseURLAlt  string        `envconfig:"DB_URL"`
	MaxConns        int           `envconfig:"DB_MAX_CONNS" default:"10"`
	MinConns        int           `envconfig:"DB_MIN_CONNS" default:"1"`
	MaxConnLifetime time.Duration `envconfig:"DB_MAX_CONN_LIFETIME" default:"1h"`
	MaxConnIdleTime time.Duration `envconfig:"DB_MAX_CONN_IDLE_TIME" default:"30m"`

	// Timeout bounds connecting and pinging at startup.
	Timeout time.Duration `envconfig:"STORE_TIMEOUT" default:"10s"`
}

// CacheConfig configures the optional Redis vendor cache.
type CacheConfig struct {
	// RedisAddr enables the cache when set.
	RedisAddr string        `envconfig:"REDIS_ADDR"`
	VendorTTL time.Duration `envconfig:"VENDOR_CACHE_TTL" default:"30s"`
}

// Enabled reports whether a Redis address was configured.
func (c CacheConfig) Enabled() bool { return c.RedisAddr != "" }

// ImportConfig bounds import and generation batches.
type ImportConfig struct {
	MaxFileSize   int64         `envconfig:"IMPORT_MAX_FILE_SIZE" default:"10485760"`
	MaxRows       int           `envconfig:"IMPORT_MAX_ROWS" default:"50000"`
	Timeout       time.Duration `envconfig:"IMPORT_TIMEOUT" default:"10m"`
	MaxConcurrent int           `envconfig:"BATCH_MAX_CONCURRENT" default:"1"`
	MaxWait       time.Duration `envconfig:"BATCH_MAX_WAIT" default:"30s"`
}

// GenerateConfig shapes generated codes.
type GenerateConfig struct {
	Prefix      string `envconfig:"GENERATE_PREFIX" default:"GEN-"`
	Length      int    `envconfig:"GENERATE_LENGTH" default:"6"`
	MaxAttempts int    `envconfig:"GENERATE_MAX_ATTEMPTS" default:"25"`
	MaxCount    int    `envconfig:"GENERATE_MAX_COUNT" default:"10000"`
}

// RateLimitConfig holds per-IP rate limits.
type RateLimitConfig struct {
	Enabled           bool `envconfig:"RATE_LIMIT_ENABLED" default:"true"`
	RequestsPerMinute int  `envconfig:"RATE_LIMIT_REQUESTS_PER_MINUTE" default:"100"`

	// BatchLimit is requests per minute for import and generate.
	BatchLimit int `envconfig:"RATE_LIMIT_BATCH" default:"10"`
}

// SecurityConfig holds security-related settings.
type SecurityConfig struct {
	// TrustedProxies is a comma-separated list of proxy CIDRs whose
	// forwarding headers are believed.
	TrustedProxies []string `envconfig:"TRUSTED_PROXIES"`

	RequireAPIKey bool     `envconfig:"REQUIRE_API_KEY" default:"false"`
	APIKeys       []string `envconfig:"API_KEYS"`

	EnableCSP bool `envconfig:"SECURITY_ENABLE_CSP" default:"true"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	// Level is one of debug, info, warn, error.
	Level string `envconfig:"LOG_LEVEL" default:"info"`
	// Format is text or json.
	Format string `envconfig:"LOG_FORMAT" default:"text"`
}

// Addr returns the listen address in host:port form.
func (c *ServerConfig) Addr() string {
	return c.Host + ":" + strconv.Itoa(c.Port)
}

// PostgresURL returns DATABASE_URL, falling back to DB_URL.
func (c *StoreConfig) PostgresURL() string {
	if c.DatabaseURL != "" {
		return c.DatabaseURL
	}
	return c.DatabaseURLAlt
}
