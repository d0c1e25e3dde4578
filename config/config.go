// Package config handles application configuration loading and management
package config

import (
	"net"
	"net/url"
	"strconv"
	"time"
)

// Config holds the entire application configuration
// It is populated once at startup by Load and passed explicitly to every component that needs it
type Config struct {
	// Application contains application-level settings
	Application ApplicationConfig
	// Server contains HTTP server settings
	Server ServerConfig
	// Database contains PostgreSQL connection and pool settings
	Database DatabaseConfig
	// Redis contains the cache/queue endpoint settings
	Redis RedisConfig
	// Modules lists the domain modules enabled for this process
	Modules ModulesConfig
	// Scanner contains external scanner integration settings
	Scanner ScannerConfig
	// Logging contains log level and format settings
	Logging LoggingConfig
	// Security contains security-related settings
	Security SecurityConfig
	// Backup contains backup scheduling settings
	Backup BackupConfig
}

// ApplicationConfig holds the application-level configuration
type ApplicationConfig struct {
	// Name specifies the name of the application
	Name string `env:"APP_NAME" envDefault:"VulnGuardian"`
	// Version specifies the version of the application
	Version string `env:"APP_VERSION" envDefault:"1.0.0"`
	// Debug enables verbose statement logging
	Debug bool `env:"DEBUG" envDefault:"false"`
}

// ServerConfig holds the HTTP server configuration
type ServerConfig struct {
	// Host is the interface the server binds to
	Host string `env:"HOST" envDefault:"0.0.0.0" validate:"required"`
	// Port specifies the port number the server will listen on
	Port int `env:"PORT" envDefault:"8000" validate:"gte=1,lte=65535"`
	// ShutdownTimeout bounds graceful shutdown of in-flight requests
	ShutdownTimeout time.Duration `env:"SHUTDOWN_TIMEOUT" envDefault:"30s" validate:"gte=0"`
}

// DatabaseConfig holds the PostgreSQL connection and pool configuration
type DatabaseConfig struct {
	Host     string `env:"DB_HOST" envDefault:"localhost" validate:"required"`
	Port     int    `env:"DB_PORT" envDefault:"5432" validate:"gte=1,lte=65535"`
	Name     string `env:"DB_NAME" envDefault:"vulnguardian" validate:"required"`
	User     string `env:"DB_USER" envDefault:"vulnguardian" validate:"required"`
	Password string `env:"DB_PASSWORD,required"`
	// SSLMode is appended to the connection URL when set
	SSLMode string `env:"DB_SSLMODE" validate:"omitempty,oneof=disable allow prefer require verify-ca verify-full"`

	// PoolSize is the number of connections kept warm in the pool
	PoolSize int `env:"DB_POOL_SIZE" envDefault:"10" validate:"gte=1"`
	// MaxOverflow is the number of transient connections allowed beyond PoolSize
	MaxOverflow int `env:"DB_MAX_OVERFLOW" envDefault:"20" validate:"gte=0"`
	// PrePing validates every connection with a round-trip before handing it out
	PrePing bool `env:"DB_POOL_PRE_PING" envDefault:"true"`
	// PoolTimeout bounds how long an acquisition waits for a free connection
	PoolTimeout time.Duration `env:"DB_POOL_TIMEOUT" envDefault:"30s" validate:"gt=0"`
	// PoolRecycle is the maximum lifetime of a physical connection, zero disables recycling
	PoolRecycle time.Duration `env:"DB_POOL_RECYCLE" envDefault:"0s" validate:"gte=0"`
	// ConnectOnOpen pings the database while opening the pool
	ConnectOnOpen bool `env:"DB_CONNECT_ON_OPEN" envDefault:"false"`
}

// RedisConfig holds the Redis endpoint configuration
type RedisConfig struct {
	Host string `env:"REDIS_HOST" envDefault:"localhost" validate:"required"`
	Port int    `env:"REDIS_PORT" envDefault:"6379" validate:"gte=1,lte=65535"`
	DB   int    `env:"REDIS_DB" envDefault:"0" validate:"gte=0"`
}

// ModulesConfig holds the list of enabled domain modules
type ModulesConfig struct {
	Enabled []string `env:"ENABLED_MODULES" envDefault:"scanner, network_map"`
}

// ScannerConfig holds the external scanner integration settings
type ScannerConfig struct {
	OpenVASURL      string `env:"OPENVAS_URL" validate:"omitempty,url"`
	OpenVASUser     string `env:"OPENVAS_USER"`
	OpenVASPassword string `env:"OPENVAS_PASSWORD"`
	TrivyEnabled    bool   `env:"TRIVY_ENABLED" envDefault:"true"`
}

// LoggingConfig holds the logger configuration
type LoggingConfig struct {
	// Level is one of debug, info, warn, error or critical
	Level string `env:"LOG_LEVEL" envDefault:"INFO" validate:"oneof=debug info warn warning error critical"`
	// Format is json or text
	Format string `env:"LOG_FORMAT" envDefault:"json" validate:"oneof=json text"`
}

// SecurityConfig holds the security configuration
type SecurityConfig struct {
	// SecretKey signs tokens and sessions issued by the application
	SecretKey string `env:"SECRET_KEY,required"`
	// AccessTokenExpireMinutes is the lifetime of issued access tokens
	AccessTokenExpireMinutes int `env:"ACCESS_TOKEN_EXPIRE_MINUTES" envDefault:"30" validate:"gte=1"`
	// Algorithm is the token signing algorithm, not configurable
	Algorithm string
	// TwoFactorEnabled turns on second-factor authentication
	TwoFactorEnabled bool `env:"TWO_FACTOR_ENABLED" envDefault:"false"`
}

// BackupConfig holds the backup configuration
type BackupConfig struct {
	Enabled       bool   `env:"BACKUP_ENABLED" envDefault:"true"`
	Dir           string `env:"BACKUP_DIR" envDefault:"data/backups"`
	RetentionDays int    `env:"BACKUP_RETENTION_DAYS" envDefault:"30" validate:"gte=1"`
}

// sections returns pointers to the env-tagged section structs in decoding order
func (c *Config) sections() []any {
	return []any{
		&c.Application,
		&c.Server,
		&c.Database,
		&c.Redis,
		&c.Modules,
		&c.Scanner,
		&c.Logging,
		&c.Security,
		&c.Backup,
	}
}

// DatabaseURL returns the PostgreSQL connection URL composed from the database fields.
// It is recomputed on every call.
func (c *Config) DatabaseURL() string {
	u := url.URL{
		Scheme: "postgresql",
		User:   url.UserPassword(c.Database.User, c.Database.Password),
		Host:   net.JoinHostPort(c.Database.Host, strconv.Itoa(c.Database.Port)),
		Path:   "/" + c.Database.Name,
	}
	if c.Database.SSLMode != "" {
		u.RawQuery = url.Values{"sslmode": {c.Database.SSLMode}}.Encode()
	}
	return u.String()
}

// RedisURL returns the Redis connection URL composed from the redis fields
func (c *Config) RedisURL() string {
	u := url.URL{
		Scheme: "redis",
		Host:   net.JoinHostPort(c.Redis.Host, strconv.Itoa(c.Redis.Port)),
		Path:   "/" + strconv.Itoa(c.Redis.DB),
	}
	return u.String()
}

// Addr returns the host:port the HTTP server listens on
func (c *Config) Addr() string {
	return net.JoinHostPort(c.Server.Host, strconv.Itoa(c.Server.Port))
}

// ModuleEnabled reports whether the named domain module is enabled
func (c *Config) ModuleEnabled(name string) bool {
	for _, m := range c.Modules.Enabled {
		if m == name {
			return true
		}
	}
	return false
}
