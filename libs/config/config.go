// Package config provides configuration for the application
package config

import (
	"fmt"
	"time"

	"github.com/go-sql-driver/mysql"
	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

// Config holds all configuration for the application
type Config struct {
	Database           DatabaseConfig `envconfig:"DB"`
	Server             ServerConfig   `envconfig:"SERVER"`
	Logging            LoggingConfig  `envconfig:"LOG"`
	CORS               CORSConfig     `envconfig:"CORS"`
	Session            SessionConfig  `envconfig:"SESSION"`
	APIPrefix          string         `envconfig:"API_PREFIX" default:"/api"`
	RateLimitPerMinute int            `envconfig:"RATE_LIMIT_PER_MINUTE" default:"100"`
}

// DatabaseConfig holds database connection settings
type DatabaseConfig struct {
	Host     string `envconfig:"HOST" required:"true"`
	Port     int    `envconfig:"PORT" default:"3306"`
	User     string `envconfig:"USER" required:"true"`
	Password string `envconfig:"PASSWORD" required:"true"`
	DBName   string `envconfig:"NAME" required:"true"`
}

// ServerConfig holds server settings
type ServerConfig struct {
	Port int `envconfig:"PORT" default:"8080"`
}

// LoggingConfig holds logging settings
type LoggingConfig struct {
	Level string `envconfig:"LEVEL" default:"info"`
	// File enables a rotating log file in addition to stdout
	File string `envconfig:"FILE"`
}

// CORSConfig holds CORS settings
type CORSConfig struct {
	AllowedOrigins []string `envconfig:"ALLOWED_ORIGINS" default:"http://localhost:5173,http://127.0.0.1:5173,http://localhost:3000,http://127.0.0.1:3000"`
}

// SessionConfig holds session cookie settings
type SessionConfig struct {
	Secret string        `envconfig:"SECRET" required:"true"`
	TTL    time.Duration `envconfig:"TTL" default:"336h"`
	Secure bool          `envconfig:"SECURE" default:"false"`
}

// Load reads configuration from environment variables
func Load() (*Config, error) {
	// Try to load .env file (optional)
	_ = godotenv.Load()

	cfg := &Config{}
	if err := envconfig.Process("", cfg); err != nil {
		return nil, fmt.Errorf("failed to process config: %w", err)
	}

	if cfg.Database.Host == "" {
		return nil, fmt.Errorf("DB_HOST is required")
	}

	if len(cfg.Session.Secret) < 32 {
		return nil, fmt.Errorf("SESSION_SECRET must be at least 32 bytes long")
	}
	if cfg.Session.TTL <= 0 {
		return nil, fmt.Errorf("invalid SESSION_TTL: must be positive")
	}

	return cfg, nil
}

// DSN returns the database connection string
func (c *Config) DSN() string {
	return c.Database.DSN()
}

// DSN returns the connection string for this database
func (d DatabaseConfig) DSN() string {
	if d.Host == "" {
		return ""
	}

	mc := mysql.NewConfig()
	mc.User = d.User
	mc.Passwd = d.Password
	mc.Net = "tcp"
	mc.Addr = fmt.Sprintf("%s:%d", d.Host, d.Port)
	mc.DBName = d.DBName
	mc.ParseTime = true
	mc.MultiStatements = true
	// Session time zone matches the UTC times the driver sends
	mc.Params = map[string]string{"charset": "utf8mb4", "time_zone": "'+00:00'"}

	return mc.FormatDSN()
}
