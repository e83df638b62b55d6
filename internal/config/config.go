// Package config loads service settings from the environment.
package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

// Config holds all application configuration
type Config struct {
	Database DatabaseConfig
	Server   ServerConfig
	Security SecurityConfig
	CORS     CORSConfig
	Logging  LoggingConfig

	// SeedDemoData inserts a demo user and a small catalog on startup.
	SeedDemoData bool `envconfig:"SEED_DEMO_DATA" default:"false"`
}

// DatabaseConfig holds database connection settings
type DatabaseConfig struct {
	URL string `envconfig:"DATABASE_URL" required:"true"`
}

// ServerConfig holds HTTP server settings
type ServerConfig struct {
	Port int    `envconfig:"PORT" default:"8080"`
	Host string `envconfig:"HOST" default:"0.0.0.0"`
	// PublicBaseURL prefixes generated links, e.g. https://catalog.example.com.
	PublicBaseURL   string        `envconfig:"PUBLIC_BASE_URL"`
	ShutdownTimeout time.Duration `envconfig:"SHUTDOWN_TIMEOUT" default:"30s"`
}

// SecurityConfig holds token settings
type SecurityConfig struct {
	JWTSecret   string        `envconfig:"JWT_SECRET" required:"true"`
	JWTIssuer   string        `envconfig:"JWT_ISSUER" default:"musiccatalog"`
	JWTAudience string        `envconfig:"JWT_AUDIENCE" default:"musiccatalog"`
	JWTTTL      time.Duration `envconfig:"JWT_TTL" default:"10m"`
	// TokenRateLimit is the sustained number of token requests per second.
	TokenRateLimit float64 `envconfig:"TOKEN_RATE_LIMIT" default:"5"`
	TokenBurst     int     `envconfig:"TOKEN_RATE_BURST" default:"10"`
}

// CORSConfig holds CORS settings
type CORSConfig struct {
	AllowedOrigins []string `envconfig:"CORS_ALLOWED_ORIGINS" default:"http://localhost:3000,http://localhost:5173,http://localhost:8080"`
}

// LoggingConfig holds logging settings
type LoggingConfig struct {
	Level  string `envconfig:"LOG_LEVEL" default:"info"`
	Format string `envconfig:"LOG_FORMAT" default:"json"`
}

// Load reads configuration from config/local.env, when present, and the
// environment.
func Load() (*Config, error) {
	_ = godotenv.Load("config/local.env")
	return FromEnv()
}

// FromEnv reads configuration from the process environment only.
func FromEnv() (*Config, error) {
	cfg := &Config{}
	if err := envconfig.Process("", cfg); err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}

	for i, origin := range cfg.CORS.AllowedOrigins {
		cfg.CORS.AllowedOrigins[i] = strings.TrimSpace(origin)
	}
	cfg.Logging.Level = strings.ToLower(cfg.Logging.Level)
	cfg.Logging.Format = strings.ToLower(cfg.Logging.Format)
	cfg.Server.PublicBaseURL = strings.TrimRight(cfg.Server.PublicBaseURL, "/")

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("validate config: %w", err)
	}
	return cfg, nil
}

// Addr returns the listen address.
func (c *Config) Addr() string {
	return fmt.Sprintf("%s:%d", c.Server.Host, c.Server.Port)
}

// Validate checks that all required configuration is present and valid
func (c *Config) Validate() error {
	var errors []string

	if c.Database.URL == "" {
		errors = append(errors, "DATABASE_URL is required")
	}

	if len(c.Security.JWTSecret) < 16 {
		errors = append(errors, "JWT_SECRET must be at least 16 characters")
	}
	if c.Security.JWTTTL <= 0 {
		errors = append(errors, "JWT_TTL must be positive")
	}
	if c.Security.TokenRateLimit <= 0 {
		errors = append(errors, "TOKEN_RATE_LIMIT must be positive")
	}
	if c.Security.TokenBurst < 1 {
		errors = append(errors, "TOKEN_RATE_BURST must be at least 1")
	}

	if c.Server.Port < 1 || c.Server.Port > 65535 {
		errors = append(errors, "PORT must be between 1 and 65535")
	}

	validLogLevels := map[string]bool{"debug": true, "info": true, "warn": true, "error": true}
	if !validLogLevels[c.Logging.Level] {
		errors = append(errors, "LOG_LEVEL must be one of: debug, info, warn, error")
	}

	validLogFormats := map[string]bool{"json": true, "text": true}
	if !validLogFormats[c.Logging.Format] {
		errors = append(errors, "LOG_FORMAT must be one of: json, text")
	}

	if len(errors) > 0 {
		return fmt.Errorf("configuration validation failed:\n  - %s", strings.Join(errors, "\n  - "))
	}
	return nil
}
