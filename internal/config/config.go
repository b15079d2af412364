// Package config handles application configuration loading from environment
// variables. It provides a centralized Config struct used across the application.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"

	"github.com/joho/godotenv"
)

// DevSessionSecret is the signing key used when SESSION_SECRET is unset.
// Production refuses to start with it.
const DevSessionSecret = "inkwell-dev-session-secret"

// dotEnvFiles are loaded in order before reading the environment. Values
// already present in the process environment are never overridden.
var dotEnvFiles = []string{".env.local", ".env"}

// Config holds all application configuration values loaded from the environment.
type Config struct {
	// Server settings
	Host string
	Port string
	Env  string // "development", "production", "testing"

	// PostgreSQL connection string. Empty means no database is configured.
	DatabaseURL string

	// SiteURL is the public base URL used for absolute links (no trailing slash).
	SiteURL  string
	SiteName string

	// Valkey (Redis-compatible) session storage
	ValkeyHost     string
	ValkeyPort     string
	ValkeyPassword string

	// SessionSecret signs bearer tokens.
	SessionSecret string

	// UploadDir is where the disk upload backend writes images.
	UploadDir string

	// S3-compatible object storage. Uploads go to S3 when configured.
	S3Endpoint  string
	S3Region    string
	S3AccessKey string
	S3SecretKey string
	S3Bucket    string
	S3PublicURL string
}

// Load reads configuration from .env files and environment variables,
// applying defaults for development where appropriate. Returns an error if
// critical values are missing in production mode.
func Load() (*Config, error) {
	if err := loadDotEnv(dotEnvFiles...); err != nil {
		return nil, err
	}

	cfg := &Config{
		Host: envOrDefault("APP_HOST", "0.0.0.0"),
		Port: envOrDefault("APP_PORT", "8080"),
		Env:  envOrDefault("APP_ENV", "development"),

		DatabaseURL: os.Getenv("DATABASE_URL"),
		SiteURL:     strings.TrimRight(envOrDefault("SITE_URL", "http://localhost:8080"), "/"),
		SiteName:    envOrDefault("SITE_NAME", "Inkwell"),

		ValkeyHost:     envOrDefault("VALKEY_HOST", "localhost"),
		ValkeyPort:     envOrDefault("VALKEY_PORT", "6379"),
		ValkeyPassword: os.Getenv("VALKEY_PASSWORD"),

		SessionSecret: envOrDefault("SESSION_SECRET", DevSessionSecret),
		UploadDir:     envOrDefault("UPLOAD_DIR", "public/uploads"),

		S3Endpoint:  os.Getenv("S3_ENDPOINT"),
		S3Region:    envOrDefault("S3_REGION", "us-east-1"),
		S3AccessKey: os.Getenv("S3_ACCESS_KEY"),
		S3SecretKey: os.Getenv("S3_SECRET_KEY"),
		S3Bucket:    os.Getenv("S3_BUCKET"),
		S3PublicURL: strings.TrimRight(os.Getenv("S3_PUBLIC_URL"), "/"),
	}

	if cfg.Env == "production" {
		if cfg.SessionSecret == DevSessionSecret {
			return nil, fmt.Errorf("SESSION_SECRET must be set in production")
		}
	}

	return cfg, nil
}

// loadDotEnv loads each file that exists. Missing files are skipped.
func loadDotEnv(files ...string) error {
	for _, f := range files {
		if err := godotenv.Load(f); err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				continue
			}
			return fmt.Errorf("load %s: %w", f, err)
		}
	}
	return nil
}

// Addr returns the server listen address (host:port).
func (c *Config) Addr() string {
	return fmt.Sprintf("%s:%s", c.Host, c.Port)
}

// IsDev returns true if the application is running in development mode.
func (c *Config) IsDev() bool {
	return c.Env == "development"
}

// SecureCookies reports whether cookies should carry the Secure flag.
func (c *Config) SecureCookies() bool {
	return strings.HasPrefix(c.SiteURL, "https://")
}

// S3Enabled reports whether enough S3 settings are present to use the S3
// upload backend.
func (c *Config) S3Enabled() bool {
	return c.S3Endpoint != "" && c.S3Bucket != "" && c.S3AccessKey != "" && c.S3SecretKey != ""
}

// envOrDefault reads an environment variable, returning a fallback if unset or empty.
func envOrDefault(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
