package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// Config holds all configuration for the application
type Config struct {
	// Server configuration
	ServerPort string
	ServerHost string

	// Database configuration
	DBHost     string
	DBPort     string
	DBUser     string
	DBPassword string
	DBName     string
	DBSSLMode  string

	// Redis configuration
	RedisHost     string
	RedisPort     string
	RedisPassword string
	RedisDB       int
	RedisURL      string

	// JWT configuration
	JWTSecret string

	// Object storage
	S3Bucket  string
	AWSRegion string
}

// LoadConfig builds a Config from environment variables, falling back to
// Docker secret files for sensitive values outside CI.
func LoadConfig() (*Config, error) {
	cfg := &Config{
		ServerPort:    getValue("SERVER_PORT", "server_port"),
		ServerHost:    getValue("SERVER_HOST", "server_host"),
		DBHost:        getValue("DB_HOST", "db_host"),
		DBPort:        getValue("DB_PORT", "db_port"),
		DBUser:        getValue("DB_USER", "db_user"),
		DBPassword:    getValue("DB_PASSWORD", "db_password"),
		DBName:        getValue("DB_NAME", "db_name"),
		DBSSLMode:     getValue("DB_SSL_MODE", "db_ssl_mode"),
		RedisHost:     getValue("REDIS_HOST", "redis_host"),
		RedisPort:     getValue("REDIS_PORT", "redis_port"),
		RedisPassword: getValue("REDIS_PASSWORD", "redis_password"),
		RedisURL:      getValue("REDIS_URL", "redis_url"),
		JWTSecret:     getValue("JWT_SECRET", "jwt_secret"),
		S3Bucket:      os.Getenv("S3_BUCKET_NAME"),
		AWSRegion:     os.Getenv("AWS_REGION"),
	}
	cfg.RedisDB = 0

	if cfg.ServerPort == "" {
		cfg.ServerPort = "8080"
	}
	if cfg.DBSSLMode == "" {
		cfg.DBSSLMode = "disable"
	}

	if err := ValidateConfig(cfg); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return cfg, nil
}

// getValue reads an environment variable and falls back to a Docker secret
// file of the given name.
func getValue(envVar, secretName string) string {
	if v := os.Getenv(envVar); v != "" {
		return v
	}
	return readSecret(secretName)
}

// readSecret reads a Docker secret from the secrets directory
func readSecret(name string) string {
	secretsDir := os.Getenv("SECRETS_DIR")
	if secretsDir == "" {
		secretsDir = "/run/secrets"
	}
	if data, err := os.ReadFile(filepath.Join(secretsDir, name)); err == nil {
		return strings.TrimSpace(string(data))
	}
	return ""
}
