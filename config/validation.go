package config

import (
	"fmt"
	"strings"
)

// requiredFields maps config fields to their names for validation messages.
func requiredFields(cfg *Config) map[string]string {
	return map[string]string{
		"DB_HOST":    cfg.DBHost,
		"DB_PORT":    cfg.DBPort,
		"DB_USER":    cfg.DBUser,
		"DB_NAME":    cfg.DBName,
		"JWT_SECRET": cfg.JWTSecret,
	}
}

// ValidateConfig checks that every value the application cannot run without
// is present. Sensitive values are additionally required outside tests so a
// misconfigured deployment fails at startup rather than on first request.
func ValidateConfig(cfg *Config) error {
	var errs []string

	for name, value := range requiredFields(cfg) {
		if value == "" {
			errs = append(errs, fmt.Sprintf("required configuration %s is not set", name))
		}
	}

	if IsProduction() {
		if cfg.DBPassword == "" {
			errs = append(errs, "DB_PASSWORD (or db_password secret) is required in production")
		}
		if cfg.RedisPassword == "" && cfg.RedisURL == "" {
			errs = append(errs, "REDIS_PASSWORD or REDIS_URL is required in production")
		}
		if cfg.DBSSLMode == "disable" {
			errs = append(errs, "DB_SSL_MODE must not be 'disable' in production")
		}
	}

	if len(errs) > 0 {
		return fmt.Errorf("%s", strings.Join(errs, "\n"))
	}
	return nil
}
