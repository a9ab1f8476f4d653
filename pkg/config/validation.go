package config

import (
	"fmt"
	"net/url"
	"strconv"
	"strings"

	errs "nightlife-navigator/pkg/errors"
)

// ValidationError represents a configuration validation error
type ValidationError struct {
	Field   string
	Value   string
	Message string
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("config validation error for field '%s' with value '%s': %s", e.Field, e.Value, e.Message)
}

// ConfigValidator accumulates validation errors so all problems are reported at once.
type ConfigValidator struct {
	errors []ValidationError
}

func NewConfigValidator() *ConfigValidator {
	return &ConfigValidator{errors: make([]ValidationError, 0)}
}

func (cv *ConfigValidator) AddError(field, value, message string) {
	cv.errors = append(cv.errors, ValidationError{Field: field, Value: value, Message: message})
}

func (cv *ConfigValidator) HasErrors() bool { return len(cv.errors) > 0 }

func (cv *ConfigValidator) GetErrors() []ValidationError { return cv.errors }

func (cv *ConfigValidator) GetErrorsAsString() string {
	var errorStrings []string
	for _, err := range cv.errors {
		errorStrings = append(errorStrings, err.Error())
	}
	return strings.Join(errorStrings, "\n")
}

// Validate validates the entire configuration. Missing credentials are not
// errors: the store and places client have explicit disabled states.
func (c *Config) Validate() error {
	validator := NewConfigValidator()

	c.validateFormats(validator)
	c.validateRanges(validator)

	if validator.HasErrors() {
		return errs.NewValidation("config.Validate", fmt.Sprintf("configuration validation failed:\n%s", validator.GetErrorsAsString()), nil)
	}
	return nil
}

func (c *Config) validateFormats(validator *ConfigValidator) {
	if c.DatabaseURL != "" && !validDSN(c.DatabaseURL) {
		validator.AddError("DATABASE_URL", maskString(c.DatabaseURL, 12), "invalid database URL format")
	}

	if port, err := strconv.Atoi(c.Port); err != nil || port < 1 || port > 65535 {
		validator.AddError("PORT", c.Port, "invalid port number (must be 1-65535)")
	}

	validLogLevels := []string{"trace", "debug", "info", "warn", "error"}
	if c.LogLevel != "" && !contains(validLogLevels, strings.ToLower(c.LogLevel)) {
		validator.AddError("LOG_LEVEL", c.LogLevel, "invalid log level (must be one of: trace, debug, info, warn, error)")
	}

	if c.LogFormat != "json" && c.LogFormat != "text" {
		validator.AddError("LOG_FORMAT", c.LogFormat, "invalid log format (must be 'json' or 'text')")
	}

	if strings.TrimSpace(c.PlaceType) == "" {
		validator.AddError("SYNC_PLACE_TYPE", c.PlaceType, "place type is required")
	}

	if len(c.CORSOrigins) == 0 {
		validator.AddError("CORS_ORIGINS", "", "at least one origin (or '*') is required")
	}

	if !strings.HasPrefix(c.MetricsPath, "/") {
		validator.AddError("METRICS_PATH", c.MetricsPath, "metrics path must start with '/'")
	}
}

func (c *Config) validateRanges(validator *ConfigValidator) {
	if c.PlacesRPS < 1 || c.PlacesRPS > 100 {
		validator.AddError("PLACES_RPS", strconv.Itoa(c.PlacesRPS), "places requests per second must be between 1 and 100")
	}
	if c.PlacesTimeout <= 0 {
		validator.AddError("PLACES_TIMEOUT", c.PlacesTimeout.String(), "places timeout must be positive")
	}

	if c.DBMaxOpenConns < 1 || c.DBMaxOpenConns > 1000 {
		validator.AddError("DB_MAX_OPEN_CONNS", strconv.Itoa(c.DBMaxOpenConns), "max open connections must be between 1 and 1000")
	}
	if c.DBMaxIdleConns < 0 || c.DBMaxIdleConns > c.DBMaxOpenConns {
		validator.AddError("DB_MAX_IDLE_CONNS", strconv.Itoa(c.DBMaxIdleConns), "max idle connections must be between 0 and max open connections")
	}
	if c.DBConnMaxLifetime < 1 || c.DBConnMaxLifetime > 60 {
		validator.AddError("DB_CONN_MAX_LIFETIME_MINUTES", strconv.Itoa(c.DBConnMaxLifetime), "connection max lifetime must be between 1 and 60 minutes")
	}
	if c.DBReadTimeout <= 0 || c.DBWriteTimeout <= 0 {
		validator.AddError("DB_READ_TIMEOUT/DB_WRITE_TIMEOUT", c.DBReadTimeout.String()+"/"+c.DBWriteTimeout.String(), "database timeouts must be positive")
	}
}

// validDSN accepts postgres URLs and go-sql-driver/mysql DSNs.
func validDSN(dsn string) bool {
	if strings.HasPrefix(dsn, "postgres://") || strings.HasPrefix(dsn, "postgresql://") {
		u, err := url.Parse(dsn)
		return err == nil && u.Host != ""
	}
	return strings.Contains(dsn, "@") && strings.Contains(dsn, "/")
}

func contains(slice []string, item string) bool {
	for _, s := range slice {
		if s == item {
			return true
		}
	}
	return false
}

// GetConfigSummary returns a summary of the configuration (excluding sensitive data)
func (c *Config) GetConfigSummary() map[string]interface{} {
	return map[string]interface{}{
		"environment":         c.Env,
		"port":                c.Port,
		"database_url":        maskString(c.DatabaseURL, 12),
		"store_enabled":       c.Store().Enabled(),
		"google_maps_api_key": maskString(c.GoogleMapsAPIKey, 6),
		"places_enabled":      c.Places().Enabled(),
		"places_rps":          c.PlacesRPS,
		"region_hint":         c.RegionHint,
		"place_type":          c.PlaceType,
		"log_level":           c.LogLevel,
		"log_format":          c.LogFormat,
		"cors_origins":        strings.Join(c.CORSOrigins, ","),
	}
}

// maskString masks sensitive strings for logging/display
func maskString(s string, keepFirst int) string {
	if s == "" {
		return ""
	}
	if len(s) <= keepFirst {
		return strings.Repeat("*", len(s))
	}
	return s[:keepFirst] + strings.Repeat("*", len(s)-keepFirst)
}
