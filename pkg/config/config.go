package config

import (
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"nightlife-navigator/internal/constants"
)

type Config struct {
	Env  string // development, staging, production
	Port string

	DatabaseURL string
	// Database pool settings
	DBMaxOpenConns    int
	DBMaxIdleConns    int
	DBConnMaxLifetime int // minutes
	DBReadTimeout     time.Duration
	DBWriteTimeout    time.Duration

	// Google Places
	GoogleMapsAPIKey string
	PlacesBaseURL    string // empty = provider default; overridden in tests
	PlacesRPS        int
	PlacesTimeout    time.Duration

	// Sync job
	RegionHint string // appended to every venue name when searching
	PlaceType  string

	// Logging
	LogLevel  string
	LogFormat string // "json" or "text"

	// HTTP
	CORSOrigins      []string
	MetricsEnabled   bool
	MetricsPath      string
	ProfilingEnabled bool // mounts /debug/pprof

	// SyncConfigFile points to an optional YAML overlay for the sync section.
	SyncConfigFile string
}

func Load() *Config {
	dbMaxOpenConns, _ := strconv.Atoi(getEnv("DB_MAX_OPEN_CONNS", "10"))
	dbMaxIdleConns, _ := strconv.Atoi(getEnv("DB_MAX_IDLE_CONNS", "5"))
	dbConnMaxLifetime, _ := strconv.Atoi(getEnv("DB_CONN_MAX_LIFETIME_MINUTES", "10"))

	dbReadTO, err := time.ParseDuration(getEnv("DB_READ_TIMEOUT", constants.DBReadTimeoutDefault.String()))
	if err != nil {
		dbReadTO = constants.DBReadTimeoutDefault
	}
	dbWriteTO, err := time.ParseDuration(getEnv("DB_WRITE_TIMEOUT", constants.DBWriteTimeoutDefault.String()))
	if err != nil {
		dbWriteTO = constants.DBWriteTimeoutDefault
	}

	placesRPS, _ := strconv.Atoi(getEnv("PLACES_RPS", strconv.Itoa(constants.PlacesRPSDefault)))
	placesTO, err := time.ParseDuration(getEnv("PLACES_TIMEOUT", constants.PlacesRequestTimeout.String()))
	if err != nil {
		placesTO = constants.PlacesRequestTimeout
	}

	env := strings.ToLower(getEnv("ENVIRONMENT", "development"))
	metricsEnabled, _ := strconv.ParseBool(getEnv("METRICS_ENABLED", "true"))
	profilingEnabled, _ := strconv.ParseBool(getEnv("PROFILING_ENABLED", "false"))

	cfg := &Config{
		Env:  env,
		Port: getEnv("PORT", "8000"),

		DatabaseURL:       getEnv("DATABASE_URL", ""),
		DBMaxOpenConns:    dbMaxOpenConns,
		DBMaxIdleConns:    dbMaxIdleConns,
		DBConnMaxLifetime: dbConnMaxLifetime,
		DBReadTimeout:     dbReadTO,
		DBWriteTimeout:    dbWriteTO,

		GoogleMapsAPIKey: getEnv("GOOGLE_MAPS_API_KEY", ""),
		PlacesBaseURL:    getEnv("PLACES_BASE_URL", ""),
		PlacesRPS:        placesRPS,
		PlacesTimeout:    placesTO,

		RegionHint: getEnv("SYNC_REGION_HINT", constants.RegionHintDefault),
		PlaceType:  getEnv("SYNC_PLACE_TYPE", constants.PlaceTypeDefault),

		LogLevel:  getEnv("LOG_LEVEL", "info"),
		LogFormat: getEnv("LOG_FORMAT", defaultLogFormat(env)),

		CORSOrigins:      splitCSV(getEnv("CORS_ORIGINS", "*")),
		MetricsEnabled:   metricsEnabled,
		MetricsPath:      getEnv("METRICS_PATH", "/metrics"),
		ProfilingEnabled: profilingEnabled,

		SyncConfigFile: getEnv("SYNC_CONFIG_FILE", ""),
	}

	if cfg.SyncConfigFile != "" {
		if err := cfg.ApplySyncFile(cfg.SyncConfigFile); err != nil {
			log.Printf("[Warning] sync config file %s not applied: %v", cfg.SyncConfigFile, err)
		}
	}

	return cfg
}

// StoreConfig is the slice of Config the venue store needs.
type StoreConfig struct {
	DatabaseURL     string
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration
	ReadTimeout     time.Duration
	WriteTimeout    time.Duration
}

// Enabled is false when no DATABASE_URL was provided.
func (s StoreConfig) Enabled() bool { return strings.TrimSpace(s.DatabaseURL) != "" }

func (c *Config) Store() StoreConfig {
	return StoreConfig{
		DatabaseURL:     c.DatabaseURL,
		MaxOpenConns:    c.DBMaxOpenConns,
		MaxIdleConns:    c.DBMaxIdleConns,
		ConnMaxLifetime: time.Duration(c.DBConnMaxLifetime) * time.Minute,
		ReadTimeout:     c.DBReadTimeout,
		WriteTimeout:    c.DBWriteTimeout,
	}
}

// PlacesConfig is the slice of Config the places lookup client needs.
type PlacesConfig struct {
	APIKey    string
	BaseURL   string
	RPS       int
	Timeout   time.Duration
	PlaceType string
}

// Enabled is false when no GOOGLE_MAPS_API_KEY was provided.
func (p PlacesConfig) Enabled() bool { return strings.TrimSpace(p.APIKey) != "" }

func (c *Config) Places() PlacesConfig {
	return PlacesConfig{
		APIKey:    c.GoogleMapsAPIKey,
		BaseURL:   c.PlacesBaseURL,
		RPS:       c.PlacesRPS,
		Timeout:   c.PlacesTimeout,
		PlaceType: c.PlaceType,
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func defaultLogFormat(env string) string {
	if env == "development" {
		return "text"
	}
	return "json"
}

func splitCSV(s string) []string {
	var out []string
	for _, p := range strings.Split(s, ",") {
		p = strings.TrimSpace(p)
		if p == "" {
			continue
		}
		out = append(out, p)
	}
	return out
}
