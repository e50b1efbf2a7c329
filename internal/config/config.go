package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config holds all configuration for the subway services
type Config struct {
	// HTTP
	Port           string
	AllowedOrigins []string
	RequestTimeout time.Duration
	StaticDir      string

	// Database. DatabaseURL selects PostgreSQL when set, otherwise
	// the SQLite file at DatabasePath is used.
	DatabasePath string
	DatabaseURL  string

	// GTFS import
	GTFSURL           string
	CacheDir          string
	StaticRefreshDays int
	TMBAppID          string
	TMBAppKey         string
}

// LoadEnvFiles loads .env and then .env.local from dir. Values in .env.local
// override .env; missing files are ignored.
func LoadEnvFiles(dir string) {
	_ = godotenv.Load(dir + "/.env")
	_ = godotenv.Overload(dir + "/.env.local")
}

// Load reads configuration from environment variables with sensible defaults
func Load() *Config {
	return &Config{
		Port:           getEnv("PORT", "8081"),
		AllowedOrigins: getEnvList("ALLOWED_ORIGINS", []string{"http://localhost:5173"}),
		RequestTimeout: time.Duration(getEnvInt("REQUEST_TIMEOUT_SECONDS", 15)) * time.Second,
		StaticDir:      getEnv("STATIC_DIR", ""),

		DatabasePath: getEnv("SQLITE_DATABASE", "data/subway.db"),
		DatabaseURL:  getEnv("DATABASE_URL", ""),

		GTFSURL:           getEnv("TMB_GTFS_URL", "https://api.tmb.cat/v1/static/datasets/gtfs.zip"),
		CacheDir:          getEnv("CACHE_DIR", "data/cache"),
		StaticRefreshDays: getEnvInt("STATIC_REFRESH_DAYS", 7),
		TMBAppID:          getEnv("TMB_APP_ID", ""),
		TMBAppKey:         getEnv("TMB_APP_KEY", ""),
	}
}

// UsePostgres reports whether a PostgreSQL connection string is configured
func (c *Config) UsePostgres() bool {
	return c.DatabaseURL != ""
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func getEnvList(key string, defaultValue []string) []string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}

	var out []string
	for _, item := range strings.Split(value, ",") {
		if item = strings.TrimSpace(item); item != "" {
			out = append(out, item)
		}
	}
	if len(out) == 0 {
		return defaultValue
	}
	return out
}
