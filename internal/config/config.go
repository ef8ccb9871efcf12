package config

import (
	"os"
	"strconv"
)

// StagingConfig holds settings for the local staging area.
type StagingConfig struct {
	// Dir is the private directory staged outlines are persisted to. When it
	// is unset or unwritable the service runs with the volatile metadata-only
	// fallback store.
	Dir string
}

// MinIOConfig holds object storage settings for the remote outline store.
type MinIOConfig struct {
	Endpoint  string
	AccessKey string
	SecretKey string
	Bucket    string
	UseSSL    bool
}

// CatalogConfig holds the static course catalog settings.
type CatalogConfig struct {
	// MappingPath points at the JSON course-code -> course-name mapping file.
	MappingPath string
	// SearchLimit caps the number of search results returned per query.
	SearchLimit int
}

// AppConfig is the centralized configuration struct for the application.
// It is populated from environment variables. Sensitive values are not hardcoded.
type AppConfig struct {
	AppHost   string
	Port      string
	LogLevel  string
	LogFormat string
	Staging   StagingConfig
	MinIO     MinIOConfig
	Catalog   CatalogConfig
}

// Load reads configuration from environment variables.
// A .env file can be auto-loaded by importing: _ "github.com/joho/godotenv/autoload"
// This function does not require a .env file; real environment variables take precedence.
func Load() *AppConfig {
	return &AppConfig{
		AppHost:   getEnv("APP_HOST", "localhost:8080"),
		Port:      getEnv("PORT", "8080"), // default only for non-sensitive value
		LogLevel:  getEnv("LOG_LEVEL", "info"),
		LogFormat: getEnv("LOG_FORMAT", "json"),
		Staging: StagingConfig{
			Dir: getEnv("STAGING_DIR", ".staging"),
		},
		MinIO: MinIOConfig{
			Endpoint:  getEnv("MINIO_ENDPOINT", ""),
			AccessKey: getEnv("MINIO_ACCESS_KEY", ""),
			SecretKey: getEnv("MINIO_SECRET_KEY", ""),
			Bucket:    getEnv("MINIO_BUCKET", ""),
			UseSSL:    getEnvBool("MINIO_USE_SSL", false),
		},
		Catalog: CatalogConfig{
			MappingPath: getEnv("COURSE_MAPPING_PATH", "data/course_mapping.json"),
			SearchLimit: getEnvInt("COURSE_SEARCH_LIMIT", 20),
		},
	}
}

func getEnv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func getEnvBool(key string, def bool) bool {
	if v := os.Getenv(key); v != "" {
		b, err := strconv.ParseBool(v)
		if err == nil {
			return b
		}
	}
	return def
}

func getEnvInt(key string, def int) int {
	if v := os.Getenv(key); v != "" {
		i, err := strconv.Atoi(v)
		if err == nil {
			return i
		}
	}
	return def
}
