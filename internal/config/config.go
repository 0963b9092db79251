package config

import (
	"os"
	"strconv"
)

// DatabaseConfig holds PostgreSQL database connection settings.
type DatabaseConfig struct {
	Host               string
	Port               string
	User               string
	Password           string
	Name               string
	SSLMode            string
	MaxOpenConns       int
	MaxIdleConns       int
	ConnMaxLifetimeSec int
}

// MinIOConfig holds object storage settings for MinIO.
// An empty Endpoint disables archiving of uploaded sources.
type MinIOConfig struct {
	Endpoint  string
	AccessKey string
	SecretKey string
	Bucket    string
	UseSSL    bool
}

// StoreConfig selects the tariff store backend: "file" (default) or "postgres".
type StoreConfig struct {
	Driver   string
	FilePath string
}

// RedisConfig configures the optional OCR text cache. An empty Addr disables it.
type RedisConfig struct {
	Addr     string
	Password string
	TTLSec   int
}

// OCRConfig tunes the OCR batch extractor.
type OCRConfig struct {
	Language    string
	TimeoutSec  int
	Concurrency int
	DPI         int
	RatePerSec  float64
	RateBurst   int
}

// IngestConfig holds spreadsheet ingestion settings.
type IngestConfig struct {
	SynonymsFile string
	MaxUploadMB  int
}

// ExportConfig points at the workbook template used by the export endpoint.
type ExportConfig struct {
	TemplatePath string
	TemplateKey  string
}

// AppConfig is the centralized configuration struct for the application.
// It is populated from environment variables. Sensitive values are not hardcoded.
type AppConfig struct {
	AppHost  string
	Port     string
	LogLevel string
	// AdminKey is the shared secret granting administrative access; empty disables it.
	AdminKey string
	Store    StoreConfig
	Database DatabaseConfig
	MinIO    MinIOConfig
	Redis    RedisConfig
	OCR      OCRConfig
	Ingest   IngestConfig
	Export   ExportConfig
}

// Load reads configuration from environment variables.
// A .env file can be auto-loaded by importing: _ "github.com/joho/godotenv/autoload"
// This function does not require a .env file; real environment variables take precedence.
func Load() *AppConfig {
	return &AppConfig{
		AppHost:  getEnv("APP_HOST", "localhost:8080"),
		Port:     getEnv("PORT", "8080"),
		LogLevel: getEnv("LOG_LEVEL", "info"),
		AdminKey: getEnv("ADMIN_KEY", ""),
		Store: StoreConfig{
			Driver:   getEnv("STORE_DRIVER", "file"),
			FilePath: getEnv("STORE_FILE_PATH", "uploads.json"),
		},
		Database: DatabaseConfig{
			Host:               getEnv("DB_HOST", ""),
			Port:               getEnv("DB_PORT", "5432"),
			User:               getEnv("DB_USER", ""),
			Password:           getEnv("DB_PASSWORD", ""),
			Name:               getEnv("DB_NAME", ""),
			SSLMode:            getEnv("DB_SSLMODE", "disable"),
			MaxOpenConns:       getEnvInt("DB_MAX_OPEN_CONNS", 10),
			MaxIdleConns:       getEnvInt("DB_MAX_IDLE_CONNS", 5),
			ConnMaxLifetimeSec: getEnvInt("DB_CONN_MAX_LIFETIME_SEC", 300),
		},
		MinIO: MinIOConfig{
			Endpoint:  getEnv("MINIO_ENDPOINT", ""),
			AccessKey: getEnv("MINIO_ACCESS_KEY", ""),
			SecretKey: getEnv("MINIO_SECRET_KEY", ""),
			Bucket:    getEnv("MINIO_BUCKET", ""),
			UseSSL:    getEnvBool("MINIO_USE_SSL", false),
		},
		Redis: RedisConfig{
			Addr:     getEnv("REDIS_ADDR", ""),
			Password: getEnv("REDIS_PASSWORD", ""),
			TTLSec:   getEnvInt("REDIS_TTL_SEC", 86400),
		},
		OCR: OCRConfig{
			Language:    getEnv("OCR_LANG", "tur"),
			TimeoutSec:  getEnvInt("OCR_TIMEOUT_SEC", 60),
			Concurrency: getEnvInt("OCR_CONCURRENCY", 4),
			DPI:         getEnvInt("OCR_DPI", 300),
			RatePerSec:  getEnvFloat("OCR_RATE_PER_SEC", 2),
			RateBurst:   getEnvInt("OCR_RATE_BURST", 4),
		},
		Ingest: IngestConfig{
			SynonymsFile: getEnv("HEADER_SYNONYMS_FILE", ""),
			MaxUploadMB:  getEnvInt("MAX_UPLOAD_MB", 20),
		},
		Export: ExportConfig{
			TemplatePath: getEnv("EXPORT_TEMPLATE_PATH", ""),
			TemplateKey:  getEnv("EXPORT_TEMPLATE_KEY", ""),
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

func getEnvFloat(key string, def float64) float64 {
	if v := os.Getenv(key); v != "" {
		f, err := strconv.ParseFloat(v, 64)
		if err == nil {
			return f
		}
	}
	return def
}
