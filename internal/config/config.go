package config

import (
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config holds application configuration
type Config struct {
	// Server
	Port           string
	Env            string
	CORSOrigins    []string
	PublicBaseURL  string
	RequestTimeout time.Duration

	// Database
	DBHost     string
	DBPort     string
	DBUser     string
	DBPassword string
	DBName     string
	DBSSLMode  string

	// Auth
	JWTSecret     string
	ServiceAPIKey string

	// Exchange rate
	RateSourceURL string
	RateTTL       time.Duration
	RateMaxStale  time.Duration

	// Receipts
	BlobBackend     string // "local" or "gcs"
	GCSBucket       string
	UploadDir       string
	MaxReceiptBytes int64

	// Dashboard
	RecentLimit int
}

// Load loads configuration from environment variables
func Load() (*Config, error) {
	// A missing .env is fine; the process environment still applies.
	if err := godotenv.Load(); err != nil {
		log.Println("Warning: .env file not found")
	}

	cfg := &Config{
		Port:          getEnv("PORT", "8080"),
		Env:           getEnv("ENV", "development"),
		CORSOrigins:   splitList(getEnv("CORS_ORIGINS", "*")),
		PublicBaseURL: strings.TrimRight(getEnv("PUBLIC_BASE_URL", "http://localhost:8080"), "/"),

		DBHost:     getEnv("DB_HOST", "localhost"),
		DBPort:     getEnv("DB_PORT", "5432"),
		DBUser:     getEnv("DB_USER", "fundledger"),
		DBPassword: getEnv("DB_PASSWORD", "fundledger"),
		DBName:     getEnv("DB_NAME", "fundledger"),
		DBSSLMode:  getEnv("DB_SSLMODE", "disable"),

		JWTSecret:     getEnv("JWT_SECRET", "fallback-secret-key-for-dev-only"),
		ServiceAPIKey: getEnv("SERVICE_API_KEY", ""),

		RateSourceURL: getEnv("RATE_SOURCE_URL", "https://ve.dolarapi.com/v1/dolares/oficial"),

		BlobBackend: strings.ToLower(getEnv("BLOB_BACKEND", "local")),
		GCSBucket:   getEnv("GCS_BUCKET", ""),
		UploadDir:   getEnv("UPLOAD_DIR", "./uploads"),
	}

	var err error
	if cfg.RequestTimeout, err = parseDuration("REQUEST_TIMEOUT", 10*time.Second); err != nil {
		return nil, err
	}
	if cfg.RateTTL, err = parseDuration("RATE_TTL", 5*time.Minute); err != nil {
		return nil, err
	}
	if cfg.RateMaxStale, err = parseDuration("RATE_MAX_STALE", time.Hour); err != nil {
		return nil, err
	}
	if cfg.MaxReceiptBytes, err = parseInt64("MAX_RECEIPT_BYTES", 5<<20); err != nil {
		return nil, err
	}
	recent, err := parseInt64("RECENT_LIMIT", 15)
	if err != nil {
		return nil, err
	}
	cfg.RecentLimit = int(recent)

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) validate() error {
	switch c.BlobBackend {
	case "local":
	case "gcs":
		if c.GCSBucket == "" {
			return fmt.Errorf("GCS_BUCKET is required when BLOB_BACKEND=gcs")
		}
	default:
		return fmt.Errorf("invalid BLOB_BACKEND %q: must be local or gcs", c.BlobBackend)
	}
	if c.RateMaxStale < c.RateTTL {
		return fmt.Errorf("RATE_MAX_STALE (%v) must not be shorter than RATE_TTL (%v)", c.RateMaxStale, c.RateTTL)
	}
	if c.RecentLimit <= 0 {
		return fmt.Errorf("RECENT_LIMIT must be positive, got %d", c.RecentLimit)
	}
	if c.Env == "production" && c.JWTSecret == "fallback-secret-key-for-dev-only" {
		return fmt.Errorf("JWT_SECRET must be set in production")
	}
	return nil
}

// getEnv retrieves an environment variable or returns a default value
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func parseDuration(key string, defaultValue time.Duration) (time.Duration, error) {
	s := os.Getenv(key)
	if s == "" {
		return defaultValue, nil
	}
	d, err := time.ParseDuration(s)
	if err != nil {
		return 0, fmt.Errorf("invalid %s %q: %w", key, s, err)
	}
	if d <= 0 {
		return 0, fmt.Errorf("%s must be positive, got %v", key, d)
	}
	return d, nil
}

func parseInt64(key string, defaultValue int64) (int64, error) {
	s := os.Getenv(key)
	if s == "" {
		return defaultValue, nil
	}
	n, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid %s %q: %w", key, s, err)
	}
	return n, nil
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}
