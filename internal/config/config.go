package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/finwise/finwise-backend/internal/domain"
	"github.com/joho/godotenv"
	"github.com/shopspring/decimal"
)

// Config holds all configuration for the application
type Config struct {
	// Database
	DatabaseURL string

	// Server
	Port        string
	CORSOrigins []string
	Env         string

	// Gemini API key for the advisory modules. Empty disables them; the
	// ledger core never depends on it.
	GeminiAPIKey string

	// Planner percentages, passed explicitly into the planner at call time
	Planner domain.PlannerConfig

	// S3 Storage for receipt attachments
	S3 S3Config
}

// S3Config holds AWS S3 configuration
type S3Config struct {
	Region          string
	Bucket          string
	AccessKeyID     string
	SecretAccessKey string
	Endpoint        string // Optional: for MinIO/LocalStack local dev
}

// Configured reports whether attachment storage credentials are present.
// Without them the receipt endpoints run disabled.
func (c S3Config) Configured() bool {
	return (c.AccessKeyID != "" && c.SecretAccessKey != "") || c.Endpoint != ""
}

// Load reads configuration from environment variables
func Load() (*Config, error) {
	// Load .env file if it exists (ignore error if not found)
	_ = godotenv.Load()

	cfg := &Config{
		DatabaseURL:  getEnv("DATABASE_URL", ""),
		Port:         getEnv("PORT", "8080"),
		CORSOrigins:  strings.Split(getEnv("CORS_ORIGINS", "http://localhost:3000"), ","),
		Env:          getEnv("ENV", "development"),
		GeminiAPIKey: getEnv("GEMINI_API_KEY", ""),
		Planner:      loadPlannerConfig(),
		S3: S3Config{
			Region:          getEnv("S3_REGION", "ap-south-1"),
			Bucket:          getEnv("S3_BUCKET", "finwise-receipts"),
			AccessKeyID:     getEnv("AWS_ACCESS_KEY_ID", ""),
			SecretAccessKey: getEnv("AWS_SECRET_ACCESS_KEY", ""),
			Endpoint:        getEnv("S3_ENDPOINT", ""), // Empty = use AWS, set for MinIO/LocalStack
		},
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// loadPlannerConfig parses the planner percentages, falling back to the
// documented 50/30/20 defaults on missing or malformed values.
func loadPlannerConfig() domain.PlannerConfig {
	cfg := domain.DefaultPlannerConfig()
	if v, err := decimal.NewFromString(getEnv("MICRO_PERCENT", "")); err == nil {
		cfg.MicroPercent = v
	}
	if v, err := decimal.NewFromString(getEnv("SAFE_PERCENT", "")); err == nil {
		cfg.SafePercent = v
	}
	if v, err := decimal.NewFromString(getEnv("GROWTH_PERCENT", "")); err == nil {
		cfg.GrowthPercent = v
	}
	return cfg
}

func (c *Config) validate() error {
	if c.DatabaseURL == "" {
		return fmt.Errorf("DATABASE_URL is required")
	}
	return nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
