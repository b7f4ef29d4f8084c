package infra

import (
	"fmt"
	"os"
	"strconv"
	"time"
)

// Config represents application configuration loaded from environment variables.
type Config struct {
	AppEnv             string
	Port               string
	DatabaseURL        string
	OpenAIAPIKey       string
	OpenAIOrg          string
	OpenAIBaseURL      string
	OpenAIImageModel   string
	OpenAIVisionModel  string
	ShutterstockAPIKey string
	SupabaseURL        string
	SupabaseServiceKey string
	SupabaseBucket     string
	StaticDir          string
	StaticBaseURL      string
	TempDir            string
	HTTPReadTimeout    time.Duration
	HTTPWriteTimeout   time.Duration
	HTTPIdleTimeout    time.Duration
	RateLimitPerMin    int
}

// LoadConfig loads configuration from environment variables and applies defaults where needed.
func LoadConfig() (*Config, error) {
	cfg := &Config{
		AppEnv:             getEnv("APP_ENV", "development"),
		Port:               getEnv("PORT", "8080"),
		DatabaseURL:        os.Getenv("DATABASE_URL"),
		OpenAIAPIKey:       os.Getenv("OPENAI_API_KEY"),
		OpenAIOrg:          os.Getenv("OPENAI_ORG_ID"),
		OpenAIBaseURL:      getEnv("OPENAI_BASE_URL", "https://api.openai.com/v1"),
		OpenAIImageModel:   getEnv("OPENAI_IMAGE_MODEL", "gpt-image-1"),
		OpenAIVisionModel:  getEnv("OPENAI_VISION_MODEL", "gpt-4o"),
		ShutterstockAPIKey: os.Getenv("SHUTTERSTOCK_API_KEY"),
		SupabaseURL:        os.Getenv("SUPABASE_URL"),
		SupabaseServiceKey: os.Getenv("SUPABASE_KEY"),
		SupabaseBucket:     getEnv("SUPABASE_BUCKET_NAME", "ad-images"),
		StaticDir:          getEnv("STATIC_DIR", "static"),
		StaticBaseURL:      getEnv("STATIC_BASE_URL", "/static"),
		TempDir:            getEnv("TEMP_DIR", os.TempDir()),
		HTTPReadTimeout:    time.Second * time.Duration(getEnvInt("HTTP_READ_TIMEOUT_SECONDS", 30)),
		HTTPWriteTimeout:   time.Second * time.Duration(getEnvInt("HTTP_WRITE_TIMEOUT_SECONDS", 120)),
		HTTPIdleTimeout:    time.Second * time.Duration(getEnvInt("HTTP_IDLE_TIMEOUT_SECONDS", 60)),
		RateLimitPerMin:    getEnvInt("RATE_LIMIT_PER_MINUTE", 30),
	}

	if cfg.OpenAIAPIKey == "" {
		return nil, fmt.Errorf("OPENAI_API_KEY is required")
	}

	return cfg, nil
}

func getEnv(key, fallback string) string {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		return v
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		if i, err := strconv.Atoi(v); err == nil {
			return i
		}
	}
	return fallback
}
