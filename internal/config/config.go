package config

import (
	"fmt"
	"os"
)

type Config struct {
	Port        string
	DatabaseURL string

	// Admin auth for the settings endpoints.
	AdminPassword string
	JWTSecret     string

	// Shared secret for the pending-job sweeper endpoint.
	CronSecret string

	// Object store. Either the Supabase trio or the S3 pair must be
	// set, depending on OBJECT_STORE_PROVIDER.
	ObjectStoreProvider string
	SupabaseURL         string
	SupabaseServiceKey  string
	SupabaseBucket      string
	S3Bucket            string
	AWSRegion           string
	S3AccessKey         string
	S3SecretKey         string

	// Adapter selection. API keys may also live in the settings table
	// and take precedence over these at call time.
	STTProvider        string
	AnalysisProvider   string
	OpenAIKey          string
	GeminiKey          string
	GoogleSTTProjectID string
	GoogleSTTKeyFile   string
}

// Load loads configuration from environment variables.
func Load() (*Config, error) {
	cfg := &Config{
		Port:        getEnv("PORT", "8080"),
		DatabaseURL: os.Getenv("DATABASE_URL"),

		AdminPassword: os.Getenv("ADMIN_PASSWORD"),
		JWTSecret:     os.Getenv("JWT_SECRET"),
		CronSecret:    os.Getenv("CRON_SECRET"),

		ObjectStoreProvider: getEnv("OBJECT_STORE_PROVIDER", "supabase"),
		SupabaseURL:         os.Getenv("SUPABASE_URL"),
		SupabaseServiceKey:  os.Getenv("SUPABASE_SERVICE_KEY"),
		SupabaseBucket:      getEnv("SUPABASE_BUCKET", "voice-analysis"),
		S3Bucket:            os.Getenv("S3_BUCKET"),
		AWSRegion:           getEnv("AWS_REGION", "ap-northeast-1"),
		S3AccessKey:         os.Getenv("S3_ACCESS_KEY"),
		S3SecretKey:         os.Getenv("S3_SECRET_KEY"),

		STTProvider:        getEnv("STT_PROVIDER", "openai"),
		AnalysisProvider:   getEnv("ANALYSIS_PROVIDER", "openai"),
		OpenAIKey:          os.Getenv("OPENAI_API_KEY"),
		GeminiKey:          os.Getenv("GEMINI_API_KEY"),
		GoogleSTTProjectID: os.Getenv("GOOGLE_STT_PROJECT_ID"),
		GoogleSTTKeyFile:   os.Getenv("GOOGLE_STT_KEY_FILE"),
	}

	if cfg.AdminPassword != "" && cfg.JWTSecret == "" {
		return nil, fmt.Errorf("JWT_SECRET is required when ADMIN_PASSWORD is set")
	}

	return cfg, nil
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
