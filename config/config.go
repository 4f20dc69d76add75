// Package config loads service configuration from the environment.
package config

import (
	"os"
	"strconv"
	"time"
)

type Config struct {
	Port        string
	Environment string

	// Storage
	DatabaseURL string
	RedisURL    string

	// OpenAI
	OpenAIAPIKey   string
	LLMModel       string
	LLMMaxTokens   int
	LLMTemperature float64

	// Embeddings
	EmbeddingDimension int
	EmbedMaxRetries    int
	EmbedBaseDelay     time.Duration
	EmbedMaxDelay      time.Duration

	// Pipeline
	SuggestTimeout time.Duration

	// Template variables
	MeetingLink string
	ProductName string

	// CORS
	AllowedOrigins string
}

func Load() (*Config, error) {
	return &Config{
		Port:        getEnv("PORT", "8080"),
		Environment: getEnv("ENV", "development"),

		DatabaseURL: getEnv("DATABASE_URL", ""),
		RedisURL:    getEnv("REDIS_URL", ""),

		OpenAIAPIKey:   getEnv("OPENAI_API_KEY", ""),
		LLMModel:       getEnv("LLM_MODEL", "gpt-4o-mini"),
		LLMMaxTokens:   getEnvInt("LLM_MAX_TOKENS", 2048),
		LLMTemperature: getEnvFloat("LLM_TEMPERATURE", 0.7),

		EmbeddingDimension: getEnvInt("EMBEDDING_DIMENSION", 1536),
		EmbedMaxRetries:    getEnvInt("EMBED_MAX_RETRIES", 3),
		EmbedBaseDelay:     time.Duration(getEnvInt("EMBED_BASE_DELAY_MS", 1000)) * time.Millisecond,
		EmbedMaxDelay:      time.Duration(getEnvInt("EMBED_MAX_DELAY_MS", 30000)) * time.Millisecond,

		SuggestTimeout: time.Duration(getEnvInt("SUGGEST_TIMEOUT_SEC", 20)) * time.Second,

		MeetingLink: getEnv("SUGGEST_MEETING_LINK", "https://cal.com/onebox/demo"),
		ProductName: getEnv("SUGGEST_PRODUCT_NAME", "OneBox AI"),

		AllowedOrigins: getEnv("ALLOWED_ORIGINS", "*"),
	}, nil
}

// IsDevelopment returns true if running in development mode
func (c *Config) IsDevelopment() bool {
	return c.Environment == "development"
}

// IsProduction returns true if running in production mode
func (c *Config) IsProduction() bool {
	return c.Environment == "production"
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

func getEnvFloat(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if floatValue, err := strconv.ParseFloat(value, 64); err == nil {
			return floatValue
		}
	}
	return defaultValue
}
