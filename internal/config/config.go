package config

import (
	"fmt"
	"os"
	"strconv"
	"time"
)

// Config holds the configuration for the application.
type Config struct {
	DatabasePath string
	Port         string

	// Auth config
	JWTSecret string
	TokenTTL  time.Duration

	// Optional: recipe clipper LLM backend
	GeminiAPIKey string

	// Optional: Telegram delivery
	TelegramBotToken   string
	TelegramWebhookURL string
}

// NewFromEnv creates a new Config object from environment variables.
func NewFromEnv() (*Config, error) {
	dbPath := os.Getenv("RECIPEBOX_DB_PATH")
	if dbPath == "" {
		return nil, fmt.Errorf("RECIPEBOX_DB_PATH environment variable not set")
	}

	jwtSecret := os.Getenv("RECIPEBOX_JWT_SECRET")
	if jwtSecret == "" {
		return nil, fmt.Errorf("RECIPEBOX_JWT_SECRET environment variable not set")
	}

	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}

	tokenTTL := 24 * time.Hour
	if ttlStr := os.Getenv("RECIPEBOX_TOKEN_TTL_HOURS"); ttlStr != "" {
		hours, err := strconv.Atoi(ttlStr)
		if err != nil || hours <= 0 {
			return nil, fmt.Errorf("RECIPEBOX_TOKEN_TTL_HOURS must be a positive integer, got %q", ttlStr)
		}
		tokenTTL = time.Duration(hours) * time.Hour
	}

	return &Config{
		DatabasePath:       dbPath,
		Port:               port,
		JWTSecret:          jwtSecret,
		TokenTTL:           tokenTTL,
		GeminiAPIKey:       os.Getenv("GEMINI_API_KEY"),
		TelegramBotToken:   os.Getenv("TELEGRAM_BOT_TOKEN"),
		TelegramWebhookURL: os.Getenv("TELEGRAM_WEBHOOK_URL"),
	}, nil
}
