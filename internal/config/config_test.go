package config

import (
	"os"
	"testing"
	"time"
)

func TestNewFromEnv(t *testing.T) {
	t.Run("Success", func(t *testing.T) {
		t.Setenv("RECIPEBOX_DB_PATH", "/tmp/recipebox.db")
		t.Setenv("RECIPEBOX_JWT_SECRET", "secret")
		os.Unsetenv("PORT")
		os.Unsetenv("RECIPEBOX_TOKEN_TTL_HOURS")

		cfg, err := NewFromEnv()
		if err != nil {
			t.Fatalf("Expected no error, got %v", err)
		}
		if cfg.DatabasePath != "/tmp/recipebox.db" {
			t.Errorf("Expected DatabasePath '/tmp/recipebox.db', got '%s'", cfg.DatabasePath)
		}
		if cfg.Port != "8080" {
			t.Errorf("Expected default Port '8080', got '%s'", cfg.Port)
		}
		if cfg.TokenTTL != 24*time.Hour {
			t.Errorf("Expected default TokenTTL 24h, got %v", cfg.TokenTTL)
		}
	})

	t.Run("MissingDBPath", func(t *testing.T) {
		t.Setenv("RECIPEBOX_JWT_SECRET", "secret")
		os.Unsetenv("RECIPEBOX_DB_PATH")

		_, err := NewFromEnv()
		if err == nil {
			t.Fatal("Expected an error for missing RECIPEBOX_DB_PATH, got nil")
		}
		expectedError := "RECIPEBOX_DB_PATH environment variable not set"
		if err.Error() != expectedError {
			t.Errorf("Expected error '%s', got '%s'", expectedError, err.Error())
		}
	})

	t.Run("MissingJWTSecret", func(t *testing.T) {
		t.Setenv("RECIPEBOX_DB_PATH", "/tmp/recipebox.db")
		os.Unsetenv("RECIPEBOX_JWT_SECRET")

		_, err := NewFromEnv()
		if err == nil {
			t.Fatal("Expected an error for missing RECIPEBOX_JWT_SECRET, got nil")
		}
		expectedError := "RECIPEBOX_JWT_SECRET environment variable not set"
		if err.Error() != expectedError {
			t.Errorf("Expected error '%s', got '%s'", expectedError, err.Error())
		}
	})

	t.Run("CustomTokenTTL", func(t *testing.T) {
		t.Setenv("RECIPEBOX_DB_PATH", "/tmp/recipebox.db")
		t.Setenv("RECIPEBOX_JWT_SECRET", "secret")
		t.Setenv("RECIPEBOX_TOKEN_TTL_HOURS", "72")

		cfg, err := NewFromEnv()
		if err != nil {
			t.Fatalf("Expected no error, got %v", err)
		}
		if cfg.TokenTTL != 72*time.Hour {
			t.Errorf("Expected TokenTTL 72h, got %v", cfg.TokenTTL)
		}
	})

	t.Run("InvalidTokenTTL", func(t *testing.T) {
		t.Setenv("RECIPEBOX_DB_PATH", "/tmp/recipebox.db")
		t.Setenv("RECIPEBOX_JWT_SECRET", "secret")
		t.Setenv("RECIPEBOX_TOKEN_TTL_HOURS", "zero")

		_, err := NewFromEnv()
		if err == nil {
			t.Fatal("Expected an error for invalid RECIPEBOX_TOKEN_TTL_HOURS, got nil")
		}
	})
}
