package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"recipe-box/internal/auth"
	"recipe-box/internal/clipper"
	"recipe-box/internal/config"
	"recipe-box/internal/database"
	"recipe-box/internal/ingredient"
	"recipe-box/internal/llm"
	"recipe-box/internal/metrics"
	"recipe-box/internal/recipe"
	"recipe-box/internal/shopping"
	"recipe-box/internal/telegram"
	"recipe-box/internal/user"
	"recipe-box/internal/web"
)

func main() {
	cfg, err := config.NewFromEnv()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	ctx := context.Background()

	db, err := database.NewDB(cfg.DatabasePath)
	if err != nil {
		log.Fatalf("Failed to initialize database: %v", err)
	}
	defer db.Close()

	users := user.NewRepository(db.SQL)
	recipes := recipe.NewRepository(db.SQL)
	ingredients := ingredient.NewRepository(db.SQL)
	carts := shopping.NewRepository(db.SQL)
	usage := metrics.NewStore(db.SQL)
	tokens := auth.NewTokens(cfg.JWTSecret, cfg.TokenTTL)

	// The clipper needs an LLM backend; without a key the import endpoint
	// responds 503 and everything else still works.
	var clip *clipper.Clipper
	if cfg.GeminiAPIKey != "" {
		gemini, err := llm.NewGeminiClient(ctx, cfg.GeminiAPIKey)
		if err != nil {
			log.Fatalf("Failed to create Gemini client: %v", err)
		}
		defer gemini.Close()
		clip = clipper.NewClipper(gemini)
	} else {
		log.Println("GEMINI_API_KEY not set, recipe import disabled")
	}

	server := web.NewServer(users, recipes, ingredients, carts, tokens, clip, usage)

	mux := http.NewServeMux()
	mux.Handle("/", server.Handler())

	if cfg.TelegramBotToken != "" && cfg.TelegramWebhookURL != "" {
		bot, err := telegram.NewBot(cfg.TelegramBotToken, cfg.TelegramWebhookURL, tokens, carts, recipes)
		if err != nil {
			log.Fatalf("Failed to initialize Telegram bot: %v", err)
		}
		mux.HandleFunc("/telegram/webhook", bot.WebhookHandler())
		log.Println("Telegram delivery enabled")
	}

	srv := &http.Server{
		Addr:    ":" + cfg.Port,
		Handler: mux,
	}

	go func() {
		log.Printf("Listening on :%s", cfg.Port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Server failed: %v", err)
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	<-stop

	log.Println("Shutting down...")
	shutdownCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Fatalf("Shutdown failed: %v", err)
	}
	log.Println("Server stopped")
}
