package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"fingpt-backend/internal/archive"
	"fingpt-backend/internal/config"
	"fingpt-backend/internal/handlers"
	"fingpt-backend/internal/router"
	"fingpt-backend/internal/services"
	"fingpt-backend/internal/session"
	"fingpt-backend/internal/store"
)

func main() {
	cfg := config.Load()

	log.Println("Starting FinGPT backend...")
	log.Printf("Environment: %s", cfg.Env)
	log.Printf("Inference model: %s", cfg.InferenceModel)
	log.Printf("Context storage: %s", cfg.StoragePath)
	log.Printf("Transcript archive: %s", cfg.ArchiveDBPath)

	transcripts := archive.Open(cfg.ArchiveDBPath)
	defer transcripts.Close()

	contextStore := store.New(cfg.StoragePath)
	market := services.NewMarketService(cfg.MarketBaseURL)
	composer := services.NewComposer(contextStore, market)
	inference := services.NewInferenceClient(cfg.HFAPIToken, cfg.InferenceBaseURL, cfg.InferenceModel, cfg.InferenceMaxTokens)
	tts := services.NewTTSService(cfg.TTSBaseURL, cfg.TTSLanguage)

	recognizer, err := services.NewSpeechService(context.Background(), cfg.GeminiAPIKey)
	if err != nil {
		log.Fatalf("Failed to initialize speech recognition: %v", err)
	}

	sessions := session.NewManager()

	h := router.Handlers{
		Chat:    handlers.NewChatHandler(sessions, composer, inference, transcripts),
		Session: handlers.NewSessionHandler(sessions, transcripts),
		Context: handlers.NewContextHandler(contextStore),
		Speech:  handlers.NewSpeechHandler(sessions, recognizer, tts, cfg.ClipPath, cfg.TTSLanguage),
	}

	srv := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      router.New(cfg, h),
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	go func() {
		log.Printf("Listening on :%s", cfg.Port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Server failed: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("Shutting down...")
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Fatalf("Forced shutdown: %v", err)
	}
	log.Println("Server stopped")
}
