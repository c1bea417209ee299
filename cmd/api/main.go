package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/jwebster45206/storyloom/internal/config"
	"github.com/jwebster45206/storyloom/internal/handlers"
	"github.com/jwebster45206/storyloom/internal/logger"
	"github.com/jwebster45206/storyloom/internal/services"
)

func main() {
	// A missing .env is fine; the environment may already be set.
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		log.Fatal(err)
	}

	log := logger.Setup(cfg)

	log.Info("Starting Storyloom API",
		"port", cfg.Port,
		"environment", cfg.Environment,
		"llm_provider", cfg.LLMProvider,
		"story_model", cfg.StoryModel,
		"image_model", cfg.ImageModel)

	initCtx, initCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer initCancel()

	text, err := services.NewTextGenerator(initCtx, cfg, log)
	if err != nil {
		log.Error("Failed to initialize text backend", "error", err, "provider", cfg.LLMProvider)
		os.Exit(1)
	}
	images := services.NewImageGenerator(cfg, log)

	server := &http.Server{
		Addr: ":" + cfg.Port,
		Handler: handlers.NewRouter(handlers.RouterConfig{
			Text:              text,
			Images:            images,
			Provider:          cfg.LLMProvider,
			CORSAllowedOrigin: cfg.CORSAllowedOrigin,
			Logger:            log,
		}),
		ReadTimeout: 15 * time.Second,
		// Image generation can take well over a minute.
		WriteTimeout: 3 * time.Minute,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Info("Server starting", "addr", server.Addr)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Error("Server failed to start", "error", err)
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("Server is shutting down...")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Error("Server forced to shutdown", "error", err)
		os.Exit(1)
	}

	if closer, ok := text.(interface{ Close() error }); ok {
		if err := closer.Close(); err != nil {
			log.Error("Error closing text backend", "error", err)
		}
	}

	log.Info("Server exited")
}
