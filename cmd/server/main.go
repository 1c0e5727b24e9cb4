// ABOUTME: Main entry point for the kiosk retrieval HTTP server
// ABOUTME: Loads config, verifies artifacts at startup and serves the search API
package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/kssem/kiosk-retrieval/internal/api"
	"github.com/kssem/kiosk-retrieval/internal/config"
	"github.com/kssem/kiosk-retrieval/internal/retrieval"
)

func main() {
	// Load .env file if it exists (for API keys)
	if err := godotenv.Load(); err != nil {
		log.Printf("No .env file found (this is okay for production): %v", err)
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Invalid configuration: %v", err)
	}
	if cfg.OpenAIKey == "" {
		log.Fatal("OPENAI_API_KEY not set - query embedding requires it")
	}

	manager := retrieval.NewManager(cfg)
	defer manager.Close()

	// Fail fast: a missing or inconsistent artifact set is a deployment
	// error, not something to discover on the first query.
	count, err := manager.Ready()
	if err != nil {
		log.Fatalf("Retrieval resources unavailable: %v", err)
	}
	log.Printf("Loaded index with %d snippets from %s", count, cfg.DataDir)

	service := retrieval.NewService(manager, cfg.MaxResults)
	server := &http.Server{
		Addr:         cfg.ListenAddr,
		Handler:      api.NewServer(service, cfg).Handler(),
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 30 * time.Second,
	}

	go func() {
		log.Printf("Retrieval server listening on %s", cfg.ListenAddr)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("Server error: %v", err)
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)
	<-stop

	log.Println("Shutting down...")
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(ctx); err != nil {
		log.Printf("Shutdown error: %v", err)
	}
}
