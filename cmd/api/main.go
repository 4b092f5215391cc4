package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/storyforge/narrative-engine/internal/config"
	"github.com/storyforge/narrative-engine/internal/handlers"
	"github.com/storyforge/narrative-engine/internal/logger"
	"github.com/storyforge/narrative-engine/internal/middleware"
	"github.com/storyforge/narrative-engine/internal/services"
	"github.com/storyforge/narrative-engine/internal/services/queue"
	"github.com/storyforge/narrative-engine/internal/storage"
	"github.com/storyforge/narrative-engine/internal/worker"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal(err)
	}

	log := logger.Setup(cfg)

	log.Info("Starting Narrative Engine API",
		"port", cfg.Port,
		"environment", cfg.Environment,
		"data_dir", cfg.DataDir)

	storageService, err := storage.NewRedisStorage(cfg.RedisURL, cfg.DataDir, log)
	if err != nil {
		log.Error("Failed to create storage", "error", err)
		os.Exit(1)
	}

	storageCtx, storageCancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer storageCancel()
	if err := storageService.WaitForConnection(storageCtx); err != nil {
		log.Error("Failed to connect to storage", "error", err)
		os.Exit(1)
	}

	sessionService := services.NewSessionService(storageService, log)
	if cfg.NarratorURL != "" {
		narrator := services.NewHTTPNarrator(cfg.NarratorURL, cfg.NarratorTimeout, cfg.NarratorRating, log)
		sessionService.WithNarrator(narrator)
		log.Info("Narrator collaborator configured", "url", cfg.NarratorURL)
	}

	processor := worker.NewFactProcessor(storageService, sessionService, log)

	// The queue is optional: without it, facts apply in-request.
	factQueue, err := queue.NewFactQueue(cfg.RedisURL, log)
	if err != nil {
		log.Warn("Queue unavailable, async fact processing disabled", "error", err)
	} else {
		defer func() {
			if err := factQueue.Close(); err != nil {
				log.Error("Error closing fact queue", "error", err)
			}
		}()
	}

	mux := http.NewServeMux()

	mux.Handle("/health", handlers.NewHealthHandler(storageService, log))

	campaignHandler := handlers.NewCampaignHandler(storageService, log)
	mux.Handle("/v1/campaigns", campaignHandler)
	mux.Handle("/v1/campaigns/", campaignHandler)

	sessionHandler := handlers.NewSessionHandler(storageService, sessionService, log)
	factsHandler := handlers.NewFactsHandler(processor, factQueue, log)
	questHandler := handlers.NewQuestHandler(storageService, sessionService, log)
	relationshipHandler := handlers.NewRelationshipHandler(storageService, sessionService, log)
	mux.Handle("/v1/sessions", sessionHandler)
	mux.HandleFunc("/v1/sessions/", func(w http.ResponseWriter, r *http.Request) {
		// Dispatch on the sub-resource after the session ID.
		switch subResource(r.URL.Path) {
		case "facts":
			factsHandler.ServeHTTP(w, r)
		case "quests":
			questHandler.ServeHTTP(w, r)
		case "relationships":
			relationshipHandler.ServeHTTP(w, r)
		default:
			sessionHandler.ServeHTTP(w, r)
		}
	})

	if factQueue != nil {
		mux.Handle("/v1/events/sessions/", handlers.NewEventsHandler(factQueue.Redis(), log))
	}

	handler := middleware.Logger(mux)
	server := &http.Server{
		Addr:        ":" + cfg.Port,
		Handler:     handler,
		ReadTimeout: 15 * time.Second,
		// WriteTimeout omitted so SSE streams stay open
		IdleTimeout: 60 * time.Second,
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

	if err := storageService.Close(); err != nil {
		log.Error("Error closing storage connection", "error", err)
	}

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Error("Server forced to shutdown", "error", err)
		os.Exit(1)
	}

	log.Info("Server exited")
}

// subResource returns the segment after the session ID:
// "facts" for /v1/sessions/{id}/facts, "" for /v1/sessions/{id}.
func subResource(path string) string {
	segments := 0
	start := 0
	for i := 0; i <= len(path); i++ {
		if i == len(path) || path[i] == '/' {
			if i > start {
				segments++
				if segments == 4 {
					return path[start:i]
				}
			}
			start = i + 1
		}
	}
	return ""
}
