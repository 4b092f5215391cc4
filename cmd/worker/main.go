package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/storyforge/narrative-engine/internal/config"
	"github.com/storyforge/narrative-engine/internal/logger"
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

	workerID := os.Getenv("WORKER_ID")
	if workerID == "" {
		workerID = fmt.Sprintf("worker-%d", os.Getpid())
	}

	log.Info("Starting fact worker",
		"worker_id", workerID,
		"environment", cfg.Environment)

	factQueue, err := queue.NewFactQueue(cfg.RedisURL, log)
	if err != nil {
		log.Error("Failed to connect to queue", "error", err)
		os.Exit(1)
	}
	defer func() {
		if err := factQueue.Close(); err != nil {
			log.Error("Error closing fact queue", "error", err)
		}
	}()

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
	defer func() {
		if err := storageService.Close(); err != nil {
			log.Error("Error closing storage connection", "error", err)
		}
	}()

	sessionService := services.NewSessionService(storageService, log)
	if cfg.NarratorURL != "" {
		narrator := services.NewHTTPNarrator(cfg.NarratorURL, cfg.NarratorTimeout, cfg.NarratorRating, log)
		sessionService.WithNarrator(narrator)
	}

	processor := worker.NewFactProcessor(storageService, sessionService, log)

	w := worker.New(factQueue, processor, factQueue.Redis(), log, workerID)

	go func() {
		if err := w.Start(); err != nil {
			log.Error("Worker stopped with error", "error", err)
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("Worker is shutting down...")
	w.Stop()

	// Give the in-flight request a moment to finish.
	time.Sleep(2 * time.Second)
	log.Info("Worker exited")
}
