// Command server is the entry point for the Momentum backend.
package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"momentum/internal/config"
	"momentum/internal/middleware"
	"momentum/internal/observability"
	"momentum/internal/server"
	"momentum/internal/storage"
	"momentum/internal/worker"
)

// @title Momentum API
// @version 1.0
// @description Personal productivity tracker: projects, daily entries with proof, weekly reviews, job applications and a dashboard.

// @contact.name API Support
// @contact.email support@momentum.dev

// @license.name MIT
// @license.url https://opensource.org/licenses/MIT

// @host localhost:5000
// @BasePath /api
// @schemes http https

// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description Type "Bearer" followed by a space and JWT token.

func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	shutdownTracing, err := observability.InitTracing(context.Background(), observability.NewTracingConfig(cfg, "1.0.0"))
	if err != nil {
		log.Fatalf("Failed to initialize tracing: %v", err)
	}

	srv, err := server.NewServer(cfg)
	if err != nil {
		log.Fatalf("Failed to create server: %v", err)
	}

	stopWorker := func() {}
	if cfg.WorkerEnabled && cfg.RedisURL != "" {
		files, err := storage.NewLocalStore(cfg.UploadDir)
		if err != nil {
			log.Fatalf("Failed to open upload dir: %v", err)
		}
		if stop, err := worker.Start(cfg.RedisURL, files); err != nil {
			middleware.Logger.Warn("Worker not started", "error", err.Error())
		} else {
			stopWorker = stop
		}
	}

	// Graceful shutdown
	done := make(chan struct{})
	go func() {
		defer close(done)
		sigChan := make(chan os.Signal, 1)
		signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
		<-sigChan

		middleware.Logger.Info("Shutting down server...")
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()

		stopWorker()
		if err := srv.Shutdown(ctx); err != nil {
			middleware.Logger.Error("Server shutdown error", "error", err.Error())
		}
		if err := shutdownTracing(ctx); err != nil {
			middleware.Logger.Error("Tracing shutdown error", "error", err.Error())
		}
	}()

	if err := srv.Start(); err != nil {
		log.Fatal(err)
	}
	<-done
}
