package worker

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"momentum/internal/middleware"
	"momentum/internal/observability"
	"momentum/internal/storage"

	"github.com/hibiken/asynq"
)

// asynqLoggerAdapter wraps slog.Logger to implement asynq.Logger interface
type asynqLoggerAdapter struct {
	logger *slog.Logger
}

func (a *asynqLoggerAdapter) Debug(args ...any) {
	a.logger.Debug(fmt.Sprint(args...))
}

func (a *asynqLoggerAdapter) Info(args ...any) {
	a.logger.Info(fmt.Sprint(args...))
}

func (a *asynqLoggerAdapter) Warn(args ...any) {
	a.logger.Warn(fmt.Sprint(args...))
}

func (a *asynqLoggerAdapter) Error(args ...any) {
	a.logger.Error(fmt.Sprint(args...))
}

func (a *asynqLoggerAdapter) Fatal(args ...any) {
	a.logger.Error(fmt.Sprint(args...))
	panic(fmt.Sprint(args...))
}

// Start runs the asynq server in the background and returns a stop function
// for the caller's shutdown sequence.
func Start(redisURL string, store storage.ProofStore) (stop func(), err error) {
	redisOpt, err := redisConnOpt(redisURL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse Redis URL: %w", err)
	}

	logger := middleware.Logger.With(slog.String("component", "worker"))
	srv := asynq.NewServer(redisOpt, asynq.Config{
		Concurrency:     2,
		ShutdownTimeout: 10 * time.Second,
		ErrorHandler:    asynq.ErrorHandlerFunc(makeErrorHandler(logger)),
		Logger:          &asynqLoggerAdapter{logger: logger},
	})

	if err := srv.Start(NewServeMux(store, logger)); err != nil {
		return nil, fmt.Errorf("failed to start worker: %w", err)
	}
	logger.Info("Worker started", slog.Int("concurrency", 2))
	return srv.Shutdown, nil
}

// NewServeMux routes every task type handled by the worker.
func NewServeMux(store storage.ProofStore, logger *slog.Logger) *asynq.ServeMux {
	mux := asynq.NewServeMux()
	mux.HandleFunc(TaskProofCleanup, handleProofCleanup(store, logger))
	return mux
}

func handleProofCleanup(store storage.ProofStore, logger *slog.Logger) func(context.Context, *asynq.Task) error {
	return func(ctx context.Context, task *asynq.Task) error {
		var payload ProofCleanupPayload
		if err := json.Unmarshal(task.Payload(), &payload); err != nil {
			return fmt.Errorf("invalid payload: %w", asynq.SkipRetry)
		}
		if err := store.Remove(ctx, payload.Paths...); err != nil {
			observability.CleanupTasks.WithLabelValues("retry").Inc()
			return fmt.Errorf("proof cleanup failed: %w", err)
		}
		observability.CleanupTasks.WithLabelValues("queued").Inc()
		logger.InfoContext(ctx, "Proof cleanup completed", slog.Int("paths", len(payload.Paths)))
		return nil
	}
}

func makeErrorHandler(logger *slog.Logger) func(context.Context, *asynq.Task, error) {
	return func(ctx context.Context, task *asynq.Task, err error) {
		retried, _ := asynq.GetRetryCount(ctx)
		maxRetry, _ := asynq.GetMaxRetry(ctx)

		logger.Error("Task execution failed",
			slog.String("task_type", task.Type()),
			slog.String("error", err.Error()),
			slog.Int("retry_count", retried),
			slog.Int("max_retry", maxRetry),
		)
		if retried >= maxRetry {
			logger.Error("Task moved to archive (all retries exhausted)",
				slog.String("task_type", task.Type()))
		}
	}
}
