package worker

import (
	"context"
	"log/slog"

	"momentum/internal/middleware"
	"momentum/internal/observability"
	"momentum/internal/storage"

	"github.com/hibiken/asynq"
)

// Enqueuer is the part of asynq.Client used to defer work.
type Enqueuer interface {
	EnqueueContext(ctx context.Context, task *asynq.Task, opts ...asynq.Option) (*asynq.TaskInfo, error)
}

// Cleaner removes stored artifacts that no longer back a record. Removal is
// attempted inline; failures are handed to the queue when one is configured.
type Cleaner struct {
	store    storage.ProofStore
	enqueuer Enqueuer
	logger   *slog.Logger
}

// NewCleaner returns a Cleaner. enqueuer may be nil, in which case failed
// removals are only logged and left for the sweep-uploads command.
func NewCleaner(store storage.ProofStore, enqueuer Enqueuer) *Cleaner {
	return &Cleaner{store: store, enqueuer: enqueuer, logger: middleware.Logger}
}

// Cleanup removes paths. It never fails the caller: the records are already gone.
func (c *Cleaner) Cleanup(ctx context.Context, paths []string) {
	if c == nil || len(paths) == 0 {
		return
	}
	// Detach from request cancellation; the response may already be written.
	ctx = context.WithoutCancel(ctx)

	err := c.store.Remove(ctx, paths...)
	if err == nil {
		observability.CleanupTasks.WithLabelValues("inline").Inc()
		return
	}

	c.logger.WarnContext(ctx, "inline proof cleanup failed",
		slog.Int("paths", len(paths)), slog.String("error", err.Error()))

	if c.enqueuer == nil {
		observability.CleanupTasks.WithLabelValues("abandoned").Inc()
		return
	}

	task, err := NewProofCleanupTask(paths)
	if err == nil {
		_, err = c.enqueuer.EnqueueContext(ctx, task)
	}
	if err != nil {
		observability.CleanupTasks.WithLabelValues("abandoned").Inc()
		c.logger.ErrorContext(ctx, "failed to enqueue proof cleanup",
			slog.Int("paths", len(paths)), slog.String("error", err.Error()))
		return
	}
	observability.CleanupTasks.WithLabelValues("enqueued").Inc()
}
