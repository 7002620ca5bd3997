package worker

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"momentum/internal/config"
	"momentum/internal/middleware"
	"momentum/internal/storage"

	"github.com/hibiken/asynq"
	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type failingStore struct {
	storage.ProofStore
	removed [][]string
	err     error
}

func (f *failingStore) Remove(_ context.Context, paths ...string) error {
	f.removed = append(f.removed, paths)
	return f.err
}

type recordingEnqueuer struct {
	tasks []*asynq.Task
	err   error
}

func (r *recordingEnqueuer) EnqueueContext(_ context.Context, task *asynq.Task, _ ...asynq.Option) (*asynq.TaskInfo, error) {
	if r.err != nil {
		return nil, r.err
	}
	r.tasks = append(r.tasks, task)
	return &asynq.TaskInfo{ID: "t1"}, nil
}

func TestCleaner_InlineSuccessDoesNotEnqueue(t *testing.T) {
	store := &failingStore{}
	enq := &recordingEnqueuer{}

	NewCleaner(store, enq).Cleanup(context.Background(), []string{"u/a.png"})

	require.Len(t, store.removed, 1)
	assert.Empty(t, enq.tasks)
}

func TestCleaner_FallsBackToQueue(t *testing.T) {
	store := &failingStore{err: errors.New("disk busy")}
	enq := &recordingEnqueuer{}

	NewCleaner(store, enq).Cleanup(context.Background(), []string{"u/a.png", "u/a-preview.webp"})

	require.Len(t, enq.tasks, 1)
	assert.Equal(t, TaskProofCleanup, enq.tasks[0].Type())

	var payload ProofCleanupPayload
	require.NoError(t, json.Unmarshal(enq.tasks[0].Payload(), &payload))
	assert.Equal(t, []string{"u/a.png", "u/a-preview.webp"}, payload.Paths)
}

func TestCleaner_ToleratesMissingQueue(t *testing.T) {
	store := &failingStore{err: errors.New("disk busy")}
	assert.NotPanics(t, func() {
		NewCleaner(store, nil).Cleanup(context.Background(), []string{"u/a.png"})
		NewCleaner(store, &recordingEnqueuer{err: errors.New("redis down")}).Cleanup(context.Background(), []string{"u/a.png"})
	})

	var nilCleaner *Cleaner
	assert.NotPanics(t, func() { nilCleaner.Cleanup(context.Background(), []string{"x"}) })
}

func TestHandleProofCleanup(t *testing.T) {
	fsys := afero.NewMemMapFs()
	require.NoError(t, afero.WriteFile(fsys, "u/a.png", []byte("x"), 0o600))
	handler := handleProofCleanup(storage.NewStore(fsys), middleware.Logger)

	task, err := NewProofCleanupTask([]string{"u/a.png", "u/gone.png"})
	require.NoError(t, err)
	require.NoError(t, handler(context.Background(), task))

	exists, err := afero.Exists(fsys, "u/a.png")
	require.NoError(t, err)
	assert.False(t, exists)

	err = handler(context.Background(), asynq.NewTask(TaskProofCleanup, []byte("{not json")))
	assert.ErrorIs(t, err, asynq.SkipRetry)
}

func TestSweep(t *testing.T) {
	fsys := afero.NewMemMapFs()
	old := time.Now().Add(-2 * time.Hour)
	for _, p := range []string{"u/kept.png", "u/orphan.png", "u/orphan-preview.webp"} {
		require.NoError(t, afero.WriteFile(fsys, p, []byte("x"), 0o600))
		require.NoError(t, fsys.Chtimes(p, old, old))
	}
	require.NoError(t, afero.WriteFile(fsys, "u/fresh.png", []byte("x"), 0o600))
	store := storage.NewStore(fsys)
	ctx := context.Background()

	orphans, err := Sweep(ctx, store, []string{"u/kept.png"}, time.Hour, true)
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"u/orphan.png", "u/orphan-preview.webp"}, orphans)
	exists, _ := afero.Exists(fsys, "u/orphan.png")
	assert.True(t, exists, "dry run keeps files")

	_, err = Sweep(ctx, store, []string{"u/kept.png"}, time.Hour, false)
	require.NoError(t, err)

	objects, err := store.List(ctx)
	require.NoError(t, err)
	var left []string
	for _, o := range objects {
		left = append(left, o.Path)
	}
	assert.ElementsMatch(t, []string{"u/kept.png", "u/fresh.png"}, left)
}

func TestRedisConnOpt(t *testing.T) {
	opt, err := redisConnOpt("cache:6380")
	require.NoError(t, err)
	assert.Equal(t, "cache:6380", opt.Addr)

	opt, err = redisConnOpt("redis://:secret@cache:6379/2")
	require.NoError(t, err)
	assert.Equal(t, "cache:6379", opt.Addr)
	assert.Equal(t, "secret", opt.Password)
	assert.Equal(t, 2, opt.DB)

	_, err = redisConnOpt("")
	assert.Error(t, err)
}

func TestNewClient_AcceptsDefaultRedisURL(t *testing.T) {
	t.Setenv("APP_ENV", "development")
	t.Setenv("REDIS_URL", "")

	cfg, err := config.LoadConfig()
	require.NoError(t, err)

	client, err := NewClient(cfg.RedisURL)
	require.NoError(t, err)
	assert.NoError(t, client.Close())

	client, err = NewClient("localhost:6379")
	require.NoError(t, err)
	assert.NoError(t, client.Close())
}
