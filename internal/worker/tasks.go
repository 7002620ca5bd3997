// Package worker runs background maintenance of stored proof artifacts on asynq.
package worker

import (
	"encoding/json"
	"time"

	"momentum/internal/cache"

	"github.com/hibiken/asynq"
)

// Task type constants
const (
	TaskProofCleanup = "proof:cleanup"
)

// ProofCleanupPayload names the artifacts a cleanup task removes.
type ProofCleanupPayload struct {
	Paths []string `json:"paths"`
}

// NewProofCleanupTask builds a cleanup task that retries for up to a day.
func NewProofCleanupTask(paths []string) (*asynq.Task, error) {
	payload, err := json.Marshal(ProofCleanupPayload{Paths: paths})
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(
		TaskProofCleanup,
		payload,
		asynq.MaxRetry(10),
		asynq.Timeout(time.Minute),
		asynq.Retention(24*time.Hour),
	), nil
}

// NewClient creates an asynq client for enqueueing tasks.
func NewClient(redisURL string) (*asynq.Client, error) {
	opt, err := redisConnOpt(redisURL)
	if err != nil {
		return nil, err
	}
	return asynq.NewClient(opt), nil
}

// redisConnOpt reads REDIS_URL the way the cache does, so a bare host:port
// reaches the same server as a redis:// URL.
func redisConnOpt(redisURL string) (asynq.RedisClientOpt, error) {
	opts, err := cache.ParseAddr(redisURL)
	if err != nil {
		return asynq.RedisClientOpt{}, err
	}
	return asynq.RedisClientOpt{
		Network:   opts.Network,
		Addr:      opts.Addr,
		Username:  opts.Username,
		Password:  opts.Password,
		DB:        opts.DB,
		TLSConfig: opts.TLSConfig,
	}, nil
}
