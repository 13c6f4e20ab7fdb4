package worker

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/ValeenMar/tovaltech-sub001/internal/dto"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
)

const (
	QueueSync = "jobs:sync"

	// pendingKey marks a run as queued so repeated triggers collapse into one.
	pendingKey = "sync:pending"
	pendingTTL = time.Hour

	MaxSyncAttempts = 3
)

// Job is the envelope pushed to QueueSync.
type Job struct {
	ID         string    `json:"id"`
	Type       string    `json:"type"`
	Trigger    string    `json:"trigger"`
	EnqueuedAt time.Time `json:"enqueued_at"`
}

// Runner is satisfied by service.SyncService.
type Runner interface {
	Run(ctx context.Context, trigger string) (*dto.SyncReport, error)
}

// Dispatcher enqueues sync jobs into Redis. The single sync worker dequeues
// them via BRPOP.
type Dispatcher struct {
	rdb *redis.Client
}

func NewDispatcher(rdb *redis.Client) *Dispatcher {
	return &Dispatcher{rdb: rdb}
}

// EnqueueSync queues a run unless one is already waiting, in which case the
// waiting job's id is returned with queued=false.
func (d *Dispatcher) EnqueueSync(ctx context.Context, trigger string) (jobID string, queued bool, err error) {
	job := Job{ID: uuid.NewString(), Type: "sync", Trigger: trigger, EnqueuedAt: time.Now().UTC()}

	ok, err := d.rdb.SetNX(ctx, pendingKey, job.ID, pendingTTL).Result()
	if err != nil {
		return "", false, fmt.Errorf("worker: mark pending: %w", err)
	}
	if !ok {
		existing, err := d.rdb.Get(ctx, pendingKey).Result()
		if err != nil && !errors.Is(err, redis.Nil) {
			return "", false, fmt.Errorf("worker: read pending: %w", err)
		}
		return existing, false, nil
	}

	encoded, err := json.Marshal(job)
	if err != nil {
		return "", false, err
	}
	if err := d.rdb.LPush(ctx, QueueSync, encoded).Err(); err != nil {
		_ = d.rdb.Del(ctx, pendingKey).Err()
		return "", false, fmt.Errorf("worker: enqueue: %w", err)
	}
	log.Info().Str("job_id", job.ID).Str("trigger", trigger).Msg("worker: sync job queued")
	return job.ID, true, nil
}

// StartSyncWorker launches the one consumer of QueueSync for this process.
// A single consumer keeps runs from overlapping locally; the merge engine's
// advisory lock covers other processes.
func StartSyncWorker(ctx context.Context, rdb *redis.Client, runner Runner) {
	go func() {
		log.Info().Msg("worker: sync worker started")
		for {
			select {
			case <-ctx.Done():
				log.Info().Msg("worker: sync worker shutting down")
				return
			default:
				// Blocking pop; waits up to 5s, then loops to check ctx
				result, err := rdb.BRPop(ctx, 5*time.Second, QueueSync).Result()
				if err != nil {
					continue // timeout or context cancelled
				}
				if len(result) < 2 {
					continue
				}
				_ = rdb.Del(ctx, pendingKey).Err()
				processSync(ctx, rdb, runner, result[1])
			}
		}
	}()
}

func processSync(ctx context.Context, rdb *redis.Client, runner Runner, raw string) {
	var job Job
	if err := json.Unmarshal([]byte(raw), &job); err != nil {
		log.Error().Str("queue", QueueSync).Err(err).Msg("worker: failed to unmarshal job")
		return
	}
	logger := log.With().Str("job_id", job.ID).Str("trigger", job.Trigger).Logger()

	attempts := 0
	err := withRetry(ctx, MaxSyncAttempts, func(attempt int) error {
		attempts = attempt + 1
		_, err := runner.Run(ctx, job.Trigger)
		if err != nil {
			logger.Warn().Err(err).Int("attempt", attempts).Msg("worker: sync attempt failed")
		}
		return err
	})
	if err == nil {
		return
	}
	if errors.Is(err, context.Canceled) {
		logger.Info().Msg("worker: sync cancelled by shutdown")
		return
	}
	// The run context may be the one that failed; the dead letter must still land.
	dctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 5*time.Second)
	defer cancel()
	if dlqErr := SendToDLQ(dctx, rdb, QueueSync, job, json.RawMessage(raw), err.Error(), attempts); dlqErr != nil {
		logger.Error().Err(dlqErr).AnErr("run_err", err).Msg("worker: sync job lost")
	}
}

// retryBase is the first backoff step.
var retryBase = time.Second

func withRetry(ctx context.Context, maxAttempts int, fn func(attempt int) error) error {
	var lastErr error
	for i := 0; i < maxAttempts; i++ {
		if i > 0 {
			// base, 2×base … (exponential backoff)
			wait := time.Duration(1<<uint(i-1)) * retryBase
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(wait):
			}
		}
		if err := fn(i); err != nil {
			lastErr = err
			continue
		}
		return nil
	}
	return lastErr
}
