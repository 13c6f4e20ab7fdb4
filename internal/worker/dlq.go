package worker

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
)

const (
	DLQPrefix = "dlq:"

	// dlqCap bounds each dead-letter list; older entries are trimmed.
	dlqCap = 200
)

// DeadLetter is a sync job that exhausted its retries.
type DeadLetter struct {
	Queue    string          `json:"queue"`
	JobID    string          `json:"job_id"`
	Trigger  string          `json:"trigger"`
	Attempts int             `json:"attempts"`
	Reason   string          `json:"reason"`
	FailedAt time.Time       `json:"failed_at"`
	Job      json.RawMessage `json:"job"`
}

func dlqKey(queue string) string { return DLQPrefix + queue }

// SendToDLQ records job as dead in one pipelined LPUSH + LTRIM.
func SendToDLQ(ctx context.Context, rdb *redis.Client, queue string, job Job, raw json.RawMessage, reason string, attempts int) error {
	data, err := json.Marshal(DeadLetter{
		Queue:    queue,
		JobID:    job.ID,
		Trigger:  job.Trigger,
		Attempts: attempts,
		Reason:   reason,
		FailedAt: time.Now().UTC(),
		Job:      raw,
	})
	if err != nil {
		return fmt.Errorf("dlq: marshal: %w", err)
	}

	key := dlqKey(queue)
	pipe := rdb.TxPipeline()
	pipe.LPush(ctx, key, data)
	pipe.LTrim(ctx, key, 0, dlqCap-1)
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("dlq: push %s: %w", key, err)
	}

	log.Warn().
		Str("job_id", job.ID).
		Str("trigger", job.Trigger).
		Int("attempts", attempts).
		Str("reason", reason).
		Msg("dlq: sync job dead-lettered")
	return nil
}

// DLQLength is the dead-letter backlog reported by /health.
func DLQLength(ctx context.Context, rdb *redis.Client, queue string) (int64, error) {
	return rdb.LLen(ctx, dlqKey(queue)).Result()
}

// ListDLQ returns up to limit entries, newest first. Entries that no longer
// decode are skipped.
func ListDLQ(ctx context.Context, rdb *redis.Client, queue string, limit int64) ([]DeadLetter, error) {
	if limit <= 0 {
		return []DeadLetter{}, nil
	}
	raw, err := rdb.LRange(ctx, dlqKey(queue), 0, limit-1).Result()
	if err != nil {
		return nil, fmt.Errorf("dlq: list: %w", err)
	}
	out := make([]DeadLetter, 0, len(raw))
	for _, r := range raw {
		var d DeadLetter
		if json.Unmarshal([]byte(r), &d) == nil {
			out = append(out, d)
		}
	}
	return out, nil
}
