package worker

// dlq.go: Dead Letter Queue
// Jobs that exhaust their attempts are moved here for manual inspection.
// Uses a Redis list per source queue: dlq:{original_queue}

import (
	"context"
	"encoding/json"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
)

const DLQPrefix = "dlq:"

// DLQEntry wraps a failed job with metadata for debugging.
type DLQEntry struct {
	OriginalQueue string          `json:"original_queue"`
	JobType       string          `json:"job_type"`
	Payload       json.RawMessage `json:"payload"`
	Reason        string          `json:"reason"`
	FailedAt      string          `json:"failed_at"` // RFC 3339
	Attempts      int             `json:"attempts"`
}

// DeadLetters receives jobs a handler gave up on.
type DeadLetters interface {
	Send(ctx context.Context, entry DLQEntry) error
}

// RedisDLQ stores dead letters in Redis lists.
type RedisDLQ struct {
	rdb *redis.Client
}

func NewRedisDLQ(rdb *redis.Client) *RedisDLQ { return &RedisDLQ{rdb: rdb} }

// Send pushes a failed job to the dead letter list of its queue.
func (d *RedisDLQ) Send(ctx context.Context, entry DLQEntry) error {
	if entry.FailedAt == "" {
		entry.FailedAt = time.Now().UTC().Format(time.RFC3339)
	}
	data, err := json.Marshal(entry)
	if err != nil {
		return err
	}

	dlqKey := DLQPrefix + entry.OriginalQueue
	if err := d.rdb.LPush(ctx, dlqKey, data).Err(); err != nil {
		return err
	}

	log.Warn().
		Str("queue", entry.OriginalQueue).
		Str("job_type", entry.JobType).
		Str("reason", entry.Reason).
		Int("attempts", entry.Attempts).
		Msg("dlq: job moved to dead letter queue")
	return nil
}

// Len returns the number of entries in a queue's DLQ for monitoring.
func (d *RedisDLQ) Len(ctx context.Context, queue string) (int64, error) {
	return d.rdb.LLen(ctx, DLQPrefix+queue).Result()
}
