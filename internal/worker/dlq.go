package worker

// Receipt jobs that could not be rendered or stored land on dlq:<queue>, a
// capped redis list that smjctl dlq lists and replays.

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
)

const (
	DLQPrefix = "dlq:"
	// DLQMaxLen bounds each dead letter list; the oldest entries fall off.
	DLQMaxLen = 10000
)

type DLQEntry struct {
	ID            string          `json:"id"`
	OriginalQueue string          `json:"original_queue"`
	JobType       string          `json:"job_type"`
	Payload       json.RawMessage `json:"payload"`
	Reason        string          `json:"reason"`
	FailedAt      time.Time       `json:"failed_at"`
	Attempts      int             `json:"attempts"`
}

// SendToDLQ stores e at the head of its queue's dead letter list. ID and
// FailedAt are filled in when empty.
func SendToDLQ(ctx context.Context, rdb *redis.Client, e DLQEntry) error {
	if e.ID == "" {
		e.ID = uuid.NewString()
	}
	if e.FailedAt.IsZero() {
		e.FailedAt = time.Now().UTC()
	}
	data, err := json.Marshal(e)
	if err != nil {
		return fmt.Errorf("dlq: encode entry: %w", err)
	}

	key := DLQPrefix + e.OriginalQueue
	pipe := rdb.TxPipeline()
	pipe.LPush(ctx, key, data)
	pipe.LTrim(ctx, key, 0, DLQMaxLen-1)
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("dlq: push %s: %w", key, err)
	}

	log.Warn().
		Str("dlq_id", e.ID).
		Str("queue", e.OriginalQueue).
		Str("job_type", e.JobType).
		Str("reason", e.Reason).
		Int("attempts", e.Attempts).
		Msg("dlq: job moved to dead letter queue")
	return nil
}

// DLQLength returns the number of entries in a DLQ for monitoring.
func DLQLength(ctx context.Context, rdb *redis.Client, queue string) (int64, error) {
	return rdb.LLen(ctx, DLQPrefix+queue).Result()
}

// ListDLQ returns up to limit entries, oldest first.
func ListDLQ(ctx context.Context, rdb *redis.Client, queue string, limit int64) ([]DLQEntry, error) {
	if limit <= 0 {
		limit = 50
	}
	// LPUSH keeps the newest at the head; the tail is the oldest
	raw, err := rdb.LRange(ctx, DLQPrefix+queue, -limit, -1).Result()
	if err != nil {
		return nil, err
	}
	entries := make([]DLQEntry, 0, len(raw))
	for i := len(raw) - 1; i >= 0; i-- {
		var e DLQEntry
		if err := json.Unmarshal([]byte(raw[i]), &e); err != nil {
			return nil, fmt.Errorf("dlq: decode entry: %w", err)
		}
		entries = append(entries, e)
	}
	return entries, nil
}

// ReplayDLQ moves up to limit entries back onto their original queue, oldest
// first. Returns how many were requeued.
func ReplayDLQ(ctx context.Context, rdb *redis.Client, queue string, limit int) (int, error) {
	replayed := 0
	for replayed < limit {
		raw, err := rdb.RPop(ctx, DLQPrefix+queue).Result()
		if err == redis.Nil {
			break
		}
		if err != nil {
			return replayed, err
		}

		var e DLQEntry
		if err := json.Unmarshal([]byte(raw), &e); err != nil {
			// put it back untouched so nothing is lost
			_ = rdb.LPush(ctx, DLQPrefix+queue, raw).Err()
			return replayed, fmt.Errorf("dlq: decode entry: %w", err)
		}
		job, err := json.Marshal(Job{Type: e.JobType, Payload: e.Payload})
		if err != nil {
			return replayed, err
		}
		if err := rdb.LPush(ctx, e.OriginalQueue, job).Err(); err != nil {
			_ = rdb.RPush(ctx, DLQPrefix+queue, raw).Err()
			return replayed, err
		}
		replayed++
	}
	if replayed > 0 {
		log.Info().Str("queue", queue).Int("count", replayed).Msg("dlq: jobs replayed")
	}
	return replayed, nil
}
