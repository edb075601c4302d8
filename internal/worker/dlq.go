package worker

import (
	"context"
	"encoding/json"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
)

// DLQPrefix namespaces the dead letter list of each queue: dlq:{queue}.
const DLQPrefix = "dlq:"

// DeadLetter is a job that will not be retried, kept for inspection.
type DeadLetter struct {
	JobID    string          `json:"job_id"`
	Queue    string          `json:"queue"`
	Type     string          `json:"type"`
	Payload  json.RawMessage `json:"payload"`
	Reason   string          `json:"reason"`
	Attempts int             `json:"attempts"`
	FailedAt time.Time       `json:"failed_at"`
}

func deadLetter(ctx context.Context, rdb *redis.Client, queue string, job Job, reason string) {
	entry := DeadLetter{
		JobID:    job.ID,
		Queue:    queue,
		Type:     job.Type,
		Payload:  job.Payload,
		Reason:   reason,
		Attempts: job.Attempts,
		FailedAt: time.Now().UTC(),
	}
	data, err := json.Marshal(entry)
	if err != nil {
		log.Error().Err(err).Str("job_id", job.ID).Msg("dlq: marshal failed")
		return
	}
	if err := rdb.LPush(ctx, DLQPrefix+queue, data).Err(); err != nil {
		log.Error().Err(err).Str("job_id", job.ID).Str("queue", queue).Msg("dlq: push failed")
		return
	}
	log.Warn().Str("job_id", job.ID).Str("type", job.Type).Str("reason", reason).
		Int("attempts", job.Attempts).Msg("job dead-lettered")
}

// DLQLength returns how many dead letters queue has accumulated.
func DLQLength(ctx context.Context, rdb *redis.Client, queue string) (int64, error) {
	return rdb.LLen(ctx, DLQPrefix+queue).Result()
}

// PeekDLQ returns up to n of the most recent dead letters of queue.
func PeekDLQ(ctx context.Context, rdb *redis.Client, queue string, n int64) ([]DeadLetter, error) {
	raw, err := rdb.LRange(ctx, DLQPrefix+queue, 0, n-1).Result()
	if err != nil {
		return nil, err
	}
	out := make([]DeadLetter, 0, len(raw))
	for _, r := range raw {
		var dl DeadLetter
		if err := json.Unmarshal([]byte(r), &dl); err != nil {
			continue
		}
		out = append(out, dl)
	}
	return out, nil
}
