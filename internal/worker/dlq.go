package worker

import (
	"context"
	"encoding/json"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
)

// deadLetterPrefix namespaces the per-queue dead letter lists: dlq:jobs:email.
const deadLetterPrefix = "dlq:"

// deadLetterCap bounds each list; older entries are trimmed on push.
const deadLetterCap = 1000

// DeadLetter is a job that exhausted its attempts or failed permanently.
type DeadLetter struct {
	Queue    string          `json:"queue"`
	JobType  string          `json:"job_type"`
	Payload  json.RawMessage `json:"payload"`
	Reason   string          `json:"reason"`
	Attempts int             `json:"attempts"`
	FailedAt time.Time       `json:"failed_at"`
}

// DeadLetters stores failed jobs in redis for later inspection.
type DeadLetters struct {
	rdb *redis.Client
}

func NewDeadLetters(rdb *redis.Client) *DeadLetters { return &DeadLetters{rdb: rdb} }

func deadLetterKey(queue string) string { return deadLetterPrefix + queue }

// Push records a failed job. Errors are logged, never returned: a job that
// cannot be parked is already lost to the worker.
func (d *DeadLetters) Push(ctx context.Context, dl DeadLetter) {
	if dl.FailedAt.IsZero() {
		dl.FailedAt = time.Now().UTC()
	}
	data, err := json.Marshal(dl)
	if err != nil {
		log.Error().Err(err).Str("queue", dl.Queue).Msg("dlq: marshal failed")
		return
	}
	key := deadLetterKey(dl.Queue)
	pipe := d.rdb.TxPipeline()
	pipe.LPush(ctx, key, data)
	pipe.LTrim(ctx, key, 0, deadLetterCap-1)
	if _, err := pipe.Exec(ctx); err != nil {
		log.Error().Err(err).Str("dlq_key", key).Msg("dlq: push failed")
		return
	}
	log.Warn().
		Str("queue", dl.Queue).
		Str("job_type", dl.JobType).
		Str("reason", dl.Reason).
		Int("attempts", dl.Attempts).
		Msg("dlq: job parked")
}

// Len is the number of parked jobs for queue.
func (d *DeadLetters) Len(ctx context.Context, queue string) (int64, error) {
	return d.rdb.LLen(ctx, deadLetterKey(queue)).Result()
}

// Newest returns up to n of the most recently parked jobs for queue. Entries
// that no longer decode are skipped.
func (d *DeadLetters) Newest(ctx context.Context, queue string, n int64) ([]DeadLetter, error) {
	raw, err := d.rdb.LRange(ctx, deadLetterKey(queue), 0, n-1).Result()
	if err != nil {
		return nil, err
	}
	out := make([]DeadLetter, 0, len(raw))
	for _, r := range raw {
		var dl DeadLetter
		if json.Unmarshal([]byte(r), &dl) == nil {
			out = append(out, dl)
		}
	}
	return out, nil
}
