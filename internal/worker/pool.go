package worker

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
)

const (
	QueueEmail = "jobs:email"

	jobTypeEmail = "email"
	// MaxAttempts is how many times a job runs before it goes to the DLQ.
	MaxAttempts = 3
)

// Job is the generic envelope for all async tasks.
type Job struct {
	Type     string          `json:"type"`
	Payload  json.RawMessage `json:"payload"`
	Attempts int             `json:"attempts"`
}

// Handler processes one job payload. A returned error schedules a retry.
type Handler interface {
	Process(ctx context.Context, payload json.RawMessage) error
}

// Redactor is implemented by handlers whose payloads carry data that must not
// be kept once a job is parked in the dead letter queue.
type Redactor interface {
	Redact(payload json.RawMessage) json.RawMessage
}

// Dispatcher enqueues async jobs into Redis lists.
// The worker pool dequeues them via BRPOP.
type Dispatcher struct {
	rdb *redis.Client
}

func NewDispatcher(rdb *redis.Client) *Dispatcher {
	return &Dispatcher{rdb: rdb}
}

// EnqueueEmail pushes an email job to Redis.
func (d *Dispatcher) EnqueueEmail(ctx context.Context, payload EmailJobPayload) error {
	return enqueue(ctx, d.rdb, QueueEmail, jobTypeEmail, payload)
}

func enqueue(ctx context.Context, rdb *redis.Client, queue, jobType string, payload interface{}) error {
	data, err := json.Marshal(payload)
	if err != nil {
		return err
	}
	return push(ctx, rdb, queue, Job{Type: jobType, Payload: data})
}

func push(ctx context.Context, rdb *redis.Client, queue string, job Job) error {
	encoded, err := json.Marshal(job)
	if err != nil {
		return err
	}
	return rdb.LPush(ctx, queue, encoded).Err()
}

// Pool consumes the job queues with a fixed number of goroutines.
type Pool struct {
	rdb      *redis.Client
	dead     *DeadLetters
	handlers map[string]Handler
	queues   []string
	// pollTimeout bounds each BRPOP so workers notice cancellation.
	pollTimeout time.Duration
}

// NewPool builds a pool for the given queue → handler map.
func NewPool(rdb *redis.Client, handlers map[string]Handler) *Pool {
	queues := make([]string, 0, len(handlers))
	for q := range handlers {
		queues = append(queues, q)
	}
	return &Pool{rdb: rdb, dead: NewDeadLetters(rdb), handlers: handlers, queues: queues, pollTimeout: 5 * time.Second}
}

// Start launches numWorkers goroutines. Each blocks on BRPOP and exits when
// ctx is cancelled.
func (p *Pool) Start(ctx context.Context, numWorkers int) {
	if len(p.queues) == 0 {
		return
	}
	if numWorkers < 1 {
		numWorkers = 1
	}
	for i := 0; i < numWorkers; i++ {
		go p.run(ctx, i)
	}
	log.Info().Int("workers", numWorkers).Strs("queues", p.queues).Msg("worker pool started")
}

func (p *Pool) run(ctx context.Context, id int) {
	for {
		select {
		case <-ctx.Done():
			log.Info().Int("worker", id).Msg("worker shutting down")
			return
		default:
		}
		result, err := p.rdb.BRPop(ctx, p.pollTimeout, p.queues...).Result()
		if err != nil {
			if !errors.Is(err, redis.Nil) && ctx.Err() == nil {
				log.Error().Err(err).Int("worker", id).Msg("worker: dequeue failed")
				time.Sleep(time.Second)
			}
			continue
		}
		if len(result) < 2 {
			continue
		}
		p.process(ctx, result[0], result[1])
	}
}

// process runs one raw job. Failures are re-queued until MaxAttempts, then the
// job is moved to the dead letter queue.
func (p *Pool) process(ctx context.Context, queue, raw string) {
	h, ok := p.handlers[queue]
	if !ok {
		log.Error().Str("queue", queue).Msg("no handler for queue")
		return
	}
	var job Job
	if err := json.Unmarshal([]byte(raw), &job); err != nil {
		log.Error().Str("queue", queue).Err(err).Msg("failed to unmarshal job")
		kept := json.RawMessage(raw)
		if _, redacts := h.(Redactor); redacts {
			// An unparsable job cannot be redacted field by field.
			kept = nil
		}
		p.dead.Push(ctx, DeadLetter{Queue: queue, JobType: "unknown", Payload: kept, Reason: "malformed job: " + err.Error()})
		return
	}

	job.Attempts++
	err := h.Process(ctx, job.Payload)
	if err == nil {
		return
	}
	if errors.Is(err, ErrPermanent) || job.Attempts >= MaxAttempts {
		kept := job.Payload
		if r, redacts := h.(Redactor); redacts {
			kept = r.Redact(kept)
		}
		p.dead.Push(ctx, DeadLetter{Queue: queue, JobType: job.Type, Payload: kept, Reason: err.Error(), Attempts: job.Attempts})
		return
	}
	log.Warn().Err(err).Str("queue", queue).Int("attempt", job.Attempts).Msg("job failed, re-queued")
	if perr := push(ctx, p.rdb, queue, job); perr != nil {
		log.Error().Err(perr).Str("queue", queue).Msg("failed to re-queue job")
	}
}

// ErrPermanent marks a failure that retrying cannot fix.
var ErrPermanent = errors.New("permanent job failure")
