package worker

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
)

const (
	QueueEmail = "jobs:email"

	JobQuotationEmail = "quotation_email"

	// maxAttempts is how many times a job runs before it is dead-lettered.
	maxAttempts = 3

	defaultErrBackoff = time.Second
)

// ErrQueueUnavailable is returned when no Redis client was configured.
var ErrQueueUnavailable = errors.New("job queue unavailable")

// Job is the generic envelope for all async tasks.
type Job struct {
	ID       string          `json:"id"`
	Type     string          `json:"type"`
	Payload  json.RawMessage `json:"payload"`
	Attempts int             `json:"attempts"`
}

// JobHandler processes one job payload. A returned error schedules a retry.
type JobHandler interface {
	Process(ctx context.Context, payload json.RawMessage) error
}

// Dispatcher enqueues async jobs into Redis lists.
// The worker pool dequeues them via BRPOP.
type Dispatcher struct {
	rdb *redis.Client
}

func NewDispatcher(rdb *redis.Client) *Dispatcher {
	return &Dispatcher{rdb: rdb}
}

// EnqueueQuotationEmail pushes a quotation e-mail job to Redis.
func (d *Dispatcher) EnqueueQuotationEmail(ctx context.Context, quotationID uint, to string) error {
	return d.enqueue(ctx, QueueEmail, JobQuotationEmail, QuotationEmailPayload{QuotationID: quotationID, To: to})
}

func (d *Dispatcher) enqueue(ctx context.Context, queue, jobType string, payload interface{}) error {
	if d.rdb == nil {
		return ErrQueueUnavailable
	}
	data, err := json.Marshal(payload)
	if err != nil {
		return err
	}
	job := Job{ID: uuid.NewString(), Type: jobType, Payload: data}
	return push(ctx, d.rdb, queue, job)
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
	handlers map[string]JobHandler
	queues   []string
	// errBackoff is the pause after a failed BRPOP so workers do not spin
	// while Redis is unreachable.
	errBackoff time.Duration
}

func NewPool(rdb *redis.Client) *Pool {
	return &Pool{
		rdb:        rdb,
		handlers:   make(map[string]JobHandler),
		queues:     []string{QueueEmail},
		errBackoff: defaultErrBackoff,
	}
}

// Handle registers the handler for a job type.
func (p *Pool) Handle(jobType string, h JobHandler) {
	p.handlers[jobType] = h
}

// Start launches numWorkers goroutines consuming the queues.
// Each goroutine blocks on BRPOP, so idle workers cost nothing.
func (p *Pool) Start(ctx context.Context, numWorkers int) {
	for i := 0; i < numWorkers; i++ {
		go p.run(ctx, i)
	}
	log.Info().Msgf("worker pool started with %d workers", numWorkers)
}

func (p *Pool) run(ctx context.Context, id int) {
	for {
		select {
		case <-ctx.Done():
			log.Info().Msgf("worker %d shutting down", id)
			return
		default:
			// Blocking pop: waits up to 5s then loops to check ctx
			result, err := p.rdb.BRPop(ctx, 5*time.Second, p.queues...).Result()
			if errors.Is(err, redis.Nil) {
				continue
			}
			if err != nil {
				if ctx.Err() != nil {
					continue
				}
				log.Warn().Err(err).Int("worker", id).Dur("backoff", p.errBackoff).Msg("queue read failed")
				select {
				case <-ctx.Done():
				case <-time.After(p.errBackoff):
				}
				continue
			}
			if len(result) < 2 {
				continue
			}
			p.process(ctx, result[0], result[1])
		}
	}
}

func (p *Pool) process(ctx context.Context, queue, raw string) {
	var job Job
	if err := json.Unmarshal([]byte(raw), &job); err != nil {
		log.Error().Str("queue", queue).Err(err).Msg("failed to unmarshal job")
		// keep the raw text as a JSON string so the entry itself stays valid JSON
		quoted, _ := json.Marshal(raw)
		deadLetter(ctx, p.rdb, queue, Job{Type: "unknown", Payload: quoted}, "malformed job: "+err.Error())
		return
	}

	h, ok := p.handlers[job.Type]
	if !ok {
		deadLetter(ctx, p.rdb, queue, job, "no handler registered")
		return
	}

	job.Attempts++
	err := h.Process(ctx, job.Payload)
	if err == nil {
		log.Info().Str("job_id", job.ID).Str("type", job.Type).Int("attempt", job.Attempts).Msg("job done")
		return
	}

	if job.Attempts >= maxAttempts {
		deadLetter(ctx, p.rdb, queue, job, err.Error())
		return
	}
	log.Warn().Err(err).Str("job_id", job.ID).Str("type", job.Type).Int("attempt", job.Attempts).Msg("job failed, requeued")
	if err := push(ctx, p.rdb, queue, job); err != nil {
		log.Error().Err(err).Str("job_id", job.ID).Msg("requeue failed")
	}
}
