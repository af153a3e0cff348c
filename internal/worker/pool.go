package worker

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
)

const (
	QueueReceipt = "jobs:receipt"

	JobReceipt = "receipt"
)

// Job is the generic envelope for all async tasks.
type Job struct {
	Type    string          `json:"type"`
	Payload json.RawMessage `json:"payload"`
}

// ReceiptPayload identifies the document whose receipt must be rendered.
type ReceiptPayload struct {
	Kind string `json:"kind"` // bill | exchange
	ID   string `json:"id"`
}

// Processor handles the payload of one job type. A returned error moves the
// job to the dead letter queue.
type Processor interface {
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

// EnqueueReceipt pushes a receipt rendering job to Redis.
func (d *Dispatcher) EnqueueReceipt(ctx context.Context, kind string, id uuid.UUID) error {
	return d.enqueue(ctx, QueueReceipt, JobReceipt, ReceiptPayload{Kind: kind, ID: id.String()})
}

func (d *Dispatcher) enqueue(ctx context.Context, queue, jobType string, payload interface{}) error {
	encoded, err := encodeJob(jobType, payload)
	if err != nil {
		return err
	}
	return d.rdb.LPush(ctx, queue, encoded).Err()
}

func encodeJob(jobType string, payload interface{}) ([]byte, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return json.Marshal(Job{Type: jobType, Payload: data})
}

// Pool is a set of goroutines consuming the job queues.
// Backoff bounds for a worker whose BRPOP fails for reasons other than the
// idle timeout.
const (
	popRetryBase = time.Second
	popRetryMax  = 30 * time.Second
)

type Pool struct {
	rdb       *redis.Client
	handlers  map[string]Processor
	wg        sync.WaitGroup
	retryBase time.Duration
	retryMax  time.Duration
}

// StartWorkerPool launches numWorkers goroutines consuming QueueReceipt.
// Each goroutine blocks on BRPOP: zero CPU when idle.
func StartWorkerPool(ctx context.Context, rdb *redis.Client, numWorkers int, handlers map[string]Processor) *Pool {
	if numWorkers <= 0 {
		numWorkers = 1
	}
	p := &Pool{rdb: rdb, handlers: handlers, retryBase: popRetryBase, retryMax: popRetryMax}
	for i := 0; i < numWorkers; i++ {
		p.wg.Add(1)
		go p.runWorker(ctx, i)
	}
	log.Info().Msgf("worker pool started with %d workers", numWorkers)
	return p
}

// Wait blocks until every worker has observed context cancellation.
func (p *Pool) Wait() { p.wg.Wait() }

func (p *Pool) runWorker(ctx context.Context, id int) {
	defer p.wg.Done()
	backoff := p.retryBase
	for {
		select {
		case <-ctx.Done():
			log.Info().Msgf("worker %d shutting down", id)
			return
		default:
		}

		// Blocking pop: waits up to 5s then loops to check ctx
		result, err := p.rdb.BRPop(ctx, 5*time.Second, QueueReceipt).Result()
		if errors.Is(err, redis.Nil) || ctx.Err() != nil {
			continue
		}
		if err != nil {
			log.Warn().Err(err).Int("worker", id).Dur("backoff", backoff).Msg("receipt queue unavailable")
			select {
			case <-ctx.Done():
			case <-time.After(backoff):
			}
			backoff = min(backoff*2, p.retryMax)
			continue
		}
		backoff = p.retryBase
		if len(result) < 2 {
			continue
		}
		p.processJob(ctx, result[0], result[1])
	}
}

func (p *Pool) processJob(ctx context.Context, queue, raw string) {
	var job Job
	if err := json.Unmarshal([]byte(raw), &job); err != nil {
		log.Error().Str("queue", queue).Err(err).Msg("failed to unmarshal job")
		p.deadLetter(ctx, DLQEntry{OriginalQueue: queue, JobType: "unknown", Payload: json.RawMessage(raw), Reason: "malformed job: " + err.Error()})
		return
	}

	h, ok := p.handlers[job.Type]
	if !ok {
		p.deadLetter(ctx, DLQEntry{OriginalQueue: queue, JobType: job.Type, Payload: job.Payload, Reason: "no handler for job type"})
		return
	}

	log.Debug().Str("type", job.Type).Str("queue", queue).Msg("processing job")
	if err := h.Process(ctx, job.Payload); err != nil {
		p.deadLetter(ctx, DLQEntry{OriginalQueue: queue, JobType: job.Type, Payload: job.Payload, Reason: err.Error(), Attempts: 1})
	}
}

// deadLetter never fails the worker loop; a lost entry is logged instead.
func (p *Pool) deadLetter(ctx context.Context, e DLQEntry) {
	if err := SendToDLQ(ctx, p.rdb, e); err != nil {
		log.Error().Err(err).Str("queue", e.OriginalQueue).Str("payload", string(e.Payload)).Msg("dead letter lost")
	}
}
