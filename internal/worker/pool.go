package worker

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"airportpos/internal/infra"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
)

const (
	QueueEmail   = "jobs:email"
	QueueInvoice = "jobs:invoice"

	JobEmail   = "email"
	JobInvoice = "invoice"
)

// Job is the generic envelope for all async tasks.
type Job struct {
	Type    string          `json:"type"`
	Payload json.RawMessage `json:"payload"`
}

// Dispatcher enqueues async jobs into Redis lists.
// The worker pool dequeues them via BRPOP.
type Dispatcher struct {
	rdb *redis.Client
}

func NewDispatcher(rdb *redis.Client) *Dispatcher {
	return &Dispatcher{rdb: rdb}
}

// Notify queues a plain-text email. Delivery happens in the email worker.
func (d *Dispatcher) Notify(ctx context.Context, to, subject, body string) error {
	return d.EnqueueEmail(ctx, EmailJobPayload{ToEmail: to, Subject: subject, Body: body})
}

// EnqueueEmail pushes an email job to Redis.
func (d *Dispatcher) EnqueueEmail(ctx context.Context, payload EmailJobPayload) error {
	return d.enqueue(ctx, QueueEmail, JobEmail, payload)
}

// EnqueueInvoice asks the invoice worker to render billID again.
func (d *Dispatcher) EnqueueInvoice(ctx context.Context, billID uuid.UUID) error {
	return d.enqueue(ctx, QueueInvoice, JobInvoice, InvoiceJobPayload{BillID: billID.String()})
}

func (d *Dispatcher) enqueue(ctx context.Context, queue, jobType string, payload interface{}) error {
	encoded, err := encodeJob(jobType, payload)
	if err != nil {
		return err
	}
	if err := d.rdb.LPush(ctx, queue, encoded).Err(); err != nil {
		return fmt.Errorf("enqueue %s: %w", jobType, err)
	}
	return nil
}

func encodeJob(jobType string, payload interface{}) ([]byte, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return json.Marshal(Job{Type: jobType, Payload: data})
}

// JobHandler processes the payload of one job type.
type JobHandler interface {
	Process(ctx context.Context, payload json.RawMessage) error
}

// Handlers routes job types to their workers. Metrics may be nil.
type Handlers struct {
	Email   JobHandler
	Invoice JobHandler
	Metrics *infra.CheckoutMetrics
}

// StartWorkerPool launches numWorkers goroutines consuming both queues.
// Each goroutine blocks on BRPOP, so idle workers cost nothing.
// Wait on the returned group after cancelling ctx to drain in-flight jobs.
func StartWorkerPool(ctx context.Context, rdb *redis.Client, numWorkers int, h Handlers) *sync.WaitGroup {
	var wg sync.WaitGroup
	for i := 0; i < numWorkers; i++ {
		wg.Add(1)
		go func(id int) {
			defer wg.Done()
			runWorker(ctx, rdb, id, h)
		}(i)
	}
	log.Info().Msgf("worker pool started with %d workers", numWorkers)
	return &wg
}

func runWorker(ctx context.Context, rdb *redis.Client, id int, h Handlers) {
	queues := []string{QueueEmail, QueueInvoice}
	for {
		select {
		case <-ctx.Done():
			log.Info().Msgf("worker %d shutting down", id)
			return
		default:
			// Blocking pop, waits up to 5s then loops to check ctx
			result, err := rdb.BRPop(ctx, 5*time.Second, queues...).Result()
			if err != nil {
				continue // timeout or context cancelled
			}
			if len(result) < 2 {
				continue
			}
			processJob(ctx, result[0], result[1], h)
		}
	}
}

func processJob(ctx context.Context, queue, raw string, h Handlers) {
	var job Job
	if err := json.Unmarshal([]byte(raw), &job); err != nil {
		log.Error().Str("queue", queue).Err(err).Msg("failed to unmarshal job")
		h.Metrics.JobDone("unknown", "malformed")
		return
	}

	var handler JobHandler
	switch job.Type {
	case JobEmail:
		handler = h.Email
	case JobInvoice:
		handler = h.Invoice
	}
	if handler == nil {
		log.Warn().Str("type", job.Type).Str("queue", queue).Msg("no handler for job type")
		h.Metrics.JobDone(job.Type, "unhandled")
		return
	}

	if err := handler.Process(ctx, job.Payload); err != nil {
		h.Metrics.JobDone(job.Type, "failed")
		return
	}
	h.Metrics.JobDone(job.Type, "ok")
}
