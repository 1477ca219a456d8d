package worker

// invoice_worker.go
// Processes invoice jobs from QueueInvoice: renders the PDF of an existing
// bill again after the inline render failed or on explicit request.
// Rendering is idempotent: the file name depends only on the bill.

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"airportpos/internal/model"
	"airportpos/internal/repository"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
)

// InvoiceJobPayload is the job envelope sent to QueueInvoice.
type InvoiceJobPayload struct {
	BillID string `json:"bill_id"`
}

// Renderer writes an invoice PDF. *infra.InvoiceRenderer implements it.
type Renderer interface {
	Render(bill *model.Bill) (string, error)
}

type InvoiceWorker struct {
	bills    repository.BillRepository
	renderer Renderer
	dlq      DeadLetterSink
	attempts int
	backoff  time.Duration
}

func NewInvoiceWorker(bills repository.BillRepository, renderer Renderer, dlq DeadLetterSink) *InvoiceWorker {
	return &InvoiceWorker{bills: bills, renderer: renderer, dlq: dlq, attempts: 3, backoff: time.Second}
}

// Process handles a single invoice job:
//  1. Parse InvoiceJobPayload
//  2. Load the bill with items, shop and cashier
//  3. Render with backoff (3 attempts: immediate, 1s, 2s)
//  4. Park the job in the DLQ when every attempt failed
func (w *InvoiceWorker) Process(ctx context.Context, raw json.RawMessage) error {
	var payload InvoiceJobPayload
	if err := json.Unmarshal(raw, &payload); err != nil {
		log.Error().Err(err).Msg("invoice_worker: invalid payload")
		sendToDLQ(ctx, w.dlq, QueueInvoice, JobInvoice, raw, "invalid payload: "+err.Error(), 0)
		return err
	}
	billID, err := uuid.Parse(payload.BillID)
	if err != nil {
		log.Error().Str("bill_id", payload.BillID).Msg("invoice_worker: invalid bill_id")
		sendToDLQ(ctx, w.dlq, QueueInvoice, JobInvoice, raw, "invalid bill_id", 0)
		return err
	}

	bill, err := w.bills.FindByID(ctx, billID)
	if err != nil {
		log.Error().Err(err).Str("bill_id", payload.BillID).Msg("invoice_worker: bill not found")
		sendToDLQ(ctx, w.dlq, QueueInvoice, JobInvoice, raw, "bill not found: "+err.Error(), 0)
		return err
	}

	var path string
	renderErr := withRetry(ctx, w.attempts, w.backoff, func(attempt int) error {
		p, err := w.renderer.Render(bill)
		if err != nil {
			log.Warn().Err(err).Int("attempt", attempt+1).Str("bill_id", payload.BillID).
				Msg("invoice_worker: render attempt failed")
			return err
		}
		path = p
		return nil
	})
	if renderErr != nil {
		log.Error().Err(renderErr).Str("bill_id", payload.BillID).Msg("invoice_worker: render failed after all retries")
		sendToDLQ(ctx, w.dlq, QueueInvoice, JobInvoice, raw,
			fmt.Sprintf("render failed after %d attempts: %v", w.attempts, renderErr), w.attempts)
		return renderErr
	}
	log.Info().Str("bill_id", payload.BillID).Str("pdf", path).Msg("invoice_worker: invoice generated")
	return nil
}

// withRetry calls fn up to maxAttempts times with exponential backoff:
// attempt 1 immediate, then base, 2×base, …
// Returns nil if any attempt succeeds; last error otherwise.
func withRetry(ctx context.Context, maxAttempts int, base time.Duration, fn func(attempt int) error) error {
	var lastErr error
	for i := 0; i < maxAttempts; i++ {
		if i > 0 {
			wait := time.Duration(1<<uint(i-1)) * base
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
