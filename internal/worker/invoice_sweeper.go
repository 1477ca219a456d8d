package worker

// invoice_sweeper.go
// Background goroutine that looks for recent bills whose invoice file is
// missing (render failed and the regeneration job was lost, or the process
// died between commit and render) and queues them for the invoice worker.

import (
	"context"
	"time"

	"airportpos/internal/model"
	"airportpos/internal/repository"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
)

const (
	sweepTickInterval = 60 * time.Second
	sweepLookback     = time.Hour
	sweepBatchSize    = 200
)

// InvoiceStore reports whether a bill's invoice is on disk.
type InvoiceStore interface {
	Exists(bill *model.Bill) bool
}

// InvoiceEnqueuer is satisfied by *Dispatcher.
type InvoiceEnqueuer interface {
	EnqueueInvoice(ctx context.Context, billID uuid.UUID) error
}

// SweeperConfig holds all dependencies for the sweeper goroutine.
type SweeperConfig struct {
	Bills    repository.BillRepository
	Store    InvoiceStore
	Queue    InvoiceEnqueuer
	Interval time.Duration // default 60s
	Lookback time.Duration // default 1h
	// MinAge skips bills so fresh that the inline render may still be running.
	MinAge time.Duration
	Now    func() time.Time
}

// StartInvoiceSweeper ticks until ctx is cancelled.
func StartInvoiceSweeper(ctx context.Context, cfg SweeperConfig) {
	if cfg.Interval <= 0 {
		cfg.Interval = sweepTickInterval
	}
	go func() {
		ticker := time.NewTicker(cfg.Interval)
		defer ticker.Stop()

		log.Info().Dur("interval", cfg.Interval).Msg("invoice_sweeper: started")
		for {
			select {
			case <-ctx.Done():
				log.Info().Msg("invoice_sweeper: shutting down")
				return
			case <-ticker.C:
				SweepMissingInvoices(ctx, cfg)
			}
		}
	}()
}

// SweepMissingInvoices runs one pass and returns how many bills were queued.
func SweepMissingInvoices(ctx context.Context, cfg SweeperConfig) int {
	if cfg.Lookback <= 0 {
		cfg.Lookback = sweepLookback
	}
	if cfg.MinAge <= 0 {
		cfg.MinAge = 30 * time.Second
	}
	now := time.Now
	if cfg.Now != nil {
		now = cfg.Now
	}
	cutoff := now().Add(-cfg.MinAge)
	since := now().Add(-cfg.Lookback)

	// Walk the whole window newest first, one page at a time.
	queued := 0
	var after *repository.BillCursor
	for {
		bills, err := cfg.Bills.ListCreatedBetween(ctx, since, cutoff, after, sweepBatchSize)
		if err != nil {
			log.Error().Err(err).Msg("invoice_sweeper: failed to list recent bills")
			return queued
		}
		for i := range bills {
			b := &bills[i]
			if cfg.Store.Exists(b) {
				continue
			}
			if err := cfg.Queue.EnqueueInvoice(ctx, b.ID); err != nil {
				log.Error().Err(err).Str("bill_id", b.ID.String()).Msg("invoice_sweeper: enqueue failed")
				return queued
			}
			queued++
		}
		if len(bills) < sweepBatchSize {
			break
		}
		last := bills[len(bills)-1]
		after = &repository.BillCursor{CreatedAt: last.CreatedAt, ID: last.ID}
	}
	if queued > 0 {
		log.Info().Int("count", queued).Msg("invoice_sweeper: queued missing invoices")
	}
	return queued
}
