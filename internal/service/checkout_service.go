package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"airportpos/internal/infra"
	"airportpos/internal/model"
	"airportpos/internal/realtime"
	"airportpos/internal/repository"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"gorm.io/gorm"
)

// Notifier hands a transactional email to the delivery pipeline.
type Notifier interface {
	Notify(ctx context.Context, to, subject, body string) error
}

// InvoiceRenderer writes the invoice PDF for a persisted bill.
type InvoiceRenderer interface {
	Render(bill *model.Bill) (string, error)
}

// InvoiceQueue schedules an invoice to be rendered again in the background.
type InvoiceQueue interface {
	EnqueueInvoice(ctx context.Context, billID uuid.UUID) error
}

// CartLine is one requested product and quantity.
type CartLine struct {
	ProductID uuid.UUID
	Quantity  int
}

// CheckoutInput is everything a checkout needs, validated before any mutation.
// ShopID is the cashier's shop; uuid.Nil skips the ownership check.
type CheckoutInput struct {
	Items         []CartLine
	CustomerName  string
	CustomerPhone string
	PaymentMethod string
	CashierID     uuid.UUID
	ShopID        uuid.UUID
}

type CheckoutResult struct {
	BillID       uuid.UUID
	ShopID       uuid.UUID
	Total        decimal.Decimal
	CreatedAt    time.Time
	PDFPath      string
	InvoiceReady bool
}

type CheckoutService interface {
	Checkout(ctx context.Context, in CheckoutInput) (*CheckoutResult, error)
}

// CheckoutDeps groups the collaborators of the checkout orchestrator.
// Notifier, Publisher, Renderer, Invoices and Metrics are optional.
type CheckoutDeps struct {
	Tx        repository.Transactor
	Ledger    *StockLedger
	Bills     repository.BillRepository
	Shops     repository.ShopRepository
	Cashiers  repository.CashierRepository
	Notifier  Notifier
	Publisher realtime.Publisher
	Renderer  InvoiceRenderer
	Invoices  InvoiceQueue
	Metrics   *infra.CheckoutMetrics
	Now       func() time.Time
}

type checkoutService struct {
	CheckoutDeps
}

func NewCheckoutService(deps CheckoutDeps) CheckoutService {
	if deps.Now == nil {
		deps.Now = time.Now
	}
	return &checkoutService{CheckoutDeps: deps}
}

var tracer = otel.Tracer(infra.TracerName)

// ── Checkout ──────────────────────────────────────────────────────────────────
// One database transaction covers every decrement and the bill insert:
//   1. Validate the input (empty cart, quantities, payment method)
//   2. BEGIN TX: conditional decrement per line, snapshot price and name
//   3. Insert bill + items, COMMIT
//   4. Post-commit, each step isolated: low-stock emails → realtime event → invoice

func (s *checkoutService) Checkout(ctx context.Context, in CheckoutInput) (*CheckoutResult, error) {
	start := s.Now()
	ctx, span := tracer.Start(ctx, "checkout")
	defer span.End()
	span.SetAttributes(
		attribute.String("cashier.id", in.CashierID.String()),
		attribute.Int("cart.lines", len(in.Items)),
	)

	method, err := validateCheckout(in)
	if err != nil {
		s.finish(span, "invalid", start, err)
		return nil, err
	}

	bill := &model.Bill{
		ID:            uuid.New(),
		CustomerName:  strings.TrimSpace(in.CustomerName),
		CustomerPhone: strings.TrimSpace(in.CustomerPhone),
		PaymentMethod: method,
		CashierID:     in.CashierID,
		// Millisecond precision matches what the invoice file name encodes,
		// so the stored value always re-derives the same path.
		CreatedAt: start.UTC().Truncate(time.Millisecond),
	}
	span.SetAttributes(attribute.String("bill.id", bill.ID.String()))

	var reservations []Reservation
	txErr := s.Tx.Transaction(ctx, func(tx *gorm.DB) error {
		rctx, rspan := tracer.Start(ctx, "checkout.reserve")
		var err error
		reservations, err = s.reserveAll(rctx, tx, in, bill)
		rspan.End()
		if err != nil {
			return err
		}

		pctx, pspan := tracer.Start(ctx, "checkout.persist")
		defer pspan.End()
		if err := s.Bills.CreateTx(pctx, tx, bill); err != nil {
			return fmt.Errorf("%w: insert bill: %v", ErrPersistence, err)
		}
		return nil
	})
	if txErr != nil {
		outcome := "error"
		switch {
		case IsInsufficientStock(txErr):
			outcome = "insufficient_stock"
		case errors.Is(txErr, ErrForeignProduct), errors.Is(txErr, ErrInvalidQuantity):
			outcome = "invalid"
		default:
			// Everything was rolled back; no stock was consumed.
			log.Error().Err(txErr).
				Str("bill_id", bill.ID.String()).
				Str("cashier_id", in.CashierID.String()).
				Msg("checkout: persistence failure, transaction rolled back")
			if !errors.Is(txErr, ErrPersistence) {
				txErr = fmt.Errorf("%w: %v", ErrPersistence, txErr)
			}
		}
		s.finish(span, outcome, start, txErr)
		return nil, txErr
	}

	log.Info().
		Str("bill_id", bill.ID.String()).
		Str("shop_id", bill.ShopID.String()).
		Str("total", bill.Total.StringFixed(2)).
		Int("lines", len(bill.Items)).
		Msg("checkout: bill committed")
	s.Metrics.AddRevenue(method, bill.Total.InexactFloat64())

	// ── Post-commit side effects. The sale is complete; nothing below fails it,
	// and a caller that hangs up now does not cancel them.
	post := context.WithoutCancel(ctx)
	shop := s.loadShop(post, bill.ShopID)
	s.notifyLowStock(post, shop, reservations)
	s.publish(post, shop, bill)
	ready := s.renderInvoice(post, shop, bill)

	s.finish(span, "success", start, nil)
	return &CheckoutResult{
		BillID:       bill.ID,
		ShopID:       bill.ShopID,
		Total:        bill.Total,
		CreatedAt:    bill.CreatedAt,
		PDFPath:      infra.InvoiceURL(bill.ID, bill.CreatedAt),
		InvoiceReady: ready,
	}, nil
}

// reserveAll decrements every cart line in order and fills bill.Items,
// bill.ShopID and bill.Total. The first failure aborts the whole cart.
func (s *checkoutService) reserveAll(ctx context.Context, tx *gorm.DB, in CheckoutInput, bill *model.Bill) ([]Reservation, error) {
	reservations := make([]Reservation, 0, len(in.Items))
	bill.Items = make([]model.BillItem, 0, len(in.Items))
	for i, line := range in.Items {
		r, err := s.Ledger.ReserveAndDecrement(ctx, tx, line.ProductID, line.Quantity, bill.ID)
		if err != nil {
			return nil, err
		}
		if in.ShopID != uuid.Nil && r.ShopID != in.ShopID {
			return nil, ErrForeignProduct
		}
		if i > 0 && r.ShopID != reservations[0].ShopID {
			return nil, ErrForeignProduct
		}
		reservations = append(reservations, *r)
		bill.Items = append(bill.Items, model.BillItem{
			BillID:      bill.ID,
			Position:    i,
			ProductID:   r.ProductID,
			ProductName: r.ProductName,
			Quantity:    r.Quantity,
			UnitPrice:   r.UnitPrice,
		})
	}
	bill.ShopID = reservations[0].ShopID
	bill.Total = model.ComputeTotal(bill.Items)
	return reservations, nil
}

func validateCheckout(in CheckoutInput) (string, error) {
	if len(in.Items) == 0 {
		return "", ErrEmptyCart
	}
	for _, line := range in.Items {
		if line.Quantity <= 0 {
			return "", ErrInvalidQuantity
		}
	}
	method := strings.ToLower(strings.TrimSpace(in.PaymentMethod))
	switch method {
	case "":
		method = model.PaymentCash
	case model.PaymentCash, model.PaymentUPI:
	default:
		return "", ErrInvalidPaymentMethod
	}
	return method, nil
}

func (s *checkoutService) finish(span trace.Span, outcome string, start time.Time, err error) {
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, outcome)
	} else {
		span.SetStatus(codes.Ok, "")
	}
	s.Metrics.ObserveCheckout(outcome, s.Now().Sub(start).Seconds())
}

func (s *checkoutService) loadShop(ctx context.Context, shopID uuid.UUID) *model.Shop {
	if s.Shops == nil {
		return nil
	}
	shop, err := s.Shops.FindByID(ctx, shopID)
	if err != nil {
		log.Warn().Err(err).Str("shop_id", shopID.String()).Msg("checkout: shop lookup failed after commit")
		return nil
	}
	return shop
}

// notifyLowStock sends one alert per product that ended at or below its
// threshold. A product repeated in the cart is reported once, with its final quantity.
func (s *checkoutService) notifyLowStock(ctx context.Context, shop *model.Shop, reservations []Reservation) {
	if s.Notifier == nil {
		return
	}
	latest := make(map[uuid.UUID]Reservation, len(reservations))
	var order []uuid.UUID
	for _, r := range reservations {
		if _, seen := latest[r.ProductID]; !seen {
			order = append(order, r.ProductID)
		}
		latest[r.ProductID] = r
	}

	ctx, span := tracer.Start(ctx, "checkout.notify")
	defer span.End()
	for _, id := range order {
		r := latest[id]
		if !r.LowStock() {
			continue
		}
		if shop == nil || shop.Vendor == nil || shop.Vendor.Email == "" {
			log.Warn().Str("product_id", id.String()).Msg("checkout: low stock but no vendor email to notify")
			s.Metrics.SideEffectFailed("notify")
			continue
		}
		subject, body := lowStockEmail(shop, r)
		if err := s.Notifier.Notify(ctx, shop.Vendor.Email, subject, body); err != nil {
			log.Error().Err(err).Str("product_id", id.String()).Msg("checkout: low-stock notification failed")
			s.Metrics.SideEffectFailed("notify")
			continue
		}
		s.Metrics.LowStockAlert()
	}
}

func lowStockEmail(shop *model.Shop, r Reservation) (string, string) {
	greeting := "Vendor"
	if shop.Vendor != nil && shop.Vendor.CompanyName != "" {
		greeting = shop.Vendor.CompanyName
	}
	subject := "Low Stock Alert: " + r.ProductName
	body := fmt.Sprintf(`Dear %s,

The product "%s" in your shop "%s" is running low.

Current Stock: %d
Threshold: %d

Please restock soon.

Regards,
Airport Inventory System`, greeting, r.ProductName, shop.Name, r.Remaining, r.Threshold)
	return subject, body
}

func (s *checkoutService) publish(ctx context.Context, shop *model.Shop, bill *model.Bill) {
	if s.Publisher == nil {
		return
	}
	ctx, span := tracer.Start(ctx, "checkout.publish")
	defer span.End()

	ev := realtime.BillEvent{
		BillID:       bill.ID.String(),
		ShopID:       bill.ShopID.String(),
		Total:        bill.Total,
		CreatedAt:    bill.CreatedAt,
		CustomerName: bill.CustomerName,
	}
	if shop != nil {
		ev.ShopName = shop.Name
	}
	if ev.CustomerName == "" {
		ev.CustomerName = "N/A"
	}
	if err := s.Publisher.Publish(ctx, ev); err != nil {
		log.Warn().Err(err).Str("bill_id", ev.BillID).Msg("checkout: realtime publish failed")
		s.Metrics.SideEffectFailed("publish")
	}
}

// renderInvoice reports whether the PDF is already on disk. On failure the
// bill is handed to the invoice queue so a worker can try again.
func (s *checkoutService) renderInvoice(ctx context.Context, shop *model.Shop, bill *model.Bill) bool {
	if s.Renderer == nil {
		return false
	}
	ctx, span := tracer.Start(ctx, "checkout.invoice")
	defer span.End()

	bill.Shop = shop
	if s.Cashiers != nil {
		if c, err := s.Cashiers.FindByID(ctx, bill.CashierID); err == nil {
			bill.Cashier = c
		}
	}

	path, err := s.Renderer.Render(bill)
	if err == nil {
		log.Debug().Str("bill_id", bill.ID.String()).Str("path", path).Msg("checkout: invoice written")
		return true
	}

	span.RecordError(err)
	log.Error().Err(err).Str("bill_id", bill.ID.String()).Msg("checkout: invoice render failed")
	s.Metrics.SideEffectFailed("invoice")
	if s.Invoices != nil {
		if qerr := s.Invoices.EnqueueInvoice(ctx, bill.ID); qerr != nil {
			log.Error().Err(qerr).Str("bill_id", bill.ID.String()).Msg("checkout: could not queue invoice regeneration")
		}
	}
	return false
}
