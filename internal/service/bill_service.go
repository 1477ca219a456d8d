package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"airportpos/internal/dto"
	"airportpos/internal/infra"
	"airportpos/internal/model"
	"airportpos/internal/repository"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// BillService answers the read side of billing and schedules invoice regeneration.
type BillService interface {
	ListForCashier(ctx context.Context, cashierID uuid.UUID) ([]dto.BillResponse, error)
	// ListForScope returns the bills of every shop the principal can see:
	// a vendor's own shops, or a cashier's single shop.
	ListForScope(ctx context.Context, p Principal, f dto.BillFilter) ([]dto.BillResponse, error)
	ListForShop(ctx context.Context, vendorID, shopID uuid.UUID) ([]dto.BillResponse, error)
	RequestInvoice(ctx context.Context, p Principal, billID uuid.UUID) (*dto.InvoiceJobResponse, error)
}

type billService struct {
	bills    repository.BillRepository
	shops    repository.ShopRepository
	invoices InvoiceQueue
}

func NewBillService(bills repository.BillRepository, shops repository.ShopRepository, invoices InvoiceQueue) BillService {
	return &billService{bills: bills, shops: shops, invoices: invoices}
}

func (s *billService) ListForCashier(ctx context.Context, cashierID uuid.UUID) ([]dto.BillResponse, error) {
	bills, err := s.bills.List(ctx, repository.BillQuery{CashierID: &cashierID})
	if err != nil {
		return nil, err
	}
	return billsToResponse(bills), nil
}

func (s *billService) ListForScope(ctx context.Context, p Principal, f dto.BillFilter) ([]dto.BillResponse, error) {
	q, err := parseBillFilter(f)
	if err != nil {
		return nil, err
	}

	switch p.Role {
	case model.RoleVendor:
		ids, err := s.shops.ListIDsByVendor(ctx, p.ID)
		if err != nil {
			return nil, err
		}
		q.ShopIDs = ids
	case model.RoleCashier:
		if p.ShopID == nil {
			q.ShopIDs = []uuid.UUID{}
		} else {
			q.ShopIDs = []uuid.UUID{*p.ShopID}
		}
	default:
		return nil, ErrShopAccessDenied
	}

	bills, err := s.bills.List(ctx, q)
	if err != nil {
		return nil, err
	}
	return billsToResponse(bills), nil
}

func (s *billService) ListForShop(ctx context.Context, vendorID, shopID uuid.UUID) ([]dto.BillResponse, error) {
	shop, err := s.shops.FindByID(ctx, shopID)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrShopNotFound
	}
	if err != nil {
		return nil, err
	}
	if shop.VendorID != vendorID {
		return nil, ErrShopAccessDenied
	}

	bills, err := s.bills.List(ctx, repository.BillQuery{ShopIDs: []uuid.UUID{shopID}})
	if err != nil {
		return nil, err
	}
	return billsToResponse(bills), nil
}

func (s *billService) RequestInvoice(ctx context.Context, p Principal, billID uuid.UUID) (*dto.InvoiceJobResponse, error) {
	bill, err := s.bills.FindByID(ctx, billID)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrBillNotFound
	}
	if err != nil {
		return nil, err
	}

	switch p.Role {
	case model.RoleCashier:
		if p.ShopID == nil || *p.ShopID != bill.ShopID {
			return nil, ErrShopAccessDenied
		}
	case model.RoleVendor:
		if bill.Shop == nil || bill.Shop.VendorID != p.ID {
			return nil, ErrShopAccessDenied
		}
	case model.RoleAdmin:
	default:
		return nil, ErrShopAccessDenied
	}

	if s.invoices == nil {
		return nil, errors.New("invoice queue unavailable")
	}
	if err := s.invoices.EnqueueInvoice(ctx, bill.ID); err != nil {
		return nil, fmt.Errorf("enqueue invoice: %w", err)
	}
	return &dto.InvoiceJobResponse{
		Msg:     "Invoice regeneration queued",
		BillID:  bill.ID.String(),
		PDFPath: infra.InvoiceURL(bill.ID, bill.CreatedAt),
	}, nil
}

// ── Filters ───────────────────────────────────────────────────────────────────

// parseBillFilter turns query-string values into a repository query.
// Dates accept YYYY-MM-DD or RFC 3339; a bare end date covers that whole day.
func parseBillFilter(f dto.BillFilter) (repository.BillQuery, error) {
	var q repository.BillQuery

	if v := strings.TrimSpace(f.StartDate); v != "" {
		t, _, err := parseFilterDate(v)
		if err != nil {
			return q, fmt.Errorf("%w: startDate %q", ErrInvalidFilter, v)
		}
		q.From = &t
	}
	if v := strings.TrimSpace(f.EndDate); v != "" {
		t, dateOnly, err := parseFilterDate(v)
		if err != nil {
			return q, fmt.Errorf("%w: endDate %q", ErrInvalidFilter, v)
		}
		if dateOnly {
			t = t.Add(24*time.Hour - time.Millisecond)
		}
		q.To = &t
	}
	if q.From != nil && q.To != nil && q.To.Before(*q.From) {
		return q, fmt.Errorf("%w: endDate before startDate", ErrInvalidFilter)
	}

	q.CustomerName = strings.TrimSpace(f.CustomerName)

	if v := strings.TrimSpace(f.MinAmount); v != "" {
		d, err := decimal.NewFromString(v)
		if err != nil {
			return q, fmt.Errorf("%w: minAmount %q", ErrInvalidFilter, v)
		}
		q.MinTotal = &d
	}
	if v := strings.TrimSpace(f.MaxAmount); v != "" {
		d, err := decimal.NewFromString(v)
		if err != nil {
			return q, fmt.Errorf("%w: maxAmount %q", ErrInvalidFilter, v)
		}
		q.MaxTotal = &d
	}
	return q, nil
}

func parseFilterDate(v string) (time.Time, bool, error) {
	if t, err := time.Parse("2006-01-02", v); err == nil {
		return t.UTC(), true, nil
	}
	t, err := time.Parse(time.RFC3339, v)
	return t.UTC(), false, err
}

// ── Mapping ───────────────────────────────────────────────────────────────────

func billsToResponse(bills []model.Bill) []dto.BillResponse {
	out := make([]dto.BillResponse, len(bills))
	for i := range bills {
		out[i] = billToResponse(&bills[i])
	}
	return out
}

func billToResponse(b *model.Bill) dto.BillResponse {
	resp := dto.BillResponse{
		ID:            b.ID.String(),
		Items:         make([]dto.BillItemResponse, len(b.Items)),
		Total:         b.Total,
		CustomerName:  b.CustomerName,
		CustomerPhone: b.CustomerPhone,
		PaymentMethod: b.PaymentMethod,
		ShopID:        b.ShopID.String(),
		CashierID:     b.CashierID.String(),
		CreatedAt:     b.CreatedAt.UTC().Format("2006-01-02T15:04:05.000Z"),
		PDFPath:       infra.InvoiceURL(b.ID, b.CreatedAt),
	}
	for i, it := range b.Items {
		resp.Items[i] = dto.BillItemResponse{
			ProductID:   it.ProductID.String(),
			ProductName: it.ProductName,
			Quantity:    it.Quantity,
			Price:       it.UnitPrice,
			LineTotal:   it.LineTotal(),
		}
	}
	if b.Shop != nil {
		resp.Shop = &dto.BillShopResponse{ID: b.Shop.ID.String(), Name: b.Shop.Name, Location: b.Shop.Location}
	}
	if b.Cashier != nil {
		resp.Cashier = &dto.BillCashierResponse{ID: b.Cashier.ID.String(), Name: b.Cashier.Name, Email: b.Cashier.Email}
	}
	return resp
}
