package service_test

import (
	"bytes"
	"context"
	"errors"
	"sort"
	"sync"
	"time"

	"airportpos/internal/model"
	"airportpos/internal/realtime"
	"airportpos/internal/repository"
	"airportpos/internal/service"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// ── In-memory store ───────────────────────────────────────────────────────────

// memStore backs the product, movement and bill stubs. Transaction holds the
// store lock for the whole callback and restores a snapshot when it fails,
// which is how the database behaves for a single connection.
type memStore struct {
	mu        sync.Mutex
	products  map[uuid.UUID]*model.Product
	bills     map[uuid.UUID]*model.Bill
	movements []model.StockMovement
	billErr   error // returned by the next bill insert
	onCommit  func()
}

func newMemStore() *memStore {
	return &memStore{
		products: make(map[uuid.UUID]*model.Product),
		bills:    make(map[uuid.UUID]*model.Bill),
	}
}

func (s *memStore) Transaction(_ context.Context, fn func(tx *gorm.DB) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	saved := make(map[uuid.UUID]model.Product, len(s.products))
	for id, p := range s.products {
		saved[id] = *p
	}
	savedBills := make(map[uuid.UUID]*model.Bill, len(s.bills))
	for id, b := range s.bills {
		savedBills[id] = b
	}
	savedMovements := len(s.movements)

	if err := fn(nil); err != nil {
		for id, p := range saved {
			p := p
			s.products[id] = &p
		}
		s.bills = savedBills
		s.movements = s.movements[:savedMovements]
		return err
	}
	if s.onCommit != nil {
		s.onCommit()
	}
	return nil
}

func (s *memStore) addProduct(name string, price string, qty, threshold int, shopID uuid.UUID) *model.Product {
	p := &model.Product{
		ID:                uuid.New(),
		Name:              name,
		Price:             decimal.RequireFromString(price),
		Quantity:          qty,
		LowStockThreshold: threshold,
		ShopID:            shopID,
	}
	s.products[p.ID] = p
	return p
}

func (s *memStore) quantity(id uuid.UUID) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.products[id].Quantity
}

func (s *memStore) billCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.bills)
}

var _ repository.Transactor = (*memStore)(nil)

// stubProductRepo implements the conditional decrement over memStore.
type stubProductRepo struct{ s *memStore }

func (r stubProductRepo) Create(_ context.Context, p *model.Product) error {
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	r.s.products[p.ID] = p
	return nil
}

func (r stubProductRepo) FindByID(_ context.Context, id uuid.UUID) (*model.Product, error) {
	p, ok := r.s.products[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	cp := *p
	return &cp, nil
}

func (r stubProductRepo) ListByShop(_ context.Context, shopID uuid.UUID) ([]model.Product, error) {
	var out []model.Product
	for _, p := range r.s.products {
		if p.ShopID == shopID {
			out = append(out, *p)
		}
	}
	return out, nil
}

func (r stubProductRepo) DecrementStockTx(_ context.Context, _ *gorm.DB, id uuid.UUID, qty int) (*model.Product, error) {
	p, ok := r.s.products[id]
	if !ok || p.Quantity < qty {
		return nil, repository.ErrStockConditionFailed
	}
	p.Quantity -= qty
	cp := *p
	return &cp, nil
}

func (r stubProductRepo) FindByIDTx(ctx context.Context, _ *gorm.DB, id uuid.UUID) (*model.Product, error) {
	return r.FindByID(ctx, id)
}

var _ repository.ProductRepository = stubProductRepo{}

type stubMovementRepo struct{ s *memStore }

func (r stubMovementRepo) CreateTx(_ context.Context, _ *gorm.DB, m *model.StockMovement) error {
	r.s.movements = append(r.s.movements, *m)
	return nil
}

func (r stubMovementRepo) ListByBill(_ context.Context, billID uuid.UUID) ([]model.StockMovement, error) {
	var out []model.StockMovement
	for _, m := range r.s.movements {
		if m.BillID != nil && *m.BillID == billID {
			out = append(out, m)
		}
	}
	return out, nil
}

var _ repository.StockMovementRepository = stubMovementRepo{}

// stubBillRepo stores bills in memStore and records the last list query.
type stubBillRepo struct {
	s         *memStore
	lastQuery *repository.BillQuery
	listed    []model.Bill
}

func (r *stubBillRepo) CreateTx(_ context.Context, _ *gorm.DB, b *model.Bill) error {
	if r.s.billErr != nil {
		err := r.s.billErr
		r.s.billErr = nil
		return err
	}
	cp := *b
	cp.Items = append([]model.BillItem(nil), b.Items...)
	r.s.bills[b.ID] = &cp
	return nil
}

func (r *stubBillRepo) FindByID(_ context.Context, id uuid.UUID) (*model.Bill, error) {
	b, ok := r.s.bills[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return b, nil
}

func (r *stubBillRepo) List(_ context.Context, q repository.BillQuery) ([]model.Bill, error) {
	r.lastQuery = &q
	return r.listed, nil
}

func (r *stubBillRepo) ListCreatedBetween(_ context.Context, since, until time.Time, after *repository.BillCursor, limit int) ([]model.Bill, error) {
	var out []model.Bill
	for _, b := range r.s.bills {
		if b.CreatedAt.Before(since) || !b.CreatedAt.Before(until) {
			continue
		}
		if after != nil && !billBefore(b, after) {
			continue
		}
		out = append(out, *b)
	}
	sort.Slice(out, func(i, j int) bool {
		return billBefore(&out[j], &repository.BillCursor{CreatedAt: out[i].CreatedAt, ID: out[i].ID})
	})
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

// billBefore reports whether b sorts after the cursor in a newest-first walk.
func billBefore(b *model.Bill, c *repository.BillCursor) bool {
	if !b.CreatedAt.Equal(c.CreatedAt) {
		return b.CreatedAt.Before(c.CreatedAt)
	}
	return bytes.Compare(b.ID[:], c.ID[:]) < 0
}

var _ repository.BillRepository = (*stubBillRepo)(nil)

// ── Shops and cashiers ────────────────────────────────────────────────────────

type stubShopRepo struct {
	shops map[uuid.UUID]*model.Shop
}

func newStubShopRepo(shops ...*model.Shop) *stubShopRepo {
	r := &stubShopRepo{shops: make(map[uuid.UUID]*model.Shop)}
	for _, s := range shops {
		r.shops[s.ID] = s
	}
	return r
}

func (r *stubShopRepo) Create(_ context.Context, s *model.Shop) error {
	r.shops[s.ID] = s
	return nil
}

func (r *stubShopRepo) FindByID(_ context.Context, id uuid.UUID) (*model.Shop, error) {
	s, ok := r.shops[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return s, nil
}

func (r *stubShopRepo) ListIDsByVendor(_ context.Context, vendorID uuid.UUID) ([]uuid.UUID, error) {
	ids := []uuid.UUID{}
	for id, s := range r.shops {
		if s.VendorID == vendorID {
			ids = append(ids, id)
		}
	}
	return ids, nil
}

var _ repository.ShopRepository = (*stubShopRepo)(nil)

type stubCashierRepo struct {
	cashiers map[uuid.UUID]*model.Cashier
}

func (r *stubCashierRepo) Create(_ context.Context, c *model.Cashier) error {
	r.cashiers[c.ID] = c
	return nil
}

func (r *stubCashierRepo) FindByID(_ context.Context, id uuid.UUID) (*model.Cashier, error) {
	c, ok := r.cashiers[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return c, nil
}

func (r *stubCashierRepo) FindByEmail(_ context.Context, email string) (*model.Cashier, error) {
	for _, c := range r.cashiers {
		if c.Email == email {
			return c, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

var _ repository.CashierRepository = (*stubCashierRepo)(nil)

// ── Side-effect recorders ─────────────────────────────────────────────────────

type sentEmail struct{ to, subject, body string }

type recordingNotifier struct {
	mu   sync.Mutex
	sent []sentEmail
	err  error
}

func (n *recordingNotifier) Notify(ctx context.Context, to, subject, body string) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	if err := ctx.Err(); err != nil {
		return err
	}
	n.sent = append(n.sent, sentEmail{to, subject, body})
	return n.err
}

var _ service.Notifier = (*recordingNotifier)(nil)

type recordingPublisher struct {
	mu     sync.Mutex
	events []realtime.BillEvent
	err    error
}

func (p *recordingPublisher) Publish(ctx context.Context, ev realtime.BillEvent) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if err := ctx.Err(); err != nil {
		return err
	}
	p.events = append(p.events, ev)
	return p.err
}

type stubRenderer struct {
	mu       sync.Mutex
	rendered []*model.Bill
	err      error
}

func (r *stubRenderer) Render(b *model.Bill) (string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.rendered = append(r.rendered, b)
	if r.err != nil {
		return "", r.err
	}
	return "/tmp/" + b.ID.String() + ".pdf", nil
}

type recordingInvoiceQueue struct {
	mu     sync.Mutex
	queued []uuid.UUID
	err    error
}

func (q *recordingInvoiceQueue) EnqueueInvoice(ctx context.Context, id uuid.UUID) error {
	q.mu.Lock()
	defer q.mu.Unlock()
	if err := ctx.Err(); err != nil {
		return err
	}
	q.queued = append(q.queued, id)
	return q.err
}

var errBoom = errors.New("boom")
