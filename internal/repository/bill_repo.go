package repository

import (
	"context"
	"time"

	"airportpos/internal/model"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// BillQuery narrows a bill listing. Zero values mean "no constraint",
// except ShopIDs: an empty (non-nil) slice matches nothing.
type BillQuery struct {
	ShopIDs      []uuid.UUID
	CashierID    *uuid.UUID
	From         *time.Time
	To           *time.Time
	CustomerName string
	MinTotal     *decimal.Decimal
	MaxTotal     *decimal.Decimal
	Limit        int
}

// BillRepository persists bills. There is no update or delete: bills are immutable.
type BillRepository interface {
	CreateTx(ctx context.Context, tx *gorm.DB, b *model.Bill) error
	FindByID(ctx context.Context, id uuid.UUID) (*model.Bill, error)
	List(ctx context.Context, q BillQuery) ([]model.Bill, error)
	// ListCreatedBetween pages newest first through bills created in [since, until).
	// after is the last row of the previous page; nil starts at until.
	ListCreatedBetween(ctx context.Context, since, until time.Time, after *BillCursor, limit int) ([]model.Bill, error)
}

// BillCursor is the (created_at, id) key of a row in a newest-first walk.
type BillCursor struct {
	CreatedAt time.Time
	ID        uuid.UUID
}

type billRepo struct{ db *gorm.DB }

func NewBillRepository(db *gorm.DB) BillRepository { return &billRepo{db: db} }

// CreateTx inserts the bill and its items (GORM saves the has-many association).
func (r *billRepo) CreateTx(ctx context.Context, tx *gorm.DB, b *model.Bill) error {
	return tx.WithContext(ctx).Omit("Shop", "Cashier").Create(b).Error
}

func (r *billRepo) FindByID(ctx context.Context, id uuid.UUID) (*model.Bill, error) {
	var b model.Bill
	err := r.db.WithContext(ctx).
		Preload("Items", func(db *gorm.DB) *gorm.DB { return db.Order("position ASC") }).
		Preload("Shop").Preload("Cashier").
		First(&b, "id = ?", id).Error
	return &b, err
}

func (r *billRepo) List(ctx context.Context, q BillQuery) ([]model.Bill, error) {
	var bills []model.Bill
	if q.ShopIDs != nil && len(q.ShopIDs) == 0 {
		return bills, nil
	}

	db := r.db.WithContext(ctx).Model(&model.Bill{})
	if q.ShopIDs != nil {
		db = db.Where("shop_id IN ?", q.ShopIDs)
	}
	if q.CashierID != nil {
		db = db.Where("cashier_id = ?", *q.CashierID)
	}
	if q.From != nil {
		db = db.Where("created_at >= ?", *q.From)
	}
	if q.To != nil {
		db = db.Where("created_at <= ?", *q.To)
	}
	if q.CustomerName != "" {
		db = db.Where("customer_name ILIKE ?", "%"+q.CustomerName+"%")
	}
	if q.MinTotal != nil {
		db = db.Where("total >= ?", *q.MinTotal)
	}
	if q.MaxTotal != nil {
		db = db.Where("total <= ?", *q.MaxTotal)
	}
	if q.Limit > 0 {
		db = db.Limit(q.Limit)
	}

	err := db.Preload("Items", func(db *gorm.DB) *gorm.DB { return db.Order("position ASC") }).
		Preload("Shop").Preload("Cashier").
		Order("created_at DESC").
		Find(&bills).Error
	return bills, err
}

func (r *billRepo) ListCreatedBetween(ctx context.Context, since, until time.Time, after *BillCursor, limit int) ([]model.Bill, error) {
	q := r.db.WithContext(ctx).Where("created_at >= ? AND created_at < ?", since, until)
	if after != nil {
		q = q.Where("(created_at, id) < (?, ?)", after.CreatedAt, after.ID)
	}
	var bills []model.Bill
	err := q.Order("created_at DESC, id DESC").Limit(limit).Find(&bills).Error
	return bills, err
}
