package repository

import (
	"context"
	"errors"

	"airportpos/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// ErrStockConditionFailed is returned by DecrementStockTx when the conditional
// update matched no row: the product is missing or holds less than requested.
var ErrStockConditionFailed = errors.New("stock condition not met")

// ProductRepository defines the data access contract for products.
// Services depend on this interface, not on the concrete GORM implementation,
// enabling clean unit testing via stubs.
type ProductRepository interface {
	Create(ctx context.Context, p *model.Product) error
	FindByID(ctx context.Context, id uuid.UUID) (*model.Product, error)
	ListByShop(ctx context.Context, shopID uuid.UUID) ([]model.Product, error)

	// DecrementStockTx subtracts qty in a single conditional UPDATE and returns
	// the row as it is after the decrement. Callers must pass the tx instance.
	DecrementStockTx(ctx context.Context, tx *gorm.DB, id uuid.UUID, qty int) (*model.Product, error)
	// FindByIDTx reads a product inside a transaction.
	FindByIDTx(ctx context.Context, tx *gorm.DB, id uuid.UUID) (*model.Product, error)
}

type productRepo struct{ db *gorm.DB }

func NewProductRepository(db *gorm.DB) ProductRepository { return &productRepo{db: db} }

func (r *productRepo) Create(ctx context.Context, p *model.Product) error {
	if p.LowStockThreshold == 0 {
		p.LowStockThreshold = model.DefaultLowStockThreshold
	}
	return r.db.WithContext(ctx).Create(p).Error
}

func (r *productRepo) FindByID(ctx context.Context, id uuid.UUID) (*model.Product, error) {
	var p model.Product
	err := r.db.WithContext(ctx).First(&p, "id = ?", id).Error
	return &p, err
}

func (r *productRepo) ListByShop(ctx context.Context, shopID uuid.UUID) ([]model.Product, error) {
	var products []model.Product
	err := r.db.WithContext(ctx).Where("shop_id = ?", shopID).Order("name ASC").Find(&products).Error
	return products, err
}

func (r *productRepo) FindByIDTx(ctx context.Context, tx *gorm.DB, id uuid.UUID) (*model.Product, error) {
	var p model.Product
	err := tx.WithContext(ctx).First(&p, "id = ?", id).Error
	return &p, err
}

// DecrementStockTx issues
//
//	UPDATE products SET quantity = quantity - $qty WHERE id = $id AND quantity >= $qty RETURNING *
//
// Postgres re-evaluates the WHERE clause after waiting on a concurrent writer's
// row lock, so two checkouts racing for the last units cannot both succeed.
func (r *productRepo) DecrementStockTx(ctx context.Context, tx *gorm.DB, id uuid.UUID, qty int) (*model.Product, error) {
	var p model.Product
	res := tx.WithContext(ctx).Model(&p).
		Clauses(clause.Returning{}).
		Where("id = ? AND quantity >= ?", id, qty).
		Update("quantity", gorm.Expr("quantity - ?", qty))
	if res.Error != nil {
		return nil, res.Error
	}
	if res.RowsAffected == 0 {
		return nil, ErrStockConditionFailed
	}
	return &p, nil
}
