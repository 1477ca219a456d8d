package service

import (
	"context"
	"errors"
	"fmt"

	"airportpos/internal/model"
	"airportpos/internal/repository"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Reservation is the outcome of one successful decrement. UnitPrice and
// ProductName are the snapshot copied onto the bill line.
type Reservation struct {
	ProductID   uuid.UUID
	ProductName string
	ShopID      uuid.UUID
	UnitPrice   decimal.Decimal
	Quantity    int
	Remaining   int
	Threshold   int
}

// LowStock is true when the remaining quantity is at or below the product's threshold.
func (r Reservation) LowStock() bool { return r.Remaining <= r.Threshold }

// StockLedger is the only writer of product quantities during checkout.
type StockLedger struct {
	products  repository.ProductRepository
	movements repository.StockMovementRepository
}

func NewStockLedger(products repository.ProductRepository, movements repository.StockMovementRepository) *StockLedger {
	return &StockLedger{products: products, movements: movements}
}

// ReserveAndDecrement removes qty units of productID inside tx and records a
// "sale" movement tagged with billID. Quantity never goes below zero.
func (l *StockLedger) ReserveAndDecrement(ctx context.Context, tx *gorm.DB, productID uuid.UUID, qty int, billID uuid.UUID) (*Reservation, error) {
	if qty <= 0 {
		return nil, ErrInvalidQuantity
	}

	p, err := l.products.DecrementStockTx(ctx, tx, productID, qty)
	if errors.Is(err, repository.ErrStockConditionFailed) {
		return nil, l.insufficient(ctx, tx, productID)
	}
	if err != nil {
		return nil, fmt.Errorf("%w: decrement stock: %v", ErrPersistence, err)
	}

	ref := billID
	mov := &model.StockMovement{
		ProductID:      p.ID,
		Kind:           "sale",
		Delta:          -qty,
		QuantityBefore: p.Quantity + qty,
		QuantityAfter:  p.Quantity,
		BillID:         &ref,
	}
	if err := l.movements.CreateTx(ctx, tx, mov); err != nil {
		return nil, fmt.Errorf("%w: record stock movement: %v", ErrPersistence, err)
	}

	return &Reservation{
		ProductID:   p.ID,
		ProductName: p.Name,
		ShopID:      p.ShopID,
		UnitPrice:   p.Price,
		Quantity:    qty,
		Remaining:   p.Quantity,
		Threshold:   p.LowStockThreshold,
	}, nil
}

// insufficient builds the error for a decrement that matched no row.
func (l *StockLedger) insufficient(ctx context.Context, tx *gorm.DB, productID uuid.UUID) error {
	name := "product"
	cur, err := l.products.FindByIDTx(ctx, tx, productID)
	switch {
	case err == nil:
		name = cur.Name
	case !errors.Is(err, gorm.ErrRecordNotFound):
		return fmt.Errorf("%w: load product: %v", ErrPersistence, err)
	}
	return &InsufficientStockError{ProductID: productID, ProductName: name}
}
