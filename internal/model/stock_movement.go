package model

import (
	"time"

	"github.com/google/uuid"
)

// StockMovement records every change applied to a product's quantity.
// Checkout writes one "sale" movement per line item inside the bill's transaction.
type StockMovement struct {
	ID             uuid.UUID  `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	ProductID      uuid.UUID  `gorm:"type:uuid;not null;index"`
	Kind           string     `gorm:"type:varchar(20);not null"` // "sale" | "restock"
	Delta          int        `gorm:"not null"`                  // positive = in, negative = out
	QuantityBefore int        `gorm:"not null"`
	QuantityAfter  int        `gorm:"not null"`
	BillID         *uuid.UUID `gorm:"type:uuid;index"`
	CreatedAt      time.Time
}

// TableName overrides GORM's default pluralization.
func (StockMovement) TableName() string { return "stock_movements" }
