package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Payment methods a cashier can declare. Informational only: no gateway is called.
const (
	PaymentCash = "cash"
	PaymentUPI  = "upi"
)

// Bill is the immutable record of one completed checkout.
// Total equals the sum of Quantity*UnitPrice over Items and is frozen at creation.
type Bill struct {
	ID            uuid.UUID       `gorm:"type:uuid;primaryKey"`
	Total         decimal.Decimal `gorm:"type:decimal(12,2);not null"`
	CustomerName  string          `gorm:"index"`
	CustomerPhone string
	PaymentMethod string    `gorm:"type:varchar(10);not null;default:'cash'"`
	ShopID        uuid.UUID `gorm:"type:uuid;index;not null"`
	CashierID     uuid.UUID `gorm:"type:uuid;index;not null"`
	// CreatedAt is truncated to milliseconds so the invoice file name can be
	// re-derived from the stored row.
	CreatedAt time.Time `gorm:"index;not null"`

	Items   []BillItem `gorm:"foreignKey:BillID"`
	Shop    *Shop      `gorm:"foreignKey:ShopID"`
	Cashier *Cashier   `gorm:"foreignKey:CashierID"`
}

// BillItem is one line of a bill. UnitPrice and ProductName are snapshots taken
// at the moment of the stock decrement and never follow later product edits.
type BillItem struct {
	ID          uuid.UUID       `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	BillID      uuid.UUID       `gorm:"type:uuid;index;not null"`
	Position    int             `gorm:"not null"`
	ProductID   uuid.UUID       `gorm:"type:uuid;index;not null"`
	ProductName string          `gorm:"not null"`
	Quantity    int             `gorm:"not null"`
	UnitPrice   decimal.Decimal `gorm:"type:decimal(12,2);not null"`
}

// LineTotal is Quantity × UnitPrice.
func (i BillItem) LineTotal() decimal.Decimal {
	return i.UnitPrice.Mul(decimal.NewFromInt(int64(i.Quantity)))
}

// ComputeTotal sums the line totals of items.
func ComputeTotal(items []BillItem) decimal.Decimal {
	total := decimal.Zero
	for _, it := range items {
		total = total.Add(it.LineTotal())
	}
	return total
}
