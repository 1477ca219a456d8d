package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// DefaultLowStockThreshold applies to products created without an explicit threshold.
const DefaultLowStockThreshold = 5

// Product is a sellable item owned by one shop.
// Quantity is only ever decremented through the stock ledger's conditional
// update; the products_quantity_non_negative CHECK constraint backs it up.
type Product struct {
	ID                uuid.UUID       `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"id"`
	Name              string          `gorm:"index;not null" json:"name"`
	Price             decimal.Decimal `gorm:"type:decimal(12,2);not null" json:"price"`
	Quantity          int             `gorm:"not null;default:0" json:"quantity"`
	LowStockThreshold int             `gorm:"not null;default:5" json:"lowStockThreshold"`
	ShopID            uuid.UUID       `gorm:"type:uuid;index;not null" json:"shopId"`
	CreatedAt         time.Time       `json:"createdAt"`
	UpdatedAt         time.Time       `json:"updatedAt"`

	Shop *Shop `gorm:"foreignKey:ShopID" json:"-"`
}
