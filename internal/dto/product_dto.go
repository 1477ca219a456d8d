package dto

import "github.com/shopspring/decimal"

// ProductResponse is what the till needs to build a cart: current price and stock.
type ProductResponse struct {
	ID                string          `json:"id"`
	Name              string          `json:"name"`
	Price             decimal.Decimal `json:"price"`
	Quantity          int             `json:"quantity"`
	LowStockThreshold int             `json:"lowStockThreshold"`
	LowStock          bool            `json:"lowStock"`
	ShopID            string          `json:"shopId"`
}
