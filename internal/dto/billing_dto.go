package dto

import "github.com/shopspring/decimal"

// ─── Request DTOs ────────────────────────────────────────────────────────────

type CartItemRequest struct {
	ProductID string `json:"productId" validate:"required,uuid"`
	Quantity  int    `json:"quantity"  validate:"required,min=1"`
}

// CheckoutRequest is the body of POST /billing.
type CheckoutRequest struct {
	Items         []CartItemRequest `json:"items"         validate:"required,min=1,dive"`
	CustomerName  string            `json:"customerName"  validate:"max=120"`
	CustomerPhone string            `json:"customerPhone" validate:"max=20"`
	// PaymentMethod defaults to "cash" when omitted.
	PaymentMethod string `json:"paymentMethod" validate:"omitempty,oneof=cash upi"`
}

// BillFilter is bound from the query string of GET /billing/vendor.
type BillFilter struct {
	StartDate    string `form:"startDate"`    // YYYY-MM-DD or RFC3339
	EndDate      string `form:"endDate"`      // inclusive
	CustomerName string `form:"customerName"` // case-insensitive substring
	MinAmount    string `form:"minAmount"`
	MaxAmount    string `form:"maxAmount"`
}

// ─── Response DTOs ───────────────────────────────────────────────────────────

type CheckoutResponse struct {
	Msg          string `json:"msg"`
	BillID       string `json:"billId"`
	PDFPath      string `json:"pdfPath"`
	InvoiceReady bool   `json:"invoiceReady"`
}

type BillItemResponse struct {
	ProductID   string          `json:"productId"`
	ProductName string          `json:"productName"`
	Quantity    int             `json:"quantity"`
	Price       decimal.Decimal `json:"price"`
	LineTotal   decimal.Decimal `json:"lineTotal"`
}

type BillShopResponse struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	Location string `json:"location"`
}

type BillCashierResponse struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
}

type BillResponse struct {
	ID            string               `json:"id"`
	Items         []BillItemResponse   `json:"items"`
	Total         decimal.Decimal      `json:"total"`
	CustomerName  string               `json:"customerName"`
	CustomerPhone string               `json:"customerPhone"`
	PaymentMethod string               `json:"paymentMethod"`
	ShopID        string               `json:"shopId"`
	Shop          *BillShopResponse    `json:"shop,omitempty"`
	CashierID     string               `json:"cashierId"`
	Cashier       *BillCashierResponse `json:"cashier,omitempty"`
	CreatedAt     string               `json:"createdAt"`
	PDFPath       string               `json:"pdfPath"`
}

type InvoiceJobResponse struct {
	Msg     string `json:"msg"`
	BillID  string `json:"billId"`
	PDFPath string `json:"pdfPath"`
}
