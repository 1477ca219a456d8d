package service

import (
	"errors"

	"github.com/google/uuid"
)

// Checkout input errors. All are detected before any stock is touched.
var (
	ErrEmptyCart            = errors.New("Cart is empty")
	ErrInvalidQuantity      = errors.New("Quantity must be a positive whole number")
	ErrInvalidPaymentMethod = errors.New("Payment method must be cash or upi")
	ErrForeignProduct       = errors.New("Product does not belong to your shop")
)

// ErrPersistence marks a storage failure inside the checkout transaction.
// The transaction was rolled back, so no stock was consumed.
var ErrPersistence = errors.New("billing could not be recorded")

// Query and access errors.
var (
	ErrBillNotFound       = errors.New("Bill not found")
	ErrProductNotFound    = errors.New("Product not found")
	ErrShopNotFound       = errors.New("Shop not found")
	ErrShopAccessDenied   = errors.New("Access denied to this shop")
	ErrInvalidFilter      = errors.New("Invalid filter")
	ErrInvalidCredentials = errors.New("Invalid credentials")
	ErrVendorNotApproved  = errors.New("Vendor account is pending approval")
)

// InsufficientStockError means the product does not exist or holds fewer
// units than requested. ProductName is "product" when the row is missing.
type InsufficientStockError struct {
	ProductID   uuid.UUID
	ProductName string
}

func (e *InsufficientStockError) Error() string {
	return "Not enough stock for " + e.ProductName
}

// IsInsufficientStock reports whether err carries an *InsufficientStockError.
func IsInsufficientStock(err error) bool {
	var ise *InsufficientStockError
	return errors.As(err, &ise)
}
