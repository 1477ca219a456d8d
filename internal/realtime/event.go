// Package realtime fans committed bills out to live dashboards.
// Delivery is fire-and-forget: subscribers that are offline miss the event.
package realtime

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
)

// ChannelBills is the Redis pub/sub channel carrying BillEvent JSON.
const ChannelBills = "bills:new"

// EventNewBill is the SSE event name dashboards listen for.
const EventNewBill = "newBill"

// BillEvent is the payload announced once per committed bill.
type BillEvent struct {
	BillID       string          `json:"billId"`
	ShopID       string          `json:"shopId"`
	ShopName     string          `json:"shopName"`
	Total        decimal.Decimal `json:"total"`
	CreatedAt    time.Time       `json:"createdAt"`
	CustomerName string          `json:"customerName"`
}

// Publisher announces bill events. Implementations must not block checkout
// for long; callers log and drop the error.
type Publisher interface {
	Publish(ctx context.Context, ev BillEvent) error
}
