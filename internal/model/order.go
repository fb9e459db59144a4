package model

import "time"

// Order statuses recognized by the extraction pipeline. The persisted
// status column is not constrained to these values; unrecognized statuses
// from the oracle pass through as-is.
const (
	StatusOrdered        = "Ordered"
	StatusShipped        = "Shipped"
	StatusOutForDelivery = "Out for Delivery"
	StatusDelivered      = "Delivered"
)

// KnownStatuses lists the standard statuses in lifecycle order.
var KnownStatuses = []string{StatusOrdered, StatusShipped, StatusOutForDelivery, StatusDelivered}

// Order is a persisted order aggregate. OrderNumber is the natural key:
// reconciliation always looks orders up by it, never by ID.
type Order struct {
	ID           string      `json:"id"`
	OrderNumber  string      `json:"order_number"`
	Vendor       string      `json:"vendor"`
	CustomerName string      `json:"customer_name"`
	Status       string      `json:"status"`
	Location     string      `json:"location"`
	ExpectedDate string      `json:"expected_date"`
	Notes        string      `json:"notes"`
	CreatedAt    time.Time   `json:"created_at"`
	UpdatedAt    time.Time   `json:"updated_at"`
	Items        []OrderItem `json:"items"`
}

// OrderItem is a line item owned by an Order. Price is nil when the raw
// price string could not be parsed as a number.
type OrderItem struct {
	ID       string   `json:"id"`
	OrderID  string   `json:"order_id"`
	ItemName string   `json:"item_name"`
	Quantity int      `json:"quantity"`
	Price    *float64 `json:"price"`
	Currency string   `json:"currency"`
}
