package domain

import "time"

// OrderStatus is the lifecycle state of a recorded order. Checkout only
// ever writes StatusPending; later transitions come from the admin side.
type OrderStatus string

const (
	StatusPending   OrderStatus = "pending"
	StatusPaid      OrderStatus = "paid"
	StatusShipped   OrderStatus = "shipped"
	StatusCancelled OrderStatus = "cancelled"
)

// Valid reports whether s is one of the four known statuses.
func (s OrderStatus) Valid() bool {
	switch s {
	case StatusPending, StatusPaid, StatusShipped, StatusCancelled:
		return true
	}
	return false
}

// OrderLine carries the price snapshot taken at checkout time. UnitPrice
// never changes afterwards, whatever happens to the catalog.
type OrderLine struct {
	ProductID string `json:"productId"`
	Qty       int64  `json:"qty"`
	UnitPrice int64  `json:"price"`
}

// Order is an immutable record of a completed checkout. Only the status
// field may change after it is written, and only by the admin side.
// Invariant: Total is the sum of Qty*UnitPrice over Lines.
type Order struct {
	ID        string      `json:"id"`
	CreatedAt time.Time   `json:"date"`
	Email     string      `json:"email"`
	Lines     []OrderLine `json:"items"`
	Total     int64       `json:"total"`
	Status    OrderStatus `json:"status"`
}
