package models

import "time"

// Order statuses. Checkout only ever produces pending orders; later
// transitions (payment, cancellation) belong to other flows.
const (
	OrderStatusPending   = "pending"
	OrderStatusPaid      = "paid"
	OrderStatusCancelled = "cancelled"
)

// Order is one entry in the order ledger: a frozen snapshot of a cart at the
// moment of checkout. Orders are append-only and never deleted.
type Order struct {
	ID         string      `json:"id" gorm:"primaryKey;type:varchar(36)"`
	UserID     string      `json:"user_id" gorm:"index;type:varchar(36)"`
	TotalCents int64       `json:"total_cents"`
	Status     string      `json:"status"`
	Items      []OrderItem `json:"items" gorm:"foreignKey:OrderID"`
	CreatedAt  time.Time   `json:"created_at"`
}

// OrderItem is one line of an order. PriceCents is the catalog price at the
// instant of checkout; Name, Category and ImageURL are denormalized copies so
// the order keeps rendering correctly even if the product later changes or
// disappears. Invariant: LineTotalCents == PriceCents * Quantity, and the
// line totals of an order sum to its TotalCents.
type OrderItem struct {
	ID             string    `json:"id" gorm:"primaryKey;type:varchar(36)"`
	OrderID        string    `json:"order_id" gorm:"index;type:varchar(36)"`
	ProductID      string    `json:"product_id" gorm:"type:varchar(36)"`
	Quantity       int       `json:"quantity"`
	PriceCents     int64     `json:"price_cents"`
	LineTotalCents int64     `json:"line_total_cents"`
	Name           string    `json:"name"`
	Category       string    `json:"category"`
	ImageURL       string    `json:"image_url"`
	CreatedAt      time.Time `json:"created_at"`
}
