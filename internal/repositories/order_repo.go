package repositories

import (
	"yourstyle/internal/models"
)

// listOrdersLimit caps how many orders a single history query returns.
const listOrdersLimit = 200

// OrderRepository defines the interface for the order ledger. Orders are
// append-only: there is no update or delete.
type OrderRepository interface {
	// Create persists an order together with all of its items.
	Create(order *models.Order) error
	// ListByUser returns the user's orders, newest first, items included,
	// capped at listOrdersLimit.
	ListByUser(userID string) ([]models.Order, error)
	// GetByID returns an order with its items regardless of owner, or
	// ErrOrderNotFound. Ownership checks are the caller's concern, so that
	// "not found" and "forbidden" stay distinguishable.
	GetByID(id string) (*models.Order, error)
}
