package services

import (
	"context"
	"fmt"
	"log"
	"math"
	"sync"
	"time"

	"yourstyle/internal/models"
	"yourstyle/internal/repositories"

	"github.com/google/uuid"
)

// OrderEventPublisher publishes order lifecycle events to the message broker.
// Satisfied by *rabbitmq.Client; nil disables publishing.
type OrderEventPublisher interface {
	PublishOrderCreated(orderData map[string]interface{}) error
}

// CheckoutService owns the cart-to-order workflow: it turns a mutable cart
// into an immutable order in one atomic unit, and serves the order history
// read model.
type CheckoutService struct {
	uow repositories.UnitOfWork
	mq  OrderEventPublisher

	// userLocks serializes checkouts per user. Row locks cover the Postgres
	// backend, but SQLite and the memory backend have nothing equivalent, so
	// the workflow always holds an in-process advisory lock for the duration
	// of the transaction. A double-clicked checkout then sees either the
	// original cart or the fully cleared one, never a half-cleared state.
	userLocks sync.Map // user id -> *sync.Mutex
}

// NewCheckoutService creates a new CheckoutService. mq may be nil, in which
// case no events are published.
func NewCheckoutService(uow repositories.UnitOfWork, mq OrderEventPublisher) *CheckoutService {
	return &CheckoutService{
		uow: uow,
		mq:  mq,
	}
}

func (s *CheckoutService) userLock(userID string) *sync.Mutex {
	mu, _ := s.userLocks.LoadOrStore(userID, &sync.Mutex{})
	return mu.(*sync.Mutex)
}

// Checkout converts the user's cart into a pending order.
//
// Inside one transaction it reads the cart lines joined with current catalog
// prices, computes the integer-cent totals, inserts the order with its items,
// and clears the cart. Any failure rolls the whole set of writes back: the
// cart is left exactly as it was and no partial order is ever visible.
//
// The operation is not idempotent. A second call on the now-empty cart fails
// with ErrEmptyCart, which is the only dedup mechanism; callers that time out
// must re-query order history instead of blindly retrying.
func (s *CheckoutService) Checkout(ctx context.Context, userID string) (*models.Order, error) {
	mu := s.userLock(userID)
	mu.Lock()
	defer mu.Unlock()

	var order *models.Order
	err := s.uow.Do(ctx, func(tx repositories.Stores) error {
		lines, err := tx.Carts.LinesWithProducts(userID, true)
		if err != nil {
			return err
		}

		// The join silently drops orphan lines (product deleted from the
		// catalog after it was added to the cart). Log the discrepancy so the
		// data loss is at least observable.
		raw, err := tx.Carts.GetLines(userID)
		if err != nil {
			return err
		}
		if dropped := len(raw) - len(lines); dropped > 0 {
			log.Printf("checkout: dropping %d orphan cart line(s) for user %s", dropped, userID)
		}

		if len(lines) == 0 {
			return models.ErrEmptyCart
		}

		items, total, err := buildOrderItems(lines)
		if err != nil {
			return err
		}

		order = &models.Order{
			ID:         uuid.New().String(),
			UserID:     userID,
			TotalCents: total,
			Status:     models.OrderStatusPending,
			Items:      items,
			CreatedAt:  time.Now(),
		}
		if err := tx.Orders.Create(order); err != nil {
			return fmt.Errorf("failed to record order for user %s: %w", userID, err)
		}

		// Consume exactly the lines read above. A line upserted by a
		// concurrent add after the read stays in the cart for the next
		// order instead of vanishing unbilled.
		lineIDs := make([]string, 0, len(raw))
		for _, l := range raw {
			lineIDs = append(lineIDs, l.ID)
		}
		if err := tx.Carts.DeleteLines(userID, lineIDs); err != nil {
			return fmt.Errorf("failed to clear cart for user %s: %w", userID, err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.publishOrderCreated(order)
	return order, nil
}

// buildOrderItems freezes the joined cart lines into order items, computing
// line and grand totals with checked integer arithmetic. Money never touches
// floating point; any overflow fails the checkout instead of wrapping.
func buildOrderItems(lines []models.CartLineDetail) ([]models.OrderItem, int64, error) {
	items := make([]models.OrderItem, 0, len(lines))
	var total int64
	for _, l := range lines {
		if l.Quantity < 1 || l.PriceCents < 0 {
			return nil, 0, models.ErrInvalidQuantity
		}
		lineTotal := l.PriceCents * int64(l.Quantity)
		if l.PriceCents != 0 && lineTotal/l.PriceCents != int64(l.Quantity) {
			return nil, 0, models.ErrInvalidQuantity
		}
		if total > math.MaxInt64-lineTotal {
			return nil, 0, models.ErrInvalidQuantity
		}
		total += lineTotal

		items = append(items, models.OrderItem{
			ProductID:      l.ProductID,
			Quantity:       l.Quantity,
			PriceCents:     l.PriceCents,
			LineTotalCents: lineTotal,
			Name:           l.Name,
			Category:       l.Category,
			ImageURL:       l.ImageURL,
		})
	}
	return items, total, nil
}

// publishOrderCreated emits an order.created event. Publishing is best
// effort: the order is already committed, so a broker failure is only logged.
func (s *CheckoutService) publishOrderCreated(order *models.Order) {
	if s.mq == nil {
		return
	}
	event := map[string]interface{}{
		"order_id":    order.ID,
		"user_id":     order.UserID,
		"total_cents": order.TotalCents,
		"status":      order.Status,
		"item_count":  len(order.Items),
	}
	if err := s.mq.PublishOrderCreated(event); err != nil {
		log.Printf("Warning: failed to publish order created event for order %s: %v", order.ID, err)
	} else {
		log.Printf("Published order created event for order %s", order.ID)
	}
}

// ListOrders returns the user's order history, newest first, items included.
func (s *CheckoutService) ListOrders(ctx context.Context, userID string) ([]models.Order, error) {
	var orders []models.Order
	err := s.uow.Do(ctx, func(tx repositories.Stores) error {
		var err error
		orders, err = tx.Orders.ListByUser(userID)
		return err
	})
	if err != nil {
		return nil, err
	}
	return orders, nil
}

// GetOrder returns a single order for its owner. An order that exists but
// belongs to someone else yields ErrForbidden, an unknown id ErrOrderNotFound;
// the two are deliberately distinct.
func (s *CheckoutService) GetOrder(ctx context.Context, userID, orderID string) (*models.Order, error) {
	var order *models.Order
	err := s.uow.Do(ctx, func(tx repositories.Stores) error {
		var err error
		order, err = tx.Orders.GetByID(orderID)
		return err
	})
	if err != nil {
		return nil, err
	}
	if order.UserID != userID {
		return nil, fmt.Errorf("order %s: %w", orderID, models.ErrForbidden)
	}
	return order, nil
}
