package services

import (
	"context"
	"errors"
	"fmt"
	"math"

	"yourstyle/internal/models"
	"yourstyle/internal/repositories"
)

// maxLineQuantity bounds the quantity of a single cart line. Well below
// int64-overflow territory, so checkout's total arithmetic stays exact.
const maxLineQuantity = math.MaxInt32

// CartService handles business logic for cart mutation and the cart view.
type CartService struct {
	cartRepo    repositories.CartRepository
	productRepo repositories.ProductRepository
}

// NewCartService creates a new CartService.
func NewCartService(cartRepo repositories.CartRepository, productRepo repositories.ProductRepository) *CartService {
	return &CartService{
		cartRepo:    cartRepo,
		productRepo: productRepo,
	}
}

// AddItem adds qty of a product to the user's cart, incrementing the existing
// line if there is one. The product must resolve in the catalog.
//
// Quantity bounds are checked against the prospective total before anything
// is written, so a rejected add leaves the cart untouched. Concurrent adds
// can still race past the bound; checkout re-validates with exact arithmetic.
func (s *CartService) AddItem(ctx context.Context, userID, productID string, qty int) (*models.CartItem, error) {
	if qty < 1 || qty > maxLineQuantity {
		return nil, models.ErrInvalidQuantity
	}
	if _, err := s.productRepo.GetByID(productID); err != nil {
		return nil, err
	}

	existing, err := s.cartRepo.GetLineByProduct(userID, productID)
	switch {
	case err == nil:
		if qty > maxLineQuantity-existing.Quantity {
			return nil, models.ErrInvalidQuantity
		}
	case errors.Is(err, models.ErrCartItemNotFound):
		// First add of this product.
	default:
		return nil, err
	}

	return s.cartRepo.Upsert(userID, productID, qty)
}

// UpdateItem replaces the quantity of one of the user's cart lines.
func (s *CartService) UpdateItem(ctx context.Context, userID, lineID string, qty int) (*models.CartItem, error) {
	if qty < 1 || qty > maxLineQuantity {
		return nil, models.ErrInvalidQuantity
	}
	return s.cartRepo.UpdateQuantity(userID, lineID, qty)
}

// RemoveLine removes a cart line by its id. Removing someone else's line or a
// nonexistent one fails with ErrCartItemNotFound.
func (s *CartService) RemoveLine(ctx context.Context, userID, lineID string) error {
	return s.cartRepo.DeleteLine(userID, lineID)
}

// RemoveProduct removes the cart line for a product. The delete is
// idempotent: a line that is not there is a successful no-op.
func (s *CartService) RemoveProduct(ctx context.Context, userID, productID string) error {
	_, err := s.cartRepo.DeleteByProduct(userID, productID)
	return err
}

// GetCart returns the user's cart joined with current catalog data. The total
// reflects prices as they are right now, not as they were when lines were
// added; a price change between views changes the displayed total.
func (s *CartService) GetCart(ctx context.Context, userID string) (*models.Cart, error) {
	lines, err := s.cartRepo.LinesWithProducts(userID, false)
	if err != nil {
		return nil, fmt.Errorf("failed to load cart for user %s: %w", userID, err)
	}

	cart := &models.Cart{Items: lines}
	if cart.Items == nil {
		cart.Items = []models.CartLineDetail{}
	}
	for _, l := range lines {
		cart.TotalCents += l.LineTotalCents
	}
	return cart, nil
}
