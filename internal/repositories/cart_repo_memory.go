package repositories

import (
	"fmt"
	"sort"
	"sync"
	"time"

	"yourstyle/internal/models"

	"github.com/google/uuid"
)

// InMemoryCartRepository is an in-memory implementation of CartRepository.
// It honors the same contract as the GORM implementation; only the
// persistence location differs. It needs a ProductRepository to resolve the
// joined view that LinesWithProducts produces.
type InMemoryCartRepository struct {
	lines    map[string]models.CartItem // line id -> line
	products ProductRepository
	mu       sync.RWMutex
}

// NewInMemoryCartRepository creates a new instance of InMemoryCartRepository.
func NewInMemoryCartRepository(products ProductRepository) *InMemoryCartRepository {
	return &InMemoryCartRepository{
		lines:    make(map[string]models.CartItem),
		products: products,
	}
}

// GetLines returns the user's cart lines, newest first.
func (r *InMemoryCartRepository) GetLines(userID string) ([]models.CartItem, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var items []models.CartItem
	for _, it := range r.lines {
		if it.UserID == userID {
			items = append(items, it)
		}
	}
	sort.Slice(items, func(i, j int) bool {
		return items[i].CreatedAt.After(items[j].CreatedAt)
	})
	return items, nil
}

// GetLine returns a single line owned by the user.
func (r *InMemoryCartRepository) GetLine(userID, lineID string) (*models.CartItem, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	it, ok := r.lines[lineID]
	if !ok || it.UserID != userID {
		return nil, fmt.Errorf("cart line %s: %w", lineID, models.ErrCartItemNotFound)
	}
	return &it, nil
}

// GetLineByProduct returns the user's line for a product.
func (r *InMemoryCartRepository) GetLineByProduct(userID, productID string) (*models.CartItem, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, it := range r.lines {
		if it.UserID == userID && it.ProductID == productID {
			return &it, nil
		}
	}
	return nil, fmt.Errorf("cart line for product %s: %w", productID, models.ErrCartItemNotFound)
}

// Upsert adds qty to the (user, product) line, inserting it if missing.
func (r *InMemoryCartRepository) Upsert(userID, productID string, qty int) (*models.CartItem, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for id, it := range r.lines {
		if it.UserID == userID && it.ProductID == productID {
			it.Quantity += qty
			it.UpdatedAt = time.Now()
			r.lines[id] = it
			return &it, nil
		}
	}

	it := models.CartItem{
		ID:        uuid.New().String(),
		UserID:    userID,
		ProductID: productID,
		Quantity:  qty,
		CreatedAt: time.Now(),
		UpdatedAt: time.Now(),
	}
	r.lines[it.ID] = it
	return &it, nil
}

// UpdateQuantity replaces the quantity of a line owned by the user.
func (r *InMemoryCartRepository) UpdateQuantity(userID, lineID string, qty int) (*models.CartItem, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	it, ok := r.lines[lineID]
	if !ok || it.UserID != userID {
		return nil, fmt.Errorf("cart line %s: %w", lineID, models.ErrCartItemNotFound)
	}
	it.Quantity = qty
	it.UpdatedAt = time.Now()
	r.lines[lineID] = it
	return &it, nil
}

// DeleteLine removes a line owned by the user.
func (r *InMemoryCartRepository) DeleteLine(userID, lineID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	it, ok := r.lines[lineID]
	if !ok || it.UserID != userID {
		return fmt.Errorf("cart line %s: %w", lineID, models.ErrCartItemNotFound)
	}
	delete(r.lines, lineID)
	return nil
}

// DeleteByProduct removes the line for a product if present.
func (r *InMemoryCartRepository) DeleteByProduct(userID, productID string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for id, it := range r.lines {
		if it.UserID == userID && it.ProductID == productID {
			delete(r.lines, id)
			return true, nil
		}
	}
	return false, nil
}

// DeleteLines removes the given lines for the user, skipping ids that are
// gone or not the user's.
func (r *InMemoryCartRepository) DeleteLines(userID string, lineIDs []string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, id := range lineIDs {
		if it, ok := r.lines[id]; ok && it.UserID == userID {
			delete(r.lines, id)
		}
	}
	return nil
}

// Clear removes every line for the user.
func (r *InMemoryCartRepository) Clear(userID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for id, it := range r.lines {
		if it.UserID == userID {
			delete(r.lines, id)
		}
	}
	return nil
}

// LinesWithProducts resolves the user's lines against the product repository,
// dropping lines whose product no longer exists, same as the SQL inner join.
// forUpdate has no effect here: callers serialize checkouts per user already.
func (r *InMemoryCartRepository) LinesWithProducts(userID string, forUpdate bool) ([]models.CartLineDetail, error) {
	items, err := r.GetLines(userID)
	if err != nil {
		return nil, err
	}

	var details []models.CartLineDetail
	for _, it := range items {
		p, err := r.products.GetByID(it.ProductID)
		if err != nil {
			// Orphan line: product vanished from the catalog.
			continue
		}
		details = append(details, models.CartLineDetail{
			ID:             it.ID,
			ProductID:      it.ProductID,
			Quantity:       it.Quantity,
			Name:           p.Name,
			Category:       p.Category,
			PriceCents:     p.PriceCents,
			ImageURL:       p.ImageURL,
			Description:    p.Description,
			LineTotalCents: p.PriceCents * int64(it.Quantity),
		})
	}
	return details, nil
}
