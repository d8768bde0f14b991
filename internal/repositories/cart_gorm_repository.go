package repositories

import (
	"errors"
	"fmt"
	"time"

	"yourstyle/internal/models"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// GORMCartRepository is a GORM implementation of CartRepository.
type GORMCartRepository struct {
	db *gorm.DB
}

// NewGORMCartRepository creates a new instance of GORMCartRepository.
func NewGORMCartRepository(db *gorm.DB) *GORMCartRepository {
	return &GORMCartRepository{
		db: db,
	}
}

// GetLines retrieves all cart lines for a user, newest first.
func (r *GORMCartRepository) GetLines(userID string) ([]models.CartItem, error) {
	var items []models.CartItem
	if err := r.db.Where("user_id = ?", userID).Order("created_at DESC").Find(&items).Error; err != nil {
		return nil, fmt.Errorf("failed to get cart lines for user %s: %w", userID, err)
	}
	return items, nil
}

// GetLine retrieves a single cart line owned by the user.
func (r *GORMCartRepository) GetLine(userID, lineID string) (*models.CartItem, error) {
	var item models.CartItem
	err := r.db.First(&item, "id = ? AND user_id = ?", lineID, userID).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("cart line %s: %w", lineID, models.ErrCartItemNotFound)
		}
		return nil, fmt.Errorf("failed to get cart line %s: %w", lineID, err)
	}
	return &item, nil
}

// GetLineByProduct retrieves the user's line for a product.
func (r *GORMCartRepository) GetLineByProduct(userID, productID string) (*models.CartItem, error) {
	var item models.CartItem
	err := r.db.First(&item, "user_id = ? AND product_id = ?", userID, productID).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("cart line for product %s: %w", productID, models.ErrCartItemNotFound)
		}
		return nil, fmt.Errorf("failed to get cart line for product %s: %w", productID, err)
	}
	return &item, nil
}

// Upsert adds qty to the (user, product) line, inserting it if missing. The
// insert-or-increment is a single ON CONFLICT statement, so two concurrent
// first adds for the same pair merge instead of one tripping the unique index.
func (r *GORMCartRepository) Upsert(userID, productID string, qty int) (*models.CartItem, error) {
	item := models.CartItem{
		ID:        uuid.New().String(),
		UserID:    userID,
		ProductID: productID,
		Quantity:  qty,
	}
	err := r.db.Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "user_id"}, {Name: "product_id"}},
		DoUpdates: clause.Assignments(map[string]interface{}{
			"quantity":   gorm.Expr("cart_items.quantity + excluded.quantity"),
			"updated_at": time.Now(),
		}),
	}).Create(&item).Error
	if err != nil {
		return nil, fmt.Errorf("failed to upsert cart line for product %s: %w", productID, err)
	}
	return r.GetLineByProduct(userID, productID)
}

// UpdateQuantity replaces the quantity of a line owned by the user.
func (r *GORMCartRepository) UpdateQuantity(userID, lineID string, qty int) (*models.CartItem, error) {
	res := r.db.Model(&models.CartItem{}).
		Where("id = ? AND user_id = ?", lineID, userID).
		Update("quantity", qty)
	if res.Error != nil {
		return nil, fmt.Errorf("failed to update cart line %s: %w", lineID, res.Error)
	}
	if res.RowsAffected == 0 {
		return nil, fmt.Errorf("cart line %s: %w", lineID, models.ErrCartItemNotFound)
	}
	return r.GetLine(userID, lineID)
}

// DeleteLine removes a line owned by the user.
func (r *GORMCartRepository) DeleteLine(userID, lineID string) error {
	res := r.db.Delete(&models.CartItem{}, "id = ? AND user_id = ?", lineID, userID)
	if res.Error != nil {
		return fmt.Errorf("failed to delete cart line %s: %w", lineID, res.Error)
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("cart line %s: %w", lineID, models.ErrCartItemNotFound)
	}
	return nil
}

// DeleteByProduct removes the line for a product. Deleting a line that is not
// there is a no-op, reported through the bool.
func (r *GORMCartRepository) DeleteByProduct(userID, productID string) (bool, error) {
	res := r.db.Delete(&models.CartItem{}, "user_id = ? AND product_id = ?", userID, productID)
	if res.Error != nil {
		return false, fmt.Errorf("failed to delete cart line for product %s: %w", productID, res.Error)
	}
	return res.RowsAffected > 0, nil
}

// DeleteLines removes the given lines for the user. Ids that are already
// gone, or that belong to someone else, are skipped.
func (r *GORMCartRepository) DeleteLines(userID string, lineIDs []string) error {
	if len(lineIDs) == 0 {
		return nil
	}
	if err := r.db.Delete(&models.CartItem{}, "user_id = ? AND id IN ?", userID, lineIDs).Error; err != nil {
		return fmt.Errorf("failed to delete cart lines for user %s: %w", userID, err)
	}
	return nil
}

// Clear removes every cart line for the user.
func (r *GORMCartRepository) Clear(userID string) error {
	if err := r.db.Delete(&models.CartItem{}, "user_id = ?", userID).Error; err != nil {
		return fmt.Errorf("failed to clear cart for user %s: %w", userID, err)
	}
	return nil
}

// LinesWithProducts joins the user's cart lines with the current catalog
// rows. The inner join means lines whose product has been removed from the
// catalog simply do not appear. With forUpdate set, the matched cart rows are
// locked until the surrounding transaction ends; SQLite has no row locks and
// serializes writers on its own, so the clause is only emitted on Postgres.
func (r *GORMCartRepository) LinesWithProducts(userID string, forUpdate bool) ([]models.CartLineDetail, error) {
	q := r.db.Table("cart_items").
		Select("cart_items.id, cart_items.product_id, cart_items.quantity, "+
			"products.name, products.category, products.price_cents, "+
			"products.image_url, products.description").
		Joins("JOIN products ON products.id = cart_items.product_id").
		Where("cart_items.user_id = ?", userID).
		Order("cart_items.created_at DESC")
	if forUpdate && r.db.Dialector.Name() == "postgres" {
		q = q.Clauses(clause.Locking{
			Strength: "UPDATE",
			Table:    clause.Table{Name: "cart_items"},
		})
	}

	var lines []models.CartLineDetail
	if err := q.Scan(&lines).Error; err != nil {
		return nil, fmt.Errorf("failed to join cart lines for user %s: %w", userID, err)
	}
	// Line totals are computed here rather than in SQL so the math stays in
	// one place; checkout re-derives them with overflow checks anyway.
	for i := range lines {
		lines[i].LineTotalCents = lines[i].PriceCents * int64(lines[i].Quantity)
	}
	return lines, nil
}
