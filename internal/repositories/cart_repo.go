package repositories

import (
	"yourstyle/internal/models"
)

// CartRepository defines the interface for cart line data access.
// All operations are scoped to a single user; a user can never see or touch
// another user's lines through this interface.
type CartRepository interface {
	// GetLines returns the raw cart lines for a user, newest first.
	GetLines(userID string) ([]models.CartItem, error)
	// GetLine returns a single line by its id, or ErrCartItemNotFound if the
	// line does not exist or belongs to a different user.
	GetLine(userID, lineID string) (*models.CartItem, error)
	// GetLineByProduct returns the user's line for a product, or
	// ErrCartItemNotFound if there is none.
	GetLineByProduct(userID, productID string) (*models.CartItem, error)
	// Upsert adds qty to the (user, product) line, creating it if absent, and
	// returns the resulting line.
	Upsert(userID, productID string, qty int) (*models.CartItem, error)
	// UpdateQuantity replaces the quantity of an existing line.
	// Returns ErrCartItemNotFound if the line is not the user's.
	UpdateQuantity(userID, lineID string, qty int) (*models.CartItem, error)
	// DeleteLine removes a line by id. Returns ErrCartItemNotFound if absent.
	DeleteLine(userID, lineID string) error
	// DeleteByProduct removes the line for a product if present. Absence is
	// not an error; the bool reports whether anything was removed.
	DeleteByProduct(userID, productID string) (bool, error)
	// DeleteLines removes the given lines, skipping ids that are gone or not
	// the user's. Checkout uses this to consume exactly the lines it read,
	// so a line added mid-checkout survives for the next order.
	DeleteLines(userID string, lineIDs []string) error
	// Clear removes every line for the user.
	Clear(userID string) error
	// LinesWithProducts returns the user's lines inner-joined with the
	// current catalog rows. Lines whose product no longer exists are absent
	// from the result. When forUpdate is true the cart rows are locked for
	// the duration of the surrounding transaction, on stores that support it.
	LinesWithProducts(userID string, forUpdate bool) ([]models.CartLineDetail, error)
}
