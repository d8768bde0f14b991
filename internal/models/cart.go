package models

import "time"

// CartItem is one line of a user's cart: a product and a requested quantity.
// There is at most one line per (user, product) pair; repeated adds increment
// the quantity. Lines are deleted on remove and consumed by checkout, so no
// history is kept. Note that no price is stored here: the cart is untrusted
// and prices are always resolved from the catalog.
type CartItem struct {
	ID        string    `json:"id" gorm:"primaryKey;type:varchar(36)"`
	UserID    string    `json:"user_id" gorm:"type:varchar(36);uniqueIndex:idx_cart_user_product"`
	ProductID string    `json:"product_id" gorm:"type:varchar(36);uniqueIndex:idx_cart_user_product"`
	Quantity  int       `json:"quantity" validate:"required,gte=1"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// CartLineDetail is a cart line joined with the current catalog row. This is
// the shape the checkout workflow and the cart view both read: quantity from
// the cart, everything else from the product at the moment of the query.
type CartLineDetail struct {
	ID             string `json:"id"`
	ProductID      string `json:"product_id"`
	Quantity       int    `json:"quantity"`
	Name           string `json:"name"`
	Category       string `json:"category"`
	PriceCents     int64  `json:"price_cents"`
	ImageURL       string `json:"image_url"`
	Description    string `json:"description"`
	LineTotalCents int64  `json:"line_total_cents"`
}

// Cart is the user-facing view of the cart: the joined lines plus a grand
// total computed from current catalog prices.
type Cart struct {
	Items      []CartLineDetail `json:"items"`
	TotalCents int64            `json:"total_cents"`
}
