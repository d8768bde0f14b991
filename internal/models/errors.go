package models

import "errors"

// Domain errors shared by services, repositories and handlers. Handlers map
// these to HTTP statuses with errors.Is; anything else is treated as a
// storage failure and surfaced generically.
var (
	ErrEmptyCart        = errors.New("cart is empty")
	ErrProductNotFound  = errors.New("product not found")
	ErrCartItemNotFound = errors.New("cart item not found")
	ErrInvalidQuantity  = errors.New("invalid quantity")
	ErrOrderNotFound    = errors.New("order not found")
	ErrForbidden        = errors.New("forbidden")
)
