package handlers

import (
	"errors"
	"log"

	"yourstyle/internal/models"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
)

// Machine-checkable error kinds carried in the "error" field of failure
// responses, alongside a human-readable "message".
const (
	kindEmptyCart          = "empty_cart"
	kindProductNotFound    = "product_not_found"
	kindCartItemNotFound   = "cart_item_not_found"
	kindInvalidQuantity    = "invalid_quantity"
	kindInvalidRequestBody = "invalid_request_body"
	kindNotFound           = "not_found"
	kindForbidden          = "forbidden"
	kindStoreUnavailable   = "store_unavailable"
)

func writeError(c *fiber.Ctx, status int, kind, msg string) error {
	return c.Status(status).JSON(fiber.Map{
		"error":   kind,
		"message": msg,
	})
}

// writeDomainError maps a service error onto an HTTP response. Anything that
// is not a domain error is treated as a transient storage failure: logged in
// full, surfaced without internals.
func writeDomainError(c *fiber.Ctx, err error) error {
	switch {
	case errors.Is(err, models.ErrEmptyCart):
		return writeError(c, fiber.StatusBadRequest, kindEmptyCart, "Cart is empty")
	case errors.Is(err, models.ErrInvalidQuantity):
		return writeError(c, fiber.StatusBadRequest, kindInvalidQuantity, "Quantity must be at least 1 and within range")
	case errors.Is(err, models.ErrProductNotFound):
		return writeError(c, fiber.StatusNotFound, kindProductNotFound, "Product not found")
	case errors.Is(err, models.ErrCartItemNotFound):
		return writeError(c, fiber.StatusNotFound, kindCartItemNotFound, "Cart item not found")
	case errors.Is(err, models.ErrOrderNotFound):
		return writeError(c, fiber.StatusNotFound, kindNotFound, "Order not found")
	case errors.Is(err, models.ErrForbidden):
		return writeError(c, fiber.StatusForbidden, kindForbidden, "Order belongs to a different user")
	default:
		log.Printf("storage error: %v", err)
		return writeError(c, fiber.StatusInternalServerError, kindStoreUnavailable, "Temporary storage failure")
	}
}

// fieldFailed reports whether a struct validation error includes a failure
// on the named field.
func fieldFailed(err error, field string) bool {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return false
	}
	for _, fe := range verrs {
		if fe.Field() == field {
			return true
		}
	}
	return false
}

// userID returns the identity the auth middleware resolved for this request.
func userID(c *fiber.Ctx) string {
	uid, _ := c.Locals("user_id").(string)
	return uid
}
