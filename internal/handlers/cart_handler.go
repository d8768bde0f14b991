package handlers

import (
	"log"

	"yourstyle/internal/services"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
)

// CartHandler handles HTTP requests for the cart.
type CartHandler struct {
	service  *services.CartService
	validate *validator.Validate
}

// NewCartHandler creates a new CartHandler.
func NewCartHandler(service *services.CartService) *CartHandler {
	return &CartHandler{
		service:  service,
		validate: validator.New(),
	}
}

// RegisterRoutes registers the cart routes with the Fiber app.
// The by-product route must come before the plain :id route so Fiber does not
// swallow it as a line id.
func (h *CartHandler) RegisterRoutes(router fiber.Router) {
	cartRoutes := router.Group("/cart")
	cartRoutes.Get("/", h.HandleGetCart)
	cartRoutes.Post("/", h.HandleAddItem)
	cartRoutes.Put("/:id", h.HandleUpdateItem)
	cartRoutes.Delete("/by-product/:productId", h.HandleRemoveProduct)
	cartRoutes.Delete("/:id", h.HandleRemoveLine)
}

type addItemRequest struct {
	ProductID string `json:"product_id" validate:"required"`
	Quantity  int    `json:"quantity" validate:"required,gte=1"`
}

type updateItemRequest struct {
	Quantity int `json:"quantity" validate:"required,gte=1"`
}

// HandleGetCart returns the cart joined with current catalog prices.
func (h *CartHandler) HandleGetCart(c *fiber.Ctx) error {
	cart, err := h.service.GetCart(c.Context(), userID(c))
	if err != nil {
		log.Printf("Error getting cart: %v", err)
		return writeDomainError(c, err)
	}
	return c.JSON(fiber.Map{
		"items":       cart.Items,
		"total_cents": cart.TotalCents,
	})
}

// HandleAddItem adds a product to the cart, incrementing an existing line.
func (h *CartHandler) HandleAddItem(c *fiber.Ctx) error {
	var req addItemRequest
	if err := c.BodyParser(&req); err != nil {
		return writeError(c, fiber.StatusBadRequest, kindInvalidRequestBody, "Invalid request body")
	}
	if err := h.validate.Struct(&req); err != nil {
		// A missing product_id is a malformed body; only quantity problems
		// are quantity errors.
		if fieldFailed(err, "ProductID") {
			return writeError(c, fiber.StatusBadRequest, kindInvalidRequestBody, "product_id is required")
		}
		return writeError(c, fiber.StatusBadRequest, kindInvalidQuantity, "quantity must be at least 1")
	}

	line, err := h.service.AddItem(c.Context(), userID(c), req.ProductID, req.Quantity)
	if err != nil {
		log.Printf("Error adding product %s to cart: %v", req.ProductID, err)
		return writeDomainError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"id":         line.ID,
		"product_id": line.ProductID,
		"quantity":   line.Quantity,
	})
}

// HandleUpdateItem replaces the quantity of one cart line.
func (h *CartHandler) HandleUpdateItem(c *fiber.Ctx) error {
	var req updateItemRequest
	if err := c.BodyParser(&req); err != nil {
		return writeError(c, fiber.StatusBadRequest, kindInvalidRequestBody, "Invalid request body")
	}
	if err := h.validate.Struct(&req); err != nil {
		return writeError(c, fiber.StatusBadRequest, kindInvalidQuantity, "quantity must be at least 1")
	}

	line, err := h.service.UpdateItem(c.Context(), userID(c), c.Params("id"), req.Quantity)
	if err != nil {
		log.Printf("Error updating cart line %s: %v", c.Params("id"), err)
		return writeDomainError(c, err)
	}
	return c.JSON(fiber.Map{
		"id":         line.ID,
		"product_id": line.ProductID,
		"quantity":   line.Quantity,
	})
}

// HandleRemoveLine removes a cart line by id. Unknown or foreign ids are 404.
func (h *CartHandler) HandleRemoveLine(c *fiber.Ctx) error {
	if err := h.service.RemoveLine(c.Context(), userID(c), c.Params("id")); err != nil {
		return writeDomainError(c, err)
	}
	return c.JSON(fiber.Map{
		"message": "Item removed from cart",
	})
}

// HandleRemoveProduct removes the line for a product. Removing a product that
// is not in the cart succeeds as a no-op.
func (h *CartHandler) HandleRemoveProduct(c *fiber.Ctx) error {
	if err := h.service.RemoveProduct(c.Context(), userID(c), c.Params("productId")); err != nil {
		log.Printf("Error removing product %s from cart: %v", c.Params("productId"), err)
		return writeDomainError(c, err)
	}
	return c.JSON(fiber.Map{
		"message": "Item removed from cart",
	})
}
