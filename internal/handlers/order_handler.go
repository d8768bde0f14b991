package handlers

import (
	"log"

	"yourstyle/internal/models"
	"yourstyle/internal/services"

	"github.com/gofiber/fiber/v2"
)

// OrderHandler handles HTTP requests for checkout and order history.
type OrderHandler struct {
	service *services.CheckoutService
}

// NewOrderHandler creates a new OrderHandler.
func NewOrderHandler(service *services.CheckoutService) *OrderHandler {
	return &OrderHandler{
		service: service,
	}
}

// RegisterRoutes registers the order routes with the Fiber app.
func (h *OrderHandler) RegisterRoutes(router fiber.Router) {
	orderRoutes := router.Group("/orders")
	orderRoutes.Post("/", h.HandleCheckout)
	orderRoutes.Get("/", h.HandleListOrders)
	orderRoutes.Get("/:id", h.HandleGetOrder)
}

// HandleCheckout places an order from the server-side cart. The request body
// is ignored: every input (lines, quantities, prices) comes from the store,
// never from the client.
func (h *OrderHandler) HandleCheckout(c *fiber.Ctx) error {
	order, err := h.service.Checkout(c.Context(), userID(c))
	if err != nil {
		log.Printf("Checkout failed for user %s: %v", userID(c), err)
		return writeDomainError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"order": order,
	})
}

// HandleListOrders returns the caller's order history, newest first.
func (h *OrderHandler) HandleListOrders(c *fiber.Ctx) error {
	orders, err := h.service.ListOrders(c.Context(), userID(c))
	if err != nil {
		log.Printf("Error listing orders for user %s: %v", userID(c), err)
		return writeDomainError(c, err)
	}
	if orders == nil {
		orders = []models.Order{}
	}
	return c.JSON(fiber.Map{
		"orders": orders,
	})
}

// HandleGetOrder returns one order. A wrong owner gets 403, an unknown id 404.
func (h *OrderHandler) HandleGetOrder(c *fiber.Ctx) error {
	order, err := h.service.GetOrder(c.Context(), userID(c), c.Params("id"))
	if err != nil {
		log.Printf("Error getting order %s: %v", c.Params("id"), err)
		return writeDomainError(c, err)
	}
	return c.JSON(fiber.Map{
		"order": order,
	})
}
