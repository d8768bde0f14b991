package handlers_test

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"yourstyle/internal/handlers"
	"yourstyle/internal/middleware"
	"yourstyle/internal/models"
	"yourstyle/internal/repositories"
	"yourstyle/internal/services"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

type testEnv struct {
	app      *fiber.App
	auth     *services.AuthService
	db       *gorm.DB
	products repositories.ProductRepository
}

// setupApp builds a full Fiber app over an in-memory SQLite database with all
// handlers, services and middleware wired, mirroring the production wiring.
func setupApp(t *testing.T) *testEnv {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", strings.ReplaceAll(t.Name(), "/", "_"))
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(
		&models.Product{},
		&models.CartItem{},
		&models.Order{},
		&models.OrderItem{},
	))

	productRepo := repositories.NewGORMProductRepository(db)
	cartRepo := repositories.NewGORMCartRepository(db)
	uow := repositories.NewGORMUnitOfWork(db)

	cartService := services.NewCartService(cartRepo, productRepo)
	checkoutService := services.NewCheckoutService(uow, nil)
	authService := services.NewAuthService("test_jwt_secret")

	cartHandler := handlers.NewCartHandler(cartService)
	orderHandler := handlers.NewOrderHandler(checkoutService)

	app := fiber.New()
	apiV1 := app.Group("/api/v1", middleware.AuthRequired(authService))
	cartHandler.RegisterRoutes(apiV1)
	orderHandler.RegisterRoutes(apiV1)

	return &testEnv{app: app, auth: authService, db: db, products: productRepo}
}

func (e *testEnv) seedProduct(t *testing.T, name string, priceCents int64) *models.Product {
	t.Helper()
	p := &models.Product{Name: name, Category: "tops", PriceCents: priceCents}
	require.NoError(t, e.products.Create(p))
	return p
}

func (e *testEnv) request(t *testing.T, method, path, token string, body interface{}) *http.Response {
	t.Helper()

	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(payload)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := e.app.Test(req, -1)
	require.NoError(t, err)
	return resp
}

func decodeBody(t *testing.T, resp *http.Response) map[string]interface{} {
	t.Helper()
	defer resp.Body.Close()
	var out map[string]interface{}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&out))
	return out
}

func (e *testEnv) tokenFor(t *testing.T, userID string) string {
	t.Helper()
	token, err := e.auth.TokenFor(userID)
	require.NoError(t, err)
	return token
}

func TestRoutesRequireAuth(t *testing.T) {
	env := setupApp(t)

	for _, route := range []struct{ method, path string }{
		{http.MethodGet, "/api/v1/cart"},
		{http.MethodPost, "/api/v1/cart"},
		{http.MethodPost, "/api/v1/orders"},
		{http.MethodGet, "/api/v1/orders"},
	} {
		resp := env.request(t, route.method, route.path, "", nil)
		assert.Equal(t, http.StatusUnauthorized, resp.StatusCode, "%s %s", route.method, route.path)
		body := decodeBody(t, resp)
		assert.Equal(t, "unauthorized", body["error"])
	}
}

func TestCartEndpoints(t *testing.T) {
	env := setupApp(t)
	tee := env.seedProduct(t, "Classic White Tee", 1999)
	token := env.tokenFor(t, "user-1")

	// Empty cart view.
	resp := env.request(t, http.MethodGet, "/api/v1/cart", token, nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	body := decodeBody(t, resp)
	assert.Equal(t, float64(0), body["total_cents"])
	assert.Empty(t, body["items"])

	// Add an item.
	resp = env.request(t, http.MethodPost, "/api/v1/cart", token, fiber.Map{
		"product_id": tee.ID,
		"quantity":   3,
	})
	assert.Equal(t, http.StatusCreated, resp.StatusCode)
	body = decodeBody(t, resp)
	lineID, _ := body["id"].(string)
	require.NotEmpty(t, lineID)
	assert.Equal(t, tee.ID, body["product_id"])
	assert.Equal(t, float64(3), body["quantity"])

	// Cart total is quantity times the current catalog price.
	resp = env.request(t, http.MethodGet, "/api/v1/cart", token, nil)
	body = decodeBody(t, resp)
	assert.Equal(t, float64(5997), body["total_cents"])

	// Update the quantity.
	resp = env.request(t, http.MethodPut, "/api/v1/cart/"+lineID, token, fiber.Map{"quantity": 1})
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	body = decodeBody(t, resp)
	assert.Equal(t, float64(1), body["quantity"])

	// Updating a line that is not ours is indistinguishable from a missing one.
	otherToken := env.tokenFor(t, "user-2")
	resp = env.request(t, http.MethodPut, "/api/v1/cart/"+lineID, otherToken, fiber.Map{"quantity": 5})
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)

	// Remove by product id: succeeds, and succeeds again as a no-op.
	resp = env.request(t, http.MethodDelete, "/api/v1/cart/by-product/"+tee.ID, token, nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	resp = env.request(t, http.MethodDelete, "/api/v1/cart/by-product/"+tee.ID, token, nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	// Remove by line id on a line that no longer exists is 404.
	resp = env.request(t, http.MethodDelete, "/api/v1/cart/"+lineID, token, nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestCartValidation(t *testing.T) {
	env := setupApp(t)
	tee := env.seedProduct(t, "Classic White Tee", 1999)
	token := env.tokenFor(t, "user-1")

	// Zero and negative quantities are rejected before touching the store.
	for _, qty := range []int{0, -1} {
		resp := env.request(t, http.MethodPost, "/api/v1/cart", token, fiber.Map{
			"product_id": tee.ID,
			"quantity":   qty,
		})
		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
		body := decodeBody(t, resp)
		assert.Equal(t, "invalid_quantity", body["error"])
	}

	// A body without product_id is malformed, not a quantity problem.
	resp := env.request(t, http.MethodPost, "/api/v1/cart", token, fiber.Map{
		"quantity": 1,
	})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	body := decodeBody(t, resp)
	assert.Equal(t, "invalid_request_body", body["error"])

	// Unknown product.
	resp = env.request(t, http.MethodPost, "/api/v1/cart", token, fiber.Map{
		"product_id": "no-such-product",
		"quantity":   1,
	})
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	body = decodeBody(t, resp)
	assert.Equal(t, "product_not_found", body["error"])
}

func TestCheckoutEndpoint(t *testing.T) {
	env := setupApp(t)
	tee := env.seedProduct(t, "Classic White Tee", 1999)
	jeans := env.seedProduct(t, "Slim Fit Jeans", 5499)
	token := env.tokenFor(t, "user-1")

	env.request(t, http.MethodPost, "/api/v1/cart", token, fiber.Map{"product_id": tee.ID, "quantity": 3})
	env.request(t, http.MethodPost, "/api/v1/cart", token, fiber.Map{"product_id": jeans.ID, "quantity": 1})

	// The body is ignored; everything derives from the server-side cart.
	resp := env.request(t, http.MethodPost, "/api/v1/orders", token, fiber.Map{})
	assert.Equal(t, http.StatusCreated, resp.StatusCode)
	body := decodeBody(t, resp)
	order, ok := body["order"].(map[string]interface{})
	require.True(t, ok)
	assert.Equal(t, float64(11496), order["total_cents"])
	assert.Equal(t, "pending", order["status"])
	items, ok := order["items"].([]interface{})
	require.True(t, ok)
	assert.Len(t, items, 2)

	// The cart is now empty, so a second submit is rejected.
	resp = env.request(t, http.MethodPost, "/api/v1/orders", token, fiber.Map{})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	body = decodeBody(t, resp)
	assert.Equal(t, "empty_cart", body["error"])

	resp = env.request(t, http.MethodGet, "/api/v1/cart", token, nil)
	body = decodeBody(t, resp)
	assert.Equal(t, float64(0), body["total_cents"])
}

func TestOrderHistoryEndpoints(t *testing.T) {
	env := setupApp(t)
	tee := env.seedProduct(t, "Classic White Tee", 1999)
	tokenA := env.tokenFor(t, "user-a")
	tokenB := env.tokenFor(t, "user-b")

	env.request(t, http.MethodPost, "/api/v1/cart", tokenA, fiber.Map{"product_id": tee.ID, "quantity": 1})
	resp := env.request(t, http.MethodPost, "/api/v1/orders", tokenA, fiber.Map{})
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	body := decodeBody(t, resp)
	order := body["order"].(map[string]interface{})
	orderID := order["id"].(string)

	// Owner sees the order in the list and by id.
	resp = env.request(t, http.MethodGet, "/api/v1/orders", tokenA, nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	body = decodeBody(t, resp)
	orders := body["orders"].([]interface{})
	require.Len(t, orders, 1)

	resp = env.request(t, http.MethodGet, "/api/v1/orders/"+orderID, tokenA, nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	// A different user gets 403 for an existing order, 404 for a bogus id.
	resp = env.request(t, http.MethodGet, "/api/v1/orders/"+orderID, tokenB, nil)
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)
	body = decodeBody(t, resp)
	assert.Equal(t, "forbidden", body["error"])

	resp = env.request(t, http.MethodGet, "/api/v1/orders/no-such-order", tokenB, nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	body = decodeBody(t, resp)
	assert.Equal(t, "not_found", body["error"])

	// And an empty history for the other user.
	resp = env.request(t, http.MethodGet, "/api/v1/orders", tokenB, nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	body = decodeBody(t, resp)
	assert.Empty(t, body["orders"])
}
