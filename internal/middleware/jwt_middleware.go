package middleware

import (
	"log"
	"strings"

	"yourstyle/internal/services"

	"github.com/gofiber/fiber/v2"
)

// UserIDKey is the Locals key under which the resolved user id is stored.
const UserIDKey = "user_id"

// AuthRequired is a Fiber middleware that resolves the bearer credential in
// the Authorization header into a user id. Handlers downstream trust the
// resolved identity and never see the raw credential.
func AuthRequired(authService *services.AuthService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		authHeader := c.Get("Authorization")
		if authHeader == "" {
			return unauthorized(c, "Authorization header is required")
		}

		// Expected format: "Bearer <token>"
		parts := strings.SplitN(authHeader, " ", 2)
		if !(len(parts) == 2 && parts[0] == "Bearer") {
			return unauthorized(c, "Authorization header format must be 'Bearer <token>'")
		}

		claims, err := authService.ValidateToken(parts[1])
		if err != nil {
			log.Printf("JWT validation failed: %v", err)
			return unauthorized(c, "Invalid or expired token")
		}

		userID, ok := claims[UserIDKey].(string)
		if !ok || userID == "" {
			return unauthorized(c, "Token carries no user identity")
		}

		c.Locals(UserIDKey, userID)
		return c.Next()
	}
}

func unauthorized(c *fiber.Ctx, msg string) error {
	return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
		"error":   "unauthorized",
		"message": msg,
	})
}
