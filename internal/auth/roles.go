package auth

import (
	"net/http"

	"github.com/gofiber/fiber/v2"
)

// RequireAdmin rejects requests that did not pass through AuthMiddleware.
func RequireAdmin() fiber.Handler {
	return func(c *fiber.Ctx) error {
		if _, ok := SessionFromContext(c); !ok {
			return fiber.NewError(http.StatusUnauthorized, http.StatusText(http.StatusUnauthorized))
		}
		return c.Next()
	}
}
