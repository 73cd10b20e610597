package middleware

import (
	"github.com/gofiber/fiber/v2"
	"golang.org/x/crypto/bcrypt"
)

const operatorKeyHeader = "X-Operator-Key"

// OperatorKey guards operator endpoints with a single shared API key,
// configured as a bcrypt hash so the plaintext never lives in the
// environment. An empty hash disables the guard; the route wiring only
// allows that in development mode.
func OperatorKey(keyHash string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if keyHash == "" {
			return c.Next()
		}
		provided := c.Get(operatorKeyHeader)
		if provided == "" {
			return fiber.NewError(fiber.StatusUnauthorized, "missing operator key")
		}
		if err := bcrypt.CompareHashAndPassword([]byte(keyHash), []byte(provided)); err != nil {
			return fiber.NewError(fiber.StatusUnauthorized, "invalid operator key")
		}
		return c.Next()
	}
}
