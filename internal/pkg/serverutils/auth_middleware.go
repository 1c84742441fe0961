package serverutils

import (
	"crypto/subtle"
	"strings"

	"github.com/gofiber/fiber/v2"
)

// APIKeyMiddleware accepts "Authorization: Bearer <key>" for a single
// configured key.
func APIKeyMiddleware(apiKey string) fiber.Handler {
	return func(ctx *fiber.Ctx) error {
		authHeader := ctx.Get(fiber.HeaderAuthorization)
		token, ok := strings.CutPrefix(authHeader, "Bearer ")
		if !ok || token == "" {
			return fiber.NewError(fiber.StatusUnauthorized, "Missing or malformed authorization header")
		}
		if apiKey == "" || subtle.ConstantTimeCompare([]byte(token), []byte(apiKey)) != 1 {
			return fiber.NewError(fiber.StatusUnauthorized, "Invalid API key")
		}
		return ctx.Next()
	}
}
