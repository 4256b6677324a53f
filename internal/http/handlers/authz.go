package handlers

import (
	"github.com/gofiber/fiber/v2"
	"golang.org/x/crypto/bcrypt"

	applog "nynth/internal/log"
)

// RequireAdmin guards the admin console endpoints with a bearer token checked
// against a bcrypt hash from configuration. An empty hash locks the console.
func RequireAdmin(tokenHash string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		token := c.Get("X-Admin-Token")
		if tokenHash == "" || token == "" {
			applog.Security(c, "admin.denied", nil)
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "unauthorized"})
		}
		if err := bcrypt.CompareHashAndPassword([]byte(tokenHash), []byte(token)); err != nil {
			applog.Security(c, "admin.denied", nil)
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "unauthorized"})
		}
		return c.Next()
	}
}
