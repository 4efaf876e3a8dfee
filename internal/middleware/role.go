package middleware

import (
	"github.com/gofiber/fiber/v2"

	"github.com/Windi-Fikriyansyah/partner_market_be/internal/auth"
	"github.com/Windi-Fikriyansyah/partner_market_be/internal/models"
)

// RequireRoles must run after RequireAuth.
func RequireRoles(allowed ...models.Role) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if err := auth.RequireRole(Identity(c), allowed...); err != nil {
			return err
		}
		return c.Next()
	}
}
