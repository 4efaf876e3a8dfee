package middleware

import (
	"github.com/gofiber/fiber/v2"

	"github.com/Windi-Fikriyansyah/partner_market_be/internal/auth"
)

const identityKey = "identity"

func setIdentity(c *fiber.Ctx, id *auth.Identity) {
	c.Locals(identityKey, id)
	c.Locals("userId", id.ID.String())
	c.Locals("role", string(id.Role))
}

// Identity returns the caller attached by RequireAuth/OptionalAuth, or nil.
func Identity(c *fiber.Ctx) *auth.Identity {
	id, _ := c.Locals(identityKey).(*auth.Identity)
	return id
}
