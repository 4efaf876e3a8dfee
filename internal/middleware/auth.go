package middleware

import (
	"github.com/gofiber/fiber/v2"

	"github.com/Windi-Fikriyansyah/partner_market_be/internal/auth"
)

// RequireAuth rejects the request unless the Authorization header carries a
// valid bearer token for an existing user.
func RequireAuth(guard *auth.Guard) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, err := guard.Authenticate(c.UserContext(), c.Get(fiber.HeaderAuthorization))
		if err != nil {
			return err
		}
		setIdentity(c, id)
		return c.Next()
	}
}

// OptionalAuth attaches the identity when one can be resolved and lets the
// request through either way.
func OptionalAuth(guard *auth.Guard) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, err := guard.AuthenticateOptional(c.UserContext(), c.Get(fiber.HeaderAuthorization))
		if err != nil {
			return err
		}
		if id != nil {
			setIdentity(c, id)
		}
		return c.Next()
	}
}
