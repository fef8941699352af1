package middleware

import (
	"github.com/ahmetcoskunkizilkaya/catalog-api/internal/auth"
	"github.com/ahmetcoskunkizilkaya/catalog-api/internal/tenant"
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

// OwnerLookup resolves the owner of the resource a request targets. It
// returns a not-found error when the resource does not exist.
type OwnerLookup func(c *fiber.Ctx) (uuid.UUID, error)

// RestrictTo lets the request through only for the listed roles. It must run
// after Protect.
func RestrictTo(roles ...string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		user, _ := tenant.CurrentUser(c)
		if err := auth.RequireRole(user, roles...); err != nil {
			return err
		}
		return c.Next()
	}
}

// Authorize lets admins through and otherwise requires the caller to own the
// resource. It must run after Protect.
func Authorize(lookup OwnerLookup) fiber.Handler {
	return func(c *fiber.Ctx) error {
		user, ok := tenant.CurrentUser(c)
		if !ok {
			return auth.ErrForbidden
		}
		if user.IsAdmin() {
			return c.Next()
		}

		owner, err := lookup(c)
		if err != nil {
			return err
		}
		if err := auth.RequireOwnerOrAdmin(user, owner); err != nil {
			return err
		}
		return c.Next()
	}
}
