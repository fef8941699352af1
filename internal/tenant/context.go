package tenant

import (
	"github.com/ahmetcoskunkizilkaya/catalog-api/internal/models"
	"github.com/gofiber/fiber/v2"
)

const (
	tenantKey = "tenant_id"
	userKey   = "user"
)

// GetTenantID extracts the tenant_id from Fiber context locals.
func GetTenantID(c *fiber.Ctx) string {
	if id, ok := c.Locals(tenantKey).(string); ok {
		return id
	}
	return ""
}

func SetTenantID(c *fiber.Ctx, id string) {
	c.Locals(tenantKey, id)
}

// CurrentUser returns the user resolved by the authentication guard.
func CurrentUser(c *fiber.Ctx) (*models.User, bool) {
	u, ok := c.Locals(userKey).(*models.User)
	return u, ok && u != nil
}

func SetCurrentUser(c *fiber.Ctx, u *models.User) {
	c.Locals(userKey, u)
}
