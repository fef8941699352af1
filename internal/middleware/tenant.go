package middleware

import (
	"strings"

	"github.com/ahmetcoskunkizilkaya/catalog-api/internal/apperr"
	"github.com/ahmetcoskunkizilkaya/catalog-api/internal/tenant"
	"github.com/gofiber/fiber/v2"
)

const TenantHeader = "X-Tenant-ID"

// Paths that don't require tenant identification.
var tenantSkipPaths = []string{
	"/api/health",
}

// TenantMiddleware resolves the tenant from the X-Tenant-ID header, falling
// back to the tenant_id query parameter.
func TenantMiddleware(registry *tenant.Registry) fiber.Handler {
	return func(c *fiber.Ctx) error {
		path := c.Path()
		for _, skip := range tenantSkipPaths {
			if strings.HasPrefix(path, skip) {
				return c.Next()
			}
		}

		id := strings.TrimSpace(c.Get(TenantHeader))
		if id == "" {
			id = strings.TrimSpace(c.Query("tenant_id"))
		}
		if id == "" {
			return apperr.Validation(TenantHeader + " header is required")
		}
		if !registry.Exists(id) {
			return apperr.Validation("Invalid " + TenantHeader + ": " + id)
		}

		tenant.SetTenantID(c, id)
		return c.Next()
	}
}
