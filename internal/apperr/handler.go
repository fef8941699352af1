package apperr

import (
	"log/slog"

	"github.com/ahmetcoskunkizilkaya/catalog-api/internal/tenant"
	sentryfiber "github.com/getsentry/sentry-go/fiber"
	"github.com/gofiber/fiber/v2"
)

// Response is the error envelope shared by every endpoint.
type Response struct {
	Status  string `json:"status"`
	Message string `json:"message"`
}

// Handler is the application's fiber.ErrorHandler. Every handler and
// middleware returns errors here instead of writing error bodies itself.
func Handler(c *fiber.Ctx, err error) error {
	appErr := From(err)
	code := appErr.Kind.Status()

	status := "fail"
	message := appErr.Message

	// Server error details stay in the logs unless marked public.
	if code >= fiber.StatusInternalServerError {
		status = "error"
		if !appErr.Public {
			message = "Something went wrong"
		}

		attrs := []any{
			"method", c.Method(),
			"path", c.Path(),
			"status", code,
			"error", err.Error(),
			"tenant_id", tenant.GetTenantID(c),
		}
		if rid, ok := c.Locals("requestid").(string); ok {
			attrs = append(attrs, "request_id", rid)
		}
		if u, ok := tenant.CurrentUser(c); ok {
			attrs = append(attrs, "user_id", u.ID.String())
		}
		slog.Error("unhandled server error", attrs...)

		if hub := sentryfiber.GetHubFromContext(c); hub != nil {
			hub.CaptureException(err)
		}
	}

	return c.Status(code).JSON(Response{
		Status:  status,
		Message: message,
	})
}

// NotFoundRoute answers requests that matched no route.
func NotFoundRoute(c *fiber.Ctx) error {
	return NotFound("Can't find " + c.OriginalURL() + " on this server!")
}
