package routes

import (
	"github.com/ahmetcoskunkizilkaya/catalog-api/internal/apperr"
	"github.com/ahmetcoskunkizilkaya/catalog-api/internal/config"
	"github.com/ahmetcoskunkizilkaya/catalog-api/internal/middleware"
	"github.com/ahmetcoskunkizilkaya/catalog-api/internal/models"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/limiter"
)

var ErrTooManyRequests = apperr.RateLimited("Too many requests from this IP, please try again later!")

func Setup(app *fiber.App, cfg *config.Config, h *Handlers) {
	api := app.Group("/api")

	// General API rate limit per IP
	api.Use(rateLimit(cfg.RateLimitMax, cfg))

	// Health (no tenant required)
	api.Get("/health", h.Health.Check)

	v1 := api.Group("/v1")
	// Tenant resolution is attached per route so unmatched paths fall
	// through to the 404 handler.
	tenantScoped := h.Tenant
	protect := h.Protect
	adminOnly := middleware.RestrictTo(models.RoleAdmin)
	userOnly := middleware.RestrictTo(models.RoleUser)

	// Auth: public, stricter rate limit
	authLimit := rateLimit(max(cfg.RateLimitMax/10, 1), cfg)
	users := v1.Group("/users")
	users.Post("/signup", tenantScoped, authLimit, h.Auth.Signup)
	users.Post("/login", tenantScoped, authLimit, h.Auth.Login)
	users.Post("/forgot-password", tenantScoped, authLimit, h.Auth.ForgotPassword)
	users.Patch("/reset-password/:token", tenantScoped, authLimit, h.Auth.ResetPassword)

	// Current user
	users.Patch("/update-password", tenantScoped, protect, h.Auth.UpdatePassword)
	users.Get("/me", tenantScoped, protect, h.User.Me)
	users.Patch("/update-me", tenantScoped, protect, h.User.UpdateMe)
	users.Patch("/delete-me", tenantScoped, protect, h.User.DeleteMe)

	// User administration
	users.Get("/", tenantScoped, protect, adminOnly, h.User.List)
	users.Get("/get-user/:id", tenantScoped, protect, adminOnly, h.User.Get)
	users.Patch("/update-user/:id", tenantScoped, protect, adminOnly, h.User.Update)
	users.Delete("/delete-user/:id", tenantScoped, protect, adminOnly, h.User.Delete)
	users.Get("/user-within/:distance/center/:latlng/unit/:unit", tenantScoped, protect, adminOnly, h.User.Within)

	// Products: aliases before :id
	products := v1.Group("/products", tenantScoped, protect)
	products.Get("/", h.Product.List)
	products.Post("/", userOnly, h.Product.Create)
	products.Get("/top-5-products", h.Product.TopFive)
	products.Get("/product-stats", h.Product.Stats)
	products.Get("/:id", h.Product.Get)
	products.Patch("/:id", userOnly, middleware.Authorize(h.Product.Owner()), h.Product.Update)
	products.Delete("/:id", middleware.Authorize(h.Product.Owner()), h.Product.Delete)

	// Reviews nested under their product
	reviews := products.Group("/:productId/reviews")
	reviews.Get("/", h.Review.List)
	reviews.Post("/", userOnly, h.Review.Create)
	reviews.Patch("/:id", userOnly, middleware.Authorize(h.Review.Owner()), h.Review.Update)
	reviews.Delete("/:id", middleware.Authorize(h.Review.Owner()), h.Review.Delete)

	app.Use(apperr.NotFoundRoute)
}

func rateLimit(maxRequests int, cfg *config.Config) fiber.Handler {
	return limiter.New(limiter.Config{
		Max:               maxRequests,
		Expiration:        cfg.RateLimitWindow,
		LimiterMiddleware: limiter.SlidingWindow{},
		KeyGenerator:      func(c *fiber.Ctx) string { return c.IP() },
		LimitReached: func(c *fiber.Ctx) error {
			return ErrTooManyRequests
		},
	})
}
