package routes

import (
	"github.com/ahmetcoskunkizilkaya/catalog-api/internal/auth"
	"github.com/ahmetcoskunkizilkaya/catalog-api/internal/config"
	"github.com/ahmetcoskunkizilkaya/catalog-api/internal/handlers"
	"github.com/ahmetcoskunkizilkaya/catalog-api/internal/middleware"
	"github.com/ahmetcoskunkizilkaya/catalog-api/internal/repository"
	"github.com/ahmetcoskunkizilkaya/catalog-api/internal/services"
	"github.com/ahmetcoskunkizilkaya/catalog-api/internal/tenant"
	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

// Handlers is everything Setup mounts.
type Handlers struct {
	Auth    *handlers.AuthHandler
	User    *handlers.UserHandler
	Product *handlers.ProductHandler
	Review  *handlers.ReviewHandler
	Health  *handlers.HealthHandler
	Tenant  fiber.Handler
	Protect fiber.Handler
}

// NewHandlers wires repositories, services and handlers over db.
func NewHandlers(db *gorm.DB, cfg *config.Config, registry *tenant.Registry, mail services.Mailer) (*Handlers, error) {
	passwords, err := auth.NewPasswords(cfg.PasswordHasher, cfg.BcryptCost)
	if err != nil {
		return nil, err
	}
	tokens := auth.NewTokenService(cfg.JWTSecret, cfg.JWTExpiresIn)

	users := repository.NewUserRepository(db)
	products := repository.NewProductRepository(db)
	reviews := repository.NewReviewRepository(db)

	authService := services.NewAuthService(users, passwords, tokens, mail, cfg.AdminEmailList())
	productService := services.NewProductService(products, reviews)
	aggregator := services.NewRatingAggregator(reviews, products)

	return &Handlers{
		Auth:    handlers.NewAuthHandler(authService, cfg.AppURL),
		User:    handlers.NewUserHandler(services.NewUserService(users)),
		Product: handlers.NewProductHandler(productService),
		Review:  handlers.NewReviewHandler(services.NewReviewService(reviews, productService, aggregator)),
		Health:  handlers.NewHealthHandler(db, registry),
		Tenant:  middleware.TenantMiddleware(registry),
		Protect: middleware.Protect(tokens, authService),
	}, nil
}
