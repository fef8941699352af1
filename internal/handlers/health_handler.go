package handlers

import (
	"context"
	"time"

	"github.com/ahmetcoskunkizilkaya/catalog-api/internal/database"
	"github.com/ahmetcoskunkizilkaya/catalog-api/internal/dto"
	"github.com/ahmetcoskunkizilkaya/catalog-api/internal/tenant"
	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

const healthPingTimeout = 2 * time.Second

type HealthHandler struct {
	db       *gorm.DB
	registry *tenant.Registry
}

func NewHealthHandler(db *gorm.DB, registry *tenant.Registry) *HealthHandler {
	return &HealthHandler{db: db, registry: registry}
}

func (h *HealthHandler) Check(c *fiber.Ctx) error {
	ctx, cancel := context.WithTimeout(c.UserContext(), healthPingTimeout)
	defer cancel()

	dbOK := database.Ping(ctx, h.db) == nil
	resp := dto.NewHealthResponse(dbOK, h.registry.Len(), time.Now())
	if !dbOK {
		return c.Status(fiber.StatusServiceUnavailable).JSON(resp)
	}
	return c.JSON(resp)
}
