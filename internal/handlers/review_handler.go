package handlers

import (
	"github.com/ahmetcoskunkizilkaya/catalog-api/internal/dto"
	"github.com/ahmetcoskunkizilkaya/catalog-api/internal/middleware"
	"github.com/ahmetcoskunkizilkaya/catalog-api/internal/query"
	"github.com/ahmetcoskunkizilkaya/catalog-api/internal/services"
	"github.com/ahmetcoskunkizilkaya/catalog-api/internal/tenant"
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

type ReviewHandler struct {
	reviews *services.ReviewService
}

func NewReviewHandler(reviews *services.ReviewService) *ReviewHandler {
	return &ReviewHandler{reviews: reviews}
}

func (h *ReviewHandler) List(c *fiber.Ctx) error {
	productID, err := paramUUID(c, "productId")
	if err != nil {
		return err
	}

	spec := listSpec(c)
	reviews, err := h.reviews.List(c.UserContext(), tenant.GetTenantID(c), productID, spec)
	if err != nil {
		return err
	}

	out, err := query.Project(reviews, spec.Projection)
	if err != nil {
		return err
	}
	return c.JSON(dto.List("data", out, len(out)))
}

func (h *ReviewHandler) Create(c *fiber.Ctx) error {
	productID, err := paramUUID(c, "productId")
	if err != nil {
		return err
	}
	var req dto.CreateReviewRequest
	if err := bind(c, &req); err != nil {
		return err
	}

	review, err := h.reviews.Create(c.UserContext(), tenant.GetTenantID(c), productID, currentUser(c).ID, &req)
	if err != nil {
		return err
	}
	return c.Status(fiber.StatusCreated).JSON(dto.Success("data", review))
}

func (h *ReviewHandler) Update(c *fiber.Ctx) error {
	productID, id, err := reviewParams(c)
	if err != nil {
		return err
	}
	var req dto.UpdateReviewRequest
	if err := bind(c, &req); err != nil {
		return err
	}

	review, err := h.reviews.Update(c.UserContext(), tenant.GetTenantID(c), productID, id, &req)
	if err != nil {
		return err
	}
	return c.JSON(dto.Success("data", review))
}

func (h *ReviewHandler) Delete(c *fiber.Ctx) error {
	productID, id, err := reviewParams(c)
	if err != nil {
		return err
	}

	if err := h.reviews.Delete(c.UserContext(), tenant.GetTenantID(c), productID, id); err != nil {
		return err
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// Owner resolves the author of the review named by :productId and :id.
func (h *ReviewHandler) Owner() middleware.OwnerLookup {
	return func(c *fiber.Ctx) (uuid.UUID, error) {
		productID, id, err := reviewParams(c)
		if err != nil {
			return uuid.Nil, err
		}
		return h.reviews.Owner(c.UserContext(), tenant.GetTenantID(c), productID, id)
	}
}

func reviewParams(c *fiber.Ctx) (uuid.UUID, uuid.UUID, error) {
	productID, err := paramUUID(c, "productId")
	if err != nil {
		return uuid.Nil, uuid.Nil, err
	}
	id, err := paramUUID(c, "id")
	if err != nil {
		return uuid.Nil, uuid.Nil, err
	}
	return productID, id, nil
}
