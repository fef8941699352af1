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

type ProductHandler struct {
	products *services.ProductService
}

func NewProductHandler(products *services.ProductService) *ProductHandler {
	return &ProductHandler{products: products}
}

func (h *ProductHandler) List(c *fiber.Ctx) error {
	return h.list(c, listSpec(c))
}

// TopFive serves the top-5-products alias with its preset query.
func (h *ProductHandler) TopFive(c *fiber.Ctx) error {
	return h.list(c, query.Build(services.TopProductsParams))
}

func (h *ProductHandler) list(c *fiber.Ctx, spec query.Spec) error {
	products, err := h.products.List(c.UserContext(), tenant.GetTenantID(c), currentUser(c), spec)
	if err != nil {
		return err
	}

	out, err := query.Project(dto.NewProductResponses(products), spec.Projection)
	if err != nil {
		return err
	}
	return c.JSON(dto.List("data", out, len(out)))
}

func (h *ProductHandler) Stats(c *fiber.Ctx) error {
	stats, err := h.products.Stats(c.UserContext(), tenant.GetTenantID(c))
	if err != nil {
		return err
	}

	out := make([]dto.ProductStatResponse, len(stats))
	for i, s := range stats {
		out[i] = dto.ProductStatResponse{
			Owner:            s.Owner,
			NumberOfProducts: s.NumberOfProducts,
			AverageRating:    s.AverageRating,
			AvgPrice:         s.AvgPrice,
			MinPrice:         s.MinPrice,
			MaxPrice:         s.MaxPrice,
		}
	}
	return c.JSON(dto.Success("stats", out))
}

func (h *ProductHandler) Get(c *fiber.Ctx) error {
	id, err := paramUUID(c, "id")
	if err != nil {
		return err
	}

	product, reviews, err := h.products.Get(c.UserContext(), tenant.GetTenantID(c), currentUser(c), id)
	if err != nil {
		return err
	}
	return c.JSON(dto.Success("data", dto.ProductDetail{
		ProductResponse: dto.NewProductResponse(product),
		Reviews:         reviews,
	}))
}

func (h *ProductHandler) Create(c *fiber.Ctx) error {
	var req dto.CreateProductRequest
	if err := bind(c, &req); err != nil {
		return err
	}

	product, err := h.products.Create(c.UserContext(), tenant.GetTenantID(c), currentUser(c).ID, &req)
	if err != nil {
		return err
	}
	return c.Status(fiber.StatusCreated).JSON(dto.Success("data", dto.NewProductResponse(product)))
}

func (h *ProductHandler) Update(c *fiber.Ctx) error {
	id, err := paramUUID(c, "id")
	if err != nil {
		return err
	}
	var req dto.UpdateProductRequest
	if err := bind(c, &req); err != nil {
		return err
	}

	product, err := h.products.Update(c.UserContext(), tenant.GetTenantID(c), id, &req)
	if err != nil {
		return err
	}
	return c.JSON(dto.Success("data", dto.NewProductResponse(product)))
}

func (h *ProductHandler) Delete(c *fiber.Ctx) error {
	id, err := paramUUID(c, "id")
	if err != nil {
		return err
	}

	if err := h.products.Delete(c.UserContext(), tenant.GetTenantID(c), id); err != nil {
		return err
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// Owner resolves the owner of the product named by :id.
func (h *ProductHandler) Owner() middleware.OwnerLookup {
	return func(c *fiber.Ctx) (uuid.UUID, error) {
		id, err := paramUUID(c, "id")
		if err != nil {
			return uuid.Nil, err
		}
		return h.products.Owner(c.UserContext(), tenant.GetTenantID(c), id)
	}
}
