package dto

import (
	"strings"
	"time"

	"github.com/ahmetcoskunkizilkaya/catalog-api/internal/models"
	"github.com/google/uuid"
)

type CreateProductRequest struct {
	Title           string   `json:"title" validate:"required,min=4,max=35"`
	Price           float64  `json:"price" validate:"required,gt=0"`
	Description     string   `json:"description" validate:"required"`
	Above18         bool     `json:"above18"`
	DiscountPercent float64  `json:"discountPercent" validate:"gte=0,lte=100"`
	ImageCover      string   `json:"imageCover" validate:"omitempty,max=255"`
	Images          []string `json:"images" validate:"omitempty,dive,max=255"`
}

func (r *CreateProductRequest) Normalize() {
	r.Title = strings.TrimSpace(r.Title)
	r.Description = strings.TrimSpace(r.Description)
}

// UpdateProductRequest carries the client-writable product fields. Rating
// fields are owned by the rating aggregator.
type UpdateProductRequest struct {
	Title           *string  `json:"title" validate:"omitempty,min=4,max=35"`
	Price           *float64 `json:"price" validate:"omitempty,gt=0"`
	Description     *string  `json:"description" validate:"omitempty,min=1"`
	Above18         *bool    `json:"above18"`
	DiscountPercent *float64 `json:"discountPercent" validate:"omitempty,gte=0,lte=100"`
	ImageCover      *string  `json:"imageCover" validate:"omitempty,max=255"`
	Images          []string `json:"images" validate:"omitempty,dive,max=255"`
}

func (r *UpdateProductRequest) Normalize() {
	if r.Title != nil {
		*r.Title = strings.TrimSpace(*r.Title)
	}
	if r.Description != nil {
		*r.Description = strings.TrimSpace(*r.Description)
	}
}

// ProductResponse is a product with its derived fields.
type ProductResponse struct {
	models.Product
	DiscountedPrice float64 `json:"discountedPrice"`
}

func NewProductResponse(p *models.Product) ProductResponse {
	return ProductResponse{Product: *p, DiscountedPrice: models.DiscountedPrice(p)}
}

func NewProductResponses(products []models.Product) []ProductResponse {
	out := make([]ProductResponse, len(products))
	for i := range products {
		out[i] = NewProductResponse(&products[i])
	}
	return out
}

// ProductDetail is a product together with its reviews.
type ProductDetail struct {
	ProductResponse
	Reviews []models.Review `json:"reviews"`
}

type ProductStatResponse struct {
	Owner            uuid.UUID `json:"_id"`
	NumberOfProducts int64     `json:"numberOfProducts"`
	AverageRating    float64   `json:"averageRating"`
	AvgPrice         float64   `json:"avgPrice"`
	MinPrice         float64   `json:"minPrice"`
	MaxPrice         float64   `json:"maxPrice"`
}

type HealthResponse struct {
	Status      string `json:"status"`
	Timestamp   string `json:"timestamp"`
	DB          string `json:"db"`
	TenantCount int    `json:"tenant_count"`
}

func NewHealthResponse(dbOK bool, tenants int, now time.Time) HealthResponse {
	resp := HealthResponse{
		Status:      "ok",
		Timestamp:   now.UTC().Format(time.RFC3339),
		DB:          "connected",
		TenantCount: tenants,
	}
	if !dbOK {
		resp.Status = "degraded"
		resp.DB = "disconnected"
	}
	return resp
}
