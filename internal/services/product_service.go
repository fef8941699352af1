package services

import (
	"context"
	"time"

	"github.com/ahmetcoskunkizilkaya/catalog-api/internal/apperr"
	"github.com/ahmetcoskunkizilkaya/catalog-api/internal/auth"
	"github.com/ahmetcoskunkizilkaya/catalog-api/internal/dto"
	"github.com/ahmetcoskunkizilkaya/catalog-api/internal/models"
	"github.com/ahmetcoskunkizilkaya/catalog-api/internal/query"
	"github.com/ahmetcoskunkizilkaya/catalog-api/internal/repository"
	"github.com/google/uuid"
	"github.com/gosimple/slug"
	"gorm.io/datatypes"
)

var (
	ErrProductNotFound = apperr.NotFound("No product found with that ID")
	ErrRestricted      = apperr.Authorization("Restricted content")
)

// TopProductsParams is the preset query of the top-5-products alias.
var TopProductsParams = map[string]string{
	"limit":  "5",
	"sort":   "-ratingAverage,price",
	"fields": "title,price,ratingAverage,description,imageCover",
}

type ProductService struct {
	products repository.ProductRepository
	reviews  repository.ReviewRepository
	now      func() time.Time
}

func NewProductService(products repository.ProductRepository, reviews repository.ReviewRepository) *ProductService {
	return &ProductService{products: products, reviews: reviews, now: time.Now}
}

func (s *ProductService) WithClock(now func() time.Time) *ProductService {
	cp := *s
	cp.now = now
	return &cp
}

// List applies spec and hides adult products from viewers under 18.
func (s *ProductService) List(ctx context.Context, tenantID string, viewer *models.User, spec query.Spec) ([]models.Product, error) {
	if s.isMinor(viewer) {
		spec = spec.With(query.Predicate{Field: "above18", Op: query.OpEq, Value: "false"})
	}
	return s.products.List(ctx, tenantID, spec)
}

// Get returns a product with its reviews.
func (s *ProductService) Get(ctx context.Context, tenantID string, viewer *models.User, id uuid.UUID) (*models.Product, []models.Review, error) {
	p, err := s.Find(ctx, tenantID, id)
	if err != nil {
		return nil, nil, err
	}
	if p.Above18 && s.isMinor(viewer) {
		return nil, nil, ErrRestricted
	}

	reviews, err := s.reviews.List(ctx, tenantID, id, query.Build(map[string]string{
		"limit": "100",
		"sort":  "-createdAt",
	}))
	if err != nil {
		return nil, nil, err
	}
	return p, reviews, nil
}

func (s *ProductService) Find(ctx context.Context, tenantID string, id uuid.UUID) (*models.Product, error) {
	p, err := s.products.FindByID(ctx, tenantID, id)
	return p, notFoundAs(err, ErrProductNotFound)
}

// Owner resolves the user who created the product.
func (s *ProductService) Owner(ctx context.Context, tenantID string, id uuid.UUID) (uuid.UUID, error) {
	p, err := s.Find(ctx, tenantID, id)
	if err != nil {
		return uuid.Nil, err
	}
	return p.CreatedBy, nil
}

func (s *ProductService) Create(ctx context.Context, tenantID string, owner uuid.UUID, req *dto.CreateProductRequest) (*models.Product, error) {
	p := &models.Product{
		ID:              uuid.New(),
		TenantID:        tenantID,
		Title:           req.Title,
		Slug:            slug.Make(req.Title),
		Above18:         req.Above18,
		RatingAverage:   models.DefaultRatingAverage,
		RatingQuantity:  models.DefaultRatingQuantity,
		DiscountPercent: req.DiscountPercent,
		Price:           req.Price,
		ImageCover:      req.ImageCover,
		Images:          datatypes.JSONSlice[string](req.Images),
		Description:     req.Description,
		CreatedBy:       owner,
	}
	if err := s.products.Create(ctx, p); err != nil {
		return nil, err
	}
	return p, nil
}

func (s *ProductService) Update(ctx context.Context, tenantID string, id uuid.UUID, req *dto.UpdateProductRequest) (*models.Product, error) {
	fields := map[string]any{}
	if req.Title != nil {
		fields["title"] = *req.Title
		fields["slug"] = slug.Make(*req.Title)
	}
	if req.Price != nil {
		fields["price"] = *req.Price
	}
	if req.Description != nil {
		fields["description"] = *req.Description
	}
	if req.Above18 != nil {
		fields["above18"] = *req.Above18
	}
	if req.DiscountPercent != nil {
		fields["discount_percent"] = *req.DiscountPercent
	}
	if req.ImageCover != nil {
		fields["image_cover"] = *req.ImageCover
	}
	if req.Images != nil {
		fields["images"] = datatypes.JSONSlice[string](req.Images)
	}
	if len(fields) == 0 {
		return s.Find(ctx, tenantID, id)
	}

	p, err := s.products.Update(ctx, tenantID, id, fields)
	return p, notFoundAs(err, ErrProductNotFound)
}

// Delete removes the product. Its reviews are kept and no longer counted
// anywhere.
func (s *ProductService) Delete(ctx context.Context, tenantID string, id uuid.UUID) error {
	return notFoundAs(s.products.Delete(ctx, tenantID, id), ErrProductNotFound)
}

func (s *ProductService) Stats(ctx context.Context, tenantID string) ([]models.ProductStat, error) {
	return s.products.Stats(ctx, tenantID)
}

func (s *ProductService) isMinor(viewer *models.User) bool {
	return viewer != nil && auth.IsMinor(viewer.DOB, s.now())
}
