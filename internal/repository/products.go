package repository

import (
	"context"
	"fmt"

	"github.com/ahmetcoskunkizilkaya/catalog-api/internal/models"
	"github.com/ahmetcoskunkizilkaya/catalog-api/internal/query"
	"github.com/ahmetcoskunkizilkaya/catalog-api/internal/tenant"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// StatsMinRating is the lowest rating average counted by Stats.
const StatsMinRating = 3

var ProductFields = query.Fields{
	"id":              {Column: "id", Kind: query.UUID},
	"title":           {Column: "title", Kind: query.String},
	"slug":            {Column: "slug", Kind: query.String},
	"above18":         {Column: "above18", Kind: query.Bool},
	"ratingAverage":   {Column: "rating_average", Kind: query.Number},
	"ratingQuantity":  {Column: "rating_quantity", Kind: query.Number},
	"discountPercent": {Column: "discount_percent", Kind: query.Number},
	"price":           {Column: "price", Kind: query.Number},
	"createdBy":       {Column: "created_by", Kind: query.UUID},
	"createdAt":       {Column: "created_at", Kind: query.Time},
	"updatedAt":       {Column: "updated_at", Kind: query.Time},
}

type ProductRepository interface {
	Create(ctx context.Context, p *models.Product) error
	FindByID(ctx context.Context, tenantID string, id uuid.UUID) (*models.Product, error)
	Update(ctx context.Context, tenantID string, id uuid.UUID, fields map[string]any) (*models.Product, error)
	Delete(ctx context.Context, tenantID string, id uuid.UUID) error
	List(ctx context.Context, tenantID string, spec query.Spec) ([]models.Product, error)
	Stats(ctx context.Context, tenantID string) ([]models.ProductStat, error)
	SetRating(ctx context.Context, tenantID string, id uuid.UUID, summary models.RatingSummary) error
}

type GormProductRepository struct {
	db *gorm.DB
}

func NewProductRepository(db *gorm.DB) *GormProductRepository {
	return &GormProductRepository{db: db}
}

func (r *GormProductRepository) scoped(ctx context.Context, tenantID string) *gorm.DB {
	return r.db.WithContext(ctx).Model(&models.Product{}).Scopes(tenant.ForTenant(tenantID))
}

func (r *GormProductRepository) Create(ctx context.Context, p *models.Product) error {
	return translate(r.db.WithContext(ctx).Create(p).Error)
}

func (r *GormProductRepository) FindByID(ctx context.Context, tenantID string, id uuid.UUID) (*models.Product, error) {
	var p models.Product
	if err := r.scoped(ctx, tenantID).Where("id = ?", id).First(&p).Error; err != nil {
		return nil, translate(err)
	}
	return &p, nil
}

func (r *GormProductRepository) Update(ctx context.Context, tenantID string, id uuid.UUID, fields map[string]any) (*models.Product, error) {
	res := r.scoped(ctx, tenantID).Where("id = ?", id).Updates(fields)
	if res.Error != nil {
		return nil, translate(res.Error)
	}
	if res.RowsAffected == 0 {
		return nil, ErrNotFound
	}
	return r.FindByID(ctx, tenantID, id)
}

func (r *GormProductRepository) Delete(ctx context.Context, tenantID string, id uuid.UUID) error {
	res := r.db.WithContext(ctx).
		Scopes(tenant.ForTenant(tenantID)).
		Where("id = ?", id).
		Delete(&models.Product{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *GormProductRepository) List(ctx context.Context, tenantID string, spec query.Spec) ([]models.Product, error) {
	q, err := query.Apply(r.scoped(ctx, tenantID), spec, ProductFields)
	if err != nil {
		return nil, err
	}
	var products []models.Product
	if err := q.Find(&products).Error; err != nil {
		return nil, fmt.Errorf("failed to list products: %w", err)
	}
	return products, nil
}

// Stats groups well-rated products by owner, busiest owners first.
func (r *GormProductRepository) Stats(ctx context.Context, tenantID string) ([]models.ProductStat, error) {
	var stats []models.ProductStat
	err := r.scoped(ctx, tenantID).
		Select(`created_by AS owner,
			COUNT(*) AS number_of_products,
			AVG(rating_average) AS average_rating,
			AVG(price) AS avg_price,
			MIN(price) AS min_price,
			MAX(price) AS max_price`).
		Where("rating_average >= ?", StatsMinRating).
		Group("created_by").
		Order("number_of_products DESC").
		Scan(&stats).Error
	if err != nil {
		return nil, fmt.Errorf("failed to compute product stats: %w", err)
	}
	return stats, nil
}

// SetRating writes the denormalized rating fields. A missing product is not
// an error.
func (r *GormProductRepository) SetRating(ctx context.Context, tenantID string, id uuid.UUID, summary models.RatingSummary) error {
	return r.scoped(ctx, tenantID).
		Where("id = ?", id).
		Updates(map[string]any{
			"rating_quantity": summary.Quantity,
			"rating_average":  summary.Average,
		}).Error
}
