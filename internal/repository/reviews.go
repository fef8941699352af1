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

var ReviewFields = query.Fields{
	"id":        {Column: "id", Kind: query.UUID},
	"rating":    {Column: "rating", Kind: query.Number},
	"user":      {Column: "user_id", Kind: query.UUID},
	"createdAt": {Column: "created_at", Kind: query.Time},
	"updatedAt": {Column: "updated_at", Kind: query.Time},
}

type ReviewRepository interface {
	Create(ctx context.Context, rv *models.Review) error
	FindByID(ctx context.Context, tenantID string, productID, id uuid.UUID) (*models.Review, error)
	ExistsForUser(ctx context.Context, tenantID string, productID, userID uuid.UUID) (bool, error)
	List(ctx context.Context, tenantID string, productID uuid.UUID, spec query.Spec) ([]models.Review, error)
	Update(ctx context.Context, tenantID string, productID, id uuid.UUID, fields map[string]any) (*models.Review, error)
	Delete(ctx context.Context, tenantID string, productID, id uuid.UUID) error
	RatingSummary(ctx context.Context, tenantID string, productID uuid.UUID) (models.RatingSummary, error)
}

type GormReviewRepository struct {
	db *gorm.DB
}

func NewReviewRepository(db *gorm.DB) *GormReviewRepository {
	return &GormReviewRepository{db: db}
}

func (r *GormReviewRepository) ofProduct(ctx context.Context, tenantID string, productID uuid.UUID) *gorm.DB {
	return r.db.WithContext(ctx).
		Model(&models.Review{}).
		Scopes(tenant.ForTenant(tenantID)).
		Where("product_id = ?", productID)
}

func (r *GormReviewRepository) Create(ctx context.Context, rv *models.Review) error {
	return translate(r.db.WithContext(ctx).Create(rv).Error)
}

func (r *GormReviewRepository) FindByID(ctx context.Context, tenantID string, productID, id uuid.UUID) (*models.Review, error) {
	var rv models.Review
	if err := r.ofProduct(ctx, tenantID, productID).Where("id = ?", id).First(&rv).Error; err != nil {
		return nil, translate(err)
	}
	return &rv, nil
}

func (r *GormReviewRepository) ExistsForUser(ctx context.Context, tenantID string, productID, userID uuid.UUID) (bool, error) {
	var count int64
	if err := r.ofProduct(ctx, tenantID, productID).Where("user_id = ?", userID).Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

func (r *GormReviewRepository) List(ctx context.Context, tenantID string, productID uuid.UUID, spec query.Spec) ([]models.Review, error) {
	q, err := query.Apply(r.ofProduct(ctx, tenantID, productID), spec, ReviewFields)
	if err != nil {
		return nil, err
	}
	var reviews []models.Review
	if err := q.Find(&reviews).Error; err != nil {
		return nil, fmt.Errorf("failed to list reviews: %w", err)
	}
	return reviews, nil
}

func (r *GormReviewRepository) Update(ctx context.Context, tenantID string, productID, id uuid.UUID, fields map[string]any) (*models.Review, error) {
	res := r.ofProduct(ctx, tenantID, productID).Where("id = ?", id).Updates(fields)
	if res.Error != nil {
		return nil, translate(res.Error)
	}
	if res.RowsAffected == 0 {
		return nil, ErrNotFound
	}
	return r.FindByID(ctx, tenantID, productID, id)
}

func (r *GormReviewRepository) Delete(ctx context.Context, tenantID string, productID, id uuid.UUID) error {
	res := r.db.WithContext(ctx).
		Scopes(tenant.ForTenant(tenantID)).
		Where("product_id = ? AND id = ?", productID, id).
		Delete(&models.Review{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// RatingSummary counts and averages the current reviews of a product.
func (r *GormReviewRepository) RatingSummary(ctx context.Context, tenantID string, productID uuid.UUID) (models.RatingSummary, error) {
	var summary models.RatingSummary
	err := r.ofProduct(ctx, tenantID, productID).
		Select("COUNT(*) AS quantity, COALESCE(AVG(rating), 0) AS average").
		Scan(&summary).Error
	if err != nil {
		return models.RatingSummary{}, fmt.Errorf("failed to summarize ratings: %w", err)
	}
	return summary, nil
}
