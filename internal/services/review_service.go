package services

import (
	"context"
	"errors"

	"github.com/ahmetcoskunkizilkaya/catalog-api/internal/apperr"
	"github.com/ahmetcoskunkizilkaya/catalog-api/internal/dto"
	"github.com/ahmetcoskunkizilkaya/catalog-api/internal/models"
	"github.com/ahmetcoskunkizilkaya/catalog-api/internal/query"
	"github.com/ahmetcoskunkizilkaya/catalog-api/internal/repository"
	"github.com/google/uuid"
)

var (
	ErrReviewNotFound  = apperr.NotFound("No review found with that ID")
	ErrAlreadyReviewed = apperr.Conflict("You have already reviewed this product")
)

// ReviewService manages reviews nested under a product and keeps the
// product's rating in sync after each change.
type ReviewService struct {
	reviews    repository.ReviewRepository
	products   *ProductService
	aggregator *RatingAggregator
}

func NewReviewService(reviews repository.ReviewRepository, products *ProductService, aggregator *RatingAggregator) *ReviewService {
	return &ReviewService{reviews: reviews, products: products, aggregator: aggregator}
}

func (s *ReviewService) List(ctx context.Context, tenantID string, productID uuid.UUID, spec query.Spec) ([]models.Review, error) {
	if _, err := s.products.Find(ctx, tenantID, productID); err != nil {
		return nil, err
	}
	return s.reviews.List(ctx, tenantID, productID, spec)
}

// Find resolves a review inside its product. An unknown product is reported
// before an unknown review.
func (s *ReviewService) Find(ctx context.Context, tenantID string, productID, id uuid.UUID) (*models.Review, error) {
	if _, err := s.products.Find(ctx, tenantID, productID); err != nil {
		return nil, err
	}
	rv, err := s.reviews.FindByID(ctx, tenantID, productID, id)
	return rv, notFoundAs(err, ErrReviewNotFound)
}

// Owner resolves the author of a review.
func (s *ReviewService) Owner(ctx context.Context, tenantID string, productID, id uuid.UUID) (uuid.UUID, error) {
	rv, err := s.Find(ctx, tenantID, productID, id)
	if err != nil {
		return uuid.Nil, err
	}
	return rv.UserID, nil
}

func (s *ReviewService) Create(ctx context.Context, tenantID string, productID, userID uuid.UUID, req *dto.CreateReviewRequest) (*models.Review, error) {
	if _, err := s.products.Find(ctx, tenantID, productID); err != nil {
		return nil, err
	}

	exists, err := s.reviews.ExistsForUser(ctx, tenantID, productID, userID)
	if err != nil {
		return nil, apperr.Internal("failed to check existing review", err)
	}
	if exists {
		return nil, ErrAlreadyReviewed
	}

	rv := &models.Review{
		ID:        uuid.New(),
		TenantID:  tenantID,
		ProductID: productID,
		UserID:    userID,
		Review:    req.Review,
		Rating:    req.Rating,
	}
	if err := s.reviews.Create(ctx, rv); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, apperr.Wrap(ErrAlreadyReviewed, err)
		}
		return nil, err
	}

	if err := s.aggregator.Recalculate(ctx, tenantID, productID); err != nil {
		return nil, err
	}
	return rv, nil
}

func (s *ReviewService) Update(ctx context.Context, tenantID string, productID, id uuid.UUID, req *dto.UpdateReviewRequest) (*models.Review, error) {
	before, err := s.Find(ctx, tenantID, productID, id)
	if err != nil {
		return nil, err
	}

	fields := map[string]any{}
	if req.Review != nil {
		fields["review"] = *req.Review
	}
	if req.Rating != nil {
		fields["rating"] = *req.Rating
	}
	if len(fields) == 0 {
		return before, nil
	}

	rv, err := s.reviews.Update(ctx, tenantID, productID, id, fields)
	if err != nil {
		return nil, notFoundAs(err, ErrReviewNotFound)
	}

	if err := s.aggregator.Recalculate(ctx, tenantID, before.ProductID); err != nil {
		return nil, err
	}
	return rv, nil
}

func (s *ReviewService) Delete(ctx context.Context, tenantID string, productID, id uuid.UUID) error {
	before, err := s.Find(ctx, tenantID, productID, id)
	if err != nil {
		return err
	}

	if err := s.reviews.Delete(ctx, tenantID, productID, id); err != nil {
		return notFoundAs(err, ErrReviewNotFound)
	}

	return s.aggregator.Recalculate(ctx, tenantID, before.ProductID)
}
