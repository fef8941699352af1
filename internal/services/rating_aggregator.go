package services

import (
	"context"
	"log/slog"

	"github.com/ahmetcoskunkizilkaya/catalog-api/internal/apperr"
	"github.com/ahmetcoskunkizilkaya/catalog-api/internal/models"
	"github.com/ahmetcoskunkizilkaya/catalog-api/internal/repository"
	"github.com/google/uuid"
)

// RatingAggregator keeps a product's rating fields equal to the count and
// mean of its current reviews. It is called after every review mutation.
type RatingAggregator struct {
	reviews  repository.ReviewRepository
	products repository.ProductRepository
}

func NewRatingAggregator(reviews repository.ReviewRepository, products repository.ProductRepository) *RatingAggregator {
	return &RatingAggregator{reviews: reviews, products: products}
}

// Recalculate recomputes the rating of productID from scratch. With no
// reviews left the product returns to the baseline of 0 ratings averaging 1.
func (a *RatingAggregator) Recalculate(ctx context.Context, tenantID string, productID uuid.UUID) error {
	summary, err := a.reviews.RatingSummary(ctx, tenantID, productID)
	if err == nil {
		if summary.Quantity == 0 {
			summary = models.RatingSummary{
				Quantity: models.DefaultRatingQuantity,
				Average:  models.DefaultRatingAverage,
			}
		}
		err = a.products.SetRating(ctx, tenantID, productID, summary)
	}
	if err != nil {
		slog.ErrorContext(ctx, "rating recalculation failed",
			"error", err,
			"tenant_id", tenantID,
			"product_id", productID.String(),
		)
		return apperr.Internal("failed to recalculate product rating", err)
	}
	return nil
}
