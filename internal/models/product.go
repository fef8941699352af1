package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

const (
	DefaultRatingAverage  = 1.0
	DefaultRatingQuantity = 0
)

// Product is a catalog item. RatingAverage and RatingQuantity are a
// denormalized summary of the product's reviews and are only written by the
// rating aggregator.
type Product struct {
	ID              uuid.UUID                   `gorm:"type:uuid;primaryKey" json:"id"`
	TenantID        string                      `gorm:"size:50;not null;uniqueIndex:idx_products_tenant_title" json:"-"`
	Title           string                      `gorm:"size:35;not null;uniqueIndex:idx_products_tenant_title" json:"title"`
	Slug            string                      `gorm:"size:64;index" json:"slug"`
	Above18         bool                        `gorm:"column:above18;not null;default:false" json:"above18"`
	RatingAverage   float64                     `gorm:"not null;default:1" json:"ratingAverage"`
	RatingQuantity  int                         `gorm:"not null;default:0" json:"ratingQuantity"`
	DiscountPercent float64                     `gorm:"not null;default:0" json:"discountPercent"`
	Price           float64                     `gorm:"not null" json:"price"`
	ImageCover      string                      `gorm:"size:255" json:"imageCover"`
	Images          datatypes.JSONSlice[string] `json:"images"`
	Description     string                      `gorm:"type:text;not null" json:"description"`
	CreatedBy       uuid.UUID                   `gorm:"type:uuid;not null;index" json:"createdBy"`
	CreatedAt       time.Time                   `gorm:"index" json:"createdAt"`
	UpdatedAt       time.Time                   `json:"updatedAt"`
}

// DiscountedPrice is the price after DiscountPercent is applied.
func DiscountedPrice(p *Product) float64 {
	return p.Price - p.Price*p.DiscountPercent/100
}

// ProductStat is one row of the per-owner product statistics.
type ProductStat struct {
	Owner            uuid.UUID `json:"owner"`
	NumberOfProducts int64     `json:"numberOfProducts"`
	AverageRating    float64   `json:"averageRating"`
	AvgPrice         float64   `json:"avgPrice"`
	MinPrice         float64   `json:"minPrice"`
	MaxPrice         float64   `json:"maxPrice"`
}
