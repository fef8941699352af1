package models

import (
	"time"

	"github.com/google/uuid"
)

// Review is a single user's rating of a product. A user reviews a product at
// most once.
type Review struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	TenantID  string    `gorm:"size:50;not null;uniqueIndex:idx_reviews_tenant_product_user,priority:1" json:"-"`
	ProductID uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_reviews_tenant_product_user,priority:2" json:"product"`
	UserID    uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_reviews_tenant_product_user,priority:3;index" json:"user"`
	Review    string    `gorm:"type:text;not null" json:"review"`
	Rating    int       `gorm:"not null" json:"rating"`
	CreatedAt time.Time `gorm:"index" json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// RatingSummary is the count and mean rating of a product's reviews.
type RatingSummary struct {
	Quantity int64
	Average  float64
}
