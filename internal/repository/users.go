package repository

import (
	"context"
	"fmt"
	"math"
	"time"

	"github.com/ahmetcoskunkizilkaya/catalog-api/internal/models"
	"github.com/ahmetcoskunkizilkaya/catalog-api/internal/query"
	"github.com/ahmetcoskunkizilkaya/catalog-api/internal/tenant"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// UserFields is the filter and sort whitelist of the user list.
var UserFields = query.Fields{
	"id":        {Column: "id", Kind: query.UUID},
	"name":      {Column: "name", Kind: query.String},
	"email":     {Column: "email", Kind: query.String},
	"role":      {Column: "role", Kind: query.String},
	"dob":       {Column: "dob", Kind: query.Time},
	"createdAt": {Column: "created_at", Kind: query.Time},
	"updatedAt": {Column: "updated_at", Kind: query.Time},
}

type UserRepository interface {
	Create(ctx context.Context, u *models.User) error
	FindByID(ctx context.Context, tenantID string, id uuid.UUID) (*models.User, error)
	FindByEmail(ctx context.Context, tenantID, email string) (*models.User, error)
	FindByResetToken(ctx context.Context, tenantID, tokenHash string, now time.Time) (*models.User, error)
	EmailTaken(ctx context.Context, tenantID, email string, except uuid.UUID) (bool, error)
	Update(ctx context.Context, tenantID string, id uuid.UUID, fields map[string]any) (*models.User, error)
	Delete(ctx context.Context, tenantID string, id uuid.UUID) error
	List(ctx context.Context, tenantID string, spec query.Spec) ([]models.User, error)
	WithinRadius(ctx context.Context, tenantID string, lat, lng, radians float64) ([]models.User, error)
}

type GormUserRepository struct {
	db *gorm.DB
}

func NewUserRepository(db *gorm.DB) *GormUserRepository {
	return &GormUserRepository{db: db}
}

// active scopes lookups to the tenant's non-deleted users.
func (r *GormUserRepository) active(ctx context.Context, tenantID string) *gorm.DB {
	return r.db.WithContext(ctx).
		Model(&models.User{}).
		Scopes(tenant.ForTenant(tenantID)).
		Where("active = ?", true)
}

func (r *GormUserRepository) Create(ctx context.Context, u *models.User) error {
	return translate(r.db.WithContext(ctx).Create(u).Error)
}

func (r *GormUserRepository) FindByID(ctx context.Context, tenantID string, id uuid.UUID) (*models.User, error) {
	var u models.User
	if err := r.active(ctx, tenantID).Where("id = ?", id).First(&u).Error; err != nil {
		return nil, translate(err)
	}
	return &u, nil
}

func (r *GormUserRepository) FindByEmail(ctx context.Context, tenantID, email string) (*models.User, error) {
	var u models.User
	if err := r.active(ctx, tenantID).Where("email = ?", email).First(&u).Error; err != nil {
		return nil, translate(err)
	}
	return &u, nil
}

func (r *GormUserRepository) FindByResetToken(ctx context.Context, tenantID, tokenHash string, now time.Time) (*models.User, error) {
	var u models.User
	err := r.active(ctx, tenantID).
		Where("password_reset_token = ? AND password_reset_expires > ?", tokenHash, now.UTC()).
		First(&u).Error
	if err != nil {
		return nil, translate(err)
	}
	return &u, nil
}

// EmailTaken reports whether any user of the tenant, deleted or not, holds
// email. except excludes the user being updated.
func (r *GormUserRepository) EmailTaken(ctx context.Context, tenantID, email string, except uuid.UUID) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&models.User{}).
		Scopes(tenant.ForTenant(tenantID)).
		Where("email = ? AND id <> ?", email, except).
		Count(&count).Error
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

// Update applies fields to an active user and returns the updated row.
func (r *GormUserRepository) Update(ctx context.Context, tenantID string, id uuid.UUID, fields map[string]any) (*models.User, error) {
	res := r.active(ctx, tenantID).Where("id = ?", id).Updates(fields)
	if res.Error != nil {
		return nil, translate(res.Error)
	}
	if res.RowsAffected == 0 {
		return nil, ErrNotFound
	}

	var u models.User
	err := r.db.WithContext(ctx).
		Scopes(tenant.ForTenant(tenantID)).
		Where("id = ?", id).
		First(&u).Error
	if err != nil {
		return nil, translate(err)
	}
	return &u, nil
}

func (r *GormUserRepository) Delete(ctx context.Context, tenantID string, id uuid.UUID) error {
	res := r.db.WithContext(ctx).
		Scopes(tenant.ForTenant(tenantID)).
		Where("id = ? AND active = ?", id, true).
		Delete(&models.User{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *GormUserRepository) List(ctx context.Context, tenantID string, spec query.Spec) ([]models.User, error) {
	q, err := query.Apply(r.active(ctx, tenantID), spec, UserFields)
	if err != nil {
		return nil, err
	}
	var users []models.User
	if err := q.Find(&users).Error; err != nil {
		return nil, fmt.Errorf("failed to list users: %w", err)
	}
	return users, nil
}

// WithinRadius returns active users whose location lies within radians of
// the centre on a sphere. A bounding box narrows the rows in SQL; the exact
// great-circle check runs here.
func (r *GormUserRepository) WithinRadius(ctx context.Context, tenantID string, lat, lng, radians float64) ([]models.User, error) {
	deltaLat := radians * 180 / math.Pi
	q := r.active(ctx, tenantID).
		Where("location_lat IS NOT NULL AND location_lng IS NOT NULL").
		Where("location_lat BETWEEN ? AND ?", lat-deltaLat, lat+deltaLat)

	if cos := math.Cos(lat * math.Pi / 180); cos > 1e-6 {
		deltaLng := deltaLat / cos
		if deltaLng < 180 {
			q = q.Where("location_lng BETWEEN ? AND ?", lng-deltaLng, lng+deltaLng)
		}
	}

	var candidates []models.User
	if err := q.Find(&candidates).Error; err != nil {
		return nil, fmt.Errorf("failed to query users by location: %w", err)
	}

	users := make([]models.User, 0, len(candidates))
	for _, u := range candidates {
		if centralAngle(lat, lng, *u.Location.Lat, *u.Location.Lng) <= radians {
			users = append(users, u)
		}
	}
	return users, nil
}

// centralAngle is the haversine angle in radians between two points given in
// degrees.
func centralAngle(lat1, lng1, lat2, lng2 float64) float64 {
	const rad = math.Pi / 180
	dLat := (lat2 - lat1) * rad
	dLng := (lng2 - lng1) * rad
	a := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(lat1*rad)*math.Cos(lat2*rad)*math.Sin(dLng/2)*math.Sin(dLng/2)
	return 2 * math.Asin(math.Min(1, math.Sqrt(a)))
}
