package models

import (
	"time"

	"github.com/google/uuid"
)

const (
	RoleUser  = "user"
	RoleAdmin = "admin"
)

// Location is an optional geographic point attached to a user.
type Location struct {
	Lat     *float64 `json:"lat,omitempty"`
	Lng     *float64 `json:"lng,omitempty"`
	Address string   `gorm:"size:255" json:"address,omitempty"`
}

// HasPoint reports whether both coordinates are set.
func (l Location) HasPoint() bool {
	return l.Lat != nil && l.Lng != nil
}

// User is a tenant-scoped catalog account. Inactive users are soft-deleted and
// invisible to every repository lookup.
type User struct {
	ID                   uuid.UUID  `gorm:"type:uuid;primaryKey" json:"id"`
	TenantID             string     `gorm:"size:50;not null;uniqueIndex:idx_users_tenant_email" json:"-"`
	Name                 string     `gorm:"size:100;not null" json:"name"`
	Email                string     `gorm:"size:255;not null;uniqueIndex:idx_users_tenant_email" json:"email"`
	Image                string     `gorm:"size:255" json:"image,omitempty"`
	DOB                  time.Time  `gorm:"column:dob;not null" json:"dob"`
	Password             string     `gorm:"not null" json:"-"`
	Role                 string     `gorm:"size:20;not null;default:'user'" json:"role"`
	Active               bool       `gorm:"not null;default:true;index" json:"-"`
	Location             Location   `gorm:"embedded;embeddedPrefix:location_" json:"location"`
	PasswordChangedAt    *time.Time `json:"-"`
	PasswordResetToken   *string    `gorm:"size:64;index" json:"-"`
	PasswordResetExpires *time.Time `json:"-"`
	CreatedAt            time.Time  `gorm:"index" json:"createdAt"`
	UpdatedAt            time.Time  `json:"updatedAt"`
}

func (u *User) IsAdmin() bool {
	return u.Role == RoleAdmin
}
