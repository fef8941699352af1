package auth

import (
	"slices"

	"github.com/ahmetcoskunkizilkaya/catalog-api/internal/apperr"
	"github.com/ahmetcoskunkizilkaya/catalog-api/internal/models"
	"github.com/google/uuid"
)

var ErrForbidden = apperr.Authorization("You do not have permission to perform this action")

// RequireRole passes when the user's role is one of roles.
func RequireRole(user *models.User, roles ...string) error {
	if user == nil || !slices.Contains(roles, user.Role) {
		return ErrForbidden
	}
	return nil
}

// RequireOwnerOrAdmin passes for admins and for the user owning the resource.
func RequireOwnerOrAdmin(user *models.User, ownerID uuid.UUID) error {
	if user == nil {
		return ErrForbidden
	}
	if user.IsAdmin() || user.ID == ownerID {
		return nil
	}
	return ErrForbidden
}
