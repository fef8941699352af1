package services

import (
	"context"
	"errors"
	"strconv"
	"strings"

	"github.com/ahmetcoskunkizilkaya/catalog-api/internal/apperr"
	"github.com/ahmetcoskunkizilkaya/catalog-api/internal/dto"
	"github.com/ahmetcoskunkizilkaya/catalog-api/internal/models"
	"github.com/ahmetcoskunkizilkaya/catalog-api/internal/query"
	"github.com/ahmetcoskunkizilkaya/catalog-api/internal/repository"
	"github.com/google/uuid"
)

const (
	EarthRadiusKm = 6378.1
	EarthRadiusMi = 3963.2
)

var (
	ErrUserNotFound     = apperr.NotFound("No user found with that ID")
	ErrPasswordOnUpdate = apperr.Validation("This route is not for password updates. Please use /update-password.")
	ErrBadCenter        = apperr.Validation("Please provide latitude and longitude in the format lat,lng.")
	ErrBadDistance      = apperr.Validation("Please provide a positive distance.")
	ErrBadUnit          = apperr.Validation("Unit must be either km or mi.")
	ErrBadLocation      = apperr.Validation("Please provide both lat and lng for the location.")
)

type UserService struct {
	users repository.UserRepository
}

func NewUserService(users repository.UserRepository) *UserService {
	return &UserService{users: users}
}

func (s *UserService) Get(ctx context.Context, tenantID string, id uuid.UUID) (*models.User, error) {
	u, err := s.users.FindByID(ctx, tenantID, id)
	return u, notFoundAs(err, ErrUserNotFound)
}

func (s *UserService) List(ctx context.Context, tenantID string, spec query.Spec) ([]models.User, error) {
	return s.users.List(ctx, tenantID, spec)
}

// UpdateMe changes the caller's own profile. Only name, email and location
// are writable here.
func (s *UserService) UpdateMe(ctx context.Context, tenantID string, userID uuid.UUID, req *dto.UpdateMeRequest) (*models.User, error) {
	if req.HasPassword() {
		return nil, ErrPasswordOnUpdate
	}

	fields := map[string]any{}
	if req.Name != nil {
		fields["name"] = *req.Name
	}
	if req.Email != nil {
		if err := s.ensureEmailFree(ctx, tenantID, *req.Email, userID); err != nil {
			return nil, err
		}
		fields["email"] = *req.Email
	}
	if req.Location != nil {
		loc := models.Location{Lat: req.Location.Lat, Lng: req.Location.Lng, Address: req.Location.Address}
		if !loc.HasPoint() {
			return nil, ErrBadLocation
		}
		fields["location_lat"] = *loc.Lat
		fields["location_lng"] = *loc.Lng
		fields["location_address"] = loc.Address
	}
	if len(fields) == 0 {
		return s.Get(ctx, tenantID, userID)
	}

	u, err := s.users.Update(ctx, tenantID, userID, fields)
	return u, duplicateAs(notFoundAs(err, ErrUserNotFound), ErrEmailTaken)
}

// DeleteMe deactivates the caller. The row stays but disappears from every
// lookup.
func (s *UserService) DeleteMe(ctx context.Context, tenantID string, userID uuid.UUID) error {
	_, err := s.users.Update(ctx, tenantID, userID, map[string]any{"active": false})
	return notFoundAs(err, ErrUserNotFound)
}

// Update is the admin edit of another user.
func (s *UserService) Update(ctx context.Context, tenantID string, id uuid.UUID, req *dto.UpdateUserRequest) (*models.User, error) {
	fields := map[string]any{}
	if req.Name != nil {
		fields["name"] = *req.Name
	}
	if req.Email != nil {
		if err := s.ensureEmailFree(ctx, tenantID, *req.Email, id); err != nil {
			return nil, err
		}
		fields["email"] = *req.Email
	}
	if req.Role != nil {
		fields["role"] = *req.Role
	}
	if req.Active != nil {
		fields["active"] = *req.Active
	}
	if len(fields) == 0 {
		return s.Get(ctx, tenantID, id)
	}

	u, err := s.users.Update(ctx, tenantID, id, fields)
	return u, duplicateAs(notFoundAs(err, ErrUserNotFound), ErrEmailTaken)
}

func (s *UserService) Delete(ctx context.Context, tenantID string, id uuid.UUID) error {
	return notFoundAs(s.users.Delete(ctx, tenantID, id), ErrUserNotFound)
}

// Within lists users located within distance of center ("lat,lng"), with
// distance measured in unit (km or mi).
func (s *UserService) Within(ctx context.Context, tenantID, distance, center, unit string) ([]models.User, error) {
	d, err := strconv.ParseFloat(distance, 64)
	if err != nil || d <= 0 {
		return nil, ErrBadDistance
	}

	var radius float64
	switch strings.ToLower(unit) {
	case "km":
		radius = d / EarthRadiusKm
	case "mi":
		radius = d / EarthRadiusMi
	default:
		return nil, ErrBadUnit
	}

	lat, lng, ok := parseLatLng(center)
	if !ok {
		return nil, ErrBadCenter
	}

	return s.users.WithinRadius(ctx, tenantID, lat, lng, radius)
}

func (s *UserService) ensureEmailFree(ctx context.Context, tenantID, email string, self uuid.UUID) error {
	taken, err := s.users.EmailTaken(ctx, tenantID, email, self)
	if err != nil {
		return apperr.Internal("failed to check email", err)
	}
	if taken {
		return ErrEmailTaken
	}
	return nil
}

func parseLatLng(s string) (float64, float64, bool) {
	latStr, lngStr, found := strings.Cut(s, ",")
	if !found {
		return 0, 0, false
	}
	lat, err := strconv.ParseFloat(strings.TrimSpace(latStr), 64)
	if err != nil || lat < -90 || lat > 90 {
		return 0, 0, false
	}
	lng, err := strconv.ParseFloat(strings.TrimSpace(lngStr), 64)
	if err != nil || lng < -180 || lng > 180 {
		return 0, 0, false
	}
	return lat, lng, true
}

// notFoundAs replaces the repository's generic not-found error with a
// resource-specific one.
func notFoundAs(err error, target *apperr.Error) error {
	if errors.Is(err, repository.ErrNotFound) {
		return apperr.Wrap(target, err)
	}
	return err
}

func duplicateAs(err error, target *apperr.Error) error {
	if errors.Is(err, repository.ErrDuplicate) {
		return apperr.Wrap(target, err)
	}
	return err
}
