package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/ahmetcoskunkizilkaya/catalog-api/internal/apperr"
	"github.com/ahmetcoskunkizilkaya/catalog-api/internal/auth"
	"github.com/ahmetcoskunkizilkaya/catalog-api/internal/dto"
	"github.com/ahmetcoskunkizilkaya/catalog-api/internal/mailer"
	"github.com/ahmetcoskunkizilkaya/catalog-api/internal/models"
	"github.com/ahmetcoskunkizilkaya/catalog-api/internal/repository"
	"github.com/google/uuid"
)

var (
	ErrEmailTaken         = apperr.Conflict("Email already in use. Please use another email")
	ErrMissingCredentials = apperr.Validation("Please provide email and password!")
	ErrInvalidCredentials = apperr.Authentication("Incorrect email or password")
	ErrWrongPassword      = apperr.Authentication("Your current password is wrong.")
	ErrNoUserWithEmail    = apperr.NotFound("There is no user with that email address.")
	ErrResetTokenInvalid  = apperr.Validation("Token is invalid or has expired")
	ErrUserGone           = apperr.Authentication("The user belonging to this token no longer exists.")
	ErrPasswordChanged    = apperr.Authentication("User recently changed password! Please log in again.")
	ErrInvalidDateOfBirth = apperr.Validation("Invalid input data. dob must be a date (YYYY-MM-DD)")
	ErrMailDispatch       = apperr.ServerError("There was an error sending the email. Try again later.", nil)
)

// Mailer delivers transactional email.
type Mailer interface {
	Send(ctx context.Context, msg mailer.Message) error
}

type AuthService struct {
	users       repository.UserRepository
	passwords   *auth.Passwords
	tokens      *auth.TokenService
	mailer      Mailer
	adminEmails map[string]bool
	now         func() time.Time
}

func NewAuthService(
	users repository.UserRepository,
	passwords *auth.Passwords,
	tokens *auth.TokenService,
	m Mailer,
	adminEmails []string,
) *AuthService {
	admins := make(map[string]bool, len(adminEmails))
	for _, e := range adminEmails {
		admins[dto.NormalizeEmail(e)] = true
	}
	return &AuthService{
		users:       users,
		passwords:   passwords,
		tokens:      tokens,
		mailer:      m,
		adminEmails: admins,
		now:         time.Now,
	}
}

// WithClock returns a copy of the service that reads time from now.
func (s *AuthService) WithClock(now func() time.Time) *AuthService {
	cp := *s
	cp.now = now
	return &cp
}

// Signup creates a user and signs them in. The role is admin only for
// addresses listed in ADMIN_EMAILS.
func (s *AuthService) Signup(ctx context.Context, tenantID string, req *dto.SignupRequest) (*models.User, string, error) {
	dob, err := dto.ParseDate(req.DOB)
	if err != nil {
		return nil, "", ErrInvalidDateOfBirth
	}

	taken, err := s.users.EmailTaken(ctx, tenantID, req.Email, uuid.Nil)
	if err != nil {
		return nil, "", apperr.Internal("failed to check email", err)
	}
	if taken {
		return nil, "", ErrEmailTaken
	}

	hash, err := s.passwords.Hash(req.Password)
	if err != nil {
		return nil, "", apperr.Internal("failed to hash password", err)
	}

	role := models.RoleUser
	if s.adminEmails[req.Email] {
		role = models.RoleAdmin
	}

	user := &models.User{
		ID:       uuid.New(),
		TenantID: tenantID,
		Name:     req.Name,
		Email:    req.Email,
		Image:    req.Image,
		DOB:      dob,
		Password: hash,
		Role:     role,
		Active:   true,
	}
	if err := s.users.Create(ctx, user); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, "", apperr.Wrap(ErrEmailTaken, err)
		}
		return nil, "", fmt.Errorf("failed to create user: %w", err)
	}

	token, err := s.issue(tenantID, user.ID)
	if err != nil {
		return nil, "", err
	}
	return user, token, nil
}

func (s *AuthService) Login(ctx context.Context, tenantID string, req *dto.LoginRequest) (*models.User, string, error) {
	if req.Email == "" || req.Password == "" {
		return nil, "", ErrMissingCredentials
	}

	user, err := s.users.FindByEmail(ctx, tenantID, req.Email)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, "", ErrInvalidCredentials
		}
		return nil, "", err
	}

	ok, err := s.passwords.Verify(req.Password, user.Password)
	if err != nil {
		slog.ErrorContext(ctx, "password verification failed", "error", err, "tenant_id", tenantID, "user_id", user.ID.String())
		return nil, "", ErrInvalidCredentials
	}
	if !ok {
		return nil, "", ErrInvalidCredentials
	}

	token, err := s.issue(tenantID, user.ID)
	if err != nil {
		return nil, "", err
	}
	return user, token, nil
}

// ForgotPassword stores a hashed reset token on the user and mails the raw
// token. If the mail cannot be sent the token is removed again.
func (s *AuthService) ForgotPassword(ctx context.Context, tenantID, email, resetBaseURL string) error {
	user, err := s.users.FindByEmail(ctx, tenantID, email)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrNoUserWithEmail
		}
		return err
	}

	reset, err := auth.NewResetToken(s.now().UTC())
	if err != nil {
		return apperr.Internal("failed to create reset token", err)
	}

	if _, err := s.users.Update(ctx, tenantID, user.ID, map[string]any{
		"password_reset_token":   reset.Hash,
		"password_reset_expires": reset.ExpiresAt,
	}); err != nil {
		return fmt.Errorf("failed to store reset token: %w", err)
	}

	msg := mailer.Message{
		To:      user.Email,
		Subject: "Your password reset token (valid for 10 min)",
		Body: "Forgot your password? Submit a PATCH request with your new password and passwordConfirm to: " +
			resetBaseURL + reset.Raw + "\nIf you didn't forget your password, please ignore this email!",
	}
	if err := s.mailer.Send(ctx, msg); err != nil {
		if _, rbErr := s.users.Update(ctx, tenantID, user.ID, map[string]any{
			"password_reset_token":   nil,
			"password_reset_expires": nil,
		}); rbErr != nil {
			slog.ErrorContext(ctx, "failed to clear reset token", "error", rbErr, "tenant_id", tenantID, "user_id", user.ID.String())
		}
		return apperr.Wrap(ErrMailDispatch, err)
	}
	return nil
}

// ResetPassword consumes a reset token. A token works once and only before
// it expires.
func (s *AuthService) ResetPassword(ctx context.Context, tenantID, rawToken string, req *dto.ResetPasswordRequest) (*models.User, string, error) {
	now := s.now().UTC()
	user, err := s.users.FindByResetToken(ctx, tenantID, auth.HashResetToken(rawToken), now)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, "", ErrResetTokenInvalid
		}
		return nil, "", err
	}

	user, err = s.setPassword(ctx, tenantID, user.ID, req.Password, now)
	if err != nil {
		return nil, "", err
	}

	token, err := s.issue(tenantID, user.ID)
	if err != nil {
		return nil, "", err
	}
	return user, token, nil
}

// UpdatePassword rotates the password of a signed-in user after checking
// the current one.
func (s *AuthService) UpdatePassword(ctx context.Context, tenantID string, userID uuid.UUID, req *dto.UpdatePasswordRequest) (*models.User, string, error) {
	user, err := s.users.FindByID(ctx, tenantID, userID)
	if err != nil {
		return nil, "", err
	}

	ok, err := s.passwords.Verify(req.PasswordCurrent, user.Password)
	if err != nil || !ok {
		return nil, "", ErrWrongPassword
	}

	user, err = s.setPassword(ctx, tenantID, user.ID, req.Password, s.now().UTC())
	if err != nil {
		return nil, "", err
	}

	token, err := s.issue(tenantID, user.ID)
	if err != nil {
		return nil, "", err
	}
	return user, token, nil
}

// Authenticate resolves the user behind a verified token. Tokens issued
// before the last password change are rejected.
func (s *AuthService) Authenticate(ctx context.Context, tenantID string, id *auth.Identity) (*models.User, error) {
	if id.TenantID != tenantID {
		return nil, auth.ErrInvalidToken
	}

	user, err := s.users.FindByID(ctx, tenantID, id.UserID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrUserGone
		}
		return nil, err
	}

	if ChangedPasswordAfter(user, id.IssuedAt) {
		return nil, ErrPasswordChanged
	}
	return user, nil
}

// ChangedPasswordAfter compares at second precision, the resolution of the
// token's iat claim.
func ChangedPasswordAfter(user *models.User, issuedAt time.Time) bool {
	if user.PasswordChangedAt == nil {
		return false
	}
	return issuedAt.Unix() < user.PasswordChangedAt.Unix()
}

func (s *AuthService) setPassword(ctx context.Context, tenantID string, userID uuid.UUID, plain string, now time.Time) (*models.User, error) {
	hash, err := s.passwords.Hash(plain)
	if err != nil {
		return nil, apperr.Internal("failed to hash password", err)
	}
	user, err := s.users.Update(ctx, tenantID, userID, map[string]any{
		"password":               hash,
		"password_changed_at":    now,
		"password_reset_token":   nil,
		"password_reset_expires": nil,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to update password: %w", err)
	}
	return user, nil
}

func (s *AuthService) issue(tenantID string, userID uuid.UUID) (string, error) {
	token, err := s.tokens.Issue(tenantID, userID)
	if err != nil {
		return "", apperr.Internal("failed to issue token", err)
	}
	return token, nil
}
