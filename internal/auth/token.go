// Package auth holds the credential primitives of the API: session tokens,
// password hashing, reset tokens and the access policy decisions.
package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/ahmetcoskunkizilkaya/catalog-api/internal/apperr"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

var (
	ErrInvalidToken = apperr.Authentication("Invalid token. Please log in again!")
	ErrTokenExpired = apperr.Authentication("Your token has expired! Please log in again.")
)

// Claims are the session token claims: the standard ones (sub, iat, exp)
// plus the tenant the token was issued for.
type Claims struct {
	jwt.RegisteredClaims
	TenantID string `json:"tid"`
}

// Identity is what a verified token asserts.
type Identity struct {
	TenantID string
	UserID   uuid.UUID
	IssuedAt time.Time
}

// TokenService issues and verifies stateless HS256 session tokens. Any
// process configured with the same secret can verify tokens issued by another.
type TokenService struct {
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

func NewTokenService(secret string, ttl time.Duration) *TokenService {
	return &TokenService{
		secret: []byte(secret),
		ttl:    ttl,
		now:    time.Now,
	}
}

// WithClock returns a copy of the service that reads time from now.
func (s *TokenService) WithClock(now func() time.Time) *TokenService {
	cp := *s
	cp.now = now
	return &cp
}

func (s *TokenService) Issue(tenantID string, userID uuid.UUID) (string, error) {
	now := s.now()
	claims := Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   userID.String(),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.ttl)),
		},
		TenantID: tenantID,
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(s.secret)
	if err != nil {
		return "", fmt.Errorf("failed to sign token: %w", err)
	}
	return signed, nil
}

func (s *TokenService) Verify(tokenString string) (*Identity, error) {
	claims := &Claims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, s.Keyfunc,
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithTimeFunc(s.now),
		jwt.WithExpirationRequired(),
	)
	if err != nil {
		return nil, ClassifyError(err)
	}
	return s.FromToken(token)
}

// Keyfunc resolves the verification key. It is shared with the HTTP bearer
// middleware so both paths accept exactly the same tokens.
func (s *TokenService) Keyfunc(t *jwt.Token) (interface{}, error) {
	if t.Method.Alg() != jwt.SigningMethodHS256.Alg() {
		return nil, fmt.Errorf("unexpected signing method: %s", t.Method.Alg())
	}
	return s.secret, nil
}

// FromToken converts an already verified token into an Identity.
func (s *TokenService) FromToken(token *jwt.Token) (*Identity, error) {
	if token == nil || !token.Valid {
		return nil, ErrInvalidToken
	}
	claims, ok := token.Claims.(*Claims)
	if !ok {
		return nil, ErrInvalidToken
	}
	userID, err := uuid.Parse(claims.Subject)
	if err != nil {
		return nil, apperr.Wrap(ErrInvalidToken, err)
	}
	if claims.IssuedAt == nil || claims.ExpiresAt == nil {
		return nil, ErrInvalidToken
	}
	return &Identity{
		TenantID: claims.TenantID,
		UserID:   userID,
		IssuedAt: claims.IssuedAt.Time,
	}, nil
}

// ClassifyError maps a jwt parsing error onto the invalid/expired sentinels.
func ClassifyError(err error) error {
	if errors.Is(err, jwt.ErrTokenExpired) {
		return apperr.Wrap(ErrTokenExpired, err)
	}
	return apperr.Wrap(ErrInvalidToken, err)
}
