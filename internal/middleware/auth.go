package middleware

import (
	"context"
	"strings"

	"github.com/ahmetcoskunkizilkaya/catalog-api/internal/apperr"
	"github.com/ahmetcoskunkizilkaya/catalog-api/internal/auth"
	"github.com/ahmetcoskunkizilkaya/catalog-api/internal/models"
	"github.com/ahmetcoskunkizilkaya/catalog-api/internal/tenant"
	jwtware "github.com/gofiber/contrib/jwt"
	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v5"
)

const tokenKey = "token"

var ErrNotLoggedIn = apperr.Authentication("You are not logged in! Please log in to get access.")

// Authenticator resolves the user behind a verified token.
type Authenticator interface {
	Authenticate(ctx context.Context, tenantID string, id *auth.Identity) (*models.User, error)
}

// Protect requires a valid bearer token whose user still exists and has not
// changed their password since the token was issued. The user is stored for
// tenant.CurrentUser.
func Protect(tokens *auth.TokenService, users Authenticator) fiber.Handler {
	verify := jwtware.New(jwtware.Config{
		KeyFunc:    tokens.Keyfunc,
		Claims:     &auth.Claims{},
		ContextKey: tokenKey,
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			return auth.ClassifyError(err)
		},
		SuccessHandler: func(c *fiber.Ctx) error {
			token, _ := c.Locals(tokenKey).(*jwt.Token)
			id, err := tokens.FromToken(token)
			if err != nil {
				return err
			}

			user, err := users.Authenticate(c.UserContext(), tenant.GetTenantID(c), id)
			if err != nil {
				return err
			}

			tenant.SetCurrentUser(c, user)
			return c.Next()
		},
	})

	return func(c *fiber.Ctx) error {
		if !hasBearer(c.Get(fiber.HeaderAuthorization)) {
			return ErrNotLoggedIn
		}
		return verify(c)
	}
}

func hasBearer(header string) bool {
	scheme, token, ok := strings.Cut(strings.TrimSpace(header), " ")
	return ok && strings.EqualFold(scheme, "Bearer") && strings.TrimSpace(token) != ""
}
