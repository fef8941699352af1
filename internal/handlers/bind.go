package handlers

import (
	"reflect"
	"strings"

	"github.com/ahmetcoskunkizilkaya/catalog-api/internal/apperr"
	"github.com/ahmetcoskunkizilkaya/catalog-api/internal/models"
	"github.com/ahmetcoskunkizilkaya/catalog-api/internal/query"
	"github.com/ahmetcoskunkizilkaya/catalog-api/internal/tenant"
	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

var validate = newValidator()

// newValidator reports fields by their JSON names.
func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
		if name == "-" || name == "" {
			return f.Name
		}
		return name
	})
	return v
}

type normalizer interface {
	Normalize()
}

// bind parses the JSON body into out, normalizes it and validates it.
func bind(c *fiber.Ctx, out any) error {
	if err := c.BodyParser(out); err != nil {
		return apperr.Validation("Invalid request body")
	}
	if n, ok := out.(normalizer); ok {
		n.Normalize()
	}
	if err := validate.Struct(out); err != nil {
		return apperr.From(err)
	}
	return nil
}

// paramUUID reads a UUID route parameter.
func paramUUID(c *fiber.Ctx, name string) (uuid.UUID, error) {
	raw := c.Params(name)
	id, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil, apperr.Validationf("Invalid %s: %s.", name, raw)
	}
	return id, nil
}

func listSpec(c *fiber.Ctx) query.Spec {
	return query.Build(c.Queries())
}

func currentUser(c *fiber.Ctx) *models.User {
	u, _ := tenant.CurrentUser(c)
	return u
}
