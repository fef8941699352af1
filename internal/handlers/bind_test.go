package handlers

import (
	"io"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/ahmetcoskunkizilkaya/catalog-api/internal/apperr"
	"github.com/ahmetcoskunkizilkaya/catalog-api/internal/dto"
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func bindApp() *fiber.App {
	app := fiber.New(fiber.Config{ErrorHandler: apperr.Handler})
	app.Post("/signup", func(c *fiber.Ctx) error {
		var req dto.SignupRequest
		if err := bind(c, &req); err != nil {
			return err
		}
		return c.SendString(req.Email)
	})
	app.Get("/items/:id", func(c *fiber.Ctx) error {
		id, err := paramUUID(c, "id")
		if err != nil {
			return err
		}
		return c.SendString(id.String())
	})
	return app
}

func post(t *testing.T, app *fiber.App, body string) (int, string) {
	t.Helper()
	req := httptest.NewRequest("POST", "/signup", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	resp, err := app.Test(req)
	require.NoError(t, err)
	defer resp.Body.Close()
	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return resp.StatusCode, string(raw)
}

func TestBind_NormalizesBeforeValidating(t *testing.T) {
	status, body := post(t, bindApp(), `{"name":" Ada ","email":"  ADA@Example.COM ","dob":"1990-01-01","password":"pass1234","passwordConfirm":"pass1234"}`)
	assert.Equal(t, fiber.StatusOK, status)
	assert.Equal(t, "ada@example.com", body)
}

func TestBind_ReportsJSONFieldNames(t *testing.T) {
	status, body := post(t, bindApp(), `{"name":"Ada","email":"not-an-email","dob":"1990-01-01","password":"short","passwordConfirm":"other"}`)
	assert.Equal(t, fiber.StatusBadRequest, status)
	assert.Contains(t, body, "email must be a valid email")
	assert.Contains(t, body, "password must be at least 8")
	assert.Contains(t, body, "passwordConfirm must match Password")
}

func TestBind_MalformedBody(t *testing.T) {
	status, body := post(t, bindApp(), `{"name":`)
	assert.Equal(t, fiber.StatusBadRequest, status)
	assert.Contains(t, body, "Invalid request body")
}

func TestParamUUID(t *testing.T) {
	app := bindApp()
	id := uuid.New()

	resp, err := app.Test(httptest.NewRequest("GET", "/items/"+id.String(), nil))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)

	resp, err = app.Test(httptest.NewRequest("GET", "/items/42", nil))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
}
