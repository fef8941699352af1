package apperr

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http/httptest"
	"testing"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

var errSample = Conflict("Sample conflict")

func TestFrom_Classifies(t *testing.T) {
	tests := []struct {
		name string
		err  error
		kind Kind
	}{
		{"app error", fmt.Errorf("wrapped: %w", errSample), KindConflict},
		{"fiber error", fiber.NewError(fiber.StatusNotFound, "nope"), KindNotFound},
		{"fiber too many", fiber.ErrTooManyRequests, KindRateLimited},
		{"record not found", gorm.ErrRecordNotFound, KindNotFound},
		{"duplicate key", gorm.ErrDuplicatedKey, KindConflict},
		{"unknown", errors.New("boom"), KindInternal},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.kind, From(tt.err).Kind)
		})
	}
	assert.Nil(t, From(nil))
}

func TestFrom_ValidationMessage(t *testing.T) {
	type body struct {
		Email string `validate:"required,email"`
	}
	err := validator.New().Struct(body{Email: "x"})
	got := From(err)
	assert.Equal(t, KindValidation, got.Kind)
	assert.Equal(t, "Invalid input data. Email must be a valid email", got.Message)
}

func TestWrap_KeepsSentinelIdentity(t *testing.T) {
	cause := errors.New("driver said no")
	err := Wrap(errSample, cause)
	assert.True(t, errors.Is(err, errSample))
	assert.True(t, errors.Is(err, cause))
	assert.False(t, errors.Is(err, Conflict("Other conflict")))
}

func TestHandler_Envelope(t *testing.T) {
	app := fiber.New(fiber.Config{ErrorHandler: Handler})
	app.Get("/fail", func(c *fiber.Ctx) error { return errSample })
	app.Get("/internal", func(c *fiber.Ctx) error { return Internal("db exploded", errors.New("secret detail")) })
	app.Get("/public", func(c *fiber.Ctx) error { return ServerError("Mail is down", nil) })
	app.Use(NotFoundRoute)

	cases := []struct {
		path    string
		code    int
		status  string
		message string
	}{
		{"/fail", fiber.StatusConflict, "fail", "Sample conflict"},
		{"/internal", fiber.StatusInternalServerError, "error", "Something went wrong"},
		{"/public", fiber.StatusInternalServerError, "error", "Mail is down"},
		{"/missing", fiber.StatusNotFound, "fail", "Can't find /missing on this server!"},
	}
	for _, tc := range cases {
		t.Run(tc.path, func(t *testing.T) {
			resp, err := app.Test(httptest.NewRequest("GET", tc.path, nil))
			require.NoError(t, err)
			defer resp.Body.Close()

			var body Response
			require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
			assert.Equal(t, tc.code, resp.StatusCode)
			assert.Equal(t, tc.status, body.Status)
			assert.Equal(t, tc.message, body.Message)
		})
	}
}
