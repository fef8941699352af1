package handlers

import (
	"github.com/ahmetcoskunkizilkaya/catalog-api/internal/dto"
	"github.com/ahmetcoskunkizilkaya/catalog-api/internal/services"
	"github.com/ahmetcoskunkizilkaya/catalog-api/internal/tenant"
	"github.com/gofiber/fiber/v2"
)

const resetPasswordPath = "/api/v1/users/reset-password/"

type AuthHandler struct {
	authService  *services.AuthService
	resetBaseURL string
}

// NewAuthHandler builds emailed reset links on appURL, never on the request
// Host header.
func NewAuthHandler(authService *services.AuthService, appURL string) *AuthHandler {
	return &AuthHandler{
		authService:  authService,
		resetBaseURL: appURL + resetPasswordPath,
	}
}

func (h *AuthHandler) Signup(c *fiber.Ctx) error {
	var req dto.SignupRequest
	if err := bind(c, &req); err != nil {
		return err
	}

	user, token, err := h.authService.Signup(c.UserContext(), tenant.GetTenantID(c), &req)
	if err != nil {
		return err
	}
	return c.Status(fiber.StatusCreated).JSON(dto.WithToken(token, user))
}

func (h *AuthHandler) Login(c *fiber.Ctx) error {
	var req dto.LoginRequest
	if err := bind(c, &req); err != nil {
		return err
	}

	user, token, err := h.authService.Login(c.UserContext(), tenant.GetTenantID(c), &req)
	if err != nil {
		return err
	}
	return c.JSON(dto.WithToken(token, user))
}

func (h *AuthHandler) ForgotPassword(c *fiber.Ctx) error {
	var req dto.ForgotPasswordRequest
	if err := bind(c, &req); err != nil {
		return err
	}

	if err := h.authService.ForgotPassword(c.UserContext(), tenant.GetTenantID(c), req.Email, h.resetBaseURL); err != nil {
		return err
	}
	return c.JSON(dto.Message("Token sent to email!"))
}

func (h *AuthHandler) ResetPassword(c *fiber.Ctx) error {
	var req dto.ResetPasswordRequest
	if err := bind(c, &req); err != nil {
		return err
	}

	user, token, err := h.authService.ResetPassword(c.UserContext(), tenant.GetTenantID(c), c.Params("token"), &req)
	if err != nil {
		return err
	}
	return c.Status(fiber.StatusCreated).JSON(dto.WithToken(token, user))
}

func (h *AuthHandler) UpdatePassword(c *fiber.Ctx) error {
	var req dto.UpdatePasswordRequest
	if err := bind(c, &req); err != nil {
		return err
	}

	user, token, err := h.authService.UpdatePassword(c.UserContext(), tenant.GetTenantID(c), currentUser(c).ID, &req)
	if err != nil {
		return err
	}
	return c.JSON(dto.WithToken(token, user))
}
