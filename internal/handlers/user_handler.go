package handlers

import (
	"github.com/ahmetcoskunkizilkaya/catalog-api/internal/dto"
	"github.com/ahmetcoskunkizilkaya/catalog-api/internal/query"
	"github.com/ahmetcoskunkizilkaya/catalog-api/internal/services"
	"github.com/ahmetcoskunkizilkaya/catalog-api/internal/tenant"
	"github.com/gofiber/fiber/v2"
)

type UserHandler struct {
	users *services.UserService
}

func NewUserHandler(users *services.UserService) *UserHandler {
	return &UserHandler{users: users}
}

func (h *UserHandler) Me(c *fiber.Ctx) error {
	return c.JSON(dto.Success("data", currentUser(c)))
}

func (h *UserHandler) UpdateMe(c *fiber.Ctx) error {
	var req dto.UpdateMeRequest
	if err := bind(c, &req); err != nil {
		return err
	}

	user, err := h.users.UpdateMe(c.UserContext(), tenant.GetTenantID(c), currentUser(c).ID, &req)
	if err != nil {
		return err
	}
	return c.JSON(dto.Success("user", user))
}

func (h *UserHandler) DeleteMe(c *fiber.Ctx) error {
	if err := h.users.DeleteMe(c.UserContext(), tenant.GetTenantID(c), currentUser(c).ID); err != nil {
		return err
	}
	return c.SendStatus(fiber.StatusNoContent)
}

func (h *UserHandler) List(c *fiber.Ctx) error {
	spec := listSpec(c)
	users, err := h.users.List(c.UserContext(), tenant.GetTenantID(c), spec)
	if err != nil {
		return err
	}

	out, err := query.Project(users, spec.Projection)
	if err != nil {
		return err
	}
	return c.JSON(dto.List("data", out, len(out)))
}

func (h *UserHandler) Get(c *fiber.Ctx) error {
	id, err := paramUUID(c, "id")
	if err != nil {
		return err
	}

	user, err := h.users.Get(c.UserContext(), tenant.GetTenantID(c), id)
	if err != nil {
		return err
	}
	return c.JSON(dto.Success("data", user))
}

func (h *UserHandler) Update(c *fiber.Ctx) error {
	id, err := paramUUID(c, "id")
	if err != nil {
		return err
	}
	var req dto.UpdateUserRequest
	if err := bind(c, &req); err != nil {
		return err
	}

	user, err := h.users.Update(c.UserContext(), tenant.GetTenantID(c), id, &req)
	if err != nil {
		return err
	}
	return c.JSON(dto.Success("data", user))
}

func (h *UserHandler) Delete(c *fiber.Ctx) error {
	id, err := paramUUID(c, "id")
	if err != nil {
		return err
	}

	if err := h.users.Delete(c.UserContext(), tenant.GetTenantID(c), id); err != nil {
		return err
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// Within serves /user-within/:distance/center/:latlng/unit/:unit.
func (h *UserHandler) Within(c *fiber.Ctx) error {
	users, err := h.users.Within(c.UserContext(), tenant.GetTenantID(c),
		c.Params("distance"), c.Params("latlng"), c.Params("unit"))
	if err != nil {
		return err
	}
	return c.JSON(dto.List("data", users, len(users)))
}
