package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/auth-gateway/internal/api/dto"
	"github.com/spec-kit/auth-gateway/internal/auth"
	"github.com/spec-kit/auth-gateway/internal/service"
	apperrors "github.com/spec-kit/auth-gateway/pkg/util"
)

// UsersHandler exposes the /user endpoints.
type UsersHandler struct {
	auth *service.AuthService
}

// NewUsersHandler constructs handler.
func NewUsersHandler(authService *service.AuthService) *UsersHandler {
	return &UsersHandler{auth: authService}
}

// MyInfo handles GET /user/myInfo.
func (h *UsersHandler) MyInfo(c *fiber.Ctx) error {
	identity, ok := auth.IdentityFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("authentication required")
	}

	user, err := h.auth.FindUser(c.UserContext(), identity.Subject())
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"myInfo": dto.NewUserResponse(user)})
}

// FindUser handles GET /user/findUser/:userName.
func (h *UsersHandler) FindUser(c *fiber.Ctx) error {
	user, err := h.auth.FindUser(c.UserContext(), c.Params("userName"))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"user": dto.NewUserResponse(user)})
}

// FindAllUsers handles GET /user/findAllUsers.
func (h *UsersHandler) FindAllUsers(c *fiber.Ctx) error {
	users, err := h.auth.ListUsers(c.UserContext())
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"allUsers": dto.NewUserResponses(users)})
}
