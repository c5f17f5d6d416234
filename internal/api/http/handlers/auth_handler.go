package handlers

import (
	"net/http"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/auth-gateway/internal/api/dto"
	"github.com/spec-kit/auth-gateway/internal/auth"
	"github.com/spec-kit/auth-gateway/internal/service"
	apperrors "github.com/spec-kit/auth-gateway/pkg/util"
)

// AuthHandler exposes the /auth endpoints.
type AuthHandler struct {
	auth *service.AuthService
}

// NewAuthHandler constructs handler.
func NewAuthHandler(authService *service.AuthService) *AuthHandler {
	return &AuthHandler{auth: authService}
}

// Register handles POST /auth/register.
func (h *AuthHandler) Register(c *fiber.Ctx) error {
	var req dto.RegisterRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewBadRequest("invalid payload")
	}

	user, err := h.auth.Register(c.UserContext(), req.UserName, req.UserPassword, req.UserRole)
	if err != nil {
		return err
	}

	resp := dto.NewUserResponse(user)
	return c.Status(http.StatusCreated).JSON(resp)
}

// Login handles POST /auth/login. Every credential failure, empty fields
// included, yields the same 401 body.
func (h *AuthHandler) Login(c *fiber.Ctx) error {
	var req dto.LoginRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewBadRequest("invalid payload")
	}

	session, err := h.auth.Login(c.UserContext(), req.UserName, req.UserPassword)
	if err != nil {
		if auth.IsAuthenticationFailure(err) {
			return apperrors.NewUnauthorized(auth.MsgAuthenticationFailed)
		}
		return apperrors.NewInternalError(err)
	}

	return c.JSON(dto.LoginResponse{
		UserName:  session.Identity.Subject(),
		UserRoles: session.Identity.Roles(),
		Token:     session.Token,
		ExpiresAt: session.ExpiresAt,
	})
}

// Logout handles GET /auth/logout. Tokens are stateless, so the client is
// expected to discard its token; nothing is revoked server side.
func (h *AuthHandler) Logout(c *fiber.Ctx) error {
	identity, _ := auth.IdentityFromContext(c)
	if err := h.auth.Logout(c.UserContext(), identity); err != nil {
		return err
	}
	return c.SendStatus(http.StatusNoContent)
}
