package handlers

import (
	"net/http"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/gitanomongolomon/gmm-site/internal/api/dto"
	"github.com/gitanomongolomon/gmm-site/internal/auth"
	"github.com/gitanomongolomon/gmm-site/internal/service"
	apperrors "github.com/gitanomongolomon/gmm-site/pkg/util/errorutil"
)

// AuthHandler manages the admin session endpoints.
type AuthHandler struct {
	service      *service.AuthService
	cookieSecure bool
}

// NewAuthHandler constructs handler.
func NewAuthHandler(authService *service.AuthService, cookieSecure bool) *AuthHandler {
	return &AuthHandler{service: authService, cookieSecure: cookieSecure}
}

// Login POST /api/admin/login.
func (h *AuthHandler) Login(c *fiber.Ctx) error {
	var req dto.LoginRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	token, session, err := h.service.Login(c.UserContext(), req.Password)
	if err != nil {
		return err
	}
	c.Cookie(&fiber.Cookie{
		Name:     auth.SessionCookie,
		Value:    token,
		Path:     "/",
		Expires:  session.ExpiresAt,
		HTTPOnly: true,
		Secure:   h.cookieSecure,
		SameSite: fiber.CookieSameSiteStrictMode,
	})
	return c.JSON(fiber.Map{"data": dto.SessionResponse{Token: token, ExpiresAt: session.ExpiresAt}})
}

// Logout POST /api/admin/logout.
func (h *AuthHandler) Logout(c *fiber.Ctx) error {
	if token := auth.TokenFromRequest(c); token != "" {
		if err := h.service.Logout(c.UserContext(), token); err != nil {
			return err
		}
	}
	c.Cookie(&fiber.Cookie{
		Name:     auth.SessionCookie,
		Value:    "",
		Path:     "/",
		Expires:  time.Unix(0, 0),
		HTTPOnly: true,
		Secure:   h.cookieSecure,
		SameSite: fiber.CookieSameSiteStrictMode,
	})
	return c.SendStatus(http.StatusNoContent)
}

// Session GET /api/admin/session.
func (h *AuthHandler) Session(c *fiber.Ctx) error {
	session, ok := auth.SessionFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("admin session required")
	}
	return c.JSON(fiber.Map{"data": dto.SessionResponse{ExpiresAt: session.ExpiresAt}})
}
