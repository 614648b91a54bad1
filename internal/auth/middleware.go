package auth

import (
	"context"
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/gitanomongolomon/gmm-site/internal/domain"
	apperrors "github.com/gitanomongolomon/gmm-site/pkg/util/errorutil"
)

// SessionCookie carries the admin token for browser clients.
const SessionCookie = "gmm_admin_session"

const sessionKey = "admin_session"

// SessionVerifier validates a raw admin token.
type SessionVerifier interface {
	Verify(ctx context.Context, token string) (domain.AdminSession, error)
}

// AuthMiddleware validates admin tokens from the session cookie or a bearer header.
type AuthMiddleware struct {
	verifier SessionVerifier
}

// NewAuthMiddleware constructs middleware.
func NewAuthMiddleware(verifier SessionVerifier) *AuthMiddleware {
	return &AuthMiddleware{verifier: verifier}
}

// Handle enforces authentication for protected routes.
func (m *AuthMiddleware) Handle(c *fiber.Ctx) error {
	token := TokenFromRequest(c)
	if token == "" {
		return apperrors.NewUnauthorized("admin session required")
	}

	session, err := m.verifier.Verify(c.UserContext(), token)
	if err != nil {
		return err
	}

	c.Locals(sessionKey, session)
	return c.Next()
}

// TokenFromRequest extracts the admin token, preferring the bearer header.
func TokenFromRequest(c *fiber.Ctx) string {
	if header := c.Get(fiber.HeaderAuthorization); header != "" {
		parts := strings.SplitN(header, " ", 2)
		if len(parts) == 2 && strings.EqualFold(parts[0], "Bearer") {
			return strings.TrimSpace(parts[1])
		}
	}
	return c.Cookies(SessionCookie)
}

// SessionFromContext retrieves the authenticated session.
func SessionFromContext(c *fiber.Ctx) (domain.AdminSession, bool) {
	session, ok := c.Locals(sessionKey).(domain.AdminSession)
	return session, ok
}
