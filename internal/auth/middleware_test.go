package auth

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gitanomongolomon/gmm-site/internal/domain"
	apperrors "github.com/gitanomongolomon/gmm-site/pkg/util/errorutil"
)

type stubVerifier struct {
	valid string
}

func (v stubVerifier) Verify(_ context.Context, token string) (domain.AdminSession, error) {
	if token != v.valid {
		return domain.AdminSession{}, apperrors.NewUnauthorized("invalid or expired session")
	}
	return domain.AdminSession{TokenID: "jti", ExpiresAt: time.Now().Add(time.Hour)}, nil
}

func protectedApp() *fiber.App {
	app := fiber.New(fiber.Config{
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			var fiberErr *fiber.Error
			if errors.As(err, &fiberErr) {
				return c.SendStatus(fiberErr.Code)
			}
			return c.SendStatus(apperrors.ToDomainError(err).HTTPStatus)
		},
	})
	app.Get("/admin", NewAuthMiddleware(stubVerifier{valid: "good"}).Handle, RequireAdmin(), func(c *fiber.Ctx) error {
		session, ok := SessionFromContext(c)
		if !ok {
			return c.SendStatus(http.StatusInternalServerError)
		}
		return c.SendString(session.TokenID)
	})
	app.Get("/open", RequireAdmin(), func(c *fiber.Ctx) error { return c.SendStatus(http.StatusOK) })
	return app
}

func TestAuthMiddleware(t *testing.T) {
	app := protectedApp()

	tests := []struct {
		name   string
		setup  func(*http.Request)
		status int
	}{
		{"no token", func(*http.Request) {}, http.StatusUnauthorized},
		{"bearer", func(r *http.Request) { r.Header.Set("Authorization", "Bearer good") }, http.StatusOK},
		{"cookie", func(r *http.Request) { r.AddCookie(&http.Cookie{Name: SessionCookie, Value: "good"}) }, http.StatusOK},
		{"bad token", func(r *http.Request) { r.Header.Set("Authorization", "Bearer nope") }, http.StatusUnauthorized},
		{"bearer wins over cookie", func(r *http.Request) {
			r.Header.Set("Authorization", "Bearer nope")
			r.AddCookie(&http.Cookie{Name: SessionCookie, Value: "good"})
		}, http.StatusUnauthorized},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/admin", nil)
			tt.setup(req)
			resp, err := app.Test(req)
			require.NoError(t, err)
			assert.Equal(t, tt.status, resp.StatusCode)
		})
	}
}

func TestRequireAdminWithoutMiddleware(t *testing.T) {
	resp, err := protectedApp().Test(httptest.NewRequest(http.MethodGet, "/open", nil))
	require.NoError(t, err)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}
