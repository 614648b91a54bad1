package service

import (
	"context"
	"fmt"
	"time"

	"github.com/gitanomongolomon/gmm-site/internal/auth"
	"github.com/gitanomongolomon/gmm-site/internal/config"
	"github.com/gitanomongolomon/gmm-site/internal/domain"
	apperrors "github.com/gitanomongolomon/gmm-site/pkg/util/errorutil"
)

// AuthService gates the admin consoles behind the configured admin secret.
type AuthService struct {
	passwordHash string
	tokens       *auth.TokenManager
	revocations  auth.RevocationStore
}

// NewAuthService hashes the configured secret once. An empty secret leaves login disabled.
func NewAuthService(cfg config.AuthConfig, revocations auth.RevocationStore) (*AuthService, error) {
	svc := &AuthService{
		tokens:      auth.NewTokenManager(cfg.JWTSecret, cfg.SessionTTL()),
		revocations: revocations,
	}
	if cfg.AdminPassword != "" {
		hash, err := auth.HashPassword(cfg.AdminPassword, cfg.BcryptCost)
		if err != nil {
			return nil, fmt.Errorf("hash admin password: %w", err)
		}
		svc.passwordHash = hash
	}
	return svc, nil
}

// Configured reports whether an admin secret is set.
func (s *AuthService) Configured() bool {
	return s.passwordHash != ""
}

// Login issues a session token when password matches the admin secret exactly.
func (s *AuthService) Login(ctx context.Context, password string) (string, domain.AdminSession, error) {
	if !s.Configured() {
		return "", domain.AdminSession{}, apperrors.NewAdminNotConfigured()
	}
	if password == "" || auth.ComparePassword(s.passwordHash, password) != nil {
		return "", domain.AdminSession{}, apperrors.NewUnauthorized("incorrect password")
	}
	return s.tokens.GenerateToken()
}

// Logout revokes the session carried by token. Unknown or expired tokens are ignored.
func (s *AuthService) Logout(ctx context.Context, token string) error {
	claims, err := s.tokens.ParseToken(token)
	if err != nil {
		return nil
	}
	session := claims.Session()
	if err := s.revocations.Revoke(ctx, session.TokenID, session.ExpiresAt); err != nil {
		return apperrors.NewInternalError(err)
	}
	return nil
}

// Verify checks the token signature, expiry and revocation state.
func (s *AuthService) Verify(ctx context.Context, token string) (domain.AdminSession, error) {
	if !s.Configured() {
		return domain.AdminSession{}, apperrors.NewAdminNotConfigured()
	}
	claims, err := s.tokens.ParseToken(token)
	if err != nil {
		return domain.AdminSession{}, apperrors.NewUnauthorized("invalid or expired session")
	}
	session := claims.Session()
	revoked, err := s.revocations.IsRevoked(ctx, session.TokenID)
	if err != nil {
		return domain.AdminSession{}, apperrors.NewInternalError(err)
	}
	if revoked || !session.Active(time.Now()) {
		return domain.AdminSession{}, apperrors.NewUnauthorized("session has ended")
	}
	return session, nil
}
