package services

import (
	"context"
	"log/slog"
	"time"

	"github.com/stiftly/foundation_ledger_app/internal/apperrors"
	"github.com/stiftly/foundation_ledger_app/internal/core/domain"
	portssvc "github.com/stiftly/foundation_ledger_app/internal/core/ports/services"
	"github.com/stiftly/foundation_ledger_app/internal/platform/config"
	"github.com/stiftly/foundation_ledger_app/internal/utils"
)

// tokenService implements the TokenSvcFacade interface
type tokenService struct {
	BaseService
	cfg         *config.Config
	userService portssvc.UserSvcFacade
}

// NewTokenService creates a new token service with the provided dependencies
func NewTokenService(cfg *config.Config, userService portssvc.UserSvcFacade) *tokenService {
	return &tokenService{
		cfg:         cfg,
		userService: userService,
	}
}

// Ensure tokenService implements the TokenSvcFacade interface
var _ portssvc.TokenSvcFacade = (*tokenService)(nil)

// GenerateAccessToken issues a signed JWT access token for the user.
func (s *tokenService) GenerateAccessToken(ctx context.Context, user *domain.User) (string, time.Time, error) {
	expiresAt := time.Now().Add(s.cfg.JWTExpiryDuration)
	token, err := utils.GenerateJWT(user.UserID, s.cfg.JWTSecret, s.cfg.JWTExpiryDuration, s.cfg.JWTIssuer)
	if err != nil {
		s.LogError(ctx, err, "Failed to generate access token",
			slog.String("user_id", user.UserID))
		return "", time.Time{}, err
	}
	return token, expiresAt, nil
}

// GenerateRefreshToken issues an opaque refresh token and persists its hash
// and expiry on the user record. Only the hash is stored.
func (s *tokenService) GenerateRefreshToken(ctx context.Context, user *domain.User) (string, time.Time, error) {
	refreshToken, err := utils.GenerateSecureRandomString(32)
	if err != nil {
		s.LogError(ctx, err, "Failed to generate refresh token",
			slog.String("user_id", user.UserID))
		return "", time.Time{}, err
	}

	expiresAt := time.Now().Add(s.cfg.RefreshTokenExpiryDuration)
	refreshTokenHash := utils.HashRefreshToken(refreshToken)

	if err := s.userService.UpdateRefreshToken(ctx, user.UserID, refreshTokenHash, expiresAt); err != nil {
		return "", time.Time{}, err
	}
	return refreshToken, expiresAt, nil
}

// ValidateAndParseRefreshToken validates a refresh token string against the
// user's stored token hash and expiry.
func (s *tokenService) ValidateAndParseRefreshToken(ctx context.Context, userID string, refreshTokenString string) (*domain.User, error) {
	user, err := s.userService.GetUserByID(ctx, userID)
	if err != nil {
		return nil, apperrors.ErrUnauthorized
	}

	if user.RefreshTokenHash == "" || user.RefreshTokenExpiryTime == nil {
		s.LogDebug(ctx, "No refresh token on record",
			slog.String("user_id", userID))
		return nil, apperrors.ErrUnauthorized
	}
	if time.Now().After(*user.RefreshTokenExpiryTime) {
		s.LogDebug(ctx, "Refresh token expired",
			slog.String("user_id", userID))
		return nil, apperrors.ErrRefreshTokenExpired
	}
	if !utils.CompareRefreshTokenHash(refreshTokenString, user.RefreshTokenHash) {
		s.LogDebug(ctx, "Refresh token hash mismatch",
			slog.String("user_id", userID))
		return nil, apperrors.ErrUnauthorized
	}

	return user, nil
}
