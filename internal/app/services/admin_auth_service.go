package services

import (
	"context"
	"crypto/subtle"
	"errors"
	"time"

	"github.com/yigit/academy/internal/pkg/apperrors"
	"github.com/yigit/academy/internal/pkg/auth"
	"github.com/yigit/academy/internal/pkg/logger"
)

// AdminSession is a signed console session
type AdminSession struct {
	Token     string
	Username  string
	ExpiresAt time.Time
}

// AdminAuthService checks console credentials and session tokens
type AdminAuthService interface {
	Login(ctx context.Context, username, password string) (*AdminSession, error)
	Validate(token string) (*auth.Claims, error)
}

type adminAuthServiceImpl struct {
	username     string
	passwordHash string
	jwtService   *auth.JWTService
}

// NewAdminAuthService creates the service for the single configured admin
func NewAdminAuthService(username, passwordHash string, jwtService *auth.JWTService) AdminAuthService {
	if passwordHash == "" {
		logger.Warn().Msg("Admin password hash not configured - console login disabled")
	}
	return &adminAuthServiceImpl{
		username:     username,
		passwordHash: passwordHash,
		jwtService:   jwtService,
	}
}

// Login verifies the credentials and signs a session token
func (s *adminAuthServiceImpl) Login(ctx context.Context, username, password string) (*AdminSession, error) {
	userOK := subtle.ConstantTimeCompare([]byte(username), []byte(s.username)) == 1
	// the password is checked even when the username is wrong
	passOK := s.passwordHash != "" && auth.CheckPassword(s.passwordHash, password)
	if !userOK || !passOK {
		logger.Warn().Str("username", username).Msg("Admin login failed")
		return nil, apperrors.ErrInvalidCredentials
	}

	token, expiry, err := s.jwtService.GenerateSessionToken(s.username)
	if err != nil {
		return nil, err
	}
	logger.Info().Str("username", s.username).Msg("Admin logged in")
	return &AdminSession{Token: token, Username: s.username, ExpiresAt: expiry}, nil
}

// Validate checks a session token
func (s *adminAuthServiceImpl) Validate(token string) (*auth.Claims, error) {
	claims, err := s.jwtService.ValidateToken(token)
	switch {
	case err == nil:
		return claims, nil
	case errors.Is(err, auth.ErrExpiredToken):
		return nil, apperrors.ErrTokenExpired
	default:
		return nil, apperrors.ErrTokenInvalid
	}
}
