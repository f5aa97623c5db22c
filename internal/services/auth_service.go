package services

import (
	"context"
	"errors"

	"github.com/cleanbook/scheduler-backend/internal/models"
	"github.com/cleanbook/scheduler-backend/internal/utils"
	"github.com/cleanbook/scheduler-backend/pkg/jwt"
	"github.com/sirupsen/logrus"
)

const invalidCredentials = "Invalid email or password"

// AuthService handles employee authentication business logic
type AuthService struct {
	identity     *IdentityService
	visibility   *VisibilityService
	rateLimitSvc *RateLimitService
	jwtService   *jwt.Service
	logger       *logrus.Logger
}

// NewAuthService creates a new auth service
func NewAuthService(
	identity *IdentityService,
	visibility *VisibilityService,
	rateLimitSvc *RateLimitService,
	jwtService *jwt.Service,
	logger *logrus.Logger,
) *AuthService {
	return &AuthService{
		identity:     identity,
		visibility:   visibility,
		rateLimitSvc: rateLimitSvc,
		jwtService:   jwtService,
		logger:       logger,
	}
}

// LoginContext describes where a login request came from
type LoginContext struct {
	IPAddress string
	UserAgent string
}

// Login authenticates an employee account and returns tokens
func (s *AuthService) Login(ctx context.Context, email, password string, from LoginContext) (*models.TokenResponse, error) {
	email = NormalizeEmail(email)

	if err := s.rateLimitSvc.CheckLoginAllowed(ctx, email, from.IPAddress); err != nil {
		var rateLimitErr *RateLimitError
		if errors.As(err, &rateLimitErr) {
			s.logger.WithFields(logrus.Fields{
				"email": email,
				"ip":    from.IPAddress,
				"type":  rateLimitErr.Type,
			}).Warn("Login rate limit exceeded")
			return nil, &ServiceError{Kind: KindRateLimited, Message: rateLimitErr.Message, Err: rateLimitErr}
		}
		return nil, internal("failed to check login rate limit", err)
	}

	account, err := s.identity.FindByEmail(ctx, email)
	if err != nil {
		return nil, err
	}
	if account == nil || !s.identity.CheckPassword(account, password) {
		s.recordAttempt(ctx, email, from.IPAddress, false)
		return nil, unauthorized(invalidCredentials)
	}

	caller, err := s.visibility.resolveAccount(ctx, account)
	if err != nil {
		if KindOf(err) == KindUnauthorized {
			s.recordAttempt(ctx, email, from.IPAddress, false)
			return nil, unauthorized(invalidCredentials)
		}
		return nil, err
	}

	response, err := s.issueTokens(caller)
	if err != nil {
		return nil, err
	}

	s.recordAttempt(ctx, email, from.IPAddress, true)

	device := utils.ParseUserAgent(from.UserAgent)
	s.logger.WithFields(logrus.Fields{
		"account_id":  caller.AccountID,
		"employee_id": caller.EmployeeID,
		"roles":       caller.Roles,
		"ip":          from.IPAddress,
		"device_type": device.DeviceType,
		"os":          device.OS,
		"browser":     device.Browser,
	}).Info("Employee logged in")

	return response, nil
}

// Refresh exchanges a refresh token for a fresh token pair. Roles are read
// again from the identity store.
func (s *AuthService) Refresh(ctx context.Context, refreshToken string) (*models.TokenResponse, error) {
	claims, err := s.jwtService.ValidateRefreshToken(refreshToken)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, unauthorized("Refresh token has expired")
		}
		return nil, unauthorized("Invalid refresh token")
	}

	caller, err := s.visibility.ResolveCaller(ctx, claims)
	if err != nil {
		return nil, err
	}

	return s.issueTokens(caller)
}

func (s *AuthService) issueTokens(caller *models.Caller) (*models.TokenResponse, error) {
	accessToken, expiresAt, err := s.jwtService.GenerateAccessToken(jwt.Identity{
		AccountID:  caller.AccountID,
		EmployeeID: caller.EmployeeID,
		Email:      caller.Email,
		Roles:      caller.Roles,
	})
	if err != nil {
		return nil, internal("failed to generate access token", err)
	}

	refreshToken, _, err := s.jwtService.GenerateRefreshToken(caller.AccountID)
	if err != nil {
		return nil, internal("failed to generate refresh token", err)
	}

	return &models.TokenResponse{
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
		TokenType:    "Bearer",
		ExpiresAt:    expiresAt,
		Caller:       *caller,
	}, nil
}

func (s *AuthService) recordAttempt(ctx context.Context, email, ip string, succeeded bool) {
	if err := s.rateLimitSvc.RecordLoginAttempt(ctx, email, ip, succeeded); err != nil {
		s.logger.WithError(err).Warn("Failed to record login attempt")
	}
}
