package services

import (
	"context"
	"fmt"
	"time"

	"github.com/cleanbook/scheduler-backend/internal/config"
	"github.com/cleanbook/scheduler-backend/internal/database"
	"github.com/cleanbook/scheduler-backend/internal/models"
)

// RateLimitService throttles failed logins per email and per client IP
type RateLimitService struct {
	attempts *database.LoginAttemptRepository
	config   RateLimitConfig
}

// RateLimitConfig holds rate limiting configuration
type RateLimitConfig struct {
	MaxEmailFailures int           // Max failed logins per email
	EmailWindow      time.Duration // Time window for email rate limit
	MaxIPFailures    int           // Max failed logins per IP
	IPWindow         time.Duration // Time window for IP rate limit
}

// DefaultRateLimitConfig returns the default rate limit configuration
func DefaultRateLimitConfig() RateLimitConfig {
	return RateLimitConfig{
		MaxEmailFailures: 5,                // 5 failures
		EmailWindow:      15 * time.Minute, // per 15 minutes
		MaxIPFailures:    20,               // 20 failures
		IPWindow:         1 * time.Hour,    // per hour
	}
}

// RateLimitConfigFrom builds the service configuration from application config
func RateLimitConfigFrom(cfg config.RateLimitConfig) RateLimitConfig {
	return RateLimitConfig{
		MaxEmailFailures: cfg.LoginMaxAttempts,
		EmailWindow:      time.Duration(cfg.LoginWindowMinutes) * time.Minute,
		MaxIPFailures:    cfg.LoginMaxIPAttempts,
		IPWindow:         time.Duration(cfg.LoginIPWindowMinutes) * time.Minute,
	}
}

// NewRateLimitService creates a new rate limit service
func NewRateLimitService(attempts *database.LoginAttemptRepository, config RateLimitConfig) *RateLimitService {
	return &RateLimitService{
		attempts: attempts,
		config:   config,
	}
}

// RateLimitError represents a rate limit exceeded error
type RateLimitError struct {
	Message    string
	RetryAfter time.Time
	Type       string // "email" or "ip"
}

func (e *RateLimitError) Error() string {
	return e.Message
}

// Is lets errors.Is(err, ErrRateLimited) match
func (e *RateLimitError) Is(target error) bool {
	return target == ErrRateLimited
}

// CheckLoginAllowed returns a *RateLimitError if the email or IP has
// exceeded its failure budget
func (s *RateLimitService) CheckLoginAllowed(ctx context.Context, email, ip string) error {
	if email != "" {
		if err := s.check(ctx, email, database.IdentifierEmail, s.config.MaxEmailFailures, s.config.EmailWindow,
			"Too many failed login attempts for this account"); err != nil {
			return err
		}
	}

	if ip != "" {
		if err := s.check(ctx, ip, database.IdentifierIP, s.config.MaxIPFailures, s.config.IPWindow,
			"Too many failed login attempts from this IP address"); err != nil {
			return err
		}
	}

	return nil
}

func (s *RateLimitService) check(ctx context.Context, identifier, identifierType string, max int, window time.Duration, message string) error {
	if max <= 0 {
		return nil
	}

	since := time.Now().UTC().Add(-window)
	count, err := s.attempts.CountFailures(ctx, identifier, identifierType, since)
	if err != nil {
		return fmt.Errorf("failed to check %s rate limit: %w", identifierType, err)
	}
	if count < max {
		return nil
	}

	oldest, err := s.attempts.OldestFailureSince(ctx, identifier, identifierType, since)
	if err != nil {
		return fmt.Errorf("failed to check %s rate limit: %w", identifierType, err)
	}
	retryAfter := oldest.Add(window)

	return &RateLimitError{
		Message:    fmt.Sprintf("%s. Please try again after %s", message, retryAfter.Format("15:04:05")),
		RetryAfter: retryAfter,
		Type:       identifierType,
	}
}

// RecordLoginAttempt records the outcome of a login for the email and IP
func (s *RateLimitService) RecordLoginAttempt(ctx context.Context, email, ip string, succeeded bool) error {
	if email != "" {
		if err := s.attempts.Record(ctx, &models.LoginAttempt{
			Identifier:     email,
			IdentifierType: database.IdentifierEmail,
			Succeeded:      succeeded,
		}); err != nil {
			return fmt.Errorf("failed to record email attempt: %w", err)
		}
	}

	if ip != "" {
		if err := s.attempts.Record(ctx, &models.LoginAttempt{
			Identifier:     ip,
			IdentifierType: database.IdentifierIP,
			Succeeded:      succeeded,
		}); err != nil {
			return fmt.Errorf("failed to record IP attempt: %w", err)
		}
	}

	return nil
}

// CleanupExpiredAttempts removes attempts older than the longest window
func (s *RateLimitService) CleanupExpiredAttempts(ctx context.Context) (int64, error) {
	maxWindow := s.config.IPWindow
	if s.config.EmailWindow > maxWindow {
		maxWindow = s.config.EmailWindow
	}

	removed, err := s.attempts.DeleteBefore(ctx, time.Now().UTC().Add(-maxWindow))
	if err != nil {
		return 0, fmt.Errorf("failed to cleanup login attempts: %w", err)
	}

	return removed, nil
}
