package database

import (
	"context"
	"fmt"
	"time"

	"github.com/cleanbook/scheduler-backend/internal/models"
)

// Login attempt identifier types
const (
	IdentifierEmail = "email"
	IdentifierIP    = "ip"
)

// LoginAttemptRepository records login attempts for throttling
type LoginAttemptRepository struct {
	db Queryer
}

// NewLoginAttemptRepository creates a new LoginAttemptRepository
func NewLoginAttemptRepository(db Queryer) *LoginAttemptRepository {
	return &LoginAttemptRepository{db: db}
}

// Record stores one attempt
func (r *LoginAttemptRepository) Record(ctx context.Context, attempt *models.LoginAttempt) error {
	if attempt.CreatedAt.IsZero() {
		attempt.CreatedAt = time.Now().UTC()
	}

	query := r.db.Rebind(`
		INSERT INTO login_attempts (identifier, identifier_type, succeeded, created_at)
		VALUES (?, ?, ?, ?)
		RETURNING id
	`)

	err := r.db.GetContext(ctx, &attempt.ID, query,
		attempt.Identifier,
		attempt.IdentifierType,
		attempt.Succeeded,
		attempt.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to record login attempt: %w", err)
	}

	return nil
}

// CountFailures returns failed attempts for an identifier since a time
func (r *LoginAttemptRepository) CountFailures(ctx context.Context, identifier, identifierType string, since time.Time) (int, error) {
	var count int
	query := r.db.Rebind(`
		SELECT COUNT(*) FROM login_attempts
		WHERE identifier = ? AND identifier_type = ? AND succeeded = ? AND created_at >= ?
	`)

	if err := r.db.GetContext(ctx, &count, query, identifier, identifierType, false, since.UTC()); err != nil {
		return 0, fmt.Errorf("failed to count login failures: %w", err)
	}

	return count, nil
}

// OldestFailureSince returns the earliest failure inside the window, used
// to compute when the window frees up again
func (r *LoginAttemptRepository) OldestFailureSince(ctx context.Context, identifier, identifierType string, since time.Time) (time.Time, error) {
	var attempts []models.LoginAttempt
	query := r.db.Rebind(`
		SELECT id, identifier, identifier_type, succeeded, created_at FROM login_attempts
		WHERE identifier = ? AND identifier_type = ? AND succeeded = ? AND created_at >= ?
		ORDER BY created_at
		LIMIT 1
	`)

	if err := r.db.SelectContext(ctx, &attempts, query, identifier, identifierType, false, since.UTC()); err != nil {
		return time.Time{}, fmt.Errorf("failed to get oldest login failure: %w", err)
	}
	if len(attempts) == 0 {
		return time.Time{}, nil
	}

	return attempts[0].CreatedAt, nil
}

// DeleteBefore removes attempts older than cutoff
func (r *LoginAttemptRepository) DeleteBefore(ctx context.Context, cutoff time.Time) (int64, error) {
	result, err := r.db.ExecContext(ctx, r.db.Rebind(`DELETE FROM login_attempts WHERE created_at < ?`), cutoff.UTC())
	if err != nil {
		return 0, fmt.Errorf("failed to delete login attempts: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("failed to get rows affected: %w", err)
	}

	return rowsAffected, nil
}
