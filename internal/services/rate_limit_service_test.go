package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/cleanbook/scheduler-backend/internal/database"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupRateLimitTest(t *testing.T) (*RateLimitService, sqlmock.Sqlmock) {
	t.Helper()

	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	sqlxDB := sqlx.NewDb(db, "sqlmock")
	service := NewRateLimitService(database.NewLoginAttemptRepository(sqlxDB), DefaultRateLimitConfig())

	return service, mock
}

func TestCheckLoginAllowed_NoFailures(t *testing.T) {
	service, mock := setupRateLimitTest(t)

	email := "cleaner@example.com"
	ip := "192.168.1.1"

	mock.ExpectQuery("SELECT COUNT(.+) FROM login_attempts").
		WithArgs(email, "email", false, sqlmock.AnyArg()).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(0))

	mock.ExpectQuery("SELECT COUNT(.+) FROM login_attempts").
		WithArgs(ip, "ip", false, sqlmock.AnyArg()).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(0))

	err := service.CheckLoginAllowed(context.Background(), email, ip)
	assert.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCheckLoginAllowed_EmailExceeded(t *testing.T) {
	service, mock := setupRateLimitTest(t)

	email := "cleaner@example.com"
	oldest := time.Now().UTC().Add(-5 * time.Minute)

	mock.ExpectQuery("SELECT COUNT(.+) FROM login_attempts").
		WithArgs(email, "email", false, sqlmock.AnyArg()).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(5))

	mock.ExpectQuery("SELECT (.+) FROM login_attempts").
		WithArgs(email, "email", false, sqlmock.AnyArg()).
		WillReturnRows(sqlmock.NewRows([]string{"id", "identifier", "identifier_type", "succeeded", "created_at"}).
			AddRow(int64(1), email, "email", false, oldest))

	err := service.CheckLoginAllowed(context.Background(), email, "192.168.1.1")
	require.Error(t, err)

	var rateLimitErr *RateLimitError
	require.True(t, errors.As(err, &rateLimitErr), "Error should be RateLimitError")
	assert.Equal(t, "email", rateLimitErr.Type)
	assert.Contains(t, rateLimitErr.Message, "Too many failed login attempts for this account")
	assert.WithinDuration(t, oldest.Add(15*time.Minute), rateLimitErr.RetryAfter, time.Second)
	assert.ErrorIs(t, err, ErrRateLimited)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCheckLoginAllowed_IPExceeded(t *testing.T) {
	service, mock := setupRateLimitTest(t)

	email := "cleaner@example.com"
	ip := "10.0.0.7"
	oldest := time.Now().UTC().Add(-30 * time.Minute)

	mock.ExpectQuery("SELECT COUNT(.+) FROM login_attempts").
		WithArgs(email, "email", false, sqlmock.AnyArg()).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(1))

	mock.ExpectQuery("SELECT COUNT(.+) FROM login_attempts").
		WithArgs(ip, "ip", false, sqlmock.AnyArg()).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(20))

	mock.ExpectQuery("SELECT (.+) FROM login_attempts").
		WithArgs(ip, "ip", false, sqlmock.AnyArg()).
		WillReturnRows(sqlmock.NewRows([]string{"id", "identifier", "identifier_type", "succeeded", "created_at"}).
			AddRow(int64(9), ip, "ip", false, oldest))

	err := service.CheckLoginAllowed(context.Background(), email, ip)
	require.Error(t, err)

	var rateLimitErr *RateLimitError
	require.True(t, errors.As(err, &rateLimitErr))
	assert.Equal(t, "ip", rateLimitErr.Type)
	assert.Contains(t, rateLimitErr.Message, "from this IP address")

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCheckLoginAllowed_DatabaseError(t *testing.T) {
	service, mock := setupRateLimitTest(t)

	mock.ExpectQuery("SELECT COUNT(.+) FROM login_attempts").
		WillReturnError(errors.New("connection reset"))

	err := service.CheckLoginAllowed(context.Background(), "cleaner@example.com", "")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to check email rate limit")

	var rateLimitErr *RateLimitError
	assert.False(t, errors.As(err, &rateLimitErr))
}

func TestRecordLoginAttempt(t *testing.T) {
	service, mock := setupRateLimitTest(t)

	mock.ExpectQuery("INSERT INTO login_attempts").
		WithArgs("cleaner@example.com", "email", false, sqlmock.AnyArg()).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(int64(1)))
	mock.ExpectQuery("INSERT INTO login_attempts").
		WithArgs("10.0.0.7", "ip", false, sqlmock.AnyArg()).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(int64(2)))

	err := service.RecordLoginAttempt(context.Background(), "cleaner@example.com", "10.0.0.7", false)
	assert.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCleanupExpiredAttempts(t *testing.T) {
	service, mock := setupRateLimitTest(t)

	mock.ExpectExec("DELETE FROM login_attempts").
		WithArgs(sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 12))

	removed, err := service.CleanupExpiredAttempts(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int64(12), removed)
	assert.NoError(t, mock.ExpectationsWereMet())
}
