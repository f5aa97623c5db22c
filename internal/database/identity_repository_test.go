package database

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/cleanbook/scheduler-backend/internal/models"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIdentityRepositoryCreate(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewIdentityRepository(db)
	now := time.Now().UTC()

	account := &models.IdentityAccount{
		ID:           uuid.NewString(),
		UserName:     "cleaner@example.com",
		Email:        "cleaner@example.com",
		PasswordHash: "hash",
		EmployeeID:   3,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	t.Run("Success", func(t *testing.T) {
		mock.ExpectExec(`INSERT INTO identity_accounts`).
			WithArgs(account.ID, account.UserName, account.Email, "hash", int64(3), now, now).
			WillReturnResult(sqlmock.NewResult(0, 1))

		require.NoError(t, repo.Create(context.Background(), account))
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("Duplicate Email", func(t *testing.T) {
		mock.ExpectExec(`INSERT INTO identity_accounts`).
			WillReturnError(fmt.Errorf("duplicate key value violates unique constraint"))

		err := repo.Create(context.Background(), account)
		assert.Error(t, err)
		assert.Contains(t, err.Error(), "failed to create identity account")
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestIdentityRepositoryGetByEmail(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewIdentityRepository(db)
	now := time.Now().UTC()

	t.Run("Found", func(t *testing.T) {
		mock.ExpectQuery(`FROM identity_accounts WHERE email = \?`).
			WithArgs("admin@example.com").
			WillReturnRows(sqlmock.NewRows([]string{"id", "user_name", "email", "password_hash", "employee_id", "created_at", "updated_at"}).
				AddRow("acc-1", "admin@example.com", "admin@example.com", "hash", int64(1), now, now))

		account, err := repo.GetByEmail(context.Background(), "admin@example.com")
		require.NoError(t, err)
		assert.Equal(t, "acc-1", account.ID)
		assert.Equal(t, int64(1), account.EmployeeID)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("Not Found", func(t *testing.T) {
		mock.ExpectQuery(`FROM identity_accounts WHERE email = \?`).
			WithArgs("nobody@example.com").
			WillReturnRows(sqlmock.NewRows([]string{"id"}))

		account, err := repo.GetByEmail(context.Background(), "nobody@example.com")
		assert.ErrorIs(t, err, ErrNotFound)
		assert.Nil(t, account)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestIdentityRepositoryRoles(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewIdentityRepository(db)
	ctx := context.Background()

	mock.ExpectExec(`INSERT INTO identity_account_roles`).
		WithArgs("acc-1", "Cleaner").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectQuery(`SELECT role_name FROM identity_account_roles`).
		WithArgs("acc-1").
		WillReturnRows(sqlmock.NewRows([]string{"role_name"}).AddRow("Cleaner"))

	require.NoError(t, repo.AddRole(ctx, "acc-1", "Cleaner"))
	roles, err := repo.GetRoles(ctx, "acc-1")
	require.NoError(t, err)
	assert.Equal(t, []string{"Cleaner"}, roles)
	assert.NoError(t, mock.ExpectationsWereMet())
}
