package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/cleanbook/scheduler-backend/internal/models"
	"github.com/jmoiron/sqlx"
)

const identityAccountColumns = `id, user_name, email, password_hash, employee_id, created_at, updated_at`

// IdentityRepository stores login accounts and their role grants
type IdentityRepository struct {
	db Queryer
}

// NewIdentityRepository creates a new IdentityRepository
func NewIdentityRepository(db Queryer) *IdentityRepository {
	return &IdentityRepository{db: db}
}

// WithTx returns a repository bound to tx
func (r *IdentityRepository) WithTx(tx *sqlx.Tx) *IdentityRepository {
	return &IdentityRepository{db: tx}
}

// Create inserts an account. ID and timestamps must be set by the caller.
func (r *IdentityRepository) Create(ctx context.Context, account *models.IdentityAccount) error {
	query := r.db.Rebind(`
		INSERT INTO identity_accounts (` + identityAccountColumns + `)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`)

	_, err := r.db.ExecContext(ctx, query,
		account.ID,
		account.UserName,
		account.Email,
		account.PasswordHash,
		account.EmployeeID,
		account.CreatedAt,
		account.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create identity account: %w", err)
	}

	return nil
}

func (r *IdentityRepository) getBy(ctx context.Context, column string, value interface{}) (*models.IdentityAccount, error) {
	var account models.IdentityAccount
	query := r.db.Rebind(`SELECT ` + identityAccountColumns + ` FROM identity_accounts WHERE ` + column + ` = ?`)

	err := r.db.GetContext(ctx, &account, query, value)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get identity account: %w", err)
	}

	return &account, nil
}

// GetByID retrieves an account by ID
func (r *IdentityRepository) GetByID(ctx context.Context, id string) (*models.IdentityAccount, error) {
	return r.getBy(ctx, "id", id)
}

// GetByEmail retrieves an account by normalized email
func (r *IdentityRepository) GetByEmail(ctx context.Context, email string) (*models.IdentityAccount, error) {
	return r.getBy(ctx, "email", email)
}

// GetByEmployeeID retrieves the account linked to an employee
func (r *IdentityRepository) GetByEmployeeID(ctx context.Context, employeeID int64) (*models.IdentityAccount, error) {
	return r.getBy(ctx, "employee_id", employeeID)
}

// EmailTaken reports whether an account other than excludeID uses email
func (r *IdentityRepository) EmailTaken(ctx context.Context, email, excludeID string) (bool, error) {
	var count int
	query := r.db.Rebind(`SELECT COUNT(*) FROM identity_accounts WHERE email = ? AND id <> ?`)
	if err := r.db.GetContext(ctx, &count, query, email, excludeID); err != nil {
		return false, fmt.Errorf("failed to check account email: %w", err)
	}
	return count > 0, nil
}

// SetEmail changes email and user name together
func (r *IdentityRepository) SetEmail(ctx context.Context, id, email string) error {
	query := r.db.Rebind(`UPDATE identity_accounts SET email = ?, user_name = ?, updated_at = ? WHERE id = ?`)

	result, err := r.db.ExecContext(ctx, query, email, email, time.Now().UTC(), id)
	if err != nil {
		return fmt.Errorf("failed to update account email: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rows == 0 {
		return ErrNotFound
	}

	return nil
}

// Delete removes an account. Role grants must be removed first.
func (r *IdentityRepository) Delete(ctx context.Context, id string) error {
	result, err := r.db.ExecContext(ctx, r.db.Rebind(`DELETE FROM identity_accounts WHERE id = ?`), id)
	if err != nil {
		return fmt.Errorf("failed to delete identity account: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rows == 0 {
		return ErrNotFound
	}

	return nil
}

// AddRole grants a role by name. Granting an already held role is a no-op.
func (r *IdentityRepository) AddRole(ctx context.Context, accountID, roleName string) error {
	query := r.db.Rebind(`
		INSERT INTO identity_account_roles (account_id, role_name)
		VALUES (?, ?)
		ON CONFLICT (account_id, role_name) DO NOTHING
	`)
	if _, err := r.db.ExecContext(ctx, query, accountID, roleName); err != nil {
		return fmt.Errorf("failed to add role: %w", err)
	}
	return nil
}

// RemoveRoles revokes every role of an account
func (r *IdentityRepository) RemoveRoles(ctx context.Context, accountID string) error {
	query := r.db.Rebind(`DELETE FROM identity_account_roles WHERE account_id = ?`)
	if _, err := r.db.ExecContext(ctx, query, accountID); err != nil {
		return fmt.Errorf("failed to remove roles: %w", err)
	}
	return nil
}

// GetRoles returns the role names granted to an account
func (r *IdentityRepository) GetRoles(ctx context.Context, accountID string) ([]string, error) {
	roles := []string{}
	query := r.db.Rebind(`SELECT role_name FROM identity_account_roles WHERE account_id = ? ORDER BY role_name`)
	if err := r.db.SelectContext(ctx, &roles, query, accountID); err != nil {
		return nil, fmt.Errorf("failed to get roles: %w", err)
	}
	return roles, nil
}
