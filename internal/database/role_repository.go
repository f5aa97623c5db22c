package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/cleanbook/scheduler-backend/internal/models"
	"github.com/jmoiron/sqlx"
)

// RoleRepository handles role database operations
type RoleRepository struct {
	db Queryer
}

// NewRoleRepository creates a new RoleRepository
func NewRoleRepository(db Queryer) *RoleRepository {
	return &RoleRepository{db: db}
}

// WithTx returns a repository bound to tx
func (r *RoleRepository) WithTx(tx *sqlx.Tx) *RoleRepository {
	return &RoleRepository{db: tx}
}

// GetByID retrieves a role by ID
func (r *RoleRepository) GetByID(ctx context.Context, id int64) (*models.Role, error) {
	var role models.Role
	err := r.db.GetContext(ctx, &role, r.db.Rebind(`SELECT id, name FROM roles WHERE id = ?`), id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get role: %w", err)
	}
	return &role, nil
}

// List retrieves all roles
func (r *RoleRepository) List(ctx context.Context) ([]models.Role, error) {
	roles := []models.Role{}
	if err := r.db.SelectContext(ctx, &roles, `SELECT id, name FROM roles ORDER BY id`); err != nil {
		return nil, fmt.Errorf("failed to list roles: %w", err)
	}
	return roles, nil
}

// Ensure inserts a role by name unless it already exists
func (r *RoleRepository) Ensure(ctx context.Context, name string) error {
	query := r.db.Rebind(`INSERT INTO roles (name) VALUES (?) ON CONFLICT (name) DO NOTHING`)
	if _, err := r.db.ExecContext(ctx, query, name); err != nil {
		return fmt.Errorf("failed to ensure role %s: %w", name, err)
	}
	return nil
}

// GetByName retrieves a role by name
func (r *RoleRepository) GetByName(ctx context.Context, name string) (*models.Role, error) {
	var role models.Role
	err := r.db.GetContext(ctx, &role, r.db.Rebind(`SELECT id, name FROM roles WHERE name = ?`), name)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get role: %w", err)
	}
	return &role, nil
}
