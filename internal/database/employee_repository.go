package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/cleanbook/scheduler-backend/internal/models"
	"github.com/jmoiron/sqlx"
)

const employeeColumns = `e.id, e.first_name, e.last_name, e.email, e.phone, e.role_id, r.name AS role_name`

// EmployeeRepository handles employee database operations
type EmployeeRepository struct {
	db Queryer
}

// NewEmployeeRepository creates a new EmployeeRepository
func NewEmployeeRepository(db Queryer) *EmployeeRepository {
	return &EmployeeRepository{db: db}
}

// WithTx returns a repository bound to tx
func (r *EmployeeRepository) WithTx(tx *sqlx.Tx) *EmployeeRepository {
	return &EmployeeRepository{db: tx}
}

// Create inserts an employee and sets its ID
func (r *EmployeeRepository) Create(ctx context.Context, employee *models.Employee) error {
	query := r.db.Rebind(`
		INSERT INTO employees (first_name, last_name, email, phone, role_id)
		VALUES (?, ?, ?, ?, ?)
		RETURNING id
	`)

	err := r.db.GetContext(ctx, &employee.ID, query,
		employee.FirstName,
		employee.LastName,
		employee.Email,
		employee.Phone,
		employee.RoleID,
	)
	if err != nil {
		return fmt.Errorf("failed to create employee: %w", err)
	}

	return nil
}

// GetByID retrieves an employee with its role name
func (r *EmployeeRepository) GetByID(ctx context.Context, id int64) (*models.Employee, error) {
	var employee models.Employee
	query := r.db.Rebind(`
		SELECT ` + employeeColumns + `
		FROM employees e
		LEFT JOIN roles r ON r.id = e.role_id
		WHERE e.id = ?
	`)

	err := r.db.GetContext(ctx, &employee, query, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get employee: %w", err)
	}

	return &employee, nil
}

// List retrieves all employees ordered by name
func (r *EmployeeRepository) List(ctx context.Context) ([]models.Employee, error) {
	employees := []models.Employee{}
	query := `
		SELECT ` + employeeColumns + `
		FROM employees e
		LEFT JOIN roles r ON r.id = e.role_id
		ORDER BY e.last_name, e.first_name, e.id
	`

	if err := r.db.SelectContext(ctx, &employees, query); err != nil {
		return nil, fmt.Errorf("failed to list employees: %w", err)
	}

	return employees, nil
}

// Exists reports whether an employee row exists
func (r *EmployeeRepository) Exists(ctx context.Context, id int64) (bool, error) {
	var count int
	query := r.db.Rebind(`SELECT COUNT(*) FROM employees WHERE id = ?`)
	if err := r.db.GetContext(ctx, &count, query, id); err != nil {
		return false, fmt.Errorf("failed to check employee: %w", err)
	}
	return count > 0, nil
}

// Update writes all mutable employee fields
func (r *EmployeeRepository) Update(ctx context.Context, employee *models.Employee) error {
	query := r.db.Rebind(`
		UPDATE employees
		SET first_name = ?, last_name = ?, email = ?, phone = ?, role_id = ?
		WHERE id = ?
	`)

	result, err := r.db.ExecContext(ctx, query,
		employee.FirstName,
		employee.LastName,
		employee.Email,
		employee.Phone,
		employee.RoleID,
		employee.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to update employee: %w", err)
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

// Delete removes an employee
func (r *EmployeeRepository) Delete(ctx context.Context, id int64) error {
	result, err := r.db.ExecContext(ctx, r.db.Rebind(`DELETE FROM employees WHERE id = ?`), id)
	if err != nil {
		return fmt.Errorf("failed to delete employee: %w", err)
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
