package database

import (
	"context"
	"fmt"

	"github.com/cleanbook/scheduler-backend/internal/models"
	"github.com/jmoiron/sqlx"
)

// AssignmentRepository handles booking-to-cleaner links
type AssignmentRepository struct {
	db Queryer
}

// NewAssignmentRepository creates a new AssignmentRepository
func NewAssignmentRepository(db Queryer) *AssignmentRepository {
	return &AssignmentRepository{db: db}
}

// WithTx returns a repository bound to tx
func (r *AssignmentRepository) WithTx(tx *sqlx.Tx) *AssignmentRepository {
	return &AssignmentRepository{db: tx}
}

// ListEmployeeIDs returns the employees currently assigned to a booking
func (r *AssignmentRepository) ListEmployeeIDs(ctx context.Context, bookingID int64) ([]int64, error) {
	ids := []int64{}
	query := r.db.Rebind(`SELECT employee_id FROM booking_assignments WHERE booking_id = ? ORDER BY employee_id`)
	if err := r.db.SelectContext(ctx, &ids, query, bookingID); err != nil {
		return nil, fmt.Errorf("failed to list assignments: %w", err)
	}
	return ids, nil
}

// Exists reports whether an employee is assigned to a booking
func (r *AssignmentRepository) Exists(ctx context.Context, bookingID, employeeID int64) (bool, error) {
	var count int
	query := r.db.Rebind(`SELECT COUNT(*) FROM booking_assignments WHERE booking_id = ? AND employee_id = ?`)
	if err := r.db.GetContext(ctx, &count, query, bookingID, employeeID); err != nil {
		return false, fmt.Errorf("failed to check assignment: %w", err)
	}
	return count > 0, nil
}

// Add links an employee to a booking
func (r *AssignmentRepository) Add(ctx context.Context, bookingID, employeeID int64) error {
	query := r.db.Rebind(`INSERT INTO booking_assignments (booking_id, employee_id) VALUES (?, ?)`)
	if _, err := r.db.ExecContext(ctx, query, bookingID, employeeID); err != nil {
		return fmt.Errorf("failed to add assignment: %w", err)
	}
	return nil
}

// Remove unlinks an employee from a booking
func (r *AssignmentRepository) Remove(ctx context.Context, bookingID, employeeID int64) error {
	query := r.db.Rebind(`DELETE FROM booking_assignments WHERE booking_id = ? AND employee_id = ?`)
	if _, err := r.db.ExecContext(ctx, query, bookingID, employeeID); err != nil {
		return fmt.Errorf("failed to remove assignment: %w", err)
	}
	return nil
}

// RemoveAllForBooking unlinks every employee from a booking
func (r *AssignmentRepository) RemoveAllForBooking(ctx context.Context, bookingID int64) error {
	query := r.db.Rebind(`DELETE FROM booking_assignments WHERE booking_id = ?`)
	if _, err := r.db.ExecContext(ctx, query, bookingID); err != nil {
		return fmt.Errorf("failed to remove booking assignments: %w", err)
	}
	return nil
}

// RemoveAllForEmployee unlinks an employee from every booking
func (r *AssignmentRepository) RemoveAllForEmployee(ctx context.Context, employeeID int64) error {
	query := r.db.Rebind(`DELETE FROM booking_assignments WHERE employee_id = ?`)
	if _, err := r.db.ExecContext(ctx, query, employeeID); err != nil {
		return fmt.Errorf("failed to remove employee assignments: %w", err)
	}
	return nil
}

// ListCleaners returns the assigned employees of the given bookings
func (r *AssignmentRepository) ListCleaners(ctx context.Context, bookingIDs []int64) ([]models.AssignedCleaner, error) {
	cleaners := []models.AssignedCleaner{}
	if len(bookingIDs) == 0 {
		return cleaners, nil
	}

	query, args, err := sqlx.In(`
		SELECT ba.booking_id, e.id AS employee_id, e.first_name, e.last_name, e.email, e.phone
		FROM booking_assignments ba
		JOIN employees e ON e.id = ba.employee_id
		WHERE ba.booking_id IN (?)
		ORDER BY ba.booking_id, e.id
	`, bookingIDs)
	if err != nil {
		return nil, fmt.Errorf("failed to build cleaner query: %w", err)
	}

	if err := r.db.SelectContext(ctx, &cleaners, r.db.Rebind(query), args...); err != nil {
		return nil, fmt.Errorf("failed to list assigned cleaners: %w", err)
	}

	return cleaners, nil
}
