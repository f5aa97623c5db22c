package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/cleanbook/scheduler-backend/internal/models"
	"github.com/jmoiron/sqlx"
)

const bookingRecordColumns = `
	b.id, b.date, b.time, b.customer_id,
	c.first_name AS customer_first_name,
	c.last_name AS customer_last_name,
	c.email AS customer_email,
	a.id AS address_id, a.street, a.city, a.postal_code
`

// BookingRepository handles booking database operations
type BookingRepository struct {
	db Queryer
}

// NewBookingRepository creates a new BookingRepository
func NewBookingRepository(db Queryer) *BookingRepository {
	return &BookingRepository{db: db}
}

// WithTx returns a repository bound to tx
func (r *BookingRepository) WithTx(tx *sqlx.Tx) *BookingRepository {
	return &BookingRepository{db: tx}
}

// Create inserts a booking and sets its ID
func (r *BookingRepository) Create(ctx context.Context, booking *models.Booking) error {
	query := r.db.Rebind(`
		INSERT INTO bookings (customer_id, date, time)
		VALUES (?, ?, ?)
		RETURNING id
	`)

	if err := r.db.GetContext(ctx, &booking.ID, query, booking.CustomerID, booking.Date, booking.Time); err != nil {
		return fmt.Errorf("failed to create booking: %w", err)
	}

	return nil
}

// GetByID retrieves a booking by ID
func (r *BookingRepository) GetByID(ctx context.Context, id int64) (*models.Booking, error) {
	var booking models.Booking
	query := r.db.Rebind(`SELECT id, customer_id, date, time FROM bookings WHERE id = ?`)

	err := r.db.GetContext(ctx, &booking, query, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get booking: %w", err)
	}

	return &booking, nil
}

// Update writes customer, date and time of an existing booking
func (r *BookingRepository) Update(ctx context.Context, booking *models.Booking) error {
	query := r.db.Rebind(`UPDATE bookings SET customer_id = ?, date = ?, time = ? WHERE id = ?`)

	result, err := r.db.ExecContext(ctx, query, booking.CustomerID, booking.Date, booking.Time, booking.ID)
	if err != nil {
		return fmt.Errorf("failed to update booking: %w", err)
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

// Delete removes a booking. Assignments must be removed first.
func (r *BookingRepository) Delete(ctx context.Context, id int64) error {
	result, err := r.db.ExecContext(ctx, r.db.Rebind(`DELETE FROM bookings WHERE id = ?`), id)
	if err != nil {
		return fmt.Errorf("failed to delete booking: %w", err)
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

// CountByCustomer returns how many bookings reference a customer
func (r *BookingRepository) CountByCustomer(ctx context.Context, customerID int64) (int, error) {
	var count int
	query := r.db.Rebind(`SELECT COUNT(*) FROM bookings WHERE customer_id = ?`)
	if err := r.db.GetContext(ctx, &count, query, customerID); err != nil {
		return 0, fmt.Errorf("failed to count customer bookings: %w", err)
	}
	return count, nil
}

// GetRecord retrieves one booking joined with customer and address
func (r *BookingRepository) GetRecord(ctx context.Context, id int64) (*models.BookingRecord, error) {
	var record models.BookingRecord
	query := r.db.Rebind(`
		SELECT` + bookingRecordColumns + `
		FROM bookings b
		JOIN customers c ON c.id = b.customer_id
		LEFT JOIN addresses a ON a.id = c.address_id
		WHERE b.id = ?
	`)

	err := r.db.GetContext(ctx, &record, query, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get booking record: %w", err)
	}

	return &record, nil
}

// ListRecords retrieves every booking joined with customer and address
func (r *BookingRepository) ListRecords(ctx context.Context) ([]models.BookingRecord, error) {
	records := []models.BookingRecord{}
	query := `
		SELECT` + bookingRecordColumns + `
		FROM bookings b
		JOIN customers c ON c.id = b.customer_id
		LEFT JOIN addresses a ON a.id = c.address_id
		ORDER BY b.date, b.time, b.id
	`

	if err := r.db.SelectContext(ctx, &records, query); err != nil {
		return nil, fmt.Errorf("failed to list bookings: %w", err)
	}

	return records, nil
}

// ListRecordsByCustomer retrieves the bookings of one customer
func (r *BookingRepository) ListRecordsByCustomer(ctx context.Context, customerID int64) ([]models.BookingRecord, error) {
	records := []models.BookingRecord{}
	query := r.db.Rebind(`
		SELECT` + bookingRecordColumns + `
		FROM bookings b
		JOIN customers c ON c.id = b.customer_id
		LEFT JOIN addresses a ON a.id = c.address_id
		WHERE b.customer_id = ?
		ORDER BY b.date, b.time, b.id
	`)

	if err := r.db.SelectContext(ctx, &records, query, customerID); err != nil {
		return nil, fmt.Errorf("failed to list customer bookings: %w", err)
	}

	return records, nil
}

// ListRecordsByEmployee retrieves the bookings an employee is assigned to
func (r *BookingRepository) ListRecordsByEmployee(ctx context.Context, employeeID int64) ([]models.BookingRecord, error) {
	records := []models.BookingRecord{}
	query := r.db.Rebind(`
		SELECT` + bookingRecordColumns + `
		FROM bookings b
		JOIN booking_assignments ba ON ba.booking_id = b.id
		JOIN customers c ON c.id = b.customer_id
		LEFT JOIN addresses a ON a.id = c.address_id
		WHERE ba.employee_id = ?
		ORDER BY b.date, b.time, b.id
	`)

	if err := r.db.SelectContext(ctx, &records, query, employeeID); err != nil {
		return nil, fmt.Errorf("failed to list employee bookings: %w", err)
	}

	return records, nil
}
