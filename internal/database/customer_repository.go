package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/cleanbook/scheduler-backend/internal/models"
	"github.com/jmoiron/sqlx"
)

// CustomerRepository handles customer and address database operations
type CustomerRepository struct {
	db Queryer
}

// NewCustomerRepository creates a new CustomerRepository
func NewCustomerRepository(db Queryer) *CustomerRepository {
	return &CustomerRepository{db: db}
}

// WithTx returns a repository bound to tx
func (r *CustomerRepository) WithTx(tx *sqlx.Tx) *CustomerRepository {
	return &CustomerRepository{db: tx}
}

// customerDetailRow is a customer joined with its optional address
type customerDetailRow struct {
	models.Customer
	Street     models.NullString `db:"street"`
	City       models.NullString `db:"city"`
	PostalCode models.NullString `db:"postal_code"`
}

func (row customerDetailRow) detail() models.CustomerDetail {
	detail := models.CustomerDetail{Customer: row.Customer}
	if row.AddressID.Valid {
		detail.Address = &models.Address{
			ID:         row.AddressID.Int64,
			Street:     row.Street.String,
			City:       row.City.String,
			PostalCode: row.PostalCode.String,
		}
	}
	return detail
}

const customerDetailQuery = `
	SELECT c.id, c.first_name, c.last_name, c.email, c.address_id,
		a.street, a.city, a.postal_code
	FROM customers c
	LEFT JOIN addresses a ON a.id = c.address_id
`

// Create inserts a customer and sets its ID
func (r *CustomerRepository) Create(ctx context.Context, customer *models.Customer) error {
	query := r.db.Rebind(`
		INSERT INTO customers (first_name, last_name, email, address_id)
		VALUES (?, ?, ?, ?)
		RETURNING id
	`)

	err := r.db.GetContext(ctx, &customer.ID, query,
		customer.FirstName,
		customer.LastName,
		customer.Email,
		customer.AddressID,
	)
	if err != nil {
		return fmt.Errorf("failed to create customer: %w", err)
	}

	return nil
}

// GetByID retrieves a customer without its address
func (r *CustomerRepository) GetByID(ctx context.Context, id int64) (*models.Customer, error) {
	var customer models.Customer
	query := r.db.Rebind(`SELECT id, first_name, last_name, email, address_id FROM customers WHERE id = ?`)

	err := r.db.GetContext(ctx, &customer, query, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get customer: %w", err)
	}

	return &customer, nil
}

// GetDetail retrieves a customer with its address
func (r *CustomerRepository) GetDetail(ctx context.Context, id int64) (*models.CustomerDetail, error) {
	var row customerDetailRow
	err := r.db.GetContext(ctx, &row, r.db.Rebind(customerDetailQuery+` WHERE c.id = ?`), id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get customer: %w", err)
	}

	detail := row.detail()
	return &detail, nil
}

// List retrieves all customers with their addresses
func (r *CustomerRepository) List(ctx context.Context) ([]models.CustomerDetail, error) {
	var rows []customerDetailRow
	if err := r.db.SelectContext(ctx, &rows, customerDetailQuery+` ORDER BY c.last_name, c.first_name, c.id`); err != nil {
		return nil, fmt.Errorf("failed to list customers: %w", err)
	}

	customers := make([]models.CustomerDetail, 0, len(rows))
	for _, row := range rows {
		customers = append(customers, row.detail())
	}

	return customers, nil
}

// Exists reports whether a customer row exists
func (r *CustomerRepository) Exists(ctx context.Context, id int64) (bool, error) {
	var count int
	query := r.db.Rebind(`SELECT COUNT(*) FROM customers WHERE id = ?`)
	if err := r.db.GetContext(ctx, &count, query, id); err != nil {
		return false, fmt.Errorf("failed to check customer: %w", err)
	}
	return count > 0, nil
}

// EmailTaken reports whether another customer uses email. Pass excludeID 0
// to check against all customers.
func (r *CustomerRepository) EmailTaken(ctx context.Context, email string, excludeID int64) (bool, error) {
	var count int
	query := r.db.Rebind(`SELECT COUNT(*) FROM customers WHERE LOWER(email) = LOWER(?) AND id <> ?`)
	if err := r.db.GetContext(ctx, &count, query, email, excludeID); err != nil {
		return false, fmt.Errorf("failed to check customer email: %w", err)
	}
	return count > 0, nil
}

// Update writes name, email and address link of a customer
func (r *CustomerRepository) Update(ctx context.Context, customer *models.Customer) error {
	query := r.db.Rebind(`
		UPDATE customers
		SET first_name = ?, last_name = ?, email = ?, address_id = ?
		WHERE id = ?
	`)

	result, err := r.db.ExecContext(ctx, query,
		customer.FirstName,
		customer.LastName,
		customer.Email,
		customer.AddressID,
		customer.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to update customer: %w", err)
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

// Delete removes a customer
func (r *CustomerRepository) Delete(ctx context.Context, id int64) error {
	result, err := r.db.ExecContext(ctx, r.db.Rebind(`DELETE FROM customers WHERE id = ?`), id)
	if err != nil {
		return fmt.Errorf("failed to delete customer: %w", err)
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

// CreateAddress inserts an address and sets its ID
func (r *CustomerRepository) CreateAddress(ctx context.Context, address *models.Address) error {
	query := r.db.Rebind(`
		INSERT INTO addresses (street, city, postal_code)
		VALUES (?, ?, ?)
		RETURNING id
	`)

	if err := r.db.GetContext(ctx, &address.ID, query, address.Street, address.City, address.PostalCode); err != nil {
		return fmt.Errorf("failed to create address: %w", err)
	}

	return nil
}

// UpdateAddress writes all address fields
func (r *CustomerRepository) UpdateAddress(ctx context.Context, address *models.Address) error {
	query := r.db.Rebind(`UPDATE addresses SET street = ?, city = ?, postal_code = ? WHERE id = ?`)
	if _, err := r.db.ExecContext(ctx, query, address.Street, address.City, address.PostalCode, address.ID); err != nil {
		return fmt.Errorf("failed to update address: %w", err)
	}
	return nil
}

// DeleteAddress removes an address
func (r *CustomerRepository) DeleteAddress(ctx context.Context, id int64) error {
	if _, err := r.db.ExecContext(ctx, r.db.Rebind(`DELETE FROM addresses WHERE id = ?`), id); err != nil {
		return fmt.Errorf("failed to delete address: %w", err)
	}
	return nil
}
