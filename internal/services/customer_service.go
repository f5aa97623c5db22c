package services

import (
	"context"
	"errors"
	"strings"

	"github.com/cleanbook/scheduler-backend/internal/database"
	"github.com/cleanbook/scheduler-backend/internal/models"
	"github.com/jmoiron/sqlx"
	"github.com/sirupsen/logrus"
)

// CustomerService manages customers and their addresses
type CustomerService struct {
	db        database.DB
	customers *database.CustomerRepository
	bookings  *database.BookingRepository
	logger    *logrus.Logger
}

// NewCustomerService creates a new CustomerService
func NewCustomerService(
	db database.DB,
	customers *database.CustomerRepository,
	bookings *database.BookingRepository,
	logger *logrus.Logger,
) *CustomerService {
	return &CustomerService{
		db:        db,
		customers: customers,
		bookings:  bookings,
		logger:    logger,
	}
}

// RegisterCustomer creates the address and the customer in one transaction
func (s *CustomerService) RegisterCustomer(ctx context.Context, req *models.RegisterCustomerRequest) (*models.CustomerDetail, error) {
	firstName := strings.TrimSpace(req.FirstName)
	lastName := strings.TrimSpace(req.LastName)
	if firstName == "" || lastName == "" {
		return nil, invalidArgument("First name and last name are required")
	}

	email := NormalizeEmail(req.Email)
	if err := validateEmail(email); err != nil {
		return nil, err
	}

	taken, err := s.customers.EmailTaken(ctx, email, 0)
	if err != nil {
		return nil, internal("failed to check customer email", err)
	}
	if taken {
		return nil, conflict("Customer with email %s already exists", email)
	}

	address := models.Address{
		Street:     strings.TrimSpace(req.Address.Street),
		City:       strings.TrimSpace(req.Address.City),
		PostalCode: strings.TrimSpace(req.Address.PostalCode),
	}
	customer := models.Customer{
		FirstName: firstName,
		LastName:  lastName,
		Email:     email,
	}

	err = database.WithTransaction(ctx, s.db, func(tx *sqlx.Tx) error {
		repo := s.customers.WithTx(tx)
		if err := repo.CreateAddress(ctx, &address); err != nil {
			return err
		}
		customer.AddressID = models.NewNullInt64(address.ID)
		if err := repo.Create(ctx, &customer); err != nil {
			if database.IsUniqueViolation(err) {
				return conflict("Customer with email %s already exists", email)
			}
			return err
		}
		return nil
	})
	if err != nil {
		return nil, internal("failed to register customer", err)
	}

	s.logger.WithField("customer_id", customer.ID).Info("Customer registered")

	return &models.CustomerDetail{Customer: customer, Address: &address}, nil
}

// GetCustomer retrieves a customer with its address
func (s *CustomerService) GetCustomer(ctx context.Context, id int64) (*models.CustomerDetail, error) {
	customer, err := s.customers.GetDetail(ctx, id)
	if errors.Is(err, database.ErrNotFound) {
		return nil, notFound("Customer with ID %d not found", id)
	}
	if err != nil {
		return nil, internal("failed to load customer", err)
	}
	return customer, nil
}

// ListCustomers retrieves all customers with their addresses
func (s *CustomerService) ListCustomers(ctx context.Context) ([]models.CustomerDetail, error) {
	customers, err := s.customers.List(ctx)
	if err != nil {
		return nil, internal("failed to list customers", err)
	}
	return customers, nil
}

// UpdateCustomer applies a partial update to the customer and its address.
// A customer without an address gets one when all address fields are sent.
func (s *CustomerService) UpdateCustomer(ctx context.Context, id int64, req *models.UpdateCustomerRequest) (*models.CustomerDetail, error) {
	detail, err := s.GetCustomer(ctx, id)
	if err != nil {
		return nil, err
	}

	customer := detail.Customer
	if req.FirstName != nil && strings.TrimSpace(*req.FirstName) != "" {
		customer.FirstName = strings.TrimSpace(*req.FirstName)
	}
	if req.LastName != nil && strings.TrimSpace(*req.LastName) != "" {
		customer.LastName = strings.TrimSpace(*req.LastName)
	}
	if req.Email != nil && strings.TrimSpace(*req.Email) != "" {
		email := NormalizeEmail(*req.Email)
		if err := validateEmail(email); err != nil {
			return nil, err
		}
		taken, err := s.customers.EmailTaken(ctx, email, id)
		if err != nil {
			return nil, internal("failed to check customer email", err)
		}
		if taken {
			return nil, conflict("Customer with email %s already exists", email)
		}
		customer.Email = email
	}

	address := detail.Address
	createAddress := false
	if req.HasAddressChanges() {
		if address == nil {
			if req.Street == nil || req.City == nil || req.PostalCode == nil {
				return nil, invalidArgument("Street, city and postal code are required to add an address")
			}
			address = &models.Address{}
			createAddress = true
		}
		if req.Street != nil {
			address.Street = strings.TrimSpace(*req.Street)
		}
		if req.City != nil {
			address.City = strings.TrimSpace(*req.City)
		}
		if req.PostalCode != nil {
			address.PostalCode = strings.TrimSpace(*req.PostalCode)
		}
	}

	err = database.WithTransaction(ctx, s.db, func(tx *sqlx.Tx) error {
		repo := s.customers.WithTx(tx)
		if req.HasAddressChanges() {
			if createAddress {
				if err := repo.CreateAddress(ctx, address); err != nil {
					return err
				}
				customer.AddressID = models.NewNullInt64(address.ID)
			} else if err := repo.UpdateAddress(ctx, address); err != nil {
				return err
			}
		}
		if err := repo.Update(ctx, &customer); err != nil {
			if database.IsUniqueViolation(err) {
				return conflict("Customer with email %s already exists", customer.Email)
			}
			return err
		}
		return nil
	})
	if err != nil {
		return nil, internal("failed to update customer", err)
	}

	return &models.CustomerDetail{Customer: customer, Address: address}, nil
}

// DeleteCustomer removes a customer and its address. Customers that still
// have bookings cannot be deleted.
func (s *CustomerService) DeleteCustomer(ctx context.Context, id int64) error {
	detail, err := s.GetCustomer(ctx, id)
	if err != nil {
		return err
	}

	count, err := s.bookings.CountByCustomer(ctx, id)
	if err != nil {
		return internal("failed to count customer bookings", err)
	}
	if count > 0 {
		return conflict("Customer with ID %d still has %d booking(s)", id, count)
	}

	err = database.WithTransaction(ctx, s.db, func(tx *sqlx.Tx) error {
		repo := s.customers.WithTx(tx)
		if err := repo.Delete(ctx, id); err != nil {
			if database.IsForeignKeyViolation(err) {
				return conflict("Customer with ID %d still has bookings", id)
			}
			return err
		}
		if detail.Address != nil {
			return repo.DeleteAddress(ctx, detail.Address.ID)
		}
		return nil
	})
	if err != nil {
		return internal("failed to delete customer", err)
	}

	s.logger.WithField("customer_id", id).Info("Customer deleted")
	return nil
}
