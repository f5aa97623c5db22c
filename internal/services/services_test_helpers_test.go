package services

import (
	"context"
	"io"
	"testing"
	"time"

	"github.com/cleanbook/scheduler-backend/internal/database"
	"github.com/cleanbook/scheduler-backend/internal/models"
	"github.com/cleanbook/scheduler-backend/internal/testutil"
	"github.com/cleanbook/scheduler-backend/pkg/jwt"
	"github.com/cleanbook/scheduler-backend/pkg/validator"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

const testPassword = "Secr3t!pass"

type testEnv struct {
	db          database.DB
	bookings    *database.BookingRepository
	assignments *database.AssignmentRepository
	employees   *database.EmployeeRepository
	customers   *database.CustomerRepository
	roles       *database.RoleRepository

	identity    *IdentityService
	sync        *AssignmentService
	bookingSvc  *BookingService
	customerSvc *CustomerService
	employeeSvc *EmployeeService
	visibility  *VisibilityService
	rateLimit   *RateLimitService
	auth        *AuthService
	bootstrap   *BootstrapService
	jwtService  *jwt.Service
}

func newTestLogger() *logrus.Logger {
	logger := logrus.New()
	logger.SetOutput(io.Discard)
	return logger
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	db := testutil.NewSQLiteDB(t)
	logger := newTestLogger()

	env := &testEnv{
		db:          db,
		bookings:    database.NewBookingRepository(db),
		assignments: database.NewAssignmentRepository(db),
		employees:   database.NewEmployeeRepository(db),
		customers:   database.NewCustomerRepository(db),
		roles:       database.NewRoleRepository(db),
		jwtService:  jwt.NewService("access-secret", "refresh-secret", "cleanbook-test", "cleanbook-clients", time.Hour, 24*time.Hour),
	}

	env.identity = NewIdentityService(database.NewIdentityRepository(db), validator.DefaultPasswordPolicy(), bcrypt.MinCost)
	env.sync = NewAssignmentService(db, env.bookings, env.assignments, env.employees, logger)
	env.bookingSvc = NewBookingService(db, env.bookings, env.customers, env.assignments, env.sync, logger)
	env.customerSvc = NewCustomerService(db, env.customers, env.bookings, logger)
	env.employeeSvc = NewEmployeeService(db, env.employees, env.roles, env.assignments, env.identity, logger)
	env.visibility = NewVisibilityService(env.bookings, env.assignments, env.employees, env.identity, logger)
	env.rateLimit = NewRateLimitService(database.NewLoginAttemptRepository(db), DefaultRateLimitConfig())
	env.auth = NewAuthService(env.identity, env.visibility, env.rateLimit, env.jwtService, logger)
	env.bootstrap = NewBootstrapService(env.roles, env.identity, env.employeeSvc, logger)

	return env
}

func (e *testEnv) provision(t *testing.T, email string, roleID int64) *models.ProvisionEmployeeResult {
	t.Helper()

	result, err := e.employeeSvc.ProvisionEmployee(context.Background(), &models.ProvisionEmployeeRequest{
		FirstName: "Test",
		LastName:  "Employee",
		Email:     email,
		Phone:     "+46701234567",
		Password:  testPassword,
		RoleID:    roleID,
	})
	require.NoError(t, err)
	return result
}

func (e *testEnv) caller(t *testing.T, result *models.ProvisionEmployeeResult) *models.Caller {
	t.Helper()

	roles, err := e.identity.GetRoles(context.Background(), result.AccountID)
	require.NoError(t, err)

	return &models.Caller{
		AccountID:  result.AccountID,
		EmployeeID: result.Employee.ID,
		Email:      result.Employee.Email,
		Roles:      roles,
	}
}

func (e *testEnv) registerCustomer(t *testing.T, email string, withAddress bool) *models.CustomerDetail {
	t.Helper()

	ctx := context.Background()
	detail, err := e.customerSvc.RegisterCustomer(ctx, &models.RegisterCustomerRequest{
		FirstName: "Ada",
		LastName:  "Lovelace",
		Email:     email,
		Address: models.AddressInput{
			Street:     "Main Street 1",
			City:       "Stockholm",
			PostalCode: "11122",
		},
	})
	require.NoError(t, err)

	if !withAddress {
		customer, err := e.customers.GetByID(ctx, detail.ID)
		require.NoError(t, err)
		addressID := customer.AddressID.Int64
		customer.AddressID = models.NullInt64{}
		require.NoError(t, e.customers.Update(ctx, customer))
		require.NoError(t, e.customers.DeleteAddress(ctx, addressID))

		detail, err = e.customerSvc.GetCustomer(ctx, detail.ID)
		require.NoError(t, err)
	}

	return detail
}

func (e *testEnv) createBooking(t *testing.T, customerID int64, cleanerIDs []int64) int64 {
	t.Helper()

	result, err := e.bookingSvc.CreateBooking(context.Background(), &models.CreateBookingRequest{
		CustomerID: customerID,
		Date:       "2025-06-01",
		Time:       "09:00",
		CleanerIDs: cleanerIDs,
	})
	require.NoError(t, err)
	return result.BookingID
}

func (e *testEnv) assignedIDs(t *testing.T, bookingID int64) []int64 {
	t.Helper()

	ids, err := e.assignments.ListEmployeeIDs(context.Background(), bookingID)
	require.NoError(t, err)
	return ids
}
