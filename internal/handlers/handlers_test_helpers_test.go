package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/cleanbook/scheduler-backend/internal/database"
	"github.com/cleanbook/scheduler-backend/internal/middleware"
	"github.com/cleanbook/scheduler-backend/internal/models"
	"github.com/cleanbook/scheduler-backend/internal/services"
	"github.com/cleanbook/scheduler-backend/internal/testutil"
	"github.com/cleanbook/scheduler-backend/pkg/jwt"
	"github.com/cleanbook/scheduler-backend/pkg/validator"
	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

const testPassword = "Secr3t!pass"

type testServer struct {
	router      *gin.Engine
	employees   *services.EmployeeService
	customers   *services.CustomerService
	bookings    *services.BookingService
	assignments *database.AssignmentRepository
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	gin.SetMode(gin.TestMode)

	db := testutil.NewSQLiteDB(t)
	logger := logrus.New()
	logger.SetOutput(io.Discard)

	bookingRepo := database.NewBookingRepository(db)
	assignmentRepo := database.NewAssignmentRepository(db)
	employeeRepo := database.NewEmployeeRepository(db)
	customerRepo := database.NewCustomerRepository(db)
	roleRepo := database.NewRoleRepository(db)

	jwtService := jwt.NewService("access-secret", "refresh-secret", "cleanbook-test", "cleanbook-clients", time.Hour, 24*time.Hour)
	identity := services.NewIdentityService(database.NewIdentityRepository(db), validator.DefaultPasswordPolicy(), bcrypt.MinCost)
	sync := services.NewAssignmentService(db, bookingRepo, assignmentRepo, employeeRepo, logger)
	bookingSvc := services.NewBookingService(db, bookingRepo, customerRepo, assignmentRepo, sync, logger)
	customerSvc := services.NewCustomerService(db, customerRepo, bookingRepo, logger)
	employeeSvc := services.NewEmployeeService(db, employeeRepo, roleRepo, assignmentRepo, identity, logger)
	visibility := services.NewVisibilityService(bookingRepo, assignmentRepo, employeeRepo, identity, logger)
	rateLimit := services.NewRateLimitService(database.NewLoginAttemptRepository(db), services.DefaultRateLimitConfig())
	authSvc := services.NewAuthService(identity, visibility, rateLimit, jwtService, logger)

	router := gin.New()
	RegisterRoutes(router.Group("/api/v1"), Handlers{
		Auth:      NewAuthHandler(authSvc, logger),
		Bookings:  NewBookingHandler(bookingSvc, sync, visibility, logger),
		Customers: NewCustomerHandler(customerSvc, bookingSvc, logger),
		Employees: NewEmployeeHandler(employeeSvc, logger),
	}, middleware.AuthMiddleware(jwtService, visibility, logger))

	return &testServer{
		router:      router,
		employees:   employeeSvc,
		customers:   customerSvc,
		bookings:    bookingSvc,
		assignments: assignmentRepo,
	}
}

func (s *testServer) provision(t *testing.T, email string, roleID int64) int64 {
	t.Helper()

	result, err := s.employees.ProvisionEmployee(context.Background(), &models.ProvisionEmployeeRequest{
		FirstName: "Test",
		LastName:  "Employee",
		Email:     email,
		Phone:     "+46701234567",
		Password:  testPassword,
		RoleID:    roleID,
	})
	require.NoError(t, err)
	return result.Employee.ID
}

func (s *testServer) registerCustomer(t *testing.T, email string) int64 {
	t.Helper()

	detail, err := s.customers.RegisterCustomer(context.Background(), &models.RegisterCustomerRequest{
		FirstName: "Ada",
		LastName:  "Lovelace",
		Email:     email,
		Address:   models.AddressInput{Street: "Main Street 1", City: "Stockholm", PostalCode: "11122"},
	})
	require.NoError(t, err)
	return detail.ID
}

func (s *testServer) login(t *testing.T, email string) string {
	t.Helper()

	w := s.do(t, http.MethodPost, "/api/v1/auth/login", "", gin.H{"email": email, "password": testPassword})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var response models.TokenResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))
	return response.AccessToken
}

func (s *testServer) do(t *testing.T, method, path, token string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()

	var reader io.Reader
	switch b := body.(type) {
	case nil:
	case string:
		reader = bytes.NewBufferString(b)
	default:
		data, err := json.Marshal(b)
		require.NoError(t, err)
		reader = bytes.NewBuffer(data)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	w := httptest.NewRecorder()
	s.router.ServeHTTP(w, req)
	return w
}

func decode(t *testing.T, w *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()

	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	return body
}
