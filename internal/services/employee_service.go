package services

import (
	"context"
	"errors"
	"net/mail"
	"strings"

	"github.com/cleanbook/scheduler-backend/internal/database"
	"github.com/cleanbook/scheduler-backend/internal/models"
	"github.com/cleanbook/scheduler-backend/pkg/validator"
	"github.com/jmoiron/sqlx"
	"github.com/sirupsen/logrus"
)

// EmployeeService provisions employees together with their identity
// accounts and keeps both in step on update and delete
type EmployeeService struct {
	db             database.DB
	employees      *database.EmployeeRepository
	roles          *database.RoleRepository
	assignments    *database.AssignmentRepository
	identity       *IdentityService
	phoneValidator *validator.PhoneValidator
	logger         *logrus.Logger
}

// NewEmployeeService creates a new EmployeeService
func NewEmployeeService(
	db database.DB,
	employees *database.EmployeeRepository,
	roles *database.RoleRepository,
	assignments *database.AssignmentRepository,
	identity *IdentityService,
	logger *logrus.Logger,
) *EmployeeService {
	return &EmployeeService{
		db:             db,
		employees:      employees,
		roles:          roles,
		assignments:    assignments,
		identity:       identity,
		phoneValidator: validator.NewPhoneValidator(),
		logger:         logger,
	}
}

func validateEmail(email string) error {
	addr, err := mail.ParseAddress(email)
	if err != nil || addr.Address != email {
		return invalidArgument("Invalid email address: %s", email)
	}
	return nil
}

// ProvisionEmployee creates an employee and its login account atomically.
// The email is checked against existing accounts first; then, in one
// transaction, the role is resolved, the employee inserted, the account
// created under the password policy, and the role granted. An unresolved
// role id does not fail provisioning: the employee is stored without a role
// and no grant is made.
func (s *EmployeeService) ProvisionEmployee(ctx context.Context, req *models.ProvisionEmployeeRequest) (*models.ProvisionEmployeeResult, error) {
	firstName := strings.TrimSpace(req.FirstName)
	lastName := strings.TrimSpace(req.LastName)
	if firstName == "" || lastName == "" {
		return nil, invalidArgument("First name and last name are required")
	}

	email := NormalizeEmail(req.Email)
	if err := validateEmail(email); err != nil {
		return nil, err
	}

	phone, err := s.phoneValidator.Validate(req.Phone)
	if err != nil {
		return nil, invalidArgument("Invalid phone number: %v", err)
	}

	existing, err := s.identity.FindByEmail(ctx, email)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, conflict("User with email %s already exists", email)
	}

	result := &models.ProvisionEmployeeResult{}
	err = database.WithTransaction(ctx, s.db, func(tx *sqlx.Tx) error {
		role, err := s.roles.WithTx(tx).GetByID(ctx, req.RoleID)
		if err != nil && !errors.Is(err, database.ErrNotFound) {
			return err
		}

		employee := models.Employee{
			FirstName: firstName,
			LastName:  lastName,
			Email:     email,
			Phone:     phone,
		}
		if role != nil {
			employee.RoleID = models.NewNullInt64(role.ID)
			employee.RoleName = models.NewNullString(role.Name)
		}

		if err := s.employees.WithTx(tx).Create(ctx, &employee); err != nil {
			if database.IsUniqueViolation(err) {
				return conflict("Employee with email %s already exists", email)
			}
			return err
		}

		account, err := s.identity.CreateAccount(ctx, tx, employee.ID, email, req.Password)
		if err != nil {
			return err
		}

		if role == nil || role.Name == "" {
			s.logger.WithFields(logrus.Fields{
				"employee_id": employee.ID,
				"role_id":     req.RoleID,
			}).Warn("Role not found, employee provisioned without role grant")
		} else {
			if err := s.identity.AddToRole(ctx, tx, account.ID, role.Name); err != nil {
				return err
			}
			result.GrantedRole = role.Name
		}

		result.Message = "Employee registered successfully"
		result.Employee = employee
		result.AccountID = account.ID
		return nil
	})
	if err != nil {
		if kind := KindOf(err); kind == KindConflict || kind == KindValidationFailed {
			return nil, err
		}
		return nil, internal("Error registering employee", err)
	}

	s.logger.WithFields(logrus.Fields{
		"employee_id": result.Employee.ID,
		"account_id":  result.AccountID,
		"role":        result.GrantedRole,
	}).Info("Employee provisioned")

	return result, nil
}

// GetEmployee retrieves an employee by ID
func (s *EmployeeService) GetEmployee(ctx context.Context, id int64) (*models.Employee, error) {
	employee, err := s.employees.GetByID(ctx, id)
	if errors.Is(err, database.ErrNotFound) {
		return nil, notFound("Employee with ID %d not found", id)
	}
	if err != nil {
		return nil, internal("failed to load employee", err)
	}
	return employee, nil
}

// ListEmployees retrieves all employees
func (s *EmployeeService) ListEmployees(ctx context.Context) ([]models.Employee, error) {
	employees, err := s.employees.List(ctx)
	if err != nil {
		return nil, internal("failed to list employees", err)
	}
	return employees, nil
}

// ListRoles retrieves all roles
func (s *EmployeeService) ListRoles(ctx context.Context) ([]models.Role, error) {
	roles, err := s.roles.List(ctx)
	if err != nil {
		return nil, internal("failed to list roles", err)
	}
	return roles, nil
}

// UpdateEmployee applies a partial update. An email change is mirrored to
// the identity account and a role change replaces the account's grant, both
// in the same transaction as the employee row.
func (s *EmployeeService) UpdateEmployee(ctx context.Context, id int64, req *models.UpdateEmployeeRequest) (*models.Employee, error) {
	employee, err := s.GetEmployee(ctx, id)
	if err != nil {
		return nil, err
	}

	account, err := s.identity.FindByEmployeeID(ctx, nil, id)
	if err != nil {
		return nil, err
	}
	if account == nil {
		return nil, notFound("Identity account for employee %d not found", id)
	}

	if req.FirstName != nil && strings.TrimSpace(*req.FirstName) != "" {
		employee.FirstName = strings.TrimSpace(*req.FirstName)
	}
	if req.LastName != nil && strings.TrimSpace(*req.LastName) != "" {
		employee.LastName = strings.TrimSpace(*req.LastName)
	}
	if req.Phone != nil && strings.TrimSpace(*req.Phone) != "" {
		phone, err := s.phoneValidator.Validate(*req.Phone)
		if err != nil {
			return nil, invalidArgument("Invalid phone number: %v", err)
		}
		employee.Phone = phone
	}

	emailChanged := false
	if req.Email != nil && strings.TrimSpace(*req.Email) != "" {
		email := NormalizeEmail(*req.Email)
		if email != account.Email {
			if err := validateEmail(email); err != nil {
				return nil, err
			}
			taken, err := s.identity.EmailTaken(ctx, nil, email, account.ID)
			if err != nil {
				return nil, err
			}
			if taken {
				return nil, conflict("Email %s is already in use", email)
			}
			emailChanged = true
		}
		employee.Email = email
	}

	var newRole *models.Role
	if req.RoleID != nil {
		role, err := s.roles.GetByID(ctx, *req.RoleID)
		if errors.Is(err, database.ErrNotFound) {
			return nil, notFound("Role with ID %d not found", *req.RoleID)
		}
		if err != nil {
			return nil, internal("failed to load role", err)
		}
		newRole = role
		employee.RoleID = models.NewNullInt64(role.ID)
		employee.RoleName = models.NewNullString(role.Name)
	}

	err = database.WithTransaction(ctx, s.db, func(tx *sqlx.Tx) error {
		if err := s.employees.WithTx(tx).Update(ctx, employee); err != nil {
			if database.IsUniqueViolation(err) {
				return conflict("Email %s is already in use", employee.Email)
			}
			return err
		}
		if emailChanged {
			if err := s.identity.SetEmail(ctx, tx, account.ID, employee.Email); err != nil {
				return err
			}
		}
		if newRole != nil {
			if err := s.identity.ReplaceRoles(ctx, tx, account.ID, newRole.Name); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		if KindOf(err) == KindConflict {
			return nil, err
		}
		return nil, internal("failed to update employee", err)
	}

	s.logger.WithFields(logrus.Fields{
		"employee_id":   id,
		"email_changed": emailChanged,
		"role_changed":  newRole != nil,
	}).Info("Employee updated")

	return employee, nil
}

// DeleteEmployee removes the identity account first, then the employee's
// assignments and the employee row, in one transaction
func (s *EmployeeService) DeleteEmployee(ctx context.Context, id int64) error {
	if _, err := s.GetEmployee(ctx, id); err != nil {
		return err
	}

	err := database.WithTransaction(ctx, s.db, func(tx *sqlx.Tx) error {
		account, err := s.identity.FindByEmployeeID(ctx, tx, id)
		if err != nil {
			return err
		}
		if account != nil {
			if err := s.identity.Delete(ctx, tx, account.ID); err != nil {
				return err
			}
		}

		if err := s.assignments.WithTx(tx).RemoveAllForEmployee(ctx, id); err != nil {
			return err
		}

		return s.employees.WithTx(tx).Delete(ctx, id)
	})
	if err != nil {
		return internal("failed to delete employee", err)
	}

	s.logger.WithField("employee_id", id).Info("Employee deleted")
	return nil
}
