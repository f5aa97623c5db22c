package services

import (
	"context"

	"github.com/cleanbook/scheduler-backend/internal/config"
	"github.com/cleanbook/scheduler-backend/internal/database"
	"github.com/cleanbook/scheduler-backend/internal/models"
	"github.com/sirupsen/logrus"
)

// BootstrapService seeds the roles and the first administrator on startup
type BootstrapService struct {
	roles       *database.RoleRepository
	identity    *IdentityService
	employeeSvc *EmployeeService
	logger      *logrus.Logger
}

// NewBootstrapService creates a new BootstrapService
func NewBootstrapService(
	roles *database.RoleRepository,
	identity *IdentityService,
	employeeSvc *EmployeeService,
	logger *logrus.Logger,
) *BootstrapService {
	return &BootstrapService{
		roles:       roles,
		identity:    identity,
		employeeSvc: employeeSvc,
		logger:      logger,
	}
}

// EnsureRoles creates the Admin and Cleaner roles if they are missing
func (s *BootstrapService) EnsureRoles(ctx context.Context) error {
	for _, name := range []string{models.RoleAdmin, models.RoleCleaner} {
		if err := s.roles.Ensure(ctx, name); err != nil {
			return internal("failed to seed roles", err)
		}
	}
	return nil
}

// EnsureAdmin provisions the seed administrator unless an account with the
// seed email already exists. It is a no-op when no seed email is configured.
func (s *BootstrapService) EnsureAdmin(ctx context.Context, seed config.SeedConfig) error {
	if seed.AdminEmail == "" {
		return nil
	}

	existing, err := s.identity.FindByEmail(ctx, seed.AdminEmail)
	if err != nil {
		return err
	}
	if existing != nil {
		s.logger.WithField("email", existing.Email).Debug("Seed administrator already exists")
		return nil
	}

	role, err := s.roles.GetByName(ctx, models.RoleAdmin)
	if err != nil {
		return internal("failed to look up Admin role", err)
	}

	result, err := s.employeeSvc.ProvisionEmployee(ctx, &models.ProvisionEmployeeRequest{
		FirstName: seed.AdminFirstName,
		LastName:  seed.AdminLastName,
		Email:     seed.AdminEmail,
		Phone:     seed.AdminPhone,
		Password:  seed.AdminPassword,
		RoleID:    role.ID,
	})
	if err != nil {
		return err
	}

	s.logger.WithFields(logrus.Fields{
		"employee_id": result.Employee.ID,
		"email":       result.Employee.Email,
	}).Info("Seed administrator provisioned")

	return nil
}
