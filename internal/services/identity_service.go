package services

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/cleanbook/scheduler-backend/internal/database"
	"github.com/cleanbook/scheduler-backend/internal/models"
	"github.com/cleanbook/scheduler-backend/pkg/validator"
	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"golang.org/x/crypto/bcrypt"
)

// IdentityService is the credential store: login accounts, password
// hashes and role grants
type IdentityService struct {
	accounts   *database.IdentityRepository
	policy     validator.PasswordPolicy
	bcryptCost int
}

// NewIdentityService creates a new IdentityService
func NewIdentityService(accounts *database.IdentityRepository, policy validator.PasswordPolicy, bcryptCost int) *IdentityService {
	if bcryptCost == 0 {
		bcryptCost = bcrypt.DefaultCost
	}
	return &IdentityService{
		accounts:   accounts,
		policy:     policy,
		bcryptCost: bcryptCost,
	}
}

// NormalizeEmail lowercases and trims an email for storage and lookup
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func (s *IdentityService) repo(tx *sqlx.Tx) *database.IdentityRepository {
	if tx == nil {
		return s.accounts
	}
	return s.accounts.WithTx(tx)
}

// FindByEmail returns the account for email, or nil if there is none
func (s *IdentityService) FindByEmail(ctx context.Context, email string) (*models.IdentityAccount, error) {
	account, err := s.accounts.GetByEmail(ctx, NormalizeEmail(email))
	if errors.Is(err, database.ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, internal("failed to look up account", err)
	}
	return account, nil
}

// FindByID returns the account with id, or nil if there is none
func (s *IdentityService) FindByID(ctx context.Context, id string) (*models.IdentityAccount, error) {
	account, err := s.accounts.GetByID(ctx, id)
	if errors.Is(err, database.ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, internal("failed to look up account", err)
	}
	return account, nil
}

// FindByEmployeeID returns the account linked to an employee inside tx
// (or outside any transaction when tx is nil), or nil if there is none
func (s *IdentityService) FindByEmployeeID(ctx context.Context, tx *sqlx.Tx, employeeID int64) (*models.IdentityAccount, error) {
	account, err := s.repo(tx).GetByEmployeeID(ctx, employeeID)
	if errors.Is(err, database.ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, internal("failed to look up account", err)
	}
	return account, nil
}

// CreateAccount enforces the password policy, hashes the password and
// inserts the account inside tx. A policy violation returns
// ValidationFailed with one detail per violated rule.
func (s *IdentityService) CreateAccount(ctx context.Context, tx *sqlx.Tx, employeeID int64, email, password string) (*models.IdentityAccount, error) {
	if violations := s.policy.Check(password); len(violations) > 0 {
		return nil, validationFailed("Failed to create identity account", violations)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), s.bcryptCost)
	if err != nil {
		return nil, internal("failed to hash password", err)
	}

	now := time.Now().UTC()
	normalized := NormalizeEmail(email)
	account := &models.IdentityAccount{
		ID:           uuid.NewString(),
		UserName:     normalized,
		Email:        normalized,
		PasswordHash: string(hash),
		EmployeeID:   employeeID,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	if err := s.repo(tx).Create(ctx, account); err != nil {
		if database.IsUniqueViolation(err) {
			return nil, conflict("User with email %s already exists", normalized)
		}
		return nil, internal("failed to create identity account", err)
	}

	return account, nil
}

// CheckPassword reports whether password matches the account's hash
func (s *IdentityService) CheckPassword(account *models.IdentityAccount, password string) bool {
	return bcrypt.CompareHashAndPassword([]byte(account.PasswordHash), []byte(password)) == nil
}

// EmailTaken reports whether an account other than excludeID uses email
func (s *IdentityService) EmailTaken(ctx context.Context, tx *sqlx.Tx, email, excludeID string) (bool, error) {
	taken, err := s.repo(tx).EmailTaken(ctx, NormalizeEmail(email), excludeID)
	if err != nil {
		return false, internal("failed to check account email", err)
	}
	return taken, nil
}

// SetEmail changes the account email and user name together
func (s *IdentityService) SetEmail(ctx context.Context, tx *sqlx.Tx, accountID, email string) error {
	normalized := NormalizeEmail(email)
	if err := s.repo(tx).SetEmail(ctx, accountID, normalized); err != nil {
		if database.IsUniqueViolation(err) {
			return conflict("Email %s is already in use", normalized)
		}
		return internal("failed to update account email", err)
	}
	return nil
}

// AddToRole grants roleName to the account
func (s *IdentityService) AddToRole(ctx context.Context, tx *sqlx.Tx, accountID, roleName string) error {
	if err := s.repo(tx).AddRole(ctx, accountID, roleName); err != nil {
		return internal("failed to grant role", err)
	}
	return nil
}

// ReplaceRoles revokes all grants and grants roleName, if non-empty
func (s *IdentityService) ReplaceRoles(ctx context.Context, tx *sqlx.Tx, accountID, roleName string) error {
	repo := s.repo(tx)
	if err := repo.RemoveRoles(ctx, accountID); err != nil {
		return internal("failed to revoke roles", err)
	}
	if roleName == "" {
		return nil
	}
	if err := repo.AddRole(ctx, accountID, roleName); err != nil {
		return internal("failed to grant role", err)
	}
	return nil
}

// GetRoles returns the role names granted to an account
func (s *IdentityService) GetRoles(ctx context.Context, accountID string) ([]string, error) {
	roles, err := s.accounts.GetRoles(ctx, accountID)
	if err != nil {
		return nil, internal("failed to load roles", err)
	}
	return roles, nil
}

// Delete removes an account and its role grants inside tx
func (s *IdentityService) Delete(ctx context.Context, tx *sqlx.Tx, accountID string) error {
	repo := s.repo(tx)
	if err := repo.RemoveRoles(ctx, accountID); err != nil {
		return internal("failed to revoke roles", err)
	}
	if err := repo.Delete(ctx, accountID); err != nil {
		if errors.Is(err, database.ErrNotFound) {
			return notFound("Identity account %s not found", accountID)
		}
		return internal("failed to delete identity account", err)
	}
	return nil
}
