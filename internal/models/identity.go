package models

import "time"

// IdentityAccount is a login credential linked 1:1 to an employee
type IdentityAccount struct {
	ID           string    `json:"id" db:"id"`
	UserName     string    `json:"user_name" db:"user_name"`
	Email        string    `json:"email" db:"email"`
	PasswordHash string    `json:"-" db:"password_hash"` // Never expose
	EmployeeID   int64     `json:"employee_id" db:"employee_id"`
	CreatedAt    time.Time `json:"created_at" db:"created_at"`
	UpdatedAt    time.Time `json:"updated_at" db:"updated_at"`
}

// Caller is the authenticated principal of a request, resolved against the
// identity store
type Caller struct {
	AccountID  string   `json:"account_id"`
	EmployeeID int64    `json:"employee_id"`
	Email      string   `json:"email"`
	Roles      []string `json:"roles"`
}

// HasRole reports whether the caller holds role
func (c Caller) HasRole(role string) bool {
	for _, r := range c.Roles {
		if r == role {
			return true
		}
	}
	return false
}

// IsAdmin reports whether the caller is an administrator
func (c Caller) IsAdmin() bool {
	return c.HasRole(RoleAdmin)
}

// LoginAttempt records one login try for throttling
type LoginAttempt struct {
	ID             int64     `json:"id" db:"id"`
	Identifier     string    `json:"identifier" db:"identifier"`
	IdentifierType string    `json:"identifier_type" db:"identifier_type"`
	Succeeded      bool      `json:"succeeded" db:"succeeded"`
	CreatedAt      time.Time `json:"created_at" db:"created_at"`
}

// LoginRequest represents the login request
type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

// RefreshTokenRequest represents the refresh request
type RefreshTokenRequest struct {
	RefreshToken string `json:"refresh_token" binding:"required"`
}

// TokenResponse is returned by login and refresh
type TokenResponse struct {
	AccessToken  string    `json:"access_token"`
	RefreshToken string    `json:"refresh_token,omitempty"`
	TokenType    string    `json:"token_type"`
	ExpiresAt    time.Time `json:"expires_at"`
	Caller       Caller    `json:"user"`
}
