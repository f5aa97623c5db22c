package models

// Role names seeded on startup
const (
	RoleAdmin   = "Admin"
	RoleCleaner = "Cleaner"
)

// Role is a named permission group
type Role struct {
	ID   int64  `json:"id" db:"id"`
	Name string `json:"name" db:"name"`
}

// Employee is a staff member; cleaners are employees assigned to bookings
type Employee struct {
	ID        int64      `json:"id" db:"id"`
	FirstName string     `json:"first_name" db:"first_name"`
	LastName  string     `json:"last_name" db:"last_name"`
	Email     string     `json:"email" db:"email"`
	Phone     string     `json:"phone" db:"phone"`
	RoleID    NullInt64  `json:"role_id" db:"role_id"`
	RoleName  NullString `json:"role_name" db:"role_name"`
}

// FullName returns "First Last"
func (e Employee) FullName() string {
	return e.FirstName + " " + e.LastName
}

// ProvisionEmployeeRequest represents the request to register an employee
// together with its login account
type ProvisionEmployeeRequest struct {
	FirstName string `json:"first_name" binding:"required"`
	LastName  string `json:"last_name" binding:"required"`
	Email     string `json:"email" binding:"required,email"`
	Phone     string `json:"phone" binding:"required"`
	Password  string `json:"password" binding:"required"`
	RoleID    int64  `json:"role_id" binding:"required"`
}

// ProvisionEmployeeResult is returned after a successful provisioning
type ProvisionEmployeeResult struct {
	Message     string   `json:"message"`
	Employee    Employee `json:"employee"`
	AccountID   string   `json:"account_id"`
	GrantedRole string   `json:"granted_role,omitempty"`
}

// UpdateEmployeeRequest is a partial update; nil fields are left unchanged
type UpdateEmployeeRequest struct {
	FirstName *string `json:"first_name,omitempty"`
	LastName  *string `json:"last_name,omitempty"`
	Email     *string `json:"email,omitempty" binding:"omitempty,email"`
	Phone     *string `json:"phone,omitempty"`
	RoleID    *int64  `json:"role_id,omitempty"`
}
