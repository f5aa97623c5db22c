package models

// Booking is a scheduled cleaning appointment for a customer
type Booking struct {
	ID         int64     `json:"id" db:"id"`
	CustomerID int64     `json:"customer_id" db:"customer_id"`
	Date       Date      `json:"date" db:"date"`
	Time       TimeOfDay `json:"time" db:"time"`
}

// BookingAssignment links a booking to an assigned cleaner
type BookingAssignment struct {
	BookingID  int64 `json:"booking_id" db:"booking_id"`
	EmployeeID int64 `json:"employee_id" db:"employee_id"`
}

// BookingRecord is a booking joined with its customer and optional address
type BookingRecord struct {
	ID                int64      `db:"id"`
	Date              Date       `db:"date"`
	Time              TimeOfDay  `db:"time"`
	CustomerID        int64      `db:"customer_id"`
	CustomerFirstName string     `db:"customer_first_name"`
	CustomerLastName  string     `db:"customer_last_name"`
	CustomerEmail     string     `db:"customer_email"`
	AddressID         NullInt64  `db:"address_id"`
	Street            NullString `db:"street"`
	City              NullString `db:"city"`
	PostalCode        NullString `db:"postal_code"`
}

// Address returns the joined address, or nil when the customer has none
func (r BookingRecord) Address() *Address {
	if !r.AddressID.Valid {
		return nil
	}
	return &Address{
		ID:         r.AddressID.Int64,
		Street:     r.Street.String,
		City:       r.City.String,
		PostalCode: r.PostalCode.String,
	}
}

// AssignedCleaner is an employee assigned to a booking
type AssignedCleaner struct {
	BookingID  int64  `db:"booking_id"`
	EmployeeID int64  `db:"employee_id"`
	FirstName  string `db:"first_name"`
	LastName   string `db:"last_name"`
	Email      string `db:"email"`
	Phone      string `db:"phone"`
}

// ============================================================================
// REQUESTS
// ============================================================================

// CreateBookingRequest represents the request to create a booking
type CreateBookingRequest struct {
	CustomerID int64   `json:"customer_id" binding:"required"`
	Date       string  `json:"date" binding:"required"`
	Time       string  `json:"time" binding:"required"`
	CleanerIDs []int64 `json:"cleaner_ids"`
}

// UpdateBookingRequest is a partial update. CleanerIDs distinguishes an
// absent/null list (leave assignments alone) from an empty list (clear them).
type UpdateBookingRequest struct {
	CustomerID *int64   `json:"customer_id,omitempty"`
	Date       *string  `json:"date,omitempty"`
	Time       *string  `json:"time,omitempty"`
	CleanerIDs *[]int64 `json:"cleaner_ids,omitempty"`
}

// SyncAssignmentsRequest replaces the cleaner set of a booking
type SyncAssignmentsRequest struct {
	CleanerIDs *[]int64 `json:"cleaner_ids"`
}

// ============================================================================
// RESULTS AND VIEWS
// ============================================================================

// AssignmentDiff reports what a sync changed
type AssignmentDiff struct {
	BookingID int64   `json:"booking_id"`
	Added     []int64 `json:"added"`
	Removed   []int64 `json:"removed"`
	Skipped   []int64 `json:"skipped"`
}

// Unchanged reports whether the sync was a no-op
func (d AssignmentDiff) Unchanged() bool {
	return len(d.Added) == 0 && len(d.Removed) == 0
}

// CreateBookingResult is returned after a booking is created
type CreateBookingResult struct {
	BookingID         int64   `json:"booking_id"`
	Message           string  `json:"message"`
	SkippedCleanerIDs []int64 `json:"skipped_cleaner_ids"`
}

// CleanerSummary identifies an assigned cleaner in administrator views
type CleanerSummary struct {
	ID    int64  `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
	Phone string `json:"phone"`
}

// AdminCustomerSummary is the customer part of an administrator view
type AdminCustomerSummary struct {
	ID      int64    `json:"id"`
	Name    string   `json:"name"`
	Email   string   `json:"email"`
	Address *Address `json:"address"`
}

// AdminBookingView is the full booking projection for administrators
type AdminBookingView struct {
	ID       int64                `json:"id"`
	Date     Date                 `json:"date"`
	Time     TimeOfDay            `json:"time"`
	Customer AdminCustomerSummary `json:"customer"`
	Cleaners []CleanerSummary     `json:"cleaners"`
}

// CleanerCustomerSummary is the customer part of a cleaner view
type CleanerCustomerSummary struct {
	Name    string `json:"name"`
	Address string `json:"address"`
}

// CleanerBookingView is the reduced booking projection for cleaners
type CleanerBookingView struct {
	ID       int64                  `json:"id"`
	Date     Date                   `json:"date"`
	Time     TimeOfDay              `json:"time"`
	Customer CleanerCustomerSummary `json:"customer"`
}

// AddressMissing is shown to cleaners when a customer has no address
const AddressMissing = "Address missing"

// Listing scopes
const (
	ScopeAdmin   = "admin"
	ScopeCleaner = "cleaner"
)

// BookingListing holds exactly one of the two projections, chosen by Scope
type BookingListing struct {
	Scope   string               `json:"scope"`
	Admin   []AdminBookingView   `json:"admin_bookings,omitempty"`
	Cleaner []CleanerBookingView `json:"cleaner_bookings,omitempty"`
}

// BookingDetail holds one booking in the caller's projection
type BookingDetail struct {
	Scope   string              `json:"scope"`
	Admin   *AdminBookingView   `json:"admin_booking,omitempty"`
	Cleaner *CleanerBookingView `json:"cleaner_booking,omitempty"`
}

// UpdateBookingResult is returned after a booking is updated
type UpdateBookingResult struct {
	Booking     Booking        `json:"booking"`
	Assignments AssignmentDiff `json:"assignments"`
}
