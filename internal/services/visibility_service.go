package services

import (
	"context"
	"errors"

	"github.com/cleanbook/scheduler-backend/internal/database"
	"github.com/cleanbook/scheduler-backend/internal/models"
	"github.com/cleanbook/scheduler-backend/pkg/jwt"
	"github.com/sirupsen/logrus"
)

// VisibilityService builds role-scoped booking projections. Administrators
// see every booking in full; cleaners see only bookings they are assigned
// to, with customer data reduced to a name and a flattened address.
type VisibilityService struct {
	bookings    *database.BookingRepository
	assignments *database.AssignmentRepository
	employees   *database.EmployeeRepository
	identity    *IdentityService
	logger      *logrus.Logger
}

// NewVisibilityService creates a new VisibilityService
func NewVisibilityService(
	bookings *database.BookingRepository,
	assignments *database.AssignmentRepository,
	employees *database.EmployeeRepository,
	identity *IdentityService,
	logger *logrus.Logger,
) *VisibilityService {
	return &VisibilityService{
		bookings:    bookings,
		assignments: assignments,
		employees:   employees,
		identity:    identity,
		logger:      logger,
	}
}

// ResolveCaller re-reads the token subject from the identity store. The
// employee id comes from the account row, and roles from its grants, so a
// deleted account or revoked role takes effect before the token expires.
func (s *VisibilityService) ResolveCaller(ctx context.Context, claims *jwt.Claims) (*models.Caller, error) {
	account, err := s.identity.FindByID(ctx, claims.AccountID())
	if err != nil {
		return nil, err
	}
	if account == nil {
		return nil, unauthorized("User or employee not found")
	}

	return s.resolveAccount(ctx, account)
}

func (s *VisibilityService) resolveAccount(ctx context.Context, account *models.IdentityAccount) (*models.Caller, error) {
	exists, err := s.employees.Exists(ctx, account.EmployeeID)
	if err != nil {
		return nil, internal("failed to check employee", err)
	}
	if !exists {
		return nil, unauthorized("User or employee not found")
	}

	roles, err := s.identity.GetRoles(ctx, account.ID)
	if err != nil {
		return nil, err
	}

	return &models.Caller{
		AccountID:  account.ID,
		EmployeeID: account.EmployeeID,
		Email:      account.Email,
		Roles:      roles,
	}, nil
}

// ListVisibleBookings returns every booking for administrators and the
// caller's assigned bookings for everyone else
func (s *VisibilityService) ListVisibleBookings(ctx context.Context, caller *models.Caller) (*models.BookingListing, error) {
	if caller.IsAdmin() {
		records, err := s.bookings.ListRecords(ctx)
		if err != nil {
			return nil, internal("failed to list bookings", err)
		}

		views, err := composeAdminViews(ctx, s.assignments, records)
		if err != nil {
			return nil, err
		}

		return &models.BookingListing{Scope: models.ScopeAdmin, Admin: views}, nil
	}

	records, err := s.bookings.ListRecordsByEmployee(ctx, caller.EmployeeID)
	if err != nil {
		return nil, internal("failed to list cleaner bookings", err)
	}

	views := make([]models.CleanerBookingView, 0, len(records))
	for _, record := range records {
		views = append(views, cleanerView(record))
	}

	return &models.BookingListing{Scope: models.ScopeCleaner, Cleaner: views}, nil
}

// GetBooking returns one booking in the caller's projection. A cleaner
// without an assignment to the booking gets Forbidden before any booking
// data is read, whether or not the booking exists.
func (s *VisibilityService) GetBooking(ctx context.Context, caller *models.Caller, bookingID int64) (*models.BookingDetail, error) {
	if !caller.IsAdmin() {
		assigned, err := s.assignments.Exists(ctx, bookingID, caller.EmployeeID)
		if err != nil {
			return nil, internal("failed to check assignment", err)
		}
		if !assigned {
			s.logger.WithFields(logrus.Fields{
				"booking_id":  bookingID,
				"employee_id": caller.EmployeeID,
			}).Warn("Cleaner requested a booking they are not assigned to")
			return nil, forbidden("You are not assigned to booking %d", bookingID)
		}
	}

	record, err := s.bookings.GetRecord(ctx, bookingID)
	if errors.Is(err, database.ErrNotFound) {
		return nil, notFound("Booking with ID %d not found", bookingID)
	}
	if err != nil {
		return nil, internal("failed to load booking", err)
	}

	if !caller.IsAdmin() {
		view := cleanerView(*record)
		return &models.BookingDetail{Scope: models.ScopeCleaner, Cleaner: &view}, nil
	}

	views, err := composeAdminViews(ctx, s.assignments, []models.BookingRecord{*record})
	if err != nil {
		return nil, err
	}

	return &models.BookingDetail{Scope: models.ScopeAdmin, Admin: &views[0]}, nil
}

func cleanerView(record models.BookingRecord) models.CleanerBookingView {
	address := models.AddressMissing
	if a := record.Address(); a != nil {
		address = a.Flatten()
	}

	return models.CleanerBookingView{
		ID:   record.ID,
		Date: record.Date,
		Time: record.Time,
		Customer: models.CleanerCustomerSummary{
			Name:    record.CustomerFirstName + " " + record.CustomerLastName,
			Address: address,
		},
	}
}

// composeAdminViews attaches assigned cleaners to booking records
func composeAdminViews(ctx context.Context, assignments *database.AssignmentRepository, records []models.BookingRecord) ([]models.AdminBookingView, error) {
	ids := make([]int64, 0, len(records))
	for _, record := range records {
		ids = append(ids, record.ID)
	}

	cleaners, err := assignments.ListCleaners(ctx, ids)
	if err != nil {
		return nil, internal("failed to load assigned cleaners", err)
	}

	byBooking := make(map[int64][]models.CleanerSummary, len(records))
	for _, c := range cleaners {
		byBooking[c.BookingID] = append(byBooking[c.BookingID], models.CleanerSummary{
			ID:    c.EmployeeID,
			Name:  c.FirstName + " " + c.LastName,
			Email: c.Email,
			Phone: c.Phone,
		})
	}

	views := make([]models.AdminBookingView, 0, len(records))
	for _, record := range records {
		assigned := byBooking[record.ID]
		if assigned == nil {
			assigned = []models.CleanerSummary{}
		}

		views = append(views, models.AdminBookingView{
			ID:   record.ID,
			Date: record.Date,
			Time: record.Time,
			Customer: models.AdminCustomerSummary{
				ID:      record.CustomerID,
				Name:    record.CustomerFirstName + " " + record.CustomerLastName,
				Email:   record.CustomerEmail,
				Address: record.Address(),
			},
			Cleaners: assigned,
		})
	}

	return views, nil
}
