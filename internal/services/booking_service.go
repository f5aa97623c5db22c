package services

import (
	"context"
	"errors"

	"github.com/cleanbook/scheduler-backend/internal/database"
	"github.com/cleanbook/scheduler-backend/internal/models"
	"github.com/jmoiron/sqlx"
	"github.com/sirupsen/logrus"
)

// BookingService runs every booking write as one transaction: validation
// first, then the row mutation, then the assignment sync, then commit.
type BookingService struct {
	db          database.DB
	bookings    *database.BookingRepository
	customers   *database.CustomerRepository
	assignments *database.AssignmentRepository
	sync        *AssignmentService
	logger      *logrus.Logger
}

// NewBookingService creates a new BookingService
func NewBookingService(
	db database.DB,
	bookings *database.BookingRepository,
	customers *database.CustomerRepository,
	assignments *database.AssignmentRepository,
	sync *AssignmentService,
	logger *logrus.Logger,
) *BookingService {
	return &BookingService{
		db:          db,
		bookings:    bookings,
		customers:   customers,
		assignments: assignments,
		sync:        sync,
		logger:      logger,
	}
}

func (s *BookingService) requireCustomer(ctx context.Context, customerID int64) error {
	exists, err := s.customers.Exists(ctx, customerID)
	if err != nil {
		return internal("failed to check customer", err)
	}
	if !exists {
		return notFound("Customer with ID %d not found", customerID)
	}
	return nil
}

// CreateBooking validates the request, then inserts the booking and its
// assignments in one transaction
func (s *BookingService) CreateBooking(ctx context.Context, req *models.CreateBookingRequest) (*models.CreateBookingResult, error) {
	if err := s.requireCustomer(ctx, req.CustomerID); err != nil {
		return nil, err
	}

	date, err := models.ParseDate(req.Date)
	if err != nil {
		return nil, invalidArgument("Invalid date format: %s. Use YYYY-MM-DD format", req.Date)
	}

	timeOfDay, err := models.ParseTimeOfDay(req.Time)
	if err != nil {
		return nil, invalidArgument("Invalid time format: %s. Use HH:mm or HH:mm:ss format", req.Time)
	}

	booking := &models.Booking{
		CustomerID: req.CustomerID,
		Date:       date,
		Time:       timeOfDay,
	}

	var diff models.AssignmentDiff
	err = database.WithTransaction(ctx, s.db, func(tx *sqlx.Tx) error {
		if err := s.bookings.WithTx(tx).Create(ctx, booking); err != nil {
			if database.IsForeignKeyViolation(err) {
				return notFound("Customer with ID %d not found", req.CustomerID)
			}
			return err
		}

		var syncErr error
		diff, syncErr = s.sync.Sync(ctx, tx, booking.ID, req.CleanerIDs)
		return syncErr
	})
	if err != nil {
		return nil, internal("failed to create booking", err)
	}

	s.logger.WithFields(logrus.Fields{
		"booking_id":  booking.ID,
		"customer_id": booking.CustomerID,
		"date":        booking.Date.String(),
		"time":        booking.Time.String(),
		"cleaners":    diff.Added,
	}).Info("Booking created")

	return &models.CreateBookingResult{
		BookingID:         booking.ID,
		Message:           "Booking created successfully",
		SkippedCleanerIDs: diff.Skipped,
	}, nil
}

// UpdateBooking applies a partial update. Cleaners are re-synced only when
// the request carries a cleaner list; an empty list clears them.
func (s *BookingService) UpdateBooking(ctx context.Context, id int64, req *models.UpdateBookingRequest) (*models.UpdateBookingResult, error) {
	booking, err := s.bookings.GetByID(ctx, id)
	if errors.Is(err, database.ErrNotFound) {
		return nil, notFound("Booking with ID %d not found", id)
	}
	if err != nil {
		return nil, internal("failed to load booking", err)
	}

	if req.CustomerID != nil {
		if err := s.requireCustomer(ctx, *req.CustomerID); err != nil {
			return nil, err
		}
		booking.CustomerID = *req.CustomerID
	}

	if req.Date != nil {
		date, err := models.ParseDate(*req.Date)
		if err != nil {
			return nil, invalidArgument("Invalid date format: %s. Use YYYY-MM-DD format", *req.Date)
		}
		booking.Date = date
	}

	if req.Time != nil && *req.Time != "" {
		timeOfDay, err := models.ParseTimeOfDay(*req.Time)
		if err != nil {
			return nil, invalidArgument("Invalid time format: %s. Use HH:mm or HH:mm:ss format", *req.Time)
		}
		booking.Time = timeOfDay
	}

	var target []int64
	if req.CleanerIDs != nil {
		target = *req.CleanerIDs
		if target == nil {
			target = []int64{}
		}
	}

	diff := newAssignmentDiff(id)
	err = database.WithTransaction(ctx, s.db, func(tx *sqlx.Tx) error {
		if err := s.bookings.WithTx(tx).Update(ctx, booking); err != nil {
			if errors.Is(err, database.ErrNotFound) {
				return notFound("Booking with ID %d not found", id)
			}
			return err
		}

		var syncErr error
		diff, syncErr = s.sync.Sync(ctx, tx, id, target)
		return syncErr
	})
	if err != nil {
		return nil, internal("failed to update booking", err)
	}

	s.logger.WithFields(logrus.Fields{
		"booking_id": id,
		"added":      diff.Added,
		"removed":    diff.Removed,
	}).Info("Booking updated")

	return &models.UpdateBookingResult{Booking: *booking, Assignments: diff}, nil
}

// DeleteBooking removes a booking and its assignments. A missing booking
// fails before any transaction is opened.
func (s *BookingService) DeleteBooking(ctx context.Context, id int64) error {
	if _, err := s.bookings.GetByID(ctx, id); err != nil {
		if errors.Is(err, database.ErrNotFound) {
			return notFound("Booking with ID %d not found", id)
		}
		return internal("failed to load booking", err)
	}

	err := database.WithTransaction(ctx, s.db, func(tx *sqlx.Tx) error {
		if err := s.assignments.WithTx(tx).RemoveAllForBooking(ctx, id); err != nil {
			return err
		}
		if err := s.bookings.WithTx(tx).Delete(ctx, id); err != nil {
			if errors.Is(err, database.ErrNotFound) {
				return notFound("Booking with ID %d not found", id)
			}
			return err
		}
		return nil
	})
	if err != nil {
		return internal("failed to delete booking", err)
	}

	s.logger.WithField("booking_id", id).Info("Booking deleted")
	return nil
}

// ListCustomerBookings returns the administrator view of one customer's
// bookings
func (s *BookingService) ListCustomerBookings(ctx context.Context, customerID int64) ([]models.AdminBookingView, error) {
	if err := s.requireCustomer(ctx, customerID); err != nil {
		return nil, err
	}

	records, err := s.bookings.ListRecordsByCustomer(ctx, customerID)
	if err != nil {
		return nil, internal("failed to list customer bookings", err)
	}

	return composeAdminViews(ctx, s.assignments, records)
}
