package services

import (
	"context"
	"errors"

	"github.com/cleanbook/scheduler-backend/internal/database"
	"github.com/cleanbook/scheduler-backend/internal/models"
	"github.com/jmoiron/sqlx"
	"github.com/sirupsen/logrus"
)

// AssignmentService reconciles the set of cleaners assigned to a booking
// with a requested target set
type AssignmentService struct {
	db          database.DB
	bookings    *database.BookingRepository
	assignments *database.AssignmentRepository
	employees   *database.EmployeeRepository
	logger      *logrus.Logger
}

// NewAssignmentService creates a new AssignmentService
func NewAssignmentService(
	db database.DB,
	bookings *database.BookingRepository,
	assignments *database.AssignmentRepository,
	employees *database.EmployeeRepository,
	logger *logrus.Logger,
) *AssignmentService {
	return &AssignmentService{
		db:          db,
		bookings:    bookings,
		assignments: assignments,
		employees:   employees,
		logger:      logger,
	}
}

func newAssignmentDiff(bookingID int64) models.AssignmentDiff {
	return models.AssignmentDiff{
		BookingID: bookingID,
		Added:     []int64{},
		Removed:   []int64{},
		Skipped:   []int64{},
	}
}

// Sync applies the target set inside tx. A nil target leaves the current
// assignments untouched; an empty target removes all of them. Target ids
// that do not resolve to an employee are skipped and reported. Running Sync
// twice with the same target changes nothing the second time.
func (s *AssignmentService) Sync(ctx context.Context, tx *sqlx.Tx, bookingID int64, target []int64) (models.AssignmentDiff, error) {
	diff := newAssignmentDiff(bookingID)
	if target == nil {
		return diff, nil
	}

	assignments := s.assignments.WithTx(tx)
	employees := s.employees.WithTx(tx)

	current, err := assignments.ListEmployeeIDs(ctx, bookingID)
	if err != nil {
		return diff, internal("failed to load current assignments", err)
	}

	wanted := make(map[int64]bool, len(target))
	var ordered []int64
	for _, id := range target {
		if !wanted[id] {
			wanted[id] = true
			ordered = append(ordered, id)
		}
	}

	assigned := make(map[int64]bool, len(current))
	for _, id := range current {
		assigned[id] = true
		if wanted[id] {
			continue
		}
		if err := assignments.Remove(ctx, bookingID, id); err != nil {
			return diff, internal("failed to remove assignment", err)
		}
		diff.Removed = append(diff.Removed, id)
	}

	for _, id := range ordered {
		if assigned[id] {
			continue
		}

		exists, err := employees.Exists(ctx, id)
		if err != nil {
			return diff, internal("failed to check cleaner", err)
		}
		if !exists {
			s.logger.WithFields(logrus.Fields{
				"booking_id": bookingID,
				"cleaner_id": id,
			}).Warn("Cleaner not found, skipping assignment")
			diff.Skipped = append(diff.Skipped, id)
			continue
		}

		if err := assignments.Add(ctx, bookingID, id); err != nil {
			return diff, internal("failed to add assignment", err)
		}
		diff.Added = append(diff.Added, id)
	}

	return diff, nil
}

// SyncAssignments replaces the cleaners of an existing booking in its own
// transaction
func (s *AssignmentService) SyncAssignments(ctx context.Context, bookingID int64, target []int64) (models.AssignmentDiff, error) {
	if _, err := s.bookings.GetByID(ctx, bookingID); err != nil {
		if errors.Is(err, database.ErrNotFound) {
			return newAssignmentDiff(bookingID), notFound("Booking with ID %d not found", bookingID)
		}
		return newAssignmentDiff(bookingID), internal("failed to load booking", err)
	}

	var diff models.AssignmentDiff
	err := database.WithTransaction(ctx, s.db, func(tx *sqlx.Tx) error {
		var syncErr error
		diff, syncErr = s.Sync(ctx, tx, bookingID, target)
		return syncErr
	})
	if err != nil {
		return newAssignmentDiff(bookingID), internal("failed to sync assignments", err)
	}

	s.logger.WithFields(logrus.Fields{
		"booking_id": bookingID,
		"added":      diff.Added,
		"removed":    diff.Removed,
		"skipped":    diff.Skipped,
	}).Info("Booking assignments synchronized")

	return diff, nil
}
