package database

import (
	"context"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAssignmentRepositoryListEmployeeIDs(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewAssignmentRepository(db)

	mock.ExpectQuery(`SELECT employee_id FROM booking_assignments`).
		WithArgs(int64(1)).
		WillReturnRows(sqlmock.NewRows([]string{"employee_id"}).AddRow(int64(1)).AddRow(int64(2)))

	ids, err := repo.ListEmployeeIDs(context.Background(), 1)
	require.NoError(t, err)
	assert.Equal(t, []int64{1, 2}, ids)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestAssignmentRepositoryAddRemove(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewAssignmentRepository(db)
	ctx := context.Background()

	mock.ExpectExec(`INSERT INTO booking_assignments`).
		WithArgs(int64(1), int64(3)).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(`DELETE FROM booking_assignments WHERE booking_id = \? AND employee_id = \?`).
		WithArgs(int64(1), int64(1)).
		WillReturnResult(sqlmock.NewResult(0, 1))

	require.NoError(t, repo.Add(ctx, 1, 3))
	require.NoError(t, repo.Remove(ctx, 1, 1))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestAssignmentRepositoryListCleaners(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewAssignmentRepository(db)
	ctx := context.Background()

	t.Run("Empty Input Skips Query", func(t *testing.T) {
		cleaners, err := repo.ListCleaners(ctx, nil)
		require.NoError(t, err)
		assert.Empty(t, cleaners)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("Expands IN List", func(t *testing.T) {
		mock.ExpectQuery(`WHERE ba.booking_id IN \(\?, \?\)`).
			WithArgs(int64(10), int64(11)).
			WillReturnRows(sqlmock.NewRows([]string{"booking_id", "employee_id", "first_name", "last_name", "email", "phone"}).
				AddRow(int64(10), int64(2), "Grace", "Hopper", "grace@example.com", "+15550100"))

		cleaners, err := repo.ListCleaners(ctx, []int64{10, 11})
		require.NoError(t, err)
		require.Len(t, cleaners, 1)
		assert.Equal(t, int64(2), cleaners[0].EmployeeID)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}
