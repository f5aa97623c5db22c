package services

import (
	"context"
	"testing"

	"github.com/cleanbook/scheduler-backend/internal/models"
	"github.com/cleanbook/scheduler-backend/internal/testutil"
	"github.com/cleanbook/scheduler-backend/pkg/jwt"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestListVisibleBookings(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)

	admin := env.caller(t, env.provision(t, "admin@example.com", testutil.AdminRoleID))
	alice := env.provision(t, "alice@example.com", testutil.CleanerRoleID)
	bob := env.provision(t, "bob@example.com", testutil.CleanerRoleID)

	withAddress := env.registerCustomer(t, "ada@example.com", true)
	withoutAddress := env.registerCustomer(t, "carl@example.com", false)

	b1 := env.createBooking(t, withAddress.ID, []int64{alice.Employee.ID})
	b2 := env.createBooking(t, withoutAddress.ID, []int64{alice.Employee.ID, bob.Employee.ID})
	env.createBooking(t, withAddress.ID, nil)

	t.Run("AdminSeesEverything", func(t *testing.T) {
		listing, err := env.visibility.ListVisibleBookings(ctx, admin)
		require.NoError(t, err)

		assert.Equal(t, models.ScopeAdmin, listing.Scope)
		assert.Nil(t, listing.Cleaner)
		require.Len(t, listing.Admin, 3)

		byID := map[int64]models.AdminBookingView{}
		for _, view := range listing.Admin {
			byID[view.ID] = view
		}

		first := byID[b1]
		assert.Equal(t, "ada@example.com", first.Customer.Email)
		require.NotNil(t, first.Customer.Address)
		assert.Equal(t, "Stockholm", first.Customer.Address.City)
		require.Len(t, first.Cleaners, 1)
		assert.Equal(t, "alice@example.com", first.Cleaners[0].Email)
		assert.Equal(t, "+46701234567", first.Cleaners[0].Phone)

		second := byID[b2]
		assert.Nil(t, second.Customer.Address)
		assert.Len(t, second.Cleaners, 2)
	})

	t.Run("CleanerSeesOnlyAssigned", func(t *testing.T) {
		listing, err := env.visibility.ListVisibleBookings(ctx, env.caller(t, bob))
		require.NoError(t, err)

		assert.Equal(t, models.ScopeCleaner, listing.Scope)
		assert.Nil(t, listing.Admin)
		require.Len(t, listing.Cleaner, 1)

		view := listing.Cleaner[0]
		assert.Equal(t, b2, view.ID)
		assert.Equal(t, "Ada Lovelace", view.Customer.Name)
		assert.Equal(t, models.AddressMissing, view.Customer.Address)
	})

	t.Run("CleanerAddressFlattened", func(t *testing.T) {
		listing, err := env.visibility.ListVisibleBookings(ctx, env.caller(t, alice))
		require.NoError(t, err)
		require.Len(t, listing.Cleaner, 2)

		addresses := map[int64]string{}
		for _, view := range listing.Cleaner {
			addresses[view.ID] = view.Customer.Address
		}
		assert.Equal(t, "Main Street 1, 11122 Stockholm", addresses[b1])
		assert.Equal(t, models.AddressMissing, addresses[b2])
	})

	t.Run("CleanerWithoutAssignments", func(t *testing.T) {
		idle := env.caller(t, env.provision(t, "idle@example.com", testutil.CleanerRoleID))

		listing, err := env.visibility.ListVisibleBookings(ctx, idle)
		require.NoError(t, err)
		assert.NotNil(t, listing.Cleaner)
		assert.Empty(t, listing.Cleaner)
	})
}

func TestGetVisibleBooking(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)

	admin := env.caller(t, env.provision(t, "admin@example.com", testutil.AdminRoleID))
	alice := env.caller(t, env.provision(t, "alice@example.com", testutil.CleanerRoleID))
	bob := env.caller(t, env.provision(t, "bob@example.com", testutil.CleanerRoleID))

	customer := env.registerCustomer(t, "ada@example.com", true)
	bookingID := env.createBooking(t, customer.ID, []int64{alice.EmployeeID})

	t.Run("AssignedCleaner", func(t *testing.T) {
		detail, err := env.visibility.GetBooking(ctx, alice, bookingID)
		require.NoError(t, err)
		assert.Equal(t, models.ScopeCleaner, detail.Scope)
		require.NotNil(t, detail.Cleaner)
		assert.Equal(t, bookingID, detail.Cleaner.ID)
	})

	t.Run("UnassignedCleanerForbidden", func(t *testing.T) {
		_, err := env.visibility.GetBooking(ctx, bob, bookingID)
		assert.ErrorIs(t, err, ErrForbidden)
	})

	t.Run("CleanerMissingBookingForbidden", func(t *testing.T) {
		_, err := env.visibility.GetBooking(ctx, bob, 9999)
		assert.ErrorIs(t, err, ErrForbidden)
	})

	t.Run("Admin", func(t *testing.T) {
		detail, err := env.visibility.GetBooking(ctx, admin, bookingID)
		require.NoError(t, err)
		assert.Equal(t, models.ScopeAdmin, detail.Scope)
		require.NotNil(t, detail.Admin)
		assert.Len(t, detail.Admin.Cleaners, 1)
	})

	t.Run("AdminNotFound", func(t *testing.T) {
		_, err := env.visibility.GetBooking(ctx, admin, 9999)
		assert.ErrorIs(t, err, ErrNotFound)
	})
}

func TestResolveCaller(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)

	cleaner := env.provision(t, "cleaner@example.com", testutil.CleanerRoleID)

	t.Run("Resolved", func(t *testing.T) {
		claims := &jwt.Claims{}
		claims.Subject = cleaner.AccountID

		caller, err := env.visibility.ResolveCaller(ctx, claims)
		require.NoError(t, err)
		assert.Equal(t, cleaner.Employee.ID, caller.EmployeeID)
		assert.Equal(t, []string{models.RoleCleaner}, caller.Roles)
		assert.False(t, caller.IsAdmin())
	})

	t.Run("UnknownAccount", func(t *testing.T) {
		claims := &jwt.Claims{}
		claims.Subject = "00000000-0000-0000-0000-000000000000"

		_, err := env.visibility.ResolveCaller(ctx, claims)
		require.Error(t, err)
		assert.ErrorIs(t, err, ErrUnauthorized)
		assert.Equal(t, "User or employee not found", err.Error())
	})

	t.Run("DeletedEmployee", func(t *testing.T) {
		require.NoError(t, env.employeeSvc.DeleteEmployee(ctx, cleaner.Employee.ID))

		claims := &jwt.Claims{}
		claims.Subject = cleaner.AccountID

		_, err := env.visibility.ResolveCaller(ctx, claims)
		assert.ErrorIs(t, err, ErrUnauthorized)
	})
}
