package memory

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	uowapp "lendly/internal/app/uow"
	domainbooking "lendly/internal/domain/booking"
	"lendly/internal/domain/shared/daterange"
	"lendly/internal/domain/shared/money"
)

func seedFactory(t *testing.T) Factory {
	t.Helper()
	f := Factory{
		ItemRepo:    NewItemRepository(),
		BookingRepo: NewBookingRepository(),
		UserRepo:    NewUserRepository(),
	}
	seedItem(t, f.ItemRepo)

	rng, err := daterange.New(
		time.Date(2026, time.September, 10, 0, 0, 0, 0, time.UTC),
		time.Date(2026, time.September, 13, 0, 0, 0, 0, time.UTC),
	)
	require.NoError(t, err)
	b, err := domainbooking.NewBooking(domainbooking.CreateParams{
		ID:         "bk-1",
		ItemID:     "item-1",
		RenterID:   "renter-1",
		OwnerID:    "owner-1",
		Range:      rng,
		TotalDays:  3,
		TotalPrice: money.Must(45, "USD"),
		CreatedAt:  repoClock,
	})
	require.NoError(t, err)
	require.NoError(t, f.BookingRepo.Save(context.Background(), b))
	return f
}

func approveInUnit(t *testing.T, unit uowapp.UnitOfWork) *domainbooking.Booking {
	t.Helper()
	ctx := context.Background()
	b, err := unit.Bookings().ByID(ctx, "bk-1")
	require.NoError(t, err)
	require.NoError(t, b.Approve(domainbooking.Actor{ID: "owner-1"}, repoClock))

	item, err := unit.Items().ByID(ctx, b.ItemID)
	require.NoError(t, err)
	require.NoError(t, item.Reserve(b.Range, string(b.ID), repoClock))
	require.NoError(t, unit.Items().Save(ctx, item))
	require.NoError(t, unit.Bookings().Save(ctx, b))
	return b
}

func TestUnitStagesWritesUntilCommit(t *testing.T) {
	ctx := context.Background()
	f := seedFactory(t)
	unit, err := f.Begin(ctx, uowapp.TxOptions{})
	require.NoError(t, err)

	approveInUnit(t, unit)

	// Nothing hits the stores before Commit.
	stored, err := f.ItemRepo.ByID(ctx, "item-1")
	require.NoError(t, err)
	assert.Empty(t, stored.BookedDates)
	pending, err := f.BookingRepo.ByID(ctx, "bk-1")
	require.NoError(t, err)
	assert.Equal(t, domainbooking.StatusPending, pending.Status)

	require.NoError(t, unit.Commit(ctx))

	stored, err = f.ItemRepo.ByID(ctx, "item-1")
	require.NoError(t, err)
	require.Len(t, stored.BookedDates, 1)
	assert.Equal(t, "bk-1", stored.BookedDates[0].BookingID)
	approved, err := f.BookingRepo.ByID(ctx, "bk-1")
	require.NoError(t, err)
	assert.Equal(t, domainbooking.StatusApproved, approved.Status)
}

func TestUnitStaleSaveFailsFast(t *testing.T) {
	ctx := context.Background()
	f := seedFactory(t)
	unit, err := f.Begin(ctx, uowapp.TxOptions{})
	require.NoError(t, err)

	stale, err := unit.Bookings().ByID(ctx, "bk-1")
	require.NoError(t, err)
	require.NoError(t, stale.Approve(domainbooking.Actor{ID: "owner-1"}, repoClock))

	// Another writer commits the same booking first.
	winner, err := f.BookingRepo.ByID(ctx, "bk-1")
	require.NoError(t, err)
	require.NoError(t, winner.Reject(domainbooking.Actor{ID: "owner-1"}, repoClock))
	require.NoError(t, f.BookingRepo.Save(ctx, winner))

	assert.ErrorIs(t, unit.Bookings().Save(ctx, stale), ErrConcurrentUpdate)
}

func TestUnitCommitConflictLeavesStoresUntouched(t *testing.T) {
	ctx := context.Background()
	f := seedFactory(t)
	unit, err := f.Begin(ctx, uowapp.TxOptions{})
	require.NoError(t, err)

	approveInUnit(t, unit)

	// The booking moves on between staging and Commit. The whole unit must
	// abort, including the already-staged item reservation.
	winner, err := f.BookingRepo.ByID(ctx, "bk-1")
	require.NoError(t, err)
	require.NoError(t, winner.Reject(domainbooking.Actor{ID: "owner-1"}, repoClock))
	require.NoError(t, f.BookingRepo.Save(ctx, winner))

	assert.ErrorIs(t, unit.Commit(ctx), ErrConcurrentUpdate)

	stored, err := f.ItemRepo.ByID(ctx, "item-1")
	require.NoError(t, err)
	assert.Empty(t, stored.BookedDates, "a rejected unit must not strand a reservation")
}

func TestUnitRollbackDiscardsWrites(t *testing.T) {
	ctx := context.Background()
	f := seedFactory(t)
	unit, err := f.Begin(ctx, uowapp.TxOptions{})
	require.NoError(t, err)

	approveInUnit(t, unit)
	require.NoError(t, unit.Rollback(ctx))
	require.NoError(t, unit.Commit(ctx))

	stored, err := f.ItemRepo.ByID(ctx, "item-1")
	require.NoError(t, err)
	assert.Empty(t, stored.BookedDates)
}

func TestFactoryRequiresRepositories(t *testing.T) {
	_, err := Factory{}.Begin(context.Background(), uowapp.TxOptions{})
	assert.ErrorIs(t, err, ErrFactoryMisconfigured)
}
