package booking

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	domainbooking "lendly/internal/domain/booking"
	domaincatalog "lendly/internal/domain/catalog"
	"lendly/internal/domain/shared/money"
	"lendly/internal/infra/storage/memory"
)

var handlerClock = time.Date(2026, time.September, 1, 10, 0, 0, 0, time.UTC)

type fixture struct {
	items    *memory.ItemRepository
	bookings *memory.BookingRepository
	factory  memory.Factory
	outbox   *memory.OutboxStore
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	f := &fixture{
		items:    memory.NewItemRepository(),
		bookings: memory.NewBookingRepository(),
		outbox:   memory.NewOutboxStore(),
	}
	f.factory = memory.Factory{
		ItemRepo:    f.items,
		BookingRepo: f.bookings,
		UserRepo:    memory.NewUserRepository(),
	}
	return f
}

func (f *fixture) seedItem(t *testing.T) *domaincatalog.Item {
	t.Helper()
	item, err := domaincatalog.NewItem(domaincatalog.CreateItemParams{
		ID:           "item-1",
		Owner:        "owner-1",
		Title:        "Road bike",
		PricePerDay:  money.Must(20, "USD"),
		PricePerWeek: money.Must(100, "USD"),
		Deposit:      money.Must(50, "USD"),
		Now:          handlerClock,
	})
	require.NoError(t, err)
	require.NoError(t, f.items.Save(context.Background(), item))
	return item
}

func (f *fixture) requestHandler() *RequestBookingHandler {
	return &RequestBookingHandler{
		UoWFactory: f.factory,
		Outbox:     f.outbox,
		Now:        func() time.Time { return handlerClock },
	}
}

func (f *fixture) statusHandler() *ChangeStatusHandler {
	return &ChangeStatusHandler{
		UoWFactory: f.factory,
		Outbox:     f.outbox,
		Now:        func() time.Time { return handlerClock },
	}
}

func (f *fixture) request(t *testing.T, id, renter string, startDay, endDay int) *RequestBookingResult {
	t.Helper()
	res, err := f.requestHandler().Handle(context.Background(), RequestBookingCommand{
		CommandID: id,
		ItemID:    "item-1",
		RenterID:  renter,
		StartDate: time.Date(2026, time.September, startDay, 0, 0, 0, 0, time.UTC),
		EndDate:   time.Date(2026, time.September, endDay, 0, 0, 0, 0, time.UTC),
	})
	require.NoError(t, err)
	return res
}

func (f *fixture) changeStatus(t *testing.T, bookingID string, actor domainbooking.Actor, status domainbooking.Status) error {
	t.Helper()
	_, err := f.statusHandler().Handle(context.Background(), ChangeStatusCommand{
		BookingID: bookingID,
		Actor:     actor,
		Status:    string(status),
	})
	return err
}

func TestRequestBooking(t *testing.T) {
	t.Run("creates a pending booking with snapshot pricing", func(t *testing.T) {
		f := newFixture(t)
		f.seedItem(t)

		res := f.request(t, "bk-1", "renter-1", 10, 13)
		assert.Equal(t, 3, res.TotalDays)
		assert.Equal(t, int64(60), res.TotalPrice)

		b, err := f.bookings.ByID(context.Background(), "bk-1")
		require.NoError(t, err)
		assert.Equal(t, domainbooking.StatusPending, b.Status)
		assert.Equal(t, "owner-1", b.OwnerID)
		assert.Equal(t, int64(50), b.Deposit.Amount)
		assert.Positive(t, f.outbox.Pending(), "requested event reaches the outbox")
	})

	t.Run("later price changes do not reprice the booking", func(t *testing.T) {
		f := newFixture(t)
		f.seedItem(t)
		f.request(t, "bk-1", "renter-1", 10, 13)

		item, err := f.items.ByID(context.Background(), "item-1")
		require.NoError(t, err)
		item.PricePerDay = money.Must(99, "USD")
		require.NoError(t, f.items.Save(context.Background(), item))

		b, err := f.bookings.ByID(context.Background(), "bk-1")
		require.NoError(t, err)
		assert.Equal(t, 3, b.TotalDays)
		assert.Equal(t, int64(60), b.TotalPrice.Amount, "price was captured at request time")
	})

	t.Run("weekly tier applies to longer stays", func(t *testing.T) {
		f := newFixture(t)
		f.seedItem(t)

		res := f.request(t, "bk-1", "renter-1", 1, 11)
		assert.Equal(t, 10, res.TotalDays)
		assert.Equal(t, int64(200), res.TotalPrice)
	})

	t.Run("pending requests do not block each other", func(t *testing.T) {
		f := newFixture(t)
		f.seedItem(t)

		f.request(t, "bk-1", "renter-1", 10, 13)
		f.request(t, "bk-2", "renter-2", 11, 14)
	})

	t.Run("approved dates reject an overlapping request", func(t *testing.T) {
		f := newFixture(t)
		f.seedItem(t)

		f.request(t, "bk-1", "renter-1", 10, 13)
		require.NoError(t, f.changeStatus(t, "bk-1", domainbooking.Actor{ID: "owner-1"}, domainbooking.StatusApproved))

		_, err := f.requestHandler().Handle(context.Background(), RequestBookingCommand{
			CommandID: "bk-2",
			ItemID:    "item-1",
			RenterID:  "renter-2",
			StartDate: time.Date(2026, time.September, 12, 0, 0, 0, 0, time.UTC),
			EndDate:   time.Date(2026, time.September, 15, 0, 0, 0, 0, time.UTC),
		})
		assert.ErrorIs(t, err, domaincatalog.ErrDateConflict)
	})

	t.Run("back-to-back ranges are both accepted", func(t *testing.T) {
		f := newFixture(t)
		f.seedItem(t)

		f.request(t, "bk-1", "renter-1", 10, 13)
		require.NoError(t, f.changeStatus(t, "bk-1", domainbooking.Actor{ID: "owner-1"}, domainbooking.StatusApproved))
		f.request(t, "bk-2", "renter-2", 13, 15)
	})

	t.Run("start date in the past", func(t *testing.T) {
		f := newFixture(t)
		f.seedItem(t)

		_, err := f.requestHandler().Handle(context.Background(), RequestBookingCommand{
			CommandID: "bk-1",
			ItemID:    "item-1",
			RenterID:  "renter-1",
			StartDate: time.Date(2026, time.August, 20, 0, 0, 0, 0, time.UTC),
			EndDate:   time.Date(2026, time.August, 23, 0, 0, 0, 0, time.UTC),
		})
		assert.ErrorIs(t, err, domainbooking.ErrStartInPast)
	})

	t.Run("unavailable item", func(t *testing.T) {
		f := newFixture(t)
		item := f.seedItem(t)
		item.SetAvailability(false, handlerClock)
		require.NoError(t, f.items.Save(context.Background(), item))

		_, err := f.requestHandler().Handle(context.Background(), RequestBookingCommand{
			CommandID: "bk-1",
			ItemID:    "item-1",
			RenterID:  "renter-1",
			StartDate: time.Date(2026, time.September, 10, 0, 0, 0, 0, time.UTC),
			EndDate:   time.Date(2026, time.September, 13, 0, 0, 0, 0, time.UTC),
		})
		assert.ErrorIs(t, err, domaincatalog.ErrNotAvailable)
	})

	t.Run("unknown item", func(t *testing.T) {
		f := newFixture(t)
		_, err := f.requestHandler().Handle(context.Background(), RequestBookingCommand{
			CommandID: "bk-1",
			ItemID:    "item-404",
			RenterID:  "renter-1",
			StartDate: time.Date(2026, time.September, 10, 0, 0, 0, 0, time.UTC),
			EndDate:   time.Date(2026, time.September, 13, 0, 0, 0, 0, time.UTC),
		})
		assert.ErrorIs(t, err, domaincatalog.ErrItemNotFound)
	})
}

func TestChangeStatus(t *testing.T) {
	owner := domainbooking.Actor{ID: "owner-1"}
	renter := domainbooking.Actor{ID: "renter-1"}

	t.Run("approval reserves the item's dates", func(t *testing.T) {
		f := newFixture(t)
		f.seedItem(t)
		f.request(t, "bk-1", "renter-1", 10, 13)

		require.NoError(t, f.changeStatus(t, "bk-1", owner, domainbooking.StatusApproved))

		item, err := f.items.ByID(context.Background(), "item-1")
		require.NoError(t, err)
		require.Len(t, item.BookedDates, 1)
		assert.Equal(t, "bk-1", item.BookedDates[0].BookingID)
	})

	t.Run("renter cannot approve", func(t *testing.T) {
		f := newFixture(t)
		f.seedItem(t)
		f.request(t, "bk-1", "renter-1", 10, 13)

		err := f.changeStatus(t, "bk-1", renter, domainbooking.StatusApproved)
		assert.ErrorIs(t, err, domainbooking.ErrNotAllowed)

		b, err := f.bookings.ByID(context.Background(), "bk-1")
		require.NoError(t, err)
		assert.Equal(t, domainbooking.StatusPending, b.Status)
	})

	t.Run("cancelling an approved booking frees the dates", func(t *testing.T) {
		f := newFixture(t)
		f.seedItem(t)
		f.request(t, "bk-1", "renter-1", 10, 13)
		require.NoError(t, f.changeStatus(t, "bk-1", owner, domainbooking.StatusApproved))

		require.NoError(t, f.changeStatus(t, "bk-1", owner, domainbooking.StatusCancelled))

		item, err := f.items.ByID(context.Background(), "item-1")
		require.NoError(t, err)
		assert.Empty(t, item.BookedDates)

		f.request(t, "bk-2", "renter-2", 10, 13)
	})

	t.Run("completion keeps the calendar entry", func(t *testing.T) {
		f := newFixture(t)
		f.seedItem(t)
		f.request(t, "bk-1", "renter-1", 10, 13)
		require.NoError(t, f.changeStatus(t, "bk-1", owner, domainbooking.StatusApproved))

		require.NoError(t, f.changeStatus(t, "bk-1", owner, domainbooking.StatusCompleted))

		item, err := f.items.ByID(context.Background(), "item-1")
		require.NoError(t, err)
		assert.Len(t, item.BookedDates, 1)
	})

	t.Run("pending is not a transition target", func(t *testing.T) {
		f := newFixture(t)
		f.seedItem(t)
		f.request(t, "bk-1", "renter-1", 10, 13)

		err := f.changeStatus(t, "bk-1", owner, domainbooking.StatusPending)
		assert.ErrorIs(t, err, domainbooking.ErrInvalidTransition)
	})

	t.Run("unknown status string", func(t *testing.T) {
		f := newFixture(t)
		_, err := f.statusHandler().Handle(context.Background(), ChangeStatusCommand{
			BookingID: "bk-1",
			Actor:     owner,
			Status:    "archived",
		})
		assert.ErrorIs(t, err, domainbooking.ErrUnknownStatus)
	})
}
