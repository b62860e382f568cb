package catalog

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"lendly/internal/domain/shared/daterange"
	"lendly/internal/domain/shared/money"
)

var itemClock = time.Date(2026, time.September, 1, 9, 0, 0, 0, time.UTC)

func span(t *testing.T, startDay, endDay int) daterange.DateRange {
	t.Helper()
	r, err := daterange.New(
		time.Date(2026, time.September, startDay, 0, 0, 0, 0, time.UTC),
		time.Date(2026, time.September, endDay, 0, 0, 0, 0, time.UTC),
	)
	require.NoError(t, err)
	return r
}

func newTestItem(t *testing.T) *Item {
	t.Helper()
	item, err := NewItem(CreateItemParams{
		ID:          "item-1",
		Owner:       "owner-1",
		Title:       "Mirrorless camera",
		PricePerDay: money.Must(20, "USD"),
		Now:         itemClock,
	})
	require.NoError(t, err)
	return item
}

func TestNewItem(t *testing.T) {
	t.Run("valid item starts available", func(t *testing.T) {
		item := newTestItem(t)
		assert.True(t, item.IsAvailable)
		assert.Empty(t, item.BookedDates)
	})

	t.Run("title is trimmed", func(t *testing.T) {
		item, err := NewItem(CreateItemParams{
			ID:          "item-2",
			Owner:       "owner-1",
			Title:       "  Cordless drill  ",
			PricePerDay: money.Must(5, "USD"),
			Now:         itemClock,
		})
		require.NoError(t, err)
		assert.Equal(t, "Cordless drill", item.Title)
	})

	t.Run("validation", func(t *testing.T) {
		tests := []struct {
			name   string
			params CreateItemParams
			want   error
		}{
			{"missing owner", CreateItemParams{ID: "i", Title: "x", PricePerDay: money.Must(1, "USD")}, ErrOwnerRequired},
			{"missing title", CreateItemParams{ID: "i", Owner: "o", Title: "   ", PricePerDay: money.Must(1, "USD")}, ErrTitleRequired},
			{"zero daily rate", CreateItemParams{ID: "i", Owner: "o", Title: "x"}, ErrDailyRate},
			{"negative weekly rate", CreateItemParams{ID: "i", Owner: "o", Title: "x", PricePerDay: money.Must(1, "USD"), PricePerWeek: money.Money{Amount: -1, Currency: "USD"}}, ErrNegativeRate},
		}
		for _, tc := range tests {
			t.Run(tc.name, func(t *testing.T) {
				_, err := NewItem(tc.params)
				assert.ErrorIs(t, err, tc.want)
			})
		}
	})
}

func TestHasConflict(t *testing.T) {
	item := newTestItem(t)
	require.NoError(t, item.Reserve(span(t, 10, 13), "bk-1", itemClock))

	assert.True(t, item.HasConflict(span(t, 11, 12)))
	assert.True(t, item.HasConflict(span(t, 9, 11)))
	assert.False(t, item.HasConflict(span(t, 13, 15)), "back-to-back ranges do not conflict")
	assert.False(t, item.HasConflict(span(t, 20, 22)))
}

func TestReserve(t *testing.T) {
	t.Run("appends the booked range", func(t *testing.T) {
		item := newTestItem(t)
		require.NoError(t, item.Reserve(span(t, 10, 13), "bk-1", itemClock))
		require.Len(t, item.BookedDates, 1)
		assert.Equal(t, "bk-1", item.BookedDates[0].BookingID)
		assert.Len(t, item.PendingEvents(), 1)
	})

	t.Run("overlapping reservation is rejected", func(t *testing.T) {
		item := newTestItem(t)
		require.NoError(t, item.Reserve(span(t, 10, 13), "bk-1", itemClock))
		err := item.Reserve(span(t, 12, 15), "bk-2", itemClock)
		assert.ErrorIs(t, err, ErrDateConflict)
		assert.Len(t, item.BookedDates, 1)
	})

	t.Run("unavailable item cannot be reserved", func(t *testing.T) {
		item := newTestItem(t)
		item.SetAvailability(false, itemClock)
		err := item.Reserve(span(t, 10, 13), "bk-1", itemClock)
		assert.ErrorIs(t, err, ErrNotAvailable)
	})
}

func TestRelease(t *testing.T) {
	t.Run("removes only the matching booking's range", func(t *testing.T) {
		item := newTestItem(t)
		require.NoError(t, item.Reserve(span(t, 10, 13), "bk-1", itemClock))
		require.NoError(t, item.Reserve(span(t, 14, 16), "bk-2", itemClock))

		require.NoError(t, item.Release("bk-1", itemClock))
		require.Len(t, item.BookedDates, 1)
		assert.Equal(t, "bk-2", item.BookedDates[0].BookingID)
	})

	t.Run("missing reservation", func(t *testing.T) {
		item := newTestItem(t)
		assert.ErrorIs(t, item.Release("bk-404", itemClock), ErrReservationGone)
	})
}
