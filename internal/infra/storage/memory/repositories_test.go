package memory

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	domainbooking "lendly/internal/domain/booking"
	domaincatalog "lendly/internal/domain/catalog"
	"lendly/internal/domain/shared/daterange"
	"lendly/internal/domain/shared/money"
)

var repoClock = time.Date(2026, time.September, 1, 8, 0, 0, 0, time.UTC)

func seedItem(t *testing.T, repo *ItemRepository) *domaincatalog.Item {
	t.Helper()
	item, err := domaincatalog.NewItem(domaincatalog.CreateItemParams{
		ID:          "item-1",
		Owner:       "owner-1",
		Title:       "Pressure washer",
		PricePerDay: money.Must(15, "USD"),
		Now:         repoClock,
	})
	require.NoError(t, err)
	require.NoError(t, repo.Save(context.Background(), item))
	return item
}

func TestItemRepositoryConditionalSave(t *testing.T) {
	ctx := context.Background()
	repo := NewItemRepository()
	seedItem(t, repo)

	first, err := repo.ByID(ctx, "item-1")
	require.NoError(t, err)
	second, err := repo.ByID(ctx, "item-1")
	require.NoError(t, err)

	rng, err := daterange.New(
		time.Date(2026, time.September, 10, 0, 0, 0, 0, time.UTC),
		time.Date(2026, time.September, 12, 0, 0, 0, 0, time.UTC),
	)
	require.NoError(t, err)

	require.NoError(t, first.Reserve(rng, "bk-1", repoClock))
	require.NoError(t, repo.Save(ctx, first))

	require.NoError(t, second.Reserve(rng, "bk-2", repoClock))
	err = repo.Save(ctx, second)
	assert.ErrorIs(t, err, ErrConcurrentUpdate)

	reloaded, err := repo.ByID(ctx, "item-1")
	require.NoError(t, err)
	require.Len(t, reloaded.BookedDates, 1)
	assert.Equal(t, "bk-1", reloaded.BookedDates[0].BookingID)
}

func TestItemRepositorySnapshots(t *testing.T) {
	ctx := context.Background()
	repo := NewItemRepository()
	seedItem(t, repo)

	loaded, err := repo.ByID(ctx, "item-1")
	require.NoError(t, err)
	loaded.Title = "mutated"

	reloaded, err := repo.ByID(ctx, "item-1")
	require.NoError(t, err)
	assert.Equal(t, "Pressure washer", reloaded.Title, "reads are copies, not shared pointers")
}

func TestItemRepositoryListOrdering(t *testing.T) {
	ctx := context.Background()
	repo := NewItemRepository()
	for i, id := range []domaincatalog.ItemID{"item-a", "item-b", "item-c"} {
		item, err := domaincatalog.NewItem(domaincatalog.CreateItemParams{
			ID:          id,
			Owner:       "owner-1",
			Title:       string(id),
			PricePerDay: money.Must(10, "USD"),
			Now:         repoClock.Add(time.Duration(i) * time.Hour),
		})
		require.NoError(t, err)
		require.NoError(t, repo.Save(ctx, item))
	}

	items, err := repo.List(ctx)
	require.NoError(t, err)
	require.Len(t, items, 3)
	assert.Equal(t, domaincatalog.ItemID("item-c"), items[0].ID, "newest first")
}

func TestBookingRepositoryConditionalSave(t *testing.T) {
	ctx := context.Background()
	repo := NewBookingRepository()

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
	require.NoError(t, repo.Save(ctx, b))

	first, err := repo.ByID(ctx, "bk-1")
	require.NoError(t, err)
	second, err := repo.ByID(ctx, "bk-1")
	require.NoError(t, err)

	require.NoError(t, first.Approve(domainbooking.Actor{ID: "owner-1"}, repoClock))
	require.NoError(t, repo.Save(ctx, first))

	require.NoError(t, second.Reject(domainbooking.Actor{ID: "owner-1"}, repoClock))
	assert.ErrorIs(t, repo.Save(ctx, second), ErrConcurrentUpdate)

	reloaded, err := repo.ByID(ctx, "bk-1")
	require.NoError(t, err)
	assert.Equal(t, domainbooking.StatusApproved, reloaded.Status)
}

func TestBookingRepositoryMissing(t *testing.T) {
	repo := NewBookingRepository()
	_, err := repo.ByID(context.Background(), "bk-404")
	assert.ErrorIs(t, err, domainbooking.ErrBookingNotFound)
}
