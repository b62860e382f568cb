package memory

import (
	"context"
	"errors"
	"sort"
	"strings"
	"sync"

	domainbooking "lendly/internal/domain/booking"
	domaincatalog "lendly/internal/domain/catalog"
)

// ErrConcurrentUpdate is returned when a conditional save loses the race
// against another writer.
var ErrConcurrentUpdate = errors.New("memory: concurrent update")

// ItemRepository is an in-memory catalog store. Save performs a version
// compare-and-swap, so two writers racing to reserve the same dates cannot
// both commit: the loser gets ErrConcurrentUpdate and must reload.
type ItemRepository struct {
	mu    sync.RWMutex
	items map[domaincatalog.ItemID]*domaincatalog.Item
}

func NewItemRepository() *ItemRepository {
	return &ItemRepository{items: make(map[domaincatalog.ItemID]*domaincatalog.Item)}
}

func (r *ItemRepository) ByID(ctx context.Context, id domaincatalog.ItemID) (*domaincatalog.Item, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	item, ok := r.items[id]
	if !ok {
		return nil, domaincatalog.ErrItemNotFound
	}
	snapshot := *item
	snapshot.BookedDates = append([]domaincatalog.BookedRange(nil), item.BookedDates...)
	return &snapshot, nil
}

func (r *ItemRepository) Save(ctx context.Context, item *domaincatalog.Item) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	current, ok := r.items[item.ID]
	if ok && current.Version != item.Version {
		return ErrConcurrentUpdate
	}
	item.Version++
	stored := *item
	stored.BookedDates = append([]domaincatalog.BookedRange(nil), item.BookedDates...)
	stored.ClearEvents()
	r.items[item.ID] = &stored
	return nil
}

// checkVersion reports ErrConcurrentUpdate when the stored item has moved
// past the given snapshot. Used by staged units to validate writes before
// applying them.
func (r *ItemRepository) checkVersion(item *domaincatalog.Item) error {
	r.mu.RLock()
	defer r.mu.RUnlock()
	current, ok := r.items[item.ID]
	if ok && current.Version != item.Version {
		return ErrConcurrentUpdate
	}
	return nil
}

func (r *ItemRepository) ListByOwner(ctx context.Context, owner string) ([]*domaincatalog.Item, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	matches := make([]*domaincatalog.Item, 0)
	for _, item := range r.items {
		if item.Owner == owner {
			snapshot := *item
			snapshot.BookedDates = append([]domaincatalog.BookedRange(nil), item.BookedDates...)
			matches = append(matches, &snapshot)
		}
	}
	sortItems(matches)
	return matches, nil
}

func (r *ItemRepository) List(ctx context.Context) ([]*domaincatalog.Item, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	matches := make([]*domaincatalog.Item, 0, len(r.items))
	for _, item := range r.items {
		snapshot := *item
		snapshot.BookedDates = append([]domaincatalog.BookedRange(nil), item.BookedDates...)
		matches = append(matches, &snapshot)
	}
	sortItems(matches)
	return matches, nil
}

func sortItems(items []*domaincatalog.Item) {
	sort.Slice(items, func(i, j int) bool {
		if items[i].CreatedAt.Equal(items[j].CreatedAt) {
			return items[i].ID < items[j].ID
		}
		return items[i].CreatedAt.After(items[j].CreatedAt)
	})
}

// BookingRepository stores bookings in memory.
type BookingRepository struct {
	mu    sync.RWMutex
	items map[domainbooking.BookingID]*domainbooking.Booking
}

func NewBookingRepository() *BookingRepository {
	return &BookingRepository{items: make(map[domainbooking.BookingID]*domainbooking.Booking)}
}

func (r *BookingRepository) ByID(ctx context.Context, id domainbooking.BookingID) (*domainbooking.Booking, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	b, ok := r.items[id]
	if !ok {
		return nil, domainbooking.ErrBookingNotFound
	}
	snapshot := *b
	return &snapshot, nil
}

func (r *BookingRepository) Save(ctx context.Context, b *domainbooking.Booking) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	current, ok := r.items[b.ID]
	if ok && current.Version != b.Version {
		return ErrConcurrentUpdate
	}
	b.Version++
	stored := *b
	stored.ClearEvents()
	r.items[b.ID] = &stored
	return nil
}

// checkVersion reports ErrConcurrentUpdate when the stored booking has moved
// past the given snapshot.
func (r *BookingRepository) checkVersion(b *domainbooking.Booking) error {
	r.mu.RLock()
	defer r.mu.RUnlock()
	current, ok := r.items[b.ID]
	if ok && current.Version != b.Version {
		return ErrConcurrentUpdate
	}
	return nil
}

func (r *BookingRepository) ListByRenter(ctx context.Context, renterID string) ([]*domainbooking.Booking, error) {
	return r.list(func(b *domainbooking.Booking) bool { return b.RenterID == renterID }, renterID)
}

func (r *BookingRepository) ListByOwner(ctx context.Context, ownerID string) ([]*domainbooking.Booking, error) {
	return r.list(func(b *domainbooking.Booking) bool { return b.OwnerID == ownerID }, ownerID)
}

func (r *BookingRepository) list(match func(*domainbooking.Booking) bool, id string) ([]*domainbooking.Booking, error) {
	if strings.TrimSpace(id) == "" {
		return nil, errors.New("memory: user id required")
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	matches := make([]*domainbooking.Booking, 0)
	for _, b := range r.items {
		if match(b) {
			snapshot := *b
			matches = append(matches, &snapshot)
		}
	}
	sort.Slice(matches, func(i, j int) bool {
		if matches[i].CreatedAt.Equal(matches[j].CreatedAt) {
			return matches[i].ID < matches[j].ID
		}
		return matches[i].CreatedAt.After(matches[j].CreatedAt)
	})
	return matches, nil
}
