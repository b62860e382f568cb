package catalog

import (
	"context"
	"errors"
	"strings"
	"time"

	"lendly/internal/domain/shared/daterange"
	"lendly/internal/domain/shared/events"
	"lendly/internal/domain/shared/money"
)

var (
	ErrItemNotFound    = errors.New("catalog: item not found")
	ErrTitleRequired   = errors.New("catalog: title is required")
	ErrOwnerRequired   = errors.New("catalog: owner is required")
	ErrDailyRate       = errors.New("catalog: daily rate must be positive")
	ErrNegativeRate    = errors.New("catalog: rates and deposit cannot be negative")
	ErrNotAvailable    = errors.New("catalog: item is not available for rent")
	ErrDateConflict    = errors.New("catalog: item is already booked for the selected dates")
	ErrReservationGone = errors.New("catalog: no reserved range for booking")
)

type ItemID string

// BookedRange marks a span of the item's calendar held by an approved or
// in-progress booking.
type BookedRange struct {
	Range     daterange.DateRange
	BookingID string
}

// Item is a rentable listing with tiered pricing and an availability calendar.
// The BookedDates list must exactly mirror the set of bookings currently
// approved or in-progress for the item.
type Item struct {
	ID            ItemID
	Owner         string
	Title         string
	Description   string
	Category      string
	PricePerDay   money.Money
	PricePerWeek  money.Money // zero amount means the tier is not configured
	PricePerMonth money.Money
	Deposit       money.Money
	IsAvailable   bool
	BookedDates   []BookedRange
	Tags          []string
	Version       int64
	CreatedAt     time.Time
	UpdatedAt     time.Time
	events.EventRecorder
}

type Repository interface {
	ByID(ctx context.Context, id ItemID) (*Item, error)
	// Save persists the item, failing if another writer committed a newer
	// version since this one was loaded. Reservation commits ride on this
	// conditional write, which serializes check-and-reserve per item.
	Save(ctx context.Context, item *Item) error
	ListByOwner(ctx context.Context, owner string) ([]*Item, error)
	List(ctx context.Context) ([]*Item, error)
}

type CreateItemParams struct {
	ID            ItemID
	Owner         string
	Title         string
	Description   string
	Category      string
	PricePerDay   money.Money
	PricePerWeek  money.Money
	PricePerMonth money.Money
	Deposit       money.Money
	Tags          []string
	Now           time.Time
}

func NewItem(params CreateItemParams) (*Item, error) {
	if strings.TrimSpace(string(params.ID)) == "" {
		return nil, errors.New("catalog: item id required")
	}
	if strings.TrimSpace(params.Owner) == "" {
		return nil, ErrOwnerRequired
	}
	if strings.TrimSpace(params.Title) == "" {
		return nil, ErrTitleRequired
	}
	if params.PricePerDay.Amount <= 0 {
		return nil, ErrDailyRate
	}
	if params.PricePerWeek.Amount < 0 || params.PricePerMonth.Amount < 0 || params.Deposit.Amount < 0 {
		return nil, ErrNegativeRate
	}
	now := params.Now.UTC()
	item := &Item{
		ID:            params.ID,
		Owner:         params.Owner,
		Title:         strings.TrimSpace(params.Title),
		Description:   params.Description,
		Category:      params.Category,
		PricePerDay:   params.PricePerDay,
		PricePerWeek:  params.PricePerWeek,
		PricePerMonth: params.PricePerMonth,
		Deposit:       params.Deposit,
		IsAvailable:   true,
		Tags:          append([]string(nil), params.Tags...),
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	return item, nil
}

// HasConflict reports whether the proposed range overlaps any reserved range.
// Back-to-back ranges sharing a boundary day are allowed.
func (i *Item) HasConflict(r daterange.DateRange) bool {
	for _, booked := range i.BookedDates {
		if booked.Range.Overlaps(r) {
			return true
		}
	}
	return false
}

// Reserve appends the range to the item's booked dates after re-checking for
// conflicts. Callers must persist through Repository.Save for the reservation
// to actually commit.
func (i *Item) Reserve(r daterange.DateRange, bookingID string, now time.Time) error {
	if !i.IsAvailable {
		return ErrNotAvailable
	}
	if i.HasConflict(r) {
		return ErrDateConflict
	}
	i.BookedDates = append(i.BookedDates, BookedRange{Range: r, BookingID: bookingID})
	i.UpdatedAt = now.UTC()
	i.Record(DatesReserved{ItemID: i.ID, BookingID: bookingID, Range: r, At: i.UpdatedAt})
	return nil
}

// Release removes the reserved range held by the given booking.
func (i *Item) Release(bookingID string, now time.Time) error {
	idx := -1
	for n, booked := range i.BookedDates {
		if booked.BookingID == bookingID {
			idx = n
			break
		}
	}
	if idx == -1 {
		return ErrReservationGone
	}
	removed := i.BookedDates[idx]
	i.BookedDates = append(i.BookedDates[:idx], i.BookedDates[idx+1:]...)
	i.UpdatedAt = now.UTC()
	i.Record(DatesReleased{ItemID: i.ID, BookingID: bookingID, Range: removed.Range, At: i.UpdatedAt})
	return nil
}

func (i *Item) SetAvailability(available bool, now time.Time) {
	i.IsAvailable = available
	i.UpdatedAt = now.UTC()
}
