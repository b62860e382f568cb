package booking

import (
	"context"

	"lendly/internal/app/dto"
	handlersupport "lendly/internal/app/handlers/support"
	"lendly/internal/app/queries"
	"lendly/internal/app/uow"
	domainbooking "lendly/internal/domain/booking"
)

const (
	getBookingKey   = "booking.get"
	listRentalsKey  = "booking.list_rentals"
	listListingsKey = "booking.list_listings"
)

type GetBookingQuery struct {
	BookingID string
	Actor     domainbooking.Actor
}

func (q GetBookingQuery) Key() string { return getBookingKey }

type GetBookingHandler struct {
	UoWFactory uow.Factory
}

func (h *GetBookingHandler) Handle(ctx context.Context, q GetBookingQuery) (*dto.BookingView, error) {
	unit, ctx, cleanup, err := handlersupport.BeginReadOnlyUnit(ctx, h.UoWFactory)
	if err != nil {
		return nil, err
	}
	if cleanup != nil {
		defer cleanup()
	}
	b, err := unit.Bookings().ByID(ctx, domainbooking.BookingID(q.BookingID))
	if err != nil {
		return nil, err
	}
	if !b.IsParticipant(q.Actor) && !q.Actor.Admin {
		return nil, domainbooking.ErrNotAllowed
	}
	view := dto.MapBooking(b)
	return &view, nil
}

// ListRentalsQuery returns the bookings where the actor is the renter.
type ListRentalsQuery struct {
	Actor domainbooking.Actor
}

func (q ListRentalsQuery) Key() string { return listRentalsKey }

type ListRentalsHandler struct {
	UoWFactory uow.Factory
}

func (h *ListRentalsHandler) Handle(ctx context.Context, q ListRentalsQuery) (*dto.BookingCollection, error) {
	unit, ctx, cleanup, err := handlersupport.BeginReadOnlyUnit(ctx, h.UoWFactory)
	if err != nil {
		return nil, err
	}
	if cleanup != nil {
		defer cleanup()
	}
	bs, err := unit.Bookings().ListByRenter(ctx, q.Actor.ID)
	if err != nil {
		return nil, err
	}
	out := dto.MapBookings(bs)
	return &out, nil
}

// ListListingsQuery returns bookings against items the actor owns.
type ListListingsQuery struct {
	Actor domainbooking.Actor
}

func (q ListListingsQuery) Key() string { return listListingsKey }

type ListListingsHandler struct {
	UoWFactory uow.Factory
}

func (h *ListListingsHandler) Handle(ctx context.Context, q ListListingsQuery) (*dto.BookingCollection, error) {
	unit, ctx, cleanup, err := handlersupport.BeginReadOnlyUnit(ctx, h.UoWFactory)
	if err != nil {
		return nil, err
	}
	if cleanup != nil {
		defer cleanup()
	}
	bs, err := unit.Bookings().ListByOwner(ctx, q.Actor.ID)
	if err != nil {
		return nil, err
	}
	out := dto.MapBookings(bs)
	return &out, nil
}

var (
	_ queries.Handler[GetBookingQuery, *dto.BookingView]          = (*GetBookingHandler)(nil)
	_ queries.Handler[ListRentalsQuery, *dto.BookingCollection]   = (*ListRentalsHandler)(nil)
	_ queries.Handler[ListListingsQuery, *dto.BookingCollection]  = (*ListListingsHandler)(nil)
)
