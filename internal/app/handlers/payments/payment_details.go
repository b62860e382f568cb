package payments

import (
	"context"
	"errors"

	"lendly/internal/app/dto"
	handlersupport "lendly/internal/app/handlers/support"
	"lendly/internal/app/queries"
	"lendly/internal/app/uow"
	domainbooking "lendly/internal/domain/booking"
	domaincatalog "lendly/internal/domain/catalog"
)

const paymentDetailsKey = "payments.details"

type PaymentDetailsQuery struct {
	BookingID string
	Actor     domainbooking.Actor
}

func (q PaymentDetailsQuery) Key() string { return paymentDetailsKey }

// PaymentDetailsHandler assembles the cost breakdown for a booking. The item
// lookup is tolerant of a listing deleted after the booking was made, since
// price and deposit are snapshotted on the booking itself.
type PaymentDetailsHandler struct {
	UoWFactory uow.Factory
}

func (h *PaymentDetailsHandler) Handle(ctx context.Context, q PaymentDetailsQuery) (*dto.PaymentDetails, error) {
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
	item, err := unit.Items().ByID(ctx, b.ItemID)
	if err != nil && !errors.Is(err, domaincatalog.ErrItemNotFound) {
		return nil, err
	}
	details := dto.MapPaymentDetails(b, item)
	return &details, nil
}

var _ queries.Handler[PaymentDetailsQuery, *dto.PaymentDetails] = (*PaymentDetailsHandler)(nil)
