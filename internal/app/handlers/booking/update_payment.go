package booking

import (
	"context"
	"time"

	"lendly/internal/app/commands"
	handlersupport "lendly/internal/app/handlers/support"
	"lendly/internal/app/uow"
	domainbooking "lendly/internal/domain/booking"
)

const updatePaymentKey = "booking.update_payment"

// UpdatePaymentCommand lets the renter reconcile client-reported payment
// state on their own booking.
type UpdatePaymentCommand struct {
	BookingID     string
	Actor         domainbooking.Actor
	PaymentStatus string
	PaymentID     string
}

func (c UpdatePaymentCommand) Key() string { return updatePaymentKey }

type UpdatePaymentResult struct {
	BookingID     string `json:"booking_id"`
	PaymentStatus string `json:"payment_status"`
}

type UpdatePaymentHandler struct {
	UoWFactory uow.Factory
	Now        func() time.Time
}

func (h *UpdatePaymentHandler) Handle(ctx context.Context, cmd UpdatePaymentCommand) (*UpdatePaymentResult, error) {
	status, err := domainbooking.ParsePaymentStatus(cmd.PaymentStatus)
	if err != nil {
		return nil, err
	}
	var result *UpdatePaymentResult
	err = handlersupport.WithUnit(ctx, h.UoWFactory, func(ctx context.Context, unit uow.UnitOfWork) error {
		b, err := unit.Bookings().ByID(ctx, domainbooking.BookingID(cmd.BookingID))
		if err != nil {
			return err
		}
		if err := b.UpdatePayment(cmd.Actor, status, cmd.PaymentID, h.now()); err != nil {
			return err
		}
		if err := unit.Bookings().Save(ctx, b); err != nil {
			return err
		}
		result = &UpdatePaymentResult{BookingID: string(b.ID), PaymentStatus: string(b.PaymentStatus)}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

func (h *UpdatePaymentHandler) now() time.Time {
	if h.Now != nil {
		return h.Now().UTC()
	}
	return time.Now().UTC()
}

var _ commands.Handler[UpdatePaymentCommand, *UpdatePaymentResult] = (*UpdatePaymentHandler)(nil)
