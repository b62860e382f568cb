package payments

import (
	"context"
	"time"

	"lendly/internal/app/commands"
	handlersupport "lendly/internal/app/handlers/support"
	"lendly/internal/app/outbox"
	"lendly/internal/app/policies"
	"lendly/internal/app/uow"
	domainbooking "lendly/internal/domain/booking"
	"lendly/internal/domain/shared/money"
)

const refundPaymentKey = "payments.refund"

// RefundPaymentCommand refunds a paid booking, fully when Amount is zero.
type RefundPaymentCommand struct {
	BookingID string
	Actor     domainbooking.Actor
	Amount    money.Money
}

func (c RefundPaymentCommand) Key() string { return refundPaymentKey }

type RefundPaymentResult struct {
	BookingID     string      `json:"booking_id"`
	Refunded      money.Money `json:"refunded"`
	PaymentStatus string      `json:"payment_status"`
}

type RefundPaymentHandler struct {
	UoWFactory uow.Factory
	Processor  policies.PaymentProcessor
	Outbox     outbox.Outbox
	Encoder    outbox.EventEncoder
	Now        func() time.Time
}

func (h *RefundPaymentHandler) Handle(ctx context.Context, cmd RefundPaymentCommand) (*RefundPaymentResult, error) {
	var result *RefundPaymentResult
	err := handlersupport.WithUnit(ctx, h.UoWFactory, func(ctx context.Context, unit uow.UnitOfWork) error {
		b, err := unit.Bookings().ByID(ctx, domainbooking.BookingID(cmd.BookingID))
		if err != nil {
			return err
		}
		if !b.IsOwner(cmd.Actor) && !cmd.Actor.Admin {
			return domainbooking.ErrNotAllowed
		}
		amount := cmd.Amount
		if amount.Currency == "" {
			amount.Currency = b.TotalPrice.Currency
		}
		paymentID := b.PaymentID
		refunded, err := b.RecordRefund(amount, h.now())
		if err != nil {
			return err
		}
		if err := h.Processor.Refund(ctx, string(b.ID), paymentID, refunded); err != nil {
			return err
		}
		if err := unit.Bookings().Save(ctx, b); err != nil {
			return err
		}
		if err := outbox.Drain(ctx, h.Outbox, h.encoder(), b); err != nil {
			return err
		}
		result = &RefundPaymentResult{
			BookingID:     string(b.ID),
			Refunded:      refunded,
			PaymentStatus: string(b.PaymentStatus),
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

func (h *RefundPaymentHandler) encoder() outbox.EventEncoder {
	if h.Encoder != nil {
		return h.Encoder
	}
	return outbox.JSONEventEncoder{}
}

func (h *RefundPaymentHandler) now() time.Time {
	if h.Now != nil {
		return h.Now().UTC()
	}
	return time.Now().UTC()
}

var _ commands.Handler[RefundPaymentCommand, *RefundPaymentResult] = (*RefundPaymentHandler)(nil)
