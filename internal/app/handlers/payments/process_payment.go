package payments

import (
	"context"
	"time"

	"lendly/internal/app/commands"
	handlersupport "lendly/internal/app/handlers/support"
	"lendly/internal/app/middleware"
	"lendly/internal/app/outbox"
	"lendly/internal/app/policies"
	"lendly/internal/app/uow"
	domainbooking "lendly/internal/domain/booking"
)

const processPaymentKey = "payments.process"

// ProcessPaymentCommand charges the renter for an approved booking.
type ProcessPaymentCommand struct {
	BookingID       string
	Actor           domainbooking.Actor
	Method          string
	IdempotencyKeyV string
}

func (c ProcessPaymentCommand) Key() string            { return processPaymentKey }
func (c ProcessPaymentCommand) IdempotencyKey() string { return c.IdempotencyKeyV }
func (c ProcessPaymentCommand) ResultPrototype() any   { return &ProcessPaymentResult{} }

type ProcessPaymentResult struct {
	BookingID     string `json:"booking_id"`
	PaymentID     string `json:"payment_id"`
	PaymentStatus string `json:"payment_status"`
	Status        string `json:"status"`
}

// ProcessPaymentHandler validates preconditions inside the unit of work,
// charges through the processor, then records the settled payment. The charge
// happens after validation so the provider is never hit for a booking that
// cannot be paid.
type ProcessPaymentHandler struct {
	UoWFactory uow.Factory
	Processor  policies.PaymentProcessor
	Outbox     outbox.Outbox
	Encoder    outbox.EventEncoder
	Now        func() time.Time
}

func (h *ProcessPaymentHandler) Handle(ctx context.Context, cmd ProcessPaymentCommand) (*ProcessPaymentResult, error) {
	var result *ProcessPaymentResult
	err := handlersupport.WithUnit(ctx, h.UoWFactory, func(ctx context.Context, unit uow.UnitOfWork) error {
		b, err := unit.Bookings().ByID(ctx, domainbooking.BookingID(cmd.BookingID))
		if err != nil {
			return err
		}
		if !b.IsRenter(cmd.Actor) && !cmd.Actor.Admin {
			return domainbooking.ErrNotAllowed
		}
		if b.Status != domainbooking.StatusApproved {
			return domainbooking.ErrNotApproved
		}
		if b.PaymentStatus == domainbooking.PaymentPaid {
			return domainbooking.ErrAlreadyPaid
		}
		paymentID, err := h.Processor.Charge(ctx, string(b.ID), b.TotalPrice, cmd.Method)
		if err != nil {
			return err
		}
		if err := b.MarkPaid(paymentID, h.now()); err != nil {
			return err
		}
		if err := unit.Bookings().Save(ctx, b); err != nil {
			return err
		}
		if err := outbox.Drain(ctx, h.Outbox, h.encoder(), b); err != nil {
			return err
		}
		result = &ProcessPaymentResult{
			BookingID:     string(b.ID),
			PaymentID:     paymentID,
			PaymentStatus: string(b.PaymentStatus),
			Status:        string(b.Status),
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

func (h *ProcessPaymentHandler) encoder() outbox.EventEncoder {
	if h.Encoder != nil {
		return h.Encoder
	}
	return outbox.JSONEventEncoder{}
}

func (h *ProcessPaymentHandler) now() time.Time {
	if h.Now != nil {
		return h.Now().UTC()
	}
	return time.Now().UTC()
}

var (
	_ commands.Handler[ProcessPaymentCommand, *ProcessPaymentResult] = (*ProcessPaymentHandler)(nil)
	_ middleware.IdempotentCommand                                   = ProcessPaymentCommand{}
)
