package booking

import (
	"context"
	"time"

	"lendly/internal/app/commands"
	handlersupport "lendly/internal/app/handlers/support"
	"lendly/internal/app/middleware"
	"lendly/internal/app/outbox"
	"lendly/internal/app/uow"
	domainbooking "lendly/internal/domain/booking"
	domaincatalog "lendly/internal/domain/catalog"
	domainpricing "lendly/internal/domain/pricing"
	domainrange "lendly/internal/domain/shared/daterange"
)

const requestBookingKey = "booking.request"

type RequestBookingCommand struct {
	CommandID       string
	ItemID          string
	RenterID        string
	StartDate       time.Time
	EndDate         time.Time
	Notes           string
	IdempotencyKeyV string
}

func (c RequestBookingCommand) Key() string { return requestBookingKey }

func (c RequestBookingCommand) IdempotencyKey() string { return c.IdempotencyKeyV }

func (c RequestBookingCommand) ResultPrototype() any { return &RequestBookingResult{} }

type RequestBookingResult struct {
	BookingID  string `json:"booking_id"`
	TotalDays  int    `json:"total_days"`
	TotalPrice int64  `json:"total_price"`
}

// RequestBookingHandler creates a pending booking: the proposed range is
// validated against the item's reserved dates, and price, day count and
// deposit are snapshotted so later catalog edits cannot change the contract.
type RequestBookingHandler struct {
	UoWFactory uow.Factory
	Outbox     outbox.Outbox
	Encoder    outbox.EventEncoder
	Now        func() time.Time
}

func (h *RequestBookingHandler) Handle(ctx context.Context, cmd RequestBookingCommand) (*RequestBookingResult, error) {
	var result *RequestBookingResult
	err := handlersupport.WithUnit(ctx, h.UoWFactory, func(ctx context.Context, unit uow.UnitOfWork) error {
		dr, err := domainrange.New(cmd.StartDate, cmd.EndDate)
		if err != nil {
			return err
		}
		now := h.now()
		if err := domainbooking.ValidateDateRange(dr, now); err != nil {
			return err
		}

		item, err := unit.Items().ByID(ctx, domaincatalog.ItemID(cmd.ItemID))
		if err != nil {
			return err
		}
		if !item.IsAvailable {
			return domaincatalog.ErrNotAvailable
		}
		if item.HasConflict(dr) {
			return domaincatalog.ErrDateConflict
		}

		days := dr.Days()
		total, err := domainpricing.Total(days, item.PricePerDay, item.PricePerWeek, item.PricePerMonth)
		if err != nil {
			return err
		}

		booking, err := domainbooking.NewBooking(domainbooking.CreateParams{
			ID:         domainbooking.BookingID(cmd.CommandID),
			ItemID:     item.ID,
			RenterID:   cmd.RenterID,
			OwnerID:    item.Owner,
			Range:      dr,
			TotalDays:  days,
			TotalPrice: total,
			Deposit:    item.Deposit,
			Notes:      cmd.Notes,
			CreatedAt:  now,
		})
		if err != nil {
			return err
		}

		if err := unit.Bookings().Save(ctx, booking); err != nil {
			return err
		}
		if err := outbox.Drain(ctx, h.Outbox, h.encoder(), booking); err != nil {
			return err
		}
		result = &RequestBookingResult{BookingID: string(booking.ID), TotalDays: days, TotalPrice: total.Amount}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

func (h *RequestBookingHandler) encoder() outbox.EventEncoder {
	if h.Encoder != nil {
		return h.Encoder
	}
	return outbox.JSONEventEncoder{}
}

func (h *RequestBookingHandler) now() time.Time {
	if h.Now != nil {
		return h.Now().UTC()
	}
	return time.Now().UTC()
}

var (
	_ commands.Handler[RequestBookingCommand, *RequestBookingResult] = (*RequestBookingHandler)(nil)
	_ middleware.IdempotentCommand                                   = RequestBookingCommand{}
)
