package booking

import (
	"context"
	"errors"
	"time"

	"lendly/internal/app/commands"
	handlersupport "lendly/internal/app/handlers/support"
	"lendly/internal/app/outbox"
	"lendly/internal/app/uow"
	domainbooking "lendly/internal/domain/booking"
	domaincatalog "lendly/internal/domain/catalog"
)

const changeStatusKey = "booking.change_status"

type ChangeStatusCommand struct {
	BookingID string
	Actor     domainbooking.Actor
	Status    string
}

func (c ChangeStatusCommand) Key() string { return changeStatusKey }

type ChangeStatusResult struct {
	BookingID string `json:"booking_id"`
	Status    string `json:"status"`
}

// ChangeStatusHandler drives the rental state machine. Approval commits the
// booking's range onto the item's calendar in the same unit of work, so the
// conflict re-check and the reservation land atomically; rejection and
// cancellation of a previously approved booking release that range again.
// Completion deliberately leaves the reserved range in place.
type ChangeStatusHandler struct {
	UoWFactory uow.Factory
	Outbox     outbox.Outbox
	Encoder    outbox.EventEncoder
	Now        func() time.Time
}

func (h *ChangeStatusHandler) Handle(ctx context.Context, cmd ChangeStatusCommand) (*ChangeStatusResult, error) {
	target, err := domainbooking.ParseStatus(cmd.Status)
	if err != nil {
		return nil, err
	}
	var result *ChangeStatusResult
	err = handlersupport.WithUnit(ctx, h.UoWFactory, func(ctx context.Context, unit uow.UnitOfWork) error {
		b, err := unit.Bookings().ByID(ctx, domainbooking.BookingID(cmd.BookingID))
		if err != nil {
			return err
		}
		now := h.now()

		switch target {
		case domainbooking.StatusApproved:
			if err := b.Approve(cmd.Actor, now); err != nil {
				return err
			}
			if err := h.reserveDates(ctx, unit, b, now); err != nil {
				return err
			}
		case domainbooking.StatusRejected:
			if err := b.Reject(cmd.Actor, now); err != nil {
				return err
			}
		case domainbooking.StatusCancelled:
			wasReserved, err := b.Cancel(cmd.Actor, now)
			if err != nil {
				return err
			}
			if wasReserved {
				if err := h.releaseDates(ctx, unit, b, now); err != nil {
					return err
				}
			}
		case domainbooking.StatusInProgress:
			if err := b.Start(cmd.Actor, now); err != nil {
				return err
			}
		case domainbooking.StatusCompleted:
			if err := b.Complete(cmd.Actor, now); err != nil {
				return err
			}
		default:
			// pending is the creation state, not a transition target
			return domainbooking.ErrInvalidTransition
		}

		if err := unit.Bookings().Save(ctx, b); err != nil {
			return err
		}
		if err := outbox.Drain(ctx, h.Outbox, h.encoder(), b); err != nil {
			return err
		}
		result = &ChangeStatusResult{BookingID: string(b.ID), Status: string(b.Status)}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

func (h *ChangeStatusHandler) reserveDates(ctx context.Context, unit uow.UnitOfWork, b *domainbooking.Booking, now time.Time) error {
	item, err := unit.Items().ByID(ctx, b.ItemID)
	if err != nil {
		return err
	}
	if err := item.Reserve(b.Range, string(b.ID), now); err != nil {
		return err
	}
	if err := unit.Items().Save(ctx, item); err != nil {
		return err
	}
	return outbox.Drain(ctx, h.Outbox, h.encoder(), item)
}

func (h *ChangeStatusHandler) releaseDates(ctx context.Context, unit uow.UnitOfWork, b *domainbooking.Booking, now time.Time) error {
	item, err := unit.Items().ByID(ctx, b.ItemID)
	if err != nil {
		return err
	}
	if err := item.Release(string(b.ID), now); err != nil {
		// A missing reservation is tolerated: the invariant it protects is
		// already satisfied.
		if errors.Is(err, domaincatalog.ErrReservationGone) {
			return nil
		}
		return err
	}
	if err := unit.Items().Save(ctx, item); err != nil {
		return err
	}
	return outbox.Drain(ctx, h.Outbox, h.encoder(), item)
}

func (h *ChangeStatusHandler) encoder() outbox.EventEncoder {
	if h.Encoder != nil {
		return h.Encoder
	}
	return outbox.JSONEventEncoder{}
}

func (h *ChangeStatusHandler) now() time.Time {
	if h.Now != nil {
		return h.Now().UTC()
	}
	return time.Now().UTC()
}

var _ commands.Handler[ChangeStatusCommand, *ChangeStatusResult] = (*ChangeStatusHandler)(nil)
