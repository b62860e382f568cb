package booking

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"lendly/internal/domain/catalog"
	"lendly/internal/domain/shared/daterange"
	"lendly/internal/domain/shared/events"
	"lendly/internal/domain/shared/money"
)

var (
	ErrBookingNotFound    = errors.New("booking: not found")
	ErrNotAllowed         = errors.New("booking: actor not allowed")
	ErrInvalidTransition  = errors.New("booking: invalid state transition")
	ErrNotApproved        = errors.New("booking: must be approved before payment")
	ErrAlreadyPaid        = errors.New("booking: payment has already been processed")
	ErrNotPaid            = errors.New("booking: no payment has been processed")
	ErrRefundExceedsTotal = errors.New("booking: refund exceeds total price")
	ErrUnknownStatus      = errors.New("booking: unknown status")
)

type BookingID string

// Status is the rental lifecycle state machine.
type Status string

const (
	StatusPending    Status = "pending"
	StatusApproved   Status = "approved"
	StatusRejected   Status = "rejected"
	StatusCancelled  Status = "cancelled"
	StatusInProgress Status = "in-progress"
	StatusCompleted  Status = "completed"
)

// PaymentStatus is an independent sub-state machine: refunds never feed back
// into the rental Status.
type PaymentStatus string

const (
	PaymentPending           PaymentStatus = "pending"
	PaymentPaid              PaymentStatus = "paid"
	PaymentPartiallyRefunded PaymentStatus = "partially_refunded"
	PaymentRefunded          PaymentStatus = "refunded"
	PaymentFailed            PaymentStatus = "failed"
)

func ParseStatus(raw string) (Status, error) {
	switch Status(strings.TrimSpace(raw)) {
	case StatusPending, StatusApproved, StatusRejected, StatusCancelled, StatusInProgress, StatusCompleted:
		return Status(strings.TrimSpace(raw)), nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownStatus, raw)
}

func ParsePaymentStatus(raw string) (PaymentStatus, error) {
	switch PaymentStatus(strings.TrimSpace(raw)) {
	case PaymentPending, PaymentPaid, PaymentPartiallyRefunded, PaymentRefunded, PaymentFailed:
		return PaymentStatus(strings.TrimSpace(raw)), nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownStatus, raw)
}

// Actor identifies who attempts a transition.
type Actor struct {
	ID    string
	Admin bool
}

type Booking struct {
	ID       BookingID
	ItemID   catalog.ItemID
	RenterID string
	OwnerID  string
	Range    daterange.DateRange

	// Snapshots taken at creation, never recomputed even if the item's
	// prices change later.
	TotalDays  int
	TotalPrice money.Money
	Deposit    money.Money

	Status        Status
	PaymentStatus PaymentStatus
	PaymentID     string

	Notes            string
	IssueReported    bool
	IssueDescription string

	PickedUpAt *time.Time
	ReturnedAt *time.Time

	CreatedAt time.Time
	UpdatedAt time.Time
	Version   int64
	events.EventRecorder
}

type Repository interface {
	ByID(ctx context.Context, id BookingID) (*Booking, error)
	Save(ctx context.Context, b *Booking) error
	ListByRenter(ctx context.Context, renterID string) ([]*Booking, error)
	ListByOwner(ctx context.Context, ownerID string) ([]*Booking, error)
}

type CreateParams struct {
	ID         BookingID
	ItemID     catalog.ItemID
	RenterID   string
	OwnerID    string
	Range      daterange.DateRange
	TotalDays  int
	TotalPrice money.Money
	Deposit    money.Money
	Notes      string
	CreatedAt  time.Time
}

func NewBooking(params CreateParams) (*Booking, error) {
	if params.RenterID == "" {
		return nil, errors.New("booking: renter id required")
	}
	if params.OwnerID == "" {
		return nil, errors.New("booking: owner id required")
	}
	if params.TotalDays < 1 {
		return nil, errors.New("booking: total days must be at least 1")
	}
	now := params.CreatedAt.UTC()
	b := &Booking{
		ID:            params.ID,
		ItemID:        params.ItemID,
		RenterID:      params.RenterID,
		OwnerID:       params.OwnerID,
		Range:         params.Range,
		TotalDays:     params.TotalDays,
		TotalPrice:    params.TotalPrice,
		Deposit:       params.Deposit,
		Status:        StatusPending,
		PaymentStatus: PaymentPending,
		Notes:         params.Notes,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	b.Record(BookingRequested{BookingID: b.ID, ItemID: b.ItemID, RenterID: b.RenterID, OwnerID: b.OwnerID, Range: b.Range, TotalPrice: b.TotalPrice, At: now})
	return b, nil
}

func (b *Booking) IsRenter(actor Actor) bool { return actor.ID == b.RenterID }
func (b *Booking) IsOwner(actor Actor) bool  { return actor.ID == b.OwnerID }

func (b *Booking) IsParticipant(actor Actor) bool {
	return b.IsRenter(actor) || b.IsOwner(actor) || actor.Admin
}

func (b *Booking) canManage(actor Actor) bool {
	return b.IsOwner(actor) || actor.Admin
}

// Reserved reports whether the booking currently holds the item's dates.
func (b *Booking) Reserved() bool {
	return b.Status == StatusApproved || b.Status == StatusInProgress
}

func (b *Booking) Approve(actor Actor, now time.Time) error {
	if !b.canManage(actor) {
		return ErrNotAllowed
	}
	if b.Status != StatusPending {
		return ErrInvalidTransition
	}
	b.Status = StatusApproved
	b.UpdatedAt = now.UTC()
	b.Record(BookingApproved{BookingID: b.ID, ItemID: b.ItemID, RenterID: b.RenterID, OwnerID: b.OwnerID, Range: b.Range, At: b.UpdatedAt})
	return nil
}

func (b *Booking) Reject(actor Actor, now time.Time) error {
	if !b.canManage(actor) {
		return ErrNotAllowed
	}
	if b.Status != StatusPending {
		return ErrInvalidTransition
	}
	b.Status = StatusRejected
	b.UpdatedAt = now.UTC()
	b.Record(BookingRejected{BookingID: b.ID, ItemID: b.ItemID, RenterID: b.RenterID, OwnerID: b.OwnerID, At: b.UpdatedAt})
	return nil
}

// Cancel reports whether the booking held a reservation so the caller can
// release the item's dates in the same unit of work.
func (b *Booking) Cancel(actor Actor, now time.Time) (wasReserved bool, err error) {
	if !b.canManage(actor) {
		return false, ErrNotAllowed
	}
	switch b.Status {
	case StatusPending, StatusApproved, StatusInProgress:
	default:
		return false, ErrInvalidTransition
	}
	wasReserved = b.Reserved()
	b.Status = StatusCancelled
	b.UpdatedAt = now.UTC()
	b.Record(BookingCancelled{BookingID: b.ID, ItemID: b.ItemID, RenterID: b.RenterID, OwnerID: b.OwnerID, At: b.UpdatedAt})
	return wasReserved, nil
}

// Start moves an approved, paid booking into the rental period. The renter
// triggers it after payment settles; it is not a freestanding owner action.
func (b *Booking) Start(actor Actor, now time.Time) error {
	if !b.IsRenter(actor) && !actor.Admin {
		return ErrNotAllowed
	}
	if b.Status != StatusApproved || b.PaymentStatus != PaymentPaid {
		return ErrInvalidTransition
	}
	b.Status = StatusInProgress
	ts := now.UTC()
	b.PickedUpAt = &ts
	b.UpdatedAt = ts
	return nil
}

func (b *Booking) Complete(actor Actor, now time.Time) error {
	if !b.canManage(actor) {
		return ErrNotAllowed
	}
	switch b.Status {
	case StatusApproved, StatusInProgress:
	default:
		return ErrInvalidTransition
	}
	b.Status = StatusCompleted
	ts := now.UTC()
	b.ReturnedAt = &ts
	b.UpdatedAt = ts
	b.Record(BookingCompleted{BookingID: b.ID, ItemID: b.ItemID, RenterID: b.RenterID, OwnerID: b.OwnerID, At: b.UpdatedAt})
	return nil
}

// MarkPaid records a settled charge and advances the rental into progress.
// Callers are responsible for verifying the actor is the renter.
func (b *Booking) MarkPaid(paymentID string, now time.Time) error {
	if b.Status != StatusApproved {
		return ErrNotApproved
	}
	if b.PaymentStatus == PaymentPaid {
		return ErrAlreadyPaid
	}
	b.PaymentStatus = PaymentPaid
	b.PaymentID = paymentID
	b.Status = StatusInProgress
	ts := now.UTC()
	b.PickedUpAt = &ts
	b.UpdatedAt = ts
	b.Record(PaymentReceived{BookingID: b.ID, ItemID: b.ItemID, RenterID: b.RenterID, OwnerID: b.OwnerID, PaymentID: paymentID, Amount: b.TotalPrice, At: b.UpdatedAt})
	return nil
}

// RecordRefund applies a refund against a paid booking. A refund of the full
// total marks the payment refunded, anything smaller partially refunded. The
// rental Status is deliberately left untouched: a completed rental can still
// be refunded for damage.
func (b *Booking) RecordRefund(amount money.Money, now time.Time) (money.Money, error) {
	if b.PaymentStatus != PaymentPaid {
		return money.Money{}, ErrNotPaid
	}
	if amount.IsZero() {
		amount = b.TotalPrice
	}
	if amount.Amount > b.TotalPrice.Amount {
		return money.Money{}, ErrRefundExceedsTotal
	}
	if amount.Amount == b.TotalPrice.Amount {
		b.PaymentStatus = PaymentRefunded
	} else {
		b.PaymentStatus = PaymentPartiallyRefunded
	}
	b.UpdatedAt = now.UTC()
	b.Record(RefundRecorded{BookingID: b.ID, ItemID: b.ItemID, RenterID: b.RenterID, OwnerID: b.OwnerID, Amount: amount, At: b.UpdatedAt})
	return amount, nil
}

// UpdatePayment lets the renter reconcile payment state reported by the
// client. Marking a booking paid outside an approved or later rental state is
// rejected to keep the two machines in a valid combination.
func (b *Booking) UpdatePayment(actor Actor, status PaymentStatus, paymentID string, now time.Time) error {
	if !b.IsRenter(actor) {
		return ErrNotAllowed
	}
	if status == PaymentPaid {
		switch b.Status {
		case StatusApproved, StatusInProgress, StatusCompleted:
		default:
			return ErrInvalidTransition
		}
	}
	b.PaymentStatus = status
	if paymentID != "" {
		b.PaymentID = paymentID
	}
	b.UpdatedAt = now.UTC()
	return nil
}

// ReportIssue flags the booking without transitioning status. Either party
// may raise an issue at any point in the lifecycle.
func (b *Booking) ReportIssue(actor Actor, description string, now time.Time) error {
	if !b.IsRenter(actor) && !b.IsOwner(actor) {
		return ErrNotAllowed
	}
	b.IssueReported = true
	b.IssueDescription = description
	b.UpdatedAt = now.UTC()
	counterparty := b.OwnerID
	if b.IsOwner(actor) {
		counterparty = b.RenterID
	}
	b.Record(IssueReported{BookingID: b.ID, ItemID: b.ItemID, ReportedBy: actor.ID, Counterparty: counterparty, Description: description, At: b.UpdatedAt})
	return nil
}
