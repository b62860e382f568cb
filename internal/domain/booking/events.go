package booking

import (
	"time"

	"lendly/internal/domain/catalog"
	"lendly/internal/domain/shared/daterange"
	"lendly/internal/domain/shared/money"
)

type BookingRequested struct {
	BookingID  BookingID
	ItemID     catalog.ItemID
	RenterID   string
	OwnerID    string
	Range      daterange.DateRange
	TotalPrice money.Money
	At         time.Time
}

func (e BookingRequested) EventName() string     { return "booking.requested" }
func (e BookingRequested) AggregateID() string   { return string(e.BookingID) }
func (e BookingRequested) OccurredAt() time.Time { return e.At }

type BookingApproved struct {
	BookingID BookingID
	ItemID    catalog.ItemID
	RenterID  string
	OwnerID   string
	Range     daterange.DateRange
	At        time.Time
}

func (e BookingApproved) EventName() string     { return "booking.approved" }
func (e BookingApproved) AggregateID() string   { return string(e.BookingID) }
func (e BookingApproved) OccurredAt() time.Time { return e.At }

type BookingRejected struct {
	BookingID BookingID
	ItemID    catalog.ItemID
	RenterID  string
	OwnerID   string
	At        time.Time
}

func (e BookingRejected) EventName() string     { return "booking.rejected" }
func (e BookingRejected) AggregateID() string   { return string(e.BookingID) }
func (e BookingRejected) OccurredAt() time.Time { return e.At }

type BookingCancelled struct {
	BookingID BookingID
	ItemID    catalog.ItemID
	RenterID  string
	OwnerID   string
	At        time.Time
}

func (e BookingCancelled) EventName() string     { return "booking.cancelled" }
func (e BookingCancelled) AggregateID() string   { return string(e.BookingID) }
func (e BookingCancelled) OccurredAt() time.Time { return e.At }

type BookingCompleted struct {
	BookingID BookingID
	ItemID    catalog.ItemID
	RenterID  string
	OwnerID   string
	At        time.Time
}

func (e BookingCompleted) EventName() string     { return "booking.completed" }
func (e BookingCompleted) AggregateID() string   { return string(e.BookingID) }
func (e BookingCompleted) OccurredAt() time.Time { return e.At }

type PaymentReceived struct {
	BookingID BookingID
	ItemID    catalog.ItemID
	RenterID  string
	OwnerID   string
	PaymentID string
	Amount    money.Money
	At        time.Time
}

func (e PaymentReceived) EventName() string     { return "booking.payment_received" }
func (e PaymentReceived) AggregateID() string   { return string(e.BookingID) }
func (e PaymentReceived) OccurredAt() time.Time { return e.At }

// RefundRecorded is the refund event; the name avoids colliding with the
// PaymentRefunded payment status.
type RefundRecorded struct {
	BookingID BookingID
	ItemID    catalog.ItemID
	RenterID  string
	OwnerID   string
	Amount    money.Money
	At        time.Time
}

func (e RefundRecorded) EventName() string     { return "booking.payment_refunded" }
func (e RefundRecorded) AggregateID() string   { return string(e.BookingID) }
func (e RefundRecorded) OccurredAt() time.Time { return e.At }

type IssueReported struct {
	BookingID    BookingID
	ItemID       catalog.ItemID
	ReportedBy   string
	Counterparty string
	Description  string
	At           time.Time
}

func (e IssueReported) EventName() string     { return "booking.issue_reported" }
func (e IssueReported) AggregateID() string   { return string(e.BookingID) }
func (e IssueReported) OccurredAt() time.Time { return e.At }
