package dto

import (
	"time"

	domainbooking "lendly/internal/domain/booking"
	"lendly/internal/domain/shared/money"
)

type BookingView struct {
	ID               string      `json:"id"`
	ItemID           string      `json:"item_id"`
	RenterID         string      `json:"renter_id"`
	OwnerID          string      `json:"owner_id"`
	StartDate        time.Time   `json:"start_date"`
	EndDate          time.Time   `json:"end_date"`
	TotalDays        int         `json:"total_days"`
	TotalPrice       money.Money `json:"total_price"`
	Deposit          money.Money `json:"deposit"`
	Status           string      `json:"status"`
	PaymentStatus    string      `json:"payment_status"`
	PaymentID        string      `json:"payment_id,omitempty"`
	Notes            string      `json:"notes,omitempty"`
	IssueReported    bool        `json:"issue_reported"`
	IssueDescription string      `json:"issue_description,omitempty"`
	CreatedAt        time.Time   `json:"created_at"`
	UpdatedAt        time.Time   `json:"updated_at"`
}

func MapBooking(b *domainbooking.Booking) BookingView {
	return BookingView{
		ID:               string(b.ID),
		ItemID:           string(b.ItemID),
		RenterID:         b.RenterID,
		OwnerID:          b.OwnerID,
		StartDate:        b.Range.Start,
		EndDate:          b.Range.End,
		TotalDays:        b.TotalDays,
		TotalPrice:       b.TotalPrice,
		Deposit:          b.Deposit,
		Status:           string(b.Status),
		PaymentStatus:    string(b.PaymentStatus),
		PaymentID:        b.PaymentID,
		Notes:            b.Notes,
		IssueReported:    b.IssueReported,
		IssueDescription: b.IssueDescription,
		CreatedAt:        b.CreatedAt,
		UpdatedAt:        b.UpdatedAt,
	}
}

type BookingCollection struct {
	Items []BookingView `json:"items"`
}

func MapBookings(bs []*domainbooking.Booking) BookingCollection {
	out := BookingCollection{Items: make([]BookingView, 0, len(bs))}
	for _, b := range bs {
		out.Items = append(out.Items, MapBooking(b))
	}
	return out
}
