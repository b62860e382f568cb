package dto

import (
	"time"

	domainbooking "lendly/internal/domain/booking"
	domaincatalog "lendly/internal/domain/catalog"
	"lendly/internal/domain/shared/money"
)

// PaymentDetails is the payment summary shown to booking participants.
type PaymentDetails struct {
	Booking PaymentBookingInfo `json:"booking"`
	Item    PaymentItemInfo    `json:"item"`
	Rental  PaymentRentalInfo  `json:"rental"`
	Costs   PaymentCosts       `json:"costs"`
}

type PaymentBookingInfo struct {
	ID            string `json:"id"`
	Status        string `json:"status"`
	PaymentStatus string `json:"payment_status"`
	PaymentID     string `json:"payment_id,omitempty"`
}

type PaymentItemInfo struct {
	ID    string `json:"id"`
	Title string `json:"title"`
}

type PaymentRentalInfo struct {
	StartDate time.Time `json:"start_date"`
	EndDate   time.Time `json:"end_date"`
	TotalDays int       `json:"total_days"`
}

type PaymentCosts struct {
	RentalFee money.Money `json:"rental_fee"`
	Deposit   money.Money `json:"deposit"`
	Total     money.Money `json:"total"`
}

func MapPaymentDetails(b *domainbooking.Booking, item *domaincatalog.Item) PaymentDetails {
	total := money.Money{Amount: b.TotalPrice.Amount + b.Deposit.Amount, Currency: b.TotalPrice.Currency}
	details := PaymentDetails{
		Booking: PaymentBookingInfo{
			ID:            string(b.ID),
			Status:        string(b.Status),
			PaymentStatus: string(b.PaymentStatus),
			PaymentID:     b.PaymentID,
		},
		Rental: PaymentRentalInfo{
			StartDate: b.Range.Start,
			EndDate:   b.Range.End,
			TotalDays: b.TotalDays,
		},
		Costs: PaymentCosts{RentalFee: b.TotalPrice, Deposit: b.Deposit, Total: total},
	}
	if item != nil {
		details.Item = PaymentItemInfo{ID: string(item.ID), Title: item.Title}
	}
	return details
}
