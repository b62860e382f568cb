package dto

import (
	"time"

	domaincatalog "lendly/internal/domain/catalog"
	"lendly/internal/domain/shared/money"
)

type BookedRangeView struct {
	StartDate time.Time `json:"start_date"`
	EndDate   time.Time `json:"end_date"`
	BookingID string    `json:"booking_id"`
}

type ItemView struct {
	ID            string            `json:"id"`
	Owner         string            `json:"owner"`
	Title         string            `json:"title"`
	Description   string            `json:"description,omitempty"`
	Category      string            `json:"category,omitempty"`
	PricePerDay   money.Money       `json:"price_per_day"`
	PricePerWeek  *money.Money      `json:"price_per_week,omitempty"`
	PricePerMonth *money.Money      `json:"price_per_month,omitempty"`
	Deposit       money.Money       `json:"deposit"`
	IsAvailable   bool              `json:"is_available"`
	BookedDates   []BookedRangeView `json:"booked_dates"`
	Tags          []string          `json:"tags,omitempty"`
	CreatedAt     time.Time         `json:"created_at"`
}

func MapItem(item *domaincatalog.Item) ItemView {
	view := ItemView{
		ID:          string(item.ID),
		Owner:       item.Owner,
		Title:       item.Title,
		Description: item.Description,
		Category:    item.Category,
		PricePerDay: item.PricePerDay,
		Deposit:     item.Deposit,
		IsAvailable: item.IsAvailable,
		Tags:        item.Tags,
		CreatedAt:   item.CreatedAt,
		BookedDates: make([]BookedRangeView, 0, len(item.BookedDates)),
	}
	if !item.PricePerWeek.IsZero() {
		weekly := item.PricePerWeek
		view.PricePerWeek = &weekly
	}
	if !item.PricePerMonth.IsZero() {
		monthly := item.PricePerMonth
		view.PricePerMonth = &monthly
	}
	for _, booked := range item.BookedDates {
		view.BookedDates = append(view.BookedDates, BookedRangeView{
			StartDate: booked.Range.Start,
			EndDate:   booked.Range.End,
			BookingID: booked.BookingID,
		})
	}
	return view
}

type ItemCollection struct {
	Items []ItemView `json:"items"`
}

func MapItems(items []*domaincatalog.Item) ItemCollection {
	out := ItemCollection{Items: make([]ItemView, 0, len(items))}
	for _, item := range items {
		out.Items = append(out.Items, MapItem(item))
	}
	return out
}
