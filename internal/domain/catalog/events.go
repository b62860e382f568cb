package catalog

import (
	"time"

	"lendly/internal/domain/shared/daterange"
)

type DatesReserved struct {
	ItemID    ItemID
	BookingID string
	Range     daterange.DateRange
	At        time.Time
}

func (e DatesReserved) EventName() string     { return "catalog.dates_reserved" }
func (e DatesReserved) AggregateID() string   { return string(e.ItemID) }
func (e DatesReserved) OccurredAt() time.Time { return e.At }

type DatesReleased struct {
	ItemID    ItemID
	BookingID string
	Range     daterange.DateRange
	At        time.Time
}

func (e DatesReleased) EventName() string     { return "catalog.dates_released" }
func (e DatesReleased) AggregateID() string   { return string(e.ItemID) }
func (e DatesReleased) OccurredAt() time.Time { return e.At }
