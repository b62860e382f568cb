package booking

import (
	"errors"
	"time"

	"lendly/internal/domain/shared/daterange"
)

var ErrStartInPast = errors.New("booking: start date is in the past")

// ValidateDateRange rejects ranges beginning before today (date granularity).
func ValidateDateRange(dr daterange.DateRange, now time.Time) error {
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
	start := time.Date(dr.Start.Year(), dr.Start.Month(), dr.Start.Day(), 0, 0, 0, 0, time.UTC)
	if start.Before(today) {
		return ErrStartInPast
	}
	return nil
}
