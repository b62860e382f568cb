package pricing

import (
	"errors"

	"lendly/internal/domain/shared/money"
)

var (
	ErrZeroDays      = errors.New("pricing: rental must cover at least one day")
	ErrDailyRequired = errors.New("pricing: daily rate is required")
)

const (
	daysPerWeek  = 7
	daysPerMonth = 30
)

// Total derives the rental cost for a whole-day duration from tiered rates.
// Tiers are not prorated: a duration priced at the weekly tier pays for whole
// weeks, rounded up. Weekly and monthly rates are optional; a zero amount
// means the tier is not configured and the calculation falls through.
func Total(days int, daily, weekly, monthly money.Money) (money.Money, error) {
	if days < 1 {
		return money.Money{}, ErrZeroDays
	}
	if daily.Amount <= 0 {
		return money.Money{}, ErrDailyRequired
	}
	switch {
	case days <= daysPerWeek:
		return daily.Multiply(int64(days)), nil
	case days <= daysPerMonth && weekly.Amount > 0:
		return weekly.Multiply(int64(ceilDiv(days, daysPerWeek))), nil
	case monthly.Amount > 0:
		return monthly.Multiply(int64(ceilDiv(days, daysPerMonth))), nil
	default:
		return daily.Multiply(int64(days)), nil
	}
}

func ceilDiv(a, b int) int {
	return (a + b - 1) / b
}
