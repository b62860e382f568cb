package pricing

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"lendly/internal/domain/shared/money"
)

func TestTotalTiers(t *testing.T) {
	daily := money.Must(10, "USD")
	weekly := money.Must(50, "USD")
	monthly := money.Must(200, "USD")

	tests := []struct {
		name    string
		days    int
		daily   money.Money
		weekly  money.Money
		monthly money.Money
		want    int64
	}{
		{"single day", 1, daily, weekly, monthly, 10},
		{"exactly one week uses daily", 7, daily, weekly, monthly, 70},
		{"five days with weekly configured stays daily", 5, daily, weekly, monthly, 50},
		{"eight days pays two weeks", 8, daily, weekly, monthly, 100},
		{"ten days pays two weeks", 10, daily, weekly, monthly, 100},
		{"fourteen days pays two weeks", 14, daily, weekly, monthly, 100},
		{"thirty days pays five weeks", 30, daily, weekly, monthly, 250},
		{"forty days pays two months", 40, daily, weekly, monthly, 400},
		{"sixty days pays two months", 60, daily, weekly, monthly, 400},
		{"weekly unset falls through to monthly", 10, daily, money.Money{}, monthly, 200},
		{"no tiers set stays daily", 40, daily, money.Money{}, money.Money{}, 400},
		{"monthly unset long stay uses weekly band only up to thirty", 31, daily, weekly, money.Money{}, 310},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got, err := Total(tc.days, tc.daily, tc.weekly, tc.monthly)
			require.NoError(t, err)
			assert.Equal(t, tc.want, got.Amount)
			assert.Equal(t, "USD", got.Currency)
		})
	}
}

func TestTotalValidation(t *testing.T) {
	daily := money.Must(10, "USD")

	_, err := Total(0, daily, money.Money{}, money.Money{})
	assert.ErrorIs(t, err, ErrZeroDays)

	_, err = Total(-3, daily, money.Money{}, money.Money{})
	assert.ErrorIs(t, err, ErrZeroDays)

	_, err = Total(3, money.Money{}, money.Money{}, money.Money{})
	assert.ErrorIs(t, err, ErrDailyRequired)
}
