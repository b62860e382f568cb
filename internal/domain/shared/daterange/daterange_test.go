package daterange

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func day(d int) time.Time {
	return time.Date(2026, time.September, d, 0, 0, 0, 0, time.UTC)
}

func TestNewRejectsInvalidRanges(t *testing.T) {
	_, err := New(day(10), day(10))
	assert.ErrorIs(t, err, ErrInvalidRange)

	_, err = New(day(10), day(9))
	assert.ErrorIs(t, err, ErrInvalidRange)

	_, err = New(time.Time{}, day(9))
	assert.ErrorIs(t, err, ErrInvalidRange)
}

func TestDaysRoundsPartialDaysUp(t *testing.T) {
	dr, err := New(day(1), day(4))
	require.NoError(t, err)
	assert.Equal(t, 3, dr.Days())

	dr, err = New(day(1), day(4).Add(6*time.Hour))
	require.NoError(t, err)
	assert.Equal(t, 4, dr.Days())
}

func TestOverlaps(t *testing.T) {
	base, err := New(day(10), day(15))
	require.NoError(t, err)

	tests := []struct {
		name     string
		start    time.Time
		end      time.Time
		overlaps bool
	}{
		{"identical", day(10), day(15), true},
		{"contained", day(11), day(13), true},
		{"covers", day(8), day(20), true},
		{"front overlap", day(8), day(11), true},
		{"tail overlap", day(14), day(20), true},
		{"touching end", day(15), day(18), false},
		{"touching start", day(5), day(10), false},
		{"disjoint before", day(1), day(5), false},
		{"disjoint after", day(20), day(25), false},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			other, err := New(tc.start, tc.end)
			require.NoError(t, err)
			assert.Equal(t, tc.overlaps, base.Overlaps(other))
			assert.Equal(t, tc.overlaps, other.Overlaps(base))
		})
	}
}

func TestContainsDate(t *testing.T) {
	dr, err := New(day(10), day(15))
	require.NoError(t, err)
	assert.True(t, dr.ContainsDate(day(10)))
	assert.True(t, dr.ContainsDate(day(14)))
	assert.False(t, dr.ContainsDate(day(15)))
	assert.False(t, dr.ContainsDate(day(9)))
}
