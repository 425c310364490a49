package model

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWeekdayIndex(t *testing.T) {
	// The business week runs Monday through Sunday.
	idx, ok := Mon.Index()
	require.True(t, ok)
	assert.Equal(t, 0, idx)

	idx, ok = Sun.Index()
	require.True(t, ok)
	assert.Equal(t, 6, idx)

	_, ok = Weekday("Xyz").Index()
	assert.False(t, ok)
}

func TestParseWeekday(t *testing.T) {
	for _, label := range Weekdays {
		got, err := ParseWeekday(string(label))
		require.NoError(t, err, label)
		assert.Equal(t, label, got)
	}

	// Labels are exact: no lowercase, no full names.
	for _, bad := range []string{"mon", "MONDAY", "Funday", ""} {
		_, err := ParseWeekday(bad)
		assert.Error(t, err, bad)
	}
}

func TestWeekdayOf(t *testing.T) {
	// 2026-08-31 is a Monday, 2026-09-06 a Sunday.
	mon := time.Date(2026, 8, 31, 12, 0, 0, 0, time.UTC)
	assert.Equal(t, Mon, WeekdayOf(mon))
	assert.Equal(t, Sun, WeekdayOf(mon.AddDate(0, 0, 6)))
}

func TestEventRemaining(t *testing.T) {
	ev := Event{TotalSeats: 50, Sold: 12}
	assert.Equal(t, 38, ev.Remaining())

	ev.Sold = 50
	assert.Equal(t, 0, ev.Remaining())
}

func TestFormatOrderNumber(t *testing.T) {
	assert.Equal(t, "0001", FormatOrderNumber(1))
	assert.Equal(t, "0042", FormatOrderNumber(42))
	assert.Equal(t, "9999", FormatOrderNumber(9999))
	// Beyond four digits the number simply grows; it never wraps or reuses.
	assert.Equal(t, "10543", FormatOrderNumber(10543))
}
