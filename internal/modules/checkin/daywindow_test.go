package checkin

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDayKey(t *testing.T) {
	ny, err := time.LoadLocation("America/New_York")
	require.NoError(t, err)
	tokyo, err := time.LoadLocation("Asia/Tokyo")
	require.NoError(t, err)

	tests := []struct {
		name string
		t    time.Time
		loc  *time.Location
		want string
	}{
		{
			"plain afternoon",
			time.Date(2026, 3, 14, 15, 30, 0, 0, time.UTC),
			time.UTC,
			"2026-03-14",
		},
		{
			"one second before midnight",
			time.Date(2026, 3, 14, 23, 59, 59, 0, time.UTC),
			time.UTC,
			"2026-03-14",
		},
		{
			"exactly midnight starts the next day",
			time.Date(2026, 3, 15, 0, 0, 0, 0, time.UTC),
			time.UTC,
			"2026-03-15",
		},
		{
			"utc evening is already tomorrow in tokyo",
			time.Date(2026, 3, 14, 16, 0, 0, 0, time.UTC),
			tokyo,
			"2026-03-15",
		},
		{
			"utc early morning is still yesterday in new york",
			time.Date(2026, 3, 14, 3, 0, 0, 0, time.UTC),
			ny,
			"2026-03-13",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, DayKey(tt.t, tt.loc))
		})
	}
}

func TestDayKeySameWindow(t *testing.T) {
	loc := time.UTC
	early := time.Date(2026, 3, 14, 0, 0, 1, 0, loc)
	late := time.Date(2026, 3, 14, 23, 59, 59, 0, loc)

	assert.Equal(t, DayKey(early, loc), DayKey(late, loc))
	assert.NotEqual(t, DayKey(late, loc), DayKey(late.Add(time.Second), loc))
}

func TestDayBounds(t *testing.T) {
	loc, err := time.LoadLocation("America/New_York")
	require.NoError(t, err)

	instant := time.Date(2026, 3, 14, 18, 45, 0, 0, loc)
	start, end := DayBounds(instant, loc)

	assert.Equal(t, time.Date(2026, 3, 14, 0, 0, 0, 0, loc), start)
	assert.Equal(t, time.Date(2026, 3, 15, 0, 0, 0, 0, loc), end)
	assert.Equal(t, 24*time.Hour, end.Sub(start))

	assert.False(t, instant.Before(start))
	assert.True(t, instant.Before(end))
}

func TestDayBoundsDSTTransition(t *testing.T) {
	ny, err := time.LoadLocation("America/New_York")
	require.NoError(t, err)

	// Spring-forward day is only 23 hours long; the window must still
	// span midnight to midnight.
	instant := time.Date(2026, 3, 8, 12, 0, 0, 0, ny)
	start, end := DayBounds(instant, ny)

	assert.Equal(t, "2026-03-08", start.Format("2006-01-02"))
	assert.Equal(t, "2026-03-09", end.Format("2006-01-02"))
	assert.Equal(t, 23*time.Hour, end.Sub(start))
}
