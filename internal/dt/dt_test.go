package dt

import (
	"testing"
	"time"
	_ "time/tzdata"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func mustLoc(t *testing.T, name string) *time.Location {
	t.Helper()
	loc, err := time.LoadLocation(name)
	require.NoError(t, err)
	return loc
}

func TestWindow(t *testing.T) {
	loc := mustLoc(t, "Australia/Melbourne")
	date := Date{Year: 2024, Month: time.January, Day: 15}

	start, end, err := Window(date, 7*time.Hour, loc)
	require.NoError(t, err)
	// AEDT is UTC+11 in January.
	assert.Equal(t, time.Date(2024, 1, 14, 20, 0, 0, 0, time.UTC), start)
	assert.Equal(t, time.Date(2024, 1, 15, 20, 0, 0, 0, time.UTC), end)
	assert.Equal(t, time.UTC, start.Location())
}

func TestWindowAcrossDST(t *testing.T) {
	loc := mustLoc(t, "Australia/Melbourne")
	// Clocks go back at 03:00 on 7 April 2024.
	start, end, err := Window(Date{Year: 2024, Month: time.April, Day: 6}, 7*time.Hour, loc)
	require.NoError(t, err)
	assert.Equal(t, 25*time.Hour, end.Sub(start))
}

func TestWindowRejectsMissingAndRepeatedTimes(t *testing.T) {
	loc := mustLoc(t, "Australia/Melbourne")

	// 02:30 does not exist on 6 October 2024.
	_, _, err := Window(Date{Year: 2024, Month: time.October, Day: 6}, 2*time.Hour+30*time.Minute, loc)
	assert.ErrorIs(t, err, ErrNonexistentTime)

	// 02:30 happens twice on 7 April 2024.
	_, _, err = Window(Date{Year: 2024, Month: time.April, Day: 7}, 2*time.Hour+30*time.Minute, loc)
	assert.ErrorIs(t, err, ErrAmbiguousTime)
}

func TestDateFor(t *testing.T) {
	loc := time.UTC
	dayStart := 7 * time.Hour

	assert.Equal(t, Date{2024, time.March, 9},
		DateFor(time.Date(2024, 3, 10, 6, 59, 59, 0, loc), dayStart, loc))
	assert.Equal(t, Date{2024, time.March, 10},
		DateFor(time.Date(2024, 3, 10, 7, 0, 0, 0, loc), dayStart, loc))
	assert.Equal(t, Date{2024, time.February, 29},
		DateFor(time.Date(2024, 3, 1, 0, 30, 0, 0, loc), dayStart, loc))
}

func TestParseDate(t *testing.T) {
	d, err := ParseDate("2006-01-02")
	require.NoError(t, err)
	assert.Equal(t, "2006-01-02", d.String())
	assert.Equal(t, "2006-01-03", d.AddDays(1).String())
	assert.Equal(t, "2005-12-31", d.AddDays(-2).String())

	_, err = ParseDate("02/01/2006")
	assert.Error(t, err)
}

func TestDisplayDate(t *testing.T) {
	assert.Equal(t, "Monday, 2 January, 2006", DisplayDate(Date{2006, time.January, 2}))
}

func TestFormatDuration(t *testing.T) {
	cases := []struct {
		d    time.Duration
		want string
	}{
		{5 * time.Second, "5 seconds"},
		{0, "0 seconds"},
		{3*time.Minute + 4*time.Second, "3 minutes + 4 seconds"},
		{2*time.Hour + time.Minute + 30*time.Second, "2 hours + 1 minutes"},
		{26 * time.Hour, "1 days + 2 hours"},
		{-90 * time.Second, "negative 1 minutes + 30 seconds"},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, FormatDuration(tc.d), tc.d.String())
	}
}
