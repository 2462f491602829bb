// Package dt holds the calendar rules for the timeline: which local day an
// event belongs to and how dates and durations are shown.
package dt

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"
)

var (
	ErrNonexistentTime = errors.New("local time does not exist")
	ErrAmbiguousTime   = errors.New("local time is ambiguous")
)

// Date is a calendar day without a zone.
type Date struct {
	Year  int
	Month time.Month
	Day   int
}

const dateLayout = "2006-01-02"

func ParseDate(s string) (Date, error) {
	t, err := time.Parse(dateLayout, s)
	if err != nil {
		return Date{}, fmt.Errorf("invalid date %q: %w", s, err)
	}
	return DateOf(t), nil
}

func DateOf(t time.Time) Date {
	y, m, d := t.Date()
	return Date{Year: y, Month: m, Day: d}
}

func (d Date) String() string {
	return d.midnight().Format(dateLayout)
}

func (d Date) AddDays(n int) Date {
	return DateOf(d.midnight().AddDate(0, 0, n))
}

func (d Date) Weekday() time.Weekday {
	return d.midnight().Weekday()
}

func (d Date) midnight() time.Time {
	return time.Date(d.Year, d.Month, d.Day, 0, 0, 0, 0, time.UTC)
}

func (d Date) MarshalText() ([]byte, error) {
	return []byte(d.String()), nil
}

func (d *Date) UnmarshalText(b []byte) error {
	parsed, err := ParseDate(string(b))
	if err != nil {
		return err
	}
	*d = parsed
	return nil
}

// At returns the instant of the given wall clock offset on d in loc. Times
// skipped or repeated by a DST transition are errors.
func (d Date) At(offset time.Duration, loc *time.Location) (time.Time, error) {
	h := int(offset / time.Hour)
	m := int((offset % time.Hour) / time.Minute)
	t := time.Date(d.Year, d.Month, d.Day, h, m, 0, 0, loc)
	if t.Hour() != h || t.Minute() != m || DateOf(t) != d {
		return time.Time{}, fmt.Errorf("%w: %s %02d:%02d in %s", ErrNonexistentTime, d, h, m, loc)
	}
	for _, shift := range []time.Duration{30 * time.Minute, time.Hour, 2 * time.Hour} {
		for _, other := range []time.Time{t.Add(shift), t.Add(-shift)} {
			o := other.In(loc)
			if o.Hour() == h && o.Minute() == m && DateOf(o) == d {
				return time.Time{}, fmt.Errorf("%w: %s %02d:%02d in %s", ErrAmbiguousTime, d, h, m, loc)
			}
		}
	}
	return t, nil
}

// Window returns the UTC interval [date dayStart, date+1 dayStart) in loc.
func Window(date Date, dayStart time.Duration, loc *time.Location) (start, end time.Time, err error) {
	start, err = date.At(dayStart, loc)
	if err != nil {
		return time.Time{}, time.Time{}, err
	}
	end, err = date.AddDays(1).At(dayStart, loc)
	if err != nil {
		return time.Time{}, time.Time{}, err
	}
	return start.UTC(), end.UTC(), nil
}

// DateFor returns the logbook day t belongs to. Anything before dayStart
// counts towards the previous day.
func DateFor(t time.Time, dayStart time.Duration, loc *time.Location) Date {
	local := t.In(loc)
	sinceMidnight := time.Duration(local.Hour())*time.Hour +
		time.Duration(local.Minute())*time.Minute +
		time.Duration(local.Second())*time.Second +
		time.Duration(local.Nanosecond())
	d := DateOf(local)
	if sinceMidnight < dayStart {
		d = d.AddDays(-1)
	}
	return d
}

// DisplayDate renders d as "Monday, 2 January, 2006".
func DisplayDate(d Date) string {
	return d.midnight().Format("Monday, 2 January, 2006")
}

// FormatDuration renders d in words using its two largest units.
func FormatDuration(d time.Duration) string {
	if d < 0 {
		return "negative " + FormatDuration(-d)
	}
	secs := int64(d / time.Second)
	minutes := secs / 60
	hours := minutes / 60
	days := hours / 24

	parts := func(a int64, aUnit string, b int64, bUnit string) string {
		var sb strings.Builder
		sb.WriteString(strconv.FormatInt(a, 10))
		sb.WriteString(" " + aUnit + " + ")
		sb.WriteString(strconv.FormatInt(b, 10))
		sb.WriteString(" " + bUnit)
		return sb.String()
	}

	switch {
	case days > 0:
		return parts(days, "days", hours%24, "hours")
	case hours > 0:
		return parts(hours, "hours", minutes%60, "minutes")
	case minutes > 0:
		return parts(minutes, "minutes", secs%60, "seconds")
	default:
		return strconv.FormatInt(secs, 10) + " seconds"
	}
}
