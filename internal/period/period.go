package period

import (
	"fmt"
	"strings"
	"time"
)

// Mode selects how wide a reporting period is around its base date.
type Mode string

const (
	Day   Mode = "day"
	Month Mode = "month"
	Year  Mode = "year"
	All   Mode = "all"
)

// Layout is the wire and storage format for dates.
const Layout = "2006-01-02"

var modes = []Mode{Day, Month, Year, All}

// ParseMode maps free text onto a Mode. Unknown values fall back to Day.
func ParseMode(s string) Mode {
	switch Mode(strings.ToLower(strings.TrimSpace(s))) {
	case Month:
		return Month
	case Year:
		return Year
	case All:
		return All
	default:
		return Day
	}
}

// Next cycles day -> month -> year -> all -> day.
func (m Mode) Next() Mode {
	for i, v := range modes {
		if v == m {
			return modes[(i+1)%len(modes)]
		}
	}
	return Day
}

func (m Mode) String() string { return string(m) }

// Range returns the inclusive first and last dates of the period containing base.
func Range(m Mode, base time.Time) (from, to time.Time) {
	base = dateOnly(base)
	switch m {
	case Month:
		from = time.Date(base.Year(), base.Month(), 1, 0, 0, 0, 0, time.UTC)
		to = from.AddDate(0, 1, -1)
	case Year:
		from = time.Date(base.Year(), 1, 1, 0, 0, 0, 0, time.UTC)
		to = time.Date(base.Year(), 12, 31, 0, 0, 0, 0, time.UTC)
	case All:
		from = time.Date(1, 1, 1, 0, 0, 0, 0, time.UTC)
		to = time.Date(9999, 12, 31, 0, 0, 0, 0, time.UTC)
	default:
		from, to = base, base
	}
	return from, to
}

// Step moves base by n periods. Month and year steps clamp the day so that
// Jan 31 + 1 month lands on the last day of February.
func Step(m Mode, base time.Time, n int) time.Time {
	base = dateOnly(base)
	switch m {
	case Month:
		return addMonthsClamped(base, n)
	case Year:
		return addMonthsClamped(base, 12*n)
	case All:
		return base
	default:
		return base.AddDate(0, 0, n)
	}
}

// ParseDate parses YYYY-MM-DD. An empty or invalid value yields fallback.
func ParseDate(s string, fallback time.Time) time.Time {
	t, err := time.Parse(Layout, strings.TrimSpace(s))
	if err != nil {
		return dateOnly(fallback)
	}
	return t
}

// Format renders a date in the wire layout.
func Format(t time.Time) string { return t.Format(Layout) }

// Label is a short human description of the period, e.g. "2026-03-01 ~ 2026-03-31".
func Label(m Mode, base time.Time) string {
	from, to := Range(m, base)
	if m == All {
		return "all time"
	}
	if from.Equal(to) {
		return Format(from)
	}
	return fmt.Sprintf("%s ~ %s", Format(from), Format(to))
}

func addMonthsClamped(t time.Time, n int) time.Time {
	y, mo := t.Year(), int(t.Month())-1+n
	y += mo / 12
	mo %= 12
	if mo < 0 {
		mo += 12
		y--
	}
	last := time.Date(y, time.Month(mo+1)+1, 0, 0, 0, 0, 0, time.UTC).Day()
	d := t.Day()
	if d > last {
		d = last
	}
	return time.Date(y, time.Month(mo+1), d, 0, 0, 0, 0, time.UTC)
}

func dateOnly(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}
