package period

import (
	"testing"
	"time"
)

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func TestRange(t *testing.T) {
	base := date(2026, time.February, 14)
	cases := []struct {
		mode     Mode
		from, to string
	}{
		{Day, "2026-02-14", "2026-02-14"},
		{Month, "2026-02-01", "2026-02-28"},
		{Year, "2026-01-01", "2026-12-31"},
		{All, "0001-01-01", "9999-12-31"},
	}
	for _, tc := range cases {
		from, to := Range(tc.mode, base)
		if Format(from) != tc.from || Format(to) != tc.to {
			t.Errorf("Range(%s) = %s..%s, want %s..%s", tc.mode, Format(from), Format(to), tc.from, tc.to)
		}
	}
}

func TestStepClampsMonthEnd(t *testing.T) {
	got := Step(Month, date(2026, time.January, 31), 1)
	if Format(got) != "2026-02-28" {
		t.Fatalf("Step(month, Jan 31, +1) = %s, want 2026-02-28", Format(got))
	}
	got = Step(Month, date(2026, time.January, 15), -1)
	if Format(got) != "2025-12-15" {
		t.Fatalf("Step(month, Jan 15, -1) = %s, want 2025-12-15", Format(got))
	}
	got = Step(Year, date(2024, time.February, 29), 1)
	if Format(got) != "2025-02-28" {
		t.Fatalf("Step(year, 2024-02-29, +1) = %s, want 2025-02-28", Format(got))
	}
	got = Step(Day, date(2026, time.March, 1), -1)
	if Format(got) != "2026-02-28" {
		t.Fatalf("Step(day) = %s", Format(got))
	}
}

func TestParseModeAndNext(t *testing.T) {
	if ParseMode(" MONTH ") != Month {
		t.Fatal("ParseMode should be case-insensitive")
	}
	if ParseMode("weekly") != Day {
		t.Fatal("unknown mode should fall back to day")
	}
	if All.Next() != Day || Day.Next() != Month {
		t.Fatal("Next should cycle through all modes")
	}
}

func TestParseDateFallback(t *testing.T) {
	fb := date(2026, time.May, 5)
	if got := ParseDate("not-a-date", fb); !got.Equal(fb) {
		t.Fatalf("ParseDate fallback = %v", got)
	}
	if got := ParseDate("2026-01-02", fb); Format(got) != "2026-01-02" {
		t.Fatalf("ParseDate = %v", got)
	}
}
