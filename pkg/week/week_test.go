package week

import (
	"testing"
	"time"
)

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func TestNumberFixedPoints(t *testing.T) {
	cases := []struct {
		date time.Time
		want int
	}{
		{date(2025, time.December, 28), 1},
		{date(2025, time.December, 31), 1},
		{date(2026, time.January, 3), 1},
		{date(2026, time.January, 4), 2},
		{date(2026, time.January, 10), 2},
		{date(2026, time.January, 11), 3},
		{date(2025, time.December, 27), 0},
		{date(2025, time.December, 21), 0},
		{date(2025, time.December, 20), -1},
	}
	for _, tc := range cases {
		if got := Number(tc.date); got != tc.want {
			t.Fatalf("Number(%s) = %d, want %d", tc.date.Format("2006-01-02"), got, tc.want)
		}
	}
}

func TestNumberIgnoresTimeOfDay(t *testing.T) {
	late := time.Date(2026, time.January, 4, 23, 59, 59, 0, time.UTC)
	if got := Number(late); got != 2 {
		t.Fatalf("expected week 2 regardless of clock time, got %d", got)
	}
}

func TestRangeBoundsAreSundayToSaturday(t *testing.T) {
	start, end := Range(2)
	if !start.Equal(date(2026, time.January, 4)) {
		t.Fatalf("unexpected start %s", start.Format("2006-01-02"))
	}
	if !end.Equal(date(2026, time.January, 10)) {
		t.Fatalf("unexpected end %s", end.Format("2006-01-02"))
	}
	if start.Weekday() != time.Sunday || end.Weekday() != time.Saturday {
		t.Fatalf("expected Sunday..Saturday, got %s..%s", start.Weekday(), end.Weekday())
	}
}

func TestRangeNumberRoundTrip(t *testing.T) {
	for _, n := range []int{-5, 0, 1, 2, 52, 104} {
		start, end := Range(n)
		if got := Number(start); got != n {
			t.Fatalf("Number(Range(%d).start) = %d", n, got)
		}
		if got := Number(end); got != n {
			t.Fatalf("Number(Range(%d).end) = %d", n, got)
		}
		if got := Number(end.AddDate(0, 0, 1)); got != n+1 {
			t.Fatalf("day after week %d should be week %d, got %d", n, n+1, got)
		}
	}
}

func TestDays(t *testing.T) {
	days := Days(1)
	if len(days) != 7 {
		t.Fatalf("expected 7 days, got %d", len(days))
	}
	if !days[0].Equal(Epoch()) {
		t.Fatalf("expected first day of week 1 to be the epoch, got %s", days[0])
	}
	for i, d := range days {
		if Number(d) != 1 {
			t.Fatalf("day %d (%s) fell outside week 1", i, d.Format("2006-01-02"))
		}
	}
}
