// Package week numbers calendar weeks against a fixed Sunday epoch.
// Week 1 starts on 2025-12-28; weeks run Sunday through Saturday and the
// numbering extends below 1 for dates before the epoch.
package week

import "time"

var epoch = time.Date(2025, time.December, 28, 0, 0, 0, 0, time.UTC)

// Epoch returns the Sunday that opens week 1.
func Epoch() time.Time {
	return epoch
}

// Number returns the week number containing the given date.
func Number(date time.Time) int {
	days := daysBetween(epoch, date)
	return floorDiv(days, 7) + 1
}

// Range returns the Sunday and Saturday bounding the given week number.
func Range(number int) (start, end time.Time) {
	start = epoch.AddDate(0, 0, 7*(number-1))
	end = start.AddDate(0, 0, 6)
	return start, end
}

// Days returns the seven dates of the given week, Sunday first.
func Days(number int) []time.Time {
	start, _ := Range(number)
	days := make([]time.Time, 7)
	for i := range days {
		days[i] = start.AddDate(0, 0, i)
	}
	return days
}

// Truncate drops the time-of-day and zone, keeping the calendar date in UTC.
func Truncate(date time.Time) time.Time {
	return time.Date(date.Year(), date.Month(), date.Day(), 0, 0, 0, 0, time.UTC)
}

func daysBetween(from, to time.Time) int {
	fromDay := Truncate(from)
	toDay := Truncate(to)
	return int(toDay.Sub(fromDay).Hours() / 24)
}

// floorDiv rounds toward negative infinity so pre-epoch dates land in
// week 0 and below instead of collapsing into week 1.
func floorDiv(a, b int) int {
	q := a / b
	if (a%b != 0) && ((a < 0) != (b < 0)) {
		q--
	}
	return q
}
