package utils

import (
	"fmt"
	"time"

	"github.com/thonny3/suivi-buget-perso-sub000/internal/domain"
)

const (
	DateLayout  = "2006-01-02"
	MonthLayout = "2006-01"
)

// ParseDate converts a yyyy-mm-dd string into a UTC midnight time.
func ParseDate(dateStr string) (time.Time, error) {
	t, err := time.ParseInLocation(DateLayout, dateStr, time.UTC)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid date %q, expected yyyy-mm-dd", dateStr)
	}
	return t, nil
}

// ParseMonth converts a yyyy-mm string into the first day of that month (UTC).
func ParseMonth(month string) (time.Time, error) {
	t, err := time.ParseInLocation(MonthLayout, month, time.UTC)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid month %q, expected yyyy-mm", month)
	}
	return t, nil
}

// MonthKey formats t as yyyy-mm.
func MonthKey(t time.Time) string {
	return t.Format(MonthLayout)
}

// DaysInMonth returns the number of days in a given month
func DaysInMonth(year, month int) int {
	if month == 2 {
		if (year%4 == 0 && year%100 != 0) || (year%400 == 0) {
			return 29
		}
		return 28
	}
	if month == 4 || month == 6 || month == 9 || month == 11 {
		return 30
	}
	return 31
}

// AddMonthsClamped adds n months to t, clamping the day to the last day of
// the resulting month (Jan 31 + 1 month = Feb 28/29).
func AddMonthsClamped(t time.Time, n int) time.Time {
	y, m, d := t.Date()
	total := int(m) - 1 + n
	y += total / 12
	total %= 12
	if total < 0 {
		total += 12
		y--
	}
	month := total + 1
	if maxDay := DaysInMonth(y, month); d > maxDay {
		d = maxDay
	}
	return time.Date(y, time.Month(month), d, t.Hour(), t.Minute(), t.Second(), t.Nanosecond(), t.Location())
}

// MonthBounds returns [first day of t's month, first day of next month).
func MonthBounds(t time.Time) (time.Time, time.Time) {
	start := time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, t.Location())
	return start, start.AddDate(0, 1, 0)
}

// LastMonths returns the n month keys ending with now's month, oldest first.
func LastMonths(now time.Time, n int) []string {
	start, _ := MonthBounds(now)
	keys := make([]string, 0, n)
	for i := n - 1; i >= 0; i-- {
		keys = append(keys, MonthKey(AddMonthsClamped(start, -i)))
	}
	return keys
}

// NextDueDate advances a subscription due date by one billing period.
func NextDueDate(due time.Time, freq domain.SubscriptionFrequency) time.Time {
	switch freq {
	case domain.FrequencyWeekly:
		return due.AddDate(0, 0, 7)
	case domain.FrequencyYearly:
		return AddMonthsClamped(due, 12)
	default:
		return AddMonthsClamped(due, 1)
	}
}
