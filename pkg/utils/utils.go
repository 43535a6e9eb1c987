package utils

import (
	"time"

	"github.com/shopspring/decimal"
)

// StartOfDay truncates a timestamp to midnight in its own location. Due-date
// comparisons work on whole days.
func StartOfDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}

// IsOverdue reports whether a due date has passed as of now, comparing whole
// days.
func IsOverdue(dueDate, now time.Time) bool {
	return StartOfDay(dueDate).Before(StartOfDay(now))
}

// DaysLate returns how many whole days past due a date is, 0 when it is not
// overdue.
func DaysLate(dueDate, now time.Time) int {
	days := int(StartOfDay(now).Sub(StartOfDay(dueDate)).Hours() / 24)
	if days < 0 {
		return 0
	}
	return days
}

// DaysUntil returns how many whole days remain before a due date, 0 when it is
// today or already past.
func DaysUntil(dueDate, now time.Time) int {
	days := int(StartOfDay(dueDate).Sub(StartOfDay(now)).Hours() / 24)
	if days < 0 {
		return 0
	}
	return days
}

// MinDecimal returns the smaller of two decimals.
func MinDecimal(a, b decimal.Decimal) decimal.Decimal {
	if a.LessThan(b) {
		return a
	}
	return b
}
