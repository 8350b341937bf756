package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

var hundred = decimal.NewFromInt(100)

// StartOfDay truncates t to midnight in t's own location.
func StartOfDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}

// isPastDue reports whether due lies strictly before the start of today.
// A due date falling on today is not past due.
func isPastDue(due *time.Time, today time.Time) bool {
	if due == nil || due.IsZero() {
		return false
	}
	sod := StartOfDay(today)
	d := time.Date(due.Year(), due.Month(), due.Day(), 0, 0, 0, 0, sod.Location())
	return d.Before(sod)
}

// DeriveDebtStatus computes a debt status from stored fields only.
func DeriveDebtStatus(remaining decimal.Decimal, dueDate *time.Time, today time.Time) DebtStatus {
	if !remaining.IsPositive() {
		return DebtStatusSettled
	}
	if isPastDue(dueDate, today) {
		return DebtStatusLate
	}
	return DebtStatusOngoing
}

// DeriveObjectiveStatus computes an objective status from stored fields only.
// Reaching the target wins over a missed deadline.
func DeriveObjectiveStatus(current, target decimal.Decimal, deadline *time.Time, today time.Time) ObjectiveStatus {
	if current.GreaterThanOrEqual(target) {
		return ObjectiveStatusReached
	}
	if isPastDue(deadline, today) {
		return ObjectiveStatusLate
	}
	return ObjectiveStatusInProgress
}

// ObjectiveProgress returns current/target as a percentage with two decimals.
func ObjectiveProgress(current, target decimal.Decimal) decimal.Decimal {
	if !target.IsPositive() {
		return hundred
	}
	return current.Div(target).Mul(hundred).Round(2)
}
