package domain

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// AmountScale is the number of decimal places money columns store (NUMERIC(14,2)).
const AmountScale = 2

// maxAmount is the largest absolute value NUMERIC(14,2) can hold.
var maxAmount = decimal.New(1, 12).Sub(decimal.New(1, -AmountScale))

// CheckAmount rejects values the stores cannot hold exactly: more than two
// decimal places, or beyond the column range.
func CheckAmount(field string, amount decimal.Decimal) error {
	if amount.Exponent() < -AmountScale && !amount.Equal(amount.Truncate(AmountScale)) {
		return fmt.Errorf("%w: %s must have at most %d decimal places", ErrValidation, field, AmountScale)
	}
	if amount.Abs().GreaterThan(maxAmount) {
		return fmt.Errorf("%w: %s is out of range", ErrValidation, field)
	}
	return nil
}

// CheckPositiveAmount is CheckAmount plus amount > 0.
func CheckPositiveAmount(field string, amount decimal.Decimal) error {
	if !amount.IsPositive() {
		return fmt.Errorf("%w: %s must be positive", ErrValidation, field)
	}
	return CheckAmount(field, amount)
}
