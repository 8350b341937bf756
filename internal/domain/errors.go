package domain

import "errors"

// Error taxonomy shared by the stores, the transfer engine and the HTTP layer.
// Callers wrap these with fmt.Errorf("...: %w") and match with errors.Is.
var (
	ErrValidation                 = errors.New("validation failed")
	ErrInsufficientFunds          = errors.New("insufficient funds")
	ErrInsufficientObjectiveFunds = errors.New("insufficient objective funds")
	ErrRepaymentExceedsDebt       = errors.New("repayment exceeds remaining debt")
	ErrContention                 = errors.New("concurrent update conflict, retry")
	ErrUnauthorized               = errors.New("unauthorized")
	ErrForbidden                  = errors.New("forbidden")
	ErrNotFound                   = errors.New("not found")
	ErrConflict                   = errors.New("conflict")
)

// IsRetryable reports whether err is a transient lock conflict.
func IsRetryable(err error) bool {
	return errors.Is(err, ErrContention)
}
