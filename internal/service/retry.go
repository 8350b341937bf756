package service

import (
	"context"
	"time"

	"github.com/thonny3/suivi-buget-perso-sub000/internal/config"
	"github.com/thonny3/suivi-buget-perso-sub000/internal/domain"
	"github.com/thonny3/suivi-buget-perso-sub000/internal/logger"
)

// withRetry runs fn again while it fails with a contention error, waiting
// attempt*backoff between tries, up to policy.MaxRetries extra attempts.
func withRetry(ctx context.Context, policy config.LedgerConfig, op string, fn func() error) error {
	err := fn()
	for attempt := 1; attempt <= policy.MaxRetries && domain.IsRetryable(err); attempt++ {
		wait := time.Duration(attempt) * policy.RetryBackoff()
		logger.Warn("Retrying after lock contention", "operation", op, "attempt", attempt, "wait", wait.String())

		timer := time.NewTimer(wait)
		select {
		case <-ctx.Done():
			timer.Stop()
			return ctx.Err()
		case <-timer.C:
		}
		err = fn()
	}
	return err
}
