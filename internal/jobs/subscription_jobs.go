package jobs

import (
	"context"

	"github.com/thonny3/suivi-buget-perso-sub000/internal/domain"
	"github.com/thonny3/suivi-buget-perso-sub000/internal/logger"
)

// chargeSubscriptions charges every subscription due today or earlier.
func (jr *JobRunner) chargeSubscriptions(ctx context.Context) error {
	charged, err := jr.services.Subscriptions.ChargeDue(ctx, domain.StartOfDay(jr.now()))
	logger.Info("Charged due subscriptions", "charged", charged)
	return err
}
