package jobs

import (
	"context"
	"errors"
	"fmt"

	"github.com/thonny3/suivi-buget-perso-sub000/internal/domain"
	"github.com/thonny3/suivi-buget-perso-sub000/internal/logger"
	"github.com/thonny3/suivi-buget-perso-sub000/internal/utils"
)

// recomputeStatuses re-derives objective and debt statuses and notifies owners
// of debts that just became late. Running it twice the same day changes nothing.
func (jr *JobRunner) recomputeStatuses(ctx context.Context) error {
	today := jr.now()

	objectives, objErr := jr.services.Objectives.RecomputeStatuses(ctx, today)
	if objErr != nil {
		logger.Error("Failed to recompute some objective statuses", "error", objErr)
	}

	changed, debtErr := jr.services.Debts.RecomputeStatuses(ctx, today)
	if debtErr != nil {
		logger.Error("Failed to recompute some debt statuses", "error", debtErr)
	}

	late := 0
	for _, d := range changed {
		if d.Status != domain.DebtStatusLate {
			continue
		}
		late++
		note := &domain.Notification{
			UserID:  d.UserID,
			Title:   "Dette en retard",
			Message: fmt.Sprintf("La dette %s a dépassé son échéance (reste %s)", d.Name, d.RemainingAmount.StringFixed(2)),
			Attributes: map[string]string{
				"type":    "DEBT_LATE",
				"debt_id": fmt.Sprintf("%d", d.ID),
			},
		}
		if err := jr.services.Notifications.Notify(ctx, note); err != nil {
			logger.Warn("Failed to record late debt notification", "debtID", d.ID, "error", err)
		}
	}

	logger.Info("Recomputed statuses",
		"date", today.Format(utils.DateLayout),
		"objectives_changed", objectives,
		"debts_changed", len(changed),
		"debts_late", late)
	return errors.Join(objErr, debtErr)
}

// sendDebtReminders emails the owner of every late borrowed debt.
func (jr *JobRunner) sendDebtReminders(ctx context.Context) error {
	today := jr.now()
	open, err := jr.debts.ListOpen(ctx)
	if err != nil {
		return fmt.Errorf("failed to list open debts: %w", err)
	}

	sent := 0
	for _, d := range open {
		if d.Direction != domain.DebtDirectionBorrowed || d.DueDate == nil {
			continue
		}
		if domain.DeriveDebtStatus(d.RemainingAmount, d.DueDate, today) != domain.DebtStatusLate {
			continue
		}
		user, err := jr.users.GetByID(ctx, d.UserID)
		if err != nil {
			logger.Warn("Skipping reminder, owner not found", "debtID", d.ID, "userID", d.UserID, "error", err)
			continue
		}
		if err := jr.services.Email.SendDebtOverdue(ctx, user.Email, user.Name, d.Name, d.RemainingAmount.StringFixed(2), *d.DueDate); err != nil {
			logger.Error("Failed to send debt reminder", "debtID", d.ID, "error", err)
			continue
		}
		sent++
	}

	logger.Info("Sent debt reminders", "open_debts", len(open), "sent", sent)
	return nil
}
