package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/thonny3/suivi-buget-perso-sub000/internal/config"
	"github.com/thonny3/suivi-buget-perso-sub000/internal/domain"
	"github.com/thonny3/suivi-buget-perso-sub000/internal/logger"
	"github.com/thonny3/suivi-buget-perso-sub000/internal/repository"
)

type debtService struct {
	debtRepo repository.DebtRepository
	ledger   repository.Ledger
	policy   config.LedgerConfig
	now      func() time.Time
}

func NewDebtService(debtRepo repository.DebtRepository, ledger repository.Ledger, policy config.LedgerConfig) DebtService {
	return &debtService{
		debtRepo: debtRepo,
		ledger:   ledger,
		policy:   policy,
		now:      time.Now,
	}
}

func (s *debtService) CreateDebt(ctx context.Context, userID int32, d *domain.Debt) error {
	logger.EnterMethod("debtService.CreateDebt", "userID", userID, "direction", d.Direction)

	d.Name = strings.TrimSpace(d.Name)
	if d.Name == "" {
		return fmt.Errorf("%w: debt name is required", domain.ErrValidation)
	}
	if err := domain.CheckPositiveAmount("initial amount", d.InitialAmount); err != nil {
		return err
	}
	if !d.Direction.Valid() {
		return fmt.Errorf("%w: debt type must be lent or borrowed", domain.ErrValidation)
	}
	if d.InterestRate.IsNegative() {
		return fmt.Errorf("%w: interest rate cannot be negative", domain.ErrValidation)
	}
	today := s.now()
	if d.StartDate.IsZero() {
		d.StartDate = domain.StartOfDay(today)
	}
	if d.DueDate != nil && d.DueDate.Before(d.StartDate) {
		return fmt.Errorf("%w: due date is before the start date", domain.ErrValidation)
	}
	d.UserID = userID
	d.RemainingAmount = d.InitialAmount
	d.Refresh(today)

	if err := s.debtRepo.Create(ctx, d); err != nil {
		logger.ExitMethodWithError("debtService.CreateDebt", err, "userID", userID)
		return err
	}
	logger.ExitMethod("debtService.CreateDebt", "debtID", d.ID)
	return nil
}

func (s *debtService) owned(ctx context.Context, userID, debtID int32) (*domain.Debt, error) {
	d, err := s.debtRepo.GetByID(ctx, debtID)
	if err != nil {
		return nil, err
	}
	if d.UserID != userID {
		return nil, fmt.Errorf("%w: debt %d belongs to another user", domain.ErrForbidden, debtID)
	}
	return d, nil
}

func (s *debtService) GetDebt(ctx context.Context, userID, debtID int32) (*domain.Debt, error) {
	d, err := s.owned(ctx, userID, debtID)
	if err != nil {
		return nil, err
	}
	d.Refresh(s.now())
	return d, nil
}

func (s *debtService) ListDebts(ctx context.Context, userID int32) ([]domain.Debt, error) {
	debts, err := s.debtRepo.ListByUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	today := s.now()
	for i := range debts {
		debts[i].Refresh(today)
	}
	return debts, nil
}

func (s *debtService) UpdateDebt(ctx context.Context, userID int32, changes *domain.Debt) (*domain.Debt, error) {
	logger.EnterMethod("debtService.UpdateDebt", "userID", userID, "debtID", changes.ID)

	d, err := s.owned(ctx, userID, changes.ID)
	if err != nil {
		logger.ExitMethodWithError("debtService.UpdateDebt", err, "debtID", changes.ID)
		return nil, err
	}
	if name := strings.TrimSpace(changes.Name); name != "" {
		d.Name = name
	}
	if cp := strings.TrimSpace(changes.Counterparty); cp != "" {
		d.Counterparty = cp
	}
	if !changes.InterestRate.IsZero() {
		if changes.InterestRate.IsNegative() {
			return nil, fmt.Errorf("%w: interest rate cannot be negative", domain.ErrValidation)
		}
		d.InterestRate = changes.InterestRate
	}
	if changes.DueDate != nil {
		if changes.DueDate.Before(d.StartDate) {
			return nil, fmt.Errorf("%w: due date is before the start date", domain.ErrValidation)
		}
		d.DueDate = changes.DueDate
	}
	if err := s.debtRepo.Update(ctx, d); err != nil {
		logger.ExitMethodWithError("debtService.UpdateDebt", err, "debtID", d.ID)
		return nil, err
	}

	refreshed, _, err := s.refresh(ctx, d.ID, s.now())
	if err != nil {
		logger.ExitMethodWithError("debtService.UpdateDebt", err, "debtID", d.ID)
		return nil, err
	}
	logger.ExitMethod("debtService.UpdateDebt", "debtID", d.ID, "status", refreshed.Status)
	return refreshed, nil
}

func (s *debtService) DeleteDebt(ctx context.Context, userID, debtID int32) error {
	if _, err := s.owned(ctx, userID, debtID); err != nil {
		return err
	}
	return s.debtRepo.Delete(ctx, debtID)
}

func (s *debtService) ListRepayments(ctx context.Context, userID, debtID int32) ([]domain.Repayment, error) {
	if _, err := s.owned(ctx, userID, debtID); err != nil {
		return nil, err
	}
	return s.debtRepo.ListRepayments(ctx, debtID)
}

// refresh re-derives one debt's status under its ledger lock.
func (s *debtService) refresh(ctx context.Context, id int32, today time.Time) (*domain.Debt, bool, error) {
	var (
		result  *domain.Debt
		changed bool
	)
	err := withRetry(ctx, s.policy, "debtService.refresh", func() error {
		return s.ledger.WithinTx(ctx, func(ctx context.Context, tx repository.LedgerTx) error {
			d, err := tx.LockDebt(ctx, id)
			if err != nil {
				return err
			}
			status := domain.DeriveDebtStatus(d.RemainingAmount, d.DueDate, today)
			changed = status != d.Status
			if changed {
				if err := tx.UpdateDebtProgress(ctx, d.ID, d.RemainingAmount, status); err != nil {
					return err
				}
				d.Status = status
			}
			result = d
			return nil
		})
	})
	return result, changed, err
}

func (s *debtService) RecomputeStatuses(ctx context.Context, today time.Time) ([]domain.Debt, error) {
	logger.EnterMethod("debtService.RecomputeStatuses")

	candidates, err := s.debtRepo.ListOpen(ctx)
	if err != nil {
		logger.ExitMethodWithError("debtService.RecomputeStatuses", err)
		return nil, err
	}

	var (
		changed []domain.Debt
		errs    []error
	)
	for _, d := range candidates {
		if d.Status == domain.DeriveDebtStatus(d.RemainingAmount, d.DueDate, today) {
			continue
		}
		refreshed, ok, err := s.refresh(ctx, d.ID, today)
		if err != nil {
			logger.Error("Failed to recompute debt status", "debtID", d.ID, "error", err)
			errs = append(errs, fmt.Errorf("debt %d: %w", d.ID, err))
			continue
		}
		if ok {
			changed = append(changed, *refreshed)
		}
	}

	logger.ExitMethod("debtService.RecomputeStatuses", "candidates", len(candidates), "changed", len(changed))
	return changed, errors.Join(errs...)
}
