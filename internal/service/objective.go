package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/thonny3/suivi-buget-perso-sub000/internal/config"
	"github.com/thonny3/suivi-buget-perso-sub000/internal/domain"
	"github.com/thonny3/suivi-buget-perso-sub000/internal/logger"
	"github.com/thonny3/suivi-buget-perso-sub000/internal/repository"
)

type objectiveService struct {
	objectiveRepo repository.ObjectiveRepository
	ledger        repository.Ledger
	policy        config.LedgerConfig
	now           func() time.Time
}

func NewObjectiveService(objectiveRepo repository.ObjectiveRepository, ledger repository.Ledger, policy config.LedgerConfig) ObjectiveService {
	return &objectiveService{
		objectiveRepo: objectiveRepo,
		ledger:        ledger,
		policy:        policy,
		now:           time.Now,
	}
}

func (s *objectiveService) CreateObjective(ctx context.Context, userID int32, o *domain.Objective) error {
	logger.EnterMethod("objectiveService.CreateObjective", "userID", userID)

	o.Name = strings.TrimSpace(o.Name)
	if o.Name == "" {
		return fmt.Errorf("%w: objective name is required", domain.ErrValidation)
	}
	if err := domain.CheckPositiveAmount("target amount", o.TargetAmount); err != nil {
		return err
	}
	o.UserID = userID
	// Money only enters an objective through a contribution.
	o.CurrentAmount = decimal.Zero
	o.Refresh(s.now())

	if err := s.objectiveRepo.Create(ctx, o); err != nil {
		logger.ExitMethodWithError("objectiveService.CreateObjective", err, "userID", userID)
		return err
	}
	logger.ExitMethod("objectiveService.CreateObjective", "objectiveID", o.ID)
	return nil
}

func (s *objectiveService) owned(ctx context.Context, userID, objectiveID int32) (*domain.Objective, error) {
	o, err := s.objectiveRepo.GetByID(ctx, objectiveID)
	if err != nil {
		return nil, err
	}
	if o.UserID != userID {
		return nil, fmt.Errorf("%w: objective %d belongs to another user", domain.ErrForbidden, objectiveID)
	}
	return o, nil
}

func (s *objectiveService) GetObjective(ctx context.Context, userID, objectiveID int32) (*domain.Objective, error) {
	o, err := s.owned(ctx, userID, objectiveID)
	if err != nil {
		return nil, err
	}
	o.Refresh(s.now())
	return o, nil
}

func (s *objectiveService) ListObjectives(ctx context.Context, userID int32) ([]domain.Objective, error) {
	objectives, err := s.objectiveRepo.ListByUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	today := s.now()
	for i := range objectives {
		objectives[i].Refresh(today)
	}
	return objectives, nil
}

func (s *objectiveService) UpdateObjective(ctx context.Context, userID int32, changes *domain.Objective) (*domain.Objective, error) {
	logger.EnterMethod("objectiveService.UpdateObjective", "userID", userID, "objectiveID", changes.ID)

	o, err := s.owned(ctx, userID, changes.ID)
	if err != nil {
		logger.ExitMethodWithError("objectiveService.UpdateObjective", err, "objectiveID", changes.ID)
		return nil, err
	}
	if name := strings.TrimSpace(changes.Name); name != "" {
		o.Name = name
	}
	if !changes.TargetAmount.IsZero() {
		if err := domain.CheckPositiveAmount("target amount", changes.TargetAmount); err != nil {
			return nil, err
		}
		o.TargetAmount = changes.TargetAmount
	}
	if changes.Deadline != nil {
		o.Deadline = changes.Deadline
	}
	if err := s.objectiveRepo.Update(ctx, o); err != nil {
		logger.ExitMethodWithError("objectiveService.UpdateObjective", err, "objectiveID", o.ID)
		return nil, err
	}

	// A new target or deadline can change the derived status.
	refreshed, _, err := s.refresh(ctx, o.ID, s.now())
	if err != nil {
		logger.ExitMethodWithError("objectiveService.UpdateObjective", err, "objectiveID", o.ID)
		return nil, err
	}
	logger.ExitMethod("objectiveService.UpdateObjective", "objectiveID", o.ID, "status", refreshed.Status)
	return refreshed, nil
}

func (s *objectiveService) DeleteObjective(ctx context.Context, userID, objectiveID int32) error {
	o, err := s.owned(ctx, userID, objectiveID)
	if err != nil {
		return err
	}
	if o.CurrentAmount.IsPositive() {
		return fmt.Errorf("%w: objective %d still holds %s, withdraw it first", domain.ErrConflict, objectiveID, o.CurrentAmount.String())
	}
	return s.objectiveRepo.Delete(ctx, objectiveID)
}

func (s *objectiveService) ListContributions(ctx context.Context, userID, objectiveID int32) ([]domain.Contribution, error) {
	if _, err := s.owned(ctx, userID, objectiveID); err != nil {
		return nil, err
	}
	return s.objectiveRepo.ListContributions(ctx, objectiveID)
}

// refresh re-derives one objective's status under its ledger lock so it
// cannot overwrite a concurrent contribution.
func (s *objectiveService) refresh(ctx context.Context, id int32, today time.Time) (*domain.Objective, bool, error) {
	var (
		result  *domain.Objective
		changed bool
	)
	err := withRetry(ctx, s.policy, "objectiveService.refresh", func() error {
		return s.ledger.WithinTx(ctx, func(ctx context.Context, tx repository.LedgerTx) error {
			o, err := tx.LockObjective(ctx, id)
			if err != nil {
				return err
			}
			status := domain.DeriveObjectiveStatus(o.CurrentAmount, o.TargetAmount, o.Deadline, today)
			changed = status != o.Status
			if changed {
				if err := tx.UpdateObjectiveProgress(ctx, o.ID, o.CurrentAmount, status); err != nil {
					return err
				}
			}
			o.Refresh(today)
			result = o
			return nil
		})
	})
	return result, changed, err
}

func (s *objectiveService) RecomputeStatuses(ctx context.Context, today time.Time) (int, error) {
	logger.EnterMethod("objectiveService.RecomputeStatuses")

	candidates, err := s.objectiveRepo.ListUnreached(ctx)
	if err != nil {
		logger.ExitMethodWithError("objectiveService.RecomputeStatuses", err)
		return 0, err
	}

	var (
		changed int
		errs    []error
	)
	for _, o := range candidates {
		if o.Status == domain.DeriveObjectiveStatus(o.CurrentAmount, o.TargetAmount, o.Deadline, today) {
			continue
		}
		_, ok, err := s.refresh(ctx, o.ID, today)
		if err != nil {
			logger.Error("Failed to recompute objective status", "objectiveID", o.ID, "error", err)
			errs = append(errs, fmt.Errorf("objective %d: %w", o.ID, err))
			continue
		}
		if ok {
			changed++
		}
	}

	logger.ExitMethod("objectiveService.RecomputeStatuses", "candidates", len(candidates), "changed", changed)
	return changed, errors.Join(errs...)
}
