package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/thonny3/suivi-buget-perso-sub000/internal/domain"
	"github.com/thonny3/suivi-buget-perso-sub000/internal/logger"
	"github.com/thonny3/suivi-buget-perso-sub000/internal/repository"
	"github.com/thonny3/suivi-buget-perso-sub000/internal/utils"
)

const subscriptionCategory = "Abonnements"

type subscriptionService struct {
	subRepo     repository.SubscriptionRepository
	accountRepo repository.AccountRepository
	shareRepo   repository.ShareRepository
	userRepo    repository.UserRepository
	postingSvc  PostingService
	noteSvc     NotificationService
	emailSvc    EmailService
	now         func() time.Time
}

func NewSubscriptionService(
	subRepo repository.SubscriptionRepository,
	accountRepo repository.AccountRepository,
	shareRepo repository.ShareRepository,
	userRepo repository.UserRepository,
	postingSvc PostingService,
	noteSvc NotificationService,
	emailSvc EmailService,
) SubscriptionService {
	return &subscriptionService{
		subRepo:     subRepo,
		accountRepo: accountRepo,
		shareRepo:   shareRepo,
		userRepo:    userRepo,
		postingSvc:  postingSvc,
		noteSvc:     noteSvc,
		emailSvc:    emailSvc,
		now:         time.Now,
	}
}

func (s *subscriptionService) CreateSubscription(ctx context.Context, userID int32, sub *domain.Subscription) error {
	sub.Name = strings.TrimSpace(sub.Name)
	if sub.Name == "" {
		return fmt.Errorf("%w: subscription name is required", domain.ErrValidation)
	}
	if err := domain.CheckPositiveAmount("amount", sub.Amount); err != nil {
		return err
	}
	if !sub.Frequency.Valid() {
		return fmt.Errorf("%w: frequency must be weekly, monthly or yearly", domain.ErrValidation)
	}
	account, err := s.accountRepo.GetByID(ctx, sub.AccountID)
	if err != nil {
		return err
	}
	role, err := resolveRole(ctx, s.shareRepo, account, userID)
	if err != nil {
		return err
	}
	if !role.CanWrite() {
		return fmt.Errorf("%w: role %s cannot charge account %d", domain.ErrForbidden, role, account.ID)
	}

	if sub.Category = strings.TrimSpace(sub.Category); sub.Category == "" {
		sub.Category = subscriptionCategory
	}
	if sub.NextDueDate.IsZero() {
		sub.NextDueDate = domain.StartOfDay(s.now())
	}
	sub.UserID = userID
	sub.Active = true
	return s.subRepo.Create(ctx, sub)
}

func (s *subscriptionService) ListSubscriptions(ctx context.Context, userID int32) ([]domain.Subscription, error) {
	return s.subRepo.ListByUser(ctx, userID)
}

func (s *subscriptionService) DeleteSubscription(ctx context.Context, userID, subID int32) error {
	return s.subRepo.Delete(ctx, subID, userID)
}

func (s *subscriptionService) ChargeDue(ctx context.Context, asOf time.Time) (int, error) {
	logger.EnterMethod("subscriptionService.ChargeDue", "asOf", asOf.Format(utils.DateLayout))

	due, err := s.subRepo.ListDue(ctx, asOf)
	if err != nil {
		logger.ExitMethodWithError("subscriptionService.ChargeDue", err)
		return 0, err
	}

	var (
		charged int
		errs    []error
	)
	for _, sub := range due {
		_, err := s.postingSvc.ChargeSubscription(ctx, sub)
		switch {
		case err == nil:
			charged++
		case errors.Is(err, domain.ErrConflict):
			logger.Info("Subscription already charged for this due date", "subscriptionID", sub.ID, "due", sub.NextDueDate.Format(utils.DateLayout))
		case errors.Is(err, domain.ErrInsufficientFunds):
			s.notifyChargeFailed(ctx, sub)
		default:
			logger.Error("Failed to charge subscription", "subscriptionID", sub.ID, "error", err)
			errs = append(errs, fmt.Errorf("subscription %d: %w", sub.ID, err))
		}
	}

	logger.ExitMethod("subscriptionService.ChargeDue", "due", len(due), "charged", charged)
	return charged, errors.Join(errs...)
}

func (s *subscriptionService) notifyChargeFailed(ctx context.Context, sub domain.Subscription) {
	logger.Warn("Insufficient funds for subscription", "subscriptionID", sub.ID, "accountID", sub.AccountID)
	note := &domain.Notification{
		UserID:  sub.UserID,
		Title:   "Prélèvement impossible",
		Message: fmt.Sprintf("Solde insuffisant pour l'abonnement %s (%s)", sub.Name, sub.Amount.StringFixed(2)),
		Attributes: map[string]string{
			"type":            "SUBSCRIPTION_FAILED",
			"subscription_id": fmt.Sprintf("%d", sub.ID),
		},
	}
	if err := s.noteSvc.Notify(ctx, note); err != nil {
		logger.Warn("Failed to record subscription notification", "subscriptionID", sub.ID, "error", err)
	}
	user, err := s.userRepo.GetByID(ctx, sub.UserID)
	if err != nil {
		return
	}
	if err := s.emailSvc.SendSubscriptionFailed(ctx, user.Email, user.Name, sub.Name, sub.Amount.StringFixed(2)); err != nil {
		logger.Warn("Failed to send subscription failure email", "subscriptionID", sub.ID, "error", err)
	}
}
