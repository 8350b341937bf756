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
	"github.com/thonny3/suivi-buget-perso-sub000/internal/utils"
)

const defaultCategory = "Autre"

type postingService struct {
	ledger     repository.Ledger
	budgetRepo repository.BudgetRepository
	reportRepo repository.ReportRepository
	userRepo   repository.UserRepository
	noteSvc    NotificationService
	emailSvc   EmailService
	policy     config.LedgerConfig
	now        func() time.Time
}

func NewPostingService(
	ledger repository.Ledger,
	budgetRepo repository.BudgetRepository,
	reportRepo repository.ReportRepository,
	userRepo repository.UserRepository,
	noteSvc NotificationService,
	emailSvc EmailService,
	policy config.LedgerConfig,
) PostingService {
	return &postingService{
		ledger:     ledger,
		budgetRepo: budgetRepo,
		reportRepo: reportRepo,
		userRepo:   userRepo,
		noteSvc:    noteSvc,
		emailSvc:   emailSvc,
		policy:     policy,
		now:        time.Now,
	}
}

func (s *postingService) Record(ctx context.Context, p *domain.Posting) error {
	logger.EnterMethod("postingService.Record", "userID", p.UserID, "accountID", p.AccountID, "kind", p.Kind)

	if err := s.record(ctx, p, nil); err != nil {
		logger.ExitMethodWithError("postingService.Record", err, "accountID", p.AccountID)
		return err
	}
	logger.ExitMethod("postingService.Record", "postingID", p.ID)
	return nil
}

func (s *postingService) ChargeSubscription(ctx context.Context, sub domain.Subscription) (*domain.Posting, error) {
	logger.EnterMethod("postingService.ChargeSubscription", "subscriptionID", sub.ID, "due", sub.NextDueDate.Format(utils.DateLayout))

	p := &domain.Posting{
		AccountID:   sub.AccountID,
		UserID:      sub.UserID,
		Kind:        domain.PostingExpense,
		Category:    sub.Category,
		Amount:      sub.Amount,
		Description: fmt.Sprintf("Abonnement %s", sub.Name),
		PostedOn:    sub.NextDueDate,
	}
	next := utils.NextDueDate(sub.NextDueDate, sub.Frequency)
	err := s.record(ctx, p, func(ctx context.Context, tx repository.LedgerTx) error {
		return tx.AdvanceSubscription(ctx, sub.ID, sub.NextDueDate, next)
	})
	if err != nil {
		logger.ExitMethodWithError("postingService.ChargeSubscription", err, "subscriptionID", sub.ID)
		return nil, err
	}
	logger.ExitMethod("postingService.ChargeSubscription", "postingID", p.ID, "next", next.Format(utils.DateLayout))
	return p, nil
}

// record applies p to its account in one ledger unit. claim, when set, runs
// first inside the same unit; its error aborts the posting.
func (s *postingService) record(ctx context.Context, p *domain.Posting, claim func(ctx context.Context, tx repository.LedgerTx) error) error {
	if err := s.validate(p); err != nil {
		return err
	}

	var committed domain.Posting
	err := withRetry(ctx, s.policy, "postingService.record", func() error {
		return s.ledger.WithinTx(ctx, func(ctx context.Context, tx repository.LedgerTx) error {
			if claim != nil {
				if err := claim(ctx, tx); err != nil {
					return err
				}
			}
			acc, err := tx.LockAccount(ctx, p.AccountID)
			if err != nil {
				return err
			}
			if err := authorize(ctx, tx, p.UserID, &lockedEndpoints{accounts: map[int32]*domain.Account{acc.ID: acc}}); err != nil {
				return err
			}
			balance := acc.Balance.Add(p.Signed())
			if balance.IsNegative() && !s.policy.AllowsOverdraft(string(acc.Type)) {
				return fmt.Errorf("%w: account %d holds %s", domain.ErrInsufficientFunds, acc.ID, acc.Balance.String())
			}
			if err := tx.UpdateAccountBalance(ctx, acc.ID, balance); err != nil {
				return err
			}
			committed = *p
			return tx.InsertPosting(ctx, &committed)
		})
	})
	if err != nil {
		return err
	}
	*p = committed

	if p.Kind == domain.PostingExpense {
		s.checkBudget(ctx, p)
	}
	return nil
}

func (s *postingService) validate(p *domain.Posting) error {
	if p.Kind != domain.PostingExpense && p.Kind != domain.PostingRevenue {
		return fmt.Errorf("%w: unknown posting type %q", domain.ErrValidation, p.Kind)
	}
	if err := domain.CheckPositiveAmount("amount", p.Amount); err != nil {
		return err
	}
	if p.AccountID <= 0 {
		return fmt.Errorf("%w: account is required", domain.ErrValidation)
	}
	if p.UserID <= 0 {
		return fmt.Errorf("%w: actor is required", domain.ErrUnauthorized)
	}
	p.Category = strings.TrimSpace(p.Category)
	if p.Category == "" {
		p.Category = defaultCategory
	}
	if p.PostedOn.IsZero() {
		p.PostedOn = domain.StartOfDay(s.now())
	}
	return nil
}

// checkBudget alerts the user the first time an expense pushes a category
// budget past its alert threshold or past its amount.
func (s *postingService) checkBudget(ctx context.Context, p *domain.Posting) {
	month := utils.MonthKey(p.PostedOn)
	budget, err := s.budgetRepo.FindForCategory(ctx, p.UserID, p.Category, month)
	if err != nil {
		if !errors.Is(err, domain.ErrNotFound) {
			logger.Warn("Failed to load budget", "userID", p.UserID, "category", p.Category, "error", err)
		}
		return
	}

	from, to := utils.MonthBounds(p.PostedOn)
	totals, err := s.reportRepo.ExpensesByCategory(ctx, p.UserID, from, to)
	if err != nil {
		logger.Warn("Failed to compute budget consumption", "budgetID", budget.ID, "error", err)
		return
	}
	spent := decimal.Zero
	for _, t := range totals {
		if t.Category == p.Category {
			spent = t.Total
		}
	}

	before := domain.EvaluateBudget(*budget, spent.Sub(p.Amount))
	after := domain.EvaluateBudget(*budget, spent)
	if (!after.Alert || before.Alert) && (!after.Exceeded || before.Exceeded) {
		return
	}

	title := "Alerte budget"
	if after.Exceeded {
		title = "Budget dépassé"
	}
	note := &domain.Notification{
		UserID:  p.UserID,
		Title:   title,
		Message: fmt.Sprintf("%s%% du budget %s de %s consommé", after.Percent.StringFixed(2), p.Category, month),
		Attributes: map[string]string{
			"type":      "BUDGET_ALERT",
			"budget_id": fmt.Sprintf("%d", budget.ID),
		},
	}
	if err := s.noteSvc.Notify(ctx, note); err != nil {
		logger.Warn("Failed to record budget notification", "budgetID", budget.ID, "error", err)
	}
	user, err := s.userRepo.GetByID(ctx, p.UserID)
	if err != nil {
		logger.Warn("Failed to load user for budget alert", "userID", p.UserID, "error", err)
		return
	}
	if err := s.emailSvc.SendBudgetAlert(ctx, user.Email, user.Name, p.Category, month, after.Percent.StringFixed(2)); err != nil {
		logger.Warn("Failed to send budget alert", "budgetID", budget.ID, "error", err)
	}
}
