package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/thonny3/suivi-buget-perso-sub000/internal/domain"
	"github.com/thonny3/suivi-buget-perso-sub000/internal/repository"
	"github.com/thonny3/suivi-buget-perso-sub000/internal/utils"
)

type budgetService struct {
	budgetRepo repository.BudgetRepository
	reportRepo repository.ReportRepository
	now        func() time.Time
}

func NewBudgetService(budgetRepo repository.BudgetRepository, reportRepo repository.ReportRepository) BudgetService {
	return &budgetService{budgetRepo: budgetRepo, reportRepo: reportRepo, now: time.Now}
}

func (s *budgetService) SetBudget(ctx context.Context, userID int32, b *domain.Budget) error {
	b.Category = strings.TrimSpace(b.Category)
	if b.Category == "" {
		return fmt.Errorf("%w: category is required", domain.ErrValidation)
	}
	if b.Month == "" {
		b.Month = utils.MonthKey(s.now())
	}
	if _, err := utils.ParseMonth(b.Month); err != nil {
		return fmt.Errorf("%w: %s", domain.ErrValidation, err.Error())
	}
	if err := domain.CheckPositiveAmount("budget amount", b.Amount); err != nil {
		return err
	}
	if b.AlertThreshold == 0 {
		b.AlertThreshold = domain.DefaultAlertThreshold
	}
	if b.AlertThreshold < 1 || b.AlertThreshold > 100 {
		return fmt.Errorf("%w: alert threshold must be between 1 and 100", domain.ErrValidation)
	}
	b.UserID = userID
	return s.budgetRepo.Upsert(ctx, b)
}

func (s *budgetService) ListBudgets(ctx context.Context, userID int32, month string) ([]domain.BudgetStatus, error) {
	start, _ := utils.MonthBounds(s.now())
	if month != "" {
		parsed, err := utils.ParseMonth(month)
		if err != nil {
			return nil, fmt.Errorf("%w: %s", domain.ErrValidation, err.Error())
		}
		start = parsed
	}
	return budgetStatuses(ctx, s.budgetRepo, s.reportRepo, userID, start)
}

func (s *budgetService) DeleteBudget(ctx context.Context, userID, budgetID int32) error {
	return s.budgetRepo.Delete(ctx, budgetID, userID)
}

// budgetStatuses evaluates every budget of the month starting at monthStart
// against that month's expenses.
func budgetStatuses(ctx context.Context, budgetRepo repository.BudgetRepository, reportRepo repository.ReportRepository, userID int32, monthStart time.Time) ([]domain.BudgetStatus, error) {
	budgets, err := budgetRepo.ListByMonth(ctx, userID, utils.MonthKey(monthStart))
	if err != nil {
		return nil, err
	}
	if len(budgets) == 0 {
		return []domain.BudgetStatus{}, nil
	}
	from, to := utils.MonthBounds(monthStart)
	totals, err := reportRepo.ExpensesByCategory(ctx, userID, from, to)
	if err != nil {
		return nil, err
	}
	spent := make(map[string]decimal.Decimal, len(totals))
	for _, t := range totals {
		spent[t.Category] = t.Total
	}

	statuses := make([]domain.BudgetStatus, 0, len(budgets))
	for _, b := range budgets {
		amount, ok := spent[b.Category]
		if !ok {
			amount = decimal.Zero
		}
		statuses = append(statuses, domain.EvaluateBudget(b, amount))
	}
	return statuses, nil
}
