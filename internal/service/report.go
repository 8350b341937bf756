package service

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
	"golang.org/x/sync/errgroup"

	"github.com/thonny3/suivi-buget-perso-sub000/internal/domain"
	"github.com/thonny3/suivi-buget-perso-sub000/internal/logger"
	"github.com/thonny3/suivi-buget-perso-sub000/internal/repository"
	"github.com/thonny3/suivi-buget-perso-sub000/internal/utils"
)

const seriesMonths = 6

type reportService struct {
	reportRepo    repository.ReportRepository
	debtRepo      repository.DebtRepository
	objectiveRepo repository.ObjectiveRepository
	budgetRepo    repository.BudgetRepository
	subRepo       repository.SubscriptionRepository
}

func NewReportService(
	reportRepo repository.ReportRepository,
	debtRepo repository.DebtRepository,
	objectiveRepo repository.ObjectiveRepository,
	budgetRepo repository.BudgetRepository,
	subRepo repository.SubscriptionRepository,
) ReportService {
	return &reportService{
		reportRepo:    reportRepo,
		debtRepo:      debtRepo,
		objectiveRepo: objectiveRepo,
		budgetRepo:    budgetRepo,
		subRepo:       subRepo,
	}
}

// Dashboard reads every section independently; nothing here writes.
func (s *reportService) Dashboard(ctx context.Context, userID int32, now time.Time) (*domain.Dashboard, error) {
	logger.EnterMethod("reportService.Dashboard", "userID", userID)

	monthStart, monthEnd := utils.MonthBounds(now)
	seriesStart := utils.AddMonthsClamped(monthStart, -(seriesMonths - 1))
	d := &domain.Dashboard{}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		d.TotalBalance, d.AccountCount, err = s.reportRepo.AccountTotals(gctx, userID)
		return err
	})
	g.Go(func() error {
		var err error
		d.MonthRevenue, d.MonthExpense, err = s.reportRepo.PostingTotals(gctx, userID, monthStart, monthEnd)
		return err
	})
	g.Go(func() error {
		var err error
		d.ExpensesByCategory, err = s.reportRepo.ExpensesByCategory(gctx, userID, monthStart, monthEnd)
		return err
	})
	g.Go(func() error {
		points, err := s.reportRepo.MonthlySeries(gctx, userID, seriesStart, monthEnd)
		if err != nil {
			return err
		}
		d.MonthlySeries = fillSeries(points, utils.LastMonths(now, seriesMonths))
		return nil
	})
	g.Go(func() error {
		debts, err := s.debtRepo.ListByUser(gctx, userID)
		if err != nil {
			return err
		}
		d.Debts = debtOverview(debts, now)
		return nil
	})
	g.Go(func() error {
		objectives, err := s.objectiveRepo.ListByUser(gctx, userID)
		if err != nil {
			return err
		}
		d.Objectives = objectiveOverview(objectives, now)
		return nil
	})
	g.Go(func() error {
		var err error
		d.Budgets, err = budgetStatuses(gctx, s.budgetRepo, s.reportRepo, userID, monthStart)
		return err
	})
	g.Go(func() error {
		subs, err := s.subRepo.ListByUser(gctx, userID)
		if err != nil {
			return err
		}
		d.Subscriptions = subscriptionOverview(subs)
		return nil
	})

	if err := g.Wait(); err != nil {
		logger.ExitMethodWithError("reportService.Dashboard", err, "userID", userID)
		return nil, err
	}
	if d.ExpensesByCategory == nil {
		d.ExpensesByCategory = []domain.CategoryTotal{}
	}
	logger.ExitMethod("reportService.Dashboard", "userID", userID, "accounts", d.AccountCount)
	return d, nil
}

// fillSeries returns one point per month key, zero-filled where the store had no rows.
func fillSeries(points []domain.MonthlyPoint, months []string) []domain.MonthlyPoint {
	byMonth := make(map[string]domain.MonthlyPoint, len(points))
	for _, p := range points {
		byMonth[p.Month] = p
	}
	series := make([]domain.MonthlyPoint, 0, len(months))
	for _, m := range months {
		p, ok := byMonth[m]
		if !ok {
			p = domain.MonthlyPoint{Month: m, Revenue: decimal.Zero, Expense: decimal.Zero}
		}
		series = append(series, p)
	}
	return series
}

// debtOverview counts debts by status derived at now, not by the stored column.
func debtOverview(debts []domain.Debt, now time.Time) domain.DebtOverview {
	o := domain.DebtOverview{
		ByStatus: map[domain.DebtStatus]int32{
			domain.DebtStatusOngoing: 0,
			domain.DebtStatusLate:    0,
			domain.DebtStatusSettled: 0,
		},
		TotalBorrowed: decimal.Zero,
		TotalLent:     decimal.Zero,
	}
	for _, d := range debts {
		o.ByStatus[domain.DeriveDebtStatus(d.RemainingAmount, d.DueDate, now)]++
		if !d.RemainingAmount.IsPositive() {
			continue
		}
		if d.Direction == domain.DebtDirectionLent {
			o.TotalLent = o.TotalLent.Add(d.RemainingAmount)
		} else {
			o.TotalBorrowed = o.TotalBorrowed.Add(d.RemainingAmount)
		}
	}
	return o
}

func objectiveOverview(objectives []domain.Objective, now time.Time) domain.ObjectiveOverview {
	o := domain.ObjectiveOverview{
		ByStatus: map[domain.ObjectiveStatus]int32{
			domain.ObjectiveStatusInProgress: 0,
			domain.ObjectiveStatusReached:    0,
			domain.ObjectiveStatusLate:       0,
		},
		TotalSaved:  decimal.Zero,
		TotalTarget: decimal.Zero,
	}
	for _, obj := range objectives {
		o.ByStatus[domain.DeriveObjectiveStatus(obj.CurrentAmount, obj.TargetAmount, obj.Deadline, now)]++
		o.TotalSaved = o.TotalSaved.Add(obj.CurrentAmount)
		o.TotalTarget = o.TotalTarget.Add(obj.TargetAmount)
	}
	return o
}

func subscriptionOverview(subs []domain.Subscription) domain.SubscriptionOverview {
	o := domain.SubscriptionOverview{MonthlyCost: decimal.Zero}
	for i := range subs {
		if !subs[i].Active {
			continue
		}
		o.ActiveCount++
		o.MonthlyCost = o.MonthlyCost.Add(subs[i].MonthlyCost())
	}
	return o
}
