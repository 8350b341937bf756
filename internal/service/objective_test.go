package service_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/thonny3/suivi-buget-perso-sub000/internal/domain"
	"github.com/thonny3/suivi-buget-perso-sub000/internal/repository/memory"
	"github.com/thonny3/suivi-buget-perso-sub000/internal/service"
)

func TestObjectiveService_CreateObjective(t *testing.T) {
	repo := new(MockObjectiveRepo)
	svc := service.NewObjectiveService(repo, memory.NewLedger(time.Second), testPolicy())
	ctx := context.Background()

	repo.On("Create", ctx, mock.MatchedBy(func(o *domain.Objective) bool {
		return o.UserID == owner && o.CurrentAmount.IsZero() && o.Status == domain.ObjectiveStatusInProgress
	})).Return(nil).Once()

	o := &domain.Objective{Name: " Maison ", TargetAmount: dec("5000"), CurrentAmount: dec("999")}
	require.NoError(t, svc.CreateObjective(ctx, owner, o))
	assert.Equal(t, "Maison", o.Name)
	assert.True(t, o.Progress.IsZero())

	err := svc.CreateObjective(ctx, owner, &domain.Objective{Name: "x", TargetAmount: dec("0")})
	assert.ErrorIs(t, err, domain.ErrValidation)
	repo.AssertExpectations(t)
}

func TestObjectiveService_Ownership(t *testing.T) {
	repo := new(MockObjectiveRepo)
	svc := service.NewObjectiveService(repo, memory.NewLedger(time.Second), testPolicy())
	ctx := context.Background()

	repo.On("GetByID", ctx, int32(5)).Return(&domain.Objective{ID: 5, UserID: 2, TargetAmount: dec("10")}, nil)
	_, err := svc.GetObjective(ctx, owner, 5)
	assert.ErrorIs(t, err, domain.ErrForbidden)

	repo.On("GetByID", ctx, int32(6)).Return(&domain.Objective{ID: 6, UserID: owner, TargetAmount: dec("10"), CurrentAmount: dec("4")}, nil)
	err = svc.DeleteObjective(ctx, owner, 6)
	assert.ErrorIs(t, err, domain.ErrConflict)
	repo.AssertNotCalled(t, "Delete", mock.Anything, mock.Anything)
}

func TestObjectiveService_UpdateObjectiveRederivesStatus(t *testing.T) {
	repo := new(MockObjectiveRepo)
	ledger := memory.NewLedger(time.Second)
	svc := service.NewObjectiveService(repo, ledger, testPolicy())
	ctx := context.Background()

	stored := ledger.PutObjective(domain.Objective{UserID: owner, Name: "Vélo", TargetAmount: dec("800"), CurrentAmount: dec("600"), Status: domain.ObjectiveStatusInProgress})
	loaded := stored
	repo.On("GetByID", ctx, stored.ID).Return(&loaded, nil).Once()
	repo.On("Update", ctx, mock.MatchedBy(func(o *domain.Objective) bool {
		return o.TargetAmount.Equal(dec("600"))
	})).Return(nil).Once()

	// The memory ledger is not wired to the mock repository, mirror the new target there.
	stored.TargetAmount = dec("600")
	ledger.PutObjective(stored)

	updated, err := svc.UpdateObjective(ctx, owner, &domain.Objective{ID: stored.ID, TargetAmount: dec("600")})
	require.NoError(t, err)
	assert.Equal(t, domain.ObjectiveStatusReached, updated.Status)
	assert.True(t, dec("100").Equal(updated.Progress))

	inLedger, _ := ledger.Objective(stored.ID)
	assert.Equal(t, domain.ObjectiveStatusReached, inLedger.Status)
	repo.AssertExpectations(t)
}

func TestObjectiveService_RecomputeStatuses(t *testing.T) {
	repo := new(MockObjectiveRepo)
	ledger := memory.NewLedger(time.Second)
	svc := service.NewObjectiveService(repo, ledger, testPolicy())
	ctx := context.Background()
	today := time.Date(2026, 6, 15, 9, 0, 0, 0, time.UTC)
	yesterday := today.AddDate(0, 0, -1)
	tomorrow := today.AddDate(0, 0, 1)

	late := ledger.PutObjective(domain.Objective{UserID: owner, TargetAmount: dec("100"), CurrentAmount: dec("10"), Deadline: &yesterday, Status: domain.ObjectiveStatusInProgress})
	fine := ledger.PutObjective(domain.Objective{UserID: owner, TargetAmount: dec("100"), CurrentAmount: dec("10"), Deadline: &tomorrow, Status: domain.ObjectiveStatusInProgress})
	repo.On("ListUnreached", ctx).Return([]domain.Objective{late, fine}, nil).Once()

	changed, err := svc.RecomputeStatuses(ctx, today)
	require.NoError(t, err)
	assert.Equal(t, 1, changed)

	stored, _ := ledger.Objective(late.ID)
	assert.Equal(t, domain.ObjectiveStatusLate, stored.Status)
	stored, _ = ledger.Objective(fine.ID)
	assert.Equal(t, domain.ObjectiveStatusInProgress, stored.Status)

	// Running again over fresh rows changes nothing.
	late.Status = domain.ObjectiveStatusLate
	repo.ExpectedCalls = nil
	repo.On("ListUnreached", ctx).Return([]domain.Objective{late, fine}, nil).Once()
	changed, err = svc.RecomputeStatuses(ctx, today)
	require.NoError(t, err)
	assert.Zero(t, changed)
}

func TestDebtService_CreateDebt(t *testing.T) {
	repo := new(MockDebtRepo)
	svc := service.NewDebtService(repo, memory.NewLedger(time.Second), testPolicy())
	ctx := context.Background()

	repo.On("Create", ctx, mock.MatchedBy(func(d *domain.Debt) bool {
		return d.RemainingAmount.Equal(dec("1200")) && d.Status == domain.DebtStatusOngoing && !d.StartDate.IsZero()
	})).Return(nil).Once()

	require.NoError(t, svc.CreateDebt(ctx, owner, &domain.Debt{Name: "Prêt moto", InitialAmount: dec("1200"), Direction: domain.DebtDirectionBorrowed}))

	start := time.Date(2026, 1, 10, 0, 0, 0, 0, time.UTC)
	before := start.AddDate(0, 0, -1)
	tests := []struct {
		name string
		debt domain.Debt
	}{
		{"no name", domain.Debt{InitialAmount: dec("1"), Direction: domain.DebtDirectionLent}},
		{"no amount", domain.Debt{Name: "x", Direction: domain.DebtDirectionLent}},
		{"bad direction", domain.Debt{Name: "x", InitialAmount: dec("1"), Direction: "gift"}},
		{"negative rate", domain.Debt{Name: "x", InitialAmount: dec("1"), Direction: domain.DebtDirectionLent, InterestRate: dec("-1")}},
		{"due before start", domain.Debt{Name: "x", InitialAmount: dec("1"), Direction: domain.DebtDirectionLent, StartDate: start, DueDate: &before}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d := tt.debt
			assert.ErrorIs(t, svc.CreateDebt(ctx, owner, &d), domain.ErrValidation)
		})
	}
	repo.AssertExpectations(t)
}

func TestDebtService_RecomputeStatuses(t *testing.T) {
	repo := new(MockDebtRepo)
	ledger := memory.NewLedger(time.Second)
	svc := service.NewDebtService(repo, ledger, testPolicy())
	ctx := context.Background()
	today := time.Date(2026, 6, 15, 9, 0, 0, 0, time.UTC)
	yesterday := today.AddDate(0, 0, -1)
	dueToday := domain.StartOfDay(today)

	overdue := ledger.PutDebt(domain.Debt{UserID: owner, Name: "Loyer", RemainingAmount: dec("50"), DueDate: &yesterday, Status: domain.DebtStatusOngoing})
	boundary := ledger.PutDebt(domain.Debt{UserID: owner, RemainingAmount: dec("50"), DueDate: &dueToday, Status: domain.DebtStatusOngoing})
	repo.On("ListOpen", ctx).Return([]domain.Debt{overdue, boundary}, nil).Once()

	changed, err := svc.RecomputeStatuses(ctx, today)
	require.NoError(t, err)
	require.Len(t, changed, 1)
	assert.Equal(t, overdue.ID, changed[0].ID)
	assert.Equal(t, domain.DebtStatusLate, changed[0].Status)

	stored, _ := ledger.Debt(boundary.ID)
	assert.Equal(t, domain.DebtStatusOngoing, stored.Status)
}

func TestDebtService_ListDebtsDerivesFreshStatus(t *testing.T) {
	repo := new(MockDebtRepo)
	svc := service.NewDebtService(repo, memory.NewLedger(time.Second), testPolicy())
	ctx := context.Background()
	past := time.Now().AddDate(0, 0, -3)

	repo.On("ListByUser", ctx, owner).Return([]domain.Debt{
		{ID: 1, UserID: owner, RemainingAmount: dec("10"), DueDate: &past, Status: domain.DebtStatusOngoing},
		{ID: 2, UserID: owner, RemainingAmount: dec("0"), Status: domain.DebtStatusOngoing},
	}, nil).Once()

	debts, err := svc.ListDebts(ctx, owner)
	require.NoError(t, err)
	assert.Equal(t, domain.DebtStatusLate, debts[0].Status)
	assert.Equal(t, domain.DebtStatusSettled, debts[1].Status)
}
