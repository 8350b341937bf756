package jobs

import (
	"context"
	"time"

	"github.com/stretchr/testify/mock"

	"github.com/thonny3/suivi-buget-perso-sub000/internal/domain"
)

type mockObjectiveService struct {
	mock.Mock
}

func (m *mockObjectiveService) CreateObjective(ctx context.Context, userID int32, o *domain.Objective) error {
	return m.Called(ctx, userID, o).Error(0)
}
func (m *mockObjectiveService) GetObjective(ctx context.Context, userID, id int32) (*domain.Objective, error) {
	args := m.Called(ctx, userID, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Objective), args.Error(1)
}
func (m *mockObjectiveService) ListObjectives(ctx context.Context, userID int32) ([]domain.Objective, error) {
	args := m.Called(ctx, userID)
	return args.Get(0).([]domain.Objective), args.Error(1)
}
func (m *mockObjectiveService) UpdateObjective(ctx context.Context, userID int32, o *domain.Objective) (*domain.Objective, error) {
	args := m.Called(ctx, userID, o)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Objective), args.Error(1)
}
func (m *mockObjectiveService) DeleteObjective(ctx context.Context, userID, id int32) error {
	return m.Called(ctx, userID, id).Error(0)
}
func (m *mockObjectiveService) ListContributions(ctx context.Context, userID, id int32) ([]domain.Contribution, error) {
	args := m.Called(ctx, userID, id)
	return args.Get(0).([]domain.Contribution), args.Error(1)
}
func (m *mockObjectiveService) RecomputeStatuses(ctx context.Context, today time.Time) (int, error) {
	args := m.Called(ctx, today)
	return args.Int(0), args.Error(1)
}

type mockDebtService struct {
	mock.Mock
}

func (m *mockDebtService) CreateDebt(ctx context.Context, userID int32, d *domain.Debt) error {
	return m.Called(ctx, userID, d).Error(0)
}
func (m *mockDebtService) GetDebt(ctx context.Context, userID, id int32) (*domain.Debt, error) {
	args := m.Called(ctx, userID, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Debt), args.Error(1)
}
func (m *mockDebtService) ListDebts(ctx context.Context, userID int32) ([]domain.Debt, error) {
	args := m.Called(ctx, userID)
	return args.Get(0).([]domain.Debt), args.Error(1)
}
func (m *mockDebtService) UpdateDebt(ctx context.Context, userID int32, d *domain.Debt) (*domain.Debt, error) {
	args := m.Called(ctx, userID, d)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Debt), args.Error(1)
}
func (m *mockDebtService) DeleteDebt(ctx context.Context, userID, id int32) error {
	return m.Called(ctx, userID, id).Error(0)
}
func (m *mockDebtService) ListRepayments(ctx context.Context, userID, id int32) ([]domain.Repayment, error) {
	args := m.Called(ctx, userID, id)
	return args.Get(0).([]domain.Repayment), args.Error(1)
}
func (m *mockDebtService) RecomputeStatuses(ctx context.Context, today time.Time) ([]domain.Debt, error) {
	args := m.Called(ctx, today)
	return args.Get(0).([]domain.Debt), args.Error(1)
}

type mockSubscriptionService struct {
	mock.Mock
}

func (m *mockSubscriptionService) CreateSubscription(ctx context.Context, userID int32, s *domain.Subscription) error {
	return m.Called(ctx, userID, s).Error(0)
}
func (m *mockSubscriptionService) ListSubscriptions(ctx context.Context, userID int32) ([]domain.Subscription, error) {
	args := m.Called(ctx, userID)
	return args.Get(0).([]domain.Subscription), args.Error(1)
}
func (m *mockSubscriptionService) DeleteSubscription(ctx context.Context, userID, id int32) error {
	return m.Called(ctx, userID, id).Error(0)
}
func (m *mockSubscriptionService) ChargeDue(ctx context.Context, asOf time.Time) (int, error) {
	args := m.Called(ctx, asOf)
	return args.Int(0), args.Error(1)
}

type mockNotificationService struct {
	mock.Mock
}

func (m *mockNotificationService) GetNotifications(ctx context.Context, userID int32, page, pageSize int32) ([]domain.Notification, int32, error) {
	args := m.Called(ctx, userID, page, pageSize)
	return args.Get(0).([]domain.Notification), args.Get(1).(int32), args.Error(2)
}
func (m *mockNotificationService) MarkAsRead(ctx context.Context, userID, id int32) error {
	return m.Called(ctx, userID, id).Error(0)
}
func (m *mockNotificationService) Notify(ctx context.Context, note *domain.Notification) error {
	return m.Called(ctx, note).Error(0)
}

type mockEmailService struct {
	mock.Mock
}

func (m *mockEmailService) SendObjectiveReached(ctx context.Context, email, name, objective string, target string) error {
	return m.Called(ctx, email, name, objective, target).Error(0)
}
func (m *mockEmailService) SendBudgetAlert(ctx context.Context, email, name, category, month string, percent string) error {
	return m.Called(ctx, email, name, category, month, percent).Error(0)
}
func (m *mockEmailService) SendDebtOverdue(ctx context.Context, email, name, debt, remaining string, dueDate time.Time) error {
	return m.Called(ctx, email, name, debt, remaining, dueDate).Error(0)
}
func (m *mockEmailService) SendShareInvitation(ctx context.Context, email, name, ownerName, account string, role domain.ShareRole) error {
	return m.Called(ctx, email, name, ownerName, account, role).Error(0)
}
func (m *mockEmailService) SendSubscriptionFailed(ctx context.Context, email, name, subscription, amount string) error {
	return m.Called(ctx, email, name, subscription, amount).Error(0)
}

type mockUserRepo struct {
	mock.Mock
}

func (m *mockUserRepo) Create(ctx context.Context, u *domain.User) error {
	return m.Called(ctx, u).Error(0)
}
func (m *mockUserRepo) GetByID(ctx context.Context, id int32) (*domain.User, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.User), args.Error(1)
}
func (m *mockUserRepo) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	args := m.Called(ctx, email)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.User), args.Error(1)
}

type mockDebtRepo struct {
	mock.Mock
}

func (m *mockDebtRepo) Create(ctx context.Context, d *domain.Debt) error {
	return m.Called(ctx, d).Error(0)
}
func (m *mockDebtRepo) GetByID(ctx context.Context, id int32) (*domain.Debt, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Debt), args.Error(1)
}
func (m *mockDebtRepo) ListByUser(ctx context.Context, userID int32) ([]domain.Debt, error) {
	args := m.Called(ctx, userID)
	return args.Get(0).([]domain.Debt), args.Error(1)
}
func (m *mockDebtRepo) Update(ctx context.Context, d *domain.Debt) error {
	return m.Called(ctx, d).Error(0)
}
func (m *mockDebtRepo) Delete(ctx context.Context, id int32) error {
	return m.Called(ctx, id).Error(0)
}
func (m *mockDebtRepo) ListOpen(ctx context.Context) ([]domain.Debt, error) {
	args := m.Called(ctx)
	return args.Get(0).([]domain.Debt), args.Error(1)
}
func (m *mockDebtRepo) ListRepayments(ctx context.Context, debtID int32) ([]domain.Repayment, error) {
	args := m.Called(ctx, debtID)
	return args.Get(0).([]domain.Repayment), args.Error(1)
}
