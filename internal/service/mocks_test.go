package service_test

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/mock"

	"github.com/thonny3/suivi-buget-perso-sub000/internal/domain"
)

// MockUserRepo
type MockUserRepo struct {
	mock.Mock
}

func (m *MockUserRepo) Create(ctx context.Context, user *domain.User) error {
	args := m.Called(ctx, user)
	return args.Error(0)
}
func (m *MockUserRepo) GetByID(ctx context.Context, id int32) (*domain.User, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.User), args.Error(1)
}
func (m *MockUserRepo) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	args := m.Called(ctx, email)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.User), args.Error(1)
}

// MockAccountRepo
type MockAccountRepo struct {
	mock.Mock
}

func (m *MockAccountRepo) Create(ctx context.Context, account *domain.Account) error {
	args := m.Called(ctx, account)
	return args.Error(0)
}
func (m *MockAccountRepo) GetByID(ctx context.Context, id int32) (*domain.Account, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Account), args.Error(1)
}
func (m *MockAccountRepo) ListAccessible(ctx context.Context, userID int32) ([]domain.Account, error) {
	args := m.Called(ctx, userID)
	return args.Get(0).([]domain.Account), args.Error(1)
}
func (m *MockAccountRepo) Update(ctx context.Context, account *domain.Account, allowNegative bool) error {
	args := m.Called(ctx, account, allowNegative)
	return args.Error(0)
}
func (m *MockAccountRepo) Delete(ctx context.Context, id int32) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

// MockShareRepo
type MockShareRepo struct {
	mock.Mock
}

func (m *MockShareRepo) Upsert(ctx context.Context, grant *domain.ShareGrant) error {
	args := m.Called(ctx, grant)
	return args.Error(0)
}
func (m *MockShareRepo) GetRole(ctx context.Context, accountID, userID int32) (domain.ShareRole, error) {
	args := m.Called(ctx, accountID, userID)
	return args.Get(0).(domain.ShareRole), args.Error(1)
}
func (m *MockShareRepo) ListByAccount(ctx context.Context, accountID int32) ([]domain.ShareGrant, error) {
	args := m.Called(ctx, accountID)
	return args.Get(0).([]domain.ShareGrant), args.Error(1)
}
func (m *MockShareRepo) Delete(ctx context.Context, accountID, userID int32) error {
	args := m.Called(ctx, accountID, userID)
	return args.Error(0)
}

// MockObjectiveRepo
type MockObjectiveRepo struct {
	mock.Mock
}

func (m *MockObjectiveRepo) Create(ctx context.Context, o *domain.Objective) error {
	args := m.Called(ctx, o)
	return args.Error(0)
}
func (m *MockObjectiveRepo) GetByID(ctx context.Context, id int32) (*domain.Objective, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Objective), args.Error(1)
}
func (m *MockObjectiveRepo) ListByUser(ctx context.Context, userID int32) ([]domain.Objective, error) {
	args := m.Called(ctx, userID)
	return args.Get(0).([]domain.Objective), args.Error(1)
}
func (m *MockObjectiveRepo) Update(ctx context.Context, o *domain.Objective) error {
	args := m.Called(ctx, o)
	return args.Error(0)
}
func (m *MockObjectiveRepo) Delete(ctx context.Context, id int32) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}
func (m *MockObjectiveRepo) ListUnreached(ctx context.Context) ([]domain.Objective, error) {
	args := m.Called(ctx)
	return args.Get(0).([]domain.Objective), args.Error(1)
}
func (m *MockObjectiveRepo) ListContributions(ctx context.Context, objectiveID int32) ([]domain.Contribution, error) {
	args := m.Called(ctx, objectiveID)
	return args.Get(0).([]domain.Contribution), args.Error(1)
}

// MockDebtRepo
type MockDebtRepo struct {
	mock.Mock
}

func (m *MockDebtRepo) Create(ctx context.Context, d *domain.Debt) error {
	args := m.Called(ctx, d)
	return args.Error(0)
}
func (m *MockDebtRepo) GetByID(ctx context.Context, id int32) (*domain.Debt, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Debt), args.Error(1)
}
func (m *MockDebtRepo) ListByUser(ctx context.Context, userID int32) ([]domain.Debt, error) {
	args := m.Called(ctx, userID)
	return args.Get(0).([]domain.Debt), args.Error(1)
}
func (m *MockDebtRepo) Update(ctx context.Context, d *domain.Debt) error {
	args := m.Called(ctx, d)
	return args.Error(0)
}
func (m *MockDebtRepo) Delete(ctx context.Context, id int32) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}
func (m *MockDebtRepo) ListOpen(ctx context.Context) ([]domain.Debt, error) {
	args := m.Called(ctx)
	return args.Get(0).([]domain.Debt), args.Error(1)
}
func (m *MockDebtRepo) ListRepayments(ctx context.Context, debtID int32) ([]domain.Repayment, error) {
	args := m.Called(ctx, debtID)
	return args.Get(0).([]domain.Repayment), args.Error(1)
}

// MockTransferRepo
type MockTransferRepo struct {
	mock.Mock
}

func (m *MockTransferRepo) ListForUser(ctx context.Context, userID int32, limit, offset int32) ([]domain.Transfer, int32, error) {
	args := m.Called(ctx, userID, limit, offset)
	return args.Get(0).([]domain.Transfer), args.Get(1).(int32), args.Error(2)
}

// MockBudgetRepo
type MockBudgetRepo struct {
	mock.Mock
}

func (m *MockBudgetRepo) Upsert(ctx context.Context, b *domain.Budget) error {
	args := m.Called(ctx, b)
	return args.Error(0)
}
func (m *MockBudgetRepo) GetByID(ctx context.Context, id int32) (*domain.Budget, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Budget), args.Error(1)
}
func (m *MockBudgetRepo) ListByMonth(ctx context.Context, userID int32, month string) ([]domain.Budget, error) {
	args := m.Called(ctx, userID, month)
	return args.Get(0).([]domain.Budget), args.Error(1)
}
func (m *MockBudgetRepo) FindForCategory(ctx context.Context, userID int32, category, month string) (*domain.Budget, error) {
	args := m.Called(ctx, userID, category, month)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Budget), args.Error(1)
}
func (m *MockBudgetRepo) Delete(ctx context.Context, id, userID int32) error {
	args := m.Called(ctx, id, userID)
	return args.Error(0)
}

// MockReportRepo
type MockReportRepo struct {
	mock.Mock
}

func (m *MockReportRepo) AccountTotals(ctx context.Context, userID int32) (decimal.Decimal, int32, error) {
	args := m.Called(ctx, userID)
	return args.Get(0).(decimal.Decimal), args.Get(1).(int32), args.Error(2)
}
func (m *MockReportRepo) PostingTotals(ctx context.Context, userID int32, from, to time.Time) (decimal.Decimal, decimal.Decimal, error) {
	args := m.Called(ctx, userID, from, to)
	return args.Get(0).(decimal.Decimal), args.Get(1).(decimal.Decimal), args.Error(2)
}
func (m *MockReportRepo) ExpensesByCategory(ctx context.Context, userID int32, from, to time.Time) ([]domain.CategoryTotal, error) {
	args := m.Called(ctx, userID, from, to)
	return args.Get(0).([]domain.CategoryTotal), args.Error(1)
}
func (m *MockReportRepo) MonthlySeries(ctx context.Context, userID int32, from, to time.Time) ([]domain.MonthlyPoint, error) {
	args := m.Called(ctx, userID, from, to)
	return args.Get(0).([]domain.MonthlyPoint), args.Error(1)
}

// MockSubscriptionRepo
type MockSubscriptionRepo struct {
	mock.Mock
}

func (m *MockSubscriptionRepo) Create(ctx context.Context, sub *domain.Subscription) error {
	args := m.Called(ctx, sub)
	return args.Error(0)
}
func (m *MockSubscriptionRepo) GetByID(ctx context.Context, id int32) (*domain.Subscription, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Subscription), args.Error(1)
}
func (m *MockSubscriptionRepo) ListByUser(ctx context.Context, userID int32) ([]domain.Subscription, error) {
	args := m.Called(ctx, userID)
	return args.Get(0).([]domain.Subscription), args.Error(1)
}
func (m *MockSubscriptionRepo) ListDue(ctx context.Context, asOf time.Time) ([]domain.Subscription, error) {
	args := m.Called(ctx, asOf)
	return args.Get(0).([]domain.Subscription), args.Error(1)
}
func (m *MockSubscriptionRepo) Delete(ctx context.Context, id, userID int32) error {
	args := m.Called(ctx, id, userID)
	return args.Error(0)
}

// MockNotificationRepo
type MockNotificationRepo struct {
	mock.Mock
}

func (m *MockNotificationRepo) Create(ctx context.Context, note *domain.Notification) error {
	args := m.Called(ctx, note)
	return args.Error(0)
}
func (m *MockNotificationRepo) List(ctx context.Context, userID int32, limit, offset int32) ([]domain.Notification, int32, error) {
	args := m.Called(ctx, userID, limit, offset)
	return args.Get(0).([]domain.Notification), args.Get(1).(int32), args.Error(2)
}
func (m *MockNotificationRepo) MarkAsRead(ctx context.Context, id, userID int32) error {
	args := m.Called(ctx, id, userID)
	return args.Error(0)
}

// MockNotificationService
type MockNotificationService struct {
	mock.Mock
}

func (m *MockNotificationService) GetNotifications(ctx context.Context, userID int32, page, pageSize int32) ([]domain.Notification, int32, error) {
	args := m.Called(ctx, userID, page, pageSize)
	return args.Get(0).([]domain.Notification), args.Get(1).(int32), args.Error(2)
}
func (m *MockNotificationService) MarkAsRead(ctx context.Context, userID, notificationID int32) error {
	args := m.Called(ctx, userID, notificationID)
	return args.Error(0)
}
func (m *MockNotificationService) Notify(ctx context.Context, note *domain.Notification) error {
	args := m.Called(ctx, note)
	return args.Error(0)
}

// MockEmailService
type MockEmailService struct {
	mock.Mock
}

func (m *MockEmailService) SendObjectiveReached(ctx context.Context, email, name, objective string, target string) error {
	args := m.Called(ctx, email, name, objective, target)
	return args.Error(0)
}
func (m *MockEmailService) SendBudgetAlert(ctx context.Context, email, name, category, month string, percent string) error {
	args := m.Called(ctx, email, name, category, month, percent)
	return args.Error(0)
}
func (m *MockEmailService) SendDebtOverdue(ctx context.Context, email, name, debt, remaining string, dueDate time.Time) error {
	args := m.Called(ctx, email, name, debt, remaining, dueDate)
	return args.Error(0)
}
func (m *MockEmailService) SendShareInvitation(ctx context.Context, email, name, ownerName, account string, role domain.ShareRole) error {
	args := m.Called(ctx, email, name, ownerName, account, role)
	return args.Error(0)
}
func (m *MockEmailService) SendSubscriptionFailed(ctx context.Context, email, name, subscription, amount string) error {
	args := m.Called(ctx, email, name, subscription, amount)
	return args.Error(0)
}

// MockPostingService
type MockPostingService struct {
	mock.Mock
}

func (m *MockPostingService) Record(ctx context.Context, p *domain.Posting) error {
	args := m.Called(ctx, p)
	return args.Error(0)
}

func (m *MockPostingService) ChargeSubscription(ctx context.Context, sub domain.Subscription) (*domain.Posting, error) {
	args := m.Called(ctx, sub)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Posting), args.Error(1)
}
