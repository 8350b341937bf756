package service

import (
	"context"
	"time"

	"github.com/thonny3/suivi-buget-perso-sub000/internal/domain"
)

type AuthService interface {
	Register(ctx context.Context, name, email, password string) (*domain.User, string, string, error) // user, access, refresh
	Login(ctx context.Context, email, password string) (*domain.User, string, string, error)
	RefreshToken(ctx context.Context, refresh string) (string, string, error)
}

// TransferService is the Transfer Engine: every balance movement between
// accounts, objectives and debts goes through Apply.
type TransferService interface {
	Apply(ctx context.Context, req domain.TransferRequest) (*domain.TransferResult, error)
	History(ctx context.Context, userID int32, limit, offset int32) ([]domain.Transfer, int32, error)
}

type AccountService interface {
	CreateAccount(ctx context.Context, userID int32, account *domain.Account) error
	GetAccount(ctx context.Context, userID, accountID int32) (*domain.Account, error)
	ListAccounts(ctx context.Context, userID int32) ([]domain.Account, error)
	UpdateAccount(ctx context.Context, userID int32, account *domain.Account) (*domain.Account, error)
	DeleteAccount(ctx context.Context, userID, accountID int32) error
	ListOperations(ctx context.Context, userID, accountID int32, limit, offset int32) ([]domain.Posting, int32, error)
}

type ShareService interface {
	GrantAccess(ctx context.Context, actorID, accountID int32, email string, role domain.ShareRole) (*domain.ShareGrant, error)
	ListGrants(ctx context.Context, actorID, accountID int32) ([]domain.ShareGrant, error)
	RevokeAccess(ctx context.Context, actorID, accountID, userID int32) error
}

type ObjectiveService interface {
	CreateObjective(ctx context.Context, userID int32, objective *domain.Objective) error
	GetObjective(ctx context.Context, userID, objectiveID int32) (*domain.Objective, error)
	ListObjectives(ctx context.Context, userID int32) ([]domain.Objective, error)
	UpdateObjective(ctx context.Context, userID int32, objective *domain.Objective) (*domain.Objective, error)
	DeleteObjective(ctx context.Context, userID, objectiveID int32) error
	ListContributions(ctx context.Context, userID, objectiveID int32) ([]domain.Contribution, error)
	// RecomputeStatuses re-derives the status of every objective not yet reached
	// and persists the ones that changed.
	RecomputeStatuses(ctx context.Context, today time.Time) (int, error)
}

type DebtService interface {
	CreateDebt(ctx context.Context, userID int32, debt *domain.Debt) error
	GetDebt(ctx context.Context, userID, debtID int32) (*domain.Debt, error)
	ListDebts(ctx context.Context, userID int32) ([]domain.Debt, error)
	UpdateDebt(ctx context.Context, userID int32, debt *domain.Debt) (*domain.Debt, error)
	DeleteDebt(ctx context.Context, userID, debtID int32) error
	ListRepayments(ctx context.Context, userID, debtID int32) ([]domain.Repayment, error)
	// RecomputeStatuses re-derives the status of every open debt and returns
	// the debts that changed.
	RecomputeStatuses(ctx context.Context, today time.Time) ([]domain.Debt, error)
}

// PostingService records expenses and revenues against an account under the
// same lock discipline as the Transfer Engine.
type PostingService interface {
	Record(ctx context.Context, posting *domain.Posting) error
	// ChargeSubscription posts the expense for sub's current due date and
	// advances the due date in the same unit. domain.ErrConflict means that due
	// date was already charged.
	ChargeSubscription(ctx context.Context, sub domain.Subscription) (*domain.Posting, error)
}

type BudgetService interface {
	SetBudget(ctx context.Context, userID int32, budget *domain.Budget) error
	ListBudgets(ctx context.Context, userID int32, month string) ([]domain.BudgetStatus, error)
	DeleteBudget(ctx context.Context, userID, budgetID int32) error
}

type SubscriptionService interface {
	CreateSubscription(ctx context.Context, userID int32, sub *domain.Subscription) error
	ListSubscriptions(ctx context.Context, userID int32) ([]domain.Subscription, error)
	DeleteSubscription(ctx context.Context, userID, subID int32) error
	// ChargeDue posts an expense for every active subscription due on or before
	// asOf and returns how many were charged.
	ChargeDue(ctx context.Context, asOf time.Time) (int, error)
}

type ReportService interface {
	Dashboard(ctx context.Context, userID int32, now time.Time) (*domain.Dashboard, error)
}

type NotificationService interface {
	GetNotifications(ctx context.Context, userID int32, page, pageSize int32) ([]domain.Notification, int32, error)
	MarkAsRead(ctx context.Context, userID, notificationID int32) error
	Notify(ctx context.Context, note *domain.Notification) error
}

type EmailService interface {
	SendObjectiveReached(ctx context.Context, email, name, objective string, target string) error
	SendBudgetAlert(ctx context.Context, email, name, category, month string, percent string) error
	SendDebtOverdue(ctx context.Context, email, name, debt, remaining string, dueDate time.Time) error
	SendShareInvitation(ctx context.Context, email, name, ownerName, account string, role domain.ShareRole) error
	SendSubscriptionFailed(ctx context.Context, email, name, subscription, amount string) error
}
