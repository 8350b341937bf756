package repository

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	"github.com/thonny3/suivi-buget-perso-sub000/internal/domain"
)

type UserRepository interface {
	Create(ctx context.Context, user *domain.User) error
	GetByID(ctx context.Context, id int32) (*domain.User, error)
	GetByEmail(ctx context.Context, email string) (*domain.User, error)
}

type AccountRepository interface {
	Create(ctx context.Context, account *domain.Account) error
	GetByID(ctx context.Context, id int32) (*domain.Account, error)
	// ListAccessible returns owned accounts and accounts shared with userID, with Role set.
	ListAccessible(ctx context.Context, userID int32) ([]domain.Account, error)
	// Update renames or retypes an account. Unless allowNegative is set the row
	// is only written while its balance is not negative (ErrValidation otherwise).
	Update(ctx context.Context, account *domain.Account, allowNegative bool) error
	// Delete removes the account and cascades its share grants.
	Delete(ctx context.Context, id int32) error
}

type ShareRepository interface {
	Upsert(ctx context.Context, grant *domain.ShareGrant) error
	GetRole(ctx context.Context, accountID, userID int32) (domain.ShareRole, error)
	ListByAccount(ctx context.Context, accountID int32) ([]domain.ShareGrant, error)
	Delete(ctx context.Context, accountID, userID int32) error
}

type ObjectiveRepository interface {
	Create(ctx context.Context, objective *domain.Objective) error
	GetByID(ctx context.Context, id int32) (*domain.Objective, error)
	ListByUser(ctx context.Context, userID int32) ([]domain.Objective, error)
	// Update changes descriptive fields only; amounts and status move through the Ledger.
	Update(ctx context.Context, objective *domain.Objective) error
	// Delete removes an objective holding no funds; ErrConflict otherwise.
	Delete(ctx context.Context, id int32) error
	// ListUnreached returns objectives whose stored status is not Atteint.
	ListUnreached(ctx context.Context) ([]domain.Objective, error)
	ListContributions(ctx context.Context, objectiveID int32) ([]domain.Contribution, error)
}

type DebtRepository interface {
	Create(ctx context.Context, debt *domain.Debt) error
	GetByID(ctx context.Context, id int32) (*domain.Debt, error)
	ListByUser(ctx context.Context, userID int32) ([]domain.Debt, error)
	// Update changes descriptive fields only; amounts and status move through the Ledger.
	Update(ctx context.Context, debt *domain.Debt) error
	Delete(ctx context.Context, id int32) error
	// ListOpen returns debts whose stored status is not terminé.
	ListOpen(ctx context.Context) ([]domain.Debt, error)
	ListRepayments(ctx context.Context, debtID int32) ([]domain.Repayment, error)
}

type TransferRepository interface {
	// ListForUser returns transfers the user made or that touch an account they can read, newest first.
	ListForUser(ctx context.Context, userID int32, limit, offset int32) ([]domain.Transfer, int32, error)
}

type PostingRepository interface {
	ListByAccount(ctx context.Context, accountID int32, limit, offset int32) ([]domain.Posting, int32, error)
}

type BudgetRepository interface {
	// Upsert creates the budget or replaces the amount of the existing (user, category, month) row.
	Upsert(ctx context.Context, budget *domain.Budget) error
	GetByID(ctx context.Context, id int32) (*domain.Budget, error)
	ListByMonth(ctx context.Context, userID int32, month string) ([]domain.Budget, error)
	FindForCategory(ctx context.Context, userID int32, category, month string) (*domain.Budget, error)
	Delete(ctx context.Context, id, userID int32) error
}

type SubscriptionRepository interface {
	Create(ctx context.Context, sub *domain.Subscription) error
	GetByID(ctx context.Context, id int32) (*domain.Subscription, error)
	ListByUser(ctx context.Context, userID int32) ([]domain.Subscription, error)
	ListDue(ctx context.Context, asOf time.Time) ([]domain.Subscription, error)
	Delete(ctx context.Context, id, userID int32) error
}

type NotificationRepository interface {
	Create(ctx context.Context, note *domain.Notification) error
	List(ctx context.Context, userID int32, limit, offset int32) ([]domain.Notification, int32, error)
	MarkAsRead(ctx context.Context, id, userID int32) error
}

// ReportRepository serves the read-only aggregation queries behind the dashboard.
type ReportRepository interface {
	AccountTotals(ctx context.Context, userID int32) (decimal.Decimal, int32, error)
	PostingTotals(ctx context.Context, userID int32, from, to time.Time) (revenue, expense decimal.Decimal, err error)
	ExpensesByCategory(ctx context.Context, userID int32, from, to time.Time) ([]domain.CategoryTotal, error)
	MonthlySeries(ctx context.Context, userID int32, from, to time.Time) ([]domain.MonthlyPoint, error)
}

// Ledger runs balance mutations as one atomic unit. The callback either
// returns nil and every write commits, or returns an error and none do.
type Ledger interface {
	WithinTx(ctx context.Context, fn func(ctx context.Context, tx LedgerTx) error) error
}

// LedgerTx is the write surface available inside Ledger.WithinTx.
// Lock* calls take an exclusive lock held until the unit ends; lock waits are
// bounded and surface domain.ErrContention.
type LedgerTx interface {
	LockAccount(ctx context.Context, id int32) (*domain.Account, error)
	LockObjective(ctx context.Context, id int32) (*domain.Objective, error)
	LockDebt(ctx context.Context, id int32) (*domain.Debt, error)
	ShareRole(ctx context.Context, accountID, userID int32) (domain.ShareRole, error)

	UpdateAccountBalance(ctx context.Context, id int32, balance decimal.Decimal) error
	UpdateObjectiveProgress(ctx context.Context, id int32, current decimal.Decimal, status domain.ObjectiveStatus) error
	UpdateDebtProgress(ctx context.Context, id int32, remaining decimal.Decimal, status domain.DebtStatus) error

	// FindTransferByKey returns domain.ErrNotFound when no transfer carries the key.
	FindTransferByKey(ctx context.Context, actorID int32, key string) (*domain.Transfer, error)
	InsertTransfer(ctx context.Context, t *domain.Transfer) error
	InsertContribution(ctx context.Context, c *domain.Contribution) error
	InsertRepayment(ctx context.Context, r *domain.Repayment) error
	InsertPosting(ctx context.Context, p *domain.Posting) error

	// AdvanceSubscription moves an active subscription's next due date from
	// from to to. It returns domain.ErrConflict when the due date is no longer
	// from, which means that charge already committed.
	AdvanceSubscription(ctx context.Context, id int32, from, to time.Time) error
}
