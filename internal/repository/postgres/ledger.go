package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/thonny3/suivi-buget-perso-sub000/internal/domain"
	"github.com/thonny3/suivi-buget-perso-sub000/internal/logger"
	"github.com/thonny3/suivi-buget-perso-sub000/internal/repository"
)

type ledger struct {
	db          *sql.DB
	lockTimeout time.Duration
}

func NewLedger(db *sql.DB, lockTimeout time.Duration) repository.Ledger {
	return &ledger{db: db, lockTimeout: lockTimeout}
}

// WithinTx runs fn in a READ COMMITTED transaction with a bounded lock wait.
// The transaction itself is detached from ctx cancellation: statements still
// observe ctx, and a cancelled ctx is checked once more right before COMMIT,
// after which the commit runs to completion.
func (l *ledger) WithinTx(ctx context.Context, fn func(ctx context.Context, tx repository.LedgerTx) error) error {
	logger.EnterMethod("ledger.WithinTx")

	sqlTx, err := l.db.BeginTx(context.WithoutCancel(ctx), nil)
	if err != nil {
		logger.ExitMethodWithError("ledger.WithinTx", err, "stage", "begin")
		return mapError(err)
	}
	defer sqlTx.Rollback()

	if l.lockTimeout > 0 {
		stmt := fmt.Sprintf("SET LOCAL lock_timeout = '%dms'", l.lockTimeout.Milliseconds())
		if _, err := sqlTx.ExecContext(ctx, stmt); err != nil {
			logger.ExitMethodWithError("ledger.WithinTx", err, "stage", "lock_timeout")
			return mapError(err)
		}
	}

	if err := fn(ctx, &pgLedgerTx{tx: sqlTx}); err != nil {
		logger.Debug("Ledger transaction rolled back", "reason", err)
		return err
	}

	if err := ctx.Err(); err != nil {
		logger.ExitMethodWithError("ledger.WithinTx", err, "stage", "pre-commit")
		return err
	}

	if err := sqlTx.Commit(); err != nil {
		logger.ExitMethodWithError("ledger.WithinTx", err, "stage", "commit")
		return mapError(err)
	}

	logger.ExitMethod("ledger.WithinTx")
	return nil
}

type pgLedgerTx struct {
	tx *sql.Tx
}

func (t *pgLedgerTx) LockAccount(ctx context.Context, id int32) (*domain.Account, error) {
	query := `SELECT ` + accountColumns + ` FROM accounts WHERE id = $1 FOR UPDATE`
	logger.DatabaseCall("SELECT FOR UPDATE", "accounts", "accountID", id)
	a, err := scanAccount(t.tx.QueryRowContext(ctx, query, id))
	logger.DatabaseResult("SELECT FOR UPDATE", 1, err, "accountID", id)
	if err != nil {
		return nil, fmt.Errorf("lock account %d: %w", id, mapError(err))
	}
	return a, nil
}

func (t *pgLedgerTx) LockObjective(ctx context.Context, id int32) (*domain.Objective, error) {
	query := `SELECT ` + objectiveColumns + ` FROM objectives WHERE id = $1 FOR UPDATE`
	logger.DatabaseCall("SELECT FOR UPDATE", "objectives", "objectiveID", id)
	o, err := scanObjective(t.tx.QueryRowContext(ctx, query, id))
	logger.DatabaseResult("SELECT FOR UPDATE", 1, err, "objectiveID", id)
	if err != nil {
		return nil, fmt.Errorf("lock objective %d: %w", id, mapError(err))
	}
	return o, nil
}

func (t *pgLedgerTx) LockDebt(ctx context.Context, id int32) (*domain.Debt, error) {
	query := `SELECT ` + debtColumns + ` FROM debts WHERE id = $1 FOR UPDATE`
	logger.DatabaseCall("SELECT FOR UPDATE", "debts", "debtID", id)
	d, err := scanDebt(t.tx.QueryRowContext(ctx, query, id))
	logger.DatabaseResult("SELECT FOR UPDATE", 1, err, "debtID", id)
	if err != nil {
		return nil, fmt.Errorf("lock debt %d: %w", id, mapError(err))
	}
	return d, nil
}

func (t *pgLedgerTx) ShareRole(ctx context.Context, accountID, userID int32) (domain.ShareRole, error) {
	var role string
	err := t.tx.QueryRowContext(ctx, `SELECT role FROM account_shares WHERE account_id = $1 AND user_id = $2`, accountID, userID).Scan(&role)
	if errors.Is(err, sql.ErrNoRows) {
		return "", nil
	}
	if err != nil {
		return "", mapError(err)
	}
	return domain.ShareRole(role), nil
}

func (t *pgLedgerTx) UpdateAccountBalance(ctx context.Context, id int32, balance decimal.Decimal) error {
	logger.DatabaseCall("UPDATE", "accounts.balance", "accountID", id)
	result, err := t.tx.ExecContext(ctx, `UPDATE accounts SET balance = $1, updated_on = NOW() WHERE id = $2`, balance, id)
	if err != nil {
		logger.DatabaseResult("UPDATE", 0, err, "accountID", id)
		return mapError(err)
	}
	return expectAffected(result, fmt.Sprintf("account %d", id))
}

func (t *pgLedgerTx) UpdateObjectiveProgress(ctx context.Context, id int32, current decimal.Decimal, status domain.ObjectiveStatus) error {
	logger.DatabaseCall("UPDATE", "objectives.current_amount", "objectiveID", id)
	result, err := t.tx.ExecContext(ctx, `UPDATE objectives SET current_amount = $1, status = $2, updated_on = NOW() WHERE id = $3`, current, string(status), id)
	if err != nil {
		logger.DatabaseResult("UPDATE", 0, err, "objectiveID", id)
		return mapError(err)
	}
	return expectAffected(result, fmt.Sprintf("objective %d", id))
}

func (t *pgLedgerTx) UpdateDebtProgress(ctx context.Context, id int32, remaining decimal.Decimal, status domain.DebtStatus) error {
	logger.DatabaseCall("UPDATE", "debts.remaining_amount", "debtID", id)
	result, err := t.tx.ExecContext(ctx, `UPDATE debts SET remaining_amount = $1, status = $2, updated_on = NOW() WHERE id = $3`, remaining, string(status), id)
	if err != nil {
		logger.DatabaseResult("UPDATE", 0, err, "debtID", id)
		return mapError(err)
	}
	return expectAffected(result, fmt.Sprintf("debt %d", id))
}

func (t *pgLedgerTx) FindTransferByKey(ctx context.Context, actorID int32, key string) (*domain.Transfer, error) {
	query := `SELECT ` + transferColumns + ` FROM transfers WHERE actor_user_id = $1 AND idempotency_key = $2`
	tr, err := scanTransfer(t.tx.QueryRowContext(ctx, query, actorID, key))
	if err != nil {
		return nil, mapError(err)
	}
	return tr, nil
}

func (t *pgLedgerTx) InsertTransfer(ctx context.Context, tr *domain.Transfer) error {
	query := `INSERT INTO transfers (type, source_id, target_id, amount, actor_user_id, idempotency_key, description)
	          VALUES ($1, $2, $3, $4, $5, $6, $7) RETURNING id, created_on`
	logger.DatabaseCall("INSERT", "transfers", "type", tr.Type, "actorID", tr.ActorUserID)
	err := t.tx.QueryRowContext(ctx, query, string(tr.Type), tr.SourceID, tr.TargetID, tr.Amount, tr.ActorUserID, nullString(tr.IdempotencyKey), tr.Description).
		Scan(&tr.ID, &tr.CreatedOn)
	logger.DatabaseResult("INSERT", 1, err, "transferID", tr.ID)
	if err != nil {
		// A concurrent request with the same idempotency key won the race; retrying replays it.
		if isUniqueViolation(err) {
			return fmt.Errorf("%w: duplicate idempotency key", domain.ErrContention)
		}
		return mapError(err)
	}
	return nil
}

func (t *pgLedgerTx) InsertContribution(ctx context.Context, c *domain.Contribution) error {
	query := `INSERT INTO contributions (objective_id, account_id, user_id, transfer_id, amount, contributed_on)
	          VALUES ($1, $2, $3, $4, $5, $6) RETURNING id`
	logger.DatabaseCall("INSERT", "contributions", "objectiveID", c.ObjectiveID)
	err := t.tx.QueryRowContext(ctx, query, c.ObjectiveID, c.AccountID, c.UserID, c.TransferID, c.Amount, c.ContributedOn).Scan(&c.ID)
	logger.DatabaseResult("INSERT", 1, err, "contributionID", c.ID)
	return mapError(err)
}

func (t *pgLedgerTx) InsertRepayment(ctx context.Context, r *domain.Repayment) error {
	query := `INSERT INTO repayments (debt_id, account_id, user_id, transfer_id, amount, paid_on)
	          VALUES ($1, $2, $3, $4, $5, $6) RETURNING id`
	logger.DatabaseCall("INSERT", "repayments", "debtID", r.DebtID)
	err := t.tx.QueryRowContext(ctx, query, r.DebtID, r.AccountID, r.UserID, r.TransferID, r.Amount, r.PaidOn).Scan(&r.ID)
	logger.DatabaseResult("INSERT", 1, err, "repaymentID", r.ID)
	return mapError(err)
}

func (t *pgLedgerTx) InsertPosting(ctx context.Context, p *domain.Posting) error {
	query := `INSERT INTO postings (account_id, user_id, kind, category, amount, description, posted_on)
	          VALUES ($1, $2, $3, $4, $5, $6, $7) RETURNING id, created_on`
	logger.DatabaseCall("INSERT", "postings", "accountID", p.AccountID, "kind", p.Kind)
	err := t.tx.QueryRowContext(ctx, query, p.AccountID, p.UserID, string(p.Kind), p.Category, p.Amount, p.Description, p.PostedOn).
		Scan(&p.ID, &p.CreatedOn)
	logger.DatabaseResult("INSERT", 1, err, "postingID", p.ID)
	return mapError(err)
}

func (t *pgLedgerTx) AdvanceSubscription(ctx context.Context, id int32, from, to time.Time) error {
	query := `UPDATE subscriptions SET next_due_date = $3
	          WHERE id = $1 AND next_due_date = $2 AND active`
	logger.DatabaseCall("UPDATE", "subscriptions", "subscriptionID", id)
	result, err := t.tx.ExecContext(ctx, query, id, from, to)
	if err != nil {
		return fmt.Errorf("advance subscription %d: %w", id, mapError(err))
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return err
	}
	logger.DatabaseResult("UPDATE", rows, nil, "subscriptionID", id)
	if rows == 0 {
		return fmt.Errorf("%w: subscription %d is no longer due on %s", domain.ErrConflict, id, from.Format(time.DateOnly))
	}
	return nil
}
