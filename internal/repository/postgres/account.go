package postgres

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/thonny3/suivi-buget-perso-sub000/internal/domain"
	"github.com/thonny3/suivi-buget-perso-sub000/internal/logger"
	"github.com/thonny3/suivi-buget-perso-sub000/internal/repository"
)

const accountColumns = `id, owner_id, name, type, balance, currency, created_on, updated_on`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanAccount(row rowScanner, extra ...any) (*domain.Account, error) {
	a := &domain.Account{}
	dest := append([]any{&a.ID, &a.OwnerID, &a.Name, &a.Type, &a.Balance, &a.Currency, &a.CreatedOn, &a.UpdatedOn}, extra...)
	if err := row.Scan(dest...); err != nil {
		return nil, err
	}
	return a, nil
}

type accountRepository struct {
	db *sql.DB
}

func NewAccountRepository(db *sql.DB) repository.AccountRepository {
	return &accountRepository{db: db}
}

func (r *accountRepository) Create(ctx context.Context, a *domain.Account) error {
	logger.EnterMethod("accountRepository.Create", "ownerID", a.OwnerID, "type", a.Type)
	query := `INSERT INTO accounts (owner_id, name, type, balance, currency)
	          VALUES ($1, $2, $3, $4, $5) RETURNING id, created_on, updated_on`
	logger.DatabaseCall("INSERT", "accounts", "ownerID", a.OwnerID)
	err := r.db.QueryRowContext(ctx, query, a.OwnerID, a.Name, string(a.Type), a.Balance, a.Currency).
		Scan(&a.ID, &a.CreatedOn, &a.UpdatedOn)
	logger.DatabaseResult("INSERT", 1, err, "accountID", a.ID)
	if err != nil {
		logger.ExitMethodWithError("accountRepository.Create", err)
		return mapError(err)
	}
	logger.ExitMethod("accountRepository.Create", "accountID", a.ID)
	return nil
}

func (r *accountRepository) GetByID(ctx context.Context, id int32) (*domain.Account, error) {
	query := `SELECT ` + accountColumns + ` FROM accounts WHERE id = $1`
	a, err := scanAccount(r.db.QueryRowContext(ctx, query, id))
	if err != nil {
		return nil, fmt.Errorf("account %d: %w", id, mapError(err))
	}
	return a, nil
}

func (r *accountRepository) ListAccessible(ctx context.Context, userID int32) ([]domain.Account, error) {
	query := `SELECT a.id, a.owner_id, a.name, a.type, a.balance, a.currency, a.created_on, a.updated_on,
	                 CASE WHEN a.owner_id = $1 THEN 'proprietaire' ELSE s.role END
	          FROM accounts a
	          LEFT JOIN account_shares s ON s.account_id = a.id AND s.user_id = $1
	          WHERE a.owner_id = $1 OR s.user_id = $1
	          ORDER BY a.id`
	logger.DatabaseCall("SELECT", "accounts", "userID", userID)
	rows, err := r.db.QueryContext(ctx, query, userID)
	if err != nil {
		logger.DatabaseResult("SELECT", 0, err)
		return nil, mapError(err)
	}
	defer rows.Close()

	var accounts []domain.Account
	for rows.Next() {
		var role string
		a, err := scanAccount(rows, &role)
		if err != nil {
			return nil, err
		}
		a.Role = domain.ShareRole(role)
		accounts = append(accounts, *a)
	}
	logger.DatabaseResult("SELECT", int64(len(accounts)), rows.Err())
	return accounts, rows.Err()
}

func (r *accountRepository) Update(ctx context.Context, a *domain.Account, allowNegative bool) error {
	query := `UPDATE accounts SET name = $1, type = $2, currency = $3, updated_on = NOW()
	          WHERE id = $4 AND ($5 OR balance >= 0)`
	result, err := r.db.ExecContext(ctx, query, a.Name, string(a.Type), a.Currency, a.ID, allowNegative)
	if err != nil {
		return mapError(err)
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if rows == 0 && !allowNegative {
		// Either gone or overdrawn since it was read.
		var exists bool
		if err := r.db.QueryRowContext(ctx, `SELECT EXISTS(SELECT 1 FROM accounts WHERE id = $1)`, a.ID).Scan(&exists); err != nil {
			return mapError(err)
		}
		if exists {
			return fmt.Errorf("%w: account %d is overdrawn and type %s does not allow it", domain.ErrValidation, a.ID, a.Type)
		}
	}
	if rows == 0 {
		return fmt.Errorf("%w: account %d", domain.ErrNotFound, a.ID)
	}
	return nil
}

func (r *accountRepository) Delete(ctx context.Context, id int32) error {
	logger.EnterMethod("accountRepository.Delete", "accountID", id)
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	logger.DatabaseCall("DELETE", "account_shares", "accountID", id)
	if _, err := tx.ExecContext(ctx, `DELETE FROM account_shares WHERE account_id = $1`, id); err != nil {
		logger.ExitMethodWithError("accountRepository.Delete", err, "stage", "shares")
		return mapError(err)
	}

	logger.DatabaseCall("DELETE", "accounts", "accountID", id)
	result, err := tx.ExecContext(ctx, `DELETE FROM accounts WHERE id = $1`, id)
	if err != nil {
		logger.ExitMethodWithError("accountRepository.Delete", err, "stage", "account")
		return mapError(err)
	}
	if err := expectAffected(result, fmt.Sprintf("account %d", id)); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return mapError(err)
	}
	logger.ExitMethod("accountRepository.Delete", "accountID", id)
	return nil
}
