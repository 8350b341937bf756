package postgres

import (
	"context"
	"database/sql"

	"github.com/thonny3/suivi-buget-perso-sub000/internal/domain"
	"github.com/thonny3/suivi-buget-perso-sub000/internal/logger"
	"github.com/thonny3/suivi-buget-perso-sub000/internal/repository"
)

const transferColumns = `id, type, source_id, target_id, amount, actor_user_id, COALESCE(idempotency_key, ''), description, created_on`

func scanTransfer(row rowScanner) (*domain.Transfer, error) {
	t := &domain.Transfer{}
	if err := row.Scan(&t.ID, &t.Type, &t.SourceID, &t.TargetID, &t.Amount, &t.ActorUserID, &t.IdempotencyKey, &t.Description, &t.CreatedOn); err != nil {
		return nil, err
	}
	return t, nil
}

// readableAccounts is the set of account ids user $1 owns or was granted.
const readableAccounts = `WITH readable AS (
		SELECT id FROM accounts WHERE owner_id = $1
		UNION
		SELECT account_id FROM account_shares WHERE user_id = $1
	)`

// visibleTransfers keeps transfers made by the user or touching a readable account.
const visibleTransfers = `FROM transfers
	WHERE actor_user_id = $1
	   OR (type IN ('account_to_account', 'account_to_objective', 'debt_repayment') AND source_id IN (SELECT id FROM readable))
	   OR (type IN ('account_to_account', 'objective_to_account') AND target_id IN (SELECT id FROM readable))`

type transferRepository struct {
	db *sql.DB
}

func NewTransferRepository(db *sql.DB) repository.TransferRepository {
	return &transferRepository{db: db}
}

func (r *transferRepository) ListForUser(ctx context.Context, userID int32, limit, offset int32) ([]domain.Transfer, int32, error) {
	logger.EnterMethod("transferRepository.ListForUser", "userID", userID, "limit", limit, "offset", offset)

	query := readableAccounts + ` SELECT ` + transferColumns + ` ` + visibleTransfers +
		` ORDER BY created_on DESC, id DESC LIMIT $2 OFFSET $3`
	rows, err := r.db.QueryContext(ctx, query, userID, limit, offset)
	if err != nil {
		logger.ExitMethodWithError("transferRepository.ListForUser", err)
		return nil, 0, mapError(err)
	}
	defer rows.Close()

	var transfers []domain.Transfer
	for rows.Next() {
		t, err := scanTransfer(rows)
		if err != nil {
			return nil, 0, err
		}
		transfers = append(transfers, *t)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, err
	}

	var count int32
	countQuery := readableAccounts + ` SELECT count(*) ` + visibleTransfers
	if err := r.db.QueryRowContext(ctx, countQuery, userID).Scan(&count); err != nil {
		return nil, 0, mapError(err)
	}

	logger.ExitMethod("transferRepository.ListForUser", "count", len(transfers), "total", count)
	return transfers, count, nil
}
