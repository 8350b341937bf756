package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/thonny3/suivi-buget-perso-sub000/internal/domain"
	"github.com/thonny3/suivi-buget-perso-sub000/internal/logger"
	"github.com/thonny3/suivi-buget-perso-sub000/internal/repository"
)

type shareRepository struct {
	db *sql.DB
}

func NewShareRepository(db *sql.DB) repository.ShareRepository {
	return &shareRepository{db: db}
}

func (r *shareRepository) Upsert(ctx context.Context, g *domain.ShareGrant) error {
	query := `INSERT INTO account_shares (account_id, user_id, role) VALUES ($1, $2, $3)
	          ON CONFLICT (account_id, user_id) DO UPDATE SET role = EXCLUDED.role
	          RETURNING created_on`
	logger.DatabaseCall("UPSERT", "account_shares", "accountID", g.AccountID, "userID", g.UserID, "role", g.Role)
	err := r.db.QueryRowContext(ctx, query, g.AccountID, g.UserID, string(g.Role)).Scan(&g.CreatedOn)
	logger.DatabaseResult("UPSERT", 1, err)
	return mapError(err)
}

func (r *shareRepository) GetRole(ctx context.Context, accountID, userID int32) (domain.ShareRole, error) {
	var role string
	err := r.db.QueryRowContext(ctx, `SELECT role FROM account_shares WHERE account_id = $1 AND user_id = $2`, accountID, userID).Scan(&role)
	if errors.Is(err, sql.ErrNoRows) {
		return "", nil
	}
	if err != nil {
		return "", mapError(err)
	}
	return domain.ShareRole(role), nil
}

func (r *shareRepository) ListByAccount(ctx context.Context, accountID int32) ([]domain.ShareGrant, error) {
	query := `SELECT s.account_id, s.user_id, u.email, u.name, s.role, s.created_on
	          FROM account_shares s JOIN users u ON u.id = s.user_id
	          WHERE s.account_id = $1 ORDER BY s.created_on`
	rows, err := r.db.QueryContext(ctx, query, accountID)
	if err != nil {
		return nil, mapError(err)
	}
	defer rows.Close()

	var grants []domain.ShareGrant
	for rows.Next() {
		var g domain.ShareGrant
		if err := rows.Scan(&g.AccountID, &g.UserID, &g.Email, &g.Name, &g.Role, &g.CreatedOn); err != nil {
			return nil, err
		}
		grants = append(grants, g)
	}
	return grants, rows.Err()
}

func (r *shareRepository) Delete(ctx context.Context, accountID, userID int32) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM account_shares WHERE account_id = $1 AND user_id = $2`, accountID, userID)
	if err != nil {
		return mapError(err)
	}
	return expectAffected(result, fmt.Sprintf("share of account %d for user %d", accountID, userID))
}
