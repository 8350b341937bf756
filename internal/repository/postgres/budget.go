package postgres

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/thonny3/suivi-buget-perso-sub000/internal/domain"
	"github.com/thonny3/suivi-buget-perso-sub000/internal/repository"
)

const budgetColumns = `id, user_id, category, month, amount, alert_threshold, created_on`

func scanBudget(row rowScanner) (*domain.Budget, error) {
	b := &domain.Budget{}
	if err := row.Scan(&b.ID, &b.UserID, &b.Category, &b.Month, &b.Amount, &b.AlertThreshold, &b.CreatedOn); err != nil {
		return nil, err
	}
	return b, nil
}

type budgetRepository struct {
	db *sql.DB
}

func NewBudgetRepository(db *sql.DB) repository.BudgetRepository {
	return &budgetRepository{db: db}
}

func (r *budgetRepository) Upsert(ctx context.Context, b *domain.Budget) error {
	query := `INSERT INTO budgets (user_id, category, month, amount, alert_threshold) VALUES ($1, $2, $3, $4, $5)
	          ON CONFLICT (user_id, category, month) DO UPDATE SET amount = EXCLUDED.amount, alert_threshold = EXCLUDED.alert_threshold
	          RETURNING id, created_on`
	err := r.db.QueryRowContext(ctx, query, b.UserID, b.Category, b.Month, b.Amount, b.AlertThreshold).Scan(&b.ID, &b.CreatedOn)
	return mapError(err)
}

func (r *budgetRepository) GetByID(ctx context.Context, id int32) (*domain.Budget, error) {
	b, err := scanBudget(r.db.QueryRowContext(ctx, `SELECT `+budgetColumns+` FROM budgets WHERE id = $1`, id))
	if err != nil {
		return nil, fmt.Errorf("budget %d: %w", id, mapError(err))
	}
	return b, nil
}

func (r *budgetRepository) ListByMonth(ctx context.Context, userID int32, month string) ([]domain.Budget, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT `+budgetColumns+` FROM budgets WHERE user_id = $1 AND month = $2 ORDER BY category`, userID, month)
	if err != nil {
		return nil, mapError(err)
	}
	defer rows.Close()

	var budgets []domain.Budget
	for rows.Next() {
		b, err := scanBudget(rows)
		if err != nil {
			return nil, err
		}
		budgets = append(budgets, *b)
	}
	return budgets, rows.Err()
}

func (r *budgetRepository) FindForCategory(ctx context.Context, userID int32, category, month string) (*domain.Budget, error) {
	query := `SELECT ` + budgetColumns + ` FROM budgets WHERE user_id = $1 AND category = $2 AND month = $3`
	b, err := scanBudget(r.db.QueryRowContext(ctx, query, userID, category, month))
	if err != nil {
		return nil, mapError(err)
	}
	return b, nil
}

func (r *budgetRepository) Delete(ctx context.Context, id, userID int32) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM budgets WHERE id = $1 AND user_id = $2`, id, userID)
	if err != nil {
		return mapError(err)
	}
	return expectAffected(result, fmt.Sprintf("budget %d", id))
}
