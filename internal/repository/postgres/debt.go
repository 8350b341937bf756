package postgres

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/thonny3/suivi-buget-perso-sub000/internal/domain"
	"github.com/thonny3/suivi-buget-perso-sub000/internal/logger"
	"github.com/thonny3/suivi-buget-perso-sub000/internal/repository"
)

const debtColumns = `id, user_id, name, counterparty, initial_amount, remaining_amount, interest_rate,
	start_date, due_date, direction, status, created_on, updated_on`

func scanDebt(row rowScanner) (*domain.Debt, error) {
	d := &domain.Debt{}
	var due sql.NullTime
	err := row.Scan(&d.ID, &d.UserID, &d.Name, &d.Counterparty, &d.InitialAmount, &d.RemainingAmount, &d.InterestRate,
		&d.StartDate, &due, &d.Direction, &d.Status, &d.CreatedOn, &d.UpdatedOn)
	if err != nil {
		return nil, err
	}
	d.DueDate = timePtr(due)
	return d, nil
}

type debtRepository struct {
	db *sql.DB
}

func NewDebtRepository(db *sql.DB) repository.DebtRepository {
	return &debtRepository{db: db}
}

func (r *debtRepository) Create(ctx context.Context, d *domain.Debt) error {
	logger.EnterMethod("debtRepository.Create", "userID", d.UserID, "direction", d.Direction)
	query := `INSERT INTO debts (user_id, name, counterparty, initial_amount, remaining_amount, interest_rate, start_date, due_date, direction, status)
	          VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10) RETURNING id, created_on, updated_on`
	err := r.db.QueryRowContext(ctx, query, d.UserID, d.Name, d.Counterparty, d.InitialAmount, d.RemainingAmount, d.InterestRate,
		d.StartDate, nullTime(d.DueDate), string(d.Direction), string(d.Status)).
		Scan(&d.ID, &d.CreatedOn, &d.UpdatedOn)
	logger.DatabaseResult("INSERT", 1, err, "debtID", d.ID)
	if err != nil {
		logger.ExitMethodWithError("debtRepository.Create", err)
		return mapError(err)
	}
	logger.ExitMethod("debtRepository.Create", "debtID", d.ID)
	return nil
}

func (r *debtRepository) GetByID(ctx context.Context, id int32) (*domain.Debt, error) {
	d, err := scanDebt(r.db.QueryRowContext(ctx, `SELECT `+debtColumns+` FROM debts WHERE id = $1`, id))
	if err != nil {
		return nil, fmt.Errorf("debt %d: %w", id, mapError(err))
	}
	return d, nil
}

func (r *debtRepository) ListByUser(ctx context.Context, userID int32) ([]domain.Debt, error) {
	return r.list(ctx, `SELECT `+debtColumns+` FROM debts WHERE user_id = $1 ORDER BY id`, userID)
}

func (r *debtRepository) ListOpen(ctx context.Context) ([]domain.Debt, error) {
	return r.list(ctx, `SELECT `+debtColumns+` FROM debts WHERE status <> 'terminé' ORDER BY id`)
}

func (r *debtRepository) list(ctx context.Context, query string, args ...any) ([]domain.Debt, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, mapError(err)
	}
	defer rows.Close()

	var debts []domain.Debt
	for rows.Next() {
		d, err := scanDebt(rows)
		if err != nil {
			return nil, err
		}
		debts = append(debts, *d)
	}
	return debts, rows.Err()
}

// Update changes the descriptive fields and the due date. remaining_amount and
// status are only written through the ledger.
func (r *debtRepository) Update(ctx context.Context, d *domain.Debt) error {
	query := `UPDATE debts SET name = $1, counterparty = $2, interest_rate = $3, due_date = $4, updated_on = NOW() WHERE id = $5`
	result, err := r.db.ExecContext(ctx, query, d.Name, d.Counterparty, d.InterestRate, nullTime(d.DueDate), d.ID)
	if err != nil {
		return mapError(err)
	}
	return expectAffected(result, fmt.Sprintf("debt %d", d.ID))
}

func (r *debtRepository) Delete(ctx context.Context, id int32) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM debts WHERE id = $1`, id)
	if err != nil {
		return mapError(err)
	}
	return expectAffected(result, fmt.Sprintf("debt %d", id))
}

func (r *debtRepository) ListRepayments(ctx context.Context, debtID int32) ([]domain.Repayment, error) {
	query := `SELECT id, debt_id, account_id, user_id, transfer_id, amount, paid_on
	          FROM repayments WHERE debt_id = $1 ORDER BY paid_on DESC, id DESC`
	rows, err := r.db.QueryContext(ctx, query, debtID)
	if err != nil {
		return nil, mapError(err)
	}
	defer rows.Close()

	var out []domain.Repayment
	for rows.Next() {
		var p domain.Repayment
		if err := rows.Scan(&p.ID, &p.DebtID, &p.AccountID, &p.UserID, &p.TransferID, &p.Amount, &p.PaidOn); err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, rows.Err()
}
