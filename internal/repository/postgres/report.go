package postgres

import (
	"context"
	"database/sql"
	"time"

	"github.com/shopspring/decimal"

	"github.com/thonny3/suivi-buget-perso-sub000/internal/domain"
	"github.com/thonny3/suivi-buget-perso-sub000/internal/logger"
	"github.com/thonny3/suivi-buget-perso-sub000/internal/repository"
)

type reportRepository struct {
	db *sql.DB
}

func NewReportRepository(db *sql.DB) repository.ReportRepository {
	return &reportRepository{db: db}
}

func (r *reportRepository) AccountTotals(ctx context.Context, userID int32) (decimal.Decimal, int32, error) {
	query := `SELECT COALESCE(SUM(a.balance), 0), count(*)
	          FROM accounts a
	          WHERE a.owner_id = $1 OR a.id IN (SELECT account_id FROM account_shares WHERE user_id = $1)`
	var total decimal.Decimal
	var count int32
	logger.DatabaseCall("SELECT", "accounts totals", "userID", userID)
	err := r.db.QueryRowContext(ctx, query, userID).Scan(&total, &count)
	logger.DatabaseResult("SELECT", int64(count), err)
	return total, count, mapError(err)
}

func (r *reportRepository) PostingTotals(ctx context.Context, userID int32, from, to time.Time) (decimal.Decimal, decimal.Decimal, error) {
	query := `SELECT COALESCE(SUM(amount) FILTER (WHERE kind = 'revenue'), 0),
	                 COALESCE(SUM(amount) FILTER (WHERE kind = 'expense'), 0)
	          FROM postings WHERE user_id = $1 AND posted_on >= $2 AND posted_on < $3`
	var revenue, expense decimal.Decimal
	err := r.db.QueryRowContext(ctx, query, userID, from, to).Scan(&revenue, &expense)
	return revenue, expense, mapError(err)
}

func (r *reportRepository) ExpensesByCategory(ctx context.Context, userID int32, from, to time.Time) ([]domain.CategoryTotal, error) {
	query := `SELECT category, SUM(amount) FROM postings
	          WHERE user_id = $1 AND kind = 'expense' AND posted_on >= $2 AND posted_on < $3
	          GROUP BY category ORDER BY SUM(amount) DESC, category`
	rows, err := r.db.QueryContext(ctx, query, userID, from, to)
	if err != nil {
		return nil, mapError(err)
	}
	defer rows.Close()

	var totals []domain.CategoryTotal
	for rows.Next() {
		var ct domain.CategoryTotal
		if err := rows.Scan(&ct.Category, &ct.Total); err != nil {
			return nil, err
		}
		totals = append(totals, ct)
	}
	return totals, rows.Err()
}

func (r *reportRepository) MonthlySeries(ctx context.Context, userID int32, from, to time.Time) ([]domain.MonthlyPoint, error) {
	query := `SELECT to_char(posted_on, 'YYYY-MM') AS month,
	                 COALESCE(SUM(amount) FILTER (WHERE kind = 'revenue'), 0),
	                 COALESCE(SUM(amount) FILTER (WHERE kind = 'expense'), 0)
	          FROM postings WHERE user_id = $1 AND posted_on >= $2 AND posted_on < $3
	          GROUP BY month ORDER BY month`
	rows, err := r.db.QueryContext(ctx, query, userID, from, to)
	if err != nil {
		return nil, mapError(err)
	}
	defer rows.Close()

	var points []domain.MonthlyPoint
	for rows.Next() {
		var p domain.MonthlyPoint
		if err := rows.Scan(&p.Month, &p.Revenue, &p.Expense); err != nil {
			return nil, err
		}
		points = append(points, p)
	}
	return points, rows.Err()
}
