package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/thonny3/suivi-buget-perso-sub000/internal/domain"
	"github.com/thonny3/suivi-buget-perso-sub000/internal/logger"
	"github.com/thonny3/suivi-buget-perso-sub000/internal/repository"
)

const subscriptionColumns = `id, user_id, account_id, name, amount, category, frequency, next_due_date, active, created_on`

func scanSubscription(row rowScanner) (*domain.Subscription, error) {
	s := &domain.Subscription{}
	if err := row.Scan(&s.ID, &s.UserID, &s.AccountID, &s.Name, &s.Amount, &s.Category, &s.Frequency, &s.NextDueDate, &s.Active, &s.CreatedOn); err != nil {
		return nil, err
	}
	return s, nil
}

type subscriptionRepository struct {
	db *sql.DB
}

func NewSubscriptionRepository(db *sql.DB) repository.SubscriptionRepository {
	return &subscriptionRepository{db: db}
}

func (r *subscriptionRepository) Create(ctx context.Context, s *domain.Subscription) error {
	query := `INSERT INTO subscriptions (user_id, account_id, name, amount, category, frequency, next_due_date, active)
	          VALUES ($1, $2, $3, $4, $5, $6, $7, $8) RETURNING id, created_on`
	err := r.db.QueryRowContext(ctx, query, s.UserID, s.AccountID, s.Name, s.Amount, s.Category, string(s.Frequency), s.NextDueDate, s.Active).
		Scan(&s.ID, &s.CreatedOn)
	return mapError(err)
}

func (r *subscriptionRepository) GetByID(ctx context.Context, id int32) (*domain.Subscription, error) {
	s, err := scanSubscription(r.db.QueryRowContext(ctx, `SELECT `+subscriptionColumns+` FROM subscriptions WHERE id = $1`, id))
	if err != nil {
		return nil, fmt.Errorf("subscription %d: %w", id, mapError(err))
	}
	return s, nil
}

func (r *subscriptionRepository) ListByUser(ctx context.Context, userID int32) ([]domain.Subscription, error) {
	return r.list(ctx, `SELECT `+subscriptionColumns+` FROM subscriptions WHERE user_id = $1 ORDER BY next_due_date`, userID)
}

func (r *subscriptionRepository) ListDue(ctx context.Context, asOf time.Time) ([]domain.Subscription, error) {
	logger.DatabaseCall("SELECT", "subscriptions due", "asOf", asOf.Format("2006-01-02"))
	return r.list(ctx, `SELECT `+subscriptionColumns+` FROM subscriptions WHERE active AND next_due_date <= $1 ORDER BY id`, asOf)
}

func (r *subscriptionRepository) list(ctx context.Context, query string, args ...any) ([]domain.Subscription, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, mapError(err)
	}
	defer rows.Close()

	var subs []domain.Subscription
	for rows.Next() {
		s, err := scanSubscription(rows)
		if err != nil {
			return nil, err
		}
		subs = append(subs, *s)
	}
	return subs, rows.Err()
}

func (r *subscriptionRepository) Delete(ctx context.Context, id, userID int32) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM subscriptions WHERE id = $1 AND user_id = $2`, id, userID)
	if err != nil {
		return mapError(err)
	}
	return expectAffected(result, fmt.Sprintf("subscription %d", id))
}
