package postgres

import (
	"context"
	"database/sql"

	"github.com/thonny3/suivi-buget-perso-sub000/internal/domain"
	"github.com/thonny3/suivi-buget-perso-sub000/internal/repository"
)

type postingRepository struct {
	db *sql.DB
}

func NewPostingRepository(db *sql.DB) repository.PostingRepository {
	return &postingRepository{db: db}
}

func (r *postingRepository) ListByAccount(ctx context.Context, accountID int32, limit, offset int32) ([]domain.Posting, int32, error) {
	query := `SELECT id, account_id, user_id, kind, category, amount, description, posted_on, created_on
	          FROM postings WHERE account_id = $1 ORDER BY posted_on DESC, id DESC LIMIT $2 OFFSET $3`
	rows, err := r.db.QueryContext(ctx, query, accountID, limit, offset)
	if err != nil {
		return nil, 0, mapError(err)
	}
	defer rows.Close()

	var postings []domain.Posting
	for rows.Next() {
		var p domain.Posting
		if err := rows.Scan(&p.ID, &p.AccountID, &p.UserID, &p.Kind, &p.Category, &p.Amount, &p.Description, &p.PostedOn, &p.CreatedOn); err != nil {
			return nil, 0, err
		}
		postings = append(postings, p)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, err
	}

	var count int32
	if err := r.db.QueryRowContext(ctx, `SELECT count(*) FROM postings WHERE account_id = $1`, accountID).Scan(&count); err != nil {
		return nil, 0, mapError(err)
	}
	return postings, count, nil
}
