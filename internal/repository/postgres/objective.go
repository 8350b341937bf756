package postgres

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/thonny3/suivi-buget-perso-sub000/internal/domain"
	"github.com/thonny3/suivi-buget-perso-sub000/internal/logger"
	"github.com/thonny3/suivi-buget-perso-sub000/internal/repository"
)

const objectiveColumns = `id, user_id, name, target_amount, current_amount, deadline, status, created_on, updated_on`

func scanObjective(row rowScanner) (*domain.Objective, error) {
	o := &domain.Objective{}
	var deadline sql.NullTime
	if err := row.Scan(&o.ID, &o.UserID, &o.Name, &o.TargetAmount, &o.CurrentAmount, &deadline, &o.Status, &o.CreatedOn, &o.UpdatedOn); err != nil {
		return nil, err
	}
	o.Deadline = timePtr(deadline)
	o.Progress = domain.ObjectiveProgress(o.CurrentAmount, o.TargetAmount)
	return o, nil
}

type objectiveRepository struct {
	db *sql.DB
}

func NewObjectiveRepository(db *sql.DB) repository.ObjectiveRepository {
	return &objectiveRepository{db: db}
}

func (r *objectiveRepository) Create(ctx context.Context, o *domain.Objective) error {
	logger.EnterMethod("objectiveRepository.Create", "userID", o.UserID)
	query := `INSERT INTO objectives (user_id, name, target_amount, current_amount, deadline, status)
	          VALUES ($1, $2, $3, $4, $5, $6) RETURNING id, created_on, updated_on`
	err := r.db.QueryRowContext(ctx, query, o.UserID, o.Name, o.TargetAmount, o.CurrentAmount, nullTime(o.Deadline), string(o.Status)).
		Scan(&o.ID, &o.CreatedOn, &o.UpdatedOn)
	logger.DatabaseResult("INSERT", 1, err, "objectiveID", o.ID)
	if err != nil {
		logger.ExitMethodWithError("objectiveRepository.Create", err)
		return mapError(err)
	}
	logger.ExitMethod("objectiveRepository.Create", "objectiveID", o.ID)
	return nil
}

func (r *objectiveRepository) GetByID(ctx context.Context, id int32) (*domain.Objective, error) {
	o, err := scanObjective(r.db.QueryRowContext(ctx, `SELECT `+objectiveColumns+` FROM objectives WHERE id = $1`, id))
	if err != nil {
		return nil, fmt.Errorf("objective %d: %w", id, mapError(err))
	}
	return o, nil
}

func (r *objectiveRepository) ListByUser(ctx context.Context, userID int32) ([]domain.Objective, error) {
	return r.list(ctx, `SELECT `+objectiveColumns+` FROM objectives WHERE user_id = $1 ORDER BY id`, userID)
}

func (r *objectiveRepository) ListUnreached(ctx context.Context) ([]domain.Objective, error) {
	return r.list(ctx, `SELECT `+objectiveColumns+` FROM objectives WHERE status <> 'Atteint' ORDER BY id`)
}

func (r *objectiveRepository) list(ctx context.Context, query string, args ...any) ([]domain.Objective, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, mapError(err)
	}
	defer rows.Close()

	var objectives []domain.Objective
	for rows.Next() {
		o, err := scanObjective(rows)
		if err != nil {
			return nil, err
		}
		objectives = append(objectives, *o)
	}
	return objectives, rows.Err()
}

// Update changes name, target and deadline. current_amount and status are only
// written through the ledger.
func (r *objectiveRepository) Update(ctx context.Context, o *domain.Objective) error {
	query := `UPDATE objectives SET name = $1, target_amount = $2, deadline = $3, updated_on = NOW() WHERE id = $4`
	result, err := r.db.ExecContext(ctx, query, o.Name, o.TargetAmount, nullTime(o.Deadline), o.ID)
	if err != nil {
		return mapError(err)
	}
	return expectAffected(result, fmt.Sprintf("objective %d", o.ID))
}

// Delete removes the objective only while it holds no funds. The predicate is
// re-checked after the row lock, so a contribution committing concurrently
// turns the delete into ErrConflict.
func (r *objectiveRepository) Delete(ctx context.Context, id int32) error {
	logger.DatabaseCall("DELETE", "objectives", "objectiveID", id)
	result, err := r.db.ExecContext(ctx, `DELETE FROM objectives WHERE id = $1 AND current_amount = 0`, id)
	if err != nil {
		return mapError(err)
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if rows > 0 {
		return nil
	}

	var exists bool
	if err := r.db.QueryRowContext(ctx, `SELECT EXISTS(SELECT 1 FROM objectives WHERE id = $1)`, id).Scan(&exists); err != nil {
		return mapError(err)
	}
	if exists {
		return fmt.Errorf("%w: objective %d still holds funds", domain.ErrConflict, id)
	}
	return fmt.Errorf("%w: objective %d", domain.ErrNotFound, id)
}

func (r *objectiveRepository) ListContributions(ctx context.Context, objectiveID int32) ([]domain.Contribution, error) {
	query := `SELECT id, objective_id, account_id, user_id, transfer_id, amount, contributed_on
	          FROM contributions WHERE objective_id = $1 ORDER BY contributed_on DESC, id DESC`
	rows, err := r.db.QueryContext(ctx, query, objectiveID)
	if err != nil {
		return nil, mapError(err)
	}
	defer rows.Close()

	var out []domain.Contribution
	for rows.Next() {
		var c domain.Contribution
		if err := rows.Scan(&c.ID, &c.ObjectiveID, &c.AccountID, &c.UserID, &c.TransferID, &c.Amount, &c.ContributedOn); err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, rows.Err()
}
