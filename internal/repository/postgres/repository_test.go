package postgres_test

import (
	"context"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/lib/pq"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/thonny3/suivi-buget-perso-sub000/internal/domain"
	"github.com/thonny3/suivi-buget-perso-sub000/internal/repository/postgres"
)

func TestAccountRepository_Create(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("error opening mock database: %v", err)
	}
	defer db.Close()

	repo := postgres.NewAccountRepository(db)
	now := time.Now()
	acc := &domain.Account{OwnerID: 7, Name: "Courant", Type: domain.AccountTypeCurrent, Balance: decimal.NewFromInt(100), Currency: "MGA"}

	mock.ExpectQuery("INSERT INTO accounts").
		WithArgs(int32(7), "Courant", "current", decimal.NewFromInt(100), "MGA").
		WillReturnRows(sqlmock.NewRows([]string{"id", "created_on", "updated_on"}).AddRow(3, now, now))

	require.NoError(t, repo.Create(context.Background(), acc))
	assert.Equal(t, int32(3), acc.ID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestAccountRepository_ListAccessible(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("error opening mock database: %v", err)
	}
	defer db.Close()

	repo := postgres.NewAccountRepository(db)
	now := time.Now()

	mock.ExpectQuery("FROM accounts a LEFT JOIN account_shares s").
		WithArgs(int32(7)).
		WillReturnRows(sqlmock.NewRows(append(accountCols, "role")).
			AddRow(1, 7, "Courant", "current", "120.50", "MGA", now, now, "proprietaire").
			AddRow(4, 2, "Famille", "savings", "300.00", "MGA", now, now, "lecteur"))

	accounts, err := repo.ListAccessible(context.Background(), 7)
	require.NoError(t, err)
	require.Len(t, accounts, 2)
	assert.Equal(t, domain.ShareRoleOwner, accounts[0].Role)
	assert.Equal(t, domain.ShareRoleReader, accounts[1].Role)
	assert.Equal(t, "120.5", accounts[0].Balance.String())
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestAccountRepository_DeleteCascadesShares(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("error opening mock database: %v", err)
	}
	defer db.Close()

	repo := postgres.NewAccountRepository(db)

	t.Run("Success", func(t *testing.T) {
		mock.ExpectBegin()
		mock.ExpectExec("DELETE FROM account_shares WHERE account_id = \\$1").WithArgs(int32(4)).WillReturnResult(sqlmock.NewResult(0, 2))
		mock.ExpectExec("DELETE FROM accounts WHERE id = \\$1").WithArgs(int32(4)).WillReturnResult(sqlmock.NewResult(0, 1))
		mock.ExpectCommit()

		assert.NoError(t, repo.Delete(context.Background(), 4))
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("Missing account rolls back", func(t *testing.T) {
		mock.ExpectBegin()
		mock.ExpectExec("DELETE FROM account_shares").WithArgs(int32(5)).WillReturnResult(sqlmock.NewResult(0, 0))
		mock.ExpectExec("DELETE FROM accounts").WithArgs(int32(5)).WillReturnResult(sqlmock.NewResult(0, 0))
		mock.ExpectRollback()

		err := repo.Delete(context.Background(), 5)
		assert.ErrorIs(t, err, domain.ErrNotFound)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestDebtRepository_ListOpen(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("error opening mock database: %v", err)
	}
	defer db.Close()

	repo := postgres.NewDebtRepository(db)
	now := time.Now()
	due := time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC)

	mock.ExpectQuery("FROM debts WHERE status <> 'terminé'").
		WillReturnRows(sqlmock.NewRows([]string{"id", "user_id", "name", "counterparty", "initial_amount", "remaining_amount", "interest_rate",
			"start_date", "due_date", "direction", "status", "created_on", "updated_on"}).
			AddRow(1, 7, "Pret voiture", "Banque", "1000.00", "500.00", "2.5", now, due, "borrowed", "en cours", now, now).
			AddRow(2, 7, "Ami", "Jean", "200.00", "200.00", "0", now, nil, "lent", "en cours", now, now))

	debts, err := repo.ListOpen(context.Background())
	require.NoError(t, err)
	require.Len(t, debts, 2)
	require.NotNil(t, debts[0].DueDate)
	assert.Equal(t, due, *debts[0].DueDate)
	assert.Nil(t, debts[1].DueDate)
	assert.Equal(t, domain.DebtDirectionLent, debts[1].Direction)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestObjectiveRepository_GetByID(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("error opening mock database: %v", err)
	}
	defer db.Close()

	repo := postgres.NewObjectiveRepository(db)
	now := time.Now()

	t.Run("Success", func(t *testing.T) {
		mock.ExpectQuery("FROM objectives WHERE id = \\$1").
			WithArgs(int32(2)).
			WillReturnRows(sqlmock.NewRows([]string{"id", "user_id", "name", "target_amount", "current_amount", "deadline", "status", "created_on", "updated_on"}).
				AddRow(2, 7, "Vacances", "1000.00", "950.00", nil, "En cours", now, now))

		o, err := repo.GetByID(context.Background(), 2)
		require.NoError(t, err)
		assert.True(t, decimal.NewFromInt(95).Equal(o.Progress))
		assert.Nil(t, o.Deadline)
	})

	t.Run("Not found", func(t *testing.T) {
		mock.ExpectQuery("FROM objectives WHERE id = \\$1").
			WithArgs(int32(99)).
			WillReturnRows(sqlmock.NewRows([]string{"id"}))

		_, err := repo.GetByID(context.Background(), 99)
		assert.ErrorIs(t, err, domain.ErrNotFound)
	})
}

func TestTransferRepository_ListForUser(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("error opening mock database: %v", err)
	}
	defer db.Close()

	repo := postgres.NewTransferRepository(db)
	now := time.Now()
	cols := []string{"id", "type", "source_id", "target_id", "amount", "actor_user_id", "idempotency_key", "description", "created_on"}

	mock.ExpectQuery("WITH readable AS (.+) ORDER BY created_on DESC, id DESC LIMIT \\$2 OFFSET \\$3").
		WithArgs(int32(7), int32(10), int32(0)).
		WillReturnRows(sqlmock.NewRows(cols).
			AddRow(9, "account_to_objective", 1, 2, "100.00", 7, "", "", now).
			AddRow(8, "account_to_account", 1, 3, "40.00", 7, "", "", now.Add(-time.Hour)))
	mock.ExpectQuery("WITH readable AS (.+) SELECT count\\(\\*\\)").
		WithArgs(int32(7)).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(2))

	transfers, total, err := repo.ListForUser(context.Background(), 7, 10, 0)
	require.NoError(t, err)
	assert.Equal(t, int32(2), total)
	require.Len(t, transfers, 2)
	assert.Equal(t, int32(9), transfers[0].ID)
	assert.Equal(t, domain.TransferAccountToObjective, transfers[0].Type)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestNotificationRepository_Create(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("error opening mock database: %v", err)
	}
	defer db.Close()

	repo := postgres.NewNotificationRepository(db)
	n := &domain.Notification{UserID: 7, Title: "Objectif atteint", Message: "Vacances", Attributes: map[string]string{"objective_id": "2"}}

	mock.ExpectQuery("INSERT INTO notifications").
		WithArgs(int32(7), "Objectif atteint", "Vacances", false, []byte(`{"objective_id":"2"}`)).
		WillReturnRows(sqlmock.NewRows([]string{"id", "created_on"}).AddRow(5, time.Now()))

	require.NoError(t, repo.Create(context.Background(), n))
	assert.Equal(t, int32(5), n.ID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestReportRepository_PostingTotals(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("error opening mock database: %v", err)
	}
	defer db.Close()

	repo := postgres.NewReportRepository(db)
	from := time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC)
	to := from.AddDate(0, 1, 0)

	mock.ExpectQuery("FROM postings WHERE user_id = \\$1 AND posted_on >= \\$2 AND posted_on < \\$3").
		WithArgs(int32(7), from, to).
		WillReturnRows(sqlmock.NewRows([]string{"revenue", "expense"}).AddRow("1500.00", "420.75"))

	revenue, expense, err := repo.PostingTotals(context.Background(), 7, from, to)
	require.NoError(t, err)
	assert.Equal(t, "1500", revenue.String())
	assert.Equal(t, "420.75", expense.String())
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestStore_Migrate(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("error opening mock database: %v", err)
	}
	defer db.Close()

	store := postgres.NewStore(db, time.Second)
	mock.ExpectExec("CREATE TABLE IF NOT EXISTS users").WillReturnResult(sqlmock.NewResult(0, 0))

	require.NoError(t, store.Migrate(context.Background()))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestObjectiveRepository_DeleteOnlyWhenEmpty(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("error opening mock database: %v", err)
	}
	defer db.Close()

	repo := postgres.NewObjectiveRepository(db)

	t.Run("Success", func(t *testing.T) {
		mock.ExpectExec("DELETE FROM objectives WHERE id = \\$1 AND current_amount = 0").
			WithArgs(int32(2)).
			WillReturnResult(sqlmock.NewResult(0, 1))

		assert.NoError(t, repo.Delete(context.Background(), 2))
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("Funded concurrently", func(t *testing.T) {
		mock.ExpectExec("DELETE FROM objectives WHERE id = \\$1 AND current_amount = 0").
			WithArgs(int32(3)).
			WillReturnResult(sqlmock.NewResult(0, 0))
		mock.ExpectQuery("SELECT EXISTS").
			WithArgs(int32(3)).
			WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(true))

		err := repo.Delete(context.Background(), 3)
		assert.ErrorIs(t, err, domain.ErrConflict)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("Not found", func(t *testing.T) {
		mock.ExpectExec("DELETE FROM objectives").
			WithArgs(int32(99)).
			WillReturnResult(sqlmock.NewResult(0, 0))
		mock.ExpectQuery("SELECT EXISTS").
			WithArgs(int32(99)).
			WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(false))

		err := repo.Delete(context.Background(), 99)
		assert.ErrorIs(t, err, domain.ErrNotFound)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestAccountRepository_UpdateGuardsNegativeBalance(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("error opening mock database: %v", err)
	}
	defer db.Close()

	repo := postgres.NewAccountRepository(db)
	acc := &domain.Account{ID: 4, Name: "Courant", Type: domain.AccountTypeCurrent, Currency: "MGA"}

	t.Run("Success", func(t *testing.T) {
		mock.ExpectExec("UPDATE accounts SET").
			WithArgs("Courant", "current", "MGA", int32(4), false).
			WillReturnResult(sqlmock.NewResult(0, 1))

		assert.NoError(t, repo.Update(context.Background(), acc, false))
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("Overdrawn since read", func(t *testing.T) {
		mock.ExpectExec("UPDATE accounts SET").
			WithArgs("Courant", "current", "MGA", int32(4), false).
			WillReturnResult(sqlmock.NewResult(0, 0))
		mock.ExpectQuery("SELECT EXISTS").
			WithArgs(int32(4)).
			WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(true))

		err := repo.Update(context.Background(), acc, false)
		assert.ErrorIs(t, err, domain.ErrValidation)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("Missing with overdraft allowed", func(t *testing.T) {
		mock.ExpectExec("UPDATE accounts SET").
			WithArgs("Courant", "current", "MGA", int32(4), true).
			WillReturnResult(sqlmock.NewResult(0, 0))

		err := repo.Update(context.Background(), acc, true)
		assert.ErrorIs(t, err, domain.ErrNotFound)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestAccountRepository_CreateOutOfRange(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("error opening mock database: %v", err)
	}
	defer db.Close()

	repo := postgres.NewAccountRepository(db)
	huge := decimal.RequireFromString("1000000000000")

	mock.ExpectQuery("INSERT INTO accounts").
		WillReturnError(&pq.Error{Code: "22003", Message: "numeric field overflow"})

	err = repo.Create(context.Background(), &domain.Account{OwnerID: 7, Name: "Courant", Type: domain.AccountTypeCurrent, Balance: huge, Currency: "MGA"})
	assert.ErrorIs(t, err, domain.ErrValidation)
	assert.NoError(t, mock.ExpectationsWereMet())
}
