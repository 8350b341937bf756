package domain

import (
	"testing"
	"time"

	fuzz "github.com/google/gofuzz"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func day(y int, m time.Month, d int) *time.Time {
	t := time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
	return &t
}

func TestDeriveDebtStatus(t *testing.T) {
	today := time.Date(2024, 6, 15, 14, 30, 0, 0, time.UTC)

	tests := []struct {
		name      string
		remaining string
		due       *time.Time
		want      DebtStatus
	}{
		{"zero remaining is settled", "0", day(2024, 1, 1), DebtStatusSettled},
		{"negative remaining is settled", "-5", nil, DebtStatusSettled},
		{"no due date", "100", nil, DebtStatusOngoing},
		{"due today is not late", "100", day(2024, 6, 15), DebtStatusOngoing},
		{"due yesterday is late", "100", day(2024, 6, 14), DebtStatusLate},
		{"due tomorrow", "0.01", day(2024, 6, 16), DebtStatusOngoing},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := DeriveDebtStatus(decimal.RequireFromString(tt.remaining), tt.due, today)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestDeriveObjectiveStatus(t *testing.T) {
	today := time.Date(2024, 6, 15, 0, 0, 1, 0, time.UTC)

	tests := []struct {
		name     string
		current  string
		target   string
		deadline *time.Time
		want     ObjectiveStatus
	}{
		{"below target", "950", "1000", nil, ObjectiveStatusInProgress},
		{"exactly target", "1000", "1000", nil, ObjectiveStatusReached},
		{"overflow", "1050", "1000", nil, ObjectiveStatusReached},
		{"reached beats missed deadline", "1000", "1000", day(2024, 1, 1), ObjectiveStatusReached},
		{"missed deadline", "10", "1000", day(2024, 6, 14), ObjectiveStatusLate},
		{"deadline today", "10", "1000", day(2024, 6, 15), ObjectiveStatusInProgress},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := DeriveObjectiveStatus(decimal.RequireFromString(tt.current), decimal.RequireFromString(tt.target), tt.deadline, today)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestDeriveStatus_Deterministic(t *testing.T) {
	f := fuzz.New().NilChance(0.2)
	base := time.Date(2024, 6, 15, 12, 0, 0, 0, time.UTC)

	for i := 0; i < 500; i++ {
		var cents, targetCents int64
		var offset int16
		var dueOffset *int16
		f.Fuzz(&cents)
		f.Fuzz(&targetCents)
		f.Fuzz(&offset)
		f.Fuzz(&dueOffset)

		today := base.AddDate(0, 0, int(offset))
		var due *time.Time
		if dueOffset != nil {
			d := base.AddDate(0, 0, int(*dueOffset))
			due = &d
		}
		amount := decimal.New(cents, -2)
		target := decimal.New(targetCents, -2)

		first := DeriveDebtStatus(amount, due, today)
		assert.Equal(t, first, DeriveDebtStatus(amount, due, today))
		if !amount.IsPositive() {
			assert.Equal(t, DebtStatusSettled, first)
		}

		obj := DeriveObjectiveStatus(amount, target, due, today)
		assert.Equal(t, obj, DeriveObjectiveStatus(amount, target, due, today))
		assert.Equal(t, amount.GreaterThanOrEqual(target), obj == ObjectiveStatusReached)
	}
}

func TestRefresh_Idempotent(t *testing.T) {
	today := time.Date(2024, 6, 15, 9, 0, 0, 0, time.UTC)
	d := &Debt{RemainingAmount: decimal.NewFromInt(200), DueDate: day(2024, 6, 1)}
	d.Refresh(today)
	first := d.Status
	d.Refresh(today)
	assert.Equal(t, DebtStatusLate, first)
	assert.Equal(t, first, d.Status)

	o := &Objective{CurrentAmount: decimal.NewFromInt(250), TargetAmount: decimal.NewFromInt(1000)}
	o.Refresh(today)
	assert.Equal(t, ObjectiveStatusInProgress, o.Status)
	assert.True(t, decimal.NewFromInt(25).Equal(o.Progress))
	o.Refresh(today)
	assert.Equal(t, ObjectiveStatusInProgress, o.Status)
}

func TestStartOfDay(t *testing.T) {
	loc := time.FixedZone("EAT", 3*3600)
	in := time.Date(2024, 2, 29, 23, 59, 59, 999, loc)
	got := StartOfDay(in)
	assert.Equal(t, time.Date(2024, 2, 29, 0, 0, 0, 0, loc), got)
}
