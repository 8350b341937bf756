package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

const DefaultAlertThreshold = 80

type Budget struct {
	ID             int32           `json:"id_budget"`
	UserID         int32           `json:"id_utilisateur"`
	Category       string          `json:"categorie"`
	Month          string          `json:"mois"` // YYYY-MM
	Amount         decimal.Decimal `json:"montant"`
	AlertThreshold int32           `json:"seuil_alerte"`
	CreatedOn      time.Time       `json:"cree_le"`
}

// BudgetStatus is the month-to-date consumption of a budget.
type BudgetStatus struct {
	Budget   Budget          `json:"budget"`
	Spent    decimal.Decimal `json:"depense"`
	Percent  decimal.Decimal `json:"pourcentage"`
	Alert    bool            `json:"alerte"`
	Exceeded bool            `json:"depasse"`
}

// EvaluateBudget computes the consumption of b given spent.
func EvaluateBudget(b Budget, spent decimal.Decimal) BudgetStatus {
	st := BudgetStatus{Budget: b, Spent: spent, Percent: decimal.Zero}
	if b.Amount.IsPositive() {
		st.Percent = spent.Div(b.Amount).Mul(decimal.NewFromInt(100)).Round(2)
	}
	threshold := b.AlertThreshold
	if threshold <= 0 {
		threshold = DefaultAlertThreshold
	}
	st.Alert = st.Percent.GreaterThanOrEqual(decimal.NewFromInt32(threshold))
	st.Exceeded = spent.GreaterThan(b.Amount)
	return st
}
