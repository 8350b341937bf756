package domain

import "github.com/shopspring/decimal"

type CategoryTotal struct {
	Category string          `json:"categorie"`
	Total    decimal.Decimal `json:"total"`
}

type MonthlyPoint struct {
	Month   string          `json:"mois"`
	Revenue decimal.Decimal `json:"revenus"`
	Expense decimal.Decimal `json:"depenses"`
}

type DebtOverview struct {
	ByStatus      map[DebtStatus]int32 `json:"par_statut"`
	TotalBorrowed decimal.Decimal      `json:"total_emprunte_restant"`
	TotalLent     decimal.Decimal      `json:"total_prete_restant"`
}

type ObjectiveOverview struct {
	ByStatus    map[ObjectiveStatus]int32 `json:"par_statut"`
	TotalSaved  decimal.Decimal           `json:"total_epargne"`
	TotalTarget decimal.Decimal           `json:"total_objectif"`
}

type SubscriptionOverview struct {
	ActiveCount int32           `json:"actifs"`
	MonthlyCost decimal.Decimal `json:"cout_mensuel"`
}

// Dashboard is a read-only rollup over the stores, always computed on demand.
type Dashboard struct {
	TotalBalance       decimal.Decimal      `json:"solde_total"`
	AccountCount       int32                `json:"nombre_comptes"`
	MonthRevenue       decimal.Decimal      `json:"revenus_mois"`
	MonthExpense       decimal.Decimal      `json:"depenses_mois"`
	ExpensesByCategory []CategoryTotal      `json:"depenses_par_categorie"`
	MonthlySeries      []MonthlyPoint       `json:"serie_mensuelle"`
	Debts              DebtOverview         `json:"dettes"`
	Objectives         ObjectiveOverview    `json:"objectifs"`
	Budgets            []BudgetStatus       `json:"budgets"`
	Subscriptions      SubscriptionOverview `json:"abonnements"`
}
