package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

type DebtStatus string

const (
	DebtStatusOngoing DebtStatus = "en cours"
	DebtStatusLate    DebtStatus = "en retard"
	DebtStatusSettled DebtStatus = "terminé"
)

type DebtDirection string

const (
	DebtDirectionLent     DebtDirection = "lent"
	DebtDirectionBorrowed DebtDirection = "borrowed"
)

func (d DebtDirection) Valid() bool {
	return d == DebtDirectionLent || d == DebtDirectionBorrowed
}

type Debt struct {
	ID              int32           `json:"id_dette"`
	UserID          int32           `json:"id_utilisateur"`
	Name            string          `json:"nom"`
	Counterparty    string          `json:"contrepartie"`
	InitialAmount   decimal.Decimal `json:"montant_initial"`
	RemainingAmount decimal.Decimal `json:"montant_restant"`
	InterestRate    decimal.Decimal `json:"taux_interet"`
	StartDate       time.Time       `json:"date_debut"`
	DueDate         *time.Time      `json:"date_fin_prevue,omitempty"`
	Direction       DebtDirection   `json:"type"`
	Status          DebtStatus      `json:"statut"`
	CreatedOn       time.Time       `json:"cree_le"`
	UpdatedOn       time.Time       `json:"modifie_le"`
}

// Refresh re-derives Status from the stored amounts and due date.
func (d *Debt) Refresh(today time.Time) {
	d.Status = DeriveDebtStatus(d.RemainingAmount, d.DueDate, today)
}

// Repayment is an immutable payment applied to a debt from an account.
type Repayment struct {
	ID         int32           `json:"id_remboursement"`
	DebtID     int32           `json:"id_dette"`
	AccountID  int32           `json:"id_compte"`
	UserID     int32           `json:"id_utilisateur"`
	TransferID int32           `json:"id_transfert"`
	Amount     decimal.Decimal `json:"montant"`
	PaidOn     time.Time       `json:"date_paiement"`
}
