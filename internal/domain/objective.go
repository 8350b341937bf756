package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

type ObjectiveStatus string

const (
	ObjectiveStatusInProgress ObjectiveStatus = "En cours"
	ObjectiveStatusReached    ObjectiveStatus = "Atteint"
	ObjectiveStatusLate       ObjectiveStatus = "Retard"
)

type Objective struct {
	ID            int32           `json:"id_objectif"`
	UserID        int32           `json:"id_utilisateur"`
	Name          string          `json:"nom"`
	TargetAmount  decimal.Decimal `json:"montant_objectif"`
	CurrentAmount decimal.Decimal `json:"montant_actuel"`
	Deadline      *time.Time      `json:"date_limite,omitempty"`
	Status        ObjectiveStatus `json:"statut"`
	Progress      decimal.Decimal `json:"pourcentage"`
	CreatedOn     time.Time       `json:"cree_le"`
	UpdatedOn     time.Time       `json:"modifie_le"`
}

// Refresh re-derives Status and Progress from the stored amounts.
func (o *Objective) Refresh(today time.Time) {
	o.Status = DeriveObjectiveStatus(o.CurrentAmount, o.TargetAmount, o.Deadline, today)
	o.Progress = ObjectiveProgress(o.CurrentAmount, o.TargetAmount)
}

// Contribution is an immutable deposit from an account into an objective.
type Contribution struct {
	ID            int32           `json:"id_contribution"`
	ObjectiveID   int32           `json:"id_objectif"`
	AccountID     int32           `json:"id_compte"`
	UserID        int32           `json:"id_utilisateur"`
	TransferID    int32           `json:"id_transfert"`
	Amount        decimal.Decimal `json:"montant"`
	ContributedOn time.Time       `json:"date_contribution"`
}
