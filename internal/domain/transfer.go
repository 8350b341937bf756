package domain

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

type TransferType string

const (
	TransferAccountToAccount   TransferType = "account_to_account"
	TransferAccountToObjective TransferType = "account_to_objective"
	TransferObjectiveToAccount TransferType = "objective_to_account"
	TransferDebtRepayment      TransferType = "debt_repayment"
)

// EntityKind identifies which store a transfer endpoint lives in.
type EntityKind string

const (
	EntityAccount   EntityKind = "account"
	EntityDebt      EntityKind = "debt"
	EntityObjective EntityKind = "objective"
)

// Rank orders entity kinds for lock acquisition.
func (k EntityKind) Rank() int {
	switch k {
	case EntityAccount:
		return 0
	case EntityDebt:
		return 1
	case EntityObjective:
		return 2
	}
	return 3
}

// Endpoints returns the source and target kinds moved by the transfer type.
func (t TransferType) Endpoints() (source, target EntityKind, err error) {
	switch t {
	case TransferAccountToAccount:
		return EntityAccount, EntityAccount, nil
	case TransferAccountToObjective:
		return EntityAccount, EntityObjective, nil
	case TransferObjectiveToAccount:
		return EntityObjective, EntityAccount, nil
	case TransferDebtRepayment:
		return EntityAccount, EntityDebt, nil
	}
	return "", "", fmt.Errorf("%w: unknown transfer type %q", ErrValidation, t)
}

// Transfer is the immutable record of a committed balance movement.
type Transfer struct {
	ID             int32           `json:"id_transfert"`
	Type           TransferType    `json:"type"`
	SourceID       int32           `json:"id_source"`
	TargetID       int32           `json:"id_cible"`
	Amount         decimal.Decimal `json:"montant"`
	ActorUserID    int32           `json:"id_utilisateur"`
	IdempotencyKey string          `json:"cle_idempotence,omitempty"`
	Description    string          `json:"description,omitempty"`
	CreatedOn      time.Time       `json:"date_transfert"`
}

type TransferRequest struct {
	Type           TransferType
	SourceID       int32
	TargetID       int32
	Amount         decimal.Decimal
	ActorUserID    int32
	IdempotencyKey string
	Description    string
	// Date is the business date of a repayment or contribution; zero means today.
	Date time.Time
}

// Validate checks the request shape without touching storage.
func (r *TransferRequest) Validate() error {
	source, target, err := r.Type.Endpoints()
	if err != nil {
		return err
	}
	if err := CheckPositiveAmount("amount", r.Amount); err != nil {
		return err
	}
	if r.SourceID <= 0 || r.TargetID <= 0 {
		return fmt.Errorf("%w: source and target are required", ErrValidation)
	}
	if source == target && r.SourceID == r.TargetID {
		return fmt.Errorf("%w: source and target must differ", ErrValidation)
	}
	if r.ActorUserID <= 0 {
		return fmt.Errorf("%w: actor is required", ErrUnauthorized)
	}
	return nil
}

// EndpointState is the post-commit view of one side of a transfer.
type EndpointState struct {
	Kind   EntityKind      `json:"type"`
	ID     int32           `json:"id"`
	Amount decimal.Decimal `json:"montant"`
	Status string          `json:"statut,omitempty"`
}

type StatusChange struct {
	Kind EntityKind `json:"type"`
	ID   int32      `json:"id"`
	From string     `json:"ancien_statut"`
	To   string     `json:"nouveau_statut"`
}

type TransferResult struct {
	Transfer         Transfer      `json:"transfert"`
	Source           EndpointState `json:"source"`
	Target           EndpointState `json:"cible"`
	StatusChange     *StatusChange `json:"changement_statut,omitempty"`
	ObjectiveReached bool          `json:"objectif_atteint"`
	Contribution     *Contribution `json:"contribution,omitempty"`
	Repayment        *Repayment    `json:"remboursement,omitempty"`
	Replayed         bool          `json:"rejoue"`
}
