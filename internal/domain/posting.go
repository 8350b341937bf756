package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

type PostingKind string

const (
	PostingExpense PostingKind = "expense"
	PostingRevenue PostingKind = "revenue"
)

// Posting is an expense or revenue recorded directly against an account.
type Posting struct {
	ID          int32           `json:"id"`
	AccountID   int32           `json:"id_compte"`
	UserID      int32           `json:"id_utilisateur"`
	Kind        PostingKind     `json:"type"`
	Category    string          `json:"categorie"`
	Amount      decimal.Decimal `json:"montant"`
	Description string          `json:"description,omitempty"`
	PostedOn    time.Time       `json:"date"`
	CreatedOn   time.Time       `json:"cree_le"`
}

// Signed returns the balance delta the posting applies to its account.
func (p *Posting) Signed() decimal.Decimal {
	if p.Kind == PostingExpense {
		return p.Amount.Neg()
	}
	return p.Amount
}
