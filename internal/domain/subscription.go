package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

type SubscriptionFrequency string

const (
	FrequencyWeekly  SubscriptionFrequency = "weekly"
	FrequencyMonthly SubscriptionFrequency = "monthly"
	FrequencyYearly  SubscriptionFrequency = "yearly"
)

func (f SubscriptionFrequency) Valid() bool {
	return f == FrequencyWeekly || f == FrequencyMonthly || f == FrequencyYearly
}

type Subscription struct {
	ID          int32                 `json:"id_abonnement"`
	UserID      int32                 `json:"id_utilisateur"`
	AccountID   int32                 `json:"id_compte"`
	Name        string                `json:"nom"`
	Amount      decimal.Decimal       `json:"montant"`
	Category    string                `json:"categorie"`
	Frequency   SubscriptionFrequency `json:"frequence"`
	NextDueDate time.Time             `json:"prochaine_echeance"`
	Active      bool                  `json:"actif"`
	CreatedOn   time.Time             `json:"cree_le"`
}

// MonthlyCost normalizes the subscription amount to a monthly figure.
func (s *Subscription) MonthlyCost() decimal.Decimal {
	switch s.Frequency {
	case FrequencyWeekly:
		return s.Amount.Mul(decimal.NewFromInt(52)).Div(decimal.NewFromInt(12)).Round(2)
	case FrequencyYearly:
		return s.Amount.Div(decimal.NewFromInt(12)).Round(2)
	}
	return s.Amount
}
