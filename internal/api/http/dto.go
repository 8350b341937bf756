package http

import (
	"strings"

	"github.com/shopspring/decimal"

	"github.com/thonny3/suivi-buget-perso-sub000/internal/domain"
)

func requireID(field string, v *int32) error {
	if v == nil {
		return missingField(field)
	}
	return nil
}

func requireAmount(field string, v *decimal.Decimal) error {
	if v == nil {
		return missingField(field)
	}
	return nil
}

func requireString(field, v string) error {
	if strings.TrimSpace(v) == "" {
		return missingField(field)
	}
	return nil
}

func firstError(errs ...error) error {
	for _, err := range errs {
		if err != nil {
			return err
		}
	}
	return nil
}

// Auth

type registerRequest struct {
	Name     string `json:"nom"`
	Email    string `json:"email"`
	Password string `json:"mot_de_passe"`
}

func (r *registerRequest) check() error {
	return firstError(requireString("nom", r.Name), requireString("email", r.Email), requireString("mot_de_passe", r.Password))
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"mot_de_passe"`
}

func (r *loginRequest) check() error {
	return firstError(requireString("email", r.Email), requireString("mot_de_passe", r.Password))
}

type authResponse struct {
	User         *domain.User `json:"utilisateur,omitempty"`
	AccessToken  string       `json:"access_token"`
	RefreshToken string       `json:"refresh_token"`
}

// Transfers

type accountTransferRequest struct {
	SourceID    *int32           `json:"id_compte_source"`
	TargetID    *int32           `json:"id_compte_cible"`
	Amount      *decimal.Decimal `json:"montant"`
	Description string           `json:"description"`
}

func (r *accountTransferRequest) check() error {
	return firstError(requireID("id_compte_source", r.SourceID), requireID("id_compte_cible", r.TargetID), requireAmount("montant", r.Amount))
}

// objectiveTransferRequest serves both directions between an account and an objective.
type objectiveTransferRequest struct {
	AccountID   *int32           `json:"id_compte"`
	ObjectiveID *int32           `json:"id_objectif"`
	Amount      *decimal.Decimal `json:"montant"`
	Date        string           `json:"date"`
	Description string           `json:"description"`
}

func (r *objectiveTransferRequest) check() error {
	return firstError(requireID("id_compte", r.AccountID), requireID("id_objectif", r.ObjectiveID), requireAmount("montant", r.Amount))
}

type repaymentRequest struct {
	AccountID   *int32           `json:"id_compte"`
	Amount      *decimal.Decimal `json:"montant"`
	PaidOn      string           `json:"date_paiement"`
	Description string           `json:"description"`
}

func (r *repaymentRequest) check() error {
	return firstError(requireID("id_compte", r.AccountID), requireAmount("montant", r.Amount))
}

type transferHistoryResponse struct {
	Transfers []domain.Transfer `json:"transferts"`
	Total     int32             `json:"total"`
}

// Accounts and sharing

type accountRequest struct {
	Name     string             `json:"nom"`
	Type     domain.AccountType `json:"type"`
	Balance  *decimal.Decimal   `json:"solde"`
	Currency string             `json:"devise"`
}

func (r *accountRequest) check() error {
	return firstError(requireString("nom", r.Name), requireString("type", string(r.Type)))
}

// accountUpdateRequest leaves a field unchanged when it is omitted.
type accountUpdateRequest struct {
	Name string             `json:"nom"`
	Type domain.AccountType `json:"type"`
}

func (r *accountUpdateRequest) check() error { return nil }

type shareRequest struct {
	AccountID *int32           `json:"id_compte"`
	Email     string           `json:"email"`
	Role      domain.ShareRole `json:"role"`
}

func (r *shareRequest) check() error {
	return firstError(requireID("id_compte", r.AccountID), requireString("email", r.Email), requireString("role", string(r.Role)))
}

type operationsResponse struct {
	Operations []domain.Posting `json:"operations"`
	Total      int32            `json:"total"`
}

// Objectives and debts

type objectiveRequest struct {
	Name     string           `json:"nom"`
	Target   *decimal.Decimal `json:"montant_objectif"`
	Deadline string           `json:"date_limite"`
}

func (r *objectiveRequest) check() error {
	return firstError(requireString("nom", r.Name), requireAmount("montant_objectif", r.Target))
}

type objectiveUpdateRequest struct {
	Name     string           `json:"nom"`
	Target   *decimal.Decimal `json:"montant_objectif"`
	Deadline string           `json:"date_limite"`
}

func (r *objectiveUpdateRequest) check() error { return nil }

type debtRequest struct {
	Name         string               `json:"nom"`
	Counterparty string               `json:"contrepartie"`
	Initial      *decimal.Decimal     `json:"montant_initial"`
	InterestRate *decimal.Decimal     `json:"taux_interet"`
	StartDate    string               `json:"date_debut"`
	DueDate      string               `json:"date_fin_prevue"`
	Direction    domain.DebtDirection `json:"type"`
}

func (r *debtRequest) check() error {
	return firstError(requireString("nom", r.Name), requireAmount("montant_initial", r.Initial), requireString("type", string(r.Direction)))
}

type debtUpdateRequest struct {
	Name         string           `json:"nom"`
	Counterparty string           `json:"contrepartie"`
	InterestRate *decimal.Decimal `json:"taux_interet"`
	DueDate      string           `json:"date_fin_prevue"`
}

func (r *debtUpdateRequest) check() error { return nil }

// Postings, budgets, subscriptions

type postingRequest struct {
	AccountID   *int32           `json:"id_compte"`
	Amount      *decimal.Decimal `json:"montant"`
	Category    string           `json:"categorie"`
	Description string           `json:"description"`
	Date        string           `json:"date"`
}

func (r *postingRequest) check() error {
	return firstError(requireID("id_compte", r.AccountID), requireAmount("montant", r.Amount))
}

type budgetRequest struct {
	Category       string           `json:"categorie"`
	Month          string           `json:"mois"`
	Amount         *decimal.Decimal `json:"montant"`
	AlertThreshold int32            `json:"seuil_alerte"`
}

func (r *budgetRequest) check() error {
	return firstError(requireString("categorie", r.Category), requireAmount("montant", r.Amount))
}

type subscriptionRequest struct {
	AccountID   *int32                       `json:"id_compte"`
	Name        string                       `json:"nom"`
	Amount      *decimal.Decimal             `json:"montant"`
	Category    string                       `json:"categorie"`
	Frequency   domain.SubscriptionFrequency `json:"frequence"`
	NextDueDate string                       `json:"prochaine_echeance"`
}

func (r *subscriptionRequest) check() error {
	return firstError(
		requireID("id_compte", r.AccountID),
		requireString("nom", r.Name),
		requireAmount("montant", r.Amount),
		requireString("frequence", string(r.Frequency)),
	)
}

type notificationsResponse struct {
	Notifications []domain.Notification `json:"notifications"`
	Total         int32                 `json:"total"`
}
