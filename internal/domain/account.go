package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

type AccountType string

const (
	AccountTypeCurrent     AccountType = "current"
	AccountTypeSavings     AccountType = "savings"
	AccountTypeInvestment  AccountType = "investment"
	AccountTypeTrading     AccountType = "trading"
	AccountTypeCrypto      AccountType = "crypto"
	AccountTypeMobileMoney AccountType = "mobile-money"
	AccountTypeCash        AccountType = "cash"
)

// Valid reports whether t is one of the supported account types.
func (t AccountType) Valid() bool {
	switch t {
	case AccountTypeCurrent, AccountTypeSavings, AccountTypeInvestment, AccountTypeTrading,
		AccountTypeCrypto, AccountTypeMobileMoney, AccountTypeCash:
		return true
	}
	return false
}

type Account struct {
	ID        int32           `json:"id_compte"`
	OwnerID   int32           `json:"id_proprietaire"`
	Name      string          `json:"nom"`
	Type      AccountType     `json:"type"`
	Balance   decimal.Decimal `json:"solde"`
	Currency  string          `json:"devise"`
	Role      ShareRole       `json:"role,omitempty"` // caller's role when listed through a share grant
	CreatedOn time.Time       `json:"cree_le"`
	UpdatedOn time.Time       `json:"modifie_le"`
}

type ShareRole string

const (
	ShareRoleReader      ShareRole = "lecteur"
	ShareRoleContributor ShareRole = "contributeur"
	ShareRoleOwner       ShareRole = "proprietaire"
)

func (r ShareRole) Valid() bool {
	return r == ShareRoleReader || r == ShareRoleContributor || r == ShareRoleOwner
}

// CanWrite reports whether the role allows moving money out of or into the account.
func (r ShareRole) CanWrite() bool {
	return r == ShareRoleContributor || r == ShareRoleOwner
}

// CanManage reports whether the role allows granting or revoking access.
func (r ShareRole) CanManage() bool {
	return r == ShareRoleOwner
}

type ShareGrant struct {
	AccountID int32     `json:"id_compte"`
	UserID    int32     `json:"id_utilisateur"`
	Email     string    `json:"email,omitempty"`
	Name      string    `json:"nom,omitempty"`
	Role      ShareRole `json:"role"`
	CreatedOn time.Time `json:"cree_le"`
}

// AccessRole resolves the effective role of userID on the account given an
// optional share grant role. Owners always get ShareRoleOwner.
func (a *Account) AccessRole(userID int32, granted ShareRole) ShareRole {
	if a.OwnerID == userID {
		return ShareRoleOwner
	}
	return granted
}
