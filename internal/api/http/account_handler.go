package http

import (
	"net/http"

	"github.com/shopspring/decimal"

	"github.com/thonny3/suivi-buget-perso-sub000/internal/domain"
)

func (h *Handler) ListAccounts(w http.ResponseWriter, r *http.Request) {
	userID, err := UserIDFromContext(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}
	accounts, err := h.svc.Accounts.ListAccounts(r.Context(), userID)
	if err != nil {
		writeError(w, r, err)
		return
	}
	if accounts == nil {
		accounts = []domain.Account{}
	}
	writeJSON(w, http.StatusOK, accounts)
}

func (h *Handler) CreateAccount(w http.ResponseWriter, r *http.Request) {
	userID, err := UserIDFromContext(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}
	var body accountRequest
	if err := decodeBody(w, r, &body); err != nil {
		writeError(w, r, err)
		return
	}
	account := &domain.Account{Name: body.Name, Type: body.Type, Currency: body.Currency, Balance: decimal.Zero}
	if body.Balance != nil {
		account.Balance = *body.Balance
	}
	if err := h.svc.Accounts.CreateAccount(r.Context(), userID, account); err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, account)
}

func (h *Handler) GetAccount(w http.ResponseWriter, r *http.Request) {
	userID, err := UserIDFromContext(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}
	accountID, err := pathID(r, "id")
	if err != nil {
		writeError(w, r, err)
		return
	}
	account, err := h.svc.Accounts.GetAccount(r.Context(), userID, accountID)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, account)
}

func (h *Handler) UpdateAccount(w http.ResponseWriter, r *http.Request) {
	userID, err := UserIDFromContext(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}
	accountID, err := pathID(r, "id")
	if err != nil {
		writeError(w, r, err)
		return
	}
	var body accountUpdateRequest
	if err := decodeBody(w, r, &body); err != nil {
		writeError(w, r, err)
		return
	}
	account, err := h.svc.Accounts.UpdateAccount(r.Context(), userID, &domain.Account{ID: accountID, Name: body.Name, Type: body.Type})
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, account)
}

func (h *Handler) DeleteAccount(w http.ResponseWriter, r *http.Request) {
	userID, err := UserIDFromContext(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}
	accountID, err := pathID(r, "id")
	if err != nil {
		writeError(w, r, err)
		return
	}
	if err := h.svc.Accounts.DeleteAccount(r.Context(), userID, accountID); err != nil {
		writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) ListOperations(w http.ResponseWriter, r *http.Request) {
	userID, err := UserIDFromContext(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}
	accountID, err := pathID(r, "id")
	if err != nil {
		writeError(w, r, err)
		return
	}
	limit, err := queryInt(r, "limit", 0)
	if err != nil {
		writeError(w, r, err)
		return
	}
	offset, err := queryInt(r, "offset", 0)
	if err != nil {
		writeError(w, r, err)
		return
	}
	ops, total, err := h.svc.Accounts.ListOperations(r.Context(), userID, accountID, limit, offset)
	if err != nil {
		writeError(w, r, err)
		return
	}
	if ops == nil {
		ops = []domain.Posting{}
	}
	writeJSON(w, http.StatusOK, operationsResponse{Operations: ops, Total: total})
}

func (h *Handler) GrantAccess(w http.ResponseWriter, r *http.Request) {
	userID, err := UserIDFromContext(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}
	var body shareRequest
	if err := decodeBody(w, r, &body); err != nil {
		writeError(w, r, err)
		return
	}
	grant, err := h.svc.Shares.GrantAccess(r.Context(), userID, *body.AccountID, body.Email, body.Role)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, grant)
}

func (h *Handler) ListGrants(w http.ResponseWriter, r *http.Request) {
	userID, err := UserIDFromContext(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}
	accountID, err := pathID(r, "id_compte")
	if err != nil {
		writeError(w, r, err)
		return
	}
	grants, err := h.svc.Shares.ListGrants(r.Context(), userID, accountID)
	if err != nil {
		writeError(w, r, err)
		return
	}
	if grants == nil {
		grants = []domain.ShareGrant{}
	}
	writeJSON(w, http.StatusOK, grants)
}

func (h *Handler) RevokeAccess(w http.ResponseWriter, r *http.Request) {
	userID, err := UserIDFromContext(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}
	accountID, err := pathID(r, "id_compte")
	if err != nil {
		writeError(w, r, err)
		return
	}
	targetID, err := pathID(r, "id_utilisateur")
	if err != nil {
		writeError(w, r, err)
		return
	}
	if err := h.svc.Shares.RevokeAccess(r.Context(), userID, accountID, targetID); err != nil {
		writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
