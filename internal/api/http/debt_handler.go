package http

import (
	"net/http"

	"github.com/shopspring/decimal"

	"github.com/thonny3/suivi-buget-perso-sub000/internal/domain"
)

func (h *Handler) ListDebts(w http.ResponseWriter, r *http.Request) {
	userID, err := UserIDFromContext(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}
	debts, err := h.svc.Debts.ListDebts(r.Context(), userID)
	if err != nil {
		writeError(w, r, err)
		return
	}
	if debts == nil {
		debts = []domain.Debt{}
	}
	writeJSON(w, http.StatusOK, debts)
}

func (h *Handler) CreateDebt(w http.ResponseWriter, r *http.Request) {
	userID, err := UserIDFromContext(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}
	var body debtRequest
	if err := decodeBody(w, r, &body); err != nil {
		writeError(w, r, err)
		return
	}
	start, err := parseDate("date_debut", body.StartDate)
	if err != nil {
		writeError(w, r, err)
		return
	}
	due, err := parseOptionalDate("date_fin_prevue", body.DueDate)
	if err != nil {
		writeError(w, r, err)
		return
	}
	debt := &domain.Debt{
		Name:          body.Name,
		Counterparty:  body.Counterparty,
		InitialAmount: *body.Initial,
		InterestRate:  decimal.Zero,
		StartDate:     start,
		DueDate:       due,
		Direction:     body.Direction,
	}
	if body.InterestRate != nil {
		debt.InterestRate = *body.InterestRate
	}
	if err := h.svc.Debts.CreateDebt(r.Context(), userID, debt); err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, debt)
}

func (h *Handler) GetDebt(w http.ResponseWriter, r *http.Request) {
	userID, err := UserIDFromContext(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}
	debtID, err := pathID(r, "id")
	if err != nil {
		writeError(w, r, err)
		return
	}
	debt, err := h.svc.Debts.GetDebt(r.Context(), userID, debtID)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, debt)
}

func (h *Handler) UpdateDebt(w http.ResponseWriter, r *http.Request) {
	userID, err := UserIDFromContext(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}
	debtID, err := pathID(r, "id")
	if err != nil {
		writeError(w, r, err)
		return
	}
	var body debtUpdateRequest
	if err := decodeBody(w, r, &body); err != nil {
		writeError(w, r, err)
		return
	}
	due, err := parseOptionalDate("date_fin_prevue", body.DueDate)
	if err != nil {
		writeError(w, r, err)
		return
	}
	changes := &domain.Debt{ID: debtID, Name: body.Name, Counterparty: body.Counterparty, DueDate: due}
	if body.InterestRate != nil {
		changes.InterestRate = *body.InterestRate
	}
	debt, err := h.svc.Debts.UpdateDebt(r.Context(), userID, changes)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, debt)
}

func (h *Handler) DeleteDebt(w http.ResponseWriter, r *http.Request) {
	userID, err := UserIDFromContext(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}
	debtID, err := pathID(r, "id")
	if err != nil {
		writeError(w, r, err)
		return
	}
	if err := h.svc.Debts.DeleteDebt(r.Context(), userID, debtID); err != nil {
		writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) ListRepayments(w http.ResponseWriter, r *http.Request) {
	userID, err := UserIDFromContext(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}
	debtID, err := pathID(r, "id")
	if err != nil {
		writeError(w, r, err)
		return
	}
	repayments, err := h.svc.Debts.ListRepayments(r.Context(), userID, debtID)
	if err != nil {
		writeError(w, r, err)
		return
	}
	if repayments == nil {
		repayments = []domain.Repayment{}
	}
	writeJSON(w, http.StatusOK, repayments)
}
