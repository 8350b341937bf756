package http

import (
	"net/http"

	"github.com/thonny3/suivi-buget-perso-sub000/internal/domain"
)

func (h *Handler) RecordExpense(w http.ResponseWriter, r *http.Request) {
	h.recordPosting(w, r, domain.PostingExpense)
}

func (h *Handler) RecordRevenue(w http.ResponseWriter, r *http.Request) {
	h.recordPosting(w, r, domain.PostingRevenue)
}

func (h *Handler) recordPosting(w http.ResponseWriter, r *http.Request, kind domain.PostingKind) {
	userID, err := UserIDFromContext(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}
	var body postingRequest
	if err := decodeBody(w, r, &body); err != nil {
		writeError(w, r, err)
		return
	}
	postedOn, err := parseDate("date", body.Date)
	if err != nil {
		writeError(w, r, err)
		return
	}
	posting := &domain.Posting{
		AccountID:   *body.AccountID,
		UserID:      userID,
		Kind:        kind,
		Category:    body.Category,
		Amount:      *body.Amount,
		Description: body.Description,
		PostedOn:    postedOn,
	}
	if err := h.svc.Postings.Record(r.Context(), posting); err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, posting)
}

func (h *Handler) ListBudgets(w http.ResponseWriter, r *http.Request) {
	userID, err := UserIDFromContext(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}
	statuses, err := h.svc.Budgets.ListBudgets(r.Context(), userID, r.URL.Query().Get("mois"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, statuses)
}

func (h *Handler) SetBudget(w http.ResponseWriter, r *http.Request) {
	userID, err := UserIDFromContext(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}
	var body budgetRequest
	if err := decodeBody(w, r, &body); err != nil {
		writeError(w, r, err)
		return
	}
	budget := &domain.Budget{
		Category:       body.Category,
		Month:          body.Month,
		Amount:         *body.Amount,
		AlertThreshold: body.AlertThreshold,
	}
	if err := h.svc.Budgets.SetBudget(r.Context(), userID, budget); err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, budget)
}

func (h *Handler) DeleteBudget(w http.ResponseWriter, r *http.Request) {
	userID, err := UserIDFromContext(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}
	budgetID, err := pathID(r, "id")
	if err != nil {
		writeError(w, r, err)
		return
	}
	if err := h.svc.Budgets.DeleteBudget(r.Context(), userID, budgetID); err != nil {
		writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) ListSubscriptions(w http.ResponseWriter, r *http.Request) {
	userID, err := UserIDFromContext(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}
	subs, err := h.svc.Subscriptions.ListSubscriptions(r.Context(), userID)
	if err != nil {
		writeError(w, r, err)
		return
	}
	if subs == nil {
		subs = []domain.Subscription{}
	}
	writeJSON(w, http.StatusOK, subs)
}

func (h *Handler) CreateSubscription(w http.ResponseWriter, r *http.Request) {
	userID, err := UserIDFromContext(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}
	var body subscriptionRequest
	if err := decodeBody(w, r, &body); err != nil {
		writeError(w, r, err)
		return
	}
	next, err := parseDate("prochaine_echeance", body.NextDueDate)
	if err != nil {
		writeError(w, r, err)
		return
	}
	sub := &domain.Subscription{
		AccountID:   *body.AccountID,
		Name:        body.Name,
		Amount:      *body.Amount,
		Category:    body.Category,
		Frequency:   body.Frequency,
		NextDueDate: next,
	}
	if err := h.svc.Subscriptions.CreateSubscription(r.Context(), userID, sub); err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, sub)
}

func (h *Handler) DeleteSubscription(w http.ResponseWriter, r *http.Request) {
	userID, err := UserIDFromContext(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}
	subID, err := pathID(r, "id")
	if err != nil {
		writeError(w, r, err)
		return
	}
	if err := h.svc.Subscriptions.DeleteSubscription(r.Context(), userID, subID); err != nil {
		writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
