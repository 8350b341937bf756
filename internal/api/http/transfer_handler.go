package http

import (
	"net/http"
	"strings"

	"github.com/thonny3/suivi-buget-perso-sub000/internal/domain"
)

const idempotencyKeyHeader = "Idempotency-Key"

// applyTransfer runs req through the engine; a replayed request answers 200 instead of 201.
func (h *Handler) applyTransfer(w http.ResponseWriter, r *http.Request, req domain.TransferRequest) {
	userID, err := UserIDFromContext(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}
	req.ActorUserID = userID
	req.IdempotencyKey = strings.TrimSpace(r.Header.Get(idempotencyKeyHeader))

	result, err := h.svc.Transfers.Apply(r.Context(), req)
	if err != nil {
		writeError(w, r, err)
		return
	}
	status := http.StatusCreated
	if result.Replayed {
		status = http.StatusOK
	}
	writeJSON(w, status, result)
}

func (h *Handler) AccountToAccount(w http.ResponseWriter, r *http.Request) {
	var body accountTransferRequest
	if err := decodeBody(w, r, &body); err != nil {
		writeError(w, r, err)
		return
	}
	h.applyTransfer(w, r, domain.TransferRequest{
		Type:        domain.TransferAccountToAccount,
		SourceID:    *body.SourceID,
		TargetID:    *body.TargetID,
		Amount:      *body.Amount,
		Description: body.Description,
	})
}

func (h *Handler) AccountToObjective(w http.ResponseWriter, r *http.Request) {
	h.objectiveTransfer(w, r, domain.TransferAccountToObjective)
}

func (h *Handler) ObjectiveToAccount(w http.ResponseWriter, r *http.Request) {
	h.objectiveTransfer(w, r, domain.TransferObjectiveToAccount)
}

// Contribute is the contribution form route; it moves money like account→objective.
func (h *Handler) Contribute(w http.ResponseWriter, r *http.Request) {
	h.objectiveTransfer(w, r, domain.TransferAccountToObjective)
}

func (h *Handler) objectiveTransfer(w http.ResponseWriter, r *http.Request, typ domain.TransferType) {
	var body objectiveTransferRequest
	if err := decodeBody(w, r, &body); err != nil {
		writeError(w, r, err)
		return
	}
	date, err := parseDate("date", body.Date)
	if err != nil {
		writeError(w, r, err)
		return
	}
	req := domain.TransferRequest{
		Type:        typ,
		SourceID:    *body.AccountID,
		TargetID:    *body.ObjectiveID,
		Amount:      *body.Amount,
		Description: body.Description,
		Date:        date,
	}
	if typ == domain.TransferObjectiveToAccount {
		req.SourceID, req.TargetID = *body.ObjectiveID, *body.AccountID
	}
	h.applyTransfer(w, r, req)
}

func (h *Handler) RepayDebt(w http.ResponseWriter, r *http.Request) {
	debtID, err := pathID(r, "id")
	if err != nil {
		writeError(w, r, err)
		return
	}
	var body repaymentRequest
	if err := decodeBody(w, r, &body); err != nil {
		writeError(w, r, err)
		return
	}
	paidOn, err := parseDate("date_paiement", body.PaidOn)
	if err != nil {
		writeError(w, r, err)
		return
	}
	h.applyTransfer(w, r, domain.TransferRequest{
		Type:        domain.TransferDebtRepayment,
		SourceID:    *body.AccountID,
		TargetID:    debtID,
		Amount:      *body.Amount,
		Description: body.Description,
		Date:        paidOn,
	})
}

func (h *Handler) TransferHistory(w http.ResponseWriter, r *http.Request) {
	userID, err := UserIDFromContext(r.Context())
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
	transfers, total, err := h.svc.Transfers.History(r.Context(), userID, limit, offset)
	if err != nil {
		writeError(w, r, err)
		return
	}
	if transfers == nil {
		transfers = []domain.Transfer{}
	}
	writeJSON(w, http.StatusOK, transferHistoryResponse{Transfers: transfers, Total: total})
}
