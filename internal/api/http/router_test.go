package http_test

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	api "github.com/thonny3/suivi-buget-perso-sub000/internal/api/http"
	"github.com/thonny3/suivi-buget-perso-sub000/internal/domain"
	"github.com/thonny3/suivi-buget-perso-sub000/internal/security"
)

const testSecret = "0123456789abcdef0123456789abcdef"

type fixture struct {
	tokens    security.TokenManager
	auth      *MockAuthService
	transfers *MockTransferService
	accounts  *MockAccountService
	shares    *MockShareService
	postings  *MockPostingService
	router    http.Handler
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	f := &fixture{
		tokens:    security.NewTokenManager(testSecret, time.Hour, 24*time.Hour),
		auth:      new(MockAuthService),
		transfers: new(MockTransferService),
		accounts:  new(MockAccountService),
		shares:    new(MockShareService),
		postings:  new(MockPostingService),
	}
	h := api.NewHandler(api.Services{
		Auth:      f.auth,
		Transfers: f.transfers,
		Accounts:  f.accounts,
		Shares:    f.shares,
		Postings:  f.postings,
	})
	f.router = api.NewRouter(h, f.tokens)
	return f
}

func (f *fixture) accessToken(t *testing.T, userID int32) string {
	t.Helper()
	token, err := f.tokens.GenerateAccessToken(userID, "rija@example.mg")
	require.NoError(t, err)
	return token
}

func (f *fixture) do(t *testing.T, method, path, token, body string, headers ...string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, bytes.NewBufferString(body))
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	for i := 0; i+1 < len(headers); i += 2 {
		req.Header.Set(headers[i], headers[i+1])
	}
	rec := httptest.NewRecorder()
	f.router.ServeHTTP(rec, req)
	return rec
}

func decodeMap(t *testing.T, rec *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var body map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	return body
}

func TestRouter_Authentication(t *testing.T) {
	f := newFixture(t)

	rec := f.do(t, http.MethodGet, "/health", "", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.NotEmpty(t, rec.Header().Get("X-Request-ID"))

	rec = f.do(t, http.MethodGet, "/comptes", "", "")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = f.do(t, http.MethodGet, "/comptes", "not-a-jwt", "")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	refresh, err := f.tokens.GenerateRefreshToken(1, "")
	require.NoError(t, err)
	rec = f.do(t, http.MethodGet, "/comptes", refresh, "")
	assert.Equal(t, http.StatusForbidden, rec.Code)

	f.accounts.On("ListAccounts", mock.Anything, int32(1)).Return([]domain.Account{{ID: 3, OwnerID: 1}}, nil).Once()
	rec = f.do(t, http.MethodGet, "/comptes", f.accessToken(t, 1), "")
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestRouter_RefreshRequiresRefreshToken(t *testing.T) {
	f := newFixture(t)
	refresh, err := f.tokens.GenerateRefreshToken(1, "")
	require.NoError(t, err)
	f.auth.On("RefreshToken", mock.Anything, refresh).Return("new-access", "new-refresh", nil).Once()

	rec := f.do(t, http.MethodPost, "/auth/refresh", f.accessToken(t, 1), "")
	assert.Equal(t, http.StatusForbidden, rec.Code)

	rec = f.do(t, http.MethodPost, "/auth/refresh", refresh, "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "new-access", decodeMap(t, rec)["access_token"])
	f.auth.AssertExpectations(t)
}

func TestRouter_AccountToAccount(t *testing.T) {
	f := newFixture(t)
	token := f.accessToken(t, 1)

	expected := domain.TransferRequest{
		Type:           domain.TransferAccountToAccount,
		SourceID:       1,
		TargetID:       2,
		Amount:         decimal.RequireFromString("30000"),
		ActorUserID:    1,
		IdempotencyKey: "k-1",
	}
	result := &domain.TransferResult{Transfer: domain.Transfer{ID: 9, Type: expected.Type}}
	f.transfers.On("Apply", mock.Anything, mock.MatchedBy(func(req domain.TransferRequest) bool {
		return req.Type == expected.Type && req.SourceID == 1 && req.TargetID == 2 &&
			req.Amount.Equal(expected.Amount) && req.ActorUserID == 1 && req.IdempotencyKey == "k-1"
	})).Return(result, nil).Once()

	rec := f.do(t, http.MethodPost, "/transferts/compte-vers-compte", token,
		`{"id_compte_source": 1, "id_compte_cible": 2, "montant": 30000}`, "Idempotency-Key", "k-1")
	require.Equal(t, http.StatusCreated, rec.Code)
	body := decodeMap(t, rec)
	assert.Equal(t, float64(9), body["transfert"].(map[string]any)["id_transfert"])

	replayed := &domain.TransferResult{Transfer: result.Transfer, Replayed: true}
	f.transfers.On("Apply", mock.Anything, mock.Anything).Return(replayed, nil).Once()
	rec = f.do(t, http.MethodPost, "/transferts/compte-vers-compte", token,
		`{"id_compte_source": 1, "id_compte_cible": 2, "montant": "30000"}`, "Idempotency-Key", "k-1")
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestRouter_SchemaErrors(t *testing.T) {
	f := newFixture(t)
	token := f.accessToken(t, 1)

	tests := []struct {
		name  string
		body  string
		field string
	}{
		{"missing amount", `{"id_compte_source": 1, "id_compte_cible": 2}`, "montant"},
		{"missing source", `{"id_compte_cible": 2, "montant": 10}`, "id_compte_source"},
		{"wrong type", `{"id_compte_source": "un", "id_compte_cible": 2, "montant": 10}`, "id_compte_source"},
		{"malformed json", `{"id_compte_source": 1,`, ""},
		{"empty body", ``, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := f.do(t, http.MethodPost, "/transferts/compte-vers-compte", token, tt.body)
			require.Equal(t, http.StatusBadRequest, rec.Code)
			body := decodeMap(t, rec)
			assert.NotEmpty(t, body["erreur"])
			if tt.field != "" {
				assert.Equal(t, tt.field, body["champ"])
			}
		})
	}
	f.transfers.AssertNotCalled(t, "Apply", mock.Anything, mock.Anything)
}

func TestRouter_ErrorMapping(t *testing.T) {
	tests := []struct {
		err    error
		status int
	}{
		{fmt.Errorf("account 1: %w", domain.ErrInsufficientFunds), http.StatusUnprocessableEntity},
		{fmt.Errorf("%w: amount must be positive", domain.ErrValidation), http.StatusUnprocessableEntity},
		{domain.ErrRepaymentExceedsDebt, http.StatusUnprocessableEntity},
		{domain.ErrInsufficientObjectiveFunds, http.StatusUnprocessableEntity},
		{fmt.Errorf("lock wait: %w", domain.ErrContention), http.StatusConflict},
		{domain.ErrConflict, http.StatusConflict},
		{domain.ErrForbidden, http.StatusForbidden},
		{domain.ErrNotFound, http.StatusNotFound},
		{errors.New("connection refused"), http.StatusInternalServerError},
	}
	for _, tt := range tests {
		t.Run(tt.err.Error(), func(t *testing.T) {
			f := newFixture(t)
			f.transfers.On("Apply", mock.Anything, mock.Anything).Return(nil, tt.err).Once()
			rec := f.do(t, http.MethodPost, "/transferts/compte-vers-compte", f.accessToken(t, 1),
				`{"id_compte_source": 1, "id_compte_cible": 2, "montant": 10}`)
			assert.Equal(t, tt.status, rec.Code)
			if errors.Is(tt.err, domain.ErrContention) {
				assert.Equal(t, "1", rec.Header().Get("Retry-After"))
			}
			if tt.status == http.StatusInternalServerError {
				assert.Equal(t, "erreur interne", decodeMap(t, rec)["erreur"])
			}
		})
	}
}

func TestRouter_ObjectiveAndDebtRoutes(t *testing.T) {
	f := newFixture(t)
	token := f.accessToken(t, 1)
	ok := &domain.TransferResult{}

	f.transfers.On("Apply", mock.Anything, mock.MatchedBy(func(req domain.TransferRequest) bool {
		return req.Type == domain.TransferObjectiveToAccount && req.SourceID == 7 && req.TargetID == 3
	})).Return(ok, nil).Once()
	rec := f.do(t, http.MethodPost, "/transferts/objectif-vers-compte", token, `{"id_compte": 3, "id_objectif": 7, "montant": 500}`)
	assert.Equal(t, http.StatusCreated, rec.Code)

	f.transfers.On("Apply", mock.Anything, mock.MatchedBy(func(req domain.TransferRequest) bool {
		return req.Type == domain.TransferAccountToObjective && req.SourceID == 3 && req.TargetID == 7
	})).Return(ok, nil).Once()
	rec = f.do(t, http.MethodPost, "/contributions", token, `{"id_objectif": 7, "montant": 500, "id_compte": 3}`)
	assert.Equal(t, http.StatusCreated, rec.Code)

	paidOn := time.Date(2025, 3, 10, 0, 0, 0, 0, time.UTC)
	f.transfers.On("Apply", mock.Anything, mock.MatchedBy(func(req domain.TransferRequest) bool {
		return req.Type == domain.TransferDebtRepayment && req.SourceID == 3 && req.TargetID == 12 && req.Date.Equal(paidOn)
	})).Return(ok, nil).Once()
	rec = f.do(t, http.MethodPost, "/dettes/12/remboursements", token, `{"montant": 1000, "date_paiement": "2025-03-10", "id_compte": 3}`)
	assert.Equal(t, http.StatusCreated, rec.Code)

	rec = f.do(t, http.MethodPost, "/dettes/12/remboursements", token, `{"montant": 1000, "date_paiement": "10/03/2025", "id_compte": 3}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "date_paiement", decodeMap(t, rec)["champ"])

	f.transfers.AssertExpectations(t)
}

func TestRouter_TransferHistory(t *testing.T) {
	f := newFixture(t)
	token := f.accessToken(t, 1)
	f.transfers.On("History", mock.Anything, int32(1), int32(5), int32(10)).Return([]domain.Transfer{{ID: 4}}, int32(11), nil).Once()

	rec := f.do(t, http.MethodGet, "/transferts/historique?limit=5&offset=10", token, "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, float64(11), decodeMap(t, rec)["total"])

	rec = f.do(t, http.MethodGet, "/transferts/historique?limit=cinq", token, "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestRouter_Sharing(t *testing.T) {
	f := newFixture(t)
	token := f.accessToken(t, 1)

	f.shares.On("GrantAccess", mock.Anything, int32(1), int32(3), "soa@example.mg", domain.ShareRoleContributor).
		Return(&domain.ShareGrant{AccountID: 3, UserID: 4, Role: domain.ShareRoleContributor}, nil).Once()
	rec := f.do(t, http.MethodPost, "/comptes-partages", token, `{"id_compte": 3, "email": "soa@example.mg", "role": "contributeur"}`)
	assert.Equal(t, http.StatusCreated, rec.Code)

	f.shares.On("RevokeAccess", mock.Anything, int32(1), int32(3), int32(4)).Return(nil).Once()
	rec = f.do(t, http.MethodDelete, "/comptes-partages/3/4", token, "")
	assert.Equal(t, http.StatusNoContent, rec.Code)

	rec = f.do(t, http.MethodPost, "/comptes-partages", token, `{"id_compte": 3, "role": "lecteur"}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "email", decodeMap(t, rec)["champ"])
	f.shares.AssertExpectations(t)
}

func TestRouter_Postings(t *testing.T) {
	f := newFixture(t)
	token := f.accessToken(t, 1)

	f.postings.On("Record", mock.Anything, mock.MatchedBy(func(p *domain.Posting) bool {
		return p.Kind == domain.PostingExpense && p.AccountID == 3 && p.UserID == 1 && p.Category == "Transport"
	})).Return(nil).Once()
	rec := f.do(t, http.MethodPost, "/depenses", token, `{"id_compte": 3, "montant": 2500, "categorie": "Transport"}`)
	assert.Equal(t, http.StatusCreated, rec.Code)

	f.postings.On("Record", mock.Anything, mock.MatchedBy(func(p *domain.Posting) bool {
		return p.Kind == domain.PostingRevenue
	})).Return(fmt.Errorf("%w: role lecteur cannot write", domain.ErrForbidden)).Once()
	rec = f.do(t, http.MethodPost, "/revenus", token, `{"id_compte": 3, "montant": 2500}`)
	assert.Equal(t, http.StatusForbidden, rec.Code)
	f.postings.AssertExpectations(t)
}
