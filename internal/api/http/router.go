package http

import (
	"net/http"
	"time"

	"github.com/gorilla/mux"

	"github.com/thonny3/suivi-buget-perso-sub000/internal/security"
	"github.com/thonny3/suivi-buget-perso-sub000/internal/service"
)

// Services bundles everything the REST handlers call into.
type Services struct {
	Auth          service.AuthService
	Transfers     service.TransferService
	Accounts      service.AccountService
	Shares        service.ShareService
	Objectives    service.ObjectiveService
	Debts         service.DebtService
	Postings      service.PostingService
	Budgets       service.BudgetService
	Subscriptions service.SubscriptionService
	Reports       service.ReportService
	Notifications service.NotificationService
}

type Handler struct {
	svc Services
	now func() time.Time
}

func NewHandler(svc Services) *Handler {
	return &Handler{svc: svc, now: time.Now}
}

// NewRouter registers every REST route behind request id, access log, recovery and auth middleware.
func NewRouter(h *Handler, tokens security.TokenManager) *mux.Router {
	r := mux.NewRouter()
	r.Use(RequestID, AccessLog, Recover, NewAuthMiddleware(tokens).Handler)

	r.HandleFunc("/health", h.Health).Methods(http.MethodGet)

	r.HandleFunc("/auth/register", h.Register).Methods(http.MethodPost)
	r.HandleFunc("/auth/login", h.Login).Methods(http.MethodPost)
	r.HandleFunc("/auth/refresh", h.Refresh).Methods(http.MethodPost)

	r.HandleFunc("/transferts/compte-vers-compte", h.AccountToAccount).Methods(http.MethodPost)
	r.HandleFunc("/transferts/compte-vers-objectif", h.AccountToObjective).Methods(http.MethodPost)
	r.HandleFunc("/transferts/objectif-vers-compte", h.ObjectiveToAccount).Methods(http.MethodPost)
	r.HandleFunc("/transferts/historique", h.TransferHistory).Methods(http.MethodGet)
	r.HandleFunc("/contributions", h.Contribute).Methods(http.MethodPost)

	r.HandleFunc("/comptes", h.ListAccounts).Methods(http.MethodGet)
	r.HandleFunc("/comptes", h.CreateAccount).Methods(http.MethodPost)
	r.HandleFunc("/comptes/{id}", h.GetAccount).Methods(http.MethodGet)
	r.HandleFunc("/comptes/{id}", h.UpdateAccount).Methods(http.MethodPut)
	r.HandleFunc("/comptes/{id}", h.DeleteAccount).Methods(http.MethodDelete)
	r.HandleFunc("/comptes/{id}/operations", h.ListOperations).Methods(http.MethodGet)

	r.HandleFunc("/comptes-partages", h.GrantAccess).Methods(http.MethodPost)
	r.HandleFunc("/comptes-partages/{id_compte}", h.ListGrants).Methods(http.MethodGet)
	r.HandleFunc("/comptes-partages/{id_compte}/{id_utilisateur}", h.RevokeAccess).Methods(http.MethodDelete)

	r.HandleFunc("/objectifs", h.ListObjectives).Methods(http.MethodGet)
	r.HandleFunc("/objectifs", h.CreateObjective).Methods(http.MethodPost)
	r.HandleFunc("/objectifs/{id}", h.GetObjective).Methods(http.MethodGet)
	r.HandleFunc("/objectifs/{id}", h.UpdateObjective).Methods(http.MethodPut)
	r.HandleFunc("/objectifs/{id}", h.DeleteObjective).Methods(http.MethodDelete)
	r.HandleFunc("/objectifs/{id}/contributions", h.ListContributions).Methods(http.MethodGet)

	r.HandleFunc("/dettes", h.ListDebts).Methods(http.MethodGet)
	r.HandleFunc("/dettes", h.CreateDebt).Methods(http.MethodPost)
	r.HandleFunc("/dettes/{id}", h.GetDebt).Methods(http.MethodGet)
	r.HandleFunc("/dettes/{id}", h.UpdateDebt).Methods(http.MethodPut)
	r.HandleFunc("/dettes/{id}", h.DeleteDebt).Methods(http.MethodDelete)
	r.HandleFunc("/dettes/{id}/remboursements", h.RepayDebt).Methods(http.MethodPost)
	r.HandleFunc("/dettes/{id}/remboursements", h.ListRepayments).Methods(http.MethodGet)

	r.HandleFunc("/depenses", h.RecordExpense).Methods(http.MethodPost)
	r.HandleFunc("/revenus", h.RecordRevenue).Methods(http.MethodPost)

	r.HandleFunc("/budgets", h.ListBudgets).Methods(http.MethodGet)
	r.HandleFunc("/budgets", h.SetBudget).Methods(http.MethodPost)
	r.HandleFunc("/budgets/{id}", h.DeleteBudget).Methods(http.MethodDelete)

	r.HandleFunc("/abonnements", h.ListSubscriptions).Methods(http.MethodGet)
	r.HandleFunc("/abonnements", h.CreateSubscription).Methods(http.MethodPost)
	r.HandleFunc("/abonnements/{id}", h.DeleteSubscription).Methods(http.MethodDelete)

	r.HandleFunc("/dashboard", h.Dashboard).Methods(http.MethodGet)
	r.HandleFunc("/notifications", h.ListNotifications).Methods(http.MethodGet)
	r.HandleFunc("/notifications/{id}/lu", h.MarkNotificationRead).Methods(http.MethodPost)

	return r
}
