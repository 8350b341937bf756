package main

import (
	"context"
	"database/sql"
	"errors"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	_ "github.com/lib/pq"
	"github.com/shopspring/decimal"
	"golang.org/x/sync/errgroup"

	httpapi "github.com/thonny3/suivi-buget-perso-sub000/internal/api/http"
	"github.com/thonny3/suivi-buget-perso-sub000/internal/config"
	"github.com/thonny3/suivi-buget-perso-sub000/internal/logger"
	"github.com/thonny3/suivi-buget-perso-sub000/internal/repository/postgres"
	"github.com/thonny3/suivi-buget-perso-sub000/internal/security"
	"github.com/thonny3/suivi-buget-perso-sub000/internal/service"
)

func main() {
	// Parse command-line flags
	configPath := flag.String("config", "config/config.dev.yaml", "Path to configuration file")
	flag.Parse()

	// Load configuration
	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	// Initialize logger
	logger.Initialize(cfg.Log.Level, cfg.Log.Format)
	logger.Info("Starting Suivi Budget backend...", "log_level", cfg.Log.Level, "log_format", cfg.Log.Format)
	logger.Info("Server configuration", "address", cfg.GetServerAddress())
	logger.Info("Database configuration", "host", cfg.Database.Host, "port", cfg.Database.Port, "database", cfg.Database.Database, "user", cfg.Database.User)
	logger.Info("Ledger policy",
		"lock_timeout_ms", cfg.Ledger.LockTimeoutMs,
		"max_retries", cfg.Ledger.MaxRetries,
		"objective_overflow", cfg.Ledger.ObjectiveOverflow,
		"debt_overpayment", cfg.Ledger.DebtOverpayment,
		"overdraft_account_types", cfg.Ledger.OverdraftAccountTypes)

	// Amounts go out as JSON numbers
	decimal.MarshalJSONWithoutQuotes = true

	// Initialize Database
	logger.Debug("Connecting to database...", "connection_string", fmt.Sprintf("%s@%s:%d/%s", cfg.Database.User, cfg.Database.Host, cfg.Database.Port, cfg.Database.Database))
	db, err := sql.Open("postgres", cfg.GetDatabaseConnectionString())
	if err != nil {
		logger.Error("Failed to connect to database", "error", err)
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer db.Close()
	db.SetMaxOpenConns(cfg.Database.MaxOpenConns)
	db.SetMaxIdleConns(cfg.Database.MaxIdleConns)

	// Test database connection
	if err := db.Ping(); err != nil {
		logger.Error("Failed to ping database", "error", err)
		log.Fatalf("Failed to ping database: %v", err)
	}
	logger.Info("Database connection established")

	// Initialize Repositories
	store := postgres.NewStore(db, cfg.Ledger.LockTimeout())
	if cfg.Database.AutoMigrate {
		if err := store.Migrate(context.Background()); err != nil {
			logger.Error("Failed to migrate database", "error", err)
			log.Fatalf("Failed to migrate database: %v", err)
		}
		logger.Info("Database schema applied")
	}

	// Initialize Security
	tokenManager := security.NewTokenManager(
		cfg.JWT.Secret,
		time.Duration(cfg.JWT.AccessTokenExpiry)*time.Minute,
		time.Duration(cfg.JWT.RefreshTokenExpiry)*time.Minute,
	)

	// Initialize Services
	emailSvc := service.NewEmailService(cfg.Email)
	noteSvc := service.NewNotificationService(store.NotificationRepository)
	postingSvc := service.NewPostingService(
		store.Ledger,
		store.BudgetRepository,
		store.ReportRepository,
		store.UserRepository,
		noteSvc,
		emailSvc,
		cfg.Ledger,
	)
	services := httpapi.Services{
		Auth: service.NewAuthService(store.UserRepository, tokenManager),
		Transfers: service.NewTransferService(
			store.Ledger,
			store.TransferRepository,
			store.UserRepository,
			noteSvc,
			emailSvc,
			cfg.Ledger,
		),
		Accounts:   service.NewAccountService(store.AccountRepository, store.ShareRepository, store.PostingRepository, cfg.Ledger),
		Shares:     service.NewShareService(store.AccountRepository, store.ShareRepository, store.UserRepository, noteSvc, emailSvc),
		Objectives: service.NewObjectiveService(store.ObjectiveRepository, store.Ledger, cfg.Ledger),
		Debts:      service.NewDebtService(store.DebtRepository, store.Ledger, cfg.Ledger),
		Postings:   postingSvc,
		Budgets:    service.NewBudgetService(store.BudgetRepository, store.ReportRepository),
		Subscriptions: service.NewSubscriptionService(
			store.SubscriptionRepository,
			store.AccountRepository,
			store.ShareRepository,
			store.UserRepository,
			postingSvc,
			noteSvc,
			emailSvc,
		),
		Reports: service.NewReportService(
			store.ReportRepository,
			store.DebtRepository,
			store.ObjectiveRepository,
			store.BudgetRepository,
			store.SubscriptionRepository,
		),
		Notifications: noteSvc,
	}

	// Set up HTTP server
	router := httpapi.NewRouter(httpapi.NewHandler(services), tokenManager)
	server := &http.Server{
		Addr:         cfg.GetServerAddress(),
		Handler:      router,
		ReadTimeout:  time.Duration(cfg.Server.ReadTimeoutSeconds) * time.Second,
		WriteTimeout: time.Duration(cfg.Server.WriteTimeoutSeconds) * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		logger.Info("HTTP server listening", "address", server.Addr)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		logger.Info("Shutting down HTTP server...")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), time.Duration(cfg.Server.ShutdownTimeoutSeconds)*time.Second)
		defer cancel()
		return server.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil {
		logger.Error("HTTP server error", "error", err)
		log.Fatalf("Server stopped with error: %v", err)
	}
	logger.Info("HTTP server stopped. Goodbye!")
}
