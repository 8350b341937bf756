package main

import (
	"database/sql"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	_ "github.com/lib/pq"
	"github.com/spf13/cobra"

	"github.com/thonny3/suivi-buget-perso-sub000/internal/config"
	"github.com/thonny3/suivi-buget-perso-sub000/internal/jobs"
	"github.com/thonny3/suivi-buget-perso-sub000/internal/logger"
	"github.com/thonny3/suivi-buget-perso-sub000/internal/repository/postgres"
	"github.com/thonny3/suivi-buget-perso-sub000/internal/scheduler"
	"github.com/thonny3/suivi-buget-perso-sub000/internal/service"
)

var configPath string

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "cronjob",
	Short: "Scheduled jobs for the Suivi Budget backend",
	Long: `cronjob runs the periodic work of the budget backend: status recompute,
subscription charging and overdue debt reminders.

Use "serve" to keep the cron scheduler running, or "run-once" to execute a
single job and exit.`,
	SilenceUsage: true,
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the cron scheduler until interrupted",
	RunE: func(cmd *cobra.Command, args []string) error {
		jobRunner, closeDB, err := setup()
		if err != nil {
			return err
		}
		defer closeDB()

		cronScheduler, err := scheduler.NewScheduler(jobRunner)
		if err != nil {
			return err
		}
		cronScheduler.Start()
		logger.Info("Cronjob scheduler is running. Press Ctrl+C to stop.")

		// Wait for interrupt signal
		sigChan := make(chan os.Signal, 1)
		signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
		<-sigChan

		// Graceful shutdown
		logger.Info("Shutting down cronjob scheduler...")
		cronScheduler.Stop()
		logger.Info("Cronjob scheduler stopped. Goodbye!")
		return nil
	},
}

var runOnceCmd = &cobra.Command{
	Use:   "run-once <job|all>",
	Short: "Run one job (or all of them) and exit",
	Long: fmt.Sprintf(`Runs a single job once and exits with a non-zero status when it fails.

Available jobs: %s, all`, strings.Join([]string{jobs.JobRecomputeStatuses, jobs.JobChargeSubscriptions, jobs.JobSendDebtReminders}, ", ")),
	Args:      cobra.MatchAll(cobra.ExactArgs(1), cobra.OnlyValidArgs),
	ValidArgs: []string{jobs.JobRecomputeStatuses, jobs.JobChargeSubscriptions, jobs.JobSendDebtReminders, "all"},
	RunE: func(cmd *cobra.Command, args []string) error {
		jobRunner, closeDB, err := setup()
		if err != nil {
			return err
		}
		defer closeDB()

		logger.Info("Running job once", "job", args[0])
		if args[0] == "all" {
			return jobRunner.RunAll()
		}
		return jobRunner.Run(args[0])
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "config/config.dev.yaml", "Path to configuration file")
	rootCmd.AddCommand(serveCmd, runOnceCmd)
}

// setup loads configuration, connects to the database and wires the job runner.
func setup() (*jobs.JobRunner, func(), error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load configuration: %w", err)
	}

	logger.Initialize(cfg.Log.Level, cfg.Log.Format)
	logger.Info("Starting Suivi Budget cronjob runner...", "log_level", cfg.Log.Level)

	logger.Info("Connecting to database...", "host", cfg.Database.Host, "port", cfg.Database.Port)
	db, err := sql.Open("postgres", cfg.GetDatabaseConnectionString())
	if err != nil {
		return nil, nil, fmt.Errorf("failed to connect to database: %w", err)
	}
	db.SetMaxOpenConns(cfg.Database.MaxOpenConns)
	db.SetMaxIdleConns(cfg.Database.MaxIdleConns)
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, nil, fmt.Errorf("failed to ping database: %w", err)
	}
	logger.Info("Database connection established")

	store := postgres.NewStore(db, cfg.Ledger.LockTimeout())

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

	jobServices := &jobs.Services{
		Objectives: service.NewObjectiveService(store.ObjectiveRepository, store.Ledger, cfg.Ledger),
		Debts:      service.NewDebtService(store.DebtRepository, store.Ledger, cfg.Ledger),
		Subscriptions: service.NewSubscriptionService(
			store.SubscriptionRepository,
			store.AccountRepository,
			store.ShareRepository,
			store.UserRepository,
			postingSvc,
			noteSvc,
			emailSvc,
		),
		Notifications: noteSvc,
		Email:         emailSvc,
	}

	jobRunner := jobs.NewJobRunner(jobServices, store.UserRepository, store.DebtRepository, cfg)
	return jobRunner, func() { db.Close() }, nil
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
