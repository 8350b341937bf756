package jobs

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/thonny3/suivi-buget-perso-sub000/internal/config"
	"github.com/thonny3/suivi-buget-perso-sub000/internal/logger"
	"github.com/thonny3/suivi-buget-perso-sub000/internal/repository"
	"github.com/thonny3/suivi-buget-perso-sub000/internal/service"
)

const (
	JobRecomputeStatuses   = "recompute-statuses"
	JobChargeSubscriptions = "charge-subscriptions"
	JobSendDebtReminders   = "send-debt-reminders"
)

// JobRunner coordinates all scheduled jobs
type JobRunner struct {
	services *Services
	users    repository.UserRepository
	debts    repository.DebtRepository
	config   *config.Config
	now      func() time.Time
}

// Services holds all service dependencies needed by jobs
type Services struct {
	Objectives    service.ObjectiveService
	Debts         service.DebtService
	Subscriptions service.SubscriptionService
	Notifications service.NotificationService
	Email         service.EmailService
}

// NewJobRunner creates a new job runner with all dependencies
func NewJobRunner(services *Services, users repository.UserRepository, debts repository.DebtRepository, cfg *config.Config) *JobRunner {
	return &JobRunner{
		services: services,
		users:    users,
		debts:    debts,
		config:   cfg,
		now:      time.Now,
	}
}

// Config returns the configuration the runner was built with
func (jr *JobRunner) Config() *config.Config {
	return jr.config
}

// runWithRecovery wraps job execution with panic recovery
func (jr *JobRunner) runWithRecovery(jobName string, jobFunc func(ctx context.Context) error) (err error) {
	defer func() {
		if r := recover(); r != nil {
			logger.Error("Job panicked", "job", jobName, "panic", r)
			err = fmt.Errorf("job %s panicked: %v", jobName, r)
		}
	}()

	start := time.Now()
	logger.Info("Starting job", "job", jobName)
	if err := jobFunc(context.Background()); err != nil {
		logger.Error("Job failed", "job", jobName, "error", err, "duration_ms", time.Since(start).Milliseconds())
		return err
	}
	logger.Info("Job completed", "job", jobName, "duration_ms", time.Since(start).Milliseconds())
	return nil
}

func (jr *JobRunner) jobs() map[string]func(ctx context.Context) error {
	return map[string]func(ctx context.Context) error{
		JobRecomputeStatuses:   jr.recomputeStatuses,
		JobChargeSubscriptions: jr.chargeSubscriptions,
		JobSendDebtReminders:   jr.sendDebtReminders,
	}
}

// JobNames lists the jobs Run accepts.
func (jr *JobRunner) JobNames() []string {
	names := make([]string, 0, 3)
	for name := range jr.jobs() {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Run executes one job by name (for manual execution)
func (jr *JobRunner) Run(name string) error {
	job, ok := jr.jobs()[name]
	if !ok {
		return fmt.Errorf("unknown job %q", name)
	}
	return jr.runWithRecovery(name, job)
}

// RunAll runs every job once, recompute first so reminders see fresh statuses.
func (jr *JobRunner) RunAll() error {
	var firstErr error
	for _, name := range []string{JobRecomputeStatuses, JobChargeSubscriptions, JobSendDebtReminders} {
		if err := jr.Run(name); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}

// RecomputeStatuses is the cron entry point for the status recompute job.
func (jr *JobRunner) RecomputeStatuses() {
	_ = jr.runWithRecovery(JobRecomputeStatuses, jr.recomputeStatuses)
}

// ChargeSubscriptions is the cron entry point for the subscription charging job.
func (jr *JobRunner) ChargeSubscriptions() {
	_ = jr.runWithRecovery(JobChargeSubscriptions, jr.chargeSubscriptions)
}

// SendDebtReminders is the cron entry point for the debt reminder job.
func (jr *JobRunner) SendDebtReminders() {
	_ = jr.runWithRecovery(JobSendDebtReminders, jr.sendDebtReminders)
}
