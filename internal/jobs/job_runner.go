package jobs

import (
	"context"

	"vehicle-rental-desk/internal/config"
	"vehicle-rental-desk/internal/logger"
	"vehicle-rental-desk/internal/service"
)

// FleetLoader refreshes the in-memory fleet from storage before each run.
type FleetLoader interface {
	Load(ctx context.Context) error
}

// Services holds the delivery dependencies needed by jobs. Email and SMS may be nil
// when the channel is not configured.
type Services struct {
	Accounts service.AccountService
	Email    service.EmailService
	SMS      service.SMSService
}

// JobRunner coordinates all scheduled jobs
type JobRunner struct {
	fleet    FleetLoader
	notifier service.NotificationService
	services *Services
	config   *config.Config
}

func NewJobRunner(fleet FleetLoader, notifier service.NotificationService, services *Services, cfg *config.Config) *JobRunner {
	return &JobRunner{
		fleet:    fleet,
		notifier: notifier,
		services: services,
		config:   cfg,
	}
}

func (jr *JobRunner) Config() *config.Config {
	return jr.config
}

// runWithRecovery wraps job execution with panic recovery
func (jr *JobRunner) runWithRecovery(jobName string, jobFunc func()) {
	defer func() {
		if r := recover(); r != nil {
			logger.Error("Job panicked", "job", jobName, "panic", r)
		}
	}()

	logger.Info("Starting job", "job", jobName)
	jobFunc()
	logger.Info("Job completed", "job", jobName)
}

// RunAll runs every reminder job once (for manual execution)
func (jr *JobRunner) RunAll() {
	jr.SendOverdueReminders()
	jr.SendDueSoonReminders()
	jr.SendStartingSoonReminders()
}
