package scheduler

import (
	"time"

	"github.com/robfig/cron/v3"

	"vehicle-rental-desk/internal/config"
	"vehicle-rental-desk/internal/logger"
)

// Jobs is the set of reminder jobs the scheduler drives.
type Jobs interface {
	Config() *config.Config
	SendOverdueReminders()
	SendDueSoonReminders()
	SendStartingSoonReminders()
}

// Scheduler manages cron job scheduling
type Scheduler struct {
	cron *cron.Cron
	jobs Jobs
}

// NewScheduler creates a scheduler and registers every job; it fails on a bad cron spec.
func NewScheduler(jobs Jobs) (*Scheduler, error) {
	// UTC timezone and seconds precision
	c := cron.New(
		cron.WithLocation(time.UTC),
		cron.WithSeconds(),
	)

	s := &Scheduler{
		cron: c,
		jobs: jobs,
	}

	if err := s.registerJobs(); err != nil {
		return nil, err
	}
	return s, nil
}

func (s *Scheduler) registerJobs() error {
	cfg := s.jobs.Config().Scheduler

	entries := []struct {
		name string
		spec string
		fn   func()
	}{
		{"SendOverdueReminders", cfg.SendOverdueReminders, s.jobs.SendOverdueReminders},
		{"SendDueSoonReminders", cfg.SendDueSoonReminders, s.jobs.SendDueSoonReminders},
		{"SendStartingSoonReminders", cfg.SendStartingSoonReminders, s.jobs.SendStartingSoonReminders},
	}
	for _, e := range entries {
		if _, err := s.cron.AddFunc(e.spec, e.fn); err != nil {
			logger.Error("Failed to register job", "job", e.name, "spec", e.spec, "error", err)
			return err
		}
	}

	logger.Info("All cron jobs registered successfully", "count", len(entries))
	return nil
}

// Start begins the cron scheduler
func (s *Scheduler) Start() {
	logger.Info("Starting cron scheduler...")
	s.cron.Start()
}

// Stop gracefully stops the cron scheduler and waits for running jobs
func (s *Scheduler) Stop() {
	logger.Info("Stopping cron scheduler...")
	ctx := s.cron.Stop()
	<-ctx.Done()
	logger.Info("Cron scheduler stopped")
}

// Entries returns the number of registered jobs
func (s *Scheduler) Entries() int {
	return len(s.cron.Entries())
}
