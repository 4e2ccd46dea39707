package main

import (
	"database/sql"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	_ "github.com/lib/pq"

	"vehicle-rental-desk/internal/config"
	"vehicle-rental-desk/internal/jobs"
	"vehicle-rental-desk/internal/logger"
	"vehicle-rental-desk/internal/repository/postgres"
	"vehicle-rental-desk/internal/scheduler"
	"vehicle-rental-desk/internal/security"
	"vehicle-rental-desk/internal/service"
)

func main() {
	configPath := flag.String("config", "config/config.dev.yaml", "Path to configuration file")
	runOnce := flag.String("run-once", "", "Run a specific job once and exit (e.g., 'send-overdue-reminders', 'all')")
	flag.Parse()

	_ = godotenv.Load()

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	logger.Initialize(cfg.Log.Level, cfg.Log.Format)
	logger.Info("Starting Vehicle Rental Desk Cronjob Runner...", "log_level", cfg.Log.Level)

	logger.Info("Connecting to database...", "host", cfg.Database.Host, "port", cfg.Database.Port)
	db, err := sql.Open("postgres", cfg.GetDatabaseConnectionString())
	if err != nil {
		logger.Error("Failed to connect to database", "error", err)
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer db.Close()

	if err := db.Ping(); err != nil {
		logger.Error("Failed to ping database", "error", err)
		log.Fatalf("Failed to ping database: %v", err)
	}
	logger.Info("Database connection established")

	store := postgres.NewStore(db)

	// The runner keeps its own engine and reloads it from storage before every job.
	engine := service.NewBookingEngine(store.VehicleRepository, store.ReservationRepository)
	notifier := service.NewNotifier(engine, service.WithLookahead(cfg.Lookahead()))

	jobServices := &jobs.Services{
		Accounts: service.NewAccountService(store.AccountRepository, security.NewTokenManager(cfg.JWT.Secret, cfg.AccessTokenTTL())),
	}
	if cfg.Email.SendGridAPIKey != "" {
		jobServices.Email = service.NewEmailService(cfg.Email.SendGridAPIKey, cfg.Email.FromEmail, cfg.Email.FromName)
	} else {
		logger.Warn("SendGrid not configured, e-mail reminders disabled")
	}
	if cfg.SMS.AccountSID != "" {
		jobServices.SMS = service.NewSMSService(cfg.SMS.AccountSID, cfg.SMS.AuthToken, cfg.SMS.FromNumber)
	} else {
		logger.Warn("Twilio not configured, SMS reminders disabled")
	}

	jobRunner := jobs.NewJobRunner(engine, notifier, jobServices, cfg)

	if *runOnce != "" {
		logger.Info("Running job once", "job", *runOnce)
		runJobOnce(jobRunner, *runOnce)
		logger.Info("Job execution completed", "job", *runOnce)
		return
	}

	cronScheduler, err := scheduler.NewScheduler(jobRunner)
	if err != nil {
		log.Fatalf("Failed to register jobs: %v", err)
	}
	cronScheduler.Start()
	logger.Info("Cronjob scheduler is running. Press Ctrl+C to stop.", "jobs", cronScheduler.Entries())

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	<-sigChan

	logger.Info("Shutting down cronjob scheduler...")
	cronScheduler.Stop()
	logger.Info("Cronjob scheduler stopped. Goodbye!")
}

// runJobOnce runs a specific job once and exits
func runJobOnce(jobRunner *jobs.JobRunner, jobName string) {
	switch jobName {
	case "send-overdue-reminders":
		jobRunner.SendOverdueReminders()
	case "send-due-soon-reminders":
		jobRunner.SendDueSoonReminders()
	case "send-starting-soon-reminders":
		jobRunner.SendStartingSoonReminders()
	case "all":
		jobRunner.RunAll()
	default:
		logger.Error("Unknown job name", "job", jobName)
		fmt.Printf("Available jobs:\n")
		fmt.Printf("  - send-overdue-reminders\n")
		fmt.Printf("  - send-due-soon-reminders\n")
		fmt.Printf("  - send-starting-soon-reminders\n")
		fmt.Printf("  - all\n")
		os.Exit(1)
	}
}
