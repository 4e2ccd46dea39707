package main

import (
	"context"
	"database/sql"
	"errors"
	"flag"
	"fmt"
	"log"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	_ "github.com/lib/pq"

	grpcapi "vehicle-rental-desk/internal/api/grpc"
	httpapi "vehicle-rental-desk/internal/api/http"
	"vehicle-rental-desk/internal/config"
	"vehicle-rental-desk/internal/domain"
	"vehicle-rental-desk/internal/logger"
	"vehicle-rental-desk/internal/repository/postgres"
	"vehicle-rental-desk/internal/security"
	"vehicle-rental-desk/internal/service"
)

func main() {
	// Parse command-line flags
	configPath := flag.String("config", "config/config.dev.yaml", "Path to configuration file")
	flag.Parse()

	// .env is optional; real environment variables win
	_ = godotenv.Load()

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	logger.Initialize(cfg.Log.Level, cfg.Log.Format)
	logger.Info("Starting Vehicle Rental Desk...", "log_level", cfg.Log.Level, "log_format", cfg.Log.Format)
	logger.Info("Server configuration", "address", cfg.GetServerAddress(), "grpc_port", cfg.GRPC.Port)
	logger.Info("Database configuration", "host", cfg.Database.Host, "port", cfg.Database.Port, "database", cfg.Database.Database, "user", cfg.Database.User)

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

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	store := postgres.NewStore(db)
	if cfg.Database.Migrate {
		if err := store.Migrate(ctx); err != nil {
			log.Fatalf("Failed to migrate database: %v", err)
		}
	}

	metrics := service.NewMetrics()
	publisher := newPublisher(cfg)
	defer publisher.Close()

	engine := service.NewBookingEngine(
		store.VehicleRepository,
		store.ReservationRepository,
		service.WithMetrics(metrics),
		service.WithPublisher(publisher),
	)
	if err := engine.Load(ctx); err != nil {
		log.Fatalf("Failed to load fleet: %v", err)
	}
	notifier := service.NewNotifier(engine, service.WithLookahead(cfg.Lookahead()))

	tokens := security.NewTokenManager(cfg.JWT.Secret, cfg.AccessTokenTTL())
	accounts := service.NewAccountService(store.AccountRepository, tokens)
	ensureAdmin(ctx, accounts)

	handler := httpapi.NewHandler(engine, notifier, accounts)
	srv := &http.Server{
		Addr:              cfg.GetServerAddress(),
		Handler:           httpapi.NewRouter(handler, tokens, metrics),
		ReadHeaderTimeout: 10 * time.Second,
	}
	go func() {
		logger.Info("HTTP server listening", "address", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("HTTP server error", "error", err)
			stop()
		}
	}()

	var health *grpcapi.HealthServer
	if cfg.GRPC.Port > 0 {
		lis, err := net.Listen("tcp", cfg.GetGRPCAddress())
		if err != nil {
			log.Fatalf("Failed to listen: %v", err)
		}
		health = grpcapi.NewHealthServer(db)
		go health.Watch(ctx, 30*time.Second)
		go func() {
			logger.Info("gRPC health server listening", "address", lis.Addr().String())
			if err := health.Server().Serve(lis); err != nil {
				logger.Error("Failed to serve gRPC", "error", err)
			}
		}()
	}

	<-ctx.Done()
	logger.Info("Shutting down...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("HTTP shutdown failed", "error", err)
	}
	if health != nil {
		health.Shutdown()
	}
	logger.Info("Server stopped. Goodbye!")
}

// newPublisher connects to RabbitMQ when configured. Booking never depends on the
// broker, so a failed connection degrades to dropping events.
func newPublisher(cfg *config.Config) service.EventPublisher {
	if cfg.Events.RabbitMQURL == "" {
		logger.Info("Booking events disabled")
		return service.NewNoopPublisher()
	}
	p, err := service.NewRabbitPublisher(cfg.Events.RabbitMQURL, cfg.Events.Queue)
	if err != nil {
		logger.Warn("RabbitMQ unavailable, booking events disabled", "error", err)
		return service.NewNoopPublisher()
	}
	logger.Info("Publishing booking events", "queue", cfg.Events.Queue)
	return p
}

// ensureAdmin creates the bootstrap admin named by ADMIN_USERNAME/ADMIN_PASSWORD.
func ensureAdmin(ctx context.Context, accounts service.AccountService) {
	username, password := os.Getenv("ADMIN_USERNAME"), os.Getenv("ADMIN_PASSWORD")
	if username == "" || password == "" {
		return
	}
	_, err := accounts.Register(ctx, username, password, domain.RoleAdmin, domain.Contact{})
	switch {
	case err == nil:
		logger.Info("Bootstrap admin created", "username", username)
	case errors.Is(err, service.ErrDuplicateAccount):
		logger.Debug("Bootstrap admin already exists", "username", username)
	default:
		logger.Error("Failed to create bootstrap admin", "error", fmt.Errorf("register %s: %w", username, err))
	}
}
