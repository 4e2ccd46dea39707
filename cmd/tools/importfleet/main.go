package main

import (
	"context"
	"database/sql"
	"encoding/json"
	"flag"
	"log"
	"os"

	"github.com/joho/godotenv"
	_ "github.com/lib/pq"

	"vehicle-rental-desk/internal/config"
	"vehicle-rental-desk/internal/importer"
	"vehicle-rental-desk/internal/logger"
	"vehicle-rental-desk/internal/repository/postgres"
	"vehicle-rental-desk/internal/service"
)

func main() {
	configPath := flag.String("config", "config/config.dev.yaml", "Path to configuration file")
	file := flag.String("file", "", "Path to the fleet .xlsx workbook")
	sheet := flag.String("sheet", importer.DefaultSheet, "Worksheet holding the fleet")
	dryRun := flag.Bool("dry-run", false, "Validate rows without writing")
	flag.Parse()

	if *file == "" {
		log.Fatal("-file is required")
	}

	_ = godotenv.Load()

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}
	logger.Initialize(cfg.Log.Level, cfg.Log.Format)

	db, err := sql.Open("postgres", cfg.GetDatabaseConnectionString())
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer db.Close()

	ctx := context.Background()
	store := postgres.NewStore(db)
	engine := service.NewBookingEngine(store.VehicleRepository, store.ReservationRepository)
	if err := engine.Load(ctx); err != nil {
		log.Fatalf("Failed to load fleet: %v", err)
	}

	f, err := os.Open(*file)
	if err != nil {
		log.Fatalf("Failed to open workbook: %v", err)
	}
	defer f.Close()

	summary, err := importer.ImportFleet(ctx, engine, f, importer.ImportOptions{Sheet: *sheet, DryRun: *dryRun})
	if err != nil {
		log.Fatalf("Import failed: %v", err)
	}

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	_ = enc.Encode(summary)
}
