package postgres

import (
	"context"
	"database/sql"
	_ "embed"
	"errors"
	"fmt"

	"vehicle-rental-desk/internal/logger"
	"vehicle-rental-desk/internal/repository"

	"github.com/lib/pq"
)

//go:embed schema.sql
var schema string

const uniqueViolation = "23505"

type Store struct {
	db *sql.DB
	repository.VehicleRepository
	repository.ReservationRepository
	repository.AccountRepository
}

func NewStore(db *sql.DB) *Store {
	return &Store{
		db:                    db,
		VehicleRepository:     NewVehicleRepository(db),
		ReservationRepository: NewReservationRepository(db),
		AccountRepository:     NewAccountRepository(db),
	}
}

// Migrate creates the tables if they do not exist yet.
func (s *Store) Migrate(ctx context.Context) error {
	logger.DatabaseCall("migrate", "schema.sql")
	_, err := s.db.ExecContext(ctx, schema)
	logger.DatabaseResult("migrate", 0, err)
	if err != nil {
		return fmt.Errorf("failed to apply schema: %w", err)
	}
	return nil
}

func isUniqueViolation(err error) bool {
	var pqErr *pq.Error
	return errors.As(err, &pqErr) && pqErr.Code == uniqueViolation
}

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}
