package repository

import (
	"context"
	"errors"

	"vehicle-rental-desk/internal/domain"
)

var (
	ErrNotFound = errors.New("record not found")
	ErrConflict = errors.New("record already exists")
)

// VehicleRepository persists the fleet. Save is an upsert keyed by vehicle id.
type VehicleRepository interface {
	ListAll(ctx context.Context) ([]domain.Vehicle, error)
	Save(ctx context.Context, v *domain.Vehicle) error
	Delete(ctx context.Context, id string) error
}

// ReservationRepository is the append-only rental log.
type ReservationRepository interface {
	ListAll(ctx context.Context) ([]domain.ReservationRecord, error)
	ListByHolder(ctx context.Context, holder string) ([]domain.ReservationRecord, error)
	Append(ctx context.Context, rec *domain.ReservationRecord) error
	MarkPaid(ctx context.Context, vehicleID, holder string) (int64, error)
}

type AccountRepository interface {
	Create(ctx context.Context, a *domain.Account) error
	GetByUsername(ctx context.Context, username string) (*domain.Account, error)
	List(ctx context.Context) ([]domain.Account, error)
	Update(ctx context.Context, a *domain.Account) error
	Delete(ctx context.Context, username string) error
}
