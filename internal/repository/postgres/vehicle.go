package postgres

import (
	"context"
	"database/sql"
	"fmt"

	"vehicle-rental-desk/internal/domain"
	"vehicle-rental-desk/internal/logger"
	"vehicle-rental-desk/internal/repository"
)

type vehicleRepository struct {
	db *sql.DB
}

func NewVehicleRepository(db *sql.DB) repository.VehicleRepository {
	return &vehicleRepository{db: db}
}

func (r *vehicleRepository) ListAll(ctx context.Context) ([]domain.Vehicle, error) {
	query := `SELECT id, kind, brand, model, price_per_day_cents, available, rented, start_time, end_time, rented_by, paid FROM vehicles ORDER BY id`
	logger.DatabaseCall("vehicles.list_all", query)

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		logger.DatabaseResult("vehicles.list_all", 0, err)
		return nil, err
	}
	defer rows.Close()

	var vehicles []domain.Vehicle
	for rows.Next() {
		var (
			v          domain.Vehicle
			start, end sql.NullTime
			rentedBy   sql.NullString
		)
		if err := rows.Scan(&v.ID, &v.Kind, &v.Brand, &v.Model, &v.PricePerDayCents, &v.Available, &v.Rented, &start, &end, &rentedBy, &v.Paid); err != nil {
			return nil, err
		}
		if start.Valid && end.Valid {
			v.Window = &domain.Window{Start: start.Time, End: end.Time}
		}
		v.RentedBy = rentedBy.String
		vehicles = append(vehicles, v)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	logger.DatabaseResult("vehicles.list_all", int64(len(vehicles)), nil)
	return vehicles, nil
}

func (r *vehicleRepository) Save(ctx context.Context, v *domain.Vehicle) error {
	query := `INSERT INTO vehicles (id, kind, brand, model, price_per_day_cents, available, rented, start_time, end_time, rented_by, paid)
	          VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
	          ON CONFLICT (id) DO UPDATE SET kind=EXCLUDED.kind, brand=EXCLUDED.brand, model=EXCLUDED.model,
	          price_per_day_cents=EXCLUDED.price_per_day_cents, available=EXCLUDED.available, rented=EXCLUDED.rented,
	          start_time=EXCLUDED.start_time, end_time=EXCLUDED.end_time, rented_by=EXCLUDED.rented_by, paid=EXCLUDED.paid`

	var start, end sql.NullTime
	if v.Window != nil {
		start = sql.NullTime{Time: v.Window.Start, Valid: true}
		end = sql.NullTime{Time: v.Window.End, Valid: true}
	}

	logger.DatabaseCall("vehicles.save", query, "vehicle_id", v.ID)
	res, err := r.db.ExecContext(ctx, query, v.ID, v.Kind, v.Brand, v.Model, v.PricePerDayCents, v.Available, v.Rented, start, end, nullString(v.RentedBy), v.Paid)
	if err != nil {
		logger.DatabaseResult("vehicles.save", 0, err, "vehicle_id", v.ID)
		return fmt.Errorf("failed to save vehicle %s: %w", v.ID, err)
	}
	n, _ := res.RowsAffected()
	logger.DatabaseResult("vehicles.save", n, nil, "vehicle_id", v.ID)
	return nil
}

func (r *vehicleRepository) Delete(ctx context.Context, id string) error {
	query := `DELETE FROM vehicles WHERE id = $1`
	logger.DatabaseCall("vehicles.delete", query, "vehicle_id", id)
	res, err := r.db.ExecContext(ctx, query, id)
	if err != nil {
		logger.DatabaseResult("vehicles.delete", 0, err, "vehicle_id", id)
		return fmt.Errorf("failed to delete vehicle %s: %w", id, err)
	}
	n, _ := res.RowsAffected()
	logger.DatabaseResult("vehicles.delete", n, nil, "vehicle_id", id)
	if n == 0 {
		return repository.ErrNotFound
	}
	return nil
}
