package postgres

import (
	"context"
	"database/sql"
	"fmt"

	"vehicle-rental-desk/internal/domain"
	"vehicle-rental-desk/internal/logger"
	"vehicle-rental-desk/internal/repository"
)

const reservationColumns = `id, vehicle_id, kind, brand, model, price_per_day_cents, rented_by, start_time, end_time, total_price_cents, paid, event, logged_at`

type reservationRepository struct {
	db *sql.DB
}

func NewReservationRepository(db *sql.DB) repository.ReservationRepository {
	return &reservationRepository{db: db}
}

func (r *reservationRepository) ListAll(ctx context.Context) ([]domain.ReservationRecord, error) {
	query := `SELECT ` + reservationColumns + ` FROM rentals ORDER BY logged_at, id`
	return r.list(ctx, "rentals.list_all", query)
}

func (r *reservationRepository) ListByHolder(ctx context.Context, holder string) ([]domain.ReservationRecord, error) {
	query := `SELECT ` + reservationColumns + ` FROM rentals WHERE rented_by = $1 ORDER BY logged_at, id`
	return r.list(ctx, "rentals.list_by_holder", query, holder)
}

func (r *reservationRepository) list(ctx context.Context, op, query string, args ...any) ([]domain.ReservationRecord, error) {
	logger.DatabaseCall(op, query)
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		logger.DatabaseResult(op, 0, err)
		return nil, err
	}
	defer rows.Close()

	var records []domain.ReservationRecord
	for rows.Next() {
		var rec domain.ReservationRecord
		if err := rows.Scan(&rec.ID, &rec.VehicleID, &rec.Kind, &rec.Brand, &rec.Model, &rec.PricePerDayCents, &rec.RentedBy, &rec.Start, &rec.End, &rec.TotalPriceCents, &rec.Paid, &rec.Event, &rec.LoggedAt); err != nil {
			return nil, err
		}
		records = append(records, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	logger.DatabaseResult(op, int64(len(records)), nil)
	return records, nil
}

func (r *reservationRepository) Append(ctx context.Context, rec *domain.ReservationRecord) error {
	query := `INSERT INTO rentals (` + reservationColumns + `) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)`
	logger.DatabaseCall("rentals.append", query, "vehicle_id", rec.VehicleID, "event", rec.Event)
	_, err := r.db.ExecContext(ctx, query, rec.ID, rec.VehicleID, rec.Kind, rec.Brand, rec.Model, rec.PricePerDayCents, rec.RentedBy, rec.Start, rec.End, rec.TotalPriceCents, rec.Paid, rec.Event, rec.LoggedAt)
	if err != nil {
		logger.DatabaseResult("rentals.append", 0, err)
		return fmt.Errorf("failed to append rental record: %w", err)
	}
	logger.DatabaseResult("rentals.append", 1, nil)
	return nil
}

// MarkPaid flips every unpaid record of the vehicle for the given holder and returns how many changed.
func (r *reservationRepository) MarkPaid(ctx context.Context, vehicleID, holder string) (int64, error) {
	query := `UPDATE rentals SET paid = TRUE WHERE vehicle_id = $1 AND rented_by = $2 AND paid = FALSE`
	logger.DatabaseCall("rentals.mark_paid", query, "vehicle_id", vehicleID)
	res, err := r.db.ExecContext(ctx, query, vehicleID, holder)
	if err != nil {
		logger.DatabaseResult("rentals.mark_paid", 0, err)
		return 0, fmt.Errorf("failed to mark rentals paid: %w", err)
	}
	n, _ := res.RowsAffected()
	logger.DatabaseResult("rentals.mark_paid", n, nil)
	return n, nil
}
