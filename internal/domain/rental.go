package domain

import (
	"time"

	"github.com/google/uuid"
)

type RentalEvent string

const (
	RentalEventRented   RentalEvent = "RENTED"
	RentalEventReturned RentalEvent = "RETURNED"
)

// ReservationRecord is an immutable snapshot of a vehicle's rental fields taken at
// rent or return time. Records are never edited in place; paying replaces them.
type ReservationRecord struct {
	ID               uuid.UUID   `json:"id"`
	VehicleID        string      `json:"vehicle_id"`
	Kind             VehicleKind `json:"kind"`
	Brand            string      `json:"brand"`
	Model            string      `json:"model"`
	PricePerDayCents int64       `json:"price_per_day_cents"`
	RentedBy         string      `json:"rented_by"`
	Start            time.Time   `json:"start"`
	End              time.Time   `json:"end"`
	TotalPriceCents  int64       `json:"total_price_cents"`
	Paid             bool        `json:"paid"`
	Event            RentalEvent `json:"event"`
	LoggedAt         time.Time   `json:"logged_at"`
}

// NewReservationRecord snapshots a reserved vehicle. The vehicle must carry a window.
func NewReservationRecord(v *Vehicle, event RentalEvent, loggedAt time.Time) ReservationRecord {
	rec := ReservationRecord{
		ID:               uuid.New(),
		VehicleID:        v.ID,
		Kind:             v.Kind,
		Brand:            v.Brand,
		Model:            v.Model,
		PricePerDayCents: v.PricePerDayCents,
		RentedBy:         v.RentedBy,
		TotalPriceCents:  v.RentalCostCents(),
		Paid:             v.Paid,
		Event:            event,
		LoggedAt:         loggedAt,
	}
	if v.Window != nil {
		rec.Start = v.Window.Start
		rec.End = v.Window.End
	}
	return rec
}

// WithPaid returns a copy of the record marked as paid.
func (r ReservationRecord) WithPaid() ReservationRecord {
	r.Paid = true
	return r
}
