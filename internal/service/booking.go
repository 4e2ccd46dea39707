package service

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"vehicle-rental-desk/internal/domain"
	"vehicle-rental-desk/internal/logger"
	"vehicle-rental-desk/internal/repository"
)

// BookingEngine owns the authoritative in-memory fleet and rental history and writes
// every mutation through to storage. One lock covers the whole collection and is held
// from the availability check until the storage write returns.
//
// A failed storage write is logged and counted but never rolled back: the in-memory
// state stays the source of truth for the rest of the process lifetime.
type BookingEngine struct {
	mu       sync.RWMutex
	vehicles []*domain.Vehicle
	history  []domain.ReservationRecord

	vehicleRepo repository.VehicleRepository
	rentalRepo  repository.ReservationRepository
	publisher   EventPublisher
	metrics     *Metrics
	now         func() time.Time
	log         *slog.Logger
}

type EngineOption func(*BookingEngine)

func WithClock(now func() time.Time) EngineOption {
	return func(e *BookingEngine) { e.now = now }
}

func WithMetrics(m *Metrics) EngineOption {
	return func(e *BookingEngine) { e.metrics = m }
}

func WithPublisher(p EventPublisher) EngineOption {
	return func(e *BookingEngine) { e.publisher = p }
}

func NewBookingEngine(vehicleRepo repository.VehicleRepository, rentalRepo repository.ReservationRepository, opts ...EngineOption) *BookingEngine {
	e := &BookingEngine{
		vehicleRepo: vehicleRepo,
		rentalRepo:  rentalRepo,
		publisher:   NewNoopPublisher(),
		now:         time.Now,
		log:         logger.WithService("booking"),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Load replaces the in-memory state with everything the storage collaborator holds.
func (e *BookingEngine) Load(ctx context.Context) error {
	vehicles, err := e.vehicleRepo.ListAll(ctx)
	if err != nil {
		return fmt.Errorf("failed to load vehicles: %w", err)
	}
	records, err := e.rentalRepo.ListAll(ctx)
	if err != nil {
		return fmt.Errorf("failed to load rental history: %w", err)
	}

	e.mu.Lock()
	defer e.mu.Unlock()
	e.vehicles = make([]*domain.Vehicle, 0, len(vehicles))
	for i := range vehicles {
		e.vehicles = append(e.vehicles, vehicles[i].Clone())
	}
	e.history = append([]domain.ReservationRecord(nil), records...)
	e.log.Info("Booking engine loaded", "vehicles", len(e.vehicles), "records", len(e.history))
	return nil
}

// Now is the engine clock, shared with the notifier.
func (e *BookingEngine) Now() time.Time {
	return e.now()
}

func (e *BookingEngine) AddVehicle(ctx context.Context, v *domain.Vehicle) (err error) {
	defer func() { e.metrics.ObserveBooking("add", err) }()

	stored := v.Clone()
	stored.ID = strings.TrimSpace(stored.ID)
	if stored.ID == "" || stored.PricePerDayCents < 0 || !stored.Kind.Valid() {
		return ErrInvalidVehicle
	}
	if err := stored.CheckState(); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidVehicle, err)
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	if e.find(stored.ID) != nil {
		return ErrDuplicateVehicle
	}
	e.vehicles = append(e.vehicles, stored)
	e.persist(ctx, "save_vehicle", func(ctx context.Context) error {
		return e.vehicleRepo.Save(ctx, stored)
	})
	e.log.Info("Vehicle added", "vehicle_id", stored.ID, "kind", stored.Kind)
	return nil
}

// FindVehicle returns a copy of the first vehicle whose id matches case-insensitively.
func (e *BookingEngine) FindVehicle(id string) (*domain.Vehicle, error) {
	e.mu.RLock()
	defer e.mu.RUnlock()
	v := e.find(id)
	if v == nil {
		return nil, ErrVehicleNotFound
	}
	return v.Clone(), nil
}

func (e *BookingEngine) IsAvailableForWindow(v *domain.Vehicle, start, end time.Time) bool {
	return v.AvailableFor(start, end)
}

// IsAvailableDuring is IsAvailableForWindow by id; unknown ids are never available.
func (e *BookingEngine) IsAvailableDuring(id string, start, end time.Time) bool {
	e.mu.RLock()
	defer e.mu.RUnlock()
	v := e.find(id)
	return v != nil && v.AvailableFor(start, end)
}

// Rent reserves the vehicle for holder over [start, end] and logs a RENTED record.
func (e *BookingEngine) Rent(ctx context.Context, id, holder string, start, end time.Time, prepaid bool) (rec domain.ReservationRecord, err error) {
	defer func() { e.metrics.ObserveBooking("rent", err) }()

	if strings.TrimSpace(holder) == "" || !start.Before(end) {
		return domain.ReservationRecord{}, ErrInvalidWindow
	}

	e.mu.Lock()
	v := e.find(id)
	if v == nil {
		e.mu.Unlock()
		return domain.ReservationRecord{}, ErrVehicleNotFound
	}
	if !v.AvailableFor(start, end) {
		e.mu.Unlock()
		return domain.ReservationRecord{}, ErrWindowConflict
	}

	now := e.now()
	v.Reserve(holder, domain.Window{Start: start, End: end}, prepaid)
	rec = domain.NewReservationRecord(v, domain.RentalEventRented, now)
	e.history = append(e.history, rec)

	saved := v.Clone()
	e.persist(ctx, "save_vehicle", func(ctx context.Context) error {
		return e.vehicleRepo.Save(ctx, saved)
	})
	e.persist(ctx, "append_record", func(ctx context.Context) error {
		r := rec
		return e.rentalRepo.Append(ctx, &r)
	})
	e.mu.Unlock()

	e.log.Info("Vehicle rented", "vehicle_id", saved.ID, "holder", holder, "start", start, "end", end, "paid", prepaid, "total_cents", rec.TotalPriceCents)
	e.publish(ctx, newBookingEvent(EventVehicleRented, saved, now))
	return rec, nil
}

// Return logs a RETURNED record from the pre-return state and resets the vehicle.
func (e *BookingEngine) Return(ctx context.Context, id string) (rec domain.ReservationRecord, err error) {
	defer func() { e.metrics.ObserveBooking("return", err) }()

	e.mu.Lock()
	v := e.find(id)
	if v == nil {
		e.mu.Unlock()
		return domain.ReservationRecord{}, ErrVehicleNotFound
	}
	if !v.Rented {
		e.mu.Unlock()
		return domain.ReservationRecord{}, ErrNotRented
	}

	now := e.now()
	before := v.Clone()
	rec = domain.NewReservationRecord(before, domain.RentalEventReturned, now)
	e.history = append(e.history, rec)
	e.persist(ctx, "append_record", func(ctx context.Context) error {
		r := rec
		return e.rentalRepo.Append(ctx, &r)
	})

	v.Release()
	saved := v.Clone()
	e.persist(ctx, "save_vehicle", func(ctx context.Context) error {
		return e.vehicleRepo.Save(ctx, saved)
	})
	e.mu.Unlock()

	e.log.Info("Vehicle returned", "vehicle_id", saved.ID, "holder", before.RentedBy)
	e.publish(ctx, newBookingEvent(EventVehicleReturned, before, now))
	return rec, nil
}

// CancelUpcoming releases a reservation that has not started yet. Only the exact,
// non-empty holder may cancel and no history record is written.
func (e *BookingEngine) CancelUpcoming(ctx context.Context, id, holder string) (err error) {
	defer func() { e.metrics.ObserveBooking("cancel", err) }()

	e.mu.Lock()
	v := e.find(id)
	if v == nil {
		e.mu.Unlock()
		return ErrVehicleNotFound
	}
	if !v.IsReserved() {
		e.mu.Unlock()
		return ErrNotReserved
	}
	if holder == "" || v.RentedBy != holder {
		e.mu.Unlock()
		return ErrNotHolder
	}
	now := e.now()
	if !v.StartsAfter(now) {
		e.mu.Unlock()
		return ErrAlreadyStarted
	}

	before := v.Clone()
	v.Release()
	saved := v.Clone()
	e.persist(ctx, "save_vehicle", func(ctx context.Context) error {
		return e.vehicleRepo.Save(ctx, saved)
	})
	e.mu.Unlock()

	e.log.Info("Upcoming booking cancelled", "vehicle_id", saved.ID, "holder", holder)
	e.publish(ctx, newBookingEvent(EventBookingCancelled, before, now))
	return nil
}

// ConfirmPayment marks the current reservation paid and flips the matching unpaid
// history records. A second call reports ErrAlreadyPaid.
func (e *BookingEngine) ConfirmPayment(ctx context.Context, id string) (err error) {
	defer func() { e.metrics.ObserveBooking("payment", err) }()

	e.mu.Lock()
	v := e.find(id)
	if v == nil {
		e.mu.Unlock()
		return ErrVehicleNotFound
	}
	if !v.IsReserved() {
		e.mu.Unlock()
		return ErrNotReserved
	}
	if v.Paid {
		e.mu.Unlock()
		return ErrAlreadyPaid
	}

	v.Paid = true
	var flipped int64
	for i, rec := range e.history {
		if !rec.Paid && strings.EqualFold(rec.VehicleID, v.ID) && rec.RentedBy == v.RentedBy {
			e.history[i] = rec.WithPaid()
			flipped++
		}
	}

	saved := v.Clone()
	e.persist(ctx, "save_vehicle", func(ctx context.Context) error {
		return e.vehicleRepo.Save(ctx, saved)
	})
	e.persist(ctx, "mark_paid", func(ctx context.Context) error {
		n, err := e.rentalRepo.MarkPaid(ctx, saved.ID, saved.RentedBy)
		if err == nil && n != flipped {
			e.log.Warn("Stored rental records diverge from history", "vehicle_id", saved.ID, "holder", saved.RentedBy, "stored_rows", n, "in_memory", flipped)
			e.metrics.StorageFailure("mark_paid_mismatch")
		}
		return err
	})
	e.mu.Unlock()

	e.log.Info("Payment confirmed", "vehicle_id", saved.ID, "holder", saved.RentedBy)
	e.publish(ctx, newBookingEvent(EventPaymentConfirmed, saved, e.now()))
	return nil
}

func (e *BookingEngine) UpdateDetails(ctx context.Context, id, brand, model string, pricePerDayCents int64) (err error) {
	defer func() { e.metrics.ObserveBooking("update", err) }()

	if pricePerDayCents < 0 {
		return ErrInvalidVehicle
	}

	e.mu.Lock()
	defer e.mu.Unlock()
	v := e.find(id)
	if v == nil {
		return ErrVehicleNotFound
	}
	v.Brand = brand
	v.Model = model
	v.PricePerDayCents = pricePerDayCents
	saved := v.Clone()
	e.persist(ctx, "save_vehicle", func(ctx context.Context) error {
		return e.vehicleRepo.Save(ctx, saved)
	})
	e.log.Info("Vehicle updated", "vehicle_id", saved.ID)
	return nil
}

// Remove deletes a vehicle that is not currently rented.
func (e *BookingEngine) Remove(ctx context.Context, id string) (err error) {
	defer func() { e.metrics.ObserveBooking("remove", err) }()

	e.mu.Lock()
	defer e.mu.Unlock()
	idx := -1
	for i, v := range e.vehicles {
		if v.SameID(id) {
			idx = i
			break
		}
	}
	if idx < 0 {
		return ErrVehicleNotFound
	}
	v := e.vehicles[idx]
	if v.Rented {
		return ErrVehicleRented
	}
	e.vehicles = append(e.vehicles[:idx], e.vehicles[idx+1:]...)
	e.persist(ctx, "delete_vehicle", func(ctx context.Context) error {
		return e.vehicleRepo.Delete(ctx, v.ID)
	})
	e.log.Info("Vehicle removed", "vehicle_id", v.ID)
	return nil
}

func (e *BookingEngine) AllVehicles() []domain.Vehicle {
	return e.filter(func(*domain.Vehicle) bool { return true })
}

func (e *BookingEngine) AvailableVehicles() []domain.Vehicle {
	return e.filter(func(v *domain.Vehicle) bool { return v.Available })
}

func (e *BookingEngine) RentedVehicles() []domain.Vehicle {
	return e.filter(func(v *domain.Vehicle) bool { return v.Rented })
}

// VehiclesHeldBy lists rented vehicles assigned to holder.
func (e *BookingEngine) VehiclesHeldBy(holder string) []domain.Vehicle {
	return e.filter(func(v *domain.Vehicle) bool { return v.Rented && v.RentedBy == holder })
}

// UpcomingBookings lists rented vehicles assigned to holder whose window starts strictly after now.
func (e *BookingEngine) UpcomingBookings(holder string) []domain.Vehicle {
	now := e.now()
	return e.filter(func(v *domain.Vehicle) bool {
		return v.Rented && v.RentedBy == holder && v.StartsAfter(now)
	})
}

func (e *BookingEngine) History() []domain.ReservationRecord {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return append([]domain.ReservationRecord(nil), e.history...)
}

func (e *BookingEngine) HistoryFor(holder string) []domain.ReservationRecord {
	e.mu.RLock()
	defer e.mu.RUnlock()
	var out []domain.ReservationRecord
	for _, rec := range e.history {
		if rec.RentedBy == holder {
			out = append(out, rec)
		}
	}
	return out
}

func (e *BookingEngine) filter(keep func(*domain.Vehicle) bool) []domain.Vehicle {
	e.mu.RLock()
	defer e.mu.RUnlock()
	var out []domain.Vehicle
	for _, v := range e.vehicles {
		if keep(v) {
			out = append(out, *v.Clone())
		}
	}
	return out
}

// find must be called with the lock held.
func (e *BookingEngine) find(id string) *domain.Vehicle {
	id = strings.TrimSpace(id)
	for _, v := range e.vehicles {
		if v.SameID(id) {
			return v
		}
	}
	return nil
}

func (e *BookingEngine) persist(ctx context.Context, op string, write func(context.Context) error) {
	if err := write(ctx); err != nil {
		e.log.Error("Storage write failed, keeping in-memory state", "operation", op, "error", err)
		e.metrics.StorageFailure(op)
	}
}

func (e *BookingEngine) publish(ctx context.Context, ev BookingEvent) {
	if err := e.publisher.Publish(ctx, ev); err != nil {
		e.log.Warn("Failed to publish booking event", "type", ev.Type, "vehicle_id", ev.VehicleID, "error", err)
	}
}
