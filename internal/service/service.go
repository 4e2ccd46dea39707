package service

import (
	"context"
	"time"

	"vehicle-rental-desk/internal/domain"
)

// BookingService is the presentation-facing surface of the booking engine.
type BookingService interface {
	AddVehicle(ctx context.Context, v *domain.Vehicle) error
	FindVehicle(id string) (*domain.Vehicle, error)
	IsAvailableDuring(id string, start, end time.Time) bool
	Rent(ctx context.Context, id, holder string, start, end time.Time, prepaid bool) (domain.ReservationRecord, error)
	Return(ctx context.Context, id string) (domain.ReservationRecord, error)
	CancelUpcoming(ctx context.Context, id, holder string) error
	ConfirmPayment(ctx context.Context, id string) error
	UpdateDetails(ctx context.Context, id, brand, model string, pricePerDayCents int64) error
	Remove(ctx context.Context, id string) error

	AllVehicles() []domain.Vehicle
	AvailableVehicles() []domain.Vehicle
	RentedVehicles() []domain.Vehicle
	VehiclesHeldBy(holder string) []domain.Vehicle
	UpcomingBookings(holder string) []domain.Vehicle
	History() []domain.ReservationRecord
	HistoryFor(holder string) []domain.ReservationRecord
	Now() time.Time
}

type NotificationService interface {
	Overdue() []domain.Alert
	DueSoon() []domain.Alert
	StartingSoon() []domain.Alert
	For(holder string) []domain.Alert
}

type AccountService interface {
	Register(ctx context.Context, username, password string, role domain.Role, contact domain.Contact) (*domain.Account, error)
	Login(ctx context.Context, username, password string) (*domain.Account, string, error)
	Get(ctx context.Context, username string) (*domain.Account, error)
	List(ctx context.Context) ([]domain.Account, error)
	UpdateContact(ctx context.Context, username string, contact domain.Contact) (*domain.Account, error)
	Delete(ctx context.Context, username string) error
}

type EmailService interface {
	Send(ctx context.Context, toEmail, toName, subject, body string) error
}

type SMSService interface {
	Send(ctx context.Context, toPhone, body string) error
}

// EventPublisher delivers booking events to the message broker.
type EventPublisher interface {
	Publish(ctx context.Context, ev BookingEvent) error
	Close() error
}

var (
	_ BookingService      = (*BookingEngine)(nil)
	_ NotificationService = (*Notifier)(nil)
	_ FleetReader         = (*BookingEngine)(nil)
)
