package service

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"vehicle-rental-desk/internal/domain"
	"vehicle-rental-desk/internal/logger"

	amqp "github.com/rabbitmq/amqp091-go"
)

const DefaultEventsQueue = "booking.events"

type BookingEventType string

const (
	EventVehicleRented    BookingEventType = "vehicle.rented"
	EventVehicleReturned  BookingEventType = "vehicle.returned"
	EventBookingCancelled BookingEventType = "booking.cancelled"
	EventPaymentConfirmed BookingEventType = "payment.confirmed"
)

type BookingEvent struct {
	Type            BookingEventType `json:"type"`
	VehicleID       string           `json:"vehicle_id"`
	Holder          string           `json:"holder"`
	Start           time.Time        `json:"start"`
	End             time.Time        `json:"end"`
	TotalPriceCents int64            `json:"total_price_cents"`
	Paid            bool             `json:"paid"`
	OccurredAt      time.Time        `json:"occurred_at"`
}

func newBookingEvent(t BookingEventType, v *domain.Vehicle, at time.Time) BookingEvent {
	ev := BookingEvent{
		Type:            t,
		VehicleID:       v.ID,
		Holder:          v.RentedBy,
		TotalPriceCents: v.RentalCostCents(),
		Paid:            v.Paid,
		OccurredAt:      at.UTC(),
	}
	if v.Window != nil {
		ev.Start = v.Window.Start
		ev.End = v.Window.End
	}
	return ev
}

type noopPublisher struct{}

// NewNoopPublisher returns a publisher that drops every event.
func NewNoopPublisher() EventPublisher {
	return noopPublisher{}
}

func (noopPublisher) Publish(context.Context, BookingEvent) error { return nil }
func (noopPublisher) Close() error                                 { return nil }

// RabbitPublisher sends booking events as persistent JSON messages to a durable queue
// on the default exchange.
type RabbitPublisher struct {
	mu    sync.Mutex
	conn  *amqp.Connection
	ch    *amqp.Channel
	queue string
}

func NewRabbitPublisher(url, queue string) (*RabbitPublisher, error) {
	if queue == "" {
		queue = DefaultEventsQueue
	}
	conn, err := amqp.Dial(url)
	if err != nil {
		return nil, fmt.Errorf("rabbitmq dial: %w", err)
	}
	ch, err := conn.Channel()
	if err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("rabbitmq channel open: %w", err)
	}
	if _, err := ch.QueueDeclare(queue, true, false, false, false, nil); err != nil {
		_ = ch.Close()
		_ = conn.Close()
		return nil, fmt.Errorf("rabbitmq queue declare: %w", err)
	}
	return &RabbitPublisher{conn: conn, ch: ch, queue: queue}, nil
}

func (p *RabbitPublisher) Publish(ctx context.Context, ev BookingEvent) error {
	body, err := json.Marshal(ev)
	if err != nil {
		return fmt.Errorf("marshal booking event: %w", err)
	}

	logger.ExternalServiceCall("rabbitmq", "publish", "queue", p.queue, "type", ev.Type, "vehicle_id", ev.VehicleID)
	p.mu.Lock()
	err = p.ch.PublishWithContext(ctx, "", p.queue, false, false, amqp.Publishing{
		ContentType:  "application/json",
		DeliveryMode: amqp.Persistent,
		Timestamp:    time.Now().UTC(),
		Type:         string(ev.Type),
		Body:         body,
	})
	p.mu.Unlock()
	logger.ExternalServiceResult("rabbitmq", "publish", err, "queue", p.queue)
	if err != nil {
		return fmt.Errorf("rabbitmq publish: %w", err)
	}
	return nil
}

func (p *RabbitPublisher) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	_ = p.ch.Close()
	return p.conn.Close()
}
