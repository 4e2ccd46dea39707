package service

import (
	"fmt"
	"time"

	"vehicle-rental-desk/internal/domain"
)

const (
	DefaultLookahead = 24 * time.Hour
	alertTimeLayout  = "2006-01-02 15:04"
)

// FleetReader is the read side of the booking engine the notifier derives alerts from.
type FleetReader interface {
	AllVehicles() []domain.Vehicle
	VehiclesHeldBy(holder string) []domain.Vehicle
}

// Notifier derives alerts on demand. Every call reads the clock exactly once.
type Notifier struct {
	fleet     FleetReader
	now       func() time.Time
	lookahead time.Duration
}

type NotifierOption func(*Notifier)

func WithNotifierClock(now func() time.Time) NotifierOption {
	return func(n *Notifier) { n.now = now }
}

// WithLookahead overrides the 24h window used for due-soon and starting-soon alerts.
func WithLookahead(d time.Duration) NotifierOption {
	return func(n *Notifier) {
		if d > 0 {
			n.lookahead = d
		}
	}
}

func NewNotifier(fleet FleetReader, opts ...NotifierOption) *Notifier {
	n := &Notifier{fleet: fleet, now: time.Now, lookahead: DefaultLookahead}
	for _, opt := range opts {
		opt(n)
	}
	return n
}

// Overdue lists rented vehicles whose window ended before now.
func (n *Notifier) Overdue() []domain.Alert {
	now := n.now()
	var alerts []domain.Alert
	for _, v := range n.fleet.AllVehicles() {
		if v.Rented && v.Window != nil && now.After(v.Window.End) {
			alerts = append(alerts, overdueAlert(&v))
		}
	}
	return alerts
}

// DueSoon lists rented vehicles due back within the lookahead, excluding overdue ones.
func (n *Notifier) DueSoon() []domain.Alert {
	now := n.now()
	var alerts []domain.Alert
	for _, v := range n.fleet.AllVehicles() {
		if v.Rented && v.Window != nil && n.within(now, v.Window.End) {
			alerts = append(alerts, dueSoonAlert(&v))
		}
	}
	return alerts
}

// StartingSoon lists holds that are not rented yet and start within the lookahead.
func (n *Notifier) StartingSoon() []domain.Alert {
	now := n.now()
	var alerts []domain.Alert
	for _, v := range n.fleet.AllVehicles() {
		if !v.Rented && v.Window != nil && n.within(now, v.Window.Start) {
			alerts = append(alerts, startingSoonAlert(&v))
		}
	}
	return alerts
}

// For derives the alerts of one holder over the vehicles they currently hold. A vehicle
// past its window is reported as overdue only.
func (n *Notifier) For(holder string) []domain.Alert {
	now := n.now()
	var alerts []domain.Alert
	for _, v := range n.fleet.VehiclesHeldBy(holder) {
		if v.Window == nil {
			continue
		}
		if n.within(now, v.Window.Start) {
			alerts = append(alerts, startingSoonAlert(&v))
		}
		switch {
		case now.After(v.Window.End) && v.Rented:
			alerts = append(alerts, overdueAlert(&v))
		case n.within(now, v.Window.End):
			alerts = append(alerts, dueSoonAlert(&v))
		}
	}
	return alerts
}

// within reports whether t lies in (now, now+lookahead].
func (n *Notifier) within(now, t time.Time) bool {
	return t.After(now) && !t.After(now.Add(n.lookahead))
}

// Messages flattens alerts into their display strings.
func Messages(alerts []domain.Alert) []string {
	out := make([]string, 0, len(alerts))
	for _, a := range alerts {
		out = append(out, a.Message)
	}
	return out
}

func overdueAlert(v *domain.Vehicle) domain.Alert {
	return domain.Alert{
		Kind:      domain.AlertOverdue,
		VehicleID: v.ID,
		Holder:    v.RentedBy,
		At:        v.Window.End,
		Message:   fmt.Sprintf("Overdue: %s was due on %s", v, v.Window.End.Format(alertTimeLayout)),
	}
}

func dueSoonAlert(v *domain.Vehicle) domain.Alert {
	return domain.Alert{
		Kind:      domain.AlertDueSoon,
		VehicleID: v.ID,
		Holder:    v.RentedBy,
		At:        v.Window.End,
		Message:   fmt.Sprintf("Reminder: %s is due back on %s", v, v.Window.End.Format(alertTimeLayout)),
	}
}

func startingSoonAlert(v *domain.Vehicle) domain.Alert {
	return domain.Alert{
		Kind:      domain.AlertStartingSoon,
		VehicleID: v.ID,
		Holder:    v.RentedBy,
		At:        v.Window.Start,
		Message:   fmt.Sprintf("Upcoming rental: %s starts on %s", v, v.Window.Start.Format(alertTimeLayout)),
	}
}
