package domain

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

type VehicleKind string

const (
	VehicleKindCar        VehicleKind = "Car"
	VehicleKindVan        VehicleKind = "Van"
	VehicleKindMotorcycle VehicleKind = "Motorcycle"
)

// ParseVehicleKind maps a label such as "car" or "VAN" onto one of the known kinds.
func ParseVehicleKind(s string) (VehicleKind, error) {
	for _, k := range []VehicleKind{VehicleKindCar, VehicleKindVan, VehicleKindMotorcycle} {
		if strings.EqualFold(strings.TrimSpace(s), string(k)) {
			return k, nil
		}
	}
	return "", fmt.Errorf("unknown vehicle kind %q", s)
}

func (k VehicleKind) Valid() bool {
	switch k {
	case VehicleKindCar, VehicleKindVan, VehicleKindMotorcycle:
		return true
	}
	return false
}

// Window is the reserved time range of a vehicle. Start is always before End.
type Window struct {
	Start time.Time `json:"start"`
	End   time.Time `json:"end"`
}

func (w Window) Valid() bool {
	return w.Start.Before(w.End)
}

type Vehicle struct {
	ID               string      `json:"id"`
	Kind             VehicleKind `json:"kind"`
	Brand            string      `json:"brand"`
	Model            string      `json:"model"`
	PricePerDayCents int64       `json:"price_per_day_cents"`
	Available        bool        `json:"available"`
	Rented           bool        `json:"rented"`
	Window           *Window     `json:"window,omitempty"`
	RentedBy         string      `json:"rented_by,omitempty"`
	Paid             bool        `json:"paid"`
}

// NewVehicle returns an unreserved vehicle.
func NewVehicle(id string, kind VehicleKind, brand, model string, pricePerDayCents int64) *Vehicle {
	return &Vehicle{
		ID:               id,
		Kind:             kind,
		Brand:            brand,
		Model:            model,
		PricePerDayCents: pricePerDayCents,
		Available:        true,
	}
}

// SameID compares vehicle ids case-insensitively.
func (v *Vehicle) SameID(id string) bool {
	return strings.EqualFold(v.ID, id)
}

// IsReserved reports whether the vehicle carries a reservation window, active or pending.
func (v *Vehicle) IsReserved() bool {
	return v.Window != nil
}

// AvailableFor reports whether [start, end] can be booked. An unavailable vehicle never
// can; otherwise the request must end strictly before the current window starts or
// start strictly after it ends, so touching boundaries count as a conflict.
func (v *Vehicle) AvailableFor(start, end time.Time) bool {
	if !v.Available {
		return false
	}
	if v.Window == nil {
		return true
	}
	return end.Before(v.Window.Start) || start.After(v.Window.End)
}

// CheckState returns an error describing the first rental-state rule the vehicle breaks.
// A reservation window always comes with a holder. Without one the vehicle must be in
// the unreserved state.
func (v *Vehicle) CheckState() error {
	if v.Available && v.Rented {
		return errors.New("vehicle cannot be available and rented at once")
	}
	if v.Window == nil {
		switch {
		case v.Rented:
			return errors.New("rented vehicle needs a reservation window")
		case v.RentedBy != "":
			return errors.New("holder set without a reservation window")
		case v.Paid:
			return errors.New("paid flag set without a reservation window")
		case !v.Available:
			return errors.New("vehicle without a reservation must be available")
		}
		return nil
	}
	if !v.Window.Valid() {
		return errors.New("window start must precede end")
	}
	if strings.TrimSpace(v.RentedBy) == "" {
		return errors.New("reservation window needs a holder")
	}
	return nil
}

// StartsAfter reports whether the reservation window begins strictly after t.
func (v *Vehicle) StartsAfter(t time.Time) bool {
	return v.Window != nil && v.Window.Start.After(t)
}

// Reserve puts the vehicle in the rented state for the given holder and window.
func (v *Vehicle) Reserve(holder string, w Window, paid bool) {
	v.Rented = true
	v.Available = false
	v.Window = &Window{Start: w.Start, End: w.End}
	v.RentedBy = holder
	v.Paid = paid
}

// Release clears every rental field and makes the vehicle available again.
func (v *Vehicle) Release() {
	v.Rented = false
	v.Available = true
	v.Window = nil
	v.RentedBy = ""
	v.Paid = false
}

// RentalDays is the number of whole days covered by the window, truncated.
func (v *Vehicle) RentalDays() int64 {
	if v.Window == nil {
		return 0
	}
	return int64(v.Window.End.Sub(v.Window.Start) / (24 * time.Hour))
}

func (v *Vehicle) RentalCostCents() int64 {
	return v.RentalDays() * v.PricePerDayCents
}

// Clone returns a deep copy so callers never share the window pointer.
func (v *Vehicle) Clone() *Vehicle {
	c := *v
	if v.Window != nil {
		w := *v.Window
		c.Window = &w
	}
	return &c
}

func (v *Vehicle) String() string {
	return fmt.Sprintf("%s - %s %s (ID: %s), %s/day", v.Kind, v.Brand, v.Model, v.ID, FormatCents(v.PricePerDayCents))
}

// FormatCents renders an amount of cents as a decimal string, e.g. 4550 -> "45.50".
func FormatCents(cents int64) string {
	sign := ""
	if cents < 0 {
		sign = "-"
		cents = -cents
	}
	return fmt.Sprintf("%s%d.%02d", sign, cents/100, cents%100)
}
