package domain

import "time"

type AlertKind string

const (
	AlertOverdue      AlertKind = "OVERDUE"
	AlertDueSoon      AlertKind = "DUE_SOON"
	AlertStartingSoon AlertKind = "STARTING_SOON"
)

// Alert is a derived notification about one reserved vehicle. At is the instant the
// alert refers to: the window end for OVERDUE and DUE_SOON, the start for STARTING_SOON.
type Alert struct {
	Kind      AlertKind `json:"kind"`
	VehicleID string    `json:"vehicle_id"`
	Holder    string    `json:"holder"`
	At        time.Time `json:"at"`
	Message   string    `json:"message"`
}
