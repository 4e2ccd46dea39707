package service

import "errors"

// Not found.
var (
	ErrVehicleNotFound = errors.New("vehicle not found")
	ErrAccountNotFound = errors.New("account not found")
)

// Conflict.
var (
	ErrDuplicateVehicle = errors.New("vehicle id already exists")
	ErrDuplicateAccount = errors.New("username already taken")
	ErrWindowConflict   = errors.New("vehicle is not available for the requested period")
)

// Unauthorized.
var (
	ErrNotHolder          = errors.New("reservation belongs to another holder")
	ErrInvalidCredentials = errors.New("invalid username or password")
)

// Invalid state or input.
var (
	ErrInvalidVehicle = errors.New("invalid vehicle")
	ErrInvalidWindow  = errors.New("invalid rental window")
	ErrInvalidAccount = errors.New("invalid account")
	ErrNotRented      = errors.New("vehicle is not rented")
	ErrNotReserved    = errors.New("vehicle has no reservation")
	ErrAlreadyPaid    = errors.New("reservation is already paid")
	ErrAlreadyStarted = errors.New("reservation has already started")
	ErrVehicleRented  = errors.New("vehicle is currently rented")
)

func IsNotFound(err error) bool {
	return errors.Is(err, ErrVehicleNotFound) || errors.Is(err, ErrAccountNotFound)
}

func IsConflict(err error) bool {
	return errors.Is(err, ErrDuplicateVehicle) || errors.Is(err, ErrDuplicateAccount) || errors.Is(err, ErrWindowConflict)
}

func IsUnauthorized(err error) bool {
	return errors.Is(err, ErrNotHolder) || errors.Is(err, ErrInvalidCredentials)
}

func IsInvalidState(err error) bool {
	for _, target := range []error{
		ErrInvalidVehicle, ErrInvalidWindow, ErrInvalidAccount, ErrNotRented,
		ErrNotReserved, ErrAlreadyPaid, ErrAlreadyStarted, ErrVehicleRented,
	} {
		if errors.Is(err, target) {
			return true
		}
	}
	return false
}
