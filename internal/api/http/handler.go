package http

import (
	"encoding/json"
	"errors"
	"net/http"

	"vehicle-rental-desk/internal/logger"
	"vehicle-rental-desk/internal/service"

	"github.com/go-playground/validator/v10"
)

// Handler serves the REST surface of the rental desk.
type Handler struct {
	booking  service.BookingService
	notifier service.NotificationService
	accounts service.AccountService
	validate *validator.Validate
}

func NewHandler(booking service.BookingService, notifier service.NotificationService, accounts service.AccountService) *Handler {
	return &Handler{
		booking:  booking,
		notifier: notifier,
		accounts: accounts,
		validate: validator.New(),
	}
}

// decode reads a JSON body into dst and runs the struct validation tags.
func (h *Handler) decode(w http.ResponseWriter, r *http.Request, dst any) bool {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return false
	}
	if err := h.validate.Struct(dst); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) && len(verrs) > 0 {
			writeError(w, http.StatusBadRequest, "invalid field: "+verrs[0].Field())
			return false
		}
		writeError(w, http.StatusBadRequest, err.Error())
		return false
	}
	return true
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		logger.Error("Failed to encode response", "error", err)
	}
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, errorResponse{Error: msg})
}

// writeServiceError maps the service error taxonomy onto HTTP status codes.
func writeServiceError(w http.ResponseWriter, err error) {
	switch {
	case service.IsNotFound(err):
		writeError(w, http.StatusNotFound, err.Error())
	case service.IsConflict(err):
		writeError(w, http.StatusConflict, err.Error())
	case errors.Is(err, service.ErrInvalidCredentials):
		writeError(w, http.StatusUnauthorized, err.Error())
	case service.IsUnauthorized(err):
		writeError(w, http.StatusForbidden, err.Error())
	case service.IsInvalidState(err):
		writeError(w, http.StatusUnprocessableEntity, err.Error())
	default:
		logger.Error("Unhandled service error", "error", err)
		writeError(w, http.StatusInternalServerError, "internal error")
	}
}

// nonNil keeps empty lists encoded as [] instead of null.
func nonNil[T any](s []T) []T {
	if s == nil {
		return []T{}
	}
	return s
}
