package http

import (
	"fmt"
	"net/http"
	"time"

	"vehicle-rental-desk/internal/domain"
	"vehicle-rental-desk/internal/service"

	"github.com/gorilla/mux"
)

func (h *Handler) ListVehicles(w http.ResponseWriter, r *http.Request) {
	var vehicles []domain.Vehicle
	switch status := r.URL.Query().Get("status"); status {
	case "", "all":
		vehicles = h.booking.AllVehicles()
	case "available":
		vehicles = h.booking.AvailableVehicles()
	case "rented":
		vehicles = h.booking.RentedVehicles()
	default:
		writeError(w, http.StatusBadRequest, fmt.Sprintf("unknown status %q", status))
		return
	}
	writeJSON(w, http.StatusOK, nonNil(vehicles))
}

func (h *Handler) GetVehicle(w http.ResponseWriter, r *http.Request) {
	v, err := h.booking.FindVehicle(mux.Vars(r)["id"])
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, v)
}

func (h *Handler) AddVehicle(w http.ResponseWriter, r *http.Request) {
	var req addVehicleRequest
	if !h.decode(w, r, &req) {
		return
	}
	kind, err := domain.ParseVehicleKind(req.Kind)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	v := domain.NewVehicle(req.ID, kind, req.Brand, req.Model, req.PricePerDayCents)
	if err := h.booking.AddVehicle(r.Context(), v); err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, v)
}

func (h *Handler) UpdateVehicle(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]
	var req updateVehicleRequest
	if !h.decode(w, r, &req) {
		return
	}
	if err := h.booking.UpdateDetails(r.Context(), id, req.Brand, req.Model, req.PricePerDayCents); err != nil {
		writeServiceError(w, err)
		return
	}
	v, err := h.booking.FindVehicle(id)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, v)
}

func (h *Handler) DeleteVehicle(w http.ResponseWriter, r *http.Request) {
	if err := h.booking.Remove(r.Context(), mux.Vars(r)["id"]); err != nil {
		writeServiceError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// RentVehicle books [start, start+days). Admins may book on behalf of another holder.
func (h *Handler) RentVehicle(w http.ResponseWriter, r *http.Request) {
	claims, _ := ClaimsFrom(r.Context())
	var req rentRequest
	if !h.decode(w, r, &req) {
		return
	}

	holder := claims.Username
	if isAdmin(claims) && req.Holder != "" {
		holder = req.Holder
	}
	end := req.Start.Add(time.Duration(req.Days) * 24 * time.Hour)

	rec, err := h.booking.Rent(r.Context(), mux.Vars(r)["id"], holder, req.Start, end, req.Paid)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, rentResponse{
		Record:  rec,
		Total:   domain.FormatCents(rec.TotalPriceCents),
		Message: fmt.Sprintf("Vehicle %s rented to %s for %d day(s)", rec.VehicleID, rec.RentedBy, req.Days),
	})
}

// ReturnVehicle lets customers return only what they hold; admins may return anything.
func (h *Handler) ReturnVehicle(w http.ResponseWriter, r *http.Request) {
	claims, _ := ClaimsFrom(r.Context())
	id := mux.Vars(r)["id"]

	if !isAdmin(claims) {
		v, err := h.booking.FindVehicle(id)
		if err != nil {
			writeServiceError(w, err)
			return
		}
		if v.Rented && v.RentedBy != claims.Username {
			writeServiceError(w, service.ErrNotHolder)
			return
		}
	}

	rec, err := h.booking.Return(r.Context(), id)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, rec)
}

// CancelBooking cancels a future reservation. Customers cancel their own; an admin
// cancels on behalf of the given holder, or of the current holder when none is given.
func (h *Handler) CancelBooking(w http.ResponseWriter, r *http.Request) {
	claims, _ := ClaimsFrom(r.Context())
	id := mux.Vars(r)["id"]

	var req cancelRequest
	if r.ContentLength > 0 && !h.decode(w, r, &req) {
		return
	}

	holder := claims.Username
	if isAdmin(claims) {
		holder = req.Holder
		if holder == "" {
			v, err := h.booking.FindVehicle(id)
			if err != nil {
				writeServiceError(w, err)
				return
			}
			if !v.IsReserved() {
				writeServiceError(w, service.ErrNotReserved)
				return
			}
			holder = v.RentedBy
		}
	}

	if err := h.booking.CancelUpcoming(r.Context(), id, holder); err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, messageResponse{Message: "Booking cancelled"})
}

func (h *Handler) ConfirmPayment(w http.ResponseWriter, r *http.Request) {
	if err := h.booking.ConfirmPayment(r.Context(), mux.Vars(r)["id"]); err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, messageResponse{Message: "Payment confirmed"})
}

func (h *Handler) MyVehicles(w http.ResponseWriter, r *http.Request) {
	claims, _ := ClaimsFrom(r.Context())
	writeJSON(w, http.StatusOK, nonNil(h.booking.VehiclesHeldBy(claims.Username)))
}

func (h *Handler) MyUpcoming(w http.ResponseWriter, r *http.Request) {
	claims, _ := ClaimsFrom(r.Context())
	writeJSON(w, http.StatusOK, nonNil(h.booking.UpcomingBookings(claims.Username)))
}

func (h *Handler) MyHistory(w http.ResponseWriter, r *http.Request) {
	claims, _ := ClaimsFrom(r.Context())
	writeJSON(w, http.StatusOK, nonNil(h.booking.HistoryFor(claims.Username)))
}

func (h *Handler) AllHistory(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, nonNil(h.booking.History()))
}

func (h *Handler) MyNotifications(w http.ResponseWriter, r *http.Request) {
	claims, _ := ClaimsFrom(r.Context())
	writeJSON(w, http.StatusOK, nonNil(h.notifier.For(claims.Username)))
}

func (h *Handler) AllNotifications(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, notificationsResponse{
		Overdue:      nonNil(h.notifier.Overdue()),
		DueSoon:      nonNil(h.notifier.DueSoon()),
		StartingSoon: nonNil(h.notifier.StartingSoon()),
	})
}
