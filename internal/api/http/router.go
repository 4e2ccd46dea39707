package http

import (
	"net/http"

	"vehicle-rental-desk/internal/security"
	"vehicle-rental-desk/internal/service"

	"github.com/gorilla/mux"
)

// NewRouter wires every REST route behind the observability and auth middleware.
func NewRouter(h *Handler, tokens security.TokenManager, metrics *service.Metrics) *mux.Router {
	router := mux.NewRouter()
	router.Use(ObservabilityMiddleware(metrics))
	router.Use(AuthMiddleware(tokens))

	router.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	}).Methods(http.MethodGet)
	if metrics != nil {
		router.Handle("/metrics", metrics.Handler()).Methods(http.MethodGet)
	}

	api := router.PathPrefix("/api/v1").Subrouter()

	api.HandleFunc("/auth/register", h.Register).Methods(http.MethodPost)
	api.HandleFunc("/auth/login", h.Login).Methods(http.MethodPost)

	api.HandleFunc("/vehicles", h.ListVehicles).Methods(http.MethodGet)
	api.HandleFunc("/vehicles", h.AddVehicle).Methods(http.MethodPost)
	api.HandleFunc("/vehicles/{id}", h.GetVehicle).Methods(http.MethodGet)
	api.HandleFunc("/vehicles/{id}", h.UpdateVehicle).Methods(http.MethodPut)
	api.HandleFunc("/vehicles/{id}", h.DeleteVehicle).Methods(http.MethodDelete)
	api.HandleFunc("/vehicles/{id}/rent", h.RentVehicle).Methods(http.MethodPost)
	api.HandleFunc("/vehicles/{id}/return", h.ReturnVehicle).Methods(http.MethodPost)
	api.HandleFunc("/vehicles/{id}/cancel", h.CancelBooking).Methods(http.MethodPost)
	api.HandleFunc("/vehicles/{id}/payment", h.ConfirmPayment).Methods(http.MethodPost)

	api.HandleFunc("/me", h.GetMe).Methods(http.MethodGet)
	api.HandleFunc("/me", h.UpdateMe).Methods(http.MethodPut)
	api.HandleFunc("/me/vehicles", h.MyVehicles).Methods(http.MethodGet)
	api.HandleFunc("/me/upcoming", h.MyUpcoming).Methods(http.MethodGet)
	api.HandleFunc("/me/history", h.MyHistory).Methods(http.MethodGet)
	api.HandleFunc("/me/notifications", h.MyNotifications).Methods(http.MethodGet)

	api.HandleFunc("/admin/history", h.AllHistory).Methods(http.MethodGet)
	api.HandleFunc("/admin/notifications", h.AllNotifications).Methods(http.MethodGet)
	api.HandleFunc("/admin/accounts", h.ListAccounts).Methods(http.MethodGet)
	api.HandleFunc("/admin/accounts", h.CreateAccount).Methods(http.MethodPost)
	api.HandleFunc("/admin/accounts/{username}", h.UpdateAccount).Methods(http.MethodPut)
	api.HandleFunc("/admin/accounts/{username}", h.DeleteAccount).Methods(http.MethodDelete)

	return router
}
