package http

import (
	"net/http"

	"vehicle-rental-desk/internal/domain"

	"github.com/gorilla/mux"
)

// Register creates a CUSTOMER account; admins are created through the admin endpoint.
func (h *Handler) Register(w http.ResponseWriter, r *http.Request) {
	var req registerRequest
	if !h.decode(w, r, &req) {
		return
	}
	acc, err := h.accounts.Register(r.Context(), req.Username, req.Password, domain.RoleCustomer, req.contact())
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, acc)
}

func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if !h.decode(w, r, &req) {
		return
	}
	acc, token, err := h.accounts.Login(r.Context(), req.Username, req.Password)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, loginResponse{Token: token, Username: acc.Username, Role: acc.Role})
}

func (h *Handler) GetMe(w http.ResponseWriter, r *http.Request) {
	claims, _ := ClaimsFrom(r.Context())
	acc, err := h.accounts.Get(r.Context(), claims.Username)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, acc)
}

func (h *Handler) UpdateMe(w http.ResponseWriter, r *http.Request) {
	claims, _ := ClaimsFrom(r.Context())
	h.updateContact(w, r, claims.Username)
}

func (h *Handler) ListAccounts(w http.ResponseWriter, r *http.Request) {
	accounts, err := h.accounts.List(r.Context())
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, nonNil(accounts))
}

func (h *Handler) CreateAccount(w http.ResponseWriter, r *http.Request) {
	var req createAccountRequest
	if !h.decode(w, r, &req) {
		return
	}
	role, _ := domain.ParseRole(req.Role)
	acc, err := h.accounts.Register(r.Context(), req.Username, req.Password, role, req.contact())
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, acc)
}

func (h *Handler) UpdateAccount(w http.ResponseWriter, r *http.Request) {
	h.updateContact(w, r, mux.Vars(r)["username"])
}

func (h *Handler) DeleteAccount(w http.ResponseWriter, r *http.Request) {
	if err := h.accounts.Delete(r.Context(), mux.Vars(r)["username"]); err != nil {
		writeServiceError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) updateContact(w http.ResponseWriter, r *http.Request, username string) {
	var req contactRequest
	if !h.decode(w, r, &req) {
		return
	}
	acc, err := h.accounts.UpdateContact(r.Context(), username, req.contact())
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, acc)
}
