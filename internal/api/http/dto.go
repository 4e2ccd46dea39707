package http

import (
	"time"

	"vehicle-rental-desk/internal/domain"
)

type registerRequest struct {
	Username string `json:"username" validate:"required,min=3,max=64"`
	Password string `json:"password" validate:"required,min=6"`
	Name     string `json:"name"`
	Email    string `json:"email" validate:"omitempty,email"`
	Phone    string `json:"phone" validate:"omitempty,max=32"`
	Address  string `json:"address"`
}

func (r registerRequest) contact() domain.Contact {
	return domain.Contact{Name: r.Name, Email: r.Email, Phone: r.Phone, Address: r.Address}
}

type createAccountRequest struct {
	registerRequest
	Role string `json:"role" validate:"required,oneof=ADMIN CUSTOMER admin customer"`
}

type loginRequest struct {
	Username string `json:"username" validate:"required"`
	Password string `json:"password" validate:"required"`
}

type loginResponse struct {
	Token    string      `json:"token"`
	Username string      `json:"username"`
	Role     domain.Role `json:"role"`
}

type contactRequest struct {
	Name    string `json:"name"`
	Email   string `json:"email" validate:"omitempty,email"`
	Phone   string `json:"phone" validate:"omitempty,max=32"`
	Address string `json:"address"`
}

func (r contactRequest) contact() domain.Contact {
	return domain.Contact{Name: r.Name, Email: r.Email, Phone: r.Phone, Address: r.Address}
}

type addVehicleRequest struct {
	ID               string `json:"id" validate:"required,max=64"`
	Kind             string `json:"kind" validate:"required"`
	Brand            string `json:"brand" validate:"required"`
	Model            string `json:"model" validate:"required"`
	PricePerDayCents int64  `json:"price_per_day_cents" validate:"gte=0"`
}

type updateVehicleRequest struct {
	Brand            string `json:"brand" validate:"required"`
	Model            string `json:"model" validate:"required"`
	PricePerDayCents int64  `json:"price_per_day_cents" validate:"gte=0"`
}

type rentRequest struct {
	Start  time.Time `json:"start" validate:"required"`
	Days   int       `json:"days" validate:"required,gt=0,lte=365"`
	Paid   bool      `json:"paid"`
	Holder string    `json:"holder"`
}

type cancelRequest struct {
	Holder string `json:"holder"`
}

type rentResponse struct {
	Record  domain.ReservationRecord `json:"record"`
	Total   string                   `json:"total"`
	Message string                   `json:"message"`
}

type notificationsResponse struct {
	Overdue      []domain.Alert `json:"overdue"`
	DueSoon      []domain.Alert `json:"due_soon"`
	StartingSoon []domain.Alert `json:"starting_soon"`
}

type messageResponse struct {
	Message string `json:"message"`
}

type errorResponse struct {
	Error string `json:"error"`
}
