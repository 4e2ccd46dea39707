package http_test

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/mux"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	httpapi "vehicle-rental-desk/internal/api/http"
	"vehicle-rental-desk/internal/domain"
	"vehicle-rental-desk/internal/security"
	"vehicle-rental-desk/internal/service"
)

var now = time.Date(2025, 5, 20, 10, 0, 0, 0, time.UTC)

type nopVehicles struct{}

func (nopVehicles) ListAll(context.Context) ([]domain.Vehicle, error) { return nil, nil }
func (nopVehicles) Save(context.Context, *domain.Vehicle) error       { return nil }
func (nopVehicles) Delete(context.Context, string) error              { return nil }

type nopRecords struct{}

func (nopRecords) ListAll(context.Context) ([]domain.ReservationRecord, error) { return nil, nil }
func (nopRecords) ListByHolder(context.Context, string) ([]domain.ReservationRecord, error) {
	return nil, nil
}
func (nopRecords) Append(context.Context, *domain.ReservationRecord) error { return nil }
func (nopRecords) MarkPaid(context.Context, string, string) (int64, error) { return 0, nil }

// MockAccountService
type MockAccountService struct {
	mock.Mock
}

func (m *MockAccountService) Register(ctx context.Context, username, password string, role domain.Role, contact domain.Contact) (*domain.Account, error) {
	args := m.Called(ctx, username, password, role, contact)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Account), args.Error(1)
}

func (m *MockAccountService) Login(ctx context.Context, username, password string) (*domain.Account, string, error) {
	args := m.Called(ctx, username, password)
	if args.Get(0) == nil {
		return nil, "", args.Error(2)
	}
	return args.Get(0).(*domain.Account), args.String(1), args.Error(2)
}

func (m *MockAccountService) Get(ctx context.Context, username string) (*domain.Account, error) {
	args := m.Called(ctx, username)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Account), args.Error(1)
}

func (m *MockAccountService) List(ctx context.Context) ([]domain.Account, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Account), args.Error(1)
}

func (m *MockAccountService) UpdateContact(ctx context.Context, username string, contact domain.Contact) (*domain.Account, error) {
	args := m.Called(ctx, username, contact)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Account), args.Error(1)
}

func (m *MockAccountService) Delete(ctx context.Context, username string) error {
	args := m.Called(ctx, username)
	return args.Error(0)
}

type apiFixture struct {
	router   *mux.Router
	engine   *service.BookingEngine
	accounts *MockAccountService
	tokens   security.TokenManager
	metrics  *service.Metrics
}

func newAPIFixture(t *testing.T) *apiFixture {
	t.Helper()
	clock := func() time.Time { return now }
	f := &apiFixture{
		engine:   service.NewBookingEngine(nopVehicles{}, nopRecords{}, service.WithClock(clock)),
		accounts: new(MockAccountService),
		tokens:   security.NewTokenManager("0123456789abcdef0123456789abcdef", time.Hour),
		metrics:  service.NewMetrics(),
	}
	notifier := service.NewNotifier(f.engine, service.WithNotifierClock(clock))
	f.router = httpapi.NewRouter(httpapi.NewHandler(f.engine, notifier, f.accounts), f.tokens, f.metrics)

	require.NoError(t, f.engine.AddVehicle(context.Background(),
		domain.NewVehicle("CAR-1", domain.VehicleKindCar, "Toyota", "Corolla", 4550)))
	return f
}

func (f *apiFixture) token(t *testing.T, username string, role domain.Role) string {
	t.Helper()
	token, err := f.tokens.GenerateAccessToken(username, string(role))
	require.NoError(t, err)
	return token
}

func (f *apiFixture) do(t *testing.T, method, path, token string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	f.router.ServeHTTP(rec, req)
	return rec
}

func decodeBody[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var out T
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out))
	return out
}

func TestAuthMiddleware(t *testing.T) {
	f := newAPIFixture(t)
	customer := f.token(t, "alice", domain.RoleCustomer)

	t.Run("PublicHealth", func(t *testing.T) {
		rec := f.do(t, http.MethodGet, "/health", "", nil)
		assert.Equal(t, http.StatusOK, rec.Code)
	})

	t.Run("MissingToken", func(t *testing.T) {
		rec := f.do(t, http.MethodGet, "/api/v1/vehicles", "", nil)
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})

	t.Run("InvalidToken", func(t *testing.T) {
		rec := f.do(t, http.MethodGet, "/api/v1/vehicles", "garbage", nil)
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})

	t.Run("CustomerOnAdminRoute", func(t *testing.T) {
		rec := f.do(t, http.MethodPost, "/api/v1/vehicles", customer, map[string]any{
			"id": "CAR-2", "kind": "car", "brand": "Fiat", "model": "Panda", "price_per_day_cents": 3000,
		})
		assert.Equal(t, http.StatusForbidden, rec.Code)
	})

	t.Run("CustomerRoute", func(t *testing.T) {
		rec := f.do(t, http.MethodGet, "/api/v1/vehicles", customer, nil)
		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Len(t, decodeBody[[]domain.Vehicle](t, rec), 1)
	})
}

func TestVehicleHandlers_Admin(t *testing.T) {
	f := newAPIFixture(t)
	admin := f.token(t, "root", domain.RoleAdmin)

	t.Run("AddVehicle", func(t *testing.T) {
		rec := f.do(t, http.MethodPost, "/api/v1/vehicles", admin, map[string]any{
			"id": "MOTO-1", "kind": "motorcycle", "brand": "Honda", "model": "CB500", "price_per_day_cents": 2500,
		})
		require.Equal(t, http.StatusCreated, rec.Code)
		v := decodeBody[domain.Vehicle](t, rec)
		assert.Equal(t, domain.VehicleKindMotorcycle, v.Kind)
		assert.True(t, v.Available)
	})

	t.Run("Duplicate", func(t *testing.T) {
		rec := f.do(t, http.MethodPost, "/api/v1/vehicles", admin, map[string]any{
			"id": "car-1", "kind": "car", "brand": "Fiat", "model": "Panda", "price_per_day_cents": 3000,
		})
		assert.Equal(t, http.StatusConflict, rec.Code)
	})

	t.Run("UnknownKind", func(t *testing.T) {
		rec := f.do(t, http.MethodPost, "/api/v1/vehicles", admin, map[string]any{
			"id": "T-1", "kind": "truck", "brand": "Volvo", "model": "FH", "price_per_day_cents": 3000,
		})
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("MissingField", func(t *testing.T) {
		rec := f.do(t, http.MethodPost, "/api/v1/vehicles", admin, map[string]any{"id": "X-1", "kind": "car"})
		assert.Equal(t, http.StatusBadRequest, rec.Code)
		assert.Contains(t, rec.Body.String(), "invalid field")
	})

	t.Run("UpdateVehicle", func(t *testing.T) {
		rec := f.do(t, http.MethodPut, "/api/v1/vehicles/CAR-1", admin, map[string]any{
			"brand": "Toyota", "model": "Yaris", "price_per_day_cents": 3900,
		})
		require.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, "Yaris", decodeBody[domain.Vehicle](t, rec).Model)
	})

	t.Run("DeleteMissing", func(t *testing.T) {
		rec := f.do(t, http.MethodDelete, "/api/v1/vehicles/NOPE", admin, nil)
		assert.Equal(t, http.StatusNotFound, rec.Code)
	})

	t.Run("DeleteVehicle", func(t *testing.T) {
		rec := f.do(t, http.MethodDelete, "/api/v1/vehicles/MOTO-1", admin, nil)
		assert.Equal(t, http.StatusNoContent, rec.Code)
	})

	t.Run("UnknownStatusFilter", func(t *testing.T) {
		rec := f.do(t, http.MethodGet, "/api/v1/vehicles?status=broken", admin, nil)
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})
}

func TestVehicleHandlers_RentalFlow(t *testing.T) {
	f := newAPIFixture(t)
	alice := f.token(t, "alice", domain.RoleCustomer)
	bob := f.token(t, "bob", domain.RoleCustomer)
	admin := f.token(t, "root", domain.RoleAdmin)
	start := now.Add(48 * time.Hour)

	rec := f.do(t, http.MethodPost, "/api/v1/vehicles/car-1/rent", alice, map[string]any{"start": start, "days": 3})
	require.Equal(t, http.StatusCreated, rec.Code)
	body := decodeBody[map[string]any](t, rec)
	assert.Equal(t, "136.50", body["total"])

	rec = f.do(t, http.MethodPost, "/api/v1/vehicles/CAR-1/rent", bob, map[string]any{"start": start.Add(240 * time.Hour), "days": 1})
	assert.Equal(t, http.StatusConflict, rec.Code)

	rec = f.do(t, http.MethodPost, "/api/v1/vehicles/GHOST/rent", bob, map[string]any{"start": start, "days": 1})
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = f.do(t, http.MethodPost, "/api/v1/vehicles/CAR-1/rent", bob, map[string]any{"start": start, "days": 0})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = f.do(t, http.MethodGet, "/api/v1/vehicles?status=rented", bob, nil)
	assert.Len(t, decodeBody[[]domain.Vehicle](t, rec), 1)

	rec = f.do(t, http.MethodGet, "/api/v1/me/upcoming", alice, nil)
	assert.Len(t, decodeBody[[]domain.Vehicle](t, rec), 1)

	rec = f.do(t, http.MethodGet, "/api/v1/me/vehicles", bob, nil)
	assert.Equal(t, "[]\n", rec.Body.String())

	rec = f.do(t, http.MethodPost, "/api/v1/vehicles/CAR-1/return", bob, nil)
	assert.Equal(t, http.StatusForbidden, rec.Code)

	rec = f.do(t, http.MethodPost, "/api/v1/vehicles/CAR-1/cancel", bob, nil)
	assert.Equal(t, http.StatusForbidden, rec.Code)

	rec = f.do(t, http.MethodPost, "/api/v1/vehicles/CAR-1/payment", admin, nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	rec = f.do(t, http.MethodPost, "/api/v1/vehicles/CAR-1/payment", admin, nil)
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)

	rec = f.do(t, http.MethodPost, "/api/v1/vehicles/CAR-1/cancel", alice, nil)
	require.Equal(t, http.StatusOK, rec.Code)

	rec = f.do(t, http.MethodPost, "/api/v1/vehicles/CAR-1/return", alice, nil)
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)

	rec = f.do(t, http.MethodGet, "/api/v1/me/history", alice, nil)
	history := decodeBody[[]domain.ReservationRecord](t, rec)
	require.Len(t, history, 1)
	assert.True(t, history[0].Paid)

	rec = f.do(t, http.MethodGet, "/api/v1/admin/history", admin, nil)
	assert.Len(t, decodeBody[[]domain.ReservationRecord](t, rec), 1)
}

func TestVehicleHandlers_AdminOnBehalf(t *testing.T) {
	f := newAPIFixture(t)
	admin := f.token(t, "root", domain.RoleAdmin)
	start := now.Add(48 * time.Hour)

	rec := f.do(t, http.MethodPost, "/api/v1/vehicles/CAR-1/rent", admin, map[string]any{"start": start, "days": 1, "holder": "carol", "paid": true})
	require.Equal(t, http.StatusCreated, rec.Code)
	v, err := f.engine.FindVehicle("CAR-1")
	require.NoError(t, err)
	assert.Equal(t, "carol", v.RentedBy)
	assert.True(t, v.Paid)

	rec = f.do(t, http.MethodPost, "/api/v1/vehicles/CAR-1/cancel", admin, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	v, _ = f.engine.FindVehicle("CAR-1")
	assert.False(t, v.Rented)

	rec = f.do(t, http.MethodPost, "/api/v1/vehicles/CAR-1/cancel", admin, nil)
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	rec = f.do(t, http.MethodPost, "/api/v1/vehicles/CAR-1/cancel", admin, map[string]any{"holder": "carol"})
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
}

func TestNotificationHandlers(t *testing.T) {
	f := newAPIFixture(t)
	alice := f.token(t, "alice", domain.RoleCustomer)
	admin := f.token(t, "root", domain.RoleAdmin)

	_, err := f.engine.Rent(context.Background(), "CAR-1", "alice", now.Add(-48*time.Hour), now.Add(-time.Hour), false)
	require.NoError(t, err)

	rec := f.do(t, http.MethodGet, "/api/v1/me/notifications", alice, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	alerts := decodeBody[[]domain.Alert](t, rec)
	require.Len(t, alerts, 1)
	assert.Equal(t, domain.AlertOverdue, alerts[0].Kind)

	rec = f.do(t, http.MethodGet, "/api/v1/admin/notifications", admin, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	body := rec.Body.String()
	assert.Contains(t, body, `"due_soon":[]`)
	assert.Contains(t, body, `"starting_soon":[]`)
	assert.Contains(t, body, "Overdue: Car - Toyota Corolla (ID: CAR-1)")
}

func TestAccountHandlers(t *testing.T) {
	f := newAPIFixture(t)
	admin := f.token(t, "root", domain.RoleAdmin)
	alice := f.token(t, "alice", domain.RoleCustomer)

	t.Run("RegisterAlwaysCustomer", func(t *testing.T) {
		f.accounts.On("Register", mock.Anything, "dave", "secret1", domain.RoleCustomer, domain.Contact{Email: "d@example.com"}).
			Return(&domain.Account{Username: "dave", Role: domain.RoleCustomer}, nil).Once()

		rec := f.do(t, http.MethodPost, "/api/v1/auth/register", "", map[string]any{
			"username": "dave", "password": "secret1", "email": "d@example.com", "role": "ADMIN",
		})
		assert.Equal(t, http.StatusCreated, rec.Code)
	})

	t.Run("RegisterBadEmail", func(t *testing.T) {
		rec := f.do(t, http.MethodPost, "/api/v1/auth/register", "", map[string]any{
			"username": "dave", "password": "secret1", "email": "not-an-email",
		})
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("LoginInvalid", func(t *testing.T) {
		f.accounts.On("Login", mock.Anything, "dave", "wrong").Return(nil, "", service.ErrInvalidCredentials).Once()
		rec := f.do(t, http.MethodPost, "/api/v1/auth/login", "", map[string]any{"username": "dave", "password": "wrong"})
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})

	t.Run("LoginSuccess", func(t *testing.T) {
		f.accounts.On("Login", mock.Anything, "dave", "secret1").
			Return(&domain.Account{Username: "dave", Role: domain.RoleCustomer}, "tok", nil).Once()
		rec := f.do(t, http.MethodPost, "/api/v1/auth/login", "", map[string]any{"username": "dave", "password": "secret1"})
		require.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, "tok", decodeBody[map[string]any](t, rec)["token"])
	})

	t.Run("GetMe", func(t *testing.T) {
		f.accounts.On("Get", mock.Anything, "alice").Return(&domain.Account{Username: "alice", PasswordHash: "hash"}, nil).Once()
		rec := f.do(t, http.MethodGet, "/api/v1/me", alice, nil)
		require.Equal(t, http.StatusOK, rec.Code)
		assert.NotContains(t, rec.Body.String(), "hash")
	})

	t.Run("UpdateMe", func(t *testing.T) {
		f.accounts.On("UpdateContact", mock.Anything, "alice", domain.Contact{Phone: "+15550100"}).
			Return(&domain.Account{Username: "alice"}, nil).Once()
		rec := f.do(t, http.MethodPut, "/api/v1/me", alice, map[string]any{"phone": "+15550100"})
		assert.Equal(t, http.StatusOK, rec.Code)
	})

	t.Run("CreateAdmin", func(t *testing.T) {
		f.accounts.On("Register", mock.Anything, "ops", "secret1", domain.RoleAdmin, domain.Contact{}).
			Return(&domain.Account{Username: "ops", Role: domain.RoleAdmin}, nil).Once()
		rec := f.do(t, http.MethodPost, "/api/v1/admin/accounts", admin, map[string]any{
			"username": "ops", "password": "secret1", "role": "admin",
		})
		assert.Equal(t, http.StatusCreated, rec.Code)
	})

	t.Run("CreateAccountBadRole", func(t *testing.T) {
		rec := f.do(t, http.MethodPost, "/api/v1/admin/accounts", admin, map[string]any{
			"username": "ops", "password": "secret1", "role": "root",
		})
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("DeleteMissing", func(t *testing.T) {
		f.accounts.On("Delete", mock.Anything, "ghost").Return(service.ErrAccountNotFound).Once()
		rec := f.do(t, http.MethodDelete, "/api/v1/admin/accounts/ghost", admin, nil)
		assert.Equal(t, http.StatusNotFound, rec.Code)
	})

	t.Run("ListAccountsForbiddenToCustomer", func(t *testing.T) {
		rec := f.do(t, http.MethodGet, "/api/v1/admin/accounts", alice, nil)
		assert.Equal(t, http.StatusForbidden, rec.Code)
	})

	f.accounts.AssertExpectations(t)
}

func TestMetricsEndpoint(t *testing.T) {
	f := newAPIFixture(t)
	f.do(t, http.MethodGet, "/health", "", nil)

	rec := f.do(t, http.MethodGet, "/metrics", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `http_requests_total{method="GET",path="/health",status="OK"} 1`)
}

func TestObservabilityMiddleware_Recovers(t *testing.T) {
	router := mux.NewRouter()
	router.Use(httpapi.ObservabilityMiddleware(nil))
	router.HandleFunc("/boom", func(http.ResponseWriter, *http.Request) { panic("boom") })

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/boom", nil))
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.True(t, strings.Contains(rec.Body.String(), "internal error"))
}
