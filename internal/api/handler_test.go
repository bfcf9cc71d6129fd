package api

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"chopline-be/internal/delivery"
	"chopline-be/internal/order"
	"chopline-be/internal/stats"
	"chopline-be/internal/utils"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// --- Mocks ---

type MockOrderService struct {
	mock.Mock
}

func (m *MockOrderService) Checkout(ctx context.Context, input order.CheckoutInput) (*order.CheckoutResult, error) {
	args := m.Called(ctx, input)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*order.CheckoutResult), args.Error(1)
}

func (m *MockOrderService) UpdateStatus(ctx context.Context, orderID string, to order.OrderStatus, actor order.Actor, note string) (*order.Order, error) {
	args := m.Called(ctx, orderID, to, actor, note)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*order.Order), args.Error(1)
}

func (m *MockOrderService) CancelOrder(ctx context.Context, orderID, reason string, actor order.Actor) (*order.Order, error) {
	args := m.Called(ctx, orderID, reason, actor)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*order.Order), args.Error(1)
}

func (m *MockOrderService) GetOrderDetail(ctx context.Context, orderID string, actor order.Actor) (*order.Order, error) {
	args := m.Called(ctx, orderID, actor)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*order.Order), args.Error(1)
}

func (m *MockOrderService) GetOrderByTxRef(ctx context.Context, txRef string) (*order.Order, error) {
	args := m.Called(ctx, txRef)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*order.Order), args.Error(1)
}

func (m *MockOrderService) ListRestaurantOrders(ctx context.Context, restaurantID string, status *order.OrderStatus, limit, page *int32) ([]*order.Order, error) {
	args := m.Called(ctx, restaurantID, status, limit, page)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*order.Order), args.Error(1)
}

func (m *MockOrderService) ListCustomerOrders(ctx context.Context, customerID string, limit, page *int32) ([]*order.Order, error) {
	args := m.Called(ctx, customerID, limit, page)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*order.Order), args.Error(1)
}

type MockDeliveryService struct {
	mock.Mock
}

func (m *MockDeliveryService) AvailableOffers(ctx context.Context) ([]*order.Order, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*order.Order), args.Error(1)
}

func (m *MockDeliveryService) ActiveDeliveries(ctx context.Context, driverID string) ([]*order.Order, error) {
	args := m.Called(ctx, driverID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*order.Order), args.Error(1)
}

func (m *MockDeliveryService) AcceptDelivery(ctx context.Context, orderID, driverID, driverName string) (*order.Order, error) {
	args := m.Called(ctx, orderID, driverID, driverName)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*order.Order), args.Error(1)
}

func (m *MockDeliveryService) CompleteDelivery(ctx context.Context, orderID, driverID string) (*order.Order, error) {
	args := m.Called(ctx, orderID, driverID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*order.Order), args.Error(1)
}

type MockAggregator struct {
	mock.Mock
}

func (m *MockAggregator) DriverStats(ctx context.Context, driverID string, w stats.Window) (*stats.DriverStats, error) {
	args := m.Called(ctx, driverID, w)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*stats.DriverStats), args.Error(1)
}

func (m *MockAggregator) RestaurantStats(ctx context.Context, restaurantID string, w stats.Window) (*stats.RestaurantStats, error) {
	args := m.Called(ctx, restaurantID, w)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*stats.RestaurantStats), args.Error(1)
}

// --- Helpers ---

func authed(r *http.Request, id, role string) *http.Request {
	ctx := utils.SetActorContext(r.Context(), id, id+"@example.com", role)
	return r.WithContext(ctx)
}

func pathRequest(method, path, body string) *http.Request {
	if body == "" {
		body = "{}"
	}
	return httptest.NewRequest(method, path, strings.NewReader(body))
}

func serve(pattern string, handler http.HandlerFunc, req *http.Request) *httptest.ResponseRecorder {
	mux := http.NewServeMux()
	mux.HandleFunc(pattern, handler)
	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, req)
	return rec
}

func decodeEnvelope(t *testing.T, rec *httptest.ResponseRecorder) envelope {
	t.Helper()
	var env envelope
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &env))
	return env
}

// --- Tests ---

func TestOrderHandler_Checkout_Unauthenticated(t *testing.T) {
	h := NewOrderHandler(new(MockOrderService))

	req := pathRequest("POST", "/orders", `{"items": []}`)
	rec := serve("POST /orders", h.Checkout, req)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestOrderHandler_Cancel_ReasonRequired(t *testing.T) {
	svc := new(MockOrderService)
	h := NewOrderHandler(svc)

	svc.On("CancelOrder", mock.Anything, "ord-1", "", order.Actor{ID: "rest-1", Role: order.RoleRestaurant}).
		Return(nil, order.ErrReasonRequired)

	req := authed(pathRequest("POST", "/orders/ord-1/cancel", `{"reason": ""}`), "rest-1", "restaurant")
	rec := serve("POST /orders/{id}/cancel", h.Cancel, req)

	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	env := decodeEnvelope(t, rec)
	require.NotNil(t, env.Error)
	assert.Equal(t, "reason_required", env.Error.Code)
}

func TestOrderHandler_UpdateStatus_InvalidTransition(t *testing.T) {
	svc := new(MockOrderService)
	h := NewOrderHandler(svc)

	svc.On("UpdateStatus", mock.Anything, "ord-1", order.StatusReady,
		order.Actor{ID: "rest-1", Role: order.RoleRestaurant}, "").
		Return(nil, order.ErrInvalidTransition)

	req := authed(pathRequest("PATCH", "/orders/ord-1/status", `{"status": "READY"}`), "rest-1", "restaurant")
	rec := serve("PATCH /orders/{id}/status", h.UpdateStatus, req)

	assert.Equal(t, http.StatusConflict, rec.Code)
	env := decodeEnvelope(t, rec)
	assert.Equal(t, "invalid_transition", env.Error.Code)
}

func TestOrderHandler_GetOrder_NotFound(t *testing.T) {
	svc := new(MockOrderService)
	h := NewOrderHandler(svc)

	svc.On("GetOrderDetail", mock.Anything, "nope", mock.Anything).
		Return(nil, order.ErrOrderNotFound)

	req := authed(pathRequest("GET", "/orders/nope", ""), "cust-1", "customer")
	rec := serve("GET /orders/{id}", h.GetOrder, req)

	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestOrderHandler_GetOrder_Forbidden(t *testing.T) {
	svc := new(MockOrderService)
	h := NewOrderHandler(svc)

	svc.On("GetOrderDetail", mock.Anything, "ord-1", mock.Anything).
		Return(nil, order.ErrUnauthorized)

	req := authed(pathRequest("GET", "/orders/ord-1", ""), "cust-2", "customer")
	rec := serve("GET /orders/{id}", h.GetOrder, req)

	assert.Equal(t, http.StatusForbidden, rec.Code)
}

func TestDeliveryHandler_Accept_AlreadyClaimed(t *testing.T) {
	svc := new(MockDeliveryService)
	h := NewDeliveryHandler(svc)

	svc.On("AcceptDelivery", mock.Anything, "ord-1", "drv-2", "Bola").
		Return(nil, delivery.ErrAlreadyClaimed)

	req := authed(pathRequest("POST", "/deliveries/ord-1/accept", `{"driver_name": "Bola"}`), "drv-2", "driver")
	rec := serve("POST /deliveries/{id}/accept", h.Accept, req)

	assert.Equal(t, http.StatusConflict, rec.Code)
	env := decodeEnvelope(t, rec)
	assert.Equal(t, "already_claimed", env.Error.Code)
}

func TestDeliveryHandler_Accept_Success(t *testing.T) {
	svc := new(MockDeliveryService)
	h := NewDeliveryHandler(svc)

	driverID := "drv-1"
	svc.On("AcceptDelivery", mock.Anything, "ord-1", "drv-1", "Tunde").
		Return(&order.Order{ID: "ord-1", Status: order.StatusPicked, DriverID: &driverID}, nil)

	req := authed(pathRequest("POST", "/deliveries/ord-1/accept", `{"driver_name": "Tunde"}`), "drv-1", "driver")
	rec := serve("POST /deliveries/{id}/accept", h.Accept, req)

	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestStatsHandler_Driver(t *testing.T) {
	agg := new(MockAggregator)
	h := NewStatsHandler(agg)

	agg.On("DriverStats", mock.Anything, "drv-1", mock.Anything).
		Return(&stats.DriverStats{Deliveries: 2, Earnings: 100000}, nil)

	req := authed(pathRequest("GET", "/stats/driver", ""), "drv-1", "driver")
	rec := serve("GET /stats/driver", h.Driver, req)

	assert.Equal(t, http.StatusOK, rec.Code)

	var env struct {
		Data stats.DriverStats `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &env))
	assert.Equal(t, 2, env.Data.Deliveries)
	assert.Equal(t, int64(100000), env.Data.Earnings)
}

func TestWriteError_UnknownErrorIs500(t *testing.T) {
	rec := httptest.NewRecorder()
	req := httptest.NewRequest("GET", "/", nil)

	writeError(rec, req, assert.AnError)

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	env := decodeEnvelope(t, rec)
	assert.Equal(t, "internal_error", env.Error.Code)
}
