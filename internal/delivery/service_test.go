package delivery

import (
	"context"
	"errors"
	"testing"

	"chopline-be/internal/order"
	"chopline-be/internal/stats"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

// --- Mocks ---

type MockRepo struct {
	mock.Mock
}

func (m *MockRepo) AvailableOffers(ctx context.Context) ([]*order.Order, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*order.Order), args.Error(1)
}

func (m *MockRepo) ActiveDeliveries(ctx context.Context, driverID string) ([]*order.Order, error) {
	args := m.Called(ctx, driverID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*order.Order), args.Error(1)
}

func (m *MockRepo) ClaimOrder(ctx context.Context, orderID, driverID, driverName string) error {
	args := m.Called(ctx, orderID, driverID, driverName)
	return args.Error(0)
}

func (m *MockRepo) CompleteDelivery(ctx context.Context, orderID, driverID string) error {
	args := m.Called(ctx, orderID, driverID)
	return args.Error(0)
}

type MockOrderRepo struct {
	mock.Mock
}

func (m *MockOrderRepo) CreateOrder(ctx context.Context, o *order.Order) error {
	args := m.Called(ctx, o)
	return args.Error(0)
}

func (m *MockOrderRepo) GetOrder(ctx context.Context, orderID string) (*order.Order, error) {
	args := m.Called(ctx, orderID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*order.Order), args.Error(1)
}

func (m *MockOrderRepo) GetOrderByTxRef(ctx context.Context, txRef string) (*order.Order, error) {
	args := m.Called(ctx, txRef)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*order.Order), args.Error(1)
}

func (m *MockOrderRepo) UpdateStatus(
	ctx context.Context,
	orderID string,
	from, to order.OrderStatus,
	change order.StatusChange,
	reason *string,
) error {
	args := m.Called(ctx, orderID, from, to, change, reason)
	return args.Error(0)
}

func (m *MockOrderRepo) ListByRestaurant(
	ctx context.Context,
	restaurantID string,
	status *order.OrderStatus,
	limit, page *int32,
) ([]*order.Order, error) {
	args := m.Called(ctx, restaurantID, status, limit, page)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*order.Order), args.Error(1)
}

func (m *MockOrderRepo) ListByCustomer(
	ctx context.Context,
	customerID string,
	limit, page *int32,
) ([]*order.Order, error) {
	args := m.Called(ctx, customerID, limit, page)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*order.Order), args.Error(1)
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

// --- Tests ---

func TestAcceptDelivery_Success(t *testing.T) {
	repo := new(MockRepo)
	orders := new(MockOrderRepo)
	svc := NewService(repo, orders, nil)

	driverID := "drv-1"
	claimed := &order.Order{ID: "ord-1", Status: order.StatusPicked, DriverID: &driverID}

	repo.On("ClaimOrder", mock.Anything, "ord-1", "drv-1", "Tunde").Return(nil)
	orders.On("GetOrder", mock.Anything, "ord-1").Return(claimed, nil)

	o, err := svc.AcceptDelivery(context.Background(), "ord-1", "drv-1", "Tunde")

	assert.NoError(t, err)
	assert.Equal(t, order.StatusPicked, o.Status)
	assert.Equal(t, "drv-1", *o.DriverID)
	repo.AssertExpectations(t)
}

func TestAcceptDelivery_AlreadyClaimed(t *testing.T) {
	repo := new(MockRepo)
	orders := new(MockOrderRepo)
	svc := NewService(repo, orders, nil)

	repo.On("ClaimOrder", mock.Anything, "ord-1", "drv-2", "Bola").Return(ErrAlreadyClaimed)

	_, err := svc.AcceptDelivery(context.Background(), "ord-1", "drv-2", "Bola")

	assert.ErrorIs(t, err, ErrAlreadyClaimed)
	orders.AssertNotCalled(t, "GetOrder", mock.Anything, mock.Anything)
}

func TestAcceptDelivery_DriverRequired(t *testing.T) {
	svc := NewService(new(MockRepo), new(MockOrderRepo), nil)

	_, err := svc.AcceptDelivery(context.Background(), "ord-1", "", "")

	assert.ErrorIs(t, err, ErrDriverRequired)
}

func TestCompleteDelivery_Success(t *testing.T) {
	repo := new(MockRepo)
	orders := new(MockOrderRepo)
	agg := new(MockAggregator)
	svc := NewService(repo, orders, agg)

	driverID := "drv-1"
	done := &order.Order{ID: "ord-1", Status: order.StatusDelivered, DriverID: &driverID, DeliveryFee: 50000}

	repo.On("CompleteDelivery", mock.Anything, "ord-1", "drv-1").Return(nil)
	agg.On("DriverStats", mock.Anything, "drv-1", mock.Anything).
		Return(&stats.DriverStats{Deliveries: 3, Earnings: 150000}, nil)
	orders.On("GetOrder", mock.Anything, "ord-1").Return(done, nil)

	o, err := svc.CompleteDelivery(context.Background(), "ord-1", "drv-1")

	assert.NoError(t, err)
	assert.Equal(t, order.StatusDelivered, o.Status)
	agg.AssertExpectations(t)
}

func TestCompleteDelivery_StatsFailureDoesNotBlock(t *testing.T) {
	repo := new(MockRepo)
	orders := new(MockOrderRepo)
	agg := new(MockAggregator)
	svc := NewService(repo, orders, agg)

	driverID := "drv-1"
	done := &order.Order{ID: "ord-1", Status: order.StatusDelivered, DriverID: &driverID}

	repo.On("CompleteDelivery", mock.Anything, "ord-1", "drv-1").Return(nil)
	agg.On("DriverStats", mock.Anything, "drv-1", mock.Anything).
		Return(nil, errors.New("rollup query failed"))
	orders.On("GetOrder", mock.Anything, "ord-1").Return(done, nil)

	o, err := svc.CompleteDelivery(context.Background(), "ord-1", "drv-1")

	assert.NoError(t, err)
	assert.Equal(t, order.StatusDelivered, o.Status)
}

func TestCompleteDelivery_WrongDriver(t *testing.T) {
	repo := new(MockRepo)
	orders := new(MockOrderRepo)
	svc := NewService(repo, orders, nil)

	repo.On("CompleteDelivery", mock.Anything, "ord-1", "drv-2").
		Return(order.ErrInvalidTransition)

	_, err := svc.CompleteDelivery(context.Background(), "ord-1", "drv-2")

	assert.ErrorIs(t, err, order.ErrInvalidTransition)
}

func TestActiveDeliveries_DriverRequired(t *testing.T) {
	svc := NewService(new(MockRepo), new(MockOrderRepo), nil)

	_, err := svc.ActiveDeliveries(context.Background(), "")

	assert.ErrorIs(t, err, ErrDriverRequired)
}
