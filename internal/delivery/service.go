package delivery

import (
	"context"

	"chopline-be/internal/logger"
	"chopline-be/internal/order"
	"chopline-be/internal/stats"

	"go.uber.org/zap"
)

// Service is the delivery matcher: it surfaces unclaimed ready orders to
// drivers and enforces single-claim acceptance. The claim itself lives in the
// repository as one conditional write; the edges it takes are exactly the
// driver edges of the order transition table.
type Service interface {
	AvailableOffers(ctx context.Context) ([]*order.Order, error)
	ActiveDeliveries(ctx context.Context, driverID string) ([]*order.Order, error)
	AcceptDelivery(ctx context.Context, orderID, driverID, driverName string) (*order.Order, error)
	CompleteDelivery(ctx context.Context, orderID, driverID string) (*order.Order, error)
}

type service struct {
	repo       Repository
	orders     order.Repository
	aggregator stats.Aggregator
}

func NewService(repo Repository, orders order.Repository, aggregator stats.Aggregator) Service {
	return &service{
		repo:       repo,
		orders:     orders,
		aggregator: aggregator,
	}
}

func (s *service) AvailableOffers(ctx context.Context) ([]*order.Order, error) {
	return s.repo.AvailableOffers(ctx)
}

func (s *service) ActiveDeliveries(ctx context.Context, driverID string) ([]*order.Order, error) {
	if driverID == "" {
		return nil, ErrDriverRequired
	}
	return s.repo.ActiveDeliveries(ctx, driverID)
}

func (s *service) AcceptDelivery(ctx context.Context, orderID, driverID, driverName string) (*order.Order, error) {
	if driverID == "" {
		return nil, ErrDriverRequired
	}

	if err := s.repo.ClaimOrder(ctx, orderID, driverID, driverName); err != nil {
		return nil, err
	}

	return s.orders.GetOrder(ctx, orderID)
}

func (s *service) CompleteDelivery(ctx context.Context, orderID, driverID string) (*order.Order, error) {
	if driverID == "" {
		return nil, ErrDriverRequired
	}

	if err := s.repo.CompleteDelivery(ctx, orderID, driverID); err != nil {
		return nil, err
	}

	// Best-effort rollup refresh; the delivery stands regardless.
	if s.aggregator != nil {
		if rollup, err := s.aggregator.DriverStats(ctx, driverID, stats.Today()); err != nil {
			logger.FromCtx(ctx).Warn("failed to recompute driver stats",
				zap.String("driver_id", driverID),
				zap.Error(err),
			)
		} else {
			logger.FromCtx(ctx).Info("driver stats recomputed",
				zap.String("driver_id", driverID),
				zap.Int("deliveries_today", rollup.Deliveries),
				zap.Int64("earnings_today", rollup.Earnings),
			)
		}
	}

	return s.orders.GetOrder(ctx, orderID)
}
