package stats

import (
	"context"
	"database/sql"
	"time"
)

// DriverStats is a derived rollup over delivered orders: pure cache, always
// recomputable, no invariants of its own.
type DriverStats struct {
	Deliveries int   `json:"deliveries"`
	Earnings   int64 `json:"earnings"`
}

type RestaurantStats struct {
	Orders  int   `json:"orders"`
	Revenue int64 `json:"revenue"`
}

// Window is a half-open [From, To) time range.
type Window struct {
	From time.Time
	To   time.Time
}

// Today returns the window covering the server's current local day.
func Today() Window {
	now := time.Now()
	from := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
	return Window{From: from, To: from.AddDate(0, 0, 1)}
}

// Aggregator computes per-driver and per-restaurant rollups by scanning
// delivered orders. Safe to call repeatedly; an empty order set yields zeros.
type Aggregator interface {
	DriverStats(ctx context.Context, driverID string, w Window) (*DriverStats, error)
	RestaurantStats(ctx context.Context, restaurantID string, w Window) (*RestaurantStats, error)
}

type aggregator struct {
	db *sql.DB
}

func NewAggregator(db *sql.DB) Aggregator {
	return &aggregator{db: db}
}

func (a *aggregator) DriverStats(ctx context.Context, driverID string, w Window) (*DriverStats, error) {
	var s DriverStats
	err := a.db.QueryRowContext(ctx, `
		SELECT COUNT(*), COALESCE(SUM(delivery_fee), 0)
		FROM orders
		WHERE driver_id = $1
		  AND status = 'DELIVERED'
		  AND updated_at >= $2
		  AND updated_at < $3
	`, driverID, w.From, w.To).Scan(&s.Deliveries, &s.Earnings)
	if err != nil {
		return nil, err
	}
	return &s, nil
}

func (a *aggregator) RestaurantStats(ctx context.Context, restaurantID string, w Window) (*RestaurantStats, error) {
	var s RestaurantStats
	err := a.db.QueryRowContext(ctx, `
		SELECT COUNT(*), COALESCE(SUM(total), 0)
		FROM orders
		WHERE restaurant_id = $1
		  AND status = 'DELIVERED'
		  AND updated_at >= $2
		  AND updated_at < $3
	`, restaurantID, w.From, w.To).Scan(&s.Orders, &s.Revenue)
	if err != nil {
		return nil, err
	}
	return &s, nil
}
