package delivery

import (
	"context"
	"database/sql"

	"chopline-be/internal/logger"
	"chopline-be/internal/order"

	"go.uber.org/zap"
)

type Repository interface {
	// AvailableOffers lists ready, unclaimed orders. First-come visibility:
	// the view is not scoped to any driver.
	AvailableOffers(ctx context.Context) ([]*order.Order, error)

	// ActiveDeliveries lists orders the driver has picked up but not yet
	// delivered.
	ActiveDeliveries(ctx context.Context, driverID string) ([]*order.Order, error)

	// ClaimOrder sets the driver and moves READY -> PICKED in one conditional
	// write. At most one caller ever succeeds for a given order.
	ClaimOrder(ctx context.Context, orderID, driverID, driverName string) error

	// CompleteDelivery moves PICKED -> DELIVERED, conditional on the claiming
	// driver.
	CompleteDelivery(ctx context.Context, orderID, driverID string) error
}

type repository struct {
	db *sql.DB
}

func NewRepository(db *sql.DB) Repository {
	return &repository{db: db}
}

const offerColumns = `
	id, order_number, customer_id, restaurant_id, driver_id, driver_name,
	total, delivery_fee, status, delivery_address, phone_number,
	restaurant_name, tx_ref, cancellation_reason, created_at, updated_at
`

func (r *repository) AvailableOffers(ctx context.Context) ([]*order.Order, error) {
	return r.queryOrders(ctx, `
		SELECT `+offerColumns+`
		FROM orders
		WHERE status = $1 AND driver_id IS NULL
		ORDER BY created_at
	`, order.StatusReady)
}

func (r *repository) ActiveDeliveries(ctx context.Context, driverID string) ([]*order.Order, error) {
	return r.queryOrders(ctx, `
		SELECT `+offerColumns+`
		FROM orders
		WHERE driver_id = $1 AND status = $2
		ORDER BY updated_at DESC
	`, driverID, order.StatusPicked)
}

func (r *repository) queryOrders(ctx context.Context, query string, args ...any) ([]*order.Order, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		logger.FromCtx(ctx).Error("failed to query deliveries", zap.Error(err))
		return nil, err
	}
	defer rows.Close()

	var orders []*order.Order
	for rows.Next() {
		var o order.Order
		if err := rows.Scan(
			&o.ID,
			&o.OrderNumber,
			&o.CustomerID,
			&o.RestaurantID,
			&o.DriverID,
			&o.DriverName,
			&o.Total,
			&o.DeliveryFee,
			&o.Status,
			&o.DeliveryAddress,
			&o.PhoneNumber,
			&o.RestaurantName,
			&o.TxRef,
			&o.CancellationReason,
			&o.CreatedAt,
			&o.UpdatedAt,
		); err != nil {
			return nil, err
		}
		orders = append(orders, &o)
	}

	return orders, rows.Err()
}

func (r *repository) ClaimOrder(ctx context.Context, orderID, driverID, driverName string) error {
	log := logger.FromCtx(ctx).With(
		zap.String("layer", "repository"),
		zap.String("method", "ClaimOrder"),
		zap.String("order_id", orderID),
		zap.String("driver_id", driverID),
	)

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		log.Error("failed to begin transaction", zap.Error(err))
		return err
	}

	committed := false
	defer func() {
		if !committed {
			_ = tx.Rollback()
		}
	}()

	// The load-bearing write: status and claim checked and set atomically.
	res, err := tx.ExecContext(ctx, `
		UPDATE orders
		SET status = $1,
		    driver_id = $2,
		    driver_name = $3,
		    updated_at = NOW()
		WHERE id = $4
		  AND status = $5
		  AND driver_id IS NULL
	`, order.StatusPicked, driverID, driverName, orderID, order.StatusReady)
	if err != nil {
		log.Error("failed to claim order", zap.Error(err))
		return err
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		var exists bool
		err := tx.QueryRowContext(ctx,
			`SELECT EXISTS(SELECT 1 FROM orders WHERE id = $1)`, orderID,
		).Scan(&exists)
		if err != nil {
			return err
		}
		if !exists {
			return order.ErrOrderNotFound
		}
		log.Info("claim lost to another driver")
		return ErrAlreadyClaimed
	}

	_, err = tx.ExecContext(ctx, `
		INSERT INTO order_status_history (
			order_id, from_status, to_status, actor_id, actor_role, note
		) VALUES ($1,$2,$3,$4,$5,$6)
	`,
		orderID, order.StatusReady, order.StatusPicked,
		driverID, order.RoleDriver, "delivery accepted",
	)
	if err != nil {
		log.Error("failed to insert status history", zap.Error(err))
		return err
	}

	if err := tx.Commit(); err != nil {
		log.Error("failed to commit claim", zap.Error(err))
		return err
	}

	committed = true
	log.Info("delivery claimed")

	return nil
}

func (r *repository) CompleteDelivery(ctx context.Context, orderID, driverID string) error {
	log := logger.FromCtx(ctx).With(
		zap.String("layer", "repository"),
		zap.String("method", "CompleteDelivery"),
		zap.String("order_id", orderID),
		zap.String("driver_id", driverID),
	)

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		log.Error("failed to begin transaction", zap.Error(err))
		return err
	}

	committed := false
	defer func() {
		if !committed {
			_ = tx.Rollback()
		}
	}()

	res, err := tx.ExecContext(ctx, `
		UPDATE orders
		SET status = $1,
		    updated_at = NOW()
		WHERE id = $2
		  AND status = $3
		  AND driver_id = $4
	`, order.StatusDelivered, orderID, order.StatusPicked, driverID)
	if err != nil {
		log.Error("failed to complete delivery", zap.Error(err))
		return err
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		var exists bool
		err := tx.QueryRowContext(ctx,
			`SELECT EXISTS(SELECT 1 FROM orders WHERE id = $1)`, orderID,
		).Scan(&exists)
		if err != nil {
			return err
		}
		if !exists {
			return order.ErrOrderNotFound
		}
		log.Warn("completion rejected: status or driver mismatch")
		return order.ErrInvalidTransition
	}

	_, err = tx.ExecContext(ctx, `
		INSERT INTO order_status_history (
			order_id, from_status, to_status, actor_id, actor_role, note
		) VALUES ($1,$2,$3,$4,$5,$6)
	`,
		orderID, order.StatusPicked, order.StatusDelivered,
		driverID, order.RoleDriver, "delivery completed",
	)
	if err != nil {
		log.Error("failed to insert status history", zap.Error(err))
		return err
	}

	if err := tx.Commit(); err != nil {
		log.Error("failed to commit completion", zap.Error(err))
		return err
	}

	committed = true
	log.Info("delivery completed")

	return nil
}
