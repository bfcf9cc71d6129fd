package order

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"chopline-be/internal/logger"

	"go.uber.org/zap"
)

type Repository interface {
	CreateOrder(ctx context.Context, o *Order) error
	GetOrder(ctx context.Context, orderID string) (*Order, error)
	GetOrderByTxRef(ctx context.Context, txRef string) (*Order, error)

	// UpdateStatus performs the compare-and-set transition: the row is updated
	// only if its current status still equals from. A stale caller gets
	// ErrInvalidTransition, never a silent overwrite.
	UpdateStatus(
		ctx context.Context,
		orderID string,
		from, to OrderStatus,
		change StatusChange,
		reason *string,
	) error

	ListByRestaurant(
		ctx context.Context,
		restaurantID string,
		status *OrderStatus,
		limit, page *int32,
	) ([]*Order, error)

	ListByCustomer(
		ctx context.Context,
		customerID string,
		limit, page *int32,
	) ([]*Order, error)
}

type repository struct {
	db *sql.DB
}

func NewRepository(db *sql.DB) Repository {
	return &repository{db: db}
}

const orderColumns = `
	id, order_number, customer_id, restaurant_id, driver_id, driver_name,
	total, delivery_fee, status, delivery_address, phone_number,
	restaurant_name, tx_ref, cancellation_reason, created_at, updated_at
`

func scanOrder(row interface{ Scan(...any) error }) (*Order, error) {
	var o Order
	err := row.Scan(
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
	)
	if err != nil {
		return nil, err
	}
	return &o, nil
}

func (r *repository) CreateOrder(ctx context.Context, o *Order) error {
	log := logger.FromCtx(ctx).With(
		zap.String("layer", "repository"),
		zap.String("method", "CreateOrder"),
		zap.String("order_id", o.ID),
		zap.String("tx_ref", o.TxRef),
		zap.Int("item_count", len(o.Items)),
	)

	log.Debug("starting create order transaction")

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		log.Error("failed to begin transaction", zap.Error(err))
		return err
	}

	committed := false
	defer func() {
		if !committed {
			if rbErr := tx.Rollback(); rbErr != nil {
				log.Error("failed to rollback transaction", zap.Error(rbErr))
			}
		}
	}()

	_, err = tx.ExecContext(ctx, `
		INSERT INTO orders (
			id, order_number, customer_id, restaurant_id,
			total, delivery_fee, status, delivery_address,
			phone_number, restaurant_name, tx_ref
		) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11)
	`,
		o.ID,
		o.OrderNumber,
		o.CustomerID,
		o.RestaurantID,
		o.Total,
		o.DeliveryFee,
		o.Status,
		o.DeliveryAddress,
		o.PhoneNumber,
		o.RestaurantName,
		o.TxRef,
	)
	if err != nil {
		log.Error("failed to insert order", zap.Error(err))
		return err
	}

	for i, item := range o.Items {
		_, err = tx.ExecContext(ctx, `
			INSERT INTO order_items (order_id, name, price, quantity)
			VALUES ($1,$2,$3,$4)
		`,
			o.ID,
			item.Name,
			item.Price,
			item.Quantity,
		)
		if err != nil {
			log.Error("failed to insert order item",
				zap.Int("item_index", i),
				zap.Error(err),
			)
			return err
		}
	}

	_, err = tx.ExecContext(ctx, `
		INSERT INTO order_status_history (
			order_id, from_status, to_status, actor_id, actor_role, note
		) VALUES ($1,$2,$3,$4,$5,$6)
	`,
		o.ID, o.Status, o.Status, o.CustomerID, RoleCustomer, "order created",
	)
	if err != nil {
		log.Error("failed to insert initial status history", zap.Error(err))
		return err
	}

	if err := tx.Commit(); err != nil {
		log.Error("failed to commit create order transaction", zap.Error(err))
		return err
	}

	committed = true
	log.Info("order created", zap.String("order_number", o.OrderNumber))

	return nil
}

func (r *repository) GetOrder(ctx context.Context, orderID string) (*Order, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT `+orderColumns+` FROM orders WHERE id = $1`, orderID)

	o, err := scanOrder(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrOrderNotFound
	}
	if err != nil {
		return nil, err
	}

	if err := r.loadItems(ctx, o); err != nil {
		return nil, err
	}
	if err := r.loadHistory(ctx, o); err != nil {
		return nil, err
	}

	return o, nil
}

func (r *repository) GetOrderByTxRef(ctx context.Context, txRef string) (*Order, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT `+orderColumns+` FROM orders WHERE tx_ref = $1`, txRef)

	o, err := scanOrder(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrOrderNotFound
	}
	if err != nil {
		return nil, err
	}

	if err := r.loadItems(ctx, o); err != nil {
		return nil, err
	}

	return o, nil
}

func (r *repository) loadItems(ctx context.Context, o *Order) error {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, order_id, name, price, quantity
		FROM order_items
		WHERE order_id = $1
		ORDER BY id
	`, o.ID)
	if err != nil {
		return err
	}
	defer rows.Close()

	for rows.Next() {
		var item OrderItem
		if err := rows.Scan(&item.ID, &item.OrderID, &item.Name, &item.Price, &item.Quantity); err != nil {
			return err
		}
		o.Items = append(o.Items, item)
	}

	return rows.Err()
}

func (r *repository) loadHistory(ctx context.Context, o *Order) error {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, order_id, from_status, to_status, actor_id, actor_role, note, created_at
		FROM order_status_history
		WHERE order_id = $1
		ORDER BY id
	`, o.ID)
	if err != nil {
		return err
	}
	defer rows.Close()

	for rows.Next() {
		var ch StatusChange
		if err := rows.Scan(
			&ch.ID,
			&ch.OrderID,
			&ch.FromStatus,
			&ch.ToStatus,
			&ch.ActorID,
			&ch.ActorRole,
			&ch.Note,
			&ch.CreatedAt,
		); err != nil {
			return err
		}
		o.History = append(o.History, ch)
	}

	return rows.Err()
}

func (r *repository) UpdateStatus(
	ctx context.Context,
	orderID string,
	from, to OrderStatus,
	change StatusChange,
	reason *string,
) error {

	log := logger.FromCtx(ctx).With(
		zap.String("layer", "repository"),
		zap.String("method", "UpdateStatus"),
		zap.String("order_id", orderID),
		zap.String("from", string(from)),
		zap.String("to", string(to)),
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
		    cancellation_reason = COALESCE($2, cancellation_reason),
		    updated_at = NOW()
		WHERE id = $3
		  AND status = $4
	`, to, reason, orderID, from)
	if err != nil {
		log.Error("failed to update order status", zap.Error(err))
		return err
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		// Either the order is gone or another actor moved it first.
		var exists bool
		err := tx.QueryRowContext(ctx,
			`SELECT EXISTS(SELECT 1 FROM orders WHERE id = $1)`, orderID,
		).Scan(&exists)
		if err != nil {
			return err
		}
		if !exists {
			return ErrOrderNotFound
		}
		log.Warn("status update lost to a concurrent transition")
		return ErrInvalidTransition
	}

	_, err = tx.ExecContext(ctx, `
		INSERT INTO order_status_history (
			order_id, from_status, to_status, actor_id, actor_role, note
		) VALUES ($1,$2,$3,$4,$5,$6)
	`,
		orderID, from, to, change.ActorID, change.ActorRole, change.Note,
	)
	if err != nil {
		log.Error("failed to insert status history", zap.Error(err))
		return err
	}

	if err := tx.Commit(); err != nil {
		log.Error("failed to commit status update", zap.Error(err))
		return err
	}

	committed = true
	log.Info("order status updated")

	return nil
}

func (r *repository) ListByRestaurant(
	ctx context.Context,
	restaurantID string,
	status *OrderStatus,
	limit, page *int32,
) ([]*Order, error) {

	where := []string{"restaurant_id = $1"}
	args := []any{restaurantID}

	if status != nil && *status != "" {
		where = append(where, fmt.Sprintf("status = $%d", len(args)+1))
		args = append(args, *status)
	}

	return r.list(ctx, where, args, limit, page)
}

func (r *repository) ListByCustomer(
	ctx context.Context,
	customerID string,
	limit, page *int32,
) ([]*Order, error) {

	return r.list(ctx, []string{"customer_id = $1"}, []any{customerID}, limit, page)
}

func (r *repository) list(
	ctx context.Context,
	where []string,
	args []any,
	limit, page *int32,
) ([]*Order, error) {

	finalLimit := int32(20)
	finalPage := int32(1)

	if limit != nil && *limit > 0 {
		finalLimit = *limit
	}
	if page != nil && *page > 0 {
		finalPage = *page
	}
	if finalLimit > 100 {
		finalLimit = 100
	}

	offset := (finalPage - 1) * finalLimit

	query := `SELECT ` + orderColumns + `
		FROM orders
		WHERE ` + strings.Join(where, " AND ") + `
		ORDER BY created_at DESC
		LIMIT $` + fmt.Sprint(len(args)+1) + ` OFFSET $` + fmt.Sprint(len(args)+2)

	args = append(args, finalLimit, offset)

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		logger.FromCtx(ctx).Error("failed to query orders", zap.Error(err))
		return nil, err
	}
	defer rows.Close()

	orders := make([]*Order, 0, finalLimit)
	for rows.Next() {
		o, err := scanOrder(rows)
		if err != nil {
			return nil, err
		}
		orders = append(orders, o)
	}

	return orders, rows.Err()
}
