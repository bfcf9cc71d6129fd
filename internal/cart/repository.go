package cart

import (
	"context"
	"database/sql"
	"errors"

	"chopline-be/internal/logger"

	"go.uber.org/zap"
)

type Repository interface {
	GetCart(ctx context.Context, customerID string) ([]*CartItem, error)
	GetCartItem(ctx context.Context, customerID, itemRef string) (*CartItem, error)
	UpsertItem(ctx context.Context, params AddItemParams) (*CartItem, error)
	UpdateQuantity(ctx context.Context, params UpdateQuantityParams) error
	RemoveItem(ctx context.Context, params RemoveItemParams) error

	// ClearCart removes every line of the customer's cart. An already-empty
	// cart is not an error: reconciliation may clear the same cart twice.
	ClearCart(ctx context.Context, customerID string) error
}

type repository struct {
	db *sql.DB
}

func NewRepository(db *sql.DB) Repository {
	return &repository{db: db}
}

func (r *repository) GetCart(ctx context.Context, customerID string) ([]*CartItem, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, customer_id, item_ref, item_name, unit_price, quantity, created_at, updated_at
		FROM carts
		WHERE customer_id = $1
		ORDER BY created_at
	`, customerID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var items []*CartItem
	for rows.Next() {
		var it CartItem
		if err := rows.Scan(
			&it.ID,
			&it.CustomerID,
			&it.ItemRef,
			&it.ItemName,
			&it.UnitPrice,
			&it.Quantity,
			&it.CreatedAt,
			&it.UpdatedAt,
		); err != nil {
			return nil, err
		}
		items = append(items, &it)
	}

	return items, rows.Err()
}

func (r *repository) GetCartItem(ctx context.Context, customerID, itemRef string) (*CartItem, error) {
	var it CartItem
	err := r.db.QueryRowContext(ctx, `
		SELECT id, customer_id, item_ref, item_name, unit_price, quantity, created_at, updated_at
		FROM carts
		WHERE customer_id = $1 AND item_ref = $2
	`, customerID, itemRef).Scan(
		&it.ID,
		&it.CustomerID,
		&it.ItemRef,
		&it.ItemName,
		&it.UnitPrice,
		&it.Quantity,
		&it.CreatedAt,
		&it.UpdatedAt,
	)

	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	return &it, nil
}

func (r *repository) UpsertItem(ctx context.Context, params AddItemParams) (*CartItem, error) {
	log := logger.FromCtx(ctx).With(
		zap.String("layer", "repository"),
		zap.String("method", "UpsertItem"),
		zap.String("customer_id", params.CustomerID),
		zap.String("item_ref", params.ItemRef),
	)

	query := `
	INSERT INTO carts (customer_id, item_ref, item_name, unit_price, quantity)
	VALUES ($1, $2, $3, $4, $5)
	ON CONFLICT (customer_id, item_ref)
	DO UPDATE SET
		quantity = carts.quantity + EXCLUDED.quantity,
		updated_at = NOW()
	RETURNING id, customer_id, item_ref, item_name, unit_price, quantity, created_at, updated_at
	`

	var it CartItem
	err := r.db.QueryRowContext(ctx, query,
		params.CustomerID,
		params.ItemRef,
		params.ItemName,
		params.UnitPrice,
		params.Quantity,
	).Scan(
		&it.ID,
		&it.CustomerID,
		&it.ItemRef,
		&it.ItemName,
		&it.UnitPrice,
		&it.Quantity,
		&it.CreatedAt,
		&it.UpdatedAt,
	)
	if err != nil {
		log.Error("failed to upsert cart item", zap.Error(err))
		return nil, err
	}

	log.Debug("cart item upserted", zap.Int("quantity", it.Quantity))

	return &it, nil
}

func (r *repository) UpdateQuantity(ctx context.Context, params UpdateQuantityParams) error {
	res, err := r.db.ExecContext(ctx, `
		UPDATE carts
		SET quantity = $1, updated_at = NOW()
		WHERE customer_id = $2 AND item_ref = $3
	`, params.Quantity, params.CustomerID, params.ItemRef)
	if err != nil {
		return err
	}

	rowsAffected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if rowsAffected == 0 {
		return ErrCartItemNotFound
	}

	return nil
}

func (r *repository) RemoveItem(ctx context.Context, params RemoveItemParams) error {
	res, err := r.db.ExecContext(ctx, `
		DELETE FROM carts
		WHERE customer_id = $1 AND item_ref = $2
	`, params.CustomerID, params.ItemRef)
	if err != nil {
		return err
	}

	rowsAffected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if rowsAffected == 0 {
		return ErrCartItemNotFound
	}

	return nil
}

func (r *repository) ClearCart(ctx context.Context, customerID string) error {
	_, err := r.db.ExecContext(ctx,
		`DELETE FROM carts WHERE customer_id = $1`, customerID)
	return err
}
