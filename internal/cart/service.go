package cart

import (
	"context"

	"chopline-be/internal/logger"

	"go.uber.org/zap"
)

// Service defines the business logic for carts. The cart is owned exclusively
// by its customer; the one outside caller is payment reconciliation, which
// clears it after a confirmed payment.
type Service interface {
	AddItem(ctx context.Context, params AddItemParams) (*CartItem, error)
	GetCart(ctx context.Context, customerID string) ([]*CartItem, error)
	UpdateQuantity(ctx context.Context, params UpdateQuantityParams) error
	RemoveItem(ctx context.Context, params RemoveItemParams) error
	ClearCart(ctx context.Context, customerID string) error
}

type service struct {
	repo Repository
}

func NewService(repo Repository) Service {
	return &service{repo: repo}
}

func (s *service) AddItem(ctx context.Context, params AddItemParams) (*CartItem, error) {
	if params.CustomerID == "" {
		return nil, ErrCustomerRequired
	}
	if params.ItemRef == "" {
		return nil, ErrItemRefRequired
	}
	if params.Quantity <= 0 {
		return nil, ErrInvalidQuantity
	}

	return s.repo.UpsertItem(ctx, params)
}

func (s *service) GetCart(ctx context.Context, customerID string) ([]*CartItem, error) {
	if customerID == "" {
		return nil, ErrCustomerRequired
	}
	return s.repo.GetCart(ctx, customerID)
}

func (s *service) UpdateQuantity(ctx context.Context, params UpdateQuantityParams) error {
	if params.CustomerID == "" {
		return ErrCustomerRequired
	}
	if params.ItemRef == "" {
		return ErrItemRefRequired
	}

	if params.Quantity <= 0 {
		// Zero or negative quantity removes the line.
		return s.repo.RemoveItem(ctx, RemoveItemParams{
			CustomerID: params.CustomerID,
			ItemRef:    params.ItemRef,
		})
	}

	return s.repo.UpdateQuantity(ctx, params)
}

func (s *service) RemoveItem(ctx context.Context, params RemoveItemParams) error {
	if params.CustomerID == "" {
		return ErrCustomerRequired
	}
	if params.ItemRef == "" {
		return ErrItemRefRequired
	}
	return s.repo.RemoveItem(ctx, params)
}

func (s *service) ClearCart(ctx context.Context, customerID string) error {
	if customerID == "" {
		return ErrCustomerRequired
	}

	if err := s.repo.ClearCart(ctx, customerID); err != nil {
		logger.FromCtx(ctx).Error("failed to clear cart",
			zap.String("customer_id", customerID),
			zap.Error(err),
		)
		return err
	}

	return nil
}
