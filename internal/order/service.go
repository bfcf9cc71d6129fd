package order

import (
	"context"
	"fmt"
	"strings"
	"time"

	"chopline-be/internal/logger"
	"chopline-be/internal/payment"
	"chopline-be/internal/utils"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

type CheckoutItemInput struct {
	Name     string
	Price    int64
	Quantity int
}

type CheckoutInput struct {
	CustomerID      string
	CustomerName    string
	CustomerEmail   string
	RestaurantID    string
	RestaurantName  string
	DeliveryAddress string
	PhoneNumber     string
	Items           []CheckoutItemInput
	DeliveryFee     int64
	Total           int64
}

type CheckoutResult struct {
	Order       *Order
	CheckoutURL string
}

// Service owns the non-driver side of the order lifecycle. Every transition
// is checked against the transition table and the acting party, then applied
// as a conditional update, so a stale caller fails instead of overwriting
// someone else's transition. Driver edges are the delivery matcher's alone:
// they bind driver_id in the same conditional write, which this generic path
// cannot do.
type Service interface {
	Checkout(ctx context.Context, input CheckoutInput) (*CheckoutResult, error)
	UpdateStatus(ctx context.Context, orderID string, to OrderStatus, actor Actor, note string) (*Order, error)
	CancelOrder(ctx context.Context, orderID, reason string, actor Actor) (*Order, error)
	GetOrderDetail(ctx context.Context, orderID string, actor Actor) (*Order, error)
	GetOrderByTxRef(ctx context.Context, txRef string) (*Order, error)
	ListRestaurantOrders(ctx context.Context, restaurantID string, status *OrderStatus, limit, page *int32) ([]*Order, error)
	ListCustomerOrders(ctx context.Context, customerID string, limit, page *int32) ([]*Order, error)
}

type service struct {
	repo        Repository
	paymentGate payment.Gateway
}

func NewService(repo Repository, payGate payment.Gateway) Service {
	return &service{
		repo:        repo,
		paymentGate: payGate,
	}
}

func (s *service) Checkout(ctx context.Context, input CheckoutInput) (*CheckoutResult, error) {
	log := logger.FromCtx(ctx).With(
		zap.String("layer", "service"),
		zap.String("method", "Checkout"),
		zap.String("customer_id", input.CustomerID),
		zap.String("restaurant_id", input.RestaurantID),
		zap.Int("item_count", len(input.Items)),
	)

	log.Info("checkout started")

	if len(input.Items) == 0 {
		return nil, ErrEmptyOrder
	}
	if input.DeliveryFee < 0 {
		return nil, ErrNegativeFee
	}

	items := make([]OrderItem, 0, len(input.Items))
	var itemsTotal int64

	for i, item := range input.Items {
		if item.Quantity <= 0 {
			log.Warn("invalid quantity", zap.Int("index", i))
			return nil, fmt.Errorf("item %q: quantity must be greater than zero", item.Name)
		}
		if item.Price < 0 {
			log.Warn("negative price", zap.Int("index", i))
			return nil, fmt.Errorf("item %q: price must not be negative", item.Name)
		}

		itemsTotal += item.Price * int64(item.Quantity)
		items = append(items, OrderItem{
			Name:     item.Name,
			Price:    item.Price,
			Quantity: item.Quantity,
		})
	}

	// The total is validated once here and never recomputed later.
	if input.Total != itemsTotal+input.DeliveryFee {
		log.Warn("order total mismatch",
			zap.Int64("claimed_total", input.Total),
			zap.Int64("items_total", itemsTotal),
			zap.Int64("delivery_fee", input.DeliveryFee),
		)
		return nil, ErrTotalMismatch
	}

	o := &Order{
		ID:              uuid.NewString(),
		OrderNumber:     utils.GenerateOrderNumber(),
		CustomerID:      input.CustomerID,
		RestaurantID:    input.RestaurantID,
		Items:           items,
		Total:           input.Total,
		DeliveryFee:     input.DeliveryFee,
		Status:          StatusPending,
		DeliveryAddress: input.DeliveryAddress,
		PhoneNumber:     input.PhoneNumber,
		RestaurantName:  input.RestaurantName,
		TxRef:           utils.GenerateTxRef(),
		CreatedAt:       time.Now(),
	}

	log = log.With(
		zap.String("order_id", o.ID),
		zap.String("tx_ref", o.TxRef),
	)

	if err := s.repo.CreateOrder(ctx, o); err != nil {
		log.Error("failed to persist order", zap.Error(err))
		return nil, err
	}

	session, err := s.paymentGate.InitializePayment(ctx, payment.CheckoutRequest{
		TxRef:         o.TxRef,
		Amount:        o.Total,
		Currency:      "NGN",
		CustomerEmail: input.CustomerEmail,
		CustomerPhone: input.PhoneNumber,
		CustomerName:  input.CustomerName,
		Title:         o.RestaurantName,
	})
	if err != nil {
		log.Error("failed to initialize payment", zap.Error(err))
		return nil, fmt.Errorf("failed to initialize payment: %w", err)
	}

	log.Info("checkout completed", zap.String("order_number", o.OrderNumber))

	return &CheckoutResult{
		Order:       o,
		CheckoutURL: session.CheckoutURL,
	}, nil
}

func (s *service) UpdateStatus(
	ctx context.Context,
	orderID string,
	to OrderStatus,
	actor Actor,
	note string,
) (*Order, error) {
	return s.updateStatus(ctx, orderID, to, actor, note, nil)
}

func (s *service) updateStatus(
	ctx context.Context,
	orderID string,
	to OrderStatus,
	actor Actor,
	note string,
	reason *string,
) (*Order, error) {

	log := logger.FromCtx(ctx).With(
		zap.String("layer", "service"),
		zap.String("method", "UpdateStatus"),
		zap.String("order_id", orderID),
		zap.String("to", string(to)),
		zap.String("actor_id", actor.ID),
		zap.String("actor_role", string(actor.Role)),
	)

	if !ValidStatus(to) {
		return nil, ErrInvalidTransition
	}

	o, err := s.repo.GetOrder(ctx, orderID)
	if err != nil {
		return nil, err
	}

	if !CanTransition(o.Status, to, actor.Role) {
		log.Warn("transition not permitted",
			zap.String("from", string(o.Status)),
		)
		return nil, ErrInvalidTransition
	}

	if !canApply(o, actor) {
		log.Warn("actor not bound to order",
			zap.String("restaurant_id", o.RestaurantID),
		)
		return nil, ErrUnauthorized
	}

	change := StatusChange{
		OrderID:    orderID,
		FromStatus: o.Status,
		ToStatus:   to,
		ActorID:    actor.ID,
		ActorRole:  actor.Role,
		Note:       note,
	}

	// Conditional on the status we just read: if another actor advanced the
	// order in between, the repository reports ErrInvalidTransition and the
	// caller must refresh.
	if err := s.repo.UpdateStatus(ctx, orderID, o.Status, to, change, reason); err != nil {
		return nil, err
	}

	updated, err := s.repo.GetOrder(ctx, orderID)
	if err != nil {
		return nil, err
	}

	log.Info("status transition applied", zap.String("from", string(o.Status)))

	return updated, nil
}

func (s *service) CancelOrder(
	ctx context.Context,
	orderID, reason string,
	actor Actor,
) (*Order, error) {

	reason = strings.TrimSpace(reason)
	if reason == "" {
		// Local validation, never reaches the store.
		return nil, ErrReasonRequired
	}

	return s.updateStatus(ctx, orderID, StatusCancelled, actor, "order cancelled: "+reason, &reason)
}

func (s *service) GetOrderDetail(ctx context.Context, orderID string, actor Actor) (*Order, error) {
	o, err := s.repo.GetOrder(ctx, orderID)
	if err != nil {
		return nil, err
	}

	if !canView(o, actor) {
		return nil, ErrUnauthorized
	}

	return o, nil
}

// canApply gates who may write a transition onto this particular order.
// Restaurants only act on their own orders. Driver edges carry a claim
// binding that only the delivery matcher's conditional writes enforce
// (driver_id IS NULL on pickup, driver_id match on completion), so the
// generic status update rejects drivers outright.
func canApply(o *Order, actor Actor) bool {
	switch actor.Role {
	case RoleSystem, RoleAdmin:
		return true
	case RoleRestaurant:
		return o.RestaurantID == actor.ID
	}
	return false
}

func canView(o *Order, actor Actor) bool {
	switch actor.Role {
	case RoleAdmin, RoleSystem:
		return true
	case RoleCustomer:
		return o.CustomerID == actor.ID
	case RoleRestaurant:
		return o.RestaurantID == actor.ID
	case RoleDriver:
		return o.DriverID != nil && *o.DriverID == actor.ID
	}
	return false
}

func (s *service) GetOrderByTxRef(ctx context.Context, txRef string) (*Order, error) {
	return s.repo.GetOrderByTxRef(ctx, txRef)
}

func (s *service) ListRestaurantOrders(
	ctx context.Context,
	restaurantID string,
	status *OrderStatus,
	limit, page *int32,
) ([]*Order, error) {
	return s.repo.ListByRestaurant(ctx, restaurantID, status, limit, page)
}

func (s *service) ListCustomerOrders(
	ctx context.Context,
	customerID string,
	limit, page *int32,
) ([]*Order, error) {
	return s.repo.ListByCustomer(ctx, customerID, limit, page)
}
