package reconcile

import (
	"context"
	"errors"

	"chopline-be/internal/cart"
	"chopline-be/internal/logger"
	"chopline-be/internal/metrics"
	"chopline-be/internal/order"
	"chopline-be/internal/payment"

	"go.uber.org/zap"
)

type Outcome string

const (
	// OutcomeSuccess: the provider confirmed the payment and the order is
	// placed (or was already placed by an earlier run).
	OutcomeSuccess Outcome = "success"

	// OutcomeDeclined: the provider reported the payment as failed or
	// cancelled. The order stays pending; the customer retries checkout.
	OutcomeDeclined Outcome = "declined"

	// OutcomeVerifiedNoOrder: the provider confirmed a payment we have no
	// order for. Terminal from this flow's perspective; the caller directs
	// the customer to support.
	OutcomeVerifiedNoOrder Outcome = "verified-no-order"
)

type Result struct {
	Outcome Outcome
	Order   *order.Order
}

var systemActor = order.Actor{ID: "system", Role: order.RoleSystem}

// Flow turns a verified external payment into a placed order exactly once.
// tx_ref is the idempotency key: re-running the flow for a reference that
// already confirmed its order is a no-op success.
type Flow struct {
	gateway  payment.Gateway
	orders   order.Service
	carts    cart.Service
	counters *metrics.ReconcileCounters
}

func NewFlow(gateway payment.Gateway, orders order.Service, carts cart.Service) *Flow {
	return &Flow{
		gateway:  gateway,
		orders:   orders,
		carts:    carts,
		counters: &metrics.ReconcileCounters{},
	}
}

// Counters exposes the flow's outcome counters.
func (f *Flow) Counters() *metrics.ReconcileCounters {
	return f.counters
}

// Reconcile verifies tx_ref against the provider and, on success, transitions
// the matching pending order to placed and clears the owning customer's cart.
// A transport failure talking to the provider surfaces as
// *payment.VerificationError; it is safe to call again.
func (f *Flow) Reconcile(ctx context.Context, txRef string) (*Result, error) {
	log := logger.FromCtx(ctx).With(
		zap.String("layer", "reconcile"),
		zap.String("tx_ref", txRef),
	)

	f.counters.Attempts.Inc()
	timer := metrics.StartTimer()

	verdict, err := f.gateway.VerifyPayment(ctx, txRef)
	if err != nil {
		f.counters.Failed.Inc()
		log.Error("payment verification failed", zap.Error(err))
		return nil, err
	}

	if !verdict.Succeeded() {
		f.counters.Declined.Inc()
		log.Info("payment declined by provider")
		return &Result{Outcome: OutcomeDeclined}, nil
	}

	o, err := f.orders.GetOrderByTxRef(ctx, txRef)
	if errors.Is(err, order.ErrOrderNotFound) {
		f.counters.NoOrder.Inc()
		log.Error("payment verified but no matching order")
		return &Result{Outcome: OutcomeVerifiedNoOrder}, nil
	}
	if err != nil {
		f.counters.Failed.Inc()
		return nil, err
	}

	log = log.With(zap.String("order_id", o.ID))

	if o.Status == order.StatusPending {
		updated, err := f.orders.UpdateStatus(ctx, o.ID, order.StatusPlaced, systemActor, "payment confirmed")
		switch {
		case errors.Is(err, order.ErrInvalidTransition):
			// A concurrent reconciliation won the race. The money moved and
			// the order advanced, which is all this flow guarantees.
			log.Info("order already advanced by a concurrent reconciliation")
			if o, err = f.orders.GetOrderByTxRef(ctx, txRef); err != nil {
				f.counters.Failed.Inc()
				return nil, err
			}
		case err != nil:
			f.counters.Failed.Inc()
			log.Error("failed to place order", zap.Error(err))
			return nil, err
		default:
			o = updated
		}
	} else {
		// Retried reconciliation (page reload, duplicate webhook): the order
		// is already past pending, nothing to apply.
		log.Info("order already reconciled",
			zap.String("status", string(o.Status)),
		)
	}

	// Best-effort: the payment outcome stands regardless of cart state.
	if err := f.carts.ClearCart(ctx, o.CustomerID); err != nil {
		log.Warn("failed to clear cart after payment",
			zap.String("customer_id", o.CustomerID),
			zap.Error(err),
		)
	}

	f.counters.Succeeded.Inc()
	log.Info("payment reconciled",
		zap.Duration("duration", timer.Duration()),
	)

	return &Result{Outcome: OutcomeSuccess, Order: o}, nil
}
