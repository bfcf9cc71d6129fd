package order

import "errors"

var (
	// -- Lookup --
	ErrOrderNotFound = errors.New("order not found")

	// -- Lifecycle --
	ErrInvalidTransition = errors.New("invalid status transition")
	ErrReasonRequired    = errors.New("cancellation reason required")

	// -- Checkout validation --
	ErrEmptyOrder    = errors.New("order has no items")
	ErrTotalMismatch = errors.New("order total does not match items")
	ErrNegativeFee   = errors.New("delivery fee must not be negative")

	// -- Authorization --
	ErrUnauthorized = errors.New("unauthorized")
)
