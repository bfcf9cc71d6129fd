package delivery

import "errors"

var (
	// ErrAlreadyClaimed means another driver won the claim race. Surfaced as
	// a soft notice: the losing client just drops the order from its offer
	// list.
	ErrAlreadyClaimed = errors.New("delivery already claimed")

	ErrDriverRequired = errors.New("driver id is required")
)
