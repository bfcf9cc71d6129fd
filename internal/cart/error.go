package cart

import "errors"

var (
	// -- Validation & Input --
	ErrCustomerRequired = errors.New("customer id is required")
	ErrItemRefRequired  = errors.New("item reference is required")
	ErrInvalidQuantity  = errors.New("invalid cart quantity")

	// -- Resource State --
	ErrCartItemNotFound = errors.New("cart item not found")
)
