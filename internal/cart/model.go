package cart

import "time"

// CartItem is one line of a customer's cart: a menu-item reference with a
// quantity. Name and price ride along so checkout can snapshot them.
type CartItem struct {
	ID         string
	CustomerID string
	ItemRef    string
	ItemName   string
	UnitPrice  int64
	Quantity   int
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

type AddItemParams struct {
	CustomerID string
	ItemRef    string
	ItemName   string
	UnitPrice  int64
	Quantity   int
}

type UpdateQuantityParams struct {
	CustomerID string
	ItemRef    string
	Quantity   int
}

type RemoveItemParams struct {
	CustomerID string
	ItemRef    string
}
