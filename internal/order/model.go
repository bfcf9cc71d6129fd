package order

import "time"

type OrderStatus string

const (
	StatusPending   OrderStatus = "PENDING"
	StatusPlaced    OrderStatus = "PLACED"
	StatusConfirmed OrderStatus = "CONFIRMED"
	StatusReady     OrderStatus = "READY"
	StatusPicked    OrderStatus = "PICKED"
	StatusDelivered OrderStatus = "DELIVERED"
	StatusCancelled OrderStatus = "CANCELLED"
)

type Role string

const (
	RoleSystem     Role = "system"
	RoleCustomer   Role = "customer"
	RoleRestaurant Role = "restaurant"
	RoleDriver     Role = "driver"
	RoleAdmin      Role = "admin"
)

// Actor is the authenticated identity driving a transition, as supplied by
// the auth layer.
type Actor struct {
	ID   string
	Role Role
}

// Order is the canonical order record. Address, phone and restaurant name are
// snapshots captured at creation time and never follow later profile edits.
// All money fields are integer minor units.
type Order struct {
	ID                 string
	OrderNumber        string
	CustomerID         string
	RestaurantID       string
	DriverID           *string
	DriverName         *string
	Items              []OrderItem
	Total              int64
	DeliveryFee        int64
	Status             OrderStatus
	DeliveryAddress    string
	PhoneNumber        string
	RestaurantName     string
	TxRef              string
	CancellationReason *string
	CreatedAt          time.Time
	UpdatedAt          time.Time
	History            []StatusChange
}

// OrderItem is an immutable snapshot of a menu item at checkout time.
type OrderItem struct {
	ID       int64
	OrderID  string
	Name     string
	Price    int64
	Quantity int
}

// StatusChange is one audit row of the order's status history.
type StatusChange struct {
	ID         int64
	OrderID    string
	FromStatus OrderStatus
	ToStatus   OrderStatus
	ActorID    string
	ActorRole  Role
	Note       string
	CreatedAt  time.Time
}

// ItemsTotal sums price x quantity over the item snapshot.
func (o *Order) ItemsTotal() int64 {
	var sum int64
	for _, it := range o.Items {
		sum += it.Price * int64(it.Quantity)
	}
	return sum
}
