package realtime

import "time"

// OrderEvent is the change notification emitted by the order_events trigger
// whenever an order row is inserted or its status/driver changes.
type OrderEvent struct {
	OrderID      string    `json:"order_id"`
	OrderNumber  string    `json:"order_number"`
	CustomerID   string    `json:"customer_id"`
	RestaurantID string    `json:"restaurant_id"`
	DriverID     *string   `json:"driver_id"`
	Status       string    `json:"status"`
	At           time.Time `json:"at"`
}

// Filter selects which events a subscription receives. Zero value matches
// everything.
type Filter struct {
	// OffersOnly restricts to the driver offer feed: ready, unclaimed orders.
	OffersOnly bool
	// RestaurantID restricts to one restaurant's order feed.
	RestaurantID string
	// DriverID restricts to orders claimed by one driver.
	DriverID string
	// CustomerID restricts to one customer's orders.
	CustomerID string
}

func (f Filter) matches(ev OrderEvent) bool {
	if f.OffersOnly && (ev.Status != "READY" || ev.DriverID != nil) {
		return false
	}
	if f.RestaurantID != "" && ev.RestaurantID != f.RestaurantID {
		return false
	}
	if f.DriverID != "" && (ev.DriverID == nil || *ev.DriverID != f.DriverID) {
		return false
	}
	if f.CustomerID != "" && ev.CustomerID != f.CustomerID {
		return false
	}
	return true
}
