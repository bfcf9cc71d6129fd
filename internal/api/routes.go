package api

import (
	"net/http"

	"chopline-be/internal/middleware"
	"chopline-be/internal/payment/webhook"
	"chopline-be/internal/realtime"
)

type Handlers struct {
	Orders     *OrderHandler
	Deliveries *DeliveryHandler
	Payments   *PaymentHandler
	Carts      *CartHandler
	Stats      *StatsHandler
	Webhook    *webhook.Handler
	Realtime   *realtime.WSHandler
}

// NewRouter wires the role-scoped actions onto a mux behind the middleware
// chain: request logging, then actor identity, then rate limiting (which
// keys on the actor when present).
func NewRouter(h Handlers) http.Handler {
	mux := http.NewServeMux()

	// customer
	mux.HandleFunc("POST /orders", h.Orders.Checkout)
	mux.HandleFunc("GET /orders", h.Orders.ListMine)
	mux.HandleFunc("GET /orders/{id}", h.Orders.GetOrder)
	mux.HandleFunc("GET /cart", h.Carts.Get)
	mux.HandleFunc("POST /cart/items", h.Carts.AddItem)
	mux.HandleFunc("PATCH /cart/items/{ref}", h.Carts.UpdateItem)
	mux.HandleFunc("DELETE /cart/items/{ref}", h.Carts.RemoveItem)

	// restaurant
	mux.HandleFunc("GET /restaurant/orders", h.Orders.ListRestaurant)
	mux.HandleFunc("PATCH /orders/{id}/status", h.Orders.UpdateStatus)
	mux.HandleFunc("POST /orders/{id}/cancel", h.Orders.Cancel)
	mux.HandleFunc("GET /stats/restaurant", h.Stats.Restaurant)

	// driver
	mux.HandleFunc("GET /deliveries/offers", h.Deliveries.Offers)
	mux.HandleFunc("GET /deliveries/active", h.Deliveries.Active)
	mux.HandleFunc("POST /deliveries/{id}/accept", h.Deliveries.Accept)
	mux.HandleFunc("POST /deliveries/{id}/complete", h.Deliveries.Complete)
	mux.HandleFunc("GET /stats/driver", h.Stats.Driver)

	// payment
	mux.HandleFunc("GET /payments/verify", h.Payments.Verify)
	mux.HandleFunc("POST /webhook/payment", h.Webhook.WebhookHandler)

	// realtime push
	mux.Handle("GET /ws/orders", h.Realtime)

	var handler http.Handler = mux
	handler = middleware.RateLimitMiddleware(handler)
	handler = middleware.AuthMiddleware(handler)
	handler = middleware.LoggingMiddleware(handler)

	return handler
}
