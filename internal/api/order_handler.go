package api

import (
	"net/http"
	"strconv"

	"chopline-be/internal/order"
	"chopline-be/internal/utils"
)

type OrderHandler struct {
	orders order.Service
}

func NewOrderHandler(orders order.Service) *OrderHandler {
	return &OrderHandler{orders: orders}
}

type checkoutItem struct {
	Name     string `json:"name"`
	Price    int64  `json:"price"`
	Quantity int    `json:"quantity"`
}

type checkoutRequest struct {
	RestaurantID    string         `json:"restaurant_id"`
	RestaurantName  string         `json:"restaurant_name"`
	DeliveryAddress string         `json:"delivery_address"`
	PhoneNumber     string         `json:"phone_number"`
	CustomerName    string         `json:"customer_name"`
	Items           []checkoutItem `json:"items"`
	DeliveryFee     int64          `json:"delivery_fee"`
	Total           int64          `json:"total"`
}

type checkoutResponse struct {
	Order       *order.Order `json:"order"`
	CheckoutURL string       `json:"checkout_url"`
	TxRef       string       `json:"tx_ref"`
}

// Checkout handles POST /orders.
func (h *OrderHandler) Checkout(w http.ResponseWriter, r *http.Request) {
	actor, ok := requireActor(w, r)
	if !ok {
		return
	}

	var req checkoutRequest
	if !decodeBody(w, r, &req) {
		return
	}

	items := make([]order.CheckoutItemInput, 0, len(req.Items))
	for _, it := range req.Items {
		items = append(items, order.CheckoutItemInput{
			Name:     it.Name,
			Price:    it.Price,
			Quantity: it.Quantity,
		})
	}

	result, err := h.orders.Checkout(r.Context(), order.CheckoutInput{
		CustomerID:      actor.ID,
		CustomerName:    req.CustomerName,
		CustomerEmail:   utils.GetActorEmailFromContext(r.Context()),
		RestaurantID:    req.RestaurantID,
		RestaurantName:  req.RestaurantName,
		DeliveryAddress: req.DeliveryAddress,
		PhoneNumber:     req.PhoneNumber,
		Items:           items,
		DeliveryFee:     req.DeliveryFee,
		Total:           req.Total,
	})
	if err != nil {
		writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusCreated, checkoutResponse{
		Order:       result.Order,
		CheckoutURL: result.CheckoutURL,
		TxRef:       result.Order.TxRef,
	})
}

// GetOrder handles GET /orders/{id}.
func (h *OrderHandler) GetOrder(w http.ResponseWriter, r *http.Request) {
	actor, ok := requireActor(w, r)
	if !ok {
		return
	}

	o, err := h.orders.GetOrderDetail(r.Context(), r.PathValue("id"), actor)
	if err != nil {
		writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, o)
}

type updateStatusRequest struct {
	Status string `json:"status"`
	Note   string `json:"note"`
}

// UpdateStatus handles PATCH /orders/{id}/status.
func (h *OrderHandler) UpdateStatus(w http.ResponseWriter, r *http.Request) {
	actor, ok := requireActor(w, r)
	if !ok {
		return
	}

	var req updateStatusRequest
	if !decodeBody(w, r, &req) {
		return
	}

	o, err := h.orders.UpdateStatus(
		r.Context(),
		r.PathValue("id"),
		order.OrderStatus(req.Status),
		actor,
		req.Note,
	)
	if err != nil {
		writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, o)
}

type cancelRequest struct {
	Reason string `json:"reason"`
}

// Cancel handles POST /orders/{id}/cancel.
func (h *OrderHandler) Cancel(w http.ResponseWriter, r *http.Request) {
	actor, ok := requireActor(w, r)
	if !ok {
		return
	}

	var req cancelRequest
	if !decodeBody(w, r, &req) {
		return
	}

	o, err := h.orders.CancelOrder(r.Context(), r.PathValue("id"), req.Reason, actor)
	if err != nil {
		writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, o)
}

// ListMine handles GET /orders (the customer's own history).
func (h *OrderHandler) ListMine(w http.ResponseWriter, r *http.Request) {
	actor, ok := requireActor(w, r)
	if !ok {
		return
	}

	limit, page := pagination(r)

	orders, err := h.orders.ListCustomerOrders(r.Context(), actor.ID, limit, page)
	if err != nil {
		writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, orders)
}

// ListRestaurant handles GET /restaurant/orders with an optional status filter.
func (h *OrderHandler) ListRestaurant(w http.ResponseWriter, r *http.Request) {
	actor, ok := requireActor(w, r)
	if !ok {
		return
	}

	var status *order.OrderStatus
	if s := r.URL.Query().Get("status"); s != "" {
		st := order.OrderStatus(s)
		status = &st
	}

	limit, page := pagination(r)

	orders, err := h.orders.ListRestaurantOrders(r.Context(), actor.ID, status, limit, page)
	if err != nil {
		writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, orders)
}

func pagination(r *http.Request) (*int32, *int32) {
	var limit, page *int32
	if v, err := strconv.ParseInt(r.URL.Query().Get("limit"), 10, 32); err == nil {
		l := int32(v)
		limit = &l
	}
	if v, err := strconv.ParseInt(r.URL.Query().Get("page"), 10, 32); err == nil {
		p := int32(v)
		page = &p
	}
	return limit, page
}
