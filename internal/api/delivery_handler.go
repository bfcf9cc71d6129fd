package api

import (
	"net/http"

	"chopline-be/internal/delivery"
)

type DeliveryHandler struct {
	matcher delivery.Service
}

func NewDeliveryHandler(matcher delivery.Service) *DeliveryHandler {
	return &DeliveryHandler{matcher: matcher}
}

// Offers handles GET /deliveries/offers: ready, unclaimed orders.
func (h *DeliveryHandler) Offers(w http.ResponseWriter, r *http.Request) {
	if _, ok := requireActor(w, r); !ok {
		return
	}

	offers, err := h.matcher.AvailableOffers(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, offers)
}

// Active handles GET /deliveries/active: the driver's accepted, undelivered orders.
func (h *DeliveryHandler) Active(w http.ResponseWriter, r *http.Request) {
	actor, ok := requireActor(w, r)
	if !ok {
		return
	}

	orders, err := h.matcher.ActiveDeliveries(r.Context(), actor.ID)
	if err != nil {
		writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, orders)
}

type acceptRequest struct {
	DriverName string `json:"driver_name"`
}

// Accept handles POST /deliveries/{id}/accept. Losing the claim race returns
// 409 already_claimed; the client treats it as "offer gone", not a failure.
func (h *DeliveryHandler) Accept(w http.ResponseWriter, r *http.Request) {
	actor, ok := requireActor(w, r)
	if !ok {
		return
	}

	var req acceptRequest
	if !decodeBody(w, r, &req) {
		return
	}

	o, err := h.matcher.AcceptDelivery(r.Context(), r.PathValue("id"), actor.ID, req.DriverName)
	if err != nil {
		writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, o)
}

// Complete handles POST /deliveries/{id}/complete.
func (h *DeliveryHandler) Complete(w http.ResponseWriter, r *http.Request) {
	actor, ok := requireActor(w, r)
	if !ok {
		return
	}

	o, err := h.matcher.CompleteDelivery(r.Context(), r.PathValue("id"), actor.ID)
	if err != nil {
		writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, o)
}
