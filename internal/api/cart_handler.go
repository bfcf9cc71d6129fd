package api

import (
	"net/http"

	"chopline-be/internal/cart"
)

type CartHandler struct {
	carts cart.Service
}

func NewCartHandler(carts cart.Service) *CartHandler {
	return &CartHandler{carts: carts}
}

// Get handles GET /cart.
func (h *CartHandler) Get(w http.ResponseWriter, r *http.Request) {
	actor, ok := requireActor(w, r)
	if !ok {
		return
	}

	items, err := h.carts.GetCart(r.Context(), actor.ID)
	if err != nil {
		writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, items)
}

type addItemRequest struct {
	ItemRef   string `json:"item_ref"`
	ItemName  string `json:"item_name"`
	UnitPrice int64  `json:"unit_price"`
	Quantity  int    `json:"quantity"`
}

// AddItem handles POST /cart/items.
func (h *CartHandler) AddItem(w http.ResponseWriter, r *http.Request) {
	actor, ok := requireActor(w, r)
	if !ok {
		return
	}

	var req addItemRequest
	if !decodeBody(w, r, &req) {
		return
	}

	item, err := h.carts.AddItem(r.Context(), cart.AddItemParams{
		CustomerID: actor.ID,
		ItemRef:    req.ItemRef,
		ItemName:   req.ItemName,
		UnitPrice:  req.UnitPrice,
		Quantity:   req.Quantity,
	})
	if err != nil {
		writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusCreated, item)
}

type updateQuantityRequest struct {
	Quantity int `json:"quantity"`
}

// UpdateItem handles PATCH /cart/items/{ref}.
func (h *CartHandler) UpdateItem(w http.ResponseWriter, r *http.Request) {
	actor, ok := requireActor(w, r)
	if !ok {
		return
	}

	var req updateQuantityRequest
	if !decodeBody(w, r, &req) {
		return
	}

	err := h.carts.UpdateQuantity(r.Context(), cart.UpdateQuantityParams{
		CustomerID: actor.ID,
		ItemRef:    r.PathValue("ref"),
		Quantity:   req.Quantity,
	})
	if err != nil {
		writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"result": "ok"})
}

// RemoveItem handles DELETE /cart/items/{ref}.
func (h *CartHandler) RemoveItem(w http.ResponseWriter, r *http.Request) {
	actor, ok := requireActor(w, r)
	if !ok {
		return
	}

	err := h.carts.RemoveItem(r.Context(), cart.RemoveItemParams{
		CustomerID: actor.ID,
		ItemRef:    r.PathValue("ref"),
	})
	if err != nil {
		writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"result": "ok"})
}
