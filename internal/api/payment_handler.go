package api

import (
	"net/http"

	"chopline-be/internal/order"
	"chopline-be/internal/reconcile"
)

type PaymentHandler struct {
	flow *reconcile.Flow
}

func NewPaymentHandler(flow *reconcile.Flow) *PaymentHandler {
	return &PaymentHandler{flow: flow}
}

type verifyResponse struct {
	Status  string       `json:"status"`
	Order   *order.Order `json:"order,omitempty"`
	Message string       `json:"message,omitempty"`
}

// Verify handles GET /payments/verify?tx_ref=... — the client-side poll after
// returning from the payment provider. Safe to call repeatedly for the same
// tx_ref.
func (h *PaymentHandler) Verify(w http.ResponseWriter, r *http.Request) {
	if _, ok := requireActor(w, r); !ok {
		return
	}

	txRef := r.URL.Query().Get("tx_ref")
	if txRef == "" {
		writeJSON(w, http.StatusBadRequest, verifyResponse{
			Status:  "error",
			Message: "tx_ref is required",
		})
		return
	}

	result, err := h.flow.Reconcile(r.Context(), txRef)
	if err != nil {
		// Transport trouble talking to the provider: distinct from a
		// declined payment, and retryable.
		writeError(w, r, err)
		return
	}

	switch result.Outcome {
	case reconcile.OutcomeSuccess:
		writeJSON(w, http.StatusOK, verifyResponse{
			Status: "success",
			Order:  result.Order,
		})
	case reconcile.OutcomeDeclined:
		writeJSON(w, http.StatusOK, verifyResponse{
			Status:  "failed",
			Message: "payment was not completed, please retry checkout",
		})
	case reconcile.OutcomeVerifiedNoOrder:
		writeJSON(w, http.StatusOK, verifyResponse{
			Status:  "verified-no-order",
			Message: "payment received but no matching order was found, please contact support",
		})
	}
}
