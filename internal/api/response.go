package api

import (
	"encoding/json"
	"errors"
	"net/http"

	"chopline-be/internal/cart"
	"chopline-be/internal/delivery"
	"chopline-be/internal/logger"
	"chopline-be/internal/order"
	"chopline-be/internal/payment"

	"go.uber.org/zap"
)

type errorBody struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

type envelope struct {
	Data  any        `json:"data,omitempty"`
	Error *errorBody `json:"error,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(envelope{Data: data})
}

// writeError maps the core's typed outcomes onto HTTP. Notfound/stale/claim
// results are per-operation outcomes, never 5xx.
func writeError(w http.ResponseWriter, r *http.Request, err error) {
	var status int
	var code string

	switch {
	case errors.Is(err, order.ErrOrderNotFound),
		errors.Is(err, cart.ErrCartItemNotFound):
		status, code = http.StatusNotFound, "not_found"

	case errors.Is(err, order.ErrInvalidTransition):
		// Caller's view of the order is stale; it must refresh.
		status, code = http.StatusConflict, "invalid_transition"

	case errors.Is(err, delivery.ErrAlreadyClaimed):
		// Soft notice: the client drops the order from its offer list.
		status, code = http.StatusConflict, "already_claimed"

	case errors.Is(err, order.ErrReasonRequired):
		status, code = http.StatusUnprocessableEntity, "reason_required"

	case payment.IsVerificationError(err):
		// Distinct from a declined payment: transient, safe to retry.
		status, code = http.StatusBadGateway, "verification_error"

	case errors.Is(err, order.ErrUnauthorized):
		status, code = http.StatusForbidden, "unauthorized"

	case errors.Is(err, order.ErrEmptyOrder),
		errors.Is(err, order.ErrTotalMismatch),
		errors.Is(err, order.ErrNegativeFee),
		errors.Is(err, delivery.ErrDriverRequired),
		errors.Is(err, cart.ErrCustomerRequired),
		errors.Is(err, cart.ErrItemRefRequired),
		errors.Is(err, cart.ErrInvalidQuantity):
		status, code = http.StatusBadRequest, "invalid_request"

	default:
		logger.FromCtx(r.Context()).Error("unhandled error", zap.Error(err))
		status, code = http.StatusInternalServerError, "internal_error"
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(envelope{
		Error: &errorBody{Code: code, Message: err.Error()},
	})
}

func decodeBody(w http.ResponseWriter, r *http.Request, dst any) bool {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusBadRequest)
		_ = json.NewEncoder(w).Encode(envelope{
			Error: &errorBody{Code: "invalid_json", Message: "invalid JSON payload"},
		})
		return false
	}
	return true
}
