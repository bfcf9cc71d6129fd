package webhook

import (
	"encoding/json"
	"io"
	"net/http"

	"chopline-be/internal/logger"
	"chopline-be/internal/payment"
	"chopline-be/internal/reconcile"

	"go.uber.org/zap"
)

// WebhookPayload is the JSON the payment provider sends on charge events.
type WebhookPayload struct {
	Event string `json:"event"`
	Data  struct {
		TxRef  string `json:"tx_ref"`
		Status string `json:"status"`
	} `json:"data"`
}

// Handler funnels provider callbacks into the same idempotent reconciliation
// flow the client-side poller uses, so duplicate webhook delivery is harmless.
type Handler struct {
	Gateway payment.Gateway
	Flow    *reconcile.Flow
}

func NewWebhookHandler(gateway payment.Gateway, flow *reconcile.Flow) *Handler {
	return &Handler{
		Gateway: gateway,
		Flow:    flow,
	}
}

func (h *Handler) WebhookHandler(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := logger.FromCtx(ctx)

	if err := h.Gateway.VerifyWebhookSignature(r); err != nil {
		log.Warn("webhook signature rejected", zap.Error(err))
		http.Error(w, "invalid signature", http.StatusUnauthorized)
		return
	}

	body, err := io.ReadAll(r.Body)
	if err != nil {
		http.Error(w, "failed to read body", http.StatusBadRequest)
		return
	}
	defer r.Body.Close()

	var payload WebhookPayload
	if err := json.Unmarshal(body, &payload); err != nil {
		http.Error(w, "invalid JSON payload", http.StatusBadRequest)
		return
	}

	log = log.With(
		zap.String("event", payload.Event),
		zap.String("tx_ref", payload.Data.TxRef),
	)

	if payload.Event != "charge.completed" || payload.Data.TxRef == "" {
		// Not an event we act on.
		w.WriteHeader(http.StatusOK)
		return
	}

	log.Info("payment webhook received")

	// The webhook body is a hint, never the verdict: reconciliation
	// re-verifies against the provider before touching the order.
	result, err := h.Flow.Reconcile(ctx, payload.Data.TxRef)
	if err != nil {
		log.Error("webhook reconciliation failed", zap.Error(err))
		// Ask the provider to redeliver; reconciliation is idempotent.
		http.Error(w, "reconciliation failed", http.StatusInternalServerError)
		return
	}

	log.Info("webhook reconciliation finished",
		zap.String("outcome", string(result.Outcome)),
	)

	w.WriteHeader(http.StatusOK)
}
