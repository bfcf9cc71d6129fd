package payment

import (
	"context"
	"net/http"
)

// Gateway is the contract with the external payment provider. A provider
// answer (including "payment failed") comes back as a VerifyResult; a
// transport or timeout problem talking to the provider comes back as a
// *VerificationError so callers can tell the two apart.
type Gateway interface {
	InitializePayment(ctx context.Context, req CheckoutRequest) (*CheckoutSession, error)
	VerifyPayment(ctx context.Context, txRef string) (*VerifyResult, error)
	VerifyWebhookSignature(r *http.Request) error
}
