package payment

// CheckoutRequest is the order-draft view the gateway needs to open a hosted
// checkout page. Amount is in integer minor units.
type CheckoutRequest struct {
	TxRef         string
	Amount        int64
	Currency      string
	CustomerEmail string
	CustomerPhone string
	CustomerName  string
	Title         string
}

// CheckoutSession is the provider's answer to InitializePayment.
type CheckoutSession struct {
	CheckoutURL string
	TxRef       string
}

// VerifyResult is the provider's answer to VerifyPayment.
type VerifyResult struct {
	TxRef    string
	Status   string
	Amount   int64
	Currency string
}

const (
	verifyStatusSuccessful = "successful"
	verifyStatusFailed     = "failed"
)

// Succeeded reports whether the provider considers the payment settled.
func (v *VerifyResult) Succeeded() bool {
	return v.Status == verifyStatusSuccessful
}
