package payment

import "errors"

var ErrInvalidSignature = errors.New("invalid webhook signature")

// VerificationError wraps a transport-level failure (network, timeout,
// malformed provider response) talking to the payment provider. It is safe to
// retry: reconciliation is idempotent per tx_ref.
type VerificationError struct {
	Err error
}

func (e *VerificationError) Error() string {
	return "payment verification failed: " + e.Err.Error()
}

func (e *VerificationError) Unwrap() error {
	return e.Err
}

// IsVerificationError reports whether err is a transport-level verification
// failure rather than a provider verdict.
func IsVerificationError(err error) bool {
	var ve *VerificationError
	return errors.As(err, &ve)
}
