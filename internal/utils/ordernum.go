package utils

import (
	"crypto/rand"
	"fmt"
	"math/big"
	"time"

	"github.com/google/uuid"
)

// GenerateOrderNumber returns a human-readable order number such as
// ORD-20260830-142233-0417.
func GenerateOrderNumber() string {
	now := time.Now().UTC()
	datePart := now.Format("20060102-150405")

	// 4-digit cryptographic random
	n, err := rand.Int(rand.Reader, big.NewInt(10000))
	if err != nil {
		// fallback: time-based entropy
		n = big.NewInt(now.UnixNano() % 10000)
	}

	return fmt.Sprintf("ORD-%s-%04d", datePart, n.Int64())
}

// GenerateTxRef returns the payment transaction reference attached to a
// checkout attempt. It doubles as the reconciliation idempotency key, so it
// must be globally unique.
func GenerateTxRef() string {
	return "CHP-" + uuid.NewString()
}
