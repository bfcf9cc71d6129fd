package payment

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"math"
	"net/http"
	"net/url"
	"os"
	"time"

	"chopline-be/internal/logger"

	"go.uber.org/zap"
)

const flutterwaveBaseURL = "https://api.flutterwave.com/v3"

type flutterwaveGateway struct {
	secretKey   string
	secretHash  string
	redirectURL string
	httpClient  *http.Client
}

// ----------------- Constructor -----------------

func NewFlutterwaveGateway(secretKey string) Gateway {
	if secretKey == "" {
		logger.L().Warn("Flutterwave secret key is empty")
	}

	return &flutterwaveGateway{
		secretKey: secretKey,
		httpClient: &http.Client{
			Timeout: 15 * time.Second,
		},
		secretHash:  os.Getenv("FLW_SECRET_HASH"),
		redirectURL: os.Getenv("PAYMENT_REDIRECT_URL"),
	}
}

// ----------------- InitializePayment -----------------

func (f *flutterwaveGateway) InitializePayment(
	ctx context.Context,
	req CheckoutRequest,
) (*CheckoutSession, error) {

	log := logger.FromCtx(ctx).With(
		zap.String("tx_ref", req.TxRef),
		zap.Int64("amount", req.Amount),
		zap.String("currency", req.Currency),
	)

	body := map[string]interface{}{
		"tx_ref":       req.TxRef,
		"amount":       minorToMajor(req.Amount),
		"currency":     req.Currency,
		"redirect_url": f.redirectURL,
		"customer": map[string]interface{}{
			"email":       req.CustomerEmail,
			"phonenumber": req.CustomerPhone,
			"name":        req.CustomerName,
		},
		"customizations": map[string]interface{}{
			"title": req.Title,
		},
	}

	jsonBody, err := json.Marshal(body)
	if err != nil {
		log.Error("Failed to marshal payment request", zap.Error(err))
		return nil, err
	}

	httpReq, err := http.NewRequestWithContext(ctx, "POST",
		flutterwaveBaseURL+"/payments", bytes.NewBuffer(jsonBody))
	if err != nil {
		log.Error("Failed creating request", zap.Error(err))
		return nil, err
	}

	httpReq.Header.Add("Authorization", "Bearer "+f.secretKey)
	httpReq.Header.Add("Content-Type", "application/json")

	log.Info("Initializing payment with Flutterwave")

	resp, err := f.httpClient.Do(httpReq)
	if err != nil {
		log.Error("Flutterwave request failed", zap.Error(err))
		return nil, &VerificationError{Err: err}
	}
	defer resp.Body.Close()

	bodyBytes, err := io.ReadAll(resp.Body)
	if err != nil {
		log.Error("Failed to read response body", zap.Error(err))
		return nil, &VerificationError{Err: err}
	}

	if resp.StatusCode != http.StatusOK {
		log.Error("Flutterwave returned non-success status",
			zap.Int("status", resp.StatusCode),
			zap.ByteString("response", bodyBytes),
		)
		return nil, fmt.Errorf("flutterwave error: %s", string(bodyBytes))
	}

	var res struct {
		Status  string `json:"status"`
		Message string `json:"message"`
		Data    struct {
			Link string `json:"link"`
		} `json:"data"`
	}
	if err := json.Unmarshal(bodyBytes, &res); err != nil {
		log.Error("Failed decoding Flutterwave response", zap.Error(err))
		return nil, &VerificationError{Err: err}
	}

	if res.Status != "success" || res.Data.Link == "" {
		log.Error("Flutterwave rejected payment initialization",
			zap.String("provider_status", res.Status),
			zap.String("message", res.Message),
		)
		return nil, fmt.Errorf("flutterwave error: %s", res.Message)
	}

	log.Info("Payment initialized", zap.String("checkout_url", res.Data.Link))

	return &CheckoutSession{
		CheckoutURL: res.Data.Link,
		TxRef:       req.TxRef,
	}, nil
}

// ----------------- VerifyPayment -----------------

func (f *flutterwaveGateway) VerifyPayment(
	ctx context.Context,
	txRef string,
) (*VerifyResult, error) {

	log := logger.FromCtx(ctx).With(zap.String("tx_ref", txRef))

	endpoint := fmt.Sprintf(
		"%s/transactions/verify_by_reference?tx_ref=%s",
		flutterwaveBaseURL, url.QueryEscape(txRef),
	)

	req, err := http.NewRequestWithContext(ctx, "GET", endpoint, nil)
	if err != nil {
		log.Error("Failed building request", zap.Error(err))
		return nil, &VerificationError{Err: err}
	}

	req.Header.Add("Authorization", "Bearer "+f.secretKey)

	resp, err := f.httpClient.Do(req)
	if err != nil {
		log.Error("Request to Flutterwave failed", zap.Error(err))
		return nil, &VerificationError{Err: err}
	}
	defer resp.Body.Close()

	bodyBytes, err := io.ReadAll(resp.Body)
	if err != nil {
		log.Error("Failed to read response body", zap.Error(err))
		return nil, &VerificationError{Err: err}
	}

	// An unknown reference is a provider verdict, not a transport failure.
	if resp.StatusCode == http.StatusNotFound {
		log.Warn("Transaction reference not found at provider")
		return &VerifyResult{TxRef: txRef, Status: verifyStatusFailed}, nil
	}

	if resp.StatusCode != http.StatusOK {
		log.Error("Flutterwave returned error",
			zap.Int("http_status", resp.StatusCode),
			zap.ByteString("response", bodyBytes),
		)
		return nil, &VerificationError{
			Err: fmt.Errorf("flutterwave error: %s", string(bodyBytes)),
		}
	}

	var res struct {
		Status string `json:"status"`
		Data   struct {
			TxRef    string  `json:"tx_ref"`
			Status   string  `json:"status"`
			Amount   float64 `json:"amount"`
			Currency string  `json:"currency"`
		} `json:"data"`
	}
	if err := json.Unmarshal(bodyBytes, &res); err != nil {
		log.Error("Failed decoding verification response", zap.Error(err))
		return nil, &VerificationError{Err: err}
	}

	if res.Status != "success" {
		log.Warn("Provider reports transaction not found or failed",
			zap.String("provider_status", res.Status),
		)
		return &VerifyResult{TxRef: txRef, Status: verifyStatusFailed}, nil
	}

	status := res.Data.Status
	if status != verifyStatusSuccessful {
		status = verifyStatusFailed
	}

	log.Info("Payment verified",
		zap.String("provider_tx_status", res.Data.Status),
		zap.Float64("amount", res.Data.Amount),
	)

	return &VerifyResult{
		TxRef:    res.Data.TxRef,
		Status:   status,
		Amount:   majorToMinor(res.Data.Amount),
		Currency: res.Data.Currency,
	}, nil
}

// ----------------- Webhook signature -----------------

func (f *flutterwaveGateway) VerifyWebhookSignature(r *http.Request) error {
	sig := r.Header.Get("verif-hash")
	expected := f.secretHash

	if expected == "" {
		return nil // skip in dev
	}

	if sig != expected {
		return ErrInvalidSignature
	}
	return nil
}

// Flutterwave speaks major units; order records store integer minor units.

func minorToMajor(minor int64) float64 {
	return float64(minor) / 100
}

func majorToMinor(major float64) int64 {
	return int64(math.Round(major * 100))
}
