package utils

import (
	"bytes"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
	"time"
)

// Thin client for the hosted payment gateway used to sell bid packages.
// Requests are signed with HMAC-SHA256 over "<method>:<path>:<timestamp>:<body>"
// using PAYGATE_SECRET; the gateway echoes the scheme back on webhooks.

func getPaygateConfig() (baseURL, merchantID, secret, callbackURL string, err error) {
	baseURL = os.Getenv("PAYGATE_BASE_URL")
	merchantID = os.Getenv("PAYGATE_MERCHANT_ID")
	secret = os.Getenv("PAYGATE_SECRET")
	callbackURL = os.Getenv("PAYGATE_CALLBACK_URL")
	if baseURL == "" {
		baseURL = "https://api.paygate.example.com"
	}
	if merchantID == "" || secret == "" || callbackURL == "" {
		return "", "", "", "", fmt.Errorf("PAYGATE_MERCHANT_ID, PAYGATE_SECRET and PAYGATE_CALLBACK_URL are required")
	}
	return baseURL, merchantID, secret, callbackURL, nil
}

func paygateSignature(secret, method, path, timestamp string, body []byte) string {
	mac := hmac.New(sha256.New, []byte(secret))
	fmt.Fprintf(mac, "%s:%s:%s:", strings.ToUpper(method), path, timestamp)
	mac.Write(body)
	return hex.EncodeToString(mac.Sum(nil))
}

// CheckoutRequest describes a bid-package purchase sent to the gateway.
type CheckoutRequest struct {
	Reference   string  `json:"reference"`
	Amount      float64 `json:"amount"`
	Currency    string  `json:"currency"`
	Description string  `json:"description"`
	CallbackURL string  `json:"callback_url"`
}

// CheckoutResponse is the gateway's answer to a checkout request.
type CheckoutResponse struct {
	CheckoutID  string `json:"checkout_id"`
	CheckoutURL string `json:"checkout_url"`
	Status      string `json:"status"`
}

// CreateCheckout registers a pending purchase with the gateway and returns
// the hosted checkout URL the tasker is redirected to.
func CreateCheckout(reference string, amount float64, description string) (*CheckoutResponse, error) {
	baseURL, merchantID, secret, callbackURL, err := getPaygateConfig()
	if err != nil {
		return nil, err
	}

	payload := CheckoutRequest{
		Reference:   reference,
		Amount:      amount,
		Currency:    "KES",
		Description: description,
		CallbackURL: callbackURL,
	}
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}

	path := "/v1/checkouts"
	ts := time.Now().UTC().Format(time.RFC3339)
	req, err := http.NewRequest(http.MethodPost, baseURL+path, bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-Merchant-ID", merchantID)
	req.Header.Set("X-Timestamp", ts)
	req.Header.Set("X-Signature", paygateSignature(secret, http.MethodPost, path, ts, body))

	client := &http.Client{Timeout: 15 * time.Second}
	resp, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("paygate checkout request: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return nil, err
	}
	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusCreated {
		return nil, fmt.Errorf("paygate checkout failed: status %d: %s", resp.StatusCode, string(respBody))
	}

	var out CheckoutResponse
	if err := json.Unmarshal(respBody, &out); err != nil {
		return nil, fmt.Errorf("paygate checkout response: %w", err)
	}
	return &out, nil
}

// VerifyWebhookSignature checks the gateway's callback signature. Comparison
// is constant-time.
func VerifyWebhookSignature(r *http.Request, body []byte) bool {
	secret := os.Getenv("PAYGATE_SECRET")
	if secret == "" {
		return false
	}
	ts := r.Header.Get("X-Timestamp")
	got := r.Header.Get("X-Signature")
	if ts == "" || got == "" {
		return false
	}
	want := paygateSignature(secret, r.Method, r.URL.Path, ts, body)
	return hmac.Equal([]byte(want), []byte(got))
}
