package payment

import (
	"crypto/hmac"
	"crypto/sha512"
	"encoding/hex"
	"encoding/json"
)

// SignatureHeader carries Paystack's HMAC of the raw webhook body.
const SignatureHeader = "x-paystack-signature"

// EventChargeSuccess is the only webhook event the order flow acts on.
const EventChargeSuccess = "charge.success"

// ValidSignature checks the webhook body against the account secret key.
// Paystack signs the raw body with HMAC-SHA512, hex encoded.
func ValidSignature(secretKey string, body []byte, signature string) bool {
	if secretKey == "" || signature == "" {
		return false
	}
	mac := hmac.New(sha512.New, []byte(secretKey))
	mac.Write(body)
	expected := hex.EncodeToString(mac.Sum(nil))
	return hmac.Equal([]byte(expected), []byte(signature))
}

// Event is the subset of the webhook payload the order flow reads.
type Event struct {
	Event string `json:"event"`
	Data  struct {
		Reference   string `json:"reference"`
		Status      string `json:"status"`
		AmountMinor int64  `json:"amount"`
		Metadata    struct {
			OrderID string `json:"order_id"`
		} `json:"metadata"`
	} `json:"data"`
}

func ParseEvent(body []byte) (*Event, error) {
	var ev Event
	if err := json.Unmarshal(body, &ev); err != nil {
		return nil, err
	}
	return &ev, nil
}
