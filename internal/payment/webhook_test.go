package payment

import (
	"crypto/hmac"
	"crypto/sha512"
	"encoding/hex"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sign(secret string, body []byte) string {
	mac := hmac.New(sha512.New, []byte(secret))
	mac.Write(body)
	return hex.EncodeToString(mac.Sum(nil))
}

func TestValidSignature(t *testing.T) {
	body := []byte(`{"event":"charge.success"}`)

	assert.True(t, ValidSignature("sk_test_123", body, sign("sk_test_123", body)))
	assert.False(t, ValidSignature("sk_test_123", body, sign("sk_other", body)), "signature from a different key")
	assert.False(t, ValidSignature("sk_test_123", []byte(`{"tampered":1}`), sign("sk_test_123", body)), "body altered after signing")
	assert.False(t, ValidSignature("sk_test_123", body, ""), "missing header")
	assert.False(t, ValidSignature("", body, sign("", body)), "no secret configured rejects everything")
}

func TestParseEvent(t *testing.T) {
	body := []byte(`{
		"event": "charge.success",
		"data": {
			"reference": "abc123",
			"status": "success",
			"amount": 1150000,
			"metadata": {"order_id": "order-1"}
		}
	}`)

	ev, err := ParseEvent(body)
	require.NoError(t, err)
	assert.Equal(t, EventChargeSuccess, ev.Event)
	assert.Equal(t, "abc123", ev.Data.Reference)
	assert.Equal(t, int64(1150000), ev.Data.AmountMinor)
	assert.Equal(t, "order-1", ev.Data.Metadata.OrderID)
}

func TestParseEventMalformed(t *testing.T) {
	_, err := ParseEvent([]byte(`{"event": truncated`))
	assert.Error(t, err)
}
