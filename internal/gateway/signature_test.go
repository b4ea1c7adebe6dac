package gateway

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"testing"

	"github.com/stretchr/testify/assert"
)

func hexHMAC(secret string, payload []byte) string {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write(payload)
	return hex.EncodeToString(mac.Sum(nil))
}

func TestVerifyWebhookSignature(t *testing.T) {
	body := []byte(`{"event":"payment.captured"}`)
	sig := hexHMAC("whsec", body)

	assert.True(t, VerifyWebhookSignature(body, sig, "whsec"))
	assert.False(t, VerifyWebhookSignature(body, sig, "other"))
	assert.False(t, VerifyWebhookSignature([]byte(`{"event":"tampered"}`), sig, "whsec"))
	assert.False(t, VerifyWebhookSignature(body, "", "whsec"))
}

func TestVerifyWebhookSignatureCoversExactBytes(t *testing.T) {
	body := []byte(`{"event":"payment.captured","payload":{}}`)
	sig := hexHMAC("whsec", body)

	// Re-serialized JSON with different whitespace must not verify.
	reencoded := []byte(`{"event": "payment.captured", "payload": {}}`)
	assert.False(t, VerifyWebhookSignature(reencoded, sig, "whsec"))
}

func TestVerifyPaymentSignature(t *testing.T) {
	sig := hexHMAC("keysecret", []byte("order_123|pay_456"))

	assert.True(t, VerifyPaymentSignature("order_123", "pay_456", sig, "keysecret"))
	assert.False(t, VerifyPaymentSignature("order_123", "pay_999", sig, "keysecret"))
	assert.False(t, VerifyPaymentSignature("order_999", "pay_456", sig, "keysecret"))
	assert.False(t, VerifyPaymentSignature("order_123", "pay_456", sig, "wrong"))
}
