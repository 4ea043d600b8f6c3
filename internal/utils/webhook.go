package utils

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
)

// SignPayload computes the hex HMAC-SHA256 of body under secret.  The same
// scheme the payment provider uses for webhook deliveries; also used by
// tests to forge valid signatures.
func SignPayload(secret string, body []byte) string {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write(body)
	return hex.EncodeToString(mac.Sum(nil))
}

// VerifySignature checks a webhook signature in constant time.  An
// unverifiable delivery must be rejected before any payment state is
// touched.
func VerifySignature(secret string, body []byte, signature string) bool {
	expected := SignPayload(secret, body)
	return hmac.Equal([]byte(expected), []byte(signature))
}
