package utils

import "testing"

func TestVerifySignature(t *testing.T) {
	secret := "whsec_test"
	body := []byte(`{"type":"payment_succeeded","data":{"ticket_code":"CEFHJ"}}`)

	sig := SignPayload(secret, body)
	if !VerifySignature(secret, body, sig) {
		t.Fatal("valid signature rejected")
	}
	if VerifySignature(secret, body, sig[:len(sig)-2]+"00") {
		t.Error("tampered signature accepted")
	}
	if VerifySignature("whsec_other", body, sig) {
		t.Error("signature accepted under the wrong secret")
	}
	if VerifySignature(secret, append(body, '!'), sig) {
		t.Error("signature accepted for a modified body")
	}
	if VerifySignature(secret, body, "") {
		t.Error("empty signature accepted")
	}
}
