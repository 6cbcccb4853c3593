package payments

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
)

// VerifySignature checks the gateway's proof of payment. The signed payload
// is the exact string "<gatewayOrderID>|<gatewayPaymentID>", HMAC-SHA256
// keyed by the merchant secret and hex encoded. Comparison is constant
// time. Callers must treat a missing secret as a configuration error, not
// as an invalid signature.
func VerifySignature(gatewayOrderID, gatewayPaymentID, secret, signature string) bool {
	payload := gatewayOrderID + "|" + gatewayPaymentID

	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write([]byte(payload))
	expected := hex.EncodeToString(mac.Sum(nil))

	return hmac.Equal([]byte(expected), []byte(signature))
}
