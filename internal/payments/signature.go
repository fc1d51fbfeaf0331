package payments

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
)

// VerifySignature checks the authenticity of a payment callback. The gateway
// signs `orderID|paymentID` with HMAC-SHA256 under the shared webhook secret
// and sends the hex digest alongside the callback. A mismatch is reported as
// false, never as an error; the caller must treat false as fatal and commit
// nothing from the request.
func VerifySignature(orderID, paymentID, provided, secret string) bool {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write([]byte(orderID + "|" + paymentID))
	expected := hex.EncodeToString(mac.Sum(nil))
	return hmac.Equal([]byte(expected), []byte(provided))
}
