package payment

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"

	"jammal/internal/models"
)

// Verifier checks the signature the processor attaches to a completed payment.
// With an empty secret every payment is accepted (demo mode).
type Verifier struct {
	secret []byte
}

// NewVerifier creates a Verifier for the processor key secret.
func NewVerifier(secret string) *Verifier {
	return &Verifier{secret: []byte(secret)}
}

// DemoMode reports whether signatures are skipped.
func (v *Verifier) DemoMode() bool {
	return len(v.secret) == 0
}

// Sign returns hex(HMAC-SHA256(secret, orderRef + "|" + paymentRef)).
func (v *Verifier) Sign(orderRef, paymentRef string) string {
	mac := hmac.New(sha256.New, v.secret)
	mac.Write([]byte(orderRef + "|" + paymentRef))
	return hex.EncodeToString(mac.Sum(nil))
}

// Verify returns a SignatureMismatch error unless signature matches the
// expected digest exactly.
func (v *Verifier) Verify(orderRef, paymentRef, signature string) error {
	if v.DemoMode() {
		return nil
	}
	if v.Sign(orderRef, paymentRef) != signature {
		return models.NewAppError(models.KindSignatureMismatch, "Invalid signature")
	}
	return nil
}
