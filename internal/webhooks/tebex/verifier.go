package tebexwebhook

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"strings"

	pkgerrors "github.com/mitaxdev/litescripts/pkg/errors"
	"github.com/mitaxdev/litescripts/pkg/logger"
)

// Verifier authenticates webhook deliveries with HMAC-SHA256 over the raw
// request body. An unset secret disables verification: the service keeps
// running in a degraded mode and every delivery is logged as unverified.
type Verifier struct {
	secret []byte
	logger *logger.Logger
}

// NewVerifier builds a verifier for the configured webhook secret.
func NewVerifier(secret string, logg *logger.Logger) *Verifier {
	return &Verifier{secret: []byte(strings.TrimSpace(secret)), logger: logg}
}

// Enabled reports whether a secret is configured.
func (v *Verifier) Enabled() bool {
	return len(v.secret) > 0
}

// Verify checks the signature header against the raw payload. It runs before
// any JSON parsing; rejected deliveries carry no diagnostic detail.
func (v *Verifier) Verify(ctx context.Context, payload []byte, signature string) error {
	if !v.Enabled() {
		if v.logger != nil {
			v.logger.Warn(ctx, "webhook secret not configured, accepting unverified delivery")
		}
		return nil
	}

	signature = strings.TrimSpace(signature)
	if signature == "" {
		return pkgerrors.New(pkgerrors.CodeForbidden, "invalid webhook signature")
	}

	mac := hmac.New(sha256.New, v.secret)
	mac.Write(payload)
	expected := hex.EncodeToString(mac.Sum(nil))
	if !hmac.Equal([]byte(expected), []byte(strings.ToLower(signature))) {
		return pkgerrors.New(pkgerrors.CodeForbidden, "invalid webhook signature")
	}
	return nil
}
