package tebexwebhook

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"io"
	"testing"

	pkgerrors "github.com/mitaxdev/litescripts/pkg/errors"
	"github.com/mitaxdev/litescripts/pkg/logger"
)

func sign(secret string, payload []byte) string {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write(payload)
	return hex.EncodeToString(mac.Sum(nil))
}

func discardLogger() *logger.Logger {
	return logger.New(logger.Options{ServiceName: "test", Output: io.Discard})
}

func TestVerifyAcceptsValidSignature(t *testing.T) {
	verifier := NewVerifier("whsec", discardLogger())
	payload := []byte(`{"type":"payment.completed"}`)

	if err := verifier.Verify(context.Background(), payload, sign("whsec", payload)); err != nil {
		t.Fatalf("Verify: %v", err)
	}
}

func TestVerifyRejectsTamperedPayload(t *testing.T) {
	verifier := NewVerifier("whsec", discardLogger())
	payload := []byte(`{"type":"payment.completed"}`)
	signature := sign("whsec", payload)

	// flip one byte after signing
	tampered := append([]byte(nil), payload...)
	tampered[len(tampered)-2] ^= 0x01

	err := verifier.Verify(context.Background(), tampered, signature)
	typed := pkgerrors.As(err)
	if typed == nil || typed.Code() != pkgerrors.CodeForbidden {
		t.Fatalf("expected forbidden error, got %v", err)
	}
	if typed.Details() != nil {
		t.Fatal("signature failures must not leak diagnostic detail")
	}
}

func TestVerifyRejectsMissingSignature(t *testing.T) {
	verifier := NewVerifier("whsec", discardLogger())

	err := verifier.Verify(context.Background(), []byte(`{}`), "")
	typed := pkgerrors.As(err)
	if typed == nil || typed.Code() != pkgerrors.CodeForbidden {
		t.Fatalf("expected forbidden error, got %v", err)
	}
}

func TestVerifyWithoutSecretAcceptsEverything(t *testing.T) {
	verifier := NewVerifier("", discardLogger())
	if verifier.Enabled() {
		t.Fatal("verifier should report disabled without a secret")
	}
	if err := verifier.Verify(context.Background(), []byte(`{}`), "whatever"); err != nil {
		t.Fatalf("degraded mode must accept deliveries: %v", err)
	}
}
