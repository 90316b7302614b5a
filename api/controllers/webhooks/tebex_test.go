package webhooks

import (
	"bytes"
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	tebexwebhook "github.com/mitaxdev/litescripts/internal/webhooks/tebex"
	pkgerrors "github.com/mitaxdev/litescripts/pkg/errors"
	"github.com/mitaxdev/litescripts/pkg/logger"
	"github.com/rs/zerolog"
)

const testSecret = "whsec-test"

func discardLogger() *logger.Logger {
	return logger.New(logger.Options{ServiceName: "test", Level: zerolog.Disabled, Output: io.Discard})
}

type fakeWebhookService struct {
	events []tebexwebhook.Event
	err    error
}

func (f *fakeWebhookService) HandleEvent(_ context.Context, event tebexwebhook.Event) error {
	f.events = append(f.events, event)
	return f.err
}

type fakeGuard struct {
	marked  map[string]bool
	deleted []string
}

func newFakeGuard() *fakeGuard {
	return &fakeGuard{marked: map[string]bool{}}
}

func (f *fakeGuard) CheckAndMark(_ context.Context, eventID string) (bool, error) {
	if f.marked[eventID] {
		return true, nil
	}
	f.marked[eventID] = true
	return false, nil
}

func (f *fakeGuard) Delete(_ context.Context, eventID string) error {
	f.deleted = append(f.deleted, eventID)
	delete(f.marked, eventID)
	return nil
}

func sign(payload []byte) string {
	mac := hmac.New(sha256.New, []byte(testSecret))
	mac.Write(payload)
	return hex.EncodeToString(mac.Sum(nil))
}

func completedPayload() []byte {
	return []byte(`{
		"id": "evt-1",
		"type": "payment.completed",
		"subject": {
			"transaction_id": "tbx-100",
			"customer": {"email": "buyer@example.com", "username": "buyer"},
			"products": [{"id": 6479302, "name": "Starter Pack", "price": "9.99", "quantity": 1}],
			"price": {"amount": "9.99", "currency": "USD"}
		}
	}`)
}

func postWebhook(handler http.HandlerFunc, payload []byte, signature string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, "/api/v1/webhooks/tebex", bytes.NewReader(payload))
	if signature != "" {
		req.Header.Set("X-Tebex-Signature", signature)
	}
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	return rec
}

func TestTebexWebhookProcessesSignedDelivery(t *testing.T) {
	svc := &fakeWebhookService{}
	guard := newFakeGuard()
	verifier := tebexwebhook.NewVerifier(testSecret, discardLogger())
	handler := TebexWebhook(svc, verifier, guard, discardLogger(), nil)

	payload := completedPayload()
	rec := postWebhook(handler, payload, sign(payload))

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	if len(svc.events) != 1 {
		t.Fatalf("expected 1 handled event, got %d", len(svc.events))
	}
	completed, ok := svc.events[0].(tebexwebhook.PaymentCompleted)
	if !ok {
		t.Fatalf("expected PaymentCompleted, got %T", svc.events[0])
	}
	if completed.TransactionID != "tbx-100" {
		t.Fatalf("unexpected transaction id %q", completed.TransactionID)
	}

	var body struct {
		Data map[string]bool `json:"data"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode ack: %v", err)
	}
	if !body.Data["received"] {
		t.Fatalf("expected received ack, got %s", rec.Body.String())
	}
}

func TestTebexWebhookRejectsTamperedSignature(t *testing.T) {
	svc := &fakeWebhookService{}
	verifier := tebexwebhook.NewVerifier(testSecret, discardLogger())
	handler := TebexWebhook(svc, verifier, newFakeGuard(), discardLogger(), nil)

	payload := completedPayload()
	signature := []byte(sign(payload))
	if signature[0] == 'a' {
		signature[0] = 'b'
	} else {
		signature[0] = 'a'
	}

	rec := postWebhook(handler, payload, string(signature))
	if rec.Code != http.StatusForbidden {
		t.Fatalf("expected 403, got %d", rec.Code)
	}
	if len(svc.events) != 0 {
		t.Fatalf("tampered delivery must not reach the handler")
	}
}

func TestTebexWebhookReadsProviderSignatureHeader(t *testing.T) {
	svc := &fakeWebhookService{}
	verifier := tebexwebhook.NewVerifier(testSecret, discardLogger())
	handler := TebexWebhook(svc, verifier, newFakeGuard(), discardLogger(), nil)

	// a valid digest under any other header name is a missing signature
	payload := completedPayload()
	req := httptest.NewRequest(http.MethodPost, "/api/v1/webhooks/tebex", bytes.NewReader(payload))
	req.Header.Set("X-Signature", sign(payload))
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusForbidden {
		t.Fatalf("expected 403 for digest outside X-Tebex-Signature, got %d", rec.Code)
	}
	if len(svc.events) != 0 {
		t.Fatalf("delivery must not reach the handler")
	}
}

func TestTebexWebhookRejectsMissingSignature(t *testing.T) {
	svc := &fakeWebhookService{}
	verifier := tebexwebhook.NewVerifier(testSecret, discardLogger())
	handler := TebexWebhook(svc, verifier, newFakeGuard(), discardLogger(), nil)

	rec := postWebhook(handler, completedPayload(), "")
	if rec.Code != http.StatusForbidden {
		t.Fatalf("expected 403, got %d", rec.Code)
	}
	if len(svc.events) != 0 {
		t.Fatalf("unsigned delivery must not reach the handler")
	}
}

func TestTebexWebhookAcksUnparseablePayloadAfterVerification(t *testing.T) {
	svc := &fakeWebhookService{}
	verifier := tebexwebhook.NewVerifier(testSecret, discardLogger())
	handler := TebexWebhook(svc, verifier, newFakeGuard(), discardLogger(), nil)

	payload := []byte(`{"garbage":`)
	rec := postWebhook(handler, payload, sign(payload))
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200 ack for authenticated junk, got %d", rec.Code)
	}
	if len(svc.events) != 0 {
		t.Fatalf("unparseable payload must not reach the handler")
	}
}

func TestTebexWebhookDeduplicatesRedelivery(t *testing.T) {
	svc := &fakeWebhookService{}
	guard := newFakeGuard()
	verifier := tebexwebhook.NewVerifier(testSecret, discardLogger())
	handler := TebexWebhook(svc, verifier, guard, discardLogger(), nil)

	payload := completedPayload()
	signature := sign(payload)

	first := postWebhook(handler, payload, signature)
	second := postWebhook(handler, payload, signature)

	if first.Code != http.StatusOK || second.Code != http.StatusOK {
		t.Fatalf("expected both deliveries acked, got %d and %d", first.Code, second.Code)
	}
	if len(svc.events) != 1 {
		t.Fatalf("expected duplicate delivery skipped, handled %d events", len(svc.events))
	}
}

func TestTebexWebhookReleasesGuardOnHandlerFailure(t *testing.T) {
	svc := &fakeWebhookService{err: pkgerrors.New(pkgerrors.CodeDependency, "database unavailable")}
	guard := newFakeGuard()
	verifier := tebexwebhook.NewVerifier(testSecret, discardLogger())
	handler := TebexWebhook(svc, verifier, guard, discardLogger(), nil)

	payload := completedPayload()
	rec := postWebhook(handler, payload, sign(payload))

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200 ack even on handler failure, got %d", rec.Code)
	}
	if len(guard.deleted) != 1 {
		t.Fatalf("expected idempotency mark released, deleted=%v", guard.deleted)
	}

	// the provider's retry should now reach the handler again
	svc.err = nil
	_ = postWebhook(handler, payload, sign(payload))
	if len(svc.events) != 2 {
		t.Fatalf("expected retry to be reprocessed, handled %d events", len(svc.events))
	}
}

func TestTebexWebhookAcceptsUnverifiedWhenSecretUnset(t *testing.T) {
	svc := &fakeWebhookService{}
	verifier := tebexwebhook.NewVerifier("", discardLogger())
	handler := TebexWebhook(svc, verifier, newFakeGuard(), discardLogger(), nil)

	rec := postWebhook(handler, completedPayload(), "")
	if rec.Code != http.StatusOK {
		t.Fatalf("expected degraded mode to accept delivery, got %d", rec.Code)
	}
	if len(svc.events) != 1 {
		t.Fatalf("expected event handled in degraded mode")
	}
}
