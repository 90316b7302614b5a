package webhooks

import (
	"context"
	"io"
	"net/http"
	"strings"

	"github.com/mitaxdev/litescripts/api/responses"
	tebexwebhook "github.com/mitaxdev/litescripts/internal/webhooks/tebex"
	pkgerrors "github.com/mitaxdev/litescripts/pkg/errors"
	"github.com/mitaxdev/litescripts/pkg/logger"
	"github.com/mitaxdev/litescripts/pkg/metrics"
)

// Tebex signs the raw delivery body and sends the hex digest in this header.
const signatureHeader = "X-Tebex-Signature"

type TebexWebhookService interface {
	HandleEvent(ctx context.Context, event tebexwebhook.Event) error
}

type signatureVerifier interface {
	Verify(ctx context.Context, payload []byte, signature string) error
}

type webhookGuard interface {
	CheckAndMark(ctx context.Context, eventID string) (bool, error)
	Delete(ctx context.Context, eventID string) error
}

// TebexWebhook receives payment notifications. The signature is checked over
// the raw body before anything is parsed; once a delivery is authenticated it
// is always acknowledged with 200 so the provider does not retry-storm us, and
// handler failures release the idempotency mark so the provider's own retry
// can reprocess the event.
func TebexWebhook(svc TebexWebhookService, verifier signatureVerifier, guard webhookGuard, logg *logger.Logger, pipeline *metrics.PipelineMetrics) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()

		if svc == nil {
			responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeInternal, "webhook service unavailable"))
			return
		}
		if verifier == nil {
			responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeInternal, "webhook verifier unavailable"))
			return
		}

		payload, err := io.ReadAll(r.Body)
		if err != nil {
			responses.WriteError(ctx, logg, w, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "read request body"))
			return
		}

		if err := verifier.Verify(ctx, payload, r.Header.Get(signatureHeader)); err != nil {
			pipeline.IncWebhookEvent("unverified", metrics.OutcomeRejected)
			responses.WriteError(ctx, logg, w, err)
			return
		}

		ack := func() {
			responses.WriteSuccess(w, map[string]bool{"received": true})
		}

		event, err := tebexwebhook.ParseEvent(payload)
		if err != nil {
			// authenticated but unusable payload: acknowledge so the provider
			// does not redeliver something we can never parse
			if logg != nil {
				logg.Error(ctx, "webhook payload rejected", err)
			}
			pipeline.IncWebhookEvent("unparseable", metrics.OutcomeRejected)
			ack()
			return
		}

		eventID := strings.TrimSpace(event.EventID())
		if eventID == "" {
			eventID = transactionKey(event)
		}

		if guard != nil && eventID != "" {
			alreadyProcessed, err := guard.CheckAndMark(ctx, eventID)
			if err != nil {
				responses.WriteError(ctx, logg, w, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "check idempotency"))
				return
			}
			if alreadyProcessed {
				pipeline.IncWebhookEvent(event.EventType(), metrics.OutcomeDuplicate)
				ack()
				return
			}
		}

		if err := svc.HandleEvent(ctx, event); err != nil {
			if guard != nil && eventID != "" {
				_ = guard.Delete(ctx, eventID)
			}
			if logg != nil {
				logg.Error(ctx, "webhook reconciliation failed", err)
			}
			ack()
			return
		}

		ack()
	}
}

func transactionKey(event tebexwebhook.Event) string {
	switch e := event.(type) {
	case tebexwebhook.PaymentCompleted:
		return e.TransactionID
	case tebexwebhook.PaymentRefunded:
		return "refund:" + e.TransactionID
	case tebexwebhook.PaymentDeclined:
		return "decline:" + e.TransactionID
	default:
		return ""
	}
}
