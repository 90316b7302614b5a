package tebexwebhook

import (
	"encoding/json"
	"strings"

	"github.com/shopspring/decimal"

	pkgerrors "github.com/mitaxdev/litescripts/pkg/errors"
	"github.com/mitaxdev/litescripts/pkg/types"
)

// Tebex webhook event types handled by the reconciliation engine.
const (
	TypePaymentCompleted = "payment.completed"
	TypePaymentRefunded  = "payment.refunded"
	TypePaymentDeclined  = "payment.declined"
)

// Event is the closed set of notifications the engine dispatches on. Every
// delivery parses into exactly one of the variants below; new provider types
// surface as Unknown until a variant is added here.
type Event interface {
	EventID() string
	EventType() string
	sealed()
}

// ProductLine is one purchased package as reported by the provider.
type ProductLine struct {
	ID       string
	Name     string
	Price    decimal.Decimal
	Quantity int
}

// PaymentCompleted reports a finished transaction to be recorded in the ledger.
type PaymentCompleted struct {
	ID               string
	TransactionID    string
	CustomerEmail    string
	CustomerUsername string
	Products         []ProductLine
	Amount           decimal.Decimal
	Currency         string
	PaymentMethod    *string
	Raw              types.JSONMap
}

// PaymentRefunded reports a refund for a previously completed transaction.
type PaymentRefunded struct {
	ID            string
	TransactionID string
	Raw           types.JSONMap
}

// PaymentDeclined reports a failed payment attempt.
type PaymentDeclined struct {
	ID            string
	TransactionID string
	Raw           types.JSONMap
}

// Unknown wraps provider types the engine does not handle.
type Unknown struct {
	ID   string
	Type string
	Raw  types.JSONMap
}

func (e PaymentCompleted) EventID() string   { return e.ID }
func (e PaymentCompleted) EventType() string { return TypePaymentCompleted }
func (PaymentCompleted) sealed()             {}

func (e PaymentRefunded) EventID() string   { return e.ID }
func (e PaymentRefunded) EventType() string { return TypePaymentRefunded }
func (PaymentRefunded) sealed()             {}

func (e PaymentDeclined) EventID() string   { return e.ID }
func (e PaymentDeclined) EventType() string { return TypePaymentDeclined }
func (PaymentDeclined) sealed()             {}

func (e Unknown) EventID() string   { return e.ID }
func (e Unknown) EventType() string { return e.Type }
func (Unknown) sealed()             {}

// flexID tolerates the provider sending ids as either strings or numbers.
type flexID string

func (f *flexID) UnmarshalJSON(b []byte) error {
	var s string
	if err := json.Unmarshal(b, &s); err == nil {
		*f = flexID(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(b, &n); err != nil {
		return err
	}
	*f = flexID(n.String())
	return nil
}

type wireEnvelope struct {
	ID      flexID      `json:"id"`
	Type    string      `json:"type"`
	Subject wireSubject `json:"subject"`
}

type wireSubject struct {
	TransactionID string `json:"transaction_id"`
	Customer      struct {
		Email    string `json:"email"`
		Username string `json:"username"`
	} `json:"customer"`
	Products []struct {
		ID       flexID          `json:"id"`
		Name     string          `json:"name"`
		Price    decimal.Decimal `json:"price"`
		Quantity int             `json:"quantity"`
	} `json:"products"`
	Price struct {
		Amount   decimal.Decimal `json:"amount"`
		Currency string          `json:"currency"`
	} `json:"price"`
	PaymentMethod *string `json:"payment_method"`
}

// ParseEvent decodes a verified payload into one of the closed event variants.
func ParseEvent(payload []byte) (Event, error) {
	var envelope wireEnvelope
	if err := json.Unmarshal(payload, &envelope); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "decode webhook payload")
	}

	eventType := strings.ToLower(strings.TrimSpace(envelope.Type))
	if eventType == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "webhook type missing")
	}

	var raw types.JSONMap
	_ = json.Unmarshal(payload, &raw)

	id := string(envelope.ID)
	txID := strings.TrimSpace(envelope.Subject.TransactionID)

	switch eventType {
	case TypePaymentCompleted:
		if txID == "" {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "transaction id missing")
		}
		lines := make([]ProductLine, 0, len(envelope.Subject.Products))
		for _, p := range envelope.Subject.Products {
			lines = append(lines, ProductLine{
				ID:       string(p.ID),
				Name:     p.Name,
				Price:    p.Price,
				Quantity: p.Quantity,
			})
		}
		return PaymentCompleted{
			ID:               id,
			TransactionID:    txID,
			CustomerEmail:    strings.TrimSpace(envelope.Subject.Customer.Email),
			CustomerUsername: envelope.Subject.Customer.Username,
			Products:         lines,
			Amount:           envelope.Subject.Price.Amount,
			Currency:         envelope.Subject.Price.Currency,
			PaymentMethod:    envelope.Subject.PaymentMethod,
			Raw:              raw,
		}, nil
	case TypePaymentRefunded:
		if txID == "" {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "transaction id missing")
		}
		return PaymentRefunded{ID: id, TransactionID: txID, Raw: raw}, nil
	case TypePaymentDeclined:
		if txID == "" {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "transaction id missing")
		}
		return PaymentDeclined{ID: id, TransactionID: txID, Raw: raw}, nil
	default:
		return Unknown{ID: id, Type: eventType, Raw: raw}, nil
	}
}
