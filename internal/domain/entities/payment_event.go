package entities

import (
	"time"

	"github.com/shopspring/decimal"
)

// PaymentEvent represents a verified, parsed payment-completed event from the
// payment provider. It is created once by the webhook intake and never mutated;
// ExternalEventID is the provider-assigned idempotency key.
type PaymentEvent struct {
	ExternalEventID string          `json:"externalEventId"`
	SessionID       string          `json:"sessionId"`
	AmountGross     decimal.Decimal `json:"amountGross"`
	Currency        string          `json:"currency"`
	WalletAddress   string          `json:"walletAddress"`
	ReceivedAt      time.Time       `json:"receivedAt"`
}

// IntakeResult reports what the webhook intake did with a delivery.
type IntakeResult struct {
	ExternalEventID string `json:"externalEventId,omitempty"`
	Duplicate       bool   `json:"duplicate"`
	Ignored         bool   `json:"ignored"`
	EventType       string `json:"eventType,omitempty"`
}
