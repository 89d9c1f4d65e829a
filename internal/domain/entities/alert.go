package entities

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/volatiletech/null/v8"
)

// AlertKind classifies operations alerts.
type AlertKind string

const (
	AlertKindSettlementFailed  AlertKind = "SETTLEMENT_FAILED"
	AlertKindLowSafetyStock    AlertKind = "LOW_SAFETY_STOCK"
	AlertKindFeeTransferFailed AlertKind = "FEE_TRANSFER_FAILED"
)

// Alert is an append-only operations record. Rows are written durably before
// any outbound notification is attempted; a dispatch failure never loses the
// row, it just stays undispatched for the next sweep.
type Alert struct {
	ID              uuid.UUID       `json:"id"`
	Kind            AlertKind       `json:"kind"`
	ExternalEventID null.String     `json:"externalEventId,omitempty"`
	Amount          decimal.Decimal `json:"amount"`
	Message         string          `json:"message"`
	PrimaryError    null.String     `json:"primaryError,omitempty"`
	FallbackError   null.String     `json:"fallbackError,omitempty"`
	Dispatched      bool            `json:"dispatched"`
	Acknowledged    bool            `json:"acknowledged"`
	CreatedAt       time.Time       `json:"createdAt"`
}
