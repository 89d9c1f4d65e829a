package entities

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/volatiletech/null/v8"
)

// SettlementStatus represents settlement request status
type SettlementStatus string

const (
	SettlementStatusPending      SettlementStatus = "PENDING"
	SettlementStatusPrimaryOK    SettlementStatus = "PRIMARY_OK"
	SettlementStatusFallbackOK   SettlementStatus = "FALLBACK_OK"
	SettlementStatusFailedManual SettlementStatus = "FAILED_MANUAL"
)

// IsTerminal reports whether the status is a terminal state.
func (s SettlementStatus) IsTerminal() bool {
	switch s {
	case SettlementStatusPrimaryOK, SettlementStatusFallbackOK, SettlementStatusFailedManual:
		return true
	}
	return false
}

// SettlementRequest represents one settlement attempt sequence for a payment
// event. NetAmount is backed 1:1 by the settlement reserve; FeeAmount is split
// among the treasury recipients. Only the orchestrator mutates a request.
type SettlementRequest struct {
	ID              uuid.UUID        `json:"id"`
	ExternalEventID string           `json:"externalEventId"`
	SessionID       string           `json:"sessionId"`
	WalletAddress   string           `json:"walletAddress"`
	Currency        string           `json:"currency"`
	GrossAmount     decimal.Decimal  `json:"grossAmount"`
	NetAmount       decimal.Decimal  `json:"netAmount"`
	FeeAmount       decimal.Decimal  `json:"feeAmount"`
	Status          SettlementStatus `json:"status"`
	PrimaryTxHash   null.String      `json:"primaryTxHash,omitempty"`
	FallbackTxHash  null.String      `json:"fallbackTxHash,omitempty"`
	PrimaryError    null.String      `json:"primaryError,omitempty"`
	FallbackError   null.String      `json:"fallbackError,omitempty"`
	SettledAt       *time.Time       `json:"settledAt,omitempty"`
	CreatedAt       time.Time        `json:"createdAt"`
	UpdatedAt       time.Time        `json:"updatedAt"`
}

// SettlementResult is the orchestrator's report for one settle call.
type SettlementResult struct {
	RequestID       uuid.UUID        `json:"requestId"`
	ExternalEventID string           `json:"externalEventId"`
	Status          SettlementStatus `json:"status"`
	TxHash          string           `json:"txHash,omitempty"`
	FeeTransfers    []TransferResult `json:"feeTransfers,omitempty"`
	Elapsed         time.Duration    `json:"-"`
}

// TransferResult records the outcome of a single on-chain transfer or mint.
type TransferResult struct {
	RecipientID string          `json:"recipientId"`
	Address     string          `json:"address"`
	Amount      decimal.Decimal `json:"amount"`
	TxHash      string          `json:"txHash,omitempty"`
	Err         error           `json:"-"`
}

// Succeeded reports whether the transfer went through.
func (r TransferResult) Succeeded() bool {
	return r.Err == nil
}
