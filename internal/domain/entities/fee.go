package entities

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/volatiletech/null/v8"
)

// FeeRecipient is one configured treasury destination with its weight.
type FeeRecipient struct {
	RecipientID   string          `json:"recipientId"`
	Address       string          `json:"address"`
	WeightPercent decimal.Decimal `json:"weightPercent"`
}

// PlannedShare is a recipient with its computed share of a fee amount.
type PlannedShare struct {
	FeeRecipient
	ComputedAmount decimal.Decimal `json:"computedAmount"`
}

// FeeDistributionPlan is the deterministic split of one fee amount across the
// configured recipients. The computed amounts always sum to FeeAmount exactly;
// any rounding remainder sits with the last recipient.
type FeeDistributionPlan struct {
	FeeAmount decimal.Decimal `json:"feeAmount"`
	Shares    []PlannedShare  `json:"shares"`
}

// FeeTransferStatus represents the state of one persisted recipient transfer.
type FeeTransferStatus string

const (
	FeeTransferStatusConfirmed FeeTransferStatus = "CONFIRMED"
	FeeTransferStatusFailed    FeeTransferStatus = "FAILED"
	FeeTransferStatusRetried   FeeTransferStatus = "RETRIED"
)

// FeeTransfer is the audit row for a single recipient transfer. Failed rows
// stay queued until an operator retries them.
type FeeTransfer struct {
	ID           uuid.UUID         `json:"id"`
	SettlementID uuid.UUID         `json:"settlementId"`
	RecipientID  string            `json:"recipientId"`
	Address      string            `json:"address"`
	Amount       decimal.Decimal   `json:"amount"`
	Status       FeeTransferStatus `json:"status"`
	TxHash       null.String       `json:"txHash,omitempty"`
	LastError    null.String       `json:"lastError,omitempty"`
	CreatedAt    time.Time         `json:"createdAt"`
	UpdatedAt    time.Time         `json:"updatedAt"`
}

// PurchaseQuote is the pricing breakdown for a prospective token purchase.
type PurchaseQuote struct {
	Quantity      decimal.Decimal `json:"quantity"`
	TokenPrice    decimal.Decimal `json:"tokenPrice"`
	Subtotal      decimal.Decimal `json:"subtotal"`
	LoadingFee    decimal.Decimal `json:"loadingFee"`
	ProcessingFee decimal.Decimal `json:"processingFee"`
	RegionalFee   decimal.Decimal `json:"regionalFee"`
	Total         decimal.Decimal `json:"total"`
}
