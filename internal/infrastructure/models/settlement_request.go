package models

import (
	"time"

	"github.com/google/uuid"
)

type SettlementRequest struct {
	ID              uuid.UUID `gorm:"type:uuid;primaryKey;default:uuid_generate_v4()"`
	ExternalEventID string    `gorm:"type:varchar(255);not null;uniqueIndex"`
	SessionID       string    `gorm:"type:varchar(255);not null;index"`
	WalletAddress   string    `gorm:"type:varchar(255);not null;index"`
	Currency        string    `gorm:"type:varchar(10);not null"`
	GrossAmount     string    `gorm:"type:decimal(36,18);not null"`
	NetAmount       string    `gorm:"type:decimal(36,18);not null"`
	FeeAmount       string    `gorm:"type:decimal(36,18);not null"`
	Status          string    `gorm:"type:varchar(50);not null;index"`
	PrimaryTxHash   *string   `gorm:"type:varchar(255)"`
	FallbackTxHash  *string   `gorm:"type:varchar(255)"`
	PrimaryError    *string   `gorm:"type:text"`
	FallbackError   *string   `gorm:"type:text"`
	SettledAt       *time.Time
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

type FeeTransfer struct {
	ID           uuid.UUID `gorm:"type:uuid;primaryKey;default:uuid_generate_v4()"`
	SettlementID uuid.UUID `gorm:"type:uuid;not null;index"`
	RecipientID  string    `gorm:"type:varchar(100);not null"`
	Address      string    `gorm:"type:varchar(255);not null"`
	Amount       string    `gorm:"type:decimal(36,18);not null"`
	Status       string    `gorm:"type:varchar(50);not null;index"`
	TxHash       *string   `gorm:"type:varchar(255)"`
	LastError    *string   `gorm:"type:text"`
	CreatedAt    time.Time
	UpdatedAt    time.Time

	Settlement SettlementRequest `gorm:"foreignKey:SettlementID"`
}
