package models

import (
	"time"

	"github.com/google/uuid"
)

type Alert struct {
	ID              uuid.UUID `gorm:"type:uuid;primaryKey;default:uuid_generate_v4()"`
	Kind            string    `gorm:"type:varchar(50);not null;index"`
	ExternalEventID *string   `gorm:"type:varchar(255);index"`
	Amount          string    `gorm:"type:decimal(36,18);default:'0'"`
	Message         string    `gorm:"type:text;not null"`
	PrimaryError    *string   `gorm:"type:text"`
	FallbackError   *string   `gorm:"type:text"`
	Dispatched      bool      `gorm:"not null;default:false;index"`
	Acknowledged    bool      `gorm:"not null;default:false"`
	CreatedAt       time.Time
}
