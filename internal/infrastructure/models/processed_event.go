package models

import "time"

// ProcessedEvent is the durable idempotency record. The primary key on the
// provider event ID is what makes duplicate webhook deliveries a no-op.
type ProcessedEvent struct {
	ExternalEventID string `gorm:"type:varchar(255);primaryKey"`
	ProcessedAt     time.Time
}

func (ProcessedEvent) TableName() string {
	return "processed_events"
}
