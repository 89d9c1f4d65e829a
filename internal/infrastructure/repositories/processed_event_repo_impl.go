package repositories

import (
	"context"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
	"mountainshares.backend/internal/infrastructure/models"
)

// ProcessedEventRepositoryImpl implements ProcessedEventRepository
type ProcessedEventRepositoryImpl struct {
	db *gorm.DB
}

func NewProcessedEventRepository(db *gorm.DB) *ProcessedEventRepositoryImpl {
	return &ProcessedEventRepositoryImpl{db: db}
}

// MarkProcessed inserts the event id with ON CONFLICT DO NOTHING. RowsAffected
// tells us whether this call won the insert, which is the atomicity guarantee
// concurrent webhook deliveries rely on.
func (r *ProcessedEventRepositoryImpl) MarkProcessed(ctx context.Context, externalEventID string) (bool, error) {
	m := &models.ProcessedEvent{
		ExternalEventID: externalEventID,
		ProcessedAt:     time.Now(),
	}
	res := GetDB(ctx, r.db).WithContext(ctx).
		Clauses(clause.OnConflict{DoNothing: true}).
		Create(m)
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

func (r *ProcessedEventRepositoryImpl) IsProcessed(ctx context.Context, externalEventID string) (bool, error) {
	var count int64
	err := GetDB(ctx, r.db).WithContext(ctx).
		Model(&models.ProcessedEvent{}).
		Where("external_event_id = ?", externalEventID).
		Count(&count).Error
	if err != nil {
		return false, err
	}
	return count > 0, nil
}
