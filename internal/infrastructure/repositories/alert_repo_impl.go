package repositories

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/volatiletech/null/v8"
	"gorm.io/gorm"
	"mountainshares.backend/internal/domain/entities"
	domainerrors "mountainshares.backend/internal/domain/errors"
	"mountainshares.backend/internal/infrastructure/models"
)

// AlertRepositoryImpl implements AlertRepository
type AlertRepositoryImpl struct {
	db *gorm.DB
}

func NewAlertRepository(db *gorm.DB) *AlertRepositoryImpl {
	return &AlertRepositoryImpl{db: db}
}

func (r *AlertRepositoryImpl) Create(ctx context.Context, alert *entities.Alert) error {
	m := &models.Alert{
		ID:              alert.ID,
		Kind:            string(alert.Kind),
		ExternalEventID: alert.ExternalEventID.Ptr(),
		Amount:          alert.Amount.String(),
		Message:         alert.Message,
		PrimaryError:    alert.PrimaryError.Ptr(),
		FallbackError:   alert.FallbackError.Ptr(),
		Dispatched:      alert.Dispatched,
		Acknowledged:    alert.Acknowledged,
		CreatedAt:       time.Now(),
	}
	if err := GetDB(ctx, r.db).WithContext(ctx).Create(m).Error; err != nil {
		return err
	}
	alert.CreatedAt = m.CreatedAt
	return nil
}

func (r *AlertRepositoryImpl) GetByID(ctx context.Context, id uuid.UUID) (*entities.Alert, error) {
	var m models.Alert
	if err := GetDB(ctx, r.db).WithContext(ctx).Where("id = ?", id).First(&m).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domainerrors.ErrNotFound
		}
		return nil, err
	}
	return alertToEntity(&m)
}

func (r *AlertRepositoryImpl) ListUndispatched(ctx context.Context, limit int) ([]*entities.Alert, error) {
	var ms []models.Alert
	if err := GetDB(ctx, r.db).WithContext(ctx).
		Where("dispatched = ?", false).
		Order("created_at ASC").
		Limit(limit).
		Find(&ms).Error; err != nil {
		return nil, err
	}
	return alertsToEntities(ms)
}

func (r *AlertRepositoryImpl) List(ctx context.Context, limit, offset int) ([]*entities.Alert, int64, error) {
	db := GetDB(ctx, r.db).WithContext(ctx)

	var total int64
	if err := db.Model(&models.Alert{}).Count(&total).Error; err != nil {
		return nil, 0, err
	}

	// Unacknowledged alerts first so the ops view surfaces open work.
	var ms []models.Alert
	if err := db.
		Order("acknowledged ASC").
		Order("created_at DESC").
		Limit(limit).Offset(offset).
		Find(&ms).Error; err != nil {
		return nil, 0, err
	}

	alerts, err := alertsToEntities(ms)
	if err != nil {
		return nil, 0, err
	}
	return alerts, total, nil
}

func (r *AlertRepositoryImpl) MarkDispatched(ctx context.Context, id uuid.UUID) error {
	return GetDB(ctx, r.db).WithContext(ctx).Model(&models.Alert{}).
		Where("id = ?", id).
		Update("dispatched", true).Error
}

func (r *AlertRepositoryImpl) Acknowledge(ctx context.Context, id uuid.UUID) error {
	return GetDB(ctx, r.db).WithContext(ctx).Model(&models.Alert{}).
		Where("id = ?", id).
		Update("acknowledged", true).Error
}

func alertsToEntities(ms []models.Alert) ([]*entities.Alert, error) {
	var alerts []*entities.Alert
	for i := range ms {
		e, err := alertToEntity(&ms[i])
		if err != nil {
			return nil, err
		}
		alerts = append(alerts, e)
	}
	return alerts, nil
}

func alertToEntity(m *models.Alert) (*entities.Alert, error) {
	amount, err := decimal.NewFromString(m.Amount)
	if err != nil {
		return nil, err
	}
	return &entities.Alert{
		ID:              m.ID,
		Kind:            entities.AlertKind(m.Kind),
		ExternalEventID: null.StringFromPtr(m.ExternalEventID),
		Amount:          amount,
		Message:         m.Message,
		PrimaryError:    null.StringFromPtr(m.PrimaryError),
		FallbackError:   null.StringFromPtr(m.FallbackError),
		Dispatched:      m.Dispatched,
		Acknowledged:    m.Acknowledged,
		CreatedAt:       m.CreatedAt,
	}, nil
}
