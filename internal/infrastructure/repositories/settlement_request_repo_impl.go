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

// SettlementRequestRepositoryImpl implements SettlementRequestRepository
type SettlementRequestRepositoryImpl struct {
	db *gorm.DB
}

func NewSettlementRequestRepository(db *gorm.DB) *SettlementRequestRepositoryImpl {
	return &SettlementRequestRepositoryImpl{db: db}
}

func (r *SettlementRequestRepositoryImpl) Create(ctx context.Context, req *entities.SettlementRequest) error {
	now := time.Now()
	m := &models.SettlementRequest{
		ID:              req.ID,
		ExternalEventID: req.ExternalEventID,
		SessionID:       req.SessionID,
		WalletAddress:   req.WalletAddress,
		Currency:        req.Currency,
		GrossAmount:     req.GrossAmount.String(),
		NetAmount:       req.NetAmount.String(),
		FeeAmount:       req.FeeAmount.String(),
		Status:          string(req.Status),
		PrimaryTxHash:   req.PrimaryTxHash.Ptr(),
		FallbackTxHash:  req.FallbackTxHash.Ptr(),
		PrimaryError:    req.PrimaryError.Ptr(),
		FallbackError:   req.FallbackError.Ptr(),
		SettledAt:       req.SettledAt,
		CreatedAt:       now,
		UpdatedAt:       now,
	}
	if err := GetDB(ctx, r.db).WithContext(ctx).Create(m).Error; err != nil {
		return err
	}
	req.CreatedAt = m.CreatedAt
	req.UpdatedAt = m.UpdatedAt
	return nil
}

func (r *SettlementRequestRepositoryImpl) GetByID(ctx context.Context, id uuid.UUID) (*entities.SettlementRequest, error) {
	var m models.SettlementRequest
	if err := GetDB(ctx, r.db).WithContext(ctx).Where("id = ?", id).First(&m).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domainerrors.ErrNotFound
		}
		return nil, err
	}
	return settlementToEntity(&m)
}

func (r *SettlementRequestRepositoryImpl) GetByExternalEventID(ctx context.Context, externalEventID string) (*entities.SettlementRequest, error) {
	var m models.SettlementRequest
	if err := GetDB(ctx, r.db).WithContext(ctx).
		Where("external_event_id = ?", externalEventID).
		First(&m).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domainerrors.ErrNotFound
		}
		return nil, err
	}
	return settlementToEntity(&m)
}

func (r *SettlementRequestRepositoryImpl) Update(ctx context.Context, req *entities.SettlementRequest) error {
	return GetDB(ctx, r.db).WithContext(ctx).Model(&models.SettlementRequest{}).
		Where("id = ?", req.ID).
		Updates(map[string]interface{}{
			"status":           string(req.Status),
			"primary_tx_hash":  req.PrimaryTxHash.Ptr(),
			"fallback_tx_hash": req.FallbackTxHash.Ptr(),
			"primary_error":    req.PrimaryError.Ptr(),
			"fallback_error":   req.FallbackError.Ptr(),
			"settled_at":       req.SettledAt,
			"updated_at":       time.Now(),
		}).Error
}

func (r *SettlementRequestRepositoryImpl) List(ctx context.Context, limit, offset int) ([]*entities.SettlementRequest, int64, error) {
	db := GetDB(ctx, r.db).WithContext(ctx)

	var total int64
	if err := db.Model(&models.SettlementRequest{}).Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var ms []models.SettlementRequest
	if err := db.
		Order("created_at DESC").
		Limit(limit).Offset(offset).
		Find(&ms).Error; err != nil {
		return nil, 0, err
	}

	var requests []*entities.SettlementRequest
	for i := range ms {
		e, err := settlementToEntity(&ms[i])
		if err != nil {
			return nil, 0, err
		}
		requests = append(requests, e)
	}
	return requests, total, nil
}

func settlementToEntity(m *models.SettlementRequest) (*entities.SettlementRequest, error) {
	gross, err := decimal.NewFromString(m.GrossAmount)
	if err != nil {
		return nil, err
	}
	net, err := decimal.NewFromString(m.NetAmount)
	if err != nil {
		return nil, err
	}
	fee, err := decimal.NewFromString(m.FeeAmount)
	if err != nil {
		return nil, err
	}
	return &entities.SettlementRequest{
		ID:              m.ID,
		ExternalEventID: m.ExternalEventID,
		SessionID:       m.SessionID,
		WalletAddress:   m.WalletAddress,
		Currency:        m.Currency,
		GrossAmount:     gross,
		NetAmount:       net,
		FeeAmount:       fee,
		Status:          entities.SettlementStatus(m.Status),
		PrimaryTxHash:   null.StringFromPtr(m.PrimaryTxHash),
		FallbackTxHash:  null.StringFromPtr(m.FallbackTxHash),
		PrimaryError:    null.StringFromPtr(m.PrimaryError),
		FallbackError:   null.StringFromPtr(m.FallbackError),
		SettledAt:       m.SettledAt,
		CreatedAt:       m.CreatedAt,
		UpdatedAt:       m.UpdatedAt,
	}, nil
}
