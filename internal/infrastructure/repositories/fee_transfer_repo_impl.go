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

// FeeTransferRepositoryImpl implements FeeTransferRepository
type FeeTransferRepositoryImpl struct {
	db *gorm.DB
}

func NewFeeTransferRepository(db *gorm.DB) *FeeTransferRepositoryImpl {
	return &FeeTransferRepositoryImpl{db: db}
}

func (r *FeeTransferRepositoryImpl) Create(ctx context.Context, transfer *entities.FeeTransfer) error {
	now := time.Now()
	m := &models.FeeTransfer{
		ID:           transfer.ID,
		SettlementID: transfer.SettlementID,
		RecipientID:  transfer.RecipientID,
		Address:      transfer.Address,
		Amount:       transfer.Amount.String(),
		Status:       string(transfer.Status),
		TxHash:       transfer.TxHash.Ptr(),
		LastError:    transfer.LastError.Ptr(),
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := GetDB(ctx, r.db).WithContext(ctx).Create(m).Error; err != nil {
		return err
	}
	transfer.CreatedAt = m.CreatedAt
	transfer.UpdatedAt = m.UpdatedAt
	return nil
}

func (r *FeeTransferRepositoryImpl) GetByID(ctx context.Context, id uuid.UUID) (*entities.FeeTransfer, error) {
	var m models.FeeTransfer
	if err := GetDB(ctx, r.db).WithContext(ctx).Where("id = ?", id).First(&m).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domainerrors.ErrNotFound
		}
		return nil, err
	}
	return feeTransferToEntity(&m)
}

func (r *FeeTransferRepositoryImpl) GetBySettlementID(ctx context.Context, settlementID uuid.UUID) ([]*entities.FeeTransfer, error) {
	var ms []models.FeeTransfer
	if err := GetDB(ctx, r.db).WithContext(ctx).
		Where("settlement_id = ?", settlementID).
		Order("created_at ASC").
		Find(&ms).Error; err != nil {
		return nil, err
	}

	var transfers []*entities.FeeTransfer
	for i := range ms {
		e, err := feeTransferToEntity(&ms[i])
		if err != nil {
			return nil, err
		}
		transfers = append(transfers, e)
	}
	return transfers, nil
}

func (r *FeeTransferRepositoryImpl) Update(ctx context.Context, transfer *entities.FeeTransfer) error {
	return GetDB(ctx, r.db).WithContext(ctx).Model(&models.FeeTransfer{}).
		Where("id = ?", transfer.ID).
		Updates(map[string]interface{}{
			"status":     string(transfer.Status),
			"tx_hash":    transfer.TxHash.Ptr(),
			"last_error": transfer.LastError.Ptr(),
			"updated_at": time.Now(),
		}).Error
}

func feeTransferToEntity(m *models.FeeTransfer) (*entities.FeeTransfer, error) {
	amount, err := decimal.NewFromString(m.Amount)
	if err != nil {
		return nil, err
	}
	return &entities.FeeTransfer{
		ID:           m.ID,
		SettlementID: m.SettlementID,
		RecipientID:  m.RecipientID,
		Address:      m.Address,
		Amount:       amount,
		Status:       entities.FeeTransferStatus(m.Status),
		TxHash:       null.StringFromPtr(m.TxHash),
		LastError:    null.StringFromPtr(m.LastError),
		CreatedAt:    m.CreatedAt,
		UpdatedAt:    m.UpdatedAt,
	}, nil
}
