package repositories

import (
	"context"

	"github.com/google/uuid"
	"mountainshares.backend/internal/domain/entities"
)

// SettlementRequestRepository persists settlement requests for audit and
// replay.
type SettlementRequestRepository interface {
	Create(ctx context.Context, req *entities.SettlementRequest) error
	GetByID(ctx context.Context, id uuid.UUID) (*entities.SettlementRequest, error)
	GetByExternalEventID(ctx context.Context, externalEventID string) (*entities.SettlementRequest, error)
	Update(ctx context.Context, req *entities.SettlementRequest) error
	List(ctx context.Context, limit, offset int) ([]*entities.SettlementRequest, int64, error)
}

// FeeTransferRepository persists per-recipient fee transfer outcomes.
type FeeTransferRepository interface {
	Create(ctx context.Context, transfer *entities.FeeTransfer) error
	GetByID(ctx context.Context, id uuid.UUID) (*entities.FeeTransfer, error)
	GetBySettlementID(ctx context.Context, settlementID uuid.UUID) ([]*entities.FeeTransfer, error)
	Update(ctx context.Context, transfer *entities.FeeTransfer) error
}

// AlertRepository is the append-only operations alert log.
type AlertRepository interface {
	Create(ctx context.Context, alert *entities.Alert) error
	GetByID(ctx context.Context, id uuid.UUID) (*entities.Alert, error)
	ListUndispatched(ctx context.Context, limit int) ([]*entities.Alert, error)
	List(ctx context.Context, limit, offset int) ([]*entities.Alert, int64, error)
	MarkDispatched(ctx context.Context, id uuid.UUID) error
	Acknowledge(ctx context.Context, id uuid.UUID) error
}
