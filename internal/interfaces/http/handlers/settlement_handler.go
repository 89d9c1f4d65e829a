package handlers

import (
	"context"
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"mountainshares.backend/internal/domain/entities"
	domainerrors "mountainshares.backend/internal/domain/errors"
	"mountainshares.backend/internal/interfaces/http/response"
	"mountainshares.backend/pkg/utils"
)

type SettlementReader interface {
	GetByID(ctx context.Context, id uuid.UUID) (*entities.SettlementRequest, error)
	List(ctx context.Context, limit, offset int) ([]*entities.SettlementRequest, int64, error)
}

type TransferReader interface {
	GetBySettlementID(ctx context.Context, settlementID uuid.UUID) ([]*entities.FeeTransfer, error)
}

// SettlementHandler exposes the settlement audit trail
type SettlementHandler struct {
	settlements SettlementReader
	transfers   TransferReader
}

// NewSettlementHandler creates a new settlement handler
func NewSettlementHandler(settlements SettlementReader, transfers TransferReader) *SettlementHandler {
	return &SettlementHandler{settlements: settlements, transfers: transfers}
}

// ListSettlements lists settlement requests, newest first
// GET /api/v1/settlements
func (h *SettlementHandler) ListSettlements(c *gin.Context) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "20"))
	params := utils.GetPaginationParams(page, limit)

	settlements, total, err := h.settlements.List(c.Request.Context(), params.Limit, params.CalculateOffset())
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{
		"settlements": settlements,
		"pagination":  utils.CalculateMeta(total, params.Page, params.Limit),
	})
}

// GetSettlement gets one settlement request by ID
// GET /api/v1/settlements/:id
func (h *SettlementHandler) GetSettlement(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.Error(c, domainerrors.BadRequest("Invalid settlement ID"))
		return
	}

	settlement, err := h.settlements.GetByID(c.Request.Context(), id)
	if err != nil {
		if errors.Is(err, domainerrors.ErrNotFound) {
			response.Error(c, domainerrors.NotFound("Settlement not found"))
			return
		}
		response.Error(c, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"settlement": settlement})
}

// GetSettlementTransfers lists the on-chain transfers recorded for a settlement
// GET /api/v1/settlements/:id/transfers
func (h *SettlementHandler) GetSettlementTransfers(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.Error(c, domainerrors.BadRequest("Invalid settlement ID"))
		return
	}

	if _, err := h.settlements.GetByID(c.Request.Context(), id); err != nil {
		if errors.Is(err, domainerrors.ErrNotFound) {
			response.Error(c, domainerrors.NotFound("Settlement not found"))
			return
		}
		response.Error(c, err)
		return
	}

	transfers, err := h.transfers.GetBySettlementID(c.Request.Context(), id)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"transfers": transfers})
}
