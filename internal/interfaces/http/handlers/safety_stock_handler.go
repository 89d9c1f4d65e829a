package handlers

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	"mountainshares.backend/internal/interfaces/http/response"
)

type SafetyStockService interface {
	Status(ctx context.Context) (decimal.Decimal, bool, error)
}

// SafetyStockHandler reports the state of the USDC fallback reserve
type SafetyStockHandler struct {
	stock SafetyStockService
}

// NewSafetyStockHandler creates a new safety stock handler
func NewSafetyStockHandler(stock SafetyStockService) *SafetyStockHandler {
	return &SafetyStockHandler{stock: stock}
}

// GetStatus reports the current reserve balance and buffer state
// GET /api/v1/safety-stock
func (h *SafetyStockHandler) GetStatus(c *gin.Context) {
	balance, belowBuffer, err := h.stock.Status(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{
		"balance":     balance,
		"belowBuffer": belowBuffer,
	})
}
