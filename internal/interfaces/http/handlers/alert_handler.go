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

type AlertReader interface {
	GetByID(ctx context.Context, id uuid.UUID) (*entities.Alert, error)
	List(ctx context.Context, limit, offset int) ([]*entities.Alert, int64, error)
	Acknowledge(ctx context.Context, id uuid.UUID) error
}

// AlertHandler exposes the operations alert log
type AlertHandler struct {
	alerts AlertReader
}

// NewAlertHandler creates a new alert handler
func NewAlertHandler(alerts AlertReader) *AlertHandler {
	return &AlertHandler{alerts: alerts}
}

// ListAlerts lists alerts, unacknowledged first
// GET /api/v1/alerts
func (h *AlertHandler) ListAlerts(c *gin.Context) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "20"))
	params := utils.GetPaginationParams(page, limit)

	alerts, total, err := h.alerts.List(c.Request.Context(), params.Limit, params.CalculateOffset())
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{
		"alerts":     alerts,
		"pagination": utils.CalculateMeta(total, params.Page, params.Limit),
	})
}

// AcknowledgeAlert marks one alert as handled by an operator
// POST /api/v1/alerts/:id/ack
func (h *AlertHandler) AcknowledgeAlert(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.Error(c, domainerrors.BadRequest("Invalid alert ID"))
		return
	}

	if _, err := h.alerts.GetByID(c.Request.Context(), id); err != nil {
		if errors.Is(err, domainerrors.ErrNotFound) {
			response.Error(c, domainerrors.NotFound("Alert not found"))
			return
		}
		response.Error(c, err)
		return
	}

	if err := h.alerts.Acknowledge(c.Request.Context(), id); err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"acknowledged": true})
}
