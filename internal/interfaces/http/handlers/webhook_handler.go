package handlers

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"mountainshares.backend/internal/domain/entities"
	domainerrors "mountainshares.backend/internal/domain/errors"
	"mountainshares.backend/internal/interfaces/http/response"
)

type WebhookService interface {
	ProcessStripeWebhook(ctx context.Context, payload []byte, sigHeader string) (*entities.IntakeResult, error)
}

// WebhookHandler handles payment provider webhook deliveries
type WebhookHandler struct {
	webhookUsecase WebhookService
}

// NewWebhookHandler creates a new webhook handler
func NewWebhookHandler(webhookUsecase WebhookService) *WebhookHandler {
	return &WebhookHandler{webhookUsecase: webhookUsecase}
}

// HandleStripeWebhook handles incoming payment events from Stripe.
// POST /api/v1/webhooks/stripe
// The signature is computed over the exact request bytes, so the body must be
// read raw, never re-serialized.
func (h *WebhookHandler) HandleStripeWebhook(c *gin.Context) {
	payload, err := c.GetRawData()
	if err != nil {
		response.Error(c, domainerrors.BadRequest("unable to read request body"))
		return
	}

	result, err := h.webhookUsecase.ProcessStripeWebhook(c.Request.Context(), payload, c.GetHeader("Stripe-Signature"))
	if err != nil {
		if errors.Is(err, domainerrors.ErrSignatureInvalid) {
			response.Error(c, domainerrors.SignatureInvalid(err.Error()))
			return
		}
		response.Error(c, err)
		return
	}

	// Duplicates and ignored event types still get a 2xx so the provider
	// stops retrying.
	response.Success(c, http.StatusOK, gin.H{
		"received":  true,
		"duplicate": result.Duplicate,
		"ignored":   result.Ignored,
		"eventId":   result.ExternalEventID,
	})
}
