package handlers

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"mountainshares.backend/internal/domain/entities"
	domainerrors "mountainshares.backend/internal/domain/errors"
	"mountainshares.backend/internal/interfaces/http/response"
	"mountainshares.backend/internal/usecases"
)

type FeeQuoteService interface {
	Quote(in usecases.QuoteInput) (*entities.PurchaseQuote, error)
}

type FeeRetryService interface {
	Retry(ctx context.Context, id uuid.UUID) (*entities.FeeTransfer, error)
}

// FeeHandler handles purchase pricing quotes and fee transfer retries
type FeeHandler struct {
	quotes  FeeQuoteService
	retries FeeRetryService
}

// NewFeeHandler creates a new fee handler
func NewFeeHandler(quotes FeeQuoteService, retries FeeRetryService) *FeeHandler {
	return &FeeHandler{quotes: quotes, retries: retries}
}

// QuotePurchase prices a prospective token purchase
// POST /api/v1/fees/quote
func (h *FeeHandler) QuotePurchase(c *gin.Context) {
	var input struct {
		Quantity    decimal.Decimal `json:"quantity"`
		TokenPrice  decimal.Decimal `json:"tokenPrice"`
		CardCountry string          `json:"cardCountry"`
		Currency    string          `json:"currency"`
	}
	if err := c.ShouldBindJSON(&input); err != nil {
		response.Error(c, domainerrors.BadRequest(err.Error()))
		return
	}

	quote, err := h.quotes.Quote(usecases.QuoteInput{
		Quantity:    input.Quantity,
		TokenPrice:  input.TokenPrice,
		CardCountry: input.CardCountry,
		Currency:    input.Currency,
	})
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"quote": quote})
}

// RetryFeeTransfer re-executes one failed fee transfer
// POST /api/v1/fee-transfers/:id/retry
func (h *FeeHandler) RetryFeeTransfer(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.Error(c, domainerrors.BadRequest("Invalid fee transfer ID"))
		return
	}

	transfer, err := h.retries.Retry(c.Request.Context(), id)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"transfer": transfer})
}
