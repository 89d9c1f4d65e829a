package handlers

import (
	"bytes"
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"mountainshares.backend/internal/domain/entities"
	domainerrors "mountainshares.backend/internal/domain/errors"
	"mountainshares.backend/internal/usecases"
)

type quoteServiceStub struct {
	quoteFn func(in usecases.QuoteInput) (*entities.PurchaseQuote, error)
}

func (s quoteServiceStub) Quote(in usecases.QuoteInput) (*entities.PurchaseQuote, error) {
	return s.quoteFn(in)
}

type retryServiceStub struct {
	retryFn func(ctx context.Context, id uuid.UUID) (*entities.FeeTransfer, error)
}

func (s retryServiceStub) Retry(ctx context.Context, id uuid.UUID) (*entities.FeeTransfer, error) {
	return s.retryFn(ctx, id)
}

func TestFeeHandler_QuotePurchase(t *testing.T) {
	gin.SetMode(gin.TestMode)

	quotes := quoteServiceStub{
		quoteFn: func(in usecases.QuoteInput) (*entities.PurchaseQuote, error) {
			if !in.Quantity.IsPositive() {
				return nil, domainerrors.BadRequest("quantity must be positive")
			}
			if in.CardCountry != "GB" {
				t.Fatalf("unexpected card country: %s", in.CardCountry)
			}
			return &entities.PurchaseQuote{Quantity: in.Quantity}, nil
		},
	}
	h := NewFeeHandler(quotes, retryServiceStub{})
	r := gin.New()
	r.POST("/fees/quote", h.QuotePurchase)

	t.Run("success", func(t *testing.T) {
		body := `{"quantity":"100","cardCountry":"GB","currency":"usd"}`
		req := httptest.NewRequest(http.MethodPost, "/fees/quote", bytes.NewBufferString(body))
		req.Header.Set("Content-Type", "application/json")
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)
		if w.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d body=%s", w.Code, w.Body.String())
		}
	})

	t.Run("invalid quantity", func(t *testing.T) {
		body := `{"quantity":"0","cardCountry":"GB"}`
		req := httptest.NewRequest(http.MethodPost, "/fees/quote", bytes.NewBufferString(body))
		req.Header.Set("Content-Type", "application/json")
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)
		if w.Code != http.StatusBadRequest {
			t.Fatalf("expected 400, got %d", w.Code)
		}
	})

	t.Run("malformed json", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, "/fees/quote", bytes.NewBufferString("{"))
		req.Header.Set("Content-Type", "application/json")
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)
		if w.Code != http.StatusBadRequest {
			t.Fatalf("expected 400, got %d", w.Code)
		}
	})
}

func TestFeeHandler_RetryFeeTransfer(t *testing.T) {
	gin.SetMode(gin.TestMode)
	transferID := uuid.New()

	retries := retryServiceStub{
		retryFn: func(_ context.Context, id uuid.UUID) (*entities.FeeTransfer, error) {
			switch id {
			case transferID:
				return &entities.FeeTransfer{ID: id, Status: entities.FeeTransferStatusRetried}, nil
			default:
				return nil, domainerrors.NotFound("fee transfer not found")
			}
		},
	}
	h := NewFeeHandler(quoteServiceStub{}, retries)
	r := gin.New()
	r.POST("/fee-transfers/:id/retry", h.RetryFeeTransfer)

	t.Run("success", func(t *testing.T) {
		w := httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/fee-transfers/"+transferID.String()+"/retry", nil))
		if w.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d body=%s", w.Code, w.Body.String())
		}
	})

	t.Run("unknown id", func(t *testing.T) {
		w := httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/fee-transfers/"+uuid.NewString()+"/retry", nil))
		if w.Code != http.StatusNotFound {
			t.Fatalf("expected 404, got %d", w.Code)
		}
	})

	t.Run("malformed id", func(t *testing.T) {
		w := httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/fee-transfers/oops/retry", nil))
		if w.Code != http.StatusBadRequest {
			t.Fatalf("expected 400, got %d", w.Code)
		}
	})
}
