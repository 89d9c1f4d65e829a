package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"mountainshares.backend/internal/domain/entities"
	domainerrors "mountainshares.backend/internal/domain/errors"
)

type webhookServiceStub struct {
	processFn func(ctx context.Context, payload []byte, sigHeader string) (*entities.IntakeResult, error)
}

func (s webhookServiceStub) ProcessStripeWebhook(ctx context.Context, payload []byte, sigHeader string) (*entities.IntakeResult, error) {
	return s.processFn(ctx, payload, sigHeader)
}

func TestWebhookHandler_HandleStripeWebhook(t *testing.T) {
	gin.SetMode(gin.TestMode)

	newRouter := func(stub webhookServiceStub) *gin.Engine {
		r := gin.New()
		r.POST("/webhooks/stripe", NewWebhookHandler(stub).HandleStripeWebhook)
		return r
	}

	t.Run("accepted", func(t *testing.T) {
		r := newRouter(webhookServiceStub{
			processFn: func(_ context.Context, payload []byte, sigHeader string) (*entities.IntakeResult, error) {
				if len(payload) == 0 {
					t.Fatal("expected raw payload")
				}
				if sigHeader != "t=1,v1=abc" {
					t.Fatalf("unexpected signature header: %s", sigHeader)
				}
				return &entities.IntakeResult{ExternalEventID: "evt_1"}, nil
			},
		})

		req := httptest.NewRequest(http.MethodPost, "/webhooks/stripe", bytes.NewBufferString(`{"id":"evt_1"}`))
		req.Header.Set("Stripe-Signature", "t=1,v1=abc")
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)

		if w.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d body=%s", w.Code, w.Body.String())
		}
		var body map[string]any
		if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
			t.Fatalf("invalid response body: %v", err)
		}
		if body["received"] != true || body["duplicate"] != false {
			t.Fatalf("unexpected body: %v", body)
		}
	})

	t.Run("duplicate still 200", func(t *testing.T) {
		r := newRouter(webhookServiceStub{
			processFn: func(context.Context, []byte, string) (*entities.IntakeResult, error) {
				return &entities.IntakeResult{ExternalEventID: "evt_1", Duplicate: true}, nil
			},
		})

		req := httptest.NewRequest(http.MethodPost, "/webhooks/stripe", bytes.NewBufferString(`{}`))
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)

		if w.Code != http.StatusOK {
			t.Fatalf("expected 200 for duplicate, got %d", w.Code)
		}
		var body map[string]any
		_ = json.Unmarshal(w.Body.Bytes(), &body)
		if body["duplicate"] != true {
			t.Fatalf("expected duplicate flag, got %v", body)
		}
	})

	t.Run("bad signature", func(t *testing.T) {
		r := newRouter(webhookServiceStub{
			processFn: func(context.Context, []byte, string) (*entities.IntakeResult, error) {
				return nil, domainerrors.ErrSignatureInvalid
			},
		})

		req := httptest.NewRequest(http.MethodPost, "/webhooks/stripe", bytes.NewBufferString(`{}`))
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)

		if w.Code != http.StatusBadRequest {
			t.Fatalf("expected 400, got %d body=%s", w.Code, w.Body.String())
		}
		if !bytes.Contains(w.Body.Bytes(), []byte(domainerrors.CodeSignatureInvalid)) {
			t.Fatalf("expected %s code in body, got %s", domainerrors.CodeSignatureInvalid, w.Body.String())
		}
	})

	t.Run("malformed session", func(t *testing.T) {
		r := newRouter(webhookServiceStub{
			processFn: func(context.Context, []byte, string) (*entities.IntakeResult, error) {
				return nil, domainerrors.BadRequest("checkout session missing id or wallet_address metadata")
			},
		})

		req := httptest.NewRequest(http.MethodPost, "/webhooks/stripe", bytes.NewBufferString(`{}`))
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)

		if w.Code != http.StatusBadRequest {
			t.Fatalf("expected 400, got %d", w.Code)
		}
	})
}
