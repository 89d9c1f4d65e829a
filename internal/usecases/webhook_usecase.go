package usecases

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"time"

	"github.com/shopspring/decimal"
	"mountainshares.backend/internal/domain/entities"
	domainerrors "mountainshares.backend/internal/domain/errors"
	domainRepos "mountainshares.backend/internal/domain/repositories"
	"mountainshares.backend/pkg/metrics"
	"mountainshares.backend/pkg/redis"
	"mountainshares.backend/pkg/stripewebhook"
	"mountainshares.backend/pkg/utils"
)

// WebhookUsecase handles payment provider webhook deliveries: signature
// verification, idempotent intake, and handoff to the settlement orchestrator.
type WebhookUsecase struct {
	secret        string
	tolerance     time.Duration
	feeRate       decimal.Decimal
	processed     domainRepos.ProcessedEventRepository
	requests      domainRepos.SettlementRequestRepository
	settlement    *SettlementUsecase
	uow           domainRepos.UnitOfWork
	settleTimeout time.Duration

	// dispatch runs the settlement sequence once intake is durable. The
	// default forks a goroutine; tests swap it for a synchronous call.
	dispatch func(req *entities.SettlementRequest)
}

func NewWebhookUsecase(
	secret string,
	tolerance time.Duration,
	feeRate decimal.Decimal,
	processed domainRepos.ProcessedEventRepository,
	requests domainRepos.SettlementRequestRepository,
	settlement *SettlementUsecase,
	uow domainRepos.UnitOfWork,
	settleTimeout time.Duration,
) *WebhookUsecase {
	u := &WebhookUsecase{
		secret:        secret,
		tolerance:     tolerance,
		feeRate:       feeRate,
		processed:     processed,
		requests:      requests,
		settlement:    settlement,
		uow:           uow,
		settleTimeout: settleTimeout,
	}
	u.dispatch = u.dispatchAsync
	return u
}

// ProcessStripeWebhook verifies and records one delivery. The caller may
// answer 2xx as soon as this returns without error: the event is durably
// recorded and settlement runs detached from the request. Errors are returned
// only for signature, format, or intake persistence failures, never for
// settlement outcomes.
func (u *WebhookUsecase) ProcessStripeWebhook(ctx context.Context, payload []byte, sigHeader string) (*entities.IntakeResult, error) {
	event, err := stripewebhook.ConstructEventWithTolerance(payload, sigHeader, u.secret, u.tolerance)
	if err != nil {
		metrics.WebhooksReceived.WithLabelValues("rejected").Inc()
		return nil, err
	}

	if event.Type != EventCheckoutCompleted {
		metrics.WebhooksReceived.WithLabelValues("ignored").Inc()
		return &entities.IntakeResult{
			ExternalEventID: event.ID,
			Ignored:         true,
			EventType:       event.Type,
		}, nil
	}

	var session stripewebhook.CheckoutSession
	if err := json.Unmarshal(event.Data.Object, &session); err != nil {
		metrics.WebhooksReceived.WithLabelValues("rejected").Inc()
		return nil, domainerrors.BadRequest("malformed checkout session object")
	}
	wallet := session.Metadata["wallet_address"]
	if session.ID == "" || wallet == "" {
		metrics.WebhooksReceived.WithLabelValues("rejected").Inc()
		return nil, domainerrors.BadRequest("checkout session missing id or wallet_address metadata")
	}
	if session.AmountTotal <= 0 {
		metrics.WebhooksReceived.WithLabelValues("rejected").Inc()
		return nil, domainerrors.BadRequest("checkout session amount must be positive")
	}

	payment := &entities.PaymentEvent{
		ExternalEventID: event.ID,
		SessionID:       session.ID,
		// Provider amounts are integer minor units; ÷100 exactly via decimal.
		AmountGross:   decimal.New(session.AmountTotal, -int32(moneyPlaces)),
		Currency:      session.Currency,
		WalletAddress: wallet,
		ReceivedAt:    time.Now(),
	}

	// Fast path: a cached id means a prior delivery already committed. The
	// cache is written only after the durable gate commits, so a hit can
	// never absorb a redelivery of an event whose intake failed.
	if redis.GetClient() != nil {
		if _, err := redis.Get(ctx, idempotencyKeyPrefix+event.ID); err == nil {
			metrics.WebhooksReceived.WithLabelValues("duplicate").Inc()
			return u.duplicateResult(event), nil
		}
	}

	var req *entities.SettlementRequest
	err = u.uow.Do(ctx, func(txCtx context.Context) error {
		inserted, err := u.processed.MarkProcessed(txCtx, event.ID)
		if err != nil {
			return err
		}
		if !inserted {
			return domainerrors.ErrDuplicateEvent
		}

		req = newSettlementRequest(payment, u.feeRate)
		return u.requests.Create(txCtx, req)
	})
	if errors.Is(err, domainerrors.ErrDuplicateEvent) {
		u.cacheProcessed(ctx, event.ID)
		metrics.WebhooksReceived.WithLabelValues("duplicate").Inc()
		return u.duplicateResult(event), nil
	}
	if err != nil {
		return nil, err
	}
	u.cacheProcessed(ctx, event.ID)

	metrics.WebhooksReceived.WithLabelValues("accepted").Inc()
	log.Printf("Accepted payment event %s (session %s, %s %s)", event.ID, session.ID, payment.AmountGross, payment.Currency)
	u.dispatch(req)

	return &entities.IntakeResult{
		ExternalEventID: event.ID,
		EventType:       event.Type,
	}, nil
}

// newSettlementRequest opens a settlement sequence for a verified payment.
// Tokens are backed 1:1, so net equals gross and the fee rides on top.
func newSettlementRequest(payment *entities.PaymentEvent, feeRate decimal.Decimal) *entities.SettlementRequest {
	return &entities.SettlementRequest{
		ID:              utils.GenerateUUIDv7(),
		ExternalEventID: payment.ExternalEventID,
		SessionID:       payment.SessionID,
		WalletAddress:   payment.WalletAddress,
		Currency:        payment.Currency,
		GrossAmount:     payment.AmountGross,
		NetAmount:       payment.AmountGross,
		FeeAmount:       payment.AmountGross.Mul(feeRate).Round(moneyPlaces),
		Status:          entities.SettlementStatusPending,
	}
}

// cacheProcessed records a committed event id for the fast path. Best effort:
// when the write fails the durable gate still catches redeliveries.
func (u *WebhookUsecase) cacheProcessed(ctx context.Context, eventID string) {
	if redis.GetClient() == nil {
		return
	}
	if err := redis.Set(ctx, idempotencyKeyPrefix+eventID, "1", idempotencyTTL); err != nil {
		log.Printf("⚠️ Redis idempotency cache write failed for %s: %v", eventID, err)
	}
}

func (u *WebhookUsecase) duplicateResult(event *stripewebhook.Event) *entities.IntakeResult {
	return &entities.IntakeResult{
		ExternalEventID: event.ID,
		Duplicate:       true,
		EventType:       event.Type,
	}
}

func (u *WebhookUsecase) dispatchAsync(req *entities.SettlementRequest) {
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), u.settleTimeout)
		defer cancel()
		if _, err := u.settlement.Settle(ctx, req); err != nil {
			log.Printf("❌ Error settling %s: %v", req.ExternalEventID, err)
		}
	}()
}
