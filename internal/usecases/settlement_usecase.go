package usecases

import (
	"context"
	"errors"
	"time"

	"github.com/volatiletech/null/v8"
	"go.uber.org/zap"
	"mountainshares.backend/internal/domain/entities"
	domainerrors "mountainshares.backend/internal/domain/errors"
	domainRepos "mountainshares.backend/internal/domain/repositories"
	"mountainshares.backend/pkg/logger"
	"mountainshares.backend/pkg/metrics"
	"mountainshares.backend/pkg/utils"
)

// SettlementUsecase drives one settlement request through the state machine
// PENDING -> PRIMARY_OK | FALLBACK_OK | FAILED_MANUAL. Each path is attempted
// at most once per request; the terminal state is always persisted before
// Settle returns.
type SettlementUsecase struct {
	requests   domainRepos.SettlementRequestRepository
	alerts     domainRepos.AlertRepository
	client     ChainSettler
	breaker    *SettlementBreaker
	feeEngine  *FeeEngine
	stock      *SafetyStock
	recipients []entities.FeeRecipient

	reserveAddress string
	callTimeout    time.Duration
}

func NewSettlementUsecase(
	requests domainRepos.SettlementRequestRepository,
	alerts domainRepos.AlertRepository,
	client ChainSettler,
	breaker *SettlementBreaker,
	feeEngine *FeeEngine,
	stock *SafetyStock,
	recipients []entities.FeeRecipient,
	reserveAddress string,
	callTimeout time.Duration,
) *SettlementUsecase {
	return &SettlementUsecase{
		requests:       requests,
		alerts:         alerts,
		client:         client,
		breaker:        breaker,
		feeEngine:      feeEngine,
		stock:          stock,
		recipients:     recipients,
		reserveAddress: reserveAddress,
		callTimeout:    callTimeout,
	}
}

// Settle runs the full sequence for req. A terminal FAILED_MANUAL is not an
// error return: it is durably recorded, alerted, and reported in the result.
// Only persistence failures surface as errors.
func (u *SettlementUsecase) Settle(ctx context.Context, req *entities.SettlementRequest) (*entities.SettlementResult, error) {
	start := time.Now()

	primaryHash, primaryErr := u.breaker.Execute(func() (string, error) {
		callCtx, cancel := context.WithTimeout(ctx, u.callTimeout)
		defer cancel()
		return u.client.MintTokens(callCtx, req.WalletAddress, req.NetAmount)
	})

	if primaryErr == nil {
		return u.completePrimary(ctx, req, primaryHash, start)
	}

	req.PrimaryError = null.StringFrom(primaryErr.Error())
	if errors.Is(primaryErr, domainerrors.ErrCircuitOpen) {
		logger.Warn(ctx, "primary path short-circuited",
			zap.String("event_id", req.ExternalEventID))
	} else {
		logger.Warn(ctx, "primary settlement failed",
			zap.String("event_id", req.ExternalEventID),
			zap.Error(primaryErr))
	}

	fallbackCtx, cancel := context.WithTimeout(ctx, u.callTimeout)
	fallbackHash, fallbackErr := u.stock.Use(fallbackCtx, req.NetAmount, req.WalletAddress)
	cancel()

	if fallbackErr == nil {
		return u.completeFallback(ctx, req, fallbackHash, start)
	}
	req.FallbackError = null.StringFrom(fallbackErr.Error())
	return u.completeFailed(ctx, req, start)
}

func (u *SettlementUsecase) completePrimary(ctx context.Context, req *entities.SettlementRequest, hash string, start time.Time) (*entities.SettlementResult, error) {
	now := time.Now()
	req.Status = entities.SettlementStatusPrimaryOK
	req.PrimaryTxHash = null.StringFrom(hash)
	req.SettledAt = &now
	if err := u.requests.Update(ctx, req); err != nil {
		return nil, err
	}

	// Reserve backing plus fee split. Partial failure here never demotes
	// PRIMARY_OK; failed recipients are persisted for manual retry.
	transfers := u.distribute(ctx, req)

	u.observe(ctx, req, start)
	return &entities.SettlementResult{
		RequestID:       req.ID,
		ExternalEventID: req.ExternalEventID,
		Status:          req.Status,
		TxHash:          hash,
		FeeTransfers:    transfers,
		Elapsed:         time.Since(start),
	}, nil
}

func (u *SettlementUsecase) completeFallback(ctx context.Context, req *entities.SettlementRequest, hash string, start time.Time) (*entities.SettlementResult, error) {
	now := time.Now()
	req.Status = entities.SettlementStatusFallbackOK
	req.FallbackTxHash = null.StringFrom(hash)
	req.SettledAt = &now
	if err := u.requests.Update(ctx, req); err != nil {
		return nil, err
	}

	u.observe(ctx, req, start)
	return &entities.SettlementResult{
		RequestID:       req.ID,
		ExternalEventID: req.ExternalEventID,
		Status:          req.Status,
		TxHash:          hash,
		Elapsed:         time.Since(start),
	}, nil
}

func (u *SettlementUsecase) completeFailed(ctx context.Context, req *entities.SettlementRequest, start time.Time) (*entities.SettlementResult, error) {
	req.Status = entities.SettlementStatusFailedManual
	if err := u.requests.Update(ctx, req); err != nil {
		return nil, err
	}

	alert := &entities.Alert{
		ID:              utils.GenerateUUIDv7(),
		Kind:            entities.AlertKindSettlementFailed,
		ExternalEventID: null.StringFrom(req.ExternalEventID),
		Amount:          req.GrossAmount,
		Message:         "settlement failed on both paths, manual intervention required",
		PrimaryError:    req.PrimaryError,
		FallbackError:   req.FallbackError,
	}
	if err := u.alerts.Create(ctx, alert); err != nil {
		return nil, err
	}

	u.observe(ctx, req, start)
	return &entities.SettlementResult{
		RequestID:       req.ID,
		ExternalEventID: req.ExternalEventID,
		Status:          req.Status,
		Elapsed:         time.Since(start),
	}, nil
}

// distribute moves the 1:1 reserve backing and splits the fee across the
// treasury recipients, allSettled style.
func (u *SettlementUsecase) distribute(ctx context.Context, req *entities.SettlementRequest) []entities.TransferResult {
	plan := u.feeEngine.Plan(req.FeeAmount, u.recipients)

	// The reserve transfer rides through the same machinery as a leading
	// share so its outcome lands in the same audit table.
	full := &entities.FeeDistributionPlan{
		FeeAmount: plan.FeeAmount.Add(req.NetAmount),
		Shares: append([]entities.PlannedShare{{
			FeeRecipient: entities.FeeRecipient{
				RecipientID: ReserveRecipientID,
				Address:     u.reserveAddress,
			},
			ComputedAmount: req.NetAmount,
		}}, plan.Shares...),
	}

	results, err := u.feeEngine.Distribute(ctx, req.ID, full)
	if err != nil {
		var partial *domainerrors.DistributionPartialError
		if errors.As(err, &partial) {
			logger.Warn(ctx, "fee distribution partially failed",
				zap.String("event_id", req.ExternalEventID),
				zap.Int("failed_recipients", len(partial.Failed)),
				zap.Error(err))
			u.raiseFeeFailureAlert(ctx, req, partial)
		} else {
			logger.Error(ctx, "fee distribution failed",
				zap.String("event_id", req.ExternalEventID),
				zap.Error(err))
		}
	}
	return results
}

func (u *SettlementUsecase) raiseFeeFailureAlert(ctx context.Context, req *entities.SettlementRequest, partial *domainerrors.DistributionPartialError) {
	alert := &entities.Alert{
		ID:              utils.GenerateUUIDv7(),
		Kind:            entities.AlertKindFeeTransferFailed,
		ExternalEventID: null.StringFrom(req.ExternalEventID),
		Amount:          req.FeeAmount,
		Message:         partial.Error(),
	}
	if err := u.alerts.Create(ctx, alert); err != nil {
		logger.Error(ctx, "error recording fee failure alert", zap.Error(err))
	}
}

func (u *SettlementUsecase) observe(ctx context.Context, req *entities.SettlementRequest, start time.Time) {
	elapsed := time.Since(start)
	metrics.SettlementsTotal.WithLabelValues(string(req.Status)).Inc()
	metrics.SettlementDuration.Observe(elapsed.Seconds())
	logger.Info(ctx, "settlement finished",
		zap.String("event_id", req.ExternalEventID),
		zap.String("status", string(req.Status)),
		zap.Duration("elapsed", elapsed))
}
