package usecases

import (
	"context"
	"errors"
	"log"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/volatiletech/null/v8"
	"mountainshares.backend/internal/domain/entities"
	domainerrors "mountainshares.backend/internal/domain/errors"
	domainRepos "mountainshares.backend/internal/domain/repositories"
	"mountainshares.backend/pkg/metrics"
	"mountainshares.backend/pkg/utils"
)

// ChainSettler is the on-chain surface the settlement usecases need.
// *blockchain.SettlementClient satisfies it.
type ChainSettler interface {
	MintTokens(ctx context.Context, to string, amount decimal.Decimal) (string, error)
	TransferStablecoin(ctx context.Context, to string, amount decimal.Decimal) (string, error)
	StablecoinBalance(ctx context.Context) (decimal.Decimal, error)
}

// FeeEngine splits a fee amount across the configured treasury recipients and
// executes one transfer per recipient. Transfers are independent: a failed
// recipient never aborts or rolls back its siblings.
type FeeEngine struct {
	client      ChainSettler
	transfers   domainRepos.FeeTransferRepository
	callTimeout time.Duration
}

func NewFeeEngine(client ChainSettler, transfers domainRepos.FeeTransferRepository, callTimeout time.Duration) *FeeEngine {
	return &FeeEngine{
		client:      client,
		transfers:   transfers,
		callTimeout: callTimeout,
	}
}

// Plan computes the deterministic split of feeAmount across recipients in
// declared order. Each share is round(fee × weight / 100, 2); the last
// recipient absorbs the rounding remainder in either direction, so the shares
// always sum to feeAmount exactly.
func (e *FeeEngine) Plan(feeAmount decimal.Decimal, recipients []entities.FeeRecipient) *entities.FeeDistributionPlan {
	plan := &entities.FeeDistributionPlan{FeeAmount: feeAmount}
	if len(recipients) == 0 {
		return plan
	}

	hundred := decimal.NewFromInt(100)
	allocated := decimal.Zero
	for i, r := range recipients {
		var share decimal.Decimal
		if i == len(recipients)-1 {
			share = feeAmount.Sub(allocated)
		} else {
			share = feeAmount.Mul(r.WeightPercent).Div(hundred).Round(moneyPlaces)
			allocated = allocated.Add(share)
		}
		plan.Shares = append(plan.Shares, entities.PlannedShare{
			FeeRecipient:   r,
			ComputedAmount: share,
		})
	}
	return plan
}

// Distribute executes the plan against settlementID. All recipients are
// attempted; failures are persisted for manual retry and aggregated into a
// DistributionPartialError.
func (e *FeeEngine) Distribute(ctx context.Context, settlementID uuid.UUID, plan *entities.FeeDistributionPlan) ([]entities.TransferResult, error) {
	var results []entities.TransferResult
	var failed []domainerrors.RecipientFailure

	for _, share := range plan.Shares {
		result := entities.TransferResult{
			RecipientID: share.RecipientID,
			Address:     share.Address,
			Amount:      share.ComputedAmount,
		}

		if share.ComputedAmount.IsZero() {
			// Nothing to move for this recipient at this fee size.
			results = append(results, result)
			continue
		}

		callCtx, cancel := context.WithTimeout(ctx, e.callTimeout)
		hash, err := e.client.TransferStablecoin(callCtx, share.Address, share.ComputedAmount)
		cancel()

		result.TxHash = hash
		result.Err = err
		results = append(results, result)

		row := &entities.FeeTransfer{
			ID:           utils.GenerateUUIDv7(),
			SettlementID: settlementID,
			RecipientID:  share.RecipientID,
			Address:      share.Address,
			Amount:       share.ComputedAmount,
		}
		if err != nil {
			log.Printf("❌ Fee transfer to %s (%s) failed: %v", share.RecipientID, share.ComputedAmount, err)
			row.Status = entities.FeeTransferStatusFailed
			row.LastError = null.StringFrom(err.Error())
			failed = append(failed, domainerrors.RecipientFailure{RecipientID: share.RecipientID, Err: err})
			metrics.FeeTransfersTotal.WithLabelValues(share.RecipientID, "failed").Inc()
		} else {
			row.Status = entities.FeeTransferStatusConfirmed
			row.TxHash = null.StringFrom(hash)
			metrics.FeeTransfersTotal.WithLabelValues(share.RecipientID, "confirmed").Inc()
		}
		if err := e.transfers.Create(ctx, row); err != nil {
			log.Printf("❌ Error persisting fee transfer for %s: %v", share.RecipientID, err)
		}
	}

	if len(failed) > 0 {
		return results, &domainerrors.DistributionPartialError{Failed: failed}
	}
	return results, nil
}

// Retry re-executes one failed recipient transfer. Only FAILED rows are
// retryable; a successful retry moves the row to RETRIED.
func (e *FeeEngine) Retry(ctx context.Context, id uuid.UUID) (*entities.FeeTransfer, error) {
	row, err := e.transfers.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, domainerrors.ErrNotFound) {
			return nil, domainerrors.NotFound("fee transfer not found")
		}
		return nil, err
	}
	if row.Status != entities.FeeTransferStatusFailed {
		return nil, domainerrors.Conflict("fee transfer is not in a retryable state")
	}

	callCtx, cancel := context.WithTimeout(ctx, e.callTimeout)
	hash, err := e.client.TransferStablecoin(callCtx, row.Address, row.Amount)
	cancel()
	if err != nil {
		row.LastError = null.StringFrom(err.Error())
		if uerr := e.transfers.Update(ctx, row); uerr != nil {
			log.Printf("❌ Error recording failed retry for %s: %v", row.ID, uerr)
		}
		metrics.FeeTransfersTotal.WithLabelValues(row.RecipientID, "retry_failed").Inc()
		return nil, err
	}

	row.Status = entities.FeeTransferStatusRetried
	row.TxHash = null.StringFrom(hash)
	row.LastError = null.String{}
	if err := e.transfers.Update(ctx, row); err != nil {
		return nil, err
	}
	metrics.FeeTransfersTotal.WithLabelValues(row.RecipientID, "retried").Inc()
	return row, nil
}
