package usecases

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"mountainshares.backend/internal/domain/entities"
	"mountainshares.backend/pkg/utils"
)

const (
	testReserveAddr = "0x9999999999999999999999999999999999999999"
	testWalletAddr  = "0xabcabcabcabcabcabcabcabcabcabcabcabcabca"
)

type settlementFixture struct {
	uc        *SettlementUsecase
	client    *chainStub
	requests  *requestRepoStub
	transfers *transferRepoStub
	alerts    *alertRepoStub
	breaker   *SettlementBreaker
}

func newSettlementFixture(t *testing.T, client *chainStub, threshold uint32) *settlementFixture {
	t.Helper()
	requests := newRequestRepoStub()
	transfers := newTransferRepoStub()
	alerts := &alertRepoStub{}
	breaker := NewSettlementBreaker(threshold, time.Minute)
	engine := NewFeeEngine(client, transfers, time.Second)
	stock := NewSafetyStock(client, alerts, decimal.NewFromInt(10))
	uc := NewSettlementUsecase(requests, alerts, client, breaker, engine, stock,
		testRecipients(), testReserveAddr, time.Second)
	return &settlementFixture{uc: uc, client: client, requests: requests, transfers: transfers, alerts: alerts, breaker: breaker}
}

func (f *settlementFixture) newPendingRequest(t *testing.T, eventID string) *entities.SettlementRequest {
	t.Helper()
	req := &entities.SettlementRequest{
		ID:              utils.GenerateUUIDv7(),
		ExternalEventID: eventID,
		SessionID:       "cs_test_" + eventID,
		WalletAddress:   testWalletAddr,
		Currency:        "usd",
		GrossAmount:     decimal.RequireFromString("1.36"),
		NetAmount:       decimal.RequireFromString("1.36"),
		FeeAmount:       decimal.RequireFromString("0.03"),
		Status:          entities.SettlementStatusPending,
	}
	require.NoError(t, f.requests.Create(context.Background(), req))
	return req
}

func TestSettle_PrimarySuccess(t *testing.T) {
	f := newSettlementFixture(t, &chainStub{}, 3)
	req := f.newPendingRequest(t, "evt_1")

	result, err := f.uc.Settle(context.Background(), req)
	require.NoError(t, err)
	require.Equal(t, entities.SettlementStatusPrimaryOK, result.Status)
	require.Equal(t, "0xmint1", result.TxHash)

	// Tokens minted to the customer wallet.
	require.Len(t, f.client.mints, 1)
	require.Equal(t, testWalletAddr, f.client.mints[0].to)
	require.True(t, f.client.mints[0].amount.Equal(decimal.RequireFromString("1.36")))

	// Reserve backing leads the distribution.
	require.NotEmpty(t, f.client.transfers)
	require.Equal(t, testReserveAddr, f.client.transfers[0].to)
	require.True(t, f.client.transfers[0].amount.Equal(decimal.RequireFromString("1.36")))

	// Reserve share plus the five fee recipients in the result.
	require.Len(t, result.FeeTransfers, 6)

	stored, err := f.requests.GetByID(context.Background(), req.ID)
	require.NoError(t, err)
	require.Equal(t, entities.SettlementStatusPrimaryOK, stored.Status)
	require.Equal(t, "0xmint1", stored.PrimaryTxHash.String)
	require.NotNil(t, stored.SettledAt)
	require.Empty(t, f.alerts.alerts)
}

func TestSettle_FallbackWhenPrimaryFails(t *testing.T) {
	client := &chainStub{
		mintErr: errors.New("execution reverted"),
		balanceSeq: []decimal.Decimal{
			decimal.RequireFromString("100"),
			decimal.RequireFromString("98.64"),
		},
	}
	f := newSettlementFixture(t, client, 3)
	req := f.newPendingRequest(t, "evt_2")

	result, err := f.uc.Settle(context.Background(), req)
	require.NoError(t, err)
	require.Equal(t, entities.SettlementStatusFallbackOK, result.Status)

	// Fallback pays the customer from stock; no fee distribution runs.
	require.Len(t, client.transfers, 1)
	require.Equal(t, testWalletAddr, client.transfers[0].to)
	require.True(t, client.transfers[0].amount.Equal(decimal.RequireFromString("1.36")))
	require.Empty(t, result.FeeTransfers)

	stored, err := f.requests.GetByID(context.Background(), req.ID)
	require.NoError(t, err)
	require.Equal(t, entities.SettlementStatusFallbackOK, stored.Status)
	require.Equal(t, "execution reverted", stored.PrimaryError.String)
	require.True(t, stored.FallbackTxHash.Valid)
}

func TestSettle_BothPathsFailEscalates(t *testing.T) {
	client := &chainStub{
		mintErr:    errors.New("execution reverted"),
		balanceSeq: []decimal.Decimal{decimal.RequireFromString("0.10")},
	}
	f := newSettlementFixture(t, client, 3)
	req := f.newPendingRequest(t, "evt_3")

	result, err := f.uc.Settle(context.Background(), req)
	require.NoError(t, err, "terminal failure is recorded, not returned")
	require.Equal(t, entities.SettlementStatusFailedManual, result.Status)

	stored, gerr := f.requests.GetByID(context.Background(), req.ID)
	require.NoError(t, gerr)
	require.Equal(t, entities.SettlementStatusFailedManual, stored.Status)
	require.Equal(t, "execution reverted", stored.PrimaryError.String)
	require.Contains(t, stored.FallbackError.String, "insufficient safety stock")

	failures := f.alerts.byKind(entities.AlertKindSettlementFailed)
	require.Len(t, failures, 1)
	require.Equal(t, "evt_3", failures[0].ExternalEventID.String)
	require.True(t, failures[0].Amount.Equal(req.GrossAmount))
	require.True(t, failures[0].PrimaryError.Valid)
	require.True(t, failures[0].FallbackError.Valid)
}

func TestSettle_PartialFeeFailureKeepsPrimaryOK(t *testing.T) {
	recipients := testRecipients()
	client := &chainStub{transferErrFor: map[string]error{
		recipients[0].Address: errors.New("recipient reverted"),
	}}
	f := newSettlementFixture(t, client, 3)
	req := f.newPendingRequest(t, "evt_4")

	result, err := f.uc.Settle(context.Background(), req)
	require.NoError(t, err)
	require.Equal(t, entities.SettlementStatusPrimaryOK, result.Status)

	stored, gerr := f.requests.GetByID(context.Background(), req.ID)
	require.NoError(t, gerr)
	require.Equal(t, entities.SettlementStatusPrimaryOK, stored.Status, "partial fee failure never demotes")

	require.Len(t, f.alerts.byKind(entities.AlertKindFeeTransferFailed), 1)
	require.NotEmpty(t, f.transfers.byStatus(entities.FeeTransferStatusFailed))
}

func TestSettle_OpenBreakerSkipsPrimary(t *testing.T) {
	client := &chainStub{
		mintErr: errors.New("rpc down"),
		balanceSeq: []decimal.Decimal{
			decimal.RequireFromString("100"),
			decimal.RequireFromString("95"),
		},
	}
	f := newSettlementFixture(t, client, 1)

	first := f.newPendingRequest(t, "evt_5a")
	_, err := f.uc.Settle(context.Background(), first)
	require.NoError(t, err)
	require.Equal(t, 1, client.mintCalls)

	// Breaker is now open: the next request must not touch the primary path.
	second := f.newPendingRequest(t, "evt_5b")
	result, err := f.uc.Settle(context.Background(), second)
	require.NoError(t, err)
	require.Equal(t, entities.SettlementStatusFallbackOK, result.Status)
	require.Equal(t, 1, client.mintCalls, "open breaker fails fast without a chain call")

	stored, gerr := f.requests.GetByID(context.Background(), second.ID)
	require.NoError(t, gerr)
	require.Contains(t, stored.PrimaryError.String, "circuit breaker open")
}
