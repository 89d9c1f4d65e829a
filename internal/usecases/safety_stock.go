package usecases

import (
	"context"
	"fmt"
	"log"

	"github.com/shopspring/decimal"
	"mountainshares.backend/internal/domain/entities"
	domainerrors "mountainshares.backend/internal/domain/errors"
	domainRepos "mountainshares.backend/internal/domain/repositories"
	"mountainshares.backend/pkg/utils"
)

// SafetyStock is the pre-funded USDC reserve used when the primary settlement
// path is unavailable. It never partially fulfills: either the full amount is
// transferred or ErrInsufficientStock is returned.
type SafetyStock struct {
	client        ChainSettler
	alerts        domainRepos.AlertRepository
	minimumBuffer decimal.Decimal
}

func NewSafetyStock(client ChainSettler, alerts domainRepos.AlertRepository, minimumBuffer decimal.Decimal) *SafetyStock {
	return &SafetyStock{
		client:        client,
		alerts:        alerts,
		minimumBuffer: minimumBuffer,
	}
}

// Use transfers exactly amount from the stock to recipient. The balance is
// re-checked after the transfer; dropping below the minimum buffer raises a
// warning alert but does not fail the operation.
func (s *SafetyStock) Use(ctx context.Context, amount decimal.Decimal, recipient string) (string, error) {
	balance, err := s.client.StablecoinBalance(ctx)
	if err != nil {
		return "", err
	}
	if balance.LessThan(amount) {
		return "", fmt.Errorf("%w: have %s, need %s", domainerrors.ErrInsufficientStock, balance, amount)
	}

	hash, err := s.client.TransferStablecoin(ctx, recipient, amount)
	if err != nil {
		return "", err
	}

	remaining, err := s.client.StablecoinBalance(ctx)
	if err != nil {
		// The transfer already succeeded; a failed re-check only costs the
		// buffer warning.
		log.Printf("❌ Error re-checking safety stock balance: %v", err)
		return hash, nil
	}
	if remaining.LessThan(s.minimumBuffer) {
		s.raiseLowStockAlert(ctx, remaining)
	}
	return hash, nil
}

// Status reports the current stock balance and whether it sits below the
// configured minimum buffer.
func (s *SafetyStock) Status(ctx context.Context) (decimal.Decimal, bool, error) {
	balance, err := s.client.StablecoinBalance(ctx)
	if err != nil {
		return decimal.Zero, false, err
	}
	return balance, balance.LessThan(s.minimumBuffer), nil
}

func (s *SafetyStock) raiseLowStockAlert(ctx context.Context, remaining decimal.Decimal) {
	alert := &entities.Alert{
		ID:      utils.GenerateUUIDv7(),
		Kind:    entities.AlertKindLowSafetyStock,
		Amount:  remaining,
		Message: fmt.Sprintf("safety stock at %s USDC, below minimum buffer %s", remaining, s.minimumBuffer),
	}
	if err := s.alerts.Create(ctx, alert); err != nil {
		log.Printf("❌ Error recording low safety stock alert: %v", err)
	}
}
