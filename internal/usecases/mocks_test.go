package usecases

import (
	"context"
	"fmt"
	"os"
	"sync"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"mountainshares.backend/internal/domain/entities"
	domainerrors "mountainshares.backend/internal/domain/errors"
	"mountainshares.backend/pkg/logger"
)

func TestMain(m *testing.M) {
	logger.Init("production")
	os.Exit(m.Run())
}

type transferCall struct {
	to     string
	amount decimal.Decimal
}

// chainStub implements ChainSettler deterministically.
type chainStub struct {
	mu sync.Mutex

	mintErr   error
	mintCalls int
	mints     []transferCall

	transferErrFor map[string]error
	transfers      []transferCall

	balanceSeq []decimal.Decimal
	balanceErr error
}

func (c *chainStub) MintTokens(_ context.Context, to string, amount decimal.Decimal) (string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.mintCalls++
	if c.mintErr != nil {
		return "", c.mintErr
	}
	c.mints = append(c.mints, transferCall{to: to, amount: amount})
	return fmt.Sprintf("0xmint%d", c.mintCalls), nil
}

func (c *chainStub) TransferStablecoin(_ context.Context, to string, amount decimal.Decimal) (string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if err, ok := c.transferErrFor[to]; ok {
		return "", err
	}
	c.transfers = append(c.transfers, transferCall{to: to, amount: amount})
	return fmt.Sprintf("0xtransfer%d", len(c.transfers)), nil
}

func (c *chainStub) StablecoinBalance(_ context.Context) (decimal.Decimal, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.balanceErr != nil {
		return decimal.Zero, c.balanceErr
	}
	if len(c.balanceSeq) == 0 {
		return decimal.Zero, nil
	}
	bal := c.balanceSeq[0]
	if len(c.balanceSeq) > 1 {
		c.balanceSeq = c.balanceSeq[1:]
	}
	return bal, nil
}

type processedRepoStub struct {
	mu   sync.Mutex
	seen map[string]bool
	err  error
}

func newProcessedRepoStub() *processedRepoStub {
	return &processedRepoStub{seen: map[string]bool{}}
}

func (s *processedRepoStub) MarkProcessed(_ context.Context, id string) (bool, error) {
	if s.err != nil {
		return false, s.err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.seen[id] {
		return false, nil
	}
	s.seen[id] = true
	return true, nil
}

func (s *processedRepoStub) IsProcessed(_ context.Context, id string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.seen[id], nil
}

type requestRepoStub struct {
	mu        sync.Mutex
	byID      map[uuid.UUID]*entities.SettlementRequest
	createErr error
	updateErr error
}

func newRequestRepoStub() *requestRepoStub {
	return &requestRepoStub{byID: map[uuid.UUID]*entities.SettlementRequest{}}
}

func (s *requestRepoStub) Create(_ context.Context, req *entities.SettlementRequest) error {
	if s.createErr != nil {
		return s.createErr
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	cp := *req
	s.byID[req.ID] = &cp
	return nil
}

func (s *requestRepoStub) GetByID(_ context.Context, id uuid.UUID) (*entities.SettlementRequest, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	req, ok := s.byID[id]
	if !ok {
		return nil, domainerrors.ErrNotFound
	}
	cp := *req
	return &cp, nil
}

func (s *requestRepoStub) GetByExternalEventID(_ context.Context, eventID string) (*entities.SettlementRequest, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, req := range s.byID {
		if req.ExternalEventID == eventID {
			cp := *req
			return &cp, nil
		}
	}
	return nil, domainerrors.ErrNotFound
}

func (s *requestRepoStub) Update(_ context.Context, req *entities.SettlementRequest) error {
	if s.updateErr != nil {
		return s.updateErr
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	cp := *req
	s.byID[req.ID] = &cp
	return nil
}

func (s *requestRepoStub) List(_ context.Context, limit, offset int) ([]*entities.SettlementRequest, int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []*entities.SettlementRequest
	for _, req := range s.byID {
		cp := *req
		out = append(out, &cp)
	}
	return out, int64(len(out)), nil
}

func (s *requestRepoStub) count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.byID)
}

type transferRepoStub struct {
	mu   sync.Mutex
	rows map[uuid.UUID]*entities.FeeTransfer
}

func newTransferRepoStub() *transferRepoStub {
	return &transferRepoStub{rows: map[uuid.UUID]*entities.FeeTransfer{}}
}

func (s *transferRepoStub) Create(_ context.Context, t *entities.FeeTransfer) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	cp := *t
	s.rows[t.ID] = &cp
	return nil
}

func (s *transferRepoStub) GetByID(_ context.Context, id uuid.UUID) (*entities.FeeTransfer, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	t, ok := s.rows[id]
	if !ok {
		return nil, domainerrors.ErrNotFound
	}
	cp := *t
	return &cp, nil
}

func (s *transferRepoStub) GetBySettlementID(_ context.Context, settlementID uuid.UUID) ([]*entities.FeeTransfer, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []*entities.FeeTransfer
	for _, t := range s.rows {
		if t.SettlementID == settlementID {
			cp := *t
			out = append(out, &cp)
		}
	}
	return out, nil
}

func (s *transferRepoStub) Update(_ context.Context, t *entities.FeeTransfer) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	cp := *t
	s.rows[t.ID] = &cp
	return nil
}

func (s *transferRepoStub) byStatus(status entities.FeeTransferStatus) []*entities.FeeTransfer {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []*entities.FeeTransfer
	for _, t := range s.rows {
		if t.Status == status {
			cp := *t
			out = append(out, &cp)
		}
	}
	return out
}

type alertRepoStub struct {
	mu     sync.Mutex
	alerts []*entities.Alert
}

func (s *alertRepoStub) Create(_ context.Context, a *entities.Alert) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	cp := *a
	s.alerts = append(s.alerts, &cp)
	return nil
}

func (s *alertRepoStub) GetByID(_ context.Context, id uuid.UUID) (*entities.Alert, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, a := range s.alerts {
		if a.ID == id {
			cp := *a
			return &cp, nil
		}
	}
	return nil, domainerrors.ErrNotFound
}

func (s *alertRepoStub) ListUndispatched(_ context.Context, limit int) ([]*entities.Alert, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []*entities.Alert
	for _, a := range s.alerts {
		if !a.Dispatched {
			cp := *a
			out = append(out, &cp)
		}
	}
	return out, nil
}

func (s *alertRepoStub) List(_ context.Context, limit, offset int) ([]*entities.Alert, int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []*entities.Alert
	for _, a := range s.alerts {
		cp := *a
		out = append(out, &cp)
	}
	return out, int64(len(out)), nil
}

func (s *alertRepoStub) MarkDispatched(_ context.Context, id uuid.UUID) error { return nil }
func (s *alertRepoStub) Acknowledge(_ context.Context, id uuid.UUID) error   { return nil }

func (s *alertRepoStub) byKind(kind entities.AlertKind) []*entities.Alert {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []*entities.Alert
	for _, a := range s.alerts {
		if a.Kind == kind {
			cp := *a
			out = append(out, &cp)
		}
	}
	return out
}

// uowStub runs the function without a real transaction.
type uowStub struct{}

func (uowStub) Do(ctx context.Context, fn func(ctx context.Context) error) error {
	return fn(ctx)
}

func testRecipients() []entities.FeeRecipient {
	weights := []struct {
		id     string
		weight string
	}{
		{"nonprofit", "30"},
		{"community_programs", "15"},
		{"treasury", "30"},
		{"governance", "10"},
		{"development", "15"},
	}
	var out []entities.FeeRecipient
	for i, w := range weights {
		out = append(out, entities.FeeRecipient{
			RecipientID:   w.id,
			Address:       fmt.Sprintf("0x%040d", i+10),
			WeightPercent: decimal.RequireFromString(w.weight),
		})
	}
	return out
}
