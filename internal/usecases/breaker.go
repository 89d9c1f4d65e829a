package usecases

import (
	"errors"
	"log"
	"time"

	"github.com/sony/gobreaker"
	domainerrors "mountainshares.backend/internal/domain/errors"
	"mountainshares.backend/pkg/metrics"
)

// SettlementBreaker guards the primary settlement path. After threshold
// consecutive failures it opens and fails fast with ErrCircuitOpen; once the
// open duration elapses a single probe is allowed through, and its success
// closes the breaker again.
type SettlementBreaker struct {
	cb *gobreaker.CircuitBreaker
}

func NewSettlementBreaker(threshold uint32, openDuration time.Duration) *SettlementBreaker {
	settings := gobreaker.Settings{
		Name:        "settlement-primary",
		MaxRequests: 1,
		Timeout:     openDuration,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= threshold
		},
		OnStateChange: func(name string, from gobreaker.State, to gobreaker.State) {
			log.Printf("⚡ Circuit breaker %s: %s -> %s", name, from, to)
			metrics.BreakerState.Set(float64(to))
		},
	}
	return &SettlementBreaker{cb: gobreaker.NewCircuitBreaker(settings)}
}

// Execute runs fn through the breaker. A fast-fail while open is returned as
// ErrCircuitOpen so callers can tell it apart from an attempted-and-failed
// chain call.
func (b *SettlementBreaker) Execute(fn func() (string, error)) (string, error) {
	out, err := b.cb.Execute(func() (interface{}, error) {
		return fn()
	})
	if err != nil {
		if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
			return "", domainerrors.ErrCircuitOpen
		}
		return "", err
	}
	return out.(string), nil
}

// State exposes the breaker state for the health surface.
func (b *SettlementBreaker) State() gobreaker.State {
	return b.cb.State()
}
