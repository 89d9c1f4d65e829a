package jobs

import (
	"context"
	"log"
	"time"

	"github.com/google/uuid"
	"github.com/jonboulle/clockwork"
	"mountainshares.backend/internal/domain/entities"
	"mountainshares.backend/internal/infrastructure/notify"
)

// alertSource is the slice of AlertRepository this job needs.
type alertSource interface {
	ListUndispatched(ctx context.Context, limit int) ([]*entities.Alert, error)
	MarkDispatched(ctx context.Context, id uuid.UUID) error
}

// AlertDispatchJob sweeps undispatched alert rows and posts them to the ops
// channel. The DB row is the source of truth; a failed post leaves the row
// undispatched for the next sweep.
type AlertDispatchJob struct {
	alerts   alertSource
	notifier notify.Notifier
	clock    clockwork.Clock
	interval time.Duration
	stop     chan struct{}
}

func NewAlertDispatchJob(alerts alertSource, notifier notify.Notifier, clock clockwork.Clock, interval time.Duration) *AlertDispatchJob {
	return &AlertDispatchJob{
		alerts:   alerts,
		notifier: notifier,
		clock:    clock,
		interval: interval,
		stop:     make(chan struct{}),
	}
}

func (j *AlertDispatchJob) Start(ctx context.Context) {
	log.Println("🕐 Starting alert dispatch job...")

	ticker := j.clock.NewTicker(j.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			log.Println("⏹️ Alert dispatch job stopped (context cancelled)")
			return
		case <-j.stop:
			log.Println("⏹️ Alert dispatch job stopped")
			return
		case <-ticker.Chan():
			j.dispatchPending(ctx)
		}
	}
}

func (j *AlertDispatchJob) Stop() {
	close(j.stop)
}

func (j *AlertDispatchJob) dispatchPending(ctx context.Context) {
	pending, err := j.alerts.ListUndispatched(ctx, 50)
	if err != nil {
		log.Printf("❌ Error fetching undispatched alerts: %v", err)
		return
	}

	if len(pending) == 0 {
		return
	}

	log.Printf("🔄 Dispatching %d alerts...", len(pending))

	for _, alert := range pending {
		if err := j.notifier.Notify(ctx, alert); err != nil {
			log.Printf("❌ Error posting alert %s: %v", alert.ID, err)
			continue
		}
		if err := j.alerts.MarkDispatched(ctx, alert.ID); err != nil {
			log.Printf("❌ Error marking alert %s dispatched: %v", alert.ID, err)
		}
	}
}
