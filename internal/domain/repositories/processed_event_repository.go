package repositories

import (
	"context"
)

// ProcessedEventRepository is the durable idempotency set of provider event
// ids. MarkProcessed must be atomic across concurrent callers: exactly one
// caller observes true for a given id.
type ProcessedEventRepository interface {
	// MarkProcessed records the id if it is not already present and reports
	// whether this call inserted it (insert-if-absent semantics).
	MarkProcessed(ctx context.Context, externalEventID string) (bool, error)
	// IsProcessed reports whether the id has been recorded.
	IsProcessed(ctx context.Context, externalEventID string) (bool, error)
}
