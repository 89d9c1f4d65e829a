package usecases

import "time"

const (
	// EventCheckoutCompleted is the only provider event type that settles.
	// Every other event type is acknowledged and ignored.
	EventCheckoutCompleted = "checkout.session.completed"

	// idempotencyKeyPrefix namespaces the redis cache of committed event ids.
	idempotencyKeyPrefix = "webhook:event:"
	// idempotencyTTL keeps the fast-path key well past the provider's retry
	// window (Stripe retries for up to 3 days).
	idempotencyTTL = 72 * time.Hour

	// ReserveRecipientID labels the 1:1 reserve backing transfer in the
	// fee_transfers audit table.
	ReserveRecipientID = "settlement_reserve"

	// moneyPlaces is cent precision for fiat amounts.
	moneyPlaces = 2
)
