package stripewebhook

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"

	domainerrors "mountainshares.backend/internal/domain/errors"
)

// DefaultTolerance bounds how old a signed timestamp may be before the
// delivery is treated as a replay.
const DefaultTolerance = 5 * time.Minute

// Event is the envelope Stripe posts to the webhook endpoint.
type Event struct {
	ID   string `json:"id"`
	Type string `json:"type"`
	Data struct {
		Object json.RawMessage `json:"object"`
	} `json:"data"`
	Created int64 `json:"created"`
}

// CheckoutSession is the object carried by checkout.session.completed events.
type CheckoutSession struct {
	ID          string            `json:"id"`
	AmountTotal int64             `json:"amount_total"`
	Currency    string            `json:"currency"`
	Metadata    map[string]string `json:"metadata"`
}

var now = time.Now

// ConstructEvent verifies the v1 signature over the raw payload and parses the
// event envelope. The payload must be the exact wire bytes; hashing a
// re-serialized body invalidates the signature.
func ConstructEvent(payload []byte, sigHeader, secret string) (*Event, error) {
	return ConstructEventWithTolerance(payload, sigHeader, secret, DefaultTolerance)
}

// ConstructEventWithTolerance is ConstructEvent with an explicit bound on the
// signed timestamp's age. A tolerance of 0 disables the timestamp check.
func ConstructEventWithTolerance(payload []byte, sigHeader, secret string, tolerance time.Duration) (*Event, error) {
	if secret == "" {
		return nil, domainerrors.ErrWebhookSecretMissing
	}
	if err := verifySignature(payload, sigHeader, secret, tolerance); err != nil {
		return nil, err
	}

	var event Event
	if err := json.Unmarshal(payload, &event); err != nil {
		return nil, fmt.Errorf("%w: malformed event payload", domainerrors.ErrSignatureInvalid)
	}
	if event.ID == "" || event.Type == "" {
		return nil, fmt.Errorf("%w: event id or type missing", domainerrors.ErrSignatureInvalid)
	}
	return &event, nil
}

// verifySignature checks every v1 candidate in the header against the expected
// HMAC-SHA256 of "{t}.{payload}".
func verifySignature(payload []byte, sigHeader, secret string, tolerance time.Duration) error {
	if sigHeader == "" {
		return fmt.Errorf("%w: missing signature header", domainerrors.ErrSignatureInvalid)
	}

	var timestamp int64 = -1
	var candidates []string
	for _, part := range strings.Split(sigHeader, ",") {
		kv := strings.SplitN(strings.TrimSpace(part), "=", 2)
		if len(kv) != 2 {
			continue
		}
		switch kv[0] {
		case "t":
			ts, err := strconv.ParseInt(kv[1], 10, 64)
			if err != nil {
				return fmt.Errorf("%w: bad timestamp", domainerrors.ErrSignatureInvalid)
			}
			timestamp = ts
		case "v1":
			candidates = append(candidates, kv[1])
		}
	}
	if timestamp < 0 || len(candidates) == 0 {
		return fmt.Errorf("%w: header missing t or v1", domainerrors.ErrSignatureInvalid)
	}

	if tolerance > 0 {
		age := now().Unix() - timestamp
		if age > int64(tolerance/time.Second) || age < -int64(tolerance/time.Second) {
			return fmt.Errorf("%w: timestamp outside tolerance", domainerrors.ErrSignatureInvalid)
		}
	}

	expected := ComputeSignature(timestamp, payload, secret)
	for _, candidate := range candidates {
		if hmac.Equal([]byte(candidate), []byte(expected)) {
			return nil
		}
	}
	return domainerrors.ErrSignatureInvalid
}

// ComputeSignature returns the hex v1 signature for the given timestamp and
// payload. Exported so tests and local tooling can sign fixtures.
func ComputeSignature(timestamp int64, payload []byte, secret string) string {
	mac := hmac.New(sha256.New, []byte(secret))
	fmt.Fprintf(mac, "%d.", timestamp)
	mac.Write(payload)
	return hex.EncodeToString(mac.Sum(nil))
}

// SignHeader builds a complete Stripe-Signature header value for payload.
// Test helper for exercising webhook intake end to end.
func SignHeader(timestamp int64, payload []byte, secret string) string {
	return fmt.Sprintf("t=%d,v1=%s", timestamp, ComputeSignature(timestamp, payload, secret))
}
