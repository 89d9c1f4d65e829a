package notify

import (
	"context"
	"fmt"

	"github.com/slack-go/slack"
	"mountainshares.backend/internal/domain/entities"
)

var postWebhook = slack.PostWebhookContext

// Notifier delivers an operations alert to an external channel.
type Notifier interface {
	Notify(ctx context.Context, alert *entities.Alert) error
}

// SlackNotifier posts alerts to a Slack incoming webhook. The durable alert
// row is always written first; a failed post just leaves the row undispatched.
type SlackNotifier struct {
	webhookURL string
}

func NewSlackNotifier(webhookURL string) *SlackNotifier {
	return &SlackNotifier{webhookURL: webhookURL}
}

func (n *SlackNotifier) Notify(ctx context.Context, alert *entities.Alert) error {
	fields := []slack.AttachmentField{
		{Title: "Kind", Value: string(alert.Kind), Short: true},
		{Title: "Amount", Value: alert.Amount.StringFixed(2), Short: true},
	}
	if alert.ExternalEventID.Valid {
		fields = append(fields, slack.AttachmentField{Title: "Event", Value: alert.ExternalEventID.String, Short: true})
	}
	if alert.PrimaryError.Valid {
		fields = append(fields, slack.AttachmentField{Title: "Primary error", Value: alert.PrimaryError.String})
	}
	if alert.FallbackError.Valid {
		fields = append(fields, slack.AttachmentField{Title: "Fallback error", Value: alert.FallbackError.String})
	}

	msg := &slack.WebhookMessage{
		Text: fmt.Sprintf(":rotating_light: %s", alert.Message),
		Attachments: []slack.Attachment{{
			Color:  colorFor(alert.Kind),
			Fields: fields,
		}},
	}
	return postWebhook(ctx, n.webhookURL, msg)
}

func colorFor(kind entities.AlertKind) string {
	switch kind {
	case entities.AlertKindLowSafetyStock:
		return "warning"
	default:
		return "danger"
	}
}
