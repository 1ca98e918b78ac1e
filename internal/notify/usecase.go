package notify

import (
	"context"

	"ci-relay/internal/model"
	"ci-relay/pkg/slack"
)

// Deliver evaluates one rule against one event and, on match, performs a
// single best-effort delivery. There is no retry, and delivery is not
// idempotent: re-running the same event sends a duplicate message.
func (n *Notifier) Deliver(ctx context.Context, rule Rule, event model.Event) DeliveryResult {
	if !rule.Matches(event) {
		return DeliveryResult{Rule: rule.Name, Status: StatusSkipped}
	}

	text := rule.Render(event)
	if err := n.sender.PostMessage(ctx, slack.SectionMessage(text)); err != nil {
		n.l.Errorf(ctx, "Delivery failed for rule %s: %v", rule.Name, err)
		return DeliveryResult{Rule: rule.Name, Status: StatusFailed, Text: text, Err: err.Error()}
	}

	n.l.Infof(ctx, "Delivered %s notification for %s", rule.Name, event.URL)
	return DeliveryResult{Rule: rule.Name, Status: StatusDelivered, Text: text}
}

// Notify evaluates every rule against the event.
func (n *Notifier) Notify(ctx context.Context, event model.Event) []DeliveryResult {
	results := make([]DeliveryResult, 0, len(n.rules))
	for _, rule := range n.rules {
		results = append(results, n.Deliver(ctx, rule, event))
	}
	return results
}
