package notify

import (
	"context"

	"ci-relay/pkg/slack"
)

// Sender delivers a rendered message to the chat webhook.
type Sender interface {
	PostMessage(ctx context.Context, msg slack.Message) error
}
