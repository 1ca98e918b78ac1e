package webhook

import (
	"context"
	"io"
	"time"

	"github.com/gin-gonic/gin"

	"ci-relay/internal/dispatch"
	"ci-relay/internal/model"
	pkgResponse "ci-relay/pkg/response"
)

// HandleGitHubWebhook processes GitHub webhook deliveries.
// @Summary GitHub webhook ingest
// @Description Verifies, parses and dispatches a GitHub event delivery
// @Tags Webhook
// @Accept json
// @Produce json
// @Success 200 {object} response.Resp "Delivery accepted or ignored"
// @Router /webhook/github [post]
func (h *Handler) HandleGitHubWebhook(c *gin.Context) {
	ctx := c.Request.Context()

	body, err := io.ReadAll(c.Request.Body)
	if err != nil {
		h.l.Errorf(ctx, "Failed to read webhook body: %v", err)
		pkgResponse.Error(c, err)
		return
	}

	// Verify signature
	signature := c.GetHeader("X-Hub-Signature-256")
	if err := h.security.ValidateGitHubSignature(body, signature); err != nil {
		h.l.Errorf(ctx, "GitHub signature verification failed: %v", err)
		pkgResponse.Unauthorized(c)
		return
	}

	if err := h.security.ValidateIPAddress(c.Request); err != nil {
		h.l.Errorf(ctx, "GitHub webhook IP rejected: %v", err)
		pkgResponse.Unauthorized(c)
		return
	}

	// Check rate limit
	if err := h.security.CheckRateLimit("github"); err != nil {
		h.l.Warnf(ctx, "Rate limit exceeded: %v", err)
		pkgResponse.TooManyRequests(c)
		return
	}

	eventType := c.GetHeader("X-GitHub-Event")

	var event *model.Event
	switch eventType {
	case "push":
		event, err = h.githubParser.ParsePushEvent(body)
	case "pull_request":
		event, err = h.githubParser.ParsePullRequestEvent(body)
	default:
		h.l.Infof(ctx, "Unsupported GitHub event type: %s", eventType)
		pkgResponse.OK(c, gin.H{"status": "ignored", "reason": "unsupported event type"})
		return
	}

	if err != nil {
		h.l.Errorf(ctx, "Failed to parse GitHub event: %v", err)
		pkgResponse.Error(c, err)
		return
	}

	// Process in background
	go h.processEventAsync(*event)

	// Acknowledge immediately
	pkgResponse.OK(c, gin.H{"status": "accepted"})
}

// processEventAsync dispatches the event with a bounded background
// context; a hung pipeline cannot pin the ingest path.
func (h *Handler) processEventAsync(event model.Event) {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Minute)
	defer cancel()

	h.l.Infof(ctx, "Dispatching event: %s/%s from %s", event.EventType, event.Action, event.Repository)

	outcomes := h.dispatcher.Dispatch(ctx, event)
	if dispatch.Failed(outcomes) {
		h.l.Errorf(ctx, "Event %s/%s finished with failures", event.EventType, event.Action)
		return
	}

	h.l.Infof(ctx, "Event %s/%s processed (%d handlers)", event.EventType, event.Action, len(outcomes))
}
